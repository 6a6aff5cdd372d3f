// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

package features

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pilosa/opc"
	"github.com/pkg/errors"
)

// StructureLookup maps a molecular structure string to its compound id.
type StructureLookup func(structure string) (int, error)

// BuildEVA reads the EVA descriptor JSON (structure -> descriptor vector),
// resolves each structure through lookup, and writes the vectors of the
// compounds among cids that it covers to the eva id and descriptor files. It
// returns the covered compound ids in ascending order.
func BuildEVA(cfg opc.Config, lookup StructureLookup, cids []int) ([]int, error) {
	f, err := cfg.Open(EVAJSONFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var byStructure map[string][]float64
	if err := json.NewDecoder(f).Decode(&byStructure); err != nil {
		return nil, &opc.FormatError{What: EVAJSONFile, Value: err.Error()}
	}

	structures := make([]string, 0, len(byStructure))
	for s := range byStructure {
		structures = append(structures, s)
	}
	sort.Strings(structures)
	byCID := make(map[int]string, len(structures))
	for _, s := range structures {
		cid, err := lookup(s)
		if err != nil {
			return nil, errors.Wrapf(err, "looking up %q", s)
		}
		byCID[cid] = s
	}

	var available []int
	for _, cid := range uniqueSorted(cids) {
		if _, ok := byCID[cid]; ok {
			available = append(available, cid)
		}
	}

	var ids, data strings.Builder
	for _, cid := range available {
		fmt.Fprintf(&ids, "%.18e\n", float64(cid))
		vec := byStructure[byCID[cid]]
		for j, v := range vec {
			if j > 0 {
				data.WriteByte(' ')
			}
			fmt.Fprintf(&data, "%.18e", v)
		}
		data.WriteByte('\n')
	}
	if err := writeFile(cfg.DataPath(EVACIDsFile), ids.String()); err != nil {
		return nil, err
	}
	if err := writeFile(cfg.DataPath(EVAFile), data.String()); err != nil {
		return nil, err
	}
	return available, nil
}

// LookupFile returns a StructureLookup backed by a tab-separated file of
// structure and compound id pairs.
func LookupFile(path string) (StructureLookup, error) {
	f, err := opc.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := readLookup(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return func(structure string) (int, error) {
		cid, ok := m[structure]
		if !ok {
			return 0, opc.Integrityf("no compound id for structure %q", structure)
		}
		return cid, nil
	}, nil
}

func readLookup(r io.Reader) (map[string]int, error) {
	m := make(map[string]int)
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		parts := strings.Split(text, "\t")
		if len(parts) != 2 {
			return nil, &opc.FormatError{What: "lookup line", Value: text, Line: line}
		}
		cid, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, &opc.FormatError{What: "compound id", Value: parts[1], Line: line}
		}
		m[parts[0]] = cid
	}
	return m, scanner.Err()
}

func writeFile(path, data string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "making directory")
	}
	return errors.Wrapf(ioutil.WriteFile(path, []byte(data), 0644), "writing %s", path)
}
