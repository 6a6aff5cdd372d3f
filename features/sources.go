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
	"encoding/csv"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pilosa/opc"
	"github.com/pkg/errors"
)

// Files read by the feature sources, relative to the data root.
const (
	DragonFile     = "molecular_descriptors_data.txt"
	EpisuiteFile   = "DREAM_episuite_descriptors.txt"
	MorganFile     = "morgan_sim.csv"
	MordredFile    = "mordred-features.csv"
	NSPDKIndexFile = "derived/nspdk_cid.csv"
	NSPDKFile      = "derived/nspdk_r3_d4_unaug.svm"
	GramianFile    = "derived/nspdk_r3_d4_unaug_gramian.mtx"
	EVACIDsFile    = "derived/eva_cids.dat"
	EVAFile        = "derived/eva_descriptors.dat"
	EVAJSONFile    = "eva_100_training_data.json"
)

// episuiteFlagColumn is the column (counted after the CID and SMILES columns
// are removed) holding a YES/NO flag.
const episuiteFlagColumn = 47

type loader func(a *Assembler, want map[int]bool) (*sourceTable, error)

var loaders = map[string]loader{
	"dragon": func(a *Assembler, want map[int]bool) (*sourceTable, error) {
		return a.loadKeyed(keyedSpec{file: DragonFile, comma: '\t', flag: -1}, want)
	},
	"episuite": func(a *Assembler, want map[int]bool) (*sourceTable, error) {
		return a.loadKeyed(keyedSpec{file: EpisuiteFile, comma: '\t', drop: "SMILES", flag: episuiteFlagColumn}, want)
	},
	"morgan": func(a *Assembler, want map[int]bool) (*sourceTable, error) {
		return a.loadKeyed(keyedSpec{file: MorganFile, comma: ',', flag: -1}, want)
	},
	"mordred": func(a *Assembler, want map[int]bool) (*sourceTable, error) {
		return a.loadKeyed(keyedSpec{file: MordredFile, comma: ',', cidColumn: "CID", flag: -1, numericOnly: true}, want)
	},
	"nspdk":   (*Assembler).loadNSPDK,
	"gramian": (*Assembler).loadGramian,
	"eva":     (*Assembler).loadEVA,
}

// keyedSpec describes a delimited table with one row per compound.
type keyedSpec struct {
	file  string
	comma rune
	// cidColumn names the compound id column; empty means the first column.
	cidColumn string
	// drop names a column to discard.
	drop string
	// flag is the index among the kept columns of a YES/NO column, or -1.
	flag int
	// numericOnly keeps only columns whose every value is numeric.
	numericOnly bool
}

func (a *Assembler) loadKeyed(spec keyedSpec, want map[int]bool) (*sourceTable, error) {
	f, err := a.Config.Open(spec.file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	reader := csv.NewReader(f)
	reader.Comma = spec.comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", spec.file)
	}
	if len(records) == 0 {
		return nil, &opc.FormatError{What: spec.file, Value: "empty", Line: 1}
	}
	header, rows := records[0], records[1:]

	cidCol := 0
	if spec.cidColumn != "" {
		cidCol = indexOf(header, spec.cidColumn)
		if cidCol < 0 {
			return nil, &opc.FormatError{What: spec.file + " header", Value: "no " + spec.cidColumn + " column", Line: 1}
		}
	}
	var kept []int
	for i, h := range header {
		if i == cidCol || (spec.drop != "" && h == spec.drop) {
			continue
		}
		kept = append(kept, i)
	}
	if spec.numericOnly {
		kept = numericColumns(kept, rows)
	}
	names := make([]string, len(kept))
	for j, i := range kept {
		names[j] = header[i]
	}

	t := newSourceTable(names)
	for n, row := range rows {
		line := n + 2
		if len(row) != len(header) {
			return nil, &opc.FormatError{What: spec.file + " row", Value: strconv.Itoa(len(row)) + " fields", Line: line}
		}
		cid, err := parseCID(row[cidCol])
		if err != nil {
			return nil, withLine(err, line)
		}
		if !want[cid] {
			continue
		}
		if _, ok := t.rows[cid]; ok {
			return nil, opc.Integrityf("CID %d appears twice in %s", cid, spec.file)
		}
		vals := make([]float64, len(kept))
		for j, i := range kept {
			if j == spec.flag {
				if strings.TrimSpace(row[i]) == "YES" {
					vals[j] = 1
				}
				continue
			}
			v, ok := parseFeature(row[i])
			if !ok {
				return nil, &opc.FormatError{What: spec.file + " value", Value: row[i], Line: line}
			}
			vals[j] = v
		}
		t.rows[cid] = vals
	}
	return t, nil
}

// numericColumns returns the columns of cols whose values all parse as
// numbers.
func numericColumns(cols []int, rows [][]string) []int {
	var out []int
	for _, i := range cols {
		numeric := true
		for _, row := range rows {
			if i >= len(row) {
				continue
			}
			if _, ok := parseFeature(row[i]); !ok {
				numeric = false
				break
			}
		}
		if numeric {
			out = append(out, i)
		}
	}
	return out
}

// loadNSPDK builds the sparse graph-kernel features of the requested
// compounds, keeping only features observed for more than one of them.
func (a *Assembler) loadNSPDK(want map[int]bool) (*sourceTable, error) {
	ids, err := a.nspdkCIDs()
	if err != nil {
		return nil, err
	}
	f, err := a.Config.Open(NSPDKFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	feats := make(map[int]map[int]float64)
	r := bufio.NewReader(f)
	for i := 0; ; i++ {
		line, err := r.ReadString('\n')
		if line == "" && err == io.EOF {
			break
		} else if err != nil && err != io.EOF {
			return nil, errors.Wrapf(err, "reading %s", NSPDKFile)
		}
		if i >= len(ids) {
			return nil, opc.Integrityf("%s has more lines than %s has ids", NSPDKFile, NSPDKIndexFile)
		}
		cid := ids[i]
		if !want[cid] {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		for _, kv := range fields[1:] {
			parts := strings.SplitN(kv, ":", 2)
			if len(parts) != 2 {
				return nil, &opc.FormatError{What: "nspdk feature", Value: kv, Line: i + 1}
			}
			key, err := strconv.Atoi(parts[0])
			if err != nil {
				return nil, &opc.FormatError{What: "nspdk feature key", Value: parts[0], Line: i + 1}
			}
			val, err := strconv.ParseFloat(parts[1], 64)
			if err != nil {
				return nil, &opc.FormatError{What: "nspdk feature value", Value: parts[1], Line: i + 1}
			}
			if feats[key] == nil {
				feats[key] = make(map[int]float64)
			}
			feats[key][cid] = val
		}
	}

	var keys []int
	for key, byCID := range feats {
		if len(byCID) > 1 {
			keys = append(keys, key)
		}
	}
	sort.Ints(keys)
	names := make([]string, len(keys))
	for j, key := range keys {
		names[j] = strconv.Itoa(key)
	}
	t := newSourceTable(names)
	for _, cid := range ids {
		if !want[cid] {
			continue
		}
		vals := make([]float64, len(keys))
		for j, key := range keys {
			v, ok := feats[key][cid]
			if !ok {
				v = math.NaN()
			}
			vals[j] = v
		}
		t.rows[cid] = vals
	}
	return t, nil
}

// loadGramian selects the kernel matrix rows of the requested compounds by
// their position in the nspdk index. Only those rows are parsed.
func (a *Assembler) loadGramian(want map[int]bool) (*sourceTable, error) {
	ids, err := a.nspdkCIDs()
	if err != nil {
		return nil, err
	}
	rowCID := make(map[int]int)
	for i, cid := range ids {
		if want[cid] {
			rowCID[i] = cid
		}
	}
	f, err := a.Config.Open(GramianFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var t *sourceTable
	r := bufio.NewReader(f)
	for i := 0; len(rowCID) > 0; i++ {
		line, err := r.ReadString('\n')
		if line == "" && err == io.EOF {
			break
		} else if err != nil && err != io.EOF {
			return nil, errors.Wrapf(err, "reading %s", GramianFile)
		}
		cid, ok := rowCID[i]
		if !ok {
			continue
		}
		delete(rowCID, i)
		fields := strings.Fields(line)
		if t == nil {
			t = newSourceTable(indexNames(len(fields)))
		} else if len(fields) != len(t.names) {
			return nil, &opc.FormatError{What: "gramian row width", Value: strconv.Itoa(len(fields)), Line: i + 1}
		}
		vals := make([]float64, len(fields))
		for j, s := range fields {
			if vals[j], err = strconv.ParseFloat(s, 64); err != nil {
				return nil, &opc.FormatError{What: "gramian value", Value: s, Line: i + 1}
			}
		}
		t.rows[cid] = vals
	}
	if t == nil {
		t = newSourceTable(nil)
	}
	return t, nil
}

// loadEVA reads the files written by BuildEVA.
func (a *Assembler) loadEVA(want map[int]bool) (*sourceTable, error) {
	cidRows, err := a.readMatrix(EVACIDsFile)
	if err != nil {
		return nil, err
	}
	data, err := a.readMatrix(EVAFile)
	if err != nil {
		return nil, err
	}
	if len(cidRows) != len(data) {
		return nil, opc.Integrityf("%s has %d rows but %s has %d", EVACIDsFile, len(cidRows), EVAFile, len(data))
	}
	width := 0
	if len(data) > 0 {
		width = len(data[0])
	}
	t := newSourceTable(indexNames(width))
	for i, row := range cidRows {
		if len(row) != 1 || row[0] != math.Trunc(row[0]) {
			return nil, &opc.FormatError{What: "eva compound id", Value: strconv.Itoa(len(row)) + " fields", Line: i + 1}
		}
		if len(data[i]) != width {
			return nil, &opc.FormatError{What: "eva row width", Value: strconv.Itoa(len(data[i])), Line: i + 1}
		}
		if cid := int(row[0]); want[cid] {
			t.rows[cid] = data[i]
		}
	}
	return t, nil
}

// readMatrix reads a whitespace-delimited numeric file.
func (a *Assembler) readMatrix(name string) ([][]float64, error) {
	f, err := a.Config.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var rows [][]float64
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		row := make([]float64, len(fields))
		for j, s := range fields {
			if row[j], err = strconv.ParseFloat(s, 64); err != nil {
				return nil, &opc.FormatError{What: name + " value", Value: s, Line: line}
			}
		}
		rows = append(rows, row)
	}
	return rows, errors.Wrapf(scanner.Err(), "reading %s", name)
}

// nspdkCIDs reads the compound id of each line of the nspdk files.
func (a *Assembler) nspdkCIDs() ([]int, error) {
	f, err := a.Config.Open(NSPDKIndexFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var ids []int
	scanner := bufio.NewScanner(f)
	for line := 1; scanner.Scan(); line++ {
		s := strings.TrimSpace(scanner.Text())
		if s == "" {
			continue
		}
		id, err := strconv.Atoi(s)
		if err != nil {
			return nil, &opc.FormatError{What: "nspdk compound id", Value: s, Line: line}
		}
		ids = append(ids, id)
	}
	return ids, errors.Wrapf(scanner.Err(), "reading %s", NSPDKIndexFile)
}

func indexNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = strconv.Itoa(i)
	}
	return names
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

// parseCID parses a compound id, accepting integral floats such as "126.0".
func parseCID(s string) (int, error) {
	s = strings.TrimSpace(s)
	if id, err := strconv.Atoi(s); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, opc.NewFormatError("compound id", s)
	}
	return int(f), nil
}

// parseFeature parses a feature value. Empty cells and the usual NA spellings
// are missing values.
func parseFeature(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	switch s {
	case "", "NA", "N/A", "NaN", "nan", "null":
		return math.NaN(), true
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

func withLine(err error, line int) error {
	if fe, ok := errors.Cause(err).(*opc.FormatError); ok {
		c := *fe
		c.Line = line
		return &c
	}
	return err
}
