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
	"sort"

	"github.com/pilosa/opc"
	"github.com/pkg/errors"
)

// Sources lists the known feature source names.
var Sources = []string{"dragon", "episuite", "morgan", "nspdk", "gramian", "mordred", "eva"}

// Assembler reads feature sources from the data root of Config.
type Assembler struct {
	Config opc.Config
	Logger opc.Logger
}

// NewAssembler returns an Assembler for cfg.
func NewAssembler(cfg opc.Config) *Assembler {
	return &Assembler{Config: cfg, Logger: opc.NopLogger{}}
}

// Assemble joins sources, in order, on the sorted unique compound ids cids.
// An unknown source name is a *opc.FormatError. A requested compound absent
// from any source is an *opc.IntegrityError for the whole assembly.
func (a *Assembler) Assemble(sources []string, cids []int) (*Table, error) {
	log := opc.LoggerOr(a.Logger)
	seen := make(map[string]bool, len(sources))
	for _, s := range sources {
		if _, ok := loaders[s]; !ok {
			return nil, opc.NewFormatError("feature source", s)
		}
		if seen[s] {
			return nil, opc.NewFormatError("duplicate feature source", s)
		}
		seen[s] = true
	}
	ids := uniqueSorted(cids)
	want := make(map[int]bool, len(ids))
	for _, cid := range ids {
		want[cid] = true
	}

	t := &Table{CIDs: ids, index: make(map[int]int, len(ids)), values: make([][]float64, len(ids))}
	for i, cid := range ids {
		t.index[cid] = i
	}
	for _, s := range sources {
		st, err := loaders[s](a, want)
		if err != nil {
			return nil, errors.Wrapf(err, "loading %s features", s)
		}
		for _, cid := range ids {
			if _, ok := st.rows[cid]; !ok {
				return nil, opc.Integrityf("CID %d missing from %s features", cid, s)
			}
		}
		log.Printf("%s has %d features for %d molecules", s, len(st.names), len(st.rows))
		start := len(t.Columns)
		for _, name := range st.names {
			t.Columns = append(t.Columns, Column{Source: s, Name: name})
		}
		t.blocks = append(t.blocks, Block{Source: s, Start: start, End: len(t.Columns)})
		for i, cid := range ids {
			t.values[i] = append(t.values[i], st.rows[cid]...)
		}
	}
	log.Printf("there are now %d total features", len(t.Columns))
	return t, nil
}

func uniqueSorted(cids []int) []int {
	out := append([]int(nil), cids...)
	sort.Ints(out)
	n := 0
	for i, c := range out {
		if i == 0 || c != out[n-1] {
			out[n] = c
			n++
		}
	}
	return out[:n]
}
