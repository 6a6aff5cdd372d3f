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

// Package features joins molecular feature sources on compound id into one
// wide feature table.
package features

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// Column names one feature column by the source it came from.
type Column struct {
	Source string
	Name   string
}

// String returns "source:name".
func (c Column) String() string { return c.Source + ":" + c.Name }

// Block is the half-open column range [Start, End) of one source.
type Block struct {
	Source     string
	Start, End int
}

// Width returns the number of columns in b.
func (b Block) Width() int { return b.End - b.Start }

// Table is a dense feature matrix indexed by compound id. Missing values are
// NaN. A Table is not modified after Assemble returns it.
type Table struct {
	CIDs    []int
	Columns []Column

	blocks []Block
	index  map[int]int
	values [][]float64
}

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.Columns) }

// Blocks returns the column range of each source, in source order.
func (t *Table) Blocks() []Block {
	return append([]Block(nil), t.blocks...)
}

// Block returns the column range of source.
func (t *Table) Block(source string) (Block, bool) {
	for _, b := range t.blocks {
		if b.Source == source {
			return b, true
		}
	}
	return Block{}, false
}

// Row returns a copy of the feature vector of cid.
func (t *Table) Row(cid int) ([]float64, bool) {
	i, ok := t.index[cid]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), t.values[i]...), true
}

// At returns the value in row i, column j.
func (t *Table) At(i, j int) float64 {
	return t.values[i][j]
}

// WriteTSV writes the table with a "CID" column followed by one
// "source:column" header per feature. Missing values are written as NaN.
func (t *Table) WriteTSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	writer.Comma = '\t'
	header := make([]string, 0, len(t.Columns)+1)
	header = append(header, "CID")
	for _, c := range t.Columns {
		header = append(header, c.String())
	}
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "writing header")
	}
	rec := make([]string, len(t.Columns)+1)
	for i, cid := range t.CIDs {
		rec[0] = strconv.Itoa(cid)
		for j, v := range t.values[i] {
			if math.IsNaN(v) {
				rec[j+1] = "NaN"
			} else {
				rec[j+1] = strconv.FormatFloat(v, 'g', -1, 64)
			}
		}
		if err := writer.Write(rec); err != nil {
			return errors.Wrapf(err, "writing CID %d", cid)
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "flushing")
}

// sourceTable is the output of one source loader: named columns and the
// rows of the compounds the source knows about.
type sourceTable struct {
	names []string
	rows  map[int][]float64
}

func newSourceTable(names []string) *sourceTable {
	return &sourceTable{names: names, rows: make(map[int][]float64)}
}
