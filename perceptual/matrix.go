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

package perceptual

import (
	"math"

	"github.com/pilosa/opc"
)

// DilutionRanks are the dilutions presented in the challenge, least diluted
// first. A dilution's rank is its index.
var DilutionRanks = []opc.Dilution{-1, -3, -5, -7}

// DilutionRank returns the rank of d, or -1 if d was not presented.
func DilutionRank(d opc.Dilution) int {
	for i, r := range DilutionRanks {
		if r == d {
			return i
		}
	}
	return -1
}

// MatrixOptions control NewDataMatrix.
type MatrixOptions struct {
	// Subjects is the size of the subject axis. Defaults to opc.NumSubjects.
	Subjects int
	// GoldStandardOnly keeps intensity ratings at 1/1,000 and the other
	// descriptors on rows labeled high, the ratings used for scoring.
	GoldStandardOnly bool
	// OnlyReplicates masks every cell for which either the original or the
	// replicate rating is missing.
	OnlyReplicates bool
}

// DataMatrix is a dense array of ratings over (subject, compound, descriptor,
// dilution rank, replicate) with a validity mask. Unobserved cells are
// masked, never zero.
type DataMatrix struct {
	CIDs        []int
	Subjects    int
	Descriptors int

	cidIndex map[int]int
	values   []float64
	valid    []bool
}

// NewDataMatrix lays the rows of t out along the compounds in cids, which
// must contain every compound of t.
func NewDataMatrix(t *Table, cids []int, opts MatrixOptions) (*DataMatrix, error) {
	subjects := opts.Subjects
	if subjects <= 0 {
		subjects = opc.NumSubjects
	}
	m := &DataMatrix{
		CIDs:        append([]int(nil), cids...),
		Subjects:    subjects,
		Descriptors: len(t.Descriptors),
		cidIndex:    make(map[int]int, len(cids)),
	}
	for i, cid := range cids {
		m.cidIndex[cid] = i
	}
	size := subjects * len(cids) * m.Descriptors * len(DilutionRanks) * 2
	m.values = make([]float64, size)
	m.valid = make([]bool, size)

	for _, r := range t.rows {
		ci, ok := m.cidIndex[r.CID]
		if !ok {
			return nil, opc.Integrityf("CID %d is not in the matrix index", r.CID)
		}
		if r.Subject < 1 || r.Subject > subjects {
			return nil, opc.Integrityf("subject %d out of range 1-%d", r.Subject, subjects)
		}
		rank := DilutionRank(r.Dilution)
		if rank < 0 {
			return nil, opc.NewFormatError("dilution rank", r.Ratio)
		}
		rep := 0
		if r.Replicate {
			rep = 1
		}
		for i, v := range r.Values {
			if math.IsNaN(v) {
				continue
			}
			if opts.GoldStandardOnly && !((i == 0 && rank == 1) || (i > 0 && r.Label == opc.High)) {
				continue
			}
			n := m.offset(r.Subject, ci, i, rank, rep)
			m.values[n] = v
			m.valid[n] = true
		}
	}

	if opts.OnlyReplicates {
		for n := 0; n < size; n += 2 {
			if !m.valid[n] || !m.valid[n+1] {
				m.valid[n], m.valid[n+1] = false, false
			}
		}
	}
	return m, nil
}

// offset relies on the replicate axis being innermost.
func (m *DataMatrix) offset(subject, cidIndex, descriptor, rank, replicate int) int {
	n := subject - 1
	n = n*len(m.CIDs) + cidIndex
	n = n*m.Descriptors + descriptor
	n = n*len(DilutionRanks) + rank
	return n*2 + replicate
}

// At returns the rating for the given subject (1-based), compound index,
// descriptor index, dilution rank and replicate flag, and whether the cell
// holds an observation.
func (m *DataMatrix) At(subject, cidIndex, descriptor, rank int, replicate bool) (float64, bool) {
	if subject < 1 || subject > m.Subjects || cidIndex < 0 || cidIndex >= len(m.CIDs) ||
		descriptor < 0 || descriptor >= m.Descriptors || rank < 0 || rank >= len(DilutionRanks) {
		return 0, false
	}
	rep := 0
	if replicate {
		rep = 1
	}
	n := m.offset(subject, cidIndex, descriptor, rank, rep)
	return m.values[n], m.valid[n]
}

// Shape returns the length of each axis.
func (m *DataMatrix) Shape() [5]int {
	return [5]int{m.Subjects, len(m.CIDs), m.Descriptors, len(DilutionRanks), 2}
}

// Count returns the number of unmasked cells.
func (m *DataMatrix) Count() int {
	n := 0
	for _, ok := range m.valid {
		if ok {
			n++
		}
	}
	return n
}

// Mean returns the mean of the unmasked cells of a descriptor, and false if
// there are none.
func (m *DataMatrix) Mean(descriptor int) (float64, bool) {
	var sum float64
	var n int
	for s := 1; s <= m.Subjects; s++ {
		for c := range m.CIDs {
			for rank := range DilutionRanks {
				for rep := 0; rep < 2; rep++ {
					o := m.offset(s, c, descriptor, rank, rep)
					if m.valid[o] {
						sum += m.values[o]
						n++
					}
				}
			}
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
