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

package opc

import (
	"math"
	"sort"
)

// Intensity labels recorded with each row. In the split releases the label
// tells whether the row belongs to the higher or lower of the two dilutions
// presented for a compound.
const (
	High = "high"
	Low  = "low"
)

// OppositeLabel returns "low" for "high" and "high" for anything else.
func OppositeLabel(label string) string {
	if label == High {
		return Low
	}
	return High
}

// Row is one normalized line of a perceptual release: all descriptor ratings
// one subject gave one compound at one dilution. Values holds one entry per
// descriptor, NaN for missing ratings.
type Row struct {
	CID       int
	Odor      string
	Replicate bool
	Label     string
	Ratio     string // dilution as written in the source, e.g. "'1/1,000'"
	Dilution  Dilution
	Subject   int
	Values    []float64
}

// Clone returns a deep copy of r.
func (r Row) Clone() Row {
	r.Values = append([]float64(nil), r.Values...)
	return r
}

// Triplet returns the (CID, dilution, subject) identity used to detect
// replicates.
func (r Row) Triplet() Triplet {
	return Triplet{CID: r.CID, Dilution: r.Dilution, Subject: r.Subject}
}

// Pair returns the (CID, dilution) pair of the row.
func (r Row) Pair() Pair {
	return Pair{CID: r.CID, Dilution: r.Dilution}
}

// Pair is a compound presented at a dilution, the unit of membership of a
// Kind.
type Pair struct {
	CID      int
	Dilution Dilution
}

// Less orders pairs by CID, then dilution.
func (p Pair) Less(o Pair) bool {
	if p.CID != o.CID {
		return p.CID < o.CID
	}
	return p.Dilution < o.Dilution
}

// Triplet identifies one presentation of a compound to a subject.
type Triplet struct {
	CID      int
	Dilution Dilution
	Subject  int
}

// Key is the canonical index of a perceptual value.
type Key struct {
	Descriptor string
	CID        int
	Dilution   Dilution
	Replicate  bool
	Subject    int
}

// Record is one perceptual value. Value is NaN when the subject gave no
// rating.
type Record struct {
	Key
	Value float64
}

// Missing reports whether the record carries no rating.
func (r Record) Missing() bool { return math.IsNaN(r.Value) }

// Records reshapes rows into descriptor-major records, ordered by descriptor
// (in the order of ds), CID, dilution, replicate flag and subject.
func Records(rows []Row, ds []Descriptor) []Record {
	pos := make(map[string]int, len(ds))
	for i, d := range ds {
		pos[d.Name] = i
	}
	recs := make([]Record, 0, len(rows)*len(ds))
	for _, r := range rows {
		for i, d := range ds {
			if i >= len(r.Values) {
				break
			}
			recs = append(recs, Record{
				Key: Key{
					Descriptor: d.Name,
					CID:        r.CID,
					Dilution:   r.Dilution,
					Replicate:  r.Replicate,
					Subject:    r.Subject,
				},
				Value: r.Values[i],
			})
		}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i].Key, recs[j].Key
		if a.Descriptor != b.Descriptor {
			return pos[a.Descriptor] < pos[b.Descriptor]
		}
		return a.Less(b)
	})
	return recs
}

// Less orders keys of the same descriptor by CID, dilution, replicate flag and
// subject.
func (k Key) Less(o Key) bool {
	if k.CID != o.CID {
		return k.CID < o.CID
	}
	if k.Dilution != o.Dilution {
		return k.Dilution < o.Dilution
	}
	if k.Replicate != o.Replicate {
		return !k.Replicate
	}
	return k.Subject < o.Subject
}
