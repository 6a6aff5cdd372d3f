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

// Package cidindex derives and caches, for each data kind, the set of
// (compound id, dilution) pairs which belong to it.
package cidindex

import (
	"sort"

	"github.com/pilosa/opc"
)

// Pair is a compound presented at a dilution.
type Pair = opc.Pair

// Set is a sorted set of pairs without duplicates. Build one with NewSet; the
// operations below rely on the ordering.
type Set []Pair

// NewSet returns the sorted, deduplicated set of pairs.
func NewSet(pairs ...Pair) Set {
	s := make(Set, len(pairs))
	copy(s, pairs)
	sort.Slice(s, func(i, j int) bool { return s[i].Less(s[j]) })
	out := s[:0]
	for _, p := range s {
		if len(out) > 0 && p == out[len(out)-1] {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Contains reports whether p is in s.
func (s Set) Contains(p Pair) bool {
	i := sort.Search(len(s), func(i int) bool { return !s[i].Less(p) })
	return i < len(s) && s[i] == p
}

// Difference returns the pairs of s which are not in o.
func (s Set) Difference(o Set) Set {
	out := make(Set, 0, len(s))
	for _, p := range s {
		if !o.Contains(p) {
			out = append(out, p)
		}
	}
	return out
}

// Intersect returns the pairs in both s and o.
func (s Set) Intersect(o Set) Set {
	out := make(Set, 0)
	for _, p := range s {
		if o.Contains(p) {
			out = append(out, p)
		}
	}
	return out
}

// Union pools several sets into one.
func Union(sets ...Set) Set {
	var all []Pair
	for _, s := range sets {
		all = append(all, s...)
	}
	return NewSet(all...)
}

// CIDs returns the sorted unique compound ids of s.
func (s Set) CIDs() []int {
	cids := make([]int, 0)
	for i, p := range s {
		if i > 0 && p.CID == s[i-1].CID {
			continue
		}
		cids = append(cids, p.CID)
	}
	return cids
}

// Dilutions returns the dilutions at which cid appears in s, in increasing
// order.
func (s Set) Dilutions(cid int) []opc.Dilution {
	i := sort.Search(len(s), func(i int) bool { return s[i].CID >= cid })
	var ds []opc.Dilution
	for ; i < len(s) && s[i].CID == cid; i++ {
		ds = append(ds, s[i].Dilution)
	}
	return ds
}

type targetKind int

const (
	targetAll targetKind = iota
	targetHigh
	targetLow
	targetValue
)

// Target selects pairs by dilution. The zero Target selects every pair.
type Target struct {
	kind     targetKind
	dilution opc.Dilution
}

var (
	// TargetAll selects every pair.
	TargetAll = Target{}
	// TargetHigh selects, for each compound, the pair at its highest
	// magnitude (least diluted).
	TargetHigh = Target{kind: targetHigh}
	// TargetLow selects the pairs not selected by TargetHigh.
	TargetLow = Target{kind: targetLow}
)

// TargetValue selects the pairs at dilution d.
func TargetValue(d opc.Dilution) Target {
	return Target{kind: targetValue, dilution: d}
}

// ParseTarget parses "", "high", "low" or a dilution ratio such as "1/1,000".
func ParseTarget(s string) (Target, error) {
	switch s {
	case "", "all":
		return TargetAll, nil
	case opc.High:
		return TargetHigh, nil
	case opc.Low:
		return TargetLow, nil
	}
	d, err := opc.ParseDilution(s)
	if err != nil {
		return Target{}, err
	}
	return TargetValue(d), nil
}

func (t Target) String() string {
	switch t.kind {
	case targetHigh:
		return opc.High
	case targetLow:
		return opc.Low
	case targetValue:
		return t.dilution.Ratio()
	}
	return "all"
}

// Filter returns the pairs of s selected by t.
func (s Set) Filter(t Target) Set {
	if t.kind == targetAll {
		return s
	}
	highest := make(map[int]opc.Dilution)
	for _, p := range s {
		// s is sorted by dilution within a compound
		highest[p.CID] = p.Dilution
	}
	out := make(Set, 0, len(s))
	for _, p := range s {
		var keep bool
		switch t.kind {
		case targetHigh:
			keep = p.Dilution == highest[p.CID]
		case targetLow:
			keep = p.Dilution != highest[p.CID]
		case targetValue:
			keep = p.Dilution == t.dilution
		}
		if keep {
			out = append(out, p)
		}
	}
	return out
}

// Rank returns, for every compound of s, 1 when d is its highest dilution in
// s, 0 when d is present but not the highest, and -1 when absent.
func (s Set) Rank(d opc.Dilution) map[int]int {
	ranks := make(map[int]int)
	for _, cid := range s.CIDs() {
		ds := s.Dilutions(cid)
		switch {
		case ds[len(ds)-1] == d:
			ranks[cid] = 1
		case s.Contains(Pair{CID: cid, Dilution: d}):
			ranks[cid] = 0
		default:
			ranks[cid] = -1
		}
	}
	return ranks
}
