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
	"sort"

	"github.com/pilosa/opc"
	"github.com/pkg/errors"
)

// intensityRatio is the dilution, as written in the releases, at which the
// intensity of split compounds was rated.
const intensityRatio = "'1/1,000'"

// Table is a normalized perceptual table. It is not modified after Normalize
// returns it.
type Table struct {
	Kind        opc.Kind
	Descriptors []opc.Descriptor

	rows []opc.Row
}

// NewTable returns a table holding copies of rows.
func NewTable(kind opc.Kind, ds []opc.Descriptor, rows []opc.Row) *Table {
	t := &Table{Kind: kind, Descriptors: ds, rows: make([]opc.Row, len(rows))}
	for i, r := range rows {
		t.rows[i] = r.Clone()
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Rows returns a deep copy of the rows of t.
func (t *Table) Rows() []opc.Row {
	rows := make([]opc.Row, len(t.rows))
	for i, r := range t.rows {
		rows[i] = r.Clone()
	}
	return rows
}

// Each calls fn on every row. fn must not modify the row's Values.
func (t *Table) Each(fn func(opc.Row)) {
	for _, r := range t.rows {
		fn(r)
	}
}

// Records reshapes the table into descriptor-major records.
func (t *Table) Records() []opc.Record {
	return opc.Records(t.rows, t.Descriptors)
}

// Pairs returns the sorted distinct (CID, dilution) pairs present in t.
func (t *Table) Pairs() []opc.Pair {
	seen := make(map[opc.Pair]struct{})
	pairs := make([]opc.Pair, 0)
	for _, r := range t.rows {
		p := r.Pair()
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Less(pairs[j]) })
	return pairs
}

// ReplicatedPairs returns the (CID, dilution) pairs which carry at least one
// replicate row.
func (t *Table) ReplicatedPairs() map[opc.Pair]struct{} {
	return replicatedPairs(t.rows)
}

// Options control normalization.
type Options struct {
	// Scheme decides how keys which remain duplicated after replicate
	// promotion are handled. SchemeRestricted fails with an IntegrityError,
	// SchemeFull keeps the first occurrence.
	Scheme opc.SubjectScheme
	Logger opc.Logger
}

// Normalize parses the header and data lines of a wide release and normalizes
// them into a table of the given kind.
func Normalize(kind opc.Kind, header []string, raw [][]string, opts Options) (*Table, error) {
	rows, ds, err := ParseRows(header, raw)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s rows", kind)
	}
	return NormalizeRows(kind, ds, rows, opts)
}

// NormalizeRows turns parsed rows into a table of the given kind:
// intensity-split rows are expanded, replicates are flagged and the kind's
// pair filter is applied. Derived kinds are filtered from the normalized
// training rows, which must be what rows holds. rows is not modified.
func NormalizeRows(kind opc.Kind, ds []opc.Descriptor, rows []opc.Row, opts Options) (*Table, error) {
	log := opc.LoggerOr(opts.Logger)
	expanded := Expand(kind, rows)
	n := len(expanded)
	promoted, err := PromoteReplicates(expanded, opts.Scheme, log)
	if err != nil {
		return nil, errors.Wrapf(err, "normalizing %s", kind)
	}
	filtered := FilterKind(kind, promoted)
	log.Debugf("normalized %s: %d source rows, %d after expansion, %d kept", kind, len(rows), n, len(filtered))
	return &Table{Kind: kind, Descriptors: ds, rows: filtered}, nil
}

// Expand splits the rows of releases in which intensity was rated at a
// different dilution than the other descriptors. Each such row becomes an
// intensity-only row at the recorded dilution and label, and a row holding
// the other descriptors at the intensity dilution with the opposite label.
// A row already at the intensity dilution stays whole, since both halves
// would share one key. Rows of other kinds are copied unchanged.
func Expand(kind opc.Kind, rows []opc.Row) []opc.Row {
	out := make([]opc.Row, 0, len(rows))
	for _, r := range rows {
		if !kind.SplitsIntensity(r.Dilution) || r.Dilution == opc.IntensityDilution || len(r.Values) == 0 {
			out = append(out, r.Clone())
			continue
		}
		intensity := r.Clone()
		for i := 1; i < len(intensity.Values); i++ {
			intensity.Values[i] = math.NaN()
		}

		rest := r.Clone()
		rest.Values[0] = math.NaN()
		rest.Label = opc.OppositeLabel(r.Label)
		rest.Ratio = intensityRatio
		rest.Dilution = opc.IntensityDilution

		out = append(out, intensity, rest)
	}
	return out
}

// PromoteReplicates flags the second and later presentations of a
// (CID, dilution, subject) triplet as replicates. Rows already marked as
// replicates in the source keep the flag. Any (triplet, replicate) key still
// duplicated afterwards is an integrity failure under SchemeRestricted and is
// dropped, keeping the first, under SchemeFull. The backing array of rows is
// reused for the result.
func PromoteReplicates(rows []opc.Row, scheme opc.SubjectScheme, log opc.Logger) ([]opc.Row, error) {
	log = opc.LoggerOr(log)
	seen := make(map[opc.Triplet]int, len(rows))
	for i := range rows {
		if rows[i].Replicate {
			continue
		}
		t := rows[i].Triplet()
		if seen[t] > 0 {
			rows[i].Replicate = true
		}
		seen[t]++
	}

	type repKey struct {
		opc.Triplet
		replicate bool
	}
	keys := make(map[repKey]struct{}, len(rows))
	out := rows[:0]
	dropped := 0
	for _, r := range rows {
		k := repKey{Triplet: r.Triplet(), replicate: r.Replicate}
		if _, dup := keys[k]; dup {
			if scheme == opc.SchemeRestricted {
				return nil, opc.Integrityf("duplicate key: CID %d, dilution %v, subject %d, replicate %v", r.CID, r.Dilution, r.Subject, r.Replicate)
			}
			dropped++
			continue
		}
		keys[k] = struct{}{}
		out = append(out, r)
	}
	if dropped > 0 {
		log.Printf("dropped %d rows with duplicate keys", dropped)
	}
	return out, nil
}

// FilterKind applies the pair filter of derived kinds. Training-norep keeps
// the pairs which were never replicated and Replicated keeps those which
// were. Other kinds are returned unchanged.
func FilterKind(kind opc.Kind, rows []opc.Row) []opc.Row {
	var keep bool
	switch kind {
	case opc.TrainingNoRep:
		keep = false
	case opc.Replicated:
		keep = true
	default:
		return rows
	}
	reps := replicatedPairs(rows)
	out := make([]opc.Row, 0, len(rows))
	for _, r := range rows {
		if _, ok := reps[r.Pair()]; ok == keep {
			out = append(out, r)
		}
	}
	return out
}

func replicatedPairs(rows []opc.Row) map[opc.Pair]struct{} {
	reps := make(map[opc.Pair]struct{})
	for _, r := range rows {
		if r.Replicate {
			reps[r.Pair()] = struct{}{}
		}
	}
	return reps
}
