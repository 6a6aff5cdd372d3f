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

package cidindex

import (
	"github.com/pilosa/opc"
	"github.com/pilosa/opc/perceptual"
	"github.com/pkg/errors"
)

// TableLoader loads the normalized perceptual table of a kind.
// *perceptual.Loader implements it.
type TableLoader interface {
	Load(kind opc.Kind) (*perceptual.Table, error)
}

// Options control Builder.CIDDilutions.
type Options struct {
	// Uncached derives the set from a fresh normalization pass instead of
	// the store. Sets derived this way lack the intensity pairs which are
	// only synthesized while populating the cache.
	Uncached bool
	Target   Target
}

// Builder derives the pair sets of each kind and caches them in a Store.
type Builder struct {
	Loader TableLoader
	Store  Store
	Logger opc.Logger
}

// NewBuilder returns a Builder.
func NewBuilder(loader TableLoader, store Store) *Builder {
	return &Builder{Loader: loader, Store: store, Logger: opc.NopLogger{}}
}

// CIDDilutions returns the (compound id, dilution) pairs of kind. On the
// cached path a missing store entry triggers Populate once. Training-norep
// is always the difference of training and replicated.
func (b *Builder) CIDDilutions(kind opc.Kind, opts Options) (Set, error) {
	if kind == opc.TrainingNoRep {
		training, err := b.CIDDilutions(opc.Training, opts)
		if err != nil {
			return nil, err
		}
		replicated, err := b.CIDDilutions(opc.Replicated, opts)
		if err != nil {
			return nil, err
		}
		return training.Difference(replicated), nil
	}
	if opts.Uncached {
		s, err := b.derive(kind, false)
		if err != nil {
			return nil, err
		}
		return s.Filter(opts.Target), nil
	}

	s, err := b.Store.Get(kind)
	if err == ErrNotCached {
		opc.LoggerOr(b.Logger).Printf("determining CIDs and dilutions the long way one time; results will be cached")
		if err = b.Populate(); err != nil {
			return nil, errors.Wrap(err, "populating cache")
		}
		s, err = b.Store.Get(kind)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "getting cached %s", kind)
	}
	return s.Filter(opts.Target), nil
}

// CIDDilutionsMany pools the sets of several kinds.
func (b *Builder) CIDDilutionsMany(kinds []opc.Kind, opts Options) (Set, error) {
	sets := make([]Set, 0, len(kinds))
	for _, k := range kinds {
		s, err := b.CIDDilutions(k, opts)
		if err != nil {
			return nil, err
		}
		sets = append(sets, s)
	}
	return Union(sets...), nil
}

// CIDs returns the sorted compound ids of the given kinds.
func (b *Builder) CIDs(kinds ...opc.Kind) ([]int, error) {
	s, err := b.CIDDilutionsMany(kinds, Options{})
	if err != nil {
		return nil, err
	}
	return s.CIDs(), nil
}

// Rank returns the rank of dilution d for every compound of kind; see
// Set.Rank.
func (b *Builder) Rank(kind opc.Kind, d opc.Dilution) (map[int]int, error) {
	s, err := b.CIDDilutions(kind, Options{})
	if err != nil {
		return nil, err
	}
	return s.Rank(d), nil
}

// Populate derives the sets of every kind and stores them. The sets of the
// leaderboard and test releases include the intensity dilution of each of
// their compounds. Running it again rewrites identical entries.
func (b *Builder) Populate() error {
	log := opc.LoggerOr(b.Logger)
	sets := make(map[opc.Kind]Set, len(opc.Kinds))
	for _, k := range opc.Kinds {
		if k.Derived() {
			continue
		}
		s, err := b.derive(k, true)
		if err != nil {
			return err
		}
		sets[k] = s
	}
	sets[opc.TrainingNoRep] = sets[opc.Training].Difference(sets[opc.Replicated])
	for _, k := range opc.Kinds {
		if err := b.Store.Put(k, sets[k]); err != nil {
			return errors.Wrapf(err, "storing %s", k)
		}
		log.Printf("cached %d pairs for %s", len(sets[k]), k)
	}
	return nil
}

func (b *Builder) derive(kind opc.Kind, synthesize bool) (Set, error) {
	t, err := b.Loader.Load(kind)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", kind)
	}
	pairs := t.Pairs()
	if synthesize && (kind == opc.Leaderboard || kind == opc.TestSet) {
		for _, cid := range Set(pairs).CIDs() {
			pairs = append(pairs, Pair{CID: cid, Dilution: opc.IntensityDilution})
		}
	}
	return NewSet(pairs...), nil
}
