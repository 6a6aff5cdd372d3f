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
	"log"
	"time"

	"github.com/pilosa/opc"
	"github.com/pilosa/opc/perceptual"
	"github.com/pkg/errors"
)

// Main holds the options for reading (and if needed populating) the pair
// cache.
type Main struct {
	DataRoot   string   `help:"Directory holding the raw challenge files."`
	CacheRoot  string   `help:"Directory for cache files. Defaults to <data-root>/derived."`
	Kinds      []string `help:"Comma separated list of kinds to report."`
	Target     string   `help:"Dilution target: high, low, a ratio like 1/1,000, or empty for all."`
	Uncached   bool     `help:"Derive from a fresh normalization pass instead of the cache."`
	Repopulate bool     `help:"Rebuild every cache entry before reporting."`
	Verbose    bool     `help:"Enable debug logging."`

	Store Store `flag:"-"`
}

// NewMain returns a new Main.
func NewMain() *Main {
	return &Main{
		DataRoot: "data",
		Kinds:    []string{"training", "leaderboard", "testset"},
	}
}

// Config returns the path configuration of m.
func (m *Main) Config() opc.Config {
	cfg := opc.NewConfig(m.DataRoot)
	cfg.CacheRoot = m.CacheRoot
	return cfg
}

// Run prints the number of pairs and compounds of each requested kind.
func (m *Main) Run() error {
	start := time.Now()
	kinds, err := opc.ParseKinds(m.Kinds)
	if err != nil {
		return errors.Wrap(err, "parsing kinds")
	}
	target, err := ParseTarget(m.Target)
	if err != nil {
		return errors.Wrap(err, "parsing target")
	}
	cfg := m.Config()
	logger := opc.NewLogger(m.Verbose)
	loader := perceptual.NewLoader(cfg)
	loader.Logger = logger
	store := m.Store
	if store == nil {
		store = NewFileStore(cfg.CacheDir())
	}
	b := NewBuilder(loader, store)
	b.Logger = logger

	if m.Repopulate && !m.Uncached {
		if err := b.Populate(); err != nil {
			return errors.Wrap(err, "populating cache")
		}
	}
	for _, k := range kinds {
		s, err := b.CIDDilutions(k, Options{Uncached: m.Uncached, Target: target})
		if err != nil {
			return errors.Wrapf(err, "getting %s", k)
		}
		log.Printf("%s: %d pairs, %d compounds (target %v)", k, len(s), len(s.CIDs()), target)
	}
	log.Printf("done in %v", time.Since(start))
	return nil
}
