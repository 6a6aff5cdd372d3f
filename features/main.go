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
	"io"
	"log"
	"os"
	"time"

	"github.com/pilosa/opc"
	"github.com/pilosa/opc/cidindex"
	"github.com/pilosa/opc/perceptual"
	"github.com/pkg/errors"
)

// Main holds the options for writing a feature matrix.
type Main struct {
	DataRoot  string   `help:"Directory holding the raw challenge and feature files."`
	CacheRoot string   `help:"Directory for cache files. Defaults to <data-root>/derived."`
	Sources   []string `help:"Comma separated list of feature sources, in column order."`
	Kinds     []string `help:"Comma separated list of kinds whose compounds make up the rows."`
	Output    string   `help:"File to write the feature matrix to. Empty writes to stdout."`
	EVALookup string   `help:"Tab separated structure/CID file. When set, the EVA files are rebuilt first."`
	Verbose   bool     `help:"Enable debug logging."`

	Stdout io.Writer `flag:"-"`
}

// NewMain returns a new Main.
func NewMain() *Main {
	return &Main{
		DataRoot: "data",
		Sources:  []string{"dragon"},
		Kinds:    []string{"training", "leaderboard", "testset"},
		Stdout:   os.Stdout,
	}
}

// Run assembles the requested sources over the compounds of the requested
// kinds and writes the result as TSV.
func (m *Main) Run() (err error) {
	start := time.Now()
	kinds, err := opc.ParseKinds(m.Kinds)
	if err != nil {
		return errors.Wrap(err, "parsing kinds")
	}
	cfg := opc.NewConfig(m.DataRoot)
	cfg.CacheRoot = m.CacheRoot
	logger := opc.NewLogger(m.Verbose)

	loader := perceptual.NewLoader(cfg)
	loader.Logger = logger
	b := cidindex.NewBuilder(loader, cidindex.NewFileStore(cfg.CacheDir()))
	b.Logger = logger
	cids, err := b.CIDs(kinds...)
	if err != nil {
		return errors.Wrap(err, "getting CIDs")
	}

	if m.EVALookup != "" {
		lookup, err := LookupFile(m.EVALookup)
		if err != nil {
			return errors.Wrap(err, "reading EVA lookup")
		}
		available, err := BuildEVA(cfg, lookup, cids)
		if err != nil {
			return errors.Wrap(err, "building EVA files")
		}
		log.Printf("EVA data covers %d of %d compounds", len(available), len(cids))
	}

	a := NewAssembler(cfg)
	a.Logger = logger
	t, err := a.Assemble(m.Sources, cids)
	if err != nil {
		return errors.Wrap(err, "assembling features")
	}

	w := m.Stdout
	if m.Output != "" {
		f, err := os.Create(m.Output)
		if err != nil {
			return errors.Wrap(err, "creating output")
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = errors.Wrap(cerr, "closing output")
			}
		}()
		w = f
	}
	if err := t.WriteTSV(w); err != nil {
		return errors.Wrap(err, "writing features")
	}
	log.Printf("wrote %d features for %d compounds in %v", t.Width(), len(t.CIDs), time.Since(start))
	return nil
}
