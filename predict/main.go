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

package predict

import (
	"log"

	"github.com/pilosa/opc"
	"github.com/pilosa/opc/cidindex"
	"github.com/pilosa/opc/perceptual"
	"github.com/pkg/errors"
)

// Main holds the options for checking a prediction file against the
// compounds and descriptors of a kind.
type Main struct {
	DataRoot     string `help:"Directory holding the raw challenge files."`
	CacheRoot    string `help:"Directory for cache files. Defaults to <data-root>/derived."`
	File         string `help:"Prediction file to check."`
	Subchallenge int    `help:"Subchallenge the file was written for (1 or 2)."`
	Kind         string `help:"Kind whose compounds the file must cover."`
	Verbose      bool   `help:"Enable debug logging."`
}

// NewMain returns a new Main.
func NewMain() *Main {
	return &Main{
		DataRoot:     "data",
		Subchallenge: 1,
		Kind:         "leaderboard",
	}
}

// Run reads the prediction file and fails unless it holds a prediction for
// every compound, descriptor and (for subchallenge 1) subject.
func (m *Main) Run() error {
	v, err := ParseVariant(m.Subchallenge)
	if err != nil {
		return err
	}
	kind, err := opc.ParseKind(m.Kind)
	if err != nil {
		return err
	}
	cfg := opc.NewConfig(m.DataRoot)
	cfg.CacheRoot = m.CacheRoot
	logger := opc.NewLogger(m.Verbose)
	loader := perceptual.NewLoader(cfg)
	loader.Logger = logger
	ds, err := loader.Descriptors()
	if err != nil {
		return errors.Wrap(err, "reading descriptors")
	}
	b := cidindex.NewBuilder(loader, cidindex.NewFileStore(cfg.CacheDir()))
	b.Logger = logger
	cids, err := b.CIDs(kind)
	if err != nil {
		return errors.Wrapf(err, "getting %s CIDs", kind)
	}

	f, err := opc.OpenFile(m.File)
	if err != nil {
		return err
	}
	defer f.Close()
	p, err := Read(f, v, ds)
	if err != nil {
		return errors.Wrapf(err, "reading %s", m.File)
	}
	w := &Writer{Variant: v, CIDs: cids, Descriptors: ds, Subjects: cfg.SubjectCount()}
	if missing := w.Missing(p); len(missing) > 0 {
		for _, k := range missing {
			logger.Debugf("missing CID %d subject %d %s", k.CID, k.Subject, k.Descriptor)
		}
		return opc.Integrityf("%s lacks %d of %d predictions", m.File, len(missing), len(w.Keys()))
	}
	log.Printf("%s holds all %d predictions for %s", m.File, len(w.Keys()), kind)
	return nil
}
