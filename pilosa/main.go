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

package pilosa

import (
	"log"
	"os"
	"time"

	gopilosa "github.com/pilosa/go-pilosa"
	"github.com/pilosa/opc"
	"github.com/pilosa/opc/leveldb"
	"github.com/pilosa/opc/perceptual"
	"github.com/pilosa/opc/termstat"
	"github.com/pkg/errors"
)

// Main holds the options for exporting normalized perceptual records to
// Pilosa.
type Main struct {
	DataRoot      string   `help:"Directory holding the raw challenge files."`
	Kinds         []string `help:"Comma separated list of kinds to export."`
	Full          bool     `help:"Use the full subject scheme instead of the restricted one."`
	PilosaHosts   []string `help:"Comma separated list of Pilosa hosts and ports."`
	Index         string   `help:"Pilosa index."`
	BatchSize     uint     `help:"Batch size for Pilosa imports."`
	TranslatorDir string   `help:"Directory for the leveldb column translator. Empty for in-memory."`
	Progress      bool     `help:"Print running counts to stderr."`
	Verbose       bool     `help:"Enable debug logging."`

	Client Importer `flag:"-"`
}

// NewMain returns a new Main.
func NewMain() *Main {
	return &Main{
		DataRoot:    "data",
		Kinds:       []string{"training", "leaderboard", "testset"},
		PilosaHosts: []string{"localhost:10101"},
		Index:       "opc",
		BatchSize:   100000,
	}
}

// Run exports each requested kind.
func (m *Main) Run() (err error) {
	start := time.Now()
	kinds, err := opc.ParseKinds(m.Kinds)
	if err != nil {
		return errors.Wrap(err, "parsing kinds")
	}
	logger := opc.NewLogger(m.Verbose)
	loader := perceptual.NewLoader(opc.NewConfig(m.DataRoot))
	loader.Logger = logger
	if m.Full {
		loader.Scheme = opc.SchemeFull
	}

	client := m.Client
	if client == nil {
		client, err = gopilosa.NewClient(m.PilosaHosts,
			gopilosa.OptClientSocketTimeout(time.Minute*60),
			gopilosa.OptClientConnectTimeout(time.Second*60))
		if err != nil {
			return errors.Wrap(err, "creating pilosa cluster client")
		}
	}
	e := NewExporter(client, m.Index)
	e.BatchSize = int(m.BatchSize)
	e.Logger = logger
	if m.Progress {
		stats := termstat.NewCollector(os.Stderr, 2*time.Second)
		defer stats.Close()
		e.Stats = stats
	}
	if m.TranslatorDir != "" {
		lt, err := leveldb.NewTranslator(m.TranslatorDir, ColumnNamespace)
		if err != nil {
			return errors.Wrap(err, "creating translator")
		}
		defer func() {
			if cerr := lt.Close(); err == nil {
				err = errors.Wrap(cerr, "closing translator")
			}
		}()
		e.Translator = lt
	}

	for _, k := range kinds {
		t, err := loader.Load(k)
		if err != nil {
			return errors.Wrapf(err, "loading %s", k)
		}
		stats, err := e.Export(t)
		if err != nil {
			return errors.Wrapf(err, "exporting %s", k)
		}
		log.Printf("%s: %d columns, %d values", k, stats.Columns, stats.Values)
	}
	log.Printf("export done in %v", time.Since(start))
	return nil
}
