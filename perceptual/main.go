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
	"log"
	"time"

	"github.com/pilosa/opc"
	"github.com/pkg/errors"
)

// PreformatMain holds the options for building the wide leaderboard and test
// releases from their long-format files.
type PreformatMain struct {
	DataRoot string   `help:"Directory holding the raw challenge files."`
	Kinds    []string `help:"Comma separated list of kinds to preformat (leaderboard, testset)."`
	Verbose  bool     `help:"Enable debug logging."`
}

// NewPreformatMain returns a new PreformatMain.
func NewPreformatMain() *PreformatMain {
	return &PreformatMain{
		DataRoot: "data",
		Kinds:    []string{"leaderboard", "testset"},
	}
}

// Run preformats each requested kind.
func (m *PreformatMain) Run() error {
	kinds, err := opc.ParseKinds(m.Kinds)
	if err != nil {
		return errors.Wrap(err, "parsing kinds")
	}
	l := NewLoader(opc.NewConfig(m.DataRoot))
	l.Logger = opc.NewLogger(m.Verbose)
	for _, k := range kinds {
		path, err := l.Preformat(k)
		if err != nil {
			return err
		}
		log.Printf("wrote %s", path)
	}
	return nil
}

// LegacyMain holds the options for formatting the legacy survey export.
type LegacyMain struct {
	DataRoot      string `help:"Directory holding the raw challenge files."`
	File          string `help:"Delimited export of the legacy survey, relative to the data root."`
	Full          bool   `help:"Keep every subject of the study instead of only the challenge subjects."`
	Familiarity   bool   `help:"Add the familiarity question as a descriptor."`
	ChallengeOnly bool   `help:"Keep only compounds of the challenge releases."`
	HeaderOffset  int    `help:"Number of lines above the header row."`
	Verbose       bool   `help:"Enable debug logging."`
}

// NewLegacyMain returns a new LegacyMain.
func NewLegacyMain() *LegacyMain {
	return &LegacyMain{
		DataRoot:      "data",
		File:          "12868_2016_287_MOESM1_ESM.txt",
		ChallengeOnly: true,
		HeaderOffset:  DefaultLegacyHeaderOffset,
	}
}

// Run formats the survey and reports what it holds.
func (m *LegacyMain) Run() error {
	start := time.Now()
	cfg := opc.NewConfig(m.DataRoot)
	logger := opc.NewLogger(m.Verbose)
	opts := NewLegacyOptions()
	opts.Familiarity = m.Familiarity
	opts.HeaderOffset = m.HeaderOffset
	opts.Logger = logger
	if m.Full {
		opts.Scheme = opc.SchemeFull
	}
	if m.ChallengeOnly {
		l := NewLoader(cfg)
		l.Logger = logger
		t, err := l.LoadMany(opc.Training, opc.Leaderboard, opc.TestSet)
		if err != nil {
			return errors.Wrap(err, "loading challenge releases")
		}
		opts.ChallengeCIDs = make(map[int]struct{})
		for _, p := range t.Pairs() {
			opts.ChallengeCIDs[p.CID] = struct{}{}
		}
	}
	f, err := cfg.Open(m.File)
	if err != nil {
		return err
	}
	defer f.Close()
	t, err := FormatLegacy(f, opts)
	if err != nil {
		return errors.Wrap(err, "formatting legacy survey")
	}
	log.Printf("%d rows, %d pairs, %d replicated pairs, %d descriptors in %v",
		t.Len(), len(t.Pairs()), len(t.ReplicatedPairs()), len(t.Descriptors), time.Since(start))
	return nil
}

// MatrixMain holds the options for summarizing the data matrix of a kind.
type MatrixMain struct {
	DataRoot         string `help:"Directory holding the raw challenge files."`
	Kind             string `help:"Kind to load."`
	GoldStandardOnly bool   `help:"Keep only the ratings used for scoring."`
	OnlyReplicates   bool   `help:"Keep only cells rated in both the original and the replicate presentation."`
	Verbose          bool   `help:"Enable debug logging."`
}

// NewMatrixMain returns a new MatrixMain.
func NewMatrixMain() *MatrixMain {
	return &MatrixMain{DataRoot: "data", Kind: "training"}
}

// Run builds the matrix and prints its shape and the mean of each descriptor.
func (m *MatrixMain) Run() error {
	kind, err := opc.ParseKind(m.Kind)
	if err != nil {
		return err
	}
	cfg := opc.NewConfig(m.DataRoot)
	l := NewLoader(cfg)
	l.Logger = opc.NewLogger(m.Verbose)
	t, err := l.Load(kind)
	if err != nil {
		return err
	}
	var cids []int
	for _, p := range t.Pairs() {
		if len(cids) == 0 || cids[len(cids)-1] != p.CID {
			cids = append(cids, p.CID)
		}
	}
	dm, err := NewDataMatrix(t, cids, MatrixOptions{
		Subjects:         cfg.SubjectCount(),
		GoldStandardOnly: m.GoldStandardOnly,
		OnlyReplicates:   m.OnlyReplicates,
	})
	if err != nil {
		return errors.Wrap(err, "building data matrix")
	}
	log.Printf("%s: shape %v, %d ratings", kind, dm.Shape(), dm.Count())
	for i, d := range t.Descriptors {
		if mean, ok := dm.Mean(i); ok {
			log.Printf("%s: mean %.3f", d.Name, mean)
		}
	}
	return nil
}
