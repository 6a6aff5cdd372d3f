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
	"bufio"
	"encoding/csv"
	"io"
	"math"
	"strings"

	"github.com/pilosa/opc"
	"github.com/pkg/errors"
)

// Column names of the legacy survey export.
const (
	LegacyCID              = "CID"
	LegacyDilution         = "Odor dilution"
	LegacyChallengeSubject = "Subject # (DREAM challenge)"
	LegacyStudySubject     = "Subject # (this study)"
	LegacyIntensity        = "HOW STRONG IS THE SMELL?"
	LegacyPleasantness     = "HOW PLEASANT IS THE SMELL?"
	LegacyFamiliarity      = "HOW FAMILIAR IS THE SMELL?"
)

// DefaultLegacyHeaderOffset is the number of preamble lines above the header
// row of the legacy survey export.
const DefaultLegacyHeaderOffset = 2

// DefaultChallengeMolecules is the number of molecules across the training,
// leaderboard and test releases.
const DefaultChallengeMolecules = 476

// LegacyOptions control FormatLegacy.
type LegacyOptions struct {
	// Scheme selects which subject column is used. SchemeRestricted keeps
	// only subjects who took part in the challenge.
	Scheme opc.SubjectScheme
	// Familiarity adds the familiarity question as a 22nd descriptor.
	Familiarity bool
	// ChallengeCIDs, when not nil, restricts the output to these compounds.
	ChallengeCIDs map[int]struct{}
	// ExpectedMolecules is the required size of ChallengeCIDs. 0 disables
	// the check.
	ExpectedMolecules int
	// HeaderOffset is the number of lines preceding the header row.
	HeaderOffset int
	// Comma is the field delimiter of the export. Defaults to tab.
	Comma  rune
	Logger opc.Logger
}

// NewLegacyOptions returns the options used for the challenge analyses.
func NewLegacyOptions() LegacyOptions {
	return LegacyOptions{
		Scheme:            opc.SchemeRestricted,
		ExpectedMolecules: DefaultChallengeMolecules,
		HeaderOffset:      DefaultLegacyHeaderOffset,
		Comma:             '\t',
	}
}

// LegacyDescriptors returns the descriptors of the legacy survey: the
// challenge descriptors with the intensity and pleasantness questions under
// their survey column names, plus familiarity if requested.
func LegacyDescriptors(familiarity bool) []opc.Descriptor {
	ds := opc.DefaultDescriptors()
	ds[0].Header = LegacyIntensity
	ds[1].Header = LegacyPleasantness
	if familiarity {
		ds = append(ds, opc.Descriptor{Header: LegacyFamiliarity, Name: opc.Familiarity})
	}
	return ds
}

// FormatLegacy reads the delimited export of the legacy survey and formats it
// like the challenge releases. Subjects are reconciled according to the
// scheme, compound ids are corrected, missing ratings are filled with 0 for
// presentations whose intensity is positive, and repeated presentations are
// flagged as replicates.
func FormatLegacy(r io.Reader, opts LegacyOptions) (*Table, error) {
	log := opc.LoggerOr(opts.Logger)
	if opts.ChallengeCIDs != nil && opts.ExpectedMolecules > 0 && len(opts.ChallengeCIDs) != opts.ExpectedMolecules {
		return nil, opc.Integrityf("expected %d challenge molecules, got %d", opts.ExpectedMolecules, len(opts.ChallengeCIDs))
	}
	// The preamble may contain blank lines, which csv.Reader would skip.
	br := bufio.NewReader(r)
	line := 0
	for ; line < opts.HeaderOffset; line++ {
		if _, err := br.ReadString('\n'); err == io.EOF {
			return nil, &opc.FormatError{What: "legacy header", Value: "missing", Line: line + 1}
		} else if err != nil {
			return nil, errors.Wrapf(err, "skipping preamble line %d", line+1)
		}
	}
	reader := csv.NewReader(br)
	reader.Comma = '\t'
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &opc.FormatError{What: "legacy header", Value: "missing", Line: line + 1}
	} else if err != nil {
		return nil, errors.Wrap(err, "reading legacy header")
	}
	line++
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	ds := LegacyDescriptors(opts.Familiarity)
	required := []string{LegacyCID, LegacyDilution, LegacyChallengeSubject, LegacyStudySubject}
	idx := make([]int, len(required))
	for j, name := range required {
		i, ok := cols[name]
		if !ok {
			return nil, &opc.FormatError{What: "legacy header", Value: name, Line: line}
		}
		idx[j] = i
	}
	descCols := make([]int, len(ds))
	for j, d := range ds {
		i, ok := cols[d.Header]
		if !ok {
			return nil, &opc.FormatError{What: "legacy header", Value: d.Header, Line: line}
		}
		descCols[j] = i
	}

	var rows []opc.Row
	dropped := 0
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Wrapf(err, "reading legacy line %d", line+1)
		}
		line++
		row, keep, err := legacyRow(fields, idx[0], idx[1], idx[2], idx[3], descCols, opts)
		if err != nil {
			return nil, withLine(err, line)
		}
		if !keep {
			dropped++
			continue
		}
		rows = append(rows, row)
	}
	log.Debugf("legacy survey: %d rows kept, %d dropped", len(rows), dropped)

	rows, err = PromoteReplicates(rows, opts.Scheme, log)
	if err != nil {
		return nil, errors.Wrap(err, "formatting legacy survey")
	}
	return &Table{Descriptors: ds, rows: rows}, nil
}

func legacyRow(fields []string, cidCol, dilCol, challengeCol, studyCol int, descCols []int, opts LegacyOptions) (opc.Row, bool, error) {
	get := func(i int) string {
		if i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}
	subject, ok, err := opc.ReconcileSubject(opc.SubjectFields{Challenge: get(challengeCol), Study: get(studyCol)}, opts.Scheme)
	if err != nil || !ok {
		return opc.Row{}, false, err
	}
	cid, err := opc.ReconcileCID(get(cidCol))
	if err != nil {
		return opc.Row{}, false, err
	}
	if opts.ChallengeCIDs != nil {
		if _, ok := opts.ChallengeCIDs[cid]; !ok {
			return opc.Row{}, false, nil
		}
	}
	values := make([]float64, len(descCols))
	for j, c := range descCols {
		v, err := ParseValue(get(c))
		if err != nil {
			return opc.Row{}, false, opc.NewFormatError("rating", get(c))
		}
		values[j] = v
	}
	if values[0] > 0 {
		for j, v := range values {
			if math.IsNaN(v) {
				values[j] = 0
			}
		}
	}
	ratio := get(dilCol)
	dil, err := opc.ParseDilution(ratio)
	if err != nil {
		return opc.Row{}, false, err
	}
	return opc.Row{
		CID:      cid,
		Ratio:    ratio,
		Dilution: dil,
		Subject:  subject,
		Values:   values,
	}, true, nil
}
