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

package perceptual_test

import (
	"math"
	"strings"
	"testing"

	"github.com/pilosa/opc"
	"github.com/pilosa/opc/perceptual"
	"github.com/pilosa/opc/test"
)

// legacyExport builds a legacy survey export with the given data lines. Each
// line holds CID, dilution, challenge subject, study subject, then one value
// per descriptor (missing values are filled with blanks).
func legacyExport(familiarity bool, lines ...[]string) string {
	ds := perceptual.LegacyDescriptors(familiarity)
	cols := []string{" CID ", "Odor dilution", "Subject # (DREAM challenge)", "Subject # (this study)"}
	for _, d := range ds {
		cols = append(cols, d.Header)
	}
	var b strings.Builder
	b.WriteString("Supplementary table 1\n\n")
	b.WriteString(strings.Join(cols, "\t") + "\n")
	for _, l := range lines {
		fields := make([]string, len(cols))
		copy(fields, l)
		b.WriteString(strings.Join(fields, "\t") + "\n")
	}
	return b.String()
}

func TestFormatLegacy(t *testing.T) {
	data := legacyExport(false,
		[]string{"126", "1/10", "3", "40", "50", "60", "7"},
		[]string{"3796-70-1", "1/1,000", "3", "40", "0", "", "2"},
		[]string{"126", "1/10", "3", "40", "55", "61"},
		[]string{"126", "1/10", "", "41", "10"},
	)
	opts := perceptual.NewLegacyOptions()
	opts.ExpectedMolecules = 0
	tbl, err := perceptual.FormatLegacy(strings.NewReader(data), opts)
	test.ErrNil(t, err, "formatting legacy survey")
	rows := tbl.Rows()
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d: %v", len(rows), rows)
	}
	test.MustBe(t, opc.NumDescriptors, len(tbl.Descriptors))

	test.MustBe(t, 126, rows[0].CID)
	test.MustBe(t, 3, rows[0].Subject)
	test.MustBe(t, opc.Dilution(-1), rows[0].Dilution)
	test.MustBe(t, false, rows[0].Replicate)
	test.MustBe(t, 50.0, rows[0].Values[0])
	test.MustBe(t, 7.0, rows[0].Values[2])
	// intensity > 0: blanks filled with zero
	test.MustBe(t, 0.0, rows[0].Values[20])

	test.MustBe(t, 1549778, rows[1].CID)
	test.MustBe(t, true, math.IsNaN(rows[1].Values[1]), "zero intensity leaves blanks missing")

	test.MustBe(t, true, rows[2].Replicate)
}

func TestFormatLegacyFullScheme(t *testing.T) {
	data := legacyExport(true,
		[]string{"126", "1/10", "3", "40", "50"},
		[]string{"126", "1/10", "", "41", "10"},
	)
	opts := perceptual.NewLegacyOptions()
	opts.Scheme = opc.SchemeFull
	opts.Familiarity = true
	opts.ExpectedMolecules = 0
	tbl, err := perceptual.FormatLegacy(strings.NewReader(data), opts)
	test.ErrNil(t, err, "formatting legacy survey")
	rows := tbl.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	test.MustBe(t, 40, rows[0].Subject)
	test.MustBe(t, 41, rows[1].Subject)
	test.MustBe(t, opc.Familiarity, tbl.Descriptors[21].Name)
}

func TestFormatLegacyChallengeMolecules(t *testing.T) {
	data := legacyExport(false,
		[]string{"126", "1/10", "3", "40", "50"},
		[]string{"8038", "1/10", "3", "40", "50"},
		[]string{"109-19-0", "1/1,000", "3", "40", "50"},
	)
	opts := perceptual.NewLegacyOptions()
	opts.ChallengeCIDs = map[int]struct{}{8038: {}}
	_, err := perceptual.FormatLegacy(strings.NewReader(data), opts)
	if !opc.IsIntegrityError(err) {
		t.Fatalf("expected IntegrityError for wrong molecule count, got %v", err)
	}

	opts.ExpectedMolecules = 1
	tbl, err := perceptual.FormatLegacy(strings.NewReader(data), opts)
	test.ErrNil(t, err, "formatting legacy survey")
	test.MustBe(t, []opc.Pair{{CID: 8038, Dilution: -3}, {CID: 8038, Dilution: -1}}, tbl.Pairs())
}

func TestFormatLegacyMissingColumn(t *testing.T) {
	data := "\n\nCID\tOdor dilution\n126\t1/10\n"
	_, err := perceptual.FormatLegacy(strings.NewReader(data), perceptual.NewLegacyOptions())
	if !opc.IsFormatError(err) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}
