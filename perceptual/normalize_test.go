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
	"github.com/pilosa/opc/mock"
	"github.com/pilosa/opc/perceptual"
	"github.com/pilosa/opc/test"
)

const header = "Compound Identifier\tOdor\tReplicate\tIntensity\tDilution\tsubject #\tINTENSITY/STRENGTH\tVALENCE/PLEASANTNESS\tBAKERY"

var nan = math.NaN()

func parse(t *testing.T, data string) ([]string, [][]string) {
	t.Helper()
	h, raw, err := perceptual.ReadAll(perceptual.NewTSVReader(strings.NewReader(data)))
	if err != nil {
		t.Fatalf("reading: %v", err)
	}
	return h, raw
}

func normalize(t *testing.T, kind opc.Kind, data string, scheme opc.SubjectScheme) *perceptual.Table {
	t.Helper()
	h, raw := parse(t, data)
	tbl, err := perceptual.Normalize(kind, h, raw, perceptual.Options{Scheme: scheme})
	if err != nil {
		t.Fatalf("normalizing %s: %v", kind, err)
	}
	return tbl
}

func TestNormalizeSplitsHeldOutRow(t *testing.T) {
	data := header + "\n" +
		"1234\tN/A\t\thigh\t'1/10'\t7\t3.5\tNaN\t2.0\n"
	rows := normalize(t, opc.TestSet, data, opc.SchemeRestricted).Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d: %v", len(rows), rows)
	}

	test.MustBe(t, 1234, rows[0].CID)
	test.MustBe(t, opc.Dilution(-1), rows[0].Dilution)
	test.MustBe(t, opc.High, rows[0].Label)
	test.MustBe(t, 7, rows[0].Subject)
	test.FloatsEqual(t, []float64{3.5, nan, nan}, rows[0].Values, "intensity row")

	test.MustBe(t, opc.Dilution(-3), rows[1].Dilution)
	test.MustBe(t, opc.Low, rows[1].Label)
	test.MustBe(t, "'1/1,000'", rows[1].Ratio)
	test.FloatsEqual(t, []float64{nan, nan, 2.0}, rows[1].Values, "descriptor row")

	for _, r := range rows {
		if r.Replicate {
			t.Fatalf("split rows must not be replicates: %v", r)
		}
	}
}

func TestNormalizeKeepsHeldOutIntensityDilution(t *testing.T) {
	data := header + "\n" +
		"1234\tN/A\t\thigh\t'1/1,000'\t7\t3.5\t10\t2.0\n"
	rows := normalize(t, opc.TestSet, data, opc.SchemeRestricted).Rows()
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d: %v", len(rows), rows)
	}
	test.FloatsEqual(t, []float64{3.5, 10, 2.0}, rows[0].Values, "values")
	test.MustBe(t, opc.High, rows[0].Label)
}

func TestNormalizeLeaderboard(t *testing.T) {
	data := header + "\n" +
		"20\tN/A\t0\thigh\t'1/10'\t1\t50\t20\t5\n" +
		"21\tN/A\t0\tlow\t'1/1,000'\t1\t50\t20\t5\n"
	rows := normalize(t, opc.Leaderboard, data, opc.SchemeRestricted).Rows()
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d: %v", len(rows), rows)
	}
	test.MustBe(t, opc.Pair{CID: 20, Dilution: -1}, rows[0].Pair())
	test.MustBe(t, opc.Pair{CID: 20, Dilution: -3}, rows[1].Pair())
	test.MustBe(t, opc.Low, rows[1].Label)
	// already at the intensity dilution: both halves share a key and stay whole
	test.MustBe(t, opc.Pair{CID: 21, Dilution: -3}, rows[2].Pair())
	test.MustBe(t, opc.Low, rows[2].Label)
	test.FloatsEqual(t, []float64{50, 20, 5}, rows[2].Values, "merged row")
}

func TestNormalizeTrainingUnchanged(t *testing.T) {
	data := header + "\n" +
		" 126 \t vanillin \t\thigh\t'1/10'\t 3 \t49\t70\t12\n"
	rows := normalize(t, opc.Training, data, opc.SchemeRestricted).Rows()
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	test.MustBe(t, 126, r.CID)
	test.MustBe(t, "vanillin", r.Odor)
	test.MustBe(t, 3, r.Subject)
	test.MustBe(t, opc.High, r.Label)
	test.FloatsEqual(t, []float64{49, 70, 12}, r.Values, "values")
}

func TestReplicatePromotion(t *testing.T) {
	line := "126\tvanillin\t\thigh\t'1/10'\t3\t49\t70\t12\n"
	rows := normalize(t, opc.Training, header+"\n"+line+line, opc.SchemeRestricted).Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	test.MustBe(t, false, rows[0].Replicate, "first")
	test.MustBe(t, true, rows[1].Replicate, "second")
}

func TestReplicateMarkerBeforeOriginal(t *testing.T) {
	data := header + "\n" +
		"126\tvanillin\treplicate\thigh\t'1/10'\t3\t48\t71\t12\n" +
		"126\tvanillin\t\thigh\t'1/10'\t3\t49\t70\t12\n"
	rows := normalize(t, opc.Training, data, opc.SchemeRestricted).Rows()
	test.MustBe(t, true, rows[0].Replicate, "marked")
	test.MustBe(t, false, rows[1].Replicate, "original")
}

func TestDuplicateKeys(t *testing.T) {
	line := "126\tvanillin\t\thigh\t'1/10'\t3\t49\t70\t12\n"
	data := header + "\n" + line + line + line
	h, raw := parse(t, data)

	_, err := perceptual.Normalize(opc.Training, h, raw, perceptual.Options{Scheme: opc.SchemeRestricted})
	if !opc.IsIntegrityError(err) {
		t.Fatalf("expected IntegrityError, got %v", err)
	}

	logger := &mock.RecordingLogger{}
	tbl, err := perceptual.Normalize(opc.Training, h, raw, perceptual.Options{Scheme: opc.SchemeFull, Logger: logger})
	test.ErrNil(t, err, "normalizing under full scheme")
	test.MustBe(t, 2, tbl.Len())
	if !logger.Contains("dropped 1 rows") {
		t.Fatalf("expected drop to be logged, got %v", logger.Lines)
	}
}

func TestFilterKinds(t *testing.T) {
	data := header + "\n" +
		"1\ta\t\thigh\t'1/10'\t1\t10\t10\t10\n" +
		"1\ta\t\thigh\t'1/10'\t1\t11\t11\t11\n" +
		"1\ta\t\tlow\t'1/1,000'\t1\t5\t5\t5\n" +
		"2\tb\t\thigh\t'1/10'\t1\t20\t20\t20\n"
	training := normalize(t, opc.Training, data, opc.SchemeRestricted)
	norep := normalize(t, opc.TrainingNoRep, data, opc.SchemeRestricted)
	replicated := normalize(t, opc.Replicated, data, opc.SchemeRestricted)

	test.MustBe(t, 4, training.Len())
	test.MustBe(t, []opc.Pair{{CID: 1, Dilution: -3}, {CID: 2, Dilution: -1}}, norep.Pairs())
	test.MustBe(t, []opc.Pair{{CID: 1, Dilution: -1}}, replicated.Pairs())
	test.MustBe(t, 2, replicated.Len())
	_, ok := training.ReplicatedPairs()[opc.Pair{CID: 1, Dilution: -1}]
	test.MustBe(t, true, ok)
}

func TestNormalizeFormatErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "rating", line: "1\ta\t\thigh\t'1/10'\t1\tten\t10\t10"},
		{name: "dilution", line: "1\ta\t\thigh\t'10'\t1\t10\t10\t10"},
		{name: "cid", line: "x\ta\t\thigh\t'1/10'\t1\t10\t10\t10"},
		{name: "width", line: "1\ta\t\thigh\t'1/10'\t1\t10\t10"},
	}
	for _, tst := range tests {
		data := header + "\n1\ta\t\thigh\t'1/10'\t1\t10\t10\t10\n" + tst.line + "\n"
		h, raw := parse(t, data)
		_, err := perceptual.Normalize(opc.Training, h, raw, perceptual.Options{})
		if !opc.IsFormatError(err) {
			t.Fatalf("%s: expected FormatError, got %v", tst.name, err)
		}
		if !strings.Contains(err.Error(), "line 3") {
			t.Fatalf("%s: expected line number in %q", tst.name, err)
		}
	}
}

func TestTableRecords(t *testing.T) {
	data := header + "\n" +
		"2\tb\t\thigh\t'1/10'\t1\t20\t21\t22\n" +
		"1\ta\t\thigh\t'1/10'\t2\t10\t11\t12\n" +
		"1\ta\t\thigh\t'1/10'\t1\t13\t14\t15\n"
	recs := normalize(t, opc.Training, data, opc.SchemeRestricted).Records()
	if len(recs) != 9 {
		t.Fatalf("expected 9 records, got %d", len(recs))
	}
	exp := []opc.Record{
		{Key: opc.Key{Descriptor: "Intensity", CID: 1, Dilution: -1, Subject: 1}, Value: 13},
		{Key: opc.Key{Descriptor: "Intensity", CID: 1, Dilution: -1, Subject: 2}, Value: 10},
		{Key: opc.Key{Descriptor: "Intensity", CID: 2, Dilution: -1, Subject: 1}, Value: 20},
		{Key: opc.Key{Descriptor: "Pleasantness", CID: 1, Dilution: -1, Subject: 1}, Value: 14},
	}
	test.MustBe(t, exp, recs[:4])
	test.MustBe(t, "Bakery", recs[8].Descriptor)
	test.MustBe(t, 22.0, recs[8].Value)
}

func TestTableRowsAreCopies(t *testing.T) {
	data := header + "\n1\ta\t\thigh\t'1/10'\t1\t10\t11\t12\n"
	tbl := normalize(t, opc.Training, data, opc.SchemeRestricted)
	rows := tbl.Rows()
	rows[0].Values[0] = 99
	test.MustBe(t, 10.0, tbl.Rows()[0].Values[0])
}
