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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pilosa/opc"
	"github.com/pilosa/opc/perceptual"
	"github.com/pilosa/opc/test"
)

const trainSet = header + "\n" +
	"1\ta\t\thigh\t'1/10'\t1\t10\t10\t10\n" +
	"1\ta\t\thigh\t'1/10'\t1\t11\t11\t11\n" +
	"2\tb\t\tlow\t'1/1,000'\t1\t20\t20\t20\n"

const leaderboardSet = header + "\n" +
	"3\tN/A\t0\thigh\t'1/10'\t1\t30\t31\t32\n"

func TestLoader(t *testing.T) {
	dir := test.TempDir(t)
	test.WriteFile(t, dir, "TrainSet.txt", trainSet)
	test.WriteFile(t, dir, "LeaderboardSet.txt", leaderboardSet)
	l := perceptual.NewLoader(opc.NewConfig(dir))

	training, err := l.Load(opc.Training)
	test.ErrNil(t, err, "loading training")
	test.MustBe(t, 3, training.Len())
	test.MustBe(t, opc.Training, training.Kind)

	many, err := l.LoadMany(opc.Training, opc.Leaderboard)
	test.ErrNil(t, err, "loading many")
	test.MustBe(t, 5, many.Len())

	hs, err := l.Headers()
	test.ErrNil(t, err, "getting headers")
	test.MustBe(t, strings.Split(header, "\t"), hs)

	ds, err := l.Descriptors()
	test.ErrNil(t, err, "getting descriptors")
	test.MustBe(t, []string{"Intensity", "Pleasantness", "Bakery"}, opc.DescriptorNames(ds))

	_, err = l.Load(opc.TestSet)
	if !opc.IsMissingResource(err) {
		t.Fatalf("expected missing resource, got %v", err)
	}
}

func TestPreformatLeaderboard(t *testing.T) {
	long := "#oID\tindividual\tdescriptor\tvalue\n" +
		"2\t1\tBAKERY\t5\n" +
		"1\t2\tINTENSITY/STRENGTH\t40\n" +
		"1\t1\tVALENCE/PLEASANTNESS \t60\n" +
		"1\t1\tINTENSITY/STRENGTH\t30\n"
	dils := "CID\tDilution\n1\t'1/10'\n2\t'1/100,000'\n"
	var out strings.Builder
	err := perceptual.Preformat(opc.Leaderboard, strings.Split(header, "\t"), strings.NewReader(long), strings.NewReader(dils), &out)
	test.ErrNil(t, err, "preformatting")
	exp := header + "\n" +
		"1\tN/A\t0\thigh\t'1/10'\t1\t30\t60\tNaN\n" +
		"1\tN/A\t0\thigh\t'1/10'\t2\t40\tNaN\tNaN\n" +
		"2\tN/A\t0\tlow\t'1/100,000'\t1\tNaN\tNaN\t5\n"
	test.MustBe(t, exp, out.String())
}

func TestPreformatTestSet(t *testing.T) {
	long := "#oID\tindividual\tdescriptor\tvalue\n" +
		"3\t1\tBAKERY\t5\n" +
		"4\t1\tBAKERY\t6\n"
	dils := "CID\tDilution\n3\t'1/100,000'\n4\t'1/10'\n"
	var out strings.Builder
	err := perceptual.Preformat(opc.TestSet, strings.Split(header, "\t"), strings.NewReader(long), strings.NewReader(dils), &out)
	test.ErrNil(t, err, "preformatting")
	exp := header + "\n" +
		"3\tN/A\t0\thigh\t'1/1,000'\t1\tNaN\tNaN\t5\n" +
		"4\tN/A\t0\thigh\t'1/10'\t1\tNaN\tNaN\t6\n"
	test.MustBe(t, exp, out.String())
}

func TestPreformatErrors(t *testing.T) {
	h := strings.Split(header, "\t")
	long := "#oID\tindividual\tdescriptor\tvalue\n5\t1\tBAKERY\t5\n"
	err := perceptual.Preformat(opc.TestSet, h, strings.NewReader(long), strings.NewReader("CID\tDilution\n"), &strings.Builder{})
	if !opc.IsIntegrityError(err) {
		t.Fatalf("expected IntegrityError for missing dilution, got %v", err)
	}

	long = "#oID\tindividual\tdescriptor\tvalue\n5\t1\tSMOKY\t5\n"
	err = perceptual.Preformat(opc.TestSet, h, strings.NewReader(long), strings.NewReader("CID\tDilution\n5\t'1/10'\n"), &strings.Builder{})
	if !opc.IsFormatError(err) {
		t.Fatalf("expected FormatError for unknown descriptor, got %v", err)
	}

	err = perceptual.Preformat(opc.Training, h, strings.NewReader(long), strings.NewReader(""), &strings.Builder{})
	if !opc.IsFormatError(err) {
		t.Fatalf("expected FormatError for training kind, got %v", err)
	}
}

func TestLoaderPreformat(t *testing.T) {
	dir := test.TempDir(t)
	test.WriteFile(t, dir, "TrainSet.txt", trainSet)
	test.WriteFile(t, dir, "GS.txt", "#oID\tindividual\tdescriptor\tvalue\n3\t1\tINTENSITY/STRENGTH\t5\n3\t1\tBAKERY\t7\n")
	test.WriteFile(t, dir, "dilution_testset.txt", "CID\tDilution\n3\t'1/10'\n")
	l := perceptual.NewLoader(opc.NewConfig(dir))

	path, err := l.Preformat(opc.TestSet)
	test.ErrNil(t, err, "preformatting")
	test.MustBe(t, filepath.Join(dir, "TestSet.txt"), path)
	if _, err := os.Stat(filepath.Join(dir, ".TestSet.txt.tmp")); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}

	tbl, err := l.Load(opc.TestSet)
	test.ErrNil(t, err, "loading preformatted testset")
	rows := tbl.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected split into 2 rows, got %d", len(rows))
	}
	test.FloatsEqual(t, []float64{5, nan, nan}, rows[0].Values, "intensity row")
	test.FloatsEqual(t, []float64{nan, nan, 7}, rows[1].Values, "descriptor row")
	test.MustBe(t, opc.Low, rows[1].Label)
}
