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
	"testing"

	"github.com/pilosa/opc"
	"github.com/pilosa/opc/perceptual"
	"github.com/pilosa/opc/test"
)

func matrixTable() *perceptual.Table {
	ds := opc.NewDescriptors([]string{"INTENSITY/STRENGTH", "VALENCE/PLEASANTNESS", "BAKERY"})
	return perceptual.NewTable(opc.Training, ds, []opc.Row{
		{CID: 10, Label: opc.High, Dilution: -3, Subject: 1, Values: []float64{1, 2, 3}},
		{CID: 10, Label: opc.High, Dilution: -3, Subject: 1, Replicate: true, Values: []float64{4, nan, 6}},
		{CID: 10, Label: opc.Low, Dilution: -1, Subject: 2, Values: []float64{7, 8, 9}},
	})
}

func TestDataMatrix(t *testing.T) {
	m, err := perceptual.NewDataMatrix(matrixTable(), []int{10}, perceptual.MatrixOptions{Subjects: 2})
	test.ErrNil(t, err, "building matrix")
	test.MustBe(t, [5]int{2, 1, 3, 4, 2}, m.Shape())
	test.MustBe(t, 8, m.Count())

	v, ok := m.At(1, 0, 0, 1, false)
	test.MustBe(t, true, ok)
	test.MustBe(t, 1.0, v)
	v, ok = m.At(1, 0, 2, 1, true)
	test.MustBe(t, true, ok)
	test.MustBe(t, 6.0, v)
	_, ok = m.At(1, 0, 1, 1, true)
	test.MustBe(t, false, ok, "missing rating is masked")
	_, ok = m.At(2, 0, 0, 1, false)
	test.MustBe(t, false, ok, "unobserved cell is masked")
	_, ok = m.At(3, 0, 0, 1, false)
	test.MustBe(t, false, ok, "out of range")

	mean, ok := m.Mean(0)
	test.MustBe(t, true, ok)
	test.MustBe(t, 4.0, mean)
}

func TestDataMatrixGoldStandard(t *testing.T) {
	m, err := perceptual.NewDataMatrix(matrixTable(), []int{10}, perceptual.MatrixOptions{Subjects: 2, GoldStandardOnly: true})
	test.ErrNil(t, err, "building matrix")
	test.MustBe(t, 5, m.Count())
	_, ok := m.At(2, 0, 0, 0, false)
	test.MustBe(t, false, ok, "intensity off 1/1,000")
}

func TestDataMatrixOnlyReplicates(t *testing.T) {
	m, err := perceptual.NewDataMatrix(matrixTable(), []int{10}, perceptual.MatrixOptions{Subjects: 2, OnlyReplicates: true})
	test.ErrNil(t, err, "building matrix")
	test.MustBe(t, 4, m.Count())
	_, ok := m.At(1, 0, 1, 1, false)
	test.MustBe(t, false, ok, "original without replicate")
}

func TestDataMatrixErrors(t *testing.T) {
	if _, err := perceptual.NewDataMatrix(matrixTable(), []int{11}, perceptual.MatrixOptions{Subjects: 2}); !opc.IsIntegrityError(err) {
		t.Fatalf("expected IntegrityError for unknown CID, got %v", err)
	}
	if _, err := perceptual.NewDataMatrix(matrixTable(), []int{10}, perceptual.MatrixOptions{Subjects: 1}); !opc.IsIntegrityError(err) {
		t.Fatalf("expected IntegrityError for subject out of range, got %v", err)
	}
	odd := perceptual.NewTable(opc.Training, opc.DefaultDescriptors()[:1], []opc.Row{
		{CID: 10, Ratio: "1/250", Dilution: opc.MustParseDilution("1/250"), Subject: 1, Values: []float64{1}},
	})
	if _, err := perceptual.NewDataMatrix(odd, []int{10}, perceptual.MatrixOptions{}); !opc.IsFormatError(err) {
		t.Fatalf("expected FormatError for unranked dilution, got %v", err)
	}
}
