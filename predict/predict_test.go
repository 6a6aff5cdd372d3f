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

package predict_test

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pilosa/opc"
	"github.com/pilosa/opc/predict"
	"github.com/pilosa/opc/test"
)

var ds = opc.NewDescriptors([]string{"INTENSITY/STRENGTH", "VALENCE/PLEASANTNESS"})

func individual() *predict.Predictions {
	p := predict.NewPredictions()
	for subject := 1; subject <= 2; subject++ {
		for i, d := range ds {
			for _, cid := range []int{5, 126} {
				p.Value[predict.Key{CID: cid, Subject: subject, Descriptor: d.Name}] = float64(cid)/7 + float64(subject*10+i)
			}
		}
	}
	return p
}

func TestWriteVariantA(t *testing.T) {
	w := &predict.Writer{Variant: predict.VariantA, CIDs: []int{5, 126}, Descriptors: ds, Subjects: 2}
	var buf bytes.Buffer
	test.ErrNil(t, w.Write(&buf, individual()), "writing")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	test.MustBe(t, 9, len(lines))
	test.MustBe(t, "#oID\tindividual\tdescriptor\tvalue", lines[0])
	test.MustBe(t, "5\t1\tINTENSITY/STRENGTH\t10.714", lines[1])
	test.MustBe(t, "126\t1\tINTENSITY/STRENGTH\t28", lines[2])
	test.MustBe(t, "5\t1\tVALENCE/PLEASANTNESS\t11.714", lines[3])
	test.MustBe(t, "5\t2\tINTENSITY/STRENGTH\t20.714", lines[5])
}

func TestRoundTrip(t *testing.T) {
	for _, v := range []predict.Variant{predict.VariantA, predict.VariantB} {
		p := individual()
		subjects := 2
		if v == predict.VariantB {
			subjects = 0
			p = predict.NewPredictions()
			for _, d := range ds {
				for _, cid := range []int{5, 126} {
					k := predict.Key{CID: cid, Descriptor: d.Name}
					p.Value[k] = float64(cid) / 3
					p.Std[k] = float64(cid) / 9
				}
			}
		}
		w := &predict.Writer{Variant: v, CIDs: []int{5, 126}, Descriptors: ds, Subjects: subjects}
		var buf bytes.Buffer
		test.ErrNil(t, w.Write(&buf, p), "writing")
		got, err := predict.Read(&buf, v, ds)
		test.ErrNil(t, err, "reading")
		test.MustBe(t, len(p.Value), len(got.Value))
		for k, val := range p.Value {
			if got.Value[k] != predict.Round(val) {
				t.Fatalf("variant %d %v: %v != rounded %v", v, k, got.Value[k], predict.Round(val))
			}
		}
		for k, std := range p.Std {
			if got.Std[k] != predict.Round(std) {
				t.Fatalf("variant %d %v: std %v != rounded %v", v, k, got.Std[k], predict.Round(std))
			}
		}
	}
}

func TestWriteMissingPrediction(t *testing.T) {
	p := individual()
	p.Value[predict.Key{CID: 126, Subject: 2, Descriptor: "Pleasantness"}] = math.NaN()
	w := &predict.Writer{Variant: predict.VariantA, CIDs: []int{5, 126}, Descriptors: ds, Subjects: 2}
	if err := w.Write(&bytes.Buffer{}, p); !opc.IsIntegrityError(err) {
		t.Fatalf("expected IntegrityError, got %v", err)
	}
	w = &predict.Writer{Variant: predict.VariantB, CIDs: []int{5}, Descriptors: ds}
	if err := w.Write(&bytes.Buffer{}, p); !opc.IsIntegrityError(err) {
		t.Fatalf("expected IntegrityError for missing population prediction, got %v", err)
	}
}

func TestWriteFile(t *testing.T) {
	dir := test.TempDir(t)
	cfg := opc.NewConfig(filepath.Join(dir, "data"))
	w := &predict.Writer{Variant: predict.VariantA, CIDs: []int{5, 126}, Descriptors: ds, Subjects: 2}
	path, err := w.WriteFile(cfg, opc.Leaderboard, "run1", individual())
	test.ErrNil(t, err, "writing file")
	test.MustBe(t, filepath.Join(dir, "predictions", "challenge_1_leaderboard_run1.txt"), path)
	f, err := os.Open(path)
	test.ErrNil(t, err, "opening")
	defer f.Close()
	got, err := predict.Read(f, predict.VariantA, ds)
	test.ErrNil(t, err, "reading")
	test.MustBe(t, 8, len(got.Value))
}

func TestReadErrors(t *testing.T) {
	if _, err := predict.Read(strings.NewReader("#oID\tdescriptor\tvalue\tstd\n"), predict.VariantA, ds); !opc.IsFormatError(err) {
		t.Fatalf("expected FormatError for wrong header, got %v", err)
	}
	data := "#oID\tdescriptor\tvalue\tstd\n5\tGARLIC\t1\t2\n"
	if _, err := predict.Read(strings.NewReader(data), predict.VariantB, ds); !opc.IsFormatError(err) {
		t.Fatalf("expected FormatError for unknown descriptor, got %v", err)
	}
	if _, err := predict.ParseVariant(3); !opc.IsFormatError(err) {
		t.Fatalf("expected FormatError for subchallenge 3, got %v", err)
	}
}

func TestMissing(t *testing.T) {
	w := &predict.Writer{Variant: predict.VariantB, CIDs: []int{5}, Descriptors: ds}
	p := predict.NewPredictions()
	p.Value[predict.Key{CID: 5, Descriptor: "Intensity"}] = 1
	p.Std[predict.Key{CID: 5, Descriptor: "Intensity"}] = 0.5
	p.Value[predict.Key{CID: 5, Descriptor: "Pleasantness"}] = 2
	test.MustBe(t, []predict.Key{{CID: 5, Descriptor: "Pleasantness"}}, w.Missing(p))
	test.MustBe(t, 2, len(w.Keys()))
}
