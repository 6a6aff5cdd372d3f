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

// Package predict writes prediction files in the two challenge layouts and
// reads them back.
package predict

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pilosa/opc"
	"github.com/pkg/errors"
)

// Variant selects a prediction file layout. Its value is the subchallenge
// number.
type Variant int

const (
	// VariantA has one row per compound, subject and descriptor.
	VariantA Variant = 1
	// VariantB has one row per compound and descriptor with a mean and a
	// standard deviation.
	VariantB Variant = 2
)

var headers = map[Variant][]string{
	VariantA: {"#oID", "individual", "descriptor", "value"},
	VariantB: {"#oID", "descriptor", "value", "std"},
}

// ParseVariant parses a subchallenge number.
func ParseVariant(n int) (Variant, error) {
	v := Variant(n)
	if _, ok := headers[v]; !ok {
		return 0, opc.NewFormatError("subchallenge", strconv.Itoa(n))
	}
	return v, nil
}

// Key identifies one prediction. Subject is 0 for population predictions.
// Descriptor is the display name of the descriptor.
type Key struct {
	CID        int
	Subject    int
	Descriptor string
}

// Predictions holds predicted values, and for VariantB their standard
// deviations.
type Predictions struct {
	Value map[Key]float64
	Std   map[Key]float64
}

// NewPredictions returns empty Predictions.
func NewPredictions() *Predictions {
	return &Predictions{Value: make(map[Key]float64), Std: make(map[Key]float64)}
}

// Round rounds v to 3 decimal digits.
func Round(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func format(v float64) string {
	return strconv.FormatFloat(Round(v), 'f', -1, 64)
}

// Writer writes prediction files.
type Writer struct {
	Variant     Variant
	CIDs        []int
	Descriptors []opc.Descriptor
	// Subjects is the number of subjects of VariantA files.
	Subjects int
}

// Keys returns the keys of the rows a file written by pw holds, in row
// order: by subject (VariantA only), then descriptor in the order of
// Descriptors, then compound id in the order of CIDs.
func (pw *Writer) Keys() []Key {
	subjects := []int{0}
	if pw.Variant == VariantA {
		subjects = subjects[:0]
		for s := 1; s <= pw.Subjects; s++ {
			subjects = append(subjects, s)
		}
	}
	keys := make([]Key, 0, len(subjects)*len(pw.Descriptors)*len(pw.CIDs))
	for _, s := range subjects {
		for _, d := range pw.Descriptors {
			for _, cid := range pw.CIDs {
				keys = append(keys, Key{CID: cid, Subject: s, Descriptor: d.Name})
			}
		}
	}
	return keys
}

// Missing returns the keys of pw for which p lacks a value, or for VariantB a
// standard deviation.
func (pw *Writer) Missing(p *Predictions) []Key {
	var missing []Key
	for _, k := range pw.Keys() {
		if !present(p.Value, k) || (pw.Variant == VariantB && !present(p.Std, k)) {
			missing = append(missing, k)
		}
	}
	return missing
}

func present(m map[Key]float64, k Key) bool {
	v, ok := m[k]
	return ok && !math.IsNaN(v)
}

// Write writes p to w in the order of Keys. A missing or NaN prediction is an
// *opc.IntegrityError.
func (pw *Writer) Write(w io.Writer, p *Predictions) error {
	header, ok := headers[pw.Variant]
	if !ok {
		return opc.NewFormatError("subchallenge", strconv.Itoa(int(pw.Variant)))
	}
	if missing := pw.Missing(p); len(missing) > 0 {
		k := missing[0]
		return opc.Integrityf("%d predictions missing, first for CID %d subject %d %s", len(missing), k.CID, k.Subject, k.Descriptor)
	}
	names := make(map[string]string, len(pw.Descriptors))
	for _, d := range pw.Descriptors {
		names[d.Name] = d.Header
	}
	writer := csv.NewWriter(w)
	writer.Comma = '\t'
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for _, k := range pw.Keys() {
		rec := []string{strconv.Itoa(k.CID)}
		if pw.Variant == VariantA {
			rec = append(rec, strconv.Itoa(k.Subject))
		}
		rec = append(rec, names[k.Descriptor], format(p.Value[k]))
		if pw.Variant == VariantB {
			rec = append(rec, format(p.Std[k]))
		}
		if err := writer.Write(rec); err != nil {
			return errors.Wrap(err, "writing row")
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "flushing")
}

// FileName returns the name of the prediction file of a run.
func FileName(v Variant, kind opc.Kind, name string) string {
	return fmt.Sprintf("challenge_%d_%s_%s.txt", int(v), kind, name)
}

// WriteFile writes p to the prediction directory of cfg and returns the
// path written.
func (pw *Writer) WriteFile(cfg opc.Config, kind opc.Kind, name string, p *Predictions) (path string, err error) {
	dir := cfg.PredictionDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, "making prediction dir")
	}
	path = filepath.Join(dir, FileName(pw.Variant, kind, name))
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "creating prediction file")
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "closing prediction file")
		}
	}()
	return path, pw.Write(f, p)
}

// Read parses a prediction file of variant v. Descriptor headers are mapped
// back to display names through ds.
func Read(r io.Reader, v Variant, ds []opc.Descriptor) (*Predictions, error) {
	header, ok := headers[v]
	if !ok {
		return nil, opc.NewFormatError("subchallenge", strconv.Itoa(int(v)))
	}
	names := make(map[string]string, len(ds))
	for _, d := range ds {
		names[d.Header] = d.Name
	}
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = len(header)
	got, err := reader.Read()
	if err == io.EOF {
		return nil, &opc.FormatError{What: "prediction file", Value: "empty", Line: 1}
	} else if err != nil {
		return nil, errors.Wrap(err, "reading header")
	}
	for i := range header {
		if got[i] != header[i] {
			return nil, &opc.FormatError{What: "prediction header", Value: got[i], Line: 1}
		}
	}

	p := NewPredictions()
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Wrapf(err, "reading line %d", line)
		}
		var k Key
		if k.CID, err = strconv.Atoi(rec[0]); err != nil {
			return nil, &opc.FormatError{What: "compound id", Value: rec[0], Line: line}
		}
		rest := rec[1:]
		if v == VariantA {
			if k.Subject, err = strconv.Atoi(rest[0]); err != nil {
				return nil, &opc.FormatError{What: "subject", Value: rest[0], Line: line}
			}
			rest = rest[1:]
		}
		name, ok := names[rest[0]]
		if !ok {
			return nil, &opc.FormatError{What: "descriptor", Value: rest[0], Line: line}
		}
		k.Descriptor = name
		if p.Value[k], err = strconv.ParseFloat(rest[1], 64); err != nil {
			return nil, &opc.FormatError{What: "value", Value: rest[1], Line: line}
		}
		if v == VariantB {
			if p.Std[k], err = strconv.ParseFloat(rest[2], 64); err != nil {
				return nil, &opc.FormatError{What: "std", Value: rest[2], Line: line}
			}
		}
	}
	return p, nil
}
