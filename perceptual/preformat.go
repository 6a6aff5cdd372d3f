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
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pilosa/opc"
	"github.com/pkg/errors"
)

// LongFileStem returns the name of the long-format release (one rating per
// line) the wide file of kind is built from.
func LongFileStem(kind opc.Kind) (string, error) {
	switch kind {
	case opc.Leaderboard:
		return "LBs1", nil
	case opc.TestSet:
		return "GS", nil
	}
	return "", opc.NewFormatError("preformat kind", string(kind))
}

type wideLine struct {
	cid, subject int
	mag          opc.Dilution
	fields       []string
}

// Preformat converts a long-format release of kind (compound id, subject,
// descriptor, value per line) into the wide layout of the training release.
// header is the training header, dilutions the per-compound dilution lookup
// for kind. Output lines are sorted by compound id, subject and magnitude.
func Preformat(kind opc.Kind, header []string, long, dilutions io.Reader, w io.Writer) error {
	if _, err := LongFileStem(kind); err != nil {
		return err
	}
	if len(header) <= MetadataColumns {
		return &opc.FormatError{What: "header", Value: strings.Join(header, "\t"), Line: 1}
	}
	descriptors := header[MetadataColumns:]
	descIndex := make(map[string]int, len(descriptors))
	for i, d := range descriptors {
		descIndex[strings.TrimSpace(d)] = i
	}
	dils, err := readDilutions(dilutions)
	if err != nil {
		return errors.Wrap(err, "reading dilutions")
	}

	_, raw, err := ReadAll(NewTSVReader(long))
	if err != nil {
		return errors.Wrap(err, "reading long release")
	}
	type lineID struct {
		cid, subject int
		mag          opc.Dilution
	}
	lines := make(map[lineID]*wideLine)
	for i, fields := range raw {
		lineNum := i + 2
		if len(fields) != 4 {
			return &opc.FormatError{What: "field count", Value: strconv.Itoa(len(fields)), Line: lineNum}
		}
		cid, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return &opc.FormatError{What: "compound id", Value: fields[0], Line: lineNum}
		}
		subject, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil {
			return &opc.FormatError{What: "subject", Value: fields[1], Line: lineNum}
		}
		dilution, ok := dils[cid]
		if !ok {
			return opc.Integrityf("no %s dilution for CID %d", kind, cid)
		}
		mag, err := opc.ParseDilution(dilution)
		if err != nil {
			return withLine(err, lineNum)
		}
		if kind == opc.TestSet && mag == -5 {
			dilution = intensityRatio
			mag = opc.IntensityDilution
		}
		// Both descriptor groups get the same label.
		high := kind == opc.TestSet || mag > opc.IntensityDilution
		label := opc.Low
		if high {
			label = opc.High
		}

		id := lineID{cid: cid, subject: subject, mag: mag}
		wl, ok := lines[id]
		if !ok {
			wl = &wideLine{cid: cid, subject: subject, mag: mag, fields: make([]string, len(header))}
			copy(wl.fields, []string{strconv.Itoa(cid), "N/A", "0", label, dilution, strconv.Itoa(subject)})
			for j := MetadataColumns; j < len(header); j++ {
				wl.fields[j] = "NaN"
			}
			lines[id] = wl
		}
		descriptor := strings.TrimSpace(fields[2])
		j, ok := descIndex[descriptor]
		if !ok {
			return &opc.FormatError{What: "descriptor", Value: descriptor, Line: lineNum}
		}
		wl.fields[MetadataColumns+j] = fields[3]
	}

	sorted := make([]*wideLine, 0, len(lines))
	for _, wl := range lines {
		sorted = append(sorted, wl)
	}
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.cid != b.cid {
			return a.cid < b.cid
		}
		if a.subject != b.subject {
			return a.subject < b.subject
		}
		return a.mag < b.mag
	})

	writer := csv.NewWriter(w)
	writer.Comma = '\t'
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for _, wl := range sorted {
		if err := writer.Write(wl.fields); err != nil {
			return errors.Wrap(err, "writing line")
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "flushing")
}

// readDilutions reads a two column (CID, dilution) lookup with a header line.
func readDilutions(r io.Reader) (map[int]string, error) {
	_, raw, err := ReadAll(NewTSVReader(r))
	if err != nil {
		return nil, err
	}
	dils := make(map[int]string, len(raw))
	for i, fields := range raw {
		if len(fields) < 2 {
			return nil, &opc.FormatError{What: "field count", Value: strconv.Itoa(len(fields)), Line: i + 2}
		}
		cid, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return nil, &opc.FormatError{What: "compound id", Value: fields[0], Line: i + 2}
		}
		dils[cid] = strings.TrimSpace(fields[1])
	}
	return dils, nil
}

// Preformat builds the wide release of kind under DataRoot from its
// long-format release and dilution lookup.
func (l *Loader) Preformat(kind opc.Kind) (path string, err error) {
	stem, err := LongFileStem(kind)
	if err != nil {
		return "", err
	}
	header, err := l.Headers()
	if err != nil {
		return "", errors.Wrap(err, "getting training header")
	}
	long, err := l.Config.Open(stem + ".txt")
	if err != nil {
		return "", err
	}
	defer long.Close()
	dils, err := l.Config.Open("dilution_" + string(kind) + ".txt")
	if err != nil {
		return "", err
	}
	defer dils.Close()

	path = l.Config.PerceptualFile(kind)
	tmp, err := os.Create(filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp"))
	if err != nil {
		return "", errors.Wrap(err, "creating temp file")
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()
	if err = Preformat(kind, header, long, dils, tmp); err != nil {
		return "", errors.Wrapf(err, "preformatting %s", kind)
	}
	if err = tmp.Close(); err != nil {
		return "", errors.Wrap(err, "closing temp file")
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return "", errors.Wrap(err, "renaming temp file")
	}
	opc.LoggerOr(l.Logger).Printf("wrote %s", path)
	return path, nil
}
