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
	"math"
	"strconv"
	"strings"

	"github.com/pilosa/opc"
	"github.com/pkg/errors"
)

// MetadataColumns is the number of fixed leading columns of a wide perceptual
// file: compound id, odor name, replicate marker, high/low label, dilution
// and subject.
const MetadataColumns = 6

const replicateMarker = "replicate"

// NewTSVReader returns a csv.Reader configured for the tab-separated
// challenge files. Rows may have differing lengths; callers validate them.
func NewTSVReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader
}

// ReadAll reads a delimited file into its header and data rows.
func ReadAll(reader *csv.Reader) (header []string, rows [][]string, err error) {
	header, err = reader.Read()
	if err == io.EOF {
		return nil, nil, &opc.FormatError{What: "file", Value: "empty", Line: 1}
	} else if err != nil {
		return nil, nil, errors.Wrap(err, "reading header")
	}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, nil, errors.Wrapf(err, "reading line %d", len(rows)+2)
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// ParseValue converts a rating field to a float. Empty fields and the literal
// "NaN" are missing ratings.
func ParseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "NaN" || s == "nan" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// ParseRows converts the data lines of a wide perceptual file into rows. Any
// malformed field fails the whole file, since it most likely means the file
// does not follow the expected layout.
func ParseRows(header []string, raw [][]string) ([]opc.Row, []opc.Descriptor, error) {
	if len(header) <= MetadataColumns {
		return nil, nil, &opc.FormatError{What: "header", Value: strings.Join(header, "\t"), Line: 1}
	}
	ds := opc.NewDescriptors(header[MetadataColumns:])
	width := len(header)
	rows := make([]opc.Row, 0, len(raw))
	for i, fields := range raw {
		line := i + 2
		if len(fields) != width {
			return nil, nil, &opc.FormatError{What: "field count", Value: strconv.Itoa(len(fields)), Line: line}
		}
		row, err := parseRow(fields)
		if err != nil {
			return nil, nil, withLine(err, line)
		}
		rows = append(rows, row)
	}
	return rows, ds, nil
}

func parseRow(fields []string) (opc.Row, error) {
	meta := make([]string, MetadataColumns)
	for i := range meta {
		meta[i] = strings.TrimSpace(fields[i])
	}
	cid, err := strconv.Atoi(meta[0])
	if err != nil {
		return opc.Row{}, opc.NewFormatError("compound id", meta[0])
	}
	dil, err := opc.ParseDilution(meta[4])
	if err != nil {
		return opc.Row{}, err
	}
	subject, err := strconv.Atoi(meta[5])
	if err != nil {
		return opc.Row{}, opc.NewFormatError("subject", meta[5])
	}
	values := make([]float64, len(fields)-MetadataColumns)
	for i, f := range fields[MetadataColumns:] {
		v, err := ParseValue(f)
		if err != nil {
			return opc.Row{}, opc.NewFormatError("rating", f)
		}
		values[i] = v
	}
	return opc.Row{
		CID:       cid,
		Odor:      meta[1],
		Replicate: meta[2] == replicateMarker,
		Label:     meta[3],
		Ratio:     meta[4],
		Dilution:  dil,
		Subject:   subject,
		Values:    values,
	}, nil
}

// withLine attaches a line number to a *opc.FormatError.
func withLine(err error, line int) error {
	if fe, ok := errors.Cause(err).(*opc.FormatError); ok && fe.Line == 0 {
		cp := *fe
		cp.Line = line
		return &cp
	}
	return errors.Wrapf(err, "line %d", line)
}
