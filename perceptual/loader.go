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
	"io"
	"strings"

	"github.com/pilosa/opc"
	"github.com/pkg/errors"
)

// Loader reads and normalizes the wide perceptual releases found under a
// Config's DataRoot.
type Loader struct {
	Config opc.Config
	Scheme opc.SubjectScheme
	Logger opc.Logger
}

// NewLoader returns a Loader for cfg using the restricted subject scheme.
func NewLoader(cfg opc.Config) *Loader {
	return &Loader{Config: cfg, Scheme: opc.SchemeRestricted, Logger: opc.NopLogger{}}
}

// Load reads the release backing kind and normalizes it.
func (l *Loader) Load(kind opc.Kind) (*Table, error) {
	header, raw, err := l.read(l.Config.PerceptualFile(kind))
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", kind)
	}
	return Normalize(kind, header, raw, Options{Scheme: l.Scheme, Logger: l.Logger})
}

// LoadMany loads several kinds and concatenates their rows in order. The
// descriptors of the first kind are used for the result.
func (l *Loader) LoadMany(kinds ...opc.Kind) (*Table, error) {
	if len(kinds) == 0 {
		return nil, errors.New("no kinds to load")
	}
	var rows []opc.Row
	var first *Table
	for _, k := range kinds {
		t, err := l.Load(k)
		if err != nil {
			return nil, err
		}
		if first == nil {
			first = t
		}
		rows = append(rows, t.rows...)
	}
	return &Table{Kind: first.Kind, Descriptors: first.Descriptors, rows: rows}, nil
}

// Headers returns the header of the training release verbatim.
func (l *Loader) Headers() ([]string, error) {
	f, err := l.Config.Open(opc.Training.FileStem() + ".txt")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	header, err := NewTSVReader(f).Read()
	if err == io.EOF {
		return nil, &opc.FormatError{What: "file", Value: "empty", Line: 1}
	} else if err != nil {
		return nil, errors.Wrap(err, "reading training header")
	}
	return header, nil
}

// Descriptors returns the descriptors named in the training header.
func (l *Loader) Descriptors() ([]opc.Descriptor, error) {
	header, err := l.Headers()
	if err != nil {
		return nil, err
	}
	if len(header) <= MetadataColumns {
		return nil, &opc.FormatError{What: "header", Value: strings.Join(header, "\t"), Line: 1}
	}
	return opc.NewDescriptors(header[MetadataColumns:]), nil
}

func (l *Loader) read(path string) ([]string, [][]string, error) {
	f, err := opc.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	opc.LoggerOr(l.Logger).Debugf("reading %s", path)
	return ReadAll(NewTSVReader(f))
}
