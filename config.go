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

package opc

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Config locates the inputs and outputs of a pipeline run. It is passed
// explicitly to every entry point; nothing in this module consults global
// path state.
type Config struct {
	// DataRoot is the base directory of the raw inputs.
	DataRoot string
	// CacheRoot is the directory holding derived cache files. Defaults to
	// DataRoot/derived.
	CacheRoot string
	// PredictionRoot is the directory prediction files are written to.
	// Defaults to DataRoot/../predictions.
	PredictionRoot string
	// Subjects is the number of subjects in the challenge releases. Defaults
	// to NumSubjects.
	Subjects int
}

// NewConfig returns a Config rooted at dataRoot with default derived
// directories.
func NewConfig(dataRoot string) Config {
	return Config{DataRoot: dataRoot}
}

// DataPath joins elem onto DataRoot.
func (c Config) DataPath(elem ...string) string {
	return filepath.Join(append([]string{c.DataRoot}, elem...)...)
}

// CacheDir returns the directory holding cache files.
func (c Config) CacheDir() string {
	if c.CacheRoot != "" {
		return c.CacheRoot
	}
	return c.DataPath("derived")
}

// PredictionDir returns the directory prediction files are written to.
func (c Config) PredictionDir() string {
	if c.PredictionRoot != "" {
		return c.PredictionRoot
	}
	return filepath.Join(filepath.Dir(filepath.Clean(c.DataRoot)), "predictions")
}

// SubjectCount returns Subjects or its default.
func (c Config) SubjectCount() int {
	if c.Subjects > 0 {
		return c.Subjects
	}
	return NumSubjects
}

// PerceptualFile returns the wide perceptual file holding the rows of k.
func (c Config) PerceptualFile(k Kind) string {
	return c.DataPath(k.FileStem() + ".txt")
}

// Open opens a file under DataRoot. A missing file yields a
// *MissingResourceError.
func (c Config) Open(elem ...string) (*os.File, error) {
	return OpenFile(c.DataPath(elem...))
}

// OpenFile opens path, reporting absence as a *MissingResourceError.
func OpenFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, &MissingResourceError{Path: path}
	} else if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	return f, nil
}
