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

package cidindex

import (
	"bytes"
	"encoding/csv"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pilosa/opc"
	"github.com/pkg/errors"
)

// ErrNotCached is returned by a Store which holds no entry for a kind.
var ErrNotCached = errors.New("kind not cached")

// Store persists the pair set of each kind.
type Store interface {
	// Get returns the set stored for kind, or ErrNotCached.
	Get(kind opc.Kind) (Set, error)
	// Put stores s for kind, replacing any previous entry.
	Put(kind opc.Kind, s Set) error
}

var csvHeader = []string{"CID", "Dilution"}

// FileStore keeps one CSV file per kind in Dir.
type FileStore struct {
	Dir string
}

// NewFileStore returns a FileStore writing to dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

// Path returns the file holding the set of kind.
func (fs *FileStore) Path(kind opc.Kind) string {
	return filepath.Join(fs.Dir, string(kind)+".csv")
}

// Get implements Store.
func (fs *FileStore) Get(kind opc.Kind) (Set, error) {
	f, err := os.Open(fs.Path(kind))
	if os.IsNotExist(err) {
		return nil, ErrNotCached
	} else if err != nil {
		return nil, errors.Wrap(err, "opening cache file")
	}
	defer f.Close()
	s, err := ReadSet(f)
	return s, errors.Wrapf(err, "reading cached %s", kind)
}

// Put implements Store. The file is written to a temporary name and renamed
// into place so readers never see a partial set.
func (fs *FileStore) Put(kind opc.Kind, s Set) error {
	if err := os.MkdirAll(fs.Dir, 0755); err != nil {
		return errors.Wrap(err, "making cache dir")
	}
	var buf bytes.Buffer
	if err := WriteSet(&buf, s); err != nil {
		return err
	}
	tmp, err := ioutil.TempFile(fs.Dir, "."+string(kind)+".csv.")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, "writing temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "closing temp file")
	}
	if err := os.Rename(tmp.Name(), fs.Path(kind)); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "renaming temp file")
	}
	return nil
}

// WriteSet writes s as CSV with a CID,Dilution header.
func WriteSet(w io.Writer, s Set) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for _, p := range s {
		if err := writer.Write([]string{strconv.Itoa(p.CID), formatDilution(p.Dilution)}); err != nil {
			return errors.Wrap(err, "writing pair")
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "flushing")
}

// ReadSet reads a set written by WriteSet. Files written by other tools with
// float-formatted compound ids are accepted.
func ReadSet(r io.Reader) (Set, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading csv")
	}
	if len(records) == 0 {
		return nil, &opc.FormatError{What: "cache header", Value: "", Line: 1}
	}
	pairs := make([]Pair, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) != 2 {
			return nil, &opc.FormatError{What: "cache line", Value: strings.Join(rec, ","), Line: i + 2}
		}
		cid, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, &opc.FormatError{What: "compound id", Value: rec[0], Line: i + 2}
		}
		d, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, &opc.FormatError{What: "dilution", Value: rec[1], Line: i + 2}
		}
		pairs = append(pairs, Pair{CID: int(cid), Dilution: opc.Dilution(d)})
	}
	return NewSet(pairs...), nil
}

// formatDilution always carries a decimal point, e.g. "-3.0".
func formatDilution(d opc.Dilution) string {
	s := strconv.FormatFloat(float64(d), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
