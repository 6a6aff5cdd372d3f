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

package mock

import (
	"io"
	"sync"

	gopilosa "github.com/pilosa/go-pilosa"
)

// Importer records the schema, fields and records a Pilosa client would
// receive.
type Importer struct {
	mu      sync.Mutex
	Schemas int
	Fields  []string
	Columns map[string][]gopilosa.Column
	Values  map[string][]gopilosa.FieldValue
	// Fail makes ImportField of the named field fail after draining it.
	Fail map[string]error
}

// NewImporter returns an empty Importer.
func NewImporter() *Importer {
	return &Importer{
		Columns: make(map[string][]gopilosa.Column),
		Values:  make(map[string][]gopilosa.FieldValue),
		Fail:    make(map[string]error),
	}
}

// SyncSchema counts schema syncs.
func (m *Importer) SyncSchema(schema *gopilosa.Schema) error {
	m.mu.Lock()
	m.Schemas++
	m.mu.Unlock()
	return nil
}

// EnsureField records the field name.
func (m *Importer) EnsureField(field *gopilosa.Field) error {
	m.mu.Lock()
	m.Fields = append(m.Fields, field.Name())
	m.mu.Unlock()
	return nil
}

// ImportField reads iterator to the end and records what it yields.
func (m *Importer) ImportField(field *gopilosa.Field, iterator gopilosa.RecordIterator, options ...gopilosa.ImportOption) error {
	name := field.Name()
	var cols []gopilosa.Column
	var vals []gopilosa.FieldValue
	for {
		rec, err := iterator.NextRecord()
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		switch r := rec.(type) {
		case gopilosa.Column:
			cols = append(cols, r)
		case gopilosa.FieldValue:
			vals = append(vals, r)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Columns[name] = append(m.Columns[name], cols...)
	m.Values[name] = append(m.Values[name], vals...)
	return m.Fail[name]
}
