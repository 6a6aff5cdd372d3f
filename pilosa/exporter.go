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

// Package pilosa loads normalized perceptual tables into a Pilosa index. Each
// presentation (compound, dilution, replicate, subject) becomes a column;
// its identifiers are set fields and its ratings are int fields, one per
// descriptor.
package pilosa

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	gopilosa "github.com/pilosa/go-pilosa"
	"github.com/pilosa/opc"
	"github.com/pilosa/opc/perceptual"
	"github.com/pkg/errors"
)

// Field names of the identifier fields.
const (
	FieldKind      = "kind"
	FieldCID       = "cid"
	FieldSubject   = "subject"
	FieldReplicate = "replicate"
	FieldDilution  = "dilution"
	FieldRank      = "dilution-rank"
)

// ColumnNamespace is the translator namespace of presentation keys.
const ColumnNamespace = "presentation"

// Ratings are stored as integers in this range.
const (
	MinRating = 0
	MaxRating = 100
)

// Dilution magnitudes are stored in thousandths.
const dilutionScale = 1000

// Importer is the part of *gopilosa.Client the Exporter uses.
type Importer interface {
	SyncSchema(schema *gopilosa.Schema) error
	EnsureField(field *gopilosa.Field) error
	ImportField(field *gopilosa.Field, iterator gopilosa.RecordIterator, options ...gopilosa.ImportOption) error
}

// Stats summarizes an export.
type Stats struct {
	Columns int
	Bits    int
	Values  int
}

// Exporter loads perceptual tables into a Pilosa index.
type Exporter struct {
	Client     Importer
	Index      string
	BatchSize  int
	Translator Translator
	Logger     opc.Logger
	Stats      opc.Statter

	index    *gopilosa.Index
	imports  map[string]chanRecordIterator
	importWG sync.WaitGroup
	errMu    sync.Mutex
	errs     []error
}

// NewExporter returns an Exporter writing to index through client, with an
// in-memory column translator.
func NewExporter(client Importer, index string) *Exporter {
	return &Exporter{
		Client:     client,
		Index:      index,
		BatchSize:  100000,
		Translator: NewMapTranslator(),
		Logger:     opc.NopLogger{},
	}
}

// FieldName returns the int field holding a descriptor's ratings.
func FieldName(d opc.Descriptor) string {
	return strings.ToLower(d.Name)
}

// ColumnKey returns the translator key of a presentation.
func ColumnKey(r opc.Row) string {
	rep := 0
	if r.Replicate {
		rep = 1
	}
	return fmt.Sprintf("%d/%v/%d/%d", r.CID, r.Dilution, rep, r.Subject)
}

// Schema returns the schema for tables with descriptors ds.
func (e *Exporter) Schema(ds []opc.Descriptor) (*gopilosa.Schema, *gopilosa.Index) {
	schema := gopilosa.NewSchema()
	index := schema.Index(e.Index)
	index.Field(FieldKind, gopilosa.OptFieldTypeSet(gopilosa.CacheTypeRanked, len(opc.Kinds)))
	index.Field(FieldCID, gopilosa.OptFieldTypeSet(gopilosa.CacheTypeRanked, 100000))
	index.Field(FieldSubject, gopilosa.OptFieldTypeSet(gopilosa.CacheTypeRanked, 1000))
	index.Field(FieldReplicate, gopilosa.OptFieldTypeSet(gopilosa.CacheTypeRanked, 2))
	index.Field(FieldRank, gopilosa.OptFieldTypeSet(gopilosa.CacheTypeRanked, len(perceptual.DilutionRanks)))
	index.Field(FieldDilution, gopilosa.OptFieldTypeInt(-20*dilutionScale, 20*dilutionScale))
	for _, d := range ds {
		index.Field(FieldName(d), gopilosa.OptFieldTypeInt(MinRating, MaxRating))
	}
	return schema, index
}

// Export loads every row of t and waits for the imports to finish.
func (e *Exporter) Export(t *perceptual.Table) (Stats, error) {
	var stats Stats
	log := opc.LoggerOr(e.Logger)
	counts := opc.StatterOr(e.Stats)
	schema, index := e.Schema(t.Descriptors)
	if err := e.Client.SyncSchema(schema); err != nil {
		return stats, errors.Wrap(err, "synchronizing schema")
	}
	e.index = index
	e.imports = make(map[string]chanRecordIterator)
	e.errs = nil
	for _, field := range index.Fields() {
		if err := e.setupField(field); err != nil {
			e.close()
			return stats, errors.Wrapf(err, "setting up field '%s'", field.Name())
		}
	}

	kindRow := uint64(len(opc.Kinds))
	for i, k := range opc.Kinds {
		if k == t.Kind {
			kindRow = uint64(i)
		}
	}
	var rowErr error
	t.Each(func(r opc.Row) {
		if rowErr != nil {
			return
		}
		col, err := e.Translator.GetID(ColumnNamespace, ColumnKey(r))
		if err != nil {
			rowErr = errors.Wrap(err, "translating column")
			return
		}
		stats.Columns++
		counts.Count("columns", 1)
		e.addBit(FieldKind, kindRow, col)
		e.addBit(FieldCID, uint64(r.CID), col)
		e.addBit(FieldSubject, uint64(r.Subject), col)
		rep := uint64(0)
		if r.Replicate {
			rep = 1
		}
		e.addBit(FieldReplicate, rep, col)
		stats.Bits += 4
		if rank := perceptual.DilutionRank(r.Dilution); rank >= 0 {
			e.addBit(FieldRank, uint64(rank), col)
			stats.Bits++
		}
		e.addValue(FieldDilution, col, int64(math.Round(float64(r.Dilution)*dilutionScale)))
		stats.Values++
		for i, v := range r.Values {
			if math.IsNaN(v) || i >= len(t.Descriptors) {
				continue
			}
			iv := int64(math.Round(v))
			if iv < MinRating || iv > MaxRating {
				rowErr = opc.Integrityf("rating %v of CID %d out of range %d-%d", v, r.CID, MinRating, MaxRating)
				return
			}
			e.addValue(FieldName(t.Descriptors[i]), col, iv)
			stats.Values++
			counts.Count("ratings", 1)
		}
	})
	if err := e.close(); err != nil {
		return stats, err
	}
	if rowErr != nil {
		return stats, rowErr
	}
	log.Printf("exported %d columns, %d bits, %d values to %s", stats.Columns, stats.Bits, stats.Values, e.Index)
	return stats, nil
}

func (e *Exporter) addBit(field string, row, col uint64) {
	e.imports[field] <- gopilosa.Column{RowID: row, ColumnID: col}
}

func (e *Exporter) addValue(field string, col uint64, val int64) {
	e.imports[field] <- gopilosa.FieldValue{ColumnID: col, Value: val}
}

// setupField ensures the existence of a field in Pilosa, and starts its
// importer.
func (e *Exporter) setupField(field *gopilosa.Field) error {
	name := field.Name()
	if _, ok := e.imports[name]; ok {
		return nil
	}
	if err := e.Client.EnsureField(field); err != nil {
		return errors.Wrapf(err, "creating field '%v'", name)
	}
	c := newChanRecordIterator()
	e.imports[name] = c
	e.importWG.Add(1)
	go func(f *gopilosa.Field, it chanRecordIterator) {
		defer e.importWG.Done()
		err := e.Client.ImportField(f, it, gopilosa.OptImportBatchSize(e.BatchSize))
		if err != nil {
			e.errMu.Lock()
			e.errs = append(e.errs, errors.Wrapf(err, "importing field %v", f.Name()))
			e.errMu.Unlock()
			// drain so the exporter never blocks on a failed import
			for range it {
			}
		}
	}(field, c)
	return nil
}

// close ends every import and returns the first import error.
func (e *Exporter) close() error {
	for _, c := range e.imports {
		close(c)
	}
	e.importWG.Wait()
	e.imports = nil
	if len(e.errs) > 0 {
		return e.errs[0]
	}
	return nil
}

type chanRecordIterator chan gopilosa.Record

func newChanRecordIterator() chanRecordIterator {
	return make(chan gopilosa.Record, 10000)
}

func (c chanRecordIterator) NextRecord() (gopilosa.Record, error) {
	b, ok := <-c
	if !ok {
		return b, io.EOF
	}
	return b, nil
}
