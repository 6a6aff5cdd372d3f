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

package pilosa_test

import (
	"io/ioutil"
	"math"
	"sort"
	"testing"
	"time"

	gopilosa "github.com/pilosa/go-pilosa"
	"github.com/pilosa/opc"
	"github.com/pilosa/opc/leveldb"
	"github.com/pilosa/opc/mock"
	"github.com/pilosa/opc/perceptual"
	"github.com/pilosa/opc/pilosa"
	"github.com/pilosa/opc/termstat"
	"github.com/pilosa/opc/test"
	"github.com/pkg/errors"
)

var nan = math.NaN()

func exportTable() *perceptual.Table {
	ds := opc.NewDescriptors([]string{"INTENSITY/STRENGTH", "VALENCE/PLEASANTNESS", "BAKERY"})
	return perceptual.NewTable(opc.Training, ds, []opc.Row{
		{CID: 10, Label: opc.High, Dilution: -3, Subject: 1, Values: []float64{1, 2, 3}},
		{CID: 10, Label: opc.High, Dilution: -3, Subject: 1, Replicate: true, Values: []float64{4, nan, 6}},
		{CID: 10, Label: opc.Low, Dilution: -1, Subject: 2, Values: []float64{7, 8, 9}},
	})
}

func TestExport(t *testing.T) {
	imp := mock.NewImporter()
	e := pilosa.NewExporter(imp, "opc")
	counts := termstat.NewCollector(ioutil.Discard, time.Hour)
	e.Stats = counts
	stats, err := e.Export(exportTable())
	test.ErrNil(t, err, "exporting")
	test.MustBe(t, pilosa.Stats{Columns: 3, Bits: 15, Values: 11}, stats)
	test.MustBe(t, int64(3), counts.Get("columns"))
	test.MustBe(t, int64(8), counts.Get("ratings"))
	test.ErrNil(t, counts.Close(), "closing stats")
	test.MustBe(t, 1, imp.Schemas)

	fields := append([]string{}, imp.Fields...)
	sort.Strings(fields)
	test.MustBe(t, []string{"bakery", "cid", "dilution", "dilution-rank", "intensity", "kind", "pleasantness", "replicate", "subject"}, fields)

	test.MustBe(t, []gopilosa.Column{
		{RowID: 10, ColumnID: 0}, {RowID: 10, ColumnID: 1}, {RowID: 10, ColumnID: 2},
	}, imp.Columns[pilosa.FieldCID])
	test.MustBe(t, []gopilosa.Column{
		{RowID: 0, ColumnID: 0}, {RowID: 1, ColumnID: 1}, {RowID: 0, ColumnID: 2},
	}, imp.Columns[pilosa.FieldReplicate])
	test.MustBe(t, []gopilosa.Column{
		{RowID: 1, ColumnID: 0}, {RowID: 1, ColumnID: 1}, {RowID: 0, ColumnID: 2},
	}, imp.Columns[pilosa.FieldRank])
	test.MustBe(t, []gopilosa.FieldValue{
		{ColumnID: 0, Value: -3000}, {ColumnID: 1, Value: -3000}, {ColumnID: 2, Value: -1000},
	}, imp.Values[pilosa.FieldDilution])
	test.MustBe(t, []gopilosa.FieldValue{
		{ColumnID: 0, Value: 2}, {ColumnID: 2, Value: 8},
	}, imp.Values["pleasantness"], "missing ratings are skipped")

	key, err := e.Translator.Get(pilosa.ColumnNamespace, 1)
	test.ErrNil(t, err, "translating column 1")
	test.MustBe(t, "10/-3/1/1", key)
}

func TestExportStableColumns(t *testing.T) {
	imp := mock.NewImporter()
	e := pilosa.NewExporter(imp, "opc")
	_, err := e.Export(exportTable())
	test.ErrNil(t, err, "first export")
	_, err = e.Export(exportTable())
	test.ErrNil(t, err, "second export")
	test.MustBe(t, 6, len(imp.Columns[pilosa.FieldCID]))
	for i, c := range imp.Columns[pilosa.FieldCID] {
		test.MustBe(t, uint64(i%3), c.ColumnID)
	}
}

func TestExportLevelDBTranslator(t *testing.T) {
	dir := test.TempDir(t)
	lt, err := leveldb.NewTranslator(dir, pilosa.ColumnNamespace)
	test.ErrNil(t, err, "opening translator")
	defer lt.Close()

	e := pilosa.NewExporter(mock.NewImporter(), "opc")
	e.Translator = lt
	_, err = e.Export(exportTable())
	test.ErrNil(t, err, "exporting")
	id, err := lt.GetID(pilosa.ColumnNamespace, "10/-1/0/2")
	test.ErrNil(t, err, "looking up column")
	test.MustBe(t, uint64(2), id)
}

func TestExportErrors(t *testing.T) {
	imp := mock.NewImporter()
	imp.Fail["bakery"] = errors.New("boom")
	_, err := pilosa.NewExporter(imp, "opc").Export(exportTable())
	if err == nil || errors.Cause(err).Error() != "boom" {
		t.Fatalf("expected import failure, got %v", err)
	}

	ds := opc.NewDescriptors([]string{"INTENSITY/STRENGTH"})
	bad := perceptual.NewTable(opc.Training, ds, []opc.Row{
		{CID: 1, Dilution: -1, Subject: 1, Values: []float64{101}},
	})
	_, err = pilosa.NewExporter(mock.NewImporter(), "opc").Export(bad)
	if !opc.IsIntegrityError(err) {
		t.Fatalf("expected IntegrityError for out of range rating, got %v", err)
	}
}
