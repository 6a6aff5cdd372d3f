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

package kafka

import (
	"encoding/binary"

	"github.com/elodina/go-avro"
	"github.com/linkedin/goavro"
	"github.com/pilosa/opc"
	"github.com/pkg/errors"
)

// RatingSchema is the Avro schema of one published perceptual value.
const RatingSchema = `{
    "type": "record",
    "name": "Rating",
    "namespace": "com.pilosa.opc",
    "fields": [
        {"name": "kind", "type": "string"},
        {"name": "descriptor", "type": "string"},
        {"name": "cid", "type": "int"},
        {"name": "dilution", "type": "double"},
        {"name": "replicate", "type": "boolean"},
        {"name": "subject", "type": "int"},
        {"name": "value", "type": "double"}
    ]
}`

// Rating is a perceptual record tagged with the kind it was published from.
type Rating struct {
	Kind opc.Kind
	opc.Record
}

// Messages carry the confluent wire format: a zero magic byte and a big
// endian schema id ahead of the Avro body.
const headerLen = 5

// NewCodec returns a goavro codec for RatingSchema.
func NewCodec() (*goavro.Codec, error) {
	codec, err := goavro.NewCodec(RatingSchema)
	return codec, errors.Wrap(err, "creating rating codec")
}

// EncodeRating encodes r with codec behind the wire header for schemaID.
func EncodeRating(codec *goavro.Codec, schemaID int, r Rating) ([]byte, error) {
	buf := make([]byte, headerLen, 128)
	buf[0] = 0
	binary.BigEndian.PutUint32(buf[1:], uint32(schemaID))
	native := map[string]interface{}{
		"kind":       string(r.Kind),
		"descriptor": r.Descriptor,
		"cid":        int32(r.CID),
		"dilution":   float64(r.Dilution),
		"replicate":  r.Replicate,
		"subject":    int32(r.Subject),
		"value":      r.Value,
	}
	buf, err := codec.BinaryFromNative(buf, native)
	return buf, errors.Wrap(err, "encoding rating")
}

// Decoder decodes ratings with the elodina Avro reader.
type Decoder struct {
	SchemaID int
	schema   avro.Schema
}

// NewDecoder returns a Decoder accepting messages written for schemaID.
func NewDecoder(schemaID int) (*Decoder, error) {
	schema, err := avro.ParseSchema(RatingSchema)
	if err != nil {
		return nil, errors.Wrap(err, "parsing schema")
	}
	return &Decoder{SchemaID: schemaID, schema: schema}, nil
}

// Decode decodes one message value.
func (d *Decoder) Decode(val []byte) (Rating, error) {
	if len(val) <= headerLen || val[0] != 0 {
		return Rating{}, errors.Errorf("unexpected magic byte or length in avro kafka value, should be 0x00, but got 0x%.8x", val)
	}
	if id := int(binary.BigEndian.Uint32(val[1:])); id != d.SchemaID {
		return Rating{}, opc.Integrityf("message written with schema %d, expected %d", id, d.SchemaID)
	}
	reader := avro.NewGenericDatumReader()
	// SetSchema must be called before calling Read
	reader.SetSchema(d.schema)
	rec := avro.NewGenericRecord(d.schema)
	if err := reader.Read(rec, avro.NewBinaryDecoder(val[headerLen:])); err != nil {
		return Rating{}, errors.Wrap(err, "reading generic datum")
	}
	return ratingFromMap(rec.Map())
}

func ratingFromMap(m map[string]interface{}) (Rating, error) {
	var r Rating
	kind, ok1 := m["kind"].(string)
	desc, ok2 := m["descriptor"].(string)
	cid, ok3 := m["cid"].(int32)
	dilution, ok4 := m["dilution"].(float64)
	rep, ok5 := m["replicate"].(bool)
	subject, ok6 := m["subject"].(int32)
	value, ok7 := m["value"].(float64)
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6 && ok7) {
		return r, errors.Errorf("unexpected rating field types: %#v", m)
	}
	r.Kind = opc.Kind(kind)
	r.Descriptor = desc
	r.CID = int(cid)
	r.Dilution = opc.Dilution(dilution)
	r.Replicate = rep
	r.Subject = int(subject)
	r.Value = value
	return r, nil
}
