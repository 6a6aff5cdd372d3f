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
	"strconv"

	"github.com/Shopify/sarama"
	"github.com/linkedin/goavro"
	"github.com/pilosa/opc"
	"github.com/pilosa/opc/perceptual"
	"github.com/pkg/errors"
)

// Publisher sends the records of perceptual tables to a Kafka topic, one Avro
// message per rating. Missing ratings are not sent.
type Publisher struct {
	Producer sarama.SyncProducer
	Topic    string
	SchemaID int
	Logger   opc.Logger
	Stats    opc.Statter

	codec *goavro.Codec
}

// NewPublisher returns a Publisher sending to topic through producer.
func NewPublisher(producer sarama.SyncProducer, topic string) (*Publisher, error) {
	codec, err := NewCodec()
	if err != nil {
		return nil, err
	}
	return &Publisher{
		Producer: producer,
		Topic:    topic,
		SchemaID: 1,
		Logger:   opc.NopLogger{},
		Stats:    opc.NopStatter{},
		codec:    codec,
	}, nil
}

// NewProducerConfig returns the sarama config Publisher expects.
func NewProducerConfig() *sarama.Config {
	conf := sarama.NewConfig()
	conf.Version = sarama.V0_10_0_0
	conf.Producer.Return.Successes = true
	return conf
}

// NewTLSProducerConfig returns NewProducerConfig with TLS turned on when tc
// is enabled.
func NewTLSProducerConfig(tc TLSConfig) (*sarama.Config, error) {
	conf := NewProducerConfig()
	if err := tc.apply(conf); err != nil {
		return nil, errors.Wrap(err, "configuring tls")
	}
	return conf, nil
}

// Publish sends every non-missing record of t and returns how many were sent.
// Messages are keyed by compound id so a compound's ratings share a
// partition.
func (p *Publisher) Publish(t *perceptual.Table) (int, error) {
	log := opc.LoggerOr(p.Logger)
	stats := opc.StatterOr(p.Stats)
	n := 0
	for _, rec := range t.Records() {
		if rec.Missing() {
			stats.Count("missing", 1)
			continue
		}
		buf, err := EncodeRating(p.codec, p.SchemaID, Rating{Kind: t.Kind, Record: rec})
		if err != nil {
			return n, err
		}
		_, _, err = p.Producer.SendMessage(&sarama.ProducerMessage{
			Topic: p.Topic,
			Key:   sarama.StringEncoder(strconv.Itoa(rec.CID)),
			Value: sarama.ByteEncoder(buf),
		})
		if err != nil {
			return n, errors.Wrapf(err, "sending %s rating %d", t.Kind, n)
		}
		n++
		stats.Count("published", 1)
	}
	log.Debugf("published %d %s ratings to %s", n, t.Kind, p.Topic)
	return n, nil
}
