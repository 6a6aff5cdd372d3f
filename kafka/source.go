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
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"sort"

	"github.com/Shopify/sarama"
	cluster "github.com/bsm/sarama-cluster"
	"github.com/pilosa/opc"
	"github.com/pkg/errors"
)

// Source reads ratings back from Kafka topics written by a Publisher.
type Source struct {
	Hosts    []string
	Topics   []string
	Group    string
	SchemaID int
	MaxMsgs  int
	TLS      TLSConfig
	Logger   opc.Logger

	numMsgs  int
	decoder  *Decoder
	consumer *cluster.Consumer
}

// NewSource gets a new Source
func NewSource() *Source {
	return &Source{
		Hosts:    []string{"localhost:9092"},
		Topics:   []string{"opc"},
		Group:    "opc",
		SchemaID: 1,
		Logger:   opc.NopLogger{},
	}
}

// Rating returns the next rating. It returns io.EOF once MaxMsgs (when
// positive) messages have been read.
func (s *Source) Rating() (Rating, error) {
	if s.MaxMsgs > 0 {
		s.numMsgs++
		if s.numMsgs > s.MaxMsgs {
			return Rating{}, io.EOF
		}
	}
	msg, ok := <-s.consumer.Messages()
	if !ok {
		return Rating{}, errors.New("messages channel closed")
	}
	r, err := s.decoder.Decode(msg.Value)
	if err != nil {
		return r, errors.Wrapf(err, "decoding message at offset %d", msg.Offset)
	}
	s.consumer.MarkOffset(msg, "") // mark message as processed
	return r, nil
}

// Open initializes the kafka source.
func (s *Source) Open() error {
	var err error
	s.decoder, err = NewDecoder(s.SchemaID)
	if err != nil {
		return err
	}
	sarama.Logger = log.New(ioutil.Discard, "", 0)
	config := cluster.NewConfig()
	config.Config.Version = sarama.V0_10_0_0
	config.Consumer.Return.Errors = true
	config.Consumer.Offsets.Initial = sarama.OffsetOldest
	config.Group.Return.Notifications = true
	if err := s.TLS.apply(&config.Config); err != nil {
		return errors.Wrap(err, "configuring tls")
	}

	s.consumer, err = cluster.NewConsumer(s.Hosts, s.Group, s.Topics, config)
	if err != nil {
		return errors.Wrap(err, "getting new consumer")
	}
	logger := opc.LoggerOr(s.Logger)
	go func() {
		for err := range s.consumer.Errors() {
			logger.Printf("kafka consumer error: %v", err)
		}
	}()
	go func() {
		for ntf := range s.consumer.Notifications() {
			logger.Debugf("rebalanced: %+v", ntf)
		}
	}()
	return nil
}

// Close closes the underlying kafka consumer.
func (s *Source) Close() error {
	err := s.consumer.Close()
	return errors.Wrap(err, "closing kafka consumer")
}

// Counter tallies ratings per kind and descriptor.
type Counter struct {
	counts map[tally]int
}

type tally struct {
	kind       opc.Kind
	descriptor string
}

// NewCounter returns an empty Counter.
func NewCounter() *Counter {
	return &Counter{counts: make(map[tally]int)}
}

// Add counts r.
func (c *Counter) Add(r Rating) {
	c.counts[tally{kind: r.Kind, descriptor: r.Descriptor}]++
}

// Lines returns one "kind descriptor count" line per tally, sorted.
func (c *Counter) Lines() []string {
	lines := make([]string, 0, len(c.counts))
	for t, n := range c.counts {
		lines = append(lines, fmt.Sprintf("%s %s %d", t.kind, t.descriptor, n))
	}
	sort.Strings(lines)
	return lines
}
