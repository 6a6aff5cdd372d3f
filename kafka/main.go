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
	"io"
	"log"
	"os"
	"time"

	"github.com/Shopify/sarama"
	"github.com/pilosa/opc"
	"github.com/pilosa/opc/perceptual"
	"github.com/pilosa/opc/termstat"
	"github.com/pkg/errors"
)

// Main holds the options for publishing normalized ratings to Kafka.
type Main struct {
	DataRoot string   `help:"Directory holding the raw challenge files."`
	Kinds    []string `help:"Comma separated list of kinds to publish."`
	Full     bool     `help:"Use the full subject scheme instead of the restricted one."`
	Hosts    []string `help:"Comma separated list of Kafka hosts and ports"`
	Topic    string   `help:"Kafka topic"`
	SchemaID int      `help:"Schema registry id written ahead of each message."`
	Progress bool     `help:"Print running counts to stderr."`
	Verbose  bool     `help:"Enable debug logging."`

	TLSCertificate   string `help:"Path to client certificate file. Enables TLS together with the key file."`
	TLSKey           string `help:"Path to client certificate key file."`
	TLSCACertificate string `help:"Path to CA certificate file."`
	TLSSkipVerify    bool   `help:"Disables verification of broker certificates."`

	Producer sarama.SyncProducer `flag:"-"`
}

// NewMain returns a new Main.
func NewMain() *Main {
	return &Main{
		DataRoot: "data",
		Kinds:    []string{"training"},
		Hosts:    []string{"localhost:9092"},
		Topic:    "opc",
		SchemaID: 1,
	}
}

// Run publishes every requested kind.
func (m *Main) Run() error {
	start := time.Now()
	kinds, err := opc.ParseKinds(m.Kinds)
	if err != nil {
		return errors.Wrap(err, "parsing kinds")
	}
	logger := opc.NewLogger(m.Verbose)
	loader := perceptual.NewLoader(opc.NewConfig(m.DataRoot))
	loader.Logger = logger
	if m.Full {
		loader.Scheme = opc.SchemeFull
	}
	producer := m.Producer
	if producer == nil {
		conf, err := NewTLSProducerConfig(tlsConfig(m.TLSCertificate, m.TLSKey, m.TLSCACertificate, m.TLSSkipVerify))
		if err != nil {
			return err
		}
		producer, err = sarama.NewSyncProducer(m.Hosts, conf)
		if err != nil {
			return errors.Wrap(err, "getting new producer")
		}
		defer producer.Close()
	}
	p, err := NewPublisher(producer, m.Topic)
	if err != nil {
		return err
	}
	p.SchemaID = m.SchemaID
	p.Logger = logger
	if m.Progress {
		stats := termstat.NewCollector(os.Stderr, 2*time.Second)
		defer stats.Close()
		p.Stats = stats
	}
	for _, k := range kinds {
		t, err := loader.Load(k)
		if err != nil {
			return errors.Wrapf(err, "loading %s", k)
		}
		n, err := p.Publish(t)
		if err != nil {
			return errors.Wrapf(err, "publishing %s", k)
		}
		log.Printf("%s: published %d ratings", k, n)
	}
	log.Printf("publish done in %v", time.Since(start))
	return nil
}

// ConsumeMain holds the options for reading published ratings back.
type ConsumeMain struct {
	Hosts    []string `help:"Comma separated list of Kafka hosts and ports"`
	Topics   []string `help:"Comma separated list of Kafka topics"`
	Group    string   `help:"Kafka group"`
	SchemaID int      `help:"Schema registry id messages must carry."`
	MaxMsgs  int      `help:"Stop after this many messages. 0 reads until interrupted."`
	Verbose  bool     `help:"Enable debug logging."`

	TLSCertificate   string `help:"Path to client certificate file. Enables TLS together with the key file."`
	TLSKey           string `help:"Path to client certificate key file."`
	TLSCACertificate string `help:"Path to CA certificate file."`
	TLSSkipVerify    bool   `help:"Disables verification of broker certificates."`
}

// NewConsumeMain returns a new ConsumeMain.
func NewConsumeMain() *ConsumeMain {
	return &ConsumeMain{
		Hosts:    []string{"localhost:9092"},
		Topics:   []string{"opc"},
		Group:    "opc",
		SchemaID: 1,
		MaxMsgs:  1000,
	}
}

// Run reads ratings and reports a count per kind and descriptor.
func (m *ConsumeMain) Run() error {
	src := NewSource()
	src.Hosts = m.Hosts
	src.Topics = m.Topics
	src.Group = m.Group
	src.SchemaID = m.SchemaID
	src.MaxMsgs = m.MaxMsgs
	src.TLS = tlsConfig(m.TLSCertificate, m.TLSKey, m.TLSCACertificate, m.TLSSkipVerify)
	src.Logger = opc.NewLogger(m.Verbose)
	if err := src.Open(); err != nil {
		return errors.Wrap(err, "opening kafka source")
	}
	defer src.Close()

	counts := NewCounter()
	for {
		r, err := src.Rating()
		if err == io.EOF {
			break
		} else if err != nil {
			return errors.Wrap(err, "reading rating")
		}
		counts.Add(r)
	}
	for _, line := range counts.Lines() {
		log.Println(line)
	}
	return nil
}

func tlsConfig(cert, key, ca string, skipVerify bool) TLSConfig {
	return TLSConfig{
		CertificatePath:    cert,
		CertificateKeyPath: key,
		CACertPath:         ca,
		SkipVerify:         skipVerify,
	}
}
