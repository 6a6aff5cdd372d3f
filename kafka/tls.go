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
	"crypto/tls"
	"crypto/x509"
	"io/ioutil"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
)

// TLSConfig holds the paths of the certificates used to talk to the brokers.
type TLSConfig struct {
	// CertificatePath contains the path to the certificate (.crt or .pem file)
	CertificatePath string
	// CertificateKeyPath contains the path to the certificate key (.key file)
	CertificateKeyPath string
	// CACertPath is the path to a CA certificate (.crt or .pem file)
	CACertPath string
	// SkipVerify disables verification of server certificates.
	SkipVerify bool
}

// Enabled reports whether a client certificate is configured.
func (c TLSConfig) Enabled() bool {
	return c.CertificatePath != "" && c.CertificateKeyPath != ""
}

// Config builds a *tls.Config, or returns nil if c is not enabled.
func (c TLSConfig) Config() (*tls.Config, error) {
	if !c.Enabled() {
		return nil, nil
	}
	cert, err := tls.LoadX509KeyPair(c.CertificatePath, c.CertificateKeyPath)
	if err != nil {
		return nil, errors.Wrap(err, "loading keypair")
	}
	conf := &tls.Config{
		InsecureSkipVerify: c.SkipVerify,
		MinVersion:         tls.VersionTLS12,
		Certificates:       []tls.Certificate{cert},
	}
	if c.CACertPath != "" {
		b, err := ioutil.ReadFile(c.CACertPath)
		if err != nil {
			return nil, errors.Wrap(err, "loading tls ca key")
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(b) {
			return nil, errors.New("error parsing CA certificate")
		}
		conf.RootCAs = pool
	}
	return conf, nil
}

// apply turns on TLS in conf when c is enabled.
func (c TLSConfig) apply(conf *sarama.Config) error {
	tc, err := c.Config()
	if err != nil || tc == nil {
		return err
	}
	conf.Net.TLS.Enable = true
	conf.Net.TLS.Config = tc
	return nil
}
