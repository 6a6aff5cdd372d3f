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

package s3

import (
	"log"
	"time"

	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pilosa/opc"
	"github.com/pkg/errors"
)

// Main holds the options for mirroring raw inputs from S3.
type Main struct {
	Bucket    string `help:"S3 bucket name from which to read objects."`
	Prefix    string `help:"Only objects in the bucket matching this prefix will be fetched."`
	Region    string `help:"AWS region to use."`
	DataRoot  string `help:"Directory to mirror the objects into."`
	Overwrite bool   `help:"Fetch objects even when a local file of the same size exists."`
	Verbose   bool   `help:"Enable debug logging."`

	Client s3iface.S3API `flag:"-"`
}

// NewMain gets a new Main with the default configuration.
func NewMain() *Main {
	return &Main{
		Bucket:   "opc-data",
		Region:   "us-east-1",
		DataRoot: "data",
	}
}

// Run mirrors the bucket into DataRoot.
func (m *Main) Run() error {
	start := time.Now()
	client := m.Client
	if client == nil {
		var err error
		client, err = NewClient(m.Region)
		if err != nil {
			return errors.Wrap(err, "getting s3 client")
		}
	}
	f := &Fetcher{
		Client:    client,
		Bucket:    m.Bucket,
		Prefix:    m.Prefix,
		Dir:       m.DataRoot,
		Overwrite: m.Overwrite,
		Logger:    opc.NewLogger(m.Verbose),
	}
	stats, err := f.Fetch()
	if err != nil {
		return errors.Wrapf(err, "fetching s3://%s/%s", m.Bucket, m.Prefix)
	}
	log.Printf("fetched %d objects (%d bytes), skipped %d in %v", stats.Fetched, stats.Bytes, stats.Skipped, time.Since(start))
	return nil
}
