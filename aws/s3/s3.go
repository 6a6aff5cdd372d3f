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

// Package s3 mirrors the raw challenge inputs from an S3 bucket into a local
// data root.
package s3

import (
	"io"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pilosa/opc"
	"github.com/pkg/errors"
)

// NewClient returns an S3 client for region.
func NewClient(region string) (s3iface.S3API, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region)},
	)
	if err != nil {
		return nil, errors.Wrap(err, "getting new session")
	}
	return s3.New(sess), nil
}

// RawSource lists the objects under a prefix once and hands them out in
// order.
type RawSource struct {
	bucket string
	prefix string

	s3      s3iface.S3API
	objects []*s3.Object
	objIdx  *uint64
}

// NewRawSource lists bucket/prefix through client.
func NewRawSource(client s3iface.S3API, bucket, prefix string) (*RawSource, error) {
	idx := uint64(0)
	rs := &RawSource{
		bucket: bucket,
		prefix: prefix,
		s3:     client,
		objIdx: &idx,
	}
	err := client.ListObjectsPages(&s3.ListObjectsInput{Bucket: aws.String(bucket), Prefix: aws.String(prefix)},
		func(page *s3.ListObjectsOutput, last bool) bool {
			rs.objects = append(rs.objects, page.Contents...)
			return true
		})
	if err != nil {
		return nil, errors.Wrap(err, "listing objects")
	}
	return rs, nil
}

// NextObject returns the next listed object, or io.EOF after the last one.
func (rs *RawSource) NextObject() (*s3.Object, error) {
	idx := atomic.AddUint64(rs.objIdx, 1) - 1
	if int(idx) >= len(rs.objects) {
		return nil, io.EOF
	}
	return rs.objects[idx], nil
}

// Open returns the body of the object at key.
func (rs *RawSource) Open(key string) (io.ReadCloser, error) {
	result, err := rs.s3.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(rs.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %v", key)
	}
	return result.Body, nil
}

// Fetcher copies every object under Prefix into Dir, keeping the key path
// below the prefix.
type Fetcher struct {
	Client    s3iface.S3API
	Bucket    string
	Prefix    string
	Dir       string
	Overwrite bool
	Logger    opc.Logger
}

// FetchStats counts what Fetch did.
type FetchStats struct {
	Fetched int
	Skipped int
	Bytes   int64
}

// Fetch mirrors the bucket. A local file of the same size as its object is
// left alone unless Overwrite is set.
func (f *Fetcher) Fetch() (FetchStats, error) {
	var stats FetchStats
	log := opc.LoggerOr(f.Logger)
	rs, err := NewRawSource(f.Client, f.Bucket, f.Prefix)
	if err != nil {
		return stats, errors.Wrap(err, "getting raw s3 source")
	}
	for {
		obj, err := rs.NextObject()
		if err == io.EOF {
			break
		} else if err != nil {
			return stats, err
		}
		key := aws.StringValue(obj.Key)
		if strings.HasSuffix(key, "/") {
			continue
		}
		dest, err := f.localPath(key)
		if err != nil {
			return stats, err
		}
		if fi, err := os.Stat(dest); err == nil && !f.Overwrite && fi.Size() == aws.Int64Value(obj.Size) {
			log.Debugf("skipping %s, already present", key)
			stats.Skipped++
			continue
		}
		n, err := fetchObject(rs, key, dest)
		if err != nil {
			return stats, err
		}
		log.Printf("fetched %s (%d bytes)", key, n)
		stats.Fetched++
		stats.Bytes += n
	}
	return stats, nil
}

// localPath maps key to a path under Dir. Keys escaping Dir are rejected.
func (f *Fetcher) localPath(key string) (string, error) {
	rel := strings.TrimPrefix(strings.TrimPrefix(key, f.Prefix), "/")
	clean := path.Clean(rel)
	if rel == "" || clean == ".." || strings.HasPrefix(clean, "../") || path.IsAbs(clean) {
		return "", opc.NewFormatError("object key", key)
	}
	return filepath.Join(f.Dir, filepath.FromSlash(clean)), nil
}

func fetchObject(rs *RawSource, key, dest string) (int64, error) {
	body, err := rs.Open(key)
	if err != nil {
		return 0, err
	}
	defer body.Close()
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return 0, errors.Wrap(err, "making directory")
	}
	tmp, err := ioutil.TempFile(filepath.Dir(dest), "."+filepath.Base(dest)+".")
	if err != nil {
		return 0, errors.Wrap(err, "creating temp file")
	}
	n, err := io.Copy(tmp, body)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return 0, errors.Wrapf(err, "copying %v", key)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return 0, errors.Wrap(err, "closing temp file")
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return 0, errors.Wrap(err, "renaming temp file")
	}
	return n, nil
}
