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

package s3_test

import (
	"io/ioutil"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pilosa/opc"
	"github.com/pilosa/opc/aws/s3"
	"github.com/pilosa/opc/test"
)

// fakeS3 serves objects from memory, one object per listing page.
type fakeS3 struct {
	s3iface.S3API
	objects map[string]string
	gets    []string
}

func (f *fakeS3) ListObjectsPages(in *awss3.ListObjectsInput, fn func(*awss3.ListObjectsOutput, bool) bool) error {
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.StringValue(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for i, k := range keys {
		page := &awss3.ListObjectsOutput{Contents: []*awss3.Object{{
			Key:  aws.String(k),
			Size: aws.Int64(int64(len(f.objects[k]))),
		}}}
		if !fn(page, i == len(keys)-1) {
			break
		}
	}
	return nil
}

func (f *fakeS3) GetObject(in *awss3.GetObjectInput) (*awss3.GetObjectOutput, error) {
	key := aws.StringValue(in.Key)
	body, ok := f.objects[key]
	if !ok {
		return nil, awserr.New(awss3.ErrCodeNoSuchKey, "no such key", nil)
	}
	f.gets = append(f.gets, key)
	return &awss3.GetObjectOutput{Body: ioutil.NopCloser(strings.NewReader(body))}, nil
}

func TestFetch(t *testing.T) {
	client := &fakeS3{objects: map[string]string{
		"dream/TrainSet.txt":         "train",
		"dream/derived/nspdk_cid.csv": "1\n2\n",
		"dream/derived/":              "",
		"other/ignored.txt":           "x",
	}}
	dir := test.TempDir(t)
	f := &s3.Fetcher{Client: client, Bucket: "b", Prefix: "dream/", Dir: dir}

	stats, err := f.Fetch()
	test.ErrNil(t, err, "fetching")
	test.MustBe(t, s3.FetchStats{Fetched: 2, Bytes: 9}, stats)
	test.MustBe(t, "train", test.ReadFile(t, filepath.Join(dir, "TrainSet.txt")))
	test.MustBe(t, "1\n2\n", test.ReadFile(t, filepath.Join(dir, "derived", "nspdk_cid.csv")))

	stats, err = f.Fetch()
	test.ErrNil(t, err, "fetching again")
	test.MustBe(t, s3.FetchStats{Skipped: 2}, stats)
	test.MustBe(t, 2, len(client.gets))

	f.Overwrite = true
	stats, err = f.Fetch()
	test.ErrNil(t, err, "fetching with overwrite")
	test.MustBe(t, 2, stats.Fetched)
}

func TestFetchRejectsEscapingKeys(t *testing.T) {
	client := &fakeS3{objects: map[string]string{"dream/../../etc/passwd": "x"}}
	f := &s3.Fetcher{Client: client, Bucket: "b", Prefix: "dream/", Dir: test.TempDir(t)}
	if _, err := f.Fetch(); !opc.IsFormatError(err) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestRawSource(t *testing.T) {
	client := &fakeS3{objects: map[string]string{"a": "1", "b": "22"}}
	rs, err := s3.NewRawSource(client, "b", "")
	test.ErrNil(t, err, "listing")
	var keys []string
	for {
		obj, err := rs.NextObject()
		if err != nil {
			break
		}
		keys = append(keys, aws.StringValue(obj.Key))
	}
	test.MustBe(t, []string{"a", "b"}, keys)

	if _, err := rs.Open("missing"); err == nil {
		t.Fatalf("expected error opening missing object")
	}
}
