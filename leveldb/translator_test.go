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

package leveldb

import (
	"reflect"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/pilosa/opc/test"
	"github.com/pkg/errors"
)

func TestTranslator(t *testing.T) {
	levelDir := test.TempDir(t)
	lt, err := NewTranslator(levelDir, "presentation", "descriptor")
	if err != nil {
		t.Fatalf("couldn't get level translator: %v", err)
	}
	id1, err := lt.GetID("presentation", "126/-3/0/7")
	if err != nil {
		t.Fatalf("couldn't get id in presentation: %v", err)
	}
	id2, err := lt.GetID("descriptor", "126/-3/0/7")
	if err != nil {
		t.Fatalf("couldn't get id in descriptor: %v", err)
	}
	id3, err := lt.GetID("new", "Bakery")
	if err != nil {
		t.Fatalf("couldn't get id in new namespace: %v", err)
	}
	test.MustBe(t, uint64(0), id1)
	test.MustBe(t, uint64(0), id2)
	test.MustBe(t, uint64(0), id3)

	key, err := lt.Get("presentation", id1)
	test.ErrNil(t, err, "Get(presentation, id1)")
	test.MustBe(t, "126/-3/0/7", key)

	err = lt.Close()
	if err != nil {
		t.Fatalf("closing level translator: %v", err)
	}

	lt, err = NewTranslator(levelDir, "presentation", "descriptor")
	if err != nil {
		t.Fatalf("couldn't get level translator after closing: %v", err)
	}
	defer lt.Close()

	key, err = lt.Get("new", id3)
	test.ErrNil(t, err, "Get(new, id3) after reopen")
	test.MustBe(t, "Bakery", key)

	id1again, err := lt.GetID("presentation", "126/-3/0/7")
	test.ErrNil(t, err, "GetID again")
	test.MustBe(t, id1, id1again, "same id after reopen")

	next, err := lt.GetID("presentation", "126/-1/0/7")
	test.ErrNil(t, err, "GetID for new key after reopen")
	test.MustBe(t, uint64(1), next, "ids continue after reopen")
}

func TestConcTranslator(t *testing.T) {
	levelDir := test.TempDir(t)
	lt, err := NewTranslator(levelDir, "f1")
	if err != nil {
		t.Fatalf("couldn't get level translator: %v", err)
	}
	defer lt.Close()

	wg := &sync.WaitGroup{}
	rets := make([][]uint64, 8)
	errs := make(chan error, 8*1000)
	for i := 0; i < 8; i++ {
		rets[i] = make([]uint64, 1000)
		wg.Add(1)
		go func(ret []uint64) {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				id, err := lt.GetID("f1", strconv.Itoa(j))
				if err != nil {
					errs <- errors.Wrap(err, "error getting id")
				}
				ret[j] = id
			}
		}(rets[i])
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
	for i, ret := range rets {
		if i != 0 {
			if !reflect.DeepEqual(ret, rets[i-1]) {
				t.Fatalf("returned ids different in different threads: %v, %v", ret, rets[i-1])
			}
		}
	}
	ret := append([]uint64(nil), rets[0]...)
	sort.Slice(ret, func(i, j int) bool { return ret[i] < ret[j] })
	for j := 0; j < 1000; j++ {
		if ret[j] != uint64(j) {
			t.Fatalf("returned ids are not dense, pos: %v, val: %v", j, ret[j])
		}
	}
}

func BenchmarkTranslatorGetID(b *testing.B) {
	levelDir := test.TempDir(b)
	lt, err := NewTranslator(levelDir, "f1")
	if err != nil {
		b.Fatalf("couldn't get level translator: %v", err)
	}
	defer lt.Close()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		lt.GetID("f1", strconv.Itoa(i))
	}
}
