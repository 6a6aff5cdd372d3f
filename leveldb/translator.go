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

// Package leveldb assigns stable, dense integer ids to string keys, one id
// space per namespace, persisted in leveldb. The Pilosa exporter uses it to
// turn perceptual presentations into column ids which survive across runs.
package leveldb

import (
	"encoding/binary"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// Translator stores the two way key/id mapping of several namespaces in
// leveldb.
type Translator struct {
	lock       sync.RWMutex
	dirname    string
	namespaces map[string]*NamespaceTranslator
}

// NamespaceTranslator maps the keys of one namespace.
type NamespaceTranslator struct {
	lock   valueLocker
	idMu   sync.Mutex
	idMap  *leveldb.DB
	keyMap *leveldb.DB
	nextID uint64
}

type errorList []error

func (errs errorList) Error() string {
	errstrings := make([]string, len(errs))
	for i, err := range errs {
		errstrings[i] = err.Error()
	}
	return strings.Join(errstrings, "; ")
}

// Close closes all of the underlying leveldb instances.
func (lt *Translator) Close() error {
	lt.lock.Lock()
	defer lt.lock.Unlock()
	errs := make(errorList, 0)
	for ns, nt := range lt.namespaces {
		err := nt.Close()
		if err != nil {
			errs = append(errs, errors.Wrapf(err, "namespace : %v", ns))
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Close closes the two leveldbs used by the NamespaceTranslator.
func (nt *NamespaceTranslator) Close() error {
	errs := make(errorList, 0)
	err := nt.idMap.Close()
	if err != nil {
		errs = append(errs, errors.Wrap(err, "closing idMap"))
	}
	err = nt.keyMap.Close()
	if err != nil {
		errs = append(errs, errors.Wrap(err, "closing keyMap"))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// getNamespace retrieves or creates the translator for a namespace.
func (lt *Translator) getNamespace(ns string) (*NamespaceTranslator, error) {
	lt.lock.RLock()
	if nt, ok := lt.namespaces[ns]; ok {
		lt.lock.RUnlock()
		return nt, nil
	}
	lt.lock.RUnlock()
	lt.lock.Lock()
	defer lt.lock.Unlock()
	if nt, ok := lt.namespaces[ns]; ok {
		return nt, nil
	}
	nt, err := NewNamespaceTranslator(lt.dirname, ns)
	if err != nil {
		return nil, errors.Wrap(err, "creating new NamespaceTranslator")
	}
	lt.namespaces[ns] = nt
	return nt, nil
}

// NewNamespaceTranslator opens the leveldbs of namespace ns under dirname.
// Ids continue after the highest id already stored.
func NewNamespaceTranslator(dirname string, ns string) (*NamespaceTranslator, error) {
	err := os.MkdirAll(dirname, 0700)
	if err != nil {
		return nil, errors.Wrap(err, "making directory")
	}
	nt := &NamespaceTranslator{
		lock: newBucketVLock(),
	}
	idPath := filepath.Join(dirname, ns+"-id")
	nt.idMap, err = leveldb.OpenFile(idPath, &opt.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "opening leveldb at %v", idPath)
	}
	keyPath := filepath.Join(dirname, ns+"-key")
	nt.keyMap, err = leveldb.OpenFile(keyPath, &opt.Options{})
	if err != nil {
		nt.idMap.Close()
		return nil, errors.Wrapf(err, "opening leveldb at %v", keyPath)
	}

	iter := nt.idMap.NewIterator(nil, nil)
	if iter.Last() {
		nt.nextID = binary.BigEndian.Uint64(iter.Key()) + 1
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		nt.Close()
		return nil, errors.Wrap(err, "finding last id")
	}
	return nt, nil
}

// NewTranslator gets a new Translator with the given namespaces opened.
func NewTranslator(dirname string, namespaces ...string) (*Translator, error) {
	lt := &Translator{
		dirname:    dirname,
		namespaces: make(map[string]*NamespaceTranslator),
	}
	for _, ns := range namespaces {
		nt, err := NewNamespaceTranslator(dirname, ns)
		if err != nil {
			lt.Close()
			return nil, errors.Wrap(err, "making NamespaceTranslator")
		}
		lt.namespaces[ns] = nt
	}
	return lt, nil
}

// Get returns the key mapped to id in namespace ns.
func (lt *Translator) Get(ns string, id uint64) (string, error) {
	nt, err := lt.getNamespace(ns)
	if err != nil {
		return "", errors.Wrap(err, "getting namespace translator")
	}
	return nt.Get(id)
}

// Get returns the key mapped to id.
func (nt *NamespaceTranslator) Get(id uint64) (string, error) {
	idBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(idBytes, id)
	data, err := nt.idMap.Get(idBytes, nil)
	if err != nil {
		return "", errors.Wrap(err, "fetching from idMap")
	}
	return string(data), nil
}

// GetID returns the id of key in namespace ns, allocating the next id if the
// key is new.
func (lt *Translator) GetID(ns string, key string) (uint64, error) {
	nt, err := lt.getNamespace(ns)
	if err != nil {
		return 0, errors.Wrap(err, "getting namespace translator")
	}
	return nt.GetID(key)
}

// GetID returns the id of key, allocating the next id if the key is new.
func (nt *NamespaceTranslator) GetID(key string) (uint64, error) {
	keyBytes := []byte(key)

	// most keys are expected to be mapped already
	data, err := nt.keyMap.Get(keyBytes, &opt.ReadOptions{})
	if err != nil && err != leveldb.ErrNotFound {
		return 0, errors.Wrap(err, "trying to read key map")
	} else if err == nil {
		return binary.BigEndian.Uint64(data), nil
	}

	nt.lock.Lock(keyBytes)
	defer nt.lock.Unlock(keyBytes)
	// re-read after locking
	data, err = nt.keyMap.Get(keyBytes, &opt.ReadOptions{})
	if err != nil && err != leveldb.ErrNotFound {
		return 0, errors.Wrap(err, "trying to read key map")
	} else if err == nil {
		return binary.BigEndian.Uint64(data), nil
	}

	nt.idMu.Lock()
	id := nt.nextID
	nt.nextID++
	nt.idMu.Unlock()
	idBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(idBytes, id)
	err = nt.idMap.Put(idBytes, keyBytes, &opt.WriteOptions{})
	if err != nil {
		return 0, errors.Wrap(err, "putting new id into idMap")
	}
	err = nt.keyMap.Put(keyBytes, idBytes, &opt.WriteOptions{})
	if err != nil {
		return 0, errors.Wrap(err, "putting new id into keyMap")
	}
	return id, nil
}

type valueLocker interface {
	Lock(val []byte)
	Unlock(val []byte)
}

type bucketVLock struct {
	ms []sync.Mutex
}

func newBucketVLock() bucketVLock {
	return bucketVLock{
		ms: make([]sync.Mutex, 1000),
	}
}

func (b bucketVLock) Lock(val []byte) {
	hsh := fnv.New32a()
	hsh.Write(val) // never returns error for hash
	b.ms[hsh.Sum32()%1000].Lock()
}

func (b bucketVLock) Unlock(val []byte) {
	hsh := fnv.New32a()
	hsh.Write(val) // never returns error for hash
	b.ms[hsh.Sum32()%1000].Unlock()
}
