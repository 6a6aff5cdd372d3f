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

// Package boltdb provides a cidindex.Store which keeps the pair set of each
// kind in a bucket of a bolt database, so a cache can be shared as a single
// file.
package boltdb

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/boltdb/bolt"
	"github.com/pilosa/opc"
	"github.com/pilosa/opc/cidindex"
	"github.com/pkg/errors"
)

var kindsBucket = []byte("kinds")

// Store is a cidindex.Store backed by boltdb. Each kind has a nested bucket
// under "kinds" whose keys are encoded pairs; a kind is cached once its
// bucket exists, even if empty.
type Store struct {
	Db *bolt.DB
}

// Open opens (or creates) the bolt database at filename.
func Open(filename string) (*Store, error) {
	db, err := bolt.Open(filename, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "opening db file '%v'", filename)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(kindsBucket)
		return errors.Wrap(err, "creating kinds bucket")
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ensuring bucket existence")
	}
	return &Store{Db: db}, nil
}

// Close syncs and closes the underlying boltdb.
func (s *Store) Close() error {
	err := s.Db.Sync()
	if err != nil {
		return errors.Wrap(err, "syncing db")
	}
	return s.Db.Close()
}

// Get implements cidindex.Store.
func (s *Store) Get(kind opc.Kind) (cidindex.Set, error) {
	var pairs []cidindex.Pair
	cached := false
	err := s.Db.View(func(tx *bolt.Tx) error {
		kb := tx.Bucket(kindsBucket).Bucket([]byte(kind))
		if kb == nil {
			return nil
		}
		cached = true
		return kb.ForEach(func(k, _ []byte) error {
			p, err := decodePair(k)
			if err != nil {
				return err
			}
			pairs = append(pairs, p)
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", kind)
	}
	if !cached {
		return nil, cidindex.ErrNotCached
	}
	return cidindex.NewSet(pairs...), nil
}

// Put implements cidindex.Store. The previous entry is replaced in the same
// transaction.
func (s *Store) Put(kind opc.Kind, set cidindex.Set) error {
	return s.Db.Update(func(tx *bolt.Tx) error {
		kinds := tx.Bucket(kindsBucket)
		if kinds.Bucket([]byte(kind)) != nil {
			if err := kinds.DeleteBucket([]byte(kind)); err != nil {
				return errors.Wrapf(err, "deleting %s bucket", kind)
			}
		}
		kb, err := kinds.CreateBucket([]byte(kind))
		if err != nil {
			return errors.Wrapf(err, "creating %s bucket", kind)
		}
		for _, p := range set {
			if err := kb.Put(encodePair(p), nil); err != nil {
				return errors.Wrap(err, "putting pair")
			}
		}
		return nil
	})
}

// Kinds returns the kinds which have an entry.
func (s *Store) Kinds() ([]opc.Kind, error) {
	var kinds []opc.Kind
	err := s.Db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(kindsBucket).ForEach(func(k, v []byte) error {
			if v == nil {
				kinds = append(kinds, opc.Kind(k))
			}
			return nil
		})
	})
	return kinds, errors.Wrap(err, "listing kinds")
}

func encodePair(p cidindex.Pair) []byte {
	key := make([]byte, 16)
	binary.BigEndian.PutUint64(key[:8], uint64(p.CID))
	binary.BigEndian.PutUint64(key[8:], math.Float64bits(float64(p.Dilution)))
	return key
}

func decodePair(key []byte) (cidindex.Pair, error) {
	if len(key) != 16 {
		return cidindex.Pair{}, errors.Errorf("bad pair key length %d", len(key))
	}
	return cidindex.Pair{
		CID:      int(binary.BigEndian.Uint64(key[:8])),
		Dilution: opc.Dilution(math.Float64frombits(binary.BigEndian.Uint64(key[8:]))),
	}, nil
}
