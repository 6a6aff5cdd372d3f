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

package pilosa

import (
	"sync"

	"github.com/pkg/errors"
)

// Translator assigns column ids to string keys, one id space per namespace.
// *leveldb.Translator implements it persistently.
type Translator interface {
	GetID(ns string, key string) (uint64, error)
	Get(ns string, id uint64) (string, error)
}

// MapTranslator is an in-memory Translator. Ids are dense and start at 0 in
// each namespace.
type MapTranslator struct {
	lock       sync.RWMutex
	namespaces map[string]*mapNamespace
}

type mapNamespace struct {
	ids  map[string]uint64
	keys []string
}

// NewMapTranslator creates a new MapTranslator.
func NewMapTranslator() *MapTranslator {
	return &MapTranslator{
		namespaces: make(map[string]*mapNamespace),
	}
}

// GetID returns the id of key in namespace ns, allocating the next id if the
// key is new.
func (m *MapTranslator) GetID(ns string, key string) (uint64, error) {
	m.lock.RLock()
	if n, ok := m.namespaces[ns]; ok {
		if id, ok := n.ids[key]; ok {
			m.lock.RUnlock()
			return id, nil
		}
	}
	m.lock.RUnlock()
	m.lock.Lock()
	defer m.lock.Unlock()
	n, ok := m.namespaces[ns]
	if !ok {
		n = &mapNamespace{ids: make(map[string]uint64)}
		m.namespaces[ns] = n
	}
	if id, ok := n.ids[key]; ok {
		return id, nil
	}
	id := uint64(len(n.keys))
	n.keys = append(n.keys, key)
	n.ids[key] = id
	return id, nil
}

// Get returns the key mapped to id in namespace ns.
func (m *MapTranslator) Get(ns string, id uint64) (string, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	n, ok := m.namespaces[ns]
	if !ok || id >= uint64(len(n.keys)) {
		return "", errors.Errorf("namespace '%v': unknown id %v", ns, id)
	}
	return n.keys[id], nil
}
