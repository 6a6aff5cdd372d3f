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

// Package termstat provides an opc.Statter which periodically writes its
// counts to a terminal. It is meant for watching long exports and publishes
// in lieu of a real metrics collector.
package termstat

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Collector collects counts and prints them on a single, rewritten line.
type Collector struct {
	lock    sync.Mutex
	indexes map[string]int
	names   []string
	stats   []int64
	changed bool
	out     io.Writer

	done chan struct{}
	wg   sync.WaitGroup
}

// NewCollector returns a Collector which writes to out every interval until
// it is closed.
func NewCollector(out io.Writer, interval time.Duration) *Collector {
	c := &Collector{
		indexes: make(map[string]int),
		out:     out,
		done:    make(chan struct{}),
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		tick := time.NewTicker(interval)
		defer tick.Stop()
		for {
			select {
			case <-tick.C:
				c.write()
			case <-c.done:
				return
			}
		}
	}()
	return c
}

// Count adds value to the named stat.
func (c *Collector) Count(name string, value int64) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.changed = true
	idx, ok := c.indexes[name]
	if !ok {
		idx = len(c.stats)
		c.stats = append(c.stats, 0)
		c.names = append(c.names, name)
		c.indexes[name] = idx
	}
	c.stats[idx] += value
}

// Get returns the current value of the named stat.
func (c *Collector) Get(name string) int64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	idx, ok := c.indexes[name]
	if !ok {
		return 0
	}
	return c.stats[idx]
}

// Close stops the periodic writes and writes the final counts followed by a
// newline.
func (c *Collector) Close() error {
	close(c.done)
	c.wg.Wait()
	c.write()
	c.lock.Lock()
	defer c.lock.Unlock()
	if len(c.stats) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(c.out)
	return err
}

func (c *Collector) write() {
	c.lock.Lock()
	defer c.lock.Unlock()
	if !c.changed {
		return
	}
	parts := make([]string, len(c.stats))
	for i := range c.stats {
		parts[i] = fmt.Sprintf("%s: %d", c.names[i], c.stats[i])
	}
	c.changed = false
	fmt.Fprint(c.out, "\r"+strings.Join(parts, " "))
}
