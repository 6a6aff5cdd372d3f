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

package cmd

import (
	"io"

	"github.com/jaffee/commandeer"
	"github.com/pilosa/opc/boltdb"
	"github.com/pilosa/opc/cidindex"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// CacheMain is wrapped by NewCacheCommand and only exported for testing
// purposes.
var CacheMain *cidindex.Main

// NewCacheCommand returns a new cobra command wrapping CacheMain. The bolt
// flag switches the pair cache from flat files to a single BoltDB file.
func NewCacheCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	CacheMain = cidindex.NewMain()
	var boltFile string
	cacheCommand := &cobra.Command{
		Use:   "cache",
		Short: "cache - report (and build) the compound/dilution pairs of each kind",
		Long: `
cache reads the pair cache of each requested kind, populating it from the
perceptual releases where an entry is missing, and reports the number of
pairs and compounds. With --uncached the pairs are derived from a fresh
normalization pass instead.
`[1:],
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if boltFile != "" {
				store, err := boltdb.Open(boltFile)
				if err != nil {
					return errors.Wrap(err, "opening bolt store")
				}
				defer func() {
					if cerr := store.Close(); err == nil {
						err = cerr
					}
				}()
				CacheMain.Store = store
			}
			return CacheMain.Run()
		},
	}
	flags := cacheCommand.Flags()
	err := commandeer.Flags(flags, CacheMain)
	if err != nil {
		panic(err)
	}
	flags.StringVar(&boltFile, "bolt", "", "BoltDB file to keep the pair cache in instead of flat files.")
	return cacheCommand
}

func init() {
	subcommandFns["cache"] = NewCacheCommand
}
