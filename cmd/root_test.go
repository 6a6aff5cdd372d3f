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
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/pilosa/opc/test"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func TestSubcommands(t *testing.T) {
	rc := NewRootCommand(strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	var names []string
	for _, c := range rc.Commands() {
		names = append(names, c.Name())
	}
	test.MustBe(t, []string{"cache", "check", "consume", "export", "features", "fetch", "legacy", "matrix", "preformat", "publish"}, names)

	cache, _, err := rc.Find([]string{"cache"})
	test.ErrNil(t, err, "finding cache")
	for _, name := range []string{"bolt", "data-root"} {
		if cache.Flags().Lookup(name) == nil {
			t.Fatalf("cache has no %s flag", name)
		}
	}
}

func TestSetAllConfig(t *testing.T) {
	os.Setenv("OPC_DATA_ROOT", "/from/env")
	os.Setenv("OPC_KINDS", "training,testset")
	defer os.Unsetenv("OPC_DATA_ROOT")
	defer os.Unsetenv("OPC_KINDS")

	newFlags := func() (*pflag.FlagSet, *string, *[]string) {
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		root := fs.String("data-root", "data", "")
		kinds := fs.StringSlice("kinds", []string{"leaderboard"}, "")
		return fs, root, kinds
	}

	fs, root, kinds := newFlags()
	test.ErrNil(t, setAllConfig(viper.New(), fs, "OPC"), "env")
	test.MustBe(t, "/from/env", *root)
	test.MustBe(t, []string{"training", "testset"}, *kinds)

	fs, root, _ = newFlags()
	test.ErrNil(t, fs.Parse([]string{"--data-root", "/from/flag"}), "parsing")
	test.ErrNil(t, setAllConfig(viper.New(), fs, "OPC"), "flag")
	test.MustBe(t, "/from/flag", *root)
}

func TestSetAllConfigFile(t *testing.T) {
	dir := test.TempDir(t)
	path := test.WriteFile(t, dir, "opc.toml", "data-root = \"/from/file\"\nkinds = [\"leaderboard\", \"testset\"]\n")
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	root := fs.String("data-root", "data", "")
	kinds := fs.StringSlice("kinds", []string{"training"}, "")
	test.ErrNil(t, fs.Parse([]string{"--config", path}), "parsing")
	test.ErrNil(t, setAllConfig(viper.New(), fs, "OPC_FILE_TEST"), "config file")
	test.MustBe(t, "/from/file", *root)
	test.MustBe(t, []string{"leaderboard", "testset"}, *kinds)

	fs = pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	test.ErrNil(t, fs.Parse([]string{"--config", dir + "/missing.toml"}), "parsing")
	if err := setAllConfig(viper.New(), fs, "OPC_FILE_TEST"); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
