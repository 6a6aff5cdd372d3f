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

	"github.com/jaffee/commandeer/cobrafy"
	"github.com/pilosa/opc/perceptual"
	"github.com/spf13/cobra"
)

// NewPreformatCommand returns a new cobra command which wraps
// perceptual.PreformatMain.
func NewPreformatCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	com, err := cobrafy.Command(perceptual.NewPreformatMain())
	if err != nil {
		panic(err)
	}
	com.Use = `preformat`
	com.Short = `opc preformat builds the wide leaderboard and test releases.`
	com.Long = `
opc preformat joins the long-format leaderboard and test set files with their
dilution tables and writes them in the layout of the training release.
`[1:]

	return com
}

// NewLegacyCommand returns a new cobra command which wraps
// perceptual.LegacyMain.
func NewLegacyCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	com, err := cobrafy.Command(perceptual.NewLegacyMain())
	if err != nil {
		panic(err)
	}
	com.Use = `legacy`
	com.Short = `opc legacy formats the original survey data.`
	com.Long = `
opc legacy reads a delimited export of the survey the challenge was drawn
from, reconciles its subject numbering with the challenge numbering and
reports what it holds.
`[1:]

	return com
}

// NewMatrixCommand returns a new cobra command which wraps
// perceptual.MatrixMain.
func NewMatrixCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	com, err := cobrafy.Command(perceptual.NewMatrixMain())
	if err != nil {
		panic(err)
	}
	com.Use = `matrix`
	com.Short = `opc matrix summarizes the dense rating matrix of a kind.`
	com.Long = `
opc matrix lays the ratings of a kind out along subject, compound, descriptor,
dilution rank and replicate, then prints the shape of the matrix and the mean
rating of each descriptor.
`[1:]

	return com
}

func init() {
	subcommandFns["preformat"] = NewPreformatCommand
	subcommandFns["legacy"] = NewLegacyCommand
	subcommandFns["matrix"] = NewMatrixCommand
}
