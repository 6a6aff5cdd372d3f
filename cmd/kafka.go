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
	"github.com/jaffee/commandeer/cobrafy"
	"github.com/pilosa/opc/kafka"
	"github.com/spf13/cobra"
)

// PublishMain is wrapped by NewPublishCommand and only exported for testing
// purposes.
var PublishMain *kafka.Main

// NewPublishCommand returns a new cobra command wrapping PublishMain.
func NewPublishCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	PublishMain = kafka.NewMain()
	publishCommand := &cobra.Command{
		Use:   "publish",
		Short: "publish - send normalized ratings to Kafka as Avro records",
		Long: `
publish normalizes each requested kind and sends one Avro encoded message per
observed rating, keyed by compound id and framed with a schema registry
header.
`[1:],
		RunE: func(cmd *cobra.Command, args []string) error {
			return PublishMain.Run()
		},
	}
	err := commandeer.Flags(publishCommand.Flags(), PublishMain)
	if err != nil {
		panic(err)
	}
	return publishCommand
}

// NewConsumeCommand returns a new cobra command which wraps kafka.ConsumeMain.
func NewConsumeCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	com, err := cobrafy.Command(kafka.NewConsumeMain())
	if err != nil {
		panic(err)
	}
	com.Use = `consume`
	com.Short = `opc consume reads ratings back from Kafka and tallies them.`
	com.Long = `
opc consume joins a consumer group, decodes up to max-msgs rating messages and
prints the number of ratings per kind and descriptor.
`[1:]

	return com
}

func init() {
	subcommandFns["publish"] = NewPublishCommand
	subcommandFns["consume"] = NewConsumeCommand
}
