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

package opc

import (
	"fmt"

	"github.com/pkg/errors"
)

// FormatError reports input which does not follow the expected grammar: a
// malformed dilution string, an unknown source or kind name, a non-numeric
// value where a number is required.
type FormatError struct {
	What  string
	Value string
	Line  int // 1-based line in the source file, 0 when not applicable
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid %s %q at line %d", e.What, e.Value, e.Line)
	}
	return fmt.Sprintf("invalid %s %q", e.What, e.Value)
}

// IntegrityError reports a defect in otherwise well-formed input data, such as
// duplicate keys surviving normalization or a compound id absent from a
// required feature source.
type IntegrityError struct {
	Msg string
}

func (e *IntegrityError) Error() string { return "integrity: " + e.Msg }

// MissingResourceError reports an input file that does not exist.
type MissingResourceError struct {
	Path string
}

func (e *MissingResourceError) Error() string { return "missing resource: " + e.Path }

// NewFormatError returns a *FormatError for a value with no line context.
func NewFormatError(what, value string) error {
	return &FormatError{What: what, Value: value}
}

// Integrityf returns an *IntegrityError with a formatted message.
func Integrityf(format string, args ...interface{}) error {
	return &IntegrityError{Msg: fmt.Sprintf(format, args...)}
}

// IsFormatError reports whether the root cause of err is a *FormatError.
func IsFormatError(err error) bool {
	_, ok := errors.Cause(err).(*FormatError)
	return ok
}

// IsIntegrityError reports whether the root cause of err is an
// *IntegrityError.
func IsIntegrityError(err error) bool {
	_, ok := errors.Cause(err).(*IntegrityError)
	return ok
}

// IsMissingResource reports whether the root cause of err is a
// *MissingResourceError.
func IsMissingResource(err error) bool {
	_, ok := errors.Cause(err).(*MissingResourceError)
	return ok
}
