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
	"strconv"
	"strings"
)

// casFixes maps identifiers found in the legacy survey which are CAS registry
// numbers rather than compound ids. Geranylacetone had no compound id listed
// and isobutyl acetate had the wrong CAS number recorded.
var casFixes = map[string]int{
	"3796-70-1": 1549778,
	"109-19-0":  8038,
}

// ReconcileCID resolves a raw compound identifier to a compound id. Known
// malformed identifiers are corrected, every other value must be an integer.
// A trailing ".0", as produced by spreadsheet exports, is accepted.
func ReconcileCID(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if cid, ok := casFixes[raw]; ok {
		return cid, nil
	}
	if cid, err := strconv.Atoi(raw); err == nil {
		return cid, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int(f)) {
		return 0, NewFormatError("compound id", raw)
	}
	return int(f), nil
}

// SubjectScheme selects how participants are numbered. The two publications of
// the survey numbered participants differently, and only a subset of the
// participants of the larger one were kept for the challenge release.
type SubjectScheme int

const (
	// SchemeRestricted keeps only participants with a challenge subject
	// number and uses that number.
	SchemeRestricted SubjectScheme = iota
	// SchemeFull keeps every participant under the study's own numbering.
	SchemeFull
)

// SubjectFields holds the raw subject columns of one survey record.
type SubjectFields struct {
	Challenge string // designated subject number, blank for dropped participants
	Study     string // native subject number
}

// ReconcileSubject returns the subject id of a record under the given scheme.
// ok is false when the record must be dropped.
func ReconcileSubject(f SubjectFields, scheme SubjectScheme) (subject int, ok bool, err error) {
	switch scheme {
	case SchemeRestricted:
		raw := strings.TrimSpace(f.Challenge)
		if raw == "" || strings.EqualFold(raw, "nan") {
			return 0, false, nil
		}
		n, err := parseIntish(raw)
		if err != nil {
			return 0, false, NewFormatError("challenge subject", raw)
		}
		return n, n > 0, nil
	case SchemeFull:
		raw := strings.TrimSpace(f.Study)
		n, err := parseIntish(raw)
		if err != nil {
			return 0, false, NewFormatError("study subject", raw)
		}
		return n, true, nil
	}
	return 0, false, NewFormatError("subject scheme", strconv.Itoa(int(scheme)))
}

func parseIntish(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, strconv.ErrSyntax
	}
	return int(f), nil
}
