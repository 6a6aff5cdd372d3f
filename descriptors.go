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

import "strings"

// NumDescriptors is the number of perceptual descriptors rated in the
// challenge releases.
const NumDescriptors = 21

// NumSubjects is the number of challenge participants.
const NumSubjects = 49

// DescriptorHeaders are the descriptor column names of the training release,
// in file order. The loaders read the names from the file header; this list
// is used where no header is at hand.
var DescriptorHeaders = []string{
	"INTENSITY/STRENGTH", "VALENCE/PLEASANTNESS", "BAKERY", "SWEET", "FRUIT",
	"FISH", "GARLIC", "SPICES", "COLD", "SOUR", "BURNT", "ACID", "WARM",
	"MUSKY", "SWEATY", "AMMONIA/URINOUS", "DECAYED", "WOOD", "GRASS",
	"FLOWER", "CHEMICAL",
}

// Descriptor is a perceptual quality rated by subjects.
type Descriptor struct {
	// Header is the column name in the challenge files, e.g.
	// "VALENCE/PLEASANTNESS". Prediction files use it verbatim.
	Header string
	// Name is the short display name, e.g. "Pleasantness".
	Name string
}

// Intensity and Pleasantness are the display names of the first two
// descriptors.
const (
	Intensity    = "Intensity"
	Pleasantness = "Pleasantness"
	Familiarity  = "Familiarity"
)

// NewDescriptors derives display names from header column names. The valence
// column is named by its second part, all others by their first.
func NewDescriptors(headers []string) []Descriptor {
	ds := make([]Descriptor, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		parts := strings.Split(h, "/")
		name := parts[0]
		if strings.HasPrefix(h, "VAL") && len(parts) > 1 {
			name = parts[1]
		}
		ds[i] = Descriptor{Header: h, Name: capitalize(name)}
	}
	return ds
}

// DefaultDescriptors returns the descriptors of DescriptorHeaders.
func DefaultDescriptors() []Descriptor {
	return NewDescriptors(DescriptorHeaders)
}

// DescriptorNames returns the display names of ds.
func DescriptorNames(ds []Descriptor) []string {
	names := make([]string, len(ds))
	for i, d := range ds {
		names[i] = d.Name
	}
	return names
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
