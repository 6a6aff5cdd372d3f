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
	"math"
	"strconv"
	"strings"
)

// Dilution is the concentration at which an odorant was presented, stored as
// log10 of the dilution ratio. A 1/1,000 dilution is -3.
type Dilution float64

// IntensityDilution is the dilution at which intensity ratings are reported.
const IntensityDilution Dilution = -3

// ParseDilution converts a ratio string such as "1/1,000", "'1/1,000'" or
// "\"1/1000\"" to its magnitude. The numerator is ignored. Ratios whose
// denominator is a power of ten yield exactly integral magnitudes, so equal
// ratios always compare equal regardless of how they were written.
func ParseDilution(s string) (Dilution, error) {
	clean := strings.NewReplacer(`"`, "", "'", "").Replace(strings.TrimSpace(s))
	slash := strings.IndexByte(clean, '/')
	if slash < 0 {
		return 0, NewFormatError("dilution", s)
	}
	denom := strings.Replace(strings.TrimSpace(clean[slash+1:]), ",", "", -1)
	d, err := strconv.ParseFloat(denom, 64)
	if err != nil || d <= 0 || math.IsInf(d, 0) || math.IsNaN(d) {
		return 0, NewFormatError("dilution", s)
	}
	mag := math.Log10(1 / d)
	// math.Log10 is not exact for powers of ten (Log10(1000) is
	// 2.9999999999999996).
	if r := math.Round(mag); math.Abs(mag-r) < 1e-9 {
		mag = r
	}
	return Dilution(mag), nil
}

// MustParseDilution is like ParseDilution but panics on error. It is meant for
// constants in tests and tables.
func MustParseDilution(s string) Dilution {
	d, err := ParseDilution(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Ratio formats the dilution as "1/<denominator>" with thousands separators,
// the form used by the challenge files. Magnitudes which are not integral are
// formatted with the nearest integral denominator.
func (d Dilution) Ratio() string {
	denom := strconv.FormatFloat(math.Round(math.Pow(10, -float64(d))), 'f', 0, 64)
	var sb strings.Builder
	sb.WriteString("1/")
	for i, c := range denom {
		if i > 0 && (len(denom)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

// String formats the magnitude the way it is written in cache files.
func (d Dilution) String() string {
	return strconv.FormatFloat(float64(d), 'f', -1, 64)
}
