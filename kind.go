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

// Kind names a selection/transformation policy over the perceptual data
// releases. The string value doubles as the cache file stem.
type Kind string

const (
	// Training is the primary release (TrainSet).
	Training Kind = "training"
	// TrainingNoRep is Training restricted to (CID, dilution) pairs which were
	// never presented twice.
	TrainingNoRep Kind = "training-norep"
	// Replicated is Training restricted to the pairs which were.
	Replicated Kind = "replicated"
	// Leaderboard is the provisional scoring release.
	Leaderboard Kind = "leaderboard"
	// TestSet is the held-out release used for final scoring.
	TestSet Kind = "testset"
)

// Kinds lists every kind in the order the cache is populated.
var Kinds = []Kind{Training, Leaderboard, TestSet, TrainingNoRep, Replicated}

// ParseKind returns the Kind named by s.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.TrimSpace(s))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", NewFormatError("kind", s)
}

// ParseKinds parses a list of kind names.
func ParseKinds(names []string) ([]Kind, error) {
	kinds := make([]Kind, 0, len(names))
	for _, n := range names {
		k, err := ParseKind(n)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// FileStem is the name (without extension) of the wide perceptual file which
// holds the rows for k.
func (k Kind) FileStem() string {
	switch k {
	case Leaderboard:
		return "LeaderboardSet"
	case TestSet:
		return "TestSet"
	default:
		return "TrainSet"
	}
}

// SplitsIntensity reports whether rows of this kind at dilution d carry
// intensity and the other descriptors for different presentations, and must
// be split in two.
func (k Kind) SplitsIntensity(d Dilution) bool {
	return k == Leaderboard || (k == TestSet && d != IntensityDilution)
}

// Derived reports whether k is computed from other kinds rather than read
// from a release of its own.
func (k Kind) Derived() bool {
	return k == TrainingNoRep
}
