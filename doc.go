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

// opc is the olfactory perception data kit. It reconciles the perceptual
// survey releases of the olfaction prediction challenge, and the molecular
// feature sets describing the same compounds, into tables keyed by stable
// identifiers.
//
// The work happens in a handful of stages, each in its own package:
//
// 1. Normalization (package perceptual)
//
//    The challenge data arrived as several releases which disagree on almost
//    everything: column names, how dilutions are written ("1/1,000",
//    "'1/1,000'"), how participants are numbered, and whether one line holds
//    one presentation or two. The perceptual package reads each release and
//    applies the rules of its Kind to produce immutable Rows, and from them
//    Records keyed by (descriptor, compound id, dilution, replicate, subject).
//    Dilutions are normalized with ParseDilution and identifiers with
//    ReconcileCID and ReconcileSubject, both in this package.
//
// 2. Canonical index (package cidindex)
//
//    Deriving which (compound id, dilution) pairs belong to each Kind needs a
//    full pass over the releases, so the result is persisted once per Kind and
//    read back afterwards. Derived kinds are set algebra over cached ones.
//
// 3. Feature join (package features)
//
//    Molecular descriptors, fingerprints and graph-kernel features come from
//    independently keyed files. The features package restricts each to the
//    requested compound ids and concatenates them column-wise.
//
// 4. Output (packages predict, pilosa, kafka)
//
//    Predictions are written in the fixed formats of the scoring service. The
//    normalized records can also be loaded into a Pilosa index or streamed to
//    Kafka for other consumers.
//
// Errors are classified as *FormatError, *IntegrityError or
// *MissingResourceError and wrapped with context on the way up; use
// IsFormatError and friends to test for them.
package opc
