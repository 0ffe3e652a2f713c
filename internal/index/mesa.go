// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package index

import (
	"github.com/gingi/go-ibis/internal/bitvector"
	"github.com/gingi/go-ibis/internal/collab"
)

// Mesa is the interval-encoded index: bits[i] holds the union of a window of
// width ceil(nbins/2) consecutive bins starting at bin i, so any query whose
// hit interval exactly matches one window resolves with a single bitvector
// lookup instead of a per-bin union.
type Mesa struct {
	core    *Core // windows: bits[i] = union(binBits[i:i+width])
	binCore *Core // underlying per-bin bitvectors, used when a query doesn't
	// align exactly to a stored window
	width int
}

// BuildMesa derives a Mesa index from an already-built Bin index.
func BuildMesa(bin *Bin) *Mesa {
	nbins := len(bin.core.Bounds) + 1
	width := (nbins + 1) / 2

	if width < 1 {
		width = 1
	}

	nwindows := nbins - width + 1
	if nwindows < 1 {
		nwindows = 1
		width = nbins
	}

	windows := make([]*bitvector.Bitvector, nwindows)

	for i := 0; i < nwindows; i++ {
		windows[i], _ = bin.core.unionRange(i, i+width)
	}

	core := NewCore(bin.core.NRows, bin.core.Bounds, nil, nil, windows)

	return &Mesa{core: core, binCore: bin.core, width: width}
}

// Kind implements Index.
func (m *Mesa) Kind() Type { return KindMesa }

// Core implements Index.
func (m *Mesa) Core() *Core { return m.binCore }

// Locate implements Index using the shared per-bin overlap algorithm.
func (m *Mesa) Locate(p collab.Predicate) LocateResult {
	return locateByBounds(m.binCore.MinVal, m.binCore.MaxVal, p)
}

// ComposeHits implements Index.
func (m *Mesa) ComposeHits(loc LocateResult) (*bitvector.Bitvector, error) {
	return m.composeSpan(loc.Hit0, loc.Hit1)
}

// ComposeCandidates implements Index.
func (m *Mesa) ComposeCandidates(loc LocateResult) (*bitvector.Bitvector, error) {
	return m.composeSpan(loc.Cand0, loc.Cand1)
}

// composeSpan returns the window bitvector directly when [lo, hi) matches a
// stored window exactly, otherwise falls back to a per-bin union.
func (m *Mesa) composeSpan(lo, hi int) (*bitvector.Bitvector, error) {
	if hi <= lo {
		return bitvector.NewOfLength(m.binCore.NRows), nil
	}

	if hi-lo == m.width && lo >= 0 && lo < m.core.NSlots() {
		return m.core.Bit(lo)
	}

	return m.binCore.unionRange(lo, hi)
}
