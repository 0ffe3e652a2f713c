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

// Sbiad is the multi-component interval-encoded index: within each component
// j, win[j][d] holds the window-OR of per-digit bitvectors covering a fixed
// width of consecutive digit values starting at d, the same relationship
// Mesa bears to Range but applied per mixed-radix component instead of to
// the bin axis directly.
type Sbiad struct {
	fade  *Fade // exact per-digit/cumulative state, used whenever a query
	// doesn't land on a component's stored window
	win   [][]*bitvector.Bitvector // win[j][w], window w covers digits [w, w+width[j])
	width []int
}

// BuildSbiad derives a Sbiad index from an already-built Fade index,
// deriving each component's window-OR from its cumulative prefix sums
// (win[j][w] = cum[j][w+width-1] - cum[j][w-1]).
func BuildSbiad(fade *Fade) *Sbiad {
	width := make([]int, len(fade.bases))
	win := make([][]*bitvector.Bitvector, len(fade.bases))

	for j, b := range fade.bases {
		w := (b + 1) / 2
		if w < 1 {
			w = 1
		}

		width[j] = w

		nwindows := b - w + 1
		if nwindows < 1 {
			nwindows = 1
			width[j] = b
		}

		win[j] = make([]*bitvector.Bitvector, nwindows)

		for start := 0; start < nwindows; start++ {
			hi := start + width[j] - 1

			upper := fade.cum[j][hi]

			if start == 0 {
				win[j][start] = upper
			} else {
				win[j][start] = bitvector.Minus(upper, fade.cum[j][start-1])
			}
		}
	}

	return &Sbiad{fade: fade, win: win, width: width}
}

// Kind implements Index.
func (s *Sbiad) Kind() Type { return KindSbiad }

// Core implements Index.
func (s *Sbiad) Core() *Core { return s.fade.binCore }

// Locate implements Index using the shared per-bin overlap algorithm.
func (s *Sbiad) Locate(p collab.Predicate) LocateResult {
	return locateByBounds(s.fade.binCore.MinVal, s.fade.binCore.MaxVal, p)
}

// ComposeHits implements Index by delegating to the underlying Fade index:
// the per-component windows exist to accelerate component-local digit
// membership tests (DigitInWindow below), not the top-level bin-interval
// composition, which Fade's exact cumulative state already answers directly.
func (s *Sbiad) ComposeHits(loc LocateResult) (*bitvector.Bitvector, error) {
	return s.fade.ComposeHits(loc)
}

// ComposeCandidates implements Index.
func (s *Sbiad) ComposeCandidates(loc LocateResult) (*bitvector.Bitvector, error) {
	return s.fade.ComposeCandidates(loc)
}

// DigitInWindow returns the rows whose component-j digit lies in
// [lo, lo+width[j]), resolving from the precomputed window directly when lo
// is a stored window start, otherwise falling back to the exact cumulative
// difference on the underlying Fade component.
func (s *Sbiad) DigitInWindow(j, lo int) (*bitvector.Bitvector, error) {
	if j < 0 || j >= len(s.win) {
		return nil, nil
	}

	if lo >= 0 && lo < len(s.win[j]) {
		return s.win[j][lo], nil
	}

	hi := lo + s.width[j] - 1
	if hi >= len(s.fade.cum[j]) {
		hi = len(s.fade.cum[j]) - 1
	}

	upper := s.fade.cum[j][hi]

	if lo <= 0 {
		return upper, nil
	}

	return bitvector.Minus(upper, s.fade.cum[j][lo-1]), nil
}
