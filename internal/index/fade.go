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

// Fade is the multi-component cumulative-range index: within each component
// j, cum[j][d] holds the prefix-OR of per-digit bitvectors for digits 0..d.
// "col <= n" is then resolved one component at a time, most significant
// first, the same way Slice.AtMost resolves a bit-sliced comparison, with
// components standing in for bits and digit bases standing in for 2.
type Fade struct {
	binCore *Core
	bases   []int
	cum     [][]*bitvector.Bitvector // cum[j][d], d in [0, bases[j])
	nrows   uint64
}

// BuildFade derives a Fade index from an already-built Bin index.
func BuildFade(bin *Bin, bases []int) *Fade {
	nbins := len(bin.core.Bounds) + 1

	if bases == nil {
		bases = ChooseBases(nbins, 0)
	}

	raw := make([][]*bitvector.Bitvector, len(bases))
	for j, b := range bases {
		raw[j] = make([]*bitvector.Bitvector, b)
		for d := range raw[j] {
			raw[j][d] = bitvector.NewOfLength(bin.core.NRows)
		}
	}

	for ord := 0; ord < nbins; ord++ {
		bv, err := bin.core.Bit(ord)
		if err != nil {
			continue
		}

		digits := Digits(ord, bases)
		for j, d := range digits {
			raw[j][d] = bitvector.Or(raw[j][d], bv)
		}
	}

	cum := make([][]*bitvector.Bitvector, len(bases))

	for j, b := range bases {
		cum[j] = make([]*bitvector.Bitvector, b)
		running := bitvector.NewOfLength(bin.core.NRows)

		for d := 0; d < b; d++ {
			running = bitvector.Or(running, raw[j][d])
			cum[j][d] = running
		}
	}

	return &Fade{binCore: bin.core, bases: bases, cum: cum, nrows: bin.core.NRows}
}

// Kind implements Index.
func (f *Fade) Kind() Type { return KindFade }

// Core implements Index.
func (f *Fade) Core() *Core { return f.binCore }

// Locate implements Index using the shared per-bin overlap algorithm.
func (f *Fade) Locate(p collab.Predicate) LocateResult {
	return locateByBounds(f.binCore.MinVal, f.binCore.MaxVal, p)
}

// ComposeHits implements Index.
func (f *Fade) ComposeHits(loc LocateResult) (*bitvector.Bitvector, error) {
	return f.composeSpan(loc.Hit0, loc.Hit1)
}

// ComposeCandidates implements Index.
func (f *Fade) ComposeCandidates(loc LocateResult) (*bitvector.Bitvector, error) {
	return f.composeSpan(loc.Cand0, loc.Cand1)
}

func (f *Fade) composeSpan(lo, hi int) (*bitvector.Bitvector, error) {
	if hi <= lo {
		return bitvector.NewOfLength(f.nrows), nil
	}

	upper, err := f.AtMost(hi - 1)
	if err != nil {
		return nil, err
	}

	if lo <= 0 {
		return upper, nil
	}

	lower, err := f.AtMost(lo - 1)
	if err != nil {
		return nil, err
	}

	return bitvector.Minus(upper, lower), nil
}

// AtMost returns the rows whose bin ordinal is <= n, via positional
// comparison across components (most significant component first),
// maintaining an "exact match so far" mask and a "strictly less" mask,
// folding in each component's cumulative digit bitvectors. Carry/borrow
// across components falls out naturally: a digit's cumulative bitvector
// already absorbs every smaller digit value in that component.
func (f *Fade) AtMost(n int) (*bitvector.Bitvector, error) {
	if n < 0 {
		return bitvector.NewOfLength(f.nrows), nil
	}

	digits := Digits(n, f.bases)

	eq := fullBitvector(f.nrows)
	le := bitvector.NewOfLength(f.nrows)

	for j := len(f.bases) - 1; j >= 0; j-- {
		d := digits[j]

		leDigit := f.cum[j][d]

		var ltDigit *bitvector.Bitvector
		if d > 0 {
			ltDigit = f.cum[j][d-1]
		} else {
			ltDigit = bitvector.NewOfLength(f.nrows)
		}

		le = bitvector.Or(le, bitvector.And(eq, ltDigit))
		eq = bitvector.And(eq, bitvector.Minus(leDigit, ltDigit))
	}

	return bitvector.Or(le, eq), nil
}

// Equals returns the rows whose bin ordinal equals n exactly, derived as
// (<= n) - (< n) rather than composed digit-by-digit.
func (f *Fade) Equals(n int) (*bitvector.Bitvector, error) {
	le, err := f.AtMost(n)
	if err != nil {
		return nil, err
	}

	lt, err := f.AtMost(n - 1)
	if err != nil {
		return nil, err
	}

	return bitvector.Minus(le, lt), nil
}
