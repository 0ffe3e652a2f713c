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

// Range is the cumulative range-encoded index: bits[i] holds the rows with
// value < bounds[i]. "col < v" is then a single bitvector lookup, "col > v"
// its complement, and "v1 < col <= v2" a subtraction of two lookups. The top
// bin (value >= bounds[nobs-1]) is implicit; minval/maxval of the bin
// boundaries closest to it still feed the boundary-refinement step.
type Range struct {
	core *Core
	// binMinVal/binMaxVal are per-bin (not per-cumulative-cut) observed
	// bounds, one entry per of the nobs+1 underlying bins, used by Locate the
	// same way Bin.Locate uses them.
	binMinVal []float64
	binMaxVal []float64
}

// NewRange wraps an already-populated Core (whose nobs slots hold the
// cumulative bitvectors) together with the per-bin min/max arrays needed for
// Locate.
func NewRange(core *Core, binMinVal, binMaxVal []float64) *Range {
	return &Range{core: core, binMinVal: binMinVal, binMaxVal: binMaxVal}
}

// BuildRange derives a Range index from an already-built Bin index by
// prefix-ORing its per-bin bitvectors; this is the standard construction
// path since every bin-encoded column can be losslessly re-expressed as a
// cumulative one.
func BuildRange(bin *Bin) *Range {
	nobs := len(bin.core.Bounds)
	cum := make([]*bitvector.Bitvector, nobs)

	running := bitvector.NewOfLength(bin.core.NRows)

	for i := 0; i < nobs; i++ {
		bv, err := bin.core.Bit(i)
		if err != nil {
			bv = bitvector.NewOfLength(bin.core.NRows)
		}

		running = bitvector.Or(running, bv)
		cum[i] = running
	}

	core := NewCore(bin.core.NRows, bin.core.Bounds, nil, nil, cum)

	return &Range{core: core, binMinVal: bin.core.MinVal, binMaxVal: bin.core.MaxVal}
}

// Kind implements Index.
func (r *Range) Kind() Type { return KindRange }

// Core implements Index.
func (r *Range) Core() *Core { return r.core }

func fullBitvector(n uint64) *bitvector.Bitvector {
	bv := bitvector.New()
	bv.AppendFill(true, n)

	return bv
}

// cumAt returns the cumulative bitvector "< bounds[i]", with cumAt(-1) the
// empty set and cumAt(i) for i >= nobs the full set (beyond the last stored
// boundary).
func (r *Range) cumAt(i int) (*bitvector.Bitvector, error) {
	if i < 0 {
		return bitvector.NewOfLength(r.core.NRows), nil
	}

	if i >= r.core.NSlots() {
		return fullBitvector(r.core.NRows), nil
	}

	return r.core.Bit(i)
}

// Locate implements Index over the per-bin min/max arrays (nobs+1 bins,
// matching Bin.Locate), translating the resulting bin interval into
// cumulative-cut indices on demand in ComposeHits/ComposeCandidates.
func (r *Range) Locate(p collab.Predicate) LocateResult {
	return locateByBounds(r.binMinVal, r.binMaxVal, p)
}

// ComposeHits implements Index: the certain-hit span [Hit0, Hit1) over bins
// becomes cumAt(Hit1-1) - cumAt(Hit0-1) over cumulative cuts.
func (r *Range) ComposeHits(loc LocateResult) (*bitvector.Bitvector, error) {
	return r.composeSpan(loc.Hit0, loc.Hit1)
}

// ComposeCandidates implements Index.
func (r *Range) ComposeCandidates(loc LocateResult) (*bitvector.Bitvector, error) {
	return r.composeSpan(loc.Cand0, loc.Cand1)
}

func (r *Range) composeSpan(lo, hi int) (*bitvector.Bitvector, error) {
	upper, err := r.cumAt(hi - 1)
	if err != nil {
		return nil, err
	}

	if lo <= 0 {
		return upper, nil
	}

	lower, err := r.cumAt(lo - 1)
	if err != nil {
		return nil, err
	}

	return bitvector.Minus(upper, lower), nil
}
