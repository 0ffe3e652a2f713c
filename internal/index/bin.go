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

// Bin is the equality-on-bins index: bits[i] holds exactly the rows whose
// value lies in [bounds[i-1], bounds[i]), with bits[nobs] the implicit top
// bin. Bins are disjoint and their union is the column's not-null mask.
type Bin struct {
	core *Core
}

// NewBin constructs a Bin index over an already-populated Core whose slot
// count is len(bounds)+1 (one extra slot for the implicit top bin).
func NewBin(core *Core) *Bin {
	return &Bin{core: core}
}

// BuildBin constructs a Bin index from a full in-memory column sample,
// assigning every row to its bin via BinOf and appending bits one row at a
// time (the single-pass path used when N is small enough to hold the whole
// value->bitvector map in memory).
func BuildBin(values []float64, bounds []float64) *Bin {
	nbins := len(bounds) + 1
	bits := make([]*bitvector.Bitvector, nbins)

	for i := range bits {
		bits[i] = bitvector.New()
	}

	// minval/maxval/seen cover every slot, including the implicit top bin
	// (index nbins-1), so Locate can resolve predicates against it the same
	// way it resolves any other bin.
	minval := make([]float64, nbins)
	maxval := make([]float64, nbins)
	seen := make([]bool, nbins)

	for row, v := range values {
		b := BinOf(bounds, v)
		for i, bv := range bits {
			bv.AppendBit(i == b)
		}

		if !seen[b] || v < minval[b] {
			minval[b] = v
		}

		if !seen[b] || v > maxval[b] {
			maxval[b] = v
		}

		seen[b] = true

		_ = row
	}

	return &Bin{core: NewCore(uint64(len(values)), bounds, minval, maxval, bits)}
}

// Kind implements Index.
func (b *Bin) Kind() Type { return KindBin }

// Core implements Index.
func (b *Bin) Core() *Core { return b.core }

// Locate implements Index using the shared min/max overlap algorithm. The
// implicit top bin carries its own observed min/max like any other bin (set
// by BuildBin/DecodeBin), so an open-ended or last-bin-inclusive predicate
// can resolve it as a hit or candidate exactly like every other bin.
func (b *Bin) Locate(p collab.Predicate) LocateResult {
	return locateByBounds(b.core.MinVal, b.core.MaxVal, p)
}

// ComposeHits implements Index.
func (b *Bin) ComposeHits(loc LocateResult) (*bitvector.Bitvector, error) {
	return b.core.unionRange(loc.Hit0, loc.Hit1)
}

// ComposeCandidates implements Index.
func (b *Bin) ComposeCandidates(loc LocateResult) (*bitvector.Bitvector, error) {
	return b.core.unionRange(loc.Cand0, loc.Cand1)
}
