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
	"math/bits"

	"github.com/gingi/go-ibis/internal/bitvector"
	"github.com/gingi/go-ibis/internal/collab"
)

// Slice is the bit-sliced index: bits[k] holds the rows where bit k of the
// row's bin ordinal is 1, grounded on the classical bit-sliced comparison
// algorithm (MSB-first scan maintaining running equal/less-than masks).
type Slice struct {
	core   *Core // slots hold the nbits slice bitvectors; Locate uses binCore's per-bin min/max
	binCore *Core
	nbits  int
}

// BuildSlice derives a Slice index from an already-built Bin index,
// decomposing each bin's ordinal into binary and ORing the matching bin
// bitvectors into each bit-plane.
func BuildSlice(bin *Bin) *Slice {
	nbins := len(bin.core.Bounds) + 1
	nbits := bitLen(nbins - 1)

	planes := make([]*bitvector.Bitvector, nbits)
	for k := range planes {
		planes[k] = bitvector.NewOfLength(bin.core.NRows)
	}

	for ord := 0; ord < nbins; ord++ {
		bv, err := bin.core.Bit(ord)
		if err != nil {
			continue
		}

		for k := 0; k < nbits; k++ {
			if ord&(1<<k) != 0 {
				planes[k] = bitvector.Or(planes[k], bv)
			}
		}
	}

	core := NewCore(bin.core.NRows, bin.core.Bounds, nil, nil, planes)

	return &Slice{core: core, binCore: bin.core, nbits: nbits}
}

func bitLen(n int) int {
	if n <= 0 {
		return 1
	}

	return bits.Len(uint(n))
}

// Kind implements Index.
func (s *Slice) Kind() Type { return KindSlice }

// Core implements Index.
func (s *Slice) Core() *Core { return s.binCore }

// Locate implements Index using the shared per-bin overlap algorithm.
func (s *Slice) Locate(p collab.Predicate) LocateResult {
	return locateByBounds(s.binCore.MinVal, s.binCore.MaxVal, p)
}

// ComposeHits implements Index by falling back to the per-bin union over the
// certain-hit span: the slice planes are exercised directly by Equals/AtMost
// below, which is where bit-slicing earns its keep (a single bin-ordinal
// comparison rather than a bin union).
func (s *Slice) ComposeHits(loc LocateResult) (*bitvector.Bitvector, error) {
	return s.binCore.unionRange(loc.Hit0, loc.Hit1)
}

// ComposeCandidates implements Index.
func (s *Slice) ComposeCandidates(loc LocateResult) (*bitvector.Bitvector, error) {
	return s.binCore.unionRange(loc.Cand0, loc.Cand1)
}

// Equals returns the rows whose bin ordinal equals b exactly: AND of bits[k]
// for bits set in b, AND of NOT bits[k] for bits clear in b.
func (s *Slice) Equals(b int) (*bitvector.Bitvector, error) {
	out := fullBitvector(s.binCore.NRows)

	for k := 0; k < s.nbits; k++ {
		plane, err := s.core.Bit(k)
		if err != nil {
			return nil, err
		}

		if b&(1<<k) != 0 {
			out = bitvector.And(out, plane)
		} else {
			out = bitvector.And(out, bitvector.Flip(plane))
		}
	}

	return out, nil
}

// AtMost returns the rows whose bin ordinal is <= b, via the classical
// bit-sliced comparison: scan from the most significant bit, maintaining an
// "equal so far" mask and a "strictly less" mask, folding in each bit-plane.
func (s *Slice) AtMost(b int) (*bitvector.Bitvector, error) {
	eq := fullBitvector(s.binCore.NRows)
	lt := bitvector.NewOfLength(s.binCore.NRows)

	for k := s.nbits - 1; k >= 0; k-- {
		plane, err := s.core.Bit(k)
		if err != nil {
			return nil, err
		}

		notPlane := bitvector.Flip(plane)

		if b&(1<<k) != 0 {
			// bit k of b is 1: rows with bit k clear become strictly less.
			lt = bitvector.Or(lt, bitvector.And(eq, notPlane))
			eq = bitvector.And(eq, plane)
		} else {
			// bit k of b is 0: rows with bit k set are already > b, drop them
			// from eq; they can never join lt at this or a lower bit.
			eq = bitvector.And(eq, notPlane)
		}
	}

	return bitvector.Or(lt, eq), nil
}
