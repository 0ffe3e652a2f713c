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
	"testing"

	"github.com/gingi/go-ibis/internal/bitvector"
	"github.com/gingi/go-ibis/internal/ibisassert"
)

func sampleValues() []float64 {
	return []float64{1, 5, 9, 12, 15, 20, 24, 30, 33, 40}
}

func sampleBounds() []float64 {
	return []float64{10, 20, 30}
}

func TestBinPartitionsAreDisjointAndCoverAllRows(t *testing.T) {
	values := sampleValues()
	bin := BuildBin(values, sampleBounds())

	union, err := bin.core.unionRange(0, bin.core.NSlots())
	ibisassert.NoError(t, err)
	ibisassert.Equal(t, uint64(len(values)), union.Cnt())

	for i := 0; i < bin.core.NSlots(); i++ {
		for j := i + 1; j < bin.core.NSlots(); j++ {
			bi, err := bin.core.Bit(i)
			ibisassert.NoError(t, err)

			bj, err := bin.core.Bit(j)
			ibisassert.NoError(t, err)

			overlap := bitvector.And(bi, bj).Cnt()
			ibisassert.Equal(t, uint64(0), overlap)
		}
	}
}

func TestBinOf(t *testing.T) {
	bounds := sampleBounds()

	ibisassert.Equal(t, 0, BinOf(bounds, 5))
	ibisassert.Equal(t, 1, BinOf(bounds, 10))
	ibisassert.Equal(t, 1, BinOf(bounds, 15))
	ibisassert.Equal(t, 3, BinOf(bounds, 100))
}

func TestBinLocateCertainHit(t *testing.T) {
	values := sampleValues()
	bin := BuildBin(values, sampleBounds())

	p := Normalize(Expr{LOp: Ge, LVal: 10, ROp: Lt, RVal: 20})
	loc := bin.Locate(p)

	ibisassert.True(t, loc.Hit0 <= loc.Hit1, "hit interval must be well-formed")
	ibisassert.True(t, loc.Cand0 <= loc.Hit0 && loc.Hit1 <= loc.Cand1, "hit interval must nest inside candidate interval")
}

func TestBinLocateResolvesImplicitTopBin(t *testing.T) {
	values := sampleValues()
	bin := BuildBin(values, sampleBounds())

	p := Normalize(Expr{LOp: Ge, LVal: 30})
	loc := bin.Locate(p)

	ibisassert.True(t, !loc.NeedsRescan(), "top bin must resolve as a certain hit with no candidate fringe")

	hits, err := bin.ComposeHits(loc)
	ibisassert.NoError(t, err)

	// sampleValues/sampleBounds put rows 30, 33, 40 (indices 7, 8, 9) in the
	// implicit top bin; col >= 30 must match all three.
	ibisassert.Equal(t, uint64(3), hits.Cnt())
}
