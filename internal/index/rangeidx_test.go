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

func TestRangeCumulativeCutsAreMonotone(t *testing.T) {
	bin := BuildBin(sampleValues(), sampleBounds())
	r := BuildRange(bin)

	var prev uint64

	for i := 0; i < r.core.NSlots(); i++ {
		bv, err := r.core.Bit(i)
		ibisassert.NoError(t, err)

		cnt := bv.Cnt()
		ibisassert.True(t, cnt >= prev, "cumulative cut counts must be non-decreasing")
		prev = cnt
	}
}

func TestRangeComposeMatchesBinUnion(t *testing.T) {
	values := sampleValues()
	bin := BuildBin(values, sampleBounds())
	r := BuildRange(bin)

	loc := LocateResult{Hit0: 1, Hit1: 3}

	want, err := bin.core.unionRange(loc.Hit0, loc.Hit1)
	ibisassert.NoError(t, err)

	got, err := r.ComposeHits(loc)
	ibisassert.NoError(t, err)

	ibisassert.Equal(t, want.Cnt(), got.Cnt())
	ibisassert.Equal(t, uint64(0), bitvector.Xor(want, got).Cnt())
}

func TestRangeCumAtBoundaries(t *testing.T) {
	bin := BuildBin(sampleValues(), sampleBounds())
	r := BuildRange(bin)

	empty, err := r.cumAt(-1)
	ibisassert.NoError(t, err)
	ibisassert.Equal(t, uint64(0), empty.Cnt())

	full, err := r.cumAt(r.core.NSlots() + 5)
	ibisassert.NoError(t, err)
	ibisassert.Equal(t, r.core.NRows, full.Cnt())
}
