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

func buildFineFor1024(nrows int) (*Bin, []float64) {
	values := make([]float64, nrows)
	bounds := make([]float64, 1023)

	for i := range bounds {
		bounds[i] = float64(i + 1)
	}

	for i := range values {
		values[i] = float64(i % 1024)
	}

	return BuildBin(values, bounds), bounds
}

// scenario F: 1,024 fine bins grouped into 32 coarse bins; a coarse bitvector
// must equal the union of its member fine-bin masks (law 11).
func TestTwoLevelCoarseBitvectorIsUnionOfFineMasks(t *testing.T) {
	bin, _ := buildFineFor1024(2048)
	tl := BuildTwoLevel(KindAmbit, TwoLevelRange, bin, 32, 1<<30)

	for c, span := range tl.fineSpan {
		want, err := bin.core.unionRange(span[0], span[1])
		ibisassert.NoError(t, err)

		got, err := tl.coarseBitvector(c)
		ibisassert.NoError(t, err)

		ibisassert.Equal(t, uint64(0), bitvector.Xor(want, got).Cnt(), "coarse bin %d", c)
	}
}

func TestTwoLevelComposeMatchesFineUnionAcrossCoarseBoundary(t *testing.T) {
	bin, _ := buildFineFor1024(2048)
	tl := BuildTwoLevel(KindAmbit, TwoLevelRange, bin, 32, 1<<30)

	lo, hi := 10, 100 // spans multiple coarse bins

	want, err := bin.core.unionRange(lo, hi)
	ibisassert.NoError(t, err)

	got, err := tl.compose(lo, hi)
	ibisassert.NoError(t, err)

	ibisassert.Equal(t, uint64(0), bitvector.Xor(want, got).Cnt())
}

func TestTwoLevelPaleNeverAttachesSubIndex(t *testing.T) {
	bin, _ := buildFineFor1024(2048)
	tl := BuildTwoLevel(KindPale, TwoLevelRange, bin, 32, 0)

	for _, sub := range tl.sub {
		ibisassert.True(t, sub == nil, "pale must never attach a fine sub-index")
	}
}

func TestChooseCoarseCountStaysWithinBounds(t *testing.T) {
	nc := ChooseCoarseCount(1024, 100000, 0)
	ibisassert.True(t, nc >= 5 && nc <= 1024, "coarse count must respect the heuristic's bounds")
}
