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

	"github.com/gingi/go-ibis/internal/ibisassert"
)

func TestChooseBoundariesEquiWidthIsStrictlyIncreasing(t *testing.T) {
	values := []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	bounds := ChooseBoundaries(values, 5, EquiWidth)

	ibisassert.Equal(t, 4, len(bounds))

	for i := 1; i < len(bounds); i++ {
		ibisassert.True(t, bounds[i] > bounds[i-1], "equi-width boundaries must be strictly increasing")
	}
}

func TestChooseBoundariesEquiDepthBalancesCounts(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i)
	}

	bounds := ChooseBoundaries(values, 4, EquiDepth)
	ibisassert.Equal(t, 3, len(bounds))

	counts := make([]int, len(bounds)+1)

	for _, v := range values {
		counts[BinOf(bounds, v)]++
	}

	for _, c := range counts {
		ibisassert.True(t, c >= 20 && c <= 30, "equi-depth bins should hold roughly N/nobs rows each")
	}
}

func TestChooseBoundariesIntegralSnapRounds(t *testing.T) {
	values := []float64{0.1, 10.6, 20.2, 30.9}
	bounds := ChooseBoundaries(values, 3, IntegralSnap)

	for _, b := range bounds {
		ibisassert.True(t, b == float64(int(b)), "integral-snap boundaries must be whole numbers")
	}
}

func TestQualityTrigger(t *testing.T) {
	ibisassert.True(t, QualityTrigger(50, 1, 100, 10), "a first bin holding half the rows must trigger recompute")
	ibisassert.True(t, !QualityTrigger(5, 5, 100, 10), "balanced endpoint bins must not trigger recompute")
}
