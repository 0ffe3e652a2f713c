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

// scenario E from the query-evaluator property tests: nobs=100, basis
// (10,10), col = bin 47 resolves to bin_mask[47] exactly.
func TestEgaleEqualityScenarioE(t *testing.T) {
	nrows := 1000
	values := make([]float64, nrows)
	bounds := make([]float64, 99)

	for i := range bounds {
		bounds[i] = float64(i + 1)
	}

	for i := range values {
		values[i] = float64(i % 100)
	}

	bin := BuildBin(values, bounds)
	e := BuildEgale(bin, []int{10, 10})

	want, err := bin.core.Bit(47)
	ibisassert.NoError(t, err)

	got, err := e.Equals(47)
	ibisassert.NoError(t, err)

	ibisassert.Equal(t, uint64(0), bitvector.Xor(want, got).Cnt())
}

func TestEgaleEqualityEveryOrdinal(t *testing.T) {
	values := sampleValues()
	bounds := sampleBounds()
	bin := BuildBin(values, bounds)
	e := BuildEgale(bin, nil)

	nbins := len(bounds) + 1

	for ord := 0; ord < nbins; ord++ {
		want, err := bin.core.Bit(ord)
		ibisassert.NoError(t, err)

		got, err := e.Equals(ord)
		ibisassert.NoError(t, err)

		ibisassert.Equal(t, uint64(0), bitvector.Xor(want, got).Cnt(), "ordinal %d", ord)
	}
}
