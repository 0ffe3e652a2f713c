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

func TestMesaWindowAlignedComposeMatchesUnion(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	bounds := []float64{3, 6, 9, 12, 15, 18}
	bin := BuildBin(values, bounds)
	m := BuildMesa(bin)

	want, err := bin.core.unionRange(0, m.width)
	ibisassert.NoError(t, err)

	got, err := m.composeSpan(0, m.width)
	ibisassert.NoError(t, err)

	ibisassert.Equal(t, uint64(0), bitvector.Xor(want, got).Cnt())
}

func TestMesaNonAlignedFallsBackToUnion(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	bounds := []float64{3, 6, 9, 12, 15, 18}
	bin := BuildBin(values, bounds)
	m := BuildMesa(bin)

	want, err := bin.core.unionRange(0, 2)
	ibisassert.NoError(t, err)

	got, err := m.composeSpan(0, 2)
	ibisassert.NoError(t, err)

	ibisassert.Equal(t, uint64(0), bitvector.Xor(want, got).Cnt())
}
