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

func TestFadeAtMostMatchesRangeCumulativeCut(t *testing.T) {
	values := sampleValues()
	bounds := sampleBounds()
	bin := BuildBin(values, bounds)
	f := BuildFade(bin, nil)
	r := BuildRange(bin)

	nbins := len(bounds) + 1

	for ord := 0; ord < nbins; ord++ {
		want, err := r.cumAt(ord)
		ibisassert.NoError(t, err)

		got, err := f.AtMost(ord)
		ibisassert.NoError(t, err)

		ibisassert.Equal(t, uint64(0), bitvector.Xor(want, got).Cnt(), "ordinal %d", ord)
	}
}

func TestFadeEqualsMatchesBinBit(t *testing.T) {
	values := sampleValues()
	bounds := sampleBounds()
	bin := BuildBin(values, bounds)
	f := BuildFade(bin, nil)

	nbins := len(bounds) + 1

	for ord := 0; ord < nbins; ord++ {
		want, err := bin.core.Bit(ord)
		ibisassert.NoError(t, err)

		got, err := f.Equals(ord)
		ibisassert.NoError(t, err)

		ibisassert.Equal(t, uint64(0), bitvector.Xor(want, got).Cnt(), "ordinal %d", ord)
	}
}

func TestFadeAtMostNegativeIsEmpty(t *testing.T) {
	bin := BuildBin(sampleValues(), sampleBounds())
	f := BuildFade(bin, nil)

	got, err := f.AtMost(-1)
	ibisassert.NoError(t, err)
	ibisassert.Equal(t, uint64(0), got.Cnt())
}

func TestSbiadDigitInWindowMatchesFadeCumulativeDifference(t *testing.T) {
	values := sampleValues()
	bounds := sampleBounds()
	bin := BuildBin(values, bounds)
	f := BuildFade(bin, nil)
	s := BuildSbiad(f)

	for j := range f.bases {
		got, err := s.DigitInWindow(j, 0)
		ibisassert.NoError(t, err)

		want := f.cum[j][s.width[j]-1]
		ibisassert.Equal(t, uint64(0), bitvector.Xor(want, got).Cnt())
	}
}
