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

func TestMesaEncodeDecodeRoundTrip(t *testing.T) {
	bin := BuildBin(sampleValues(), sampleBounds())
	m := BuildMesa(bin)

	data, err := EncodeMesa(m)
	ibisassert.NoError(t, err)

	decoded, err := DecodeMesa(data)
	ibisassert.NoError(t, err)
	ibisassert.Equal(t, m.width, decoded.width)
}

func TestSliceEncodeDecodeRoundTrip(t *testing.T) {
	bin := BuildBin(sampleValues(), sampleBounds())
	s := BuildSlice(bin)

	data, err := EncodeSlice(s)
	ibisassert.NoError(t, err)

	decoded, err := DecodeSlice(data)
	ibisassert.NoError(t, err)

	for n := 0; n < bin.core.NSlots(); n++ {
		want, err := s.Equals(n)
		ibisassert.NoError(t, err)

		got, err := decoded.Equals(n)
		ibisassert.NoError(t, err)

		ibisassert.Equal(t, uint64(0), bitvector.Xor(want, got).Cnt(), "ordinal %d", n)
	}
}

func TestEgaleEncodeDecodeRoundTrip(t *testing.T) {
	bin := BuildBin(sampleValues(), sampleBounds())
	e := BuildEgale(bin, ChooseBases(bin.core.NSlots(), 2))

	data, err := EncodeEgale(e)
	ibisassert.NoError(t, err)

	decoded, err := DecodeEgale(data)
	ibisassert.NoError(t, err)
	ibisassert.Equal(t, len(e.bases), len(decoded.bases))
}

func TestFadeEncodeDecodeRoundTrip(t *testing.T) {
	bin := BuildBin(sampleValues(), sampleBounds())
	f := BuildFade(bin, ChooseBases(bin.core.NSlots(), 2))

	data, err := EncodeFade(f)
	ibisassert.NoError(t, err)

	decoded, err := DecodeFade(data)
	ibisassert.NoError(t, err)

	for n := 0; n < bin.core.NSlots(); n++ {
		want, err := f.AtMost(n)
		ibisassert.NoError(t, err)

		got, err := decoded.AtMost(n)
		ibisassert.NoError(t, err)

		ibisassert.Equal(t, uint64(0), bitvector.Xor(want, got).Cnt(), "ordinal %d", n)
	}
}

func TestSbiadEncodeDecodeRoundTrip(t *testing.T) {
	bin := BuildBin(sampleValues(), sampleBounds())
	f := BuildFade(bin, ChooseBases(bin.core.NSlots(), 2))
	s := BuildSbiad(f)

	data, err := EncodeSbiad(s)
	ibisassert.NoError(t, err)

	decoded, err := DecodeSbiad(data)
	ibisassert.NoError(t, err)
	ibisassert.Equal(t, len(s.width), len(decoded.width))
}

func TestTwoLevelEncodeDecodeRoundTrip(t *testing.T) {
	bin, _ := buildFineFor1024(2048)
	tl := BuildTwoLevel(KindAmbit, TwoLevelRange, bin, 32, 1<<30)

	data, err := EncodeTwoLevel(tl)
	ibisassert.NoError(t, err)

	decoded, err := DecodeTwoLevel(data)
	ibisassert.NoError(t, err)
	ibisassert.Equal(t, KindAmbit, decoded.Kind())
	ibisassert.Equal(t, len(tl.fineSpan), len(decoded.fineSpan))
}
