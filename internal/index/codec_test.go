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

func TestBinEncodeDecodeRoundTrip(t *testing.T) {
	values := sampleValues()
	bounds := sampleBounds()
	bin := BuildBin(values, bounds)

	data, err := EncodeBin(bin)
	ibisassert.NoError(t, err)

	decoded, err := DecodeBin(data)
	ibisassert.NoError(t, err)

	ibisassert.Equal(t, bin.core.NSlots(), decoded.core.NSlots())

	for i := 0; i < bin.core.NSlots(); i++ {
		want, err := bin.core.Bit(i)
		ibisassert.NoError(t, err)

		got, err := decoded.core.Bit(i)
		ibisassert.NoError(t, err)

		ibisassert.Equal(t, uint64(0), bitvector.Xor(want, got).Cnt(), "slot %d", i)
	}

	// the implicit top bin's observed min/max (rows 30, 33, 40) must survive
	// the round trip alongside every other bin's.
	ibisassert.Equal(t, len(bin.core.MinVal), len(decoded.core.MinVal))
	ibisassert.Equal(t, len(bin.core.MaxVal), len(decoded.core.MaxVal))
	ibisassert.Equal(t, bin.core.MinVal[bin.core.NSlots()-1], decoded.core.MinVal[bin.core.NSlots()-1])
	ibisassert.Equal(t, bin.core.MaxVal[bin.core.NSlots()-1], decoded.core.MaxVal[bin.core.NSlots()-1])
}

func TestRangeEncodeDecodeRoundTrip(t *testing.T) {
	values := sampleValues()
	bounds := sampleBounds()
	bin := BuildBin(values, bounds)
	r := BuildRange(bin)

	data, err := EncodeRange(r)
	ibisassert.NoError(t, err)

	decoded, err := DecodeRange(data)
	ibisassert.NoError(t, err)

	for i := 0; i < r.core.NSlots(); i++ {
		want, err := r.core.Bit(i)
		ibisassert.NoError(t, err)

		got, err := decoded.core.Bit(i)
		ibisassert.NoError(t, err)

		ibisassert.Equal(t, uint64(0), bitvector.Xor(want, got).Cnt(), "slot %d", i)
	}
}

func TestDecodeBinRejectsWrongTypeTag(t *testing.T) {
	bin := BuildBin(sampleValues(), sampleBounds())
	r := BuildRange(bin)

	data, err := EncodeRange(r)
	ibisassert.NoError(t, err)

	_, err = DecodeBin(data)
	ibisassert.True(t, err != nil, "decoding a range file as a bin index must fail")
}
