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

package bitvector

import (
	"testing"

	"github.com/gingi/go-ibis/internal/ibisassert"
)

func buildOnes(n uint64) *Bitvector {
	v := New()
	v.AppendFill(true, n)

	return v
}

func buildAlternating(n uint64) *Bitvector {
	v := New()
	for i := uint64(0); i < n; i++ {
		v.AppendBit(i%2 == 1)
	}

	return v
}

// Scenario A — single 1-fill.
func TestScenarioSingleOnesFill(t *testing.T) {
	v := buildOnes(1_000_000)

	ibisassert.Equal(t, uint64(1_000_000), v.Cnt())
	ibisassert.Equal(t, uint64(1_000_000), v.Len())

	// One fill word covering the whole-group portion, plus an active tail.
	ibisassert.Equal(t, 1, v.words.Len())
	ibisassert.True(t, v.activeNBits > 0 && v.activeNBits < groupBits)
}

// Scenario B — alternating bits.
func TestScenarioAlternating(t *testing.T) {
	v := buildAlternating(1_000_000)

	ibisassert.Equal(t, uint64(500_000), v.Cnt())

	for _, w := range v.words.Slice() {
		ibisassert.True(t, !isFillWord(w), "alternating bits should never compress into a fill")
	}
}

// Scenario C — AND of sparse vectors.
func TestScenarioSparseAnd(t *testing.T) {
	a := New()
	a.SetBit(10, true)
	a.SetBit(10_000, true)
	a.SetBit(10_000_000, true)

	b := New()
	b.SetBit(10_000, true)
	b.SetBit(20_000, true)

	got := And(a, b)

	ibisassert.Equal(t, uint64(1), got.Cnt())

	it := NewSetBitIterator(got)
	ibisassert.True(t, it.HasNext())
	ibisassert.Equal(t, uint64(10_000), it.Next())
	ibisassert.True(t, !it.HasNext())

	bytes, err := got.MarshalBinary()
	ibisassert.NoError(t, err)
	ibisassert.True(t, len(bytes) < 64, "sparse AND result should serialize compactly")
}

func TestRoundTrip(t *testing.T) {
	v := New()

	for _, i := range []uint64{0, 5, 31, 62, 1000, 1_000_000} {
		v.SetBit(i, true)
	}

	data, err := v.MarshalBinary()
	ibisassert.NoError(t, err)

	back, err := UnmarshalBitvector(data)
	ibisassert.NoError(t, err)

	ibisassert.Equal(t, v.Len(), back.Len())
	ibisassert.Equal(t, v.Cnt(), back.Cnt())

	for i := uint64(0); i < v.Len(); i++ {
		if v.GetBit(i) != back.GetBit(i) {
			t.Fatalf("bit %d differs after round trip", i)
		}
	}
}

func TestCompressionInvariance(t *testing.T) {
	v := buildOnes(100_000)

	d, err := Decompress(v)
	ibisassert.NoError(t, err)

	c := Compress(v)
	cd, err := Decompress(c)
	ibisassert.NoError(t, err)

	ibisassert.Equal(t, d.Cnt(), cd.Cnt())
	ibisassert.Equal(t, d.Len(), cd.Len())
}

func randomish(n uint64, seed uint64) *Bitvector {
	v := New()
	x := seed

	for i := uint64(0); i < n; i++ {
		x = x*6364136223846793005 + 1442695040888963407
		v.AppendBit((x>>40)&1 == 1)
	}

	return v
}

func TestBooleanAlgebra(t *testing.T) {
	a := randomish(5000, 1)
	b := randomish(5000, 2)
	c := randomish(5000, 3)

	// commutativity
	ibisassert.Equal(t, And(a, b).Cnt(), And(b, a).Cnt())
	ibisassert.Equal(t, Or(a, b).Cnt(), Or(b, a).Cnt())

	// associativity of AND
	lhs := And(And(a, b), c)
	rhs := And(a, And(b, c))
	ibisassert.Equal(t, lhs.Cnt(), rhs.Cnt())

	// A - B == A AND NOT B
	minus := Minus(a, b)
	andNotB := And(a, Flip(b))
	ibisassert.Equal(t, minus.Cnt(), andNotB.Cnt())

	// A AND NOT A == 0
	ibisassert.Equal(t, uint64(0), And(a, Flip(a)).Cnt())

	// A OR NOT A == full
	ibisassert.Equal(t, a.Len(), Or(a, Flip(a)).Cnt())

	// De Morgan: NOT(A AND B) == (NOT A) OR (NOT B)
	lhs2 := Flip(And(a, b))
	rhs2 := Or(Flip(a), Flip(b))
	ibisassert.Equal(t, lhs2.Cnt(), rhs2.Cnt())
}

func TestSetBitPopcountDelta(t *testing.T) {
	v := buildOnes(1000)
	before := v.Cnt()
	v.SetBit(500, false)
	ibisassert.Equal(t, before-1, v.Cnt())
	ibisassert.True(t, !v.GetBit(500))
}

func TestCountVsAnd(t *testing.T) {
	a := randomish(3000, 11)
	b := randomish(3000, 12)

	ibisassert.Equal(t, And(a, b).Cnt(), Count(a, b))
}

func TestFlipIdempotence(t *testing.T) {
	v := randomish(2000, 99)
	twice := Flip(Flip(v))
	ibisassert.Equal(t, v.Cnt(), twice.Cnt())

	for i := uint64(0); i < v.Len(); i++ {
		if v.GetBit(i) != twice.GetBit(i) {
			t.Fatalf("bit %d differs after double flip", i)
		}
	}
}
