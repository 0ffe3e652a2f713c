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
	"math/bits"

	log "github.com/sirupsen/logrus"

	"github.com/gingi/go-ibis/internal/ibiserr"
)

// op is a per-bit combining function used by the binary operations below.
type op func(a, b uint32) uint32

func opAnd(a, b uint32) uint32    { return a & b }
func opOr(a, b uint32) uint32     { return a | b }
func opXor(a, b uint32) uint32    { return a ^ b }
func opAndNot(a, b uint32) uint32 { return a &^ b }

// groupSource gives uniform access to "group g of this bitvector, zero
// extended beyond its real length", used by the binary-operation merge loop.
type groupSource struct {
	v         *Bitvector
	fullGroup uint64 // number of whole groups in the compressed stream
	hasTail   bool
	tailLen   uint32
}

func newGroupSource(v *Bitvector) groupSource {
	full := v.compressedGroups()
	return groupSource{v: v, fullGroup: full, hasTail: v.activeNBits > 0, tailLen: v.activeNBits}
}

// uniformRun reports whether group g begins a run of groups sharing the same
// constant bit value, and how long that run is (capped to the compressed
// region; it never spans into the tail or past-end zero padding, which
// callers handle separately).
func (s groupSource) uniformRun(g uint64) (isUniform bool, bit bool, run uint64) {
	if g < s.fullGroup {
		loc := s.v.locateGroup(g)
		w := s.v.words.Get(loc.wordIdx)

		if isFillWord(w) {
			return true, fillWordBit(w), loc.groupStart + loc.groupCount - g
		}

		return false, false, 1
	}
	// beyond the compressed region and the tail: implicit zero run extending
	// arbitrarily far (caller caps it to the output length).
	if !s.hasTail || g > s.fullGroup {
		return true, false, ^uint64(0)
	}
	// exactly the tail group: not uniform in general.
	return false, false, 1
}

// literalValue returns the raw (up to 31-bit) value of group g, zero padded
// beyond this operand's real length.
func (s groupSource) literalValue(g uint64) uint32 {
	if g < s.fullGroup {
		loc := s.v.locateGroup(g)
		w := s.v.words.Get(loc.wordIdx)

		if isFillWord(w) {
			if fillWordBit(w) {
				return uint32(allOnes)
			}

			return 0
		}

		return literalBits(w)
	}

	if s.hasTail && g == s.fullGroup {
		return s.v.activeVal
	}

	return 0
}

// combine implements the shared binary-operation algorithm: two aligned
// 31-bit-group cursors, classifying each side as fill or literal at every
// step, folding the two active tails at the end.
// Differing operand lengths are implicitly zero-padded with a warning,
// rather than treated as an error.
func combine(a, b *Bitvector, f op) *Bitvector {
	if a.length != b.length {
		log.Warnf("combining bitvectors of differing length (%d vs %d); implicitly zero-padding", a.length, b.length)
	}

	lenMax := max(a.length, b.length)
	fullGroups := lenMax / groupBits
	tailLen := lenMax % groupBits

	sa := newGroupSource(a)
	sb := newGroupSource(b)

	result := New()
	result.ensureUniqueWords()

	var g uint64

	for g < fullGroups {
		uniA, bitA, runA := sa.uniformRun(g)
		uniB, bitB, runB := sb.uniformRun(g)

		if uniA && uniB {
			run := min(runA, runB, fullGroups-g)
			result.appendFillGroups(f(boolToMask(bitA), boolToMask(bitB)) != 0, run)
			g += run

			continue
		}

		va := sa.literalValue(g)
		vb := sb.literalValue(g)
		result.words = result.words.Append(makeLiteralWord(f(va, vb)))
		g++
	}

	if tailLen > 0 {
		va := sa.literalValue(fullGroups) & ((1 << tailLen) - 1)
		vb := sb.literalValue(fullGroups) & ((1 << tailLen) - 1)
		result.activeVal = f(va, vb) & ((1 << tailLen) - 1)
		result.activeNBits = uint32(tailLen)
	}

	result.length = lenMax
	result.nsetValid = false

	return result
}

func boolToMask(b bool) uint32 {
	if b {
		return uint32(allOnes)
	}

	return 0
}

// And returns the bitwise AND of a and b.
func And(a, b *Bitvector) *Bitvector { return combine(a, b, opAnd) }

// Or returns the bitwise OR of a and b.
func Or(a, b *Bitvector) *Bitvector { return combine(a, b, opOr) }

// Xor returns the bitwise XOR of a and b.
func Xor(a, b *Bitvector) *Bitvector { return combine(a, b, opXor) }

// Minus returns a AND NOT b.
func Minus(a, b *Bitvector) *Bitvector { return combine(a, b, opAndNot) }

// Count returns the population count of And(a, b) without materialising the
// intermediate bitvector.
func Count(a, b *Bitvector) uint64 {
	if a.length != b.length {
		log.Warnf("counting AND of bitvectors of differing length (%d vs %d); implicitly zero-padding", a.length, b.length)
	}

	lenMax := max(a.length, b.length)
	fullGroups := lenMax / groupBits
	tailLen := lenMax % groupBits

	sa := newGroupSource(a)
	sb := newGroupSource(b)

	var total uint64

	var g uint64

	for g < fullGroups {
		uniA, bitA, runA := sa.uniformRun(g)
		uniB, bitB, runB := sb.uniformRun(g)

		if uniA && uniB {
			run := min(runA, runB, fullGroups-g)

			if bitA && bitB {
				total += run * groupBits
			}

			g += run

			continue
		}

		va := sa.literalValue(g)
		vb := sb.literalValue(g)
		total += uint64(popcountGroup(va & vb))
		g++
	}

	if tailLen > 0 {
		va := sa.literalValue(fullGroups) & ((1 << tailLen) - 1)
		vb := sb.literalValue(fullGroups) & ((1 << tailLen) - 1)
		total += uint64(bits.OnesCount32(va & vb))
	}

	return total
}

// Flip returns the logical complement of v over its currently known length.
func Flip(v *Bitvector) *Bitvector {
	out := v.Clone()
	out.ensureUniqueWords()

	words := out.words.Slice()
	for i, w := range words {
		if isFillWord(w) {
			words[i] = w ^ fillBit
		} else {
			words[i] = (^w) & allOnes
		}
	}

	if out.activeNBits > 0 {
		mask := uint32(1)<<out.activeNBits - 1
		out.activeVal = (^out.activeVal) & mask
	}

	if out.nsetValid {
		out.nset = out.length - out.nset
	}

	return out
}

// Decompress returns a new bitvector containing one literal word per group,
// or an out-of-memory error if the result would exceed MaxDecompressBytes.
func Decompress(v *Bitvector) (*Bitvector, error) {
	groups := v.compressedGroups()
	if groups*4 > uint64(MaxDecompressBytes) {
		return nil, ibiserr.New(ibiserr.OutOfMemory, "decompressed bitvector would exceed memory budget")
	}

	out := New()
	out.ensureUniqueWords()

	src := newGroupSource(v)
	for g := uint64(0); g < groups; g++ {
		out.words = out.words.Append(makeLiteralWord(src.literalValue(g)))
	}

	out.activeVal = v.activeVal
	out.activeNBits = v.activeNBits
	out.length = v.length
	out.nsetValid = false

	return out, nil
}

// Compress returns the canonical WAH form of v: adjacent same-type fills
// merged, literals equal to an adjacent fill's value absorbed into it, and a
// fill of a single group stored as a literal.
func Compress(v *Bitvector) *Bitvector {
	out := New()

	for _, w := range v.words.Slice() {
		if !isFillWord(w) && (w == 0 || w == allOnes) {
			out.appendFillGroups(w != 0, 1)
			out.length += groupBits
			out.nsetValid = false

			continue
		}

		out.AppendWord(w)
	}

	words := out.words.Slice()
	for i, w := range words {
		if isFillWord(w) && fillWordCount(w) == 1 {
			words[i] = makeLiteralWord(boolToMask(fillWordBit(w)))
		}
	}

	for i := uint32(0); i < v.activeNBits; i++ {
		out.AppendBit(v.activeVal&(1<<i) != 0)
	}

	return out
}
