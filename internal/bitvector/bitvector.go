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
	"fmt"
	"math/bits"
	"strings"

	"github.com/gingi/go-ibis/internal/ibiserr"
	"github.com/gingi/go-ibis/internal/storage"
)

// MaxDecompressBytes bounds how large a fully-literal decompression is
// allowed to grow before Decompress reports an out-of-memory error rather
// than attempting the allocation.
var MaxDecompressBytes = 1 << 30

// Bitvector is a WAH-compressed Boolean sequence. The zero value is not
// valid; use New.
type Bitvector struct {
	words       *storage.Store[uint32]
	activeVal   uint32
	activeNBits uint32
	length      uint64
	nset        uint64
	nsetValid   bool
}

// New constructs an empty bitvector.
func New() *Bitvector {
	return &Bitvector{words: storage.New[uint32](0), nsetValid: true}
}

// NewOfLength constructs an all-zero bitvector of the given length, as used
// when deserializing an absent (all-zero) bitvector slot.
func NewOfLength(n uint64) *Bitvector {
	v := New()
	v.AppendFill(false, n)

	return v
}

// Clone makes an independent copy of this bitvector. Backing word storage is
// shared (reference counted) until one of the copies mutates it.
func (v *Bitvector) Clone() *Bitvector {
	return &Bitvector{
		words:       v.words.Ref(),
		activeVal:   v.activeVal,
		activeNBits: v.activeNBits,
		length:      v.length,
		nset:        v.nset,
		nsetValid:   v.nsetValid,
	}
}

// Len returns the logical length in bits.
func (v *Bitvector) Len() uint64 {
	return v.length
}

// compressedGroups returns the number of whole 31-bit groups stored in the
// compressed code-word stream (excludes the active tail).
func (v *Bitvector) compressedGroups() uint64 {
	var n uint64

	for _, w := range v.words.Slice() {
		if isFillWord(w) {
			n += uint64(fillWordCount(w))
		} else {
			n++
		}
	}

	return n
}

// ensureUniqueWords clones the backing word storage if it is shared, so
// subsequent in-place mutation is safe.
func (v *Bitvector) ensureUniqueWords() {
	v.words = v.words.EnsureUnique()
}

// AppendBit appends a single bit. Bits accumulate in the active tail until a
// full group forms, at which point the tail is flushed into a code word.
func (v *Bitvector) AppendBit(b bool) {
	if b {
		v.activeVal |= 1 << v.activeNBits
	}

	v.activeNBits++
	v.length++
	v.nsetValid = false

	if v.activeNBits == groupBits {
		v.flushActive()
	}
}

// flushActive emits the active buffer as a code word (merging into an
// adjacent matching fill when the buffer happens to be uniform), then resets
// it.
func (v *Bitvector) flushActive() {
	if v.activeNBits == 0 {
		return
	}

	if v.activeNBits == groupBits && (v.activeVal == 0 || v.activeVal == uint32(allOnes)) {
		v.appendFillGroups(v.activeVal != 0, 1)
	} else {
		v.ensureUniqueWords()
		v.words = v.words.Append(makeLiteralWord(v.activeVal))
	}

	v.activeVal = 0
	v.activeNBits = 0
}

// appendFillGroups appends n whole groups of the given constant bit,
// splitting across multiple fill words when n exceeds a single word's
// capacity (MAXCNT) and merging with a trailing fill word of the same bit
// when possible.
func (v *Bitvector) appendFillGroups(bit bool, n uint64) {
	if n == 0 {
		return
	}

	v.ensureUniqueWords()

	if last := v.words.Len() - 1; last >= 0 {
		w := v.words.Get(last)
		if isFillWord(w) && fillWordBit(w) == bit {
			room := uint64(maxCnt) - uint64(fillWordCount(w))
			if room > 0 {
				take := min(room, n)
				v.words.Set(last, makeFillWord(bit, fillWordCount(w)+uint32(take)))
				n -= take
			}
		}
	}

	for n > 0 {
		take := n
		if take > uint64(maxCnt) {
			take = uint64(maxCnt)
		}

		v.words = v.words.Append(makeFillWord(bit, uint32(take)))
		n -= take
	}
}

// AppendFill appends n bits all equal to bit.
func (v *Bitvector) AppendFill(bit bool, n uint64) {
	// top up a partial active buffer first so the remainder aligns to group
	// boundaries.
	for n > 0 && v.activeNBits > 0 {
		v.AppendBit(bit)

		n--
	}

	if n == 0 {
		return
	}

	groups := n / groupBits
	rem := n % groupBits

	if groups > 0 {
		v.appendFillGroups(bit, groups)
		v.length += groups * groupBits
		v.nsetValid = false
	}

	for i := uint64(0); i < rem; i++ {
		v.AppendBit(bit)
	}
}

// AppendWord appends a single, already-encoded WAH code word directly to the
// compressed stream, first flushing any pending active buffer.
func (v *Bitvector) AppendWord(w Word) {
	v.flushActive()

	if isFillWord(w) {
		c := uint64(fillWordCount(w))
		v.appendFillGroups(fillWordBit(w), c)
		v.length += c * groupBits
	} else {
		v.ensureUniqueWords()
		v.words = v.words.Append(w)
		v.length += groupBits
	}

	v.nsetValid = false
}

// wordLocation identifies the code word covering a given group index.
type wordLocation struct {
	wordIdx    int
	groupStart uint64 // absolute group index where this word's run starts
	groupCount uint64 // number of groups this word spans (1 for a literal)
}

// locateGroup finds the code word covering group index g. It panics if g is
// out of range of the compressed region; callers must check bounds first.
func (v *Bitvector) locateGroup(g uint64) wordLocation {
	var base uint64

	words := v.words.Slice()
	for i, w := range words {
		var count uint64
		if isFillWord(w) {
			count = uint64(fillWordCount(w))
		} else {
			count = 1
		}

		if g < base+count {
			return wordLocation{wordIdx: i, groupStart: base, groupCount: count}
		}

		base += count
	}

	panic("locateGroup: group index out of range")
}

// SetBit sets (or clears) the bit at index i, growing the bitvector with
// zeros if i is beyond the current length.
func (v *Bitvector) SetBit(i uint64, b bool) {
	if i >= v.length {
		gap := i - v.length
		v.AppendFill(false, gap)
		v.AppendBit(b)

		return
	}

	compLen := v.compressedGroups() * groupBits

	if i >= compLen {
		off := uint32(i - compLen)
		mask := uint32(1) << off
		old := v.activeVal&mask != 0

		if b {
			v.activeVal |= mask
		} else {
			v.activeVal &^= mask
		}

		if old != b && v.nsetValid {
			v.bumpNset(b)
		}

		return
	}

	v.setBitCompressed(i, b)
}

func (v *Bitvector) bumpNset(setTo bool) {
	if setTo {
		v.nset++
	} else {
		v.nset--
	}
}

// setBitCompressed handles the case where i falls within the compressed
// code-word stream, splitting a fill word into fill+literal+fill when
// necessary.
func (v *Bitvector) setBitCompressed(i uint64, b bool) {
	group := i / groupBits
	offset := uint32(i % groupBits)
	loc := v.locateGroup(group)

	v.ensureUniqueWords()
	w := v.words.Get(loc.wordIdx)

	if !isFillWord(w) {
		mask := uint32(1) << offset
		old := w&mask != 0
		nw := w

		if b {
			nw |= mask
		} else {
			nw &^= mask
		}

		v.words.Set(loc.wordIdx, nw)

		if old != b && v.nsetValid {
			v.bumpNset(b)
		}

		return
	}

	fillBitVal := fillWordBit(w)
	if fillBitVal == b {
		return
	}

	localGroup := group - loc.groupStart
	replacement := make([]Word, 0, 3)

	if localGroup > 0 {
		replacement = append(replacement, makeFillWord(fillBitVal, uint32(localGroup)))
	}

	var litVal uint32
	if fillBitVal {
		litVal = uint32(allOnes)
	}

	mask := uint32(1) << offset
	if b {
		litVal |= mask
	} else {
		litVal &^= mask
	}

	replacement = append(replacement, makeLiteralWord(litVal))

	trailing := loc.groupCount - localGroup - 1
	if trailing > 0 {
		replacement = append(replacement, makeFillWord(fillBitVal, uint32(trailing)))
	}

	v.spliceWords(loc.wordIdx, replacement)

	if v.nsetValid {
		v.bumpNset(b)
	}
}

// spliceWords replaces the word at idx with the given replacement words.
func (v *Bitvector) spliceWords(idx int, replacement []Word) {
	old := v.words.Slice()
	combined := make([]Word, 0, len(old)+len(replacement)-1)
	combined = append(combined, old[:idx]...)
	combined = append(combined, replacement...)
	combined = append(combined, old[idx+1:]...)
	v.words = storage.Wrap(combined)
}

// GetBit returns the bit at index i, or false if i is beyond the current
// length.
func (v *Bitvector) GetBit(i uint64) bool {
	if i >= v.length {
		return false
	}

	compLen := v.compressedGroups() * groupBits

	if i >= compLen {
		off := uint32(i - compLen)
		return v.activeVal&(1<<off) != 0
	}

	group := i / groupBits
	offset := uint32(i % groupBits)
	loc := v.locateGroup(group)
	w := v.words.Get(loc.wordIdx)

	if isFillWord(w) {
		return fillWordBit(w)
	}

	return literalBits(w)&(1<<offset) != 0
}

// Cnt returns the population count, computing and caching it if stale
//).
func (v *Bitvector) Cnt() uint64 {
	if v.nsetValid {
		return v.nset
	}

	var n uint64

	for _, w := range v.words.Slice() {
		if isFillWord(w) {
			if fillWordBit(w) {
				n += uint64(fillWordCount(w)) * groupBits
			}
		} else {
			n += uint64(popcountGroup(literalBits(w)))
		}
	}

	n += uint64(bits.OnesCount32(v.activeVal))

	v.nset = n
	v.nsetValid = true

	return n
}

// VerifyCnt recomputes the population count from scratch and compares it
// against the cached value, returning an Invariant error on mismatch rather
// than logging and continuing with a possibly-stale count.
func (v *Bitvector) VerifyCnt() error {
	cached := v.nsetValid
	cachedVal := v.nset
	v.nsetValid = false
	actual := v.Cnt()

	if cached && cachedVal != actual {
		return ibiserr.New(ibiserr.Invariant,
			fmt.Sprintf("cached population count %d disagrees with recomputed count %d", cachedVal, actual))
	}

	return nil
}

// String renders the bitvector as a sequence of 0/1 characters, useful for
// debug logging of small test vectors.
func (v *Bitvector) String() string {
	var sb strings.Builder

	for i := uint64(0); i < v.length; i++ {
		if v.GetBit(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}

	return sb.String()
}
