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
	"math"

	"github.com/gingi/go-ibis/internal/bitvector"
	"github.com/gingi/go-ibis/internal/collab"
)

// TwoLevelKind selects the outer-structure encoding of a two-level index:
// ambit/pale use a cumulative range over coarse bins, fuge uses plain
// equality bins.
type TwoLevelKind int

// The two outer-structure encodings a TwoLevel index may use.
const (
	TwoLevelRange TwoLevelKind = iota
	TwoLevelBin
)

// TwoLevel is the ambit/pale/fuge hierarchical index: a coarse range or bin
// index over coarse boundaries, with an optional fine sub-index per coarse
// bin covering that coarse bin's interior fine boundaries.
type TwoLevel struct {
	kind TwoLevelKind
	tag  Type // KindAmbit, KindPale, or KindFuge: the on-disk type tag

	coarseRange *Range // set when kind == TwoLevelRange
	coarseBin   *Bin   // set when kind == TwoLevelBin

	fine *Bin // the full fine-grained bin index this structure coarsens

	// coarseOf[i] gives the coarse bin index owning fine bin i.
	coarseOf []int
	// fineSpan[c] gives the [lo, hi) fine-bin range covered by coarse bin c.
	fineSpan [][2]int

	// subThreshold is the fine-bin-width cutoff BuildTwoLevel was called
	// with, retained for Encode/DecodeTwoLevel's serialization round-trip.
	subThreshold int

	// sub holds a per-coarse-bin fine sub-index; nil entries mean "no
	// sub-index, coarse bin already precise enough". It is not serialized:
	// DecodeTwoLevel rebuilds it from the stored subThreshold.
	sub []Index
}

// ChooseCoarseCount implements the coarse bin count heuristic: nc ≈
// min(sqrt(2*nobs), max(5, (B-1)*s/(sqrt(2)*N))), where s is the total
// serialized size in bytes of the fine-level bitvectors and N is bits per
// bitvector (nrows).
func ChooseCoarseCount(nobs int, nrows uint64, serializedFineBytes uint64) int {
	if nobs < 1 {
		return 1
	}

	boundA := math.Sqrt(2 * float64(nobs))

	var boundB float64
	if nrows > 0 {
		boundB = (float64(groupBits-1) * float64(serializedFineBytes)) / (math.Sqrt2 * float64(nrows))
	}

	if boundB < 5 {
		boundB = 5
	}

	nc := boundA
	if boundB < nc {
		nc = boundB
	}

	n := int(math.Round(nc))
	if n < 1 {
		n = 1
	}

	if n > nobs {
		n = nobs
	}

	return n
}

// partitionCoarse splits nobs fine bins across nc coarse bins as evenly as
// possible, the "near-equal bytes split" degenerating to a near-equal count
// split when no per-bin byte-size model is available.
func partitionCoarse(nobs, nc int) [][2]int {
	if nc < 1 {
		nc = 1
	}

	if nc > nobs {
		nc = nobs
	}

	spans := make([][2]int, nc)
	base := nobs / nc
	rem := nobs % nc
	lo := 0

	for c := 0; c < nc; c++ {
		width := base
		if c < rem {
			width++
		}

		spans[c] = [2]int{lo, lo + width}
		lo += width
	}

	return spans
}

// BuildTwoLevel derives a TwoLevel index from an already-built fine Bin
// index, coarsening it into nc coarse bins (via ChooseCoarseCount when
// nc <= 0) and optionally attaching a fine sub-index to coarse bins whose
// width exceeds subThreshold fine bins. tag picks the on-disk variant:
// KindAmbit and KindPale both use a cumulative-range outer structure (kind
// must be TwoLevelRange), differing only in that KindPale never attaches a
// fine sub-index — its coarse level is always considered precise enough.
// KindFuge uses a bin outer structure (kind must be TwoLevelBin).
func BuildTwoLevel(tag Type, kind TwoLevelKind, fine *Bin, nc int, subThreshold int) *TwoLevel {
	nobs := len(fine.core.Bounds) + 1

	if nc <= 0 {
		nc = ChooseCoarseCount(nobs, fine.core.NRows, 0)
	}

	spans := partitionCoarse(nobs, nc)

	coarseOf := make([]int, nobs)
	for c, span := range spans {
		for i := span[0]; i < span[1]; i++ {
			coarseOf[i] = c
		}
	}

	coarseBits := make([]*bitvector.Bitvector, len(spans))
	coarseBounds := make([]float64, 0, len(spans)-1)
	coarseMin := make([]float64, len(spans))
	coarseMax := make([]float64, len(spans))

	for c, span := range spans {
		bv, _ := fine.core.unionRange(span[0], span[1])
		coarseBits[c] = bv

		coarseMin[c] = fine.core.MinVal[clampIdx(span[0], len(fine.core.MinVal))]
		maxIdx := span[1] - 1
		coarseMax[c] = fine.core.MaxVal[clampIdx(maxIdx, len(fine.core.MaxVal))]

		if span[1] < len(fine.core.Bounds) {
			coarseBounds = append(coarseBounds, fine.core.Bounds[span[1]-1])
		}
	}

	tl := &TwoLevel{kind: kind, tag: tag, fine: fine, coarseOf: coarseOf, fineSpan: spans, subThreshold: subThreshold}

	switch kind {
	case TwoLevelBin:
		core := NewCore(fine.core.NRows, coarseBounds, coarseMin, coarseMax, coarseBits)
		tl.coarseBin = NewBin(core)
	default:
		cum := make([]*bitvector.Bitvector, len(coarseBits))
		running := bitvector.NewOfLength(fine.core.NRows)

		for i, bv := range coarseBits {
			running = bitvector.Or(running, bv)
			cum[i] = running
		}

		core := NewCore(fine.core.NRows, coarseBounds, coarseMin, coarseMax, cum)
		tl.coarseRange = NewRange(core, coarseMin, coarseMax)
	}

	tl.sub = make([]Index, len(spans))

	if tag != KindPale {
		for c, span := range spans {
			if span[1]-span[0] <= subThreshold {
				continue
			}

			tl.sub[c] = fine
		}
	}

	return tl
}

func clampIdx(i, n int) int {
	if n == 0 {
		return 0
	}

	if i < 0 {
		return 0
	}

	if i >= n {
		return n - 1
	}

	return i
}

// Kind implements Index, reporting the on-disk variant tag.
func (t *TwoLevel) Kind() Type { return t.tag }

// Core implements Index, returning the fine-level core (the one holding
// per-row-resolution min/max bounds used for Locate against raw predicates).
func (t *TwoLevel) Core() *Core { return t.fine.core }

// Locate implements Index over the fine-level bin boundaries; the coarse
// structure is consulted only during composition, where its precomputed
// unions let the engine avoid a full fine-level scan.
func (t *TwoLevel) Locate(p collab.Predicate) LocateResult {
	return t.fine.Locate(p)
}

// ComposeHits implements Index, selecting among the candidate plans
// described by the query-evaluation algorithm: when the hit span stays
// within one coarse bin, pick the cheaper of a pure fine-level sum or a
// coarse-minus-fringe computation; otherwise compose one coarse bitvector
// with the two fine-level edge fringes.
func (t *TwoLevel) ComposeHits(loc LocateResult) (*bitvector.Bitvector, error) {
	return t.compose(loc.Hit0, loc.Hit1)
}

// ComposeCandidates implements Index.
func (t *TwoLevel) ComposeCandidates(loc LocateResult) (*bitvector.Bitvector, error) {
	return t.compose(loc.Cand0, loc.Cand1)
}

func (t *TwoLevel) compose(lo, hi int) (*bitvector.Bitvector, error) {
	if hi <= lo {
		return bitvector.NewOfLength(t.fine.core.NRows), nil
	}

	c0 := t.coarseOf[clampIdx(lo, len(t.coarseOf))]
	c1 := t.coarseOf[clampIdx(hi-1, len(t.coarseOf))]

	if c0 == c1 {
		return t.composeSingleCoarse(c0, lo, hi)
	}

	return t.composeMultiCoarse(c0, c1, lo, hi)
}

// composeSingleCoarse implements step 2 of the query evaluation algorithm: a
// cost comparison between a pure fine-level sum over [lo, hi) and the coarse
// bin's bitvector minus its non-hit fringe (itself computed at the fine
// level). Fine-union cost is approximated by span width; coarse-minus-fringe
// cost by the two fringe widths, mirroring the serialized-size-driven
// comparison without needing on-disk byte counts at query time.
func (t *TwoLevel) composeSingleCoarse(c, lo, hi int) (*bitvector.Bitvector, error) {
	span := t.fineSpan[c]

	fringeLo := lo - span[0]
	fringeHi := span[1] - hi

	pureFineCost := hi - lo
	coarseMinusFringeCost := fringeLo + fringeHi

	if coarseMinusFringeCost >= pureFineCost {
		return t.fine.core.unionRange(lo, hi)
	}

	coarse, err := t.coarseBitvector(c)
	if err != nil {
		return nil, err
	}

	if fringeLo > 0 {
		left, err := t.fine.core.unionRange(span[0], lo)
		if err != nil {
			return nil, err
		}

		coarse = bitvector.Minus(coarse, left)
	}

	if fringeHi > 0 {
		right, err := t.fine.core.unionRange(hi, span[1])
		if err != nil {
			return nil, err
		}

		coarse = bitvector.Minus(coarse, right)
	}

	return coarse, nil
}

// composeMultiCoarse implements step 3: compose the coarse span strictly
// between c0 and c1 with the two fine-level edge fringes. Of the five plans
// the algorithm describes (direct|-|direct, complement|-|direct,
// direct|-|complement, complement|-|complement, pure-fine), this picks
// direct|-|direct when the interior coarse span is non-trivial (the common
// case) and pure-fine when it collapses to nothing, which dominates the
// other three plans whenever the edge fringes are the significant cost (the
// interior already being a direct union, complementing it can only add an
// extra full-bitvector Flip).
func (t *TwoLevel) composeMultiCoarse(c0, c1, lo, hi int) (*bitvector.Bitvector, error) {
	span0 := t.fineSpan[c0]
	span1 := t.fineSpan[c1]

	if c0+1 > c1-1 {
		return t.fine.core.unionRange(lo, hi)
	}

	var (
		interior *bitvector.Bitvector
		err      error
	)

	if t.coarseRange != nil {
		interior, err = t.coarseRange.composeSpan(c0+1, c1)
	} else {
		interior, err = t.coarseCore().unionRange(c0+1, c1)
	}

	if err != nil {
		return nil, err
	}

	if lo > span0[0] {
		leftFringe, err := t.fine.core.unionRange(lo, span0[1])
		if err != nil {
			return nil, err
		}

		interior = bitvector.Or(interior, leftFringe)
	} else {
		left, err := t.coarseBitvector(c0)
		if err != nil {
			return nil, err
		}

		interior = bitvector.Or(interior, left)
	}

	if hi < span1[1] {
		rightFringe, err := t.fine.core.unionRange(span1[0], hi)
		if err != nil {
			return nil, err
		}

		interior = bitvector.Or(interior, rightFringe)
	} else {
		right, err := t.coarseBitvector(c1)
		if err != nil {
			return nil, err
		}

		interior = bitvector.Or(interior, right)
	}

	return interior, nil
}

func (t *TwoLevel) coarseCore() *Core {
	if t.coarseBin != nil {
		return t.coarseBin.core
	}

	return t.coarseRange.core
}

func (t *TwoLevel) coarseBitvector(c int) (*bitvector.Bitvector, error) {
	if t.coarseBin != nil {
		return t.coarseBin.core.Bit(c)
	}

	return t.coarseRange.composeSpan(c, c+1)
}

