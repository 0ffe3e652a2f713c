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

// Package index implements the binned bitmap index family: equality-on-bins,
// cumulative range-encoded, interval-encoded, bit-sliced, mixed-radix
// multi-component, and two-level hierarchical variants, all sharing the
// common IndexCore layout and the locate/compose/rescan evaluation protocol.
package index

import (
	"sync"

	"github.com/gingi/go-ibis/internal/bitvector"
	"github.com/gingi/go-ibis/internal/collab"
	"github.com/gingi/go-ibis/internal/ibiserr"
)

// Type tags the index variant, mirroring the on-disk type byte.
type Type uint8

// The recognised index variants.
const (
	KindBin Type = iota
	KindRange
	KindAmbit
	KindPale
	KindFuge
	_
	KindMesa
	KindEgale
	KindFade
	KindSbiad
	KindSlice
)

// String names a Type for logging.
func (t Type) String() string {
	switch t {
	case KindBin:
		return "bin"
	case KindRange:
		return "range"
	case KindAmbit:
		return "ambit"
	case KindPale:
		return "pale"
	case KindFuge:
		return "fuge"
	case KindMesa:
		return "mesa"
	case KindEgale:
		return "egale"
	case KindFade:
		return "fade"
	case KindSbiad:
		return "sbiad"
	case KindSlice:
		return "slice"
	default:
		return "unknown"
	}
}

// slot is one lazily-activated bitvector, loaded from its file offset on
// first use under mu.
type slot struct {
	mu  sync.Mutex
	bv  *bitvector.Bitvector
	off int32
	end int32
}

func (s *slot) activate(loader func(off, end int32) (*bitvector.Bitvector, error)) (*bitvector.Bitvector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bv != nil {
		return s.bv, nil
	}

	if s.end <= s.off {
		return nil, nil // absent slot: caller substitutes an all-zero bitvector
	}

	bv, err := loader(s.off, s.end)
	if err != nil {
		return nil, err
	}

	s.bv = bv

	return bv, nil
}

// Core holds the bin-boundary layout and lazy bitvector slots shared by
// every index variant.
type Core struct {
	NRows  uint64
	Bounds []float64 // strictly increasing bin boundaries, length nobs
	MinVal []float64 // observed min per bin, length NSlots() (nobs+1, including the implicit top bin)
	MaxVal []float64 // observed max per bin, length NSlots() (nobs+1, including the implicit top bin)

	slots  []*slot
	loader func(off, end int32) (*bitvector.Bitvector, error)
}

// NewCore constructs a Core with k in-memory bitvector slots, ready for a
// freshly built (not yet persisted) index.
func NewCore(nrows uint64, bounds, minval, maxval []float64, bits []*bitvector.Bitvector) *Core {
	slots := make([]*slot, len(bits))
	for i, bv := range bits {
		slots[i] = &slot{bv: bv}
	}

	return &Core{NRows: nrows, Bounds: bounds, MinVal: minval, MaxVal: maxval, slots: slots}
}

// NewLazyCore constructs a Core whose bitvectors are not yet resident; each
// is loaded on first Bit() call via loader, using the given offset table.
func NewLazyCore(nrows uint64, bounds, minval, maxval []float64, offsets []int32, loader func(off, end int32) (*bitvector.Bitvector, error)) *Core {
	slots := make([]*slot, len(offsets)-1)
	for i := range slots {
		slots[i] = &slot{off: offsets[i], end: offsets[i+1]}
	}

	return &Core{NRows: nrows, Bounds: bounds, MinVal: minval, MaxVal: maxval, slots: slots, loader: loader}
}

// NObs returns the number of bin boundaries (bin count minus the implicit
// top bin).
func (c *Core) NObs() int {
	return len(c.Bounds)
}

// NSlots returns the number of bitvector slots.
func (c *Core) NSlots() int {
	return len(c.slots)
}

// Bit activates and returns slot i, substituting an all-zero bitvector of
// length NRows when the slot is absent (offsets[i+1] == offsets[i]).
func (c *Core) Bit(i int) (*bitvector.Bitvector, error) {
	if i < 0 || i >= len(c.slots) {
		return nil, ibiserr.New(ibiserr.Invariant, "bitvector slot index out of range")
	}

	s := c.slots[i]

	s.mu.Lock()
	if s.bv != nil {
		bv := s.bv
		s.mu.Unlock()

		return bv, nil
	}
	s.mu.Unlock()

	if c.loader == nil {
		return bitvector.NewOfLength(c.NRows), nil
	}

	bv, err := s.activate(c.loader)
	if err != nil {
		return nil, ibiserr.Wrap(ibiserr.IO, err, "failed to activate bitvector slot")
	}

	if bv == nil {
		return bitvector.NewOfLength(c.NRows), nil
	}

	return bv, nil
}

// SetBit replaces slot i's resident bitvector, used while building.
func (c *Core) SetBit(i int, bv *bitvector.Bitvector) {
	c.slots[i].mu.Lock()
	c.slots[i].bv = bv
	c.slots[i].mu.Unlock()
}

// ActivateRange forces every slot in [lo, hi) to load, matching the "activate
// only the candidate interval" policy predicate evaluation relies on.
func (c *Core) ActivateRange(lo, hi int) ([]*bitvector.Bitvector, error) {
	if lo < 0 {
		lo = 0
	}

	if hi > len(c.slots) {
		hi = len(c.slots)
	}

	out := make([]*bitvector.Bitvector, 0, hi-lo)

	for i := lo; i < hi; i++ {
		bv, err := c.Bit(i)
		if err != nil {
			return nil, err
		}

		out = append(out, bv)
	}

	return out, nil
}

// unionRange ORs together bits[lo, hi).
func (c *Core) unionRange(lo, hi int) (*bitvector.Bitvector, error) {
	out := bitvector.NewOfLength(c.NRows)

	bvs, err := c.ActivateRange(lo, hi)
	if err != nil {
		return nil, err
	}

	for _, bv := range bvs {
		out = bitvector.Or(out, bv)
	}

	return out, nil
}

// BinOf returns the bin index that value falls into, given nobs boundaries:
// bin i holds values in [bounds[i-1], bounds[i]), bin nobs is the implicit
// tail bin for values >= bounds[nobs-1].
func BinOf(bounds []float64, value float64) int {
	lo, hi := 0, len(bounds)

	for lo < hi {
		mid := (lo + hi) / 2
		if value < bounds[mid] {
			hi = mid
		} else {
			lo = mid + 1
		}
	}

	return lo
}

// Predicate is re-exported for callers that only need the index package.
type Predicate = collab.Predicate
