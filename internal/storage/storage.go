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

// Package storage implements the typed, byte-aligned, reference-counted
// backing arrays used throughout the indexing engine: WAH code words, offset
// tables, and bin bounds. A Store[T] is either an
// owned in-memory slice or a read-only view onto a memory-mapped region; both
// arms share the same reference-counting discipline so bitvectors (and
// indexes) can cheaply alias storage until one of them needs to mutate it, at
// which point EnsureUnique clones. This mirrors the split between owned and
// pool/mmap-backed arrays in pkg/util/collection/array, generalised from
// field elements to the plain numeric element types this engine needs
// (uint32 code words, float64 bounds, int32 offsets).
package storage

import (
	"encoding/binary"
	"math"
	"sync/atomic"
)

func floatFromBits(bits uint64) float64 {
	return math.Float64frombits(bits)
}

// Elem is the set of element types a Store may hold.
type Elem interface {
	~uint32 | ~int32 | ~float64 | ~uint64
}

// refcount is shared by every clone of a Store produced via Ref(); the
// backing slice is only ever mutated in place when count == 1.
type refcount struct {
	n int32
}

func newRefcount() *refcount {
	return &refcount{n: 1}
}

func (r *refcount) incr() {
	atomic.AddInt32(&r.n, 1)
}

func (r *refcount) decr() int32 {
	return atomic.AddInt32(&r.n, -1)
}

func (r *refcount) count() int32 {
	return atomic.LoadInt32(&r.n)
}

// Store is a reference-counted, typed, byte-aligned array. The zero value is
// not usable; construct with New or Wrap.
type Store[T Elem] struct {
	data   []T
	raw    []byte // present only for a mapped view; nil for an owned slice
	mapped bool
	rc     *refcount
}

// New constructs an owned Store of the given length, all elements zero.
func New[T Elem](length int) *Store[T] {
	return &Store[T]{data: make([]T, length), rc: newRefcount()}
}

// Wrap constructs an owned Store around an existing slice, taking ownership
// of it (the caller must not retain a mutable alias).
func Wrap[T Elem](data []T) *Store[T] {
	return &Store[T]{data: data, rc: newRefcount()}
}

// WrapMapped constructs a read-only Store viewing a byte region obtained from
// a memory-mapped file (see internal/storage/mmapstore). Elements are decoded
// little-endian eagerly into a small owned slice of decoded values; the raw
// bytes are retained only so callers can tell the view was mapped. There is
// no in-place Set until EnsureUnique clones into a freshly owned Store.
func WrapMapped[T Elem](raw []byte, length int) *Store[T] {
	return &Store[T]{
		data:   decodeAll[T](raw, length),
		raw:    raw,
		mapped: true,
		rc:     newRefcount(),
	}
}

func decodeAll[T Elem](raw []byte, length int) []T {
	out := make([]T, length)

	for i := range out {
		out[i] = decodeOne[T](raw, i)
	}

	return out
}

func elemSize[T Elem]() int {
	var zero T

	switch any(zero).(type) {
	case uint32, int32:
		return 4
	default:
		return 8
	}
}

func decodeOne[T Elem](raw []byte, i int) T {
	sz := elemSize[T]()
	off := i * sz
	var zero T

	switch any(zero).(type) {
	case uint32:
		return any(binary.LittleEndian.Uint32(raw[off : off+4])).(T)
	case int32:
		return any(int32(binary.LittleEndian.Uint32(raw[off : off+4]))).(T)
	case uint64:
		return any(binary.LittleEndian.Uint64(raw[off : off+8])).(T)
	default: // float64
		bits := binary.LittleEndian.Uint64(raw[off : off+8])
		return any(floatFromBits(bits)).(T)
	}
}

// Ref returns a new handle aliasing the same backing storage, incrementing
// the reference count. The returned Store must eventually be Released.
func (s *Store[T]) Ref() *Store[T] {
	s.rc.incr()
	clone := *s

	return &clone
}

// Release decrements the reference count. Once zero, the backing slice may
// be reused by a future New/Wrap without risk of aliasing (Go's GC handles
// actual reclamation; this purely tracks logical ownership for
// EnsureUnique's benefit).
func (s *Store[T]) Release() {
	s.rc.decr()
}

// Len returns the number of elements in this store.
func (s *Store[T]) Len() int {
	return len(s.data)
}

// Get returns the element at index i.
func (s *Store[T]) Get(i int) T {
	return s.data[i]
}

// Slice returns the underlying element slice for read-only iteration. Callers
// must not mutate it without first calling EnsureUnique.
func (s *Store[T]) Slice() []T {
	return s.data
}

// IsShared reports whether more than one handle currently references this
// storage.
func (s *Store[T]) IsShared() bool {
	return s.rc.count() > 1
}

// EnsureUnique clones the backing slice if it is shared or memory-mapped,
// returning a Store safe to mutate in place. If already uniquely owned and
// writable, it is returned unchanged.
func (s *Store[T]) EnsureUnique() *Store[T] {
	if !s.mapped && !s.IsShared() {
		return s
	}

	cloned := make([]T, len(s.data))
	copy(cloned, s.data)

	return &Store[T]{data: cloned, rc: newRefcount()}
}

// Set writes the element at index i. Callers are responsible for having
// called EnsureUnique first if this storage might be shared or mapped.
func (s *Store[T]) Set(i int, v T) {
	s.data[i] = v
}

// Append grows the store by one element, cloning first if shared.
func (s *Store[T]) Append(v T) *Store[T] {
	u := s.EnsureUnique()
	u.data = append(u.data, v)

	return u
}
