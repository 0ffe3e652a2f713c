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

// Package collab declares the external collaborator interfaces the indexing
// engine depends on — the column catalog, the data-partition rescanner, and
// the file manager — treating them as named interfaces only, never
// implementing their real (mmap-aware, on-disk) backends here.
package collab

import (
	"github.com/gingi/go-ibis/internal/bitvector"
)

// ValueType enumerates the recognised column element types.
type ValueType int

// The column element types recognised by the engine.
const (
	Byte ValueType = iota
	UByte
	Short
	UShort
	Int
	UInt
	Long
	ULong
	Float
	Double
	Text
	Categorical
)

// Column is the column-catalog collaborator: name, type, element size, null
// mask, and file paths are all the index package needs from it.
type Column interface {
	Name() string
	Type() ValueType
	ElementSize() uint
	// NullMask returns the column's NULL mask as a bitvector of length
	// NRows(), where a set bit marks a NULL row.
	NullMask() *bitvector.Bitvector
	DataPath() string
	MaskPath() string
	IndexPath() string
}

// Predicate is a normalized continuous-range predicate over a column, as
// produced by the query evaluator's eq2range step.
type Predicate struct {
	LowerBound     float64
	LowerInclusive bool
	UpperBound     float64
	UpperInclusive bool
}

// Partition is the data-partition collaborator: it knows the row count and
// can rescan raw data to resolve candidate bins.
type Partition interface {
	NRows() uint64
	// Rescan re-evaluates predicate row-by-row over mask (the candidate
	// fringe) and returns the subset of mask's set rows that actually
	// satisfy predicate.
	Rescan(predicate Predicate, mask *bitvector.Bitvector) (*bitvector.Bitvector, error)
}

// FileManager is the mmap-aware file manager collaborator: typed array
// loaders that may memory-map a region larger than one OS page.
// internal/storage/mmapstore implements the mapping mechanics; FileManager
// is the narrower interface the index package actually depends on.
type FileManager interface {
	// ReadAt reads length bytes at the given absolute offset from path.
	ReadAt(path string, offset int64, length int) ([]byte, error)
}
