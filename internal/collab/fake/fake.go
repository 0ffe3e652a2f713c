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

// Package fake provides small in-memory stand-ins for the external
// collaborator interfaces in internal/collab, used by index package tests.
// Small hand-built test fakes are preferred here over a mocking framework,
// the same way pkg/cmd/util/schema_stack.go constructs a stack directly for
// tests rather than mocking its layers.
package fake

import (
	"github.com/gingi/go-ibis/internal/bitvector"
	"github.com/gingi/go-ibis/internal/collab"
)

// Column is an in-memory collab.Column.
type Column struct {
	ColName  string
	ColType  collab.ValueType
	ElemSize uint
	Mask     *bitvector.Bitvector
}

// Name implements collab.Column.
func (c *Column) Name() string { return c.ColName }

// Type implements collab.Column.
func (c *Column) Type() collab.ValueType { return c.ColType }

// ElementSize implements collab.Column.
func (c *Column) ElementSize() uint { return c.ElemSize }

// NullMask implements collab.Column.
func (c *Column) NullMask() *bitvector.Bitvector { return c.Mask }

// DataPath implements collab.Column.
func (c *Column) DataPath() string { return c.ColName }

// MaskPath implements collab.Column.
func (c *Column) MaskPath() string { return c.ColName + ".msk" }

// IndexPath implements collab.Column.
func (c *Column) IndexPath() string { return c.ColName + ".idx" }

// Partition is an in-memory collab.Partition that rescans against a held
// slice of raw values, standing in for the row-level external rescan path.
type Partition struct {
	Values []float64
}

// NRows implements collab.Partition.
func (p *Partition) NRows() uint64 { return uint64(len(p.Values)) }

// Rescan implements collab.Partition by checking predicate directly against
// the held raw values for every row set in mask.
func (p *Partition) Rescan(predicate collab.Predicate, mask *bitvector.Bitvector) (*bitvector.Bitvector, error) {
	out := bitvector.NewOfLength(mask.Len())

	it := bitvector.NewSetBitIterator(mask)
	for it.HasNext() {
		row := it.Next()
		if row >= uint64(len(p.Values)) {
			continue
		}

		v := p.Values[row]
		if matches(predicate, v) {
			out.SetBit(row, true)
		}
	}

	return out, nil
}

func matches(p collab.Predicate, v float64) bool {
	lowerOK := v > p.LowerBound || (p.LowerInclusive && v == p.LowerBound)
	upperOK := v < p.UpperBound || (p.UpperInclusive && v == p.UpperBound)

	return lowerOK && upperOK
}
