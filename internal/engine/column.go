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

// Package engine wires the collaborator-facing pieces (column loading,
// rescan, persistence) to internal/index, the way pkg/cmd's command bodies
// wire together a SchemaStack, a TraceBuilder, and a binfile for go-corset's
// own CLI commands.
package engine

import (
	"encoding/binary"
	"math"

	"github.com/gingi/go-ibis/internal/bitvector"
	"github.com/gingi/go-ibis/internal/collab"
	"github.com/gingi/go-ibis/internal/ibiserr"
	"github.com/gingi/go-ibis/internal/storage/mmapstore"
)

// LoadColumn reads a flat little-endian f64 array column file, memory-mapping
// it when large via internal/storage/mmapstore.
func LoadColumn(path string) ([]float64, error) {
	f, err := mmapstore.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if len(f.Data)%8 != 0 {
		return nil, ibiserr.New(ibiserr.Format, "column file size is not a multiple of 8 bytes")
	}

	n := len(f.Data) / 8
	values := make([]float64, n)

	for i := range values {
		bits := binary.LittleEndian.Uint64(f.Data[i*8 : i*8+8])
		values[i] = math.Float64frombits(bits)
	}

	return values, nil
}

// BruteForcePartition implements collab.Partition by holding the full raw
// column in memory and testing predicate satisfaction row by row, the
// simplest possible rescan collaborator (every other Partition the engine
// works with is expected to be backed by a real column store).
type BruteForcePartition struct {
	Values []float64
}

// NRows implements collab.Partition.
func (p *BruteForcePartition) NRows() uint64 { return uint64(len(p.Values)) }

// Rescan implements collab.Partition: it re-checks predicate against every
// row mask marks as a candidate, returning the subset that actually
// qualifies.
func (p *BruteForcePartition) Rescan(predicate collab.Predicate, mask *bitvector.Bitvector) (*bitvector.Bitvector, error) {
	out := bitvector.NewOfLength(mask.Len())

	it := bitvector.NewSetBitIterator(mask)
	for it.HasNext() {
		row := it.Next()
		if row >= uint64(len(p.Values)) {
			continue
		}

		v := p.Values[row]

		lowerOK := v > predicate.LowerBound || (predicate.LowerInclusive && v == predicate.LowerBound)
		upperOK := v < predicate.UpperBound || (predicate.UpperInclusive && v == predicate.UpperBound)

		if lowerOK && upperOK {
			out.SetBit(row, true)
		}
	}

	return out, nil
}
