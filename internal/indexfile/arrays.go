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

package indexfile

import (
	"bytes"
	"encoding/binary"

	"github.com/gingi/go-ibis/internal/ibiserr"
)

// WriteF64Array appends a little-endian f64 array with no length prefix (the
// length is implied by nobs/card from the Body).
func WriteF64Array(buf *bytes.Buffer, vals []float64) error {
	if err := binary.Write(buf, binary.LittleEndian, vals); err != nil {
		return ibiserr.Wrap(ibiserr.IO, err, "failed to write f64 array")
	}

	return nil
}

// ReadF64Array reads n f64 values.
func ReadF64Array(r *bytes.Reader, n int) ([]float64, error) {
	vals := make([]float64, n)
	if err := binary.Read(r, binary.LittleEndian, vals); err != nil {
		return nil, ibiserr.Wrap(ibiserr.Format, err, "truncated index file: f64 array")
	}

	return vals, nil
}

// OffsetTable is the byte-offset table: k+1 absolute offsets into the file,
// one per bitvector slot plus a sentinel.
// offsets[i+1] == offsets[i] means slot i is "all zero, not serialized".
type OffsetTable []int32

// Present reports whether slot i was actually serialized.
func (t OffsetTable) Present(i int) bool {
	return t[i+1] > t[i]
}

// Validate checks the monotonicity invariant every offset table must
// satisfy (used for both the top-level bitvector offsets and, for two-level
// indexes, the recursive sub-index offsets).
func (t OffsetTable) Validate() error {
	for i := 1; i < len(t); i++ {
		if t[i] < t[i-1] {
			return ibiserr.New(ibiserr.Format, "offset table is not monotonically non-decreasing")
		}
	}

	return nil
}

// WriteOffsetTable appends the table as little-endian i32 values.
func WriteOffsetTable(buf *bytes.Buffer, t OffsetTable) error {
	if err := binary.Write(buf, binary.LittleEndian, []int32(t)); err != nil {
		return ibiserr.Wrap(ibiserr.IO, err, "failed to write offset table")
	}

	return nil
}

// ReadOffsetTable reads n+1 offsets and validates monotonicity.
func ReadOffsetTable(r *bytes.Reader, n int) (OffsetTable, error) {
	t := make(OffsetTable, n+1)
	if err := binary.Read(r, binary.LittleEndian, t); err != nil {
		return nil, ibiserr.Wrap(ibiserr.Format, err, "truncated index file: offset table")
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	return t, nil
}

// WriteU32Array appends a little-endian u32 array, used for the parameter
// arrays (bases[], two-level settings) of the derived-variant index files.
func WriteU32Array(buf *bytes.Buffer, vals []uint32) error {
	if err := binary.Write(buf, binary.LittleEndian, vals); err != nil {
		return ibiserr.Wrap(ibiserr.IO, err, "failed to write u32 array")
	}

	return nil
}

// ReadU32Array reads n u32 values.
func ReadU32Array(r *bytes.Reader, n int) ([]uint32, error) {
	vals := make([]uint32, n)
	if err := binary.Read(r, binary.LittleEndian, vals); err != nil {
		return nil, ibiserr.Wrap(ibiserr.Format, err, "truncated index file: u32 array")
	}

	return vals, nil
}
