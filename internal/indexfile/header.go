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

// Package indexfile implements the shared on-disk layout: the 8-byte
// "#IBIS" header, the fixed nrows/nobs/nbits/card fields, the
// bounds/minval/maxval arrays, the offset table, and the
// variant-specific extras that precede the concatenated bitvectors. The
// header shape (fixed magic + tag bytes, then a structured body) follows
// pkg/trace/lt/header.go's magic-then-fixed-fields-then-payload layout for
// go-corset's own trace files.
package indexfile

import (
	"bytes"
	"encoding/binary"

	"github.com/gingi/go-ibis/internal/ibiserr"
)

// Magic is the fixed 5-byte identifier every index file begins with.
var Magic = [5]byte{'#', 'I', 'B', 'I', 'S'}

// Type tags for the "variant-specific extras" switch.
const (
	TypeBin Type = iota
	TypeRange
	TypeAmbit
	TypePale
	TypeFuge
	_ // reserved tag value, never written by this engine
	TypeMesa
	TypeEgale
	TypeFade
	TypeSbiad
	TypeSlice
)

// Type identifies which index variant a file holds.
type Type uint8

// WordSize is always 4: the WAH code word width in bytes (31 bits packed
// into a uint32, plus one tag bit).
const WordSize uint8 = 4

// Header is the fixed 8-byte prefix of every index file.
type Header struct {
	Type     Type
	WordSize uint8
	Reserved uint8
}

// MarshalBinary encodes the header as Magic + Type + WordSize + Reserved.
func (h Header) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer

	buf.Write(Magic[:])
	buf.WriteByte(byte(h.Type))
	buf.WriteByte(h.WordSize)
	buf.WriteByte(h.Reserved)

	return buf.Bytes(), nil
}

// ReadHeader decodes and validates the fixed 8-byte header from r.
func ReadHeader(r *bytes.Reader) (Header, error) {
	var magic [5]byte

	if _, err := r.Read(magic[:]); err != nil {
		return Header{}, ibiserr.Wrap(ibiserr.Format, err, "truncated index file: magic")
	}

	if magic != Magic {
		return Header{}, ibiserr.New(ibiserr.Format, "bad magic: not an #IBIS index file")
	}

	var rest [3]byte
	if _, err := r.Read(rest[:]); err != nil {
		return Header{}, ibiserr.Wrap(ibiserr.Format, err, "truncated index file: header tail")
	}

	return Header{Type: Type(rest[0]), WordSize: rest[1], Reserved: rest[2]}, nil
}

// Body is the fixed fields that follow the header: row/bin
// counts, padded to an 8-byte boundary before the f64 arrays begin.
type Body struct {
	NRows uint32
	NObs  uint32
	NBits uint32 // only meaningful for multi-component variants
	Card  uint32 // only meaningful for value-preserving variants
}

const bodyFixedBytes = 4 * 4 // NRows, NObs, NBits, Card

// MarshalBinary encodes the fixed body fields, padding the result to an
// 8-byte boundary before the bounds array follows.
func (b Body) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer

	for _, v := range []uint32{b.NRows, b.NObs, b.NBits, b.Card} {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			return nil, ibiserr.Wrap(ibiserr.IO, err, "failed to write index body")
		}
	}

	pad := padTo8(bodyFixedBytes)
	buf.Write(make([]byte, pad))

	return buf.Bytes(), nil
}

// ReadBody decodes the fixed body fields, consuming the same padding
// MarshalBinary wrote.
func ReadBody(r *bytes.Reader) (Body, error) {
	var b Body

	fields := []*uint32{&b.NRows, &b.NObs, &b.NBits, &b.Card}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return Body{}, ibiserr.Wrap(ibiserr.Format, err, "truncated index file: body")
		}
	}

	pad := padTo8(bodyFixedBytes)
	if _, err := r.Seek(int64(pad), 1); err != nil {
		return Body{}, ibiserr.Wrap(ibiserr.Format, err, "truncated index file: body padding")
	}

	return b, nil
}

func padTo8(n int) int {
	if rem := n % 8; rem != 0 {
		return 8 - rem
	}

	return 0
}
