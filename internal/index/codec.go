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
	"bytes"

	"github.com/gingi/go-ibis/internal/bitvector"
	"github.com/gingi/go-ibis/internal/ibiserr"
	"github.com/gingi/go-ibis/internal/indexfile"
)

// fileTypeOf maps an in-memory Type to its on-disk indexfile.Type tag.
func fileTypeOf(t Type) indexfile.Type {
	switch t {
	case KindBin:
		return indexfile.TypeBin
	case KindRange:
		return indexfile.TypeRange
	case KindAmbit:
		return indexfile.TypeAmbit
	case KindPale:
		return indexfile.TypePale
	case KindFuge:
		return indexfile.TypeFuge
	case KindMesa:
		return indexfile.TypeMesa
	case KindEgale:
		return indexfile.TypeEgale
	case KindFade:
		return indexfile.TypeFade
	case KindSbiad:
		return indexfile.TypeSbiad
	case KindSlice:
		return indexfile.TypeSlice
	default:
		return indexfile.TypeBin
	}
}

// encodeBody lays out the shared §4.9 file structure: header, fixed body,
// bounds/maxval/minval arrays, offset table, then the concatenated
// bitvectors in offset order. extras is written verbatim between the offset
// table and the bitvectors, holding whatever variant-specific arrays
// (bases, cnts, cbounds, nextlevel, max1/min1) the caller already encoded.
func encodeBody(kind Type, nrows uint64, bounds, minval, maxval []float64, nbits, card uint32, bits []*bitvector.Bitvector, extras []byte) ([]byte, error) {
	var buf bytes.Buffer

	header := indexfile.Header{Type: fileTypeOf(kind), WordSize: indexfile.WordSize}

	hdrBytes, err := header.MarshalBinary()
	if err != nil {
		return nil, err
	}

	buf.Write(hdrBytes)

	body := indexfile.Body{NRows: uint32(nrows), NObs: uint32(len(bounds)), NBits: nbits, Card: card}

	bodyBytes, err := body.MarshalBinary()
	if err != nil {
		return nil, err
	}

	buf.Write(bodyBytes)

	if err := indexfile.WriteF64Array(&buf, bounds); err != nil {
		return nil, err
	}

	if err := indexfile.WriteF64Array(&buf, maxval); err != nil {
		return nil, err
	}

	if err := indexfile.WriteF64Array(&buf, minval); err != nil {
		return nil, err
	}

	encoded := make([][]byte, len(bits))

	for i, bv := range bits {
		if bv == nil {
			continue
		}

		b, err := bv.MarshalBinary()
		if err != nil {
			return nil, err
		}

		encoded[i] = b
	}

	offsets := make(indexfile.OffsetTable, len(bits)+1)
	// offsets are absolute within the file; the payload starts after the
	// offset table itself and the extras block.
	base := int32(buf.Len() + (len(bits)+1)*4 + len(extras))
	cursor := base

	for i, b := range encoded {
		offsets[i] = cursor
		cursor += int32(len(b))
	}

	offsets[len(bits)] = cursor

	if err := indexfile.WriteOffsetTable(&buf, offsets); err != nil {
		return nil, err
	}

	buf.Write(extras)

	for _, b := range encoded {
		buf.Write(b)
	}

	return buf.Bytes(), nil
}

// decodeHeader reads the shared header/body/bounds/maxval/minval prefix
// common to every variant, leaving r positioned at the offset table (whose
// length is variant-dependent, so callers read it themselves via
// indexfile.ReadOffsetTable).
func decodeHeader(r *bytes.Reader) (indexfile.Header, indexfile.Body, []float64, []float64, []float64, error) {
	header, err := indexfile.ReadHeader(r)
	if err != nil {
		return indexfile.Header{}, indexfile.Body{}, nil, nil, nil, err
	}

	body, err := indexfile.ReadBody(r)
	if err != nil {
		return header, indexfile.Body{}, nil, nil, nil, err
	}

	bounds, err := indexfile.ReadF64Array(r, int(body.NObs))
	if err != nil {
		return header, body, nil, nil, nil, err
	}

	// maxval/minval cover every slot, including the implicit top bin, so
	// their on-disk length is NObs+1, one more than bounds itself.
	maxval, err := indexfile.ReadF64Array(r, int(body.NObs)+1)
	if err != nil {
		return header, body, bounds, nil, nil, err
	}

	minval, err := indexfile.ReadF64Array(r, int(body.NObs)+1)
	if err != nil {
		return header, body, bounds, maxval, nil, err
	}

	return header, body, bounds, minval, maxval, nil
}

// EncodeBin serializes a Bin index (nbits=0, card=0, one bitvector slot per
// bin plus the implicit top bin).
func EncodeBin(b *Bin) ([]byte, error) {
	bits := make([]*bitvector.Bitvector, b.core.NSlots())

	for i := range bits {
		bv, err := b.core.Bit(i)
		if err != nil {
			return nil, err
		}

		bits[i] = bv
	}

	return encodeBody(KindBin, b.core.NRows, b.core.Bounds, b.core.MinVal, b.core.MaxVal, 0, 0, bits, nil)
}

// DecodeBin parses a Bin index file previously written by EncodeBin.
func DecodeBin(data []byte) (*Bin, error) {
	r := bytes.NewReader(data)

	header, body, bounds, minval, maxval, err := decodeHeader(r)
	if err != nil {
		return nil, err
	}

	if header.Type != indexfile.TypeBin {
		return nil, ibiserr.New(ibiserr.Format, "index file type tag does not match bin")
	}

	offsets, err := indexfile.ReadOffsetTable(r, int(body.NObs)+1)
	if err != nil {
		return nil, err
	}

	core := NewLazyCore(uint64(body.NRows), bounds, minval, maxval, offsets, bitvectorLoader(data))

	return NewBin(core), nil
}

// bitvectorLoader returns a slot loader that decodes the bitvector stored at
// [off, end) within data.
func bitvectorLoader(data []byte) func(off, end int32) (*bitvector.Bitvector, error) {
	return func(off, end int32) (*bitvector.Bitvector, error) {
		if off < 0 || end > int32(len(data)) || off > end {
			return nil, ibiserr.New(ibiserr.Format, "bitvector slot offset out of range")
		}

		return bitvector.UnmarshalBitvector(data[off:end])
	}
}

// EncodeRange serializes a Range index: the nobs cumulative cut bitvectors,
// alongside the per-bin minval/maxval arrays Locate needs (stored as the
// shared maxval/minval arrays, since Range has no separate bin-level arrays
// of its own beyond what Bin already produced).
func EncodeRange(r *Range) ([]byte, error) {
	bits := make([]*bitvector.Bitvector, r.core.NSlots())

	for i := range bits {
		bv, err := r.core.Bit(i)
		if err != nil {
			return nil, err
		}

		bits[i] = bv
	}

	return encodeBody(KindRange, r.core.NRows, r.core.Bounds, r.binMinVal, r.binMaxVal, 0, 0, bits, nil)
}

// DecodeRange parses a Range index file previously written by EncodeRange.
func DecodeRange(data []byte) (*Range, error) {
	rd := bytes.NewReader(data)

	header, body, bounds, minval, maxval, err := decodeHeader(rd)
	if err != nil {
		return nil, err
	}

	if header.Type != indexfile.TypeRange {
		return nil, ibiserr.New(ibiserr.Format, "index file type tag does not match range")
	}

	offsets, err := indexfile.ReadOffsetTable(rd, int(body.NObs))
	if err != nil {
		return nil, err
	}

	core := NewLazyCore(uint64(body.NRows), bounds, nil, nil, offsets, bitvectorLoader(data))

	return NewRange(core, minval, maxval), nil
}
