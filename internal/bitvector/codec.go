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
	"bytes"
	"encoding/binary"

	"github.com/gingi/go-ibis/internal/ibiserr"
	"github.com/gingi/go-ibis/internal/storage"
)

// MarshalBinary encodes v as: u64 length, u32 wordCount, u32 activeVal,
// u32 activeNBits, then wordCount little-endian u32 code words. The active
// tail is stored ahead of the code words, not after them. This is the
// per-bitvector payload concatenated after the index file's offset table.
func (v *Bitvector) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer

	words := v.words.Slice()

	if err := binary.Write(&buf, binary.LittleEndian, v.length); err != nil {
		return nil, ibiserr.Wrap(ibiserr.IO, err, "failed to write bitvector length")
	}

	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(words))); err != nil {
		return nil, ibiserr.Wrap(ibiserr.IO, err, "failed to write bitvector word count")
	}

	if err := binary.Write(&buf, binary.LittleEndian, v.activeVal); err != nil {
		return nil, ibiserr.Wrap(ibiserr.IO, err, "failed to write bitvector active value")
	}

	if err := binary.Write(&buf, binary.LittleEndian, v.activeNBits); err != nil {
		return nil, ibiserr.Wrap(ibiserr.IO, err, "failed to write bitvector active width")
	}

	if err := binary.Write(&buf, binary.LittleEndian, words); err != nil {
		return nil, ibiserr.Wrap(ibiserr.IO, err, "failed to write bitvector words")
	}

	return buf.Bytes(), nil
}

// UnmarshalBitvector decodes a bitvector previously written by
// MarshalBinary. The caller supplies no external length: it is carried in
// the encoding itself (an absent, all-zero bitvector slot instead gets its
// length from the index's own bin metadata — see NewOfLength for that case).
func UnmarshalBitvector(data []byte) (*Bitvector, error) {
	r := bytes.NewReader(data)

	var (
		length      uint64
		wordCount   uint32
		activeVal   uint32
		activeNBits uint32
	)

	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, ibiserr.Wrap(ibiserr.Format, err, "truncated bitvector: length")
	}

	if err := binary.Read(r, binary.LittleEndian, &wordCount); err != nil {
		return nil, ibiserr.Wrap(ibiserr.Format, err, "truncated bitvector: word count")
	}

	if err := binary.Read(r, binary.LittleEndian, &activeVal); err != nil {
		return nil, ibiserr.Wrap(ibiserr.Format, err, "truncated bitvector: active value")
	}

	if err := binary.Read(r, binary.LittleEndian, &activeNBits); err != nil {
		return nil, ibiserr.Wrap(ibiserr.Format, err, "truncated bitvector: active width")
	}

	words := make([]uint32, wordCount)
	if err := binary.Read(r, binary.LittleEndian, words); err != nil {
		return nil, ibiserr.Wrap(ibiserr.Format, err, "truncated bitvector: words")
	}

	return &Bitvector{
		words:       storage.Wrap(words),
		activeVal:   activeVal,
		activeNBits: activeNBits,
		length:      length,
	}, nil
}
