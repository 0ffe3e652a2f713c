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

package engine

import (
	"os"

	"github.com/gingi/go-ibis/internal/ibiserr"
	"github.com/gingi/go-ibis/internal/index"
)

// SaveIndex encodes idx using the codec matching its Kind() and writes it to
// path.
func SaveIndex(idx index.Index, path string) error {
	var (
		data []byte
		err  error
	)

	switch v := idx.(type) {
	case *index.Bin:
		data, err = index.EncodeBin(v)
	case *index.Range:
		data, err = index.EncodeRange(v)
	case *index.Mesa:
		data, err = index.EncodeMesa(v)
	case *index.Slice:
		data, err = index.EncodeSlice(v)
	case *index.Egale:
		data, err = index.EncodeEgale(v)
	case *index.Fade:
		data, err = index.EncodeFade(v)
	case *index.Sbiad:
		data, err = index.EncodeSbiad(v)
	case *index.TwoLevel:
		data, err = index.EncodeTwoLevel(v)
	default:
		return ibiserr.New(ibiserr.Invariant, "unrecognised index implementation")
	}

	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return ibiserr.Wrap(ibiserr.IO, err, "failed to write index file "+path)
	}

	return nil
}

// LoadIndex reads the file at path, inspecting its type tag to dispatch to
// the matching variant decoder.
func LoadIndex(path string) (index.Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ibiserr.Wrap(ibiserr.IO, err, "failed to read index file "+path)
	}

	if len(data) < 6 {
		return nil, ibiserr.New(ibiserr.Format, "index file is too short to hold a header")
	}

	switch index.Type(data[5]) {
	case index.KindBin:
		return index.DecodeBin(data)
	case index.KindRange:
		return index.DecodeRange(data)
	case index.KindMesa:
		return index.DecodeMesa(data)
	case index.KindSlice:
		return index.DecodeSlice(data)
	case index.KindEgale:
		return index.DecodeEgale(data)
	case index.KindFade:
		return index.DecodeFade(data)
	case index.KindSbiad:
		return index.DecodeSbiad(data)
	case index.KindAmbit, index.KindPale, index.KindFuge:
		return index.DecodeTwoLevel(data)
	default:
		return nil, ibiserr.New(ibiserr.Format, "unrecognised index file type tag")
	}
}
