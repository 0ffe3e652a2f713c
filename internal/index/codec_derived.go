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
	"encoding/binary"

	"github.com/gingi/go-ibis/internal/ibiserr"
	"github.com/gingi/go-ibis/internal/indexfile"
)

// Mesa, Slice, Egale, Fade, Sbiad, and TwoLevel are all deterministic
// functions of a fine-grained Bin index plus a handful of small parameters
// (a component count, a coarse bin count, an outer-structure kind). Rather
// than serialize each variant's derived bitvectors a second time, their
// files hold the variant's own header/type tag, those parameters, and the
// embedded Bin file bytes; decoding replays the same Build* constructor
// BuildIndex already uses.

func encodeDerived(kind Type, params []uint32, binData []byte) ([]byte, error) {
	var buf bytes.Buffer

	header := indexfile.Header{Type: fileTypeOf(kind), WordSize: indexfile.WordSize}

	hdrBytes, err := header.MarshalBinary()
	if err != nil {
		return nil, err
	}

	buf.Write(hdrBytes)

	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(params))); err != nil {
		return nil, ibiserr.Wrap(ibiserr.IO, err, "failed to write derived-index param count")
	}

	if err := indexfile.WriteU32Array(&buf, params); err != nil {
		return nil, err
	}

	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(binData))); err != nil {
		return nil, ibiserr.Wrap(ibiserr.IO, err, "failed to write embedded bin length")
	}

	buf.Write(binData)

	return buf.Bytes(), nil
}

func decodeDerived(data []byte, want indexfile.Type) ([]uint32, []byte, error) {
	r := bytes.NewReader(data)

	header, err := indexfile.ReadHeader(r)
	if err != nil {
		return nil, nil, err
	}

	if header.Type != want {
		return nil, nil, ibiserr.New(ibiserr.Format, "index file type tag does not match expected derived variant")
	}

	var nparams uint32
	if err := binary.Read(r, binary.LittleEndian, &nparams); err != nil {
		return nil, nil, ibiserr.Wrap(ibiserr.Format, err, "truncated derived index file: param count")
	}

	params, err := indexfile.ReadU32Array(r, int(nparams))
	if err != nil {
		return nil, nil, err
	}

	var blen uint32
	if err := binary.Read(r, binary.LittleEndian, &blen); err != nil {
		return nil, nil, ibiserr.Wrap(ibiserr.Format, err, "truncated derived index file: embedded bin length")
	}

	binData := make([]byte, blen)
	if _, err := r.Read(binData); err != nil {
		return nil, nil, ibiserr.Wrap(ibiserr.Format, err, "truncated derived index file: embedded bin payload")
	}

	return params, binData, nil
}

// kindOfFileType inverts fileTypeOf, used when a derived-index file's own
// header must tell DecodeTwoLevel which of ambit/pale/fuge it holds.
func kindOfFileType(ft indexfile.Type) Type {
	switch ft {
	case indexfile.TypeAmbit:
		return KindAmbit
	case indexfile.TypePale:
		return KindPale
	case indexfile.TypeFuge:
		return KindFuge
	default:
		return KindAmbit
	}
}

func u32ToInt(vals []uint32) []int {
	out := make([]int, len(vals))
	for i, v := range vals {
		out[i] = int(v)
	}

	return out
}

func intToU32(vals []int) []uint32 {
	out := make([]uint32, len(vals))
	for i, v := range vals {
		out[i] = uint32(v)
	}

	return out
}

// EncodeMesa serializes a Mesa index as its fine Bin plus nothing extra
// (width is recomputed deterministically from nbins by BuildMesa).
func EncodeMesa(m *Mesa) ([]byte, error) {
	binBytes, err := encodeBinCore(m.binCore)
	if err != nil {
		return nil, err
	}

	return encodeDerived(KindMesa, nil, binBytes)
}

// DecodeMesa parses a Mesa index file previously written by EncodeMesa.
func DecodeMesa(data []byte) (*Mesa, error) {
	_, binData, err := decodeDerived(data, indexfile.TypeMesa)
	if err != nil {
		return nil, err
	}

	bin, err := DecodeBin(binData)
	if err != nil {
		return nil, err
	}

	return BuildMesa(bin), nil
}

// EncodeSlice serializes a Slice index as its fine Bin (the bit-planes are
// recomputed deterministically by BuildSlice).
func EncodeSlice(s *Slice) ([]byte, error) {
	binBytes, err := encodeBinCore(s.binCore)
	if err != nil {
		return nil, err
	}

	return encodeDerived(KindSlice, nil, binBytes)
}

// DecodeSlice parses a Slice index file previously written by EncodeSlice.
func DecodeSlice(data []byte) (*Slice, error) {
	_, binData, err := decodeDerived(data, indexfile.TypeSlice)
	if err != nil {
		return nil, err
	}

	bin, err := DecodeBin(binData)
	if err != nil {
		return nil, err
	}

	return BuildSlice(bin), nil
}

// EncodeEgale serializes an Egale index as its fine Bin plus the mixed-radix
// bases it was built with.
func EncodeEgale(e *Egale) ([]byte, error) {
	binBytes, err := encodeBinCore(e.binCore)
	if err != nil {
		return nil, err
	}

	return encodeDerived(KindEgale, intToU32(e.bases), binBytes)
}

// DecodeEgale parses an Egale index file previously written by EncodeEgale.
func DecodeEgale(data []byte) (*Egale, error) {
	params, binData, err := decodeDerived(data, indexfile.TypeEgale)
	if err != nil {
		return nil, err
	}

	bin, err := DecodeBin(binData)
	if err != nil {
		return nil, err
	}

	return BuildEgale(bin, u32ToInt(params)), nil
}

// EncodeFade serializes a Fade index as its fine Bin plus the mixed-radix
// bases it was built with.
func EncodeFade(f *Fade) ([]byte, error) {
	binBytes, err := encodeBinCore(f.binCore)
	if err != nil {
		return nil, err
	}

	return encodeDerived(KindFade, intToU32(f.bases), binBytes)
}

// DecodeFade parses a Fade index file previously written by EncodeFade.
func DecodeFade(data []byte) (*Fade, error) {
	params, binData, err := decodeDerived(data, indexfile.TypeFade)
	if err != nil {
		return nil, err
	}

	bin, err := DecodeBin(binData)
	if err != nil {
		return nil, err
	}

	return BuildFade(bin, u32ToInt(params)), nil
}

// EncodeSbiad serializes a Sbiad index as its underlying Fade's fine Bin
// plus bases (the per-component windows are rederived by BuildSbiad).
func EncodeSbiad(s *Sbiad) ([]byte, error) {
	binBytes, err := encodeBinCore(s.fade.binCore)
	if err != nil {
		return nil, err
	}

	return encodeDerived(KindSbiad, intToU32(s.fade.bases), binBytes)
}

// DecodeSbiad parses a Sbiad index file previously written by EncodeSbiad.
func DecodeSbiad(data []byte) (*Sbiad, error) {
	params, binData, err := decodeDerived(data, indexfile.TypeSbiad)
	if err != nil {
		return nil, err
	}

	bin, err := DecodeBin(binData)
	if err != nil {
		return nil, err
	}

	return BuildSbiad(BuildFade(bin, u32ToInt(params))), nil
}

// EncodeTwoLevel serializes an ambit/pale/fuge index as its fine Bin plus
// the outer-structure kind, coarse bin count, and sub-index attachment
// threshold it was built with.
func EncodeTwoLevel(t *TwoLevel) ([]byte, error) {
	binBytes, err := encodeBinCore(t.fine.core)
	if err != nil {
		return nil, err
	}

	params := []uint32{uint32(t.kind), uint32(len(t.fineSpan)), uint32(t.subThreshold)}

	return encodeDerived(t.tag, params, binBytes)
}

// DecodeTwoLevel parses an ambit/pale/fuge index file previously written by
// EncodeTwoLevel, recovering the variant tag from the file's own header.
func DecodeTwoLevel(data []byte) (*TwoLevel, error) {
	if len(data) < 6 {
		return nil, ibiserr.New(ibiserr.Format, "truncated two-level index file")
	}

	tag := kindOfFileType(indexfile.Type(data[5]))

	params, binData, err := decodeDerived(data, fileTypeOf(tag))
	if err != nil {
		return nil, err
	}

	if len(params) != 3 {
		return nil, ibiserr.New(ibiserr.Format, "malformed two-level index params")
	}

	bin, err := DecodeBin(binData)
	if err != nil {
		return nil, err
	}

	kind := TwoLevelKind(params[0])
	nc := int(params[1])
	subThresh := int(params[2])

	return BuildTwoLevel(tag, kind, bin, nc, subThresh), nil
}

// encodeBinCore encodes a bare *Core (the shape Bin, Mesa.binCore, Slice.binCore,
// etc. all share) the same way EncodeBin does, without requiring a *Bin
// wrapper.
func encodeBinCore(core *Core) ([]byte, error) {
	return EncodeBin(NewBin(core))
}
