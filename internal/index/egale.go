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
	"github.com/gingi/go-ibis/internal/bitvector"
	"github.com/gingi/go-ibis/internal/collab"
)

// Egale is the multi-component equality index: bin ordinal n is decomposed
// into mixed-radix digits under bases, and component j stores bases[j]
// bitvectors, one per possible digit value. A row's bin ordinal joins
// exactly one bitvector per component, so "col = v" resolves to the AND of
// one bitvector per component (spec scenario E).
type Egale struct {
	binCore    *Core
	bases      []int
	components [][]*bitvector.Bitvector // components[j][d]
	nrows      uint64
}

// BuildEgale derives an Egale index from an already-built Bin index, picking
// bases with ChooseBases when none are supplied.
func BuildEgale(bin *Bin, bases []int) *Egale {
	nbins := len(bin.core.Bounds) + 1

	if bases == nil {
		bases = ChooseBases(nbins, 0)
	}

	components := make([][]*bitvector.Bitvector, len(bases))

	for j, b := range bases {
		components[j] = make([]*bitvector.Bitvector, b)
		for d := range components[j] {
			components[j][d] = bitvector.NewOfLength(bin.core.NRows)
		}
	}

	for ord := 0; ord < nbins; ord++ {
		bv, err := bin.core.Bit(ord)
		if err != nil {
			continue
		}

		digits := Digits(ord, bases)
		for j, d := range digits {
			components[j][d] = bitvector.Or(components[j][d], bv)
		}
	}

	return &Egale{binCore: bin.core, bases: bases, components: components, nrows: bin.core.NRows}
}

// Kind implements Index.
func (e *Egale) Kind() Type { return KindEgale }

// Core implements Index.
func (e *Egale) Core() *Core { return e.binCore }

// Locate implements Index using the shared per-bin overlap algorithm.
func (e *Egale) Locate(p collab.Predicate) LocateResult {
	return locateByBounds(e.binCore.MinVal, e.binCore.MaxVal, p)
}

// ComposeHits implements Index by falling back to a per-bin union over the
// certain-hit span. Equals below is where the mixed-radix decomposition
// earns its keep, resolving a single-ordinal equality in O(components)
// bitvector ANDs instead of a bin union.
func (e *Egale) ComposeHits(loc LocateResult) (*bitvector.Bitvector, error) {
	return e.binCore.unionRange(loc.Hit0, loc.Hit1)
}

// ComposeCandidates implements Index.
func (e *Egale) ComposeCandidates(loc LocateResult) (*bitvector.Bitvector, error) {
	return e.binCore.unionRange(loc.Cand0, loc.Cand1)
}

// Equals returns the rows whose bin ordinal equals n exactly, by ANDing
// together the one component bitvector per component that n's digit selects.
func (e *Egale) Equals(n int) (*bitvector.Bitvector, error) {
	digits := Digits(n, e.bases)

	out := fullBitvector(e.nrows)
	for j, d := range digits {
		out = bitvector.And(out, e.components[j][d])
	}

	return out, nil
}
