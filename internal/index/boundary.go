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
	"math"
	"sort"
)

// BoundaryStrategy picks candidate bin boundaries from a data sample.
type BoundaryStrategy int

// The recognised boundary-selection strategies.
const (
	// EquiWidth splits [min,max] into nbins equal-width bins.
	EquiWidth BoundaryStrategy = iota
	// EquiDepth chooses boundaries so each bin holds roughly N/nbins rows.
	EquiDepth
	// IntegralSnap is EquiWidth with every boundary rounded to the nearest
	// integer, for integral column types.
	IntegralSnap
)

// ChooseBoundaries returns nbins-1 strictly increasing interior boundaries
// over values, using the given strategy. The caller treats the returned
// slice as bounds[0..nobs), with an implicit top bin for values >=
// bounds[nobs-1].
func ChooseBoundaries(values []float64, nbins int, strategy BoundaryStrategy) []float64 {
	if nbins <= 1 || len(values) == 0 {
		return nil
	}

	switch strategy {
	case EquiDepth:
		return equiDepthBoundaries(values, nbins)
	case IntegralSnap:
		b := equiWidthBoundaries(values, nbins)
		for i := range b {
			b[i] = math.Round(b[i])
		}

		return dedupSorted(b)
	default:
		return equiWidthBoundaries(values, nbins)
	}
}

func minMax(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]

	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}

		if v > hi {
			hi = v
		}
	}

	return lo, hi
}

func equiWidthBoundaries(values []float64, nbins int) []float64 {
	lo, hi := minMax(values)
	if lo == hi {
		return nil
	}

	width := (hi - lo) / float64(nbins)
	out := make([]float64, 0, nbins-1)

	for i := 1; i < nbins; i++ {
		out = append(out, lo+width*float64(i))
	}

	return out
}

func equiDepthBoundaries(values []float64, nbins int) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	out := make([]float64, 0, nbins-1)
	n := len(sorted)

	for i := 1; i < nbins; i++ {
		idx := i * n / nbins
		if idx >= n {
			idx = n - 1
		}

		out = append(out, sorted[idx])
	}

	return dedupSorted(out)
}

func dedupSorted(b []float64) []float64 {
	sort.Float64s(b)

	out := b[:0]

	for i, v := range b {
		if i == 0 || v != out[len(out)-1] {
			out = append(out, v)
		}
	}

	return out
}

// QualityTrigger reports whether the endpoint bins hold more than n/nobs
// rows, signalling that boundaries should be recomputed on append.
func QualityTrigger(firstBinCount, lastBinCount, n uint64, nobs int) bool {
	if nobs == 0 {
		return false
	}

	target := n / uint64(nobs)

	return firstBinCount > target || lastBinCount > target
}
