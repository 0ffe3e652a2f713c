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
	"fmt"

	"github.com/gingi/go-ibis/internal/ibiserr"
	"github.com/gingi/go-ibis/internal/ibisutil"
	"github.com/gingi/go-ibis/internal/index"
)

// Variant names one of the binned index family members the build command
// can produce, mirroring the -type flag of FastBit's ibis tool.
type Variant string

// The variants BuildIndex knows how to construct.
const (
	VariantBin   Variant = "bin"
	VariantRange Variant = "range"
	VariantMesa  Variant = "mesa"
	VariantSlice Variant = "slice"
	VariantEgale Variant = "egale"
	VariantFade  Variant = "fade"
	VariantSbiad Variant = "sbiad"
	VariantAmbit Variant = "ambit"
	VariantPale  Variant = "pale"
	VariantFuge  Variant = "fuge"
)

// BuildOptions controls how BuildIndex chooses boundaries and, for the
// mixed-radix and two-level variants, how many components/coarse bins to
// use.
type BuildOptions struct {
	NBins      int
	Strategy   index.BoundaryStrategy
	NComponent int // 0 selects index.defaultComponentCount's heuristic via ChooseBases
	NCoarse    int // 0 selects ChooseCoarseCount's heuristic
	SubThresh  int // two-level fine-sub-index attachment threshold, in fine bins per coarse bin
}

// BuildIndex chooses boundaries over values and constructs the requested
// Variant, returning it as the shared index.Index interface.
func BuildIndex(values []float64, variant Variant, opt BuildOptions) (index.Index, error) {
	if opt.NBins <= 1 {
		return nil, ibiserr.New(ibiserr.Invariant, "nbins must be at least 2")
	}

	stats := ibisutil.NewPerfStats()

	bounds := index.ChooseBoundaries(values, opt.NBins, opt.Strategy)
	bin := index.BuildBin(values, bounds)

	stats.Log("Building bin index")

	switch variant {
	case VariantBin:
		return bin, nil
	case VariantRange:
		return index.BuildRange(bin), nil
	case VariantMesa:
		return index.BuildMesa(bin), nil
	case VariantSlice:
		return index.BuildSlice(bin), nil
	case VariantEgale:
		return index.BuildEgale(bin, bases(bin, opt)), nil
	case VariantFade:
		return index.BuildFade(bin, bases(bin, opt)), nil
	case VariantSbiad:
		return index.BuildSbiad(index.BuildFade(bin, bases(bin, opt))), nil
	case VariantAmbit:
		return index.BuildTwoLevel(index.KindAmbit, index.TwoLevelRange, bin, coarseCount(bin, opt), opt.SubThresh), nil
	case VariantPale:
		return index.BuildTwoLevel(index.KindPale, index.TwoLevelRange, bin, coarseCount(bin, opt), opt.SubThresh), nil
	case VariantFuge:
		return index.BuildTwoLevel(index.KindFuge, index.TwoLevelBin, bin, coarseCount(bin, opt), opt.SubThresh), nil
	default:
		return nil, ibiserr.New(ibiserr.Invariant, fmt.Sprintf("unrecognised index variant %q", string(variant)))
	}
}

func bases(bin *index.Bin, opt BuildOptions) []int {
	return index.ChooseBases(bin.Core().NObs(), opt.NComponent)
}

func coarseCount(bin *index.Bin, opt BuildOptions) int {
	if opt.NCoarse > 0 {
		return opt.NCoarse
	}

	return index.ChooseCoarseCount(bin.Core().NObs(), bin.Core().NRows, 0)
}
