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

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gingi/go-ibis/internal/engine"
	"github.com/gingi/go-ibis/internal/index"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] column_file index_file",
	Short: "Build a binned bitmap index over a raw f64 column file.",
	Long:  "Build one of the binned bitmap index family members (bin, range, mesa, slice, egale, fade, sbiad, ambit, pale, fuge) over a raw little-endian f64 column file.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 2 {
			fmt.Println(cmd.UsageString())
			exitOnError(fmt.Errorf("expected exactly two arguments: column_file index_file"))
		}

		cfg := loadConfig(cmd)

		nbins := int(cfg.LookupUint("nbins", GetUint(cmd, "nbins")))
		variant := engine.Variant(GetString(cmd, "type"))
		strategy := parseStrategy(GetString(cmd, "strategy"))
		ncomp := int(cfg.LookupUint("ncomp", GetUint(cmd, "ncomp")))
		ncoarse := int(cfg.LookupUint("ncoarse", GetUint(cmd, "ncoarse")))
		subThresh := GetInt(cmd, "sub-threshold")

		values, err := engine.LoadColumn(args[0])
		exitOnError(err)

		idx, err := engine.BuildIndex(values, variant, engine.BuildOptions{
			NBins:      nbins,
			Strategy:   strategy,
			NComponent: ncomp,
			NCoarse:    ncoarse,
			SubThresh:  subThresh,
		})
		exitOnError(err)

		exitOnError(engine.SaveIndex(idx, args[1]))

		fmt.Printf("built %s index over %d rows (%d bins) -> %s\n", idx.Kind(), idx.Core().NRows, idx.Core().NSlots(), args[1])
	},
}

func parseStrategy(s string) index.BoundaryStrategy {
	switch s {
	case "equi-depth":
		return index.EquiDepth
	case "integral-snap":
		return index.IntegralSnap
	default:
		return index.EquiWidth
	}
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().String("type", "bin", "index variant: bin, range, mesa, slice, egale, fade, sbiad, ambit, pale, fuge")
	buildCmd.Flags().Uint("nbins", 100, "number of bins to choose (nbins-1 boundaries)")
	buildCmd.Flags().String("strategy", "equi-width", "boundary strategy: equi-width, equi-depth, integral-snap")
	buildCmd.Flags().Uint("ncomp", 0, "mixed-radix component count for egale/fade/sbiad (0 picks a default)")
	buildCmd.Flags().Uint("ncoarse", 0, "coarse bin count for ambit/pale/fuge (0 uses the size heuristic)")
	buildCmd.Flags().Int("sub-threshold", 1<<20, "minimum fine-bin width before a two-level coarse bin gets a fine sub-index")
}
