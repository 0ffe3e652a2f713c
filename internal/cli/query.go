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

var queryCmd = &cobra.Command{
	Use:   "query [flags] index_file",
	Short: "Evaluate a range predicate against a built index.",
	Long:  "Evaluate a predicate (--eq, or a lower bound --ge/--gt and/or an upper bound --le/--lt) against a built index, optionally rescanning undecided rows against the raw column given by --column.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			exitOnError(fmt.Errorf("expected exactly one argument: index_file"))
		}

		idx, err := engine.LoadIndex(args[0])
		exitOnError(err)

		expr := parseExpr(cmd)

		estimateOnly := GetFlag(cmd, "estimate")

		if estimateOnly {
			lower, upper, err := engine.EstimateQuery(idx, expr)
			exitOnError(err)
			fmt.Printf("certain hits: %d, candidate upper bound: %d\n", lower, upper)

			return
		}

		var values []float64
		if path := GetString(cmd, "column"); path != "" {
			values, err = engine.LoadColumn(path)
			exitOnError(err)
		}

		result, err := engine.Query(idx, expr, values)
		exitOnError(err)

		fmt.Printf("matched %d rows\n", result.Cnt())
	},
}

func parseExpr(cmd *cobra.Command) index.Expr {
	eq := GetString(cmd, "eq")
	if eq != "" {
		v := parseFloat(eq)

		return index.Expr{LOp: index.Eq, LVal: v}
	}

	expr := index.Expr{}

	if lo := GetString(cmd, "ge"); lo != "" {
		expr.LOp, expr.LVal = index.Ge, parseFloat(lo)
	} else if lo := GetString(cmd, "gt"); lo != "" {
		expr.LOp, expr.LVal = index.Gt, parseFloat(lo)
	}

	if hi := GetString(cmd, "le"); hi != "" {
		expr.ROp, expr.RVal = index.Le, parseFloat(hi)
	} else if hi := GetString(cmd, "lt"); hi != "" {
		expr.ROp, expr.RVal = index.Lt, parseFloat(hi)
	}

	return expr
}

func parseFloat(s string) float64 {
	var v float64
	if _, err := fmt.Sscanf(s, "%g", &v); err != nil {
		exitOnError(fmt.Errorf("not a number: %q", s))
	}

	return v
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().String("eq", "", "equality predicate: col = value")
	queryCmd.Flags().String("ge", "", "lower bound, inclusive: col >= value")
	queryCmd.Flags().String("gt", "", "lower bound, exclusive: col > value")
	queryCmd.Flags().String("le", "", "upper bound, inclusive: col <= value")
	queryCmd.Flags().String("lt", "", "upper bound, exclusive: col < value")
	queryCmd.Flags().String("column", "", "raw column file, for rescanning the undecided fringe")
	queryCmd.Flags().Bool("estimate", false, "report popcount bounds only, without rescanning")
}
