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
	"os"

	"github.com/spf13/cobra"

	"github.com/gingi/go-ibis/internal/engine"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [flags] index_file",
	Short: "Check a built index's testable properties against its source column.",
	Long:  "Runs the disjoint-cover, cumulative, and ground-truth-rescan property checks against a built index, reporting pass/fail for each.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			exitOnError(fmt.Errorf("expected exactly one argument: index_file"))
		}

		idx, err := engine.LoadIndex(args[0])
		exitOnError(err)

		var values []float64
		if path := GetString(cmd, "column"); path != "" {
			values, err = engine.LoadColumn(path)
			exitOnError(err)
		}

		results := engine.VerifyIndex(idx, values)

		failed := false

		for _, r := range results {
			status := "PASS"
			if !r.OK {
				status, failed = "FAIL", true
			}

			fmt.Printf("[%s] %s: %s\n", status, r.Property, r.Detail)
		}

		if failed {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().String("column", "", "raw column file, for the ground-truth-rescan check")
}
