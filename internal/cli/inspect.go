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

	"github.com/gingi/go-ibis/internal/cli/termio"
	"github.com/gingi/go-ibis/internal/engine"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] index_file",
	Short: "Print per-bin row counts, min/max, and serialized byte size for a built index.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			exitOnError(fmt.Errorf("expected exactly one argument: index_file"))
		}

		idx, err := engine.LoadIndex(args[0])
		exitOnError(err)

		core := idx.Core()
		table := termio.NewTable("bin", "min", "max", "rows", "bytes")

		for i := 0; i < core.NSlots(); i++ {
			bv, err := core.Bit(i)
			exitOnError(err)

			var minv, maxv string
			if i < len(core.MinVal) {
				minv = fmt.Sprintf("%g", core.MinVal[i])
				maxv = fmt.Sprintf("%g", core.MaxVal[i])
			} else {
				minv, maxv = "-", "-"
			}

			size, err := bv.MarshalBinary()
			exitOnError(err)

			table.AddRow(fmt.Sprintf("%d", i), minv, maxv, fmt.Sprintf("%d", bv.Cnt()), fmt.Sprintf("%d", len(size)))
		}

		table.Print(os.Stdout)

		fmt.Printf("\n%s index, %d rows, %d bins\n", idx.Kind(), core.NRows, core.NSlots())
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
