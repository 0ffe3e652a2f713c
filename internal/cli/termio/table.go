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

// Package termio formats tabular output for the CLI's inspect subcommand, in
// the same column-width-tracking style as pkg/util/termio's FormattedTable,
// scaled down to static (non-interactive) table printing and clipped to the
// terminal width via golang.org/x/term rather than a full widget/canvas
// render loop.
package termio

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Table accumulates row-major string cells and prints them left-aligned,
// padded to each column's observed maximum width.
type Table struct {
	widths []int
	rows   [][]string
}

// NewTable constructs an empty table with the given column headers.
func NewTable(headers ...string) *Table {
	t := &Table{widths: make([]int, len(headers))}
	t.AddRow(headers...)

	return t
}

// AddRow appends a row, widening any column whose new cell is longer than
// what has been seen so far.
func (t *Table) AddRow(cells ...string) {
	if len(cells) != len(t.widths) {
		panic("termio: row width does not match table column count")
	}

	for i, c := range cells {
		if len(c) > t.widths[i] {
			t.widths[i] = len(c)
		}
	}

	t.rows = append(t.rows, cells)
}

// Print writes the table to w, clipping the total line width to the
// terminal's current column count when w is a terminal (falling back to an
// unbounded width otherwise, e.g. when output is redirected to a file).
func (t *Table) Print(w io.Writer) {
	maxWidth := t.terminalWidth(w)

	for _, row := range t.rows {
		line := t.formatRow(row)

		if maxWidth > 0 && len(line) > maxWidth {
			line = line[:maxWidth]
		}

		fmt.Fprintln(w, line)
	}
}

func (t *Table) formatRow(row []string) string {
	var b strings.Builder

	for i, cell := range row {
		if i > 0 {
			b.WriteString("  ")
		}

		b.WriteString(cell)
		b.WriteString(strings.Repeat(" ", t.widths[i]-len(cell)))
	}

	return strings.TrimRight(b.String(), " ")
}

func (t *Table) terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}

	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}

	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}

	return width
}
