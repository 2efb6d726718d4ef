// Copyright 2020 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package report renders pipeline results for a terminal.
package report

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"

	"github.com/google/puppetProfileTree/internal"
)

// ColorEnabled resolves a --color mode against the file output goes to.
func ColorEnabled(mode string, f *os.File) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "", "auto":
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()), nil
	}
	return false, fmt.Errorf("unknown color mode %q (valid: auto, always, never)", mode)
}

type Printer struct {
	Out   io.Writer
	Color bool
	// Top limits aggregate tables to that many rows, 0 prints all.
	Top int
}

// Paint wraps s in the escape codes of attr when enabled is set.
func Paint(enabled bool, attr color.Attribute, s string) string {
	c := color.New(attr)
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(s)
}

// NewTable returns a bordered table writing to w with left aligned cells
// and headings kept as given.
func NewTable(w io.Writer, headings ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(headings)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	return t
}

// seconds rounds sums to microseconds so float noise does not show.
func seconds(s float64) string {
	return internal.FormatSeconds(math.Round(s*1e6) / 1e6)
}

// PrintTree writes one line per node, indented two spaces per id segment.
func (p *Printer) PrintTree(t *internal.Tree) error {
	w := bufio.NewWriter(p.Out)
	t.Walk(func(e internal.Entry) bool {
		w.WriteString(strings.Repeat("  ", e.Depth))
		w.WriteString(Paint(p.Color, color.FgGreen, e.ID))
		w.WriteString(" ")
		if e.Record == nil {
			w.WriteString("nil")
		} else {
			w.WriteString(e.Record.Frame())
			w.WriteString(" ")
			w.WriteString(Paint(p.Color, color.FgYellow, fmt.Sprintf("(%s seconds)", internal.FormatSeconds(e.Record.ElapsedSeconds))))
		}
		w.WriteString("\n")
		return true
	})
	return w.Flush()
}

// PrintAggregate writes the total and the itemized table of one group.
func (p *Printer) PrintAggregate(title string, agg internal.Aggregate) error {
	w := bufio.NewWriter(p.Out)
	fmt.Fprintf(w, "--- %s ---\n", title)
	fmt.Fprintf(w, "Total time: %s\n", seconds(agg.Total))
	fmt.Fprintln(w, "Itemized:")

	rows := agg.Rows[:truncate(len(agg.Rows), p.Top)]
	table := NewTable(w, "Source", "Time")
	for _, r := range rows {
		table.Append([]string{r.Name, seconds(r.Seconds)})
	}
	table.Render()
	return w.Flush()
}

func truncate(n, top int) int {
	if top > 0 && top < n {
		return top
	}
	return n
}
