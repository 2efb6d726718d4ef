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

package catalog

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/google/puppetProfileTree/internal/report"
)

const topN = 20

// countTable writes through the buffered writer of Report, whose Flush
// returns any write error since Render reports none.
func countTable(w *bufio.Writer, headings []string, counts []Count, top int) {
	if top > 0 && top < len(counts) {
		counts = counts[:top]
	}
	t := report.NewTable(w, headings...)
	for _, c := range counts {
		t.Append([]string{c.Name, humanize.Comma(int64(c.Count))})
	}
	t.Render()
}

// Report writes the catalog summary: identity, totals, resource types, the
// most connected resources and the manifests declaring the most resources.
func Report(out io.Writer, c *Catalog, colored bool) error {
	w := bufio.NewWriter(out)
	d := &c.Data

	fmt.Fprintln(w, "--- Catalog ---")
	fmt.Fprintf(w, "Name: %q\n", d.Name)
	fmt.Fprintf(w, "Environment: %q\n", d.Environment)
	fmt.Fprintf(w, "Catalog version: %v\n", d.Version)

	fmt.Fprintln(w, "--- Statistics ---")
	fmt.Fprintf(w, "Edges: %s\n", humanize.Comma(int64(len(d.Edges))))
	fmt.Fprintf(w, "Resources: %s\n", humanize.Comma(int64(len(d.Resources))))
	fmt.Fprintf(w, "Classes: %s\n", humanize.Comma(int64(len(d.Classes))))

	fmt.Fprintln(w, "--- Resource types: ---")
	countTable(w, []string{"Resource Type", "Count"}, c.ResourceTypeCounts(), 0)

	fmt.Fprintln(w, "--- Edges ---")
	countTable(w, []string{"Heavily depended resources", "Count"}, c.SourceEdgeCounts(2), topN)
	countTable(w, []string{"Heavily dependent resources", "Count"}, c.TargetEdgeCounts(2), topN)

	files := c.FilesByResourceCount()
	if len(files) > topN {
		files = files[:topN]
	}
	fmt.Fprintln(w, "--- Files with the most defined resources ---")
	fileCounts := make([]Count, 0, len(files))
	for _, f := range files {
		fileCounts = append(fileCounts, Count{f.File, len(f.Resources)})
	}
	countTable(w, []string{"File", "Resource count"}, fileCounts, 0)

	fmt.Fprintln(w, "--- Resources per file ---")
	for _, f := range files {
		suffix := report.Paint(colored, color.FgYellow, fmt.Sprintf("(%d resources)", len(f.Resources)))
		fmt.Fprintf(w, "%s %s\n", f.File, suffix)
		for _, r := range f.Resources {
			fmt.Fprintf(w, "    -- %s\n", r)
		}
		fmt.Fprintln(w, strings.Repeat("-", 20))
	}
	return w.Flush()
}
