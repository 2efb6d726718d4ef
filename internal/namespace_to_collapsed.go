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

package internal

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// collapsedFrame keeps a frame usable in the folded format, where ";"
// separates frames and the count follows the last space.
func collapsedFrame(r *Record) string {
	return strings.ReplaceAll(r.Frame(), ";", ":")
}

func writeCollapsedNode(w *bufio.Writer, n *Node, stack []string) {
	if n.Record != nil {
		stack = append(stack[:len(stack):len(stack)], collapsedFrame(n.Record))
		if us := int64(SelfSeconds(n)*1e6 + 0.5); us > 0 {
			w.WriteString(strings.Join(stack, ";"))
			w.WriteString(" ")
			w.WriteString(strconv.FormatInt(us, 10))
			w.WriteString("\n")
		}
	}
	for _, c := range n.children {
		writeCollapsedNode(w, c, stack)
	}
}

// WriteCollapsed writes the tree in the folded stack format read by
// flamegraph.pl and speedscope: one line per recorded node, root frame
// first, followed by its self time in microseconds. Nodes without self
// time are left out.
func WriteCollapsed(out io.Writer, tree *Tree) error {
	w := bufio.NewWriter(out)
	for _, root := range tree.Roots() {
		writeCollapsedNode(w, root, nil)
	}
	return w.Flush()
}
