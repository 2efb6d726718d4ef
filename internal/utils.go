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
	"fmt"
)

// Equivalent reports the first structural difference between a and b, or nil
// when both have the same nodes holding the same records. Sibling order is
// ignored since it depends on insertion order.
func Equivalent(a *Tree, b *Tree) error {
	return nodeEquivalent(a.anchor, b.anchor)
}

func nodeEquivalent(a *Node, b *Node) error {
	if (a.Record == nil) != (b.Record == nil) {
		return fmt.Errorf("node %q: record %v != %v", a.ID(), a.Record, b.Record)
	}
	if a.Record != nil && *a.Record != *b.Record {
		return fmt.Errorf("node %q: record %v != %v", a.ID(), a.Record, b.Record)
	}
	if len(a.children) != len(b.children) {
		return fmt.Errorf("node %q has different children lengths %d != %d",
			a.ID(), len(a.children), len(b.children))
	}
	for _, aChild := range a.children {
		bChild := b.Child(aChild.Segment())
		if bChild == nil {
			return fmt.Errorf("node %q missing from second tree", aChild.ID())
		}
		if err := nodeEquivalent(aChild, bChild); err != nil {
			return err
		}
	}
	return nil
}
