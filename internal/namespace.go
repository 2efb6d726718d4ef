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
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidID   = errors.New("invalid profile id")
	ErrDuplicateID = errors.New("duplicate profile id")
)

// DuplicateIDError is returned by Tree.Insert when a node already held a
// record. The tree keeps Current.
type DuplicateIDError struct {
	Previous Record
	Current  Record
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate profile id %s: %v replaced by %v", e.Current.ID, &e.Previous, &e.Current)
}

func (e *DuplicateIDError) Unwrap() error {
	return ErrDuplicateID
}

// ValidateID checks that id is a dot separated list of decimal numbers.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidID)
	}
	for _, seg := range strings.Split(id, ".") {
		if seg == "" {
			return fmt.Errorf("%w: %q has an empty segment", ErrInvalidID, id)
		}
		for _, c := range seg {
			if c < '0' || c > '9' {
				return fmt.Errorf("%w: %q has non numeric segment %q", ErrInvalidID, id, seg)
			}
		}
	}
	return nil
}

// Node is one prefix of a dotted id. Record is nil for structural nodes that
// only exist because a descendant was inserted.
type Node struct {
	Record *Record

	path     []string
	children []*Node
	index    map[string]*Node
}

func newNode(path []string) *Node {
	return &Node{
		path:     path,
		children: make([]*Node, 0),
		index:    make(map[string]*Node),
	}
}

func (n *Node) Path() []string {
	return append([]string(nil), n.path...)
}

func (n *Node) ID() string {
	return strings.Join(n.path, ".")
}

// Segment is the last element of the path.
func (n *Node) Segment() string {
	if len(n.path) == 0 {
		return ""
	}
	return n.path[len(n.path)-1]
}

// Children are returned in the order they were first seen.
func (n *Node) Children() []*Node {
	return n.children
}

func (n *Node) Child(segment string) *Node {
	return n.index[segment]
}

// get returns the child for segment, creating a structural one if needed.
func (n *Node) get(segment string) *Node {
	child, ok := n.index[segment]
	if !ok {
		path := make([]string, len(n.path)+1)
		copy(path, n.path)
		path[len(n.path)] = segment
		child = newNode(path)
		n.index[segment] = child
		n.children = append(n.children, child)
	}
	return child
}

// add descends towards target, one segment per level. n.path is always a
// prefix of target here, so target[len(n.path)] is the next step whether n
// is the immediate parent or a more distant ancestor.
func (n *Node) add(target []string, r *Record) error {
	if len(n.path) == len(target) {
		if n.Record != nil {
			prev := *n.Record
			n.Record = r
			return &DuplicateIDError{Previous: prev, Current: *r}
		}
		n.Record = r
		return nil
	}
	return n.get(target[len(n.path)]).add(target, r)
}

// Tree is the hierarchy rebuilt from dotted ids. The anchor has an empty path
// and is never displayed; its children are the top level ids, usually just "1".
type Tree struct {
	anchor *Node
}

func NewTree() *Tree {
	return &Tree{anchor: newNode(nil)}
}

// Insert places r at the node named by its id, creating structural ancestors
// on the way. A *DuplicateIDError is returned if the id was already taken; the
// new record wins.
func (t *Tree) Insert(r Record) error {
	if err := ValidateID(r.ID); err != nil {
		return err
	}
	return t.anchor.add(r.Segments(), &r)
}

// Roots returns the top level nodes.
func (t *Tree) Roots() []*Node {
	return t.anchor.children
}

// Lookup returns the node for id, or nil.
func (t *Tree) Lookup(id string) *Node {
	n := t.anchor
	for _, seg := range strings.Split(id, ".") {
		if n = n.Child(seg); n == nil {
			return nil
		}
	}
	return n
}

// Entry is one line of the tree display.
type Entry struct {
	Depth   int
	Segment string
	ID      string
	Record  *Record
}

// Walk visits nodes depth first in insertion order. Depth equals the length
// of the node's path. Returning false from fn stops the walk.
func (t *Tree) Walk(fn func(Entry) bool) {
	var walk func(n *Node) bool
	walk = func(n *Node) bool {
		e := Entry{Depth: len(n.path), Segment: n.Segment(), ID: n.ID(), Record: n.Record}
		if !fn(e) {
			return false
		}
		for _, c := range n.children {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	for _, root := range t.anchor.children {
		if !walk(root) {
			return
		}
	}
}

func (t *Tree) Entries() []Entry {
	entries := make([]Entry, 0)
	t.Walk(func(e Entry) bool {
		entries = append(entries, e)
		return true
	})
	return entries
}

// Len is the number of nodes, structural ones included.
func (t *Tree) Len() int {
	n := 0
	t.Walk(func(Entry) bool {
		n++
		return true
	})
	return n
}
