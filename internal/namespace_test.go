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
	"testing"

	"github.com/stretchr/testify/require"
)

func function(id, name string, seconds float64) Record {
	return Record{Kind: KindFunction, ID: id, FunctionName: name, ElapsedSeconds: seconds}
}

func resource(id, typ, title string, seconds float64) Record {
	return Record{Kind: KindResource, ID: id, ResourceType: typ, ResourceTitle: title, ElapsedSeconds: seconds}
}

func other(id, label string, seconds float64) Record {
	return Record{Kind: KindOther, ID: id, Label: label, ElapsedSeconds: seconds}
}

func buildTree(t *testing.T, records ...Record) *Tree {
	t.Helper()
	tree := NewTree()
	for _, r := range records {
		if err := tree.Insert(r); err != nil {
			t.Fatalf("Insert(%v) failed: %v", &r, err)
		}
	}
	return tree
}

func TestInsertParentAndChild(t *testing.T) {
	tree := buildTree(t,
		function("1", "foo", 0.2),
		function("1.1", "bar", 0.3),
	)

	roots := tree.Roots()
	if len(roots) != 1 {
		t.Fatalf("Expected a single root, got %d", len(roots))
	}
	root := roots[0]
	if root.ID() != "1" || root.Record == nil || root.Record.FunctionName != "foo" {
		t.Errorf("Root was wrong: id=%s record=%v", root.ID(), root.Record)
	}
	if len(root.Children()) != 1 {
		t.Fatalf("Expected root to have 1 child, had %d", len(root.Children()))
	}
	child := root.Children()[0]
	if child.ID() != "1.1" || child.Record == nil || child.Record.FunctionName != "bar" {
		t.Errorf("Child was wrong: id=%s record=%v", child.ID(), child.Record)
	}
}

func TestInsertCreatesStructuralNodes(t *testing.T) {
	tree := buildTree(t, resource("1.5.2", "File", "/etc/motd", 0.1))

	require.Equal(t, 3, tree.Len())
	for _, id := range []string{"1", "1.5"} {
		n := tree.Lookup(id)
		require.NotNil(t, n, id)
		require.Nil(t, n.Record, id)
	}
	leaf := tree.Lookup("1.5.2")
	require.NotNil(t, leaf)
	require.Equal(t, []string{"1", "5", "2"}, leaf.Path())
	require.Equal(t, "2", leaf.Segment())
	require.Equal(t, "/etc/motd", leaf.Record.ResourceTitle)

	// A later record for the structural node fills it in place.
	require.NoError(t, tree.Insert(function("1.5", "include", 0.3)))
	require.Equal(t, 3, tree.Len())
	require.Equal(t, "include", tree.Lookup("1.5").Record.FunctionName)
	require.Same(t, leaf, tree.Lookup("1.5").Child("2"))
}

func TestInsertOrderIndependence(t *testing.T) {
	a := function("1", "A", 1)
	b := function("1.2", "B", 0.5)
	c := function("1.1", "C", 0.25)
	d := resource("1.2.7", "File", "/tmp/x", 0.1)

	want := buildTree(t, a, b, c, d)
	for _, perm := range [][]Record{
		{a, c, b, d},
		{b, a, c, d},
		{b, c, a, d},
		{c, a, b, d},
		{d, c, b, a},
		{d, a, c, b},
	} {
		got := buildTree(t, perm...)
		require.NoError(t, Equivalent(want, got))
	}

	different := buildTree(t, a, b, function("1.1", "other", 0.25), d)
	require.Error(t, Equivalent(want, different))
}

func TestWalkOrder(t *testing.T) {
	tree := buildTree(t,
		other("1", "Compiled catalog", 2),
		function("1.2", "second", 0.5),
		function("1.1", "first", 0.5),
		resource("1.2.1", "File", "/etc/hosts", 0.1),
		other("2", "Filtered result", 0.1),
	)

	var got []string
	var depths []int
	tree.Walk(func(e Entry) bool {
		got = append(got, e.ID)
		depths = append(depths, e.Depth)
		return true
	})
	// Children are shown in the order they were first seen, not sorted.
	require.Equal(t, []string{"1", "1.2", "1.2.1", "1.1", "2"}, got)
	require.Equal(t, []int{1, 2, 3, 2, 1}, depths)

	var stopped []string
	tree.Walk(func(e Entry) bool {
		stopped = append(stopped, e.ID)
		return e.ID != "1.2"
	})
	require.Equal(t, []string{"1", "1.2"}, stopped)
}

func TestEntries(t *testing.T) {
	tree := buildTree(t,
		other("1", "Compiled catalog", 2),
		resource("1.2.1", "File", "/etc/hosts", 0.1),
		function("1.1", "lookup", 0.5),
	)

	entries := tree.Entries()
	require.Len(t, entries, tree.Len())
	require.Equal(t, Entry{Depth: 1, Segment: "1", ID: "1", Record: tree.Lookup("1").Record}, entries[0])
	// 1.2 only exists because 1.2.1 was inserted.
	require.Equal(t, Entry{Depth: 2, Segment: "2", ID: "1.2"}, entries[1])
	require.Equal(t, "/etc/hosts", entries[2].Record.ResourceTitle)
	require.Equal(t, 3, entries[2].Depth)
	require.Equal(t, "1.1", entries[3].ID)

	require.Empty(t, NewTree().Entries())
}

func TestInsertDuplicateID(t *testing.T) {
	tree := buildTree(t, function("1", "foo", 0.2))

	err := tree.Insert(function("1", "bar", 0.4))
	require.ErrorIs(t, err, ErrDuplicateID)

	var dup *DuplicateIDError
	require.True(t, errors.As(err, &dup))
	require.Equal(t, "foo", dup.Previous.FunctionName)
	require.Equal(t, "bar", dup.Current.FunctionName)

	// The later record is kept.
	require.Equal(t, "bar", tree.Lookup("1").Record.FunctionName)
}

func TestInsertInvalidID(t *testing.T) {
	tree := NewTree()
	for _, id := range []string{"", ".", "1.", "1..2", "a.1", "1.-2"} {
		err := tree.Insert(function(id, "foo", 1))
		require.ErrorIs(t, err, ErrInvalidID, "id %q", id)
	}
	require.Equal(t, 0, tree.Len())
}

func TestRecordLabels(t *testing.T) {
	for _, test := range []struct {
		record Record
		name   string
		label  string
	}{
		{function("1", "hiera", 0.25), "hiera", "function hiera (0.25 seconds)"},
		{resource("1", "File", "/etc/foo", 0.1), "File", "resource File[/etc/foo] (0.1 seconds)"},
		{other("1", "Compiled catalog", 3), "Compiled catalog", "Compiled catalog (3 seconds)"},
	} {
		if got := test.record.Name(); got != test.name {
			t.Errorf("Name() = %q, want %q", got, test.name)
		}
		if got := test.record.String(); got != test.label {
			t.Errorf("String() = %q, want %q", got, test.label)
		}
	}
}

func TestRecordsOfKind(t *testing.T) {
	records := Records{
		function("1", "a", 1),
		resource("1.1", "File", "x", 1),
		function("1.2", "b", 1),
		other("1.3", "c", 1),
	}
	functions := records.OfKind(KindFunction)
	require.Len(t, functions, 2)
	require.Equal(t, "a", functions[0].FunctionName)
	require.Equal(t, "b", functions[1].FunctionName)
	require.Len(t, records.OfKind(KindOther), 1)
	require.Empty(t, Records{}.OfKind(KindResource))
}
