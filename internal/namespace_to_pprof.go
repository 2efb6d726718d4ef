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
	"math"

	"github.com/google/pprof/profile"
)

type namespaceToPprofConverter struct {
	tree *Tree

	// functions and locations by frame name
	functions      map[string]*profile.Function
	nextFunctionID uint64
	locations      map[string]*profile.Location
	nextLocationID uint64

	samples []*profile.Sample
}

func newPprofConverter(tree *Tree) *namespaceToPprofConverter {
	return &namespaceToPprofConverter{
		tree:           tree,
		functions:      make(map[string]*profile.Function),
		nextFunctionID: 1,
		locations:      make(map[string]*profile.Location),
		nextLocationID: 1,
		samples:        make([]*profile.Sample, 0),
	}
}

func (toPprof *namespaceToPprofConverter) getFunction(name string) *profile.Function {
	f, ok := toPprof.functions[name]
	if !ok {
		f = &profile.Function{
			ID:         toPprof.nextFunctionID,
			Name:       name,
			SystemName: name,
		}
		toPprof.functions[name] = f
		toPprof.nextFunctionID++
	}
	return f
}

func (toPprof *namespaceToPprofConverter) getLocation(frame string) *profile.Location {
	loc, ok := toPprof.locations[frame]
	if !ok {
		loc = &profile.Location{
			ID:   toPprof.nextLocationID,
			Line: []profile.Line{{Function: toPprof.getFunction(frame)}},
		}
		toPprof.locations[frame] = loc
		toPprof.nextLocationID++
	}
	return loc
}

func toNanoseconds(seconds float64) int64 {
	return int64(math.Round(seconds * 1e9))
}

// childTime sums the elapsed time of the closest descendants holding a
// record. Structural nodes in between are looked through.
func childTime(n *Node) float64 {
	total := 0.0
	for _, c := range n.children {
		if c.Record != nil {
			total += c.Record.ElapsedSeconds
		} else {
			total += childTime(c)
		}
	}
	return total
}

// SelfSeconds is the part of n's elapsed time not covered by its recorded
// descendants. Timings are rounded in the log, so this is clamped at zero.
func SelfSeconds(n *Node) float64 {
	if n.Record == nil {
		return 0
	}
	self := n.Record.ElapsedSeconds - childTime(n)
	if self < 0 {
		return 0
	}
	return self
}

// convertSample builds a leaf-first stack from n and its recorded ancestors.
func (toPprof *namespaceToPprofConverter) convertSample(n *Node, ancestors []*Record) *profile.Sample {
	stackTrace := make([]*profile.Location, 0, len(ancestors)+1)
	stackTrace = append(stackTrace, toPprof.getLocation(n.Record.Frame()))
	for i := len(ancestors) - 1; i >= 0; i-- {
		stackTrace = append(stackTrace, toPprof.getLocation(ancestors[i].Frame()))
	}
	return &profile.Sample{
		Location: stackTrace,
		Value:    []int64{toNanoseconds(SelfSeconds(n)), 1},
		Label: map[string][]string{
			"id":   {n.ID()},
			"kind": {n.Record.Kind.String()},
		},
	}
}

func (toPprof *namespaceToPprofConverter) findSamplesInNode(n *Node, ancestors []*Record) {
	if n.Record != nil {
		toPprof.samples = append(toPprof.samples, toPprof.convertSample(n, ancestors))
		ancestors = append(ancestors[:len(ancestors):len(ancestors)], n.Record)
	}
	for _, c := range n.children {
		toPprof.findSamplesInNode(c, ancestors)
	}
}

func (toPprof *namespaceToPprofConverter) convertToPprof() *profile.Profile {
	for _, root := range toPprof.tree.Roots() {
		toPprof.findSamplesInNode(root, nil)
	}

	locations := make([]*profile.Location, 0, len(toPprof.locations))
	for _, loc := range toPprof.locations {
		locations = append(locations, loc)
	}
	functions := make([]*profile.Function, 0, len(toPprof.functions))
	for _, fn := range toPprof.functions {
		functions = append(functions, fn)
	}

	return &profile.Profile{
		SampleType: []*profile.ValueType{
			{Type: "wall", Unit: "nanoseconds"},
			{Type: "spans", Unit: "count"},
		},
		Sample:   toPprof.samples,
		Location: locations,
		Function: functions,
	}
}

// NamespaceToPprof exports every recorded node as a sample valued with its
// self time, stacked under the recorded nodes above it.
func NamespaceToPprof(tree *Tree) *profile.Profile {
	return newPprofConverter(tree).convertToPprof()
}
