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

// Package catalog summarizes a compiled Puppet catalog in JSON form.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

type Resource struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	File  string `json:"file,omitempty"`
	Line  int    `json:"line,omitempty"`
}

func (r Resource) String() string {
	return fmt.Sprintf("%s[%s]", r.Type, r.Title)
}

type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type Data struct {
	Name        string     `json:"name"`
	Version     any        `json:"version"`
	Environment string     `json:"environment"`
	Resources   []Resource `json:"resources"`
	Edges       []Edge     `json:"edges"`
	Classes     []string   `json:"classes"`
}

type Catalog struct {
	Data     Data           `json:"data"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func Load(r io.Reader) (*Catalog, error) {
	c := &Catalog{}
	dec := json.NewDecoder(r)
	// Keeps integer catalog versions printable as written.
	dec.UseNumber()
	if err := dec.Decode(c); err != nil {
		return nil, fmt.Errorf("invalid catalog JSON: %w", err)
	}
	return c, nil
}

type Count struct {
	Name  string
	Count int
}

// sortCounts orders by count, largest first, then by name.
func sortCounts(m map[string]int) []Count {
	counts := make([]Count, 0, len(m))
	for name, n := range m {
		counts = append(counts, Count{name, n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Name < counts[j].Name
	})
	return counts
}

func (c *Catalog) ResourceTypeCounts() []Count {
	m := make(map[string]int)
	for _, r := range c.Data.Resources {
		m[r.Type]++
	}
	return sortCounts(m)
}

// SourceEdgeCounts counts edges per source resource, skipping resources
// with fewer than minEdges edges.
func (c *Catalog) SourceEdgeCounts(minEdges int) []Count {
	m := make(map[string]int)
	for _, e := range c.Data.Edges {
		m[e.Source]++
	}
	return sortCounts(filterBelow(m, minEdges))
}

func (c *Catalog) TargetEdgeCounts(minEdges int) []Count {
	m := make(map[string]int)
	for _, e := range c.Data.Edges {
		m[e.Target]++
	}
	return sortCounts(filterBelow(m, minEdges))
}

func filterBelow(m map[string]int, minEdges int) map[string]int {
	for k, v := range m {
		if v < minEdges {
			delete(m, k)
		}
	}
	return m
}

type FileResources struct {
	File      string
	Resources []string
}

// FilesByResourceCount groups resources by the manifest declaring them.
// Files with the most resources come first; each resource list is sorted.
func (c *Catalog) FilesByResourceCount() []FileResources {
	byFile := make(map[string][]string)
	for _, r := range c.Data.Resources {
		if r.File == "" {
			continue
		}
		byFile[r.File] = append(byFile[r.File], r.String())
	}
	files := make([]FileResources, 0, len(byFile))
	for file, resources := range byFile {
		sort.Strings(resources)
		files = append(files, FileResources{File: file, Resources: resources})
	}
	sort.Slice(files, func(i, j int) bool {
		if len(files[i].Resources) != len(files[j].Resources) {
			return len(files[i].Resources) > len(files[j].Resources)
		}
		return files[i].File < files[j].File
	})
	return files
}
