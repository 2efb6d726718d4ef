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

import "sort"

type Row struct {
	Name    string
	Seconds float64
	Count   int
}

// Aggregate is the total and per name breakdown of a group of records.
type Aggregate struct {
	Total float64
	Rows  []Row
}

// AggregateRecords sums elapsed time per logical name. Rows are sorted by
// seconds, largest first; equal sums keep the order their names first
// appeared in.
func AggregateRecords(records []Record) Aggregate {
	agg := Aggregate{Rows: make([]Row, 0)}
	index := make(map[string]int)
	for i := range records {
		r := &records[i]
		agg.Total += r.ElapsedSeconds
		name := r.Name()
		j, ok := index[name]
		if !ok {
			j = len(agg.Rows)
			index[name] = j
			agg.Rows = append(agg.Rows, Row{Name: name})
		}
		agg.Rows[j].Seconds += r.ElapsedSeconds
		agg.Rows[j].Count++
	}
	sort.SliceStable(agg.Rows, func(i, j int) bool { return agg.Rows[i].Seconds > agg.Rows[j].Seconds })
	return agg
}
