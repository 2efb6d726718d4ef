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
	"strconv"
	"strings"
)

// Kind tells which of the three trace line shapes a Record came from.
type Kind int

const (
	KindFunction Kind = iota
	KindResource
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindResource:
		return "resource"
	case KindOther:
		return "other"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Record is one parsed PROFILE line. Only the fields belonging to Kind are
// set: FunctionName for functions, ResourceType and ResourceTitle for
// resources, Label for everything else.
type Record struct {
	Kind           Kind
	ID             string
	ElapsedSeconds float64

	FunctionName  string
	ResourceType  string
	ResourceTitle string
	Label         string
}

// Name is the key records are grouped by when aggregating.
func (r *Record) Name() string {
	switch r.Kind {
	case KindFunction:
		return r.FunctionName
	case KindResource:
		return r.ResourceType
	}
	return r.Label
}

// Frame is the display label without the timing suffix.
func (r *Record) Frame() string {
	switch r.Kind {
	case KindFunction:
		return "function " + r.FunctionName
	case KindResource:
		return fmt.Sprintf("resource %s[%s]", r.ResourceType, r.ResourceTitle)
	}
	return r.Label
}

func (r *Record) String() string {
	return fmt.Sprintf("%s (%s seconds)", r.Frame(), FormatSeconds(r.ElapsedSeconds))
}

// Segments splits the dotted id, "1.2.3" -> ["1", "2", "3"].
func (r *Record) Segments() []string {
	return strings.Split(r.ID, ".")
}

// FormatSeconds prints the shortest decimal that parses back to s.
func FormatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}

type Records []Record

// OfKind returns the records of one kind, in input order.
func (rs Records) OfKind(k Kind) Records {
	out := make(Records, 0)
	for _, r := range rs {
		if r.Kind == k {
			out = append(out, r)
		}
	}
	return out
}
