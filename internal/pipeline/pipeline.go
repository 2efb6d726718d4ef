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

// Package pipeline turns a Puppet profile log into a namespace tree and the
// function and resource timing reports.
package pipeline

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/puppetProfileTree/internal"
	"github.com/google/puppetProfileTree/internal/parsers"
)

type Options struct {
	// Strict makes a duplicate id fail the run instead of being reported
	// as a warning.
	Strict bool
}

type Result struct {
	Tree      *internal.Tree
	Records   internal.Records
	Functions internal.Aggregate
	Resources internal.Aggregate
	// Warnings holds *internal.DuplicateIDError values, in input order.
	Warnings []error
}

func Run(lines []string) (*Result, error) {
	return RunWithOptions(parsers.MakeLinesParser(lines), Options{})
}

func RunReader(r io.Reader) (*Result, error) {
	return RunReaderWithOptions(r, Options{})
}

func RunReaderWithOptions(r io.Reader, opts Options) (*Result, error) {
	p, err := parsers.MakeProfileParser(r)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	return RunWithOptions(p, opts)
}

// RunWithOptions parses every record, inserts them into one tree in input
// order and aggregates function calls and resource evaluations separately.
// Other spans stay in the tree and in Records only.
func RunWithOptions(p parsers.Parser, opts Options) (*Result, error) {
	records, err := p.ParseProfile()
	if err != nil {
		return nil, err
	}
	res := &Result{
		Tree:     internal.NewTree(),
		Records:  records,
		Warnings: make([]error, 0),
	}
	for _, r := range records {
		err := res.Tree.Insert(r)
		if err == nil {
			continue
		}
		if errors.Is(err, internal.ErrDuplicateID) && !opts.Strict {
			res.Warnings = append(res.Warnings, err)
			continue
		}
		return nil, err
	}
	res.Functions = internal.AggregateRecords(records.OfKind(internal.KindFunction))
	res.Resources = internal.AggregateRecords(records.OfKind(internal.KindResource))
	return res, nil
}
