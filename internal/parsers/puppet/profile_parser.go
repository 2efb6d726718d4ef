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

// Package puppet parses the PROFILE lines a Puppet compile writes when
// profiling is enabled.
package puppet

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/puppetProfileTree/internal"
)

// Marker starts the interesting part of a trace line. Anything before it is
// log leader (timestamps, severity) and is dropped.
const Marker = "PROFILE"

var (
	ErrMalformed     = errors.New("malformed profile line")
	ErrInvalidNumber = errors.New("invalid elapsed time")
)

// ParseError carries the offending line. LineNo is 1-based and zero when the
// line was parsed on its own.
type ParseError struct {
	LineNo int
	Line   string
	Err    error
}

func (e *ParseError) Error() string {
	if e.LineNo > 0 {
		return fmt.Sprintf("line %d: %v: %q", e.LineNo, e.Err, e.Line)
	}
	return fmt.Sprintf("%v: %q", e.Err, e.Line)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var (
	functionRe = regexp.MustCompile(`([\d.]+) Called (\S+): took ([\d.]+) seconds`)
	resourceRe = regexp.MustCompile(`([\d.]+) Evaluated resource ([\w:]+)\[(.*)\]: took ([\d.]+) seconds$`)
	otherRe    = regexp.MustCompile(`PROFILE \[\d+\] ([\d.]+) (.*): took ([\d.]+) seconds$`)
)

// ParseLine classifies one trace line and extracts its fields. Lines
// mentioning "Called" are function calls, then "Evaluated resource" lines are
// resources, everything else is a generic span.
func ParseLine(raw string) (internal.Record, error) {
	line := strings.TrimRight(raw, " \t\r\n")
	var (
		r   internal.Record
		err error
	)
	switch {
	case strings.Contains(line, "Called"):
		r, err = parseFunction(line)
	case strings.Contains(line, "Evaluated resource"):
		r, err = parseResource(line)
	default:
		r, err = parseOther(line)
	}
	if err == nil {
		err = internal.ValidateID(r.ID)
	}
	if err != nil {
		return internal.Record{}, &ParseError{Line: raw, Err: err}
	}
	return r, nil
}

func parseFunction(line string) (internal.Record, error) {
	matches := functionRe.FindStringSubmatch(line)
	if len(matches) != 4 {
		return internal.Record{}, ErrMalformed
	}
	elapsed, err := parseSeconds(matches[3])
	if err != nil {
		return internal.Record{}, err
	}
	return internal.Record{
		Kind:           internal.KindFunction,
		ID:             matches[1],
		FunctionName:   matches[2],
		ElapsedSeconds: elapsed,
	}, nil
}

func parseResource(line string) (internal.Record, error) {
	matches := resourceRe.FindStringSubmatch(line)
	if len(matches) != 5 {
		return internal.Record{}, ErrMalformed
	}
	elapsed, err := parseSeconds(matches[4])
	if err != nil {
		return internal.Record{}, err
	}
	return internal.Record{
		Kind:           internal.KindResource,
		ID:             matches[1],
		ResourceType:   matches[2],
		ResourceTitle:  matches[3],
		ElapsedSeconds: elapsed,
	}, nil
}

func parseOther(line string) (internal.Record, error) {
	matches := otherRe.FindStringSubmatch(line)
	if len(matches) != 4 {
		return internal.Record{}, ErrMalformed
	}
	elapsed, err := parseSeconds(matches[3])
	if err != nil {
		return internal.Record{}, err
	}
	return internal.Record{
		Kind:           internal.KindOther,
		ID:             matches[1],
		Label:          matches[2],
		ElapsedSeconds: elapsed,
	}, nil
}

func parseSeconds(text string) (float64, error) {
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, text)
	}
	if value < 0 {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidNumber, text)
	}
	return value, nil
}

// MakeProfileParser reads file line by line and keeps the lines holding
// the marker along with their line numbers. Lines have no length limit.
func MakeProfileParser(file io.Reader) (p ProfileParser, err error) {
	p = ProfileParser{
		lines: []profileLine{},
	}
	reader := bufio.NewReader(file)
	for lineNo := 1; ; lineNo++ {
		line, err := reader.ReadString('\n')
		if line != "" && strings.Contains(line, Marker) {
			p.lines = append(p.lines, profileLine{
				lineNo: lineNo,
				text:   strings.TrimRight(line, "\r\n"),
			})
		}
		if err == io.EOF {
			return p, nil
		}
		if err != nil {
			return p, err
		}
	}
}

func NewProfileParser(lines []string) ProfileParser {
	p := ProfileParser{lines: make([]profileLine, 0, len(lines))}
	for i, line := range lines {
		p.lines = append(p.lines, profileLine{lineNo: i + 1, text: line})
	}
	return p
}

type profileLine struct {
	lineNo int
	text   string
}

type ProfileParser struct {
	lines []profileLine
}

// ParseProfile returns a record for every line holding the marker, in input
// order. Lines without it are skipped. The first bad line aborts parsing.
func (p ProfileParser) ParseProfile() (internal.Records, error) {
	records := make(internal.Records, 0)
	for _, line := range p.lines {
		idx := strings.Index(line.text, Marker)
		if idx < 0 {
			continue
		}
		r, err := ParseLine(line.text[idx:])
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.LineNo = line.lineNo
				pe.Line = line.text
			}
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}
