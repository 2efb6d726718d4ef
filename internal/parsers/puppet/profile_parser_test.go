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

package puppet

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/google/puppetProfileTree/internal"
)

func TestProfileParsing(t *testing.T) {
	const profile = "Info: Applying configuration version '1600000000'\n" +
		"2020-09-13 12:00:00 +0000 Puppet (debug): PROFILE [42] 1 Compiled catalog for node.example.com: took 1.5 seconds\n" +
		"Debug: PROFILE [42] 1.1 Called lookup: took 0.25 seconds\r\n" +
		"Debug: PROFILE [42] 1.2 Evaluated resource Class[Apache::Params]: took 0.125 seconds\n" +
		"Notice: unrelated line\n" +
		"Debug: PROFILE [42] 1.2.1 Evaluated resource File[/etc/motd]: took 0.05 seconds\n"

	r := strings.NewReader(profile)
	parser, err := MakeProfileParser(r)
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
	got, err := parser.ParseProfile()
	if err != nil {
		t.Error(err)
		t.FailNow()
	}

	if len(got) != 4 {
		t.Fatalf("Expected 4 records, got %d: %v", len(got), got)
	}
	compiled := got[0]
	if compiled.Kind != internal.KindOther || compiled.ID != "1" || compiled.Label != "Compiled catalog for node.example.com" {
		t.Errorf("Compiled catalog record was wrong: %+v", compiled)
	}
	if compiled.ElapsedSeconds != 1.5 {
		t.Errorf("Compiled catalog took %v, expected 1.5", compiled.ElapsedSeconds)
	}
	lookup := got[1]
	if lookup.Kind != internal.KindFunction || lookup.FunctionName != "lookup" || lookup.ID != "1.1" {
		t.Errorf("lookup record was wrong: %+v", lookup)
	}
	class := got[2]
	if class.Kind != internal.KindResource || class.ResourceType != "Class" || class.ResourceTitle != "Apache::Params" {
		t.Errorf("Class record was wrong: %+v", class)
	}
	if got[3].ID != "1.2.1" {
		t.Errorf("Expected id 1.2.1, was %s", got[3].ID)
	}
}

func TestParseLine(t *testing.T) {
	for _, test := range []struct {
		name string
		line string
		want internal.Record
	}{{
		name: "function",
		line: "PROFILE [1] 1 Called foo: took 0.2 seconds",
		want: internal.Record{Kind: internal.KindFunction, ID: "1", FunctionName: "foo", ElapsedSeconds: 0.2},
	}, {
		name: "resource",
		line: "PROFILE [1] 1 Evaluated resource File[/etc/foo]: took 0.1 seconds",
		want: internal.Record{Kind: internal.KindResource, ID: "1", ResourceType: "File", ResourceTitle: "/etc/foo", ElapsedSeconds: 0.1},
	}, {
		name: "namespaced resource type",
		line: "PROFILE [7] 1.3.2 Evaluated resource Apache::Vhost[default: ssl]: took 0.004 seconds",
		want: internal.Record{Kind: internal.KindResource, ID: "1.3.2", ResourceType: "Apache::Vhost", ResourceTitle: "default: ssl", ElapsedSeconds: 0.004},
	}, {
		name: "other",
		line: "PROFILE [99] 1.4 Filtered result for catalog node.example.com: took 0.031 seconds",
		want: internal.Record{Kind: internal.KindOther, ID: "1.4", Label: "Filtered result for catalog node.example.com", ElapsedSeconds: 0.031},
	}, {
		name: "integer seconds",
		line: "PROFILE [1] 2 Compiled catalog: took 3 seconds  ",
		want: internal.Record{Kind: internal.KindOther, ID: "2", Label: "Compiled catalog", ElapsedSeconds: 3},
	}} {
		t.Run(test.name, func(t *testing.T) {
			got, err := ParseLine(test.line)
			require.NoError(t, err)
			require.Equal(t, test.want, got)
		})
	}
}

func TestParseLineErrors(t *testing.T) {
	for _, test := range []struct {
		name string
		line string
		want error
	}{{
		name: "function without timing",
		line: "PROFILE [1] 1 Called foo",
		want: ErrMalformed,
	}, {
		name: "resource without brackets",
		line: "PROFILE [1] 1 Evaluated resource File: took 0.1 seconds",
		want: ErrMalformed,
	}, {
		name: "other without marker id",
		line: "PROFILE 1 Something: took 0.1 seconds",
		want: ErrMalformed,
	}, {
		name: "two decimal points",
		line: "PROFILE [1] 1 Called foo: took 0.1.2 seconds",
		want: ErrInvalidNumber,
	}, {
		name: "empty id segment",
		line: "PROFILE [1] 1..2 Called foo: took 0.1 seconds",
		want: internal.ErrInvalidID,
	}, {
		name: "leading dot",
		line: "PROFILE [1] .1 Evaluated resource File[/x]: took 0.1 seconds",
		want: internal.ErrInvalidID,
	}} {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParseLine(test.line)
			require.Error(t, err)
			require.ErrorIs(t, err, test.want)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			require.Equal(t, test.line, pe.Line)
		})
	}
}

func TestParseProfileFailsFast(t *testing.T) {
	lines := []string{
		"Debug: PROFILE [1] 1 Called foo: took 0.2 seconds",
		"no marker here",
		"Debug: PROFILE [1] 1.1 Called bar",
		"Debug: PROFILE [1] 1.2 Called baz: took 0.2 seconds",
	}
	records, err := NewProfileParser(lines).ParseProfile()
	require.Nil(t, records)
	require.ErrorIs(t, err, ErrMalformed)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	require.Equal(t, 3, pe.LineNo)
	require.Equal(t, lines[2], pe.Line)
	require.Contains(t, err.Error(), "line 3")
}

func TestElapsedRoundTrip(t *testing.T) {
	for _, seconds := range []string{"0", "0.2", "1.5", "0.000123", "12.3456789"} {
		line := "PROFILE [1] 1 Called foo: took " + seconds + " seconds"
		r, err := ParseLine(line)
		require.NoError(t, err)

		// The display label must carry the same number back.
		label := r.String()
		require.Equal(t, "function foo ("+internal.FormatSeconds(r.ElapsedSeconds)+" seconds)", label)
		again, err := ParseLine("PROFILE [1] 1 Called foo: took " + internal.FormatSeconds(r.ElapsedSeconds) + " seconds")
		require.NoError(t, err)
		require.Equal(t, r.ElapsedSeconds, again.ElapsedSeconds)
	}
}

func TestMakeProfileParserKeepsLineNumbers(t *testing.T) {
	log := "Info: starting\r\n" +
		strings.Repeat("y", 3<<20) + "\n" +
		"Debug: PROFILE [7] 1 Called foo: took 1 seconds\r\n" +
		"Debug: PROFILE [7] 1.1 Called bar took 1 seconds"

	parser, err := MakeProfileParser(strings.NewReader(log))
	require.NoError(t, err)
	_, err = parser.ParseProfile()
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, 4, pe.LineNo)
	require.Equal(t, "Debug: PROFILE [7] 1.1 Called bar took 1 seconds", pe.Line)
	require.ErrorIs(t, err, ErrMalformed)
}
