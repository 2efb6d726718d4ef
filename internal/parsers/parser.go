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

package parsers

import (
	"io"

	"github.com/google/puppetProfileTree/internal"
	"github.com/google/puppetProfileTree/internal/parsers/puppet"
)

type Parser interface {
	ParseProfile() (records internal.Records, err error)
}

func MakeProfileParser(file io.Reader) (Parser, error) {
	p, err := puppet.MakeProfileParser(file)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func MakeLinesParser(lines []string) Parser {
	return puppet.NewProfileParser(lines)
}
