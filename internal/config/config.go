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

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds defaults for the command line flags of the same names.
type Config struct {
	// Rows shown per aggregate table, 0 shows all.
	Top int `yaml:"top"`
	// auto, always or never.
	Color  string `yaml:"color"`
	NoTree bool   `yaml:"no_tree"`
	Other  bool   `yaml:"other"`
	Strict bool   `yaml:"strict"`

	Pprof string `yaml:"pprof"`
	// Folded stack output for flame graph tools.
	Collapsed string `yaml:"collapsed"`

	LogLevel string `yaml:"log_level"`
}

func Default() *Config {
	return &Config{
		Color:    "auto",
		LogLevel: "info",
	}
}

// ParseConfig reads a YAML file over the defaults. Unknown keys are an error.
func ParseConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	conf := Default()
	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)
	if err := dec.Decode(conf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if conf.Top < 0 {
		return nil, fmt.Errorf("%s: top must not be negative, got %d", path, conf.Top)
	}
	return conf, nil
}
