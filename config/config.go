// Copyright (c) 2025 The solflow Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"flag"
	"fmt"
	"os"
	"reflect"

	"golang.org/x/tools/go/analysis"
	"gopkg.in/yaml.v3"
)

// Config is the user-facing configuration for the pass, populated from
// command-line flags and, optionally, a YAML file. It is exposed to the rest
// of the pipeline as the ResultType of Analyzer, mirroring the shape of a
// typical golang.org/x/tools/go/analysis config sub-analyzer.
type Config struct {
	// TreatWarningsAsErrors escalates 5740 and 6321 to errors, so that a CI
	// pipeline can fail the build on unreachable code or an unassigned
	// named return, not just the hard 3464 error.
	TreatWarningsAsErrors bool `yaml:"treat-warnings-as-errors"`
	// ExcludeFilePatterns is a list of glob patterns (matched against a
	// file's path) for files to skip entirely.
	ExcludeFilePatterns []string `yaml:"exclude-file-patterns"`
	// ConfigFile is the path to an optional YAML file providing the fields
	// above; set via the -config flag.
	ConfigFile string `yaml:"-"`
}

// _doc is the documentation string for Analyzer.
const _doc = "Load and parse solflow's configuration (flags plus an optional YAML file) for " +
	"consumption by the rest of the analysis pipeline."

// Analyzer is the configuration sub-analyzer. Every other analyzer in this
// module Requires it and reads its ResultType to get a *Config.
var Analyzer = &analysis.Analyzer{
	Name:       "solflow_config",
	Doc:        _doc,
	Run:        run,
	ResultType: reflect.TypeOf((*Config)(nil)),
	Flags:      flags(),
}

var _conf Config

func flags() flag.FlagSet {
	fs := flag.NewFlagSet("solflow_config", flag.ExitOnError)
	fs.BoolVar(&_conf.TreatWarningsAsErrors, "treat-warnings-as-errors", false,
		"escalate unreachable-code and unassigned-named-return warnings to errors")
	fs.StringVar(&_conf.ConfigFile, "config", "",
		"path to an optional YAML configuration file")
	return *fs
}

func run(pass *analysis.Pass) (interface{}, error) {
	conf := _conf
	if conf.ConfigFile != "" {
		loaded, err := Load(conf.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("load config file %q: %w", conf.ConfigFile, err)
		}
		// Flags take precedence over the file for the fields they set
		// explicitly (TreatWarningsAsErrors here); everything else (the
		// file-only fields) is taken from the loaded config.
		loaded.ConfigFile = conf.ConfigFile
		if conf.TreatWarningsAsErrors {
			loaded.TreatWarningsAsErrors = true
		}
		conf = *loaded
	}
	return &conf, nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return &c, nil
}
