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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/analysis"
)

// flags() binds its returned FlagSet to the package-level _conf, so every
// test that parses flags or calls run must stash and restore _conf to avoid
// bleeding state into other tests.
func stashConf() func() {
	saved := _conf
	return func() { _conf = saved }
}

func TestFlags_Defaults(t *testing.T) {
	defer stashConf()()
	_conf = Config{}

	fs := flags()
	require.NoError(t, fs.Parse(nil))
	require.False(t, _conf.TreatWarningsAsErrors)
	require.Empty(t, _conf.ConfigFile)
}

func TestFlags_SetFromArgs(t *testing.T) {
	defer stashConf()()
	_conf = Config{}

	fs := flags()
	require.NoError(t, fs.Parse([]string{"-treat-warnings-as-errors", "-config", "solflow.yaml"}))
	require.True(t, _conf.TreatWarningsAsErrors)
	require.Equal(t, "solflow.yaml", _conf.ConfigFile)
}

func TestLoad_Success(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"treat-warnings-as-errors: true\n"+
			"exclude-file-patterns:\n"+
			"  - \"*_test.go\"\n"+
			"  - \"generated/*.go\"\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.True(t, c.TreatWarningsAsErrors)
	require.Equal(t, []string{"*_test.go", "generated/*.go"}, c.ExcludeFilePatterns)
	// ConfigFile is yaml:"-": never populated by unmarshaling.
	require.Empty(t, c.ConfigFile)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("treat-warnings-as-errors: [this is not closed\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestRun_FlagsTakePrecedenceOverFile(t *testing.T) {
	defer stashConf()()

	path := filepath.Join(t.TempDir(), "solflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"treat-warnings-as-errors: false\n"+
			"exclude-file-patterns:\n"+
			"  - \"vendor/*.go\"\n"), 0o644))

	_conf = Config{TreatWarningsAsErrors: true, ConfigFile: path}

	res, err := run(&analysis.Pass{})
	require.NoError(t, err)
	conf := res.(*Config)

	// TreatWarningsAsErrors was set on the flag (true) and false in the
	// file: the flag wins.
	require.True(t, conf.TreatWarningsAsErrors)
	// ExcludeFilePatterns has no flag of its own: the file value passes
	// through untouched.
	require.Equal(t, []string{"vendor/*.go"}, conf.ExcludeFilePatterns)
	require.Equal(t, path, conf.ConfigFile)
}

func TestRun_NoConfigFile(t *testing.T) {
	defer stashConf()()
	_conf = Config{TreatWarningsAsErrors: true}

	res, err := run(&analysis.Pass{})
	require.NoError(t, err)
	conf := res.(*Config)
	require.True(t, conf.TreatWarningsAsErrors)
	require.Empty(t, conf.ConfigFile)
}

func TestRun_MissingConfigFile(t *testing.T) {
	defer stashConf()()
	_conf = Config{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")}

	_, err := run(&analysis.Pass{})
	require.Error(t, err)
}
