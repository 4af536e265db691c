// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/bancek/thrift-tools/internal/testutil"
)

func testdataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.CopyFS(dir, testutil.Testdata()))
	return dir
}

func writeConfig(t *testing.T, path string, cfg *config) {
	t.Helper()
	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, out, 0o644))
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestConfig(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		expect  *config
		errMsg  string
	}{
		{
			name:    "empty file keeps defaults",
			content: "",
			expect:  defaultConfig(),
		},
		{
			name:    "partial override",
			content: "format: yaml\njobs: 4\n",
			expect:  &config{LogLevel: "warn", Format: "yaml", Jobs: 4},
		},
		{
			name:    "include dirs",
			content: "include_dirs: [a, b]\nstrict: true\n",
			expect: &config{
				LogLevel:    "warn",
				Format:      "text",
				Jobs:        1,
				Strict:      true,
				IncludeDirs: []string{"a", "b"},
			},
		},
		{
			name:    "unknown key",
			content: "colour: blue\n",
			errMsg:  "field colour not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			cfg, err := loadConfig(path)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expect, cfg)
		})
	}
}

func TestConfigRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := &config{LogLevel: "debug", Format: "yaml", Jobs: 3, IncludeDirs: []string{"/usr/share/thrift"}}
	writeConfig(t, path, cfg)

	loaded, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		modify func(*config)
		errMsg string
	}{
		{name: "defaults", modify: func(*config) {}},
		{
			name:   "log level",
			modify: func(c *config) { c.LogLevel = "loud" },
			errMsg: `unsupported log level "loud"`,
		},
		{
			name:   "format",
			modify: func(c *config) { c.Format = "json" },
			errMsg: `unsupported output format "json"`,
		},
		{
			name:   "jobs",
			modify: func(c *config) { c.Jobs = 0 },
			errMsg: "jobs must be at least 1, got 0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.modify(cfg)
			err := cfg.validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestFunctions(t *testing.T) {
	t.Parallel()
	dir := testdataDir(t)

	code, stdout, stderr := run(t, "functions", filepath.Join(dir, "idl", "tutorial.thrift"))
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, `SharedService: SharedStruct getStruct(1: i32 key)
Calculator: void ping()
Calculator: i32 add(1: i32 num1, 2: i32 num2)
Calculator: i32 calculate(1: i32 logid, 2: Work w) throws (1: InvalidOperation ouch)
Calculator: oneway void zip()
`, stdout)
}

func TestSchema(t *testing.T) {
	t.Parallel()
	dir := testdataDir(t)

	code, stdout, stderr := run(t, "schema", filepath.Join(dir, "idl", "containers.thrift"))
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "typedef list<Color> Palette\n")
	assert.Contains(t, stdout, "typedef list<Color> Swatch\n")
	assert.Contains(t, stdout, "enum Color {\n\tRED = 0\n\tGREEN = 1\n\tBLUE = 10\n\tVIOLET = 11\n}\n")
	assert.Contains(t, stdout, "union Value {\n\t1: i64 number\n\t2: string text\n}\n")
	assert.Contains(t, stdout, "service Store {\n")
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()
	dir := testdataDir(t)

	code, stdout, stderr := run(t, "schema", filepath.Join(dir, "idl", "errors", "type_not_found.thrift"))
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "E3005: ")
	assert.Contains(t, stderr, "type_not_found.thrift:2: Type name 'Missing' not found")

	code, _, stderr = run(t, "functions", filepath.Join(dir, "idl", "missing.thrift"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "E3000: ")
}

func TestIncludeDirFlag(t *testing.T) {
	t.Parallel()
	dir := testdataDir(t)
	appDir := filepath.Join(dir, "app")
	require.NoError(t, os.Mkdir(appDir, 0o755))
	mainPath := filepath.Join(appDir, "main.thrift")
	require.NoError(t, os.WriteFile(mainPath, []byte(
		"include \"shared.thrift\"\n\nservice Main {\n  shared.SharedStruct lookup(1: i32 key)\n}\n",
	), 0o644))

	code, _, stderr := run(t, "functions", mainPath)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "E3001: ")

	code, stdout, stderr := run(t, "-I", filepath.Join(dir, "idl"), "functions", mainPath)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t,
		"SharedService: SharedStruct getStruct(1: i32 key)\nMain: SharedStruct lookup(1: i32 key)\n",
		stdout,
	)
}

func TestDecodeText(t *testing.T) {
	t.Parallel()
	dir := testdataDir(t)

	code, stdout, stderr := run(t,
		"decode",
		filepath.Join(dir, "idl", "tutorial.thrift"),
		filepath.Join(dir, "messages", "calculator.yaml"),
	)
	require.Equal(t, 0, code, stderr)
	testutil.ExpectNoDiff(t, `# calculate call seqid=7
logid = 42
w = Work {
	num1 = 6
	num2 = 7
	op = "MULTIPLY"
	comment = unset
}
# calculate reply seqid=7
42
# calculate reply seqid=8
exception InvalidOperation {
	whatOp = 4
	why = "Cannot divide by 0"
}
# add call seqid=9 (undecoded)
fields {
	1 = 1
}
# ping reply seqid=10 (undecoded)
fields {
}
`, stdout)
	assert.Contains(t, stderr, "Returning undecoded message fields")
}

func TestDecodeStrict(t *testing.T) {
	t.Parallel()
	dir := testdataDir(t)

	code, _, stderr := run(t,
		"decode", "--strict", "--jobs", "4",
		filepath.Join(dir, "idl", "tutorial.thrift"),
		filepath.Join(dir, "messages", "calculator.yaml"),
	)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "add (seqid 9): ")
	assert.Contains(t, stderr, "ping (seqid 10): ")
	assert.NotContains(t, stderr, "calculate (seqid")
}

func TestDecodeYAML(t *testing.T) {
	t.Parallel()
	dir := testdataDir(t)
	cfgPath := filepath.Join(dir, "config.yaml")
	writeConfig(t, cfgPath, &config{LogLevel: "error", Format: "yaml", Jobs: 2})

	code, stdout, stderr := run(t,
		"--config", cfgPath,
		"decode",
		filepath.Join(dir, "idl", "containers.thrift"),
		filepath.Join(dir, "messages", "store.yaml"),
		filepath.Join(dir, "messages", "calculator.yaml"),
	)
	require.Equal(t, 0, code, stderr)
	assert.Empty(t, stderr)

	dec := yaml.NewDecoder(strings.NewReader(stdout))
	var docs []map[string]any
	for {
		var doc map[string]any
		if err := dec.Decode(&doc); err != nil {
			break
		}
		docs = append(docs, doc)
	}
	require.Len(t, docs, 6)
	assert.Equal(t, "get", docs[0]["name"])
	assert.Equal(t, true, docs[0]["decoded"])
	for _, doc := range docs[1:] {
		assert.Equal(t, false, doc["decoded"])
		assert.Contains(t, doc["error"], "no function named")
	}
}

func TestUsageErrors(t *testing.T) {
	t.Parallel()
	dir := testdataDir(t)
	idlPath := filepath.Join(dir, "idl", "tutorial.thrift")
	msgPath := filepath.Join(dir, "messages", "calculator.yaml")

	tests := []struct {
		name   string
		args   []string
		stderr string
	}{
		{name: "no command", args: []string{}, stderr: "Usage:"},
		{name: "unknown command", args: []string{"encode"}, stderr: `unknown command "encode"`},
		{name: "missing args", args: []string{"decode", idlPath}, stderr: "requires at least 2 arg(s)"},
		{name: "bad format", args: []string{"decode", "-f", "json", idlPath, msgPath}, stderr: `unsupported output format "json"`},
		{name: "bad log level", args: []string{"--log-level", "loud", "functions", idlPath}, stderr: `unsupported log level "loud"`},
		{name: "missing config", args: []string{"--config", filepath.Join(dir, "nope.yaml"), "functions", idlPath}, stderr: "open config"},
		{name: "missing messages", args: []string{"decode", idlPath, filepath.Join(dir, "nope.yaml")}, stderr: "open messages"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := run(t, tt.args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr, tt.stderr)
		})
	}
}

func TestDebugLogging(t *testing.T) {
	t.Parallel()
	dir := testdataDir(t)

	code, _, stderr := run(t, "--log-level", "debug", "functions", filepath.Join(dir, "idl", "tutorial.thrift"))
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stderr, "Loading IDL file")
	assert.Contains(t, stderr, "Compiled IDL catalog")
}
