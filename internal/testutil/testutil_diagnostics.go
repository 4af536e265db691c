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

package testutil

import (
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type Diagnostic struct {
	Key     string
	Code    uint32
	Pattern *regexp.Regexp
}

type Diagnostics struct {
	Errors   map[string]*Diagnostic
	Warnings map[string]*Diagnostic
}

// LoadDiagnostics reads diagnostics.yaml. Codes must be unique across
// errors and warnings; keys starting with "_" reserve a code without
// defining a diagnostic.
func LoadDiagnostics(testdata fs.FS) (*Diagnostics, error) {
	type raw struct {
		Code    uint32 `yaml:"code"`
		Pattern string `yaml:"message_pattern"`
	}
	type rawFile struct {
		Errors   map[string]raw `yaml:"errors"`
		Warnings map[string]raw `yaml:"warnings"`
	}

	yamlData, err := fs.ReadFile(testdata, "diagnostics.yaml")
	if err != nil {
		return nil, err
	}
	var file rawFile
	if err := yaml.Unmarshal(yamlData, &file); err != nil {
		return nil, err
	}

	codes := make(map[uint32]string)
	load := func(kind string, rawDiags map[string]raw) (map[string]*Diagnostic, error) {
		out := make(map[string]*Diagnostic, len(rawDiags))
		for key, raw := range rawDiags {
			if raw.Code == 0 {
				return nil, fmt.Errorf("%s %q has no code", kind, key)
			}
			if prev, conflict := codes[raw.Code]; conflict {
				return nil, fmt.Errorf("%s %q reuses code %d of %q", kind, key, raw.Code, prev)
			}
			codes[raw.Code] = key
			if strings.HasPrefix(key, "_") {
				continue
			}

			var pattern *regexp.Regexp
			if raw.Pattern != "" {
				pattern, err = regexp.Compile("(?i)" + raw.Pattern)
				if err != nil {
					return nil, err
				}
			}
			out[key] = &Diagnostic{
				Key:     key,
				Code:    raw.Code,
				Pattern: pattern,
			}
		}
		return out, nil
	}

	diags := &Diagnostics{}
	if diags.Errors, err = load("error", file.Errors); err != nil {
		return nil, err
	}
	if diags.Warnings, err = load("warning", file.Warnings); err != nil {
		return nil, err
	}
	return diags, nil
}

// Reported is implemented by compiler errors and warnings.
type Reported interface {
	Code() uint32
	Message() string
}

func ExpectDiagnostic(t *testing.T, want *Diagnostic, got Reported) {
	t.Helper()
	if want == nil {
		t.Fatal("Expected diagnostic is not defined in diagnostics.yaml")
	}
	if got.Code() != want.Code {
		t.Errorf("%s: expected code %d, got %d (%s)", want.Key, want.Code, got.Code(), got.Message())
		return
	}
	if want.Pattern != nil && !want.Pattern.MatchString(got.Message()) {
		t.Errorf("%s: expected (match %q), got: %q", want.Key, want.Pattern, got.Message())
	}
}
