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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bancek/thrift-tools/idl"
	"github.com/bancek/thrift-tools/idl/compiler"
)

// fsPath converts an OS path to a path within os.DirFS("/").
func fsPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	rel := strings.TrimPrefix(filepath.ToSlash(abs), "/")
	if rel == "" {
		rel = "."
	}
	return rel, nil
}

// compileIDL prints every diagnostic to stderr. The catalog is nil if
// compilation failed.
func (env *cmdEnv) compileIDL(idlPath string) *idl.Catalog {
	rootPath, err := fsPath(idlPath)
	if err != nil {
		fmt.Fprintln(env.stderr, err)
		return nil
	}
	opts := []compiler.CompileOption{compiler.WithLogger(env.log)}
	for _, dir := range env.cfg.IncludeDirs {
		dirPath, err := fsPath(dir)
		if err != nil {
			fmt.Fprintln(env.stderr, err)
			return nil
		}
		opts = append(opts, compiler.WithIncludeDirs(dirPath))
	}

	result := compiler.CompileFile(os.DirFS("/"), rootPath, opts...)
	for _, warn := range result.Warnings {
		fmt.Fprintf(env.stderr, "%v\n", warn)
	}
	for _, err := range result.Errors {
		fmt.Fprintf(env.stderr, "%v\n", err)
	}
	return result.Catalog()
}
