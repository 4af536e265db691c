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

package compiler

import (
	"io/fs"
	"path"

	"go.uber.org/zap"

	"github.com/bancek/thrift-tools/idl/syntax"
)

type fileState uint8

const (
	fileLoading fileState = iota + 1
	fileLoaded
)

// loadInclude resolves node relative to the including file, then against
// each include dir in order.
func (c *compiler) loadInclude(fromFile string, node *syntax.Include) {
	candidates := make([]string, 0, 1+len(c.opts.includeDirs))
	candidates = append(candidates, path.Join(path.Dir(fromFile), node.Path))
	for _, dir := range c.opts.includeDirs {
		candidates = append(candidates, path.Join(dir, node.Path))
	}

	for _, candidate := range candidates {
		if !fs.ValidPath(candidate) {
			continue
		}
		if _, err := fs.Stat(c.fsys, candidate); err != nil {
			continue
		}
		c.loadFile(candidate, node, fromFile)
		return
	}
	c.err(errIncludeNotFound(fromFile, node))
}

// loadFile compiles filePath and its includes depth-first. A file already
// loaded through another include path is skipped.
func (c *compiler) loadFile(filePath string, from *syntax.Include, fromFile string) {
	switch c.files[filePath] {
	case fileLoaded:
		c.log.Debug(
			"Skipping IDL file already loaded",
			zap.String("file", filePath),
			zap.String("included_from", fromFile),
		)
		return
	case fileLoading:
		chain := append(append([]string{}, c.stack...), filePath)
		c.err(errIncludeCycle(fromFile, from, chain))
		return
	}

	c.log.Debug(
		"Loading IDL file",
		zap.String("file", filePath),
		zap.String("included_from", fromFile),
	)
	c.files[filePath] = fileLoading
	c.stack = append(c.stack, filePath)
	defer func() {
		c.stack = c.stack[:len(c.stack)-1]
		c.files[filePath] = fileLoaded
	}()

	src, err := fs.ReadFile(c.fsys, filePath)
	if err != nil {
		c.err(errSourceUnreadable(filePath, err))
		return
	}
	file, err := syntax.Parse(src)
	if err != nil {
		c.err(errParse(filePath, err))
		return
	}

	seen := make(map[string]struct{}, len(file.Includes))
	includes := file.Includes[:0:0]
	for _, include := range file.Includes {
		if _, dup := seen[include.Path]; dup {
			c.warn(warnDuplicateInclude(filePath, include))
			continue
		}
		seen[include.Path] = struct{}{}
		includes = append(includes, include)
	}
	file.Includes = includes

	c.compileParsed(filePath, file)
}
