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
	"fmt"

	"github.com/bancek/thrift-tools/idl/syntax"
)

type Warning struct {
	code    uint32
	message string
	file    string
	pos     syntax.Pos
}

func (w *Warning) String() string {
	return fmt.Sprintf("W%d: %s%s", w.code, location(w.file, w.pos), w.message)
}

func (w *Warning) Code() uint32 {
	return w.code
}

func (w *Warning) Message() string {
	return w.message
}

func (w *Warning) File() string {
	return w.file
}

func (w *Warning) Pos() syntax.Pos {
	return w.pos
}

func warnDeclRedeclared(file string, node syntax.Decl, prevLoc string) *Warning {
	return &Warning{
		code: 4001,
		message: fmt.Sprintf(
			"Declaration of '%s' replaces an earlier declaration in %s",
			node.DeclName(), prevLoc,
		),
		file: file,
		pos:  node.Pos(),
	}
}

func warnFunctionRedeclared(
	file string,
	node *syntax.Function,
	service string,
	prevService string,
) *Warning {
	return &Warning{
		code: 4002,
		message: fmt.Sprintf(
			"Function '%s' of service '%s' replaces function '%s' of service '%s'",
			node.Name, service, node.Name, prevService,
		),
		file: file,
		pos:  node.Pos(),
	}
}

func warnDuplicateInclude(file string, node *syntax.Include) *Warning {
	return &Warning{
		code:    4003,
		message: fmt.Sprintf("Duplicate include of %q", node.Path),
		file:    file,
		pos:     node.Pos(),
	}
}
