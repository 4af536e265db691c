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
	"errors"
	"fmt"
	"strings"

	"github.com/bancek/thrift-tools/idl/syntax"
)

type Error struct {
	code    uint32
	message string
	file    string
	pos     syntax.Pos
}

var _ error = (*Error)(nil)

func (err *Error) Error() string {
	return fmt.Sprintf("E%d: %s%s", err.code, location(err.file, err.pos), err.message)
}

func (err *Error) Code() uint32 {
	return err.code
}

func (err *Error) Message() string {
	return err.message
}

// File is the path of the source file, relative to the compiler's fs.FS.
func (err *Error) File() string {
	return err.file
}

func (err *Error) Pos() syntax.Pos {
	return err.pos
}

func location(file string, pos syntax.Pos) string {
	switch {
	case file == "" && !pos.IsValid():
		return ""
	case !pos.IsValid():
		return file + ": "
	case file == "":
		return fmt.Sprintf("line %d: ", pos.Line())
	}
	return fmt.Sprintf("%s:%d: ", file, pos.Line())
}

// sourceLine formats a position for use inside a message.
func sourceLine(file string, pos syntax.Pos) string {
	switch {
	case !pos.IsValid():
		return file
	case file == "":
		return fmt.Sprintf("line %d", pos.Line())
	}
	return fmt.Sprintf("%s:%d", file, pos.Line())
}

func errParse(file string, err error) error {
	var syntaxErr *syntax.Error
	if errors.As(err, &syntaxErr) {
		return &Error{
			code:    syntaxErr.Code(),
			message: syntaxErr.Message(),
			file:    file,
			pos:     syntaxErr.Pos(),
		}
	}
	return &Error{
		code:    1000,
		message: err.Error(),
		file:    file,
	}
}

func errSourceUnreadable(file string, cause error) error {
	return &Error{
		code:    3000,
		message: fmt.Sprintf("Unable to read source file: %v", cause),
		file:    file,
	}
}

func errIncludeNotFound(file string, node *syntax.Include) error {
	return &Error{
		code:    3001,
		message: fmt.Sprintf("Included file %q not found", node.Path),
		file:    file,
		pos:     node.Pos(),
	}
}

func errIncludeCycle(file string, node *syntax.Include, chain []string) error {
	return &Error{
		code: 3003,
		message: fmt.Sprintf(
			"Include of %q forms a cycle (%s)",
			node.Path,
			strings.Join(chain, " -> "),
		),
		file: file,
		pos:  node.Pos(),
	}
}

func errTypeNameNotFound(file string, node *syntax.Identifier) error {
	return &Error{
		code:    3005,
		message: fmt.Sprintf("Type name '%s' not found", node.Name),
		file:    file,
		pos:     node.Pos(),
	}
}

func errResolvedDeclNotType(file string, node *syntax.Identifier, got string) error {
	return &Error{
		code:    3006,
		message: fmt.Sprintf("Name '%s' is a %s, not a type", node.Name, got),
		file:    file,
		pos:     node.Pos(),
	}
}

func errTypedefCycle(file string, node *syntax.Typedef) error {
	return &Error{
		code:    3011,
		message: fmt.Sprintf("Typedef '%s' refers to itself", node.Name),
		file:    file,
		pos:     node.Pos(),
	}
}

func errFieldTagConflict(
	file string,
	scope string,
	node *syntax.Field,
	prev *syntax.Field,
) error {
	return &Error{
		code: 3012,
		message: fmt.Sprintf(
			"%s field '%s' has the same tag (%d) as field '%s'",
			scope, node.Name, node.Tag, prev.Name,
		),
		file: file,
		pos:  node.Pos(),
	}
}

func errFieldNameConflict(file string, scope string, node *syntax.Field) error {
	return &Error{
		code:    3013,
		message: fmt.Sprintf("%s field '%s' is declared more than once", scope, node.Name),
		file:    file,
		pos:     node.Pos(),
	}
}

func errFieldTagMissing(file string, scope string, node *syntax.Field) error {
	return &Error{
		code:    3014,
		message: fmt.Sprintf("%s field '%s' has no tag", scope, node.Name),
		file:    file,
		pos:     node.Pos(),
	}
}

func errFieldTagOutOfRange(file string, scope string, node *syntax.Field) error {
	return &Error{
		code: 3014,
		message: fmt.Sprintf(
			"%s field '%s' has tag %d, expected 0 to 32767",
			scope, node.Name, node.Tag,
		),
		file: file,
		pos:  node.Pos(),
	}
}

func errEnumItemValueConflict(
	file string,
	enum string,
	node *syntax.EnumItem,
	value int64,
	prevName string,
) error {
	return &Error{
		code: 3015,
		message: fmt.Sprintf(
			"Enum %s item '%s' has the same value (%d) as item '%s'",
			enum, node.Name, value, prevName,
		),
		file: file,
		pos:  node.Pos(),
	}
}

func errEnumItemNameConflict(file string, enum string, node *syntax.EnumItem) error {
	return &Error{
		code:    3016,
		message: fmt.Sprintf("Enum %s item '%s' is declared more than once", enum, node.Name),
		file:    file,
		pos:     node.Pos(),
	}
}

func errThrowsTagReserved(file string, fn string, node *syntax.Field) error {
	return &Error{
		code: 3017,
		message: fmt.Sprintf(
			"Exception '%s' of function '%s' uses tag 0, which is reserved"+
				" for the return value",
			node.Name, fn,
		),
		file: file,
		pos:  node.Pos(),
	}
}

func errEnumValueOutOfRange(file string, enum string, node *syntax.EnumItem, value int64) error {
	return &Error{
		code:    3018,
		message: fmt.Sprintf("Enum %s item '%s' value %d does not fit in i32", enum, node.Name, value),
		file:    file,
		pos:     node.Pos(),
	}
}
