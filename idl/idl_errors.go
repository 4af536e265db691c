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

package idl

import (
	"fmt"
	"strings"
)

const (
	CodeUnknownEnumTag       uint32 = 5001
	CodeWrongShape           uint32 = 5002
	CodeMissingArgument      uint32 = 5003
	CodeUnknownReplyTag      uint32 = 5004
	CodeEmptyReply           uint32 = 5005
	CodeApplicationException uint32 = 5006
	CodeUnsupportedMessage   uint32 = 5007
)

type DecodeError struct {
	code    uint32
	message string
	path    string
}

var _ error = (*DecodeError)(nil)

func (err *DecodeError) Error() string {
	if err.path == "" {
		return fmt.Sprintf("E%d: %s", err.code, err.message)
	}
	return fmt.Sprintf("E%d: %s: %s", err.code, err.path, err.message)
}

func (err *DecodeError) Code() uint32 {
	return err.code
}

func (err *DecodeError) Message() string {
	return err.message
}

// Path is the dotted location of the failing value, e.g. "calculate.w.op".
func (err *DecodeError) Path() string {
	return err.path
}

func joinPath(path []string) string {
	return strings.Join(path, ".")
}

func errUnknownEnumTag(enum *Enum, raw any, path []string) error {
	return &DecodeError{
		code:    CodeUnknownEnumTag,
		message: fmt.Sprintf("Unknown tag %v for enum '%s'", raw, enum.Name()),
		path:    joinPath(path),
	}
}

func errWrongShape(t Type, want string, raw any, path []string) error {
	return &DecodeError{
		code: CodeWrongShape,
		message: fmt.Sprintf(
			"Expected %s for %s '%s', got %T",
			want, t.Kind(), t, raw,
		),
		path: joinPath(path),
	}
}

func errMissingArgument(fn *Function, arg *Field) error {
	return &DecodeError{
		code: CodeMissingArgument,
		message: fmt.Sprintf(
			"Call to '%s' is missing argument '%s' (tag %d)",
			fn.Name, arg.Name, arg.Tag,
		),
		path: fn.Name,
	}
}

func errUnknownReplyTag(fn *Function, tag int16) error {
	return &DecodeError{
		code: CodeUnknownReplyTag,
		message: fmt.Sprintf(
			"Reply tag %d of '%s' matches neither the return value nor a declared exception",
			tag, fn.Name,
		),
		path: fn.Name,
	}
}

func errEmptyReply(fn *Function) error {
	return &DecodeError{
		code:    CodeEmptyReply,
		message: fmt.Sprintf("Reply to '%s' carries no values", fn.Name),
		path:    fn.Name,
	}
}

func errApplicationException(fn *Function) error {
	return &DecodeError{
		code:    CodeApplicationException,
		message: fmt.Sprintf("Call to '%s' failed with an application exception", fn.Name),
		path:    fn.Name,
	}
}

func errUnsupportedMessage(fn *Function, msgType MessageType) error {
	return &DecodeError{
		code:    CodeUnsupportedMessage,
		message: fmt.Sprintf("Unsupported message type %s", msgType),
		path:    fn.Name,
	}
}
