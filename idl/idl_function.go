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
	"strings"

	"go.uber.org/zap"
)

// Function is a resolved service method. Every argument is required; a nil
// Returns means the method is void.
type Function struct {
	Name    string
	Service string
	Args    []*Field
	Returns Type
	Throws  []*Field
	Oneway  bool

	log *zap.Logger
}

func (fn *Function) IsVoid() bool {
	return fn.Returns == nil
}

func (fn *Function) Throw(tag int16) *Field {
	for _, throw := range fn.Throws {
		if throw.Tag == tag {
			return throw
		}
	}
	return nil
}

func (fn *Function) String() string {
	var buf strings.Builder
	if fn.Oneway {
		buf.WriteString("oneway ")
	}
	buf.WriteString(typeString(fn.Returns))
	buf.WriteString(" ")
	buf.WriteString(fn.Name)
	buf.WriteString("(")
	writeFieldList(&buf, fn.Args)
	buf.WriteString(")")
	if len(fn.Throws) > 0 {
		buf.WriteString(" throws (")
		writeFieldList(&buf, fn.Throws)
		buf.WriteString(")")
	}
	return buf.String()
}

func (fn *Function) logger() *zap.Logger {
	if fn.log == nil {
		return zap.NewNop()
	}
	return fn.log
}

// DecodeMessage correlates msg with fn.
//
// A call (or oneway) message decodes to a []NamedValue holding every
// argument in declaration order. For a reply only the first field is
// examined: tag 0 is the return value, decoded through Returns, and any
// other tag must name a declared exception. An empty reply is an error, as
// is an application exception message.
func (fn *Function) DecodeMessage(msg *Message) (any, error) {
	switch msg.Type {
	case MessageCall, MessageOneway:
		return fn.decodeCall(msg)
	case MessageReply:
		return fn.decodeReply(msg)
	case MessageException:
		return nil, errApplicationException(fn)
	default:
		return nil, errUnsupportedMessage(fn, msg.Type)
	}
}

// GetArgs is DecodeMessage with the errors shielded: any decode failure is
// logged and msg.Fields is returned as-is. It never fails, so callers must
// tell a decoded value from a []FieldValue by its type.
func (fn *Function) GetArgs(msg *Message) any {
	if msg == nil {
		return nil
	}
	value, err := fn.DecodeMessage(msg)
	if err != nil {
		fn.logger().Warn(
			"Returning undecoded message fields",
			zap.String("function", fn.Name),
			zap.Stringer("message_type", msg.Type),
			zap.Int32("seqid", msg.SeqID),
			zap.Error(err),
		)
		return msg.Fields
	}
	return value
}

func (fn *Function) decodeCall(msg *Message) (any, error) {
	byTag := make(map[int16]int, len(msg.Fields))
	for ii, field := range msg.Fields {
		byTag[field.Tag] = ii
	}

	d := decoder{path: []string{fn.Name}}
	args := make([]NamedValue, 0, len(fn.Args))
	for _, arg := range fn.Args {
		idx, ok := byTag[arg.Tag]
		if !ok {
			return nil, errMissingArgument(fn, arg)
		}
		d.push(arg.Name)
		value, err := d.decode(arg.Type, msg.Fields[idx].Value)
		d.pop()
		if err != nil {
			return nil, err
		}
		args = append(args, NamedValue{arg.Name, value})
	}
	return args, nil
}

func (fn *Function) decodeReply(msg *Message) (any, error) {
	if len(msg.Fields) == 0 {
		return nil, errEmptyReply(fn)
	}
	first := msg.Fields[0]
	d := decoder{path: []string{fn.Name}}
	if first.Tag == SuccessTag {
		return d.decode(fn.Returns, first.Value)
	}
	throw := fn.Throw(first.Tag)
	if throw == nil {
		return nil, errUnknownReplyTag(fn, first.Tag)
	}
	d.push(throw.Name)
	return d.decode(throw.Type, first.Value)
}
