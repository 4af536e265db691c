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

package idl_test

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bancek/thrift-tools/idl"
	"github.com/bancek/thrift-tools/internal/testutil"
)

// newAddCatalog builds:
//
//	exception Err { 1: string message }
//	service S { i32 add(1: i32 a, 2: i32 b) throws (1: Err e) }
func newAddCatalog(log *zap.Logger) (*idl.Catalog, *idl.Function) {
	errType := idl.NewException("Err", &idl.Field{Tag: 1, Name: "message", Type: stringType})
	add := &idl.Function{
		Name:    "add",
		Service: "S",
		Args: []*idl.Field{
			{Tag: 1, Name: "a", Required: true, Type: i32Type},
			{Tag: 2, Name: "b", Required: true, Type: i32Type},
		},
		Returns: i32Type,
		Throws:  []*idl.Field{{Tag: 1, Name: "e", Type: errType}},
	}
	ping := &idl.Function{Name: "ping", Service: "S"}
	catalog := idl.NewCatalog(
		[]*idl.Function{add, ping},
		map[string]idl.Type{"Err": errType},
		log,
	)
	return catalog, add
}

func TestFunctionString(t *testing.T) {
	t.Parallel()
	catalog, add := newAddCatalog(nil)

	testutil.ExpectEq(t, "i32 add(1: i32 a, 2: i32 b) throws (1: Err e)", add.String())
	testutil.ExpectEq(t, "void ping()", catalog.Function("ping").String())
	testutil.ExpectTrue(t, catalog.Function("ping").IsVoid())
	testutil.ExpectFalse(t, add.IsVoid())
}

func TestGetArgsCall(t *testing.T) {
	t.Parallel()
	_, add := newAddCatalog(nil)

	got := add.GetArgs(&idl.Message{
		Name: "add",
		Type: idl.MessageCall,
		Fields: []idl.FieldValue{
			{Tag: 2, Value: int32(4)},
			{Tag: 1, Value: int32(3)},
		},
	})
	testutil.ExpectDeepEq(t, []idl.NamedValue{
		{Name: "a", Value: int32(3)},
		{Name: "b", Value: int32(4)},
	}, got)
}

func TestGetArgsReply(t *testing.T) {
	t.Parallel()
	_, add := newAddCatalog(nil)

	t.Run("return value", func(t *testing.T) {
		got := add.GetArgs(&idl.Message{
			Name:   "add",
			Type:   idl.MessageReply,
			Fields: []idl.FieldValue{{Tag: 0, Value: int32(7)}},
		})
		testutil.ExpectDeepEq(t, int32(7), got)
	})

	t.Run("declared exception", func(t *testing.T) {
		got := add.GetArgs(&idl.Message{
			Name: "add",
			Type: idl.MessageReply,
			Fields: []idl.FieldValue{{
				Tag:   1,
				Value: []idl.FieldValue{{Tag: 1, Value: "boom"}},
			}},
		})
		testutil.ExpectDeepEq(t, idl.StructValue{
			Name:      "Err",
			Exception: true,
			Fields:    []idl.NamedValue{{Name: "message", Value: "boom"}},
		}, got)
	})

	t.Run("only first field", func(t *testing.T) {
		got := add.GetArgs(&idl.Message{
			Name: "add",
			Type: idl.MessageReply,
			Fields: []idl.FieldValue{
				{Tag: 0, Value: int32(7)},
				{Tag: 5, Value: "ignored"},
			},
		})
		testutil.ExpectDeepEq(t, int32(7), got)
	})
}

func TestDecodeMessageErrors(t *testing.T) {
	t.Parallel()
	catalog, add := newAddCatalog(nil)

	tests := []struct {
		name string
		fn   *idl.Function
		msg  *idl.Message
		code uint32
		path string
	}{
		{
			name: "missing argument",
			fn:   add,
			msg: &idl.Message{
				Type:   idl.MessageCall,
				Fields: []idl.FieldValue{{Tag: 1, Value: int32(3)}},
			},
			code: idl.CodeMissingArgument,
		},
		{
			name: "unknown reply tag",
			fn:   add,
			msg: &idl.Message{
				Type:   idl.MessageReply,
				Fields: []idl.FieldValue{{Tag: 9, Value: int32(3)}},
			},
			code: idl.CodeUnknownReplyTag,
		},
		{
			name: "empty reply",
			fn:   catalog.Function("ping"),
			msg:  &idl.Message{Type: idl.MessageReply},
			code: idl.CodeEmptyReply,
		},
		{
			name: "bad exception shape",
			fn:   add,
			msg: &idl.Message{
				Type:   idl.MessageReply,
				Fields: []idl.FieldValue{{Tag: 1, Value: "boom"}},
			},
			code: idl.CodeWrongShape,
			path: "add.e",
		},
		{
			name: "application exception",
			fn:   add,
			msg:  &idl.Message{Type: idl.MessageException},
			code: idl.CodeApplicationException,
		},
		{
			name: "unsupported type",
			fn:   add,
			msg:  &idl.Message{Type: idl.MessageType(9)},
			code: idl.CodeUnsupportedMessage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := tt.fn.DecodeMessage(tt.msg)
			testutil.ExpectDeepEq(t, nil, value)
			path := tt.path
			if path == "" {
				path = tt.fn.Name
			}
			expectDecodeError(t, err, tt.code, path)
		})
	}
}

func TestDecodeMessageVoidReply(t *testing.T) {
	t.Parallel()
	catalog, _ := newAddCatalog(nil)

	value, err := catalog.Function("ping").DecodeMessage(&idl.Message{
		Type:   idl.MessageReply,
		Fields: []idl.FieldValue{{Tag: 0}},
	})
	testutil.AssertNoError(t, err)
	testutil.ExpectDeepEq(t, nil, value)
}

func TestGetArgsNeverFails(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.WarnLevel)
	_, add := newAddCatalog(zap.New(core))

	msgs := []*idl.Message{
		{Name: "add", Type: idl.MessageCall, SeqID: 1},
		{Name: "add", Type: idl.MessageReply, SeqID: 2},
		{Name: "add", Type: idl.MessageReply, SeqID: 3, Fields: []idl.FieldValue{{Tag: 4, Value: 1}}},
		{Name: "add", Type: idl.MessageReply, SeqID: 4, Fields: []idl.FieldValue{{Tag: 1, Value: 1}}},
		{Name: "add", Type: idl.MessageException, SeqID: 5, Fields: []idl.FieldValue{{Tag: 1, Value: "x"}}},
	}
	for _, msg := range msgs {
		got := add.GetArgs(msg)
		testutil.ExpectDeepEq(t, msg.Fields, got)
	}

	entries := logs.FilterMessage("Returning undecoded message fields").All()
	testutil.ExpectEq(t, len(msgs), len(entries))
	for ii, entry := range entries {
		testutil.ExpectEq(t, zapcore.WarnLevel, entry.Level)
		fields := entry.ContextMap()
		testutil.ExpectEq[any](t, "add", fields["function"])
		testutil.ExpectEq[any](t, "S", fields["service"])
		testutil.ExpectEq[any](t, msgs[ii].Type.String(), fields["message_type"])
		testutil.ExpectEq[any](t, msgs[ii].SeqID, fields["seqid"])
		_, hasErr := fields["error"]
		testutil.ExpectTrue(t, hasErr)
	}

	testutil.ExpectDeepEq(t, nil, add.GetArgs(nil))
}

func TestCatalog(t *testing.T) {
	t.Parallel()
	catalog, add := newAddCatalog(nil)

	testutil.ExpectEq(t, add, catalog.Function("add"))
	testutil.ExpectEq(t, (*idl.Function)(nil), catalog.Function("missing"))
	testutil.ExpectSliceEq(t, []string{"Err"}, catalog.TypeNames())
	testutil.ExpectEq(t, idl.KindException, catalog.Type("Err").Kind())
	testutil.ExpectEq[idl.Type](t, nil, catalog.Type("Missing"))

	var names []string
	for fn := range catalog.Functions() {
		names = append(names, fn.Name)
	}
	testutil.ExpectSliceEq(t, []string{"add", "ping"}, names)

	t.Run("decode by name", func(t *testing.T) {
		value, ok := catalog.DecodeMessage(&idl.Message{
			Name:   "add",
			Type:   idl.MessageReply,
			Fields: []idl.FieldValue{{Tag: 0, Value: int32(7)}},
		})
		testutil.ExpectTrue(t, ok)
		testutil.ExpectDeepEq(t, int32(7), value)

		raw := []idl.FieldValue{{Tag: 1, Value: int32(3)}}
		value, ok = catalog.DecodeMessage(&idl.Message{Name: "sub", Type: idl.MessageCall, Fields: raw})
		testutil.ExpectFalse(t, ok)
		testutil.ExpectDeepEq(t, raw, value)
	})

	t.Run("later function wins", func(t *testing.T) {
		first := &idl.Function{Name: "run", Service: "A"}
		second := &idl.Function{Name: "run", Service: "B", Oneway: true}
		catalog := idl.NewCatalog([]*idl.Function{first, second}, nil, nil)
		testutil.ExpectEq(t, second, catalog.Function("run"))

		var visible []*idl.Function
		for fn := range catalog.Functions() {
			visible = append(visible, fn)
		}
		testutil.ExpectSliceEq(t, []*idl.Function{second}, visible)
	})
}

func TestParseMessageType(t *testing.T) {
	t.Parallel()

	for _, msgType := range []idl.MessageType{
		idl.MessageCall,
		idl.MessageReply,
		idl.MessageException,
		idl.MessageOneway,
	} {
		parsed, ok := idl.ParseMessageType(msgType.String())
		testutil.ExpectTrue(t, ok)
		testutil.ExpectEq(t, msgType, parsed)
	}
	_, ok := idl.ParseMessageType("notify")
	testutil.ExpectFalse(t, ok)
	testutil.ExpectEq(t, "MessageType(9)", idl.MessageType(9).String())
}
