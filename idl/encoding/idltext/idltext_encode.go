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

// Package idltext renders decoded Thrift values and resolved schemas as
// indented text.
package idltext

import (
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/bancek/thrift-tools/idl"
)

func Encode(value any) string {
	var buf strings.Builder
	EncodeTo(value, &buf)
	return buf.String()
}

// EncodeTo writes one line per scalar. A []idl.NamedValue, as returned for
// a call message, is written as top-level assignments.
func EncodeTo(value any, w io.Writer) error {
	e := encoder{w: w}
	if args, ok := value.([]idl.NamedValue); ok {
		e.visitNamed(args)
		return e.err
	}
	e.visitValue("", value)
	return e.err
}

type encoder struct {
	w      io.Writer
	indent int
	err    error
}

func (e *encoder) line(s string) {
	if e.err != nil {
		return
	}
	if indent := strings.Repeat("\t", e.indent); indent != "" {
		if _, err := io.WriteString(e.w, indent); err != nil {
			e.err = err
			return
		}
	}
	if _, err := io.WriteString(e.w, s); err != nil {
		e.err = err
		return
	}
	if _, err := io.WriteString(e.w, "\n"); err != nil {
		e.err = err
		return
	}
}

func (e *encoder) linef(format string, a ...any) {
	e.line(fmt.Sprintf(format, a...))
}

func (e *encoder) block(open string, body func()) {
	e.line(open)
	e.indent += 1
	body()
	e.indent -= 1
	e.line("}")
}

func (e *encoder) visitNamed(fields []idl.NamedValue) {
	for _, field := range fields {
		if e.err != nil {
			return
		}
		e.visitValue(field.Name+" = ", field.Value)
	}
}

func (e *encoder) visitValue(prefix string, value any) {
	if scalar, ok := fmtScalar(value); ok {
		e.line(prefix + scalar)
		return
	}

	switch value := value.(type) {
	case idl.StructValue:
		open := value.Name + " {"
		if value.Exception {
			open = "exception " + open
		}
		e.block(prefix+open, func() { e.visitNamed(value.Fields) })
	case []idl.NamedValue:
		e.block(prefix+"{", func() { e.visitNamed(value) })
	case idl.SetValue:
		e.block(prefix+"set {", func() {
			for item := range value.All() {
				e.visitValue("", item)
			}
		})
	case idl.MapValue:
		e.block(prefix+"map {", func() {
			for key, item := range value.All() {
				e.visitEntry(key, item)
			}
		})
	case []idl.FieldValue:
		e.block(prefix+"fields {", func() {
			for _, field := range value {
				e.visitValue(fmt.Sprintf("%d = ", field.Tag), field.Value)
			}
		})
	case []idl.Pair:
		e.block(prefix+"pairs {", func() {
			for _, pair := range value {
				e.visitEntry(pair.Key, pair.Value)
			}
		})
	case []any:
		e.visitList(prefix, value)
	default:
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			panic(fmt.Sprintf("idltext: unhandled value %v (%T)", value, value))
		}
		items := make([]any, rv.Len())
		for ii := range items {
			items[ii] = rv.Index(ii).Interface()
		}
		e.visitList(prefix, items)
	}
}

func (e *encoder) visitList(prefix string, items []any) {
	if len(items) == 0 {
		e.line(prefix + "[]")
		return
	}
	e.line(prefix + "[")
	e.indent += 1
	for _, item := range items {
		e.visitValue("", item)
	}
	e.indent -= 1
	e.line("]")
}

func (e *encoder) visitEntry(key, value any) {
	if scalar, ok := fmtScalar(key); ok {
		e.visitValue(scalar+": ", value)
		return
	}
	e.block("entry {", func() {
		e.visitValue("key = ", key)
		e.visitValue("value = ", value)
	})
}

func fmtScalar(value any) (string, bool) {
	switch value := value.(type) {
	case nil:
		return "unset", true
	case bool:
		return strconv.FormatBool(value), true
	case uint8:
		return strconv.FormatUint(uint64(value), 10), true
	case uint16:
		return strconv.FormatUint(uint64(value), 10), true
	case uint32:
		return strconv.FormatUint(uint64(value), 10), true
	case uint64:
		return strconv.FormatUint(value, 10), true
	case uint:
		return strconv.FormatUint(uint64(value), 10), true
	case int8:
		return strconv.FormatInt(int64(value), 10), true
	case int16:
		return strconv.FormatInt(int64(value), 10), true
	case int32:
		return strconv.FormatInt(int64(value), 10), true
	case int64:
		return strconv.FormatInt(value, 10), true
	case int:
		return strconv.Itoa(value), true
	case float32:
		return fmtFloat(float64(value), 32), true
	case float64:
		return fmtFloat(value, 64), true
	case string:
		return quote(value), true
	case []byte:
		var buf strings.Builder
		buf.WriteByte('[')
		for ii, b := range value {
			if ii != 0 {
				buf.WriteString(", ")
			}
			fmt.Fprintf(&buf, "0x%02X", b)
		}
		buf.WriteByte(']')
		return buf.String(), true
	}
	return "", false
}

func fmtFloat(value float64, bitSize int) string {
	switch {
	case math.IsNaN(value):
		return "nan"
	case math.IsInf(value, 1):
		return "inf"
	case math.IsInf(value, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(value, 'g', -1, bitSize)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func quote(text string) string {
	var buf strings.Builder
	buf.WriteByte('"')
	for _, c := range text {
		if c == '\\' || c == '"' {
			buf.WriteByte('\\')
			buf.WriteRune(c)
			continue
		}
		if c == '\t' {
			buf.WriteString("\\t")
			continue
		}
		if c == '\n' {
			buf.WriteString("\\n")
			continue
		}
		if c < 0x20 || c == 0x7F {
			fmt.Fprintf(&buf, "\\x%02X", c)
			continue
		}
		buf.WriteRune(c)
	}
	buf.WriteByte('"')
	return buf.String()
}
