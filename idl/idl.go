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

// Package idl binds resolved Thrift schema types to raw tagged message
// values.
//
// A [Catalog] is produced by the compiler package and is immutable once
// built. [Decode] walks a [Type] against a raw value; [Function.GetArgs]
// correlates a call or reply [Message] with a service method.
package idl

import (
	"math"
	"reflect"
)

// SuccessTag is the reply field tag carrying a function's return value.
const SuccessTag int16 = 0

type Kind uint8

const (
	KindPrimitive Kind = iota
	KindEnum
	KindStruct
	KindUnion
	KindException
	KindList
	KindSet
	KindMap
)

var kindNames = [...]string{
	KindPrimitive: "primitive",
	KindEnum:      "enum",
	KindStruct:    "struct",
	KindUnion:     "union",
	KindException: "exception",
	KindList:      "list",
	KindSet:       "set",
	KindMap:       "map",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

func asInt64(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	}
	return 0, false
}

// asSequence accepts []any directly and any other slice or array through
// reflection. Strings are not sequences.
func asSequence(raw any) ([]any, bool) {
	if values, ok := raw.([]any); ok {
		return values, true
	}
	if raw == nil {
		return nil, false
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
	default:
		return nil, false
	}
	values := make([]any, rv.Len())
	for ii := range values {
		values[ii] = rv.Index(ii).Interface()
	}
	return values, true
}
