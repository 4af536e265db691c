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
	"encoding/hex"
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

type NamedValue struct {
	Name  string
	Value any
}

// StructValue is a decoded struct, union or exception. Fields holds one
// entry per declared field, in declaration order; absent fields have a nil
// Value.
type StructValue struct {
	Name      string
	Exception bool
	Fields    []NamedValue
}

func (v StructValue) Get(name string) (any, bool) {
	for _, field := range v.Fields {
		if field.Name == name {
			return field.Value, true
		}
	}
	return nil, false
}

// SetValue {{{

// SetValue holds distinct decoded values in first-seen order.
type SetValue struct {
	items []any
	index valueIndex
}

func NewSetValue(items ...any) SetValue {
	var s SetValue
	for _, item := range items {
		s.add(item)
	}
	return s
}

func (s *SetValue) add(item any) bool {
	if _, added := s.index.insert(Key(item)); !added {
		return false
	}
	s.items = append(s.items, item)
	return true
}

func (s SetValue) Len() int {
	return len(s.items)
}

func (s SetValue) Items() []any {
	return slices.Clone(s.items)
}

func (s SetValue) All() iter.Seq[any] {
	return slices.Values(s.items)
}

func (s SetValue) Contains(item any) bool {
	_, ok := s.index.find(Key(item))
	return ok
}

// }}}

// MapValue {{{

type MapEntry struct {
	Key   any
	Value any
}

// MapValue keeps entries in first-insertion order. Setting an existing key
// replaces its value in place.
type MapValue struct {
	entries []MapEntry
	index   valueIndex
}

func NewMapValue(entries ...MapEntry) MapValue {
	var m MapValue
	for _, entry := range entries {
		m.set(entry.Key, entry.Value)
	}
	return m
}

func (m *MapValue) set(key, value any) {
	idx, added := m.index.insert(Key(key))
	if !added {
		m.entries[idx].Value = value
		return
	}
	m.entries = append(m.entries, MapEntry{key, value})
}

func (m MapValue) Len() int {
	return len(m.entries)
}

func (m MapValue) Entries() []MapEntry {
	return slices.Clone(m.entries)
}

func (m MapValue) All() iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		for _, entry := range m.entries {
			if !yield(entry.Key, entry.Value) {
				return
			}
		}
	}
}

func (m MapValue) Get(key any) (any, bool) {
	if idx, ok := m.index.find(Key(key)); ok {
		return m.entries[idx].Value, true
	}
	return nil, false
}

// }}}

// valueIndex maps canonical value keys to insertion positions, bucketed by
// the xxhash of the key.
type valueIndex struct {
	keys    []string
	buckets map[uint64][]int
}

func (ix *valueIndex) find(key string) (int, bool) {
	for _, idx := range ix.buckets[xxhash.Sum64String(key)] {
		if ix.keys[idx] == key {
			return idx, true
		}
	}
	return 0, false
}

func (ix *valueIndex) insert(key string) (int, bool) {
	if idx, ok := ix.find(key); ok {
		return idx, false
	}
	if ix.buckets == nil {
		ix.buckets = make(map[uint64][]int)
	}
	idx := len(ix.keys)
	ix.keys = append(ix.keys, key)
	hash := xxhash.Sum64String(key)
	ix.buckets[hash] = append(ix.buckets[hash], idx)
	return idx, true
}

// Equal reports whether two decoded (or raw) values have the same identity
// under set and map semantics. Integers compare by value regardless of
// their Go type, as do floats. An integer never equals a float, so 1 and
// 1.0 are distinct; -0.0 and 0.0 are the same value.
func Equal(a, b any) bool {
	return Key(a) == Key(b)
}

// Key returns the canonical identity of a value. Sets and maps are keyed
// independently of their entry order.
func Key(v any) string {
	var buf strings.Builder
	writeKey(&buf, v)
	return buf.String()
}

func writeKey(buf *strings.Builder, v any) {
	if n, ok := asInt64(v); ok {
		buf.WriteString("i:")
		buf.WriteString(strconv.FormatInt(n, 10))
		return
	}
	switch v := v.(type) {
	case nil:
		buf.WriteString("nil")
	case bool:
		buf.WriteString("b:")
		buf.WriteString(strconv.FormatBool(v))
	case uint:
		fmt.Fprintf(buf, "u:%d", v)
	case uint64:
		fmt.Fprintf(buf, "u:%d", v)
	case float32:
		writeFloatKey(buf, float64(v))
	case float64:
		writeFloatKey(buf, v)
	case string:
		buf.WriteString("s:")
		buf.WriteString(strconv.Quote(v))
	case []byte:
		buf.WriteString("x:")
		buf.WriteString(hex.EncodeToString(v))
	case StructValue:
		buf.WriteString("struct:")
		buf.WriteString(v.Name)
		buf.WriteString("{")
		for ii, field := range v.Fields {
			if ii > 0 {
				buf.WriteString(",")
			}
			buf.WriteString(field.Name)
			buf.WriteString("=")
			writeKey(buf, field.Value)
		}
		buf.WriteString("}")
	case []NamedValue:
		buf.WriteString("args(")
		for ii, field := range v {
			if ii > 0 {
				buf.WriteString(",")
			}
			buf.WriteString(field.Name)
			buf.WriteString("=")
			writeKey(buf, field.Value)
		}
		buf.WriteString(")")
	case SetValue:
		buf.WriteString("set[")
		buf.WriteString(strings.Join(sortedKeys(v.index.keys), ","))
		buf.WriteString("]")
	case MapValue:
		keys := make([]string, 0, len(v.entries))
		for ii, entry := range v.entries {
			keys = append(keys, v.index.keys[ii]+":"+Key(entry.Value))
		}
		buf.WriteString("map[")
		buf.WriteString(strings.Join(sortedKeys(keys), ","))
		buf.WriteString("]")
	case []FieldValue:
		buf.WriteString("fields[")
		for ii, field := range v {
			if ii > 0 {
				buf.WriteString(",")
			}
			fmt.Fprintf(buf, "%d=", field.Tag)
			writeKey(buf, field.Value)
		}
		buf.WriteString("]")
	case []Pair:
		buf.WriteString("pairs[")
		for ii, pair := range v {
			if ii > 0 {
				buf.WriteString(",")
			}
			writeKey(buf, pair.Key)
			buf.WriteString(":")
			writeKey(buf, pair.Value)
		}
		buf.WriteString("]")
	default:
		if values, ok := asSequence(v); ok {
			buf.WriteString("list[")
			for ii, value := range values {
				if ii > 0 {
					buf.WriteString(",")
				}
				writeKey(buf, value)
			}
			buf.WriteString("]")
			return
		}
		fmt.Fprintf(buf, "%T:%v", v, v)
	}
}

func writeFloatKey(buf *strings.Builder, v float64) {
	if v == 0 {
		v = 0
	}
	buf.WriteString("f:")
	buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
}

func sortedKeys(keys []string) []string {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	return sorted
}
