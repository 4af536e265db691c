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

// Type is one of *Primitive, *Enum, *Struct, *List, *Set or *Map.
type Type interface {
	Kind() Kind
	String() string

	isType()
}

// Primitive {{{

// Primitive values are passed through the decoder unchanged.
type Primitive struct {
	Name string
}

func NewPrimitive(name string) *Primitive {
	return &Primitive{Name: name}
}

func (*Primitive) Kind() Kind       { return KindPrimitive }
func (t *Primitive) String() string { return t.Name }
func (*Primitive) isType()          {}

// }}}

// Enum {{{

type EnumItem struct {
	Label string
	Tag   int32
}

type Enum struct {
	name   string
	items  []EnumItem
	labels map[int32]string
	tags   map[string]int32
}

// NewEnum fails if two items share a label or a tag.
func NewEnum(name string, items []EnumItem) (*Enum, error) {
	e := &Enum{
		name:   name,
		items:  items,
		labels: make(map[int32]string, len(items)),
		tags:   make(map[string]int32, len(items)),
	}
	for _, item := range items {
		if prev, conflict := e.labels[item.Tag]; conflict {
			return nil, fmt.Errorf(
				"enum %s: labels '%s' and '%s' share tag %d",
				name, prev, item.Label, item.Tag,
			)
		}
		if _, conflict := e.tags[item.Label]; conflict {
			return nil, fmt.Errorf(
				"enum %s: duplicate label '%s'",
				name, item.Label,
			)
		}
		e.labels[item.Tag] = item.Label
		e.tags[item.Label] = item.Tag
	}
	return e, nil
}

func (*Enum) Kind() Kind       { return KindEnum }
func (e *Enum) String() string { return e.name }
func (*Enum) isType()          {}

func (e *Enum) Name() string {
	return e.name
}

func (e *Enum) Items() []EnumItem {
	return e.items
}

func (e *Enum) Label(tag int32) (string, bool) {
	label, ok := e.labels[tag]
	return label, ok
}

func (e *Enum) Tag(label string) (int32, bool) {
	tag, ok := e.tags[label]
	return tag, ok
}

// }}}

// Struct {{{

type Field struct {
	Tag      int16
	Name     string
	Required bool
	Type     Type
}

func (f *Field) String() string {
	return fmt.Sprintf("%d: %s %s", f.Tag, f.Type, f.Name)
}

// Struct is a struct, union or exception. Fields are kept in declaration
// order; tags are unique within one Struct.
type Struct struct {
	Name   string
	Fields []*Field
	kind   Kind
}

func NewStruct(name string, fields ...*Field) *Struct {
	return &Struct{Name: name, Fields: fields, kind: KindStruct}
}

func NewUnion(name string, fields ...*Field) *Struct {
	return &Struct{Name: name, Fields: fields, kind: KindUnion}
}

func NewException(name string, fields ...*Field) *Struct {
	return &Struct{Name: name, Fields: fields, kind: KindException}
}

func (t *Struct) Kind() Kind {
	if t.kind == KindPrimitive {
		return KindStruct
	}
	return t.kind
}

func (t *Struct) String() string { return t.Name }
func (*Struct) isType()          {}

func (t *Struct) IsException() bool {
	return t.kind == KindException
}

func (t *Struct) Field(tag int16) *Field {
	for _, field := range t.Fields {
		if field.Tag == tag {
			return field
		}
	}
	return nil
}

// }}}

// Containers {{{

type List struct {
	Elem Type
}

func ListOf(elem Type) *List {
	return &List{Elem: elem}
}

func (*List) Kind() Kind       { return KindList }
func (t *List) String() string { return fmt.Sprintf("list<%s>", typeString(t.Elem)) }
func (*List) isType()          {}

type Set struct {
	Elem Type
}

func SetOf(elem Type) *Set {
	return &Set{Elem: elem}
}

func (*Set) Kind() Kind       { return KindSet }
func (t *Set) String() string { return fmt.Sprintf("set<%s>", typeString(t.Elem)) }
func (*Set) isType()          {}

type Map struct {
	Key   Type
	Value Type
}

func MapOf(key, value Type) *Map {
	return &Map{Key: key, Value: value}
}

func (*Map) Kind() Kind { return KindMap }
func (*Map) isType()    {}

func (t *Map) String() string {
	return fmt.Sprintf("map<%s, %s>", typeString(t.Key), typeString(t.Value))
}

// }}}

func typeString(t Type) string {
	if t == nil {
		return "void"
	}
	return t.String()
}

func writeFieldList(buf *strings.Builder, fields []*Field) {
	for ii, field := range fields {
		if ii > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(field.String())
	}
}
