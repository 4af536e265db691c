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
	"math"
)

// Decode walks t against a raw value.
//
//   - Primitive (or nil, for void): raw is returned unchanged.
//   - Enum: raw is an integer tag; the result is its label.
//   - Struct: raw is a []FieldValue; the result is a StructValue with one
//     entry per declared field, in declaration order.
//   - List: raw is a sequence; the result is a []any of the same length.
//   - Set: raw is a sequence; the result is a SetValue of distinct values.
//   - Map: raw is a []Pair; the result is a MapValue where a later pair
//     overwrites an earlier pair with an equal key.
//
// Decode never checks primitive values against their declared type.
func Decode(t Type, raw any) (any, error) {
	d := decoder{}
	return d.decode(t, raw)
}

type decoder struct {
	path []string
}

func (d *decoder) push(elem string) {
	d.path = append(d.path, elem)
}

func (d *decoder) pop() {
	d.path = d.path[:len(d.path)-1]
}

func (d *decoder) decode(t Type, raw any) (any, error) {
	switch t := t.(type) {
	case nil, *Primitive:
		return raw, nil
	case *Enum:
		return d.decodeEnum(t, raw)
	case *Struct:
		return d.decodeStruct(t, raw)
	case *List:
		return d.decodeList(t, raw)
	case *Set:
		return d.decodeSet(t, raw)
	case *Map:
		return d.decodeMap(t, raw)
	default:
		panic(fmt.Sprintf("idl.Decode: unhandled type %T", t))
	}
}

func (d *decoder) decodeEnum(t *Enum, raw any) (any, error) {
	tag, ok := asInt64(raw)
	if !ok {
		return nil, errWrongShape(t, "an integer tag", raw, d.path)
	}
	if tag < math.MinInt32 || tag > math.MaxInt32 {
		return nil, errUnknownEnumTag(t, raw, d.path)
	}
	label, ok := t.Label(int32(tag))
	if !ok {
		return nil, errUnknownEnumTag(t, raw, d.path)
	}
	return label, nil
}

func (d *decoder) decodeStruct(t *Struct, raw any) (any, error) {
	fields, ok := raw.([]FieldValue)
	if !ok && raw != nil {
		return nil, errWrongShape(t, "tagged fields", raw, d.path)
	}

	// Later duplicates of a tag win.
	byTag := make(map[int16]int, len(fields))
	for ii, field := range fields {
		byTag[field.Tag] = ii
	}

	out := StructValue{
		Name:      t.Name,
		Exception: t.IsException(),
		Fields:    make([]NamedValue, 0, len(t.Fields)),
	}
	for _, field := range t.Fields {
		var value any
		if idx, present := byTag[field.Tag]; present {
			d.push(field.Name)
			decoded, err := d.decode(field.Type, fields[idx].Value)
			d.pop()
			if err != nil {
				return nil, err
			}
			value = decoded
		}
		out.Fields = append(out.Fields, NamedValue{field.Name, value})
	}
	return out, nil
}

func (d *decoder) decodeList(t *List, raw any) (any, error) {
	values, ok := asSequence(raw)
	if !ok {
		return nil, errWrongShape(t, "a sequence", raw, d.path)
	}
	out := make([]any, 0, len(values))
	for ii, value := range values {
		d.push(fmt.Sprintf("[%d]", ii))
		decoded, err := d.decode(t.Elem, value)
		d.pop()
		if err != nil {
			return nil, err
		}
		out = append(out, decoded)
	}
	return out, nil
}

func (d *decoder) decodeSet(t *Set, raw any) (any, error) {
	values, ok := asSequence(raw)
	if !ok {
		return nil, errWrongShape(t, "a sequence", raw, d.path)
	}
	var out SetValue
	for ii, value := range values {
		d.push(fmt.Sprintf("[%d]", ii))
		decoded, err := d.decode(t.Elem, value)
		d.pop()
		if err != nil {
			return nil, err
		}
		out.add(decoded)
	}
	return out, nil
}

func (d *decoder) decodeMap(t *Map, raw any) (any, error) {
	pairs, ok := raw.([]Pair)
	if !ok {
		return nil, errWrongShape(t, "key/value pairs", raw, d.path)
	}
	var out MapValue
	for ii, pair := range pairs {
		d.push(fmt.Sprintf("[%d]", ii))
		key, err := d.decode(t.Key, pair.Key)
		if err != nil {
			d.pop()
			return nil, err
		}
		value, err := d.decode(t.Value, pair.Value)
		d.pop()
		if err != nil {
			return nil, err
		}
		out.set(key, value)
	}
	return out, nil
}
