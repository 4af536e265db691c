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

package idlyaml

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/bancek/thrift-tools/idl"
)

// Result is the YAML form of one correlated message. Value holds either
// the decoded value or, when Decoded is false, the raw fields.
type Result struct {
	Name    string
	Type    idl.MessageType
	SeqID   int32
	Decoded bool
	Value   any
	Error   string
}

func (r *Result) node() (*yaml.Node, error) {
	value, err := Node(r.Value)
	if err != nil {
		return nil, err
	}
	out := mapping()
	appendPair(out, "name", str(r.Name))
	appendPair(out, "type", str(r.Type.String()))
	appendPair(out, "seqid", scalar("!!int", strconv.FormatInt(int64(r.SeqID), 10)))
	appendPair(out, "decoded", scalar("!!bool", strconv.FormatBool(r.Decoded)))
	appendPair(out, "value", value)
	if r.Error != "" {
		appendPair(out, "error", str(r.Error))
	}
	return out, nil
}

// EncodeResults writes one YAML document per result.
func EncodeResults(results []*Result) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	for _, result := range results {
		node, err := result.node()
		if err != nil {
			return nil, errors.Wrapf(err, "message %q (seqid %d)", result.Name, result.SeqID)
		}
		if err := enc.Encode(node); err != nil {
			return nil, err
		}
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Marshal renders a decoded value as a YAML document.
func Marshal(value any) ([]byte, error) {
	node, err := Node(value)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Node converts a decoded value to a YAML node, keeping field and entry
// order. Structs are tagged with their type name and sets with !set.
// Undecoded []idl.FieldValue and []idl.Pair values are written in the
// same form DecodeMessages reads.
func Node(value any) (*yaml.Node, error) {
	switch value := value.(type) {
	case nil:
		return scalar("!!null", "null"), nil
	case bool:
		return scalar("!!bool", strconv.FormatBool(value)), nil
	case string:
		return str(value), nil
	case []byte:
		return scalar("!!binary", base64.StdEncoding.EncodeToString(value)), nil
	case float32:
		return floatNode(float64(value), 32), nil
	case float64:
		return floatNode(value, 64), nil
	case idl.StructValue:
		out := mapping()
		out.Tag = "!" + value.Name
		if value.Exception {
			out.Tag = "!exception:" + value.Name
		}
		return out, appendNamed(out, value.Fields)
	case []idl.NamedValue:
		out := mapping()
		return out, appendNamed(out, value)
	case idl.SetValue:
		return sequenceOf("!set", value.Items())
	case idl.MapValue:
		out := mapping()
		for key, item := range value.All() {
			if err := appendEntry(out, key, item); err != nil {
				return nil, err
			}
		}
		return out, nil
	case []idl.FieldValue:
		fields := &yaml.Node{Kind: yaml.SequenceNode}
		for _, field := range value {
			child, err := Node(field.Value)
			if err != nil {
				return nil, errors.Wrapf(err, "field %d", field.Tag)
			}
			entry := mapping()
			appendPair(entry, "tag", scalar("!!int", strconv.Itoa(int(field.Tag))))
			appendPair(entry, "value", child)
			fields.Content = append(fields.Content, entry)
		}
		out := mapping()
		appendPair(out, "fields", fields)
		return out, nil
	case []idl.Pair:
		entries := &yaml.Node{Kind: yaml.SequenceNode}
		for ii, pair := range value {
			key, err := Node(pair.Key)
			if err != nil {
				return nil, errors.Wrapf(err, "entry %d key", ii)
			}
			item, err := Node(pair.Value)
			if err != nil {
				return nil, errors.Wrapf(err, "entry %d value", ii)
			}
			entry := mapping()
			appendPair(entry, "key", key)
			appendPair(entry, "value", item)
			entries.Content = append(entries.Content, entry)
		}
		out := mapping()
		appendPair(out, "entries", entries)
		return out, nil
	case []any:
		return sequenceOf("", value)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return scalar("!!int", strconv.FormatInt(rv.Int(), 10)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return scalar("!!int", strconv.FormatUint(rv.Uint(), 10)), nil
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for ii := range items {
			items[ii] = rv.Index(ii).Interface()
		}
		return sequenceOf("", items)
	}
	return nil, errors.Errorf("unsupported value %v (%T)", value, value)
}

func appendNamed(out *yaml.Node, fields []idl.NamedValue) error {
	for _, field := range fields {
		child, err := Node(field.Value)
		if err != nil {
			return errors.Wrap(err, field.Name)
		}
		appendPair(out, field.Name, child)
	}
	return nil
}

func appendEntry(out *yaml.Node, key, value any) error {
	keyNode, err := Node(key)
	if err != nil {
		return errors.Wrap(err, "map key")
	}
	valueNode, err := Node(value)
	if err != nil {
		return errors.Wrapf(err, "map value for %v", key)
	}
	out.Content = append(out.Content, keyNode, valueNode)
	return nil
}

func sequenceOf(tag string, items []any) (*yaml.Node, error) {
	out := &yaml.Node{Kind: yaml.SequenceNode, Tag: tag}
	for ii, item := range items {
		child, err := Node(item)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("[%d]", ii))
		}
		out.Content = append(out.Content, child)
	}
	return out, nil
}

func floatNode(value float64, bitSize int) *yaml.Node {
	switch {
	case math.IsNaN(value):
		return scalar("!!float", ".nan")
	case math.IsInf(value, 1):
		return scalar("!!float", ".inf")
	case math.IsInf(value, -1):
		return scalar("!!float", "-.inf")
	}
	s := strconv.FormatFloat(value, 'g', -1, bitSize)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return scalar("!!float", s)
}

func mapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode}
}

func appendPair(out *yaml.Node, key string, value *yaml.Node) {
	out.Content = append(out.Content, str(key), value)
}

func str(value string) *yaml.Node {
	return scalar("!!str", value)
}

func scalar(tag string, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}
