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

// Package idlyaml reads raw Thrift messages from YAML documents and writes
// decoded values back as YAML.
//
// A message document has the form:
//
//	name: calculate
//	type: call        # call, reply, exception, oneway, or 1 to 4
//	seqid: 7
//	fields:
//	  - tag: 1
//	    value: 42
//
// Raw values nest the same way they do on the wire. A struct is a mapping
// with a single "fields" key, a map is a mapping with a single "entries"
// key holding key/value mappings, a list or set is a sequence, and binary
// is a !!binary scalar.
package idlyaml

import (
	"bytes"
	"encoding/base64"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/bancek/thrift-tools/idl"
)

type messageDoc struct {
	Name   string     `yaml:"name"`
	Type   yaml.Node  `yaml:"type"`
	SeqID  int32      `yaml:"seqid"`
	Fields []fieldDoc `yaml:"fields"`
}

type fieldDoc struct {
	Tag   int16     `yaml:"tag"`
	Value yaml.Node `yaml:"value"`
}

type pairDoc struct {
	Key   yaml.Node `yaml:"key"`
	Value yaml.Node `yaml:"value"`
}

func DecodeMessage(data []byte) (*idl.Message, error) {
	msgs, err := DecodeMessages(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(msgs) != 1 {
		return nil, errors.Errorf("expected one message document, got %d", len(msgs))
	}
	return msgs[0], nil
}

// DecodeMessages reads every document of a YAML stream. Empty documents
// are skipped.
func DecodeMessages(r io.Reader) ([]*idl.Message, error) {
	dec := yaml.NewDecoder(r)
	var msgs []*idl.Message
	for ii := 0; ; ii++ {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if err == io.EOF {
			return msgs, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "message document %d", ii)
		}
		if len(doc.Content) == 0 {
			continue
		}
		msg, err := decodeMessageDoc(&doc)
		if err != nil {
			return nil, errors.Wrapf(err, "message document %d", ii)
		}
		msgs = append(msgs, msg)
	}
}

func decodeMessageDoc(node *yaml.Node) (*idl.Message, error) {
	var doc messageDoc
	if err := node.Decode(&doc); err != nil {
		return nil, err
	}
	if doc.Name == "" {
		return nil, errors.New("message has no name")
	}
	msgType, err := decodeMessageType(&doc.Type)
	if err != nil {
		return nil, err
	}

	msg := &idl.Message{
		Name:   doc.Name,
		Type:   msgType,
		SeqID:  doc.SeqID,
		Fields: make([]idl.FieldValue, 0, len(doc.Fields)),
	}
	for _, field := range doc.Fields {
		value, err := decodeRaw(&field.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "field %d", field.Tag)
		}
		msg.Fields = append(msg.Fields, idl.FieldValue{Tag: field.Tag, Value: value})
	}
	return msg, nil
}

func decodeMessageType(node *yaml.Node) (idl.MessageType, error) {
	if node.Kind == 0 {
		return 0, errors.New("message has no type")
	}
	if node.Kind != yaml.ScalarNode {
		return 0, errors.Errorf("line %d: message type must be a scalar", node.Line)
	}
	if msgType, ok := idl.ParseMessageType(node.Value); ok {
		return msgType, nil
	}
	n, err := strconv.ParseUint(node.Value, 10, 8)
	if err != nil || n < uint64(idl.MessageCall) || n > uint64(idl.MessageOneway) {
		return 0, errors.Errorf("line %d: unknown message type %q", node.Line, node.Value)
	}
	return idl.MessageType(n), nil
}

func decodeRaw(node *yaml.Node) (any, error) {
	switch node.Kind {
	case 0:
		return nil, nil
	case yaml.AliasNode:
		return decodeRaw(node.Alias)
	case yaml.ScalarNode:
		return decodeScalar(node)
	case yaml.SequenceNode:
		values := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			value, err := decodeRaw(child)
			if err != nil {
				return nil, err
			}
			values = append(values, value)
		}
		return values, nil
	case yaml.MappingNode:
		return decodeTagged(node)
	}
	return nil, errors.Errorf("line %d: unsupported YAML node", node.Line)
}

func decodeScalar(node *yaml.Node) (any, error) {
	switch node.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var v bool
		err := node.Decode(&v)
		return v, errors.Wrapf(err, "line %d", node.Line)
	case "!!int":
		var v int64
		if err := node.Decode(&v); err != nil {
			var u uint64
			if uerr := node.Decode(&u); uerr != nil {
				return nil, errors.Wrapf(err, "line %d", node.Line)
			}
			return u, nil
		}
		return v, nil
	case "!!float":
		var v float64
		err := node.Decode(&v)
		return v, errors.Wrapf(err, "line %d", node.Line)
	case "!!binary":
		v, err := base64.StdEncoding.DecodeString(node.Value)
		return v, errors.Wrapf(err, "line %d", node.Line)
	}
	return node.Value, nil
}

// decodeTagged turns {fields: [...]} into []idl.FieldValue and
// {entries: [...]} into []idl.Pair.
func decodeTagged(node *yaml.Node) (any, error) {
	if len(node.Content) != 2 {
		return nil, errors.Errorf(
			"line %d: expected a mapping with a single 'fields' or 'entries' key",
			node.Line,
		)
	}
	key, body := node.Content[0], node.Content[1]
	switch key.Value {
	case "fields":
		var docs []fieldDoc
		if err := body.Decode(&docs); err != nil {
			return nil, err
		}
		fields := make([]idl.FieldValue, 0, len(docs))
		for _, doc := range docs {
			value, err := decodeRaw(&doc.Value)
			if err != nil {
				return nil, errors.Wrapf(err, "field %d", doc.Tag)
			}
			fields = append(fields, idl.FieldValue{Tag: doc.Tag, Value: value})
		}
		return fields, nil
	case "entries":
		var docs []pairDoc
		if err := body.Decode(&docs); err != nil {
			return nil, err
		}
		pairs := make([]idl.Pair, 0, len(docs))
		for ii, doc := range docs {
			k, err := decodeRaw(&doc.Key)
			if err != nil {
				return nil, errors.Wrapf(err, "entry %d key", ii)
			}
			v, err := decodeRaw(&doc.Value)
			if err != nil {
				return nil, errors.Wrapf(err, "entry %d value", ii)
			}
			pairs = append(pairs, idl.Pair{Key: k, Value: v})
		}
		return pairs, nil
	}
	return nil, errors.Errorf("line %d: unknown raw value key %q", key.Line, key.Value)
}
