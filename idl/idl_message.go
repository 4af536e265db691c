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
)

// MessageType values match the Thrift wire encoding.
type MessageType uint8

const (
	MessageCall      MessageType = 1
	MessageReply     MessageType = 2
	MessageException MessageType = 3
	MessageOneway    MessageType = 4
)

func (t MessageType) String() string {
	switch t {
	case MessageCall:
		return "call"
	case MessageReply:
		return "reply"
	case MessageException:
		return "exception"
	case MessageOneway:
		return "oneway"
	}
	return fmt.Sprintf("MessageType(%d)", uint8(t))
}

func ParseMessageType(s string) (MessageType, bool) {
	switch s {
	case "call":
		return MessageCall, true
	case "reply":
		return MessageReply, true
	case "exception":
		return MessageException, true
	case "oneway":
		return MessageOneway, true
	}
	return 0, false
}

// Message is one framed RPC message as produced by a wire-level decoder.
type Message struct {
	Name   string
	Type   MessageType
	SeqID  int32
	Fields []FieldValue
}

// FieldValue is a tagged raw value. A raw struct is a []FieldValue, a raw
// list or set is a []any, and a raw map is a []Pair.
type FieldValue struct {
	Tag   int16
	Value any
}

type Pair struct {
	Key   any
	Value any
}
