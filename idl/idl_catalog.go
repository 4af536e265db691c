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
	"iter"
	"maps"
	"slices"

	"go.uber.org/zap"
)

// Catalog is the set of service methods and named types resolved from one
// entry file and its includes. It is safe for concurrent readers.
type Catalog struct {
	functions []*Function
	byName    map[string]*Function
	types     map[string]Type
}

// NewCatalog takes ownership of functions and types. When two functions
// share a name the later one wins. Every function logs through log.
func NewCatalog(
	functions []*Function,
	types map[string]Type,
	log *zap.Logger,
) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Catalog{
		functions: functions,
		byName:    make(map[string]*Function, len(functions)),
		types:     types,
	}
	if c.types == nil {
		c.types = make(map[string]Type)
	}
	for _, fn := range functions {
		fn.log = log.With(zap.String("service", fn.Service))
		c.byName[fn.Name] = fn
	}
	return c
}

// Function returns nil if no method is named name.
func (c *Catalog) Function(name string) *Function {
	return c.byName[name]
}

// Functions yields the visible methods in declaration order.
func (c *Catalog) Functions() iter.Seq[*Function] {
	return func(yield func(*Function) bool) {
		for _, fn := range c.functions {
			if c.byName[fn.Name] != fn {
				continue
			}
			if !yield(fn) {
				return
			}
		}
	}
}

// Type looks up a named enum, struct, union, exception or typedef. Typedef
// names resolve to their target.
func (c *Catalog) Type(name string) Type {
	return c.types[name]
}

func (c *Catalog) TypeNames() []string {
	return slices.Sorted(maps.Keys(c.types))
}

// DecodeMessage finds the method named by msg and applies GetArgs. If no
// such method exists, msg.Fields is returned with ok == false.
func (c *Catalog) DecodeMessage(msg *Message) (value any, ok bool) {
	fn := c.Function(msg.Name)
	if fn == nil {
		return msg.Fields, false
	}
	return fn.GetArgs(msg), true
}
