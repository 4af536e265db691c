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

package syntax

import (
	"fmt"
	"iter"
	"strings"
)

// Pos is the source line of a node. The zero Pos means "unknown".
type Pos struct {
	line uint32
}

func NewPos(line uint32) Pos {
	return Pos{line}
}

func (p Pos) Line() uint32 {
	return p.line
}

func (p Pos) IsValid() bool {
	return p.line != 0
}

func (p Pos) String() string {
	if p.line == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", p.line)
}

type Node interface {
	Pos() Pos
	ChildNodes() iter.Seq[Node]
}

// Walk visits node and its children depth-first. Children of a node are
// skipped if walkFn returns false.
func Walk(node Node, walkFn func(Node) bool) {
	if !walkFn(node) {
		return
	}
	for child := range node.ChildNodes() {
		Walk(child, walkFn)
	}
}

func iterChildren[N Node](childNodes []N) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, child := range childNodes {
			if !yield(child) {
				return
			}
		}
	}
}

type leafNode struct{}

func (*leafNode) ChildNodes() iter.Seq[Node] {
	return func(yield func(Node) bool) {}
}

// Decl is a named top-level declaration.
type Decl interface {
	Node
	DeclName() string
}

// Type is a reference to a type: a builtin, a named declaration, or a
// container of other types.
type Type interface {
	Node
	fmt.Stringer
	isType()
}

// File {{{

type File struct {
	Includes []*Include
	Decls    []Decl
}

func (n *File) Pos() Pos {
	return Pos{1}
}

func (n *File) ChildNodes() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, child := range n.Includes {
			if !yield(child) {
				return
			}
		}
		for _, child := range n.Decls {
			if !yield(child) {
				return
			}
		}
	}
}

type Include struct {
	leafNode
	Path string
	Loc  Pos
}

func (n *Include) Pos() Pos {
	return n.Loc
}

// }}}

// Types {{{

type BaseType struct {
	leafNode
	Name string
	Loc  Pos
}

func (n *BaseType) Pos() Pos       { return n.Loc }
func (n *BaseType) String() string { return n.Name }
func (*BaseType) isType()          {}

type Identifier struct {
	leafNode
	Name string
	Loc  Pos
}

func (n *Identifier) Pos() Pos       { return n.Loc }
func (n *Identifier) String() string { return n.Name }
func (*Identifier) isType()          {}

type ListType struct {
	Elem Type
	Loc  Pos
}

func (n *ListType) Pos() Pos { return n.Loc }
func (*ListType) isType()    {}

func (n *ListType) ChildNodes() iter.Seq[Node] {
	return iterChildren([]Type{n.Elem})
}

func (n *ListType) String() string {
	return fmt.Sprintf("list<%s>", n.Elem)
}

type SetType struct {
	Elem Type
	Loc  Pos
}

func (n *SetType) Pos() Pos { return n.Loc }
func (*SetType) isType()    {}

func (n *SetType) ChildNodes() iter.Seq[Node] {
	return iterChildren([]Type{n.Elem})
}

func (n *SetType) String() string {
	return fmt.Sprintf("set<%s>", n.Elem)
}

type MapType struct {
	Key   Type
	Value Type
	Loc   Pos
}

func (n *MapType) Pos() Pos { return n.Loc }
func (*MapType) isType()    {}

func (n *MapType) ChildNodes() iter.Seq[Node] {
	return iterChildren([]Type{n.Key, n.Value})
}

func (n *MapType) String() string {
	return fmt.Sprintf("map<%s, %s>", n.Key, n.Value)
}

// }}}

// Declarations {{{

type Typedef struct {
	Name string
	Type Type
	Loc  Pos
}

func (n *Typedef) Pos() Pos         { return n.Loc }
func (n *Typedef) DeclName() string { return n.Name }

func (n *Typedef) ChildNodes() iter.Seq[Node] {
	return iterChildren([]Type{n.Type})
}

type Enum struct {
	Name  string
	Items []*EnumItem
	Loc   Pos
}

func (n *Enum) Pos() Pos         { return n.Loc }
func (n *Enum) DeclName() string { return n.Name }

func (n *Enum) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.Items)
}

// EnumItem is one label of an enum. A nil Value means the label takes the
// previous item's value plus one.
type EnumItem struct {
	leafNode
	Name  string
	Value *int64
	Loc   Pos
}

func (n *EnumItem) Pos() Pos { return n.Loc }

// Field is a struct field, a function argument, or a throws clause entry.
type Field struct {
	Tag      int64
	HasTag   bool
	Name     string
	Required bool
	Type     Type
	Loc      Pos
}

func (n *Field) Pos() Pos { return n.Loc }

func (n *Field) ChildNodes() iter.Seq[Node] {
	return iterChildren([]Type{n.Type})
}

func (n *Field) String() string {
	if n.HasTag {
		return fmt.Sprintf("%d: %s %s", n.Tag, n.Type, n.Name)
	}
	return fmt.Sprintf("%s %s", n.Type, n.Name)
}

type Struct struct {
	Name   string
	Fields []*Field
	Loc    Pos
}

func (n *Struct) Pos() Pos         { return n.Loc }
func (n *Struct) DeclName() string { return n.Name }

func (n *Struct) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.Fields)
}

type Union struct {
	Name   string
	Fields []*Field
	Loc    Pos
}

func (n *Union) Pos() Pos         { return n.Loc }
func (n *Union) DeclName() string { return n.Name }

func (n *Union) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.Fields)
}

type Exception struct {
	Name   string
	Fields []*Field
	Loc    Pos
}

func (n *Exception) Pos() Pos         { return n.Loc }
func (n *Exception) DeclName() string { return n.Name }

func (n *Exception) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.Fields)
}

type Service struct {
	Name      string
	Extends   string
	Functions []*Function
	Loc       Pos
}

func (n *Service) Pos() Pos         { return n.Loc }
func (n *Service) DeclName() string { return n.Name }

func (n *Service) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.Functions)
}

// Function is a service method. A nil Returns means void.
type Function struct {
	Name    string
	Args    []*Field
	Returns Type
	Throws  []*Field
	Oneway  bool
	Loc     Pos
}

func (n *Function) Pos() Pos { return n.Loc }

func (n *Function) ChildNodes() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, arg := range n.Args {
			if !yield(arg) {
				return
			}
		}
		if n.Returns != nil {
			if !yield(n.Returns) {
				return
			}
		}
		for _, throw := range n.Throws {
			if !yield(throw) {
				return
			}
		}
	}
}

func (n *Function) String() string {
	var buf strings.Builder
	if n.Oneway {
		buf.WriteString("oneway ")
	}
	if n.Returns == nil {
		buf.WriteString("void")
	} else {
		buf.WriteString(n.Returns.String())
	}
	fmt.Fprintf(&buf, " %s(", n.Name)
	writeFields(&buf, n.Args)
	buf.WriteString(")")
	if len(n.Throws) > 0 {
		buf.WriteString(" throws (")
		writeFields(&buf, n.Throws)
		buf.WriteString(")")
	}
	return buf.String()
}

func writeFields(buf *strings.Builder, fields []*Field) {
	for ii, field := range fields {
		if ii > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(field.String())
	}
}

// }}}
