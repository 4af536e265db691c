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

// Package syntax holds the Thrift AST consumed by the compiler.
//
// Parsing itself is delegated to the thriftrw grammar; Parse converts its
// tree into the node types of this package. Constants, namespaces and
// annotations are dropped.
package syntax

import (
	"math"
	"strings"

	"go.uber.org/thriftrw/ast"
	"go.uber.org/thriftrw/idl"
)

const maxSrcLen = math.MaxUint32

func Parse(src []uint8) (*File, error) {
	if uint64(len(src)) > maxSrcLen {
		return nil, errSourceTooLong(len(src))
	}
	program, err := idl.Parse(src)
	if err != nil {
		return nil, errParse(err)
	}
	return convertProgram(program)
}

func convertProgram(program *ast.Program) (*File, error) {
	file := &File{}
	for _, header := range program.Headers {
		if include, ok := header.(*ast.Include); ok {
			file.Includes = append(file.Includes, &Include{
				Path: include.Path,
				Loc:  linePos(include.Line),
			})
		}
	}

	for _, def := range program.Definitions {
		decl, err := convertDefinition(def)
		if err != nil {
			return nil, err
		}
		if decl != nil {
			file.Decls = append(file.Decls, decl)
		}
	}
	return file, nil
}

func convertDefinition(def ast.Definition) (Decl, error) {
	switch def := def.(type) {
	case *ast.Typedef:
		target, err := convertType(def.Type)
		if err != nil {
			return nil, err
		}
		return &Typedef{
			Name: def.Name,
			Type: target,
			Loc:  linePos(def.Line),
		}, nil
	case *ast.Enum:
		node := &Enum{
			Name: def.Name,
			Loc:  linePos(def.Line),
		}
		for _, item := range def.Items {
			var value *int64
			if item.Value != nil {
				v := int64(*item.Value)
				value = &v
			}
			node.Items = append(node.Items, &EnumItem{
				Name:  item.Name,
				Value: value,
				Loc:   linePos(item.Line),
			})
		}
		return node, nil
	case *ast.Struct:
		fields, err := convertFields(def.Fields)
		if err != nil {
			return nil, err
		}
		switch def.Type {
		case ast.ExceptionType:
			return &Exception{Name: def.Name, Fields: fields, Loc: linePos(def.Line)}, nil
		case ast.UnionType:
			return &Union{Name: def.Name, Fields: fields, Loc: linePos(def.Line)}, nil
		default:
			return &Struct{Name: def.Name, Fields: fields, Loc: linePos(def.Line)}, nil
		}
	case *ast.Service:
		node := &Service{
			Name: def.Name,
			Loc:  linePos(def.Line),
		}
		if def.Parent != nil {
			node.Extends = def.Parent.Name
		}
		for _, fn := range def.Functions {
			converted, err := convertFunction(fn)
			if err != nil {
				return nil, err
			}
			node.Functions = append(node.Functions, converted)
		}
		return node, nil
	default:
		return nil, nil
	}
}

func convertFunction(fn *ast.Function) (*Function, error) {
	args, err := convertFields(fn.Parameters)
	if err != nil {
		return nil, err
	}
	throws, err := convertFields(fn.Exceptions)
	if err != nil {
		return nil, err
	}
	node := &Function{
		Name:   fn.Name,
		Args:   args,
		Throws: throws,
		Oneway: fn.OneWay,
		Loc:    linePos(fn.Line),
	}
	if fn.ReturnType != nil {
		if node.Returns, err = convertType(fn.ReturnType); err != nil {
			return nil, err
		}
	}
	return node, nil
}

func convertFields(fields []*ast.Field) ([]*Field, error) {
	out := make([]*Field, 0, len(fields))
	for _, field := range fields {
		fieldType, err := convertType(field.Type)
		if err != nil {
			return nil, err
		}
		pos := linePos(field.Line)
		if !field.IDUnset && (field.ID < math.MinInt16 || field.ID > math.MaxInt16) {
			return nil, errFieldTagOutOfRange(field.ID, pos)
		}
		out = append(out, &Field{
			Tag:      int64(field.ID),
			HasTag:   !field.IDUnset,
			Name:     field.Name,
			Required: field.Requiredness == ast.Required,
			Type:     fieldType,
			Loc:      pos,
		})
	}
	return out, nil
}

func convertType(node ast.Type) (Type, error) {
	switch node := node.(type) {
	case ast.BaseType:
		return &BaseType{Name: baseTypeName(node), Loc: linePos(node.Line)}, nil
	case ast.TypeReference:
		return &Identifier{Name: node.Name, Loc: linePos(node.Line)}, nil
	case ast.ListType:
		elem, err := convertType(node.ValueType)
		if err != nil {
			return nil, err
		}
		return &ListType{Elem: elem, Loc: linePos(node.Line)}, nil
	case ast.SetType:
		elem, err := convertType(node.ValueType)
		if err != nil {
			return nil, err
		}
		return &SetType{Elem: elem, Loc: linePos(node.Line)}, nil
	case ast.MapType:
		key, err := convertType(node.KeyType)
		if err != nil {
			return nil, err
		}
		value, err := convertType(node.ValueType)
		if err != nil {
			return nil, err
		}
		return &MapType{Key: key, Value: value, Loc: linePos(node.Line)}, nil
	default:
		return nil, errUnknownType(node, Pos{})
	}
}

// baseTypeName drops any annotations thriftrw renders after the name.
func baseTypeName(node ast.BaseType) string {
	name, _, _ := strings.Cut(node.String(), " ")
	return name
}

func linePos(line int) Pos {
	if line <= 0 {
		return Pos{}
	}
	return Pos{uint32(line)}
}
