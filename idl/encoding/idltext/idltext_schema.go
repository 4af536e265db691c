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

package idltext

import (
	"io"
	"strings"

	"github.com/bancek/thrift-tools/idl"
)

func EncodeSchema(catalog *idl.Catalog) string {
	var buf strings.Builder
	EncodeSchemaTo(catalog, &buf)
	return buf.String()
}

// EncodeSchemaTo writes every named type in sorted order, then the
// functions of each service. Qualified names are omitted, and a name that
// resolves to a type declared under another name is written as a typedef.
func EncodeSchemaTo(catalog *idl.Catalog, w io.Writer) error {
	e := encoder{w: w}
	for _, name := range catalog.TypeNames() {
		if strings.Contains(name, ".") {
			continue
		}
		e.visitNamedType(name, catalog.Type(name))
	}

	var service string
	for fn := range catalog.Functions() {
		if fn.Service != service {
			if service != "" {
				e.indent -= 1
				e.line("}")
			}
			service = fn.Service
			e.linef("service %s {", service)
			e.indent += 1
		}
		e.line(fn.String())
	}
	if service != "" {
		e.indent -= 1
		e.line("}")
	}
	return e.err
}

func (e *encoder) visitNamedType(name string, t idl.Type) {
	switch t := t.(type) {
	case *idl.Enum:
		if t.Name() == name {
			e.block("enum "+name+" {", func() {
				for _, item := range t.Items() {
					e.linef("%s = %d", item.Label, item.Tag)
				}
			})
			return
		}
	case *idl.Struct:
		if t.Name == name {
			e.block(t.Kind().String()+" "+name+" {", func() {
				for _, field := range t.Fields {
					e.visitFieldDef(field)
				}
			})
			return
		}
	}
	e.linef("typedef %s %s", t, name)
}

func (e *encoder) visitFieldDef(field *idl.Field) {
	if field.Required {
		e.linef("%d: required %s %s", field.Tag, field.Type, field.Name)
		return
	}
	e.linef("%d: %s %s", field.Tag, field.Type, field.Name)
}
