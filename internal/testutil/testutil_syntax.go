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

package testutil

import (
	"fmt"
	"strings"

	"github.com/bancek/thrift-tools/idl/syntax"
)

// DumpTree renders node and its children one per line, indented by depth.
// Declarations, fields and items carry their source line; type nodes do
// not.
func DumpTree(node syntax.Node) string {
	var buf strings.Builder
	dumpTree(&buf, node, 0)
	return buf.String()
}

func dumpTree(buf *strings.Builder, node syntax.Node, indent int) {
	buf.WriteString(strings.Repeat("  ", indent))
	buf.WriteString(kindName(node))
	if label := nodeLabel(node); label != "" {
		buf.WriteString(" ")
		buf.WriteString(label)
	}
	switch node.(type) {
	case syntax.Type, *syntax.File:
	default:
		fmt.Fprintf(buf, " @%s", node.Pos())
	}
	buf.WriteString("\n")
	for child := range node.ChildNodes() {
		dumpTree(buf, child, indent+1)
	}
}

func kindName(node syntax.Node) string {
	var nameBuf strings.Builder
	for ii, c := range strings.TrimPrefix(fmt.Sprintf("%T", node), "*syntax.") {
		if c >= 'A' && c <= 'Z' {
			if ii > 0 {
				nameBuf.WriteRune('-')
			}
			nameBuf.WriteRune(c + ('a' - 'A'))
		} else {
			nameBuf.WriteRune(c)
		}
	}
	return nameBuf.String()
}

func nodeLabel(node syntax.Node) string {
	switch node := node.(type) {
	case *syntax.Include:
		return fmt.Sprintf("%q", node.Path)
	case *syntax.BaseType:
		return node.Name
	case *syntax.Identifier:
		return node.Name
	case *syntax.EnumItem:
		if node.Value != nil {
			return fmt.Sprintf("%s = %d", node.Name, *node.Value)
		}
		return node.Name
	case *syntax.Field:
		label := node.Name
		if node.HasTag {
			label = fmt.Sprintf("%d: %s", node.Tag, node.Name)
		}
		if node.Required {
			label += " (required)"
		}
		return label
	case *syntax.Function:
		if node.Oneway {
			return node.Name + " (oneway)"
		}
		return node.Name
	case *syntax.Service:
		if node.Extends != "" {
			return fmt.Sprintf("%s extends %s", node.Name, node.Extends)
		}
		return node.Name
	case syntax.Decl:
		return node.DeclName()
	}
	return ""
}
