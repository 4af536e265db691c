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

package compiler_test

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bancek/thrift-tools/idl"
	"github.com/bancek/thrift-tools/idl/compiler"
	"github.com/bancek/thrift-tools/idl/syntax"
	"github.com/bancek/thrift-tools/internal/testutil"
)

var (
	idlFiles    fs.FS
	diagnostics *testutil.Diagnostics
)

func init() {
	idlFiles = testutil.IDL()
	var err error
	diagnostics, err = testutil.LoadDiagnostics(testutil.Testdata())
	if err != nil {
		panic(err)
	}
}

func compileOK(t *testing.T, fsys fs.FS, path string, opts ...compiler.CompileOption) *idl.Catalog {
	t.Helper()
	result := compiler.CompileFile(fsys, path, opts...)
	for _, err := range result.Errors {
		testutil.ExpectNoError(t, err)
	}
	catalog := result.Catalog()
	if catalog == nil {
		t.FailNow()
	}
	return catalog
}

func TestCompileTutorial(t *testing.T) {
	t.Parallel()
	result := compiler.CompileFile(idlFiles, "tutorial.thrift")
	testutil.ExpectEq(t, 0, len(result.Errors))
	testutil.ExpectEq(t, 0, len(result.Warnings))
	catalog := result.Catalog()
	if catalog == nil {
		t.FailNow()
	}

	var sigs []string
	for fn := range catalog.Functions() {
		sigs = append(sigs, fn.Service+": "+fn.String())
	}
	testutil.ExpectSliceEq(t, []string{
		"SharedService: SharedStruct getStruct(1: i32 key)",
		"Calculator: void ping()",
		"Calculator: i32 add(1: i32 num1, 2: i32 num2)",
		"Calculator: i32 calculate(1: i32 logid, 2: Work w) throws (1: InvalidOperation ouch)",
		"Calculator: oneway void zip()",
	}, sigs)

	testutil.ExpectSliceEq(t, []string{
		"InvalidOperation",
		"MyInteger",
		"Operation",
		"SharedStruct",
		"Work",
		"shared.SharedStruct",
		"tutorial.InvalidOperation",
		"tutorial.MyInteger",
		"tutorial.Operation",
		"tutorial.Work",
	}, catalog.TypeNames())

	calculate := catalog.Function("calculate")
	for _, arg := range calculate.Args {
		testutil.ExpectTrue(t, arg.Required)
	}
	testutil.ExpectEq[idl.Type](t, catalog.Type("Work"), calculate.Args[1].Type)
	testutil.ExpectEq[idl.Type](t, catalog.Type("InvalidOperation"), calculate.Throws[0].Type)
	testutil.ExpectTrue(t, catalog.Function("zip").Oneway)
	testutil.ExpectEq[idl.Type](t, catalog.Type("SharedStruct"), catalog.Type("shared.SharedStruct"))

	// Aliases resolve to their target.
	testutil.ExpectEq(t, "i32", catalog.Type("MyInteger").String())
	testutil.ExpectEq(t, idl.KindPrimitive, catalog.Type("MyInteger").Kind())
}

func TestCompiledCatalogDecodes(t *testing.T) {
	t.Parallel()
	catalog := compileOK(t, idlFiles, "tutorial.thrift")

	value, ok := catalog.DecodeMessage(&idl.Message{
		Name: "calculate",
		Type: idl.MessageCall,
		Fields: []idl.FieldValue{
			{Tag: 2, Value: []idl.FieldValue{
				{Tag: 3, Value: int32(4)},
				{Tag: 1, Value: int32(1)},
				{Tag: 2, Value: int32(0)},
			}},
			{Tag: 1, Value: int32(99)},
		},
	})
	testutil.ExpectTrue(t, ok)
	testutil.ExpectDeepEq(t, []idl.NamedValue{
		{Name: "logid", Value: int32(99)},
		{Name: "w", Value: idl.StructValue{
			Name: "Work",
			Fields: []idl.NamedValue{
				{Name: "num1", Value: int32(1)},
				{Name: "num2", Value: int32(0)},
				{Name: "op", Value: "DIVIDE"},
				{Name: "comment"},
			},
		}},
	}, value)

	value, _ = catalog.DecodeMessage(&idl.Message{
		Name: "calculate",
		Type: idl.MessageReply,
		Fields: []idl.FieldValue{{Tag: 1, Value: []idl.FieldValue{
			{Tag: 1, Value: int32(4)},
			{Tag: 2, Value: "Cannot divide by 0"},
		}}},
	})
	testutil.ExpectDeepEq(t, idl.StructValue{
		Name:      "InvalidOperation",
		Exception: true,
		Fields: []idl.NamedValue{
			{Name: "whatOp", Value: int32(4)},
			{Name: "why", Value: "Cannot divide by 0"},
		},
	}, value)
}

func TestCompileContainers(t *testing.T) {
	t.Parallel()
	catalog := compileOK(t, idlFiles, "containers.thrift")

	color := catalog.Type("Color").(*idl.Enum)
	testutil.ExpectSliceEq(t, []idl.EnumItem{
		{Label: "RED", Tag: 0},
		{Label: "GREEN", Tag: 1},
		{Label: "BLUE", Tag: 10},
		{Label: "VIOLET", Tag: 11},
	}, color.Items())

	// Typedefs declared before their target, chained through another typedef.
	testutil.ExpectEq(t, "list<Color>", catalog.Type("Swatch").String())

	tree := catalog.Type("Tree").(*idl.Struct)
	children := tree.Field(2).Type.(*idl.List)
	testutil.ExpectEq[idl.Type](t, tree, children.Elem)

	value := catalog.Type("Value").(*idl.Struct)
	testutil.ExpectEq(t, idl.KindUnion, value.Kind())

	bag := catalog.Type("Bag").(*idl.Struct)
	testutil.ExpectEq(t, "map<string, SharedStruct>", bag.Field(2).Type.String())
	testutil.ExpectEq(t, "list<Color>", bag.Field(3).Type.String())

	forest := catalog.Function("forest")
	testutil.ExpectEq(t, "map<Color, Tree> forest(1: list<string> names)", forest.String())

	got, err := idl.Decode(tree, []idl.FieldValue{
		{Tag: 1, Value: "root"},
		{Tag: 2, Value: []any{
			[]idl.FieldValue{{Tag: 1, Value: "leaf"}, {Tag: 2, Value: []any{}}},
		}},
	})
	testutil.AssertNoError(t, err)
	testutil.ExpectDeepEq(t, idl.StructValue{
		Name: "Tree",
		Fields: []idl.NamedValue{
			{Name: "label", Value: "root"},
			{Name: "children", Value: []any{
				idl.StructValue{
					Name: "Tree",
					Fields: []idl.NamedValue{
						{Name: "label", Value: "leaf"},
						{Name: "children", Value: []any{}},
					},
				},
			}},
		},
	}, got)
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		file string
		want string
		line uint32
	}{
		{"errors/syntax_error.thrift", "parse", 0},
		{"errors/include_not_found.thrift", "include_not_found", 1},
		{"errors/include_cycle_a.thrift", "include_cycle", 1},
		{"errors/typedef_cycle.thrift", "typedef_cycle", 1},
		{"errors/type_not_found.thrift", "type_not_found", 2},
		{"errors/not_a_type.thrift", "not_a_type", 6},
		{"errors/field_tag_conflict.thrift", "field_tag_conflict", 3},
		{"errors/field_name_conflict.thrift", "field_name_conflict", 3},
		{"errors/field_tag_missing.thrift", "field_tag_missing", 2},
		{"errors/enum_value_conflict.thrift", "enum_value_conflict", 3},
		{"errors/enum_label_conflict.thrift", "enum_label_conflict", 3},
		{"errors/enum_value_out_of_range.thrift", "enum_value_out_of_range", 3},
		{"errors/throws_tag_reserved.thrift", "throws_tag_reserved", 6},
		{"errors/missing.thrift", "source_unreadable", 0},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			t.Parallel()
			result := compiler.CompileFile(idlFiles, tt.file)
			testutil.ExpectTrue(t, result.Catalog() == nil)
			if len(result.Errors) != 1 {
				for _, err := range result.Errors {
					t.Log(err)
				}
				t.Fatalf("Expected 1 error, got %d", len(result.Errors))
			}
			err := result.Errors[0]
			testutil.ExpectDiagnostic(t, diagnostics.Errors[tt.want], err)
			if tt.line != 0 {
				testutil.ExpectEq(t, tt.line, err.Pos().Line())
			}
		})
	}
}

func TestIncludeCycleChain(t *testing.T) {
	t.Parallel()
	result := compiler.CompileFile(idlFiles, "errors/include_cycle_a.thrift")
	testutil.ExpectEq(t, 1, len(result.Errors))
	err := result.Errors[0]
	testutil.ExpectEq(t, "errors/include_cycle_b.thrift", err.File())
	testutil.ExpectEq(t,
		`E3003: errors/include_cycle_b.thrift:1: Include of "include_cycle_a.thrift" forms a cycle`+
			` (errors/include_cycle_a.thrift -> errors/include_cycle_b.thrift -> errors/include_cycle_a.thrift)`,
		err.Error(),
	)
}

func TestCompileWarnings(t *testing.T) {
	t.Parallel()
	result := compiler.CompileFile(idlFiles, "warnings/redeclared.thrift")
	for _, err := range result.Errors {
		testutil.ExpectNoError(t, err)
	}
	catalog := result.Catalog()
	if catalog == nil {
		t.FailNow()
	}

	testutil.ExpectEq(t, 3, len(result.Warnings))
	testutil.ExpectDiagnostic(t, diagnostics.Warnings["duplicate_include"], result.Warnings[0])
	testutil.ExpectEq(t, uint32(2), result.Warnings[0].Pos().Line())
	testutil.ExpectDiagnostic(t, diagnostics.Warnings["decl_redeclared"], result.Warnings[1])
	testutil.ExpectEq(t,
		"W4001: warnings/redeclared.thrift:4: Declaration of 'SharedStruct' replaces"+
			" an earlier declaration in warnings/shared.thrift:3",
		result.Warnings[1].String(),
	)
	testutil.ExpectDiagnostic(t, diagnostics.Warnings["function_redeclared"], result.Warnings[2])

	// The later declaration wins, the qualified name keeps the original.
	replaced := catalog.Type("SharedStruct").(*idl.Struct)
	testutil.ExpectEq(t, "replaced", replaced.Fields[0].Name)
	original := catalog.Type("shared.SharedStruct").(*idl.Struct)
	testutil.ExpectEq(t, "key", original.Fields[0].Name)
	testutil.ExpectEq(t, "Other", catalog.Function("getStruct").Service)
	testutil.ExpectEq[idl.Type](t, replaced, catalog.Function("getStruct").Returns)
}

func TestIncludeDiamond(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		"main.thrift": {Data: []byte(`
include "left.thrift"
include "right.thrift"

struct Main {
  1: left.Left l
  2: right.Right r
}
`)},
		"left.thrift": {Data: []byte(`
include "base.thrift"

struct Left {
  1: base.Base b
}
`)},
		"right.thrift": {Data: []byte(`
include "base.thrift"

struct Right {
  1: Base b
}
`)},
		"base.thrift": {Data: []byte(`
struct Base {
  1: i32 id
}
`)},
	}

	core, logs := observer.New(zapcore.DebugLevel)
	result := compiler.CompileFile(fsys, "main.thrift", compiler.WithLogger(zap.New(core)))
	testutil.ExpectEq(t, 0, len(result.Errors))
	testutil.ExpectEq(t, 0, len(result.Warnings))
	catalog := result.Catalog()
	if catalog == nil {
		t.FailNow()
	}
	testutil.ExpectEq(t, 4, len(logs.FilterMessage("Loading IDL file").All()))
	skipped := logs.FilterMessage("Skipping IDL file already loaded").All()
	testutil.ExpectEq(t, 1, len(skipped))
	testutil.ExpectEq[any](t, "base.thrift", skipped[0].ContextMap()["file"])

	left := catalog.Type("Left").(*idl.Struct)
	right := catalog.Type("Right").(*idl.Struct)
	testutil.ExpectEq(t, left.Fields[0].Type, right.Fields[0].Type)
}

func TestRedeclaredInSameFile(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		"main.thrift": {Data: []byte(`struct S {
  1: i32 a
}

service X {
  S get(1: S s)
}

struct S {
  1: string b
}
`)},
	}

	result := compiler.CompileFile(fsys, "main.thrift")
	catalog := result.Catalog()
	if catalog == nil {
		t.Fatal(result.Errors)
	}
	testutil.ExpectEq(t, 1, len(result.Warnings))
	testutil.ExpectEq(t,
		"W4001: main.thrift:9: Declaration of 'S' replaces an earlier declaration in main.thrift:1",
		result.Warnings[0].String(),
	)

	// References bind to the last declaration, even ones that precede it.
	get := catalog.Function("get")
	testutil.ExpectEq(t, catalog.Type("S"), get.Args[0].Type)
	testutil.ExpectEq(t, catalog.Type("S"), get.Returns)
	testutil.ExpectEq(t, "b", catalog.Type("S").(*idl.Struct).Fields[0].Name)
}

func TestIncludeDirs(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		"src/main.thrift": {Data: []byte(`
include "common.thrift"

service Main {
  common.Id nextId()
}
`)},
		"vendor/thrift/common.thrift": {Data: []byte("typedef i64 Id\n")},
	}

	result := compiler.CompileFile(fsys, "src/main.thrift")
	testutil.ExpectTrue(t, result.Catalog() == nil)
	if len(result.Errors) != 2 {
		t.Fatalf("Expected 2 errors, got %d", len(result.Errors))
	}
	testutil.ExpectDiagnostic(t, diagnostics.Errors["include_not_found"], result.Errors[0])
	testutil.ExpectDiagnostic(t, diagnostics.Errors["type_not_found"], result.Errors[1])

	catalog := compileOK(t, fsys, "src/main.thrift", compiler.WithIncludeDirs("vendor/thrift"))
	testutil.ExpectEq(t, "i64 nextId()", catalog.Function("nextId").String())
}

func TestCompileParsed(t *testing.T) {
	t.Parallel()

	file := &syntax.File{
		Decls: []syntax.Decl{
			&syntax.Service{
				Name: "S",
				Functions: []*syntax.Function{{
					Name:    "get",
					Returns: &syntax.Identifier{Name: "Item"},
					Args: []*syntax.Field{{
						Tag: 1, HasTag: true, Name: "id",
						Type: &syntax.BaseType{Name: "i64"},
					}},
				}},
			},
			&syntax.Struct{
				Name: "Item",
				Fields: []*syntax.Field{{
					Tag: 1, HasTag: true, Name: "id",
					Type: &syntax.BaseType{Name: "i64"},
				}},
			},
		},
	}
	result := compiler.Compile(file)
	testutil.ExpectEq(t, 0, len(result.Errors))
	catalog := result.Catalog()
	if catalog == nil {
		t.FailNow()
	}
	testutil.ExpectEq(t, "Item get(1: i64 id)", catalog.Function("get").String())
	testutil.ExpectSliceEq(t, []string{"Item"}, catalog.TypeNames())

	t.Run("includes need a file system", func(t *testing.T) {
		result := compiler.Compile(&syntax.File{
			Includes: []*syntax.Include{{Path: "shared.thrift", Loc: syntax.NewPos(1)}},
		})
		testutil.ExpectEq(t, 1, len(result.Errors))
		testutil.ExpectDiagnostic(t, diagnostics.Errors["include_not_found"], result.Errors[0])
		testutil.ExpectEq(t, `E3001: line 1: Included file "shared.thrift" not found`, result.Errors[0].Error())
	})

	t.Run("tag out of range", func(t *testing.T) {
		result := compiler.Compile(&syntax.File{
			Decls: []syntax.Decl{&syntax.Struct{
				Name: "Big",
				Fields: []*syntax.Field{{
					Tag: 40000, HasTag: true, Name: "x",
					Type: &syntax.BaseType{Name: "i32"},
				}},
			}},
		})
		testutil.ExpectEq(t, 1, len(result.Errors))
		testutil.ExpectDiagnostic(t, diagnostics.Errors["field_tag_missing"], result.Errors[0])
	})
}
