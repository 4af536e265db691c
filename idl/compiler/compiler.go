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

// Package compiler resolves parsed Thrift IDL files into an idl.Catalog.
package compiler

import (
	"io/fs"
	"math"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/bancek/thrift-tools/idl"
	"github.com/bancek/thrift-tools/idl/syntax"
)

type CompileOption interface {
	apply(*CompileOptions)
}

type compileOption func(*CompileOptions)

func (f compileOption) apply(opts *CompileOptions) { f(opts) }

type CompileOptions struct {
	log         *zap.Logger
	includeDirs []string
}

// WithLogger sets the logger for compiler traces. The resulting catalog's
// functions log decode failures through it.
func WithLogger(log *zap.Logger) CompileOption {
	return compileOption(func(opts *CompileOptions) {
		opts.log = log
	})
}

// WithIncludeDirs adds directories searched for an include that is not
// found next to the including file.
func WithIncludeDirs(dirs ...string) CompileOption {
	return compileOption(func(opts *CompileOptions) {
		opts.includeDirs = append(opts.includeDirs, dirs...)
	})
}

type CompileResult struct {
	catalog *idl.Catalog

	Errors   []*Error
	Warnings []*Warning
}

// Catalog is nil if compilation failed.
func (r *CompileResult) Catalog() *idl.Catalog {
	return r.catalog
}

// CompileFile reads, parses and resolves the file at filePath, and every
// file it includes, from fsys.
func CompileFile(fsys fs.FS, filePath string, opts ...CompileOption) CompileResult {
	return NewCompileOptions(opts...).CompileFile(fsys, filePath)
}

// Compile resolves a file that has already been parsed. The file must not
// contain includes.
func Compile(file *syntax.File, opts ...CompileOption) CompileResult {
	return NewCompileOptions(opts...).Compile(file)
}

func NewCompileOptions(opts ...CompileOption) *CompileOptions {
	compileOptions := &CompileOptions{}
	for _, opt := range opts {
		opt.apply(compileOptions)
	}
	return compileOptions
}

func (opts *CompileOptions) CompileFile(fsys fs.FS, filePath string) CompileResult {
	c := newCompiler(opts, fsys)
	c.loadFile(path.Clean(filePath), nil, "")
	return c.result()
}

func (opts *CompileOptions) Compile(file *syntax.File) CompileResult {
	c := newCompiler(opts, nil)
	c.compileParsed("", file)
	return c.result()
}

type declState uint8

const (
	declUnresolved declState = iota
	declResolving
	declResolved
	declFailed
)

type declInfo struct {
	file  string
	node  syntax.Decl
	state declState

	// Enums and structs are resolved when registered. Typedefs are
	// resolved on first use.
	resolved idl.Type
}

type compiler struct {
	opts     *CompileOptions
	log      *zap.Logger
	fsys     fs.FS
	errors   []*Error
	warnings []*Warning

	// Set by loadFile()
	files map[string]fileState
	stack []string

	// Set by registerDecls()
	declsByName map[string]*declInfo

	// Set by compileService()
	functions       []*idl.Function
	functionsByName map[string]*idl.Function
}

func newCompiler(opts *CompileOptions, fsys fs.FS) *compiler {
	log := opts.log
	if log == nil {
		log = zap.NewNop()
	}
	return &compiler{
		opts:            opts,
		log:             log,
		fsys:            fsys,
		files:           make(map[string]fileState),
		declsByName:     make(map[string]*declInfo),
		functionsByName: make(map[string]*idl.Function),
	}
}

func (c *compiler) err(err error) {
	c.errors = append(c.errors, err.(*Error))
}

func (c *compiler) warn(warning *Warning) {
	c.warnings = append(c.warnings, warning)
}

func (c *compiler) result() CompileResult {
	if len(c.errors) > 0 {
		return CompileResult{
			Errors:   c.errors,
			Warnings: c.warnings,
		}
	}

	types := make(map[string]idl.Type, len(c.declsByName))
	for name, decl := range c.declsByName {
		if decl.resolved != nil {
			types[name] = decl.resolved
		}
	}
	c.log.Debug(
		"Compiled IDL catalog",
		zap.Int("files", len(c.files)),
		zap.Int("types", len(types)),
		zap.Int("functions", len(c.functionsByName)),
	)
	return CompileResult{
		catalog:  idl.NewCatalog(c.functions, types, c.opts.log),
		Warnings: c.warnings,
	}
}

func (c *compiler) compileParsed(filePath string, file *syntax.File) {
	for _, node := range file.Includes {
		if c.fsys == nil {
			c.err(errIncludeNotFound(filePath, node))
			continue
		}
		c.loadInclude(filePath, node)
	}
	decls := c.registerDecls(filePath, file)
	c.compileDecls(decls)
}

// moduleName is the prefix of qualified names declared in filePath.
func moduleName(filePath string) string {
	return strings.TrimSuffix(path.Base(filePath), ".thrift")
}

func (c *compiler) registerDecls(filePath string, file *syntax.File) []*declInfo {
	var module string
	if filePath != "" {
		module = moduleName(filePath)
	}
	decls := make([]*declInfo, 0, len(file.Decls))
	for _, node := range file.Decls {
		decl := &declInfo{
			file: filePath,
			node: node,
		}
		switch node := node.(type) {
		case *syntax.Typedef:
		case *syntax.Enum:
			decl.state = declResolved
			decl.resolved = c.compileEnum(filePath, node)
		case *syntax.Struct:
			decl.state = declResolved
			decl.resolved = idl.NewStruct(node.Name)
		case *syntax.Union:
			decl.state = declResolved
			decl.resolved = idl.NewUnion(node.Name)
		case *syntax.Exception:
			decl.state = declResolved
			decl.resolved = idl.NewException(node.Name)
		case *syntax.Service:
			decl.state = declResolved
		}

		name := node.DeclName()
		if prev, ok := c.declsByName[name]; ok {
			c.warn(warnDeclRedeclared(filePath, node, sourceLine(prev.file, prev.node.Pos())))
		}
		decls = append(decls, decl)
		c.declsByName[name] = decl
		if module != "" {
			c.declsByName[module+"."+name] = decl
		}
	}
	return decls
}

func (c *compiler) compileDecls(decls []*declInfo) {
	for _, decl := range decls {
		switch node := decl.node.(type) {
		case *syntax.Typedef:
			if _, err := c.resolveDecl(decl); err != nil {
				c.err(err)
			}
		case *syntax.Struct:
			c.compileStruct(decl, node.Fields)
		case *syntax.Union:
			c.compileStruct(decl, node.Fields)
		case *syntax.Exception:
			c.compileStruct(decl, node.Fields)
		case *syntax.Service:
			c.compileService(decl.file, node)
		}
	}
}

func (c *compiler) compileEnum(filePath string, node *syntax.Enum) *idl.Enum {
	items := make([]idl.EnumItem, 0, len(node.Items))
	byValue := make(map[int64]string, len(node.Items))
	byName := make(map[string]struct{}, len(node.Items))

	var next int64
	for _, item := range node.Items {
		value := next
		if item.Value != nil {
			value = *item.Value
		}
		next = value + 1

		if value < math.MinInt32 || value > math.MaxInt32 {
			c.err(errEnumValueOutOfRange(filePath, node.Name, item, value))
			continue
		}
		if _, conflict := byName[item.Name]; conflict {
			c.err(errEnumItemNameConflict(filePath, node.Name, item))
			continue
		}
		if prev, conflict := byValue[value]; conflict {
			c.err(errEnumItemValueConflict(filePath, node.Name, item, value, prev))
			continue
		}
		byName[item.Name] = struct{}{}
		byValue[value] = item.Name
		items = append(items, idl.EnumItem{Label: item.Name, Tag: int32(value)})
	}

	// Conflicts were reported above.
	enum, err := idl.NewEnum(node.Name, items)
	if err != nil {
		panic(err)
	}
	return enum
}

func (c *compiler) compileStruct(decl *declInfo, nodes []*syntax.Field) {
	st := decl.resolved.(*idl.Struct)
	st.Fields = c.compileFields(decl.file, st.Name, nodes, false)
}

func (c *compiler) compileFields(
	filePath string,
	scope string,
	nodes []*syntax.Field,
	forceRequired bool,
) []*idl.Field {
	fields := make([]*idl.Field, 0, len(nodes))
	byTag := make(map[int64]*syntax.Field, len(nodes))
	byName := make(map[string]struct{}, len(nodes))
	for _, node := range nodes {
		if !node.HasTag {
			c.err(errFieldTagMissing(filePath, scope, node))
			continue
		}
		if node.Tag < 0 || node.Tag > math.MaxInt16 {
			c.err(errFieldTagOutOfRange(filePath, scope, node))
			continue
		}
		if prev, conflict := byTag[node.Tag]; conflict {
			c.err(errFieldTagConflict(filePath, scope, node, prev))
			continue
		}
		if _, conflict := byName[node.Name]; conflict {
			c.err(errFieldNameConflict(filePath, scope, node))
			continue
		}
		byTag[node.Tag] = node
		byName[node.Name] = struct{}{}

		fieldType, err := c.resolveType(filePath, node.Type)
		if err != nil {
			c.err(err)
			continue
		}
		fields = append(fields, &idl.Field{
			Tag:      int16(node.Tag),
			Name:     node.Name,
			Required: forceRequired || node.Required,
			Type:     fieldType,
		})
	}
	return fields
}

func (c *compiler) compileService(filePath string, node *syntax.Service) {
	for _, fnNode := range node.Functions {
		scope := node.Name + "." + fnNode.Name
		fn := &idl.Function{
			Name:    fnNode.Name,
			Service: node.Name,
			Args:    c.compileFields(filePath, scope, fnNode.Args, true),
			Oneway:  fnNode.Oneway,
		}
		if fnNode.Returns != nil {
			returns, err := c.resolveType(filePath, fnNode.Returns)
			if err != nil {
				c.err(err)
			}
			fn.Returns = returns
		}

		var throws []*syntax.Field
		for _, throw := range fnNode.Throws {
			if throw.HasTag && throw.Tag == int64(idl.SuccessTag) {
				c.err(errThrowsTagReserved(filePath, fnNode.Name, throw))
				continue
			}
			throws = append(throws, throw)
		}
		fn.Throws = c.compileFields(filePath, scope, throws, false)

		if prev, ok := c.functionsByName[fn.Name]; ok {
			c.warn(warnFunctionRedeclared(filePath, fnNode, node.Name, prev.Service))
		}
		c.functions = append(c.functions, fn)
		c.functionsByName[fn.Name] = fn
	}
}

func (c *compiler) resolveType(filePath string, node syntax.Type) (idl.Type, error) {
	switch node := node.(type) {
	case *syntax.BaseType:
		return idl.NewPrimitive(node.Name), nil
	case *syntax.Identifier:
		decl, ok := c.declsByName[node.Name]
		if !ok {
			return nil, errTypeNameNotFound(filePath, node)
		}
		if _, isService := decl.node.(*syntax.Service); isService {
			return nil, errResolvedDeclNotType(filePath, node, "service")
		}
		return c.resolveDecl(decl)
	case *syntax.ListType:
		elem, err := c.resolveType(filePath, node.Elem)
		if err != nil {
			return nil, err
		}
		return idl.ListOf(elem), nil
	case *syntax.SetType:
		elem, err := c.resolveType(filePath, node.Elem)
		if err != nil {
			return nil, err
		}
		return idl.SetOf(elem), nil
	case *syntax.MapType:
		key, err := c.resolveType(filePath, node.Key)
		if err != nil {
			return nil, err
		}
		value, err := c.resolveType(filePath, node.Value)
		if err != nil {
			return nil, err
		}
		return idl.MapOf(key, value), nil
	}
	panic("unreachable")
}

// resolveDecl follows a typedef to its target. A typedef that reaches
// itself again before resolving is a cycle.
func (c *compiler) resolveDecl(decl *declInfo) (idl.Type, error) {
	switch decl.state {
	case declResolved:
		return decl.resolved, nil
	case declFailed:
		return nil, nil
	case declResolving:
		decl.state = declFailed
		return nil, errTypedefCycle(decl.file, decl.node.(*syntax.Typedef))
	}

	node := decl.node.(*syntax.Typedef)
	decl.state = declResolving
	target, err := c.resolveType(decl.file, node.Type)
	if err != nil {
		decl.state = declFailed
		return nil, err
	}
	decl.state = declResolved
	decl.resolved = target
	return target, nil
}
