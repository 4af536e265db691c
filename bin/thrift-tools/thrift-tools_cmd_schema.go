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

package main

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bancek/thrift-tools/idl/encoding/idltext"
)

type cmdFunctions struct{}

func (*cmdFunctions) help() *commandHelp {
	return &commandHelp{
		usage:   "functions IDL",
		summary: "List the signature of every service function",
		minArgs: 1,
	}
}

func (*cmdFunctions) flags(flags *pflag.FlagSet) {}

func (cmd *cmdFunctions) run(ctx context.Context, env *cmdEnv, argv []string) int {
	catalog := env.compileIDL(argv[0])
	if catalog == nil {
		return 1
	}
	for fn := range catalog.Functions() {
		fmt.Fprintf(env.stdout, "%s: %s\n", fn.Service, fn)
	}
	return 0
}

type cmdSchema struct{}

func (*cmdSchema) help() *commandHelp {
	return &commandHelp{
		usage:   "schema IDL",
		summary: "Print resolved types and functions",
		minArgs: 1,
	}
}

func (*cmdSchema) flags(flags *pflag.FlagSet) {}

func (cmd *cmdSchema) run(ctx context.Context, env *cmdEnv, argv []string) int {
	catalog := env.compileIDL(argv[0])
	if catalog == nil {
		return 1
	}
	if err := idltext.EncodeSchemaTo(catalog, env.stdout); err != nil {
		fmt.Fprintln(env.stderr, err)
		return 1
	}
	return 0
}
