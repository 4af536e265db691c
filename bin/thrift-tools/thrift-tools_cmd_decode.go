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
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bancek/thrift-tools/idl"
	"github.com/bancek/thrift-tools/idl/encoding/idltext"
	"github.com/bancek/thrift-tools/idl/encoding/idlyaml"
)

type cmdDecode struct {
	flagSet *pflag.FlagSet
	format  string
	jobs    int
	strict  bool
}

func (*cmdDecode) help() *commandHelp {
	return &commandHelp{
		usage:   "decode IDL MESSAGES.yaml...",
		summary: "Decode YAML message documents against an IDL file",
		minArgs: 2,
	}
}

func (cmd *cmdDecode) flags(flags *pflag.FlagSet) {
	cmd.flagSet = flags
	flags.StringVarP(&cmd.format, "format", "f", "", "output format: text or yaml")
	flags.IntVarP(&cmd.jobs, "jobs", "j", 0, "messages decoded in parallel")
	flags.BoolVar(&cmd.strict, "strict", false, "fail on messages that do not decode")
}

// options applies the command's flags over the config.
func (cmd *cmdDecode) options(cfg *config) (*config, error) {
	out := *cfg
	if cmd.flagSet.Changed("format") {
		out.Format = cmd.format
	}
	if cmd.flagSet.Changed("jobs") {
		out.Jobs = cmd.jobs
	}
	if cmd.flagSet.Changed("strict") {
		out.Strict = cmd.strict
	}
	if err := out.validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (cmd *cmdDecode) run(ctx context.Context, env *cmdEnv, argv []string) int {
	opts, err := cmd.options(env.cfg)
	if err != nil {
		fmt.Fprintln(env.stderr, err)
		return 1
	}
	catalog := env.compileIDL(argv[0])
	if catalog == nil {
		return 1
	}

	var msgs []*idl.Message
	for _, msgPath := range argv[1:] {
		loaded, err := loadMessages(msgPath)
		if err != nil {
			fmt.Fprintln(env.stderr, err)
			return 1
		}
		msgs = append(msgs, loaded...)
	}
	env.log.Debug("Decoding messages", zap.Int("count", len(msgs)), zap.Int("jobs", opts.Jobs))

	results := make([]*idlyaml.Result, len(msgs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Jobs)
	for ii, msg := range msgs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[ii] = decodeOne(catalog, msg, opts.Strict)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintln(env.stderr, err)
		return 1
	}

	exitCode := 0
	if opts.Strict {
		for _, result := range results {
			if !result.Decoded {
				fmt.Fprintf(env.stderr, "%s (seqid %d): %s\n", result.Name, result.SeqID, result.Error)
				exitCode = 1
			}
		}
	}

	if err := writeResults(env, opts.Format, results); err != nil {
		fmt.Fprintln(env.stderr, err)
		return 1
	}
	return exitCode
}

func loadMessages(path string) ([]*idl.Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open messages")
	}
	defer f.Close()
	msgs, err := idlyaml.DecodeMessages(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return msgs, nil
}

// decodeOne correlates msg with its function. In strict mode decode errors
// are kept on the result; otherwise they are logged by GetArgs.
func decodeOne(catalog *idl.Catalog, msg *idl.Message, strict bool) *idlyaml.Result {
	result := &idlyaml.Result{
		Name:  msg.Name,
		Type:  msg.Type,
		SeqID: msg.SeqID,
		Value: msg.Fields,
	}
	fn := catalog.Function(msg.Name)
	if fn == nil {
		result.Error = fmt.Sprintf("no function named '%s'", msg.Name)
		return result
	}
	if strict {
		value, err := fn.DecodeMessage(msg)
		if err != nil {
			result.Error = err.Error()
			return result
		}
		result.Value = value
		result.Decoded = true
		return result
	}
	value := fn.GetArgs(msg)
	if _, raw := value.([]idl.FieldValue); !raw {
		result.Value = value
		result.Decoded = true
	}
	return result
}

func writeResults(env *cmdEnv, format string, results []*idlyaml.Result) error {
	if format == "yaml" {
		out, err := idlyaml.EncodeResults(results)
		if err != nil {
			return err
		}
		_, err = env.stdout.Write(out)
		return err
	}

	for _, result := range results {
		header := fmt.Sprintf("# %s %s seqid=%d", result.Name, result.Type, result.SeqID)
		if !result.Decoded {
			header += " (undecoded)"
		}
		if _, err := fmt.Fprintln(env.stdout, header); err != nil {
			return err
		}
		if err := idltext.EncodeTo(result.Value, env.stdout); err != nil {
			return err
		}
	}
	return nil
}
