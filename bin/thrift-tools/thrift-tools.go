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
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type command interface {
	help() *commandHelp
	flags(flags *pflag.FlagSet)
	run(ctx context.Context, env *cmdEnv, argv []string) int
}

type commandHelp struct {
	usage   string
	summary string
	minArgs int
}

// cmdEnv is shared by every command of one invocation.
type cmdEnv struct {
	stdout io.Writer
	stderr io.Writer
	log    *zap.Logger
	cfg    *config

	configPath  string
	logLevel    string
	includeDirs []string
}

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	env := &cmdEnv{
		stdout: stdout,
		stderr: stderr,
		log:    zap.NewNop(),
	}
	exitCode := 0

	rootCmd := &cobra.Command{
		Use:           "thrift-tools [options] COMMAND",
		Short:         "Inspect Thrift IDL and decode RPC messages against it",
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(stderr, rootCmd.UsageString())
		exitCode = 1
		return nil
	}

	rootFlags := rootCmd.PersistentFlags()
	rootFlags.StringVar(&env.configPath, "config", "", "YAML config file")
	rootFlags.StringVar(&env.logLevel, "log-level", "", "debug, info, warn or error")
	rootFlags.StringArrayVarP(&env.includeDirs, "include-dir", "I", nil, "extra include search directory")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return env.setup(cmd.Flags())
	}

	commands := []command{
		&cmdFunctions{},
		&cmdSchema{},
		&cmdDecode{},
	}
	for _, cmd := range commands {
		help := cmd.help()
		cobraCmd := &cobra.Command{
			Use:   help.usage,
			Short: help.summary,
			Args:  cobra.MinimumNArgs(help.minArgs),
			RunE: func(_ *cobra.Command, args []string) error {
				exitCode = cmd.run(ctx, env, args)
				return nil
			},
		}
		rootCmd.AddCommand(cobraCmd)
		cmd.flags(cobraCmd.Flags())
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	_ = env.log.Sync()
	return exitCode
}

// setup loads the config file, then applies root flags over it.
func (env *cmdEnv) setup(flags *pflag.FlagSet) error {
	cfg := defaultConfig()
	if env.configPath != "" {
		loaded, err := loadConfig(env.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = env.logLevel
	}
	if flags.Changed("include-dir") {
		cfg.IncludeDirs = append(cfg.IncludeDirs, env.includeDirs...)
	}
	if err := cfg.validate(); err != nil {
		return err
	}
	log, err := newLogger(cfg.LogLevel, env.stderr)
	if err != nil {
		return err
	}
	env.cfg = cfg
	env.log = log
	return nil
}
