// Copyright 2020 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/google/puppetProfileTree/internal"
	"github.com/google/puppetProfileTree/internal/catalog"
	"github.com/google/puppetProfileTree/internal/config"
	"github.com/google/puppetProfileTree/internal/input"
	"github.com/google/puppetProfileTree/internal/logging"
	"github.com/google/puppetProfileTree/internal/pipeline"
	"github.com/google/puppetProfileTree/internal/report"
)

const (
	help = `Rebuilds the call tree of a Puppet profile log and reports where the time went.

Reads the log written by a compile with profiling enabled (puppet agent --profile
or the server's profiler). Only lines containing PROFILE are used; everything
before the marker is ignored. If profile-log is empty or -, reads from stdin.
Files ending in .gz are decompressed.

Prints the namespace tree of all profiled spans, then the total and per name
time of function calls and of resource evaluations.`

	catalogHelp = `Summarizes a compiled catalog in JSON form: resource types, the most connected
resources and the manifests declaring the most resources.`
)

var opts struct {
	configPath string
	logLevel   string
	color      string

	top       int
	noTree    bool
	other     bool
	strict    bool
	pprof     string
	collapsed string
}

var logger = zap.NewNop()

func main() {
	if l, err := logging.New("info"); err == nil {
		logger = l
	}
	err := newRootCmd().Execute()
	if err != nil {
		logger.Error("Failed", zap.Error(err))
	}
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "puppetProfileTree [flags] [profile-log]",
		Short:         "Analyze Puppet profile logs",
		Long:          help,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return runProfile(conf, path, cmd.OutOrStdout())
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "YAML file with defaults for the flags below")
	pf.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	pf.StringVar(&opts.color, "color", "auto", "colorize output: auto, always or never")

	f := rootCmd.Flags()
	f.IntVarP(&opts.top, "top", "n", 0, "rows per aggregate table, 0 shows all")
	f.BoolVar(&opts.noTree, "no-tree", false, "do not print the namespace tree")
	f.BoolVar(&opts.other, "other", false, "also aggregate spans that are neither functions nor resources")
	f.BoolVar(&opts.strict, "strict", false, "fail on duplicate profile ids instead of warning")
	f.StringVar(&opts.pprof, "pprof", "", "also write the tree as a pprof profile to this file")
	f.StringVar(&opts.collapsed, "collapsed", "", "also write the tree as folded stacks to this file")

	rootCmd.AddCommand(newCatalogCmd())
	return rootCmd
}

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog [flags] catalog.json",
		Short: "Summarize a compiled Puppet catalog",
		Long:  catalogHelp,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return runCatalog(conf, args[0], cmd.OutOrStdout())
		},
	}
}

// resolveConfig loads --config, lets explicitly set flags override it and
// sets up the logger.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	conf := config.Default()
	if opts.configPath != "" {
		var err error
		conf, err = config.ParseConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		conf.LogLevel = opts.logLevel
	}
	if flags.Changed("color") {
		conf.Color = opts.color
	}
	if flags.Changed("top") {
		conf.Top = opts.top
	}
	if flags.Changed("no-tree") {
		conf.NoTree = opts.noTree
	}
	if flags.Changed("other") {
		conf.Other = opts.other
	}
	if flags.Changed("strict") {
		conf.Strict = opts.strict
	}
	if flags.Changed("pprof") {
		conf.Pprof = opts.pprof
	}
	if flags.Changed("collapsed") {
		conf.Collapsed = opts.collapsed
	}

	l, err := logging.New(conf.LogLevel)
	if err != nil {
		return nil, err
	}
	logger = l
	return conf, nil
}

func colorEnabled(mode string, out io.Writer) (bool, error) {
	if f, ok := out.(*os.File); ok {
		return report.ColorEnabled(mode, f)
	}
	switch mode {
	case "always":
		return true, nil
	case "", "auto", "never":
		return false, nil
	}
	return false, fmt.Errorf("unknown color mode %q (valid: auto, always, never)", mode)
}

func runProfile(conf *config.Config, path string, out io.Writer) error {
	color, err := colorEnabled(conf.Color, out)
	if err != nil {
		return err
	}

	in, err := input.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	res, err := pipeline.RunReaderWithOptions(in, pipeline.Options{Strict: conf.Strict})
	if err != nil {
		return fmt.Errorf("failed to parse profile: %w", err)
	}
	for _, w := range res.Warnings {
		var dup *internal.DuplicateIDError
		if errors.As(w, &dup) {
			logger.Warn("Duplicate profile id, keeping the later record",
				zap.String("id", dup.Current.ID),
				zap.Stringer("previous", &dup.Previous),
				zap.Stringer("current", &dup.Current))
		} else {
			logger.Warn("Profile warning", zap.Error(w))
		}
	}
	logger.Debug("Parsed profile",
		zap.Int("records", len(res.Records)),
		zap.Int("nodes", res.Tree.Len()))

	p := &report.Printer{Out: out, Color: color, Top: conf.Top}
	if !conf.NoTree {
		if err := p.PrintTree(res.Tree); err != nil {
			return err
		}
	}
	if err := p.PrintAggregate("Function calls", res.Functions); err != nil {
		return err
	}
	if err := p.PrintAggregate("Resource evaluations", res.Resources); err != nil {
		return err
	}
	if conf.Other {
		others := internal.AggregateRecords(res.Records.OfKind(internal.KindOther))
		if err := p.PrintAggregate("Other spans", others); err != nil {
			return err
		}
	}

	if conf.Pprof != "" {
		if err := writePprof(res.Tree, conf.Pprof); err != nil {
			return err
		}
		logger.Info("Wrote pprof profile", zap.String("path", conf.Pprof))
	}
	if conf.Collapsed != "" {
		if err := writeCollapsed(res.Tree, conf.Collapsed); err != nil {
			return err
		}
		logger.Info("Wrote folded stacks", zap.String("path", conf.Collapsed))
	}
	return nil
}

func writePprof(tree *internal.Tree, path string) error {
	pprof := internal.NamespaceToPprof(tree)
	if err := pprof.CheckValid(); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output failed: %w", err)
	}
	defer out.Close()
	if err := pprof.Write(out); err != nil {
		return fmt.Errorf("failed to write: %w", err)
	}
	return out.Close()
}

func writeCollapsed(tree *internal.Tree, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output failed: %w", err)
	}
	defer out.Close()
	if err := internal.WriteCollapsed(out, tree); err != nil {
		return fmt.Errorf("failed to write: %w", err)
	}
	return out.Close()
}

func runCatalog(conf *config.Config, path string, out io.Writer) error {
	color, err := colorEnabled(conf.Color, out)
	if err != nil {
		return err
	}
	in, err := input.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	c, err := catalog.Load(in)
	if err != nil {
		return err
	}
	logger.Debug("Loaded catalog",
		zap.String("name", c.Data.Name),
		zap.Int("resources", len(c.Data.Resources)))
	return catalog.Report(out, c, color)
}
