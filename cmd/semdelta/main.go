// Package main provides the semdelta binary entry point. Semdelta
// tracks and reconciles independently evolving semantic models: it
// diffs two model versions, three-way merges divergent edits, and
// quantifies semantic debt across many models.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/semdelta/config"
)

const (
	Version = "0.1.0"
	appName = "semdelta"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	app := &app{}

	root := &cobra.Command{
		Use:           appName,
		Short:         "Diff, merge, and debt analysis for semantic models",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init()
		},
	}

	root.PersistentFlags().StringVar(&app.configPath, "config", "", "path to config file (default: layered lookup)")
	root.PersistentFlags().StringVar(&app.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&app.format, "format", "", "report format (markdown, json)")

	root.AddCommand(
		newDiffCmd(app),
		newMergeCmd(app),
		newAnalyzeCmd(app),
		newWatchCmd(app),
		newVersionCmd(),
	)

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the semdelta version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s\n", appName, Version)
		},
	}
}

// app holds configuration shared by all subcommands.
type app struct {
	configPath string
	logLevel   string
	format     string

	cfg    *config.Config
	logger *slog.Logger
}

// init builds the logger and loads layered configuration. Called once
// by the root command before any subcommand runs.
func (a *app) init() error {
	level := parseLogLevel(a.logLevel)
	a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	if a.configPath != "" {
		cfg, err := config.LoadFromFile(a.configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		a.cfg = cfg
	} else {
		cfg, err := config.NewLoader(a.logger).Load()
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	if a.format == "" {
		a.format = a.cfg.Output.Format
	}
	switch a.format {
	case "markdown", "json":
	default:
		return fmt.Errorf("unknown format: %q (supported: markdown, json)", a.format)
	}
	return nil
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
