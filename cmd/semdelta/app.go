package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/c360studio/semdelta/debt"
	"github.com/c360studio/semdelta/diff"
	"github.com/c360studio/semdelta/merge"
	"github.com/c360studio/semdelta/model"
	"github.com/c360studio/semdelta/store"
)

func newDiffCmd(a *app) *cobra.Command {
	var unified bool
	var outPath string

	cmd := &cobra.Command{
		Use:   "diff <source> <target>",
		Short: "Compare two model files and report structural changes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st := store.New(".", a.logger)

			source, err := st.Load(ctx, args[0])
			if err != nil {
				return fmt.Errorf("load source model: %w", err)
			}
			target, err := st.Load(ctx, args[1])
			if err != nil {
				return fmt.Errorf("load target model: %w", err)
			}

			report := diff.Compare(source, target)
			a.logger.Info("Diff complete",
				"source", source.Name,
				"target", target.Name,
				"changes", report.Summary.TotalChanges)

			var out string
			switch {
			case unified:
				out, err = report.UnifiedDiff()
				if err != nil {
					return err
				}
			case a.format == "json":
				out, err = toJSON(report)
				if err != nil {
					return err
				}
			default:
				out = report.Changelog()
			}
			return writeOutput(outPath, out)
		},
	}

	cmd.Flags().BoolVar(&unified, "unified", false, "render a unified diff instead of a changelog")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write the report to a file instead of stdout")
	return cmd
}

func newMergeCmd(a *app) *cobra.Command {
	var strategyName string
	var outPath string

	cmd := &cobra.Command{
		Use:   "merge <base> <ours> <theirs>",
		Short: "Three-way merge two divergent edits of a common ancestor",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st := store.New(".", a.logger)

			if strategyName == "" {
				strategyName = a.cfg.Merge.Strategy
			}
			strategy, err := merge.ParseStrategy(strategyName)
			if err != nil {
				return err
			}

			models := make([]*model.Ontology, 3)
			for i, path := range args {
				if models[i], err = st.Load(ctx, path); err != nil {
					return fmt.Errorf("load model %s: %w", path, err)
				}
			}

			merged, conflicts, err := merge.Merge(models[0], models[1], models[2], strategy)
			if err != nil {
				return err
			}

			a.logger.Info("Merge complete",
				"strategy", strategy,
				"version", merged.Version,
				"conflicts", len(conflicts))
			for _, c := range conflicts {
				a.logger.Warn("Merge conflict",
					"path", c.Path,
					"element_type", c.ElementType,
					"resolution", c.Resolution)
			}

			if outPath != "" {
				if err := st.Save(ctx, outPath, merged); err != nil {
					return fmt.Errorf("save merged model: %w", err)
				}
				return nil
			}

			out, err := toJSON(struct {
				Merged    *model.Ontology  `json:"merged"`
				Conflicts []merge.Conflict `json:"conflicts"`
			}{merged, conflicts})
			if err != nil {
				return err
			}
			return writeOutput("", out)
		},
	}

	cmd.Flags().StringVar(&strategyName, "strategy", "", "conflict resolution strategy (ours, theirs, union)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write the merged model to a file instead of stdout")
	return cmd
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var dir string
	var threshold float64
	var outPath string

	cmd := &cobra.Command{
		Use:   "analyze [model files...]",
		Short: "Detect semantic debt across two or more models",
		Long: "Analyze compares every supplied model against the others and reports\n" +
			"conflicting entity structures, property types, relationship\n" +
			"cardinalities, and business rules. With no file arguments it scans\n" +
			"the configured models directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if threshold == 0 {
				threshold = a.cfg.Debt.SimilarityThreshold
			}
			models, err := loadModels(cmd, a, dir, args)
			if err != nil {
				return err
			}

			report, err := debt.NewAnalyzer(threshold).Analyze(models)
			if err != nil {
				return err
			}
			a.logger.Info("Analysis complete",
				"models", len(report.Analyzed),
				"conflicts", report.Summary.TotalConflicts,
				"critical", report.Summary.Critical)

			var out string
			if a.format == "json" {
				out, err = toJSON(report)
				if err != nil {
					return err
				}
			} else {
				out = report.Markdown()
			}
			return writeOutput(outPath, out)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "directory to scan for model files (default: configured models dir)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "rule similarity threshold (default: configured value)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write the report to a file instead of stdout")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run semantic debt analysis whenever model files change",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if dir == "" {
				dir = a.cfg.Models.Dir
			}

			watcher, err := store.NewWatcher(store.WatchConfig{
				DebounceDelay: a.cfg.Watch.DebounceDelay,
			}, dir, a.logger)
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			if err := watcher.Start(ctx); err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}
			defer watcher.Stop()

			a.runAnalysis(ctx, dir)
			for {
				select {
				case <-ctx.Done():
					return nil
				case event, ok := <-watcher.Events():
					if !ok {
						return nil
					}
					a.logger.Info("Model files changed", "files", len(event.Paths))
					a.runAnalysis(ctx, dir)
				}
			}
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "directory to watch (default: configured models dir)")
	return cmd
}

// runAnalysis runs one debt analysis pass over the watched directory.
// Failures are logged rather than terminating the watch loop.
func (a *app) runAnalysis(ctx context.Context, dir string) {
	runID := uuid.New().String()
	logger := a.logger.With("run_id", runID)

	st := store.New(dir, logger)
	models, err := st.LoadGlob(ctx, a.cfg.Models.Pattern)
	if err != nil {
		logger.Error("Failed to load models", "error", err)
		return
	}

	report, err := debt.NewAnalyzer(a.cfg.Debt.SimilarityThreshold).Analyze(models)
	if err != nil {
		logger.Warn("Analysis skipped", "error", err)
		return
	}

	logger.Info("Analysis complete",
		"models", len(report.Analyzed),
		"conflicts", report.Summary.TotalConflicts,
		"critical", report.Summary.Critical)
	fmt.Println(report.Markdown())
}

// loadModels loads the analyzer inputs from explicit file arguments or
// from a directory scan.
func loadModels(cmd *cobra.Command, a *app, dir string, args []string) (map[string]*model.Ontology, error) {
	ctx := cmd.Context()

	if len(args) > 0 {
		st := store.New(".", a.logger)
		models := make(map[string]*model.Ontology, len(args))
		for _, path := range args {
			o, err := st.Load(ctx, path)
			if err != nil {
				return nil, fmt.Errorf("load model %s: %w", path, err)
			}
			models[modelKey(path)] = o
		}
		return models, nil
	}

	if dir == "" {
		dir = a.cfg.Models.Dir
	}
	st := store.New(dir, a.logger)
	return st.LoadGlob(ctx, a.cfg.Models.Pattern)
}

// modelKey names a model after its file base name without extension.
func modelKey(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func toJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	return string(data) + "\n", nil
}

func writeOutput(path, content string) error {
	if path == "" {
		fmt.Print(content)
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return nil
}
