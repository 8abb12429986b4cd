package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"fern/build"
	"fern/report"
)

func newBuildCommand() *cobra.Command {
	var (
		jobs     int
		noCache  bool
		cacheDir string
	)

	cmd := &cobra.Command{
		Use:   "build <entry-file>",
		Short: "analyze a project starting from its entry file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if frontendParser == nil {
				report.ReportFatal("no front-end parser is linked into this fern distribution")
			}

			entry := args[0]
			cfg, root, err := build.DiscoverConfig(filepath.Dir(entry))
			if err != nil {
				return err
			}

			o, err := build.NewOrchestrator(root, cfg, frontendParser, build.Options{
				Jobs:     jobs,
				NoCache:  noCache,
				CacheDir: cacheDir,
			})
			if err != nil {
				return err
			}

			report.DisplayBuildHeader(cfg.Name, !noCache)

			progress := build.NewProgressStream()
			events := progress.Subscribe()
			go func() {
				for ev := range events {
					report.DisplayProgress(string(ev.Phase), ev.Percent, ev.Message)
				}
			}()

			rel, err := filepath.Rel(filepath.Join(root, cfg.SourceRoot), entry)
			if err != nil {
				rel = entry
			}

			result, buildErr := o.Build(context.Background(), filepath.ToSlash(rel), progress)
			if result != nil {
				displayResult(result)
			}

			return buildErr
		},
	}

	cmd.Flags().IntVar(&jobs, "jobs", 0, "max parallel analysis workers (0 = per project config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "force full re-analysis, ignoring the cache")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "override the analysis cache directory")

	return cmd
}

func displayResult(result *build.Result) {
	for _, cycle := range result.Cycles {
		pterm.Warning.Printf("import cycle: %s\n", strings.Join(cycle.Paths, " -> "))
	}

	stats := result.CacheStats
	if stats.Hits+stats.Misses > 0 {
		report.DisplayProgress(string(build.PhaseComplete), 100, fmt.Sprintf(
			"cache: %d hits, %d misses, %d invalidations",
			stats.Hits, stats.Misses, stats.Invalidations,
		))
	}

	report.DisplayBuildFinished(result.Ready, len(result.Files),
		result.ErrorCount()+result.WarningCount())
}
