package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"fern/build"
	"fern/resolve"
)

func newDepsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deps <entry-file>",
		Short: "print the project's dependency-first build order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry := args[0]
			cfg, root, err := build.DiscoverConfig(filepath.Dir(entry))
			if err != nil {
				return err
			}

			sourceDir := filepath.Join(root, cfg.SourceRoot)

			rel, err := filepath.Rel(sourceDir, entry)
			if err != nil {
				rel = entry
			}

			graph, err := resolve.NewGraphBuilder(sourceDir).Build(filepath.ToSlash(rel))
			if err != nil {
				return fmt.Errorf("resolving dependencies: %w", err)
			}

			order, cycles := graph.BuildOrder()
			for i, path := range order {
				fmt.Printf("%3d  %s\n", i+1, path)
			}

			for _, cycle := range cycles {
				pterm.Warning.Printf("import cycle: %s\n", strings.Join(cycle.Paths, " -> "))
			}

			return nil
		},
	}
}
