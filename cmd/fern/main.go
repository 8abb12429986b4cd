package main

import (
	"os"

	"github.com/spf13/cobra"

	"fern/ast"
	"fern/common"
	"fern/report"
)

// frontendParser is the external text parser the build pipeline consumes
// syntax trees from.  It is linked in by the distribution build; the plain
// front end ships without one, and `fern build` reports that as a fatal
// configuration error.
var frontendParser ast.Parser

// logLevel is the selected log level name.
var logLevel string

func main() {
	root := &cobra.Command{
		Use:           "fern",
		Short:         "fern is the analysis front end for Fern UI projects",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			report.InitReporter(parseLogLevel(logLevel))
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "loglevel", "verbose",
		"log level: silent, error, warn, or verbose")

	root.AddCommand(newBuildCommand())
	root.AddCommand(newDepsCommand())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "print the fern version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("fern " + common.FernVersion)
		},
	})

	if err := root.Execute(); err != nil {
		report.ReportStdError("fern", err)
		os.Exit(1)
	}
}

// parseLogLevel maps a log level name to its reporter constant.  Unknown
// names fall back to verbose.
func parseLogLevel(name string) int {
	switch name {
	case "silent":
		return report.LogLevelSilent
	case "error":
		return report.LogLevelError
	case "warn":
		return report.LogLevelWarn
	default:
		return report.LogLevelVerbose
	}
}
