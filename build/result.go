package build

import (
	"github.com/google/uuid"

	"fern/depm"
	"fern/ir"
	"fern/report"
)

// FileReport summarizes the analysis of one file for the final build report.
type FileReport struct {
	// Path is the file's project-relative path.
	Path string

	// Errors and Warnings count the file's issues by severity.
	Errors   int
	Warnings int

	// FromCache reports whether the file was restored from the incremental
	// cache instead of being reanalyzed.
	FromCache bool

	// ParseFailed reports whether the file's parse failed; a failed file
	// produces no IR.
	ParseFailed bool
}

// Result is the outcome of one build run.
type Result struct {
	// BuildID identifies the build run.
	BuildID uuid.UUID

	// Ready reports whether the analyzed IR is trustworthy enough to hand
	// to code generation: no parse failures and no error-severity issues.
	Ready bool

	// Files holds one report per file in build order.
	Files []FileReport

	// Cycles holds the import cycles found in the dependency graph.
	Cycles []depm.Cycle

	// CacheStats summarizes cache behavior over the run.
	CacheStats CacheStats

	// IRs holds the finalized IR of every successfully analyzed file,
	// keyed by path.  This is what code generation consumes.
	IRs map[string]*ir.FileIR
}

// ErrorCount returns the total error-severity issue count across all files.
func (r *Result) ErrorCount() int {
	n := 0
	for _, fr := range r.Files {
		n += fr.Errors
	}

	return n
}

// WarningCount returns the total warning count across all files.
func (r *Result) WarningCount() int {
	n := 0
	for _, fr := range r.Files {
		n += fr.Warnings
	}

	return n
}

// fileReportOf summarizes one analyzed file.
func fileReportOf(f *ir.FileIR, fromCache bool) FileReport {
	fr := FileReport{Path: f.Path, FromCache: fromCache}
	for _, issue := range f.Issues {
		switch issue.Severity {
		case report.SeverityError:
			fr.Errors++
		case report.SeverityWarning:
			fr.Warnings++
		}
	}

	return fr
}
