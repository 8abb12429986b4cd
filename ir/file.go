package ir

import "fern/report"

// FileIR aggregates the finalized IR of one analyzed source file: its
// declarations, the widgets among them, its dependency edges, its analysis
// issues, and the cache metadata that keys incremental rebuilds.
//
// ContentHash is a pure function of the file's raw bytes and is the sole
// cache-validity key: two FileIR values with equal content hashes are
// interchangeable for caching purposes.
type FileIR struct {
	// The path of the analyzed source file.
	Path string

	// The hash of the file's raw bytes.
	ContentHash uint64

	// Free-form file metadata annotations scanned from the file header.
	Metadata map[string]string

	// The class declarations of the file, in order.
	Classes []*ClassDecl

	// The free function declarations of the file, in order.
	Functions []*FuncDecl

	// The raw import directive paths, in order.
	Imports []string

	// The raw export directive paths, in order.
	Exports []string

	// The resolved file paths this file depends on (imports and exports).
	Dependencies []string

	// The resolved file paths that depend on this file.
	Dependents []string

	// The analysis issues collected across all passes, in order of discovery.
	Issues []report.AnalysisIssue

	// The number of IR node IDs allocated for this file.
	NodeCount uint32
}

// Widgets returns the file's widget class declarations: the classes whose
// widget kind is stateless, stateful, or state.
func (f *FileIR) Widgets() []*ClassDecl {
	var widgets []*ClassDecl
	for _, cls := range f.Classes {
		if cls.WidgetKind != WidgetNone {
			widgets = append(widgets, cls)
		}
	}

	return widgets
}

// Class returns the file's class declaration with the given name, or nil.
func (f *FileIR) Class(name string) *ClassDecl {
	for _, cls := range f.Classes {
		if cls.Name == name {
			return cls
		}
	}

	return nil
}

// ErrorCount returns the number of error-severity issues on the file.
func (f *FileIR) ErrorCount() int {
	return report.CountErrors(f.Issues)
}

// AddIssue appends an analysis issue to the file.
func (f *FileIR) AddIssue(issue report.AnalysisIssue) {
	f.Issues = append(f.Issues, issue)
}
