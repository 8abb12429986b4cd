// Package walk implements the five-pass analysis pipeline that turns one
// file's syntax tree into a fully annotated FileIR: declaration extraction,
// symbol resolution, type inference, flow analysis, and validation.
package walk

import (
	"path/filepath"
	"strings"

	"fern/ast"
	"fern/depm"
	"fern/ir"
	"fern/report"
)

// Pipeline drives the analysis passes over individual files.  One pipeline is
// shared by all files of a build: it carries the project registry that
// extraction writes global declarations into and that resolution reads
// cross-file references from.
type Pipeline struct {
	reg *depm.Registry
}

// NewPipeline creates an analysis pipeline over the given project registry.
func NewPipeline(reg *depm.Registry) *Pipeline {
	return &Pipeline{reg: reg}
}

// AnalyzeFile runs all five passes over the given syntax tree and returns the
// finalized FileIR.  Analysis never fails: semantic problems are collected as
// issues on the returned IR.
func (p *Pipeline) AnalyzeFile(f *ast.File, contentHash uint64) *ir.FileIR {
	acc := newFileAcc(f.Path, f.Metadata)

	ex := &extractor{acc: acc, reg: p.reg, ids: ir.NewIDAllocator(f.Path)}
	ex.extractFile(f)

	rs := &resolver{acc: acc, reg: p.reg}
	rs.resolveFile()

	inf := &inferrer{acc: acc, reg: p.reg}
	inf.inferFile()

	fa := &flowAnalyzer{acc: acc}
	fa.analyzeFile()

	vd := &validator{acc: acc, reg: p.reg}
	vd.validateFile()

	return acc.finalize(contentHash, ex.ids.Count())
}

// -----------------------------------------------------------------------------

// fileAcc accumulates the products of the passes for one file.  It is owned
// by exactly one goroutine for the duration of the pipeline.
type fileAcc struct {
	path     string
	metadata map[string]string

	classes   []*ir.ClassDecl
	functions []*ir.FuncDecl
	imports   []string
	exports   []string

	issues []report.AnalysisIssue
}

func newFileAcc(path string, metadata map[string]string) *fileAcc {
	return &fileAcc{path: path, metadata: metadata}
}

// addIssue records an analysis issue against the file.
func (acc *fileAcc) addIssue(issue report.AnalysisIssue) {
	acc.issues = append(acc.issues, issue)
}

// pkgName returns the file's package name: the `package` metadata annotation
// when present, otherwise the file's base name without its extension.
func (acc *fileAcc) pkgName() string {
	if pkg, ok := acc.metadata["package"]; ok && pkg != "" {
		return pkg
	}

	base := filepath.Base(acc.path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// allFuncs returns every function body container in the file: free functions
// followed by the methods of each class, in declaration order.
func (acc *fileAcc) allFuncs() []*ir.FuncDecl {
	funcs := make([]*ir.FuncDecl, 0, len(acc.functions))
	funcs = append(funcs, acc.functions...)

	for _, cls := range acc.classes {
		funcs = append(funcs, cls.Methods...)
	}

	return funcs
}

// finalize seals the accumulator into a FileIR.
func (acc *fileAcc) finalize(contentHash uint64, nodeCount uint32) *ir.FileIR {
	return &ir.FileIR{
		Path:        acc.path,
		ContentHash: contentHash,
		Metadata:    acc.metadata,
		Classes:     acc.classes,
		Functions:   acc.functions,
		Imports:     acc.imports,
		Exports:     acc.exports,
		Issues:      acc.issues,
		NodeCount:   nodeCount,
	}
}
