// Package resolve discovers a project's source files and builds its
// dependency graph.  It scans only the directive header of each file, so the
// graph can be built before any file is parsed or analyzed.
package resolve

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"fern/common"
	"fern/depm"
	"fern/report"
)

// directivePattern matches one import or export directive line.
var directivePattern = regexp.MustCompile(`^\s*(import|export)\s+"([^"]+)"`)

// commentPattern matches line comments and header metadata annotations.
var commentPattern = regexp.MustCompile(`^\s*(//|/\*)`)

// GraphBuilder walks a project's import edges starting from an entry file and
// accumulates the dependency graph.  Files outside the project root and
// targets that do not exist are skipped with a log line rather than failing
// the build: missing imports surface later as unresolved symbols.
type GraphBuilder struct {
	root    string
	graph   *depm.Graph
	visited map[string]struct{}
	log     *zap.Logger
}

// NewGraphBuilder creates a graph builder rooted at the given project
// directory.
func NewGraphBuilder(root string) *GraphBuilder {
	return &GraphBuilder{
		root:    root,
		graph:   depm.NewGraph(),
		visited: make(map[string]struct{}),
		log:     report.Logger().Named("resolve"),
	}
}

// Build scans the project reachable from the entry file and returns its
// dependency graph.  Entry is a path relative to the project root.
func (gb *GraphBuilder) Build(entry string) (*depm.Graph, error) {
	if err := gb.visitFile(filepath.ToSlash(entry)); err != nil {
		return nil, err
	}

	return gb.graph, nil
}

func (gb *GraphBuilder) visitFile(rel string) error {
	if _, ok := gb.visited[rel]; ok {
		return nil
	}
	gb.visited[rel] = struct{}{}

	gb.graph.AddNode(rel)

	src, err := os.ReadFile(filepath.Join(gb.root, filepath.FromSlash(rel)))
	if err != nil {
		return err
	}

	imports, exports := ScanDirectives(src)
	for _, target := range append(imports, exports...) {
		dep, ok := gb.resolveTarget(rel, target)
		if !ok {
			gb.log.Debug("skipping unresolvable directive target",
				zap.String("file", rel),
				zap.String("target", target),
			)

			continue
		}

		gb.graph.AddEdge(rel, dep)
		if err := gb.visitFile(dep); err != nil {
			return err
		}
	}

	return nil
}

// resolveTarget maps a directive target to a project-relative file path.  The
// target is tried relative to the importing file's directory first, then
// relative to the project root.  Targets that resolve outside the project or
// to no existing file are rejected.
func (gb *GraphBuilder) resolveTarget(from, target string) (string, bool) {
	if !strings.HasSuffix(target, common.FernFileExt) {
		target += common.FernFileExt
	}

	candidates := []string{
		filepath.Join(filepath.Dir(filepath.FromSlash(from)), filepath.FromSlash(target)),
		filepath.FromSlash(target),
	}

	for _, cand := range candidates {
		rel := filepath.ToSlash(filepath.Clean(cand))
		if rel == ".." || strings.HasPrefix(rel, "../") {
			continue
		}

		if info, err := os.Stat(filepath.Join(gb.root, cand)); err == nil && !info.IsDir() {
			return rel, true
		}
	}

	return "", false
}

// -----------------------------------------------------------------------------

// ScanDirectives extracts the import and export targets from a file's
// directive header.  Scanning stops at the first line that is not blank, a
// comment, or a directive: directives may only appear at the top of a file.
func ScanDirectives(src []byte) (imports, exports []string) {
	scanner := bufio.NewScanner(bytes.NewReader(src))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || commentPattern.MatchString(line) {
			continue
		}

		m := directivePattern.FindStringSubmatch(line)
		if m == nil {
			break
		}

		if m[1] == "import" {
			imports = append(imports, m[2])
		} else {
			exports = append(exports, m[2])
		}
	}

	return imports, exports
}
