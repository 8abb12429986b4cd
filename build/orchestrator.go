package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fern/ast"
	"fern/depm"
	"fern/ir"
	"fern/report"
	"fern/resolve"
	"fern/walk"
)

// Options tune one build run beyond the project configuration.
type Options struct {
	// Jobs overrides the configured worker-pool bound when positive.
	Jobs int

	// NoCache disables the incremental cache, forcing full re-analysis.
	NoCache bool

	// CacheDir overrides the configured cache directory when non-empty.
	CacheDir string
}

// Orchestrator coordinates one project's builds: dependency resolution,
// change detection against the incremental cache, parallel per-file analysis
// in dependency order, and cache writes.
type Orchestrator struct {
	root   string
	cfg    Config
	opts   Options
	parser ast.Parser
	cache  *Cache
	log    *zap.Logger
}

// NewOrchestrator creates an orchestrator for the project at the given root.
// The parser is the external text front end that produces syntax trees.
func NewOrchestrator(root string, cfg Config, parser ast.Parser, opts Options) (*Orchestrator, error) {
	o := &Orchestrator{
		root:   root,
		cfg:    cfg,
		opts:   opts,
		parser: parser,
		log:    report.Logger().Named("build"),
	}

	if !opts.NoCache {
		dir := cfg.CacheDir
		if opts.CacheDir != "" {
			dir = opts.CacheDir
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}

		cache, err := OpenCache(dir)
		if err != nil {
			return nil, err
		}

		o.cache = cache
	}

	return o, nil
}

// jobs returns the effective worker-pool bound.
func (o *Orchestrator) jobs() int {
	if o.opts.Jobs > 0 {
		return o.opts.Jobs
	}

	return o.cfg.MaxParallelism
}

// sourceDir returns the directory source paths are resolved against.
func (o *Orchestrator) sourceDir() string {
	return filepath.Join(o.root, o.cfg.SourceRoot)
}

// -----------------------------------------------------------------------------

// Build analyzes the project reachable from the entry file.  Per-file parse
// and I/O failures are aggregated into the returned error while the rest of
// the project still builds and a (not ready) result is still produced.
// Progress events are pushed to the given stream's subscribers; a nil stream
// discards them.
func (o *Orchestrator) Build(ctx context.Context, entry string, progress *ProgressStream) (*Result, error) {
	if progress == nil {
		progress = NewProgressStream()
	}
	defer progress.close()

	progress.publish(PhaseStarting, 0, fmt.Sprintf("building %s", o.cfg.Name))

	graph, err := resolve.NewGraphBuilder(o.sourceDir()).Build(entry)
	if err != nil {
		progress.publish(PhaseError, 0, err.Error())
		return nil, fmt.Errorf("resolving dependencies: %w", err)
	}

	order, cycles := graph.BuildOrder()
	progress.publish(PhaseDependencyResolution, 5,
		fmt.Sprintf("%d files, %d cycles", len(order), len(cycles)))

	for _, cycle := range cycles {
		o.log.Warn("import cycle detected", zap.Strings("files", cycle.Paths))
	}

	run := &buildRun{
		o:        o,
		reg:      depm.NewRegistry(),
		graph:    graph,
		cycleOf:  cycleMembership(cycles),
		done:     make(map[string]chan struct{}, len(order)),
		progress: progress,
		total:    len(order),
		irs:      make(map[string]*ir.FileIR, len(order)),
	}
	run.pipeline = walk.NewPipeline(run.reg)

	for _, path := range order {
		run.done[path] = make(chan struct{})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.jobs())

	for _, path := range order {
		path := path
		g.Go(func() error {
			defer close(run.done[path])
			return run.buildFile(gctx, path)
		})
	}

	if err := g.Wait(); err != nil {
		progress.publish(PhaseError, 100, err.Error())
		return nil, err
	}

	result := run.finish(cycles)
	if result.Ready {
		progress.publish(PhaseOutputGeneration, 95, "handing IR to code generation")
	}

	phase := PhaseComplete
	if !result.Ready {
		phase = PhaseError
	}
	progress.publish(phase, 100,
		fmt.Sprintf("%d files, %d errors, %d warnings",
			len(result.Files), result.ErrorCount(), result.WarningCount()))

	return result, run.failures
}

// -----------------------------------------------------------------------------

// buildRun is the mutable state of one Build call.
type buildRun struct {
	o        *Orchestrator
	reg      *depm.Registry
	pipeline *walk.Pipeline
	graph    *depm.Graph
	cycleOf  map[string]int
	done     map[string]chan struct{}
	progress *ProgressStream
	total    int

	mu        sync.Mutex
	reports   []FileReport
	irs       map[string]*ir.FileIR
	failures  error
	processed int
}

// cycleMembership maps each path inside a cycle to its cycle's index.
func cycleMembership(cycles []depm.Cycle) map[string]int {
	members := make(map[string]int)
	for i, cycle := range cycles {
		for _, path := range cycle.Paths {
			members[path] = i
		}
	}

	return members
}

// sameCycle reports whether two files belong to the same import cycle.
// Edges within a cycle are not awaited: holding them would deadlock the
// pool, and the cycle is already reported as an issue.
func (run *buildRun) sameCycle(a, b string) bool {
	ca, ok := run.cycleOf[a]
	if !ok {
		return false
	}

	cb, ok := run.cycleOf[b]
	return ok && ca == cb
}

func (run *buildRun) buildFile(ctx context.Context, path string) error {
	node, _ := run.graph.Node(path)

	// A file starts only after every dependency outside its own cycle has
	// finished and published its declarations.
	for _, dep := range node.Deps {
		if run.sameCycle(path, dep) {
			continue
		}

		select {
		case <-run.done[dep]:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	src, err := os.ReadFile(filepath.Join(run.o.sourceDir(), filepath.FromSlash(path)))
	if err != nil {
		run.recordFailure(path, err)
		return nil
	}

	hash := HashBytes(src)

	if run.o.cache != nil {
		if cached, ok := run.o.cache.Load(path, hash); ok {
			run.publishStep(PhaseChangeDetection, fmt.Sprintf("%s unchanged", path))
			run.o.log.Debug("cache hit", zap.String("path", path))

			run.reg.MergeFile(cached)
			run.reg.MarkBuilt(path)
			run.record(cached, fileReportOf(cached, true))
			return nil
		}
	}

	run.publishStep(PhaseChangeDetection, fmt.Sprintf("%s changed", path))

	astFile, err := run.o.parser.ParseFile(path, src)
	if err != nil {
		// A parse failure aborts this file's pipeline only; siblings in
		// flight are unaffected.
		run.recordFailure(path, err)
		return nil
	}

	run.publishStep(PhaseTypeResolution, fmt.Sprintf("analyzing %s", path))

	fir := run.pipeline.AnalyzeFile(astFile, hash)
	fir.Dependencies = append([]string(nil), node.Deps...)
	fir.Dependents = append([]string(nil), node.Dependents...)

	for _, issue := range fir.Issues {
		report.ReportIssue(issue)
	}

	if run.o.cache != nil {
		run.publishStep(PhaseCaching, fmt.Sprintf("caching %s", path))
		if err := run.o.cache.Store(fir); err != nil {
			run.o.log.Warn("failed to write cache entry",
				zap.String("path", path),
				zap.Error(err),
			)
		}
	}

	run.reg.MarkBuilt(path)
	run.record(fir, fileReportOf(fir, false))
	return nil
}

func (run *buildRun) record(f *ir.FileIR, fr FileReport) {
	run.mu.Lock()
	defer run.mu.Unlock()

	run.reports = append(run.reports, fr)
	run.irs[f.Path] = f
}

func (run *buildRun) recordFailure(path string, err error) {
	report.ReportStdError(path, err)

	run.mu.Lock()
	defer run.mu.Unlock()

	run.reports = append(run.reports, FileReport{Path: path, ParseFailed: true})
	run.failures = multierror.Append(run.failures, fmt.Errorf("%s: %w", path, err))
}

// publishStep publishes a per-file progress event with an overall completion
// estimate.
func (run *buildRun) publishStep(phase Phase, message string) {
	run.mu.Lock()
	if phase == PhaseChangeDetection {
		run.processed++
	}
	pct := 5 + 90*float64(run.processed)/float64(run.total)
	run.mu.Unlock()

	run.progress.publish(phase, pct, message)
}

// finish assembles the build result.
func (run *buildRun) finish(cycles []depm.Cycle) *Result {
	run.mu.Lock()
	defer run.mu.Unlock()

	ready := run.failures == nil
	for _, fr := range run.reports {
		if fr.Errors > 0 || fr.ParseFailed {
			ready = false
		}

		if run.o.cfg.Strict && fr.Warnings > 0 {
			ready = false
		}
	}

	result := &Result{
		BuildID: run.progress.BuildID(),
		Ready:   ready,
		Files:   run.reports,
		Cycles:  cycles,
		IRs:     run.irs,
	}

	if run.o.cache != nil {
		result.CacheStats = run.o.cache.Stats()
	}

	return result
}
