package depm

import (
	"sync"

	"fern/common"
	"fern/ir"
)

// Registry is the project-wide table of globally visible declarations.  All
// files in a build share one registry: declaration extraction writes into it
// as files are analyzed, and symbol resolution reads it to resolve
// cross-file references.
//
// The registry is the only mutable state shared between concurrently
// analyzed files, so every access goes through the mutex.  Writes only ever
// happen during declaration extraction (or when merging a cached file), and
// each file's declarations are written by exactly one goroutine.
type Registry struct {
	mu sync.RWMutex

	// classes maps class names to their declarations.
	classes map[string]*ir.ClassDecl

	// functions maps free function names to their declarations.
	functions map[string]*ir.FuncDecl

	// symbols maps global symbol names to their symbol records.  Every
	// entry in classes and functions has a corresponding entry here.
	symbols map[string]*common.Symbol

	// built marks the files whose analysis has completed.
	built map[string]struct{}
}

// NewRegistry creates a new, empty registry.
func NewRegistry() *Registry {
	return &Registry{
		classes:   make(map[string]*ir.ClassDecl),
		functions: make(map[string]*ir.FuncDecl),
		symbols:   make(map[string]*common.Symbol),
		built:     make(map[string]struct{}),
	}
}

// DefineClass registers a class declaration.  It returns false if a global
// declaration with the same name already exists, in which case the registry
// is left unchanged and the caller reports the conflict.
func (r *Registry) DefineClass(cd *ir.ClassDecl) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.symbols[cd.Name]; ok {
		return false
	}

	r.classes[cd.Name] = cd
	if cd.Sym != nil {
		r.symbols[cd.Name] = cd.Sym
	}
	return true
}

// DefineFunction registers a free function declaration.  As with
// DefineClass, it returns false on a name conflict.
func (r *Registry) DefineFunction(fd *ir.FuncDecl) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.symbols[fd.Name]; ok {
		return false
	}

	r.functions[fd.Name] = fd
	if fd.Sym != nil {
		r.symbols[fd.Name] = fd.Sym
	}
	return true
}

// LookupSymbol looks up a global symbol by name.
func (r *Registry) LookupSymbol(name string) (*common.Symbol, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sym, ok := r.symbols[name]
	return sym, ok
}

// LookupClass looks up a class declaration by name.
func (r *Registry) LookupClass(name string) (*ir.ClassDecl, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cd, ok := r.classes[name]
	return cd, ok
}

// LookupFunction looks up a free function declaration by name.
func (r *Registry) LookupFunction(name string) (*ir.FuncDecl, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fd, ok := r.functions[name]
	return fd, ok
}

// MergeFile registers all global declarations of an already-analyzed file.
// This is used when a file is restored from the incremental cache and its
// extraction pass never runs.  Conflicting names are skipped: the first
// definition wins, matching the behavior of live extraction.
func (r *Registry) MergeFile(f *ir.FileIR) {
	for _, cd := range f.Classes {
		r.DefineClass(cd)
	}

	for _, fd := range f.Functions {
		r.DefineFunction(fd)
	}
}

// MarkBuilt records that the given file's analysis has completed.
func (r *Registry) MarkBuilt(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.built[path] = struct{}{}
}

// IsBuilt returns whether the given file's analysis has completed.
func (r *Registry) IsBuilt(path string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.built[path]
	return ok
}

// BuiltCount returns the number of files marked built.
func (r *Registry) BuiltCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.built)
}
