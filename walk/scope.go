package walk

import "fern/common"

// scopeStack is a stack of nested lexical scopes used during symbol
// resolution.  The innermost scope is last.
type scopeStack struct {
	scopes []map[string]*common.Symbol
}

// push begins a new nested scope.
func (ss *scopeStack) push() {
	ss.scopes = append(ss.scopes, make(map[string]*common.Symbol))
}

// pop ends the innermost scope.
func (ss *scopeStack) pop() {
	ss.scopes = ss.scopes[:len(ss.scopes)-1]
}

// define binds a symbol in the innermost scope.  Shadowing an outer binding
// is allowed; rebinding within the same scope silently replaces, since
// duplicate locals are a parser concern.
func (ss *scopeStack) define(sym *common.Symbol) {
	ss.scopes[len(ss.scopes)-1][sym.Name] = sym
}

// lookup searches the scopes innermost-first for a binding of the given name.
func (ss *scopeStack) lookup(name string) (*common.Symbol, bool) {
	for i := len(ss.scopes) - 1; i >= 0; i-- {
		if sym, ok := ss.scopes[i][name]; ok {
			return sym, true
		}
	}

	return nil, false
}
