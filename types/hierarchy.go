package types

import "sync"

// standardParents maps each standard type name to its direct superclass.
// Every named type ultimately derives from Object.  User-declared classes are
// added to this table during declaration extraction as `name -> superclass`.
// Ancestor chains are resolved at query time, so the order classes are
// registered in never matters.
var standardParents = map[string]string{
	"int":        "num",
	"float":      "num",
	"num":        "Comparable",
	"bool":       "Object",
	"string":     "Comparable",
	"Comparable": "Object",
	"Object":     "",
}

// hierarchyMu guards standardParents: declaration extraction registers
// classes while inference of other files reads the table concurrently.
var hierarchyMu sync.RWMutex

// Ancestors returns the ancestor chain of the given type name, most specific
// first, by walking the parent table.  The walk stops at Object, at a name
// with no registered parent, or when it revisits a name (an inheritance cycle
// in user code must not hang a query).  Unknown names have no ancestors:
// subtype queries on them conservatively fail rather than guessing.
func Ancestors(name string) []string {
	hierarchyMu.RLock()
	defer hierarchyMu.RUnlock()

	var chain []string
	seen := map[string]struct{}{name: {}}

	for {
		parent, ok := standardParents[name]
		if !ok || parent == "" {
			return chain
		}

		if _, cyclic := seen[parent]; cyclic {
			return chain
		}
		seen[parent] = struct{}{}

		chain = append(chain, parent)
		name = parent
	}
}

// AncestorSet returns the set of a type name's ancestors including the name
// itself.
func AncestorSet(name string) map[string]struct{} {
	set := map[string]struct{}{name: {}}
	for _, anc := range Ancestors(name) {
		set[anc] = struct{}{}
	}

	return set
}

// CommonSupertype computes the most specific common supertype of two types.
// If either type is dynamic, the result is dynamic.  If the types are equal,
// the result is that type.  Otherwise the standard hierarchy is walked for
// the first shared ancestor; when no common ancestor exists, the result is
// dynamic (the join of unrelated types).
func CommonSupertype(a, b Type) Type {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}

	if Equals(a, b) {
		return a
	}

	if pt, ok := a.(PrimType); ok && pt == PrimDynamic {
		return PrimDynamic
	}
	if pt, ok := b.(PrimType); ok && pt == PrimDynamic {
		return PrimDynamic
	}

	// never joins with anything to that thing.
	if pt, ok := a.(PrimType); ok && pt == PrimNever {
		return b
	}
	if pt, ok := b.(PrimType); ok && pt == PrimNever {
		return a
	}

	// The join of anything nullable is nullable.
	if na, ok := a.(*NullableType); ok {
		return NewNullable(CommonSupertype(na.Inner, b))
	}
	if nb, ok := b.(*NullableType); ok {
		return NewNullable(CommonSupertype(a, nb.Inner))
	}

	// Numeric join.
	if apt, ok := a.(PrimType); ok {
		if bpt, ok := b.(PrimType); ok {
			if (apt == PrimInt && bpt == PrimFloat) || (apt == PrimFloat && bpt == PrimInt) {
				return PrimFloat
			}
		}
	}

	aName, _ := namedTypeOf(a)
	bName, _ := namedTypeOf(b)
	if aName != "" && bName != "" {
		bSet := AncestorSet(bName)

		for _, anc := range append([]string{aName}, Ancestors(aName)...) {
			if _, ok := bSet[anc]; ok {
				return namedStandardType(anc)
			}
		}
	}

	return PrimDynamic
}

// RegisterClass records a user-declared class and its superclass in the
// hierarchy table so that subtype and common-supertype queries see it.
// Registration is idempotent for a given name and superclass.
func RegisterClass(name, superclass string) {
	if name == "" {
		return
	}

	if superclass == "" {
		superclass = "Object"
	}

	hierarchyMu.Lock()
	standardParents[name] = superclass
	hierarchyMu.Unlock()
}

// namedStandardType maps a hierarchy name back to a type value: the primitive
// for primitive names, a class reference otherwise.
func namedStandardType(name string) Type {
	switch name {
	case "int":
		return PrimInt
	case "float":
		return PrimFloat
	case "bool":
		return PrimBool
	case "string":
		return PrimString
	}

	return &ClassRef{Name: name}
}
