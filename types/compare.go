package types

// Equals returns whether two types are exactly equal.  Equality is structural:
// identical named types with equal type arguments are equal; nullable types
// are equal iff their inner types are equal.
func Equals(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return a.equals(b)
}

// IsSubtypeOf returns whether sub is a subtype of super.  The relation is
// reflexive and transitive over the standard hierarchy table.  The rules are:
//
//   - never is a subtype of everything.
//   - Every type is a subtype of dynamic.
//   - T? is a subtype of U? iff T is a subtype of U.
//   - T is a subtype of U? iff T is a subtype of U; a nullable type is never a
//     subtype of its non-nullable complement.
//   - Named types are related per the standard hierarchy table; unknown or
//     unresolved types conservatively report false rather than guessing.
//
// Note that numeric widening (int -> float) is deliberately NOT a subtype
// relation: it is handled by IsAssignableTo alone.
func IsSubtypeOf(sub, super Type) bool {
	if sub == nil || super == nil {
		return false
	}

	// Reflexivity.
	if Equals(sub, super) {
		return true
	}

	// never is the bottom type.
	if pt, ok := sub.(PrimType); ok && pt == PrimNever {
		return true
	}

	// dynamic is the top type.
	if pt, ok := super.(PrimType); ok && pt == PrimDynamic {
		return true
	}

	// Nullable supertype: T <: U? iff T <: U and T? <: U? iff T <: U.
	if nsuper, ok := super.(*NullableType); ok {
		if nsub, ok := sub.(*NullableType); ok {
			return IsSubtypeOf(nsub.Inner, nsuper.Inner)
		}

		return IsSubtypeOf(sub, nsuper.Inner)
	}

	// A nullable type is never a subtype of a non-nullable type.
	if _, ok := sub.(*NullableType); ok {
		return false
	}

	// Unresolved types never participate in subtyping.
	if _, ok := sub.(*UnresolvedType); ok {
		return false
	}
	if _, ok := super.(*UnresolvedType); ok {
		return false
	}

	// Function signatures: contravariant in parameters, covariant in return.
	if fsub, ok := sub.(*FuncSig); ok {
		if fsuper, ok := super.(*FuncSig); ok {
			if len(fsub.Params) != len(fsuper.Params) {
				return false
			}

			for i, param := range fsub.Params {
				if !IsSubtypeOf(fsuper.Params[i].Type, param.Type) {
					return false
				}
			}

			return IsSubtypeOf(fsub.ReturnType, fsuper.ReturnType)
		}

		return false
	}

	// Generic instantiations are subtypes iff their bases are related and
	// their type arguments are equal (invariance).
	if gsub, ok := sub.(*GenericType); ok {
		if gsuper, ok := super.(*GenericType); ok {
			if len(gsub.TypeArgs) != len(gsuper.TypeArgs) {
				return false
			}

			for i, arg := range gsub.TypeArgs {
				if !Equals(arg, gsuper.TypeArgs[i]) {
					return false
				}
			}

			return IsSubtypeOf(gsub.Base, gsuper.Base)
		}

		return false
	}

	// Named types: consult the standard hierarchy table.  Parameterized class
	// references only relate when their type arguments are equal.
	subName, subArgs := namedTypeOf(sub)
	superName, superArgs := namedTypeOf(super)
	if subName == "" || superName == "" {
		return false
	}

	if len(superArgs) > 0 {
		if len(subArgs) != len(superArgs) {
			return false
		}

		for i, arg := range subArgs {
			if !Equals(arg, superArgs[i]) {
				return false
			}
		}
	}

	for _, anc := range Ancestors(subName) {
		if anc == superName {
			return true
		}
	}

	return false
}

// IsAssignableTo returns whether a value of type src may be assigned to a
// location of type dst.  Assignability is subtyping plus two extra rules:
// dynamic is bidirectionally assignable with everything, and int widens to
// float (but not the reverse).
func IsAssignableTo(src, dst Type) bool {
	if src == nil || dst == nil {
		return false
	}

	if Equals(src, dst) {
		return true
	}

	// dynamic assigns to and from everything.
	if pt, ok := src.(PrimType); ok && pt == PrimDynamic {
		return true
	}
	if pt, ok := dst.(PrimType); ok && pt == PrimDynamic {
		return true
	}

	if IsSubtypeOf(src, dst) {
		return true
	}

	// Numeric widening.
	if spt, ok := src.(PrimType); ok {
		if dpt, ok := innerOf(dst).(PrimType); ok {
			return spt == PrimInt && dpt == PrimFloat
		}
	}

	return false
}

// innerOf unwraps a nullable type to its inner type; all other types are
// returned unchanged.
func innerOf(t Type) Type {
	if nt, ok := t.(*NullableType); ok {
		return nt.Inner
	}

	return t
}

// namedTypeOf extracts the hierarchy name and type arguments of a type.  It
// returns an empty name for types which do not participate in the standard
// hierarchy.
func namedTypeOf(t Type) (string, []Type) {
	switch v := t.(type) {
	case PrimType:
		switch v {
		case PrimInt, PrimFloat, PrimBool, PrimString:
			return v.Repr(), nil
		}

		return "", nil
	case *ClassRef:
		return v.Name, v.TypeArgs
	}

	return "", nil
}
