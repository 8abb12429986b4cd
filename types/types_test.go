package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNullable_Flattens(t *testing.T) {
	inner := NewNullable(PrimInt)
	outer := NewNullable(inner)

	require.NotNil(t, outer)
	assert.Equal(t, PrimInt, outer.Inner, "nested nullability must flatten on construction")

	// Triple wrapping flattens all the way down.
	triple := NewNullable(NewNullable(NewNullable(PrimString)))
	assert.Equal(t, PrimString, triple.Inner)
}

func TestEquals_Structural(t *testing.T) {
	listOfInt := &ClassRef{Name: "List", TypeArgs: []Type{PrimInt}}
	listOfInt2 := &ClassRef{Name: "List", TypeArgs: []Type{PrimInt}}
	listOfFloat := &ClassRef{Name: "List", TypeArgs: []Type{PrimFloat}}

	assert.True(t, Equals(listOfInt, listOfInt2))
	assert.False(t, Equals(listOfInt, listOfFloat))
	assert.True(t, Equals(NewNullable(listOfInt), NewNullable(listOfInt2)))
	assert.False(t, Equals(NewNullable(listOfInt), listOfInt))
}

func TestIsSubtypeOf_BottomAndTop(t *testing.T) {
	all := []Type{
		PrimInt, PrimFloat, PrimBool, PrimString, PrimVoid, PrimDynamic, PrimNever,
		&ClassRef{Name: "Widget"},
		NewNullable(PrimInt),
		&UnresolvedType{Name: "Mystery"},
	}

	for _, typ := range all {
		assert.True(t, IsSubtypeOf(PrimNever, typ), "never <: %s", typ.Repr())
		assert.True(t, IsSubtypeOf(typ, PrimDynamic), "%s <: dynamic", typ.Repr())
	}
}

func TestIsSubtypeOf_Reflexive(t *testing.T) {
	all := []Type{
		PrimInt,
		&ClassRef{Name: "Text"},
		NewNullable(PrimString),
		&FuncSig{Params: []Param{{Type: PrimInt}}, ReturnType: PrimVoid},
	}

	for _, typ := range all {
		assert.True(t, IsSubtypeOf(typ, typ), "%s <: %s", typ.Repr(), typ.Repr())
	}
}

func TestIsSubtypeOf_TransitiveOverHierarchy(t *testing.T) {
	num := &ClassRef{Name: "num"}
	comparable := &ClassRef{Name: "Comparable"}
	object := &ClassRef{Name: "Object"}

	assert.True(t, IsSubtypeOf(PrimInt, num))
	assert.True(t, IsSubtypeOf(num, comparable))
	assert.True(t, IsSubtypeOf(PrimInt, comparable))
	assert.True(t, IsSubtypeOf(PrimInt, object))
	assert.False(t, IsSubtypeOf(num, PrimInt))
}

func TestIsSubtypeOf_Nullability(t *testing.T) {
	// T? <: U? iff T <: U.
	assert.True(t, IsSubtypeOf(NewNullable(PrimInt), NewNullable(&ClassRef{Name: "num"})))
	assert.False(t, IsSubtypeOf(NewNullable(&ClassRef{Name: "num"}), NewNullable(PrimInt)))

	// T <: T? but never T? <: T.
	assert.True(t, IsSubtypeOf(PrimInt, NewNullable(PrimInt)))
	assert.False(t, IsSubtypeOf(NewNullable(PrimInt), PrimInt))
}

func TestIsSubtypeOf_UnresolvedIsConservative(t *testing.T) {
	mystery := &UnresolvedType{Name: "Mystery"}

	assert.False(t, IsSubtypeOf(mystery, &ClassRef{Name: "Object"}))
	assert.False(t, IsSubtypeOf(PrimInt, mystery))
}

func TestIsAssignableTo(t *testing.T) {
	// Widening is assignable but not a subtype relation.
	assert.True(t, IsAssignableTo(PrimInt, PrimFloat))
	assert.False(t, IsSubtypeOf(PrimInt, PrimFloat))
	assert.False(t, IsAssignableTo(PrimFloat, PrimInt))

	// dynamic assigns both ways.
	assert.True(t, IsAssignableTo(PrimDynamic, PrimInt))
	assert.True(t, IsAssignableTo(PrimInt, PrimDynamic))

	// Identical named types are mutually assignable.
	text := &ClassRef{Name: "Text"}
	assert.True(t, IsAssignableTo(text, &ClassRef{Name: "Text"}))
	assert.False(t, IsAssignableTo(text, &ClassRef{Name: "Image"}))
}

func TestCommonSupertype(t *testing.T) {
	assert.Equal(t, PrimFloat, CommonSupertype(PrimInt, PrimFloat))
	assert.Equal(t, PrimInt, CommonSupertype(PrimInt, PrimInt))
	assert.Equal(t, PrimInt, CommonSupertype(PrimNever, PrimInt))
	assert.Equal(t, PrimDynamic, CommonSupertype(PrimDynamic, PrimInt))

	joined := CommonSupertype(PrimInt, PrimString)
	require.IsType(t, &ClassRef{}, joined)
	assert.Equal(t, "Comparable", joined.(*ClassRef).Name)

	nullableJoin := CommonSupertype(NewNullable(PrimInt), PrimFloat)
	require.IsType(t, &NullableType{}, nullableJoin)
	assert.Equal(t, PrimFloat, nullableJoin.(*NullableType).Inner)
}

func TestRegisterClass(t *testing.T) {
	RegisterClass("Widget", "")
	RegisterClass("StatelessWidget", "Widget")
	RegisterClass("GreetingCard", "StatelessWidget")

	card := &ClassRef{Name: "GreetingCard"}
	assert.True(t, IsSubtypeOf(card, &ClassRef{Name: "StatelessWidget"}))
	assert.True(t, IsSubtypeOf(card, &ClassRef{Name: "Widget"}))
	assert.True(t, IsSubtypeOf(card, &ClassRef{Name: "Object"}))
	assert.False(t, IsSubtypeOf(&ClassRef{Name: "Widget"}, card))
}

func TestRegisterClass_OrderIndependent(t *testing.T) {
	// A subclass declared earlier in a file than its parent is registered
	// first; the full chain must still resolve once the parent arrives.
	RegisterClass("LateChild", "LateParent")
	RegisterClass("LateParent", "LateBase")
	RegisterClass("LateBase", "")

	assert.Equal(t, []string{"LateParent", "LateBase", "Object"}, Ancestors("LateChild"))

	child := &ClassRef{Name: "LateChild"}
	assert.True(t, IsSubtypeOf(child, &ClassRef{Name: "LateParent"}))
	assert.True(t, IsSubtypeOf(child, &ClassRef{Name: "LateBase"}))
	assert.True(t, IsSubtypeOf(child, &ClassRef{Name: "Object"}))
}

func TestAncestors_InheritanceCycleTerminates(t *testing.T) {
	RegisterClass("Ouro", "Boros")
	RegisterClass("Boros", "Ouro")

	assert.Equal(t, []string{"Boros"}, Ancestors("Ouro"))
}
