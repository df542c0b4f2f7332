package hir

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeContext(t *testing.T) {
	require := require.New(t)

	tcx := NewTypeContext()
	foo := tcx.AddType(&OpaqueDef{Name: "Foo", DtorABIName: "Foo_destroy"})
	bar := tcx.AddType(&StructDef{Name: "Bar"})
	tr := tcx.AddTrait(&TraitDef{Name: "Tester"})
	fn := tcx.AddFunction("free_fn")

	require.Equal("Foo", tcx.ResolveType(foo).GetName())
	require.Equal("Tester", tcx.ResolveTrait(tr).Name)

	id, ok := tcx.LookupType("Bar")
	require.True(ok)
	require.Equal(bar, id)
	_, ok = tcx.LookupType("Tester")
	require.False(ok)

	require.Equal("Foo", tcx.SymbolName(foo))
	require.Equal("Tester", tcx.SymbolName(tr))
	require.Equal("free_fn", tcx.SymbolName(fn))

	_, isStruct := tcx.ResolveStruct(foo)
	require.False(isStruct)
	st, isStruct := tcx.ResolveStruct(bar)
	require.True(isStruct)
	require.Equal("Bar", st.Name)

	var names []string
	for _, def := range tcx.AllTypes() {
		names = append(names, def.GetName())
	}
	require.Equal([]string{"Foo", "Bar"}, names)
}

func TestTypeContextPanics(t *testing.T) {
	tcx := NewTypeContext()
	tcx.AddType(&EnumDef{Name: "E"})
	assert.Panics(t, func() { tcx.AddType(&StructDef{Name: "E"}) })
	assert.Panics(t, func() { tcx.ResolveType(7) })
	assert.Panics(t, func() { tcx.ResolveTrait(0) })
	assert.Panics(t, func() { tcx.SetType(0, &EnumDef{Name: "Other"}) })
}

func TestParsePrimitive(t *testing.T) {
	for _, p := range []PrimitiveType{Bool, Char, Byte, I8, U8, I16, U16, I32, U32, I64, U64, I128, U128, Isize, Usize, F32, F64} {
		got, ok := ParsePrimitive(p.String())
		assert.True(t, ok, p.String())
		assert.Equal(t, p, got)
	}
	_, ok := ParsePrimitive("u7")
	assert.False(t, ok)
	assert.True(t, I128.Is128())
	assert.False(t, slices.ContainsFunc([]PrimitiveType{I64, U64, Usize}, PrimitiveType.Is128))
}

func TestOpaqueOwner(t *testing.T) {
	_, ok := OpaqueOwner{Ownership: Owned}.Mutability()
	assert.False(t, ok)

	m, ok := OpaqueOwner{Ownership: Borrowed, Borrow: Borrow{Mutability: Mutable}}.Mutability()
	assert.True(t, ok)
	assert.True(t, m.IsMutable())
}

func TestTypeStrings(t *testing.T) {
	assert.Equal(t, "DiplomatOption<u8>", Option{Inner: Primitive{Prim: U8}}.String())
	assert.Equal(t, "&[u16]", Slice{Kind: SlicePrimitive, Prim: U16, Borrow: &Borrow{}}.String())
	assert.Equal(t, "Box<[u16]>", Slice{Kind: SlicePrimitive, Prim: U16}.String())
	assert.Equal(t, "impl Fn(i32) -> bool", Callback{
		Params: []CallbackParam{{Name: "x", Ty: Primitive{Prim: I32}}},
		Output: Primitive{Prim: Bool},
	}.String())
}
