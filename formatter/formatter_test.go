package formatter

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refaktor/mojogen/hir"
)

var allPrimitives = []hir.PrimitiveType{
	hir.Bool, hir.Char, hir.Byte, hir.I8, hir.U8, hir.I16, hir.U16, hir.I32,
	hir.U32, hir.I64, hir.U64, hir.I128, hir.U128, hir.Isize, hir.Usize,
	hir.F32, hir.F64,
}

func newTestFormatter(t *testing.T, opts ...Option) (*Formatter, hir.TypeID, hir.TypeID, hir.TraitID) {
	t.Helper()
	tcx := hir.NewTypeContext()
	st := tcx.AddType(&hir.StructDef{Name: "MyStruct"})
	en := tcx.AddType(&hir.EnumDef{Name: "Color"})
	tr := tcx.AddTrait(&hir.TraitDef{Name: "Tester"})
	return New(tcx, opts...), st, en, tr
}

func TestPrimitiveTables(t *testing.T) {
	f, _, _, _ := newTestFormatter(t)
	for _, p := range allPrimitives {
		abi, errAbi := f.Primitive(p)
		tag, errTag := f.PrimitiveDerivedName(p)
		if p.Is128() {
			assert.True(t, errors.Is(errAbi, ErrUnsupported), p.String())
			assert.True(t, errors.Is(errTag, ErrUnsupported), p.String())
			continue
		}
		require.NoError(t, errAbi, p.String())
		require.NoError(t, errTag, p.String())
		assert.NotEmpty(t, abi)
		assert.NotEmpty(t, tag)

		// Both projections come from the same row, so the result tag of
		// the ABI spelling is always the derived name.
		resTag, ok := f.ResultTag(abi)
		assert.True(t, ok, abi)
		assert.Equal(t, tag, resTag, abi)
	}

	abi, err := f.Primitive(hir.I8)
	require.NoError(t, err)
	assert.Equal(t, "c_int8", abi)
	tag, _ := f.ResultTag(abi)
	assert.Equal(t, "I8", tag)
	abi, _ = f.Primitive(hir.Isize)
	tag, _ = f.ResultTag(abi)
	assert.Equal(t, "Isize", tag)
}

func TestFilePaths(t *testing.T) {
	require := require.New(t)
	f, st, en, tr := newTestFormatter(t)

	for _, sym := range []hir.SymbolID{st, en, tr} {
		decl, err := f.DeclFilePath(sym)
		require.NoError(err)
		impl, err := f.ImplFilePath(sym)
		require.NoError(err)
		require.NotEqual(decl, impl)
		require.Equal(strings.ToLower(decl), decl)
		require.Equal(strings.ToLower(impl), impl)

		decl2, _ := f.DeclFilePath(sym)
		require.Equal(decl, decl2)
	}

	decl, _ := f.DeclFilePath(st)
	impl, _ := f.ImplFilePath(st)
	require.Equal("mystruct_d.mojo", decl)
	require.Equal("mystruct.mojo", impl)

	_, err := f.DeclFilePath(hir.FunctionID(0))
	require.True(errors.HasAssertionFailure(err))
	_, err = f.QualifiedName(hir.FunctionID(0))
	require.True(errors.HasAssertionFailure(err))
}

func TestRenameAndNamespaceHooks(t *testing.T) {
	require := require.New(t)
	f, st, _, tr := newTestFormatter(t,
		WithRename(strings.ToUpper),
		WithNamespace(func(s string) string { return "ns_" + s }),
	)

	require.Equal("MYSTRUCT", f.TypeName(st))
	require.Equal("TESTER", f.TraitName(tr))
	q, err := f.QualifiedName(st)
	require.NoError(err)
	require.Equal("ns_MYSTRUCT", q)
	// Paths are derived from the renamed, unqualified name.
	decl, _ := f.DeclFilePath(st)
	require.Equal("mystruct_d.mojo", decl)
	require.Equal("ns_DiplomatWrite", f.WriteName())
	require.Equal("ns_DiplomatStringView", f.StrViewName(hir.UTF8))
}

func TestResultTagNamespaced(t *testing.T) {
	require := require.New(t)
	f, _, _, _ := newTestFormatter(t, WithNamespace(func(s string) string { return "ns_" + s }))

	tag, ok := f.ResultTag(f.StrViewName(hir.UTF8))
	require.True(ok)
	require.Equal("Strings", tag)
	tag, ok = f.ResultTag(f.StrViewName(hir.UnvalidatedUTF16))
	require.True(ok)
	require.Equal("Strings16", tag)
	tag, ok = f.ResultTag("c_bool")
	require.True(ok)
	require.Equal("Bool", tag)
	// Only the spelling the formatter produces is recognized.
	_, ok = f.ResultTag("DiplomatStringView")
	require.False(ok)
}

func TestEnumVariantLabel(t *testing.T) {
	f, _, _, _ := newTestFormatter(t)
	assert.Equal(t, "Color_Red", f.EnumVariantLabel("Color", hir.EnumVariant{Name: "Red"}))
}

func TestParamName(t *testing.T) {
	f, _, _, _ := newTestFormatter(t, WithReservedWords("handle"))
	assert.Equal(t, "count", f.ParamName("count"))
	assert.Equal(t, "fn_", f.ParamName("fn"))
	assert.Equal(t, "lib_", f.ParamName("lib"))
	assert.Equal(t, "handle_", f.ParamName("handle"))
	assert.Equal(t, "self", f.ParamName("self"))
}

func TestPointer(t *testing.T) {
	f, _, _, _ := newTestFormatter(t)
	mut := f.Pointer("Foo", hir.Mutable)
	imm := f.Pointer("Foo", hir.Immutable)
	assert.Equal(t, "UnsafePointer[Foo]", mut)
	assert.Equal(t, "UnsafePointer[Foo, mut=False]", imm)
	assert.NotEqual(t, mut, imm)
}

func TestOptionalName(t *testing.T) {
	require := require.New(t)
	f, st, en, tr := newTestFormatter(t)

	name, err := f.OptionalName(hir.Primitive{Prim: hir.U32}, "c_uint32")
	require.NoError(err)
	require.Equal("OptionU32", name)

	name, err = f.OptionalName(hir.Struct{ID: st}, "MyStruct")
	require.NoError(err)
	require.Equal("MyStruct_option", name)

	name, err = f.OptionalName(hir.Enum{ID: en}, "Color")
	require.NoError(err)
	require.Equal("Color_option", name)

	for _, ty := range []hir.Type{
		hir.Slice{Kind: hir.SliceStr},
		hir.Opaque{ID: st},
		hir.ImplTrait{ID: tr},
		hir.Callback{},
	} {
		_, err := f.OptionalName(ty, "x")
		require.True(errors.Is(err, ErrUnsupported), ty.String())
	}

	_, err = f.OptionalName(hir.Primitive{Prim: hir.U128}, "x")
	require.True(errors.Is(err, ErrUnsupported))
}

func TestViewNames(t *testing.T) {
	require := require.New(t)
	f, _, _, _ := newTestFormatter(t)

	name, err := f.PrimitiveSliceName(&hir.Borrow{Mutability: hir.Immutable}, hir.U8)
	require.NoError(err)
	require.Equal("DiplomatU8View", name)
	name, _ = f.PrimitiveSliceName(&hir.Borrow{Mutability: hir.Mutable}, hir.F64)
	require.Equal("DiplomatF64ViewMut", name)
	name, _ = f.PrimitiveSliceName(nil, hir.I16)
	require.Equal("DiplomatI16ViewMut", name)
	_, err = f.PrimitiveSliceName(nil, hir.I128)
	require.Error(err)

	require.Equal("DiplomatString16View", f.StrViewName(hir.UnvalidatedUTF16))
	require.Equal("DiplomatStringView", f.StrViewName(hir.UnvalidatedUTF8))
	require.Equal("DiplomatStrings16View", f.StrsViewName(hir.UnvalidatedUTF16))
	require.Equal("DiplomatStringsView", f.StrsViewName(hir.UTF8))

	tag, ok := f.ResultTag("DiplomatStringView")
	require.True(ok)
	require.Equal("Strings", tag)
	_, ok = f.ResultTag("DiplomatU8View")
	require.False(ok)
}
