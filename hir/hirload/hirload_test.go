package hirload

import (
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"

	"github.com/refaktor/mojogen/hir"
)

const universe = `
version: v1.2.0
types:
  - opaque: Canvas
    destructor: Canvas_destroy
    methods:
      - name: draw
        abi: Canvas_draw
        self: {opaque: Canvas, borrow: mut}
        params:
          - {name: at, type: {struct: Point}}
          - {name: data, type: {slice: u8, borrow: ref}}
          - name: done
            type:
              callback:
                params: [{name: ok, type: bool}]
        returns: {result: {ok: bool, err: {enum: Color}}}
      - name: title
        self: {opaque: Canvas, borrow: ref}
        returns: write
      - name: find
        params: [{name: key, type: str16}]
        returns: {option: {opaque: Canvas, borrow: ref, optional: true}}
      - name: legacy
        disable: true
  - struct: Point
    fields:
      - {name: x, type: f64}
      - {name: y, type: f64}
      - {name: tint, type: {option: {enum: Color}}}
  - enum: Color
    variants: [Red, {name: Blue, value: 4}, Green]
traits:
  - trait: Listener
    methods:
      - name: on_event
        self: true
        params: [{name: code, type: i32}]
        returns: bool
      - name: tick
`

func TestLoad(t *testing.T) {
	require := require.New(t)

	tcx, err := Load(strings.NewReader(universe))
	require.NoError(err)
	require.Equal(3, tcx.NumTypes())
	require.Equal(1, tcx.NumTraits())

	canvasID, ok := tcx.LookupType("Canvas")
	require.True(ok)
	pointID, _ := tcx.LookupType("Point")
	colorID, _ := tcx.LookupType("Color")

	canvas := tcx.ResolveType(canvasID).(*hir.OpaqueDef)
	require.Equal("Canvas_destroy", canvas.DtorABIName)
	require.Len(canvas.Methods, 4)

	draw := canvas.Methods[0]
	require.Equal("Canvas_draw", draw.ABIName)
	require.Equal(hir.Opaque{ID: canvasID, Owner: hir.OpaqueOwner{
		Ownership: hir.Borrowed, Borrow: hir.Borrow{Mutability: hir.Mutable},
	}}, draw.Self.Ty)
	require.Equal(hir.Struct{ID: pointID}, draw.Params[0].Ty)
	require.Equal(hir.Slice{Kind: hir.SlicePrimitive, Prim: hir.U8, Borrow: &hir.Borrow{Mutability: hir.Immutable}}, draw.Params[1].Ty)
	require.Equal(hir.Callback{Params: []hir.CallbackParam{{Name: "ok", Ty: hir.Primitive{Prim: hir.Bool}}}}, draw.Params[2].Ty)
	require.Equal(hir.ReturnResult(hir.Primitive{Prim: hir.Bool}, hir.Enum{ID: colorID}), draw.Output)

	title := canvas.Methods[1]
	require.Equal("Canvas_title", title.ABIName)
	require.Equal(hir.ReturnWrite(), title.Output)

	find := canvas.Methods[2]
	require.Nil(find.Self)
	require.Equal(hir.Slice{Kind: hir.SliceStr, Encoding: hir.UnvalidatedUTF16}, find.Params[0].Ty)
	require.Equal(hir.Nullable, find.Output.Kind)
	require.Equal(hir.Opaque{ID: canvasID, Optional: true, Owner: hir.OpaqueOwner{
		Ownership: hir.Borrowed, Borrow: hir.Borrow{Mutability: hir.Immutable},
	}}, find.Output.Success.Out)

	require.True(canvas.Methods[3].Attrs.Disable)
	require.Equal(hir.ReturnUnit(), canvas.Methods[3].Output)

	point := tcx.ResolveType(pointID).(*hir.StructDef)
	require.Equal([]string{"x", "y", "tint"}, []string{point.Fields[0].Name, point.Fields[1].Name, point.Fields[2].Name})
	require.Equal(hir.Option{Inner: hir.Enum{ID: colorID}}, point.Fields[2].Ty)

	color := tcx.ResolveType(colorID).(*hir.EnumDef)
	require.Equal([]hir.EnumVariant{
		{Name: "Red", Discriminant: 0},
		{Name: "Blue", Discriminant: 4},
		{Name: "Green", Discriminant: 5},
	}, color.Variants)

	listenerID, _ := tcx.LookupTrait("Listener")
	listener := tcx.ResolveTrait(listenerID)
	require.Len(listener.Methods, 2)
	require.True(listener.Methods[0].Self)
	require.Equal(hir.Primitive{Prim: hir.Bool}, listener.Methods[0].Output)
	require.Nil(listener.Methods[1].Output)
}

func TestLoadVersion(t *testing.T) {
	for _, tc := range []struct {
		doc  string
		want string
	}{
		{"types: []", "missing universe version"},
		{"version: one", "invalid universe version"},
		{"version: v2.0.0", "unsupported universe version v2.0.0"},
		{"", "empty universe document"},
	} {
		_, err := Load(strings.NewReader(tc.doc))
		require.ErrorContains(t, err, tc.want, tc.doc)
	}
}

func TestLoadErrors(t *testing.T) {
	require := require.New(t)

	_, err := Load(strings.NewReader(`
version: v1.0.0
types:
  - struct: A
    fields:
      - {name: b, type: {struct: Missing}}
      - {name: c, type: u256}
      - {name: d, type: {enum: A}}
  - struct: A
`))
	// Duplicates are reported before definitions are looked at.
	var mErr *multierror.Error
	require.ErrorAs(err, &mErr)
	require.Len(mErr.Errors, 1)
	require.ErrorContains(err, "duplicate type A")

	_, err = Load(strings.NewReader(`
version: v1.0.0
types:
  - struct: A
    fields:
      - {name: b, type: {struct: Missing}}
      - {name: c, type: u256}
      - {name: d, type: {enum: A}}
      - {name: e, type: {opaque: A, borrow: shared}}
`))
	require.ErrorAs(err, &mErr)
	require.Len(mErr.Errors, 5)
	require.ErrorContains(err, "A.b (line 6): unknown type Missing")
	require.ErrorContains(err, `A.c (line 7): unknown type "u256"`)
	require.ErrorContains(err, "A is not an enum")
	require.ErrorContains(err, "A is not an opaque type")
	require.ErrorContains(err, "borrow must be ref or mut")

	_, err = Load(strings.NewReader("version: v1.0.0\nunknown: 1\n"))
	require.ErrorContains(err, "decode universe")
}
