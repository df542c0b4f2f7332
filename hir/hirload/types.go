package hirload

import (
	"gopkg.in/yaml.v3"

	"github.com/refaktor/mojogen/hir"
)

var encodings = map[string]hir.StringEncoding{
	"":                  hir.UnvalidatedUTF8,
	"utf8-unvalidated":  hir.UnvalidatedUTF8,
	"utf16-unvalidated": hir.UnvalidatedUTF16,
	"utf8":              hir.UTF8,
}

// scalarTypes are the non-primitive types that may be written as a plain
// scalar.
var scalarTypes = map[string]hir.Type{
	"str":    hir.Slice{Kind: hir.SliceStr, Encoding: hir.UnvalidatedUTF8},
	"str16":  hir.Slice{Kind: hir.SliceStr, Encoding: hir.UnvalidatedUTF16},
	"strs":   hir.Slice{Kind: hir.SliceStrs, Encoding: hir.UnvalidatedUTF8},
	"strs16": hir.Slice{Kind: hir.SliceStrs, Encoding: hir.UnvalidatedUTF16},
}

// typeOf converts a type node. On error it records the error and
// returns a placeholder so that loading continues.
func (l *loader) typeOf(n *yaml.Node, where string) hir.Type {
	placeholder := hir.Primitive{Prim: hir.Bool}
	switch n.Kind {
	case yaml.ScalarNode:
		if p, ok := hir.ParsePrimitive(n.Value); ok {
			return hir.Primitive{Prim: p}
		}
		if ty, ok := scalarTypes[n.Value]; ok {
			return ty
		}
		l.errorf("%v (line %d): unknown type %q", where, n.Line, n.Value)
		return placeholder
	case yaml.MappingNode:
		if len(n.Content) < 2 {
			l.errorf("%v (line %d): empty type mapping", where, n.Line)
			return placeholder
		}
	default:
		l.errorf("%v (line %d): expected a type", where, n.Line)
		return placeholder
	}

	fields := mapping(n)
	kind := n.Content[0].Value
	val := n.Content[1]
	switch kind {
	case "struct", "enum":
		id, ok := l.tcx.LookupType(val.Value)
		if !ok {
			l.errorf("%v (line %d): unknown type %v", where, val.Line, val.Value)
			return placeholder
		}
		def := l.tcx.ResolveType(id)
		if kind == "struct" {
			if _, isStruct := def.(*hir.StructDef); !isStruct {
				l.errorf("%v (line %d): %v is not a struct", where, val.Line, val.Value)
			}
			return hir.Struct{ID: id}
		}
		if _, isEnum := def.(*hir.EnumDef); !isEnum {
			l.errorf("%v (line %d): %v is not an enum", where, val.Line, val.Value)
		}
		return hir.Enum{ID: id}
	case "opaque":
		id, ok := l.tcx.LookupType(val.Value)
		if !ok {
			l.errorf("%v (line %d): unknown type %v", where, val.Line, val.Value)
			return placeholder
		}
		if _, isOpaque := l.tcx.ResolveType(id).(*hir.OpaqueDef); !isOpaque {
			l.errorf("%v (line %d): %v is not an opaque type", where, val.Line, val.Value)
		}
		ty := hir.Opaque{ID: id, Optional: fields["optional"] == "true"}
		switch fields["borrow"] {
		case "":
			ty.Owner.Ownership = hir.Owned
		case "ref":
			ty.Owner = hir.OpaqueOwner{Ownership: hir.Borrowed, Borrow: hir.Borrow{Mutability: hir.Immutable}}
		case "mut":
			ty.Owner = hir.OpaqueOwner{Ownership: hir.Borrowed, Borrow: hir.Borrow{Mutability: hir.Mutable}}
		default:
			l.errorf("%v (line %d): borrow must be ref or mut", where, val.Line)
		}
		return ty
	case "slice":
		p, ok := hir.ParsePrimitive(val.Value)
		if !ok {
			l.errorf("%v (line %d): slice of unknown primitive %q", where, val.Line, val.Value)
			return placeholder
		}
		ty := hir.Slice{Kind: hir.SlicePrimitive, Prim: p}
		switch fields["borrow"] {
		case "":
		case "ref":
			ty.Borrow = &hir.Borrow{Mutability: hir.Immutable}
		case "mut":
			ty.Borrow = &hir.Borrow{Mutability: hir.Mutable}
		default:
			l.errorf("%v (line %d): borrow must be ref or mut", where, val.Line)
		}
		return ty
	case "str", "strs":
		enc, ok := encodings[val.Value]
		if !ok {
			l.errorf("%v (line %d): unknown encoding %q", where, val.Line, val.Value)
		}
		if kind == "str" {
			return hir.Slice{Kind: hir.SliceStr, Encoding: enc}
		}
		return hir.Slice{Kind: hir.SliceStrs, Encoding: enc}
	case "option":
		return hir.Option{Inner: l.typeOf(val, where)}
	case "trait":
		id, ok := l.tcx.LookupTrait(val.Value)
		if !ok {
			l.errorf("%v (line %d): unknown trait %v", where, val.Line, val.Value)
			return placeholder
		}
		return hir.ImplTrait{ID: id}
	case "callback":
		var cb struct {
			Params  []namedType `yaml:"params"`
			Returns yaml.Node   `yaml:"returns"`
		}
		if err := val.Decode(&cb); err != nil {
			l.errorf("%v (line %d): %v", where, val.Line, err)
			return placeholder
		}
		ty := hir.Callback{}
		for _, p := range cb.Params {
			ty.Params = append(ty.Params, hir.CallbackParam{Name: p.Name, Ty: l.typeOf(&p.Type, where+" "+p.Name)})
		}
		if !isZero(&cb.Returns) {
			ty.Output = l.typeOf(&cb.Returns, where+" callback return")
		}
		return ty
	default:
		l.errorf("%v (line %d): unknown type kind %q", where, n.Line, kind)
		return placeholder
	}
}

// mapping returns the scalar values of a mapping node by key.
func mapping(n *yaml.Node) map[string]string {
	m := make(map[string]string, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		m[n.Content[i].Value] = n.Content[i+1].Value
	}
	return m
}

// returnType converts a method's returns node; an absent node is unit.
func (l *loader) returnType(n *yaml.Node, where string) hir.ReturnType {
	where += " return"
	if isZero(n) {
		return hir.ReturnUnit()
	}
	if n.Kind == yaml.ScalarNode && n.Value == "write" {
		return hir.ReturnWrite()
	}
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return hir.ReturnOut(l.typeOf(n, where))
	}
	switch n.Content[0].Value {
	case "result":
		var r struct {
			Ok  yaml.Node `yaml:"ok"`
			Err yaml.Node `yaml:"err"`
		}
		if err := n.Content[1].Decode(&r); err != nil {
			l.errorf("%v (line %d): %v", where, n.Line, err)
			return hir.ReturnUnit()
		}
		ret := hir.ReturnType{Kind: hir.Fallible, Success: l.success(&r.Ok, where)}
		if !isZero(&r.Err) {
			ret.Err = l.typeOf(&r.Err, where+" error")
		}
		return ret
	case "option":
		return hir.ReturnType{Kind: hir.Nullable, Success: l.success(n.Content[1], where)}
	default:
		return hir.ReturnOut(l.typeOf(n, where))
	}
}

func (l *loader) success(n *yaml.Node, where string) hir.SuccessType {
	switch {
	case isZero(n):
		return hir.SuccessType{Kind: hir.SuccessUnit}
	case n.Kind == yaml.ScalarNode && n.Value == "write":
		return hir.SuccessType{Kind: hir.SuccessWrite}
	default:
		return hir.SuccessType{Kind: hir.SuccessOut, Out: l.typeOf(n, where)}
	}
}
