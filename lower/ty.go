package lower

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/refaktor/mojogen/hir"
	"github.com/refaktor/mojogen/render"
	"github.com/refaktor/mojogen/unit"
)

const (
	callbackWrapperPrefix = "DiplomatCallback_"
	traitWrapperPrefix    = "DiplomatTraitStruct_"
	callbackBindSuffix    = "_cb_wrap"
	traitBindSuffix       = "_trait_wrap"
)

// TraitWrapperName returns the name of the struct a trait object is
// passed as.
func TraitWrapperName(traitName string) string {
	return traitWrapperPrefix + traitName
}

// paramDecl is one entry of a lowered parameter list.
type paramDecl struct {
	Ty   string
	Name string
}

func (c *Context) checkDisabledType(id hir.TypeID, name string) {
	if c.TCX.ResolveType(id).GetAttrs().Disable {
		c.Errors.PushError("Found usage of disabled type " + name)
	}
}

func (c *Context) checkDisabledTrait(id hir.TraitID, name string) {
	if c.TCX.ResolveTrait(id).Attrs.Disable {
		c.Errors.PushError("Found usage of disabled trait " + name)
	}
}

// namedType lowers a reference to a named type or trait: it checks the
// disabled flag and adds the declaration path of sym to u.
func (c *Context) namedType(sym hir.SymbolID, u *unit.Unit) (string, error) {
	name, err := c.Formatter.QualifiedName(sym)
	if err != nil {
		return "", err
	}
	switch sym := sym.(type) {
	case hir.TypeID:
		c.checkDisabledType(sym, name)
	case hir.TraitID:
		c.checkDisabledTrait(sym, name)
	}
	path, err := c.Formatter.DeclFilePath(sym)
	if err != nil {
		return "", err
	}
	u.AddInclude(path)
	return name, nil
}

// GenTyName returns the spelling of ty in a field or parameter position,
// adding every declaration file it depends on to u.
//
// Callbacks have no spelling of their own; they are only legal as
// method parameters, which go through genTyDecl.
func (c *Context) GenTyName(ty hir.Type, u *unit.Unit) (string, error) {
	switch ty := ty.(type) {
	case hir.Primitive:
		return c.Formatter.Primitive(ty.Prim)
	case hir.Opaque:
		name, err := c.namedType(ty.ID, u)
		if err != nil {
			return "", err
		}
		// Owned handles are released through the pointer, so they are
		// always mutable.
		m, ok := ty.Owner.Mutability()
		if !ok {
			m = hir.Mutable
		}
		return c.Formatter.Pointer(name, m), nil
	case hir.Struct:
		return c.namedType(ty.ID, u)
	case hir.Enum:
		return c.namedType(ty.ID, u)
	case hir.Slice:
		switch ty.Kind {
		case hir.SlicePrimitive:
			return c.Formatter.PrimitiveSliceName(ty.Borrow, ty.Prim)
		case hir.SliceStr:
			return c.Formatter.StrViewName(ty.Encoding), nil
		case hir.SliceStrs:
			return c.Formatter.StrsViewName(ty.Encoding), nil
		default:
			return "", errors.AssertionFailedf("unknown slice kind %d", ty.Kind)
		}
	case hir.Option:
		if _, ok := ty.Inner.(hir.Option); ok {
			return "", errors.Wrapf(ErrUnsupported, "nested option %v", ty)
		}
		inner, err := c.GenTyName(ty.Inner, u)
		if err != nil {
			return "", err
		}
		return c.Formatter.OptionalName(ty.Inner, inner)
	case hir.ImplTrait:
		return c.namedType(ty.ID, u)
	case hir.Callback:
		return "", errors.Wrapf(ErrUnsupported, "callback %v is only allowed as a method parameter", ty)
	default:
		return "", errors.AssertionFailedf("unknown type variant %T", ty)
	}
}

// genTyDecl lowers a field or parameter named ident.
//
// methodABIName is the ABI name of the enclosing method and cbs collects
// callback wrappers; both are unset for struct fields, where callbacks
// are not allowed.
func (c *Context) genTyDecl(ty hir.Type, ident string, u *unit.Unit, methodABIName string, cbs *[]render.Callback) (paramDecl, error) {
	name := c.Formatter.ParamName(ident)
	switch ty := ty.(type) {
	case hir.Callback:
		if cbs == nil {
			return paramDecl{}, errors.Wrapf(ErrUnsupported, "callback field %v", ident)
		}
		// Parameter names are only unique within one method.
		wrapper := callbackWrapperPrefix + methodABIName + "_" + ident
		cb, err := c.genCallbackWrapper(wrapper, ty, u)
		if err != nil {
			return paramDecl{}, errors.Wrapf(err, "parameter %v", ident)
		}
		*cbs = append(*cbs, cb)
		return paramDecl{Ty: wrapper, Name: name + callbackBindSuffix}, nil
	case hir.ImplTrait:
		trt, err := c.GenTyName(ty, u)
		if err != nil {
			return paramDecl{}, err
		}
		return paramDecl{Ty: TraitWrapperName(trt), Name: name + traitBindSuffix}, nil
	default:
		tyName, err := c.GenTyName(ty, u)
		if err != nil {
			return paramDecl{}, errors.Wrapf(err, "parameter %v", ident)
		}
		return paramDecl{Ty: tyName, Name: name}, nil
	}
}

// functionPointer lowers the parameters and output of a callback or
// vtable entry. The returned parameter list starts with the context
// pointer.
func (c *Context) functionPointer(params []hir.Type, output hir.Type, u *unit.Unit) (paramsTypes, returnType string, err error) {
	types := make([]string, 0, len(params)+1)
	types = append(types, render.ContextPtr)
	for _, p := range params {
		s, err := c.GenTyName(p, u)
		if err != nil {
			return "", "", err
		}
		types = append(types, s)
	}
	returnType = render.NoneType
	if output != nil {
		returnType, err = c.GenTyName(output, u)
		if err != nil {
			return "", "", err
		}
	}
	return strings.Join(types, ", "), returnType, nil
}

func (c *Context) genCallbackWrapper(name string, cb hir.Callback, u *unit.Unit) (render.Callback, error) {
	params := make([]hir.Type, len(cb.Params))
	for i, p := range cb.Params {
		params[i] = p.Ty
	}
	paramsTypes, returnType, err := c.functionPointer(params, cb.Output, u)
	if err != nil {
		return render.Callback{}, err
	}
	return render.Callback{
		Name:        name,
		ParamsTypes: paramsTypes,
		ReturnType:  returnType,
	}, nil
}
