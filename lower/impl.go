package lower

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/refaktor/mojogen/formatter"
	"github.com/refaktor/mojogen/hir"
	"github.com/refaktor/mojogen/render"
	"github.com/refaktor/mojogen/unit"
)

// UnitResultTag names the shared result type of methods whose success
// carries no payload.
const UnitResultTag = "Unit"

// GenImpl generates the implementation unit of a type definition,
// holding its methods. Disabled methods are skipped.
func (c *Context) GenImpl(def hir.TypeDef) (*unit.Unit, error) {
	_, name, err := c.selfTypeName()
	if err != nil {
		return nil, err
	}

	u := unit.New(c.ImplPath)
	data := render.Impl{
		TypeName:   name,
		ContextPtr: render.ContextPtr,
	}
	// Wrapper names join the method ABI name and the parameter name with
	// an underscore, so two methods of one type can produce the same one.
	wrappers := map[string]string{}
	for _, m := range def.GetMethods() {
		if m.Attrs.Disable {
			continue
		}
		method, cbs, err := c.genMethodInContext(m, u)
		if err != nil {
			return nil, err
		}
		for _, cb := range cbs {
			if prev, ok := wrappers[cb.Name]; ok {
				return nil, errors.Wrapf(ErrUnsupported,
					"callback wrapper %v is generated by both %v and %v", cb.Name, prev, m.ABIName)
			}
			wrappers[cb.Name] = m.ABIName
		}
		data.Methods = append(data.Methods, method)
		data.Callbacks = append(data.Callbacks, cbs...)
	}
	if opaque, ok := def.(*hir.OpaqueDef); ok && opaque.DtorABIName != "" {
		data.DtorName = opaque.DtorABIName
		data.DtorMethodName = strings.ToLower(opaque.DtorABIName)
		data.DtorSelfTy = c.Formatter.Pointer(name, hir.Mutable)
	}
	if err := render.Into(u, data); err != nil {
		return nil, err
	}
	c.finishImpl(u)
	return u, nil
}

// GenTraitImpl generates the implementation unit of a trait. Traits are
// implemented on the foreign side, so the unit only links back to the
// declaration.
func (c *Context) GenTraitImpl(def *hir.TraitDef) (*unit.Unit, error) {
	if _, err := c.traitID(); err != nil {
		return nil, err
	}
	u := unit.New(c.ImplPath)
	c.finishImpl(u)
	return u, nil
}

func (c *Context) finishImpl(u *unit.Unit) {
	u.DeclInclude = c.DeclPath
	// Receivers of the unit's own type add its own paths.
	u.StripSelf(c.DeclPath, c.ImplPath)
}

// genMethodInContext runs genMethod with the diagnostic context set to
// the method. Errors are wrapped with the same context.
func (c *Context) genMethodInContext(m *hir.Method, u *unit.Unit) (render.Method, []render.Callback, error) {
	release := c.Errors.SetContextMethod(c.diagName(), m.Name)
	defer release()

	method, cbs, err := c.genMethod(m, u)
	if err != nil {
		return render.Method{}, nil, errors.Wrapf(err, "%v", c.Errors.Current())
	}
	return method, cbs, nil
}

func (c *Context) writeParam() paramDecl {
	return paramDecl{
		Ty:   c.Formatter.Pointer(c.Formatter.WriteName(), hir.Mutable),
		Name: formatter.WriteParamName,
	}
}

func (c *Context) genMethod(m *hir.Method, u *unit.Unit) (render.Method, []render.Callback, error) {
	abiName := m.ABIName
	var decls []paramDecl
	var cbs []render.Callback

	if m.Self != nil {
		decl, err := c.genTyDecl(m.Self.Ty, "self", u, abiName, &cbs)
		if err != nil {
			return render.Method{}, nil, err
		}
		decls = append(decls, decl)
	}
	for _, p := range m.Params {
		decl, err := c.genTyDecl(p.Ty, p.Name, u, abiName, &cbs)
		if err != nil {
			return render.Method{}, nil, err
		}
		decls = append(decls, decl)
	}

	var returnTy string
	var err error
	out := m.Output
	switch out.Kind {
	case hir.Infallible:
		switch out.Success.Kind {
		case hir.SuccessUnit:
			returnTy = render.NoneType
		case hir.SuccessWrite:
			decls = append(decls, c.writeParam())
			returnTy = render.NoneType
		case hir.SuccessOut:
			returnTy, err = c.GenTyName(out.Success.Out, u)
		default:
			err = errors.AssertionFailedf("unknown success kind %d", out.Success.Kind)
		}
	case hir.Fallible, hir.Nullable:
		// A fallible result without error payload and a nullable value
		// look the same on the ABI.
		var ok hir.Type
		switch out.Success.Kind {
		case hir.SuccessUnit:
		case hir.SuccessWrite:
			decls = append(decls, c.writeParam())
		case hir.SuccessOut:
			ok = out.Success.Out
		default:
			err = errors.AssertionFailedf("unknown success kind %d", out.Success.Kind)
		}
		if err == nil {
			returnTy, err = c.genResultTy(ok, u)
		}
	default:
		err = errors.AssertionFailedf("unknown return kind %d", out.Kind)
	}
	if err != nil {
		return render.Method{}, nil, errors.Wrap(err, "return type")
	}

	params := make([]string, len(decls))
	names := make([]string, len(decls))
	for i, d := range decls {
		params[i] = d.Name + ": " + d.Ty
		names[i] = d.Name
	}
	return render.Method{
		ABIName:    abiName,
		MethodName: strings.ToLower(abiName),
		ReturnTy:   returnTy,
		Params:     strings.Join(params, ", "),
		ParamNames: strings.Join(names, ", "),
	}, cbs, nil
}

// elideEmptyStruct returns nil for a struct without fields, which takes
// no space on the ABI.
func (c *Context) elideEmptyStruct(ty hir.Type) hir.Type {
	st, ok := ty.(hir.Struct)
	if !ok {
		return ty
	}
	def, ok := c.TCX.ResolveStruct(st.ID)
	if ok && len(def.Fields) == 0 {
		return nil
	}
	return ty
}

// genResultTy returns the name of the shared result type for a fallible
// or nullable method. The name depends only on the success payload; the
// error payload never appears in it, so Result<T, E> and Option<T> share
// a name. The runtime defines one layout per name.
func (c *Context) genResultTy(ok hir.Type, u *unit.Unit) (string, error) {
	ok = c.elideEmptyStruct(ok)

	tag := UnitResultTag
	if ok != nil {
		okName, err := c.GenTyName(ok, u)
		if err != nil {
			return "", err
		}
		var found bool
		tag, found = c.Formatter.ResultTag(okName)
		if !found {
			return "", errors.Mark(
				errors.AssertionFailedf("no result type for success payload %q", okName),
				ErrUnsupported,
			)
		}
	}
	return "Option" + tag + "Result", nil
}
