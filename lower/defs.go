package lower

import (
	"github.com/cockroachdb/errors"

	"github.com/refaktor/mojogen/hir"
	"github.com/refaktor/mojogen/render"
	"github.com/refaktor/mojogen/unit"
)

// selfTypeName returns the qualified name of the definition being
// generated together with its type id.
func (c *Context) selfTypeName() (hir.TypeID, string, error) {
	id, err := c.typeID()
	if err != nil {
		return 0, "", err
	}
	name, err := c.Formatter.QualifiedName(id)
	if err != nil {
		return 0, "", err
	}
	return id, name, nil
}

func (c *Context) renderDecl(data render.Data) (*unit.Unit, error) {
	u := unit.New(c.DeclPath)
	if err := render.Into(u, data); err != nil {
		return nil, err
	}
	u.StripSelf(c.DeclPath, c.ImplPath)
	return u, nil
}

// GenEnumDef generates the declaration unit of an enum.
func (c *Context) GenEnumDef(def *hir.EnumDef) (*unit.Unit, error) {
	id, name, err := c.selfTypeName()
	if err != nil {
		return nil, err
	}
	optName, err := c.Formatter.OptionalName(hir.Enum{ID: id}, name)
	if err != nil {
		return nil, err
	}
	data := render.Enum{
		Name:       name,
		OptionName: optName,
		Variants:   make([]render.EnumVariant, len(def.Variants)),
	}
	for i, v := range def.Variants {
		data.Variants[i] = render.EnumVariant{
			Label: c.Formatter.EnumVariantLabel(name, v),
			Value: v.Discriminant,
		}
	}
	return c.renderDecl(data)
}

// GenOpaqueDef generates the declaration unit of an opaque type. Opaque
// types have no visible fields.
func (c *Context) GenOpaqueDef(def *hir.OpaqueDef) (*unit.Unit, error) {
	_, name, err := c.selfTypeName()
	if err != nil {
		return nil, err
	}
	return c.renderDecl(render.Opaque{Name: name})
}

// GenStructDef generates the declaration unit of a struct. Fields are
// emitted in declaration order.
func (c *Context) GenStructDef(def *hir.StructDef) (*unit.Unit, error) {
	id, name, err := c.selfTypeName()
	if err != nil {
		return nil, err
	}
	release := c.Errors.SetContextType(c.diagName())
	defer release()

	u := unit.New(c.DeclPath)
	data := render.Struct{
		Name:   name,
		Fields: make([]render.Field, len(def.Fields)),
	}
	data.OptionName, err = c.Formatter.OptionalName(hir.Struct{ID: id}, name)
	if err != nil {
		return nil, err
	}
	for i, field := range def.Fields {
		decl, err := c.genTyDecl(field.Ty, field.Name, u, "", nil)
		if err != nil {
			return nil, errors.Wrapf(err, "%v", c.Errors.Current())
		}
		data.Fields[i] = render.Field{Name: decl.Name, Type: decl.Ty}
	}
	if err := render.Into(u, data); err != nil {
		return nil, err
	}
	u.StripSelf(c.DeclPath, c.ImplPath)
	return u, nil
}

// GenTraitDef generates the declaration unit of a trait: its vtable
// struct and the struct trait objects are passed as.
//
// Every vtable entry takes the context pointer first, whether or not the
// trait method has a receiver.
func (c *Context) GenTraitDef(def *hir.TraitDef) (*unit.Unit, error) {
	id, err := c.traitID()
	if err != nil {
		return nil, err
	}
	name, err := c.Formatter.QualifiedName(id)
	if err != nil {
		return nil, err
	}
	release := c.Errors.SetContextType(c.diagName())
	defer release()

	u := unit.New(c.DeclPath)
	data := render.Trait{
		Name:        name,
		WrapperName: TraitWrapperName(name),
		ContextPtr:  render.ContextPtr,
		Methods:     make([]render.TraitMethod, len(def.Methods)),
	}
	for i, m := range def.Methods {
		params := make([]hir.Type, len(m.Params))
		for j, p := range m.Params {
			params[j] = p.Ty
		}
		paramsTypes, returnType, err := c.functionPointer(params, m.Output, u)
		if err != nil {
			return nil, errors.Wrapf(err, "%v::%v", c.diagName(), m.Name)
		}
		data.Methods[i] = render.TraitMethod{
			Name:        m.Name,
			ParamsTypes: paramsTypes,
			ReturnType:  returnType,
		}
	}
	if err := render.Into(u, data); err != nil {
		return nil, err
	}
	u.StripSelf(c.DeclPath, c.ImplPath)
	return u, nil
}
