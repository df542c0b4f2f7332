package hir

import "fmt"

// TypeID identifies an opaque, struct or enum definition in a [TypeContext].
type TypeID int

// TraitID identifies a trait definition in a [TypeContext].
type TraitID int

// FunctionID identifies a free function. Free functions have no output
// files of their own; the id exists so that code resolving symbols
// generically can be handed something that is neither a type nor a trait.
type FunctionID int

// SymbolID is one of [TypeID], [TraitID] or [FunctionID].
type SymbolID interface {
	fmt.Stringer
	isSymbolID()
}

func (TypeID) isSymbolID()     {}
func (TraitID) isSymbolID()    {}
func (FunctionID) isSymbolID() {}

func (id TypeID) String() string     { return fmt.Sprintf("type#%d", int(id)) }
func (id TraitID) String() string    { return fmt.Sprintf("trait#%d", int(id)) }
func (id FunctionID) String() string { return fmt.Sprintf("function#%d", int(id)) }

type Attrs struct {
	// Disable excludes the item from generation. Uses of a disabled type
	// in a generated signature are reported.
	Disable bool
}

// TypeDef is one of [*OpaqueDef], [*StructDef] or [*EnumDef].
type TypeDef interface {
	GetName() string
	GetAttrs() Attrs
	GetMethods() []*Method
	isTypeDef()
}

type OpaqueDef struct {
	Name    string
	Attrs   Attrs
	Methods []*Method
	// DtorABIName is the exported symbol releasing an owned handle.
	DtorABIName string
}

type StructField struct {
	Name string
	Ty   Type
}

type StructDef struct {
	Name    string
	Attrs   Attrs
	Fields  []StructField
	Methods []*Method
	// Out marks structs that may only be returned, never passed in.
	Out bool
}

type EnumVariant struct {
	Name         string
	Discriminant int64
}

type EnumDef struct {
	Name     string
	Attrs    Attrs
	Variants []EnumVariant
	Methods  []*Method
}

func (d *OpaqueDef) GetName() string       { return d.Name }
func (d *OpaqueDef) GetAttrs() Attrs       { return d.Attrs }
func (d *OpaqueDef) GetMethods() []*Method { return d.Methods }
func (d *StructDef) GetName() string       { return d.Name }
func (d *StructDef) GetAttrs() Attrs       { return d.Attrs }
func (d *StructDef) GetMethods() []*Method { return d.Methods }
func (d *EnumDef) GetName() string         { return d.Name }
func (d *EnumDef) GetAttrs() Attrs         { return d.Attrs }
func (d *EnumDef) GetMethods() []*Method   { return d.Methods }

func (*OpaqueDef) isTypeDef() {}
func (*StructDef) isTypeDef() {}
func (*EnumDef) isTypeDef()   {}

// TraitMethod is a single entry of a trait's vtable.
type TraitMethod struct {
	Name   string
	Self   bool // whether the source method declares a receiver
	Params []Param
	Output Type // nil if nothing is returned
}

type TraitDef struct {
	Name    string
	Attrs   Attrs
	Methods []*TraitMethod
}

type Param struct {
	Name string
	Ty   Type
}

// ParamSelf is the receiver of a method.
type ParamSelf struct {
	Ty Type
}

type Method struct {
	Name    string
	ABIName string
	Attrs   Attrs
	Self    *ParamSelf // nil for static methods
	Params  []Param
	Output  ReturnType
}

type SuccessKind uint8

const (
	SuccessUnit SuccessKind = iota
	// SuccessWrite means the payload is written into a write sink
	// passed by the caller.
	SuccessWrite
	SuccessOut
)

type SuccessType struct {
	Kind SuccessKind
	Out  Type // SuccessOut only
}

type ReturnKind uint8

const (
	Infallible ReturnKind = iota
	Fallible
	Nullable
)

type ReturnType struct {
	Kind    ReturnKind
	Success SuccessType
	// Err is the error payload of a Fallible return, nil for none.
	Err Type
}

// Convenience constructors, mostly useful in tests and loaders.

func ReturnUnit() ReturnType { return ReturnType{} }

func ReturnWrite() ReturnType {
	return ReturnType{Success: SuccessType{Kind: SuccessWrite}}
}

func ReturnOut(t Type) ReturnType {
	return ReturnType{Success: SuccessType{Kind: SuccessOut, Out: t}}
}

// ReturnResult builds a Fallible return. A nil ok means unit.
func ReturnResult(ok, err Type) ReturnType {
	r := ReturnType{Kind: Fallible, Err: err}
	if ok != nil {
		r.Success = SuccessType{Kind: SuccessOut, Out: ok}
	}
	return r
}

// ReturnOption builds a Nullable return. A nil ok means unit.
func ReturnOption(ok Type) ReturnType {
	r := ReturnType{Kind: Nullable}
	if ok != nil {
		r.Success = SuccessType{Kind: SuccessOut, Out: ok}
	}
	return r
}
