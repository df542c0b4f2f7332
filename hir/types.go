package hir

import (
	"fmt"
	"strings"
)

// PrimitiveType is a scalar with a fixed ABI width.
type PrimitiveType uint8

const (
	Bool PrimitiveType = iota
	Char               // 32-bit Unicode scalar value
	Byte
	I8
	U8
	I16
	U16
	I32
	U32
	I64
	U64
	I128
	U128
	Isize
	Usize
	F32
	F64
)

var primitiveNames = [...]string{
	Bool:  "bool",
	Char:  "char",
	Byte:  "byte",
	I8:    "i8",
	U8:    "u8",
	I16:   "i16",
	U16:   "u16",
	I32:   "i32",
	U32:   "u32",
	I64:   "i64",
	U64:   "u64",
	I128:  "i128",
	U128:  "u128",
	Isize: "isize",
	Usize: "usize",
	F32:   "f32",
	F64:   "f64",
}

func (p PrimitiveType) String() string {
	if int(p) < len(primitiveNames) {
		return primitiveNames[p]
	}
	return fmt.Sprintf("PrimitiveType(%d)", p)
}

// ParsePrimitive returns the primitive with the given source spelling
// ("u8", "bool", ...).
func ParsePrimitive(s string) (PrimitiveType, bool) {
	for i, name := range primitiveNames {
		if name == s {
			return PrimitiveType(i), true
		}
	}
	return 0, false
}

// Is128 reports whether p is a 128-bit integer.
func (p PrimitiveType) Is128() bool {
	return p == I128 || p == U128
}

type Mutability uint8

const (
	Immutable Mutability = iota
	Mutable
)

func (m Mutability) IsMutable() bool   { return m == Mutable }
func (m Mutability) IsImmutable() bool { return m == Immutable }

func (m Mutability) String() string {
	if m == Mutable {
		return "mut"
	}
	return "ref"
}

// Borrow is a borrowed reference with an optional named lifetime.
type Borrow struct {
	Lifetime   string
	Mutability Mutability
}

type Ownership uint8

const (
	// Owned handles are released by the receiving side.
	Owned Ownership = iota
	Borrowed
)

// OpaqueOwner describes how an opaque handle is held at a use site.
type OpaqueOwner struct {
	Ownership Ownership
	Borrow    Borrow // only meaningful for Borrowed
}

// Mutability returns the borrow mutability. The second result is false
// for owned handles, which carry no borrow.
func (o OpaqueOwner) Mutability() (Mutability, bool) {
	if o.Ownership == Owned {
		return 0, false
	}
	return o.Borrow.Mutability, true
}

type StringEncoding uint8

const (
	UnvalidatedUTF8 StringEncoding = iota
	UnvalidatedUTF16
	UTF8
)

func (e StringEncoding) String() string {
	switch e {
	case UnvalidatedUTF8:
		return "utf8-unvalidated"
	case UnvalidatedUTF16:
		return "utf16-unvalidated"
	case UTF8:
		return "utf8"
	default:
		return fmt.Sprintf("StringEncoding(%d)", e)
	}
}

// Type is a use of a type in a field, parameter or return position.
//
// The set of implementations is closed: [Primitive], [Opaque], [Struct],
// [Enum], [Slice], [Option], [ImplTrait] and [Callback]. Callbacks are
// only legal in argument position; nothing in this package enforces that,
// the lowering code does.
type Type interface {
	fmt.Stringer
	isType()
}

type Primitive struct {
	Prim PrimitiveType
}

// Opaque is a handle to a type whose layout is not part of the ABI.
type Opaque struct {
	ID       TypeID
	Owner    OpaqueOwner
	Optional bool
}

type Struct struct {
	ID TypeID
}

type Enum struct {
	ID TypeID
}

type SliceKind uint8

const (
	// SlicePrimitive is a contiguous view over primitives.
	SlicePrimitive SliceKind = iota
	// SliceStr is a borrowed string.
	SliceStr
	// SliceStrs is a view over an array of borrowed strings.
	SliceStrs
)

type Slice struct {
	Kind SliceKind
	// Borrow is nil for owned primitive slices. Unused by string slices.
	Borrow   *Borrow
	Prim     PrimitiveType  // SlicePrimitive only
	Encoding StringEncoding // SliceStr and SliceStrs only
}

// Option is an ABI-level optional value. It never wraps another Option,
// a Callback or an ImplTrait.
type Option struct {
	Inner Type
}

// ImplTrait is a trait object passed by the caller.
type ImplTrait struct {
	ID TraitID
}

type CallbackParam struct {
	Name string
	Ty   Type
}

// Callback is a function passed by the caller. Output is nil when the
// callback returns nothing.
type Callback struct {
	Params []CallbackParam
	Output Type
}

func (Primitive) isType() {}
func (Opaque) isType()    {}
func (Struct) isType()    {}
func (Enum) isType()      {}
func (Slice) isType()     {}
func (Option) isType()    {}
func (ImplTrait) isType() {}
func (Callback) isType()  {}

func (t Primitive) String() string { return t.Prim.String() }

func (t Opaque) String() string {
	var s string
	if t.Owner.Ownership == Owned {
		s = fmt.Sprintf("Box<opaque#%d>", t.ID)
	} else if t.Owner.Borrow.Mutability.IsMutable() {
		s = fmt.Sprintf("&mut opaque#%d", t.ID)
	} else {
		s = fmt.Sprintf("&opaque#%d", t.ID)
	}
	if t.Optional {
		s = "Option<" + s + ">"
	}
	return s
}

func (t Struct) String() string    { return fmt.Sprintf("struct#%d", t.ID) }
func (t Enum) String() string      { return fmt.Sprintf("enum#%d", t.ID) }
func (t Option) String() string    { return "DiplomatOption<" + t.Inner.String() + ">" }
func (t ImplTrait) String() string { return fmt.Sprintf("impl trait#%d", t.ID) }

func (t Slice) String() string {
	switch t.Kind {
	case SliceStr:
		return "&str(" + t.Encoding.String() + ")"
	case SliceStrs:
		return "&[&str](" + t.Encoding.String() + ")"
	default:
		if t.Borrow == nil {
			return "Box<[" + t.Prim.String() + "]>"
		}
		if t.Borrow.Mutability.IsMutable() {
			return "&mut [" + t.Prim.String() + "]"
		}
		return "&[" + t.Prim.String() + "]"
	}
}

func (t Callback) String() string {
	var b strings.Builder
	b.WriteString("impl Fn(")
	for i, p := range t.Params {
		if i != 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Ty.String())
	}
	b.WriteString(")")
	if t.Output != nil {
		b.WriteString(" -> ")
		b.WriteString(t.Output.String())
	}
	return b.String()
}
