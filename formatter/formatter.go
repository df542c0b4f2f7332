/*
Package formatter turns type universe identifiers into Mojo spellings.

All identifiers from the universe should go through a [Formatter] before
they end up in generated code. This gives a single place for renames,
namespacing and reserved word handling. If an identifier is needed in a
context not covered here, add a method rather than formatting it at the
call site.
*/
package formatter

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/refaktor/mojogen/hir"
)

// ErrUnsupported marks requests for a representation the ABI does not
// define. Such errors abort generation of the current definition.
var ErrUnsupported = errors.New("unsupported ABI representation")

type Formatter struct {
	tcx       *hir.TypeContext
	rename    func(string) string
	namespace func(string) string
	reserved  map[string]struct{}
}

type Option func(*Formatter)

// WithRename sets the hook applied to every type and trait name.
func WithRename(fn func(name string) string) Option {
	return func(f *Formatter) { f.rename = fn }
}

// WithNamespace sets the hook applied to every name that is visible to
// consumers of the generated code.
func WithNamespace(fn func(name string) string) Option {
	return func(f *Formatter) { f.namespace = fn }
}

// WithReservedWords adds words that [Formatter.ParamName] must escape.
func WithReservedWords(words ...string) Option {
	return func(f *Formatter) {
		for _, w := range words {
			f.reserved[w] = struct{}{}
		}
	}
}

func New(tcx *hir.TypeContext, opts ...Option) *Formatter {
	f := &Formatter{
		tcx:       tcx,
		rename:    identity,
		namespace: identity,
		reserved:  make(map[string]struct{}, len(mojoKeywords)),
	}
	for _, w := range mojoKeywords {
		f.reserved[w] = struct{}{}
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func identity(s string) string { return s }

func (f *Formatter) TypeContext() *hir.TypeContext { return f.tcx }

// TypeName returns the name of a type for use in code, without namespace.
func (f *Formatter) TypeName(id hir.TypeID) string {
	return f.rename(f.tcx.ResolveType(id).GetName())
}

// TraitName returns the name of a trait for use in code, without namespace.
func (f *Formatter) TraitName(id hir.TraitID) string {
	return f.rename(f.tcx.ResolveTrait(id).Name)
}

func (f *Formatter) symbolName(sym hir.SymbolID) (string, error) {
	switch sym := sym.(type) {
	case hir.TypeID:
		return f.TypeName(sym), nil
	case hir.TraitID:
		return f.TraitName(sym), nil
	default:
		return "", errors.AssertionFailedf("expected a type or trait symbol, got %v", sym)
	}
}

// QualifiedName returns the name of a type or trait for use in any
// position visible to consumers.
func (f *Formatter) QualifiedName(sym hir.SymbolID) (string, error) {
	name, err := f.symbolName(sym)
	if err != nil {
		return "", err
	}
	return f.namespace(name), nil
}

// DeclFilePath returns the path of the declaration file of sym.
//
// Enums cannot be forward declared, yet their methods may need imports
// that would cycle back to them. Every type therefore gets a separate
// declaration file holding just its shape, imported by its implementation
// file. Users should not import it directly.
func (f *Formatter) DeclFilePath(sym hir.SymbolID) (string, error) {
	name, err := f.symbolName(sym)
	if err != nil {
		return "", err
	}
	return strings.ToLower(name) + declFileSuffix + fileExtension, nil
}

// ImplFilePath returns the path of the implementation file of sym.
func (f *Formatter) ImplFilePath(sym hir.SymbolID) (string, error) {
	name, err := f.symbolName(sym)
	if err != nil {
		return "", err
	}
	return strings.ToLower(name) + fileExtension, nil
}

// EnumVariantLabel flattens a variant into the single ABI namespace.
func (f *Formatter) EnumVariantLabel(typeName string, v hir.EnumVariant) string {
	return typeName + "_" + v.Name
}

// ParamName formats a field or parameter name.
func (f *Formatter) ParamName(ident string) string {
	if _, ok := f.reserved[ident]; ok {
		return ident + "_"
	}
	return ident
}

// Pointer wraps ident in a pointer type of the given mutability.
func (f *Formatter) Pointer(ident string, m hir.Mutability) string {
	if m.IsMutable() {
		return fmt.Sprintf(mutablePtrFmt, ident)
	}
	return fmt.Sprintf(immutablePtrFmt, ident)
}

// OptionalName returns the name of the ABI option type wrapping ty.
// tyName is the already formatted name of ty, namespaced or not.
func (f *Formatter) OptionalName(ty hir.Type, tyName string) (string, error) {
	switch ty := ty.(type) {
	case hir.Primitive:
		tag, err := f.PrimitiveDerivedName(ty.Prim)
		if err != nil {
			return "", err
		}
		return f.namespace(optionPrefix + tag), nil
	case hir.Struct, hir.Enum:
		return tyName + optionSuffix, nil
	default:
		return "", errors.Wrapf(ErrUnsupported, "%v (%s) is not allowed inside an option", ty, tyName)
	}
}

// PrimitiveSliceName returns the view type of a primitive slice. Views are
// mutable unless the slice is borrowed immutably.
func (f *Formatter) PrimitiveSliceName(borrow *hir.Borrow, p hir.PrimitiveType) (string, error) {
	tag, err := f.PrimitiveDerivedName(p)
	if err != nil {
		return "", err
	}
	mtb := mutViewSuffix
	if borrow != nil && borrow.Mutability.IsImmutable() {
		mtb = ""
	}
	return f.namespace(viewPrefix + tag + "View" + mtb), nil
}

func (f *Formatter) StrViewName(enc hir.StringEncoding) string {
	if enc == hir.UnvalidatedUTF16 {
		return f.namespace(str16ViewName)
	}
	return f.namespace(strViewName)
}

func (f *Formatter) StrsViewName(enc hir.StringEncoding) string {
	if enc == hir.UnvalidatedUTF16 {
		return f.namespace(strs16ViewName)
	}
	return f.namespace(strsViewName)
}

// WriteName returns the name of the shared write sink type.
func (f *Formatter) WriteName() string {
	return f.namespace(writeName)
}
