/*
Package hir holds the type universe consumed by the binding backend.

A [TypeContext] is built once (see package hirload) and is read-only
afterwards, so it may be shared by concurrent generation tasks. Every
definition is addressed by a stable id; resolving an id that was not
handed out by the same context is a programmer error and panics.
*/
package hir

import (
	"fmt"
	"iter"
)

type TypeContext struct {
	types     []TypeDef
	traits    []*TraitDef
	functions []string
	byName    map[string]TypeID
	traitName map[string]TraitID
}

func NewTypeContext() *TypeContext {
	return &TypeContext{
		byName:    map[string]TypeID{},
		traitName: map[string]TraitID{},
	}
}

// AddType registers def and returns its id. Names must be unique across
// types.
func (tcx *TypeContext) AddType(def TypeDef) TypeID {
	if _, ok := tcx.byName[def.GetName()]; ok {
		panic(fmt.Sprintf("programmer error: duplicate type name %q", def.GetName()))
	}
	id := TypeID(len(tcx.types))
	tcx.types = append(tcx.types, def)
	tcx.byName[def.GetName()] = id
	return id
}

// AddTrait registers def and returns its id.
func (tcx *TypeContext) AddTrait(def *TraitDef) TraitID {
	if _, ok := tcx.traitName[def.Name]; ok {
		panic(fmt.Sprintf("programmer error: duplicate trait name %q", def.Name))
	}
	id := TraitID(len(tcx.traits))
	tcx.traits = append(tcx.traits, def)
	tcx.traitName[def.Name] = id
	return id
}

// AddFunction registers a free function name.
func (tcx *TypeContext) AddFunction(name string) FunctionID {
	tcx.functions = append(tcx.functions, name)
	return FunctionID(len(tcx.functions) - 1)
}

// SetType replaces the definition of an already registered id. Loaders use
// it to fill in definitions after every name has been reserved, so that
// definitions may refer to each other regardless of order.
func (tcx *TypeContext) SetType(id TypeID, def TypeDef) {
	old := tcx.ResolveType(id)
	if old.GetName() != def.GetName() {
		panic(fmt.Sprintf("programmer error: SetType renames %q to %q", old.GetName(), def.GetName()))
	}
	tcx.types[id] = def
}

func (tcx *TypeContext) ResolveType(id TypeID) TypeDef {
	if id < 0 || int(id) >= len(tcx.types) {
		panic(fmt.Sprintf("programmer error: unknown %v", id))
	}
	return tcx.types[id]
}

func (tcx *TypeContext) ResolveTrait(id TraitID) *TraitDef {
	if id < 0 || int(id) >= len(tcx.traits) {
		panic(fmt.Sprintf("programmer error: unknown %v", id))
	}
	return tcx.traits[id]
}

func (tcx *TypeContext) LookupType(name string) (TypeID, bool) {
	id, ok := tcx.byName[name]
	return id, ok
}

func (tcx *TypeContext) LookupTrait(name string) (TraitID, bool) {
	id, ok := tcx.traitName[name]
	return id, ok
}

// AllTypes iterates over all type definitions in registration order.
func (tcx *TypeContext) AllTypes() iter.Seq2[TypeID, TypeDef] {
	return func(yield func(TypeID, TypeDef) bool) {
		for i, def := range tcx.types {
			if !yield(TypeID(i), def) {
				return
			}
		}
	}
}

// AllTraits iterates over all trait definitions in registration order.
func (tcx *TypeContext) AllTraits() iter.Seq2[TraitID, *TraitDef] {
	return func(yield func(TraitID, *TraitDef) bool) {
		for i, def := range tcx.traits {
			if !yield(TraitID(i), def) {
				return
			}
		}
	}
}

func (tcx *TypeContext) NumTypes() int  { return len(tcx.types) }
func (tcx *TypeContext) NumTraits() int { return len(tcx.traits) }

// SymbolName returns the source name of a symbol, for diagnostics.
func (tcx *TypeContext) SymbolName(id SymbolID) string {
	switch id := id.(type) {
	case TypeID:
		return tcx.ResolveType(id).GetName()
	case TraitID:
		return tcx.ResolveTrait(id).Name
	case FunctionID:
		if int(id) < len(tcx.functions) {
			return tcx.functions[id]
		}
	}
	return id.String()
}

// ResolveStruct returns the struct definition behind id, if it is one.
func (tcx *TypeContext) ResolveStruct(id TypeID) (*StructDef, bool) {
	def, ok := tcx.ResolveType(id).(*StructDef)
	return def, ok
}
