/*
Package lower generates the declaration and implementation units of a
single definition.

A [Context] is bound to one definition. Its Gen* methods lower the
definition's shape and methods to Mojo spellings, registering the
declaration files of every referenced type as includes of the unit being
built. Soft problems (uses of disabled types) are pushed to the
diagnostic store; anything that cannot be represented on the ABI is
returned as an error and no unit is produced.
*/
package lower

import (
	"github.com/cockroachdb/errors"

	"github.com/refaktor/mojogen/diag"
	"github.com/refaktor/mojogen/formatter"
	"github.com/refaktor/mojogen/hir"
)

// ErrUnsupported marks errors caused by a construct with no ABI
// representation. It is the same sentinel as [formatter.ErrUnsupported].
var ErrUnsupported = formatter.ErrUnsupported

// Context holds everything needed to generate one definition.
type Context struct {
	TCX       *hir.TypeContext
	Formatter *formatter.Formatter
	Errors    *diag.Store
	// ID is the definition being generated.
	ID hir.SymbolID
	// DeclPath and ImplPath are the output paths of ID.
	DeclPath string
	ImplPath string
}

// NewContext creates a Context for id and precomputes its file paths.
// id must be a type or a trait.
func NewContext(tcx *hir.TypeContext, f *formatter.Formatter, errs *diag.Store, id hir.SymbolID) (*Context, error) {
	declPath, err := f.DeclFilePath(id)
	if err != nil {
		return nil, err
	}
	implPath, err := f.ImplFilePath(id)
	if err != nil {
		return nil, err
	}
	return &Context{
		TCX:       tcx,
		Formatter: f,
		Errors:    errs,
		ID:        id,
		DeclPath:  declPath,
		ImplPath:  implPath,
	}, nil
}

func (c *Context) typeID() (hir.TypeID, error) {
	id, ok := c.ID.(hir.TypeID)
	if !ok {
		return 0, errors.AssertionFailedf("expected %v to be a type", c.ID)
	}
	return id, nil
}

func (c *Context) traitID() (hir.TraitID, error) {
	id, ok := c.ID.(hir.TraitID)
	if !ok {
		return 0, errors.AssertionFailedf("expected %v to be a trait", c.ID)
	}
	return id, nil
}

// diagName is the name of the definition as shown in diagnostics.
func (c *Context) diagName() string {
	return c.TCX.SymbolName(c.ID)
}
