package formatter

import (
	"github.com/cockroachdb/errors"

	"github.com/refaktor/mojogen/hir"
)

type primitiveInfo struct {
	abi string // ABI scalar spelling
	tag string // short name used inside derived names (options, views, results)
}

// primitives is the single source for both primitive projections and for
// the result tag table. 128-bit integers are deliberately absent.
var primitives = map[hir.PrimitiveType]primitiveInfo{
	hir.Bool:  {"c_bool", "Bool"},
	hir.Char:  {"c_char32", "Char"},
	hir.Byte:  {"c_uint8", "U8"},
	hir.I8:    {"c_int8", "I8"},
	hir.U8:    {"c_uint8", "U8"},
	hir.I16:   {"c_int16", "I16"},
	hir.U16:   {"c_uint16", "U16"},
	hir.I32:   {"c_int32", "I32"},
	hir.U32:   {"c_uint32", "U32"},
	hir.I64:   {"c_int64", "I64"},
	hir.U64:   {"c_uint64", "U64"},
	hir.Isize: {"c_intptr", "Isize"},
	hir.Usize: {"c_size_t", "Usize"},
	hir.F32:   {"c_float", "F32"},
	hir.F64:   {"c_double", "F64"},
}

const (
	strViewName     = "DiplomatStringView"
	str16ViewName   = "DiplomatString16View"
	strsViewName    = "DiplomatStringsView"
	strs16ViewName  = "DiplomatStrings16View"
	writeName       = "DiplomatWrite"
	optionPrefix    = "Option"
	viewPrefix      = "Diplomat"
	mutViewSuffix   = "Mut"
	optionSuffix    = "_option"
	declFileSuffix  = "_d"
	fileExtension   = ".mojo"
	mutablePtrFmt   = "UnsafePointer[%s]"
	immutablePtrFmt = "UnsafePointer[%s, mut=False]"
)

// WriteParamName is the name of the synthesized write sink parameter.
const WriteParamName = "write"

// resultTags maps every primitive ABI spelling a successful result
// payload may lower to onto the tag used in the shared result type name.
var resultTags = func() map[string]string {
	m := map[string]string{}
	for _, info := range primitives {
		if prev, ok := m[info.abi]; ok && prev != info.tag {
			panic("programmer error: primitive table maps " + info.abi + " to two tags")
		}
		m[info.abi] = info.tag
	}
	return m
}()

// viewResultTags holds the result tags of the string views, keyed by
// their name before namespacing.
var viewResultTags = map[string]string{
	strViewName:   "Strings",
	str16ViewName: "Strings16",
}

func unsupported128(p hir.PrimitiveType) error {
	return errors.Wrapf(ErrUnsupported, "%v has no ABI representation", p)
}

// Primitive returns the ABI scalar spelling of p.
func (f *Formatter) Primitive(p hir.PrimitiveType) (string, error) {
	info, ok := primitives[p]
	if !ok {
		return "", unsupported128(p)
	}
	return info.abi, nil
}

// PrimitiveDerivedName returns the short name of p used inside derived
// type names, e.g. "U8" in "DiplomatU8View" and "OptionU8".
func (f *Formatter) PrimitiveDerivedName(p hir.PrimitiveType) (string, error) {
	info, ok := primitives[p]
	if !ok {
		return "", unsupported128(p)
	}
	return info.tag, nil
}

// ResultTag returns the tag of the shared result type carrying a payload
// spelled abiName. String views are matched in their namespaced form, as
// returned by StrViewName.
func (f *Formatter) ResultTag(abiName string) (string, bool) {
	if tag, ok := resultTags[abiName]; ok {
		return tag, true
	}
	for view, tag := range viewResultTags {
		if f.namespace(view) == abiName {
			return tag, true
		}
	}
	return "", false
}
