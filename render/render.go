// Package render turns [unit.Unit] values into final Mojo source text.
//
// Structural bodies (enum, struct, opaque, trait and impl blocks) are
// written into a unit with [Into]; [File] wraps the finished body with
// the header comment and import lines.
package render

import (
	"embed"
	"io"
	"strings"
	"text/template"

	"github.com/cockroachdb/errors"

	"github.com/refaktor/mojogen/textutils"
	"github.com/refaktor/mojogen/unit"
)

// NoneType is the spelling of "no value" in return and callback
// positions.
const NoneType = "None"

// ContextPtr is the opaque context pointer prepended to every callback
// and vtable entry.
const ContextPtr = "UnsafePointer[NoneType]"

// EmptyBody replaces the body of a unit nothing was written to.
const EmptyBody = "# No Content\n\n"

// BaseImports are emitted at the top of every generated file.
var BaseImports = []string{
	"from memory import UnsafePointer",
	"from sys.ffi import DLHandle",
	"from .diplomat_runtime import *",
}

//go:embed templates/*.mojo.tmpl
var templateFS embed.FS

var templateFuncMap = template.FuncMap{
	"none": func() string { return NoneType },
	// Strips the file extension, giving the module name to import.
	"module": func(path string) string {
		return strings.TrimSuffix(path, ".mojo")
	},
	// Prepends the library handle every generated function takes.
	"withLib": func(params string) string {
		if params == "" {
			return "lib: DLHandle"
		}
		return "lib: DLHandle, " + params
	},
}

var templates = template.Must(template.New("mojo").Funcs(templateFuncMap).ParseFS(templateFS, "templates/*.mojo.tmpl"))

// Data is implemented by the values that can be passed to [Into].
type Data interface {
	templateName() string
}

type EnumVariant struct {
	Label string
	Value int64
}

type Enum struct {
	Name       string
	OptionName string
	Variants   []EnumVariant
}

type Field struct {
	Name string
	Type string
}

type Struct struct {
	Name       string
	OptionName string
	Fields     []Field
}

type Opaque struct {
	Name string
}

// TraitMethod is one vtable entry.
type TraitMethod struct {
	Name string
	// ParamsTypes already starts with the context pointer.
	ParamsTypes string
	ReturnType  string
}

type Trait struct {
	Name        string
	WrapperName string
	ContextPtr  string
	Methods     []TraitMethod
}

// Method is a lowered method, ready to be rendered.
type Method struct {
	ABIName    string
	MethodName string
	ReturnTy   string
	// Params is the typed declaration list ("a: c_int32, b: c_bool").
	Params string
	// ParamNames is the bare argument list ("a, b").
	ParamNames string
}

// Callback describes a synthesized callback wrapper struct.
type Callback struct {
	Name string
	// ParamsTypes already starts with the context pointer.
	ParamsTypes string
	ReturnType  string
}

type Impl struct {
	TypeName   string
	ContextPtr string
	Methods    []Method
	Callbacks  []Callback
	// DtorName is the ABI name of the destructor, empty for types
	// without one.
	DtorName       string
	DtorMethodName string
	DtorSelfTy     string
}

func (Enum) templateName() string   { return "enum" }
func (Struct) templateName() string { return "struct" }
func (Opaque) templateName() string { return "opaque" }
func (Trait) templateName() string  { return "trait" }
func (Impl) templateName() string   { return "impl" }

// Into executes the template belonging to data, writing into w.
func Into(w io.Writer, data Data) error {
	name := data.templateName()
	tmpl := templates.Lookup(name)
	if tmpl == nil {
		return errors.AssertionFailedf("no template named %q", name)
	}
	if err := tmpl.Execute(w, data); err != nil {
		return errors.Wrapf(err, "render %v", name)
	}
	return nil
}

// Guard derives the header guard token from a unit path.
func Guard(path string) string {
	guard := strings.ReplaceAll(path, "_d.mojo", "_D_MOJO")
	guard = strings.ReplaceAll(guard, ".mojo", "_MOJO")
	return strings.ToUpper(guard)
}

type baseData struct {
	Guard       string
	BaseImports []string
	DeclInclude string
	Includes    []string
	Body        string
}

// File renders the complete text of u. The result always ends with
// exactly one newline.
func File(u *unit.Unit) (string, error) {
	body := EmptyBody
	if u.Body() != "" {
		body = strings.ReplaceAll(u.Body(), "\t", u.Indent)
	}
	var b strings.Builder
	err := templates.ExecuteTemplate(&b, "base", baseData{
		Guard:       Guard(u.Path),
		BaseImports: BaseImports,
		DeclInclude: u.DeclInclude,
		Includes:    u.Includes(),
		Body:        body,
	})
	if err != nil {
		return "", errors.Wrapf(err, "render %v", u.Path)
	}
	return textutils.WithFinalNewline(b.String()), nil
}
