// Package hirload decodes a serialized type universe into a
// [hir.TypeContext].
//
// The input is a YAML document:
//
//	version: v1.0.0
//	types:
//	  - struct: Point
//	    fields:
//	      - {name: x, type: f64}
//	  - enum: Color
//	    variants: [Red, {name: Blue, value: 4}]
//	  - opaque: Canvas
//	    destructor: Canvas_destroy
//	    methods:
//	      - name: draw
//	        abi: Canvas_draw
//	        self: {opaque: Canvas, borrow: mut}
//	        params:
//	          - {name: at, type: {struct: Point}}
//	        returns: {result: {ok: bool, err: {enum: Color}}}
//	traits:
//	  - trait: Listener
//	    methods:
//	      - {name: on_event, self: true, params: [{name: code, type: i32}]}
//
// A type is either a scalar (a primitive name, "str", "str16" or
// "strs") or a mapping whose first key selects the variant: struct,
// enum, opaque, slice, str, strs, option, trait or callback. Returns are
// a type, "write", or a mapping with a single "result" or "option" key.
//
// Type and trait names may be referenced before they are defined.
package hirload

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/refaktor/mojogen/hir"
)

// SupportedMajor is the only schema major version understood.
const SupportedMajor = "v1"

type document struct {
	Version string     `yaml:"version"`
	Types   []typeDef  `yaml:"types"`
	Traits  []traitDef `yaml:"traits"`
}

type typeDef struct {
	Struct     string      `yaml:"struct"`
	Enum       string      `yaml:"enum"`
	Opaque     string      `yaml:"opaque"`
	Disable    bool        `yaml:"disable"`
	Out        bool        `yaml:"out"`
	Destructor string      `yaml:"destructor"`
	Fields     []namedType `yaml:"fields"`
	Variants   []variant   `yaml:"variants"`
	Methods    []method    `yaml:"methods"`
}

type traitDef struct {
	Trait   string        `yaml:"trait"`
	Disable bool          `yaml:"disable"`
	Methods []traitMethod `yaml:"methods"`
}

type namedType struct {
	Name string    `yaml:"name"`
	Type yaml.Node `yaml:"type"`
}

type variant struct {
	Name  string `yaml:"name"`
	Value *int64 `yaml:"value"`
}

// UnmarshalYAML accepts a bare variant name as well as a mapping.
func (v *variant) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		v.Name = node.Value
		return nil
	}
	type plain variant
	return node.Decode((*plain)(v))
}

type method struct {
	Name    string      `yaml:"name"`
	ABI     string      `yaml:"abi"`
	Disable bool        `yaml:"disable"`
	Self    yaml.Node   `yaml:"self"`
	Params  []namedType `yaml:"params"`
	Returns yaml.Node   `yaml:"returns"`
}

type traitMethod struct {
	Name    string      `yaml:"name"`
	Self    bool        `yaml:"self"`
	Params  []namedType `yaml:"params"`
	Returns yaml.Node   `yaml:"returns"`
}

// LoadFile reads and decodes the universe at path.
func LoadFile(path string) (*hir.TypeContext, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tcx, err := Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load %v", path)
	}
	return tcx, nil
}

// Load decodes a universe. All definition errors are reported at once
// in a *multierror.Error.
func Load(r io.Reader) (*hir.TypeContext, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty universe document")
		}
		return nil, errors.Wrap(err, "decode universe")
	}
	if err := checkVersion(doc.Version); err != nil {
		return nil, err
	}

	l := &loader{tcx: hir.NewTypeContext()}
	l.declare(&doc)
	if l.err != nil {
		return nil, l.err
	}
	l.define(&doc)
	if l.err != nil {
		return nil, l.err
	}
	return l.tcx, nil
}

func checkVersion(v string) error {
	if v == "" {
		return errors.WithHint(errors.New("missing universe version"), "add e.g. \"version: v1.0.0\"")
	}
	if !semver.IsValid(v) {
		return errors.Newf("invalid universe version %q", v)
	}
	if semver.Major(v) != SupportedMajor {
		return errors.WithHintf(
			errors.Newf("unsupported universe version %v", v),
			"this generator reads %v.x.y universes", SupportedMajor,
		)
	}
	return nil
}

type loader struct {
	tcx *hir.TypeContext
	err error
}

func (l *loader) errorf(format string, args ...any) {
	l.err = multierror.Append(l.err, errors.Newf(format, args...))
}

func (d *typeDef) kindAndName() (kind, name string, ok bool) {
	n := 0
	for _, kn := range [...][2]string{{"struct", d.Struct}, {"enum", d.Enum}, {"opaque", d.Opaque}} {
		if kn[1] != "" {
			kind, name = kn[0], kn[1]
			n++
		}
	}
	return kind, name, n == 1
}

// declare registers every name with an empty definition so that
// definitions may reference each other in any order.
func (l *loader) declare(doc *document) {
	for i := range doc.Types {
		d := &doc.Types[i]
		kind, name, ok := d.kindAndName()
		if !ok {
			l.errorf("types[%d]: exactly one of struct, enum or opaque must be set", i)
			continue
		}
		if _, dup := l.tcx.LookupType(name); dup {
			l.errorf("types[%d]: duplicate type %v", i, name)
			continue
		}
		switch kind {
		case "struct":
			l.tcx.AddType(&hir.StructDef{Name: name})
		case "enum":
			l.tcx.AddType(&hir.EnumDef{Name: name})
		case "opaque":
			l.tcx.AddType(&hir.OpaqueDef{Name: name})
		}
	}
	for i, d := range doc.Traits {
		if d.Trait == "" {
			l.errorf("traits[%d]: missing trait name", i)
			continue
		}
		if _, dup := l.tcx.LookupTrait(d.Trait); dup {
			l.errorf("traits[%d]: duplicate trait %v", i, d.Trait)
			continue
		}
		l.tcx.AddTrait(&hir.TraitDef{Name: d.Trait})
	}
}

func (l *loader) define(doc *document) {
	for i := range doc.Types {
		d := &doc.Types[i]
		kind, name, _ := d.kindAndName()
		id, _ := l.tcx.LookupType(name)
		attrs := hir.Attrs{Disable: d.Disable}
		methods := l.methods(name, d.Methods)
		switch kind {
		case "struct":
			def := &hir.StructDef{Name: name, Attrs: attrs, Out: d.Out, Methods: methods}
			for _, f := range d.Fields {
				def.Fields = append(def.Fields, hir.StructField{
					Name: f.Name,
					Ty:   l.typeOf(&f.Type, name+"."+f.Name),
				})
			}
			l.tcx.SetType(id, def)
		case "enum":
			def := &hir.EnumDef{Name: name, Attrs: attrs, Methods: methods}
			next := int64(0)
			for _, v := range d.Variants {
				if v.Value != nil {
					next = *v.Value
				}
				def.Variants = append(def.Variants, hir.EnumVariant{Name: v.Name, Discriminant: next})
				next++
			}
			l.tcx.SetType(id, def)
		case "opaque":
			l.tcx.SetType(id, &hir.OpaqueDef{
				Name:        name,
				Attrs:       attrs,
				Methods:     methods,
				DtorABIName: d.Destructor,
			})
		}
	}
	for _, d := range doc.Traits {
		id, _ := l.tcx.LookupTrait(d.Trait)
		def := l.tcx.ResolveTrait(id)
		def.Attrs = hir.Attrs{Disable: d.Disable}
		for _, m := range d.Methods {
			where := d.Trait + "::" + m.Name
			tm := &hir.TraitMethod{Name: m.Name, Self: m.Self, Params: l.params(where, m.Params)}
			if !isZero(&m.Returns) {
				tm.Output = l.typeOf(&m.Returns, where+" return")
			}
			def.Methods = append(def.Methods, tm)
		}
	}
}

func (l *loader) methods(typeName string, ms []method) []*hir.Method {
	res := make([]*hir.Method, 0, len(ms))
	for _, m := range ms {
		where := typeName + "::" + m.Name
		hm := &hir.Method{
			Name:    m.Name,
			ABIName: m.ABI,
			Attrs:   hir.Attrs{Disable: m.Disable},
			Params:  l.params(where, m.Params),
			Output:  l.returnType(&m.Returns, where),
		}
		if hm.ABIName == "" {
			hm.ABIName = typeName + "_" + m.Name
		}
		if !isZero(&m.Self) {
			hm.Self = &hir.ParamSelf{Ty: l.typeOf(&m.Self, where+" self")}
		}
		res = append(res, hm)
	}
	return res
}

func (l *loader) params(where string, ps []namedType) []hir.Param {
	res := make([]hir.Param, 0, len(ps))
	for _, p := range ps {
		res = append(res, hir.Param{Name: p.Name, Ty: l.typeOf(&p.Type, where+" "+p.Name)})
	}
	return res
}

func isZero(n *yaml.Node) bool {
	return n.Kind == 0 || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}
