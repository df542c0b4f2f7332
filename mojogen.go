package mojogen

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/sync/errgroup"

	"github.com/refaktor/mojogen/config"
	"github.com/refaktor/mojogen/config/rules"
	"github.com/refaktor/mojogen/diag"
	"github.com/refaktor/mojogen/digraphutils"
	"github.com/refaktor/mojogen/formatter"
	"github.com/refaktor/mojogen/hir"
	"github.com/refaktor/mojogen/lower"
	"github.com/refaktor/mojogen/render"
	"github.com/refaktor/mojogen/unit"
)

// File is a generated Mojo source file.
type File struct {
	// Path relative to the output directory.
	Path    string
	Content string
	// Includes are the paths of the files this one imports.
	Includes []string
}

// Failure is a definition that could not be generated.
type Failure struct {
	Symbol rules.Symbol
	Err    error
}

type KindStats struct {
	Total     int
	Generated int
	Skipped   int
	Failed    int
}

type Result struct {
	// Files sorted by path.
	Files []File
	// Diagnostics in definition order.
	Diagnostics []diag.Diagnostic
	Failures    []Failure
	Stats       map[rules.SymbolKind]*KindStats
}

// Err returns all failures as one error, or nil.
func (r *Result) Err() error {
	var err *multierror.Error
	for _, f := range r.Failures {
		err = multierror.Append(err, f.Err)
	}
	return err.ErrorOrNil()
}

// File returns the generated file at path.
func (r *Result) File(path string) (File, bool) {
	i, ok := slices.BinarySearchFunc(r.Files, path, func(f File, path string) int {
		return strings.Compare(f.Path, path)
	})
	if !ok {
		return File{}, false
	}
	return r.Files[i], true
}

// DanglingIncludes returns the paths that are imported by a generated
// file, directly or not, but are not generated themselves. Such imports
// come from references to skipped definitions.
func (r *Result) DanglingIncludes() []string {
	files := make(map[string]File, len(r.Files))
	roots := make([]string, len(r.Files))
	for i, f := range r.Files {
		files[f.Path] = f
		roots[i] = f.Path
	}
	return digraphutils.Unresolved(roots,
		func(path string) []string { return files[path].Includes },
		func(path string) bool {
			_, ok := files[path]
			return ok
		},
	)
}

// IncludeGraphDOT returns graphviz DOT code of the include graph.
func (r *Result) IncludeGraphDOT() []byte {
	paths := make([]string, len(r.Files))
	includes := make(map[string][]string, len(r.Files))
	for i, f := range r.Files {
		paths[i] = f.Path
		includes[f.Path] = f.Includes
	}
	return digraphutils.DOTCode(paths,
		func(path string) []string { return includes[path] },
		"mojogen", "node [shape=box];",
		func(path string) string { return fmt.Sprintf("[label=%q]", path) },
	)
}

// WriteFiles writes all generated files into dir, creating it if needed.
func (r *Result) WriteFiles(dir string) error {
	if err := os.MkdirAll(dir, 0777); err != nil {
		return errors.Wrap(err, "create output directory")
	}
	for _, f := range r.Files {
		if err := os.WriteFile(filepath.Join(dir, f.Path), []byte(f.Content), 0666); err != nil {
			return errors.Wrapf(err, "write %v", f.Path)
		}
	}
	return nil
}

// Stale returns the paths of the generated files that are missing from
// dir or differ from their contents on disk.
func (r *Result) Stale(dir string) ([]string, error) {
	var stale []string
	for _, f := range r.Files {
		data, err := os.ReadFile(filepath.Join(dir, f.Path))
		if errors.Is(err, os.ErrNotExist) {
			stale = append(stale, f.Path)
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read %v", f.Path)
		}
		if string(data) != f.Content {
			stale = append(stale, f.Path)
		}
	}
	return stale, nil
}

// WriteStats writes a table of per kind generation counts to w.
func (r *Result) WriteStats(w io.Writer) {
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"Kind", "Generated/Total", "Skipped", "Failed"})
	var total KindStats
	for _, kind := range []rules.SymbolKind{rules.KindStruct, rules.KindEnum, rules.KindOpaque, rules.KindTrait} {
		s := r.Stats[kind]
		if s == nil {
			s = &KindStats{}
		}
		tbl.Append([]string{
			kind.String(),
			fmt.Sprintf("%v/%v", s.Generated, s.Total),
			fmt.Sprint(s.Skipped),
			fmt.Sprint(s.Failed),
		})
		total.Total += s.Total
		total.Generated += s.Generated
		total.Skipped += s.Skipped
		total.Failed += s.Failed
	}
	tbl.Append([]string{
		"==TOTAL==",
		fmt.Sprintf("%v/%v", total.Generated, total.Total),
		fmt.Sprint(total.Skipped),
		fmt.Sprint(total.Failed),
	})
	tbl.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT})
	tbl.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	tbl.SetCenterSeparator("|")
	tbl.Render()
}

// definition is one type or trait to generate.
type definition struct {
	id  hir.SymbolID
	sym rules.Symbol
}

type definitionResult struct {
	skipped bool
	files   []File
	errs    *diag.Store
	err     error
}

func symbolKind(def hir.TypeDef) rules.SymbolKind {
	switch def.(type) {
	case *hir.StructDef:
		return rules.KindStruct
	case *hir.EnumDef:
		return rules.KindEnum
	case *hir.OpaqueDef:
		return rules.KindOpaque
	default:
		panic(fmt.Sprintf("programmer error: unknown type definition %T", def))
	}
}

// newFormatter creates the formatter for a run: names go through the
// configured rules, namespace and reserved words.
func newFormatter(tcx *hir.TypeContext, cfg *config.Config, names map[rules.Symbol]string) (*formatter.Formatter, error) {
	renames := map[string]string{}
	for sym, name := range names {
		if sym.Name == name {
			continue
		}
		if prev, ok := renames[sym.Name]; ok && prev != name {
			return nil, errors.Newf("type and trait %v are renamed differently (%v, %v)", sym.Name, prev, name)
		}
		renames[sym.Name] = name
	}
	opts := []formatter.Option{
		formatter.WithRename(func(name string) string {
			if newName, ok := renames[name]; ok {
				return newName
			}
			return name
		}),
		formatter.WithReservedWords(cfg.Naming.ReservedWords...),
	}
	if ns := cfg.Naming.Namespace; ns != "" {
		opts = append(opts, formatter.WithNamespace(func(name string) string {
			return ns + name
		}))
	}
	return formatter.New(tcx, opts...), nil
}

func describe(sym rules.Symbol) string {
	return strings.ToLower(sym.Kind.String()) + " " + sym.Name
}

// checkPaths returns an error if two generated definitions would be
// written to the same file.
func checkPaths(f *formatter.Formatter, defs []definition, skip func(definition) bool) error {
	owners := map[string]rules.Symbol{}
	for _, d := range defs {
		if skip(d) {
			continue
		}
		decl, err := f.DeclFilePath(d.id)
		if err != nil {
			return err
		}
		impl, err := f.ImplFilePath(d.id)
		if err != nil {
			return err
		}
		for _, path := range []string{decl, impl} {
			if prev, ok := owners[path]; ok {
				return errors.WithHint(
					errors.Newf("%v and %v would both be written to %v", describe(prev), describe(d.sym), path),
					"exclude or rename one of them with a rule",
				)
			}
			owners[path] = d.sym
		}
	}
	return nil
}

// Generate generates the Mojo bindings of every definition in tcx.
//
// A definition that fails to generate does not stop the others; it is
// recorded in [Result.Failures]. The returned error is only non-nil if
// the run could not be set up or ctx was cancelled.
func Generate(ctx context.Context, tcx *hir.TypeContext, cfg *config.Config, log *Logger) (*Result, error) {
	var defs []definition
	for id, def := range tcx.AllTypes() {
		defs = append(defs, definition{
			id:  id,
			sym: rules.Symbol{Name: def.GetName(), Kind: symbolKind(def)},
		})
	}
	for id, def := range tcx.AllTraits() {
		defs = append(defs, definition{
			id:  id,
			sym: rules.Symbol{Name: def.Name, Kind: rules.KindTrait},
		})
	}
	syms := make([]rules.Symbol, len(defs))
	for i, d := range defs {
		syms[i] = d.sym
	}
	names, included, err := rules.Execute(cfg, syms)
	if err != nil {
		return nil, err
	}
	f, err := newFormatter(tcx, cfg, names)
	if err != nil {
		return nil, err
	}
	skip := func(d definition) bool {
		return !included[d.sym] || (cfg.ShouldSkipDisabled() && isDisabled(tcx, d.id))
	}
	if err := checkPaths(f, defs, skip); err != nil {
		return nil, err
	}

	jobs := cfg.Generate.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	log.Log(INFO, "generating %v definitions (%v jobs)", len(defs), jobs)

	// Each index is written by exactly one task.
	results := make([]definitionResult, len(defs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, d := range defs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if skip(d) {
				results[i].skipped = true
				return nil
			}
			errs := diag.NewStore()
			files, err := generateDefinition(tcx, f, errs, d.id, cfg.Output.Indent)
			results[i] = definitionResult{files: files, errs: errs, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Stats: map[rules.SymbolKind]*KindStats{}}
	runErrs := diag.NewStore()
	for i, d := range defs {
		r := results[i]
		stats := res.Stats[d.sym.Kind]
		if stats == nil {
			stats = &KindStats{}
			res.Stats[d.sym.Kind] = stats
		}
		stats.Total++
		if r.skipped {
			stats.Skipped++
			continue
		}
		runErrs.Merge(r.errs)
		if r.err != nil {
			stats.Failed++
			res.Failures = append(res.Failures, Failure{
				Symbol: d.sym,
				Err:    errors.Wrapf(r.err, "generate %v", describe(d.sym)),
			})
			continue
		}
		stats.Generated++
		res.Files = append(res.Files, r.files...)
	}
	slices.SortFunc(res.Files, func(a, b File) int {
		return strings.Compare(a.Path, b.Path)
	})
	res.Diagnostics = runErrs.Items()

	for _, path := range res.DanglingIncludes() {
		log.Log(WARN, "%v is imported but not generated", path)
	}
	log.Log(INFO, "generated %v files, %v diagnostics, %v failures",
		len(res.Files), len(res.Diagnostics), len(res.Failures))
	return res, nil
}

func isDisabled(tcx *hir.TypeContext, id hir.SymbolID) bool {
	switch id := id.(type) {
	case hir.TypeID:
		return tcx.ResolveType(id).GetAttrs().Disable
	case hir.TraitID:
		return tcx.ResolveTrait(id).Attrs.Disable
	default:
		return false
	}
}

// generateDefinition generates the declaration and implementation files
// of one definition.
func generateDefinition(tcx *hir.TypeContext, f *formatter.Formatter, errs *diag.Store, id hir.SymbolID, indent string) ([]File, error) {
	c, err := lower.NewContext(tcx, f, errs, id)
	if err != nil {
		return nil, err
	}
	var decl, impl *unit.Unit
	switch id := id.(type) {
	case hir.TypeID:
		switch def := tcx.ResolveType(id).(type) {
		case *hir.StructDef:
			decl, err = c.GenStructDef(def)
		case *hir.EnumDef:
			decl, err = c.GenEnumDef(def)
		case *hir.OpaqueDef:
			decl, err = c.GenOpaqueDef(def)
		}
		if err != nil {
			return nil, err
		}
		impl, err = c.GenImpl(tcx.ResolveType(id))
	case hir.TraitID:
		def := tcx.ResolveTrait(id)
		decl, err = c.GenTraitDef(def)
		if err != nil {
			return nil, err
		}
		impl, err = c.GenTraitImpl(def)
	default:
		return nil, errors.AssertionFailedf("expected a type or trait symbol, got %v", id)
	}
	if err != nil {
		return nil, err
	}

	files := make([]File, 0, 2)
	for _, u := range []*unit.Unit{decl, impl} {
		if indent != "" {
			u.Indent = indent
		}
		content, err := render.File(u)
		if err != nil {
			return nil, err
		}
		includes := u.Includes()
		if u.DeclInclude != "" {
			includes = append([]string{u.DeclInclude}, includes...)
		}
		files = append(files, File{Path: u.Path, Content: content, Includes: includes})
	}
	return files, nil
}
