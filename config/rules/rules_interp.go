package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/refaktor/mojogen/config"
)

type SymbolKind int

const (
	KindStruct SymbolKind = iota
	KindEnum
	KindOpaque
	KindTrait
)

func (k SymbolKind) String() string {
	switch k {
	case KindStruct:
		return "Struct"
	case KindEnum:
		return "Enum"
	case KindOpaque:
		return "Opaque"
	case KindTrait:
		return "Trait"
	default:
		panic("invalid symbol kind")
	}
}

func SymbolKindFromString(s string) (SymbolKind, bool) {
	for _, k := range [...]SymbolKind{KindStruct, KindEnum, KindOpaque, KindTrait} {
		if strings.EqualFold(s, k.String()) {
			return k, true
		}
	}
	return -1, false
}

type Symbol struct {
	// Name as defined in the universe.
	Name string
	Kind SymbolKind
}

// Casings maps the to-casing action values to their implementation.
var Casings = map[string]func(string) string{
	"camel":           strcase.ToCamel,
	"lower-camel":     strcase.ToLowerCamel,
	"snake":           strcase.ToSnake,
	"screaming-snake": strcase.ToScreamingSnake,
	"kebab":           strcase.ToKebab,
}

// Execute executes renaming rules on the given symbols.
// Return value names maps each symbol name to its new name, while
// included is whether the symbol should be generated.
//
// Types and traits live in separate namespaces, so a rename only
// conflicts with a symbol of the same namespace.
func Execute(c *config.Config, syms []Symbol) (names map[Symbol]string, included map[Symbol]bool, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("execute rules: %w", err)
		}
	}()

	names = map[Symbol]string{}
	included = map[Symbol]bool{}
	type nsName struct {
		trait bool
		name  string
	}
	existingRenamedNames := map[nsName]bool{} // to avoid collisions
	for _, sym := range syms {
		if _, ok := names[sym]; ok {
			return nil, nil, fmt.Errorf("duplicate %v symbol: %v", sym.Kind, sym.Name)
		}
		names[sym] = sym.Name
		included[sym] = true
		existingRenamedNames[nsName{sym.Kind == KindTrait, sym.Name}] = true
	}

	var backrefs [][]byte

	for _, rule := range c.Rules {
		if rule.Select.Kind != "" {
			if _, ok := SymbolKindFromString(rule.Select.Kind); !ok {
				return nil, nil, fmt.Errorf("select: unknown symbol kind: %v", rule.Select.Kind)
			}
		}
		if rule.Actions.ToCasing != "" {
			if _, ok := Casings[rule.Actions.ToCasing]; !ok {
				return nil, nil, fmt.Errorf("action: unknown casing: %v", rule.Actions.ToCasing)
			}
		}

		for _, sym := range syms {
			backrefs = backrefs[:0]
			if rule.Select.Kind != "" && !strings.EqualFold(rule.Select.Kind, sym.Kind.String()) {
				continue
			}
			if rule.Select.Name != nil {
				name := names[sym]
				m := rule.Select.Name.FindSubmatch([]byte(name))
				if len(m) == 0 || len(m[0]) != len(name) {
					continue
				}
				backrefs = append(backrefs, m[1:]...)
			}

			renameTo := func(newName string) error {
				oldName := names[sym]
				if oldName == newName {
					return nil
				}
				key := nsName{sym.Kind == KindTrait, newName}
				if existingRenamedNames[key] {
					return fmt.Errorf("renaming %v to %v would cause a conflict",
						strconv.Quote(oldName), strconv.Quote(newName))
				}
				names[sym] = newName
				existingRenamedNames[nsName{sym.Kind == KindTrait, oldName}] = false
				existingRenamedNames[key] = true
				return nil
			}

			if rule.Actions.Rename != "" {
				oldnew := [2 * 9]string{
					`\1`, "",
					`\2`, "",
					`\3`, "",
					`\4`, "",
					`\5`, "",
					`\6`, "",
					`\7`, "",
					`\8`, "",
					`\9`, "",
				}
				for i := range min(len(backrefs), 9) {
					oldnew[2*i+1] = string(backrefs[i])
				}
				newName := strings.NewReplacer(oldnew[:]...).
					Replace(rule.Actions.Rename)
				if err := renameTo(newName); err != nil {
					return nil, nil, err
				}
			}

			if rule.Actions.Include != nil {
				included[sym] = *rule.Actions.Include
			}

			if rule.Actions.ToCasing != "" {
				if err := renameTo(Casings[rule.Actions.ToCasing](names[sym])); err != nil {
					return nil, nil, err
				}
			}
		}
	}

	return
}
