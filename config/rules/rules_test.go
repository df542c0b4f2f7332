package rules

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/refaktor/mojogen/config"
)

func rule(kind, name, rename, casing string, include *bool) config.Rule {
	var r config.Rule
	r.Select.Kind = kind
	if name != "" {
		r.Select.Name = regexp.MustCompile(name)
	}
	r.Actions.Rename = rename
	r.Actions.ToCasing = casing
	r.Actions.Include = include
	return r
}

func TestExecute(t *testing.T) {
	require := require.New(t)

	no := false
	c := &config.Config{Rules: []config.Rule{
		rule("opaque", `Icu4x(.*)`, `\1`, "", nil),
		rule("", `.*Internal`, "", "", &no),
		rule("struct", "", "", "snake", nil),
	}}
	syms := []Symbol{
		{Name: "Icu4xLocale", Kind: KindOpaque},
		{Name: "PointData", Kind: KindStruct},
		{Name: "CacheInternal", Kind: KindOpaque},
		{Name: "Icu4xLocale", Kind: KindTrait},
	}
	names, included, err := Execute(c, syms)
	require.NoError(err)
	require.Equal(map[Symbol]string{
		syms[0]: "Locale",
		syms[1]: "point_data",
		syms[2]: "CacheInternal",
		syms[3]: "Icu4xLocale",
	}, names)
	require.Equal(map[Symbol]bool{
		syms[0]: true,
		syms[1]: true,
		syms[2]: false,
		syms[3]: true,
	}, included)
}

func TestExecuteConflict(t *testing.T) {
	c := &config.Config{Rules: []config.Rule{
		rule("", `A(.*)`, `\1`, "", nil),
	}}
	_, _, err := Execute(c, []Symbol{
		{Name: "ABar", Kind: KindOpaque},
		{Name: "Bar", Kind: KindEnum},
	})
	require.ErrorContains(t, err, `renaming "ABar" to "Bar" would cause a conflict`)

	// Traits do not clash with types.
	_, _, err = Execute(c, []Symbol{
		{Name: "ABar", Kind: KindTrait},
		{Name: "Bar", Kind: KindEnum},
	})
	require.NoError(t, err)
}

func TestExecuteInvalid(t *testing.T) {
	_, _, err := Execute(&config.Config{Rules: []config.Rule{rule("class", "", "", "", nil)}}, nil)
	require.ErrorContains(t, err, "unknown symbol kind: class")

	_, _, err = Execute(&config.Config{Rules: []config.Rule{rule("", "", "", "title", nil)}}, nil)
	require.ErrorContains(t, err, "unknown casing: title")

	_, _, err = Execute(&config.Config{}, []Symbol{{Name: "A"}, {Name: "A"}})
	require.ErrorContains(t, err, "duplicate Struct symbol: A")
}

func TestCasings(t *testing.T) {
	require := require.New(t)
	require.Equal("FooBar", Casings["camel"]("foo_bar"))
	require.Equal("fooBar", Casings["lower-camel"]("foo_bar"))
	require.Equal("foo_bar", Casings["snake"]("FooBar"))
	require.Equal("FOO_BAR", Casings["screaming-snake"]("FooBar"))
	require.Equal("foo-bar", Casings["kebab"]("FooBar"))
}
