package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0666))
	return path
}

func TestDefault(t *testing.T) {
	require := require.New(t)

	c := Default()
	require.Equal("mojo", c.Output.Dir)
	require.Equal("  ", c.Output.Indent)
	require.Equal(0, c.Generate.Jobs)
	require.True(c.ShouldSkipDisabled())
	require.Empty(c.Rules)
}

func TestLoadImports(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()

	base := writeFile(t, dir, "base.toml", `
[output]
dir = "gen"
indent = "    "

[naming]
reserved-words = ["handle"]

[[rule]]
select.kind = "opaque"
action.to-casing = "camel"
`)
	main := writeFile(t, dir, "main.toml", `
imports = [`+"'"+base+"'"+`]

[naming]
namespace = "icu_"
reserved-words = ["data"]

[generate]
jobs = 4
skip-disabled = false

[[rule]]
select.name = "Old(.*)"
action.include = false
`)

	c, err := Load(main)
	require.NoError(err)
	require.Equal("gen", c.Output.Dir)
	require.Equal("    ", c.Output.Indent)
	require.Equal("icu_", c.Naming.Namespace)
	require.Equal([]string{"data", "handle"}, c.Naming.ReservedWords)
	require.Equal(4, c.Generate.Jobs)
	require.False(c.ShouldSkipDisabled())
	require.Len(c.Rules, 2)
	require.True(c.Rules[0].Select.Name.MatchString("OldThing"))
	require.False(*c.Rules[0].Actions.Include)
	require.Equal("camel", c.Rules[1].Actions.ToCasing)
}

func TestLoadError(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()

	path := writeFile(t, dir, "bad.toml", "[output]\ndirectory = 1\n")
	_, err := Load(path)
	var cErr *Error
	require.True(errors.As(err, &cErr))
	require.Contains(cErr.Error(), path+": ")
	require.Contains(cErr.String(), "Error in file")
	require.Contains(cErr.String(), "directory")

	_, err = Load(filepath.Join(dir, "missing.toml"))
	require.True(errors.As(err, &cErr))
	require.True(errors.Is(err, os.ErrNotExist))
}

func TestLoadOrCreateDefault(t *testing.T) {
	require := require.New(t)
	path := filepath.Join(t.TempDir(), "mojogen.toml")

	c, created, err := LoadOrCreateDefault(path)
	require.NoError(err)
	require.True(created)
	require.Equal(Default(), c)

	_, created, err = LoadOrCreateDefault(path)
	require.NoError(err)
	require.False(created)
}
