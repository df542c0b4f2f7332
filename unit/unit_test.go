package unit

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIncludesAreASet(t *testing.T) {
	require := require.New(t)

	u := New("foo.mojo")
	u.AddInclude("b_d.mojo")
	u.AddInclude("a_d.mojo")
	u.AddInclude("b_d.mojo")
	require.Equal([]string{"a_d.mojo", "b_d.mojo"}, u.Includes())
	require.True(u.HasInclude("a_d.mojo"))

	u.RemoveInclude("a_d.mojo")
	u.RemoveInclude("not_there.mojo")
	require.Equal([]string{"b_d.mojo"}, u.Includes())
}

func TestStripSelf(t *testing.T) {
	u := New("foo.mojo")
	u.AddInclude("foo_d.mojo")
	u.AddInclude("foo.mojo")
	u.AddInclude("bar_d.mojo")
	u.StripSelf("foo_d.mojo", "foo.mojo")
	require.Equal(t, []string{"bar_d.mojo"}, u.Includes())
}

func TestBody(t *testing.T) {
	require := require.New(t)

	u := New("foo_d.mojo")
	require.Equal("", u.Body())
	require.Equal(DefaultIndent, u.Indent)

	u.Linef(0, "struct %v:", "Foo")
	u.Linef(1, "var x: %v", "c_int32")
	u.Append(1, "a\nb")
	_, err := fmt.Fprintf(u, "# %v\n", "end")
	require.NoError(err)
	require.Equal("struct Foo:\n\tvar x: c_int32\n\ta\n\tb\n# end\n", u.Body())
}
