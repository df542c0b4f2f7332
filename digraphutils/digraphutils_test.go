package digraphutils

import (
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

var graph = map[string][]string{
	"a": {"b", "c"},
	"b": {"c", "x"},
	"c": {"a"},
	"d": {"a"},
}

func edges(k string) []string { return graph[k] }

func TestReachable(t *testing.T) {
	require := require.New(t)
	require.Equal([]string{"a", "b", "c", "x"}, slices.Sorted(maps.Keys(Reachable([]string{"a"}, edges))))
	require.Equal([]string{"a", "b", "c", "d", "x"}, slices.Sorted(maps.Keys(Reachable([]string{"d"}, edges))))
	require.Empty(Reachable(nil, edges))
}

func TestUnresolved(t *testing.T) {
	exists := func(k string) bool {
		_, ok := graph[k]
		return ok
	}
	require.Equal(t, []string{"x"}, Unresolved([]string{"d"}, edges, exists))
	require.Empty(t, Unresolved([]string{"c"}, func(string) []string { return nil }, exists))
}

func TestDOTCode(t *testing.T) {
	nodes := []string{"a", "b", "c"}
	got := DOTCode(nodes, edges, "g", "rankdir=LR;", func(k string) string {
		if k == "a" {
			return "[shape=box]"
		}
		return ""
	})
	require.Equal(t, `digraph g {
  rankdir=LR;
  0 [shape=box]
  1
  2
  0 -> {1 2}
  1 -> {2}
  2 -> {0}
}
`, string(got))
	// Edges to nodes outside the graph are dropped without touching the
	// caller's slices.
	require.Equal(t, []string{"c", "x"}, graph["b"])
}
