// Package unit provides [Unit], the accumulator for one generated file.
//
// A Unit lets generation code build a file piece by piece without
// computing its imports or forward declarations up front: whoever
// references another named type adds that type's declaration path with
// [Unit.AddInclude].
package unit

import (
	"bufio"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// DefaultIndent replaces the tab placeholder when a Unit is rendered.
const DefaultIndent = "  "

type Unit struct {
	// Path of the generated file, relative to the output directory
	// (for example "foo.mojo").
	Path string
	// DeclInclude is the declaration file belonging to this
	// implementation file. Empty for declaration files.
	DeclInclude string
	// Indent replaces every tab in the body when rendered.
	Indent string

	includes map[string]struct{}
	body     strings.Builder
}

func New(path string) *Unit {
	return &Unit{
		Path:     path,
		Indent:   DefaultIndent,
		includes: map[string]struct{}{},
	}
}

// Write appends p to the body. It never fails; it exists so that
// templates can be executed straight into a Unit.
func (u *Unit) Write(p []byte) (int, error) {
	return u.body.Write(p)
}

func (u *Unit) WriteString(s string) {
	u.body.WriteString(s)
}

// Linef writes a single line indented by depth tabs.
//
// Takes format and args like [fmt.Printf].
func (u *Unit) Linef(depth int, format string, args ...any) {
	for range depth {
		u.body.WriteByte('\t')
	}
	fmt.Fprintf(&u.body, format, args...)
	u.body.WriteByte('\n')
}

// Append writes s line by line, indenting each line by depth tabs.
func (u *Unit) Append(depth int, s string) {
	sc := bufio.NewScanner(strings.NewReader(s))
	for sc.Scan() {
		u.Linef(depth, "%v", sc.Text())
	}
}

// Body returns the raw body, tabs not yet replaced.
func (u *Unit) Body() string {
	return u.body.String()
}

func (u *Unit) AddInclude(path string) {
	u.includes[path] = struct{}{}
}

func (u *Unit) RemoveInclude(path string) {
	delete(u.includes, path)
}

func (u *Unit) HasInclude(path string) bool {
	_, ok := u.includes[path]
	return ok
}

// Includes returns the include set in sorted order.
func (u *Unit) Includes() []string {
	return slices.Sorted(maps.Keys(u.includes))
}

// StripSelf removes the unit's own declaration and implementation paths
// from its includes. Lowering a receiver of the unit's own type adds
// them; a file never imports itself.
func (u *Unit) StripSelf(declPath, implPath string) {
	u.RemoveInclude(declPath)
	u.RemoveInclude(implPath)
}
