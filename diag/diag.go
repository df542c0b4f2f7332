// Package diag collects soft diagnostics raised while generating bindings.
//
// Every diagnostic is attributed to the (type, method) being processed
// when it was pushed. The attribution is a stack: callers enter a scope
// with [Store.SetContextMethod] and must call the returned release func
// on every exit path, usually with defer.
package diag

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Context names the definition and method under processing. Method is
// empty while processing a definition's structural shape.
type Context struct {
	Type   string
	Method string
}

func (c Context) String() string {
	switch {
	case c.Type == "":
		return "<global>"
	case c.Method == "":
		return c.Type
	default:
		return c.Type + "::" + c.Method
	}
}

func (c Context) cmp(o Context) int {
	return cmp.Or(
		cmp.Compare(c.Type, o.Type),
		cmp.Compare(c.Method, o.Method),
	)
}

type Diagnostic struct {
	Context Context
	Message string
}

func (d Diagnostic) String() string {
	return d.Context.String() + ": " + d.Message
}

// Error implements error so that diagnostics can be unwrapped from [Error].
func (d Diagnostic) Error() string { return d.String() }

// Store is a diagnostic collector.
//
// PushError may be called from several goroutines, but the context stack
// is shared by all of them; concurrent generation tasks should each use
// their own Store and [Store.Merge] them afterwards.
type Store struct {
	mu    sync.Mutex
	items []Diagnostic
	stack []Context
}

func NewStore() *Store {
	return &Store{}
}

// PushError records msg under the current context.
func (s *Store) PushError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, Diagnostic{Context: s.current(), Message: msg})
}

// SetContextType enters a definition-level scope.
func (s *Store) SetContextType(typ string) (release func()) {
	return s.enter(Context{Type: typ})
}

// SetContextMethod enters a method-level scope. The returned func restores
// the previous context and must be called exactly once.
func (s *Store) SetContextMethod(typ, method string) (release func()) {
	return s.enter(Context{Type: typ, Method: method})
}

func (s *Store) enter(c Context) func() {
	s.mu.Lock()
	s.stack = append(s.stack, c)
	depth := len(s.stack)
	s.mu.Unlock()

	released := false
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if released {
			panic("programmer error: diagnostic context released twice")
		}
		if len(s.stack) != depth {
			panic(fmt.Sprintf("programmer error: diagnostic context %v released out of order", c))
		}
		released = true
		s.stack = s.stack[:depth-1]
	}
}

// Current returns the innermost context, or the zero Context.
func (s *Store) Current() Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current()
}

func (s *Store) current() Context {
	if len(s.stack) == 0 {
		return Context{}
	}
	return s.stack[len(s.stack)-1]
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Items returns a copy of all diagnostics in the order they were pushed.
func (s *Store) Items() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Merge appends all diagnostics of other.
func (s *Store) Merge(other *Store) {
	items := other.Items()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, items...)
}

// Err returns nil if the store is empty, otherwise an [*Error] holding
// every diagnostic.
func (s *Store) Err() error {
	items := s.Items()
	if len(items) == 0 {
		return nil
	}
	return &Error{items: items}
}

// Error is the batch of diagnostics of a generation run.
type Error struct {
	items []Diagnostic
}

func (e *Error) sorted() []Diagnostic {
	return slices.SortedStableFunc(slices.Values(e.items), func(a, b Diagnostic) int {
		return cmp.Or(a.Context.cmp(b.Context), cmp.Compare(a.Message, b.Message))
	})
}

// Error returns a short error message.
func (e *Error) Error() string {
	if len(e.items) == 0 {
		return "success"
	}
	first := e.sorted()[0]
	if len(e.items) == 1 {
		return first.String()
	}
	return fmt.Sprintf("%v diagnostics, first: %v", len(e.items), first)
}

// String returns a full multi-line message containing all diagnostics.
func (e *Error) String() string {
	var b strings.Builder
	for _, d := range e.sorted() {
		b.WriteString(d.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	sorted := e.sorted()
	errs := make([]error, len(sorted))
	for i, d := range sorted {
		errs[i] = d
	}
	return errs
}

// Diagnostics returns the diagnostics in report order.
func (e *Error) Diagnostics() []Diagnostic {
	return e.sorted()
}
