// Package val defines the value contract used by members and fields.
//
// A value is exclusively owned by one member or field. Values crossing an
// ownership boundary are always cloned, never aliased. Changes are described
// as change sets so that a dependent value can apply the same change
// incrementally instead of recloning.
package val

import "github.com/pkg/errors"

// Type identifies a value type. Types are equatable.
type Type uint

const (
	TypAny Type = iota
	TypBool
	TypInt
	TypStr
)

func (t Type) String() string {
	switch t {
	case TypBool:
		return "bool"
	case TypInt:
		return "int"
	case TypStr:
		return "str"
	}
	return "any"
}

// Change is the change set produced by a value mutation. For primitive values
// the change is fully described by the resulting value.
type Change struct {
	Val Value
}

// Value is a mutable, watchable value owned by a member or field.
//
// Set assigns the contents of another value of the same type and notifies all
// watchers. SetLocally does the same but promises that no remote propagation
// is triggered; for in-process values both notify the same watcher list.
// Apply performs an incremental apply of a foreign change set.
type Value interface {
	Type() Type
	Clone() Value
	Equals(Value) bool
	Set(Value) error
	SetLocally(Value) Value
	Apply(Change) error
	Watch(func(Change)) func()
}

// watched holds the watcher list shared by the primitive implementations.
// Clones never share watcher state.
type watched struct {
	subs []*func(Change)
}

// Watch registers fn and returns a function that removes it again.
func (w *watched) Watch(fn func(Change)) func() {
	p := &fn
	w.subs = append(w.subs, p)
	return func() {
		for i, s := range w.subs {
			if s == p {
				w.subs = append(w.subs[:i], w.subs[i+1:]...)
				return
			}
		}
	}
}

func (w *watched) notify(c Change) {
	// copy so a watcher removing itself does not skip others
	subs := make([]*func(Change), len(w.subs))
	copy(subs, w.subs)
	for _, s := range subs {
		(*s)(c)
	}
}

func typeErr(want, got Type) error {
	return errors.Errorf("val: type mismatch, want %s got %s", want, got)
}

// Bool is a boolean value.
type Bool struct {
	watched
	V bool
}

// NewBool returns a new boolean value.
func NewBool(v bool) *Bool { return &Bool{V: v} }

func (b *Bool) Type() Type   { return TypBool }
func (b *Bool) Clone() Value { return NewBool(b.V) }

func (b *Bool) Equals(o Value) bool {
	x, ok := o.(*Bool)
	return ok && x.V == b.V
}

func (b *Bool) Set(o Value) error {
	x, ok := o.(*Bool)
	if !ok {
		return typeErr(TypBool, o.Type())
	}
	b.V = x.V
	b.notify(Change{Val: b})
	return nil
}

func (b *Bool) SetLocally(o Value) Value {
	if x, ok := o.(*Bool); ok {
		b.V = x.V
		b.notify(Change{Val: b})
	}
	return b
}

func (b *Bool) Apply(c Change) error { return b.Set(c.Val) }

// Int is an integer value.
type Int struct {
	watched
	V int64
}

// NewInt returns a new integer value.
func NewInt(v int64) *Int { return &Int{V: v} }

func (n *Int) Type() Type   { return TypInt }
func (n *Int) Clone() Value { return NewInt(n.V) }

func (n *Int) Equals(o Value) bool {
	x, ok := o.(*Int)
	return ok && x.V == n.V
}

func (n *Int) Set(o Value) error {
	x, ok := o.(*Int)
	if !ok {
		return typeErr(TypInt, o.Type())
	}
	n.V = x.V
	n.notify(Change{Val: n})
	return nil
}

func (n *Int) SetLocally(o Value) Value {
	if x, ok := o.(*Int); ok {
		n.V = x.V
		n.notify(Change{Val: n})
	}
	return n
}

func (n *Int) Apply(c Change) error { return n.Set(c.Val) }

// Str is a string value.
type Str struct {
	watched
	V string
}

// NewStr returns a new string value.
func NewStr(v string) *Str { return &Str{V: v} }

func (s *Str) Type() Type   { return TypStr }
func (s *Str) Clone() Value { return NewStr(s.V) }

func (s *Str) Equals(o Value) bool {
	x, ok := o.(*Str)
	return ok && x.V == s.V
}

func (s *Str) Set(o Value) error {
	x, ok := o.(*Str)
	if !ok {
		return typeErr(TypStr, o.Type())
	}
	s.V = x.V
	s.notify(Change{Val: s})
	return nil
}

func (s *Str) SetLocally(o Value) Value {
	if x, ok := o.(*Str); ok {
		s.V = x.V
		s.notify(Change{Val: s})
	}
	return s
}

func (s *Str) Apply(c Change) error { return s.Set(c.Val) }
