package dom

import (
	"github.com/SpikedPunchVictim/gaia/ord"
	"github.com/SpikedPunchVictim/gaia/val"
)

// EventKind enumerates object lifecycle notifications.
type EventKind int

const (
	// NameChanging and NameChanged bracket a rename.
	NameChanging EventKind = iota
	NameChanged
	// ValueChanging and ValueChanged bracket a raised value update on a
	// member or field.
	ValueChanging
	ValueChanged
	// ResetStart and ResetEnd bracket a field reset.
	ResetStart
	ResetEnd
	// ColChange wraps a collection event forwarded to project watchers.
	ColChange
)

func (k EventKind) String() string {
	switch k {
	case NameChanging:
		return "namechanging"
	case NameChanged:
		return "namechanged"
	case ValueChanging:
		return "valuechanging"
	case ValueChanged:
		return "valuechanged"
	case ResetStart:
		return "resetstart"
	case ResetEnd:
		return "resetend"
	case ColChange:
		return "colchange"
	}
	return "invalid"
}

// Event is sent to watchers of the source and then to watchers of the
// project. Src is the object the event happened on: an Obj, a *Member or a
// *Field. Name events carry Name and Old, value events Val and OldVal, and
// ColChange carries the collection event in Col.
type Event struct {
	Kind   EventKind
	Src    interface{}
	Name   string
	Old    string
	Val    val.Value
	OldVal val.Value
	Col    *ord.Event
}

// emitter fans events out to subscribers. Unsubscribing during a callback
// takes effect for the next event.
type emitter struct {
	subs []*func(*Event)
}

// Watch registers fn and returns its unsubscribe func.
func (e *emitter) Watch(fn func(*Event)) func() {
	sub := &fn
	e.subs = append(e.subs, sub)
	return func() {
		for i, s := range e.subs {
			if s == sub {
				e.subs = append(e.subs[:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

func (e *emitter) emit(ev *Event) {
	for _, s := range append(([]*func(*Event))(nil), e.subs...) {
		(*s)(ev)
	}
}
