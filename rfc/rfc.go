// Package rfc implements the request-for-change protocol.
//
// Every mutation of the object graph is first described as an immutable
// action, raised to an external authority through a router, and only applied
// locally once the authority accepts it. A declined action has zero local
// effect. Actions are created, submitted, resolved and then discarded, never
// persisted; the journal keeps an in-memory audit trail of fulfilled actions.
package rfc

import (
	"context"

	"github.com/SpikedPunchVictim/gaia/uid"
)

// Kind identifies the intent of an action and doubles as the message subject
// on the wire.
type Kind string

const (
	KindNamespaceCreate Kind = "namespace.create"
	KindModelCreate     Kind = "model.create"
	KindInstanceCreate  Kind = "instance.create"
	KindMemberCreate    Kind = "member.create"
	KindRename          Kind = "object.rename"
	KindMove            Kind = "object.move"
	KindReorder         Kind = "object.reorder"
	KindMemberReorder   Kind = "member.reorder"
	KindDelete          Kind = "object.delete"
	KindMemberDelete    Kind = "member.delete"
	KindValueUpdate     Kind = "value.update"
	KindGetChildren     Kind = "object.children"
	KindGetMembers      Kind = "model.members"
	KindGetFields       Kind = "instance.fields"
	KindGetByID         Kind = "object.byid"
)

// Valid reports whether k is a known action kind.
func (k Kind) Valid() bool {
	switch k {
	case KindNamespaceCreate, KindModelCreate, KindInstanceCreate, KindMemberCreate,
		KindRename, KindMove, KindReorder, KindMemberReorder,
		KindDelete, KindMemberDelete, KindValueUpdate,
		KindGetChildren, KindGetMembers, KindGetFields, KindGetByID:
		return true
	}
	return false
}

// Action is the immutable record of one intended mutation. Which fields are
// populated depends on the kind. Batched intents carry sub-actions that the
// authority accepts or declines as a whole.
//
// Res is the resolver result slot: for get kinds the router fills it before
// Raise returns, []ord.Ref for list gets and a qualified path string for
// byid gets. A nil result on a list get means the authority reports no
// change.
type Action struct {
	Kind  Kind      `json:"kind"`
	ID    uid.ID    `json:"id,omitempty"`
	Dest  uid.ID    `json:"dest,omitempty"`
	Ref   uid.ID    `json:"ref,omitempty"`
	Name  string    `json:"name,omitempty"`
	Class string    `json:"class,omitempty"`
	Idx   int       `json:"idx"`
	From  int       `json:"from,omitempty"`
	Sub   []*Action `json:"sub,omitempty"`

	Res interface{} `json:"-"`
}

// Router raises actions to the external authority. Raise returns nil when
// the action was accepted and an error when it was declined. The router
// guarantees no ordering beyond per-call await order.
type Router interface {
	Raise(ctx context.Context, a *Action) error
}

// RouterFunc implements Router for simple router functions.
type RouterFunc func(ctx context.Context, a *Action) error

func (f RouterFunc) Raise(ctx context.Context, a *Action) error { return f(ctx, a) }
