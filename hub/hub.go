// Package hub provides a transport agnostic connection hub carrying
// request-for-change traffic between the engine and plugin participants.
//
// Message subjects are action kinds; a request-response round trip is
// matched by token. Participants can live in-process behind a channel or
// out-of-process behind the websocket transport in wshub.
package hub

import "sync"

const (
	SubjSignon  = "+"
	SubjSignoff = "-"
)

// Msg is the central data structure passed between connections.
//
// From and Subj must be populated. Tok is used by the origin connection to
// match replies to requests and is otherwise unprocessed. The body is either
// raw bytes, typed data, or both; in-process participants use Data to avoid
// serialization, transports marshal Data as JSON when Raw is empty.
type Msg struct {
	From Conn
	Subj string
	Tok  []byte
	Raw  []byte
	Data interface{}
}

// Router routes a received message to a connection.
type Router interface{ Route(*Msg) }

// RouterFunc implements Router for simple route functions.
type RouterFunc func(*Msg)

func (r RouterFunc) Route(m *Msg) { r(m) }

// Routers is a slice of routers, all of them are called with incoming
// messages.
type Routers []Router

func (rs Routers) Route(m *Msg) {
	for _, r := range rs {
		r.Route(m)
	}
}

// Conn is the common interface for participants connected to a hub.
//
// Connections can represent one-off calls, connected plugins or the hub
// itself. The hub has id 0, transient connections a negative and normal
// connections positive ids.
type Conn interface {
	ID() int64
	// Chan returns an unchanging receiver channel. The hub sends a nil
	// message to this channel after a sign-off from this conn was routed.
	Chan() chan<- *Msg
}

// Hub is the central participant that manages connection sign-ons and
// sign-offs and keeps a list of signed-on participants. Hub itself
// implements Conn with id 0.
type Hub struct {
	sync.Mutex
	cmap map[int64]Conn
	mque chan *Msg
}

// NewHub creates and returns a new hub.
func NewHub() *Hub {
	return &Hub{
		cmap: make(map[int64]Conn, 64),
		mque: make(chan *Msg, 128),
	}
}

func (h *Hub) ID() int64         { return 0 }
func (h *Hub) Chan() chan<- *Msg { return h.mque }

// Signon sends a sign-on message for c to the hub.
func Signon(h *Hub, c Conn) { h.Chan() <- &Msg{From: c, Subj: SubjSignon} }

// Signoff sends a sign-off message for c to the hub.
func Signoff(h *Hub, c Conn) { h.Chan() <- &Msg{From: c, Subj: SubjSignoff} }

// Run starts routing received messages with the given router. It is usually
// run in a go routine. Sending a nil message stops the loop.
func (h *Hub) Run(r Router) {
	for m := range h.mque {
		if m == nil {
			break
		}
		if m.Subj == SubjSignon {
			h.Lock()
			h.cmap[m.From.ID()] = m.From
			h.Unlock()
		}
		r.Route(m)
		if m.Subj == SubjSignoff {
			h.Lock()
			delete(h.cmap, m.From.ID())
			m.From.Chan() <- nil
			h.Unlock()
		}
	}
}
