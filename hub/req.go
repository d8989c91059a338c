package hub

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// lastID holds the last id returned from NextID. It must only be accessed
// with atomic primitives.
var lastID = new(int64)

// NextID returns a new unused normal connection id.
func NextID() int64 { return atomic.AddInt64(lastID, 1) }

// ChanConn is a channel based connection for in-process hub participants.
type ChanConn struct {
	id int64
	ch chan *Msg
}

// NewChanConn returns a new channel connection with the given id and channel.
func NewChanConn(id int64, c chan *Msg) *ChanConn { return &ChanConn{id, c} }

func (c *ChanConn) ID() int64         { return c.id }
func (c *ChanConn) Chan() chan<- *Msg { return c.ch }

// Req sends req to the hub from a transient connection and returns the first
// response or an error when the timeout was reached.
func Req(h *Hub, req *Msg, timeout time.Duration) (*Msg, error) {
	ch := make(chan *Msg, 1)
	c := NewChanConn(-1, ch)
	req.From = c
	h.Chan() <- req
	select {
	case res := <-ch:
		if res == nil {
			return nil, errors.New("hub: conn closed")
		}
		return res, nil
	case <-time.After(timeout):
	}
	return nil, errors.Errorf("hub: request %s timed out", req.Subj)
}

// RequestMap notes forwarded requests and matches responses back to the
// requesting connection by token.
type RequestMap struct {
	last int64
	m    map[int64]pending
}

type pending struct {
	Conn
	tok []byte
}

// Note records the request origin and returns the token to forward with.
func (r *RequestMap) Note(m *Msg) []byte {
	r.last++
	if r.m == nil {
		r.m = make(map[int64]pending)
	}
	r.m[r.last] = pending{m.From, m.Tok}
	return strconv.AppendInt(nil, r.last, 16)
}

// Response routes a response message back to the noted origin, restoring the
// original token.
func (r *RequestMap) Response(m *Msg) error {
	if len(m.Tok) == 0 {
		return errors.Errorf("hub: empty token for response %s", m.Subj)
	}
	tok := string(m.Tok)
	id, err := strconv.ParseInt(tok, 16, 64)
	if err != nil {
		return errors.Errorf("hub: invalid token %s", tok)
	}
	req, ok := r.m[id]
	if !ok {
		return errors.Errorf("hub: no request with token %s", tok)
	}
	n := *m
	n.Tok = req.tok
	req.Chan() <- &n
	delete(r.m, id)
	return nil
}
