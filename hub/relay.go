package hub

import "github.com/SpikedPunchVictim/gaia/log"

// Relay forwards requests raised on a local hub to a remote connection and
// routes the responses back to the requesting connection. Requests are noted
// in a request map so the remote side can answer with the forwarded token.
type Relay struct {
	To   Conn
	Log  log.Logger
	rmap RequestMap
}

// Route implements Router.
func (r *Relay) Route(m *Msg) {
	switch m.Subj {
	case SubjSignon, SubjSignoff:
		return
	}
	if m.From.ID() == r.To.ID() {
		if err := r.rmap.Response(m); err != nil {
			r.logger().Error("relay response", "subj", m.Subj, "err", err)
		}
		return
	}
	n := *m
	n.Tok = r.rmap.Note(m)
	r.To.Chan() <- &n
}

func (r *Relay) logger() log.Logger {
	if r.Log != nil {
		return r.Log
	}
	return log.Root
}
