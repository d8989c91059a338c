package hub

import (
	"github.com/pkg/errors"

	"github.com/SpikedPunchVictim/gaia/log"
)

// Service is the common interface for the last message processor in line.
// Wrappers handle request parsing and delegate here.
type Service interface {
	// Serve handles the message and returns the response data or nil.
	Serve(*Msg) interface{}
}

// ServiceFunc implements Service for simple handler functions.
type ServiceFunc func(*Msg) interface{}

func (f ServiceFunc) Serve(m *Msg) interface{} { return f(m) }

// Services maps message subjects to service processors.
type Services map[string]Service

// Handle calls the service for m's subject or returns an error. If the
// service returns data and c is not nil, a reply with the request token is
// sent back to the sender.
func (s Services) Handle(m *Msg, c Conn) error {
	f := s[m.Subj]
	if f == nil {
		return errors.Errorf("hub: service not supported %s", m.Subj)
	}
	res := f.Serve(m)
	if res != nil && c != nil {
		m.From.Chan() <- &Msg{From: c, Subj: m.Subj, Tok: m.Tok, Data: res}
	}
	return nil
}

// Router returns a router dispatching mapped subjects to the services,
// answering from c. Unmapped subjects are left to other routers.
func (s Services) Router(c Conn, l log.Logger) Router {
	if l == nil {
		l = log.Root
	}
	return RouterFunc(func(m *Msg) {
		if s[m.Subj] == nil {
			return
		}
		if err := s.Handle(m, c); err != nil {
			l.Error("hub service", "subj", m.Subj, "err", err)
		}
	})
}
