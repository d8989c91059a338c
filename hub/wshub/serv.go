package wshub

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/SpikedPunchVictim/gaia/hub"
	"github.com/SpikedPunchVictim/gaia/log"
)

// Options configure the websocket acceptor.
type Options struct {
	Log log.Logger
	// Check validates the upgrade request before any sign-on, usually a
	// token check from the auth package. A nil check accepts everyone.
	Check func(*http.Request) error
}

// Serve returns a handler that upgrades requests to websocket hub
// connections and signs them on until disconnect.
func Serve(h *hub.Hub, o *Options) http.HandlerFunc {
	if o == nil {
		o = &Options{}
	}
	l := o.Log
	if l == nil {
		l = log.Root
	}
	upgr := &websocket.Upgrader{}
	return func(w http.ResponseWriter, r *http.Request) {
		if o.Check != nil {
			if err := o.Check(r); err != nil {
				l.Error("wshub check failed", "err", err)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		wc, err := upgr.Upgrade(w, r, nil)
		if err != nil {
			l.Error("wshub upgrade failed", "err", err)
			return
		}
		c := newConn(hub.NextID(), wc)
		hub.Signon(h, c)
		go c.writeAll(l)
		err = c.readAll(h.Chan())
		hub.Signoff(h, c)
		if err != nil {
			l.Error("wshub read failed", "id", c.id, "err", err)
		}
	}
}
