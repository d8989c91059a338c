package rfc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/SpikedPunchVictim/gaia/hub"
	"github.com/SpikedPunchVictim/gaia/log"
	"github.com/SpikedPunchVictim/gaia/ord"
)

// reply is the wire envelope for action responses.
type reply struct {
	Err  string    `json:"err,omitempty"`
	Refs []ord.Ref `json:"refs,omitempty"`
	Path string    `json:"path,omitempty"`
}

// Endpoint serves an authority to hub participants. Every action subject is
// resolved against the authority and answered to the sender, preserving the
// request token.
type Endpoint struct {
	Auth *Authority
	Log  log.Logger
}

func (e *Endpoint) logger() log.Logger {
	if e.Log != nil {
		return e.Log
	}
	return log.Root
}

// Route implements hub.Router. Subjects that are no action kind are left to
// other routers on the same hub.
func (e *Endpoint) Route(m *hub.Msg) {
	if !Kind(m.Subj).Valid() {
		return
	}
	var rep reply
	var act Action
	if err := json.Unmarshal(m.Raw, &act); err != nil {
		rep.Err = err.Error()
	} else {
		act.Kind = Kind(m.Subj)
		if err := e.Auth.Raise(context.Background(), &act); err != nil {
			rep.Err = err.Error()
		} else {
			switch res := act.Res.(type) {
			case []ord.Ref:
				rep.Refs = res
			case string:
				rep.Path = res
			}
		}
	}
	raw, err := json.Marshal(rep)
	if err != nil {
		e.logger().Error("endpoint marshal reply", "subj", m.Subj, "err", err)
		return
	}
	m.From.Chan() <- &hub.Msg{Subj: m.Subj, Tok: m.Tok, Raw: raw}
}

// HubRouter raises actions through a hub whose router answers them, usually
// an endpoint in the same process with plugins signed on remotely.
type HubRouter struct {
	Hub     *hub.Hub
	Timeout time.Duration
}

// Raise implements Router.
func (r *HubRouter) Raise(ctx context.Context, a *Action) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return err
	}
	timeout := r.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d < timeout {
			timeout = d
		}
	}
	res, err := hub.Req(r.Hub, &hub.Msg{Subj: string(a.Kind), Raw: raw}, timeout)
	if err != nil {
		return err
	}
	var rep reply
	if err := json.Unmarshal(res.Raw, &rep); err != nil {
		return err
	}
	if rep.Err != "" {
		return errors.New(rep.Err)
	}
	switch a.Kind {
	case KindGetChildren, KindGetMembers, KindGetFields:
		a.Res = append([]ord.Ref{}, rep.Refs...)
	case KindGetByID:
		a.Res = rep.Path
	}
	return nil
}
