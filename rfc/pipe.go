package rfc

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// Error wraps an authority rejection. It carries the declined action and the
// underlying cause.
type Error struct {
	Act   *Action
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("rfc: action %s declined: %v", e.Act.Kind, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

type state int

const (
	stCreated state = iota
	stSubmitted
	stCommitted
)

// Pipeline drives one action through created, submitted and resolved to
// committed. The fulfill hook is the only place local state may mutate, so
// nothing changes before the authority agreed to it. The pipeline does not
// fence concurrent in-flight actions against the same target; callers
// serialize logically dependent operations.
type Pipeline struct {
	rt  Router
	act *Action
	ful func(*Action) error
	rej func(*Action, error)
	st  state
}

// New returns a pipeline for the given router and action.
func New(rt Router, act *Action) *Pipeline {
	return &Pipeline{rt: rt, act: act}
}

// Fulfill registers the local-apply hook run only after the authority
// accepted the action.
func (p *Pipeline) Fulfill(fn func(*Action) error) *Pipeline {
	p.ful = fn
	return p
}

// Reject registers a hook run when the authority declines, before the
// rejection surfaces as an *Error.
func (p *Pipeline) Reject(fn func(*Action, error)) *Pipeline {
	p.rej = fn
	return p
}

// Commit submits the action and awaits resolution. On rejection the reject
// hook runs and an *Error is returned; the action then had no local effect.
// An error from the fulfill hook propagates as is.
func (p *Pipeline) Commit(ctx context.Context) error {
	if p.st != stCreated {
		return errors.Errorf("rfc: action %s committed twice", p.act.Kind)
	}
	if p.rt == nil {
		return errors.New("rfc: no router")
	}
	p.st = stSubmitted
	if err := p.rt.Raise(ctx, p.act); err != nil {
		p.st = stCommitted
		if p.rej != nil {
			p.rej(p.act, err)
		}
		return &Error{Act: p.act, Cause: err}
	}
	var err error
	if p.ful != nil {
		err = p.ful(p.act)
	}
	p.st = stCommitted
	return err
}
