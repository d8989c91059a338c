// Package domtest has default fixtures and helpers for testing.
package domtest

import (
	"context"

	"github.com/pkg/errors"

	"github.com/SpikedPunchVictim/gaia/dom"
	"github.com/SpikedPunchVictim/gaia/rfc"
	"github.com/SpikedPunchVictim/gaia/uid"
	"github.com/SpikedPunchVictim/gaia/val"
)

// Fixture is a project wired to its own in-process authority, populated with
// a small sample tree: namespace app holding model person with members name
// and age, and instance bob of that model.
type Fixture struct {
	*dom.Project
	Auth *rfc.Authority
	App  *dom.Namespace
	Mod  *dom.Model
	Inst *dom.Instance
}

// New returns a fresh fixture or an error.
func New() (*Fixture, error) {
	au := rfc.NewAuthority()
	if err := au.Mount(dom.RootID); err != nil {
		return nil, err
	}
	p := dom.NewProject(uid.UUID{}, au)
	ctx := context.Background()
	app, err := p.CreateNamespace(ctx, p.Root(), "app")
	if err != nil {
		return nil, errors.WithMessage(err, "namespace")
	}
	m, err := p.CreateModel(ctx, app, "person")
	if err != nil {
		return nil, errors.WithMessage(err, "model")
	}
	_, err = p.CreateMembers(ctx, m,
		dom.MemberInfo{Name: "name", Val: val.NewStr("bob")},
		dom.MemberInfo{Name: "age", Val: val.NewInt(30)},
	)
	if err != nil {
		return nil, errors.WithMessage(err, "members")
	}
	inst, err := p.CreateInstance(ctx, app, "bob", m)
	if err != nil {
		return nil, errors.WithMessage(err, "instance")
	}
	return &Fixture{Project: p, Auth: au, App: app, Mod: m, Inst: inst}, nil
}

// Must panics on a fixture setup error.
func Must(f *Fixture, err error) *Fixture {
	if err != nil {
		panic(err)
	}
	return f
}
