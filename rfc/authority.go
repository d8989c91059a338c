package rfc

import (
	"context"

	"github.com/pkg/errors"

	"github.com/SpikedPunchVictim/gaia/ord"
	"github.com/SpikedPunchVictim/gaia/pth"
	"github.com/SpikedPunchVictim/gaia/uid"
)

// Object classes as used in action payloads and authority bookkeeping.
const (
	ClassNamespace = "namespace"
	ClassModel     = "model"
	ClassInstance  = "instance"
	ClassMember    = "member"
)

var classes = []string{ClassNamespace, ClassModel, ClassInstance, ClassMember}

type aob struct {
	id    uid.ID
	name  string
	class string
	par   uid.ID
	ref   uid.ID // model id for instances
}

type sibKey struct {
	par   uid.ID
	class string
}

// Authority is the reference resolver. It keeps its own name, order and
// identity bookkeeping for the whole tree and accepts or declines raised
// actions against it. It implements Router and can be used in-process or
// served to remote participants over the hub.
//
// The authority can also be mutated directly through Create, Rename, Remove
// and Reorder; that is the server-side path that makes local collections go
// stale until the next get round trip. Not safe for concurrent use.
type Authority struct {
	objs map[uid.ID]*aob
	kids map[sibKey][]*aob
}

// NewAuthority returns a new empty authority.
func NewAuthority() *Authority {
	return &Authority{
		objs: make(map[uid.ID]*aob, 64),
		kids: make(map[sibKey][]*aob),
	}
}

// Mount registers the root namespace id. The root has no name and no parent
// and must be mounted before any action referencing it can resolve.
func (au *Authority) Mount(id uid.ID) error {
	if id == "" {
		return errors.New("rfc: mount with empty id")
	}
	if _, ok := au.objs[id]; ok {
		return errors.Errorf("rfc: id %s already known", id)
	}
	au.objs[id] = &aob{id: id, class: ClassNamespace}
	return nil
}

func (au *Authority) siblings(par uid.ID, class string) []*aob {
	return au.kids[sibKey{par, class}]
}

func (au *Authority) named(par uid.ID, class, name string) *aob {
	for _, o := range au.siblings(par, class) {
		if o.name == name {
			return o
		}
	}
	return nil
}

func (au *Authority) insert(o *aob, idx int) error {
	k := sibKey{o.par, o.class}
	list := au.kids[k]
	if idx < 0 || idx > len(list) {
		idx = len(list)
	}
	list = append(list, nil)
	copy(list[idx+1:], list[idx:])
	list[idx] = o
	au.kids[k] = list
	au.objs[o.id] = o
	return nil
}

func (au *Authority) unlink(o *aob) {
	k := sibKey{o.par, o.class}
	list := au.kids[k]
	for i, e := range list {
		if e == o {
			au.kids[k] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

func (au *Authority) drop(o *aob) {
	for _, class := range classes {
		for _, kid := range append([]*aob(nil), au.siblings(o.id, class)...) {
			au.drop(kid)
		}
		delete(au.kids, sibKey{o.id, class})
	}
	au.unlink(o)
	delete(au.objs, o.id)
}

func (au *Authority) path(o *aob) string {
	if o.par == "" {
		return o.name
	}
	par := au.objs[o.par]
	if par == nil {
		return o.name
	}
	return pth.Join(au.path(par), o.name)
}

// Refs returns the authoritative child list for par and class in order.
func (au *Authority) Refs(par uid.ID, class string) []ord.Ref {
	list := au.siblings(par, class)
	res := make([]ord.Ref, 0, len(list))
	for _, o := range list {
		res = append(res, ord.Ref{ID: o.id, Key: o.name, Aux: o.ref})
	}
	return res
}

// Create inserts a new object directly, bypassing the action protocol. The
// ref argument names the model for instances and is empty otherwise. An idx
// of -1 appends.
func (au *Authority) Create(class string, id, par uid.ID, name string, ref uid.ID, idx int) error {
	o, err := au.checkCreate(class, id, par, name, ref)
	if err != nil {
		return err
	}
	return au.insert(o, idx)
}

// Rename changes an object's name directly.
func (au *Authority) Rename(id uid.ID, name string) error {
	o := au.objs[id]
	if o == nil {
		return errors.Errorf("rfc: unknown object %s", id)
	}
	return au.rename(o, name)
}

// Remove deletes an object and its subtree directly.
func (au *Authority) Remove(id uid.ID) error {
	o := au.objs[id]
	if o == nil {
		return errors.Errorf("rfc: unknown object %s", id)
	}
	au.drop(o)
	return nil
}

// Reorder moves an object to index to among its class siblings directly.
func (au *Authority) Reorder(id uid.ID, to int) error {
	o := au.objs[id]
	if o == nil {
		return errors.Errorf("rfc: unknown object %s", id)
	}
	return au.reorder(o, to)
}

func (au *Authority) checkCreate(class string, id, par uid.ID, name string, ref uid.ID) (*aob, error) {
	if id == "" || name == "" {
		return nil, errors.New("rfc: create without id or name")
	}
	if _, ok := au.objs[id]; ok {
		return nil, errors.Errorf("rfc: id %s already known", id)
	}
	p := au.objs[par]
	if p == nil {
		return nil, errors.Errorf("rfc: unknown parent %s", par)
	}
	wantPar := ClassNamespace
	if class == ClassMember {
		wantPar = ClassModel
	}
	if p.class != wantPar {
		return nil, errors.Errorf("rfc: parent %s is no %s", par, wantPar)
	}
	if au.named(par, class, name) != nil {
		return nil, errors.Errorf("rfc: duplicate name %q at %s", name, par)
	}
	if class == ClassInstance {
		m := au.objs[ref]
		if m == nil || m.class != ClassModel {
			return nil, errors.Errorf("rfc: instance %s without model", name)
		}
	}
	return &aob{id: id, name: name, class: class, par: par, ref: ref}, nil
}

func (au *Authority) rename(o *aob, name string) error {
	if name == "" {
		return errors.New("rfc: rename to empty name")
	}
	if dup := au.named(o.par, o.class, name); dup != nil && dup != o {
		return errors.Errorf("rfc: duplicate name %q at %s", name, o.par)
	}
	o.name = name
	return nil
}

func (au *Authority) reorder(o *aob, to int) error {
	k := sibKey{o.par, o.class}
	list := au.kids[k]
	if to < 0 || to >= len(list) {
		return errors.Errorf("rfc: reorder index %d out of range with length %d", to, len(list))
	}
	from := -1
	for i, e := range list {
		if e == o {
			from = i
			break
		}
	}
	if from < 0 {
		return errors.Errorf("rfc: object %s not ordered", o.id)
	}
	list = append(list[:from], list[from+1:]...)
	list = append(list, nil)
	copy(list[to+1:], list[to:])
	list[to] = o
	au.kids[k] = list
	return nil
}

func (au *Authority) within(o, root *aob) bool {
	for o != nil {
		if o == root {
			return true
		}
		o = au.objs[o.par]
	}
	return false
}

// splitFieldID splits a derived instance:member field id.
func splitFieldID(id uid.ID) (inst, mem uid.ID, ok bool) {
	for i := 1; i < len(id)-1; i++ {
		if id[i] == ':' {
			return id[:i], id[i+1:], true
		}
	}
	return "", "", false
}

func classOf(k Kind) string {
	switch k {
	case KindNamespaceCreate:
		return ClassNamespace
	case KindModelCreate:
		return ClassModel
	case KindInstanceCreate:
		return ClassInstance
	case KindMemberCreate:
		return ClassMember
	}
	return ""
}

// Raise validates the action against the authoritative state and applies it
// there. Batched actions are validated completely before the first apply, so
// the whole batch is accepted or declined.
func (au *Authority) Raise(ctx context.Context, a *Action) error {
	switch a.Kind {
	case KindNamespaceCreate, KindModelCreate, KindInstanceCreate:
		o, err := au.checkCreate(classOf(a.Kind), a.ID, a.Dest, a.Name, a.Ref)
		if err != nil {
			return err
		}
		return au.insert(o, a.Idx)
	case KindMemberCreate:
		return au.memberCreate(a)
	case KindRename:
		o := au.objs[a.ID]
		if o == nil {
			return errors.Errorf("rfc: unknown object %s", a.ID)
		}
		return au.rename(o, a.Name)
	case KindMove:
		return au.move(a)
	case KindReorder, KindMemberReorder:
		id := a.ID
		if a.Kind == KindMemberReorder {
			list := au.siblings(a.ID, ClassMember)
			if a.From < 0 || a.From >= len(list) {
				return errors.Errorf("rfc: reorder index %d out of range with length %d", a.From, len(list))
			}
			id = list[a.From].id
		}
		o := au.objs[id]
		if o == nil {
			return errors.Errorf("rfc: unknown object %s", id)
		}
		return au.reorder(o, a.Idx)
	case KindDelete, KindMemberDelete:
		return au.delete(a)
	case KindValueUpdate:
		// values are not tracked by the authority, the target must still
		// resolve; field ids are derived and checked against both halves
		if au.objs[a.ID] != nil {
			return nil
		}
		if inst, mem, ok := splitFieldID(a.ID); ok {
			i, m := au.objs[inst], au.objs[mem]
			if i != nil && i.class == ClassInstance &&
				m != nil && m.class == ClassMember && m.par == i.ref {
				return nil
			}
		}
		return errors.Errorf("rfc: unknown object %s", a.ID)
	case KindGetChildren:
		if o := au.objs[a.ID]; o == nil || o.class != ClassNamespace {
			return errors.Errorf("rfc: unknown namespace %s", a.ID)
		}
		a.Res = au.Refs(a.ID, a.Class)
		return nil
	case KindGetMembers:
		if o := au.objs[a.ID]; o == nil || o.class != ClassModel {
			return errors.Errorf("rfc: unknown model %s", a.ID)
		}
		a.Res = au.Refs(a.ID, ClassMember)
		return nil
	case KindGetFields:
		o := au.objs[a.ID]
		if o == nil || o.class != ClassInstance {
			return errors.Errorf("rfc: unknown instance %s", a.ID)
		}
		a.Res = au.Refs(o.ref, ClassMember)
		return nil
	case KindGetByID:
		if o := au.objs[a.ID]; o != nil {
			a.Res = au.path(o)
		} else {
			a.Res = ""
		}
		return nil
	}
	return errors.Errorf("rfc: unknown action kind %s", a.Kind)
}

func (au *Authority) memberCreate(a *Action) error {
	model := au.objs[a.ID]
	if model == nil || model.class != ClassModel {
		return errors.Errorf("rfc: unknown model %s", a.ID)
	}
	base := len(au.siblings(a.ID, ClassMember))
	seen := make(map[string]bool, len(a.Sub))
	ids := make(map[uid.ID]bool, len(a.Sub))
	for i, sub := range a.Sub {
		if sub.ID == "" || sub.Name == "" {
			return errors.New("rfc: member create without id or name")
		}
		if _, ok := au.objs[sub.ID]; ok || ids[sub.ID] {
			return errors.Errorf("rfc: id %s already known", sub.ID)
		}
		if au.named(a.ID, ClassMember, sub.Name) != nil || seen[sub.Name] {
			return errors.Errorf("rfc: duplicate member name %q", sub.Name)
		}
		if sub.Idx < 0 || sub.Idx > base+i {
			return errors.Errorf("rfc: member index %d out of range with length %d", sub.Idx, base+i)
		}
		seen[sub.Name] = true
		ids[sub.ID] = true
	}
	for _, sub := range a.Sub {
		o := &aob{id: sub.ID, name: sub.Name, class: ClassMember, par: a.ID}
		if err := au.insert(o, sub.Idx); err != nil {
			return err
		}
	}
	return nil
}

func (au *Authority) move(a *Action) error {
	o := au.objs[a.ID]
	if o == nil {
		return errors.Errorf("rfc: unknown object %s", a.ID)
	}
	if o.par == "" {
		return errors.New("rfc: cannot move the root")
	}
	dest := au.objs[a.Dest]
	if dest == nil || dest.class != ClassNamespace {
		return errors.Errorf("rfc: unknown destination %s", a.Dest)
	}
	if au.within(dest, o) {
		return errors.Errorf("rfc: cannot move %s into its own subtree", a.ID)
	}
	if au.named(a.Dest, o.class, o.name) != nil {
		return errors.Errorf("rfc: duplicate name %q at %s", o.name, a.Dest)
	}
	au.unlink(o)
	o.par = a.Dest
	return au.insert(o, -1)
}

func (au *Authority) delete(a *Action) error {
	targets := a.Sub
	if len(targets) == 0 && a.ID != "" {
		targets = []*Action{{ID: a.ID}}
	}
	objs := make([]*aob, 0, len(targets))
	for _, sub := range targets {
		o := au.objs[sub.ID]
		if o == nil {
			return errors.Errorf("rfc: unknown object %s", sub.ID)
		}
		if o.par == "" {
			return errors.New("rfc: cannot delete the root")
		}
		if a.Kind == KindMemberDelete && (o.class != ClassMember || o.par != a.ID) {
			return errors.Errorf("rfc: %s is no member of %s", sub.ID, a.ID)
		}
		objs = append(objs, o)
	}
	for _, o := range objs {
		if au.objs[o.id] == nil {
			continue // already gone with an earlier subtree
		}
		au.drop(o)
	}
	return nil
}
