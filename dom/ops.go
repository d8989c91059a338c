package dom

import (
	"context"

	"github.com/pkg/errors"

	"github.com/SpikedPunchVictim/gaia/ord"
	"github.com/SpikedPunchVictim/gaia/rfc"
	"github.com/SpikedPunchVictim/gaia/uid"
	"github.com/SpikedPunchVictim/gaia/val"
)

// CreateNamespace raises a namespace creation under par and returns the new
// namespace on acceptance.
func (p *Project) CreateNamespace(ctx context.Context, par *Namespace, name string) (*Namespace, error) {
	if par == nil {
		return nil, argErr("create namespace without parent")
	}
	if name == "" {
		return nil, argErr("create namespace without name")
	}
	id, err := p.gen.Generate(ctx, "ns")
	if err != nil {
		return nil, err
	}
	ns := newNamespace(id, name)
	act := &rfc.Action{Kind: rfc.KindNamespaceCreate, ID: id, Dest: par.UID(), Name: name, Idx: par.ns.Len()}
	err = rfc.New(p.rt, act).Fulfill(func(a *rfc.Action) error {
		if err := p.attach(&par.ns, par, ns, a.Idx); err != nil {
			return err
		}
		p.jrn.Record(a)
		return nil
	}).Commit(ctx)
	if err != nil {
		return nil, err
	}
	return ns, nil
}

// CreateModel raises a model creation under par.
func (p *Project) CreateModel(ctx context.Context, par *Namespace, name string) (*Model, error) {
	if par == nil {
		return nil, argErr("create model without parent")
	}
	if name == "" {
		return nil, argErr("create model without name")
	}
	id, err := p.gen.Generate(ctx, "m")
	if err != nil {
		return nil, err
	}
	m := newModel(id, name)
	act := &rfc.Action{Kind: rfc.KindModelCreate, ID: id, Dest: par.UID(), Name: name, Idx: par.ms.Len()}
	err = rfc.New(p.rt, act).Fulfill(func(a *rfc.Action) error {
		if err := p.attach(&par.ms, par, m, a.Idx); err != nil {
			return err
		}
		p.jrn.Record(a)
		return nil
	}).Commit(ctx)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// CreateInstance raises an instance creation under par. The instance fields
// are built from the model members before the action is raised so their
// values track the members from the start; a decline unbinds them again.
func (p *Project) CreateInstance(ctx context.Context, par *Namespace, name string, model *Model) (*Instance, error) {
	if par == nil {
		return nil, argErr("create instance without parent")
	}
	if name == "" {
		return nil, argErr("create instance without name")
	}
	if model == nil {
		return nil, argErr("create instance %q without model", name)
	}
	id, err := p.gen.Generate(ctx, "i")
	if err != nil {
		return nil, err
	}
	inst, err := newInstance(id, name, model)
	if err != nil {
		return nil, err
	}
	act := &rfc.Action{Kind: rfc.KindInstanceCreate, ID: id, Dest: par.UID(), Ref: model.UID(), Name: name, Idx: par.is.Len()}
	err = rfc.New(p.rt, act).Fulfill(func(a *rfc.Action) error {
		if err := p.attach(&par.is, par, inst, a.Idx); err != nil {
			return err
		}
		p.jrn.Record(a)
		return nil
	}).Reject(func(a *rfc.Action, err error) {
		inst.release()
	}).Commit(ctx)
	if err != nil {
		return nil, err
	}
	return inst, nil
}

// MemberInfo describes one member to create. The value is cloned, the caller
// keeps ownership of the given value.
type MemberInfo struct {
	Name string
	Val  val.Value
}

// CreateMembers raises one batched action adding the given members at the
// end of the model. The whole batch is accepted or declined.
func (p *Project) CreateMembers(ctx context.Context, m *Model, infos ...MemberInfo) ([]*Member, error) {
	if m == nil {
		return nil, argErr("create members without model")
	}
	if len(infos) == 0 {
		return nil, nil
	}
	base := m.ms.Len()
	mems := make([]*Member, 0, len(infos))
	subs := make([]*rfc.Action, 0, len(infos))
	for i, info := range infos {
		if info.Name == "" {
			return nil, argErr("create member %d without name", i)
		}
		id, err := p.gen.Generate(ctx, "mb")
		if err != nil {
			return nil, err
		}
		var v val.Value
		if info.Val != nil {
			v = info.Val.Clone()
		}
		mems = append(mems, newMember(id, info.Name, m, v))
		subs = append(subs, &rfc.Action{Kind: rfc.KindMemberCreate, ID: id, Name: info.Name, Idx: base + i})
	}
	act := &rfc.Action{Kind: rfc.KindMemberCreate, ID: m.UID(), Sub: subs}
	err := rfc.New(p.rt, act).Fulfill(func(a *rfc.Action) error {
		sel := make([]ord.Change, 0, len(mems))
		for i, mem := range mems {
			sel = append(sel, ord.Change{Entry: mem, Idx: base + i})
		}
		err := m.ms.CustomAdd(func() error {
			for _, mem := range mems {
				if err := p.reg.Register(mem.UID(), mem); err != nil {
					return err
				}
			}
			return nil
		}, sel...)
		if err != nil {
			return err
		}
		p.jrn.Record(a)
		return nil
	}).Commit(ctx)
	if err != nil {
		return nil, err
	}
	return mems, nil
}

// Rename raises a rename of o. Renaming to the current name is a no-op.
func (p *Project) Rename(ctx context.Context, o Obj, name string) error {
	if o == nil {
		return argErr("rename without object")
	}
	if name == "" {
		return argErr("rename %q to empty name", o.Name())
	}
	if o.Parent() == nil {
		return argErr("cannot rename the root")
	}
	if o.Name() == name {
		return nil
	}
	act := &rfc.Action{Kind: rfc.KindRename, ID: o.UID(), Name: name}
	return rfc.New(p.rt, act).Fulfill(func(a *rfc.Action) error {
		old := o.Name()
		p.send(o.events(), &Event{Kind: NameChanging, Src: o, Name: name, Old: old})
		o.setName(name)
		p.send(o.events(), &Event{Kind: NameChanged, Src: o, Name: name, Old: old})
		p.jrn.Record(a)
		return nil
	}).Commit(ctx)
}

// Move raises a move of o to namespace to, appending it to the destination
// collection. Moving to the current parent is a no-op; the root cannot move.
func (p *Project) Move(ctx context.Context, o Obj, to *Namespace) error {
	if o == nil || to == nil {
		return argErr("move without object or destination")
	}
	from := o.Parent()
	if from == nil {
		return argErr("cannot move the root")
	}
	if to == from {
		return nil
	}
	if ns, ok := o.(*Namespace); ok {
		for cur := to; cur != nil; cur = cur.Parent() {
			if cur == ns {
				return argErr("cannot move %q into its own subtree", o.QName())
			}
		}
	}
	dst := to.colOf(o.Class())
	if dst.Key(o.Name()) != nil {
		return &NameError{Name: o.Name(), Dest: to.QName()}
	}
	act := &rfc.Action{Kind: rfc.KindMove, ID: o.UID(), Dest: to.UID()}
	return rfc.New(p.rt, act).Fulfill(func(a *rfc.Action) error {
		src := from.colOf(o.Class())
		i := src.IndexOf(o)
		if i < 0 {
			return errors.Errorf("dom: object %s not in its parent", o.UID())
		}
		if err := src.CustomRemove(nil, ord.Change{Entry: o, Idx: i}); err != nil {
			return err
		}
		err := dst.CustomAdd(func() error {
			o.setParent(to)
			return nil
		}, ord.Change{Entry: o, Idx: dst.Len()})
		if err != nil {
			// the object must not end up outside both collections
			if rerr := src.CustomAdd(nil, ord.Change{Entry: o, Idx: i}); rerr != nil {
				return errors.Wrapf(err, "dom: move source restore failed: %v", rerr)
			}
			return err
		}
		p.jrn.Record(a)
		return nil
	}).Commit(ctx)
}

// Reorder raises a reorder of o among its class siblings so it ends up at
// index to. A to of Len is accepted and means the last position.
func (p *Project) Reorder(ctx context.Context, o Obj, to int) error {
	if o == nil {
		return argErr("reorder without object")
	}
	par := o.Parent()
	if par == nil {
		return argErr("cannot reorder the root")
	}
	col := par.colOf(o.Class())
	from := col.IndexOf(o)
	if from < 0 {
		return errors.Errorf("dom: object %s not in its parent", o.UID())
	}
	act := &rfc.Action{Kind: rfc.KindReorder, ID: o.UID(), From: from, Idx: to}
	return p.reorder(ctx, act, col, from, to)
}

// ReorderMember raises a reorder of the member at index from in m.
func (p *Project) ReorderMember(ctx context.Context, m *Model, from, to int) error {
	if m == nil {
		return argErr("reorder member without model")
	}
	act := &rfc.Action{Kind: rfc.KindMemberReorder, ID: m.UID(), From: from, Idx: to}
	return p.reorder(ctx, act, &m.ms, from, to)
}

func (p *Project) reorder(ctx context.Context, act *rfc.Action, col *ord.Col, from, to int) error {
	if from < 0 || from >= col.Len() {
		return &ord.IndexError{Idx: from, Len: col.Len()}
	}
	if to < 0 || to > col.Len() {
		return &ord.IndexError{Idx: to, Len: col.Len()}
	}
	if to == col.Len() {
		to = col.Len() - 1
	}
	if from == to {
		return nil
	}
	act.Idx = to
	return rfc.New(p.rt, act).Fulfill(func(a *rfc.Action) error {
		if err := col.CustomMove(nil, from, to); err != nil {
			return err
		}
		p.jrn.Record(a)
		return nil
	}).Commit(ctx)
}

// Delete raises one batched delete for the given objects. Each object leaves
// its parent collection; descendants go with their subtree root. Registry
// entries are kept, ids are never reused.
func (p *Project) Delete(ctx context.Context, objs ...Obj) error {
	if len(objs) == 0 {
		return nil
	}
	subs := make([]*rfc.Action, 0, len(objs))
	for _, o := range objs {
		if o == nil {
			return argErr("delete nil object")
		}
		if o.Parent() == nil {
			return argErr("cannot delete the root")
		}
		subs = append(subs, &rfc.Action{Kind: rfc.KindDelete, ID: o.UID()})
	}
	act := &rfc.Action{Kind: rfc.KindDelete, Sub: subs}
	return rfc.New(p.rt, act).Fulfill(func(a *rfc.Action) error {
		group := make(map[*ord.Col][]ord.Change)
		for _, o := range objs {
			col := o.Parent().colOf(o.Class())
			i := col.IndexOf(o)
			if i < 0 {
				return errors.Errorf("dom: object %s not in its parent", o.UID())
			}
			group[col] = append(group[col], ord.Change{Entry: o, Idx: i})
		}
		for col, sel := range group {
			if err := col.CustomRemove(nil, sel...); err != nil {
				return err
			}
		}
		for _, o := range objs {
			releaseTree(o)
		}
		p.jrn.Record(a)
		return nil
	}).Commit(ctx)
}

// DeleteMembers raises one batched delete for the named members of m. Their
// fields leave the local instances with the next field reconciliation.
func (p *Project) DeleteMembers(ctx context.Context, m *Model, names ...string) error {
	if m == nil {
		return argErr("delete members without model")
	}
	if len(names) == 0 {
		return nil
	}
	mems := make([]*Member, 0, len(names))
	subs := make([]*rfc.Action, 0, len(names))
	for _, name := range names {
		e := m.ms.Key(name)
		if e == nil {
			return &NotFoundError{Path: m.QName() + "." + name}
		}
		mem := e.(*Member)
		mems = append(mems, mem)
		subs = append(subs, &rfc.Action{Kind: rfc.KindMemberDelete, ID: mem.UID()})
	}
	act := &rfc.Action{Kind: rfc.KindMemberDelete, ID: m.UID(), Sub: subs}
	return rfc.New(p.rt, act).Fulfill(func(a *rfc.Action) error {
		sel := make([]ord.Change, 0, len(mems))
		for _, mem := range mems {
			i := m.ms.IndexOf(mem)
			if i < 0 {
				return errors.Errorf("dom: member %s not in model", mem.UID())
			}
			sel = append(sel, ord.Change{Entry: mem, Idx: i})
		}
		if err := m.ms.CustomRemove(nil, sel...); err != nil {
			return err
		}
		p.jrn.Record(a)
		return nil
	}).Commit(ctx)
}

// UpdateMemberValue raises a value update for mem. The apply func is the
// only place the value may change; it runs between the ValueChanging and
// ValueChanged events on acceptance.
func (p *Project) UpdateMemberValue(ctx context.Context, mem *Member, old, next val.Value, apply func() error) error {
	if mem == nil || apply == nil {
		return argErr("update member value without member or apply")
	}
	act := &rfc.Action{Kind: rfc.KindValueUpdate, ID: mem.UID()}
	return rfc.New(p.rt, act).Fulfill(func(a *rfc.Action) error {
		p.send(&mem.emitter, &Event{Kind: ValueChanging, Src: mem, Val: next, OldVal: old})
		if err := apply(); err != nil {
			return err
		}
		p.send(&mem.emitter, &Event{Kind: ValueChanged, Src: mem, Val: next, OldVal: old})
		p.jrn.Record(a)
		return nil
	}).Commit(ctx)
}

// UpdateFieldValue raises a value update for f, like UpdateMemberValue.
func (p *Project) UpdateFieldValue(ctx context.Context, f *Field, old, next val.Value, apply func() error) error {
	if f == nil || apply == nil {
		return argErr("update field value without field or apply")
	}
	act := &rfc.Action{Kind: rfc.KindValueUpdate, ID: f.UID()}
	return rfc.New(p.rt, act).Fulfill(func(a *rfc.Action) error {
		p.send(&f.emitter, &Event{Kind: ValueChanging, Src: f, Val: next, OldVal: old})
		if err := apply(); err != nil {
			return err
		}
		p.send(&f.emitter, &Event{Kind: ValueChanged, Src: f, Val: next, OldVal: old})
		p.jrn.Record(a)
		return nil
	}).Commit(ctx)
}

// SetMemberValue raises an update assigning v to the member value.
func (p *Project) SetMemberValue(ctx context.Context, mem *Member, v val.Value) error {
	if mem == nil || mem.Val() == nil {
		return argErr("set value on member without value")
	}
	cur := mem.Val()
	return p.UpdateMemberValue(ctx, mem, cur.Clone(), v, func() error {
		return cur.Set(v)
	})
}

// SetFieldValue raises an update assigning v to the field value. A direct
// field write detaches the field from its member.
func (p *Project) SetFieldValue(ctx context.Context, f *Field, v val.Value) error {
	if f == nil || f.Val() == nil {
		return argErr("set value on field without value")
	}
	cur := f.Val()
	return p.UpdateFieldValue(ctx, f, cur.Clone(), v, func() error {
		return cur.Set(v)
	})
}

// UpdateChildren reconciles the class children of par against the authority.
// A nil result means the authority reported no change.
func (p *Project) UpdateChildren(ctx context.Context, par *Namespace, class Class) error {
	if par == nil {
		return argErr("update children without namespace")
	}
	act := &rfc.Action{Kind: rfc.KindGetChildren, ID: par.UID(), Class: class.String()}
	return rfc.New(p.rt, act).Fulfill(func(a *rfc.Action) error {
		if a.Res == nil {
			return nil
		}
		refs, ok := a.Res.([]ord.Ref)
		if !ok {
			return errors.Errorf("dom: unexpected children result %T", a.Res)
		}
		col := par.colOf(class)
		// remote renames first, the sync below matches by id only
		for _, r := range refs {
			if e := col.ByID(r.ID); e != nil && e.Key() != r.Key {
				e.(Obj).setName(r.Key)
			}
		}
		err := col.Sync(refs, func(r ord.Ref) (ord.Entry, error) {
			return p.restore(par, class, r)
		})
		if err != nil {
			return err
		}
		p.jrn.Record(a)
		return nil
	}).Commit(ctx)
}

// UpdateMembers reconciles the member list of m against the authority.
// Members created by other participants are restored without values.
func (p *Project) UpdateMembers(ctx context.Context, m *Model) error {
	if m == nil {
		return argErr("update members without model")
	}
	act := &rfc.Action{Kind: rfc.KindGetMembers, ID: m.UID()}
	return rfc.New(p.rt, act).Fulfill(func(a *rfc.Action) error {
		if a.Res == nil {
			return nil
		}
		refs, ok := a.Res.([]ord.Ref)
		if !ok {
			return errors.Errorf("dom: unexpected member result %T", a.Res)
		}
		for _, r := range refs {
			if e := m.ms.ByID(r.ID); e != nil && e.Key() != r.Key {
				e.(*Member).name = r.Key
			}
		}
		err := m.ms.Sync(refs, func(r ord.Ref) (ord.Entry, error) {
			if o := p.reg.Get(r.ID); o != nil {
				mem, ok := o.(*Member)
				if !ok || mem.Model() != m {
					return nil, errors.Errorf("dom: id %s is no member of %s", r.ID, m.QName())
				}
				return mem, nil
			}
			mem := newMember(r.ID, r.Key, m, nil)
			if err := p.reg.Register(mem.UID(), mem); err != nil {
				return nil, err
			}
			return mem, nil
		})
		if err != nil {
			return err
		}
		p.jrn.Record(a)
		return nil
	}).Commit(ctx)
}

// UpdateFields reconciles the fields of inst against the authoritative
// member list of its model, keeping fields in lock-step with members.
func (p *Project) UpdateFields(ctx context.Context, inst *Instance) error {
	if inst == nil {
		return argErr("update fields without instance")
	}
	act := &rfc.Action{Kind: rfc.KindGetFields, ID: inst.UID()}
	return rfc.New(p.rt, act).Fulfill(func(a *rfc.Action) error {
		if a.Res == nil {
			return nil
		}
		refs, ok := a.Res.([]ord.Ref)
		if !ok {
			return errors.Errorf("dom: unexpected field result %T", a.Res)
		}
		frefs := make([]ord.Ref, 0, len(refs))
		for _, r := range refs {
			frefs = append(frefs, ord.Ref{ID: FieldID(inst.UID(), r.ID), Key: r.Key, Aux: r.ID})
		}
		err := inst.fs.Sync(frefs, func(r ord.Ref) (ord.Entry, error) {
			mem, _ := p.reg.Get(r.Aux).(*Member)
			if mem == nil {
				return nil, errors.Errorf("dom: field for unknown member %s", r.Aux)
			}
			return newField(inst, mem), nil
		})
		if err != nil {
			return err
		}
		p.jrn.Record(a)
		return nil
	}).Commit(ctx)
}

// GetByID resolves an object by id, first locally and then by asking the
// authority for its path. Remote objects must already be materialized along
// their path; otherwise the lookup reports not found.
func (p *Project) GetByID(ctx context.Context, class Class, id uid.ID) (Obj, error) {
	if id == "" {
		return nil, argErr("get by empty id")
	}
	if o := p.reg.Get(id); o != nil {
		if obj, ok := o.(Obj); ok && obj.Class() == class {
			return obj, nil
		}
		return nil, &NotFoundError{ID: id}
	}
	var res Obj
	act := &rfc.Action{Kind: rfc.KindGetByID, ID: id}
	err := rfc.New(p.rt, act).Fulfill(func(a *rfc.Action) error {
		path, _ := a.Res.(string)
		if path == "" {
			return &NotFoundError{ID: id}
		}
		o := p.Get(path)
		if o == nil || o.UID() != id || o.Class() != class {
			return &NotFoundError{ID: id, Path: path}
		}
		res = o
		return nil
	}).Commit(ctx)
	if err != nil {
		return nil, err
	}
	return res, nil
}
