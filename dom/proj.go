package dom

import (
	"github.com/pkg/errors"

	"github.com/SpikedPunchVictim/gaia/log"
	"github.com/SpikedPunchVictim/gaia/ord"
	"github.com/SpikedPunchVictim/gaia/pth"
	"github.com/SpikedPunchVictim/gaia/rfc"
	"github.com/SpikedPunchVictim/gaia/uid"
)

// RootID is the well-known id of the root namespace. The authority must be
// mounted with the same id.
const RootID uid.ID = "root"

// Project is the local session over the shared object graph. It owns the
// root namespace, the identity registry and the action journal, and raises
// every mutation through its router before applying it locally.
//
// A project is single-threaded and cooperative like the collections it
// contains; drive it from one goroutine.
type Project struct {
	emitter
	Log  log.Logger
	reg  *uid.Registry
	gen  uid.Gen
	rt   rfc.Router
	jrn  rfc.Journal
	root *Namespace
}

// NewProject returns a project with an empty root namespace registered under
// RootID. All ids for new objects come from gen, all mutations are raised
// through rt.
func NewProject(gen uid.Gen, rt rfc.Router) *Project {
	p := &Project{Log: log.Root, reg: uid.NewRegistry(), gen: gen, rt: rt}
	p.root = newNamespace(RootID, "")
	p.reg.Register(RootID, p.root)
	p.hookNamespace(p.root)
	return p
}

// Root returns the root namespace. The root has no name and no parent and
// cannot be renamed, moved or deleted.
func (p *Project) Root() *Namespace { return p.root }

// Registry returns the project identity registry.
func (p *Project) Registry() *uid.Registry { return p.reg }

// Journal returns the record of all fulfilled actions.
func (p *Project) Journal() *rfc.Journal { return &p.jrn }

// Get resolves a qualified name to an object, or nil. Empty resolves to the
// root. When a model and an instance share a name the model wins.
func (p *Project) Get(path string) Obj {
	cur := p.root
	if path == "" {
		return cur
	}
	segs := pth.Split(path)
	for i, seg := range segs {
		last := i == len(segs)-1
		if e := cur.ns.Key(seg); e != nil {
			if last {
				return e.(*Namespace)
			}
			cur = e.(*Namespace)
			continue
		}
		if !last {
			return nil
		}
		if e := cur.ms.Key(seg); e != nil {
			return e.(*Model)
		}
		if e := cur.is.Key(seg); e != nil {
			return e.(*Instance)
		}
		return nil
	}
	return cur
}

// hookCol forwards collection events to project watchers.
func (p *Project) hookCol(src interface{}, c *ord.Col) {
	c.Watch(func(ev *ord.Event) {
		p.emit(&Event{Kind: ColChange, Src: src, Col: ev})
	})
}

func (p *Project) hookNamespace(n *Namespace) {
	p.hookCol(n, &n.ns)
	p.hookCol(n, &n.ms)
	p.hookCol(n, &n.is)
}

func (p *Project) hookModel(m *Model)       { p.hookCol(m, &m.ms) }
func (p *Project) hookInstance(i *Instance) { p.hookCol(i, &i.fs) }

// send delivers ev to the source watchers first, then to project watchers.
func (p *Project) send(src *emitter, ev *Event) {
	src.emit(ev)
	p.emit(ev)
}

// attach registers, parents and inserts a freshly accepted object.
func (p *Project) attach(col *ord.Col, par *Namespace, o Obj, idx int) error {
	err := col.CustomAdd(func() error {
		if err := p.reg.Register(o.UID(), o); err != nil {
			return err
		}
		o.setParent(par)
		return nil
	}, ord.Change{Entry: o, Idx: idx})
	if err != nil {
		return err
	}
	p.hook(o)
	return nil
}

func (p *Project) hook(o Obj) {
	switch t := o.(type) {
	case *Namespace:
		p.hookNamespace(t)
	case *Model:
		p.hookModel(t)
	case *Instance:
		p.hookInstance(t)
	}
}

// restore materializes or revives an object for a snapshot ref during
// reconciliation. Known ids are reused so object identity survives remote
// moves; unknown ids are constructed, registered and hooked.
func (p *Project) restore(par *Namespace, class Class, r ord.Ref) (ord.Entry, error) {
	if o := p.reg.Get(r.ID); o != nil {
		obj, ok := o.(Obj)
		if !ok || obj.Class() != class {
			return nil, errors.Errorf("dom: id %s bound to %T", r.ID, o)
		}
		obj.setParent(par)
		if obj.Name() != r.Key {
			obj.setName(r.Key)
		}
		return obj, nil
	}
	var obj Obj
	switch class {
	case ClassNamespace:
		obj = newNamespace(r.ID, r.Key)
	case ClassModel:
		obj = newModel(r.ID, r.Key)
	case ClassInstance:
		mo, _ := p.reg.Get(r.Aux).(*Model)
		if mo == nil {
			return nil, errors.Errorf("dom: instance %s with unknown model %s", r.ID, r.Aux)
		}
		inst, err := newInstance(r.ID, r.Key, mo)
		if err != nil {
			return nil, err
		}
		obj = inst
	default:
		return nil, errors.Errorf("dom: cannot restore class %s", class)
	}
	if err := p.reg.Register(obj.UID(), obj); err != nil {
		return nil, err
	}
	obj.setParent(par)
	p.hook(obj)
	return obj, nil
}
