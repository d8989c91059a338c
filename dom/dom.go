// Package dom provides the domain object graph: namespaces holding models and
// instances, models holding ordered members, instances holding fields that
// track their member values. All mutation goes through a project, which
// raises each change as an action and applies it only on acceptance.
package dom

import (
	"github.com/SpikedPunchVictim/gaia/ord"
	"github.com/SpikedPunchVictim/gaia/pth"
	"github.com/SpikedPunchVictim/gaia/rfc"
	"github.com/SpikedPunchVictim/gaia/uid"
	"github.com/SpikedPunchVictim/gaia/val"
)

// Class enumerates the object kinds held by namespace collections.
type Class int

const (
	ClassNamespace Class = iota
	ClassModel
	ClassInstance
)

func (c Class) String() string {
	switch c {
	case ClassNamespace:
		return rfc.ClassNamespace
	case ClassModel:
		return rfc.ClassModel
	case ClassInstance:
		return rfc.ClassInstance
	}
	return "invalid"
}

// Obj is a named object in the graph tree. The concrete types are Namespace,
// Model and Instance; members and fields live below them and are not Objs.
type Obj interface {
	ord.Entry
	// Name returns the object name, unique per class among siblings.
	Name() string
	// QName returns the dotted path from the root, excluding the root.
	QName() string
	// Parent returns the containing namespace or nil for the root.
	Parent() *Namespace
	// Class returns the object class.
	Class() Class

	events() *emitter
	setName(name string)
	setParent(par *Namespace)
}

// node carries the common object state.
type node struct {
	emitter
	id   uid.ID
	name string
	par  *Namespace
}

func (n *node) UID() uid.ID        { return n.id }
func (n *node) Key() string        { return n.name }
func (n *node) Name() string       { return n.name }
func (n *node) Parent() *Namespace { return n.par }

func (n *node) QName() string {
	if n.par == nil {
		return n.name
	}
	return pth.Join(n.par.QName(), n.name)
}

func (n *node) events() *emitter       { return &n.emitter }
func (n *node) setName(name string)    { n.name = name }
func (n *node) setParent(p *Namespace) { n.par = p }

// Namespace groups child namespaces, models and instances. Each class has its
// own ordered collection with independent name uniqueness.
type Namespace struct {
	node
	ns ord.Col
	ms ord.Col
	is ord.Col
}

func newNamespace(id uid.ID, name string) *Namespace {
	n := &Namespace{}
	n.id, n.name = id, name
	return n
}

func (n *Namespace) Class() Class          { return ClassNamespace }
func (n *Namespace) Namespaces() *ord.Col  { return &n.ns }
func (n *Namespace) Models() *ord.Col      { return &n.ms }
func (n *Namespace) Instances() *ord.Col   { return &n.is }

func (n *Namespace) colOf(c Class) *ord.Col {
	switch c {
	case ClassModel:
		return &n.ms
	case ClassInstance:
		return &n.is
	}
	return &n.ns
}

// Model describes a shape as an ordered list of members.
type Model struct {
	node
	ms ord.Col
}

func newModel(id uid.ID, name string) *Model {
	m := &Model{}
	m.id, m.name = id, name
	return m
}

func (m *Model) Class() Class      { return ClassModel }
func (m *Model) Members() *ord.Col { return &m.ms }

// Member returns the named member or nil.
func (m *Model) Member(name string) *Member {
	if e := m.ms.Key(name); e != nil {
		return e.(*Member)
	}
	return nil
}

// Member is a named, valued slot on a model. The value may be nil for
// members restored from an authority snapshot that carries no values.
type Member struct {
	emitter
	id    uid.ID
	name  string
	model *Model
	v     val.Value
}

func newMember(id uid.ID, name string, m *Model, v val.Value) *Member {
	return &Member{id: id, name: name, model: m, v: v}
}

func (m *Member) UID() uid.ID    { return m.id }
func (m *Member) Key() string    { return m.name }
func (m *Member) Name() string   { return m.name }
func (m *Member) Model() *Model  { return m.model }
func (m *Member) Val() val.Value { return m.v }

// Instance is a concrete occurrence of a model. Its fields mirror the model
// members one to one and are created and destroyed with them.
type Instance struct {
	node
	model *Model
	fs    ord.Col
}

func newInstance(id uid.ID, name string, model *Model) (*Instance, error) {
	i := &Instance{model: model}
	i.id, i.name = id, name
	i.fs.Watch(func(ev *ord.Event) {
		if ev.Kind != ord.Removed {
			return
		}
		for _, ch := range ev.Sel {
			ch.Entry.(*Field).release()
		}
	})
	for _, e := range model.ms.All() {
		if err := i.fs.Add(newField(i, e.(*Member))); err != nil {
			i.release()
			return nil, err
		}
	}
	return i, nil
}

func (i *Instance) Class() Class     { return ClassInstance }
func (i *Instance) Model() *Model    { return i.model }
func (i *Instance) Fields() *ord.Col { return &i.fs }

// Field returns the named field or nil.
func (i *Instance) Field(name string) *Field {
	if e := i.fs.Key(name); e != nil {
		return e.(*Field)
	}
	return nil
}

// release unbinds all field watches, used when the instance is discarded
// after a decline or deleted.
func (i *Instance) release() {
	for _, e := range i.fs.All() {
		e.(*Field).release()
	}
}

// releaseTree releases all instances in a deleted subtree so their fields
// stop tracking member values.
func releaseTree(o Obj) {
	switch t := o.(type) {
	case *Instance:
		t.release()
	case *Namespace:
		for _, e := range t.is.All() {
			e.(*Instance).release()
		}
		for _, e := range t.ns.All() {
			releaseTree(e.(*Namespace))
		}
	}
}
