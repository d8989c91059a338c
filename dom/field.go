package dom

import (
	"github.com/SpikedPunchVictim/gaia/uid"
	"github.com/SpikedPunchVictim/gaia/val"
)

// FieldID derives the stable field id from its instance and member ids.
// Fields have no identity of their own and are not registered.
func FieldID(inst, mem uid.ID) uid.ID {
	return uid.ID(string(inst) + ":" + string(mem))
}

// Field is the instance-side occurrence of a member. It starts out
// inheriting: its value is a clone of the member value and follows every
// member change. The first divergence, either a direct write to the field or
// a member change the field value cannot apply, detaches it until Reset.
type Field struct {
	emitter
	id    uid.ID
	inst  *Instance
	mem   *Member
	v     val.Value
	inh   bool
	stops []func()
}

func newField(inst *Instance, mem *Member) *Field {
	f := &Field{id: FieldID(inst.UID(), mem.UID()), inst: inst, mem: mem, inh: true}
	if mv := mem.Val(); mv != nil {
		f.v = mv.Clone()
		f.bind()
	}
	return f
}

func (f *Field) UID() uid.ID         { return f.id }
func (f *Field) Key() string         { return f.mem.Name() }
func (f *Field) Name() string        { return f.mem.Name() }
func (f *Field) Member() *Member     { return f.mem }
func (f *Field) Instance() *Instance { return f.inst }
func (f *Field) Val() val.Value      { return f.v }
func (f *Field) IsInheriting() bool  { return f.inh }

func (f *Field) bind() {
	f.stops = append(f.stops,
		f.mem.Val().Watch(f.onMember),
		f.v.Watch(f.onField),
	)
}

// onMember applies an incremental member change while inheriting. A change
// that cannot apply or does not converge detaches the field.
func (f *Field) onMember(c val.Change) {
	if !f.inh || f.v == nil {
		return
	}
	if err := f.v.Apply(c); err != nil {
		f.inh = false
		return
	}
	if !f.v.Equals(f.mem.Val()) {
		f.inh = false
	}
}

// onField detects direct writes. While the field value still equals the
// member value the write is indistinguishable from inheritance and the field
// stays attached.
func (f *Field) onField(val.Change) {
	if !f.inh {
		return
	}
	mv := f.mem.Val()
	if mv == nil || !f.v.Equals(mv) {
		f.inh = false
	}
}

// Reset re-synchronizes the field value with the current member value and
// resumes inheritance.
func (f *Field) Reset() {
	f.emit(&Event{Kind: ResetStart, Src: f})
	if mv := f.mem.Val(); mv != nil {
		if f.v == nil {
			f.v = mv.Clone()
			f.bind()
		} else {
			f.v.SetLocally(mv)
		}
	}
	f.inh = true
	f.emit(&Event{Kind: ResetEnd, Src: f})
}

// release unbinds the value watches. Called when the field leaves its
// instance.
func (f *Field) release() {
	for _, stop := range f.stops {
		stop()
	}
	f.stops = nil
}
