// Package ord provides the ordered, key-unique collections that hold all
// children of the object tree, together with their change and event model.
//
// Mutations are transactional. A batch is fully validated before the first
// splice and either applies completely or not at all. Batched additions are
// sorted by target index ascending and spliced low to high so earlier
// insertions do not shift later ones; batched removals are sorted by index
// descending and spliced high to low so earlier removals do not invalidate
// later indices. Any change to these rules corrupts collection order for
// combined operations.
package ord

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/SpikedPunchVictim/gaia/uid"
)

// Entry is an item held by a collection. The key must be unique among the
// entries of one collection, the id must be set before insertion.
type Entry interface {
	UID() uid.ID
	Key() string
}

// Kind enumerates the collection lifecycle events. The *ing events fire
// before the splice, the *ed events after, always in that order.
type Kind int

const (
	Adding Kind = iota
	Added
	Removing
	Removed
	Moving
	Moved
)

func (k Kind) String() string {
	switch k {
	case Adding:
		return "adding"
	case Added:
		return "added"
	case Removing:
		return "removing"
	case Removed:
		return "removed"
	case Moving:
		return "moving"
	case Moved:
		return "moved"
	}
	return fmt.Sprintf("kind%d", int(k))
}

// Change pairs an entry with an index. For additions the index is the target
// position in the final list, for removals the position in the current list.
// For moves the index is the final position and From the current one.
type Change struct {
	Entry Entry
	Idx   int
	From  int
}

// Event carries one collection change with the full set of affected pairs, so
// observers can build downstream state without re-querying the collection
// mid-mutation. The selection is ordered by index ascending.
type Event struct {
	Kind Kind
	Sel  []Change
}

// IndexError reports an index outside the valid range of an operation.
type IndexError struct {
	Idx int
	Len int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("ord: index %d out of range with length %d", e.Idx, e.Len)
}

// Col is an ordered, key-unique collection. It is not safe for concurrent
// use; the engine runs single-threaded and cooperative.
type Col struct {
	list []Entry
	subs []*func(*Event)
}

// Len returns the number of entries.
func (c *Col) Len() int { return len(c.list) }

// Idx returns the entry at index i or nil.
func (c *Col) Idx(i int) Entry {
	if i < 0 || i >= len(c.list) {
		return nil
	}
	return c.list[i]
}

// Key returns the entry with the given key or nil.
func (c *Col) Key(k string) Entry {
	for _, e := range c.list {
		if e.Key() == k {
			return e
		}
	}
	return nil
}

// ByID returns the entry with the given id or nil.
func (c *Col) ByID(id uid.ID) Entry {
	for _, e := range c.list {
		if e.UID() == id {
			return e
		}
	}
	return nil
}

// IndexOf returns the index of the entry with the same id or -1.
func (c *Col) IndexOf(e Entry) int {
	if e == nil {
		return -1
	}
	return c.indexOfID(e.UID())
}

func (c *Col) indexOfID(id uid.ID) int {
	for i, e := range c.list {
		if e.UID() == id {
			return i
		}
	}
	return -1
}

// All returns a copy of the entry list in order.
func (c *Col) All() []Entry {
	res := make([]Entry, len(c.list))
	copy(res, c.list)
	return res
}

// Watch registers an observer and returns a function that removes it again.
// Observers are called synchronously in registration order.
func (c *Col) Watch(fn func(*Event)) func() {
	p := &fn
	c.subs = append(c.subs, p)
	return func() {
		for i, s := range c.subs {
			if s == p {
				c.subs = append(c.subs[:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

func (c *Col) fire(k Kind, sel []Change) {
	if len(c.subs) == 0 {
		return
	}
	ev := &Event{Kind: k, Sel: sel}
	subs := make([]*func(*Event), len(c.subs))
	copy(subs, c.subs)
	for _, s := range subs {
		(*s)(ev)
	}
}

// Insert inserts e at index i.
func (c *Col) Insert(i int, e Entry) error {
	return c.CustomAdd(nil, Change{Entry: e, Idx: i})
}

// Add appends the given entries in order.
func (c *Col) Add(es ...Entry) error {
	sel := make([]Change, 0, len(es))
	for i, e := range es {
		sel = append(sel, Change{Entry: e, Idx: len(c.list) + i})
	}
	return c.CustomAdd(nil, sel...)
}

// Remove removes the given entries, matched by id.
func (c *Col) Remove(es ...Entry) error {
	sel := make([]Change, 0, len(es))
	for _, e := range es {
		if e == nil {
			return errors.New("ord: remove nil entry")
		}
		i := c.indexOfID(e.UID())
		if i < 0 {
			return errors.Errorf("ord: entry %s not in collection", e.UID())
		}
		sel = append(sel, Change{Entry: c.list[i], Idx: i})
	}
	return c.CustomRemove(nil, sel...)
}

// RemoveAt removes and returns the entry at index i.
func (c *Col) RemoveAt(i int) (Entry, error) {
	if i < 0 || i >= len(c.list) {
		return nil, &IndexError{Idx: i, Len: len(c.list)}
	}
	e := c.list[i]
	err := c.CustomRemove(nil, Change{Entry: e, Idx: i})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// RemoveAll removes all entries matching pred and returns them in order.
func (c *Col) RemoveAll(pred func(Entry) bool) []Entry {
	var sel []Change
	for i, e := range c.list {
		if pred == nil || pred(e) {
			sel = append(sel, Change{Entry: e, Idx: i})
		}
	}
	if len(sel) == 0 {
		return nil
	}
	res := make([]Entry, 0, len(sel))
	for _, ch := range sel {
		res = append(res, ch.Entry)
	}
	c.CustomRemove(nil, sel...)
	return res
}

// Clear removes all entries and returns them in order.
func (c *Col) Clear() []Entry { return c.RemoveAll(nil) }

// Move moves the entry at index from so it ends up at index to.
func (c *Col) Move(from, to int) error {
	return c.CustomMove(nil, from, to)
}

// CustomAdd validates the additions, runs the hook for caller bookkeeping and
// then commits the batch, firing Adding before and Added after the splice.
// A hook error aborts with no mutation and no events.
func (c *Col) CustomAdd(hook func() error, sel ...Change) error {
	if len(sel) == 0 {
		return nil
	}
	sel = append([]Change(nil), sel...)
	sort.SliceStable(sel, func(i, j int) bool { return sel[i].Idx < sel[j].Idx })
	for n, ch := range sel {
		if ch.Entry == nil {
			return errors.New("ord: add nil entry")
		}
		if ch.Entry.UID() == "" {
			return errors.Errorf("ord: add entry %q without id", ch.Entry.Key())
		}
		if ch.Idx < 0 || ch.Idx > len(c.list)+n {
			return &IndexError{Idx: ch.Idx, Len: len(c.list)}
		}
		if n > 0 && sel[n-1].Idx >= ch.Idx {
			return errors.Errorf("ord: duplicate add index %d", ch.Idx)
		}
		if c.Key(ch.Entry.Key()) != nil {
			return errors.Errorf("ord: duplicate key %q", ch.Entry.Key())
		}
		for _, o := range sel[:n] {
			if o.Entry.Key() == ch.Entry.Key() {
				return errors.Errorf("ord: duplicate key %q in batch", ch.Entry.Key())
			}
		}
	}
	if hook != nil {
		if err := hook(); err != nil {
			return err
		}
	}
	c.fire(Adding, sel)
	// low to high so earlier insertions don't shift later targets
	for _, ch := range sel {
		c.list = append(c.list, nil)
		copy(c.list[ch.Idx+1:], c.list[ch.Idx:])
		c.list[ch.Idx] = ch.Entry
	}
	c.fire(Added, sel)
	return nil
}

// CustomRemove validates the removals, runs the hook and commits the batch,
// firing Removing before and Removed after the splice. The selection indices
// must match the entries' current positions.
func (c *Col) CustomRemove(hook func() error, sel ...Change) error {
	if len(sel) == 0 {
		return nil
	}
	sel = append([]Change(nil), sel...)
	sort.SliceStable(sel, func(i, j int) bool { return sel[i].Idx < sel[j].Idx })
	for n, ch := range sel {
		if ch.Entry == nil {
			return errors.New("ord: remove nil entry")
		}
		if ch.Idx < 0 || ch.Idx >= len(c.list) {
			return &IndexError{Idx: ch.Idx, Len: len(c.list)}
		}
		if c.list[ch.Idx].UID() != ch.Entry.UID() {
			return errors.Errorf("ord: entry %s not at index %d", ch.Entry.UID(), ch.Idx)
		}
		if n > 0 && sel[n-1].Idx == ch.Idx {
			return errors.Errorf("ord: duplicate remove index %d", ch.Idx)
		}
	}
	if hook != nil {
		if err := hook(); err != nil {
			return err
		}
	}
	c.fire(Removing, sel)
	// high to low so earlier removals don't invalidate later indices
	for n := len(sel) - 1; n >= 0; n-- {
		i := sel[n].Idx
		c.list = append(c.list[:i], c.list[i+1:]...)
	}
	c.fire(Removed, sel)
	return nil
}

// CustomMove validates the move, runs the hook and commits it, firing Moving
// before and Moved after the splice. The entry at from ends up at index to.
func (c *Col) CustomMove(hook func() error, from, to int) error {
	if from < 0 || from >= len(c.list) {
		return &IndexError{Idx: from, Len: len(c.list)}
	}
	if to < 0 || to >= len(c.list) {
		return &IndexError{Idx: to, Len: len(c.list)}
	}
	if hook != nil {
		if err := hook(); err != nil {
			return err
		}
	}
	sel := []Change{{Entry: c.list[from], Idx: to, From: from}}
	c.fire(Moving, sel)
	e := c.list[from]
	c.list = append(c.list[:from], c.list[from+1:]...)
	c.list = append(c.list, nil)
	copy(c.list[to+1:], c.list[to:])
	c.list[to] = e
	c.fire(Moved, sel)
	return nil
}
