package ord

import (
	"github.com/pkg/errors"

	"github.com/SpikedPunchVictim/gaia/uid"
)

// Ref identifies one entry of an authoritative snapshot by id and key, in
// snapshot order. Aux carries an entry-specific secondary id where the
// snapshot needs one, like the model id of an instance.
type Ref struct {
	ID  uid.ID `json:"id"`
	Key string `json:"key"`
	Aux uid.ID `json:"aux,omitempty"`
}

// Sync reconciles the collection against the authoritative master list with
// the minimal sequence of add, remove and move operations. Entries are
// matched by id, never by reference. Entries only present in master are
// constructed through mk and added at master's index; entries only present
// locally are removed; entries at the wrong position are moved with exactly
// one move each. All operations run through the custom hooks so observers
// see the same lifecycle events as for direct mutation.
//
// All missing entries are materialized before the first splice, so an mk
// error leaves the collection untouched.
func (c *Col) Sync(master []Ref, mk func(Ref) (Entry, error)) error {
	want := make(map[uid.ID]int, len(master))
	var fresh map[uid.ID]Entry
	for i, ref := range master {
		if ref.ID == "" {
			return errors.Errorf("ord: sync ref %d without id", i)
		}
		if _, ok := want[ref.ID]; ok {
			return errors.Errorf("ord: duplicate id %s in master", ref.ID)
		}
		want[ref.ID] = i
		if c.ByID(ref.ID) != nil {
			continue
		}
		if mk == nil {
			return errors.Errorf("ord: no factory for new entry %s", ref.ID)
		}
		e, err := mk(ref)
		if err != nil {
			return err
		}
		if e == nil || e.UID() != ref.ID {
			return errors.Errorf("ord: factory returned bad entry for %s", ref.ID)
		}
		if fresh == nil {
			fresh = make(map[uid.ID]Entry)
		}
		fresh[ref.ID] = e
	}
	var drop []Change
	for i, e := range c.list {
		if _, ok := want[e.UID()]; !ok {
			drop = append(drop, Change{Entry: e, Idx: i})
		}
	}
	if len(drop) > 0 {
		if err := c.CustomRemove(nil, drop...); err != nil {
			return err
		}
	}
	// index-walk the target order; the prefix left of i is already final,
	// so the match is always found at or right of i
	for i, ref := range master {
		if e, ok := fresh[ref.ID]; ok {
			if err := c.CustomAdd(nil, Change{Entry: e, Idx: i}); err != nil {
				return err
			}
			continue
		}
		j := c.indexOfID(ref.ID)
		if j == i {
			continue
		}
		if err := c.CustomMove(nil, j, i); err != nil {
			return err
		}
	}
	return nil
}
