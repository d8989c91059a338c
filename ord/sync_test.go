package ord

import (
	"testing"

	"github.com/SpikedPunchVictim/gaia/uid"
)

func refs(ids ...string) []Ref {
	res := make([]Ref, 0, len(ids))
	for _, id := range ids {
		res = append(res, Ref{ID: uid.ID(id), Key: "k" + id})
	}
	return res
}

func mkitem(r Ref) (Entry, error) { return &item{r.ID, r.Key}, nil }

func TestSync(t *testing.T) {
	tests := []struct {
		name   string
		local  []string
		master []string
		want   string
	}{
		{"noop", []string{"1", "2"}, []string{"1", "2"}, "k1 k2"},
		{"fill empty", nil, []string{"1", "2", "3"}, "k1 k2 k3"},
		{"drop all", []string{"1", "2"}, nil, ""},
		{"reorder", []string{"1", "2", "3"}, []string{"3", "1", "2"}, "k3 k1 k2"},
		{"reverse", []string{"1", "2", "3", "4"}, []string{"4", "3", "2", "1"}, "k4 k3 k2 k1"},
		{"mixed", []string{"1", "2", "3"}, []string{"3", "1", "4"}, "k3 k1 k4"},
		{"insert middle", []string{"1", "3"}, []string{"1", "2", "3"}, "k1 k2 k3"},
	}
	for _, test := range tests {
		var c Col
		for _, id := range test.local {
			if err := c.Add(&item{uid.ID(id), "k" + id}); err != nil {
				t.Fatalf("%s fill: %v", test.name, err)
			}
		}
		err := c.Sync(refs(test.master...), mkitem)
		if err != nil {
			t.Errorf("%s sync failed: %v", test.name, err)
			continue
		}
		if got := keys(&c); got != test.want {
			t.Errorf("%s want %q got %q", test.name, test.want, got)
		}
	}
}

func TestSyncIdentity(t *testing.T) {
	var c Col
	a, b, cc := it("1", "a"), it("2", "b"), it("3", "c")
	if err := c.Add(a, b, cc); err != nil {
		t.Fatalf("fill: %v", err)
	}
	var ops []string
	c.Watch(func(ev *Event) {
		switch ev.Kind {
		case Added, Removed, Moved:
			for _, ch := range ev.Sel {
				ops = append(ops, ev.Kind.String()+" "+string(ch.Entry.UID()))
			}
		}
	})
	master := []Ref{{ID: "3", Key: "c"}, {ID: "1", Key: "a"}, {ID: "4", Key: "d"}}
	made := 0
	err := c.Sync(master, func(r Ref) (Entry, error) {
		made++
		return &item{r.ID, r.Key}, nil
	})
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if got := keys(&c); got != "c a d" {
		t.Errorf("want %q got %q", "c a d", got)
	}
	if made != 1 {
		t.Errorf("want exactly one construction got %d", made)
	}
	// survivors keep their identity, no destroy and recreate
	if c.Idx(0) != cc || c.Idx(1) != a {
		t.Errorf("sync must preserve entry identity")
	}
	var adds, rems, movs int
	for _, op := range ops {
		switch op[0] {
		case 'a':
			adds++
		case 'r':
			rems++
		case 'm':
			movs++
		}
	}
	if adds != 1 || rems != 1 {
		t.Errorf("want one add and one remove got %v", ops)
	}
	if movs != 1 {
		t.Errorf("want a single move got %v", ops)
	}
}

func TestSyncFactoryErr(t *testing.T) {
	var c Col
	fill(t, &c, "a", "b")
	err := c.Sync([]Ref{{ID: "id-a", Key: "a"}, {ID: "9", Key: "x"}}, func(r Ref) (Entry, error) {
		return nil, &IndexError{}
	})
	if err == nil {
		t.Fatalf("want factory error")
	}
	if got := keys(&c); got != "a b" {
		t.Errorf("failed sync must not mutate, got %q", got)
	}
}
