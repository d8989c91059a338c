package ord

import (
	"strings"
	"testing"

	"github.com/SpikedPunchVictim/gaia/uid"
)

type item struct {
	id  uid.ID
	key string
}

func (e *item) UID() uid.ID { return e.id }
func (e *item) Key() string { return e.key }

func it(id, key string) *item { return &item{uid.ID(id), key} }

func keys(c *Col) string {
	var b strings.Builder
	for i, e := range c.All() {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(e.Key())
	}
	return b.String()
}

func fill(t *testing.T, c *Col, ks ...string) {
	t.Helper()
	for _, k := range ks {
		if err := c.Add(it("id-"+k, k)); err != nil {
			t.Fatalf("fill %s: %v", k, err)
		}
	}
}

func TestColBatches(t *testing.T) {
	tests := []struct {
		name string
		init []string
		op   func(*Col) error
		want string
	}{
		{"append", []string{"a", "b"}, func(c *Col) error {
			return c.Add(it("3", "c"), it("4", "d"))
		}, "a b c d"},
		{"insert front", []string{"a", "b"}, func(c *Col) error {
			return c.Insert(0, it("3", "x"))
		}, "x a b"},
		{"insert end", []string{"a", "b"}, func(c *Col) error {
			return c.Insert(2, it("3", "x"))
		}, "a b x"},
		{"batch add spread", []string{"a", "b"}, func(c *Col) error {
			// given high to low on purpose, the batch rule must sort
			return c.CustomAdd(nil,
				Change{Entry: it("4", "y"), Idx: 3},
				Change{Entry: it("3", "x"), Idx: 0},
			)
		}, "x a b y"},
		{"batch remove spread", []string{"a", "b", "c", "d"}, func(c *Col) error {
			return c.Remove(c.Key("a"), c.Key("c"))
		}, "b d"},
		{"remove at", []string{"a", "b", "c"}, func(c *Col) error {
			_, err := c.RemoveAt(1)
			return err
		}, "a c"},
		{"move forward", []string{"a", "b", "c", "d"}, func(c *Col) error {
			return c.Move(0, 2)
		}, "b c a d"},
		{"move back", []string{"a", "b", "c", "d"}, func(c *Col) error {
			return c.Move(3, 1)
		}, "a d b c"},
		{"clear", []string{"a", "b"}, func(c *Col) error {
			c.Clear()
			return nil
		}, ""},
	}
	for _, test := range tests {
		var c Col
		fill(t, &c, test.init...)
		err := test.op(&c)
		if err != nil {
			t.Errorf("%s unexpected error: %v", test.name, err)
			continue
		}
		if got := keys(&c); got != test.want {
			t.Errorf("%s want %q got %q", test.name, test.want, got)
		}
		for i, e := range c.All() {
			if c.IndexOf(e) != i {
				t.Errorf("%s index drift for %s", test.name, e.Key())
			}
		}
	}
}

func TestColErrs(t *testing.T) {
	tests := []struct {
		name string
		op   func(*Col) error
	}{
		{"insert out of range", func(c *Col) error { return c.Insert(3, it("9", "x")) }},
		{"insert negative", func(c *Col) error { return c.Insert(-1, it("9", "x")) }},
		{"remove at out of range", func(c *Col) error {
			_, err := c.RemoveAt(2)
			return err
		}},
		{"add no id", func(c *Col) error { return c.Add(it("", "x")) }},
		{"add nil", func(c *Col) error { return c.Add(nil) }},
		{"add duplicate key", func(c *Col) error { return c.Add(it("9", "a")) }},
		{"batch duplicate key", func(c *Col) error {
			return c.Add(it("8", "x"), it("9", "x"))
		}},
		{"move from out of range", func(c *Col) error { return c.Move(2, 0) }},
		{"move to out of range", func(c *Col) error { return c.Move(0, 2) }},
		{"remove foreign", func(c *Col) error { return c.Remove(it("9", "x")) }},
	}
	for _, test := range tests {
		var c Col
		fill(t, &c, "a", "b")
		err := test.op(&c)
		if err == nil {
			t.Errorf("%s want error", test.name)
		}
		if got := keys(&c); got != "a b" {
			t.Errorf("%s failed op must not mutate, got %q", test.name, got)
		}
	}
}

func TestColEvents(t *testing.T) {
	var c Col
	fill(t, &c, "a", "b")
	var got []string
	c.Watch(func(ev *Event) {
		var b strings.Builder
		b.WriteString(ev.Kind.String())
		for _, ch := range ev.Sel {
			b.WriteByte(' ')
			b.WriteString(ch.Entry.Key())
			b.WriteByte('@')
			b.WriteByte(byte('0' + ch.Idx))
		}
		got = append(got, b.String())
	})
	if err := c.Add(it("3", "c")); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := c.Move(2, 0); err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if _, err := c.RemoveAt(1); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	want := []string{
		"adding c@2", "added c@2",
		"moving c@0", "moved c@0",
		"removing a@1", "removed a@1",
	}
	if len(got) != len(want) {
		t.Fatalf("want %d events got %v", len(want), got)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("event %d want %q got %q", i, w, got[i])
		}
	}
}

func TestCustomHookAbort(t *testing.T) {
	var c Col
	fill(t, &c, "a", "b")
	fired := 0
	c.Watch(func(*Event) { fired++ })
	err := c.CustomAdd(func() error { return &IndexError{} }, Change{Entry: it("3", "c"), Idx: 2})
	if err == nil {
		t.Fatalf("want hook error")
	}
	if fired != 0 || keys(&c) != "a b" {
		t.Errorf("aborted batch must not mutate or emit, fired=%d got %q", fired, keys(&c))
	}
}

func TestNetCount(t *testing.T) {
	var c Col
	fill(t, &c, "a", "b", "c", "d", "e")
	if err := c.Add(it("6", "f"), it("7", "g")); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := c.Remove(c.Key("b"), c.Key("f"), c.Key("d")); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if c.Len() != 4 {
		t.Errorf("want net count 4 got %d", c.Len())
	}
	if got := keys(&c); got != "a c e g" {
		t.Errorf("want %q got %q", "a c e g", got)
	}
}
