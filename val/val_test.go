package val

import "testing"

func TestSetNotifies(t *testing.T) {
	v := NewInt(1)
	var got []int64
	stop := v.Watch(func(c Change) {
		got = append(got, c.Val.(*Int).V)
	})
	if err := v.Set(NewInt(2)); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	v.SetLocally(NewInt(3))
	stop()
	if err := v.Set(NewInt(4)); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("want [2 3] got %v", got)
	}
	if v.V != 4 {
		t.Errorf("want 4 got %d", v.V)
	}
}

func TestTypeMismatch(t *testing.T) {
	v := NewBool(true)
	if err := v.Set(NewStr("no")); err == nil {
		t.Errorf("want type error")
	}
	if !v.V {
		t.Errorf("failed set must not mutate")
	}
}

func TestCloneIndependent(t *testing.T) {
	a := NewStr("x")
	fired := 0
	a.Watch(func(Change) { fired++ })
	b := a.Clone()
	if !a.Equals(b) {
		t.Errorf("clone must be equal")
	}
	if err := b.Set(NewStr("y")); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if a.V != "x" || fired != 0 {
		t.Errorf("clone must not share state or watchers")
	}
}

func TestApply(t *testing.T) {
	a := NewInt(1)
	b := a.Clone()
	a.Watch(func(c Change) {
		if err := b.Apply(c); err != nil {
			t.Fatalf("apply failed: %v", err)
		}
	})
	if err := a.Set(NewInt(9)); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if !b.Equals(a) {
		t.Errorf("apply must track source change")
	}
}
