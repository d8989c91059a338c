package uid

import (
	"context"
	"testing"
)

func TestUUIDGen(t *testing.T) {
	g := UUID{}
	seen := make(map[ID]bool)
	for i := 0; i < 64; i++ {
		id, err := g.Generate(context.Background(), "n")
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}
		if len(id) < 10 || id[:2] != "n-" {
			t.Errorf("want hint prefix n- got %s", id)
		}
		if seen[id] {
			t.Errorf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a, b := new(int), new(int)
	if err := r.Register("one", a); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if got := r.Get("one"); got != a {
		t.Errorf("want %p got %p", a, got)
	}
	if got := r.Get("two"); got != nil {
		t.Errorf("want nil got %p", got)
	}
	err := r.Register("one", b)
	if err == nil {
		t.Fatalf("want duplicate error")
	}
	if _, ok := err.(*DupError); !ok {
		t.Errorf("want DupError got %T", err)
	}
	if got := r.Get("one"); got != a {
		t.Errorf("rebind must not replace, want %p got %p", a, got)
	}
	if err := r.Register("", a); err == nil {
		t.Errorf("want error for empty id")
	}
}
