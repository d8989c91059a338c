package domtest

import (
	"context"
	"testing"
)

func TestFixture(t *testing.T) {
	f := Must(New())
	if got := f.Get("app.person"); got != interface{}(f.Mod) {
		t.Errorf("want model got %v", got)
	}
	fld := f.Inst.Field("age")
	if fld == nil || !fld.IsInheriting() {
		t.Fatalf("fixture instance must inherit its fields")
	}
	if err := f.Rename(context.Background(), f.App, "web"); err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if got := f.Mod.QName(); got != "web.person" {
		t.Errorf("want web.person got %s", got)
	}
}
