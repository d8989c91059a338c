package rfc

import (
	"testing"
	"time"
)

func TestNextRev(t *testing.T) {
	base := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		name string
		last time.Time
		rev  time.Time
		want time.Time
	}{
		{"after", base, base.Add(time.Second), base.Add(time.Second)},
		{"equal", base, base, base.Add(time.Millisecond)},
		{"before", base, base.Add(-time.Second), base.Add(time.Millisecond)},
		{"truncated", base, base.Add(time.Second + 600*time.Microsecond), base.Add(time.Second)},
	}
	for _, test := range tests {
		if got := NextRev(test.last, test.rev); !got.Equal(test.want) {
			t.Errorf("%s want %s got %s", test.name, test.want, got)
		}
	}
}

func TestJournal(t *testing.T) {
	var j Journal
	if !j.Rev().IsZero() {
		t.Errorf("empty journal must have zero rev")
	}
	var last time.Time
	for i := 0; i < 5; i++ {
		rec := j.Record(&Action{Kind: KindRename})
		if !rec.Rev.After(last) {
			t.Errorf("rev %d not strictly increasing", i)
		}
		last = rec.Rev
	}
	if j.Len() != 5 {
		t.Errorf("want 5 records got %d", j.Len())
	}
	recs := j.Recs()
	recs[0].Act = nil
	if j.Recs()[0].Act == nil {
		t.Errorf("recs must return a copy")
	}
}
