package rfc

import "time"

// NextRev returns rev truncated to ms or, if rev is not after last, the next
// possible revision one millisecond after last.
func NextRev(last, rev time.Time) time.Time {
	rev = rev.Truncate(time.Millisecond)
	if rev.After(last) {
		return rev
	}
	return last.Add(time.Millisecond)
}

// Rec is one journal record: a fulfilled action and its revision.
type Rec struct {
	Rev time.Time
	Act *Action
}

// Journal is an in-memory, strictly ordered record of fulfilled actions. It
// exists for auditing the order local effects were applied and is not a
// persistence mechanism. Not safe for concurrent use.
type Journal struct {
	recs []Rec
}

// Rev returns the latest recorded revision or the zero time.
func (j *Journal) Rev() time.Time {
	if len(j.recs) == 0 {
		return time.Time{}
	}
	return j.recs[len(j.recs)-1].Rev
}

// Record appends act with the next revision and returns the record.
func (j *Journal) Record(act *Action) Rec {
	rec := Rec{Rev: NextRev(j.Rev(), time.Now()), Act: act}
	j.recs = append(j.recs, rec)
	return rec
}

// Recs returns a copy of all records in order.
func (j *Journal) Recs() []Rec {
	res := make([]Rec, len(j.recs))
	copy(res, j.recs)
	return res
}

// Len returns the number of records.
func (j *Journal) Len() int { return len(j.recs) }
