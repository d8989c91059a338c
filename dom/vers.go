package dom

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/SpikedPunchVictim/gaia/ord"
)

// Version contains essential details for an object to derive a new version
// number.
//
// The name is the object's qualified name, and date is an optional recording
// time. Vers is a positive integer for known versions or zero if unknown. The
// hash is a lowercase hex string of a sha256 hash of the qualified name and
// the object's contents. For models the member list is used as content, for
// instances the model name and field list, for namespaces each child hash.
type Version struct {
	Name string    `json:"name"`
	Vers int64     `json:"vers"`
	Hash string    `json:"hash"`
	Date time.Time `json:"date,omitempty"`
}

// Manifest is a set of versions sorted by name, usually for the whole tree
// of one project.
type Manifest []Version

func (mf Manifest) idx(name string) int {
	return sort.Search(len(mf), func(i int) bool { return mf[i].Name >= name })
}

func (mf Manifest) Len() int           { return len(mf) }
func (mf Manifest) Less(i, j int) bool { return mf[i].Name < mf[j].Name }
func (mf Manifest) Swap(i, j int)      { mf[i], mf[j] = mf[j], mf[i] }
func (mf Manifest) Sort() Manifest     { sort.Sort(mf); return mf }

// Get returns the version for the qualified name or false.
func (mf Manifest) Get(name string) (Version, bool) {
	i := mf.idx(name)
	if i >= len(mf) || mf[i].Name != name {
		return Version{}, false
	}
	return mf[i], true
}

// Set inserts a version into the manifest and returns the result.
func (mf Manifest) Set(v Version) Manifest {
	i := mf.idx(v.Name)
	if i >= len(mf) {
		return append(mf, v)
	}
	if mf[i].Name != v.Name {
		mf = append(mf[:i+1], mf[i:]...)
	}
	mf[i] = v
	return mf
}

// Update versions the whole project tree and returns the updated manifest.
func (mf Manifest) Update(p *Project) (Manifest, error) {
	mv := NewVersioner(mf)
	if _, err := mv.Version(p.Root()); err != nil {
		return nil, err
	}
	return mv.Manifest(), nil
}

// Versioner sets and returns object version details, usually based on the
// last recorded manifest.
type Versioner interface {
	// Manifest returns a fresh manifest with updated versions.
	Manifest() Manifest
	// Version sets and returns the object version details or an error.
	Version(Obj) (Version, error)
}

// rootKey stands in for the root's empty qualified name.
const rootKey = "_"

// NewVersioner returns a new versioner based on the given manifest.
func NewVersioner(mf Manifest) Versioner {
	mv := make(manifestVersioner, len(mf))
	for _, v := range mf {
		key := v.Name
		if key == "" {
			key = rootKey
		}
		e := mv[key]
		if e == nil {
			mv[key] = &ventry{old: v}
		} else if e.old.Vers < v.Vers {
			e.old = v
		}
	}
	return mv
}

type manifestVersioner map[string]*ventry

type ventry struct {
	old Version
	cur Version
}

func (mv manifestVersioner) Manifest() Manifest {
	mf := make(Manifest, 0, len(mv))
	for _, e := range mv {
		if e.cur.Vers != 0 {
			mf = append(mf, e.cur)
		} else {
			mf = append(mf, e.old)
		}
	}
	return mf.Sort()
}

func (mv manifestVersioner) Version(o Obj) (res Version, err error) {
	res.Name = o.QName()
	key := res.Name
	if key == "" {
		key = rootKey
	}
	e := mv[key]
	if e == nil {
		res.Vers = 1
	} else if e.cur.Vers != 0 { // we already did the work
		return e.cur, nil
	} else if e.old.Vers != 0 {
		res.Vers = e.old.Vers
	} else {
		return res, errors.New("dom: inconsistent manifest state")
	}
	h := sha256.New()
	io.WriteString(h, res.Name)
	switch d := o.(type) {
	case *Model:
		for _, me := range d.ms.All() {
			m := me.(*Member)
			io.WriteString(h, m.Name())
			io.WriteString(h, ":")
			if v := m.Val(); v != nil {
				io.WriteString(h, v.Type().String())
			}
			io.WriteString(h, ";")
		}
	case *Instance:
		io.WriteString(h, d.Model().QName())
		for _, fe := range d.fs.All() {
			f := fe.(*Field)
			io.WriteString(h, ";")
			io.WriteString(h, f.Name())
		}
	case *Namespace:
		for _, col := range []*ord.Col{&d.ns, &d.ms, &d.is} {
			for _, ce := range col.All() {
				v, err := mv.Version(ce.(Obj))
				if err != nil {
					return res, err
				}
				io.WriteString(h, v.Hash)
			}
		}
	default:
		return res, errors.Errorf("dom: unexpected object type %T", o)
	}
	res.Hash = hex.EncodeToString(h.Sum(nil))
	if e == nil {
		mv[key] = &ventry{cur: res}
	} else if res.Hash != e.old.Hash {
		res.Vers++
		e.cur = res
	} else {
		res = e.old
		e.cur = res
	}
	return res, nil
}
