// Package uid provides unique object identity and the id registry.
//
// Ids are assigned once and never change. The registry binds live objects to
// their id so repeated lookups and restores resolve to the same in-memory
// instance. Generators may reach an external authority and can therefore
// block; registry lookups never do.
package uid

import (
	"context"
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID is a unique object identifier. The zero value is invalid.
type ID string

// Gen produces fresh unique ids. The hint tags the id with the object kind it
// is generated for and may be empty. Implementations may suspend on a remote
// authority, hence the context.
type Gen interface {
	Generate(ctx context.Context, hint string) (ID, error)
}

// GenFunc implements Gen for simple generator functions.
type GenFunc func(ctx context.Context, hint string) (ID, error)

func (f GenFunc) Generate(ctx context.Context, hint string) (ID, error) { return f(ctx, hint) }

var enc = base32.StdEncoding.WithPadding(base32.NoPadding)

// UUID is a local generator based on random uuids encoded as lowercase
// base32 without padding.
type UUID struct{}

func (UUID) Generate(ctx context.Context, hint string) (ID, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	s := strings.ToLower(enc.EncodeToString(u[:]))
	if hint != "" {
		return ID(hint + "-" + s), nil
	}
	return ID(s), nil
}

// DupError is returned when an id is registered twice.
type DupError struct {
	ID ID
}

func (e *DupError) Error() string { return fmt.Sprintf("uid: id %s already registered", e.ID) }

// Registry maps ids to live objects for O(1) lookup. Entries are added on
// creation or restore and stay as long as the registry itself; dropping the
// owning container drops reachability. The registry is not safe for
// concurrent use.
type Registry struct {
	m map[ID]interface{}
}

// NewRegistry returns a new empty registry.
func NewRegistry() *Registry { return &Registry{m: make(map[ID]interface{}, 64)} }

// Register binds id to obj or returns a DupError if already bound.
func (r *Registry) Register(id ID, obj interface{}) error {
	if id == "" {
		return fmt.Errorf("uid: register with empty id")
	}
	if obj == nil {
		return fmt.Errorf("uid: register %s with nil object", id)
	}
	if _, ok := r.m[id]; ok {
		return &DupError{ID: id}
	}
	r.m[id] = obj
	return nil
}

// Get returns the object bound to id or nil.
func (r *Registry) Get(id ID) interface{} { return r.m[id] }

// Len returns the number of registered ids.
func (r *Registry) Len() int { return len(r.m) }
