package rfc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SpikedPunchVictim/gaia/ord"
	"github.com/SpikedPunchVictim/gaia/uid"
)

func raise(t *testing.T, au *Authority, a *Action) {
	t.Helper()
	require.NoError(t, au.Raise(context.Background(), a))
}

func TestAuthorityTree(t *testing.T) {
	au := NewAuthority()
	require.NoError(t, au.Mount("root"))
	raise(t, au, &Action{Kind: KindNamespaceCreate, ID: "a", Dest: "root", Name: "alpha", Idx: 0})
	raise(t, au, &Action{Kind: KindNamespaceCreate, ID: "b", Dest: "root", Name: "beta", Idx: 1})
	raise(t, au, &Action{Kind: KindModelCreate, ID: "m", Dest: "a", Name: "person", Idx: 0})
	raise(t, au, &Action{Kind: KindInstanceCreate, ID: "i", Dest: "a", Name: "bob", Ref: "m", Idx: 0})

	// duplicate name declined
	err := au.Raise(context.Background(), &Action{
		Kind: KindNamespaceCreate, ID: "c", Dest: "root", Name: "alpha", Idx: 2,
	})
	require.Error(t, err)
	// duplicate id declined
	err = au.Raise(context.Background(), &Action{
		Kind: KindNamespaceCreate, ID: "a", Dest: "root", Name: "gamma", Idx: 2,
	})
	require.Error(t, err)
	// instance without model declined
	err = au.Raise(context.Background(), &Action{
		Kind: KindInstanceCreate, ID: "j", Dest: "a", Name: "eve", Idx: 1,
	})
	require.Error(t, err)

	require.Equal(t, []ord.Ref{{ID: "a", Key: "alpha"}, {ID: "b", Key: "beta"}},
		au.Refs("root", ClassNamespace))

	// byid path
	get := &Action{Kind: KindGetByID, ID: "i"}
	raise(t, au, get)
	require.Equal(t, "alpha.bob", get.Res)
	get = &Action{Kind: KindGetByID, ID: "nope"}
	raise(t, au, get)
	require.Equal(t, "", get.Res)
}

func TestAuthorityMembers(t *testing.T) {
	au := NewAuthority()
	require.NoError(t, au.Mount("root"))
	raise(t, au, &Action{Kind: KindModelCreate, ID: "m", Dest: "root", Name: "person", Idx: 0})
	raise(t, au, &Action{Kind: KindMemberCreate, ID: "m", Sub: []*Action{
		{ID: "m1", Name: "name", Idx: 0},
		{ID: "m2", Name: "age", Idx: 1},
	}})
	// batch with one bad sub-action declined as a whole
	err := au.Raise(context.Background(), &Action{Kind: KindMemberCreate, ID: "m", Sub: []*Action{
		{ID: "m3", Name: "mail", Idx: 2},
		{ID: "m4", Name: "age", Idx: 3},
	}})
	require.Error(t, err)
	require.Equal(t, 2, len(au.Refs("m", ClassMember)))

	raise(t, au, &Action{Kind: KindMemberReorder, ID: "m", From: 1, Idx: 0})
	require.Equal(t, []ord.Ref{{ID: "m2", Key: "age"}, {ID: "m1", Key: "name"}},
		au.Refs("m", ClassMember))

	raise(t, au, &Action{Kind: KindMemberDelete, ID: "m", Sub: []*Action{{ID: "m2"}}})
	require.Equal(t, []ord.Ref{{ID: "m1", Key: "name"}}, au.Refs("m", ClassMember))

	get := &Action{Kind: KindGetMembers, ID: "m"}
	raise(t, au, get)
	require.Equal(t, []ord.Ref{{ID: "m1", Key: "name"}}, get.Res)
}

func TestAuthorityMove(t *testing.T) {
	au := NewAuthority()
	require.NoError(t, au.Mount("root"))
	raise(t, au, &Action{Kind: KindNamespaceCreate, ID: "a", Dest: "root", Name: "alpha", Idx: 0})
	raise(t, au, &Action{Kind: KindNamespaceCreate, ID: "b", Dest: "a", Name: "beta", Idx: 0})
	raise(t, au, &Action{Kind: KindNamespaceCreate, ID: "c", Dest: "root", Name: "gamma", Idx: 1})

	// move into own subtree declined
	err := au.Raise(context.Background(), &Action{Kind: KindMove, ID: "a", Dest: "b"})
	require.Error(t, err)
	// move the root declined
	err = au.Raise(context.Background(), &Action{Kind: KindMove, ID: "root", Dest: "b"})
	require.Error(t, err)

	raise(t, au, &Action{Kind: KindMove, ID: "b", Dest: "root"})
	require.Equal(t, 3, len(au.Refs("root", ClassNamespace)))

	get := &Action{Kind: KindGetByID, ID: "b"}
	raise(t, au, get)
	require.Equal(t, "beta", get.Res)
}

func TestAuthorityValueUpdate(t *testing.T) {
	au := NewAuthority()
	require.NoError(t, au.Mount("root"))
	raise(t, au, &Action{Kind: KindModelCreate, ID: "m", Dest: "root", Name: "person", Idx: 0})
	raise(t, au, &Action{Kind: KindMemberCreate, ID: "m", Sub: []*Action{{ID: "m1", Name: "name", Idx: 0}}})
	raise(t, au, &Action{Kind: KindInstanceCreate, ID: "i", Dest: "root", Name: "bob", Ref: "m", Idx: 0})

	// member and derived field targets resolve
	raise(t, au, &Action{Kind: KindValueUpdate, ID: "m1"})
	raise(t, au, &Action{Kind: KindValueUpdate, ID: "i:m1"})

	// unknown targets are declined
	err := au.Raise(context.Background(), &Action{Kind: KindValueUpdate, ID: "nope"})
	require.Error(t, err)
	err = au.Raise(context.Background(), &Action{Kind: KindValueUpdate, ID: "i:nope"})
	require.Error(t, err)

	// a member of another model is no field of the instance
	raise(t, au, &Action{Kind: KindModelCreate, ID: "m2", Dest: "root", Name: "pet", Idx: 1})
	raise(t, au, &Action{Kind: KindMemberCreate, ID: "m2", Sub: []*Action{{ID: "p1", Name: "kind", Idx: 0}}})
	err = au.Raise(context.Background(), &Action{Kind: KindValueUpdate, ID: "i:p1"})
	require.Error(t, err)

	// a deleted member no longer accepts updates
	raise(t, au, &Action{Kind: KindMemberDelete, ID: "m", Sub: []*Action{{ID: "m1"}}})
	err = au.Raise(context.Background(), &Action{Kind: KindValueUpdate, ID: "m1"})
	require.Error(t, err)
	err = au.Raise(context.Background(), &Action{Kind: KindValueUpdate, ID: "i:m1"})
	require.Error(t, err)
}

func TestAuthorityDeleteSubtree(t *testing.T) {
	au := NewAuthority()
	require.NoError(t, au.Mount("root"))
	raise(t, au, &Action{Kind: KindNamespaceCreate, ID: "a", Dest: "root", Name: "alpha", Idx: 0})
	raise(t, au, &Action{Kind: KindModelCreate, ID: "m", Dest: "a", Name: "person", Idx: 0})
	raise(t, au, &Action{Kind: KindMemberCreate, ID: "m", Sub: []*Action{{ID: "m1", Name: "name", Idx: 0}}})

	raise(t, au, &Action{Kind: KindDelete, Sub: []*Action{{ID: "a"}}})
	for _, id := range []uid.ID{"a", "m", "m1"} {
		get := &Action{Kind: KindGetByID, ID: id}
		raise(t, au, get)
		require.Equal(t, "", get.Res, "object %s must be gone", id)
	}
}
