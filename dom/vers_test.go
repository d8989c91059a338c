package dom

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestManifestUpdate(t *testing.T) {
	f, m, _ := personFixture(t)
	ctx := context.Background()

	mf, err := Manifest(nil).Update(f.Project)
	require.NoError(t, err)
	v, ok := mf.Get("app.person")
	require.True(t, ok)
	require.Equal(t, int64(1), v.Vers)
	root, ok := mf.Get("")
	require.True(t, ok)
	require.Equal(t, int64(1), root.Vers)

	// versioning again without changes is stable
	mf2, err := mf.Update(f.Project)
	require.NoError(t, err)
	require.Equal(t, mf, mf2)

	// a member rename bumps the model and every node above it
	require.NoError(t, f.DeleteMembers(ctx, m, "age"))
	mf3, err := mf.Update(f.Project)
	require.NoError(t, err)
	v3, _ := mf3.Get("app.person")
	require.Equal(t, int64(2), v3.Vers)
	require.NotEqual(t, v.Hash, v3.Hash)
	ns3, _ := mf3.Get("app")
	require.Equal(t, int64(2), ns3.Vers)
	root3, _ := mf3.Get("")
	require.Equal(t, int64(2), root3.Vers)
}

func TestManifestSetGet(t *testing.T) {
	var mf Manifest
	mf = mf.Set(Version{Name: "b", Vers: 1})
	mf = mf.Set(Version{Name: "a", Vers: 1})
	mf = mf.Set(Version{Name: "a", Vers: 2})
	require.Equal(t, 2, len(mf))
	v, ok := mf.Get("a")
	require.True(t, ok)
	require.Equal(t, int64(2), v.Vers)
	_, ok = mf.Get("c")
	require.False(t, ok)
}
