package rfc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SpikedPunchVictim/gaia/hub"
	"github.com/SpikedPunchVictim/gaia/log"
	"github.com/SpikedPunchVictim/gaia/ord"
)

func TestHubRouter(t *testing.T) {
	au := NewAuthority()
	require.NoError(t, au.Mount("root"))
	h := hub.NewHub()
	go h.Run(&Endpoint{Auth: au, Log: &log.Testing{TB: t}})
	defer func() { h.Chan() <- nil }()

	rt := &HubRouter{Hub: h, Timeout: time.Second}
	ctx := context.Background()
	err := rt.Raise(ctx, &Action{Kind: KindNamespaceCreate, ID: "a", Dest: "root", Name: "alpha", Idx: 0})
	require.NoError(t, err)

	get := &Action{Kind: KindGetChildren, ID: "root", Class: ClassNamespace}
	require.NoError(t, rt.Raise(ctx, get))
	require.Equal(t, []ord.Ref{{ID: "a", Key: "alpha"}}, get.Res)

	err = rt.Raise(ctx, &Action{Kind: KindNamespaceCreate, ID: "b", Dest: "root", Name: "alpha", Idx: 1})
	require.Error(t, err, "decline must surface through the hub")

	get = &Action{Kind: KindGetByID, ID: "a"}
	require.NoError(t, rt.Raise(ctx, get))
	require.Equal(t, "alpha", get.Res)
}
