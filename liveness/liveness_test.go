package liveness_test

import (
	"context"
	"crypto/rand"
	"testing"

	ma "github.com/multiformats/go-multiaddr"
	mafmt "github.com/multiformats/go-multiaddr-fmt"
	"github.com/stretchr/testify/require"
	"github.com/wispnet/wisp/core/crypto"
	"github.com/wispnet/wisp/core/peer"
	"github.com/wispnet/wisp/core/transport"
	"github.com/wispnet/wisp/liveness"
	"github.com/wispnet/wisp/network/inproc"
)

func testPID(t *testing.T) peer.ID {
	t.Helper()
	_, pk, err := crypto.GenerateEd25519Key(rand.Reader)
	require.NoError(t, err)
	pid, err := peer.IDFromPubKey(pk)
	require.NoError(t, err)
	return pid
}

func TestProbeOnce(t *testing.T) {
	ctx := context.Background()
	hub := inproc.NewHub()
	pidA, pidB := testPID(t), testPID(t)

	a, err := inproc.NewNetwork(inproc.WithHub(hub), inproc.WithLocalPID(pidA))
	require.NoError(t, err)
	b, err := inproc.NewNetwork(inproc.WithHub(hub), inproc.WithLocalPID(pidB))
	require.NoError(t, err)
	b.AddTransport(transport.NewMatcherTransport("tcp", mafmt.TCP))

	liveness.Mount(b)

	addrB := ma.StringCast("/ip4/127.0.0.1/tcp/9001")
	require.NoError(t, b.Listen(ctx, addrB))

	rec := peer.NewRecordWithAddresses(pidB, addrB)
	probe := liveness.NewProbe(a, rec)
	require.Same(t, rec, probe.Target())

	rtt, err := probe.Once(ctx)
	require.NoError(t, err)
	require.Greater(t, rtt.Nanoseconds(), int64(0))

	// probing again reuses the connection
	rtt, err = probe.Once(ctx)
	require.NoError(t, err)
	require.Greater(t, rtt.Nanoseconds(), int64(0))

	// once the handler is gone the probe fails
	liveness.Unmount(b)
	_, err = probe.Once(ctx)
	require.Error(t, err)
}
