package tlsx

import (
	"context"
	"crypto/rand"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	cc "github.com/wispnet/wisp/core/crypto"
	"github.com/wispnet/wisp/core/peer"
)

func TestSecureAuthenticatesBothPeers(t *testing.T) {
	skA, _, err := cc.GenerateEd25519Key(rand.Reader)
	require.NoError(t, err)
	skB, _, err := cc.GenerateEd25519Key(rand.Reader)
	require.NoError(t, err)

	pidA, err := peer.IDFromPriKey(skA)
	require.NoError(t, err)
	pidB, err := peer.IDFromPriKey(skB)
	require.NoError(t, err)

	chA, err := New(skA)
	require.NoError(t, err)
	chB, err := New(skB)
	require.NoError(t, err)
	require.Equal(t, ChannelTag, chA.Tag())

	connA, connB := net.Pipe()
	ctx := context.Background()

	type result struct {
		pid peer.ID
		err error
	}
	resC := make(chan result, 1)
	go func() {
		_, pid, err := chB.Secure(ctx, connB, false)
		resC <- result{pid: pid, err: err}
	}()

	secured, remotePID, err := chA.Secure(ctx, connA, true)
	require.NoError(t, err)
	require.Equal(t, pidB, remotePID)
	defer func() { _ = secured.Close() }()

	res := <-resC
	require.NoError(t, res.err)
	require.Equal(t, pidA, res.pid)
}

func TestSecureWithSecp256k1Identity(t *testing.T) {
	skA, _, err := cc.GenerateSecp256k1Key(rand.Reader)
	require.NoError(t, err)
	skB, _, err := cc.GenerateSecp256k1Key(rand.Reader)
	require.NoError(t, err)

	pidB, err := peer.IDFromPriKey(skB)
	require.NoError(t, err)

	chA, err := New(skA)
	require.NoError(t, err)
	chB, err := New(skB)
	require.NoError(t, err)

	connA, connB := net.Pipe()
	ctx := context.Background()

	errC := make(chan error, 1)
	go func() {
		_, _, err := chB.Secure(ctx, connB, false)
		errC <- err
	}()

	_, remotePID, err := chA.Secure(ctx, connA, true)
	require.NoError(t, err)
	require.Equal(t, pidB, remotePID)
	require.NoError(t, <-errC)
}

func TestSecuredConnCarriesData(t *testing.T) {
	skA, _, err := cc.GenerateEd25519Key(rand.Reader)
	require.NoError(t, err)
	skB, _, err := cc.GenerateEd25519Key(rand.Reader)
	require.NoError(t, err)

	chA, err := New(skA)
	require.NoError(t, err)
	chB, err := New(skB)
	require.NoError(t, err)

	connA, connB := net.Pipe()
	ctx := context.Background()

	msg := []byte("over the secured channel")
	done := make(chan error, 1)
	go func() {
		secured, _, err := chB.Secure(ctx, connB, false)
		if err != nil {
			done <- err
			return
		}
		buf := make([]byte, len(msg))
		if _, err := io.ReadFull(secured, buf); err != nil {
			done <- err
			return
		}
		_, err = secured.Write(buf)
		done <- err
	}()

	secured, _, err := chA.Secure(ctx, connA, true)
	require.NoError(t, err)

	_, err = secured.Write(msg)
	require.NoError(t, err)
	buf := make([]byte, len(msg))
	_, err = io.ReadFull(secured, buf)
	require.NoError(t, err)
	require.Equal(t, msg, buf)
	require.NoError(t, <-done)
}
