package util

import (
	"crypto/rand"
	"testing"

	ma "github.com/multiformats/go-multiaddr"
	"github.com/stretchr/testify/require"
	"github.com/wispnet/wisp/core/crypto"
	"github.com/wispnet/wisp/core/peer"
)

func testPID(t *testing.T) peer.ID {
	t.Helper()
	_, pk, err := crypto.GenerateEd25519Key(rand.Reader)
	require.NoError(t, err)
	pid, err := peer.IDFromPubKey(pk)
	require.NoError(t, err)
	return pid
}

func TestSplitAddrToTransportAndPID(t *testing.T) {
	pid := testPID(t)
	addr := ma.StringCast("/ip4/127.0.0.1/tcp/8080/p2p/" + pid.String())
	netAddr, gotPID := SplitAddrToTransportAndPID(addr)
	require.Equal(t, "/ip4/127.0.0.1/tcp/8080", netAddr.String())
	require.Equal(t, pid, gotPID)

	bare := ma.StringCast("/ip4/127.0.0.1/tcp/8080")
	netAddr, gotPID = SplitAddrToTransportAndPID(bare)
	require.True(t, bare.Equal(netAddr))
	require.True(t, gotPID.Empty())

	netAddr, gotPID = SplitAddrToTransportAndPID(nil)
	require.Nil(t, netAddr)
	require.True(t, gotPID.Empty())
}

func TestPIDAndNetAddrToMultiAddr(t *testing.T) {
	pid := testPID(t)
	netAddr := ma.StringCast("/ip4/127.0.0.1/tcp/8080")
	joined := PIDAndNetAddrToMultiAddr(pid, netAddr)
	require.Equal(t, "/ip4/127.0.0.1/tcp/8080/p2p/"+pid.String(), joined.String())

	back, gotPID := SplitAddrToTransportAndPID(joined)
	require.True(t, netAddr.Equal(back))
	require.Equal(t, pid, gotPID)
}

func TestIdentityQualify(t *testing.T) {
	pid := testPID(t)
	other := testPID(t)

	bare := ma.StringCast("/ip4/127.0.0.1/tcp/8080")
	require.Equal(t, "/ip4/127.0.0.1/tcp/8080/p2p/"+pid.String(), IdentityQualify(pid, bare).String())

	// an existing suffix is replaced, whichever identity it names
	foreign := PIDAndNetAddrToMultiAddr(other, bare)
	require.Equal(t, "/ip4/127.0.0.1/tcp/8080/p2p/"+pid.String(), IdentityQualify(pid, foreign).String())

	// qualifying twice is stable
	qualified := IdentityQualify(pid, bare)
	require.True(t, qualified.Equal(IdentityQualify(pid, qualified)))

	require.Nil(t, IdentityQualify(pid, nil))
}
