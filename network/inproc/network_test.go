package inproc

import (
	"context"
	"crypto/rand"
	"testing"

	ma "github.com/multiformats/go-multiaddr"
	mafmt "github.com/multiformats/go-multiaddr-fmt"
	"github.com/stretchr/testify/require"
	"github.com/wispnet/wisp/core/crypto"
	"github.com/wispnet/wisp/core/handler"
	"github.com/wispnet/wisp/core/network"
	"github.com/wispnet/wisp/core/peer"
	"github.com/wispnet/wisp/core/protocol"
	"github.com/wispnet/wisp/core/transport"
	"github.com/wispnet/wisp/mux/yamux"
)

type testNotifiee struct {
	established chan *peer.Record
	closed      chan *peer.Record
}

func newTestNotifiee() *testNotifiee {
	return &testNotifiee{
		established: make(chan *peer.Record, 8),
		closed:      make(chan *peer.Record, 8),
	}
}

func (t *testNotifiee) OnMuxedConnEstablished(rec *peer.Record) {
	t.established <- rec
}

func (t *testNotifiee) OnMuxedConnClosed(rec *peer.Record) {
	t.closed <- rec
}

func testPID(t *testing.T) peer.ID {
	t.Helper()
	_, pk, err := crypto.GenerateEd25519Key(rand.Reader)
	require.NoError(t, err)
	pid, err := peer.IDFromPubKey(pk)
	require.NoError(t, err)
	return pid
}

func newTestNetwork(t *testing.T, hub *Hub, pid peer.ID) *Network {
	t.Helper()
	n, err := NewNetwork(WithHub(hub), WithLocalPID(pid))
	require.NoError(t, err)
	n.AddTransport(transport.NewMatcherTransport("tcp", mafmt.TCP))
	return n
}

func TestNewNetworkValidation(t *testing.T) {
	_, err := NewNetwork(WithLocalPID(testPID(t)))
	require.ErrorIs(t, err, ErrNilHub)

	_, err = NewNetwork(WithHub(NewHub()))
	require.ErrorIs(t, err, ErrLocalPIDNotSet)
}

func TestListenValidation(t *testing.T) {
	hub := NewHub()
	n := newTestNetwork(t, hub, testPID(t))

	require.ErrorIs(t, n.Listen(context.Background()), ErrEmptyListenAddress)

	// no registered transport serves a udp address
	err := n.Listen(context.Background(), ma.StringCast("/ip4/127.0.0.1/udp/9000"))
	require.ErrorIs(t, err, ErrNoUsableListenAddr)

	addr := ma.StringCast("/ip4/127.0.0.1/tcp/9000")
	require.NoError(t, n.Listen(context.Background(), addr))
	addrs := n.ListenAddresses()
	require.Len(t, addrs, 1)
	require.True(t, addrs[0].Equal(addr))
}

func TestDialAndClose(t *testing.T) {
	ctx := context.Background()
	hub := NewHub()
	pidA, pidB := testPID(t), testPID(t)

	a := newTestNetwork(t, hub, pidA)
	b := newTestNetwork(t, hub, pidB)
	a.AddMuxer(yamux.New())
	b.AddMuxer(yamux.New())

	na := newTestNotifiee()
	nb := newTestNotifiee()
	a.Notify(na)
	b.Notify(nb)

	addrB := ma.StringCast("/ip4/127.0.0.1/tcp/9001")
	require.NoError(t, b.Listen(ctx, addrB))

	// dialing an address nothing listens on fails
	_, err := a.Dial(ctx, peer.NewRecordWithAddresses(pidB, ma.StringCast("/ip4/127.0.0.1/tcp/9999")), "")
	require.ErrorIs(t, err, ErrAllDialFailed)

	// dialing ourselves is refused
	_, err = a.Dial(ctx, peer.NewRecordWithAddresses(pidA, addrB), "")
	require.ErrorIs(t, err, ErrDialToSelf)

	rec := peer.NewRecordWithAddresses(pidB, addrB)
	conn, err := a.Dial(ctx, rec, "")
	require.NoError(t, err)
	require.Equal(t, network.Outbound, conn.Direction())
	require.Equal(t, pidA, conn.LocalPeerID())
	require.Equal(t, pidB, conn.RemotePeerID())

	// both sides are notified, and the records carry the negotiated muxer
	got := <-na.established
	require.Same(t, rec, got)
	muxTag, ok := got.Capability(peer.CapabilityMuxer)
	require.True(t, ok)
	require.Equal(t, yamux.MuxerTag, muxTag)

	inRec := <-nb.established
	require.Equal(t, pidA, inRec.ID())

	// an existing live connection is reused
	again, err := a.Dial(ctx, rec, "")
	require.NoError(t, err)
	require.Same(t, conn, again)

	require.NoError(t, a.ClosePeer(pidB))
	require.True(t, conn.Closed())
	<-na.closed
	<-nb.closed

	// closing a peer we hold no connection with is a no-op
	require.NoError(t, a.ClosePeer(pidB))
}

func TestDialWithProtocolHint(t *testing.T) {
	ctx := context.Background()
	hub := NewHub()
	pidA, pidB := testPID(t), testPID(t)

	a := newTestNetwork(t, hub, pidA)
	b := newTestNetwork(t, hub, pidB)

	addrB := ma.StringCast("/ip4/127.0.0.1/tcp/9001")
	require.NoError(t, b.Listen(ctx, addrB))

	rec := peer.NewRecordWithAddresses(pidB, addrB)
	_, err := a.Dial(ctx, rec, "/echo/1.0.0")
	require.ErrorIs(t, err, ErrProtocolNotSupported)

	b.Handle("/echo/1.0.0", func(s handler.Stream) { _ = s.Close() }, nil)
	conn, err := a.Dial(ctx, rec, "/echo/1.0.0")
	require.NoError(t, err)

	s, err := conn.OpenStream(ctx, "/echo/1.0.0")
	require.NoError(t, err)
	require.Equal(t, protocol.ID("/echo/1.0.0"), s.Protocol())
	require.Equal(t, pidB, s.RemotePeerID())
	require.NoError(t, s.Close())

	b.Unhandle("/echo/1.0.0")
	_, err = conn.OpenStream(ctx, "/echo/1.0.0")
	require.ErrorIs(t, err, ErrProtocolNotSupported)
}

func TestStreamHandlerEcho(t *testing.T) {
	ctx := context.Background()
	hub := NewHub()

	a := newTestNetwork(t, hub, testPID(t))
	pidB := testPID(t)
	b := newTestNetwork(t, hub, pidB)

	b.Handle("/echo/1.0.0", func(s handler.Stream) {
		defer func() { _ = s.Close() }()
		buf := make([]byte, 16)
		n, err := s.Read(buf)
		if err != nil {
			return
		}
		_, _ = s.Write(buf[:n])
	}, nil)

	addrB := ma.StringCast("/ip4/127.0.0.1/tcp/9001")
	require.NoError(t, b.Listen(ctx, addrB))

	conn, err := a.Dial(ctx, peer.NewRecordWithAddresses(pidB, addrB), "")
	require.NoError(t, err)

	s, err := conn.OpenStream(ctx, "/echo/1.0.0")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	require.Same(t, conn, s.Conn())

	msg := []byte("ping-pong")
	_, err = s.Write(msg)
	require.NoError(t, err)
	buf := make([]byte, len(msg))
	n, err := s.Read(buf)
	require.NoError(t, err)
	require.Equal(t, msg, buf[:n])
}

func TestHandlerMatchFunc(t *testing.T) {
	ctx := context.Background()
	hub := NewHub()

	a := newTestNetwork(t, hub, testPID(t))
	pidB := testPID(t)
	b := newTestNetwork(t, hub, pidB)

	b.Handle("/kv/1.0.0", func(s handler.Stream) { _ = s.Close() }, func(pid protocol.ID) bool {
		return len(pid) >= 4 && pid[:4] == "/kv/"
	})

	addrB := ma.StringCast("/ip4/127.0.0.1/tcp/9001")
	require.NoError(t, b.Listen(ctx, addrB))

	conn, err := a.Dial(ctx, peer.NewRecordWithAddresses(pidB, addrB), "/kv/1.1.0")
	require.NoError(t, err)

	s, err := conn.OpenStream(ctx, "/kv/1.1.0")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = conn.OpenStream(ctx, "/other/1.0.0")
	require.ErrorIs(t, err, ErrProtocolNotSupported)
}

func TestNetworkClose(t *testing.T) {
	ctx := context.Background()
	hub := NewHub()

	a := newTestNetwork(t, hub, testPID(t))
	pidB := testPID(t)
	b := newTestNetwork(t, hub, pidB)

	na := newTestNotifiee()
	a.Notify(na)

	addrB := ma.StringCast("/ip4/127.0.0.1/tcp/9001")
	require.NoError(t, b.Listen(ctx, addrB))

	conn, err := a.Dial(ctx, peer.NewRecordWithAddresses(pidB, addrB), "")
	require.NoError(t, err)

	require.NoError(t, a.Close())
	require.True(t, a.Closed())
	require.True(t, conn.Closed())
	<-na.closed

	// operations on a closed network are refused
	_, err = a.Dial(ctx, peer.NewRecordWithAddresses(pidB, addrB), "")
	require.ErrorIs(t, err, ErrNetworkClosed)
	require.ErrorIs(t, a.Listen(ctx, addrB), ErrNetworkClosed)

	// closing again is a no-op
	require.NoError(t, a.Close())
}
