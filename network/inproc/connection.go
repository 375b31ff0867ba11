package inproc

import (
	"context"
	"net"
	"sync/atomic"

	ma "github.com/multiformats/go-multiaddr"
	"github.com/wispnet/wisp/core/network"
	"github.com/wispnet/wisp/core/peer"
	"github.com/wispnet/wisp/core/protocol"
	"github.com/wispnet/wisp/core/safe"
)

var (
	_ network.Connection = (*Conn)(nil)
	_ network.Stream     = (*stream)(nil)
)

// Conn is one endpoint of an in-process connection. Each established
// connection is a pair of Conns, one per side, linked to each other.
type Conn struct {
	nw  *Network
	dir network.Direction

	localPID   peer.ID
	remotePID  peer.ID
	remoteAddr ma.Multiaddr
	remoteRec  *peer.Record

	remote *Conn

	closed atomic.Bool
}

// LocalPeerID returns the local peer ID of the connection.
func (c *Conn) LocalPeerID() peer.ID {
	return c.localPID
}

// RemotePeerID returns the remote peer ID of the connection.
func (c *Conn) RemotePeerID() peer.ID {
	return c.remotePID
}

// RemoteAddr returns the remote multiaddress of the connection.
func (c *Conn) RemoteAddr() ma.Multiaddr {
	return c.remoteAddr
}

// Direction returns whether the connection is inbound or outbound.
func (c *Conn) Direction() network.Direction {
	return c.dir
}

// Closed returns whether the connection has been closed.
func (c *Conn) Closed() bool {
	return c.closed.Load()
}

// Close closes both sides of the connection and notifies each side's
// network subscribers.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.nw.dropConn(c)
	c.nw.notifyClosed(c.remoteRec)
	if c.remote != nil {
		_ = c.remote.Close()
	}
	return nil
}

// OpenStream opens a new logical stream for the given protocol. The remote
// side must have a handler registered for it; the handler runs on its own
// goroutine with the remote end of the stream.
func (c *Conn) OpenStream(ctx context.Context, pid protocol.ID) (network.Stream, error) {
	if c.closed.Load() {
		return nil, ErrConnClosed
	}
	if c.remote == nil || c.remote.closed.Load() {
		return nil, ErrConnClosed
	}
	h, ok := c.remote.nw.handlerFor(pid)
	if !ok {
		return nil, ErrProtocolNotSupported
	}

	p1, p2 := net.Pipe()
	local := &stream{pipe: p1, pid: pid, conn: c}
	remote := &stream{pipe: p2, pid: pid, conn: c.remote}
	safe.LoggerGo(c.remote.nw.logger, func() {
		h(remote)
	})
	return local, nil
}

// stream is one end of a logical stream, carried by a synchronous pipe.
type stream struct {
	pipe net.Conn
	pid  protocol.ID
	conn *Conn
}

// Read reads data from the stream.
func (s *stream) Read(p []byte) (n int, err error) {
	return s.pipe.Read(p)
}

// Write writes data to the stream.
func (s *stream) Write(p []byte) (n int, err error) {
	return s.pipe.Write(p)
}

// Close closes this end of the stream.
func (s *stream) Close() error {
	return s.pipe.Close()
}

// RemotePeerID returns the peer ID of the other end of the stream.
func (s *stream) RemotePeerID() peer.ID {
	return s.conn.RemotePeerID()
}

// Protocol returns the protocol the stream was opened for.
func (s *stream) Protocol() protocol.ID {
	return s.pid
}

// Conn returns the connection the stream belongs to.
func (s *stream) Conn() network.Connection {
	return s.conn
}
