package yamux

import (
	"context"
	"io"
	"net"

	"github.com/libp2p/go-yamux/v4"
	"github.com/wispnet/wisp/core/mux"
)

// MuxerTag is the tag the yamux multiplexer is registered under.
const MuxerTag = "/yamux/1.0.0"

var (
	defaultYamuxConfig = yamux.DefaultConfig()

	_ mux.Muxer     = (*Muxer)(nil)
	_ mux.MuxedConn = (*muxedConn)(nil)
)

// Muxer is a stream multiplexer capability backed by yamux sessions.
type Muxer struct {
	cfg *yamux.Config
}

// New creates a yamux Muxer with the default session configuration.
func New() *Muxer {
	return &Muxer{cfg: defaultYamuxConfig}
}

// NewWithConfig creates a yamux Muxer with the given session configuration.
func NewWithConfig(cfg *yamux.Config) *Muxer {
	if cfg == nil {
		cfg = defaultYamuxConfig
	}
	return &Muxer{cfg: cfg}
}

// Tag returns the unique name of the multiplexer.
func (m *Muxer) Tag() string {
	return MuxerTag
}

// NewMuxedConn wraps the given connection into a yamux session.
func (m *Muxer) NewMuxedConn(conn net.Conn, server bool) (mux.MuxedConn, error) {
	var sess *yamux.Session
	var err error
	if server {
		sess, err = yamux.Server(conn, m.cfg, nil)
	} else {
		sess, err = yamux.Client(conn, m.cfg, nil)
	}
	if err != nil {
		return nil, err
	}
	return &muxedConn{sess: sess}, nil
}

// muxedConn adapts a yamux session to the mux.MuxedConn contract.
type muxedConn struct {
	sess *yamux.Session
}

// OpenStream opens a new outbound logical stream on the session.
func (c *muxedConn) OpenStream(ctx context.Context) (io.ReadWriteCloser, error) {
	return c.sess.OpenStream(ctx)
}

// AcceptStream accepts an inbound logical stream from the session.
func (c *muxedConn) AcceptStream() (io.ReadWriteCloser, error) {
	return c.sess.AcceptStream()
}

// Close closes the session and all streams carried by it.
func (c *muxedConn) Close() error {
	return c.sess.Close()
}

// Closed returns whether the session has been closed.
func (c *muxedConn) Closed() bool {
	select {
	case <-c.sess.CloseChan():
		return true
	default:
		return false
	}
}
