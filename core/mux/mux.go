package mux

import (
	"context"
	"io"
	"net"
)

// MuxedConn is a connection that carries many logical streams over one
// physical connection.
type MuxedConn interface {
	io.Closer

	// OpenStream opens a new outbound logical stream.
	OpenStream(ctx context.Context) (io.ReadWriteCloser, error)

	// AcceptStream accepts an inbound logical stream.
	// It blocks until a stream arrives or the connection is closed.
	AcceptStream() (io.ReadWriteCloser, error)

	// Closed returns whether the muxed connection has been closed.
	Closed() bool
}

// Muxer upgrades a single physical connection into a MuxedConn.
// Registering at least one Muxer with the substrate is what makes
// connection reuse meaningful.
type Muxer interface {
	// Tag returns the unique name of the multiplexer, e.g. "/yamux/1.0.0".
	Tag() string

	// NewMuxedConn wraps the given connection. The server flag tells the
	// multiplexer which side of the session it drives.
	NewMuxedConn(conn net.Conn, server bool) (MuxedConn, error)
}
