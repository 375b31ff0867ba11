package security

import (
	"context"
	"net"

	"github.com/wispnet/wisp/core/peer"
	"github.com/wispnet/wisp/core/protocol"
)

// Channel is a negotiated encryption and authentication layer for a
// connection. A Channel pairs a protocol tag with the function that secures
// a raw connection, which is exactly the shape the substrate registers.
type Channel interface {
	// Tag returns the protocol ID the channel is negotiated under,
	// e.g. "/tlsx/1.0.0".
	Tag() protocol.ID

	// Secure wraps the given connection. The initiator flag tells the
	// channel which side of the handshake it drives. It returns the
	// secured connection and the authenticated ID of the remote peer.
	Secure(ctx context.Context, conn net.Conn, initiator bool) (net.Conn, peer.ID, error)
}
