package network

import (
	"context"
	"io"

	ma "github.com/multiformats/go-multiaddr"
	"github.com/wispnet/wisp/core/handler"
	"github.com/wispnet/wisp/core/mux"
	"github.com/wispnet/wisp/core/peer"
	"github.com/wispnet/wisp/core/protocol"
	"github.com/wispnet/wisp/core/security"
	"github.com/wispnet/wisp/core/transport"
)

// Stream is a logical protocol stream carried by a Connection.
type Stream interface {
	handler.Stream

	// Conn returns the connection the stream belongs to.
	Conn() Connection
}

// Connection represents an established, possibly multiplexed connection
// with a remote peer.
type Connection interface {
	io.Closer

	// LocalPeerID returns the local peer ID of the connection.
	LocalPeerID() peer.ID

	// RemotePeerID returns the remote peer ID of the connection.
	RemotePeerID() peer.ID

	// RemoteAddr returns the remote multiaddress of the connection.
	RemoteAddr() ma.Multiaddr

	// Direction returns whether the connection is inbound or outbound.
	Direction() Direction

	// Closed returns whether the connection has been closed.
	Closed() bool

	// OpenStream opens a new logical stream for the given protocol.
	OpenStream(ctx context.Context, pid protocol.ID) (Stream, error)
}

// ConnNotifiee receives substrate-level connection events. A multiplexed
// connection counts as established once the identity handshake and stream
// multiplexing have been negotiated on it.
type ConnNotifiee interface {
	// OnMuxedConnEstablished is invoked when a multiplexed connection with
	// a peer has been fully negotiated, in either direction.
	OnMuxedConnEstablished(rec *peer.Record)

	// OnMuxedConnClosed is invoked when a multiplexed connection with a
	// peer has gone away.
	OnMuxedConnClosed(rec *peer.Record)
}

// Substrate is the underlying transport and connection-management layer the
// node composes capabilities onto. It owns the transport registry, the
// physical listeners and connections, and the protocol handler table.
// All failures are reported verbatim; the substrate never retries.
type Substrate interface {
	io.Closer

	// AddTransport registers a transport into the registry under its tag.
	AddTransport(t transport.Transport)

	// Transport returns the registered transport with the given tag,
	// or nil when none is registered under it.
	Transport(tag string) transport.Transport

	// AddMuxer registers a stream multiplexer capability.
	AddMuxer(m mux.Muxer)

	// EnableConnReuse allows identity-handshake-and-multiplex negotiation
	// over a single physical connection. Only meaningful once at least one
	// multiplexer has been registered.
	EnableConnReuse()

	// AddSecurity registers an encryption channel capability.
	AddSecurity(ch security.Channel)

	// Listen activates listeners on the given addresses across all
	// registered transports. If it fails, no address is treated as ready,
	// even if some listeners individually succeeded.
	Listen(ctx context.Context, addresses ...ma.Multiaddr) error

	// ListenAddresses returns the addresses the substrate is listening on.
	ListenAddresses() []ma.Multiaddr

	// Dial establishes an outbound connection with the peer described by
	// the record, trying its addresses in order. A non-empty hint asks the
	// substrate to negotiate the given protocol on the fresh connection.
	Dial(ctx context.Context, rec *peer.Record, hint protocol.ID) (Connection, error)

	// ClosePeer closes every connection established with the given peer.
	ClosePeer(pid peer.ID) error

	// Closed returns whether the substrate has been closed.
	Closed() bool

	// LocalPeerID returns the local peer ID.
	LocalPeerID() peer.ID

	// Handle registers a protocol handler. A nil match restricts routing to
	// the exact protocol ID.
	Handle(pid protocol.ID, h handler.StreamHandler, match handler.MatchFunc)

	// Unhandle removes the handler registered for the protocol ID.
	Unhandle(pid protocol.ID)

	// Notify subscribes to substrate-level connection events.
	Notify(n ConnNotifiee)
}
