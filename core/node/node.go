package node

import (
	"context"

	ma "github.com/multiformats/go-multiaddr"
	"github.com/wispnet/wisp/core"
	"github.com/wispnet/wisp/core/handler"
	"github.com/wispnet/wisp/core/network"
	"github.com/wispnet/wisp/core/peer"
	"github.com/wispnet/wisp/core/protocol"
	"github.com/wispnet/wisp/core/store"
	"github.com/wispnet/wisp/liveness"
)

// Notifiee receives node-level lifecycle events. Implementations are
// registered with Notify and may be invoked from substrate or discovery
// goroutines.
type Notifiee interface {
	// OnPeerConnect is invoked when a multiplexed connection with a peer
	// has been established.
	OnPeerConnect(rec *peer.Record)

	// OnPeerDisconnect is invoked when a multiplexed connection with a
	// peer has been closed.
	OnPeerDisconnect(rec *peer.Record)

	// OnPeerDiscovery is invoked when a discovery source finds a peer.
	OnPeerDiscovery(rec *peer.Record)
}

// Node binds transports, stream multiplexers, encryption channels and
// discovery sources into one addressable network identity and exposes a
// uniform operation surface over them.
//
// Peer references accepted by Dial, DialProtocol, HangUp and Ping may be a
// *peer.Record, a bare peer.ID known to the peer book, or a multiaddress
// carrying a /p2p identity suffix.
type Node interface {
	core.Switcher

	// Context returns the context of the node instance.
	Context() context.Context

	// ID returns the local peer ID.
	ID() peer.ID

	// LocalRecord returns the identity record of the local node.
	LocalRecord() *peer.Record

	// IsOn returns whether the node is online.
	IsOn() bool

	// Dial establishes an outbound connection with the referenced peer.
	Dial(ctx context.Context, ref any) (network.Connection, error)

	// DialProtocol establishes an outbound connection with the referenced
	// peer and asks the substrate to negotiate the given protocol on it.
	DialProtocol(ctx context.Context, ref any, pid protocol.ID) (network.Connection, error)

	// HangUp closes all connections with the referenced peer and removes
	// its record from the peer book.
	HangUp(ref any) error

	// Ping returns a liveness probe bound to the referenced peer.
	// Constructing the probe sends no bytes.
	Ping(ref any) (*liveness.Probe, error)

	// Handle registers a protocol handler on the substrate. It may be
	// called before the node is started.
	Handle(pid protocol.ID, h handler.StreamHandler, match handler.MatchFunc)

	// Unhandle removes the handler registered for the protocol ID.
	Unhandle(pid protocol.ID)

	// Notify registers a Notifiee to receive node-level events.
	Notify(n Notifiee)

	// PeerBook returns the peer book associated with the node.
	PeerBook() store.PeerBook

	// Substrate returns the substrate the node composes capabilities onto.
	Substrate() network.Substrate

	// ListenAddresses returns the identity-qualified addresses the node
	// listens on.
	ListenAddresses() []ma.Multiaddr
}
