// Package wisp assembles transports, stream multiplexers, encryption
// channels and discovery sources into a single addressable network node.
//
// A Node is created with NewNode, wired entirely at construction time, and
// switched with Start and Stop. While online it dials, hangs up, probes and
// serves protocol streams through the substrate it was given.
package wisp

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	ma "github.com/multiformats/go-multiaddr"
	"github.com/rambollwong/rainbowcat/types"
	"github.com/rambollwong/rainbowlog"
	"github.com/wispnet/wisp/core/discovery"
	"github.com/wispnet/wisp/core/handler"
	"github.com/wispnet/wisp/core/mux"
	"github.com/wispnet/wisp/core/network"
	"github.com/wispnet/wisp/core/node"
	"github.com/wispnet/wisp/core/peer"
	"github.com/wispnet/wisp/core/protocol"
	"github.com/wispnet/wisp/core/safe"
	"github.com/wispnet/wisp/core/security"
	"github.com/wispnet/wisp/core/store"
	"github.com/wispnet/wisp/core/transport"
	"github.com/wispnet/wisp/liveness"
	"github.com/wispnet/wisp/log"
	"github.com/wispnet/wisp/peerbook"
	"github.com/wispnet/wisp/util"
)

const loggerLabel = "NODE"

var (
	// ErrSubstrateRequired is returned by NewNode when no substrate was given.
	ErrSubstrateRequired = errors.New("substrate is required")
	// ErrLocalRecordRequired is returned by NewNode when no local identity
	// record was given.
	ErrLocalRecordRequired = errors.New("local identity record is required")
	// ErrNoTransports is returned by Start when no transports were present.
	ErrNoTransports = errors.New("no transports were present")
	// ErrNotStarted is returned by connection operations while the node is
	// offline.
	ErrNotStarted = errors.New("the node is not started yet")
	// ErrPeerUnknown is returned when a bare peer ID reference names a peer
	// the peer book holds no record for.
	ErrPeerUnknown = errors.New("peer is unknown, no address to reach it")
	// ErrNoIdentitySuffix is returned when an address reference carries no
	// /p2p identity suffix.
	ErrNoIdentitySuffix = errors.New("address carries no identity suffix")
	// ErrUnrecognizedPeerRef is returned when a peer reference is none of
	// *peer.Record, peer.ID or multiaddress.
	ErrUnrecognizedPeerRef = errors.New("unrecognized peer reference")
)

var _ node.Node = (*Node)(nil)

// Node is the default node.Node implementation.
type Node struct {
	mu  sync.Mutex
	ctx context.Context

	sub   network.Substrate
	book  store.PeerBook
	local *peer.Record

	transports []transport.Transport
	muxers     []mux.Muxer
	securities []security.Channel
	sources    []discovery.Source

	listenAddresses []ma.Multiaddr
	dialOnlyTag     string

	online   atomic.Bool
	notifiee *types.Set[node.Notifiee]

	logger *rainbowlog.Logger
}

// NewNode creates a Node and wires every configured module into the
// substrate. After NewNode returns no further composition is possible; the
// returned node only needs Start to go online.
func NewNode(opts ...Option) (*Node, error) {
	n := &Node{
		ctx:      context.Background(),
		notifiee: types.NewSet[node.Notifiee](),
	}
	if err := n.apply(opts...); err != nil {
		return nil, err
	}
	if n.logger == nil {
		n.logger = log.Logger.SubLogger(rainbowlog.WithLabels(log.DefaultLoggerLabel, loggerLabel))
	}
	if n.sub == nil {
		return nil, ErrSubstrateRequired
	}
	if n.local == nil || n.local.ID().Empty() {
		return nil, ErrLocalRecordRequired
	}
	if n.book == nil {
		n.book = peerbook.NewBasicPeerBook()
	}
	if len(n.listenAddresses) == 0 {
		n.listenAddresses = n.local.Addresses()
	}
	n.wireModules()
	return n, nil
}

// wireModules composes the configured capabilities onto the substrate:
// multiplexers first, then the connection event bridge, then encryption
// channels, then discovery callbacks, and finally the liveness handler.
// Transports are withheld until Start, when the listen addresses are known.
func (n *Node) wireModules() {
	for _, m := range n.muxers {
		n.sub.AddMuxer(m)
	}
	if len(n.muxers) > 0 {
		n.sub.EnableConnReuse()
	}

	n.sub.Notify(&connNotifiee{n: n})

	for _, ch := range n.securities {
		n.sub.AddSecurity(ch)
	}

	for _, src := range n.sources {
		src.OnPeerFound(n.handlePeerFound)
	}

	liveness.Mount(n.sub)
}

// Start brings the node online: it registers the transports serving the
// listen addresses, activates the listeners and kicks off the discovery
// sources. Starting an online node is a no-op.
func (n *Node) Start() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.online.Load() {
		return nil
	}
	if len(n.transports) == 0 {
		return ErrNoTransports
	}
	n.logger.Info().Msg("starting node...").Done()

	// Register only the transports that serve a listen address. A transport
	// carrying the dial-only tag is held back and registered after the
	// listeners are up, so it can dial without serving any address.
	var dialOnly []transport.Transport
	for _, t := range n.transports {
		if len(t.Filter(n.listenAddresses)) > 0 {
			n.sub.AddTransport(t)
			continue
		}
		if n.dialOnlyTag != "" && t.Tag() == n.dialOnlyTag {
			dialOnly = append(dialOnly, t)
			continue
		}
		n.logger.Debug().
			Msg("transport serves no listen address, skipped.").
			Str("tag", t.Tag()).
			Done()
	}

	addrs := make([]ma.Multiaddr, 0, len(n.listenAddresses))
	for _, a := range n.listenAddresses {
		addrs = append(addrs, util.IdentityQualify(n.local.ID(), a))
	}
	n.listenAddresses = addrs

	if err := n.sub.Listen(n.ctx, addrs...); err != nil {
		n.logger.Error().Msg("failed to listen.").Err(err).Done()
		return err
	}

	for _, t := range dialOnly {
		n.sub.AddTransport(t)
	}

	n.online.Store(true)

	for _, src := range n.sources {
		src := src
		safe.LoggerGo(n.logger, func() {
			if err := src.Start(); err != nil {
				n.logger.Warn().Msg("failed to start discovery source.").Err(err).Done()
			}
		})
	}

	for _, a := range addrs {
		n.logger.Info().
			Msg("node listening.").
			Str("address", a.String()).
			Done()
	}
	n.logger.Info().Msg("node started.").Str("pid", n.local.ID().String()).Done()
	return nil
}

// Stop takes the node offline, stops the discovery sources and closes the
// substrate together with all connections. Stopping a stopped node is a
// no-op.
func (n *Node) Stop() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.online.Store(false)

	for _, src := range n.sources {
		src := src
		safe.LoggerGo(n.logger, func() {
			if err := src.Stop(); err != nil {
				n.logger.Debug().Msg("failed to stop discovery source.").Err(err).Done()
			}
		})
	}

	if n.sub.Closed() {
		return nil
	}
	if err := n.sub.Close(); err != nil {
		n.logger.Error().Msg("failed to close substrate.").Err(err).Done()
		return err
	}
	n.logger.Info().Msg("node stopped.").Done()
	return nil
}

// Context returns the context of the node instance.
func (n *Node) Context() context.Context {
	return n.ctx
}

// ID returns the local peer ID.
func (n *Node) ID() peer.ID {
	return n.local.ID()
}

// LocalRecord returns the identity record of the local node.
func (n *Node) LocalRecord() *peer.Record {
	return n.local
}

// IsOn returns whether the node is online.
func (n *Node) IsOn() bool {
	return n.online.Load()
}

// Dial establishes an outbound connection with the referenced peer. The
// record of the peer is stored in the peer book only once the dial succeeds.
func (n *Node) Dial(ctx context.Context, ref any) (network.Connection, error) {
	return n.DialProtocol(ctx, ref, "")
}

// DialProtocol establishes an outbound connection with the referenced peer
// and asks the substrate to negotiate the given protocol on it.
func (n *Node) DialProtocol(ctx context.Context, ref any, pid protocol.ID) (network.Connection, error) {
	if !n.online.Load() {
		return nil, ErrNotStarted
	}
	rec, err := n.resolvePeer(ref)
	if err != nil {
		return nil, err
	}
	conn, err := n.sub.Dial(ctx, rec, pid)
	if err != nil {
		n.logger.Debug().
			Msg("dial failed.").
			Str("pid", rec.ID().String()).
			Err(err).
			Done()
		return nil, err
	}
	n.book.Put(rec)
	return conn, nil
}

// HangUp closes all connections with the referenced peer. Its record is
// removed from the peer book before the substrate tears the connections down.
func (n *Node) HangUp(ref any) error {
	if !n.online.Load() {
		return ErrNotStarted
	}
	rec, err := n.resolvePeer(ref)
	if err != nil {
		return err
	}
	n.book.Remove(rec.ID())
	return n.sub.ClosePeer(rec.ID())
}

// Ping returns a liveness probe bound to the referenced peer. Constructing
// the probe sends no bytes.
func (n *Node) Ping(ref any) (*liveness.Probe, error) {
	if !n.online.Load() {
		return nil, ErrNotStarted
	}
	rec, err := n.resolvePeer(ref)
	if err != nil {
		return nil, err
	}
	return liveness.NewProbe(n.sub, rec), nil
}

// Handle registers a protocol handler on the substrate. It may be called
// before the node is started.
func (n *Node) Handle(pid protocol.ID, h handler.StreamHandler, match handler.MatchFunc) {
	n.sub.Handle(pid, h, match)
	n.logger.Info().Msg("protocol handler registered.").Str("protocol", pid.String()).Done()
}

// Unhandle removes the handler registered for the protocol ID.
func (n *Node) Unhandle(pid protocol.ID) {
	n.sub.Unhandle(pid)
	n.logger.Info().Msg("protocol handler unregistered.").Str("protocol", pid.String()).Done()
}

// Notify registers a Notifiee to receive node-level events.
func (n *Node) Notify(nt node.Notifiee) {
	if nt == nil {
		return
	}
	n.notifiee.Put(nt)
}

// PeerBook returns the peer book associated with the node.
func (n *Node) PeerBook() store.PeerBook {
	return n.book
}

// Substrate returns the substrate the node composes capabilities onto.
func (n *Node) Substrate() network.Substrate {
	return n.sub
}

// ListenAddresses returns the identity-qualified addresses the node
// listens on.
func (n *Node) ListenAddresses() []ma.Multiaddr {
	return n.sub.ListenAddresses()
}

// handlePeerFound bridges discovery sources to the node-level event surface.
// Discovered records are announced but not stored; only established
// connections feed the peer book.
func (n *Node) handlePeerFound(rec *peer.Record) {
	if rec == nil {
		return
	}
	n.logger.Debug().Msg("peer discovered.").Str("pid", rec.ID().String()).Done()
	n.notifiee.Range(func(nt node.Notifiee) bool {
		nt.OnPeerDiscovery(rec)
		return true
	})
}

// connNotifiee bridges substrate connection events to the node-level event
// surface and keeps the peer book consistent with connectivity.
type connNotifiee struct {
	n *Node
}

var _ network.ConnNotifiee = (*connNotifiee)(nil)

// OnMuxedConnEstablished announces the connected peer, then stores its
// record. Observers run before the book mutation.
func (cn *connNotifiee) OnMuxedConnEstablished(rec *peer.Record) {
	cn.n.logger.Info().Msg("peer connected.").Str("pid", rec.ID().String()).Done()
	cn.n.notifiee.Range(func(nt node.Notifiee) bool {
		nt.OnPeerConnect(rec)
		return true
	})
	cn.n.book.Put(rec)
}

// OnMuxedConnClosed announces the disconnected peer, then removes its record.
func (cn *connNotifiee) OnMuxedConnClosed(rec *peer.Record) {
	cn.n.logger.Info().Msg("peer disconnected.").Str("pid", rec.ID().String()).Done()
	cn.n.notifiee.Range(func(nt node.Notifiee) bool {
		nt.OnPeerDisconnect(rec)
		return true
	})
	cn.n.book.Remove(rec.ID())
}
