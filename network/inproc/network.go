// Package inproc provides an in-process substrate. Networks register with a
// shared Hub under their listen addresses and reach each other through it,
// carrying streams over synchronous pipes. It honors the full substrate
// contract, which makes it the substrate of choice for wiring nodes together
// inside one process and for exercising node behavior in tests.
package inproc

import (
	"context"
	"sync"
	"sync/atomic"

	ma "github.com/multiformats/go-multiaddr"
	"github.com/rambollwong/rainbowcat/types"
	"github.com/rambollwong/rainbowlog"
	"github.com/wispnet/wisp/core/handler"
	"github.com/wispnet/wisp/core/mux"
	"github.com/wispnet/wisp/core/network"
	"github.com/wispnet/wisp/core/peer"
	"github.com/wispnet/wisp/core/protocol"
	"github.com/wispnet/wisp/core/security"
	"github.com/wispnet/wisp/core/transport"
	"github.com/wispnet/wisp/log"
	"github.com/wispnet/wisp/util"
)

const loggerLabel = "NETWORK-INPROC"

var _ network.Substrate = (*Network)(nil)

type handlerEntry struct {
	h     handler.StreamHandler
	match handler.MatchFunc
}

// Network is an in-process substrate implementation.
type Network struct {
	mu sync.RWMutex

	ctx      context.Context
	hub      *Hub
	localPID peer.ID

	transports map[string]transport.Transport
	muxers     []mux.Muxer
	securities []security.Channel
	reuse      bool

	handlers  map[protocol.ID]handlerEntry
	notifiees *types.Set[network.ConnNotifiee]

	listenAddresses []ma.Multiaddr
	listening       bool

	conns  map[peer.ID]*Conn
	closed atomic.Bool

	logger *rainbowlog.Logger
}

// NewNetwork creates a Network bound to a hub and a local peer ID.
func NewNetwork(opts ...Option) (*Network, error) {
	n := &Network{
		ctx:        context.Background(),
		transports: make(map[string]transport.Transport),
		handlers:   make(map[protocol.ID]handlerEntry),
		notifiees:  types.NewSet[network.ConnNotifiee](),
		conns:      make(map[peer.ID]*Conn),
	}
	if err := n.apply(opts...); err != nil {
		return nil, err
	}
	if n.hub == nil {
		return nil, ErrNilHub
	}
	if n.localPID.Empty() {
		return nil, ErrLocalPIDNotSet
	}
	if n.logger == nil {
		n.logger = log.Logger.SubLogger(rainbowlog.WithLabels(log.DefaultLoggerLabel, loggerLabel))
	}
	return n, nil
}

// AddTransport registers a transport into the registry under its tag.
func (n *Network) AddTransport(t transport.Transport) {
	if t == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.transports[t.Tag()] = t
}

// Transport returns the registered transport with the given tag.
func (n *Network) Transport(tag string) transport.Transport {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.transports[tag]
}

// AddMuxer registers a stream multiplexer capability.
func (n *Network) AddMuxer(m mux.Muxer) {
	if m == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.muxers = append(n.muxers, m)
}

// EnableConnReuse allows negotiation reuse over a single connection.
func (n *Network) EnableConnReuse() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reuse = true
}

// AddSecurity registers an encryption channel capability.
func (n *Network) AddSecurity(ch security.Channel) {
	if ch == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.securities = append(n.securities, ch)
}

// Listen registers the network with the hub under the given addresses.
// Every address must be served by a registered transport; otherwise nothing
// is registered and an error is returned.
func (n *Network) Listen(ctx context.Context, addresses ...ma.Multiaddr) error {
	if n.Closed() {
		return ErrNetworkClosed
	}
	if len(addresses) == 0 {
		return ErrEmptyListenAddress
	}

	n.mu.Lock()
	netAddrs := make([]ma.Multiaddr, 0, len(addresses))
	for _, addr := range addresses {
		if addr == nil {
			n.mu.Unlock()
			return ErrEmptyListenAddress
		}
		netAddr, _ := util.SplitAddrToTransportAndPID(addr)
		if netAddr == nil {
			n.mu.Unlock()
			return ErrNoUsableListenAddr
		}
		served := false
		for _, t := range n.transports {
			if len(t.Filter([]ma.Multiaddr{netAddr})) > 0 {
				served = true
				break
			}
		}
		if !served {
			n.mu.Unlock()
			return ErrNoUsableListenAddr
		}
		netAddrs = append(netAddrs, netAddr)
	}
	n.listenAddresses = make([]ma.Multiaddr, len(addresses))
	copy(n.listenAddresses, addresses)
	n.listening = true
	n.mu.Unlock()

	n.hub.register(n, netAddrs...)
	for _, addr := range addresses {
		n.logger.Info().
			Msg("listening.").
			Str("address", addr.String()).
			Done()
	}
	return nil
}

// ListenAddresses returns the addresses the network is listening on.
func (n *Network) ListenAddresses() []ma.Multiaddr {
	n.mu.RLock()
	defer n.mu.RUnlock()
	res := make([]ma.Multiaddr, len(n.listenAddresses))
	copy(res, n.listenAddresses)
	return res
}

// Dial establishes a connection with the peer described by rec, trying its
// addresses in order. An existing live connection with the peer is reused.
// A non-empty hint requires the remote peer to handle the given protocol.
func (n *Network) Dial(ctx context.Context, rec *peer.Record, hint protocol.ID) (network.Connection, error) {
	if n.Closed() {
		return nil, ErrNetworkClosed
	}
	if rec == nil {
		return nil, ErrNilRecord
	}
	if rec.ID() == n.localPID {
		return nil, ErrDialToSelf
	}

	n.mu.RLock()
	existing := n.conns[rec.ID()]
	n.mu.RUnlock()
	if existing != nil && !existing.Closed() {
		if hint != "" {
			if _, ok := existing.remote.nw.handlerFor(hint); !ok {
				return nil, ErrProtocolNotSupported
			}
		}
		return existing, nil
	}

	for _, addr := range rec.Addresses() {
		netAddr, pid := util.SplitAddrToTransportAndPID(addr)
		if netAddr == nil {
			continue
		}
		if !pid.Empty() && pid != rec.ID() {
			continue
		}
		target := n.hub.find(netAddr)
		if target == nil || target == n || target.Closed() {
			continue
		}
		if target.localPID != rec.ID() {
			continue
		}
		if hint != "" {
			if _, ok := target.handlerFor(hint); !ok {
				return nil, ErrProtocolNotSupported
			}
		}
		conn := n.establish(target, rec, addr)
		n.logger.Info().
			Msg("connection established.").
			Str("remote_pid", rec.ID().String()).
			Str("remote_address", addr.String()).
			Done()
		return conn, nil
	}
	return nil, ErrAllDialFailed
}

// establish creates the connection pair, registers both endpoints and fires
// the established notifications on both sides.
func (n *Network) establish(target *Network, rec *peer.Record, addr ma.Multiaddr) *Conn {
	muxTag, secTag := negotiate(n, target)

	dialerAddr := n.dialerAddress()
	inRec := peer.NewRecordWithAddresses(n.localPID, dialerAddr)
	if muxTag != "" {
		rec.SetCapability(peer.CapabilityMuxer, muxTag)
		inRec.SetCapability(peer.CapabilityMuxer, muxTag)
	}
	if secTag != "" {
		rec.SetCapability(peer.CapabilitySecurity, secTag)
		inRec.SetCapability(peer.CapabilitySecurity, secTag)
	}

	out := &Conn{
		nw:         n,
		dir:        network.Outbound,
		localPID:   n.localPID,
		remotePID:  target.localPID,
		remoteAddr: addr,
		remoteRec:  rec,
	}
	in := &Conn{
		nw:         target,
		dir:        network.Inbound,
		localPID:   target.localPID,
		remotePID:  n.localPID,
		remoteAddr: dialerAddr,
		remoteRec:  inRec,
	}
	out.remote = in
	in.remote = out

	n.mu.Lock()
	n.conns[target.localPID] = out
	n.mu.Unlock()
	target.mu.Lock()
	target.conns[n.localPID] = in
	target.mu.Unlock()

	n.notifyEstablished(rec)
	target.notifyEstablished(inRec)
	return out
}

// negotiate picks the first muxer and security tags both sides registered.
func negotiate(a, b *Network) (muxTag, secTag string) {
	a.mu.RLock()
	aMux, aSec := a.muxers, a.securities
	a.mu.RUnlock()
	b.mu.RLock()
	bMux, bSec := b.muxers, b.securities
	b.mu.RUnlock()

	for _, am := range aMux {
		for _, bm := range bMux {
			if am.Tag() == bm.Tag() {
				muxTag = am.Tag()
				break
			}
		}
		if muxTag != "" {
			break
		}
	}
	for _, as := range aSec {
		for _, bs := range bSec {
			if as.Tag() == bs.Tag() {
				secTag = string(as.Tag())
				break
			}
		}
		if secTag != "" {
			break
		}
	}
	return muxTag, secTag
}

// dialerAddress is the address the remote side records for us.
func (n *Network) dialerAddress() ma.Multiaddr {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.listening && len(n.listenAddresses) > 0 {
		return n.listenAddresses[0]
	}
	return util.PIDToMultiAddr(n.localPID)
}

// ClosePeer closes the connection established with the given peer.
// Closing a peer we hold no connection with is a no-op.
func (n *Network) ClosePeer(pid peer.ID) error {
	n.mu.RLock()
	c := n.conns[pid]
	n.mu.RUnlock()
	if c == nil {
		return nil
	}
	return c.Close()
}

// Close closes the network, deregisters it from the hub and tears down all
// of its connections.
func (n *Network) Close() error {
	if !n.closed.CompareAndSwap(false, true) {
		return nil
	}
	n.hub.deregister(n)
	n.mu.Lock()
	conns := make([]*Conn, 0, len(n.conns))
	for _, c := range n.conns {
		conns = append(conns, c)
	}
	n.listening = false
	n.mu.Unlock()
	for _, c := range conns {
		_ = c.Close()
	}
	n.logger.Info().Msg("network closed.").Done()
	return nil
}

// Closed returns whether the network has been closed.
func (n *Network) Closed() bool {
	return n.closed.Load()
}

// LocalPeerID returns the local peer ID of the network.
func (n *Network) LocalPeerID() peer.ID {
	return n.localPID
}

// Handle registers a protocol handler. A nil match restricts routing to the
// exact protocol ID.
func (n *Network) Handle(pid protocol.ID, h handler.StreamHandler, match handler.MatchFunc) {
	if h == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers[pid] = handlerEntry{h: h, match: match}
}

// Unhandle removes the handler registered for the protocol ID.
func (n *Network) Unhandle(pid protocol.ID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.handlers, pid)
}

// Notify subscribes to connection events of the network.
func (n *Network) Notify(notifiee network.ConnNotifiee) {
	if notifiee == nil {
		return
	}
	n.notifiees.Put(notifiee)
}

// handlerFor resolves the handler routing the given protocol: the exact
// registration wins, then the first registration whose match func accepts it.
func (n *Network) handlerFor(pid protocol.ID) (handler.StreamHandler, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if e, ok := n.handlers[pid]; ok {
		return e.h, true
	}
	for _, e := range n.handlers {
		if e.match != nil && e.match(pid) {
			return e.h, true
		}
	}
	return nil, false
}

// dropConn removes the connection from the live set.
func (n *Network) dropConn(c *Conn) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conns[c.remotePID] == c {
		delete(n.conns, c.remotePID)
	}
}

func (n *Network) notifyEstablished(rec *peer.Record) {
	n.notifiees.Range(func(nt network.ConnNotifiee) bool {
		nt.OnMuxedConnEstablished(rec)
		return true
	})
}

func (n *Network) notifyClosed(rec *peer.Record) {
	n.notifiees.Range(func(nt network.ConnNotifiee) bool {
		nt.OnMuxedConnClosed(rec)
		return true
	})
}
