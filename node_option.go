package wisp

import (
	"context"

	ma "github.com/multiformats/go-multiaddr"
	"github.com/rambollwong/rainbowlog"
	cc "github.com/wispnet/wisp/core/crypto"
	"github.com/wispnet/wisp/core/discovery"
	"github.com/wispnet/wisp/core/mux"
	"github.com/wispnet/wisp/core/network"
	"github.com/wispnet/wisp/core/peer"
	"github.com/wispnet/wisp/core/security"
	"github.com/wispnet/wisp/core/store"
	"github.com/wispnet/wisp/core/transport"
)

// Option configures a Node before it is wired.
type Option func(n *Node) error

func (n *Node) apply(opts ...Option) error {
	for _, o := range opts {
		if err := o(n); err != nil {
			return err
		}
	}
	return nil
}

// WithContext sets the root context of the node.
func WithContext(ctx context.Context) Option {
	return func(n *Node) error {
		n.ctx = ctx
		return nil
	}
}

// WithLocalRecord sets the identity record of the local node. When no listen
// addresses are configured separately, the record's addresses are listened on.
func WithLocalRecord(rec *peer.Record) Option {
	return func(n *Node) error {
		n.local = rec
		return nil
	}
}

// WithIdentityKey derives the local identity record from the given private
// key. Listen addresses must then be configured with WithListenAddresses.
func WithIdentityKey(sk cc.PriKey) Option {
	return func(n *Node) error {
		pid, err := peer.IDFromPriKey(sk)
		if err != nil {
			return err
		}
		n.local = peer.NewRecord(pid)
		return nil
	}
}

// WithListenAddresses sets the addresses the node listens on, overriding the
// local record's addresses.
func WithListenAddresses(addrs ...ma.Multiaddr) Option {
	return func(n *Node) error {
		n.listenAddresses = append(n.listenAddresses, addrs...)
		return nil
	}
}

// WithPeerBook sets the peer book of the node. The default is an in-memory
// book.
func WithPeerBook(book store.PeerBook) Option {
	return func(n *Node) error {
		n.book = book
		return nil
	}
}

// WithSubstrate sets the substrate the node composes capabilities onto.
func WithSubstrate(sub network.Substrate) Option {
	return func(n *Node) error {
		n.sub = sub
		return nil
	}
}

// WithTransports adds transports to the node. At least one is required to
// start.
func WithTransports(ts ...transport.Transport) Option {
	return func(n *Node) error {
		n.transports = append(n.transports, ts...)
		return nil
	}
}

// WithMuxers adds stream multiplexer capabilities to the node. Registering
// at least one also enables connection reuse on the substrate.
func WithMuxers(ms ...mux.Muxer) Option {
	return func(n *Node) error {
		n.muxers = append(n.muxers, ms...)
		return nil
	}
}

// WithSecurities adds encryption channel capabilities to the node.
func WithSecurities(chs ...security.Channel) Option {
	return func(n *Node) error {
		n.securities = append(n.securities, chs...)
		return nil
	}
}

// WithDiscoverySources adds discovery sources to the node. They are started
// and stopped with the node and their findings surface as discovery events.
func WithDiscoverySources(srcs ...discovery.Source) Option {
	return func(n *Node) error {
		n.sources = append(n.sources, srcs...)
		return nil
	}
}

// WithDialOnlyTransport marks the transport registered under the given tag
// as dial-only: when it serves none of the listen addresses it is still
// registered after the listeners are up, instead of being skipped.
func WithDialOnlyTransport(tag string) Option {
	return func(n *Node) error {
		n.dialOnlyTag = tag
		return nil
	}
}

// WithLogger sets the logger for the node.
func WithLogger(logger *rainbowlog.Logger) Option {
	return func(n *Node) error {
		n.logger = logger
		return nil
	}
}
