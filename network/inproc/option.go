package inproc

import (
	"context"

	"github.com/rambollwong/rainbowlog"
	"github.com/wispnet/wisp/core/peer"
)

// Option configures a Network.
type Option func(n *Network) error

func (n *Network) apply(opts ...Option) error {
	for _, o := range opts {
		if err := o(n); err != nil {
			return err
		}
	}
	return nil
}

// WithHub binds the network to the given hub. All networks that should be
// able to reach each other must share one hub.
func WithHub(hub *Hub) Option {
	return func(n *Network) error {
		n.hub = hub
		return nil
	}
}

// WithLocalPID sets the local peer ID of the network.
func WithLocalPID(pid peer.ID) Option {
	return func(n *Network) error {
		n.localPID = pid
		return nil
	}
}

// WithContext sets the root context of the network.
func WithContext(ctx context.Context) Option {
	return func(n *Network) error {
		n.ctx = ctx
		return nil
	}
}

// WithLogger sets the logger for the network.
func WithLogger(logger *rainbowlog.Logger) Option {
	return func(n *Network) error {
		n.logger = logger
		return nil
	}
}
