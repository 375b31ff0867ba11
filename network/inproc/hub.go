package inproc

import (
	"sync"

	ma "github.com/multiformats/go-multiaddr"
)

// Hub connects in-process networks to each other. Listening registers a
// network under its listen addresses; dialing looks the target network up by
// address. Networks sharing a hub form one reachable universe.
type Hub struct {
	mu   sync.RWMutex
	nets map[string]*Network
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		nets: make(map[string]*Network),
	}
}

// register binds the network to the given addresses.
func (h *Hub) register(n *Network, addrs ...ma.Multiaddr) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, addr := range addrs {
		if addr == nil {
			continue
		}
		h.nets[addr.String()] = n
	}
}

// deregister unbinds the network from every address it was registered under.
func (h *Hub) deregister(n *Network) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key, net := range h.nets {
		if net == n {
			delete(h.nets, key)
		}
	}
}

// find returns the network registered under the given address, or nil.
func (h *Hub) find(addr ma.Multiaddr) *Network {
	if addr == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.nets[addr.String()]
}
