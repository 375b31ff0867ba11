package peer

import (
	"sync"

	ma "github.com/multiformats/go-multiaddr"
)

// Well-known capability metadata names.
const (
	CapabilityMuxer    = "muxer"
	CapabilitySecurity = "security"
)

// Record pairs a peer ID with the set of addresses the peer is known to be
// reachable at, plus any capability metadata negotiated for it (for example
// which multiplexer or security channel a connection agreed on).
//
// A Record is safe for concurrent use. Addresses form an ordered set:
// appending keeps the first-seen order and silently drops duplicates.
type Record struct {
	mu    sync.RWMutex
	id    ID
	addrs []ma.Multiaddr
	caps  map[string]string
}

// NewRecord creates a Record for the given ID with an empty address set.
func NewRecord(id ID) *Record {
	return &Record{
		id:    id,
		addrs: make([]ma.Multiaddr, 0, 2),
		caps:  make(map[string]string),
	}
}

// NewRecordWithAddresses creates a Record for the given ID and appends the
// given addresses to it.
func NewRecordWithAddresses(id ID, addrs ...ma.Multiaddr) *Record {
	r := NewRecord(id)
	r.AddAddress(addrs...)
	return r
}

// ID returns the peer ID of the record.
func (r *Record) ID() ID {
	return r.id
}

// AddAddress appends addresses to the record, keeping the set unique.
// Adding an address that is already present is not an error.
func (r *Record) AddAddress(addrs ...ma.Multiaddr) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]struct{}, len(r.addrs))
	for _, a := range r.addrs {
		seen[a.String()] = struct{}{}
	}
	for _, a := range addrs {
		a := a
		if a == nil {
			continue
		}
		if _, ok := seen[a.String()]; ok {
			continue
		}
		seen[a.String()] = struct{}{}
		r.addrs = append(r.addrs, a)
	}
}

// RemoveAddress removes addresses from the record.
func (r *Record) RemoveAddress(addrs ...ma.Multiaddr) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.addrs) == 0 {
		return
	}
	drop := make(map[string]struct{}, len(addrs))
	for _, a := range addrs {
		drop[a.String()] = struct{}{}
	}
	res := r.addrs[:0]
	for _, a := range r.addrs {
		if _, ok := drop[a.String()]; !ok {
			res = append(res, a)
		}
	}
	r.addrs = res
}

// Addresses returns a copy of the record's address set.
func (r *Record) Addresses() []ma.Multiaddr {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]ma.Multiaddr, len(r.addrs))
	copy(res, r.addrs)
	return res
}

// SetCapability records a negotiated capability value under the given name.
func (r *Record) SetCapability(name, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caps[name] = value
}

// Capability returns the negotiated capability value for the given name.
func (r *Record) Capability(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.caps[name]
	return v, ok
}
