package peerbook

import (
	"sync"

	"github.com/wispnet/wisp/core/peer"
	"github.com/wispnet/wisp/core/store"
)

var _ store.PeerBook = (*BasicPeerBook)(nil)

// BasicPeerBook is a basic in-memory implementation of the PeerBook
// interface. Records are keyed by the canonical string form of the peer ID
// and storing a record overwrites any record already held for the same key.
//
// All accesses are serialized by one mutex so that concurrent upserts from
// a dial in flight and an incoming connection event keep the last-write-wins
// semantics.
type BasicPeerBook struct {
	mu   sync.RWMutex
	book map[string]*peer.Record
}

// NewBasicPeerBook creates a new empty BasicPeerBook.
func NewBasicPeerBook() *BasicPeerBook {
	return &BasicPeerBook{
		book: make(map[string]*peer.Record),
	}
}

// Put stores the record, replacing any record already held for the same
// peer ID. A nil record is ignored.
func (b *BasicPeerBook) Put(rec *peer.Record) {
	if rec == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.book[rec.ID().String()] = rec
}

// Get returns the record for the given peer ID, and whether one exists.
func (b *BasicPeerBook) Get(pid peer.ID) (*peer.Record, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	rec, ok := b.book[pid.String()]
	return rec, ok
}

// Remove deletes the record for the given peer ID, reporting whether one
// was present.
func (b *BasicPeerBook) Remove(pid peer.ID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.book[pid.String()]
	if ok {
		delete(b.book, pid.String())
	}
	return ok
}

// Contains returns whether a record exists for the given peer ID.
func (b *BasicPeerBook) Contains(pid peer.ID) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.book[pid.String()]
	return ok
}

// Records returns all records currently held.
func (b *BasicPeerBook) Records() []*peer.Record {
	b.mu.RLock()
	defer b.mu.RUnlock()
	res := make([]*peer.Record, 0, len(b.book))
	for _, rec := range b.book {
		res = append(res, rec)
	}
	return res
}

// Size returns the number of records held.
func (b *BasicPeerBook) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.book)
}
