package store

import (
	"github.com/wispnet/wisp/core/peer"
)

// PeerBook is a registry of known peer records keyed by the canonical
// string form of the peer ID. At most one record exists per key; storing a
// record for a key that is already present overwrites it (last write wins).
// Absence of a record is a distinct condition from presence with an empty
// address set.
type PeerBook interface {
	// Put stores the record, replacing any record already held for the
	// same peer ID.
	Put(rec *peer.Record)

	// Get returns the record for the given peer ID, and whether one exists.
	Get(pid peer.ID) (*peer.Record, bool)

	// Remove deletes the record for the given peer ID, reporting whether
	// one was present.
	Remove(pid peer.ID) bool

	// Contains returns whether a record exists for the given peer ID.
	Contains(pid peer.ID) bool

	// Records returns all records currently held.
	Records() []*peer.Record

	// Size returns the number of records held.
	Size() int
}
