package wisp

import (
	ma "github.com/multiformats/go-multiaddr"
	"github.com/wispnet/wisp/core/peer"
	"github.com/wispnet/wisp/util"
)

// resolvePeer turns a peer reference into a dialable record.
//
// A *peer.Record is used as-is. A multiaddress must carry a /p2p identity
// suffix; the record already in the peer book is reused when one exists,
// otherwise a fresh record is built. A bare peer.ID is only resolvable
// through the peer book. Resolution never writes to the peer book: a record
// is stored once a dial with it succeeds, not before.
func (n *Node) resolvePeer(ref any) (*peer.Record, error) {
	switch v := ref.(type) {
	case *peer.Record:
		if v == nil || v.ID().Empty() {
			return nil, ErrUnrecognizedPeerRef
		}
		return v, nil
	case ma.Multiaddr:
		if v == nil {
			return nil, ErrUnrecognizedPeerRef
		}
		_, pid := util.SplitAddrToTransportAndPID(v)
		if pid.Empty() {
			return nil, ErrNoIdentitySuffix
		}
		rec, ok := n.book.Get(pid)
		if !ok {
			rec = peer.NewRecord(pid)
		}
		rec.AddAddress(v)
		return rec, nil
	case peer.ID:
		if v.Empty() {
			return nil, ErrUnrecognizedPeerRef
		}
		rec, ok := n.book.Get(v)
		if !ok {
			return nil, ErrPeerUnknown
		}
		return rec, nil
	default:
		return nil, ErrUnrecognizedPeerRef
	}
}
