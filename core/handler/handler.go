package handler

import (
	"io"

	"github.com/wispnet/wisp/core/peer"
	"github.com/wispnet/wisp/core/protocol"
)

// Stream is the view of a protocol stream that a handler receives.
type Stream interface {
	io.ReadWriteCloser

	// RemotePeerID returns the ID of the peer on the other end of the stream.
	RemotePeerID() peer.ID

	// Protocol returns the protocol ID the stream was opened for.
	Protocol() protocol.ID
}

// StreamHandler consumes an inbound stream opened for a registered protocol.
type StreamHandler func(s Stream)

// MatchFunc reports whether a proposed protocol ID should be routed to the
// handler it was registered alongside. A nil MatchFunc means exact match only.
type MatchFunc func(id protocol.ID) bool
