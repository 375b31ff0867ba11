package discovery

import (
	"github.com/wispnet/wisp/core"
	"github.com/wispnet/wisp/core/peer"
)

// Source is an external mechanism that asynchronously reports newly found
// peers. Sources are wired to the node at construction time but started and
// stopped independently of it; a source must tolerate Stop before Start.
type Source interface {
	core.Switcher

	// OnPeerFound registers a callback invoked whenever the source finds a
	// peer. Callbacks may be registered before the source is started and
	// may be invoked concurrently.
	OnPeerFound(fn func(rec *peer.Record))
}
