package transport

import (
	ma "github.com/multiformats/go-multiaddr"
	mafmt "github.com/multiformats/go-multiaddr-fmt"
)

// Transport describes one way of reaching the network: a tagged address
// family the substrate can listen and dial on. Implementations carry no
// byte I/O here; the only contract the orchestration layer needs is the
// ability to tell which addresses the transport can serve.
type Transport interface {
	// Tag returns the unique name of the transport, e.g. "tcp".
	Tag() string

	// Filter returns the subset of the given addresses this transport is
	// compatible with, keeping the input order.
	Filter(addresses []ma.Multiaddr) []ma.Multiaddr
}

var _ Transport = (*matcherTransport)(nil)

// matcherTransport selects addresses with a multiaddr format pattern.
type matcherTransport struct {
	tag     string
	matcher mafmt.Pattern
}

// NewMatcherTransport creates a Transport that filters addresses with the
// given multiaddr format pattern, e.g. mafmt.TCP.
func NewMatcherTransport(tag string, matcher mafmt.Pattern) Transport {
	return &matcherTransport{tag: tag, matcher: matcher}
}

// Tag returns the unique name of the transport.
func (t *matcherTransport) Tag() string {
	return t.tag
}

// Filter returns the addresses matching the transport pattern.
// Addresses carrying a trailing p2p component are matched against their
// transport part only.
func (t *matcherTransport) Filter(addresses []ma.Multiaddr) []ma.Multiaddr {
	res := make([]ma.Multiaddr, 0, len(addresses))
	for _, addr := range addresses {
		if addr == nil {
			continue
		}
		candidate := addr
		if transportPart, p2pPart := ma.SplitLast(addr); p2pPart != nil && p2pPart.Protocol().Code == ma.P_P2P {
			candidate = transportPart
		}
		if t.matcher.Matches(candidate) {
			res = append(res, addr)
		}
	}
	return res
}
