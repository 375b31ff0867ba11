// Package liveness provides the baked-in liveness probe protocol every node
// mounts on its substrate: an echo handler on the responding side and a
// Probe measuring round-trip time on the asking side.
package liveness

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"io"
	"time"

	"github.com/wispnet/wisp/core/handler"
	"github.com/wispnet/wisp/core/network"
	"github.com/wispnet/wisp/core/peer"
	"github.com/wispnet/wisp/core/protocol"
)

// ProtocolID is the protocol the liveness handler is mounted under.
const ProtocolID protocol.ID = "/wisp/liveness/1.0.0"

// payloadSize is the number of random bytes a probe sends and expects back.
const payloadSize = 32

var (
	ErrEchoMismatch = errors.New("liveness echo mismatch")
)

// Mount registers the echo handler on the substrate.
func Mount(sub network.Substrate) {
	sub.Handle(ProtocolID, Echo, nil)
}

// Unmount removes the echo handler from the substrate.
func Unmount(sub network.Substrate) {
	sub.Unhandle(ProtocolID)
}

// Echo writes back whatever it reads until the stream is closed.
func Echo(s handler.Stream) {
	defer func() { _ = s.Close() }()
	buf := make([]byte, payloadSize)
	for {
		n, err := s.Read(buf)
		if n > 0 {
			if _, werr := s.Write(buf[:n]); werr != nil {
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// Probe is a liveness probe bound to one peer record. Constructing a Probe
// sends no bytes; each Once call opens a stream and measures one round trip.
type Probe struct {
	sub network.Substrate
	rec *peer.Record
}

// NewProbe creates a Probe measuring liveness of the peer described by rec.
func NewProbe(sub network.Substrate, rec *peer.Record) *Probe {
	return &Probe{sub: sub, rec: rec}
}

// Target returns the record the probe is bound to.
func (p *Probe) Target() *peer.Record {
	return p.rec
}

// Once sends a single probe and returns the measured round-trip time.
func (p *Probe) Once(ctx context.Context) (time.Duration, error) {
	conn, err := p.sub.Dial(ctx, p.rec, ProtocolID)
	if err != nil {
		return 0, err
	}

	s, err := conn.OpenStream(ctx, ProtocolID)
	if err != nil {
		return 0, err
	}
	defer func() { _ = s.Close() }()

	payload := make([]byte, payloadSize)
	if _, err := rand.Read(payload); err != nil {
		return 0, err
	}

	start := time.Now()
	if _, err := s.Write(payload); err != nil {
		return 0, err
	}
	echo := make([]byte, payloadSize)
	if _, err := io.ReadFull(s, echo); err != nil {
		return 0, err
	}
	rtt := time.Since(start)

	if !bytes.Equal(payload, echo) {
		return 0, ErrEchoMismatch
	}
	return rtt, nil
}
