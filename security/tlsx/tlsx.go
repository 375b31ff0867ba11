// Package tlsx provides an encryption channel capability backed by TLS 1.3.
//
// The channel binds the TLS session to the peer identity: each side presents
// a self-signed certificate carrying an extension signed with its identity
// key, and the remote peer ID is recovered from that extension after the
// handshake.
package tlsx

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"

	"github.com/pkg/errors"
	cc "github.com/wispnet/wisp/core/crypto"
	"github.com/wispnet/wisp/core/peer"
	"github.com/wispnet/wisp/core/protocol"
	"github.com/wispnet/wisp/core/security"
)

// ChannelTag is the protocol tag the TLS channel is negotiated under.
const ChannelTag protocol.ID = "/tlsx/1.0.0"

var _ security.Channel = (*Channel)(nil)

// Channel is a security.Channel that secures connections with TLS 1.3 and
// authenticates the remote peer identity from the certificate extension.
type Channel struct {
	tlsCfg    *tls.Config
	pidLoader peer.IDLoader
}

// New creates a Channel for the given identity private key.
func New(sk cc.PriKey) (*Channel, error) {
	tlsCfg, err := NewTLSConfig(sk, nil)
	if err != nil {
		return nil, err
	}
	return &Channel{
		tlsCfg:    tlsCfg,
		pidLoader: DefaultIDLoader,
	}, nil
}

// NewWithConfig creates a Channel with a prepared TLS config and ID loader.
func NewWithConfig(tlsCfg *tls.Config, pidLoader peer.IDLoader) (*Channel, error) {
	if tlsCfg == nil {
		return nil, errors.New("nil tls config")
	}
	if pidLoader == nil {
		pidLoader = DefaultIDLoader
	}
	return &Channel{
		tlsCfg:    tlsCfg.Clone(),
		pidLoader: pidLoader,
	}, nil
}

// Tag returns the protocol ID the channel is negotiated under.
func (c *Channel) Tag() protocol.ID {
	return ChannelTag
}

// Secure wraps the given connection in TLS, handshakes, and authenticates
// the remote peer from its certificate chain.
func (c *Channel) Secure(ctx context.Context, conn net.Conn, initiator bool) (net.Conn, peer.ID, error) {
	var tlsConn *tls.Conn
	if initiator {
		tlsConn = tls.Client(conn, c.tlsCfg)
	} else {
		tlsConn = tls.Server(conn, c.tlsCfg)
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		_ = tlsConn.Close()
		return nil, "", err
	}

	state := tlsConn.ConnectionState()
	if state.NegotiatedProtocol != alpn {
		_ = tlsConn.Close()
		return nil, "", errors.Errorf("next proto mismatch: %s", state.NegotiatedProtocol)
	}

	rPID, err := c.remotePID(state.PeerCertificates)
	if err != nil {
		_ = tlsConn.Close()
		return nil, "", err
	}
	return tlsConn, rPID, nil
}

func (c *Channel) remotePID(certs []*x509.Certificate) (peer.ID, error) {
	if len(certs) == 0 {
		return "", errors.New("no peer certificate presented")
	}
	pid, err := c.pidLoader(certs)
	if err != nil {
		return "", errors.WithMessage(err, "failed to load peer id from certificates")
	}
	return pid, nil
}
