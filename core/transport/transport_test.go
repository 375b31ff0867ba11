package transport

import (
	"crypto/rand"
	"testing"

	ma "github.com/multiformats/go-multiaddr"
	mafmt "github.com/multiformats/go-multiaddr-fmt"
	"github.com/wispnet/wisp/core/crypto"
	"github.com/wispnet/wisp/core/peer"
)

func TestMatcherTransportFilter(t *testing.T) {
	tr := NewMatcherTransport("tcp", mafmt.TCP)
	if tr.Tag() != "tcp" {
		t.Fatalf("unexpected tag: %s", tr.Tag())
	}

	_, pk, err := crypto.GenerateEd25519Key(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	pid, err := peer.IDFromPubKey(pk)
	if err != nil {
		t.Fatal(err)
	}

	tcpAddr := ma.StringCast("/ip4/127.0.0.1/tcp/9000")
	udpAddr := ma.StringCast("/ip4/127.0.0.1/udp/9000")
	qualified := ma.StringCast("/ip4/127.0.0.1/tcp/9001/p2p/" + pid.String())

	res := tr.Filter([]ma.Multiaddr{tcpAddr, udpAddr, qualified, nil})
	if len(res) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(res))
	}
	if !res[0].Equal(tcpAddr) {
		t.Fatal("expected input order to be kept")
	}
	if !res[1].Equal(qualified) {
		t.Fatal("expected identity-qualified address to match on its transport part")
	}
}
