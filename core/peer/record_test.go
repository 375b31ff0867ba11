package peer

import (
	"testing"

	ma "github.com/multiformats/go-multiaddr"
)

func TestRecordAddressSet(t *testing.T) {
	addr1 := ma.StringCast("/ip4/127.0.0.1/tcp/8081")
	addr2 := ma.StringCast("/ip4/127.0.0.1/tcp/8082")

	rec := NewRecord("pid")
	rec.AddAddress(addr1)
	rec.AddAddress(addr2)
	rec.AddAddress(addr1) // duplicate, dropped silently

	addrs := rec.Addresses()
	if len(addrs) != 2 {
		t.Fatalf("expected 2 addresses, got %d", len(addrs))
	}
	if !addrs[0].Equal(addr1) || !addrs[1].Equal(addr2) {
		t.Fatal("expected first-seen order to be kept")
	}

	rec.RemoveAddress(addr1)
	addrs = rec.Addresses()
	if len(addrs) != 1 || !addrs[0].Equal(addr2) {
		t.Fatal("expected addr1 to be removed")
	}
}

func TestRecordAddressesReturnsCopy(t *testing.T) {
	rec := NewRecordWithAddresses("pid", ma.StringCast("/ip4/127.0.0.1/tcp/8081"))
	addrs := rec.Addresses()
	addrs[0] = nil
	if rec.Addresses()[0] == nil {
		t.Fatal("mutating the returned slice should not affect the record")
	}
}

func TestRecordCapability(t *testing.T) {
	rec := NewRecord("pid")
	if _, ok := rec.Capability(CapabilityMuxer); ok {
		t.Fatal("expected no capability on a fresh record")
	}
	rec.SetCapability(CapabilityMuxer, "/yamux/1.0.0")
	v, ok := rec.Capability(CapabilityMuxer)
	if !ok || v != "/yamux/1.0.0" {
		t.Fatal("expected the stored capability value")
	}
}
