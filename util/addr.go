package util

import (
	ma "github.com/multiformats/go-multiaddr"
	"github.com/wispnet/wisp/core/peer"
)

const pidAddrPrefix = "/p2p/"

// SplitAddrToTransportAndPID resolves a network address and peer.ID from the given multiaddress.
// For example, if the multiaddress is "/ip4/127.0.0.1/tcp/8080/p2p/QmcQHCuAXaFkbcsPUj7e37hXXfZ9DdN7bozseo5oX4qiC4",
// it returns "/ip4/127.0.0.1/tcp/8080" as the network address and "QmcQHCuAXaFkbcsPUj7e37hXXfZ9DdN7bozseo5oX4qiC4" as the peer.ID.
// If the multiaddress is "/ip4/127.0.0.1/tcp/8080", it returns "/ip4/127.0.0.1/tcp/8080" as the network address and an empty string as the peer.ID.
func SplitAddrToTransportAndPID(addr ma.Multiaddr) (ma.Multiaddr, peer.ID) {
	if addr == nil {
		return nil, ""
	}
	transport, p2pPart := ma.SplitLast(addr)
	if p2pPart == nil || p2pPart.Protocol().Code != ma.P_P2P {
		return addr, ""
	}
	var pid peer.ID
	pidStr, err := p2pPart.ValueForProtocol(ma.P_P2P)
	if err == nil {
		pid = peer.ID(pidStr)
	}
	return transport, pid
}

// PIDToMultiAddr converts a peer.ID to a p2p multiaddress.
// For example, "QmcQHCuAXaFkbcsPUj7e37hXXfZ9DdN7bozseo5oX4qiC4" becomes "/p2p/QmcQHCuAXaFkbcsPUj7e37hXXfZ9DdN7bozseo5oX4qiC4".
func PIDToMultiAddr(pid peer.ID) ma.Multiaddr {
	return ma.StringCast(pidAddrPrefix + pid.String())
}

// PIDAndNetAddrToMultiAddr joins the peer.ID's p2p multiaddress with the given network address.
// For example, "QmcQHCuAXaFkbcsPUj7e37hXXfZ9DdN7bozseo5oX4qiC4" and "/ip4/127.0.0.1/tcp/8080"
// become "/ip4/127.0.0.1/tcp/8080/p2p/QmcQHCuAXaFkbcsPUj7e37hXXfZ9DdN7bozseo5oX4qiC4".
func PIDAndNetAddrToMultiAddr(pid peer.ID, netAddr ma.Multiaddr) ma.Multiaddr {
	return ma.Join(netAddr, PIDToMultiAddr(pid))
}

// IdentityQualify returns the address with the given peer.ID as its /p2p
// identity suffix. An existing identity suffix is replaced, whichever
// identity it names.
func IdentityQualify(pid peer.ID, addr ma.Multiaddr) ma.Multiaddr {
	if addr == nil {
		return nil
	}
	netAddr, _ := SplitAddrToTransportAndPID(addr)
	if netAddr == nil {
		return PIDToMultiAddr(pid)
	}
	return PIDAndNetAddrToMultiAddr(pid, netAddr)
}
