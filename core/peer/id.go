package peer

import (
	"crypto/x509"

	"github.com/mr-tron/base58"
	mh "github.com/multiformats/go-multihash"
	"github.com/wispnet/wisp/core/crypto"
)

// ID represents the unique identity of a peer.
// Its canonical form is the base58 encoding of the multihash of the
// peer's serialized public key.
type ID string

// String returns the canonical string form of the ID.
func (i ID) String() string {
	return string(i)
}

// Empty returns whether the ID carries no value.
func (i ID) Empty() bool {
	return len(i) == 0
}

// IDLoader resolves a peer ID from a verified certificate chain.
type IDLoader func(certs []*x509.Certificate) (ID, error)

// IDFromPubKey derives the canonical peer ID from a public key.
func IDFromPubKey(pk crypto.PubKey) (ID, error) {
	data, err := crypto.MarshalPubKey(pk)
	if err != nil {
		return "", err
	}
	hash, err := mh.Sum(data, mh.SHA2_256, -1)
	if err != nil {
		return "", err
	}
	return ID(base58.Encode(hash)), nil
}

// IDFromPriKey derives the canonical peer ID from the public half of a private key.
func IDFromPriKey(sk crypto.PriKey) (ID, error) {
	return IDFromPubKey(sk.GetPublic())
}
