package crypto

import (
	"crypto/subtle"
	"errors"
)

// KeyType identifies the algorithm a key belongs to.
type KeyType uint8

const (
	// Ed25519 is the enum for the supported Ed25519 key type.
	Ed25519 KeyType = iota
	// Secp256k1 is the enum for the supported Secp256k1 key type.
	Secp256k1
)

const (
	PEMBlockTypeEd25519PrivateKey   = "ED25519 PRIVATE KEY"
	PEMBlockTypeEd25519PublicKey    = "ED25519 PUBLIC KEY"
	PEMBlockTypeSecp256k1PrivateKey = "SECP256K1 PRIVATE KEY"
	PEMBlockTypeSecp256k1PublicKey  = "SECP256K1 PUBLIC KEY"
)

var (
	// ErrBadKeyType is returned when a key is not supported.
	ErrBadKeyType = errors.New("invalid or unsupported key type")
	// ErrPEMDecodeFailed is returned when decoding a PEM block fails.
	ErrPEMDecodeFailed = errors.New("failed to decode pem block")

	// PriKeyUnmarshalers is a map of PriKey unmarshalers by key type.
	PriKeyUnmarshalers = map[KeyType]PriKeyUnmarshaler{
		Ed25519:   UnmarshalEd25519PrivateKey,
		Secp256k1: UnmarshalSecp256k1PrivateKey,
	}

	// PubKeyUnmarshalers is a map of PubKey unmarshalers by key type.
	PubKeyUnmarshalers = map[KeyType]PubKeyUnmarshaler{
		Ed25519:   UnmarshalEd25519PublicKey,
		Secp256k1: UnmarshalSecp256k1PublicKey,
	}
)

// PubKeyUnmarshaler is a func that creates a PubKey from a given slice of bytes.
type PubKeyUnmarshaler func(data []byte) (PubKey, error)

// PriKeyUnmarshaler is a func that creates a PriKey from a given slice of bytes.
type PriKeyUnmarshaler func(data []byte) (PriKey, error)

// Key represents a crypto key that can be compared to another key.
type Key interface {
	// Equals checks whether two Keys are the same.
	Equals(Key) bool

	// Raw returns the raw bytes of the key (not wrapped).
	//
	// This function is the inverse of {Pri,Pub}KeyUnmarshaler.
	Raw() ([]byte, error)

	// Type returns the key type.
	Type() KeyType
}

// PriKey represents a private key that can be used to generate a public key and sign data.
type PriKey interface {
	Key

	// Sign signs the given bytes.
	Sign([]byte) ([]byte, error)

	// GetPublic returns a public key paired with this private key.
	GetPublic() PubKey
}

// PubKey is a public key that can be used to verify data signed with the corresponding private key.
type PubKey interface {
	Key

	// Verify that 'sig' is the signed hash of 'data'.
	Verify(data []byte, sig []byte) (bool, error)
}

// MarshalPubKey converts a public key object into its wrapped serialized form:
// a single key-type byte followed by the raw key bytes.
func MarshalPubKey(k PubKey) ([]byte, error) {
	raw, err := k.Raw()
	if err != nil {
		return nil, err
	}
	res := make([]byte, 0, len(raw)+1)
	res = append(res, byte(k.Type()))
	return append(res, raw...), nil
}

// UnmarshalPubKey converts a serialized public key produced by MarshalPubKey
// back into its representative object.
func UnmarshalPubKey(data []byte) (PubKey, error) {
	if len(data) < 1 {
		return nil, ErrBadKeyType
	}
	um, ok := PubKeyUnmarshalers[KeyType(data[0])]
	if !ok {
		return nil, ErrBadKeyType
	}
	return um(data[1:])
}

// MarshalPriKey converts a private key object into its wrapped serialized form.
func MarshalPriKey(k PriKey) ([]byte, error) {
	raw, err := k.Raw()
	if err != nil {
		return nil, err
	}
	res := make([]byte, 0, len(raw)+1)
	res = append(res, byte(k.Type()))
	return append(res, raw...), nil
}

// UnmarshalPriKey converts a serialized private key produced by MarshalPriKey
// back into its representative object.
func UnmarshalPriKey(data []byte) (PriKey, error) {
	if len(data) < 1 {
		return nil, ErrBadKeyType
	}
	um, ok := PriKeyUnmarshalers[KeyType(data[0])]
	if !ok {
		return nil, ErrBadKeyType
	}
	return um(data[1:])
}

// KeyEqual checks whether two Keys are equivalent (have identical byte representations).
func KeyEqual(k1, k2 Key) bool {
	if k1 == k2 {
		return true
	}

	return k1.Equals(k2)
}

func basicEquals(k1, k2 Key) bool {
	if k1.Type() != k2.Type() {
		return false
	}

	a, err := k1.Raw()
	if err != nil {
		return false
	}
	b, err := k2.Raw()
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
