package game

import (
	"encoding/hex"
	"fmt"
)

// IdentitySize is the byte length of an account key.
const IdentitySize = 32

// Identity is an opaque fixed-size account key. The zero value marks an
// unoccupied roster slot.
type Identity [IdentitySize]byte

var zeroIdentity Identity

// ParseIdentity decodes a hex-encoded identity.
func ParseIdentity(s string) (Identity, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %q", ErrInvalidIdentity, s)
	}
	if len(b) != IdentitySize {
		return Identity{}, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidIdentity, IdentitySize, len(b))
	}
	var id Identity
	copy(id[:], b)
	return id, nil
}

func (id Identity) IsZero() bool {
	return id == zeroIdentity
}

func (id Identity) String() string {
	return hex.EncodeToString(id[:])
}

// MarshalText encodes the identity as hex for JSON and log output.
func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *Identity) UnmarshalText(b []byte) error {
	parsed, err := ParseIdentity(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
