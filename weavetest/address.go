package weavetest

import (
	"crypto/rand"
	"encoding/binary"
	"testing"

	"github.com/iov-one/escrowd"
)

// ParseAddress takes an address in a human readable format and returns its
// binary representation. This function is a test helper that is using
// escrowd.ParseAddress function functionality.
func ParseAddress(t testing.TB, encodedAddress string) escrowd.Address {
	t.Helper()

	addr, err := escrowd.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}

// NewCondition returns a random signature condition. Each call returns a
// different condition.
func NewCondition() escrowd.Condition {
	pub := make([]byte, 32)
	if _, err := rand.Read(pub); err != nil {
		panic(err)
	}
	return escrowd.NewCondition("sigs", "ed25519", pub)
}

// NewAddress returns the address of a random condition.
func NewAddress() escrowd.Address {
	return NewCondition().Address()
}

// SequenceID returns an 8 byte big endian encoded number, the same way
// sequential identifiers are encoded in keys.
func SequenceID(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}
