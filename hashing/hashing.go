// Package hashing fingerprints values so that structurally equal values can be
// recognized without keeping deep copies around.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"

	"github.com/amp-labs/amp-redux/internal/codec"
	"github.com/zeebo/xxh3"
)

// HashFunc is a function that takes a Hashable object
// and returns a string representation of its hashing.
type HashFunc func(hashable Hashable) (string, error)

// Hashable is an interface that allows an object to update
// a hash.Hash with its contents.
type Hashable interface {
	UpdateHash(h hash.Hash) error
}

// Sha256 returns the SHA256 hashing of the given Hashable
// as a hex-encoded string.
func Sha256(hashable Hashable) (string, error) {
	return sum(sha256.New(), hashable)
}

// Xxh3 returns the 64-bit xxh3 hashing of the given Hashable
// as a hex-encoded string.
func Xxh3(hashable Hashable) (string, error) {
	return sum(xxh3.New(), hashable)
}

func sum(h hash.Hash, hashable Hashable) (string, error) {
	if err := hashable.UpdateHash(h); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Value adapts an arbitrary value to Hashable by feeding its deterministic CBOR
// encoding to the hash.
type Value struct {
	V any
}

func (v Value) UpdateHash(h hash.Hash) error {
	data, err := codec.Marshal(v.V)
	if err != nil {
		return fmt.Errorf("fingerprinting %T: %w", v.V, err)
	}

	_, err = h.Write(data)

	return err
}

// Fingerprint returns the hex xxh3 hash of the deterministic CBOR encoding of v.
// Equal values share a fingerprint regardless of map ordering, since the
// encoding is canonical.
func Fingerprint(v any) (string, error) {
	return Xxh3(Value{V: v})
}
