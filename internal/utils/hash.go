package utils

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// hasherPool is a package-level pool of reusable unkeyed BLAKE2b-256 hash
// instances.
var hasherPool = sync.Pool{
	New: func() any {
		// New256 only fails for keys longer than 64 bytes.
		h, _ := blake2b.New256(nil)
		return h
	},
}

// Hash computes a BLAKE2b-256 digest over the given byte slice using a
// hasher pulled from the package pool.
//
// Behavior:
//   - Retrieves a hash.Hash instance from sync.Pool
//   - Resets it, writes the data, computes the sum
//   - Resets again and returns it to the pool
func Hash(data []byte) []byte {
	h := hasherPool.Get().(hash.Hash)
	h.Reset()

	h.Write(data)
	sum := h.Sum(nil)

	h.Reset()
	hasherPool.Put(h)

	return sum
}

// Fingerprint returns a hex-encoded BLAKE2b-256 digest of the canonical JSON
// form of v. encoding/json sorts map keys, so two structurally equal records
// always produce the same fingerprint.
//
// Example usage:
//
//	fp, err := utils.Fingerprint(map[string]any{"id": "w1", "name": "X"})
func Fingerprint(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("error encoding value for fingerprint: %w", err)
	}

	return hex.EncodeToString(Hash(data)), nil
}

// FingerprintParts hashes the given parts separated by a zero byte. It is
// used to derive stable identifiers from several strings.
func FingerprintParts(parts ...string) string {
	size := 0
	for _, p := range parts {
		size += len(p) + 1
	}

	buf := make([]byte, 0, size)
	for _, p := range parts {
		buf = append(buf, p...)
		buf = append(buf, 0)
	}

	return hex.EncodeToString(Hash(buf))
}
