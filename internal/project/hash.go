package project

import (
	"crypto/sha256"
)

// Digest - фиксированный 256 битный хеш содержимого
type Digest [32]byte

// DigestOf hashes raw module content.
func DigestOf(data []byte) Digest {
	return sha256.Sum256(data)
}

// Combine builds a module hash: H(content || dep1 || dep2 ...).
// Deps must come in a deterministic order.
func Combine(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
