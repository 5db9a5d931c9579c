package abuild

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
)

// bustLen is the number of digest bytes embedded in a cache-busted name.
const bustLen = 4

func contentHash(bs []byte) []byte {
	sum := sha256.Sum256(bs)
	return sum[:]
}

func sameHash(a, b []byte) bool {
	return a != nil && b != nil && bytes.Equal(a, b)
}

func hashFragment(h []byte) string {
	return hex.EncodeToString(h[:bustLen])
}

func hashString(h []byte) string {
	if h == nil {
		return ""
	}
	return "sha256:" + hex.EncodeToString(h)
}
