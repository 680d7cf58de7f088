package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Hash returns the hex SHA-256 of data. The file cache shards on its first
// two characters.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON streams the JSON encoding of v through SHA-256. Struct fields
// keep declaration order and map keys are sorted, so equal event lists and
// configs produce equal hashes.
func HashJSON(v any) (string, error) {
	h := sha256.New()
	if err := json.NewEncoder(h).Encode(v); err != nil {
		return "", fmt.Errorf("hash %T: %w", v, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// hashKey namespaces the hash of parts under prefix. Parts that cannot be
// encoded still yield a stable key from their %v form.
func hashKey(prefix string, parts ...any) string {
	h, err := HashJSON(parts)
	if err != nil {
		h = Hash(fmt.Appendf(nil, "%v", parts))
	}
	return prefix + ":" + h
}
