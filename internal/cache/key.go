package cache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/vyrodovalexey/avadispatch/internal/route"
)

// Key building for dispatch results.
//
// A request is keyed by method and normalized path. When the matched
// terminal required content negotiation, the stored entry for the base
// key is a marker redirecting the lookup to a second key that also
// carries the raw Content-Type header, so each content type gets its
// own cached outcome.

// keySeparator joins key components. It cannot appear in a method and
// a normalized path never starts with it, so keys are unambiguous.
const keySeparator = "|"

// BuildKey returns the cache key for a (method, path) pair. Paths that
// differ only in one leading or trailing slash share a key.
func BuildKey(method, path string) string {
	return method + keySeparator + route.NormalizePath(path)
}

// ContentTypeKey extends a base key with the raw Content-Type header
// value, for results that depended on negotiation. The raw value is
// used verbatim: two headers that parse identically but are written
// differently occupy separate entries, which costs space but never
// correctness.
func ContentTypeKey(baseKey, contentType string) string {
	return baseKey + keySeparator + contentType
}

// HashKey returns the SHA256 hex digest of a key. Used when backends
// are configured to bound key length.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
