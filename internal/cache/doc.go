// Package cache stores dispatch results so repeated requests skip the
// route tree walk and content negotiation.
//
// Two backends are provided: an in-memory LRU cache and a Redis-backed
// distributed cache with TTL jitter and optional key hashing. The
// CachingResolver sits in front of the endpoint registry and keys
// outcomes by method and normalized path, adding the Content-Type
// header to the key only for terminals where negotiation decided the
// outcome. Concurrent misses for one key collapse into a single
// computation.
//
// All cache implementations are safe for concurrent use.
package cache
