// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"crypto/sha256"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
)

// DefaultCacheSize is the number of decoded inputs a [CachedCodec] keeps by default.
const DefaultCacheSize = 256

// CacheMetrics tracks decode cache usage.
type CacheMetrics struct {
	Size   int   // Current number of cached inputs
	Hits   int64 // Number of cache hits
	Misses int64 // Number of cache misses
}

// CachedCodec is a [Codec] that remembers successful decodes, keyed by the
// SHA-256 digest of the input bytes. Failed decodes are never cached.
//
// Since [Certificate] values are immutable, the same value is handed to every
// caller. CachedCodec is safe for concurrent use.
type CachedCodec struct {
	*Codec
	cache  *lru.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCached creates a CachedCodec holding at most size entries.
// A size of zero or less selects [DefaultCacheSize].
func NewCached(size int) (*CachedCodec, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("x509certs: failed to create decode cache: %w", err)
	}
	return &CachedCodec{Codec: New(), cache: cache}, nil
}

// Decode returns exactly one certificate for data, served from the cache when possible.
func (c *CachedCodec) Decode(data []byte) (*Certificate, error) {
	certs, err := c.DecodeMultiple(data)
	if err != nil {
		return nil, err
	}
	if len(certs) != 1 {
		return nil, &ParseError{Err: fmt.Errorf("%w: found %d", ErrMultipleCertificates, len(certs))}
	}
	return certs[0], nil
}

// DecodeMultiple returns the cached certificates for data or decodes and
// caches them. The returned slice is shared and must not be modified.
func (c *CachedCodec) DecodeMultiple(data []byte) ([]*Certificate, error) {
	key := sha256.Sum256(data)
	if v, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		return v.([]*Certificate), nil
	}
	c.misses.Add(1)

	certs, err := c.Codec.DecodeMultiple(data)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, certs)
	return certs, nil
}

// Metrics returns a snapshot of the cache counters.
func (c *CachedCodec) Metrics() CacheMetrics {
	return CacheMetrics{
		Size:   c.cache.Len(),
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}

// Purge drops every cached entry and resets the counters.
func (c *CachedCodec) Purge() {
	c.cache.Purge()
	c.hits.Store(0)
	c.misses.Store(0)
}
