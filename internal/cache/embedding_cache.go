// Package cache holds previously computed embeddings keyed by a content
// fingerprint, so re-ingesting unchanged resume text never costs a provider
// call.
package cache

import (
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize bounds cache memory. At 3072 dimensions * 4 bytes * 1024 entries
// that is roughly 12MB.
const DefaultSize = 1024

// Fingerprint returns the deterministic digest used as the cache key for an
// embedding of text under the given model. Identical text shares an entry;
// edited text gets a new fingerprint and therefore a miss.
func Fingerprint(model, text string) string {
	h := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(h[:])
}

// EmbeddingCache maps content fingerprints to embedding vectors. The LRU bound
// is a memory cap, not a correctness requirement: an evicted entry just causes
// recomputation. Concurrent writers to the same fingerprint are safe because
// writes are idempotent by content.
type EmbeddingCache struct {
	lru *lru.Cache[string, []float32]
}

func NewEmbeddingCache(size int) *EmbeddingCache {
	if size <= 0 {
		size = DefaultSize
	}
	c, _ := lru.New[string, []float32](size)
	return &EmbeddingCache{lru: c}
}

func (c *EmbeddingCache) Get(fingerprint string) ([]float32, bool) {
	return c.lru.Get(fingerprint)
}

func (c *EmbeddingCache) Put(fingerprint string, vec []float32) {
	c.lru.Add(fingerprint, vec)
}

func (c *EmbeddingCache) Len() int {
	return c.lru.Len()
}
