// Package redis implements an exact-match response cache on Redis. The
// cache key is a digest of the normalized request, so identical prompts hit
// the cache while any parameter change misses.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davidbz/ifrit/internal/domain"
	"github.com/davidbz/ifrit/internal/observability"
)

const keyPrefix = "ifrit:response:"

// ResponseCache implements domain.ResponseCache on a Redis client.
type ResponseCache struct {
	client *redis.Client
}

// NewResponseCache creates a Redis-backed response cache.
func NewResponseCache(client *redis.Client) *ResponseCache {
	return &ResponseCache{client: client}
}

// Get returns the cached result for an identical earlier request.
func (c *ResponseCache) Get(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationResult, error) {
	key := cacheKey(req)

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrCacheMiss
		}
		return nil, fmt.Errorf("cache get failed: %w", err)
	}

	var result domain.GenerationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached result: %w", err)
	}

	observability.FromContext(ctx).Debug("response cache hit",
		observability.String("key", key))

	return &result, nil
}

// Set stores a successful result with the given TTL.
func (c *ResponseCache) Set(ctx context.Context, req *domain.GenerationRequest, result *domain.GenerationResult, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey(req), data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set failed: %w", err)
	}
	return nil
}

// cacheKey digests the fields that affect generated content.
func cacheKey(req *domain.GenerationRequest) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%d\x00%.3f", req.Prompt, req.SystemPrompt, req.MaxTokens, req.Temperature)
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}
