package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"vintagefm/logger"

	"github.com/go-redis/redis/v8"
)

const speechKeyPrefix = "speech:"

// SpeechCache keeps synthesized announcer clips so repeated lines are only
// rendered once per TTL.
type SpeechCache struct {
	client  *redis.Client
	ttl     time.Duration
	timeout time.Duration
}

// NewSpeechCache creates a cache on client. A nil client yields a cache that
// always misses.
func NewSpeechCache(client *redis.Client, ttl time.Duration) *SpeechCache {
	return &SpeechCache{client: client, ttl: ttl, timeout: 2 * time.Second}
}

// SpeechKey derives the key for text spoken by voice.
func SpeechKey(voice, text string) string {
	sum := sha1.Sum([]byte(voice + "\x00" + text))
	return speechKeyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached clip, or nil on a miss. Transient errors are
// retried once and otherwise treated as a miss.
func (c *SpeechCache) Get(ctx context.Context, voice, text string) []byte {
	if c == nil || c.client == nil {
		return nil
	}
	key := SpeechKey(voice, text)

	retryDelay := 50 * time.Millisecond
	const maxRetries = 2
	for attempt := 0; attempt < maxRetries; attempt++ {
		getCtx, cancel := context.WithTimeout(ctx, c.timeout)
		data, err := c.client.Get(getCtx, key).Bytes()
		cancel()
		if err == nil {
			logger.Debug("speech cache hit", logger.String("key", key), logger.Int("bytes", len(data)))
			return data
		}
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if attempt < maxRetries-1 {
			logger.Warn("speech cache read failed, retrying",
				logger.String("key", key),
				logger.Int("attempt", attempt+1),
				logger.ErrorField(err))
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return nil
			}
			retryDelay *= 2
			continue
		}
		logger.Warn("speech cache read failed", logger.String("key", key), logger.ErrorField(err))
	}
	return nil
}

// Set stores a clip. Empty clips are never cached so a failed synthesis is
// retried next time.
func (c *SpeechCache) Set(ctx context.Context, voice, text string, audio []byte) {
	if c == nil || c.client == nil || len(audio) == 0 {
		return
	}
	key := SpeechKey(voice, text)

	setCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.client.Set(setCtx, key, audio, c.ttl).Err(); err != nil {
		logger.Warn("speech cache write failed",
			logger.String("key", key),
			logger.Int("bytes", len(audio)),
			logger.ErrorField(err))
		return
	}
	logger.Debug("speech cached", logger.String("key", key), logger.Duration("ttl", c.ttl))
}

// CountSpeechClips counts cached clips.
func CountSpeechClips(ctx context.Context, client *redis.Client) (int, error) {
	count := 0
	iter := client.Scan(ctx, 0, speechKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan speech cache: %w", err)
	}
	return count, nil
}
