package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/versefinder/internal/domain"
)

// flushBatch is the number of keys deleted per round trip by FlushCache.
const flushBatch = 500

// CacheSearch stores the result of a keyword search
func (s *Store) CacheSearch(ctx context.Context, keywords []string, verses []domain.Verse, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	data, err := json.Marshal(verses)
	if err != nil {
		return fmt.Errorf("failed to marshal search result: %w", err)
	}

	if err := s.client.Set(ctx, SearchKey(keywords), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache search result: %w", err)
	}
	return nil
}

// GetCachedSearch retrieves a cached search result. ok is false on a miss.
func (s *Store) GetCachedSearch(ctx context.Context, keywords []string) ([]domain.Verse, bool, error) {
	data, err := s.client.Get(ctx, SearchKey(keywords)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil // Cache miss
		}
		return nil, false, fmt.Errorf("failed to get cached search: %w", err)
	}

	var verses []domain.Verse
	if err := json.Unmarshal(data, &verses); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached search: %w", err)
	}
	return verses, true, nil
}

// FlushCache removes every cached search result
func (s *Store) FlushCache(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, KeyPrefixSearch+"*", flushBatch).Iterator()

	batch := make([]string, 0, flushBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.client.Unlink(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("failed to delete cache keys: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == flushBatch {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to flush cache: %w", err)
	}
	return flush()
}
