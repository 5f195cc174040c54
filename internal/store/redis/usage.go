package redis

import (
	"context"
	"fmt"
	"strings"
)

// QueryCount is one entry of the query statistics.
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// RecordQuery increments the search counter for keywords
func (s *Store) RecordQuery(ctx context.Context, keywords []string) error {
	if err := s.client.ZIncrBy(ctx, QueryStatsKey(), 1, displayQuery(keywords)).Err(); err != nil {
		return fmt.Errorf("failed to record query: %w", err)
	}
	return nil
}

// TopQueries returns the n most searched queries, most frequent first
func (s *Store) TopQueries(ctx context.Context, n int64) ([]QueryCount, error) {
	if n <= 0 {
		return []QueryCount{}, nil
	}

	entries, err := s.client.ZRevRangeWithScores(ctx, QueryStatsKey(), 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get query stats: %w", err)
	}

	out := make([]QueryCount, 0, len(entries))
	for _, e := range entries {
		member, ok := e.Member.(string)
		if !ok {
			continue
		}
		out = append(out, QueryCount{Query: member, Count: int64(e.Score)})
	}
	return out, nil
}

func displayQuery(keywords []string) string {
	return strings.Join(keywords, " ")
}
