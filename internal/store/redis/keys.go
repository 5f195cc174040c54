package redis

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const (
	// KeyPrefixSearch is the prefix for cached search results
	KeyPrefixSearch = "versefinder:search:"
	// KeyQueryStats is the sorted set counting searches per normalized query
	KeyQueryStats = "versefinder:queries"
)

// NormalizeKeywords trims every keyword and joins them with a unit
// separator, so ["for", "god"] and ["for god"] never collide.
// Case is kept: phrase tiers see the keywords verbatim.
func NormalizeKeywords(keywords []string) string {
	parts := make([]string, len(keywords))
	for i, kw := range keywords {
		parts[i] = strings.TrimSpace(kw)
	}
	return strings.Join(parts, "\x1f")
}

// SearchKey returns the Redis key for the cached result of keywords
func SearchKey(keywords []string) string {
	sum := xxhash.Sum64String(NormalizeKeywords(keywords))
	return KeyPrefixSearch + strconv.FormatUint(sum, 16)
}

// QueryStatsKey returns the key for the query statistics sorted set
func QueryStatsKey() string {
	return KeyQueryStats
}
