package search

import (
	"errors"
	"fmt"
)

var (
	// ErrNoKeywords is returned when a search is issued with an empty keyword list.
	ErrNoKeywords = errors.New("at least one keyword is required")

	// ErrBlankKeyword is returned when a keyword is empty after trimming.
	ErrBlankKeyword = errors.New("keywords must not be blank")

	// ErrStoreRequired is returned when a verse store is not provided.
	ErrStoreRequired = errors.New("verse store required")

	// ErrNoRule is returned when no policy rule covers the keyword count.
	ErrNoRule = errors.New("no search rule for keyword count")
)

// SearchTierFailure reports that a tier's store query failed. The cascade
// stops at the failing tier; callers may retry the whole search.
type SearchTierFailure struct {
	Tier Tier
	Err  error
}

func (e *SearchTierFailure) Error() string {
	return fmt.Sprintf("search tier %s failed: %v", e.Tier, e.Err)
}

func (e *SearchTierFailure) Unwrap() error { return e.Err }
