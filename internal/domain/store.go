package domain

import (
	"context"
	"errors"
)

// ErrVerseNotFound is returned by FindByReference when no verse has the key.
var ErrVerseNotFound = errors.New("verse not found")

// VerseStore is the full-text verse corpus consumed by the search core.
//
// FindByPredicate returns at most limit verses ordered by relevance
// descending, ties broken by the first offset of p.RankTerm ascending.
// Matching is case-insensitive.
type VerseStore interface {
	FindByReference(ctx context.Context, ref string) (Verse, error)
	FindByPredicate(ctx context.Context, p Predicate, limit int) ([]Verse, error)
}

// VerseRepository is a VerseStore that also owns corpus writes and the
// saved/memorized counters.
type VerseRepository interface {
	VerseStore

	// UpsertVerses inserts or updates verses by Reference, keeping counters
	// of existing rows. It returns the number of rows written.
	UpsertVerses(ctx context.Context, verses []Verse) (int, error)

	IncrementSaved(ctx context.Context, ids ...int64) error
	IncrementMemorized(ctx context.Context, ids ...int64) error

	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}
