package corpus

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/versefinder/internal/domain"
	"github.com/MrSnakeDoc/versefinder/internal/reference"
)

// Skip reasons reported by MapVerses.
const (
	SkipMissingText   = "missing_text"
	SkipBadReference  = "invalid_reference"
	SkipMultiVerse    = "multi_verse_reference"
	SkipDuplicate     = "duplicate_reference"
	SkipMissingVerses = "missing_reference"
	SkipDuplicateID   = "duplicate_id"
)

// ErrEmptyCorpus is returned when a file yields no valid verse.
var ErrEmptyCorpus = errors.New("no valid verses found in corpus")

// Result is the outcome of mapping a corpus file.
type Result struct {
	Verses  []domain.Verse
	Skipped map[string]int // reason -> count
}

// SkippedTotal returns the number of dropped entries.
func (r Result) SkippedTotal() int {
	n := 0
	for _, c := range r.Skipped {
		n += c
	}
	return n
}

// Mapper converts corpus entries to domain.Verse values with canonical references
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapVerses canonicalizes every entry's reference. Entries that are invalid,
// name more than one verse, or repeat an earlier reference or explicit id
// are dropped.
func (m *Mapper) MapVerses(f *File) (Result, error) {
	res := Result{Skipped: make(map[string]int)}
	if f == nil {
		return res, ErrEmptyCorpus
	}

	res.Verses = make([]domain.Verse, 0, len(f.Verses))
	seen := make(map[string]struct{}, len(f.Verses))
	ids := make(map[int64]struct{})

	for _, e := range f.Verses {
		text := strings.TrimSpace(e.Text)
		if text == "" {
			res.Skipped[SkipMissingText]++
			continue
		}

		ref, reason := canonicalReference(e)
		if reason != "" {
			res.Skipped[reason]++
			continue
		}

		if _, dup := seen[ref]; dup {
			res.Skipped[SkipDuplicate]++
			continue
		}
		if e.ID != 0 {
			if _, dup := ids[e.ID]; dup {
				res.Skipped[SkipDuplicateID]++
				continue
			}
			ids[e.ID] = struct{}{}
		}
		seen[ref] = struct{}{}

		res.Verses = append(res.Verses, domain.Verse{ID: e.ID, Reference: ref, Text: text})
	}

	if len(res.Verses) == 0 {
		return res, ErrEmptyCorpus
	}
	return res, nil
}

func canonicalReference(e Entry) (string, string) {
	raw := strings.TrimSpace(e.Reference)
	if raw == "" {
		if e.Book == "" || e.Chapter == nil || e.Verse == 0 {
			return "", SkipMissingVerses
		}
		raw = fmt.Sprintf("%s %d:%d", e.Book, *e.Chapter, e.Verse)
	}

	r, err := reference.Parse(raw)
	if err != nil {
		return "", SkipBadReference
	}
	if len(r.Verses) != 1 {
		return "", SkipMultiVerse
	}
	return reference.BuildReference(r.Book, r.Chapter, r.Verses[0]), ""
}
