package search

import "github.com/MrSnakeDoc/versefinder/internal/domain"

// Tier is one full-text strategy of the search cascade.
type Tier int

const (
	// SingleKeyword matches one keyword as a substring.
	SingleKeyword Tier = iota
	// NearAnd requires every keyword within the proximity window.
	NearAnd
	// ExactPhrase matches the keywords as one contiguous phrase.
	ExactPhrase
	// AndVerses requires every keyword anywhere in the verse.
	AndVerses
)

var tierNames = [...]string{
	SingleKeyword: "single_keyword",
	NearAnd:       "near_and",
	ExactPhrase:   "exact_phrase",
	AndVerses:     "and_verses",
}

var tierCaps = [...]int{
	SingleKeyword: 100,
	NearAnd:       50,
	ExactPhrase:   1,
	AndVerses:     49,
}

var tierOps = [...]domain.Operator{
	SingleKeyword: domain.Substring,
	NearAnd:       domain.Near,
	ExactPhrase:   domain.Phrase,
	AndVerses:     domain.And,
}

func (t Tier) valid() bool { return t >= SingleKeyword && t <= AndVerses }

func (t Tier) String() string {
	if !t.valid() {
		return "unknown"
	}
	return tierNames[t]
}

// Cap is the maximum number of verses the tier contributes.
func (t Tier) Cap() int {
	if !t.valid() {
		return 0
	}
	return tierCaps[t]
}

// Operator is the predicate operator the tier sends to the store.
func (t Tier) Operator() domain.Operator {
	if !t.valid() {
		return domain.Substring
	}
	return tierOps[t]
}

// Tiers lists every tier in cascade priority order.
func Tiers() []Tier {
	return []Tier{SingleKeyword, NearAnd, ExactPhrase, AndVerses}
}
