package search

import "fmt"

// Rule maps a keyword-count range to the tiers executed for it.
//
// Max == 0 means no upper bound. A Standalone rule runs only its first tier
// and pads sparse results with the single-keyword sentinel instead of the
// cascade sentinel.
type Rule struct {
	Min        int
	Max        int
	Tiers      []Tier
	Standalone bool
}

func (r Rule) covers(n int) bool {
	return n >= r.Min && (r.Max == 0 || n <= r.Max)
}

// Policy is an ordered dispatch table. The first covering rule wins.
type Policy []Rule

// DefaultPolicy returns the production keyword-count dispatch table.
func DefaultPolicy() Policy {
	return Policy{
		{Min: 1, Max: 1, Tiers: []Tier{SingleKeyword}, Standalone: true},
		{Min: 2, Max: 2, Tiers: []Tier{NearAnd}},
		{Min: 3, Max: 4, Tiers: []Tier{ExactPhrase, AndVerses}},
		{Min: 5, Tiers: []Tier{ExactPhrase}},
	}
}

// Select returns the rule for n keywords.
func (p Policy) Select(n int) (Rule, error) {
	if n <= 0 {
		return Rule{}, ErrNoKeywords
	}
	for _, r := range p {
		if r.covers(n) {
			return r, nil
		}
	}
	return Rule{}, fmt.Errorf("%w: %d", ErrNoRule, n)
}

// Validate checks that every rule names at least one known tier.
func (p Policy) Validate() error {
	for i, r := range p {
		if len(r.Tiers) == 0 {
			return fmt.Errorf("rule %d: no tiers", i)
		}
		if r.Min < 1 || (r.Max != 0 && r.Max < r.Min) {
			return fmt.Errorf("rule %d: invalid range [%d, %d]", i, r.Min, r.Max)
		}
		for _, t := range r.Tiers {
			if !t.valid() {
				return fmt.Errorf("rule %d: unknown tier %d", i, int(t))
			}
		}
	}
	return nil
}
