package domain

import "strings"

// Operator is the full-text operation a Predicate asks a store to perform.
type Operator int

const (
	// Substring matches verses containing the single term.
	Substring Operator = iota
	// Near matches verses where every term occurs within the store's
	// proximity window of the others.
	Near
	// And matches verses containing every term anywhere.
	And
	// Phrase matches verses containing the terms contiguously, in order.
	Phrase
)

func (o Operator) String() string {
	switch o {
	case Substring:
		return "substring"
	case Near:
		return "near"
	case And:
		return "and"
	case Phrase:
		return "phrase"
	default:
		return "unknown"
	}
}

// Predicate is one full-text query against a VerseStore.
//
// Terms carries the normalized keywords: lower-cased for Substring, Near and
// And, verbatim for Phrase. Text is the rendered predicate string
// ("%for% AND %god%"), kept for logging and cache keys. RankTerm is the
// keyword whose first occurrence offset breaks relevance ties.
type Predicate struct {
	Op       Operator
	Terms    []string
	Text     string
	RankTerm string
}

// NewPredicate normalizes keywords for op and renders the predicate text.
func NewPredicate(op Operator, keywords []string) Predicate {
	p := Predicate{Op: op}

	if op == Phrase {
		p.Terms = append([]string(nil), keywords...)
		p.Text = strings.Join(keywords, " ")
	} else {
		p.Terms = make([]string, len(keywords))
		wrapped := make([]string, len(keywords))
		for i, kw := range keywords {
			p.Terms[i] = strings.ToLower(kw)
			wrapped[i] = "%" + p.Terms[i] + "%"
		}
		sep := " AND "
		if op == Near {
			sep = " NEAR "
		}
		p.Text = strings.Join(wrapped, sep)
	}

	if len(keywords) > 0 {
		p.RankTerm = strings.ToLower(keywords[0])
	}
	return p
}

// PhraseText returns the contiguous phrase for a Phrase predicate.
func (p Predicate) PhraseText() string {
	return strings.Join(p.Terms, " ")
}
