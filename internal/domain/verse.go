package domain

// Verse is one verse of the corpus as owned by a VerseStore.
//
// Reference is the canonical single-verse key ("John 3:16"). The two
// counters are incremented outside the search core and are read-only to it.
type Verse struct {
	// ─────────────────────────────
	// Identity
	// ─────────────────────────────

	// ID is the store-assigned identifier. Sentinels carry 0.
	ID int64 `json:"id"`

	// Reference is the canonical storage key, e.g. "Genesis 1:1".
	Reference string `json:"reference"`

	// Text is the verse body.
	Text string `json:"text"`

	// ─────────────────────────────
	// Counters
	// ─────────────────────────────

	UsersSaved     int64 `json:"usersSaved"`
	UsersMemorized int64 `json:"usersMemorized"`
}

// SentinelKind tells the two "no more results" markers apart.
type SentinelKind int

const (
	NotSentinel SentinelKind = iota

	// CascadeExhausted terminates every multi-keyword result.
	CascadeExhausted

	// SparseSingleKeyword is appended to single-keyword results with fewer
	// than SparseThreshold real matches.
	SparseSingleKeyword
)

const (
	CascadeSentinelText = "No more results. Check your spelling."
	SparseSentinelText  = "No more results found; please check your spelling."
)

// SparseThreshold is the number of real single-keyword matches below which
// the sparse sentinel is appended.
const SparseThreshold = 20

// CascadeSentinel returns the pseudo-verse ending a cascade result.
func CascadeSentinel() Verse { return Verse{Reference: CascadeSentinelText} }

// SparseSentinel returns the pseudo-verse ending a sparse single-keyword result.
func SparseSentinel() Verse { return Verse{Reference: SparseSentinelText} }

// SentinelKind reports which marker v is, if any.
func (v Verse) SentinelKind() SentinelKind {
	if v.ID != 0 {
		return NotSentinel
	}
	switch v.Reference {
	case CascadeSentinelText:
		return CascadeExhausted
	case SparseSentinelText:
		return SparseSingleKeyword
	default:
		return NotSentinel
	}
}

// IsSentinel reports whether v is one of the "no more results" markers.
func (v Verse) IsSentinel() bool { return v.SentinelKind() != NotSentinel }

// IsNoMatch reports whether result carries no real verse.
func IsNoMatch(result []Verse) bool {
	for _, v := range result {
		if !v.IsSentinel() {
			return false
		}
	}
	return true
}

// Trailer returns the kind of the marker terminating result, if any.
func Trailer(result []Verse) SentinelKind {
	if len(result) == 0 {
		return NotSentinel
	}
	return result[len(result)-1].SentinelKind()
}

// RealVerses returns result without sentinel markers.
func RealVerses(result []Verse) []Verse {
	out := make([]Verse, 0, len(result))
	for _, v := range result {
		if !v.IsSentinel() {
			out = append(out, v)
		}
	}
	return out
}
