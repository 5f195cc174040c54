package index

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/versefinder/internal/domain"
)

// DefaultNearDistance is the proximity window, in characters, used when
// none is configured.
const DefaultNearDistance = 100

type entry struct {
	verse domain.Verse
	lower string // lower-cased text, matched against
}

// Corpus is an in-memory VerseRepository.
// It backs development setups and tests; production uses the SQLite store.
type Corpus struct {
	mu           sync.RWMutex
	byID         map[int64]*entry
	byRef        map[string]int64 // Reference -> ID
	nextID       int64
	nearDistance int
	lastReload   time.Time
}

var _ domain.VerseRepository = (*Corpus)(nil)

// NewCorpus creates an empty corpus. nearDistance <= 0 selects
// DefaultNearDistance.
func NewCorpus(nearDistance int) *Corpus {
	if nearDistance <= 0 {
		nearDistance = DefaultNearDistance
	}
	return &Corpus{
		byID:         make(map[int64]*entry),
		byRef:        make(map[string]int64),
		nextID:       1,
		nearDistance: nearDistance,
	}
}

// Replace drops every verse and loads verses instead
func (c *Corpus) Replace(verses []domain.Verse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.byID = make(map[int64]*entry, len(verses))
	c.byRef = make(map[string]int64, len(verses))
	c.nextID = 1
	for _, v := range verses {
		c.putLocked(v)
	}
	c.lastReload = time.Now()
}

// UpsertVerses inserts new references and refreshes the text of known ones.
func (c *Corpus) UpsertVerses(ctx context.Context, verses []domain.Verse) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, v := range verses {
		if id, ok := c.byRef[v.Reference]; ok {
			e := c.byID[id]
			e.verse.Text = v.Text
			e.lower = strings.ToLower(v.Text)
			continue
		}
		c.putLocked(v)
	}
	c.lastReload = time.Now()
	return len(verses), nil
}

// putLocked adds a verse whose reference is not yet stored. An explicit ID
// already held by another reference is replaced by the next free one.
func (c *Corpus) putLocked(v domain.Verse) {
	if _, taken := c.byID[v.ID]; v.ID == 0 || taken {
		v.ID = c.nextID
	}
	if v.ID >= c.nextID {
		c.nextID = v.ID + 1
	}
	c.byID[v.ID] = &entry{verse: v, lower: strings.ToLower(v.Text)}
	c.byRef[v.Reference] = v.ID
}

// FindByReference returns the verse stored under the canonical key ref.
func (c *Corpus) FindByReference(ctx context.Context, ref string) (domain.Verse, error) {
	if err := ctx.Err(); err != nil {
		return domain.Verse{}, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	id, ok := c.byRef[ref]
	if !ok {
		return domain.Verse{}, domain.ErrVerseNotFound
	}
	return c.byID[id].verse, nil
}

type scored struct {
	verse  domain.Verse
	score  int
	offset int
}

// FindByPredicate scans the corpus. The relevance score is the number of
// term occurrences in the verse.
func (c *Corpus) FindByPredicate(ctx context.Context, p domain.Predicate, limit int) ([]domain.Verse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	terms := lowerTerms(p)
	if len(terms) == 0 {
		return nil, nil
	}

	c.mu.RLock()
	matches := make([]scored, 0, 64)
	for _, e := range c.byID {
		score, ok := c.match(p.Op, terms, e.lower)
		if !ok {
			continue
		}
		offset := math.MaxInt
		if p.RankTerm != "" {
			if i := strings.Index(e.lower, p.RankTerm); i >= 0 {
				offset = i
			}
		}
		matches = append(matches, scored{verse: e.verse, score: score, offset: offset})
	}
	c.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.offset != b.offset {
			return a.offset < b.offset
		}
		return a.verse.ID < b.verse.ID
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]domain.Verse, len(matches))
	for i, m := range matches {
		out[i] = m.verse
	}
	return out, nil
}

func lowerTerms(p domain.Predicate) []string {
	if p.Op == domain.Phrase {
		phrase := strings.ToLower(strings.TrimSpace(p.PhraseText()))
		if phrase == "" {
			return nil
		}
		return []string{phrase}
	}

	terms := make([]string, 0, len(p.Terms))
	for _, t := range p.Terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

func (c *Corpus) match(op domain.Operator, terms []string, text string) (int, bool) {
	score := 0
	for _, t := range terms {
		n := strings.Count(text, t)
		if n == 0 {
			return 0, false
		}
		score += n
	}

	if op == domain.Near && !c.within(terms, text) {
		return 0, false
	}
	return score, true
}

// within reports whether some occurrence of the first term has an occurrence
// of every other term no more than nearDistance characters away.
func (c *Corpus) within(terms []string, text string) bool {
	if len(terms) < 2 {
		return true
	}

	positions := make([][]int, len(terms))
	for i, t := range terms {
		positions[i] = occurrences(text, t)
	}

	for _, anchor := range positions[0] {
		ok := true
		for _, others := range positions[1:] {
			if !hasNear(others, anchor, c.nearDistance) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func occurrences(text, term string) []int {
	var out []int
	for start := 0; ; {
		i := strings.Index(text[start:], term)
		if i < 0 {
			return out
		}
		out = append(out, start+i)
		start += i + 1
	}
}

func hasNear(positions []int, anchor, distance int) bool {
	for _, p := range positions {
		d := p - anchor
		if d < 0 {
			d = -d
		}
		if d <= distance {
			return true
		}
	}
	return false
}

// IncrementSaved bumps UsersSaved on each known id. Unknown ids are ignored.
func (c *Corpus) IncrementSaved(ctx context.Context, ids ...int64) error {
	return c.increment(ctx, ids, func(v *domain.Verse) { v.UsersSaved++ })
}

// IncrementMemorized bumps UsersMemorized on each known id.
func (c *Corpus) IncrementMemorized(ctx context.Context, ids ...int64) error {
	return c.increment(ctx, ids, func(v *domain.Verse) { v.UsersMemorized++ })
}

func (c *Corpus) increment(ctx context.Context, ids []int64, bump func(*domain.Verse)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range ids {
		if e, ok := c.byID[id]; ok {
			bump(&e.verse)
		}
	}
	return nil
}

// Count returns the number of verses.
func (c *Corpus) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.byID), nil
}

// Ping always succeeds while ctx is live.
func (c *Corpus) Ping(ctx context.Context) error {
	return ctx.Err()
}

// LastReload returns when the corpus content was last replaced or upserted.
func (c *Corpus) LastReload() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.lastReload
}
