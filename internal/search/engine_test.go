package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/versefinder/internal/domain"
	"github.com/MrSnakeDoc/versefinder/internal/index"
)

// fakeStore answers FindByPredicate per operator and records every call.
type fakeStore struct {
	mu     sync.Mutex
	hits   map[domain.Operator][]domain.Verse
	errs   map[domain.Operator]error
	calls  []domain.Predicate
	limits []int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		hits: make(map[domain.Operator][]domain.Verse),
		errs: make(map[domain.Operator]error),
	}
}

func (f *fakeStore) FindByReference(_ context.Context, ref string) (domain.Verse, error) {
	return domain.Verse{}, domain.ErrVerseNotFound
}

func (f *fakeStore) FindByPredicate(_ context.Context, p domain.Predicate, limit int) ([]domain.Verse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, p)
	f.limits = append(f.limits, limit)
	if err := f.errs[p.Op]; err != nil {
		return nil, err
	}
	return f.hits[p.Op], nil
}

func verses(prefix string, n int) []domain.Verse {
	out := make([]domain.Verse, n)
	for i := range out {
		out[i] = domain.Verse{ID: int64(i + 1), Reference: fmt.Sprintf("%s %d:1", prefix, i+1), Text: "text"}
	}
	return out
}

func v(id int64, ref string) domain.Verse {
	return domain.Verse{ID: id, Reference: ref, Text: ref}
}

type recordingMonitor struct {
	tiers []Tier
	hits  []int
	errs  []error
}

func (m *recordingMonitor) TierCompleted(tier Tier, hits int, _ time.Duration, err error) {
	m.tiers = append(m.tiers, tier)
	m.hits = append(m.hits, hits)
	m.errs = append(m.errs, err)
}

func TestNewEngine(t *testing.T) {
	t.Run("nil store", func(t *testing.T) {
		_, err := NewEngine(nil)
		assert.Equal(t, ErrStoreRequired, err)
	})

	t.Run("invalid policy", func(t *testing.T) {
		_, err := NewEngine(newFakeStore(), WithPolicy(Policy{{Min: 1, Max: 1}}))
		assert.Error(t, err)
	})

	t.Run("nil options fall back to defaults", func(t *testing.T) {
		e, err := NewEngine(newFakeStore(), WithMonitor(nil), WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, e.monitor)
		assert.NotNil(t, e.log)
	})
}

func TestPolicySelect(t *testing.T) {
	p := DefaultPolicy()

	_, err := p.Select(0)
	assert.ErrorIs(t, err, ErrNoKeywords)

	cases := map[int][]Tier{
		1:  {SingleKeyword},
		2:  {NearAnd},
		3:  {ExactPhrase, AndVerses},
		4:  {ExactPhrase, AndVerses},
		5:  {ExactPhrase},
		12: {ExactPhrase},
	}
	for n, want := range cases {
		rule, err := p.Select(n)
		require.NoError(t, err, "n=%d", n)
		assert.Equal(t, want, rule.Tiers, "n=%d", n)
		assert.Equal(t, n == 1, rule.Standalone, "n=%d", n)
	}

	_, err = Policy{{Min: 1, Max: 2, Tiers: []Tier{NearAnd}}}.Select(3)
	assert.ErrorIs(t, err, ErrNoRule)
}

func TestTierCaps(t *testing.T) {
	assert.Equal(t, 100, SingleKeyword.Cap())
	assert.Equal(t, 50, NearAnd.Cap())
	assert.Equal(t, 1, ExactPhrase.Cap())
	assert.Equal(t, 49, AndVerses.Cap())
	assert.Equal(t, "exact_phrase", ExactPhrase.String())
	assert.Equal(t, "unknown", Tier(42).String())
}

func TestSearchSingleKeyword(t *testing.T) {
	tests := []struct {
		name         string
		storeHits    int
		wantReal     int
		wantSentinel bool
	}{
		{name: "truncated to cap", storeHits: 150, wantReal: 100},
		{name: "exactly threshold", storeHits: 20, wantReal: 20},
		{name: "just below threshold", storeHits: 19, wantReal: 19, wantSentinel: true},
		{name: "no hits", storeHits: 0, wantReal: 0, wantSentinel: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.hits[domain.Substring] = verses("John", tt.storeHits)

			e, err := NewEngine(store)
			require.NoError(t, err)

			got, err := e.Search(context.Background(), []string{"Love"})
			require.NoError(t, err)

			assert.Len(t, domain.RealVerses(got), tt.wantReal)
			if tt.wantSentinel {
				assert.Equal(t, domain.SparseSentinelText, got[len(got)-1].Reference)
				assert.Equal(t, domain.SparseSingleKeyword, domain.Trailer(got))
			} else {
				assert.Equal(t, domain.NotSentinel, domain.Trailer(got))
			}

			require.Len(t, store.calls, 1)
			assert.Equal(t, "%love%", store.calls[0].Text)
			assert.Equal(t, 100, store.limits[0])
		})
	}
}

func TestSearchCascadeMergesInTierOrder(t *testing.T) {
	store := newFakeStore()
	store.hits[domain.Phrase] = []domain.Verse{v(7, "John 3:16")}
	store.hits[domain.And] = []domain.Verse{v(9, "John 3:17"), v(7, "John 3:16"), v(3, "Romans 5:8")}

	e, err := NewEngine(store)
	require.NoError(t, err)

	got, err := e.Search(context.Background(), []string{"For", "God", "so"})
	require.NoError(t, err)

	refs := make([]string, len(got))
	for i, g := range got {
		refs[i] = g.Reference
	}
	assert.Equal(t, []string{"John 3:16", "John 3:17", "Romans 5:8", domain.CascadeSentinelText}, refs)

	sentinel := got[len(got)-1]
	assert.Zero(t, sentinel.ID)
	assert.Zero(t, sentinel.UsersSaved)
	assert.Zero(t, sentinel.UsersMemorized)

	require.Len(t, store.calls, 2)
	assert.Equal(t, domain.Phrase, store.calls[0].Op)
	assert.Equal(t, "For God so", store.calls[0].Text)
	assert.Equal(t, domain.And, store.calls[1].Op)
	assert.Equal(t, "%for% AND %god% AND %so%", store.calls[1].Text)
	assert.Equal(t, []int{1, 49}, store.limits)
}

func TestSearchTierSelection(t *testing.T) {
	tests := []struct {
		keywords []string
		wantOps  []domain.Operator
	}{
		{keywords: []string{"faith", "hope"}, wantOps: []domain.Operator{domain.Near}},
		{keywords: []string{"a", "b", "c", "d"}, wantOps: []domain.Operator{domain.Phrase, domain.And}},
		{keywords: []string{"in", "the", "beginning", "god", "created"}, wantOps: []domain.Operator{domain.Phrase}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d keywords", len(tt.keywords)), func(t *testing.T) {
			store := newFakeStore()
			e, err := NewEngine(store)
			require.NoError(t, err)

			got, err := e.Search(context.Background(), tt.keywords)
			require.NoError(t, err)
			assert.True(t, domain.IsNoMatch(got))
			assert.Equal(t, domain.CascadeExhausted, domain.Trailer(got))

			ops := make([]domain.Operator, len(store.calls))
			for i, c := range store.calls {
				ops[i] = c.Op
			}
			assert.Equal(t, tt.wantOps, ops)
		})
	}
}

func TestSearchNearAndTruncates(t *testing.T) {
	store := newFakeStore()
	store.hits[domain.Near] = verses("Psalms", 80)

	mon := &recordingMonitor{}
	e, err := NewEngine(store, WithMonitor(mon))
	require.NoError(t, err)

	got, err := e.Search(context.Background(), []string{"faith", "hope"})
	require.NoError(t, err)
	assert.Len(t, got, 51)
	assert.Equal(t, "%faith% NEAR %hope%", store.calls[0].Text)
	assert.Equal(t, []int{NearAnd.Cap()}, mon.hits, "monitor sees the truncated count")
}

func TestSearchRejectsInput(t *testing.T) {
	e, err := NewEngine(newFakeStore())
	require.NoError(t, err)

	_, err = e.Search(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoKeywords)

	_, err = e.Search(context.Background(), []string{"god", "  "})
	assert.ErrorIs(t, err, ErrBlankKeyword)
}

func TestSearchTierFailureAbortsCascade(t *testing.T) {
	store := newFakeStore()
	boom := errors.New("disk on fire")
	store.errs[domain.Phrase] = boom

	mon := &recordingMonitor{}
	e, err := NewEngine(store, WithMonitor(mon))
	require.NoError(t, err)

	_, err = e.Search(context.Background(), []string{"for", "god", "so"})
	require.Error(t, err)

	var failure *SearchTierFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, ExactPhrase, failure.Tier)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, store.calls, 1, "later tiers must not run")
	assert.Equal(t, []Tier{ExactPhrase}, mon.tiers)
}

func TestSearchCancellation(t *testing.T) {
	t.Run("cancelled before first tier", func(t *testing.T) {
		store := newFakeStore()
		e, err := NewEngine(store)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = e.Search(ctx, []string{"for", "god", "so"})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, store.calls)
	})

	t.Run("store reports deadline", func(t *testing.T) {
		store := newFakeStore()
		store.errs[domain.Near] = fmt.Errorf("query: %w", context.DeadlineExceeded)
		e, err := NewEngine(store)
		require.NoError(t, err)

		_, err = e.Search(context.Background(), []string{"faith", "hope"})
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		var failure *SearchTierFailure
		assert.False(t, errors.As(err, &failure))
	})
}

func TestSearchAgainstCorpus(t *testing.T) {
	corpus := index.NewCorpus(0)
	corpus.Replace([]domain.Verse{
		v(1, "John 3:16"),
		{ID: 2, Reference: "1 John 4:8", Text: "He that loveth not knoweth not God; for God is love."},
		{ID: 3, Reference: "Genesis 1:1", Text: "In the beginning God created the heaven and the earth."},
	})

	e, err := NewEngine(corpus)
	require.NoError(t, err)

	got, err := e.Search(context.Background(), []string{"love"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1 John 4:8", got[0].Reference)
	assert.True(t, got[1].IsSentinel())

	got, err = e.Search(context.Background(), []string{"In", "the", "beginning"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Genesis 1:1", got[0].Reference)
	assert.Equal(t, domain.CascadeExhausted, got[1].SentinelKind())
}
