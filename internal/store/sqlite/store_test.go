package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/versefinder/internal/domain"
)

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()

	s, err := OpenMemory(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.UpsertVerses(context.Background(), []domain.Verse{
		{Reference: "John 3:16", Text: "For God so loved the world, that he gave his only begotten Son"},
		{Reference: "1 John 4:8", Text: "He that loveth not knoweth not God; for God is love."},
		{Reference: "Genesis 1:1", Text: "In the beginning God created the heaven and the earth."},
		{Reference: "Romans 5:8", Text: "But God commendeth his love toward us"},
	})
	require.NoError(t, err)
	return s
}

func references(verses []domain.Verse) []string {
	out := make([]string, len(verses))
	for i, v := range verses {
		out[i] = v.Reference
	}
	return out
}

func TestOpen(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)

	s, err := Open(t.TempDir() + "/verses.db")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	require.NoError(t, s.Ping(context.Background()))
	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFindByReference(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	v, err := s.FindByReference(ctx, "Genesis 1:1")
	require.NoError(t, err)
	assert.Equal(t, "In the beginning God created the heaven and the earth.", v.Text)
	assert.NotZero(t, v.ID)

	_, err = s.FindByReference(ctx, "Genesis 1:2")
	assert.ErrorIs(t, err, domain.ErrVerseNotFound)
}

func TestFindByPredicateIndexed(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		pred domain.Predicate
		want []string
	}{
		{
			name: "substring matches inside words",
			pred: domain.NewPredicate(domain.Substring, []string{"LOVE"}),
			want: []string{"John 3:16", "1 John 4:8", "Romans 5:8"},
		},
		{
			name: "and",
			pred: domain.NewPredicate(domain.And, []string{"god", "earth"}),
			want: []string{"Genesis 1:1"},
		},
		{
			name: "near",
			pred: domain.NewPredicate(domain.Near, []string{"god", "love"}),
			want: []string{"John 3:16", "1 John 4:8", "Romans 5:8"},
		},
		{
			name: "phrase is contiguous",
			pred: domain.NewPredicate(domain.Phrase, []string{"God", "so", "loved"}),
			want: []string{"John 3:16"},
		},
		{
			name: "phrase out of order misses",
			pred: domain.NewPredicate(domain.Phrase, []string{"loved", "so", "God"}),
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FindByPredicate(ctx, tt.pred, 50)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, references(got))
		})
	}
}

func TestFindByPredicateLimit(t *testing.T) {
	s := openTestStore(t)

	got, err := s.FindByPredicate(context.Background(), domain.NewPredicate(domain.Substring, []string{"god"}), 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFindByPredicateShortTermFallback(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	got, err := s.FindByPredicate(ctx, domain.NewPredicate(domain.Substring, []string{"he"}), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Genesis 1:1", "John 3:16", "1 John 4:8"}, references(got))

	got, err = s.FindByPredicate(ctx, domain.NewPredicate(domain.Near, []string{"god", "so"}), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"John 3:16"}, references(got))
}

func TestFindByPredicateTieBreakOnOffset(t *testing.T) {
	s, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	// Same length and same term frequency: equal bm25 and equal LIKE score.
	_, err = s.UpsertVerses(ctx, []domain.Verse{
		{Reference: "Titus 2:11", Text: "mercy and grace are here"},
		{Reference: "Titus 3:7", Text: "grace and mercy are here"},
		{Reference: "Job 40:15", Text: "then an ox"},
		{Reference: "Job 40:16", Text: "ox then an"},
	})
	require.NoError(t, err)

	got, err := s.FindByPredicate(ctx, domain.NewPredicate(domain.Substring, []string{"Grace"}), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Titus 3:7", "Titus 2:11"}, references(got), "earlier first keyword wins the tie")

	got, err = s.FindByPredicate(ctx, domain.NewPredicate(domain.Substring, []string{"ox"}), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Job 40:16", "Job 40:15"}, references(got), "short term fallback uses the same tie-break")
}

func TestUpsertKeepsCounters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	before, err := s.FindByReference(ctx, "Romans 5:8")
	require.NoError(t, err)

	require.NoError(t, s.IncrementSaved(ctx, before.ID, before.ID))
	require.NoError(t, s.IncrementMemorized(ctx, before.ID, 9999))

	_, err = s.UpsertVerses(ctx, []domain.Verse{
		{Reference: "Romans 5:8", Text: "But God commendeth his love toward us, in that, while we were yet sinners"},
	})
	require.NoError(t, err)

	after, err := s.FindByReference(ctx, "Romans 5:8")
	require.NoError(t, err)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, int64(2), after.UsersSaved)
	assert.Equal(t, int64(1), after.UsersMemorized)

	got, err := s.FindByPredicate(ctx, domain.NewPredicate(domain.Substring, []string{"sinners"}), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Romans 5:8"}, references(got), "index follows text updates")

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestUpsertExplicitIDCollision(t *testing.T) {
	s, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	_, err = s.UpsertVerses(ctx, []domain.Verse{{Reference: "John 3:16", Text: "For God so loved the world"}})
	require.NoError(t, err)
	john, err := s.FindByReference(ctx, "John 3:16")
	require.NoError(t, err)

	_, err = s.UpsertVerses(ctx, []domain.Verse{
		{ID: john.ID, Reference: "Genesis 1:1", Text: "In the beginning"},
		{ID: 500, Reference: "Romans 5:8", Text: "But God commendeth his love toward us"},
	})
	require.NoError(t, err, "an id held by another reference must not fail the upsert")

	again, err := s.FindByReference(ctx, "John 3:16")
	require.NoError(t, err)
	assert.Equal(t, john, again)

	gen, err := s.FindByReference(ctx, "Genesis 1:1")
	require.NoError(t, err)
	assert.NotEqual(t, john.ID, gen.ID)

	rom, err := s.FindByReference(ctx, "Romans 5:8")
	require.NoError(t, err)
	assert.Equal(t, int64(500), rom.ID, "a free explicit id is kept")

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestMatchExpr(t *testing.T) {
	s := &Store{nearDistance: 100}

	assert.Equal(t, `"love"`, s.matchExpr(domain.Substring, []string{"love"}))
	assert.Equal(t, `"faith" AND "hope"`, s.matchExpr(domain.And, []string{"faith", "hope"}))
	assert.Equal(t, `NEAR("faith" "hope", 100)`, s.matchExpr(domain.Near, []string{"faith", "hope"}))
	assert.Equal(t, `"say ""amen"""`, s.matchExpr(domain.Phrase, []string{`say "amen"`}))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% of a\_b \\ c`, escapeLike(`50% of a_b \ c`))
}
