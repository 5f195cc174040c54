// Package sqlite is the production VerseRepository: a SQLite database with an
// FTS5 trigram index over verse text, on the pure Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/MrSnakeDoc/versefinder/internal/domain"
)

const driverName = "sqlite"

// DefaultNearDistance is the NEAR window, in trigram tokens, when none is configured.
const DefaultNearDistance = 100

const schema = `
CREATE TABLE IF NOT EXISTS verses (
    id              INTEGER PRIMARY KEY,
    reference       TEXT    NOT NULL UNIQUE,
    text            TEXT    NOT NULL,
    users_saved     INTEGER NOT NULL DEFAULT 0,
    users_memorized INTEGER NOT NULL DEFAULT 0
);

-- External-content index: verse text lives once, in verses.
CREATE VIRTUAL TABLE IF NOT EXISTS verses_fts USING fts5(
    text,
    content = 'verses',
    content_rowid = 'id',
    tokenize = 'trigram'
);

CREATE TRIGGER IF NOT EXISTS verses_ai AFTER INSERT ON verses BEGIN
    INSERT INTO verses_fts(rowid, text) VALUES (new.id, new.text);
END;

CREATE TRIGGER IF NOT EXISTS verses_ad AFTER DELETE ON verses BEGIN
    INSERT INTO verses_fts(verses_fts, rowid, text) VALUES ('delete', old.id, old.text);
END;

CREATE TRIGGER IF NOT EXISTS verses_au AFTER UPDATE OF text ON verses BEGIN
    INSERT INTO verses_fts(verses_fts, rowid, text) VALUES ('delete', old.id, old.text);
    INSERT INTO verses_fts(rowid, text) VALUES (new.id, new.text);
END;
`

// Store is a SQLite-backed domain.VerseRepository.
type Store struct {
	db           *sql.DB
	nearDistance int
}

var _ domain.VerseRepository = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithNearDistance sets the NEAR proximity window. Values <= 0 are ignored.
func WithNearDistance(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.nearDistance = n
		}
	}
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite: empty database path")
	}
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newStore(db, opts...)
}

// OpenMemory opens a private in-memory database, for tests and tooling.
func OpenMemory(opts ...Option) (*Store, error) {
	db, err := sql.Open(driverName, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every pooled connection to :memory: would be a distinct database
	db.SetMaxOpenConns(1)
	return newStore(db, opts...)
}

func newStore(db *sql.DB, opts ...Option) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	s := &Store{db: db, nearDistance: DefaultNearDistance}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Count returns the number of stored verses.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM verses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count verses: %w", err)
	}
	return n, nil
}

const selectVerse = `SELECT v.id, v.reference, v.text, v.users_saved, v.users_memorized FROM verses v`

// FindByReference returns the verse stored under the canonical key ref.
func (s *Store) FindByReference(ctx context.Context, ref string) (domain.Verse, error) {
	var v domain.Verse
	err := s.db.QueryRowContext(ctx, selectVerse+` WHERE v.reference = ?`, ref).
		Scan(&v.ID, &v.Reference, &v.Text, &v.UsersSaved, &v.UsersMemorized)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Verse{}, domain.ErrVerseNotFound
	}
	if err != nil {
		return domain.Verse{}, fmt.Errorf("failed to find verse %q: %w", ref, err)
	}
	return v, nil
}

// FindByPredicate runs p against the trigram index, or against LIKE scans
// when a term is too short to be indexed.
func (s *Store) FindByPredicate(ctx context.Context, p domain.Predicate, limit int) ([]domain.Verse, error) {
	q, ok := s.buildQuery(p, limit)
	if !ok {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, q.sql, q.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s predicate: %w", p.Op, err)
	}
	defer func() { _ = rows.Close() }()

	return scanVerses(rows)
}

func scanVerses(rows *sql.Rows) ([]domain.Verse, error) {
	var out []domain.Verse
	for rows.Next() {
		var v domain.Verse
		if err := rows.Scan(&v.ID, &v.Reference, &v.Text, &v.UsersSaved, &v.UsersMemorized); err != nil {
			return nil, fmt.Errorf("failed to scan verse: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read verses: %w", err)
	}
	return out, nil
}

// UpsertVerses writes verses in one transaction. Existing references keep
// their id and counters; only the text is refreshed.
func (s *Store) UpsertVerses(ctx context.Context, verses []domain.Verse) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// An explicit id already held by another reference falls back to an
	// assigned one.
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO verses (id, reference, text) VALUES (
			CASE WHEN ?1 = 0 OR EXISTS (SELECT 1 FROM verses WHERE id = ?1 AND reference <> ?2)
				THEN NULL ELSE ?1 END,
			?2, ?3)
		ON CONFLICT(reference) DO UPDATE SET text = excluded.text
		WHERE verses.text <> excluded.text`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, v := range verses {
		if _, err := stmt.ExecContext(ctx, v.ID, v.Reference, v.Text); err != nil {
			return 0, fmt.Errorf("failed to upsert %q: %w", v.Reference, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit upsert: %w", err)
	}
	return len(verses), nil
}

// IncrementSaved bumps users_saved once per id occurrence. Unknown ids are ignored.
func (s *Store) IncrementSaved(ctx context.Context, ids ...int64) error {
	return s.increment(ctx, "users_saved", ids)
}

// IncrementMemorized bumps users_memorized once per id occurrence.
func (s *Store) IncrementMemorized(ctx context.Context, ids ...int64) error {
	return s.increment(ctx, "users_memorized", ids)
}

// column is one of two constants, never user input
func (s *Store) increment(ctx context.Context, column string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `UPDATE verses SET `+column+` = `+column+` + 1 WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare %s update: %w", column, err)
	}
	defer func() { _ = stmt.Close() }()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("failed to increment %s for %d: %w", column, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s update: %w", column, err)
	}
	return nil
}
