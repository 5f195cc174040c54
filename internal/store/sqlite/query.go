package sqlite

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/MrSnakeDoc/versefinder/internal/domain"
)

// minTrigramRunes is the shortest string the trigram tokenizer can match.
const minTrigramRunes = 3

type query struct {
	sql  string
	args []any
}

// buildQuery translates p into SQL. ok is false when p has no usable terms.
func (s *Store) buildQuery(p domain.Predicate, limit int) (query, bool) {
	terms := predicateTerms(p)
	if len(terms) == 0 {
		return query{}, false
	}
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	for _, t := range terms {
		if utf8.RuneCountInString(t) < minTrigramRunes {
			return likeQuery(terms, p.RankTerm, limit), true
		}
	}
	return query{
		sql: selectVerse + `
			JOIN verses_fts ON verses_fts.rowid = v.id
			WHERE verses_fts MATCH ?
			ORDER BY bm25(verses_fts),
			         CASE instr(lower(v.text), ?) WHEN 0 THEN 1 ELSE 0 END,
			         instr(lower(v.text), ?),
			         v.id
			LIMIT ?`,
		args: []any{s.matchExpr(p.Op, terms), p.RankTerm, p.RankTerm, limit},
	}, true
}

// predicateTerms returns the lower-cased terms; a phrase is one term.
func predicateTerms(p domain.Predicate) []string {
	if p.Op == domain.Phrase {
		if phrase := strings.ToLower(strings.TrimSpace(p.PhraseText())); phrase != "" {
			return []string{phrase}
		}
		return nil
	}

	out := make([]string, 0, len(p.Terms))
	for _, t := range p.Terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// matchExpr renders an FTS5 query string. Every term is a quoted string so
// user input never reaches the FTS5 query syntax.
func (s *Store) matchExpr(op domain.Operator, terms []string) string {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}

	switch op {
	case domain.Near:
		if len(quoted) == 1 {
			return quoted[0]
		}
		return "NEAR(" + strings.Join(quoted, " ") + ", " + strconv.Itoa(s.nearDistance) + ")"
	case domain.And:
		return strings.Join(quoted, " AND ")
	default:
		return quoted[0]
	}
}

// likeQuery is the unindexed fallback. NEAR degrades to AND, and the score is
// the number of term occurrences, matching the in-memory corpus.
func likeQuery(terms []string, rankTerm string, limit int) query {
	var (
		where []string
		score []string
		args  []any
	)

	for _, t := range terms {
		score = append(score, `(length(lower(v.text)) - length(replace(lower(v.text), ?, ''))) / ?`)
		args = append(args, t, utf8.RuneCountInString(t))
	}
	for _, t := range terms {
		where = append(where, `lower(v.text) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(t)+"%")
	}
	args = append(args, rankTerm, rankTerm, limit)

	return query{
		sql: `SELECT id, reference, text, users_saved, users_memorized FROM (
			SELECT v.*, ` + strings.Join(score, " + ") + ` AS score FROM verses v
			WHERE ` + strings.Join(where, " AND ") + `
		) v
		ORDER BY v.score DESC,
		         CASE instr(lower(v.text), ?) WHEN 0 THEN 1 ELSE 0 END,
		         instr(lower(v.text), ?),
		         v.id
		LIMIT ?`,
		args: args,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
