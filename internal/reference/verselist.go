package reference

import (
	"sort"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// verseList is the grammar for the verse part of a reference: "3,5-7".
type verseList struct {
	Segments []*verseSegment `parser:"@@ ( \",\" @@ )*"`
}

type verseSegment struct {
	Start int  `parser:"@Int"`
	End   *int `parser:"( \"-\" @Int )?"`
}

var verseListLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `\d+`},
	{Name: "Punct", Pattern: `[,-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var verseListParser = participle.MustBuild[verseList](
	participle.Lexer(verseListLexer),
	participle.Elide("Whitespace"),
)

// Verse list bounds. MaxVerse is the longest chapter in the canon (Psalm 119);
// MaxVersesPerReference caps the expanded size of one repeated-verse list.
const (
	MaxVerse              = 176
	MaxVersesPerReference = 1024
)

// ExpandVersePart expands a verse list such as "3,5-7" into [3 5 6 7].
// Ranges are inclusive. Input order and duplicates are preserved.
func ExpandVersePart(part string) ([]int, error) {
	if strings.TrimSpace(part) == "" {
		return nil, malformed(part, "empty verse part", nil)
	}

	list, err := verseListParser.ParseString("", part)
	if err != nil {
		return nil, malformed(part, "invalid verse list", err)
	}

	verses := make([]int, 0, len(list.Segments))
	for _, seg := range list.Segments {
		if seg.Start < 1 {
			return nil, malformed(part, "verse numbers must be positive", nil)
		}
		end := seg.Start
		if seg.End != nil {
			end = *seg.End
		}
		if end < seg.Start {
			return nil, malformed(part, "descending verse range "+strconv.Itoa(seg.Start)+"-"+strconv.Itoa(end), nil)
		}
		if end > MaxVerse {
			return nil, malformed(part, "verse number above "+strconv.Itoa(MaxVerse), nil)
		}
		if len(verses)+end-seg.Start+1 > MaxVersesPerReference {
			return nil, malformed(part, "more than "+strconv.Itoa(MaxVersesPerReference)+" verses", nil)
		}
		for v := seg.Start; v <= end; v++ {
			verses = append(verses, v)
		}
	}
	return verses, nil
}

// CompressVerses renders verse numbers in display form: sorted, deduplicated,
// consecutive runs merged ("5-7, 10"). It is not a storage key.
func CompressVerses(verses []int) string {
	if len(verses) == 0 {
		return ""
	}

	sorted := make([]int, len(verses))
	copy(sorted, verses)
	sort.Ints(sorted)

	var sb strings.Builder
	start, prev := sorted[0], sorted[0]
	flush := func() {
		if sb.Len() > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Itoa(start))
		if prev != start {
			sb.WriteByte('-')
			sb.WriteString(strconv.Itoa(prev))
		}
	}

	for _, v := range sorted[1:] {
		switch {
		case v == prev:
			continue
		case v == prev+1:
			prev = v
		default:
			flush()
			start, prev = v, v
		}
	}
	flush()

	return sb.String()
}
