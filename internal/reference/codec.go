package reference

import (
	"errors"
	"strconv"
	"strings"
)

// Reference is a structured scripture reference: one book, one chapter and
// one or more verses of that chapter.
type Reference struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Verses  []int  `json:"verses"`
}

// Tokenize splits a reference such as "1 John 3:16-18,20" into its book,
// chapter and verse parts.
//
// The chapter/verse boundary is the first colon and the book/chapter boundary
// is the last space before it, so multi-word book names stay whole. The
// returned book is the canonical catalog name.
func Tokenize(ref string) (book, chapter, versePart string, err error) {
	s := strings.TrimSpace(ref)

	colon := strings.IndexByte(s, ':')
	if colon < 0 {
		return "", "", "", malformed(ref, "missing ':' between chapter and verses", nil)
	}

	head := strings.TrimRight(s[:colon], " ")
	space := strings.LastIndexByte(head, ' ')
	if space < 0 {
		return "", "", "", malformed(ref, "missing space between book and chapter", nil)
	}

	bookToken := head[:space]
	chapter = head[space+1:]
	versePart = strings.TrimSpace(s[colon+1:])

	if _, convErr := parseChapter(chapter); convErr != nil {
		return "", "", "", malformed(ref, "invalid chapter "+strconv.Quote(chapter), convErr)
	}

	canonical, ok := LookupBook(bookToken)
	if !ok {
		return "", "", "", &UnknownBookError{Book: strings.TrimSpace(bookToken)}
	}

	return canonical, chapter, versePart, nil
}

// Parse converts a reference string into a Reference.
func Parse(ref string) (Reference, error) {
	book, chapterToken, versePart, err := Tokenize(ref)
	if err != nil {
		return Reference{}, err
	}

	chapter, _ := parseChapter(chapterToken) // validated by Tokenize

	verses, err := ExpandVersePart(versePart)
	if err != nil {
		var mErr *MalformedReferenceError
		if errors.As(err, &mErr) {
			mErr.Input = ref
		}
		return Reference{}, err
	}

	return Reference{Book: book, Chapter: chapter, Verses: verses}, nil
}

// BuildReference returns the canonical single-verse key "<book> <chapter>:<verse>".
func BuildReference(book string, chapter, verse int) string {
	return book + " " + strconv.Itoa(chapter) + ":" + strconv.Itoa(verse)
}

// BuildReferenceList returns the canonical multi-verse key
// "<book> <chapter>:<v1>,<v2>,...". Verses are comma-joined as given and are
// never range-compressed.
func BuildReferenceList(book string, chapter int, verses []int) string {
	if len(verses) == 1 {
		return BuildReference(book, chapter, verses[0])
	}

	parts := make([]string, len(verses))
	for i, v := range verses {
		parts[i] = strconv.Itoa(v)
	}
	return book + " " + strconv.Itoa(chapter) + ":" + strings.Join(parts, ",")
}

// ExpandReferenceToPerVerseList fans a multi-verse reference out into one
// canonical single-verse string per verse, in expanded order.
func ExpandReferenceToPerVerseList(ref string) ([]string, error) {
	r, err := Parse(ref)
	if err != nil {
		return nil, err
	}
	return r.PerVerse(), nil
}

// Validate checks the Reference invariants and canonicalizes the book name.
func (r *Reference) Validate() error {
	canonical, ok := LookupBook(r.Book)
	if !ok {
		return &UnknownBookError{Book: r.Book}
	}
	r.Book = canonical

	if r.Chapter < 0 {
		return malformed(r.String(), "chapter must not be negative", nil)
	}
	if len(r.Verses) == 0 {
		return malformed(r.Book+" "+strconv.Itoa(r.Chapter)+":", "empty verse part", nil)
	}
	if len(r.Verses) > MaxVersesPerReference {
		return malformed(r.Book+" "+strconv.Itoa(r.Chapter)+":", "more than "+strconv.Itoa(MaxVersesPerReference)+" verses", nil)
	}
	for _, v := range r.Verses {
		if v < 1 {
			return malformed(r.String(), "verse numbers must be positive", nil)
		}
		if v > MaxVerse {
			return malformed(r.String(), "verse number above "+strconv.Itoa(MaxVerse), nil)
		}
	}
	return nil
}

// String returns the canonical storage key for the reference.
func (r Reference) String() string {
	if len(r.Verses) == 0 {
		return r.Book + " " + strconv.Itoa(r.Chapter) + ":"
	}
	return BuildReferenceList(r.Book, r.Chapter, r.Verses)
}

// Readable returns the display form, e.g. "John 3:16-18, 20".
func (r Reference) Readable() string {
	return r.Book + " " + strconv.Itoa(r.Chapter) + ":" + CompressVerses(r.Verses)
}

// PerVerse returns one canonical single-verse key per verse, in order.
func (r Reference) PerVerse() []string {
	out := make([]string, len(r.Verses))
	for i, v := range r.Verses {
		out[i] = BuildReference(r.Book, r.Chapter, v)
	}
	return out
}

func parseChapter(token string) (int, error) {
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, err
	}
	if n < 0 || strings.HasPrefix(token, "+") || strings.HasPrefix(token, "-") {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}
