package reference

import "strings"

// books is the canonical, ordered 66-book catalog.
// It is read-only after package initialization.
var books = [66]string{
	"Genesis", "Exodus", "Leviticus", "Numbers", "Deuteronomy",
	"Joshua", "Judges", "Ruth", "1 Samuel", "2 Samuel",
	"1 Kings", "2 Kings", "1 Chronicles", "2 Chronicles", "Ezra",
	"Nehemiah", "Esther", "Job", "Psalms", "Proverbs",
	"Ecclesiastes", "Song of Solomon", "Isaiah", "Jeremiah", "Lamentations",
	"Ezekiel", "Daniel", "Hosea", "Joel", "Amos",
	"Obadiah", "Jonah", "Micah", "Nahum", "Habakkuk",
	"Zephaniah", "Haggai", "Zechariah", "Malachi",
	"Matthew", "Mark", "Luke", "John", "Acts",
	"Romans", "1 Corinthians", "2 Corinthians", "Galatians", "Ephesians",
	"Philippians", "Colossians", "1 Thessalonians", "2 Thessalonians", "1 Timothy",
	"2 Timothy", "Titus", "Philemon", "Hebrews", "James",
	"1 Peter", "2 Peter", "1 John", "2 John", "3 John",
	"Jude", "Revelation",
}

// aliases maps common alternate spellings (lowercase) to canonical names.
var aliases = map[string]string{
	"psalm":         "Psalms",
	"song of songs": "Song of Solomon",
	"canticles":     "Song of Solomon",
	"revelations":   "Revelation",
}

// byLowerName is built once from books and aliases.
var byLowerName = func() map[string]string {
	m := make(map[string]string, len(books)+len(aliases))
	for _, b := range books {
		m[strings.ToLower(b)] = b
	}
	for alias, canonical := range aliases {
		m[alias] = canonical
	}
	return m
}()

// Books returns a copy of the canonical catalog in canonical order.
func Books() []string {
	out := make([]string, len(books))
	copy(out, books[:])
	return out
}

// LookupBook resolves name (case-insensitive, surrounding and repeated
// inner whitespace ignored) to its canonical catalog name.
func LookupBook(name string) (string, bool) {
	key := strings.ToLower(strings.Join(strings.Fields(name), " "))
	canonical, ok := byLowerName[key]
	return canonical, ok
}

// BookIndex returns the zero-based catalog position of a canonical book name, or -1.
func BookIndex(canonical string) int {
	for i, b := range books {
		if b == canonical {
			return i
		}
	}
	return -1
}
