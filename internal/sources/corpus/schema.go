package corpus

// File is the top-level structure of a corpus YAML file.
//
//	translation: KJV
//	verses:
//	  - reference: John 3:16
//	    text: For God so loved the world...
//	  - book: Genesis
//	    chapter: 1
//	    verse: 1
//	    text: In the beginning...
type File struct {
	Translation string  `yaml:"translation,omitempty"`
	Verses      []Entry `yaml:"verses"`
}

// Entry is one verse. It names its verse either with Reference or with
// Book, Chapter and Verse.
type Entry struct {
	ID        int64  `yaml:"id,omitempty"`
	Reference string `yaml:"reference,omitempty"`
	Book      string `yaml:"book,omitempty"`
	Chapter   *int   `yaml:"chapter,omitempty"`
	Verse     int    `yaml:"verse,omitempty"`
	Text      string `yaml:"text"`
}
