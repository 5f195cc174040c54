package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/versefinder/internal/domain"
	"github.com/MrSnakeDoc/versefinder/internal/scheduler"
)

const corpusYAML = `translation: KJV
verses:
  - reference: John 3:16
    text: For God so loved the world, that he gave his only begotten Son
  - reference: John 3:17
    text: For God sent not his Son into the world to condemn the world
  - reference: 1 John 4:8
    text: He that loveth not knoweth not God; for God is love.
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestImportSearchLookup(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "verses.db")
	corpus := filepath.Join(dir, "corpus.yaml")
	require.NoError(t, os.WriteFile(corpus, []byte(corpusYAML), 0o644))

	out, err := run(t, "import", "--db", db, "--file", corpus)
	require.NoError(t, err)
	var status scheduler.ReloadStatus
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, 3, status.Verses)
	assert.Empty(t, status.Error)

	out, err = run(t, "search", "--db", db, "love")
	require.NoError(t, err)
	var result []domain.Verse
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result, 3)
	assert.ElementsMatch(t, []string{"John 3:16", "1 John 4:8"},
		[]string{result[0].Reference, result[1].Reference})
	assert.Equal(t, domain.SparseSentinelText, result[2].Reference)

	out, err = run(t, "lookup", "--db", db, "John 3:16-18")
	require.NoError(t, err)
	var verses []domain.Verse
	require.NoError(t, json.Unmarshal([]byte(out), &verses))
	require.Len(t, verses, 2)
	assert.Equal(t, "John 3:16", verses[0].Reference)
	assert.Equal(t, "John 3:17", verses[1].Reference)
}

func TestCommandErrors(t *testing.T) {
	db := filepath.Join(t.TempDir(), "verses.db")

	tests := []struct {
		name string
		args []string
	}{
		{name: "import without file", args: []string{"import", "--db", db}},
		{name: "search without keywords", args: []string{"search", "--db", db}},
		{name: "lookup malformed", args: []string{"lookup", "--db", db, "John 3"}},
		{name: "missing corpus", args: []string{"import", "--db", db, "--file", "/nonexistent/corpus.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "versectl")
}
