package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_DropsStopwordsAndShortTokens(t *testing.T) {
	kws := Extract("What are the Kotlin coroutines?", nil)
	assert.Equal(t, []string{"kotlin", "coroutin"}, kws)
}

func TestExtract_TruncatesLongTokens(t *testing.T) {
	kws := Extract("internationalization", nil)
	require.Len(t, kws, 1)
	assert.Equal(t, "internat", kws[0])
	assert.Len(t, []rune(kws[0]), maxKeywordLen)
}

func TestExtract_ExpandsSynonyms(t *testing.T) {
	table := NewSynonymTable(DefaultSynonyms())

	kws := Extract("kotlin coroutines", table)
	assert.Equal(t, []string{"kotlin", "котлин", "coroutin"}, kws)
}

func TestExtract_SynonymLookupBeforeTruncation(t *testing.T) {
	// "coroutines" exceeds the prefix length but must still hit its
	// table entry before being cut down.
	table := NewSynonymTable(map[string][]string{"coroutines": {"suspend"}})

	kws := Extract("coroutines", table)
	assert.Equal(t, []string{"coroutin", "suspend"}, kws)
}

func TestExtract_DeduplicatesPreservingOrder(t *testing.T) {
	kws := Extract("tasks tasks notes tasks", nil)
	assert.Equal(t, []string{"tasks", "notes"}, kws)
}

func TestExtract_RussianQuery(t *testing.T) {
	table := NewSynonymTable(DefaultSynonyms())

	kws := Extract("Где мои заметки про код?", table)
	assert.Equal(t, []string{"заметки", "notes", "note", "код", "code"}, kws)
}

func TestExtract_EmptyAndNoiseQueries(t *testing.T) {
	assert.Empty(t, Extract("", nil))
	assert.Empty(t, Extract("a of in!!!", nil))
	assert.Empty(t, Extract("what are the", nil))
}

func TestSynonymTable_ReplaceIsVisible(t *testing.T) {
	table := NewSynonymTable(map[string][]string{"old": {"stale"}})
	require.Equal(t, []string{"stale"}, table.Lookup("old"))

	table.Replace(map[string][]string{"New": {"Fresh", " "}})
	assert.Nil(t, table.Lookup("old"))
	assert.Equal(t, []string{"fresh"}, table.Lookup("new"))
	assert.Equal(t, 1, table.Len())
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"kotlin", "kotlin", 0},
		{"kotlin", "kotlyn", 1},
		{"notes", "note", 1},
		{"корутины", "корутина", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}
