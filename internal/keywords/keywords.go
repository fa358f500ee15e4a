// Package keywords extracts normalized query keywords and scores
// lexical matches for hybrid search boosting.
package keywords

import (
	"strings"
	"sync"
	"unicode"
)

// maxKeywordLen is the prefix length long tokens are truncated to,
// a crude stemmer for inflected languages.
const maxKeywordLen = 8

// stopwords are dropped from queries before matching. English plus
// Russian question/function words; matching is done after lowercasing.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "are": {}, "was": {}, "were": {}, "what": {},
	"when": {}, "where": {}, "which": {}, "who": {}, "why": {}, "how": {},
	"does": {}, "did": {}, "can": {}, "could": {}, "should": {}, "would": {},
	"about": {}, "with": {}, "from": {}, "this": {}, "that": {}, "have": {},
	"has": {}, "for": {}, "you": {}, "your": {}, "not": {}, "all": {},
	"что": {}, "как": {}, "где": {}, "когда": {}, "почему": {}, "зачем": {},
	"это": {}, "эти": {}, "или": {}, "для": {}, "про": {}, "при": {},
	"есть": {}, "был": {}, "быть": {}, "мне": {}, "мои": {}, "можно": {},
}

// SynonymTable is the hand-curated keyword expansion table: domain
// terms mapped to stems and translations. It is swappable
// configuration data, inherently incomplete by construction, and safe
// for concurrent lookup while being replaced.
type SynonymTable struct {
	mu      sync.RWMutex
	entries map[string][]string
}

// NewSynonymTable creates a table with the given entries. Keys and
// values are lowercased.
func NewSynonymTable(entries map[string][]string) *SynonymTable {
	t := &SynonymTable{}
	t.Replace(entries)
	return t
}

// DefaultSynonyms returns the built-in expansion table.
func DefaultSynonyms() map[string][]string {
	return map[string][]string{
		"golang":     {"go"},
		"kotlin":     {"котлин"},
		"заметки":    {"notes", "note"},
		"заметка":    {"notes", "note"},
		"задача":     {"task", "todo"},
		"задачи":     {"task", "todo"},
		"код":        {"code"},
		"документ":   {"document", "doc"},
		"документы":  {"document", "doc"},
		"корутины":   {"coroutines", "coroutine"},
		"coroutines": {"coroutine"},
	}
}

// Replace swaps the whole table. Used by config hot reload.
func (t *SynonymTable) Replace(entries map[string][]string) {
	normalized := make(map[string][]string, len(entries))
	for k, vs := range entries {
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" {
			continue
		}
		values := make([]string, 0, len(vs))
		for _, v := range vs {
			v = strings.ToLower(strings.TrimSpace(v))
			if v != "" {
				values = append(values, v)
			}
		}
		normalized[key] = values
	}

	t.mu.Lock()
	t.entries = normalized
	t.mu.Unlock()
}

// Lookup returns the expansions for a token, nil when none.
func (t *SynonymTable) Lookup(token string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.entries[token]
}

// Len returns the number of table entries.
func (t *SynonymTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Extract turns a raw query into normalized keywords: lowercase
// tokenization, stopword removal, synonym expansion, then prefix
// truncation of long tokens. Order is stable and duplicates are
// removed so boost evaluation is deterministic.
func Extract(query string, synonyms *SynonymTable) []string {
	tokens := tokenize(query)

	var keywords []string
	seen := make(map[string]struct{})
	add := func(token string) {
		token = truncate(token)
		if _, ok := seen[token]; ok {
			return
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
	}

	for _, token := range tokens {
		if _, stop := stopwords[token]; stop {
			continue
		}
		add(token)
		if synonyms != nil {
			for _, syn := range synonyms.Lookup(token) {
				add(syn)
			}
		}
	}
	return keywords
}

// tokenize lowercases the text and splits it into tokens of letters
// and digits, dropping tokens of length <= 2.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) > 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// truncate cuts a token to the crude-stem prefix length.
func truncate(token string) string {
	runes := []rune(token)
	if len(runes) <= maxKeywordLen {
		return token
	}
	return string(runes[:maxKeywordLen])
}
