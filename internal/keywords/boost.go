package keywords

import (
	"path/filepath"
	"strings"
)

// Boost weights in precedence order. A candidate receives the single
// strongest matching boost; ties between rules go to the earlier rule.
const (
	// BoostStemExact: document-name stem exactly equals a keyword.
	BoostStemExact = 0.50

	// BoostNameSegment: keyword is a delimited segment of the name.
	BoostNameSegment = 0.45

	// BoostChunkPrefix: keyword appears in the head of the chunk text.
	BoostChunkPrefix = 0.40

	// BoostNameContains: keyword appears anywhere in the name.
	BoostNameContains = 0.35

	// BoostChunkContains: keyword appears anywhere in the chunk text.
	BoostChunkContains = 0.30

	// BoostFuzzySegment: a name segment is a near match of the keyword.
	BoostFuzzySegment = 0.25
)

// chunkPrefixWindow is how many leading bytes of a chunk count as its
// head for BoostChunkPrefix.
const chunkPrefixWindow = 50

// Fuzzy matching limits for BoostFuzzySegment.
const (
	maxFuzzyDistance   = 2
	minFuzzyKeywordLen = 4
)

// nameDelimiters split a document name into segments.
const nameDelimiters = "_-. "

// Candidate is the lexical surface of one search hit.
type Candidate struct {
	// DocumentName is the parent document's name.
	DocumentName string

	// ChunkText is the chunk content.
	ChunkText string
}

// BestBoost returns the strongest boost any keyword earns against the
// candidate, evaluating rules strictly in precedence order so a tie
// in magnitude can never reorder them.
func BestBoost(kws []string, c Candidate) float64 {
	if len(kws) == 0 {
		return 0
	}

	name := strings.ToLower(c.DocumentName)
	stem := nameStem(name)
	segments := splitSegments(name)
	text := strings.ToLower(c.ChunkText)
	head := text
	if len(head) > chunkPrefixWindow {
		head = head[:chunkPrefixWindow]
	}

	for _, kw := range kws {
		if kw == stem {
			return BoostStemExact
		}
	}
	for _, kw := range kws {
		for _, seg := range segments {
			if kw == seg {
				return BoostNameSegment
			}
		}
	}
	for _, kw := range kws {
		if strings.Contains(head, kw) {
			return BoostChunkPrefix
		}
	}
	for _, kw := range kws {
		if strings.Contains(name, kw) {
			return BoostNameContains
		}
	}
	for _, kw := range kws {
		if strings.Contains(text, kw) {
			return BoostChunkContains
		}
	}
	for _, kw := range kws {
		if fuzzySegmentMatch(kw, segments) {
			return BoostFuzzySegment
		}
	}
	return 0
}

// nameStem strips the file extension from an already-lowercased name.
func nameStem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// splitSegments splits a lowercased name on the delimiter set.
func splitSegments(name string) []string {
	segments := strings.FieldsFunc(nameStem(name), func(r rune) bool {
		return strings.ContainsRune(nameDelimiters, r)
	})
	return segments
}

// fuzzySegmentMatch reports whether any segment is within the edit
// distance budget of the keyword. Short keywords are excluded: at
// distance 2 they would match almost anything.
func fuzzySegmentMatch(kw string, segments []string) bool {
	kwLen := len([]rune(kw))
	if kwLen < minFuzzyKeywordLen {
		return false
	}
	for _, seg := range segments {
		d := Levenshtein(kw, seg)
		if d <= maxFuzzyDistance && d*2 < kwLen {
			return true
		}
	}
	return false
}
