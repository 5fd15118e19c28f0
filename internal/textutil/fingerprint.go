package textutil

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// tokenSplitPattern matches non-alphanumeric character sequences for tokenization.
var tokenSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Fingerprint represents a term-frequency vector over a game title.
type Fingerprint struct {
	tokens map[string]float64
	norm   float64
}

// NewFingerprint creates a fingerprint from a title. Release tags are ignored
// so "Tetris (World) (Rev 1)" and "tetris" compare equal.
// Returns nil if the title produces no tokens.
func NewFingerprint(title string) *Fingerprint {
	tokens := Tokenize(StripTags(title))
	if len(tokens) == 0 {
		return nil
	}
	counts := make(map[string]float64, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	var norm float64
	for _, count := range counts {
		norm += count * count
	}
	return &Fingerprint{
		tokens: counts,
		norm:   math.Sqrt(norm),
	}
}

// Tokenize splits text into lowercase tokens. Single letters are dropped but
// numbers are kept, since sequels differ only by them.
func Tokenize(text string) []string {
	lowered := strings.ToLower(text)
	raw := tokenSplitPattern.Split(lowered, -1)
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		if token == "" {
			continue
		}
		if len(token) < 2 && !unicode.IsDigit(rune(token[0])) {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// TokenCount returns the number of unique tokens in the fingerprint.
func (f *Fingerprint) TokenCount() int {
	if f == nil {
		return 0
	}
	return len(f.tokens)
}

// CosineSimilarity scores how closely two titles match, from 0 (no shared
// tokens) to 1 (same token counts). A nil fingerprint scores 0, so untitled
// or symbol-only titles never suggest anything.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	if len(b.tokens) < len(a.tokens) {
		a, b = b, a
	}
	var dot float64
	for token, count := range a.tokens {
		dot += count * b.tokens[token]
	}
	return dot / (a.norm * b.norm)
}
