package raggen

import (
	"strings"
	"unicode/utf8"
)

// TokenCountUnknown is the estimate reported when no tokenizer is available.
// Prompt builders treat an unknown estimate as fitting the budget.
const TokenCountUnknown = -1

// TokenCounter estimates token count for a string.
// Callers can plug in an exact tokenizer; default is no counter at all, in
// which case estimates come back as TokenCountUnknown.
type TokenCounter interface {
	Count(text string) (int, error)
}

// CharFallbackCounter estimates tokens as runes/CharsPerToken.
// Zero value uses 4 chars per token (English average).
type CharFallbackCounter struct {
	CharsPerToken int
}

// Count returns estimated token count: ceil(rune_count / CharsPerToken).
// If CharsPerToken <= 0, uses 4.
func (c *CharFallbackCounter) Count(text string) (int, error) {
	cpt := c.CharsPerToken
	if cpt <= 0 {
		cpt = 4
	}
	n := utf8.RuneCountInString(text)
	return (n + cpt - 1) / cpt, nil
}

// Compile-time check that CharFallbackCounter implements TokenCounter.
var _ TokenCounter = (*CharFallbackCounter)(nil)

// WordCount returns the number of whitespace-separated words in text.
// Usage accounting falls back to word counts when the provider reports none.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
