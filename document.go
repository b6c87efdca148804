package raggen

import (
	"fmt"
	"regexp"
	"strings"

	"raggen/internal/fixtext"
)

// Rewriter post-processes a cleaned snippet field. The builder default is
// RewriteBracketedNumbers; nil disables rewriting.
type Rewriter func(string) string

var bracketedNumber = regexp.MustCompile(`\[(\d+)\]`)

// RewriteBracketedNumbers turns bracketed numerals like "[12]" into "(12)"
// so passage text cannot be mistaken for citation markers in the answer.
func RewriteBracketedNumbers(s string) string {
	return bracketedNumber.ReplaceAllString(s, "($1)")
}

// NormalizeDocument reduces a retrieved document to the snippet and optional
// title sent to the provider. Text comes from the highest-priority field
// present (see TextFields); a document with none of them fails with
// ErrNoTextField. Each field is trimmed, repaired, collapsed to single-space
// whitespace, and cut to its first maxWords words.
func NormalizeDocument(doc Document, maxWords int, rw Rewriter) (ContextDoc, error) {
	text, ok := textField(doc)
	if !ok {
		return ContextDoc{}, fmt.Errorf("%w: want one of %s", ErrNoTextField, strings.Join(TextFields(), ", "))
	}
	out := ContextDoc{Snippet: cleanField(text, maxWords, rw)}
	if title, ok := doc[FieldTitle].(string); ok {
		out.Title = cleanField(title, maxWords, rw)
	}
	return out, nil
}

func textField(doc Document) (string, bool) {
	for _, name := range TextFields() {
		if s, ok := doc[name].(string); ok {
			return s, true
		}
	}
	return "", false
}

// cleanField applies the normalization pipeline in a fixed order; truncation
// happens after repair so word boundaries are counted on repaired text.
func cleanField(s string, maxWords int, rw Rewriter) string {
	s = strings.TrimSpace(s)
	s = fixtext.Repair(s)
	s = strings.ReplaceAll(s, "\n", " ")
	s = fixtext.FirstWords(s, maxWords)
	if rw != nil {
		s = rw(s)
	}
	return s
}
