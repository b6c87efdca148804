// Package fixtext repairs text damaged by encoding mix-ups and normalizes
// whitespace for prompt assembly.
package fixtext

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// mojibakeMarkers are sequences that almost never occur in clean text but
// always occur when UTF-8 bytes were decoded as a single-byte Latin
// encoding: "Ã" for mangled Latin accents, "â€" for mangled punctuation,
// "Â" for mangled NBSP and symbols.
var mojibakeMarkers = []string{"Ã", "â€", "Â"}

// repairPasses bounds repair iterations; twice-mangled text needs two.
const repairPasses = 3

// Repair undoes the classic mojibake damage where UTF-8 text was decoded as
// Windows-1252 or Latin-1 ("cafÃ©" for "café"). Text that does not look
// damaged, or whose reinterpretation is not valid UTF-8, is returned
// unchanged.
func Repair(s string) string {
	for i := 0; i < repairPasses; i++ {
		if damageScore(s) == 0 {
			return s
		}
		fixed, ok := reencode(s)
		if !ok {
			return s
		}
		s = fixed
	}
	return s
}

func damageScore(s string) int {
	n := 0
	for _, marker := range mojibakeMarkers {
		n += strings.Count(s, marker)
	}
	return n
}

// reencode maps each rune back to the byte it was decoded from and
// reinterprets the result as UTF-8. Windows-1252 is tried first because it
// covers the punctuation range; Latin-1 catches the rest.
func reencode(s string) (string, bool) {
	score := damageScore(s)
	for _, cm := range []*charmap.Charmap{charmap.Windows1252, charmap.ISO8859_1} {
		out, err := cm.NewEncoder().String(s)
		if err != nil {
			continue
		}
		if !utf8.ValidString(out) {
			continue
		}
		if damageScore(out) >= score {
			continue
		}
		return out, true
	}
	return s, false
}

// FirstWords returns the first n whitespace-separated words of s joined by
// single spaces, collapsing all whitespace runs. n below 1 yields "".
func FirstWords(s string, n int) string {
	if n < 1 {
		return ""
	}
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
