package cohere

import (
	"slices"
	"strconv"
	"strings"

	"raggen"
)

// parseResponse turns a chat reply into ordered answer segments. The reply
// text is split into sentences; every citation span is attached to the
// sentences it overlaps, resolved from "doc_N" ids to indexes into the
// prompt context. Malformed or out-of-range ids are dropped. Deterministic
// for a given reply.
func parseResponse(resp *ChatResponse, contextLen int) []raggen.AnswerSegment {
	text := []rune(resp.Text)
	segments := make([]raggen.AnswerSegment, 0, 4)
	for _, b := range sentenceBounds(text) {
		seg := raggen.AnswerSegment{
			Text:      strings.TrimSpace(string(text[b.start:b.end])),
			Citations: []int{},
		}
		if seg.Text == "" {
			continue
		}
		for _, c := range resp.Citations {
			if c.Start >= b.end || c.End <= b.start {
				continue
			}
			for _, id := range c.DocumentIDs {
				if idx, ok := docIndex(id, contextLen); ok && !slices.Contains(seg.Citations, idx) {
					seg.Citations = append(seg.Citations, idx)
				}
			}
		}
		segments = append(segments, seg)
	}
	return segments
}

// docIndex resolves an api-assigned document id ("doc_N") back to the
// position of the document in the prompt context.
func docIndex(id string, contextLen int) (int, bool) {
	num, ok := strings.CutPrefix(id, "doc_")
	if !ok {
		return 0, false
	}
	idx, err := strconv.Atoi(num)
	if err != nil || idx < 0 || idx >= contextLen {
		return 0, false
	}
	return idx, true
}

// span is a half-open rune range [start, end) into the reply text.
type span struct {
	start, end int
}

// sentenceBounds splits text at terminator runs followed by whitespace or
// end of text. Offsets stay in runes so citation spans line up.
func sentenceBounds(text []rune) []span {
	var bounds []span
	start := 0
	for i := 0; i < len(text); i++ {
		if !isTerminator(text[i]) {
			continue
		}
		for i+1 < len(text) && isTerminator(text[i+1]) {
			i++
		}
		if i+1 == len(text) || text[i+1] == ' ' || text[i+1] == '\n' || text[i+1] == '\t' {
			bounds = append(bounds, span{start, i + 1})
			start = i + 1
		}
	}
	if start < len(text) {
		bounds = append(bounds, span{start, len(text)})
	}
	return bounds
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
