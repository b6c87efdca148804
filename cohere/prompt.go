package cohere

import (
	"fmt"

	"raggen"
)

// BuildPrompt fits the first topK candidates into the context budget. Every
// candidate is normalized to at most maxLength words; if the assembled
// payload's estimate exceeds contextSize minus the output reservation,
// maxLength shrinks proportionally to the overflow (at least by one word)
// and the payload is rebuilt. An unknown estimate counts as fitting, so
// without a tokenizer the first assembly wins.
func (g *Generator) BuildPrompt(req raggen.Request, topK int) (raggen.Prompt, int, error) {
	if topK < 1 {
		return raggen.Prompt{}, 0, fmt.Errorf("%w: topk %d must be at least 1", raggen.ErrInvalidConfig, topK)
	}
	cands := req.Candidates
	if len(cands) > topK {
		cands = cands[:topK]
	}

	budget := g.contextSize - g.maxOutputTokens
	maxLength := max(1, (g.contextSize-promptOverheadTokens)/topK)
	for {
		docs := make([]raggen.ContextDoc, 0, len(cands))
		for i, cand := range cands {
			doc, err := raggen.NormalizeDocument(cand.Doc, maxLength, g.rewrite)
			if err != nil {
				return raggen.Prompt{}, 0, &raggen.DocumentError{DocID: cand.DocID, Index: i, Err: err}
			}
			docs = append(docs, doc)
		}
		p := raggen.Prompt{Query: req.Query.Text, Context: docs}
		estimate := g.EstimateTokens(p)
		if estimate <= budget {
			return p, estimate, nil
		}
		if maxLength == 1 {
			return raggen.Prompt{}, 0, fmt.Errorf("%w: %d tokens estimated against a budget of %d with snippets already at one word",
				raggen.ErrPromptOverflow, estimate, budget)
		}
		shrink := max(1, (estimate-budget)/(topK*4))
		maxLength = max(1, maxLength-shrink)
	}
}
