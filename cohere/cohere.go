// Package cohere adapts the Cohere chat API (Command R family) to the
// raggen.Generator contract: budgeted prompt building over ranked
// candidates, retried invocation with safety-block short-circuiting, and
// citation-resolved answer segments.
package cohere

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"raggen"
	"raggen/preamble"
)

// Models accepted by New.
const (
	ModelCommandRPlus0824 = "command-r-plus-08-2024"
	ModelCommandRPlus     = "command-r-plus"
	ModelCommandR         = "command-r"
)

// SupportedModels returns the Command R models this adapter accepts.
func SupportedModels() []string {
	return []string{ModelCommandRPlus0824, ModelCommandRPlus, ModelCommandR}
}

// promptOverheadTokens is reserved for the fixed parts of the chat payload
// when sizing per-document snippets.
const promptOverheadTokens = 200

// defaultMaxOutputTokens is the completion reservation carved out of the
// context window unless WithMaxOutputTokens overrides it.
const defaultMaxOutputTokens = 1500

// Generator holds one model configuration. Safe for concurrent use once
// constructed.
type Generator struct {
	model           string
	contextSize     int
	maxOutputTokens int
	apiKey          string
	preamble        string
	counter         raggen.TokenCounter
	rewrite         raggen.Rewriter
	retry           raggen.RetryPolicy
	baseURL         string
	httpClient      *http.Client
	client          *apiClient
	log             *slog.Logger
}

// Compile-time check that Generator implements raggen.Generator.
var _ raggen.Generator = (*Generator)(nil)

// New validates the model and credential and returns a ready generator.
// The credential must be supplied with WithAPIKey; resolving it from the
// environment or elsewhere is the caller's concern. contextSize is the
// model's context window in tokens.
func New(model string, contextSize int, opts ...Option) (*Generator, error) {
	g := &Generator{
		model:           model,
		contextSize:     contextSize,
		maxOutputTokens: defaultMaxOutputTokens,
		preamble:        preamble.DefaultText,
		rewrite:         raggen.RewriteBracketedNumbers,
		log:             slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if !slices.Contains(SupportedModels(), model) {
		return nil, fmt.Errorf("%w: %q (supported: %s)",
			raggen.ErrUnsupportedModel, model, strings.Join(SupportedModels(), ", "))
	}
	if g.apiKey == "" {
		return nil, fmt.Errorf("%w: pass it with WithAPIKey", raggen.ErrMissingAPIKey)
	}
	if contextSize <= promptOverheadTokens {
		return nil, fmt.Errorf("%w: context size %d must exceed the %d-token prompt overhead",
			raggen.ErrInvalidConfig, contextSize, promptOverheadTokens)
	}
	if g.maxOutputTokens < 1 || g.maxOutputTokens >= contextSize {
		return nil, fmt.Errorf("%w: max output tokens %d must be positive and below context size %d",
			raggen.ErrInvalidConfig, g.maxOutputTokens, contextSize)
	}
	g.client = newAPIClient(g.apiKey, g.baseURL, g.httpClient)
	return g, nil
}

// Generate builds the prompt, invokes the chat API under the retry policy,
// and parses the reply into cited answer segments. A safety block is not an
// error: it returns empty segments and a record whose Response is
// raggen.BlockedResponse. Transient call failures are retried per policy;
// anything else fails the invocation.
func (g *Generator) Generate(ctx context.Context, req raggen.Request, topK int) ([]raggen.AnswerSegment, raggen.ExecRecord, error) {
	start := time.Now()
	p, _, err := g.BuildPrompt(req, topK)
	if err != nil {
		return nil, raggen.ExecRecord{}, err
	}

	rec := raggen.ExecRecord{
		ID:          uuid.NewString(),
		Model:       g.model,
		Prompt:      p,
		Candidates:  slices.Clone(p.Context),
		InputTokens: inputTokens(p),
		CreatedAt:   start,
	}

	payload := chatRequest{
		Model:     g.model,
		Preamble:  g.preamble,
		Message:   p.Query,
		Documents: p.Context,
		MaxTokens: g.maxOutputTokens,
	}
	var resp *ChatResponse
	attempts := 0
	op := func() error {
		attempts++
		r, callErr := g.client.chat(ctx, payload)
		if callErr != nil {
			if errors.Is(callErr, raggen.ErrBlockedOutput) {
				return backoff.Permanent(callErr)
			}
			var apiErr *APIError
			if errors.As(callErr, &apiErr) && !apiErr.Temporary() {
				return backoff.Permanent(callErr)
			}
			return callErr
		}
		resp = r
		return nil
	}
	notify := func(callErr error, wait time.Duration) {
		g.log.Warn("chat call failed, retrying",
			"model", g.model, "qid", req.Query.ID, "attempt", attempts, "wait", wait, "error", callErr)
		if g.retry.OnRetry != nil {
			g.retry.OnRetry(callErr, wait)
		}
	}
	err = backoff.RetryNotify(op, g.retry.BackOff(ctx), notify)

	rec.Attempts = attempts
	rec.Elapsed = time.Since(start)
	switch {
	case err == nil:
		segments := parseResponse(resp, len(p.Context))
		rec.Response = resp
		rec.OutputTokens = outputTokens(segments)
		return segments, rec, nil
	case errors.Is(err, raggen.ErrBlockedOutput):
		g.log.Warn("output blocked", "model", g.model, "qid", req.Query.ID)
		rec.Response = raggen.BlockedResponse
		rec.OutputTokens = 0
		return []raggen.AnswerSegment{}, rec, nil
	default:
		return nil, rec, fmt.Errorf("cohere: chat failed after %d attempts: %w", attempts, err)
	}
}

// EstimateTokens reports the approximate token cost of p, or
// raggen.TokenCountUnknown when no tokenizer is configured.
func (g *Generator) EstimateTokens(p raggen.Prompt) int {
	if g.counter == nil {
		return raggen.TokenCountUnknown
	}
	n, err := g.counter.Count(promptText(p))
	if err != nil {
		return raggen.TokenCountUnknown
	}
	return n
}

// CostPer1KTokens reports the price per thousand tokens in the given
// direction. Command R pricing is not tracked, so it always returns -1.
func (g *Generator) CostPer1KTokens(input bool) float64 {
	return -1
}

// promptText flattens the payload's variable parts for token estimation.
// The fixed parts are covered by promptOverheadTokens.
func promptText(p raggen.Prompt) string {
	var b strings.Builder
	b.WriteString(p.Query)
	for _, d := range p.Context {
		b.WriteByte(' ')
		b.WriteString(d.Snippet)
		if d.Title != "" {
			b.WriteByte(' ')
			b.WriteString(d.Title)
		}
	}
	return b.String()
}

// inputTokens is the word-count accounting of what was sent: query words
// plus snippet words. Titles are not counted.
func inputTokens(p raggen.Prompt) int {
	n := raggen.WordCount(p.Query)
	for _, d := range p.Context {
		n += raggen.WordCount(d.Snippet)
	}
	return n
}

// outputTokens is the rune-count accounting of what came back.
func outputTokens(segments []raggen.AnswerSegment) int {
	n := 0
	for _, seg := range segments {
		n += utf8.RuneCountInString(seg.Text)
	}
	return n
}
