package cohere

import (
	"log/slog"
	"net/http"

	"raggen"
)

// Option configures a Generator (functional options pattern).
type Option func(*Generator)

// WithAPIKey sets the credential sent as the Bearer token. New fails
// without one.
func WithAPIKey(key string) Option {
	return func(g *Generator) { g.apiKey = key }
}

// WithPreamble replaces the default system instructions sent ahead of every
// chat turn.
func WithPreamble(text string) Option {
	return func(g *Generator) { g.preamble = text }
}

// WithMaxOutputTokens sets how many tokens of the context window are
// reserved for the completion.
func WithMaxOutputTokens(n int) Option {
	return func(g *Generator) { g.maxOutputTokens = n }
}

// WithTokenCounter installs a tokenizer approximation for prompt sizing.
// Without one the builder accepts the first assembled payload.
func WithTokenCounter(tc raggen.TokenCounter) Option {
	return func(g *Generator) { g.counter = tc }
}

// WithRewriter replaces the bracketed-numeral rewrite applied to snippets.
// A nil rw disables rewriting.
func WithRewriter(rw raggen.Rewriter) Option {
	return func(g *Generator) { g.rewrite = rw }
}

// WithRetryPolicy replaces the default policy (retry forever, one minute
// between attempts).
func WithRetryPolicy(p raggen.RetryPolicy) Option {
	return func(g *Generator) { g.retry = p }
}

// WithHTTPClient sets the HTTP client for API calls. Default has a 2 minute
// timeout. If c is nil, the default client is left unchanged.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Generator) {
		if c != nil {
			g.httpClient = c
		}
	}
}

// WithBaseURL points the adapter at a different API host (e.g. a test
// server or a regional endpoint).
func WithBaseURL(u string) Option {
	return func(g *Generator) { g.baseURL = u }
}

// WithLogger sets the structured logger. If l is nil, slog.Default() is
// kept.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}
