package raggen

import (
	"context"
	"time"
)

// Document field names probed for passage text, plus the optional title.
const (
	FieldText     = "text"
	FieldSegment  = "segment"
	FieldContents = "contents"
	FieldPassage  = "passage"
	FieldTitle    = "title"
)

// TextFields returns the document fields that may carry passage text,
// highest priority first. The first string-valued field present wins.
func TextFields() []string {
	return []string{FieldText, FieldSegment, FieldContents, FieldPassage}
}

// BlockedResponse is recorded as ExecRecord.Response when the provider
// refused to generate and the invocation ended with empty segments.
const BlockedResponse = "Blocked output"

// Query is the question an answer is generated for.
type Query struct {
	ID   string `json:"qid"`
	Text string `json:"text"`
}

// Document is one retrieved record. Retrieval pipelines disagree on field
// names and value types, so it stays a raw map; only string values satisfy
// a text field.
type Document map[string]any

// Candidate pairs a retrieved document with its rank score. Candidates
// arrive in rank order and that order is preserved end to end.
type Candidate struct {
	DocID string   `json:"docid"`
	Score float64  `json:"score"`
	Doc   Document `json:"doc"`
}

// Request is one unit of generation work: a query plus its ranked candidates.
type Request struct {
	Query      Query       `json:"query"`
	Candidates []Candidate `json:"candidates"`
}

// ContextDoc is one cleaned document as sent to the provider.
type ContextDoc struct {
	Snippet string `json:"snippet"`
	Title   string `json:"title,omitempty"`
}

// Prompt is the assembled context payload for one invocation. Builders
// construct a fresh Prompt on every sizing pass instead of mutating one.
type Prompt struct {
	Query   string       `json:"query"`
	Context []ContextDoc `json:"context"`
}

// AnswerSegment is one ordered unit of generated text. Citations are
// zero-based indexes into the prompt context, first-seen order, no
// duplicates.
type AnswerSegment struct {
	Text      string `json:"text"`
	Citations []int  `json:"citations"`
}

// ExecRecord captures one invocation for audit and cost accounting;
// immutable once returned. Response holds the provider's normalized reply,
// or BlockedResponse when generation was refused.
type ExecRecord struct {
	ID           string        `json:"id"`
	Model        string        `json:"model"`
	Prompt       Prompt        `json:"prompt"`
	Response     any           `json:"response"`
	InputTokens  int           `json:"input_token_count"`
	OutputTokens int           `json:"output_token_count"`
	Candidates   []ContextDoc  `json:"candidates"`
	Attempts     int           `json:"attempts"`
	Elapsed      time.Duration `json:"elapsed"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Result is the outcome of one request in a batch run. Err is empty on
// success; a blocked invocation is a success with empty Segments.
type Result struct {
	Query    Query           `json:"query"`
	Segments []AnswerSegment `json:"answer"`
	Exec     ExecRecord      `json:"exec"`
	Err      string          `json:"error,omitempty"`
}

// Generator produces cited answer segments for one provider model.
//
// BuildPrompt fits the first topK candidates into the model's context budget
// and reports the token estimate it settled on (TokenCountUnknown when no
// tokenizer is configured). Generate runs a full invocation: prompt building,
// provider calls under the retry policy, and response parsing. EstimateTokens
// and CostPer1KTokens return -1 when the model has no tokenizer or pricing
// configured.
type Generator interface {
	BuildPrompt(req Request, topK int) (Prompt, int, error)
	Generate(ctx context.Context, req Request, topK int) ([]AnswerSegment, ExecRecord, error)
	EstimateTokens(p Prompt) int
	CostPer1KTokens(input bool) float64
}
