package cohere

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"raggen"
)

// defaultBaseURL is the production API host.
const defaultBaseURL = "https://api.cohere.com"

// chatPath is the non-streamed chat endpoint.
const chatPath = "/v1/chat"

// maxBodySize limits response body reads (10 MB); chat replies are small.
const maxBodySize = 10 << 20

// defaultUserAgent is the User-Agent header value for API requests.
const defaultUserAgent = "raggen/1.0"

// blockedMarker is the phrase the API uses in error messages when the
// safety layer refuses to generate. It is matched here, once, so callers
// deal with raggen.ErrBlockedOutput instead of strings.
const blockedMarker = "blocked output"

// chatRequest is the wire shape of a chat call. Documents ride along as
// {snippet, title} records; the API assigns them ids doc_0, doc_1, ... in
// order, which the citation parser relies on.
type chatRequest struct {
	Model     string              `json:"model"`
	Preamble  string              `json:"preamble,omitempty"`
	Message   string              `json:"message"`
	Documents []raggen.ContextDoc `json:"documents,omitempty"`
	MaxTokens int                 `json:"max_tokens,omitempty"`
}

// ChatResponse is the normalized chat reply. It doubles as the
// ExecRecord.Response payload, so its fields are exported and JSON-tagged.
type ChatResponse struct {
	Text      string     `json:"text"`
	Citations []Citation `json:"citations,omitempty"`
	Meta      *Meta      `json:"meta,omitempty"`
}

// Citation is a span of the reply text attributed to documents. Start and
// End are rune offsets into Text; DocumentIDs are the api-assigned ids of
// the supporting documents ("doc_0", "doc_1", ...).
type Citation struct {
	Start       int      `json:"start"`
	End         int      `json:"end"`
	Text        string   `json:"text"`
	DocumentIDs []string `json:"document_ids"`
}

// Meta carries usage accounting as billed by the provider.
type Meta struct {
	BilledUnits *BilledUnits `json:"billed_units,omitempty"`
}

// BilledUnits is the provider-side token count for one call.
type BilledUnits struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// APIError is a non-2xx reply from the chat endpoint.
// Use errors.As to inspect the status.
type APIError struct {
	Status int
	Body   string
}

// Error implements error.
func (e *APIError) Error() string {
	return fmt.Sprintf("cohere: api status %d: %s", e.Status, e.Body)
}

// Temporary reports whether the failure class is worth retrying: rate
// limits, timeouts, and server-side errors.
func (e *APIError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests ||
		e.Status == http.StatusRequestTimeout ||
		e.Status >= 500
}

// Compile-time check that APIError implements error.
var _ error = (*APIError)(nil)

// apiClient is a minimal client for the chat endpoint.
type apiClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func newAPIClient(apiKey, baseURL string, httpClient *http.Client) *apiClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &apiClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// chat posts one non-streamed chat request and decodes the reply.
// Failed calls come back as raggen.ErrBlockedOutput for safety refusals or
// as *APIError for other non-2xx statuses.
func (c *apiClient) chat(ctx context.Context, payload chatRequest) (*ChatResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("cohere: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("cohere: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cohere: chat request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("cohere: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyError(resp.StatusCode, data)
	}
	var out ChatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("cohere: decode response: %w", err)
	}
	return &out, nil
}

// classifyError maps a failed call onto the error taxonomy. Safety refusals
// become raggen.ErrBlockedOutput here so nothing downstream string-matches.
func classifyError(status int, body []byte) error {
	msg := apiMessage(body)
	if strings.Contains(strings.ToLower(msg), blockedMarker) {
		return fmt.Errorf("%w: %s", raggen.ErrBlockedOutput, msg)
	}
	return &APIError{Status: status, Body: msg}
}

// apiMessage extracts the error message the API wraps in {"message": ...};
// anything else is passed through raw.
func apiMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return e.Message
	}
	return strings.TrimSpace(string(body))
}
