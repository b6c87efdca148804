package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"raggen"
	"raggen/preamble"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDefaults(t *testing.T) {
	t.Parallel()
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "command-r-plus", cfg.Model)
	assert.Equal(t, 128000, cfg.ContextSize)
	assert.Equal(t, 1500, cfg.MaxOutputTokens)
	assert.Equal(t, 20, cfg.TopK)
	assert.Equal(t, 1, cfg.Concurrency)
	assert.Equal(t, preamble.Default, cfg.Preamble.Profile)
	assert.Equal(t, 60, cfg.Retry.IntervalSeconds)
}

func TestParse_EmptyKeepsDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestParse_OverridesMergeWithDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Parse([]byte(`
model: command-r
topk: 5
concurrency: 4
chars_per_token: 4
preamble:
  profile: biomedical
retry:
  max_attempts: 2
  interval_seconds: 3
`))
	require.NoError(t, err)

	assert.Equal(t, "command-r", cfg.Model)
	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, preamble.Biomedical, cfg.Preamble.Profile)
	assert.Equal(t, 2, cfg.Retry.MaxAttempts)
	assert.Equal(t, 3, cfg.Retry.IntervalSeconds)

	// Untouched keys keep their defaults.
	assert.Equal(t, 128000, cfg.ContextSize)
	assert.Equal(t, 1500, cfg.MaxOutputTokens)
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	t.Parallel()
	_, err := Parse([]byte("modle: command-r\n"))
	require.ErrorIs(t, err, raggen.ErrInvalidConfig)
}

func TestParse_InvalidValues(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		yaml string
	}{
		{"empty model", `model: ""`},
		{"zero context", "context_size: 0"},
		{"zero max output", "max_output_tokens: 0"},
		{"output exceeds context", "context_size: 1000\nmax_output_tokens: 1000"},
		{"zero topk", "topk: 0"},
		{"zero concurrency", "concurrency: 0"},
		{"negative chars per token", "chars_per_token: -1"},
		{"negative attempts", "retry:\n  max_attempts: -1"},
		{"negative interval", "retry:\n  interval_seconds: -5"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.yaml))
			require.ErrorIs(t, err, raggen.ErrInvalidConfig)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: command-r\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "command-r", cfg.Model)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.yaml")
}

func TestConfig_RetryPolicy(t *testing.T) {
	t.Parallel()
	cfg := Defaults()
	cfg.Retry = RetryConfig{MaxAttempts: 2, IntervalSeconds: 3}

	p := cfg.RetryPolicy()
	assert.Equal(t, 2, p.MaxAttempts)
	assert.Equal(t, 3*time.Second, p.Interval)
}

func TestConfig_TokenCounter(t *testing.T) {
	t.Parallel()
	cfg := Defaults()
	assert.Nil(t, cfg.TokenCounter())

	cfg.CharsPerToken = 4
	counter := cfg.TokenCounter()
	require.NotNil(t, counter)
	n, err := counter.Count("12345678")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
