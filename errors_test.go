package raggen

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinels_Prefixed(t *testing.T) {
	t.Parallel()
	sentinels := []error{
		ErrUnsupportedModel,
		ErrMissingAPIKey,
		ErrInvalidConfig,
		ErrBlockedOutput,
		ErrNoTextField,
		ErrPromptOverflow,
	}
	seen := make(map[string]bool)
	for _, err := range sentinels {
		assert.True(t, strings.HasPrefix(err.Error(), "raggen: "), "sentinel %q must carry the module prefix", err)
		assert.False(t, seen[err.Error()], "sentinel message %q duplicated", err)
		seen[err.Error()] = true
	}
}

func TestDocumentError_WrapsSentinel(t *testing.T) {
	t.Parallel()
	inner := fmt.Errorf("%w: want one of text, segment, contents, passage", ErrNoTextField)
	err := &DocumentError{DocID: "msmarco_v2.1_doc_12", Index: 3, Err: inner}

	require.ErrorIs(t, err, ErrNoTextField)

	var docErr *DocumentError
	require.ErrorAs(t, error(err), &docErr)
	assert.Equal(t, 3, docErr.Index)
	assert.Equal(t, "msmarco_v2.1_doc_12", docErr.DocID)

	msg := err.Error()
	assert.Contains(t, msg, "candidate 3")
	assert.Contains(t, msg, "msmarco_v2.1_doc_12")
}

func TestDocumentError_SurvivesWrapping(t *testing.T) {
	t.Parallel()
	err := fmt.Errorf("build failed: %w", &DocumentError{DocID: "d", Index: 0, Err: ErrNoTextField})
	assert.True(t, errors.Is(err, ErrNoTextField))
	var docErr *DocumentError
	assert.True(t, errors.As(err, &docErr))
}
