package raggen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDocument_FieldPriority(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		doc  Document
		want string
	}{
		{"text wins over passage", Document{"text": "from text", "passage": "from passage"}, "from text"},
		{"text wins over all", Document{"text": "from text", "segment": "s", "contents": "c", "passage": "p"}, "from text"},
		{"segment wins over contents", Document{"segment": "from segment", "contents": "from contents"}, "from segment"},
		{"contents wins over passage", Document{"contents": "from contents", "passage": "from passage"}, "from contents"},
		{"passage alone", Document{"passage": "from passage"}, "from passage"},
		{"non-string text skipped", Document{"text": 42, "segment": "from segment"}, "from segment"},
		{"nil text skipped", Document{"text": nil, "passage": "from passage"}, "from passage"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := NormalizeDocument(tt.doc, 100, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Snippet)
		})
	}
}

func TestNormalizeDocument_NoTextField(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		doc  Document
	}{
		{"empty document", Document{}},
		{"title only", Document{"title": "just a title"}},
		{"unrelated fields", Document{"body": "nope", "content": "close but no"}},
		{"non-string values only", Document{"text": 1, "segment": true, "contents": nil, "passage": 2.5}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NormalizeDocument(tt.doc, 100, nil)
			require.ErrorIs(t, err, ErrNoTextField)
		})
	}
}

func TestNormalizeDocument_TruncatesWords(t *testing.T) {
	t.Parallel()
	doc := Document{"text": "one two three four five six seven eight nine ten"}
	got, err := NormalizeDocument(doc, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, "one two three", got.Snippet)
}

func TestNormalizeDocument_CollapsesWhitespace(t *testing.T) {
	t.Parallel()
	doc := Document{"text": "  line one\nline\ttwo   spaced  "}
	got, err := NormalizeDocument(doc, 100, nil)
	require.NoError(t, err)
	assert.Equal(t, "line one line two spaced", got.Snippet)
}

func TestNormalizeDocument_Title(t *testing.T) {
	t.Parallel()
	t.Run("cleaned like the snippet", func(t *testing.T) {
		t.Parallel()
		doc := Document{"text": "body", "title": " The\nTitle "}
		got, err := NormalizeDocument(doc, 100, nil)
		require.NoError(t, err)
		assert.Equal(t, "The Title", got.Title)
	})
	t.Run("absent stays empty", func(t *testing.T) {
		t.Parallel()
		got, err := NormalizeDocument(Document{"text": "body"}, 100, nil)
		require.NoError(t, err)
		assert.Empty(t, got.Title)
	})
	t.Run("non-string ignored", func(t *testing.T) {
		t.Parallel()
		got, err := NormalizeDocument(Document{"text": "body", "title": 7}, 100, nil)
		require.NoError(t, err)
		assert.Empty(t, got.Title)
	})
}

func TestNormalizeDocument_RepairsMojibake(t *testing.T) {
	t.Parallel()
	doc := Document{"text": "cafÃ© culture in SÃ£o Paulo"}
	got, err := NormalizeDocument(doc, 100, nil)
	require.NoError(t, err)
	assert.Equal(t, "café culture in São Paulo", got.Snippet)
}

func TestNormalizeDocument_Rewriter(t *testing.T) {
	t.Parallel()
	doc := Document{"text": "see [12] and [3] for proof"}
	got, err := NormalizeDocument(doc, 100, RewriteBracketedNumbers)
	require.NoError(t, err)
	assert.Equal(t, "see (12) and (3) for proof", got.Snippet)

	got, err = NormalizeDocument(doc, 100, nil)
	require.NoError(t, err)
	assert.Equal(t, "see [12] and [3] for proof", got.Snippet)
}

func TestNormalizeDocument_RewriteAfterTruncation(t *testing.T) {
	t.Parallel()
	doc := Document{"text": "[1] [2] [3] [4]"}
	got, err := NormalizeDocument(doc, 2, RewriteBracketedNumbers)
	require.NoError(t, err)
	assert.Equal(t, "(1) (2)", got.Snippet)
}

func TestRewriteBracketedNumbers(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single", "[3]", "(3)"},
		{"multiple", "[1] then [22]", "(1) then (22)"},
		{"non-numeric untouched", "[abc]", "[abc]"},
		{"unbalanced untouched", "3] and [4", "3] and [4"},
		{"embedded", "mid[5]dle", "mid(5)dle"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, RewriteBracketedNumbers(tt.in))
		})
	}
}
