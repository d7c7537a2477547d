package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"content-assistant/internal/llm"
)

func summaryPrompt() any {
	return mock.MatchedBy(func(p string) bool { return strings.HasPrefix(p, "Write a concise summary") })
}

func keyPointsPrompt() any {
	return mock.MatchedBy(func(p string) bool { return strings.HasPrefix(p, "Extract the 5 most important points") })
}

func TestSummarizerBuildsSinglePrompt(t *testing.T) {
	m := new(llm.MockCompleter)
	want := "Write a concise summary of the following text:\n\nfirst part\n\nsecond part\n\nCONCISE SUMMARY:"
	m.On("Complete", mock.Anything, want).Return("  A summary.\n", nil).Once()

	out, err := NewSummarizer(m).Summarize(context.Background(), []string{"first part", "second part"})
	require.NoError(t, err)
	assert.Equal(t, "A summary.", out)
	m.AssertExpectations(t)
}

func TestSummarizerPropagatesExternalError(t *testing.T) {
	m := new(llm.MockCompleter)
	cause := &llm.ExternalServiceError{Provider: "openai", Kind: llm.KindQuota, Err: errors.New("429")}
	m.On("Complete", mock.Anything, mock.Anything).Return("", cause).Once()

	_, err := NewSummarizer(m).Summarize(context.Background(), []string{"x"})
	var ext *llm.ExternalServiceError
	require.ErrorAs(t, err, &ext)
	assert.Equal(t, llm.KindQuota, ext.Kind)
	m.AssertNumberOfCalls(t, "Complete", 1)
}

func TestKeyPointExtractor(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "numbered list",
			raw:  "1. One\n2. Two\n3. Three\n4. Four\n5. Five",
			want: []string{"1. One", "2. Two", "3. Three", "4. Four", "5. Five"},
		},
		{
			name: "blank lines and padding",
			raw:  "\n\n  1. One  \n\n   \n2. Two\n\n",
			want: []string{"1. One", "2. Two"},
		},
		{
			name: "windows line endings",
			raw:  "1. One\r\n2. Two\r\n",
			want: []string{"1. One", "2. Two"},
		},
		{
			name: "more than five kept",
			raw:  "a\nb\nc\nd\ne\nf\ng",
			want: []string{"a", "b", "c", "d", "e", "f", "g"},
		},
		{
			name: "whitespace only",
			raw:  " \n\t\n",
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(llm.MockCompleter)
			m.On("Complete", mock.Anything, keyPointsPrompt()).Return(tt.raw, nil).Once()

			got, err := NewKeyPointExtractor(m).Extract(context.Background(), []string{"some text"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			for _, p := range got {
				assert.NotEmpty(t, p)
			}
		})
	}
}

func TestKeyPointExtractorJoinsChunksWithSpace(t *testing.T) {
	m := new(llm.MockCompleter)
	m.On("Complete", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "text:\n\nalpha beta\n\nFORMAT:")
	})).Return("1. alpha", nil).Once()

	_, err := NewKeyPointExtractor(m).Extract(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	m.AssertExpectations(t)
}

func TestAnswererPrompt(t *testing.T) {
	m := new(llm.MockCompleter)
	m.On("Complete", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Context:\nuser: hi {question}\n\nQuestion:\nWhat?\n\n") &&
			strings.HasSuffix(p, `say "I don't have enough information to answer this question."`)
	})).Return(" Paris \n", nil).Once()

	out, err := NewAnswerer(m).Answer(context.Background(), "What?", "user: hi {question}")
	require.NoError(t, err)
	assert.Equal(t, "Paris", out)
	m.AssertExpectations(t)
}

func TestTranscriptContext(t *testing.T) {
	tr := Transcript{
		{Role: RoleUser, Content: "What is Go?"},
		{Role: RoleAssistant, Content: "A language."},
		{Role: RoleUser, Content: "Who made it?"},
	}
	assert.Equal(t, "user: What is Go?\nassistant: A language.\nuser: Who made it?", tr.Context())
	assert.Equal(t, "", Transcript(nil).Context())
	assert.True(t, RoleUser.Valid())
	assert.False(t, Role("system").Valid())
}
