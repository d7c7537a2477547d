package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"content-assistant/internal/chunker"
	"content-assistant/internal/document"
	"content-assistant/internal/llm"
)

type fakeRecorder struct {
	mu   sync.Mutex
	seen map[string]string
}

func (f *fakeRecorder) ObserveOperation(op, status string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen == nil {
		f.seen = map[string]string{}
	}
	f.seen[op] = status
}

func TestProcessText(t *testing.T) {
	timeout := &llm.ExternalServiceError{Provider: "openai", Kind: llm.KindTimeout, Err: context.DeadlineExceeded}

	tests := []struct {
		name    string
		setup   func(*llm.MockCompleter)
		want    ProcessingResult
		wantMsg string
	}{
		{
			name: "both calls succeed",
			setup: func(m *llm.MockCompleter) {
				m.On("Complete", mock.Anything, summaryPrompt()).Return("Short summary.", nil).Once()
				m.On("Complete", mock.Anything, keyPointsPrompt()).Return("1. First\n\n2. Second\n", nil).Once()
			},
			want: ProcessingResult{Status: StatusSuccess, Summary: "Short summary.", KeyPoints: []string{"1. First", "2. Second"}},
		},
		{
			name: "summary fails",
			setup: func(m *llm.MockCompleter) {
				m.On("Complete", mock.Anything, summaryPrompt()).Return("", timeout).Once()
				m.On("Complete", mock.Anything, keyPointsPrompt()).Return("1. First", nil).Maybe()
			},
			wantMsg: timeout.Error(),
		},
		{
			name: "key points fail",
			setup: func(m *llm.MockCompleter) {
				m.On("Complete", mock.Anything, summaryPrompt()).Return("Short summary.", nil).Maybe()
				m.On("Complete", mock.Anything, keyPointsPrompt()).Return("", errors.New("connection reset")).Once()
			},
			wantMsg: "connection reset",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(llm.MockCompleter)
			tt.setup(m)
			rec := &fakeRecorder{}
			svc := NewService(m, new(document.MockParser), WithRecorder(rec))

			got := svc.ProcessText(context.Background(), "Go is a statically typed language.")
			if tt.wantMsg == "" {
				assert.Equal(t, tt.want, got)
				assert.Equal(t, "success", rec.seen[OpProcessText])
			} else {
				assert.Equal(t, StatusError, got.Status)
				assert.Contains(t, got.Message, tt.wantMsg)
				assert.Empty(t, got.Summary)
				assert.Nil(t, got.KeyPoints)
				assert.Equal(t, "error", rec.seen[OpProcessText])
			}
			m.AssertExpectations(t)
		})
	}
}

func TestProcessTextInvalidChunkOptions(t *testing.T) {
	m := new(llm.MockCompleter)
	svc := NewService(m, nil, WithChunkOptions(chunker.Options{MaxSize: 10, Overlap: 10}))

	got := svc.ProcessText(context.Background(), "anything")
	assert.Equal(t, StatusError, got.Status)
	assert.Contains(t, got.Message, "invalid chunk options")
	m.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestProcessTextSendsEveryChunk(t *testing.T) {
	text := strings.Repeat("word ", 50)
	m := new(llm.MockCompleter)
	m.On("Complete", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.HasPrefix(p, "Write a concise summary") && strings.Count(p, "\n\n") > 3
	})).Return("summary", nil).Once()
	m.On("Complete", mock.Anything, keyPointsPrompt()).Return("1. words", nil).Once()

	svc := NewService(m, nil, WithChunkOptions(chunker.Options{MaxSize: 40, Overlap: 5}))
	got := svc.ProcessText(context.Background(), text)
	require.True(t, got.OK(), got.Message)
	m.AssertExpectations(t)
}

func TestProcessDocument(t *testing.T) {
	data := []byte("%PDF-1.7 fake")

	t.Run("pages concatenated and source attached", func(t *testing.T) {
		p := new(document.MockParser)
		p.On("Parse", data).Return([]document.Page{{Number: 1, Text: "Hello "}, {Number: 2, Text: "world."}}, nil).Once()
		m := new(llm.MockCompleter)
		m.On("Complete", mock.Anything, "Write a concise summary of the following text:\n\nHello world.\n\nCONCISE SUMMARY:").
			Return("A greeting.", nil).Once()
		m.On("Complete", mock.Anything, keyPointsPrompt()).Return("1. Greets the world", nil).Once()

		got := NewService(m, p).ProcessDocument(context.Background(), data, "hello.pdf")
		assert.Equal(t, ProcessingResult{
			Status:    StatusSuccess,
			Summary:   "A greeting.",
			KeyPoints: []string{"1. Greets the world"},
			Source:    &Source{Type: "pdf", Filename: "hello.pdf"},
		}, got)
		m.AssertExpectations(t)
		p.AssertExpectations(t)
	})

	t.Run("parse failure", func(t *testing.T) {
		p := new(document.MockParser)
		p.On("Parse", data).Return(nil, &document.ParseError{Page: 2, Err: errors.New("bad xref")}).Once()
		m := new(llm.MockCompleter)

		got := NewService(m, p).ProcessDocument(context.Background(), data, "broken.pdf")
		assert.Equal(t, StatusError, got.Status)
		assert.Equal(t, "parse document page 2: bad xref", got.Message)
		assert.Nil(t, got.Source)
		m.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	})

	t.Run("no source on completion failure", func(t *testing.T) {
		p := new(document.MockParser)
		p.On("Parse", data).Return([]document.Page{{Number: 1, Text: "x"}}, nil)
		m := new(llm.MockCompleter)
		m.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("down"))

		got := NewService(m, p).ProcessDocument(context.Background(), data, "x.pdf")
		assert.Equal(t, StatusError, got.Status)
		assert.Nil(t, got.Source)
	})
}

func TestProcessURL(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := new(document.MockFetcher)
		f.On("Fetch", ctx, "https://example.com/post").
			Return(document.Article{URL: "https://example.com/post", Title: "Post", Text: "Body text."}, nil).Once()
		m := new(llm.MockCompleter)
		m.On("Complete", mock.Anything, summaryPrompt()).Return("Summary.", nil).Once()
		m.On("Complete", mock.Anything, keyPointsPrompt()).Return("1. Point", nil).Once()

		got := NewService(m, nil, WithFetcher(f)).ProcessURL(ctx, "https://example.com/post")
		require.True(t, got.OK())
		assert.Equal(t, &Source{Type: "url", URL: "https://example.com/post", Title: "Post"}, got.Source)
	})

	t.Run("fetch failure", func(t *testing.T) {
		f := new(document.MockFetcher)
		f.On("Fetch", ctx, "https://example.com/gone").
			Return(document.Article{}, &document.FetchError{URL: "https://example.com/gone", Err: errors.New("unexpected status 404")}).Once()

		got := NewService(new(llm.MockCompleter), nil, WithFetcher(f)).ProcessURL(ctx, "https://example.com/gone")
		assert.Equal(t, StatusError, got.Status)
		assert.Contains(t, got.Message, "404")
	})

	t.Run("no fetcher", func(t *testing.T) {
		got := NewService(new(llm.MockCompleter), nil).ProcessURL(ctx, "https://example.com")
		assert.Equal(t, ProcessingResult{Status: StatusError, Message: ErrNoFetcher.Error()}, got)
	})
}

func TestAnswerQuestion(t *testing.T) {
	transcript := Transcript{{Role: RoleUser, Content: "What is the capital of France?"}}

	t.Run("abstention is a success", func(t *testing.T) {
		m := new(llm.MockCompleter)
		m.On("Complete", mock.Anything, mock.MatchedBy(func(p string) bool {
			return strings.Contains(p, "Context:\nuser: What is the capital of France?\n\nQuestion:\nWhat is the capital of France?")
		})).Return(Abstention, nil).Once()

		got := NewService(m, nil).AnswerQuestion(context.Background(), "What is the capital of France?", transcript)
		assert.Equal(t, AnswerResult{Status: StatusSuccess, Answer: "I don't have enough information to answer this question."}, got)
		m.AssertExpectations(t)
	})

	t.Run("failure collapses to error result", func(t *testing.T) {
		m := new(llm.MockCompleter)
		m.On("Complete", mock.Anything, mock.Anything).
			Return("", &llm.ExternalServiceError{Provider: "openai", Kind: llm.KindAuth, Err: errors.New("invalid api key")}).Once()

		got := NewService(m, nil).AnswerQuestion(context.Background(), "q", transcript)
		assert.Equal(t, StatusError, got.Status)
		assert.Equal(t, "openai completion failed (auth): invalid api key", got.Message)
		assert.Empty(t, got.Answer)
	})

	t.Run("transcript untouched", func(t *testing.T) {
		m := new(llm.MockCompleter)
		m.On("Complete", mock.Anything, mock.Anything).Return("ok", nil)
		before := append(Transcript(nil), transcript...)

		NewService(m, nil).AnswerQuestion(context.Background(), "q", transcript)
		assert.Equal(t, before, transcript)
	})
}

func TestProcessingResultJSON(t *testing.T) {
	tests := []struct {
		name string
		res  ProcessingResult
		want string
	}{
		{
			name: "success keeps empty key points",
			res:  ProcessingResult{Status: StatusSuccess, Summary: "s"},
			want: `{"status":"success","summary":"s","key_points":[]}`,
		},
		{
			name: "success with source",
			res:  ProcessingResult{Status: StatusSuccess, Summary: "s", KeyPoints: []string{"a"}, Source: &Source{Type: "pdf", Filename: "f.pdf"}},
			want: `{"status":"success","summary":"s","key_points":["a"],"source":{"type":"pdf","filename":"f.pdf"}}`,
		},
		{
			name: "error carries only message",
			res:  ProcessingResult{Status: StatusError, Message: "boom", Summary: "ignored"},
			want: `{"status":"error","message":"boom"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.res)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))
		})
	}
}
