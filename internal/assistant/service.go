package assistant

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"content-assistant/internal/chunker"
	"content-assistant/internal/document"
	"content-assistant/internal/llm"
)

// Recorder receives the outcome of each pipeline operation.
type Recorder interface {
	ObserveOperation(op string, status string, elapsed time.Duration)
}

const (
	OpProcessText     = "process_text"
	OpProcessDocument = "process_document"
	OpProcessURL      = "process_url"
	OpAnswer          = "answer"
)

// ErrNoFetcher is reported by ProcessURL when the service has no web fetcher.
var ErrNoFetcher = errors.New("url processing is not configured")

// Service wires chunking, summarization, key point extraction and question
// answering together. It holds no per-request state.
type Service struct {
	chunks     chunker.Options
	summarizer *Summarizer
	extractor  *KeyPointExtractor
	answerer   *Answerer
	parser     document.Parser
	fetcher    document.Fetcher
	log        *slog.Logger
	rec        Recorder
}

type Option func(*Service)

func WithChunkOptions(opts chunker.Options) Option {
	return func(s *Service) { s.chunks = opts }
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func WithRecorder(rec Recorder) Option {
	return func(s *Service) { s.rec = rec }
}

func WithFetcher(f document.Fetcher) Option {
	return func(s *Service) { s.fetcher = f }
}

func NewService(c llm.Completer, parser document.Parser, opts ...Option) *Service {
	s := &Service{
		chunks:     chunker.DefaultOptions(),
		summarizer: NewSummarizer(c),
		extractor:  NewKeyPointExtractor(c),
		answerer:   NewAnswerer(c),
		parser:     parser,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessText chunks text and runs the summarizer and key point extractor
// concurrently. A failure of either yields an error result with no partial output.
func (s *Service) ProcessText(ctx context.Context, text string) ProcessingResult {
	start := time.Now()
	res := s.processText(ctx, text)
	s.observe(OpProcessText, res.Status, start)
	return res
}

func (s *Service) processText(ctx context.Context, text string) ProcessingResult {
	chunks, err := chunker.Split(text, s.chunks)
	if err != nil {
		s.log.Error("chunking failed", "err", err)
		return processingFailure(err)
	}
	texts := chunker.Texts(chunks)
	s.log.Debug("text chunked", "chars", len([]rune(text)), "chunks", len(texts))

	var (
		summary   string
		keyPoints []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.summarizer.Summarize(gctx, texts)
		return err
	})
	g.Go(func() error {
		var err error
		keyPoints, err = s.extractor.Extract(gctx, texts)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("text processing failed", "err", err)
		return processingFailure(err)
	}
	return ProcessingResult{Status: StatusSuccess, Summary: summary, KeyPoints: keyPoints}
}

// ProcessDocument extracts the text of a PDF and processes it.
func (s *Service) ProcessDocument(ctx context.Context, data []byte, filename string) ProcessingResult {
	start := time.Now()
	res := s.processDocument(ctx, data, filename)
	s.observe(OpProcessDocument, res.Status, start)
	return res
}

func (s *Service) processDocument(ctx context.Context, data []byte, filename string) ProcessingResult {
	text, err := document.ExtractText(s.parser, data)
	if err != nil {
		s.log.Error("document extraction failed", "filename", filename, "err", err)
		return processingFailure(err)
	}
	res := s.processText(ctx, text)
	if res.OK() {
		res.Source = &Source{Type: "pdf", Filename: filename}
	}
	return res
}

// ProcessURL downloads the readable text of a web page and processes it.
func (s *Service) ProcessURL(ctx context.Context, rawURL string) ProcessingResult {
	start := time.Now()
	res := s.processURL(ctx, rawURL)
	s.observe(OpProcessURL, res.Status, start)
	return res
}

func (s *Service) processURL(ctx context.Context, rawURL string) ProcessingResult {
	if s.fetcher == nil {
		return processingFailure(ErrNoFetcher)
	}
	article, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		s.log.Error("page fetch failed", "url", rawURL, "err", err)
		return processingFailure(err)
	}
	res := s.processText(ctx, article.Text)
	if res.OK() {
		res.Source = &Source{Type: "url", URL: article.URL, Title: article.Title}
	}
	return res
}

// AnswerQuestion answers question from the transcript, which is only read.
func (s *Service) AnswerQuestion(ctx context.Context, question string, transcript Transcript) AnswerResult {
	start := time.Now()
	res := s.answerQuestion(ctx, question, transcript)
	s.observe(OpAnswer, res.Status, start)
	return res
}

func (s *Service) answerQuestion(ctx context.Context, question string, transcript Transcript) AnswerResult {
	answer, err := s.answerer.Answer(ctx, question, transcript.Context())
	if err != nil {
		s.log.Error("answer failed", "turns", len(transcript), "err", err)
		return answerFailure(err)
	}
	return AnswerResult{Status: StatusSuccess, Answer: answer}
}

func (s *Service) observe(op string, status Status, start time.Time) {
	if s.rec != nil {
		s.rec.ObserveOperation(op, string(status), time.Since(start))
	}
}
