package document

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

const defaultFetchTimeout = 30 * time.Second

// Article is the readable content of a web page.
type Article struct {
	URL   string
	Title string
	Text  string
}

// Fetcher retrieves the readable text behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Article, error)
}

// FetchError reports a page that could not be downloaded or yielded no text.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch %s: %v", e.URL, e.Err) }

func (e *FetchError) Unwrap() error { return e.Err }

var (
	ErrInvalidURL = errors.New("url must be absolute http or https")
	ErrNoContent  = errors.New("page has no readable text")
)

// URLFetcher downloads a page and strips it to its main article text.
type URLFetcher struct {
	client *http.Client
}

func NewURLFetcher(timeout time.Duration) *URLFetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &URLFetcher{client: &http.Client{Timeout: timeout}}
}

func (f *URLFetcher) Fetch(ctx context.Context, rawURL string) (Article, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Article{}, &FetchError{URL: rawURL, Err: ErrInvalidURL}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Article{}, &FetchError{URL: rawURL, Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return Article{}, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return Article{}, &FetchError{URL: rawURL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	article, err := readability.FromReader(resp.Body, u)
	if err != nil {
		return Article{}, &FetchError{URL: rawURL, Err: err}
	}
	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return Article{}, &FetchError{URL: rawURL, Err: ErrNoContent}
	}
	return Article{URL: u.String(), Title: article.Title, Text: text}, nil
}
