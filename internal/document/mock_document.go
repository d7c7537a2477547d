package document

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockParser is a mock implementation of Parser using testify/mock.
type MockParser struct {
	mock.Mock
}

func (m *MockParser) Parse(data []byte) ([]Page, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Page), args.Error(1)
}

// MockFetcher is a mock implementation of Fetcher using testify/mock.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, rawURL string) (Article, error) {
	args := m.Called(ctx, rawURL)
	return args.Get(0).(Article), args.Error(1)
}
