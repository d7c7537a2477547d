package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateUser(ctx context.Context, u NewUser) (User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockStore) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockStore) CreateChat(ctx context.Context, userID uuid.UUID, title string) (Chat, error) {
	args := m.Called(ctx, userID, title)
	return args.Get(0).(Chat), args.Error(1)
}

func (m *MockStore) ListChats(ctx context.Context, userID uuid.UUID, skip, limit int) ([]ChatSummary, error) {
	args := m.Called(ctx, userID, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ChatSummary), args.Error(1)
}

func (m *MockStore) GetChat(ctx context.Context, userID, chatID uuid.UUID) (Chat, error) {
	args := m.Called(ctx, userID, chatID)
	return args.Get(0).(Chat), args.Error(1)
}

func (m *MockStore) DeleteChat(ctx context.Context, userID, chatID uuid.UUID) error {
	args := m.Called(ctx, userID, chatID)
	return args.Error(0)
}

func (m *MockStore) AddMessage(ctx context.Context, chatID uuid.UUID, msg NewMessage) (Message, error) {
	args := m.Called(ctx, chatID, msg)
	return args.Get(0).(Message), args.Error(1)
}

func (m *MockStore) ListMessages(ctx context.Context, chatID uuid.UUID) ([]Message, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Message), args.Error(1)
}

func (m *MockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
