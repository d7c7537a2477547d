package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type NewUser struct {
	Email        string
	Username     string
	PasswordHash string
}

type Chat struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatSummary is a chat without its messages.
type ChatSummary struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

type Message struct {
	ID        uuid.UUID       `json:"id"`
	ChatID    uuid.UUID       `json:"chat_id"`
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	Metadata  json.RawMessage `json:"message_metadata"`
	CreatedAt time.Time       `json:"created_at"`
}

type NewMessage struct {
	Role     string
	Content  string
	Metadata json.RawMessage
}

// Store defines the persistence contract for users, chats and messages.
// Chat lookups are scoped to the owning user; another user's chat is ErrNotFound.
type Store interface {
	CreateUser(ctx context.Context, u NewUser) (User, error)
	GetUser(ctx context.Context, id uuid.UUID) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)

	CreateChat(ctx context.Context, userID uuid.UUID, title string) (Chat, error)
	ListChats(ctx context.Context, userID uuid.UUID, skip, limit int) ([]ChatSummary, error)
	GetChat(ctx context.Context, userID, chatID uuid.UUID) (Chat, error)
	DeleteChat(ctx context.Context, userID, chatID uuid.UUID) error

	// AddMessage appends a message and moves the chat's updated_at to its time.
	AddMessage(ctx context.Context, chatID uuid.UUID, m NewMessage) (Message, error)
	// ListMessages returns a chat's messages oldest first.
	ListMessages(ctx context.Context, chatID uuid.UUID) ([]Message, error)

	Ping(ctx context.Context) error
	Close() error
}
