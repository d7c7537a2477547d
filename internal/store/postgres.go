package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const uniqueViolation = "23505"

type PostgresStore struct {
	db *sql.DB
}

// NewPostgres opens the database and applies pending migrations.
func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db, "up", 0); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

// Open connects through the pgx stdlib driver and verifies the connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// DB exposes the handle for migrations and admin tooling.
func (s *PostgresStore) DB() *sql.DB { return s.db }

func (s *PostgresStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) CreateUser(ctx context.Context, u NewUser) (User, error) {
	out := User{ID: uuid.New(), Email: u.Email, Username: u.Username, PasswordHash: u.PasswordHash}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users(id, email, username, password_hash)
		VALUES($1,$2,$3,$4)
		RETURNING is_active, created_at, updated_at`,
		out.ID, u.Email, u.Username, u.PasswordHash,
	).Scan(&out.IsActive, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return User{}, mapUserError(err)
	}
	return out, nil
}

func mapUserError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case "users_email_key":
			return ErrEmailTaken
		case "users_username_key":
			return ErrUsernameTaken
		}
	}
	return fmt.Errorf("create user: %w", err)
}

const userColumns = `id, email, username, password_hash, is_active, created_at, updated_at`

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (s *PostgresStore) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email))
}

func (s *PostgresStore) CreateChat(ctx context.Context, userID uuid.UUID, title string) (Chat, error) {
	c := Chat{ID: uuid.New(), UserID: userID, Title: title}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO chats(id, user_id, title) VALUES($1,$2,$3)
		RETURNING created_at, updated_at`,
		c.ID, userID, title,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Chat{}, fmt.Errorf("create chat: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) ListChats(ctx context.Context, userID uuid.UUID, skip, limit int) ([]ChatSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.title, c.created_at, c.updated_at, COUNT(m.id)
		FROM chats c
		LEFT JOIN messages m ON m.chat_id = c.id
		WHERE c.user_id = $1
		GROUP BY c.id
		ORDER BY c.updated_at DESC
		OFFSET $2 LIMIT $3`,
		userID, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ChatSummary{}
	for rows.Next() {
		var c ChatSummary
		if err := rows.Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt, &c.MessageCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetChat(ctx context.Context, userID, chatID uuid.UUID) (Chat, error) {
	var c Chat
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, created_at, updated_at FROM chats WHERE id=$1 AND user_id=$2`,
		chatID, userID,
	).Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Chat{}, ErrNotFound
	}
	return c, err
}

func (s *PostgresStore) DeleteChat(ctx context.Context, userID, chatID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chats WHERE id=$1 AND user_id=$2`, chatID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) AddMessage(ctx context.Context, chatID uuid.UUID, m NewMessage) (Message, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Message{}, err
	}
	defer tx.Rollback()

	var metadata any
	if len(m.Metadata) > 0 {
		metadata = string(m.Metadata)
	}
	out := Message{ID: uuid.New(), ChatID: chatID, Role: m.Role, Content: m.Content, Metadata: m.Metadata}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO messages(id, chat_id, role, content, metadata)
		VALUES($1,$2,$3,$4,$5)
		RETURNING created_at`,
		out.ID, chatID, m.Role, m.Content, metadata,
	).Scan(&out.CreatedAt)
	if err != nil {
		return Message{}, fmt.Errorf("insert message: %w", err)
	}
	res, err := tx.ExecContext(ctx, `UPDATE chats SET updated_at=$1 WHERE id=$2`, out.CreatedAt, chatID)
	if err != nil {
		return Message{}, fmt.Errorf("touch chat: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Message{}, ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return Message{}, err
	}
	return out, nil
}

func (s *PostgresStore) ListMessages(ctx context.Context, chatID uuid.UUID) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, role, content, metadata, created_at
		FROM messages WHERE chat_id=$1 ORDER BY seq`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Message{}
	for rows.Next() {
		var (
			m        Message
			metadata []byte
		)
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &metadata, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.ChatID = chatID
		if len(metadata) > 0 {
			m.Metadata = metadata
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
