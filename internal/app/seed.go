package app

import (
	"context"
	"errors"
	"log/slog"

	"content-assistant/internal/auth"
	"content-assistant/internal/store"
)

const (
	devEmail    = "test@example.com"
	devUsername = "testuser"
	devPassword = "password"
)

// SeedDevUser creates the development login test@example.com / password
// unless it already exists.
func SeedDevUser(ctx context.Context, st store.Store, log *slog.Logger) error {
	_, err := st.GetUserByEmail(ctx, devEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	hash, err := auth.HashPassword(devPassword)
	if err != nil {
		return err
	}
	_, err = st.CreateUser(ctx, store.NewUser{Email: devEmail, Username: devUsername, PasswordHash: hash})
	if errors.Is(err, store.ErrEmailTaken) || errors.Is(err, store.ErrUsernameTaken) {
		return nil
	}
	if err != nil {
		return err
	}
	log.Info("created development user", "email", devEmail)
	return nil
}
