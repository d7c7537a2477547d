package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"content-assistant/internal/httputil"
	"content-assistant/internal/store"
)

// UserGetter is the slice of the store the middleware needs.
type UserGetter interface {
	GetUser(ctx context.Context, id uuid.UUID) (store.User, error)
}

type userKey struct{}

// WithUser stores the authenticated user on the context.
func WithUser(ctx context.Context, u store.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns the user set by Middleware.
func UserFrom(ctx context.Context) (store.User, bool) {
	u, ok := ctx.Value(userKey{}).(store.User)
	return u, ok
}

const credentialsDetail = "Could not validate credentials"

// Middleware requires a valid bearer token for an active user.
func Middleware(issuer *Issuer, users UserGetter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(log, w, errors.New("missing bearer token"))
				return
			}
			id, err := issuer.Verify(token)
			if err != nil {
				unauthorized(log, w, err)
				return
			}
			user, err := users.GetUser(r.Context(), id)
			if errors.Is(err, store.ErrNotFound) {
				unauthorized(log, w, err)
				return
			}
			if err != nil {
				httputil.Fail(log, w, "failed to load user", err, http.StatusInternalServerError)
				return
			}
			if !user.IsActive {
				httputil.Fail(log, w, "Inactive user", nil, http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func unauthorized(log *slog.Logger, w http.ResponseWriter, err error) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	httputil.Fail(log, w, credentialsDetail, err, http.StatusUnauthorized)
}
