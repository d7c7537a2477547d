package main

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"content-assistant/internal/app"
	"content-assistant/internal/auth"
	"content-assistant/internal/httputil"
	"content-assistant/internal/store"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func registerHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		req.Email = strings.TrimSpace(req.Email)
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to hash password", err, http.StatusInternalServerError)
			return
		}
		user, err := deps.Store.CreateUser(r.Context(), store.NewUser{
			Email:        req.Email,
			Username:     req.Username,
			PasswordHash: hash,
		})
		switch {
		case errors.Is(err, store.ErrEmailTaken):
			httputil.Fail(deps.Log, w, "A user with this email already exists", err, http.StatusBadRequest)
			return
		case errors.Is(err, store.ErrUsernameTaken):
			httputil.Fail(deps.Log, w, "Username already taken", err, http.StatusBadRequest)
			return
		case err != nil:
			httputil.Fail(deps.Log, w, "failed to create user", err, http.StatusInternalServerError)
			return
		}
		deps.Log.Info("user registered", "user_id", user.ID)
		httputil.WriteJSON(w, http.StatusOK, user)
	}
}

// loginHandler takes the OAuth2 password form (username holds the email).
// A JSON body with the same fields, or with email instead of username, also works.
func loginHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeLogin(r)
		if err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		email := strings.TrimSpace(req.Username)
		if email == "" {
			email = strings.TrimSpace(req.Email)
		}
		if email == "" || req.Password == "" {
			httputil.Fail(deps.Log, w, "username and password are required", nil, http.StatusBadRequest)
			return
		}

		user, err := deps.Store.GetUserByEmail(r.Context(), email)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			httputil.Fail(deps.Log, w, "failed to load user", err, http.StatusInternalServerError)
			return
		}
		if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			httputil.Fail(deps.Log, w, "Incorrect email or password", err, http.StatusUnauthorized)
			return
		}

		token, err := deps.Tokens.Issue(user.ID)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to issue token", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
	}
}

func decodeLogin(r *http.Request) (loginRequest, error) {
	var req loginRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}
	if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return req, err
	}
	req.Username = r.FormValue("username")
	req.Password = r.FormValue("password")
	return req, nil
}

func meHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFrom(r.Context())
		if !ok {
			httputil.Fail(deps.Log, w, "Could not validate credentials", nil, http.StatusUnauthorized)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, user)
	}
}
