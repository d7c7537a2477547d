package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"content-assistant/internal/app"
	"content-assistant/internal/auth"
	"content-assistant/internal/httputil"
)

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", deps.Config.Port),
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		deps.Log.Info("api listening", "addr", srv.Addr, "prefix", deps.Config.APIPrefix, "environment", deps.Config.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Log.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		deps.Log.Error("shutdown failed", "err", err)
	}
}

func newRouter(deps app.Deps) http.Handler {
	r := httputil.NewRouter(deps.Log, deps.Config.AllowedOrigins)

	r.Get("/", rootHandler(deps))
	r.Get("/health", httputil.HealthHandler())
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Route(deps.Config.APIPrefix, func(r chi.Router) {
		r.Post("/auth/register", registerHandler(deps))
		r.Post("/auth/login", loginHandler(deps))

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(deps.Tokens, deps.Store, deps.Log))
			r.Get("/auth/me", meHandler(deps))

			r.Route("/chat", func(r chi.Router) {
				r.Get("/", listChatsHandler(deps))
				r.Post("/", createChatHandler(deps))
				r.Post("/process-text", processTextHandler(deps))
				r.Post("/process-pdf", processPDFHandler(deps))
				r.Post("/process-url", processURLHandler(deps))
				r.Get("/{chatID}", getChatHandler(deps))
				r.Delete("/{chatID}", deleteChatHandler(deps))
				r.Post("/{chatID}/messages", createMessageHandler(deps))
			})
		})
	})
	return r
}

func rootHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Welcome to " + deps.Config.AppName})
	}
}
