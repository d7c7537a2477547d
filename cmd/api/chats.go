package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"content-assistant/internal/app"
	"content-assistant/internal/assistant"
	"content-assistant/internal/auth"
	"content-assistant/internal/events"
	"content-assistant/internal/httputil"
	"content-assistant/internal/store"
)

const defaultChatLimit = 100

type createChatRequest struct {
	Title string `json:"title" validate:"required,max=255"`
}

type createMessageRequest struct {
	Content  string          `json:"content" validate:"required"`
	Role     string          `json:"role" validate:"required,oneof=user assistant"`
	Metadata json.RawMessage `json:"message_metadata"`
}

type chatResponse struct {
	store.Chat
	Messages []store.Message `json:"messages"`
}

func listChatsHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.UserFrom(r.Context())
		skip, err := queryInt(r, "skip", 0)
		if err != nil {
			httputil.Fail(deps.Log, w, "skip must be a non-negative integer", err, http.StatusBadRequest)
			return
		}
		limit, err := queryInt(r, "limit", defaultChatLimit)
		if err != nil {
			httputil.Fail(deps.Log, w, "limit must be a non-negative integer", err, http.StatusBadRequest)
			return
		}
		chats, err := deps.Store.ListChats(r.Context(), user.ID, skip, limit)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to list chats", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, chats)
	}
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New("negative value")
	}
	return n, nil
}

func createChatHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.UserFrom(r.Context())
		var req createChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		chat, err := deps.Store.CreateChat(r.Context(), user.ID, req.Title)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to create chat", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, chatResponse{Chat: chat, Messages: []store.Message{}})
	}
}

// loadChat resolves the {chatID} path parameter to a chat owned by the
// current user, writing the error response itself when it cannot.
func loadChat(deps app.Deps, w http.ResponseWriter, r *http.Request) (store.User, store.Chat, bool) {
	user, _ := auth.UserFrom(r.Context())
	chatID, err := uuid.Parse(chi.URLParam(r, "chatID"))
	if err != nil {
		httputil.Fail(deps.Log, w, "invalid chat id", err, http.StatusBadRequest)
		return user, store.Chat{}, false
	}
	chat, err := deps.Store.GetChat(r.Context(), user.ID, chatID)
	if errors.Is(err, store.ErrNotFound) {
		httputil.Fail(deps.Log, w, "Chat not found", err, http.StatusNotFound)
		return user, store.Chat{}, false
	}
	if err != nil {
		httputil.Fail(deps.Log, w, "failed to load chat", err, http.StatusInternalServerError)
		return user, store.Chat{}, false
	}
	return user, chat, true
}

func getChatHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, chat, ok := loadChat(deps, w, r)
		if !ok {
			return
		}
		msgs, err := deps.Store.ListMessages(r.Context(), chat.ID)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to load messages", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, chatResponse{Chat: chat, Messages: msgs})
	}
}

func deleteChatHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.UserFrom(r.Context())
		chatID, err := uuid.Parse(chi.URLParam(r, "chatID"))
		if err != nil {
			httputil.Fail(deps.Log, w, "invalid chat id", err, http.StatusBadRequest)
			return
		}
		err = deps.Store.DeleteChat(r.Context(), user.ID, chatID)
		if errors.Is(err, store.ErrNotFound) {
			httputil.Fail(deps.Log, w, "Chat not found", err, http.StatusNotFound)
			return
		}
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to delete chat", err, http.StatusInternalServerError)
			return
		}
		publish(r.Context(), deps, events.TypeChatDeleted, events.ChatDeleted{ChatID: chatID, UserID: user.ID})
		w.WriteHeader(http.StatusNoContent)
	}
}

// createMessageHandler stores the message and, for user messages, asks the
// assistant to answer from the whole chat. A failed answer is logged and the
// stored user message is still returned.
func createMessageHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, chat, ok := loadChat(deps, w, r)
		if !ok {
			return
		}
		var req createMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		metadata, err := normalizeMetadata(req.Metadata)
		if err != nil {
			httputil.Fail(deps.Log, w, "message_metadata must be a JSON object", err, http.StatusBadRequest)
			return
		}

		ctx := r.Context()
		msg, err := deps.Store.AddMessage(ctx, chat.ID, store.NewMessage{Role: req.Role, Content: req.Content, Metadata: metadata})
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to save message", err, http.StatusInternalServerError)
			return
		}
		publish(ctx, deps, events.TypeMessageCreated, events.MessageCreated{ChatID: chat.ID, MessageID: msg.ID, UserID: user.ID, Role: msg.Role})

		if msg.Role == string(assistant.RoleUser) {
			reply(ctx, deps, user, chat, msg)
		}
		httputil.WriteJSON(w, http.StatusOK, msg)
	}
}

func reply(ctx context.Context, deps app.Deps, user store.User, chat store.Chat, question store.Message) {
	log := deps.Log.With("chat_id", chat.ID)
	history, err := deps.Store.ListMessages(ctx, chat.ID)
	if err != nil {
		log.Error("failed to load transcript", "err", err)
		return
	}
	transcript := make(assistant.Transcript, len(history))
	for i, m := range history {
		transcript[i] = assistant.Turn{Role: assistant.Role(m.Role), Content: m.Content}
	}

	res := deps.Assistant.AnswerQuestion(ctx, question.Content, transcript)
	if !res.OK() {
		log.Warn("assistant could not answer", "message", res.Message)
		return
	}
	answer, err := deps.Store.AddMessage(ctx, chat.ID, store.NewMessage{Role: string(assistant.RoleAssistant), Content: res.Answer})
	if err != nil {
		log.Error("failed to save answer", "err", err)
		return
	}
	publish(ctx, deps, events.TypeMessageCreated, events.MessageCreated{ChatID: chat.ID, MessageID: answer.ID, UserID: user.ID, Role: answer.Role})
}

func normalizeMetadata(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var obj map[string]any
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, err
	}
	return trimmed, nil
}

// publish announces an event without failing the request.
func publish(ctx context.Context, deps app.Deps, t events.Type, payload any) {
	if deps.Events == nil {
		return
	}
	ev, err := events.New(t, payload)
	if err != nil {
		deps.Log.Error("failed to build event", "type", t, "err", err)
		return
	}
	if err := events.PublishWithRetry(ctx, deps.Events, ev, 3, 100*time.Millisecond); err != nil {
		deps.Log.Warn("failed to publish event", "type", t, "id", ev.ID, "err", err)
	}
}
