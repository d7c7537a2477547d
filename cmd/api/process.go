package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"content-assistant/internal/app"
	"content-assistant/internal/assistant"
	"content-assistant/internal/cache"
	"content-assistant/internal/httputil"
)

type processTextRequest struct {
	Text string `json:"text" validate:"required"`
}

type processURLRequest struct {
	URL string `json:"url" validate:"required,http_url"`
}

// Processing failures are domain results: every handler below answers 200
// with the ProcessingResult, including status "error".

func processTextHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req processTextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		key := cache.Key("text", []byte(req.Text))
		res := cachedResult(r, deps, key, func() assistant.ProcessingResult {
			return deps.Assistant.ProcessText(r.Context(), req.Text)
		})
		httputil.WriteJSON(w, http.StatusOK, res)
	}
}

func processPDFHandler(deps app.Deps) http.HandlerFunc {
	maxFileSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		// Validate file size before parsing
		if r.ContentLength > maxFileSize+(1<<20) {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxFileSize+(1<<20))

		file, header, err := r.FormFile("file")
		if err != nil {
			httputil.Fail(deps.Log, w, "file is required", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Size > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(file)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to read file", err, http.StatusInternalServerError)
			return
		}

		key := cache.Key("pdf", append([]byte(header.Filename+"\x00"), data...))
		res := cachedResult(r, deps, key, func() assistant.ProcessingResult {
			return deps.Assistant.ProcessDocument(r.Context(), data, header.Filename)
		})
		httputil.WriteJSON(w, http.StatusOK, res)
	}
}

func processURLHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req processURLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, deps.Assistant.ProcessURL(r.Context(), req.URL))
	}
}

// cachedResult serves a cached result when present and otherwise runs
// compute, caching only successes. Cache errors never fail the request.
func cachedResult(r *http.Request, deps app.Deps, key string, compute func() assistant.ProcessingResult) assistant.ProcessingResult {
	ctx := r.Context()
	cached, err := deps.Cache.GetResult(ctx, key)
	if err != nil {
		deps.Log.Warn("cache read failed", "err", err)
	}
	if cached != nil {
		deps.Log.Info("cache hit", "key", key)
		if deps.Metrics != nil {
			deps.Metrics.CacheLookup(true)
		}
		return *cached
	}
	if deps.Metrics != nil {
		deps.Metrics.CacheLookup(false)
	}

	res := compute()
	if res.OK() {
		if err := deps.Cache.SetResult(ctx, key, &res, deps.Config.CacheDuration()); err != nil {
			deps.Log.Warn("failed to cache result", "err", err)
		}
	}
	return res
}
