// Package api exposes the orchestration service over HTTP (chi router,
// JSON request/response) and over MCP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/devspark/devspark/internal/ideas"
)

const maxRequestBodySize = 1 << 20 // 1MB

// NewHandler returns the HTTP handler for all endpoints: the four
// orchestration operations under /api/github plus /health.
func NewHandler(svc *ideas.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)

	r.Get("/health", handleHealth)

	r.Route("/api/github", func(r chi.Router) {
		r.Post("/suggest", handleSuggest(svc))
		r.Post("/explain", handleExplain(svc))
		r.Post("/roadmap", handleRoadmap(svc))
		r.Post("/contribute", handleContribute(svc))
		r.Get("/ideas", handleListIdeas(svc))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleSuggest(svc *ideas.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req ideas.SuggestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}

		list, err := svc.SuggestIdeas(r.Context(), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, map[string]any{"success": true, "ideas": list})
	}
}

func handleExplain(svc *ideas.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req ideas.ExplainRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}

		explanation, err := svc.ExplainRepo(r.Context(), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, map[string]any{"success": true, "explanation": explanation})
	}
}

func handleRoadmap(svc *ideas.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req struct {
			Topic string `json:"topic"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}

		roadmap, err := svc.GenerateRoadmap(r.Context(), req.Topic)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, map[string]any{"success": true, "roadmap": roadmap})
	}
}

func handleContribute(svc *ideas.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req struct {
			Languages []string `json:"languages"`
			Interests string   `json:"interests,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}

		// Upstream failure degrades to an empty list inside the service;
		// this endpoint always answers success.
		issues := svc.FindContributions(r.Context(), req.Languages)

		writeJSON(w, map[string]any{"success": true, "issues": issues})
	}
}

func handleListIdeas(svc *ideas.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		limit := parseIntParam(r, "limit", 20, 100)

		list, err := svc.ListIdeas(userID, limit)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if list == nil {
			list = []ideas.ProjectIdea{}
		}

		writeJSON(w, map[string]any{"success": true, "ideas": list})
	}
}

// writeServiceError maps service errors onto the response taxonomy:
// validation failures are 400, everything else (generation parse failures,
// upstream errors) is 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var vErr *ideas.ValidationError
	if errors.As(err, &vErr) {
		httpError(w, http.StatusBadRequest, "%s", vErr.Error())
		return
	}

	var pErr *ideas.ParseError
	if errors.As(err, &pErr) {
		slog.Error("generation output rejected", "error", pErr.Err)
		httpError(w, http.StatusInternalServerError, "failed to parse generated response")
		return
	}

	slog.Error("request failed", "error", err)
	httpError(w, http.StatusInternalServerError, "%s", err.Error())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   fmt.Sprintf(format, args...),
	})
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}

// requestLogger logs method, path, status, and duration for every request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
