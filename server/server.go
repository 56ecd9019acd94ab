// Package server exposes the orchestrator as a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/uhatikus/UAIssistant/model"
	"github.com/uhatikus/UAIssistant/storage"
)

// Orchestrator is the service surface the handlers consume.
type Orchestrator interface {
	ListAssistants(ctx context.Context) ([]model.Assistant, error)
	CreateAssistant(ctx context.Context, source model.LLMSource, name, instructions, modelName string) (model.Assistant, error)
	UpdateAssistant(ctx context.Context, assistantID, name, instructions, modelName string) (model.Assistant, error)
	DeleteAssistant(ctx context.Context, assistantID string) error

	ListThreads(ctx context.Context, assistantID string) ([]model.Thread, error)
	CreateThread(ctx context.Context, assistantID string) (model.Thread, []model.MessageItem, error)
	UpdateThread(ctx context.Context, threadID, name string) error
	DeleteThread(ctx context.Context, threadID string) error

	ListMessages(ctx context.Context, threadID string) ([]model.MessageItem, error)
	PostThreadMessage(ctx context.Context, threadID, message string) ([]model.MessageItem, error)
	SearchMessages(ctx context.Context, assistantID, query string) ([]storage.MessageMatch, error)

	RefreshTools(ctx context.Context, assistantID string) error
}

// Server is the HTTP front of the backend.
type Server struct {
	service    Orchestrator
	httpServer *http.Server
}

// New builds the server with all routes registered.
func New(addr string, service Orchestrator) *Server {
	s := &Server{service: service}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/assistants", s.handleListAssistants)
	mux.HandleFunc("POST /api/assistants", s.handleCreateAssistant)
	mux.HandleFunc("PATCH /api/assistants/{id}", s.handleUpdateAssistant)
	mux.HandleFunc("DELETE /api/assistants/{id}", s.handleDeleteAssistant)
	mux.HandleFunc("POST /api/assistants/{id}/tools/refresh", s.handleRefreshTools)

	mux.HandleFunc("GET /api/assistants/{id}/threads", s.handleListThreads)
	mux.HandleFunc("POST /api/assistants/{id}/threads", s.handleCreateThread)
	mux.HandleFunc("GET /api/assistants/{id}/messages/search", s.handleSearchMessages)

	mux.HandleFunc("PATCH /api/threads/{tid}", s.handleUpdateThread)
	mux.HandleFunc("DELETE /api/threads/{tid}", s.handleDeleteThread)
	mux.HandleFunc("GET /api/threads/{tid}/messages", s.handleListMessages)
	mux.HandleFunc("POST /api/threads/{tid}/messages", s.handlePostMessage)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: logRequests(mux),
	}
	return s
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, storage.ErrNotFound) {
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
