// Package server provides the HTTP API and the embedded web client.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/docchat-io/docchat/internal/chat"
	"github.com/docchat-io/docchat/internal/metrics"
	"github.com/docchat-io/docchat/internal/retriever"
	"github.com/docchat-io/docchat/internal/store"
	"github.com/docchat-io/docchat/web"
)

// Deps carries everything the HTTP layer needs.
type Deps struct {
	Chat      *chat.Service
	Retriever *retriever.Retriever
	Store     store.Store
	Collector *metrics.Collector
	Logger    *slog.Logger

	AuthUsername string
	AuthPassword string

	// LLMConfigured reports whether completion credentials are present,
	// for the health endpoint.
	LLMConfigured bool
}

// Server exposes the chat API over HTTP.
type Server struct {
	deps Deps
}

// New creates the server.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Collector == nil {
		deps.Collector = metrics.NewCollector()
	}
	return &Server{deps: deps}
}

// Handler builds the full route table. Everything except /api/health
// sits behind basic auth; all routes are wrapped with request logging.
func (s *Server) Handler() http.Handler {
	auth := func(h http.HandlerFunc) http.Handler {
		return BasicAuth(h, s.deps.AuthUsername, s.deps.AuthPassword)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/health", http.HandlerFunc(s.handleHealth))
	mux.Handle("/api/chat", auth(s.handleChat))
	mux.Handle("/api/reset", auth(s.handleReset))
	mux.Handle("/api/search", auth(s.handleSearch))
	mux.Handle("/", auth(s.handleStatic))

	return RequestLogger(mux, s.deps.Logger)
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

type chatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
	Storage        string `json:"storage"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := s.deps.Chat.Chat(r.Context(), req.ConversationID, req.Message)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, chatResponse{
			Response:       result.Response,
			ConversationID: result.ConversationID,
			Storage:        string(result.Storage),
		})
	case errors.Is(err, chat.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "Message is required")
	default:
		// Upstream failure; the underlying message is echoed to the caller.
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

type resetRequest struct {
	ConversationID string `json:"conversation_id"`
}

type resetResponse struct {
	Message string `json:"message"`
	Storage string `json:"storage"`
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// A missing or malformed body resets the default conversation.
	var req resetRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	tier := s.deps.Chat.Reset(r.Context(), req.ConversationID)
	writeJSON(w, http.StatusOK, resetResponse{
		Message: "Conversation reset successfully",
		Storage: string(tier),
	})
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchHit struct {
	Title string `json:"title"`
	Chunk string `json:"chunk"`
}

type searchResponse struct {
	Results []searchHit `json:"results"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	if !s.deps.Retriever.Enabled() {
		writeError(w, http.StatusInternalServerError, "search is not configured")
		return
	}

	docs, err := s.deps.Retriever.Lookup(r.Context(), req.Query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	hits := make([]searchHit, 0, len(docs))
	for _, doc := range docs {
		hits = append(hits, searchHit{Title: doc.Title, Chunk: doc.Chunk})
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: hits})
}

type healthResponse struct {
	Status     string           `json:"status"`
	Redis      string           `json:"redis"`
	Completion string           `json:"completion"`
	Search     string           `json:"search"`
	Stats      metrics.Snapshot `json:"stats"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:     "healthy",
		Redis:      "disabled",
		Completion: "not configured",
		Search:     "not configured",
		Stats:      s.deps.Collector.Snapshot(),
	}
	if s.deps.Store != nil && s.deps.Store.Durable() {
		resp.Redis = "connected"
	}
	if s.deps.LLMConfigured {
		resp.Completion = "configured"
	}
	if s.deps.Retriever.Enabled() {
		resp.Search = "configured"
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleStatic serves the embedded single-page client.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/":
		content, err := web.Static.ReadFile("static/index.html")
		if err != nil {
			writeError(w, http.StatusInternalServerError, "client not available")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(content)
	case "/style.css":
		content, err := web.Static.ReadFile("static/style.css")
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/css")
		_, _ = w.Write(content)
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
