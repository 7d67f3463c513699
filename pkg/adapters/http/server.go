package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/aretw0/promptflow"
	"github.com/aretw0/promptflow/internal/logging"
	"github.com/aretw0/promptflow/pkg/domain"
	"github.com/aretw0/promptflow/pkg/flow"
	"github.com/aretw0/promptflow/pkg/runner"
	"github.com/aretw0/promptflow/pkg/session"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// Server exposes the session manager over HTTP.
type Server struct {
	Sessions *session.Manager
	Sequence *flow.Sequence
	Streams  *StreamManager

	metrics   http.Handler
	logger    *slog.Logger
	sanitizer runner.Sanitizer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithSanitizer sets the policy applied to message text.
func WithSanitizer(san runner.Sanitizer) Option {
	return func(s *Server) {
		s.sanitizer = san
	}
}

// MessageRequest is the body of POST /conversations/{conversationID}/messages.
type MessageRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

// QuestionView is a public row of the question table. Expected answers are not exposed.
type QuestionView struct {
	ID       domain.Question `json:"id"`
	Position int             `json:"position"`
	Kind     flow.Kind       `json:"kind"`
	Prompt   string          `json:"prompt"`
}

// NewServer creates a Server.
func NewServer(sessions *session.Manager, seq *flow.Sequence, opts ...Option) *Server {
	s := &Server{
		Sessions: sessions,
		Sequence: seq,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	return s
}

// NewHandler creates the HTTP handler for a session manager.
func NewHandler(sessions *session.Manager, seq *flow.Sequence, opts ...Option) http.Handler {
	return NewServer(sessions, seq, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/questions", s.GetQuestions)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/conversations", func(r chi.Router) {
		r.Get("/", s.ListConversations)
		r.Route("/{conversationID}", func(r chi.Router) {
			r.Get("/", s.GetConversation)
			r.Delete("/", s.DeleteConversation)
			r.Post("/messages", s.PostMessage)
			r.Get("/events", s.SubscribeEvents)
		})
	})

	r.Route("/users/{userID}/profile", func(r chi.Router) {
		r.Get("/", s.GetProfile)
		r.Delete("/", s.DeleteProfile)
	})
	return r
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PostMessage handles POST /conversations/{conversationID}/messages.
func (s *Server) PostMessage(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	var body MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("PostMessage: Invalid request body", "err", err)
		return
	}

	text, err := s.sanitizer.Clean(body.Text)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid input: %v", err), http.StatusBadRequest)
		s.logger.Warn("PostMessage: Input rejected", "err", err, "size", len(body.Text))
		return
	}

	res, err := s.Sessions.HandleTurn(r.Context(), domain.Turn{
		ConversationID: conversationID,
		UserID:         body.UserID,
		Text:           text,
	})
	if err != nil {
		s.fail(w, "PostMessage", err)
		return
	}

	resp := runner.NewResponse(res)
	if payload, err := json.Marshal(resp); err == nil {
		s.Streams.Broadcast(conversationID, string(payload))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// ListConversations handles GET /conversations.
func (s *Server) ListConversations(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, "ListConversations", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// GetConversation handles GET /conversations/{conversationID}.
func (s *Server) GetConversation(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Inspect(r.Context(), chi.URLParam(r, "conversationID"))
	if err != nil {
		s.fail(w, "GetConversation", err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess)
}

// DeleteConversation handles DELETE /conversations/{conversationID}.
func (s *Server) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Reset(r.Context(), chi.URLParam(r, "conversationID")); err != nil {
		s.fail(w, "DeleteConversation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetProfile handles GET /users/{userID}/profile.
func (s *Server) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.Sessions.Profile(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.fail(w, "GetProfile", err)
		return
	}
	s.writeJSON(w, http.StatusOK, profile)
}

// DeleteProfile handles DELETE /users/{userID}/profile.
func (s *Server) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.DeleteProfile(r.Context(), chi.URLParam(r, "userID")); err != nil {
		s.fail(w, "DeleteProfile", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetQuestions handles GET /questions.
func (s *Server) GetQuestions(w http.ResponseWriter, r *http.Request) {
	steps := s.Sequence.Steps()
	views := make([]QuestionView, len(steps))
	for i, step := range steps {
		views[i] = QuestionView{ID: step.Question, Position: i + 1, Kind: step.Kind, Prompt: step.Prompt}
	}
	s.writeJSON(w, http.StatusOK, views)
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":       "promptflow-http",
		"version":   promptflow.Version,
		"questions": s.Sequence.Len(),
	})
}

// SubscribeEvents handles GET /conversations/{conversationID}/events (SSE).
// Every turn of the conversation is pushed as one data frame.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	conversationID := chi.URLParam(r, "conversationID")
	ch, cancel := s.Streams.Subscribe(conversationID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Info("SSE: Subscribed", "conversation_id", conversationID)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: Client disconnected", "conversation_id", conversationID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: turn\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// fail maps err to a status code: 404 for unknown records, 400 for bad
// input, 500 for everything else.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrMissingConversation), runner.IsInputError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "Internal error", http.StatusInternalServerError)
		s.logger.Error(op+" failed", "err", err, "request_id", w.Header().Get(RequestIDHeader))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
