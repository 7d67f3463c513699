package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/promptflow"
	"github.com/aretw0/promptflow/internal/logging"
	"github.com/aretw0/promptflow/pkg/domain"
	"github.com/aretw0/promptflow/pkg/flow"
	"github.com/aretw0/promptflow/pkg/runner"
	"github.com/aretw0/promptflow/pkg/session"
)

// Resource URIs.
const (
	QuestionsURI       = "promptflow://questions"
	ConversationPrefix = "promptflow://conversations/"
	ProfilePrefix      = "promptflow://profiles/"
)

// SendMessageArgs are the arguments of the send_message tool.
type SendMessageArgs struct {
	ConversationID string `json:"conversation_id" jsonschema_description:"Conversation to continue (created on first use)"`
	UserID         string `json:"user_id,omitempty" jsonschema_description:"User whose profile collects the answers (defaults to the conversation)"`
	Text           string `json:"text" jsonschema_description:"The user's message"`
}

// Server exposes the session manager as an MCP Server.
type Server struct {
	sessions  *session.Manager
	seq       *flow.Sequence
	mcpServer *server.MCPServer
	logger    *slog.Logger
	sanitizer runner.Sanitizer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithSanitizer sets the policy applied to message text.
func WithSanitizer(san runner.Sanitizer) Option {
	return func(s *Server) {
		s.sanitizer = san
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions *session.Manager, seq *flow.Sequence, opts ...Option) *Server {
	s := &Server{
		sessions: sessions,
		seq:      seq,
		logger:   logging.NewNop(),
		mcpServer: server.NewMCPServer("promptflow-mcp", promptflow.Version,
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is canceled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	sendTool := mcp.NewTool("send_message",
		mcp.WithDescription("Send one user message to a guided conversation and get the bot's replies."),
		mcp.WithString("conversation_id", mcp.Required(), mcp.Description("Conversation to continue (created on first use)")),
		mcp.WithString("user_id", mcp.Description("User whose profile collects the answers (defaults to the conversation)")),
		mcp.WithString("text", mcp.Required(), mcp.Description("The user's message")),
		mcp.WithOutputSchema[runner.Response](),
	)
	s.mcpServer.AddTool(sendTool, mcp.NewStructuredToolHandler(s.handleSendMessage))

	s.mcpServer.AddTool(mcp.NewTool("reset_conversation",
		mcp.WithDescription("Forget a conversation's position; its next message starts over."),
		mcp.WithString("conversation_id", mcp.Required(), mcp.Description("Conversation to reset")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("conversation_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := s.sessions.Reset(ctx, id); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("reset failed: %v", err)), nil
		}
		return mcp.NewToolResultText("ok"), nil
	})
}

func (s *Server) handleSendMessage(ctx context.Context, request mcp.CallToolRequest, args SendMessageArgs) (runner.Response, error) {
	clean, err := s.sanitizer.Clean(args.Text)
	if err != nil {
		s.logger.Warn("MCP send_message: Input rejected", "err", err, "size", len(args.Text))
		return runner.Response{}, fmt.Errorf("input rejected: %w", err)
	}

	res, err := s.sessions.HandleTurn(ctx, domain.Turn{
		ConversationID: args.ConversationID,
		UserID:         args.UserID,
		Text:           clean,
	})
	if err != nil {
		s.logger.Error("MCP send_message failed", "conversation_id", args.ConversationID, "err", err)
		return runner.Response{}, fmt.Errorf("turn failed: %w", err)
	}
	return runner.NewResponse(res), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(QuestionsURI, "Question sequence",
		mcp.WithResourceDescription("The ordered questions asked by the bot"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		prompts := make([]map[string]string, 0, s.seq.Len())
		for _, step := range s.seq.Steps() {
			prompts = append(prompts, map[string]string{
				"id":     string(step.Question),
				"kind":   string(step.Kind),
				"prompt": step.Prompt,
			})
		}
		return jsonContents(QuestionsURI, prompts)
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(ConversationPrefix+"{conversation_id}", "Conversation state",
		mcp.WithTemplateDescription("Pending question and completed passes of a conversation"),
		mcp.WithTemplateMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id, err := trimKey(request.Params.URI, ConversationPrefix)
		if err != nil {
			return nil, err
		}
		sess, err := s.sessions.Inspect(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect conversation: %w", err)
		}
		return jsonContents(request.Params.URI, sess)
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(ProfilePrefix+"{user_id}", "User profile",
		mcp.WithTemplateDescription("Answers collected for a user in the current pass"),
		mcp.WithTemplateMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id, err := trimKey(request.Params.URI, ProfilePrefix)
		if err != nil {
			return nil, err
		}
		profile, err := s.sessions.Profile(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load profile: %w", err)
		}
		return jsonContents(request.Params.URI, profile)
	})
}

func trimKey(uri, prefix string) (string, error) {
	key := strings.TrimPrefix(uri, prefix)
	if key == uri || key == "" {
		return "", errors.New("invalid resource uri: " + uri)
	}
	return key, nil
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
