package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/aretw0/promptflow/pkg/domain"
)

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
// Each turn is written as one JSON array of replies.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder

	sanitizer Sanitizer
}

// JSONHandlerOption configures a JSONHandler.
type JSONHandlerOption func(*JSONHandler)

// WithJSONHandlerSanitizer sets the input policy.
func WithJSONHandlerSanitizer(s Sanitizer) JSONHandlerOption {
	return func(h *JSONHandler) {
		h.sanitizer = s
	}
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer, opts ...JSONHandlerOption) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Output emits the replies as a single JSON line.
func (h *JSONHandler) Output(ctx context.Context, replies []domain.Reply) error {
	if len(replies) == 0 {
		return nil
	}
	return h.Encoder.Encode(replies)
}

// Input accepts a JSON string, an object with a "text" field, or raw text.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	line, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	line = strings.TrimSpace(line)

	var text string
	if err := json.Unmarshal([]byte(line), &text); err != nil {
		var msg struct {
			Text *string `json:"text"`
		}
		if err := json.Unmarshal([]byte(line), &msg); err == nil && msg.Text != nil {
			text = *msg.Text
		} else {
			text = line
		}
	}
	return h.sanitizer.Clean(text)
}

// SystemOutput emits a {"system": msg} line.
func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(map[string]string{"system": msg})
}
