// Package llm wraps the upstream chat-completions provider. The provider
// is an external collaborator: this package sends one request per call,
// applies a timeout, and reports failure exactly once — no retries, no
// streaming.
package llm

import (
	"context"
	"fmt"

	"github.com/pawmart/pawmart/pkg/models"
)

// Client produces one assistant message for a conversation.
type Client interface {
	Complete(ctx context.Context, model string, messages []models.ChatMessage) (string, error)
}

// UpstreamError reports a non-success HTTP response from the provider,
// carrying the upstream status so the API layer can pass it through.
// Transport-level failures (timeout, DNS, refused connection) are plain
// errors, not UpstreamErrors.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Message)
}

// ErrNotConfigured is returned when no provider API key is set. The
// classifier degrades to plain conversation on this; the chat proxy
// surfaces it as a server configuration error.
var ErrNotConfigured = fmt.Errorf("llm: no API key configured")
