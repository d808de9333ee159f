package assistant

import (
	"strings"

	"github.com/pawmart/pawmart/pkg/models"
)

// WindowSize is the number of trailing messages forwarded to the upstream
// model. The caller resends full history each turn; everything older than
// the window is dropped.
const WindowSize = 10

// Window normalizes a conversation for the upstream call: it keeps the
// last WindowSize messages and collapses every non-user role to
// "assistant", the two-party vocabulary the provider expects.
// Deterministic and stateless.
func Window(msgs []models.ChatMessage) []models.ChatMessage {
	if len(msgs) > WindowSize {
		msgs = msgs[len(msgs)-WindowSize:]
	}
	out := make([]models.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		role := models.RoleAssistant
		if m.Role == models.RoleUser {
			role = models.RoleUser
		}
		out = append(out, models.ChatMessage{Role: role, Content: m.Content})
	}
	return out
}

// LatestUserText returns the content of the most recent user-authored
// message, scanning newest to oldest. A history with no user turn yields
// the empty string, which signals "nothing to classify".
func LatestUserText(msgs []models.ChatMessage) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == models.RoleUser {
			return strings.TrimSpace(msgs[i].Content)
		}
	}
	return ""
}
