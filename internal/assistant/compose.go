package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pawmart/pawmart/internal/llm"
	"github.com/pawmart/pawmart/pkg/models"
)

// personaPrompt is the fixed system message for the grounding pass.
const personaPrompt = `You are PawMart's shopping assistant. Answer in the user's language, be concise and friendly, and base every factual claim about products, stock, prices, orders, or the user's account strictly on the tool data provided in the system context. Do not invent products or prices.`

// Composer builds the outward chat-completion payload. When a tool
// produced structured data it runs one more upstream pass with that data
// injected as system context; terminal replies skip the second pass.
type Composer struct {
	client llm.Client
}

func NewComposer(client llm.Client) *Composer {
	return &Composer{client: client}
}

// Envelope wraps assistant text in a chat-completion-shaped response.
// Usage is always zeroed; token accounting is not forwarded.
func Envelope(model, content string) models.ChatResponse {
	return models.ChatResponse{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []models.ChatChoice{{
			Index:        0,
			Message:      models.ChatMessage{Role: models.RoleAssistant, Content: content},
			FinishReason: "stop",
		}},
	}
}

// Reply produces the assistant text for a tool outcome.
//
// Terminal results (Message set) are returned as-is. A guidance result
// asks the model to re-prompt the user with product names that actually
// exist. Everything else is a grounding pass: persona plus a compact JSON
// rendering of the tool result, injected ahead of the windowed
// conversation.
func (c *Composer) Reply(ctx context.Context, model string, window []models.ChatMessage, res *models.ToolResult) (string, error) {
	if res.Message != "" {
		return res.Message, nil
	}

	var grounding string
	if res.UserInput != "" {
		catalog := models.ToolResult{Resource: models.ResourceProducts, Rows: res.AllProducts}
		grounding = fmt.Sprintf(
			"The user asked to order %q, which matches no product. The full catalog follows as JSON. Tell the user the name was not found and suggest close or relevant alternatives by their exact names.\n%s",
			res.UserInput, catalog.CompactJSON())
	} else {
		grounding = "Tool query result as JSON. Use it to answer the user's last message:\n" + res.CompactJSON()
	}

	messages := make([]models.ChatMessage, 0, len(window)+2)
	messages = append(messages,
		models.ChatMessage{Role: models.RoleSystem, Content: personaPrompt},
		models.ChatMessage{Role: models.RoleSystem, Content: grounding},
	)
	messages = append(messages, window...)

	return c.client.Complete(ctx, model, messages)
}
