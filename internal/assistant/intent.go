package assistant

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pawmart/pawmart/internal/config"
	"github.com/pawmart/pawmart/internal/llm"
	"github.com/pawmart/pawmart/pkg/models"
)

// Classifier decides whether a user turn should trigger a tool call.
//
// Two tiers: a lexical fast path over configurable keyword sets, and a
// model-mediated path that asks the upstream model for a JSON decision.
// Purchase intent always goes through the model — a keyword alone cannot
// supply the product and quantity a create_order needs. Lookup intent is
// decided locally without an upstream call.
//
// Classification never fails: every malfunction (unparsable model output,
// hallucinated tool names, missing API key) degrades to a no-tool decision.
type Classifier struct {
	client llm.Client
	model  string
	kw     config.IntentConfig
}

func NewClassifier(client llm.Client, model string, kw config.IntentConfig) *Classifier {
	return &Classifier{client: client, model: model, kw: kw}
}

// Classify produces one IntentDecision for the extracted user text.
// history is the already-windowed conversation, passed to the model path
// for context.
func (c *Classifier) Classify(ctx context.Context, text string, userID int64, history []models.ChatMessage) models.IntentDecision {
	if text == "" {
		return models.NoTool(models.ViaKeyword, "no user text to classify")
	}

	lower := strings.ToLower(text)

	// Purchase keywords escalate to the model: the value, quantity, and
	// target must come from structured reasoning, never from a keyword hit.
	if containsAny(lower, c.kw.PurchaseKeywords) {
		return c.classifyWithModel(ctx, text, userID, history)
	}

	if containsAny(lower, c.kw.LookupKeywords) {
		return models.IntentDecision{
			ShouldUseTool: true,
			Tool:          models.ToolQueryDB,
			Args:          map[string]any{"resource": string(c.inferResource(lower))},
			Confidence:    0.8,
			Reason:        "lookup keyword match",
			Via:           models.ViaKeyword,
		}
	}

	return c.classifyWithModel(ctx, text, userID, history)
}

// inferResource picks the query target from secondary keyword cues.
func (c *Classifier) inferResource(lower string) models.Resource {
	if containsAny(lower, c.kw.OrderKeywords) {
		return models.ResourceOrders
	}
	if containsAny(lower, c.kw.UserKeywords) {
		return models.ResourceUser
	}
	return models.ResourceProducts
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(haystack, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// ── Model-mediated path ─────────────────────────────────────

const decisionSystemPrompt = `You are the intent recognizer of a pet-store shopping assistant. Output ONLY a JSON object, no other text.
Format: {"tool":"none"|"query_db"|"create_order","args":{},"confidence":0-1,"reason":"..."}.
For query_db include args.resource: "products" (optionally args.category, one of food/furniture/toy), "orders", or "user".
Order and user queries only ever target the current user; never request or reveal another user's data.
For create_order include args.productId or args.productName (one is required) and args.amount (1-99).
If no tool applies, use tool "none". Again: output nothing but the JSON object.`

// modelDecision is the JSON shape the model is instructed to emit.
// Missing fields decode to their zero values and are defaulted below, so
// a partially-formed object still yields a usable decision.
type modelDecision struct {
	Tool       string         `json:"tool"`
	Args       map[string]any `json:"args"`
	Confidence float64        `json:"confidence"`
	Reason     string         `json:"reason"`
}

func (c *Classifier) classifyWithModel(ctx context.Context, text string, userID int64, history []models.ChatMessage) models.IntentDecision {
	input, _ := json.Marshal(map[string]any{
		"input": map[string]any{"text": text, "userId": userID},
		"toolSpec": map[string]any{
			"tools": []map[string]string{
				{"name": "query_db", "description": "Query products, the current user's orders, or the current user's profile."},
				{"name": "create_order", "description": "Create an order for the current user."},
			},
		},
	})

	messages := make([]models.ChatMessage, 0, len(history)+2)
	messages = append(messages, models.ChatMessage{Role: models.RoleSystem, Content: decisionSystemPrompt})
	messages = append(messages, history...)
	messages = append(messages, models.ChatMessage{Role: models.RoleUser, Content: string(input)})

	raw, err := c.client.Complete(ctx, c.model, messages)
	if err != nil {
		// Configuration and upstream failures degrade to plain conversation.
		log.Warn().Err(err).Msg("intent classification call failed")
		return models.NoTool(models.ViaModel, "intent model unavailable: "+err.Error())
	}

	dec, ok := decodeDecision(raw)
	if !ok {
		return models.NoTool(models.ViaModel, "model returned non-JSON decision")
	}

	if dec.Reason == "" {
		dec.Reason = "no reason given"
	}
	if dec.Args == nil {
		dec.Args = map[string]any{}
	}

	// Allow-list: a hallucinated tool name collapses to none rather than
	// reaching the dispatcher.
	tool := models.ToolKind(dec.Tool)
	if tool != models.ToolQueryDB && tool != models.ToolCreateOrder {
		return models.IntentDecision{
			ShouldUseTool: false,
			Tool:          models.ToolNone,
			Confidence:    dec.Confidence,
			Reason:        dec.Reason,
			Via:           models.ViaModel,
		}
	}

	return models.IntentDecision{
		ShouldUseTool: true,
		Tool:          tool,
		Args:          dec.Args,
		Confidence:    dec.Confidence,
		Reason:        dec.Reason,
		Via:           models.ViaModel,
	}
}

// decodeDecision extracts the JSON object from free-form model text.
// Models wrap their JSON in prose or code fences often enough that the
// substring between the first '{' and the last '}' is taken before the
// typed decode.
func decodeDecision(raw string) (modelDecision, bool) {
	var dec modelDecision
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return dec, false
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &dec); err != nil {
		return dec, false
	}
	return dec, true
}
