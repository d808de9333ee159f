// Package models defines the domain types shared across the PawMart backend:
// catalog products, accounts, orders, chat messages, and the intent/tool
// types the shopping assistant pipeline passes between its stages.
package models

import (
	"encoding/json"
	"time"
)

// ── Chat ─────────────────────────────────────────────────────

// Chat roles as they appear on the wire. Inbound histories may carry
// "system" entries; the conversation window collapses everything that is
// not "user" down to "assistant" before the upstream call.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatMessage is one turn of a conversation. Order within a slice is
// significant: later entries are more recent.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the inbound body of POST /api/chat/completions.
// The caller resends the full history each turn; nothing is kept
// server-side between turns.
type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Debug    bool          `json:"debug,omitempty"`
}

// ChatResponse mirrors the shape of a standard chat-completion object so
// existing completion clients can consume it unchanged. ToolResult and
// Intent are only populated when the request sets debug.
type ChatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   ChatUsage    `json:"usage"`

	ToolResult *ToolResult     `json:"tool_result,omitempty"`
	Intent     *IntentDecision `json:"intent_decision,omitempty"`
}

type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ChatUsage is always zeroed: token accounting happens upstream and the
// composed envelope does not forward it.
type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ── Intent ───────────────────────────────────────────────────

// ToolKind enumerates the tools the assistant may dispatch. Anything the
// model emits outside this set collapses to ToolNone before dispatch.
type ToolKind string

const (
	ToolNone        ToolKind = "none"
	ToolQueryDB     ToolKind = "query_db"
	ToolCreateOrder ToolKind = "create_order"
)

// DecisionVia records which classifier path produced a decision.
type DecisionVia string

const (
	ViaKeyword DecisionVia = "keyword"
	ViaModel   DecisionVia = "model"
)

// IntentDecision is the classifier's verdict for one user turn. Produced
// fresh per turn, never persisted.
type IntentDecision struct {
	ShouldUseTool bool           `json:"shouldUseTool"`
	Tool          ToolKind       `json:"tool"`
	Args          map[string]any `json:"args,omitempty"`
	Confidence    float64        `json:"confidence"`
	Reason        string         `json:"reason,omitempty"`
	Via           DecisionVia    `json:"via"`
}

// NoTool builds the degenerate decision used whenever classification
// cannot or should not pick a tool.
func NoTool(via DecisionVia, reason string) IntentDecision {
	return IntentDecision{
		ShouldUseTool: false,
		Tool:          ToolNone,
		Confidence:    0,
		Reason:        reason,
		Via:           via,
	}
}

// ── Tool results ─────────────────────────────────────────────

// Resource names a queryable table for the query_db tool.
type Resource string

const (
	ResourceProducts Resource = "products"
	ResourceOrders   Resource = "orders"
	ResourceUser     Resource = "user"
)

// ToolResult is the tagged union an executor hands back to the composer.
// Exactly one of the payload groups is populated:
//
//   - Resource + Rows/Orders/Users for query_db
//   - OrderID for a completed create_order
//   - AllProducts + UserInput for the name-resolution guidance case
//   - Message for a terminal reply synthesized from a domain failure
type ToolResult struct {
	Resource Resource      `json:"resource,omitempty"`
	Rows     []Product     `json:"rows,omitempty"`
	Orders   []OrderRow    `json:"orders,omitempty"`
	Users    []UserRecord  `json:"users,omitempty"`
	OrderID  int64         `json:"orderId,omitempty"`
	Message  string        `json:"message,omitempty"`

	// Guidance payload: the requested product name did not resolve, so the
	// composer asks the model to re-prompt the user with real names.
	AllProducts []Product `json:"allProductRows,omitempty"`
	UserInput   string    `json:"userInput,omitempty"`
}

// CompactJSON renders the result for injection into the model context.
// Falls back to "{}" on marshal failure so the second model pass still runs.
func (tr *ToolResult) CompactJSON() string {
	b, err := json.Marshal(tr)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// ── Catalog ──────────────────────────────────────────────────

// Product is a catalog row. The catalog is owned by the store layer; the
// assistant only ever reads it, except for the stock decrement performed
// inside order creation.
type Product struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	Category string  `json:"class"`
	ImageURL string  `json:"img_url,omitempty"`
}

// ── Accounts ─────────────────────────────────────────────────

// Account is a registered shopper. Password is stored but never serialized.
type Account struct {
	ID          int64  `json:"id"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"-"`
	Name        string `json:"name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// UserRecord is the projection of an account the user tool is allowed to
// reveal: no phone number, no credentials.
type UserRecord struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Record returns the tool-facing projection of the account.
func (a *Account) Record() UserRecord {
	return UserRecord{ID: a.ID, Name: a.Name, AvatarURL: a.AvatarURL}
}

// ── Orders ───────────────────────────────────────────────────

// OrderStatusUnfulfilled is the fixed initial status of every new order.
// Kept in the storefront's language; nothing in this backend transitions
// it further.
const OrderStatusUnfulfilled = "未完成"

// Order is an order row as stored.
type Order struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"account_id"`
	Date      time.Time `json:"date"`
	Status    string    `json:"status"`
	ProductID int64     `json:"product_id"`
	Amount    int       `json:"amount"`
	Price     float64   `json:"price"`
}

// OrderRow is an order joined with its product name, the shape both the
// orders endpoint and the orders tool return.
type OrderRow struct {
	ID          int64     `json:"id"`
	Date        time.Time `json:"date"`
	Status      string    `json:"status"`
	Amount      int       `json:"amount"`
	Price       float64   `json:"price"`
	ProductName string    `json:"name"`
}

// ── Cart ─────────────────────────────────────────────────────

// CartItem is a cart row joined with its product.
type CartItem struct {
	ID         int64   `json:"id"`
	AccountID  int64   `json:"account_id"`
	ProductID  int64   `json:"product_id"`
	Amount     int     `json:"amount"`
	TotalPrice float64 `json:"total_price"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"price"`
}
