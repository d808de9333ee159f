package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/pawmart/pawmart/internal/config"
	"github.com/pawmart/pawmart/internal/llm"
	"github.com/pawmart/pawmart/pkg/models"
)

// fakeLLM is a canned upstream client that records every call.
type fakeLLM struct {
	reply string
	err   error
	calls [][]models.ChatMessage
}

func (f *fakeLLM) Complete(ctx context.Context, model string, messages []models.ChatMessage) (string, error) {
	f.calls = append(f.calls, messages)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func testKeywords() config.IntentConfig {
	return config.IntentConfig{
		PurchaseKeywords: []string{"buy", "买"},
		LookupKeywords:   []string{"find", "search", "recommend", "推荐", "查"},
		OrderKeywords:    []string{"order", "订单"},
		UserKeywords:     []string{"my info", "account", "账户"},
	}
}

func newTestClassifier(f *fakeLLM) *Classifier {
	return NewClassifier(f, "qwen-plus", testKeywords())
}

func TestClassify_EmptyTextShortCircuits(t *testing.T) {
	f := &fakeLLM{}
	c := newTestClassifier(f)

	got := c.Classify(context.Background(), "", 0, nil)
	if got.ShouldUseTool {
		t.Errorf("Classify(empty) decided a tool: %+v", got)
	}
	if len(f.calls) != 0 {
		t.Errorf("Classify(empty) called the model %d times, want 0", len(f.calls))
	}
}

func TestClassify_LookupKeywordSkipsModel(t *testing.T) {
	cases := []struct {
		text     string
		resource string
	}{
		{"find me some dog food", "products"},
		{"search my order history", "orders"},
		{"search my account details", "user"},
		{"给金毛推荐一些狗粮", "products"},
		{"查一下我的订单", "orders"},
	}
	for _, tc := range cases {
		f := &fakeLLM{}
		c := newTestClassifier(f)

		got := c.Classify(context.Background(), tc.text, 7, nil)
		if !got.ShouldUseTool || got.Tool != models.ToolQueryDB {
			t.Errorf("Classify(%q) = %+v, want query_db", tc.text, got)
		}
		if got.Args["resource"] != tc.resource {
			t.Errorf("Classify(%q) resource = %v, want %q", tc.text, got.Args["resource"], tc.resource)
		}
		if got.Confidence != 0.8 {
			t.Errorf("Classify(%q) confidence = %v, want 0.8", tc.text, got.Confidence)
		}
		if got.Via != models.ViaKeyword {
			t.Errorf("Classify(%q) via = %q, want keyword", tc.text, got.Via)
		}
		if len(f.calls) != 0 {
			t.Errorf("Classify(%q) called the model, want lexical decision", tc.text)
		}
	}
}

func TestClassify_PurchaseKeywordEscalatesToModel(t *testing.T) {
	f := &fakeLLM{reply: `{"tool":"create_order","args":{"productId":3,"amount":2},"confidence":0.9,"reason":"explicit purchase"}`}
	c := newTestClassifier(f)

	got := c.Classify(context.Background(), "buy 2 bags of dog food", 7, nil)
	if len(f.calls) != 1 {
		t.Fatalf("purchase keyword did not route through the model (calls = %d)", len(f.calls))
	}
	if !got.ShouldUseTool || got.Tool != models.ToolCreateOrder {
		t.Fatalf("Classify() = %+v, want create_order via model", got)
	}
	if got.Via != models.ViaModel {
		t.Errorf("via = %q, want model", got.Via)
	}
}

func TestClassify_ModelJSONWrappedInProse(t *testing.T) {
	f := &fakeLLM{reply: "Sure, here is the decision:\n```json\n{\"tool\":\"query_db\",\"args\":{\"resource\":\"products\"},\"confidence\":0.7,\"reason\":\"browse\"}\n``` hope that helps"}
	c := newTestClassifier(f)

	got := c.Classify(context.Background(), "anything unusual here", 0, nil)
	if !got.ShouldUseTool || got.Tool != models.ToolQueryDB {
		t.Fatalf("Classify() = %+v, want query_db from wrapped JSON", got)
	}
}

func TestClassify_MalformedModelOutput(t *testing.T) {
	for _, reply := range []string{"no braces at all", "{not json}", ""} {
		f := &fakeLLM{reply: reply}
		c := newTestClassifier(f)

		got := c.Classify(context.Background(), "anything unusual here", 0, nil)
		if got.ShouldUseTool {
			t.Errorf("Classify() with reply %q decided a tool: %+v", reply, got)
		}
		if got.Confidence != 0 {
			t.Errorf("Classify() with reply %q confidence = %v, want 0", reply, got.Confidence)
		}
	}
}

func TestClassify_HallucinatedToolCollapsesToNone(t *testing.T) {
	f := &fakeLLM{reply: `{"tool":"drop_all_tables","args":{},"confidence":0.99,"reason":"evil"}`}
	c := newTestClassifier(f)

	got := c.Classify(context.Background(), "anything unusual here", 0, nil)
	if got.ShouldUseTool || got.Tool != models.ToolNone {
		t.Fatalf("Classify() = %+v, want tool collapsed to none", got)
	}
}

func TestClassify_DefaultsForMissingFields(t *testing.T) {
	f := &fakeLLM{reply: `{"tool":"query_db"}`}
	c := newTestClassifier(f)

	got := c.Classify(context.Background(), "anything unusual here", 0, nil)
	if !got.ShouldUseTool {
		t.Fatalf("Classify() = %+v, want query_db", got)
	}
	if got.Confidence != 0 {
		t.Errorf("confidence = %v, want default 0", got.Confidence)
	}
	if got.Reason == "" {
		t.Errorf("reason is empty, want placeholder")
	}
	if got.Args == nil {
		t.Errorf("args is nil, want empty map")
	}
}

func TestClassify_UpstreamFailureDegrades(t *testing.T) {
	for _, err := range []error{llm.ErrNotConfigured, errors.New("connection refused")} {
		f := &fakeLLM{err: err}
		c := newTestClassifier(f)

		got := c.Classify(context.Background(), "anything unusual here", 0, nil)
		if got.ShouldUseTool {
			t.Errorf("Classify() with upstream err %v decided a tool: %+v", err, got)
		}
		if got.Confidence != 0 {
			t.Errorf("confidence = %v, want 0", got.Confidence)
		}
	}
}
