package assistant

import (
	"testing"

	"github.com/pawmart/pawmart/pkg/models"
)

func TestWindow_TruncatesToLastTen(t *testing.T) {
	msgs := make([]models.ChatMessage, 0, 25)
	for i := 0; i < 25; i++ {
		msgs = append(msgs, models.ChatMessage{Role: models.RoleUser, Content: string(rune('a' + i))})
	}

	got := Window(msgs)
	if len(got) != WindowSize {
		t.Fatalf("Window() len = %d, want %d", len(got), WindowSize)
	}
	if got[len(got)-1].Content != msgs[len(msgs)-1].Content {
		t.Errorf("Window() dropped the most recent message")
	}
}

func TestWindow_CollapsesRoles(t *testing.T) {
	msgs := []models.ChatMessage{
		{Role: models.RoleSystem, Content: "persona"},
		{Role: models.RoleUser, Content: "hi"},
		{Role: "tool", Content: "noise"},
	}

	got := Window(msgs)
	if got[0].Role != models.RoleAssistant {
		t.Errorf("system role = %q, want %q", got[0].Role, models.RoleAssistant)
	}
	if got[1].Role != models.RoleUser {
		t.Errorf("user role = %q, want %q", got[1].Role, models.RoleUser)
	}
	if got[2].Role != models.RoleAssistant {
		t.Errorf("unknown role = %q, want %q", got[2].Role, models.RoleAssistant)
	}
}

func TestLatestUserText_PicksNewestUserMessage(t *testing.T) {
	msgs := []models.ChatMessage{
		{Role: models.RoleUser, Content: "old question"},
		{Role: models.RoleAssistant, Content: "old answer"},
		{Role: models.RoleUser, Content: "  new question  "},
		{Role: models.RoleAssistant, Content: "pending"},
	}

	if got := LatestUserText(msgs); got != "new question" {
		t.Errorf("LatestUserText() = %q, want %q", got, "new question")
	}
}

func TestLatestUserText_NoUserTurn(t *testing.T) {
	msgs := []models.ChatMessage{
		{Role: models.RoleAssistant, Content: "hello"},
		{Role: models.RoleSystem, Content: "persona"},
	}

	if got := LatestUserText(msgs); got != "" {
		t.Errorf("LatestUserText() = %q, want empty string", got)
	}
}
