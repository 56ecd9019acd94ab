package model

import (
	"strings"
	"testing"
)

func TestParseLLMSource(t *testing.T) {
	tests := []struct {
		input   string
		want    LLMSource
		wantErr bool
	}{
		{input: "openai", want: SourceOpenAI},
		{input: "anthropic", want: SourceAnthropic},
		{input: "gemini", want: SourceGemini},
		{input: "ollama", want: SourceOllama},
		{input: "bedrock", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLLMSource(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error: got %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewTextItem(t *testing.T) {
	item := NewTextItem("claude_message_", RoleAssistant, "hello")

	if !strings.HasPrefix(item.ID, "claude_message_") {
		t.Errorf("id: got %q", item.ID)
	}
	if item.Internal {
		t.Error("text items are visible by default")
	}
	text, ok := item.Text()
	if !ok || text != "hello" {
		t.Errorf("text: got %q (ok=%v)", text, ok)
	}
}

func TestNewInternalItem(t *testing.T) {
	item := NewInternalItem(MessageValue{
		Type:    MessageTypePlot,
		Content: map[string]any{"raw_json": "{}"},
	})

	if !item.Internal {
		t.Error("internal flag not set")
	}
	if item.Role != RoleAssistant {
		t.Errorf("role: got %q", item.Role)
	}
	if _, ok := item.Text(); ok {
		t.Error("plot value must not report text")
	}
}

func TestEntityItemRoundTrip(t *testing.T) {
	entity := MessageEntity{
		ID:          "m_1",
		AssistantID: "asst_1",
		ThreadID:    "thread_1",
		Role:        RoleUser,
		Internal:    true,
		Value: MessageValue{
			Type:    MessageTypeText,
			Content: map[string]any{"message": "hi"},
		},
	}

	item := entity.Item()
	if item.ID != entity.ID || item.Role != entity.Role || !item.Internal {
		t.Errorf("projection lost fields: %+v", item)
	}
	text, ok := entity.Text()
	if !ok || text != "hi" {
		t.Errorf("entity text: got %q (ok=%v)", text, ok)
	}
}
