// Package model defines UAIssistant's provider-agnostic core types.
//
// The backend supports multiple LLM providers (OpenAI, Anthropic, Gemini,
// Ollama) through a common LLM interface. Keeping the entities and the
// interface in one leaf package lets the provider, storage and service
// layers depend on the same types without import cycles.
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LLMSource identifies the provider an assistant is permanently bound to.
type LLMSource string

const (
	SourceOpenAI    LLMSource = "openai"
	SourceAnthropic LLMSource = "anthropic"
	SourceGemini    LLMSource = "gemini"
	SourceOllama    LLMSource = "ollama"
)

// ParseLLMSource validates a stored or user-supplied source string.
func ParseLLMSource(s string) (LLMSource, error) {
	switch LLMSource(s) {
	case SourceOpenAI, SourceAnthropic, SourceGemini, SourceOllama:
		return LLMSource(s), nil
	default:
		return "", fmt.Errorf("unknown llm source: %q", s)
	}
}

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MessageType tags the payload shape of a message value.
type MessageType string

const (
	MessageTypeText MessageType = "text"
	MessageTypePlot MessageType = "plotly_json"
	MessageTypeFile MessageType = "file"
)

// Assistant is a configured LLM persona. Source never changes after
// creation; using an assistant with a different provider adapter is a
// programming error, not a runtime state.
type Assistant struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Instructions string    `json:"instructions"`
	Model        string    `json:"model"`
	Source       LLMSource `json:"llmsource"`
	CreatedAt    time.Time `json:"created_at"`
}

// Thread is one conversation scoped to one assistant. For OpenAI it is
// backed by a remote thread object; for the other providers it is a
// purely local grouping key.
type Thread struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	AssistantID string    `json:"assistant_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// MessageValue is the tagged payload of a message: plain text, a plotly
// figure produced by a tool, or a file reference.
type MessageValue struct {
	Type    MessageType    `json:"type"`
	Content map[string]any `json:"content"`
}

// MessageItem is a single conversation entry as produced by an adapter
// or a tool. Internal marks tool side-channel output that is persisted
// for display but never replayed back to the LLM.
type MessageItem struct {
	ID        string       `json:"id"`
	Role      Role         `json:"role"`
	CreatedAt time.Time    `json:"created_at"`
	Internal  bool         `json:"internal,omitempty"`
	Value     MessageValue `json:"value"`
}

// MessageEntity is the persisted form of a MessageItem, keyed by its
// owning assistant and thread. Messages are append-only.
type MessageEntity struct {
	ID          string       `json:"id"`
	AssistantID string       `json:"assistant_id"`
	ThreadID    string       `json:"thread_id"`
	CreatedAt   time.Time    `json:"created_at"`
	Role        Role         `json:"role"`
	Internal    bool         `json:"internal,omitempty"`
	Value       MessageValue `json:"value"`
}

// Item projects the persisted row back into its API shape.
func (e MessageEntity) Item() MessageItem {
	return MessageItem{
		ID:        e.ID,
		Role:      e.Role,
		CreatedAt: e.CreatedAt,
		Internal:  e.Internal,
		Value:     e.Value,
	}
}

// Text returns the plain-text body of a message, if it has one.
func (e MessageEntity) Text() (string, bool) {
	return e.Item().Text()
}

// Text returns the plain-text body of a message, if it has one.
func (m MessageItem) Text() (string, bool) {
	if m.Value.Type != MessageTypeText {
		return "", false
	}
	s, ok := m.Value.Content["message"].(string)
	return s, ok
}

// NewTextItem builds a visible text message with a prefixed synthetic
// identity, e.g. "claude_message_<uuid>".
func NewTextItem(idPrefix string, role Role, text string) MessageItem {
	return MessageItem{
		ID:        idPrefix + uuid.New().String(),
		Role:      role,
		CreatedAt: time.Now(),
		Value: MessageValue{
			Type:    MessageTypeText,
			Content: map[string]any{"message": text},
		},
	}
}

// NewInternalItem wraps a tool-produced value into an internal,
// Assistant-role message for persistence alongside the primary reply.
func NewInternalItem(value MessageValue) MessageItem {
	return MessageItem{
		ID:        "internal_" + uuid.New().String(),
		Role:      RoleAssistant,
		CreatedAt: time.Now(),
		Internal:  true,
		Value:     value,
	}
}

// ToolCall is a provider-agnostic tool directive: the model's request to
// invoke a named tool with arguments. ID is provider-assigned where the
// wire protocol has one (OpenAI, Anthropic) and the tool name otherwise.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}
