// Package testutil provides function-field mocks for provider and
// orchestrator tests.
package testutil

import (
	"context"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/uhatikus/UAIssistant/model"
)

// MockDispatcher satisfies provider.ToolDispatcher.
type MockDispatcher struct {
	CallFunc func(ctx context.Context, name string, args map[string]any) (string, []model.MessageItem)

	// Calls records every invocation in order.
	Calls []RecordedCall
}

type RecordedCall struct {
	Name string
	Args map[string]any
}

func (m *MockDispatcher) Call(ctx context.Context, name string, args map[string]any) (string, []model.MessageItem) {
	m.Calls = append(m.Calls, RecordedCall{Name: name, Args: args})
	if m.CallFunc != nil {
		return m.CallFunc(ctx, name, args)
	}
	return "ok", nil
}

// MockSchemas satisfies provider.SchemaSource.
type MockSchemas struct {
	SchemasFunc func() []mcptypes.Tool

	Refreshed int
}

func (m *MockSchemas) Schemas() []mcptypes.Tool {
	if m.SchemasFunc != nil {
		return m.SchemasFunc()
	}
	return nil
}

func (m *MockSchemas) Refresh() { m.Refreshed++ }

// MockHistory satisfies provider.HistorySource.
type MockHistory struct {
	ReplayFunc func(ctx context.Context, threadID string) ([]model.MessageEntity, error)
}

func (m *MockHistory) ReplayMessages(ctx context.Context, threadID string) ([]model.MessageEntity, error) {
	if m.ReplayFunc != nil {
		return m.ReplayFunc(ctx, threadID)
	}
	return nil, nil
}

// MockLLM satisfies model.LLM for orchestrator tests.
type MockLLM struct {
	SourceValue model.LLMSource

	CreateAssistantFunc    func(ctx context.Context, name, instructions, modelName string) (model.Assistant, error)
	UpdateAssistantFunc    func(ctx context.Context, assistantID, name, instructions, modelName string) (model.Assistant, error)
	DeleteAssistantFunc    func(ctx context.Context, assistantID string) error
	CreateThreadFunc       func(ctx context.Context, assistantID, defaultName string) (model.Thread, error)
	DeleteThreadFunc       func(ctx context.Context, threadID string) error
	ProcessUserMessageFunc func(ctx context.Context, assistant model.Assistant, threadID, message string) ([]model.MessageItem, error)
	RefreshToolsFunc       func(ctx context.Context, assistantID string) error
}

func (m *MockLLM) Source() model.LLMSource { return m.SourceValue }

func (m *MockLLM) CreateAssistant(ctx context.Context, name, instructions, modelName string) (model.Assistant, error) {
	if m.CreateAssistantFunc != nil {
		return m.CreateAssistantFunc(ctx, name, instructions, modelName)
	}
	return model.Assistant{ID: "mock_asst", Name: name, Instructions: instructions, Model: modelName, Source: m.SourceValue}, nil
}

func (m *MockLLM) UpdateAssistant(ctx context.Context, assistantID, name, instructions, modelName string) (model.Assistant, error) {
	if m.UpdateAssistantFunc != nil {
		return m.UpdateAssistantFunc(ctx, assistantID, name, instructions, modelName)
	}
	return model.Assistant{ID: assistantID, Name: name, Instructions: instructions, Model: modelName, Source: m.SourceValue}, nil
}

func (m *MockLLM) DeleteAssistant(ctx context.Context, assistantID string) error {
	if m.DeleteAssistantFunc != nil {
		return m.DeleteAssistantFunc(ctx, assistantID)
	}
	return nil
}

func (m *MockLLM) CreateThread(ctx context.Context, assistantID, defaultName string) (model.Thread, error) {
	if m.CreateThreadFunc != nil {
		return m.CreateThreadFunc(ctx, assistantID, defaultName)
	}
	return model.Thread{ID: "mock_thread", Name: defaultName, AssistantID: assistantID}, nil
}

func (m *MockLLM) DeleteThread(ctx context.Context, threadID string) error {
	if m.DeleteThreadFunc != nil {
		return m.DeleteThreadFunc(ctx, threadID)
	}
	return nil
}

func (m *MockLLM) ProcessUserMessage(ctx context.Context, assistant model.Assistant, threadID, message string) ([]model.MessageItem, error) {
	if m.ProcessUserMessageFunc != nil {
		return m.ProcessUserMessageFunc(ctx, assistant, threadID, message)
	}
	return []model.MessageItem{model.NewTextItem("mock_message_", model.RoleAssistant, "mock reply")}, nil
}

func (m *MockLLM) RefreshTools(ctx context.Context, assistantID string) error {
	if m.RefreshToolsFunc != nil {
		return m.RefreshToolsFunc(ctx, assistantID)
	}
	return nil
}
