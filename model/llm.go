package model

import "context"

// LLM is the contract every provider adapter implements. The service
// layer resolves an assistant's adapter by its stored Source and never
// calls another provider's adapter for it.
//
// ProcessUserMessage runs the full tool-calling loop for one user turn
// and returns the user message followed by every assistant and
// tool-echo message produced. Adapters never persist; the caller does.
type LLM interface {
	Source() LLMSource

	CreateAssistant(ctx context.Context, name, instructions, modelName string) (Assistant, error)
	UpdateAssistant(ctx context.Context, assistantID, name, instructions, modelName string) (Assistant, error)
	// DeleteAssistant tolerates provider-side failures: remote cleanup
	// errors are logged and swallowed so local deletion can proceed.
	DeleteAssistant(ctx context.Context, assistantID string) error

	CreateThread(ctx context.Context, assistantID, defaultName string) (Thread, error)
	DeleteThread(ctx context.Context, threadID string) error

	ProcessUserMessage(ctx context.Context, assistant Assistant, threadID, message string) ([]MessageItem, error)

	// RefreshTools re-derives the tool schemas and, for providers with
	// remote assistant state, pushes them to the provider.
	RefreshTools(ctx context.Context, assistantID string) error
}
