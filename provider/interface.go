// Package provider implements one adapter per LLM backend.
//
// UAIssistant supports OpenAI, Anthropic, Gemini and Ollama through the
// common model.LLM interface. Every adapter runs the same abstract
// tool-calling loop (send history and the new user turn, dispatch any
// tool directives, feed the batched results back, repeat until the
// model produces a final answer or the loop policy's ceiling is hit)
// and differs only in wire format and conversation-state handling:
//
//   - OpenAI keeps conversation state in remote thread/run objects that
//     the adapter polls to completion (openai.go).
//   - Anthropic, Gemini and Ollama are stateless: the adapter replays
//     the stored history on every call and loops locally (loop.go).
//
// Type conversions between UAIssistant's provider-agnostic types and
// each provider's types live in conversions.go.
package provider

import (
	"context"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/uhatikus/UAIssistant/model"
)

// ToolDispatcher executes one tool directive. Implementations never
// return an error: failures come back as the tool's own text output so
// the conversation stays alive.
type ToolDispatcher interface {
	Call(ctx context.Context, name string, args map[string]any) (output string, frontend []model.MessageItem)
}

// SchemaSource supplies the registry's generic tool schemas and lets
// adapters trigger a re-derivation. *tools.Registry implements it.
type SchemaSource interface {
	Schemas() []mcptypes.Tool
	Refresh()
}

// HistorySource replays a thread's stored conversation for the
// stateless providers: time-ordered, with internal tool-echo messages
// already excluded.
type HistorySource interface {
	ReplayMessages(ctx context.Context, threadID string) ([]model.MessageEntity, error)
}

// Deps are the collaborators every adapter is constructed with.
// Composition happens once at startup; there is no ambient lookup.
type Deps struct {
	Schemas    SchemaSource
	Dispatcher ToolDispatcher
	History    HistorySource
	Policy     LoopPolicy
}

// Config selects and parameterizes one adapter.
type Config struct {
	Source  model.LLMSource
	APIKey  string
	BaseURL string
}
