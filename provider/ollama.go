package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/ollama/ollama/api"
	"github.com/uhatikus/UAIssistant/model"
)

// OllamaLLM implements model.LLM against a local Ollama server. It
// follows the same stateless replay protocol as Anthropic and Gemini;
// tool outputs go back as role-"tool" messages.
type OllamaLLM struct {
	client     *api.Client
	schemas    SchemaSource
	dispatcher ToolDispatcher
	history    HistorySource
	policy     LoopPolicy
}

// NewOllamaLLM creates the Ollama adapter. baseURL defaults to the
// local server.
func NewOllamaLLM(baseURL string, deps Deps) (*OllamaLLM, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}
	return &OllamaLLM{
		client:     api.NewClient(parsed, http.DefaultClient),
		schemas:    deps.Schemas,
		dispatcher: deps.Dispatcher,
		history:    deps.History,
		policy:     deps.Policy.withDefaults(),
	}, nil
}

func (p *OllamaLLM) Source() model.LLMSource { return model.SourceOllama }

func (p *OllamaLLM) CreateAssistant(ctx context.Context, name, instructions, modelName string) (model.Assistant, error) {
	p.schemas.Refresh()
	return model.Assistant{
		ID:           "ollama_asst_" + uuid.New().String(),
		Name:         name,
		Instructions: instructions,
		Model:        modelName,
		Source:       p.Source(),
		CreatedAt:    timeNow(),
	}, nil
}

func (p *OllamaLLM) UpdateAssistant(ctx context.Context, assistantID, name, instructions, modelName string) (model.Assistant, error) {
	p.schemas.Refresh()
	return model.Assistant{
		ID:           assistantID,
		Name:         name,
		Instructions: instructions,
		Model:        modelName,
		Source:       p.Source(),
		CreatedAt:    timeNow(),
	}, nil
}

func (p *OllamaLLM) DeleteAssistant(ctx context.Context, assistantID string) error { return nil }

func (p *OllamaLLM) CreateThread(ctx context.Context, assistantID, defaultName string) (model.Thread, error) {
	return model.Thread{
		ID:          "ollama_thread_" + uuid.New().String(),
		Name:        defaultName,
		AssistantID: assistantID,
		CreatedAt:   timeNow(),
	}, nil
}

func (p *OllamaLLM) DeleteThread(ctx context.Context, threadID string) error { return nil }

func (p *OllamaLLM) RefreshTools(ctx context.Context, assistantID string) error {
	p.schemas.Refresh()
	return nil
}

func (p *OllamaLLM) ProcessUserMessage(ctx context.Context, assistant model.Assistant, threadID, message string) ([]model.MessageItem, error) {
	p.schemas.Refresh()

	userItem := model.NewTextItem("user2ollama_message_", model.RoleUser, message)

	stored, err := p.history.ReplayMessages(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("replaying thread %s: %w", threadID, err)
	}

	messages := make([]api.Message, 0, len(stored)+2)
	if assistant.Instructions != "" {
		messages = append(messages, api.Message{Role: "system", Content: assistant.Instructions})
	}
	messages = append(messages, ReplayForOllama(stored)...)
	messages = append(messages, api.Message{Role: "user", Content: message})

	tools := ConvertToolsToOllama(p.schemas.Schemas())

	turn := func(ctx context.Context, results []toolResult) (modelTurn, error) {
		if len(results) > 0 {
			for _, r := range results {
				messages = append(messages, api.Message{
					Role:     "tool",
					Content:  r.output,
					ToolName: r.call.Name,
				})
			}
		}

		stream := false
		req := &api.ChatRequest{
			Model:    assistant.Model,
			Messages: messages,
			Tools:    tools,
			Stream:   &stream,
		}

		var reply api.Message
		respFunc := func(resp api.ChatResponse) error {
			reply = resp.Message
			return nil
		}
		if err := p.client.Chat(ctx, req, respFunc); err != nil {
			return modelTurn{}, fmt.Errorf("Ollama chat call: %w", err)
		}

		messages = append(messages, reply)
		return ollamaTurn(reply), nil
	}

	responses, err := runToolLoop(ctx, p.policy, p.dispatcher, turn, "ollama_message_")
	if err != nil {
		return nil, err
	}
	return append([]model.MessageItem{userItem}, responses...), nil
}

// ollamaTurn reduces a chat reply to the loop's neutral turn shape.
// Ollama assigns no call IDs; results are matched back by name.
func ollamaTurn(reply api.Message) modelTurn {
	var turn modelTurn
	if reply.Content != "" {
		turn.texts = append(turn.texts, reply.Content)
	}
	for _, call := range reply.ToolCalls {
		turn.calls = append(turn.calls, model.ToolCall{
			ID:        call.Function.Name,
			Name:      call.Function.Name,
			Arguments: map[string]any(call.Function.Arguments),
		})
	}
	return turn
}
