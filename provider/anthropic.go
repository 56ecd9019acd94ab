package provider

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"github.com/uhatikus/UAIssistant/model"
)

const (
	anthropicTemperature = 0.1
	anthropicMaxTokens   = 1024
)

// anthropicBackend is the slice of the Messages API the adapter needs;
// tests substitute a fake.
type anthropicBackend interface {
	newMessage(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error)
}

// anthropicSDK adapts the official client to anthropicBackend.
type anthropicSDK struct {
	client *anthropic.Client
}

func (s *anthropicSDK) newMessage(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	return s.client.Messages.New(ctx, params)
}

// AnthropicLLM implements model.LLM against Anthropic's Messages API
// using the official Go SDK. Anthropic retains no conversation state:
// the adapter reconstructs the full message array from stored history
// on every call and loops locally until no tool directive remains.
type AnthropicLLM struct {
	backend    anthropicBackend
	schemas    SchemaSource
	dispatcher ToolDispatcher
	history    HistorySource
	policy     LoopPolicy
}

// NewAnthropicLLM creates the Anthropic adapter. apiKey is required.
func NewAnthropicLLM(baseURL, apiKey string, deps Deps) (*AnthropicLLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(opts...)

	return &AnthropicLLM{
		backend:    &anthropicSDK{client: &client},
		schemas:    deps.Schemas,
		dispatcher: deps.Dispatcher,
		history:    deps.History,
		policy:     deps.Policy.withDefaults(),
	}, nil
}

func (p *AnthropicLLM) Source() model.LLMSource { return model.SourceAnthropic }

// CreateAssistant mints a local assistant identity; Anthropic has no
// remote assistant object.
func (p *AnthropicLLM) CreateAssistant(ctx context.Context, name, instructions, modelName string) (model.Assistant, error) {
	p.schemas.Refresh()
	return model.Assistant{
		ID:           "claude_asst_" + uuid.New().String(),
		Name:         name,
		Instructions: instructions,
		Model:        modelName,
		Source:       p.Source(),
		CreatedAt:    timeNow(),
	}, nil
}

func (p *AnthropicLLM) UpdateAssistant(ctx context.Context, assistantID, name, instructions, modelName string) (model.Assistant, error) {
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

// DeleteAssistant has no remote state to clean up.
func (p *AnthropicLLM) DeleteAssistant(ctx context.Context, assistantID string) error { return nil }

// CreateThread mints a local grouping key; the full history is replayed
// from storage on each turn.
func (p *AnthropicLLM) CreateThread(ctx context.Context, assistantID, defaultName string) (model.Thread, error) {
	return model.Thread{
		ID:          "claude_thread_" + uuid.New().String(),
		Name:        defaultName,
		AssistantID: assistantID,
		CreatedAt:   timeNow(),
	}, nil
}

func (p *AnthropicLLM) DeleteThread(ctx context.Context, threadID string) error { return nil }

func (p *AnthropicLLM) RefreshTools(ctx context.Context, assistantID string) error {
	p.schemas.Refresh()
	return nil
}

// ProcessUserMessage runs one user turn through the tool-calling loop
// and returns the user message plus every produced assistant message.
func (p *AnthropicLLM) ProcessUserMessage(ctx context.Context, assistant model.Assistant, threadID, message string) ([]model.MessageItem, error) {
	p.schemas.Refresh()

	userItem := model.NewTextItem("user2claude_message_", model.RoleUser, message)

	stored, err := p.history.ReplayMessages(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("replaying thread %s: %w", threadID, err)
	}
	messages := ReplayForAnthropic(stored)
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(message)))

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(assistant.Model),
		MaxTokens:   anthropicMaxTokens,
		Temperature: anthropic.Float(anthropicTemperature),
		Tools:       ConvertToolsToAnthropic(p.schemas.Schemas()),
	}
	if assistant.Instructions != "" {
		params.System = []anthropic.TextBlockParam{{Text: assistant.Instructions}}
	}

	turn := func(ctx context.Context, results []toolResult) (modelTurn, error) {
		if len(results) > 0 {
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(results))
			for _, r := range results {
				blocks = append(blocks, anthropic.NewToolResultBlock(r.call.ID, r.output, false))
			}
			messages = append(messages, anthropic.NewUserMessage(blocks...))
		}
		params.Messages = messages

		resp, err := p.backend.newMessage(ctx, params)
		if err != nil {
			return modelTurn{}, fmt.Errorf("Anthropic message call: %w", err)
		}
		messages = append(messages, resp.ToParam())
		return anthropicTurn(resp), nil
	}

	responses, err := runToolLoop(ctx, p.policy, p.dispatcher, turn, "claude_message_")
	if err != nil {
		return nil, err
	}
	return append([]model.MessageItem{userItem}, responses...), nil
}

// anthropicTurn reduces an Anthropic response to the loop's neutral
// turn shape: text blocks in order, tool_use blocks as directives.
func anthropicTurn(resp *anthropic.Message) modelTurn {
	var turn modelTurn
	for _, block := range resp.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			turn.texts = append(turn.texts, variant.Text)
		case anthropic.ToolUseBlock:
			turn.calls = append(turn.calls, model.ToolCall{
				ID:        variant.ID,
				Name:      variant.Name,
				Arguments: ParseToolArguments(string(variant.Input)),
			})
		}
	}
	return turn
}
