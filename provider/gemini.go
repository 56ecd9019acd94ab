package provider

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uhatikus/UAIssistant/gemini"
	"github.com/uhatikus/UAIssistant/model"
)

const geminiDefaultModel = "gemini-1.5-pro-latest"

// Generator is the slice of the Gemini client the adapter needs; tests
// substitute a fake.
type Generator interface {
	GenerateContent(ctx context.Context, modelName string, req *gemini.GenerateContentRequest) (*gemini.GenerateContentResponse, error)
}

// GeminiLLM implements model.LLM against the Generative Language API.
// Like Anthropic, Gemini keeps no conversation state: history is
// replayed from storage each turn, with assistant turns translated to
// the provider's "model" role in both directions.
type GeminiLLM struct {
	client     Generator
	schemas    SchemaSource
	dispatcher ToolDispatcher
	history    HistorySource
	policy     LoopPolicy
}

// NewGeminiLLM creates the Gemini adapter. apiKey is required.
func NewGeminiLLM(baseURL, apiKey string, deps Deps) (*GeminiLLM, error) {
	client, err := gemini.NewClient(baseURL, apiKey)
	if err != nil {
		return nil, err
	}
	return &GeminiLLM{
		client:     client,
		schemas:    deps.Schemas,
		dispatcher: deps.Dispatcher,
		history:    deps.History,
		policy:     deps.Policy.withDefaults(),
	}, nil
}

func (p *GeminiLLM) Source() model.LLMSource { return model.SourceGemini }

func (p *GeminiLLM) CreateAssistant(ctx context.Context, name, instructions, modelName string) (model.Assistant, error) {
	p.schemas.Refresh()
	if modelName == "" {
		modelName = geminiDefaultModel
	}
	return model.Assistant{
		ID:           "gemini_asst_" + uuid.New().String(),
		Name:         name,
		Instructions: instructions,
		Model:        modelName,
		Source:       p.Source(),
		CreatedAt:    timeNow(),
	}, nil
}

func (p *GeminiLLM) UpdateAssistant(ctx context.Context, assistantID, name, instructions, modelName string) (model.Assistant, error) {
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

func (p *GeminiLLM) DeleteAssistant(ctx context.Context, assistantID string) error { return nil }

func (p *GeminiLLM) CreateThread(ctx context.Context, assistantID, defaultName string) (model.Thread, error) {
	return model.Thread{
		ID:          "gemini_thread_" + uuid.New().String(),
		Name:        defaultName,
		AssistantID: assistantID,
		CreatedAt:   timeNow(),
	}, nil
}

func (p *GeminiLLM) DeleteThread(ctx context.Context, threadID string) error { return nil }

func (p *GeminiLLM) RefreshTools(ctx context.Context, assistantID string) error {
	p.schemas.Refresh()
	return nil
}

func (p *GeminiLLM) ProcessUserMessage(ctx context.Context, assistant model.Assistant, threadID, message string) ([]model.MessageItem, error) {
	p.schemas.Refresh()

	userItem := model.NewTextItem("user2gemini_message_", model.RoleUser, message)

	stored, err := p.history.ReplayMessages(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("replaying thread %s: %w", threadID, err)
	}
	contents := ReplayForGemini(stored)
	contents = append(contents, gemini.Content{
		Role:  "user",
		Parts: []gemini.Part{{Text: message}},
	})

	modelName := assistant.Model
	if modelName == "" {
		modelName = geminiDefaultModel
	}
	declarations := ConvertToolsToGemini(p.schemas.Schemas())

	var system *gemini.Content
	if assistant.Instructions != "" {
		system = &gemini.Content{Parts: []gemini.Part{{Text: assistant.Instructions}}}
	}

	turn := func(ctx context.Context, results []toolResult) (modelTurn, error) {
		if len(results) > 0 {
			parts := make([]gemini.Part, 0, len(results))
			for _, r := range results {
				parts = append(parts, gemini.Part{
					FunctionResponse: &gemini.FunctionResponse{
						Name:     r.call.Name,
						Response: map[string]any{"result": r.output},
					},
				})
			}
			contents = append(contents, gemini.Content{Role: "user", Parts: parts})
		}

		req := &gemini.GenerateContentRequest{
			Contents:          contents,
			SystemInstruction: system,
		}
		if len(declarations) > 0 {
			req.Tools = []gemini.Tool{{FunctionDeclarations: declarations}}
		}

		resp, err := p.client.GenerateContent(ctx, modelName, req)
		if err != nil {
			return modelTurn{}, fmt.Errorf("Gemini generate call: %w", err)
		}

		parts := resp.Parts()
		contents = append(contents, gemini.Content{Role: "model", Parts: parts})
		return geminiTurn(parts), nil
	}

	responses, err := runToolLoop(ctx, p.policy, p.dispatcher, turn, "gemini_message_")
	if err != nil {
		return nil, err
	}
	return append([]model.MessageItem{userItem}, responses...), nil
}

// geminiTurn reduces candidate parts to the loop's neutral turn shape.
// Gemini assigns no call IDs; results are matched back by name.
func geminiTurn(parts []gemini.Part) modelTurn {
	var turn modelTurn
	for _, part := range parts {
		if part.FunctionCall != nil {
			turn.calls = append(turn.calls, model.ToolCall{
				ID:        part.FunctionCall.Name,
				Name:      part.FunctionCall.Name,
				Arguments: part.FunctionCall.Args,
			})
			continue
		}
		if part.Text != "" {
			turn.texts = append(turn.texts, part.Text)
		}
	}
	return turn
}
