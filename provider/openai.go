package provider

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/uhatikus/UAIssistant/model"
)

// OpenAILLM implements model.LLM against OpenAI's Assistants API.
// Unlike the stateless providers, conversation state lives in remote
// thread and run objects: a turn first cancels any lingering run on the
// thread (two concurrent runs on one thread are forbidden by the
// provider), then submits the user message, creates a run and polls it
// to completion, dispatching batched tool calls whenever the run enters
// requires_action.
type OpenAILLM struct {
	backend    openaiBackend
	client     openai.Client
	schemas    SchemaSource
	dispatcher ToolDispatcher
	policy     LoopPolicy
	sleep      func(time.Duration)
}

// openaiBackend is the slice of the Assistants API the message loop
// uses. Polling is modeled as an immutable state read: getRun returns a
// fresh run snapshot, the caller loops. Tests substitute a fake.
type openaiBackend interface {
	listRuns(ctx context.Context, threadID string) ([]openai.Run, error)
	getRun(ctx context.Context, threadID, runID string) (*openai.Run, error)
	cancelRun(ctx context.Context, threadID, runID string) error
	createRun(ctx context.Context, threadID, assistantID string) (*openai.Run, error)
	submitToolOutputs(ctx context.Context, threadID, runID string, outputs []openai.BetaThreadRunSubmitToolOutputsParamsToolOutput) (*openai.Run, error)
	createMessage(ctx context.Context, threadID, text string) (*openai.Message, error)
	listMessages(ctx context.Context, threadID string) ([]openai.Message, error)
}

// NewOpenAILLM creates the OpenAI adapter. apiKey is required.
func NewOpenAILLM(baseURL, apiKey string, deps Deps) (*OpenAILLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)

	return &OpenAILLM{
		backend:    &sdkBackend{client: client},
		client:     client,
		schemas:    deps.Schemas,
		dispatcher: deps.Dispatcher,
		policy:     deps.Policy.withDefaults(),
		sleep:      time.Sleep,
	}, nil
}

func (p *OpenAILLM) Source() model.LLMSource { return model.SourceOpenAI }

func (p *OpenAILLM) CreateAssistant(ctx context.Context, name, instructions, modelName string) (model.Assistant, error) {
	p.schemas.Refresh()
	created, err := p.client.Beta.Assistants.New(ctx, openai.BetaAssistantNewParams{
		Model:        openai.ChatModel(modelName),
		Name:         openai.String(name),
		Instructions: openai.String(instructions),
		Tools:        ConvertToolsToOpenAI(p.schemas.Schemas()),
	})
	if err != nil {
		return model.Assistant{}, fmt.Errorf("creating OpenAI assistant: %w", err)
	}
	return model.Assistant{
		ID:           created.ID,
		Name:         created.Name,
		Instructions: created.Instructions,
		Model:        created.Model,
		Source:       p.Source(),
		CreatedAt:    time.Unix(created.CreatedAt, 0),
	}, nil
}

func (p *OpenAILLM) UpdateAssistant(ctx context.Context, assistantID, name, instructions, modelName string) (model.Assistant, error) {
	p.schemas.Refresh()
	updated, err := p.client.Beta.Assistants.Update(ctx, assistantID, openai.BetaAssistantUpdateParams{
		Model:        openai.BetaAssistantUpdateParamsModel(modelName),
		Name:         openai.String(name),
		Instructions: openai.String(instructions),
		Tools:        ConvertToolsToOpenAI(p.schemas.Schemas()),
	})
	if err != nil {
		return model.Assistant{}, fmt.Errorf("updating OpenAI assistant %s: %w", assistantID, err)
	}
	return model.Assistant{
		ID:           updated.ID,
		Name:         updated.Name,
		Instructions: updated.Instructions,
		Model:        updated.Model,
		Source:       p.Source(),
		CreatedAt:    time.Unix(updated.CreatedAt, 0),
	}, nil
}

// DeleteAssistant removes the remote assistant. Failures are logged and
// swallowed so local deletion proceeds regardless of remote cleanup.
func (p *OpenAILLM) DeleteAssistant(ctx context.Context, assistantID string) error {
	if _, err := p.client.Beta.Assistants.Delete(ctx, assistantID); err != nil {
		slog.Warn("failed to delete OpenAI assistant", "assistant_id", assistantID, "error", err)
	}
	return nil
}

func (p *OpenAILLM) CreateThread(ctx context.Context, assistantID, defaultName string) (model.Thread, error) {
	created, err := p.client.Beta.Threads.New(ctx, openai.BetaThreadNewParams{})
	if err != nil {
		return model.Thread{}, fmt.Errorf("creating OpenAI thread: %w", err)
	}
	return model.Thread{
		ID:          created.ID,
		Name:        defaultName,
		AssistantID: assistantID,
		CreatedAt:   time.Unix(created.CreatedAt, 0),
	}, nil
}

// DeleteThread removes the remote thread; failures are logged and
// swallowed like assistant deletion.
func (p *OpenAILLM) DeleteThread(ctx context.Context, threadID string) error {
	if _, err := p.client.Beta.Threads.Delete(ctx, threadID); err != nil {
		slog.Warn("failed to delete OpenAI thread", "thread_id", threadID, "error", err)
	}
	return nil
}

// RefreshTools re-derives the registry schemas and pushes them to the
// remote assistant object.
func (p *OpenAILLM) RefreshTools(ctx context.Context, assistantID string) error {
	p.schemas.Refresh()
	_, err := p.client.Beta.Assistants.Update(ctx, assistantID, openai.BetaAssistantUpdateParams{
		Tools: ConvertToolsToOpenAI(p.schemas.Schemas()),
	})
	if err != nil {
		return fmt.Errorf("updating OpenAI assistant tools: %w", err)
	}
	return nil
}

func (p *OpenAILLM) ProcessUserMessage(ctx context.Context, assistant model.Assistant, threadID, message string) ([]model.MessageItem, error) {
	userItem, err := p.sendMessage(ctx, threadID, message)
	if err != nil {
		return nil, err
	}

	responses, err := p.getResponse(ctx, assistant.ID, threadID)
	if err != nil {
		return nil, err
	}
	// A nil response list means the run never reached a terminal state
	// within the polling limits: return the degraded placeholder instead.
	if responses == nil {
		responses = []model.MessageItem{p.policy.fallbackItem()}
	}
	return append([]model.MessageItem{userItem}, responses...), nil
}

// sendMessage appends the user turn to the remote thread. Pre-flight:
// if the thread still has a non-terminal run, cancel it and wait
// (bounded) until it leaves the pending states, since the provider
// rejects a new run while one is active.
func (p *OpenAILLM) sendMessage(ctx context.Context, threadID, message string) (model.MessageItem, error) {
	runs, err := p.backend.listRuns(ctx, threadID)
	if err != nil {
		return model.MessageItem{}, fmt.Errorf("listing runs for thread %s: %w", threadID, err)
	}
	if len(runs) > 0 && !runTerminal(runs[0].Status) {
		stale := runs[0]
		slog.Info("cancelling stale run", "thread_id", threadID, "run_id", stale.ID, "status", stale.Status)
		if err := p.backend.cancelRun(ctx, threadID, stale.ID); err != nil {
			slog.Warn("failed to cancel stale run", "run_id", stale.ID, "error", err)
		}
		settled, err := p.waitOnRun(ctx, threadID, &stale)
		if err != nil {
			return model.MessageItem{}, err
		}
		if settled == nil {
			// Proceed anyway; if the run is still active the message
			// call fails and reports the real provider error.
			slog.Warn("stale run did not settle, proceeding", "thread_id", threadID, "run_id", stale.ID)
		}
	}

	created, err := p.backend.createMessage(ctx, threadID, message)
	if err != nil {
		return model.MessageItem{}, fmt.Errorf("sending message to thread %s: %w", threadID, err)
	}

	return model.MessageItem{
		ID:        created.ID,
		Role:      model.RoleUser,
		CreatedAt: timeNow(),
		Value: model.MessageValue{
			Type:    model.MessageTypeText,
			Content: map[string]any{"message": message},
		},
	}, nil
}

// getResponse creates a run and advances it through its state machine.
// A requires_action state dispatches all pending tool calls in emitted
// order and submits their outputs as one batch. Returns nil (no error)
// when the tool-iteration ceiling is exhausted.
func (p *OpenAILLM) getResponse(ctx context.Context, assistantID, threadID string) ([]model.MessageItem, error) {
	run, err := p.backend.createRun(ctx, threadID, assistantID)
	if err != nil {
		return nil, fmt.Errorf("creating run on thread %s: %w", threadID, err)
	}

	var frontend []model.MessageItem
	itr := 0
	for {
		run, err = p.waitOnRun(ctx, threadID, run)
		if err != nil {
			return nil, err
		}
		if run == nil {
			return nil, nil
		}
		if runTerminal(run.Status) {
			break
		}
		itr++
		if itr > p.policy.MaxToolIterations {
			return nil, nil
		}
		if run.Status != openai.RunStatusRequiresAction {
			continue
		}

		calls := run.RequiredAction.SubmitToolOutputs.ToolCalls
		outputs := make([]openai.BetaThreadRunSubmitToolOutputsParamsToolOutput, 0, len(calls))
		for _, call := range calls {
			output, items := p.dispatcher.Call(ctx, call.Function.Name, ParseToolArguments(call.Function.Arguments))
			outputs = append(outputs, openai.BetaThreadRunSubmitToolOutputsParamsToolOutput{
				ToolCallID: openai.String(call.ID),
				Output:     openai.String(output),
			})
			frontend = append(frontend, items...)
		}

		run, err = p.backend.submitToolOutputs(ctx, threadID, run.ID, outputs)
		if err != nil {
			return nil, fmt.Errorf("submitting tool outputs for run %s: %w", run.ID, err)
		}
	}

	// The newest thread message is the assistant's final answer.
	messages, err := p.backend.listMessages(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("listing messages for thread %s: %w", threadID, err)
	}
	if len(messages) == 0 {
		return frontend, nil
	}
	final := messages[0]
	for _, content := range final.Content {
		if content.Type != "text" {
			continue
		}
		text := StripThinking(content.Text.Value)
		if text == "" {
			continue
		}
		frontend = append(frontend, model.MessageItem{
			ID:        final.ID,
			Role:      model.RoleAssistant,
			CreatedAt: timeNow(),
			Value: model.MessageValue{
				Type:    model.MessageTypeText,
				Content: map[string]any{"message": text},
			},
		})
	}
	return frontend, nil
}

// waitOnRun polls the run at the policy's fixed interval until it
// leaves the pending states or the poll ceiling is hit. On ceiling a
// best-effort cancel is attempted and a nil run is returned so the
// caller degrades the turn instead of reading stale thread state.
func (p *OpenAILLM) waitOnRun(ctx context.Context, threadID string, run *openai.Run) (*openai.Run, error) {
	itr := 0
	for runPending(run.Status) && itr <= p.policy.MaxPollIterations {
		itr++
		fresh, err := p.backend.getRun(ctx, threadID, run.ID)
		if err != nil {
			return nil, fmt.Errorf("polling run %s: %w", run.ID, err)
		}
		run = fresh
		if runPending(run.Status) {
			p.sleep(p.policy.PollInterval)
		}
	}

	if runPending(run.Status) {
		slog.Warn("run poll ceiling exceeded, cancelling", "run_id", run.ID, "status", run.Status)
		if err := p.backend.cancelRun(ctx, threadID, run.ID); err != nil {
			slog.Warn("failed to cancel timed-out run", "run_id", run.ID, "error", err)
		}
		return nil, nil
	}
	return run, nil
}

func runTerminal(status openai.RunStatus) bool {
	switch status {
	case openai.RunStatusExpired, openai.RunStatusCompleted, openai.RunStatusFailed, openai.RunStatusCancelled, openai.RunStatusIncomplete:
		return true
	default:
		return false
	}
}

func runPending(status openai.RunStatus) bool {
	switch status {
	case openai.RunStatusQueued, openai.RunStatusInProgress, openai.RunStatusCancelling:
		return true
	default:
		return false
	}
}

// sdkBackend implements openaiBackend with the official SDK.
type sdkBackend struct {
	client openai.Client
}

func (b *sdkBackend) listRuns(ctx context.Context, threadID string) ([]openai.Run, error) {
	page, err := b.client.Beta.Threads.Runs.List(ctx, threadID, openai.BetaThreadRunListParams{
		Limit: openai.Int(1),
	})
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}

func (b *sdkBackend) getRun(ctx context.Context, threadID, runID string) (*openai.Run, error) {
	return b.client.Beta.Threads.Runs.Get(ctx, threadID, runID)
}

func (b *sdkBackend) cancelRun(ctx context.Context, threadID, runID string) error {
	_, err := b.client.Beta.Threads.Runs.Cancel(ctx, threadID, runID)
	return err
}

func (b *sdkBackend) createRun(ctx context.Context, threadID, assistantID string) (*openai.Run, error) {
	return b.client.Beta.Threads.Runs.New(ctx, threadID, openai.BetaThreadRunNewParams{
		AssistantID: assistantID,
	})
}

func (b *sdkBackend) submitToolOutputs(ctx context.Context, threadID, runID string, outputs []openai.BetaThreadRunSubmitToolOutputsParamsToolOutput) (*openai.Run, error) {
	return b.client.Beta.Threads.Runs.SubmitToolOutputs(ctx, threadID, runID, openai.BetaThreadRunSubmitToolOutputsParams{
		ToolOutputs: outputs,
	})
}

func (b *sdkBackend) createMessage(ctx context.Context, threadID, text string) (*openai.Message, error) {
	return b.client.Beta.Threads.Messages.New(ctx, threadID, openai.BetaThreadMessageNewParams{
		Role: openai.BetaThreadMessageNewParamsRoleUser,
		Content: openai.BetaThreadMessageNewParamsContentUnion{
			OfString: openai.String(text),
		},
	})
}

func (b *sdkBackend) listMessages(ctx context.Context, threadID string) ([]openai.Message, error) {
	page, err := b.client.Beta.Threads.Messages.List(ctx, threadID, openai.BetaThreadMessageListParams{})
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}
