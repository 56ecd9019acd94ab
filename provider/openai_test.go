package provider

import (
	"context"
	"testing"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/uhatikus/UAIssistant/model"
	"github.com/uhatikus/UAIssistant/provider/testutil"
)

// fakeBackend scripts the Assistants API for the run state machine.
type fakeBackend struct {
	listRunsFunc   func(threadID string) ([]openai.Run, error)
	getRunFunc     func(threadID, runID string) (*openai.Run, error)
	createRunFunc  func(threadID, assistantID string) (*openai.Run, error)
	submitFunc     func(threadID, runID string, outputs []openai.BetaThreadRunSubmitToolOutputsParamsToolOutput) (*openai.Run, error)
	messagesFunc   func(threadID string) ([]openai.Message, error)
	cancelledRuns  []string
	submittedCalls [][]openai.BetaThreadRunSubmitToolOutputsParamsToolOutput
}

func (f *fakeBackend) listRuns(ctx context.Context, threadID string) ([]openai.Run, error) {
	if f.listRunsFunc != nil {
		return f.listRunsFunc(threadID)
	}
	return nil, nil
}

func (f *fakeBackend) getRun(ctx context.Context, threadID, runID string) (*openai.Run, error) {
	return f.getRunFunc(threadID, runID)
}

func (f *fakeBackend) cancelRun(ctx context.Context, threadID, runID string) error {
	f.cancelledRuns = append(f.cancelledRuns, runID)
	return nil
}

func (f *fakeBackend) createRun(ctx context.Context, threadID, assistantID string) (*openai.Run, error) {
	return f.createRunFunc(threadID, assistantID)
}

func (f *fakeBackend) submitToolOutputs(ctx context.Context, threadID, runID string, outputs []openai.BetaThreadRunSubmitToolOutputsParamsToolOutput) (*openai.Run, error) {
	f.submittedCalls = append(f.submittedCalls, outputs)
	return f.submitFunc(threadID, runID, outputs)
}

func (f *fakeBackend) createMessage(ctx context.Context, threadID, text string) (*openai.Message, error) {
	return &openai.Message{ID: "msg_user_1"}, nil
}

func (f *fakeBackend) listMessages(ctx context.Context, threadID string) ([]openai.Message, error) {
	if f.messagesFunc != nil {
		return f.messagesFunc(threadID)
	}
	return nil, nil
}

func newTestOpenAI(backend *fakeBackend, dispatcher *testutil.MockDispatcher, policy LoopPolicy) *OpenAILLM {
	return &OpenAILLM{
		backend:    backend,
		schemas:    &testutil.MockSchemas{},
		dispatcher: dispatcher,
		policy:     policy.withDefaults(),
		sleep:      func(time.Duration) {},
	}
}

func textMessage(id, text string) openai.Message {
	return openai.Message{
		ID: id,
		Content: []openai.MessageContentUnion{
			{Type: "text", Text: openai.Text{Value: text}},
		},
	}
}

func TestOpenAIProcessUserMessageCompletedRun(t *testing.T) {
	backend := &fakeBackend{
		createRunFunc: func(threadID, assistantID string) (*openai.Run, error) {
			return &openai.Run{ID: "run_1", Status: openai.RunStatusQueued}, nil
		},
		getRunFunc: func(threadID, runID string) (*openai.Run, error) {
			return &openai.Run{ID: runID, Status: openai.RunStatusCompleted}, nil
		},
		messagesFunc: func(threadID string) ([]openai.Message, error) {
			return []openai.Message{textMessage("msg_final", "The mean sepal length is 5.84.")}, nil
		},
	}
	llm := newTestOpenAI(backend, &testutil.MockDispatcher{}, DefaultLoopPolicy())

	items, err := llm.ProcessUserMessage(context.Background(), model.Assistant{ID: "asst_1"}, "thread_1", "what is the mean?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("item count: got %d, want 2", len(items))
	}
	if items[0].Role != model.RoleUser {
		t.Errorf("first item role: got %q, want user", items[0].Role)
	}
	if text, _ := items[1].Text(); text != "The mean sepal length is 5.84." {
		t.Errorf("assistant text: got %q", text)
	}
}

func TestOpenAIPreflightCancelsStaleRun(t *testing.T) {
	backend := &fakeBackend{
		listRunsFunc: func(threadID string) ([]openai.Run, error) {
			return []openai.Run{{ID: "run_stale", Status: openai.RunStatusInProgress}}, nil
		},
		getRunFunc: func(threadID, runID string) (*openai.Run, error) {
			return &openai.Run{ID: runID, Status: openai.RunStatusCancelled}, nil
		},
		createRunFunc: func(threadID, assistantID string) (*openai.Run, error) {
			return &openai.Run{ID: "run_2", Status: openai.RunStatusCompleted}, nil
		},
		messagesFunc: func(threadID string) ([]openai.Message, error) {
			return []openai.Message{textMessage("msg_final", "fresh answer")}, nil
		},
	}
	llm := newTestOpenAI(backend, &testutil.MockDispatcher{}, DefaultLoopPolicy())

	if _, err := llm.ProcessUserMessage(context.Background(), model.Assistant{ID: "asst_1"}, "thread_1", "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(backend.cancelledRuns) != 1 || backend.cancelledRuns[0] != "run_stale" {
		t.Errorf("cancelled runs: got %v, want [run_stale]", backend.cancelledRuns)
	}
}

func TestOpenAIPreflightUnsettledRunStillSends(t *testing.T) {
	backend := &fakeBackend{
		listRunsFunc: func(threadID string) ([]openai.Run, error) {
			return []openai.Run{{ID: "run_stale", Status: openai.RunStatusInProgress}}, nil
		},
		getRunFunc: func(threadID, runID string) (*openai.Run, error) {
			if runID == "run_stale" {
				return &openai.Run{ID: runID, Status: openai.RunStatusInProgress}, nil
			}
			return &openai.Run{ID: runID, Status: openai.RunStatusCompleted}, nil
		},
		createRunFunc: func(threadID, assistantID string) (*openai.Run, error) {
			return &openai.Run{ID: "run_2", Status: openai.RunStatusCompleted}, nil
		},
		messagesFunc: func(threadID string) ([]openai.Message, error) {
			return []openai.Message{textMessage("msg_final", "fresh answer")}, nil
		},
	}
	llm := newTestOpenAI(backend, &testutil.MockDispatcher{}, LoopPolicy{MaxPollIterations: 3, PollInterval: time.Nanosecond})

	items, err := llm.ProcessUserMessage(context.Background(), model.Assistant{ID: "asst_1"}, "thread_1", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(backend.cancelledRuns) == 0 || backend.cancelledRuns[0] != "run_stale" {
		t.Errorf("cancelled runs: got %v, want run_stale first", backend.cancelledRuns)
	}
	if text, _ := items[len(items)-1].Text(); text != "fresh answer" {
		t.Errorf("final text: got %q", text)
	}
}

func TestOpenAIRequiresActionSubmitsOneBatch(t *testing.T) {
	requiresAction := &openai.Run{
		ID:     "run_1",
		Status: openai.RunStatusRequiresAction,
		RequiredAction: openai.RunRequiredAction{
			SubmitToolOutputs: openai.RunRequiredActionSubmitToolOutputs{
				ToolCalls: []openai.RequiredActionFunctionToolCall{
					{ID: "call_a", Function: openai.RequiredActionFunctionToolCallFunction{Name: "get_datasets", Arguments: "{}"}},
					{ID: "call_b", Function: openai.RequiredActionFunctionToolCallFunction{Name: "get_dataset_columns", Arguments: `{"dataset_name":"iris"}`}},
				},
			},
		},
	}
	backend := &fakeBackend{
		createRunFunc: func(threadID, assistantID string) (*openai.Run, error) {
			return requiresAction, nil
		},
		getRunFunc: func(threadID, runID string) (*openai.Run, error) {
			t.Fatal("requires_action run must not be polled before dispatch")
			return nil, nil
		},
		submitFunc: func(threadID, runID string, outputs []openai.BetaThreadRunSubmitToolOutputsParamsToolOutput) (*openai.Run, error) {
			return &openai.Run{ID: runID, Status: openai.RunStatusCompleted}, nil
		},
		messagesFunc: func(threadID string) ([]openai.Message, error) {
			return []openai.Message{textMessage("msg_final", "columns listed")}, nil
		},
	}
	dispatcher := &testutil.MockDispatcher{}
	llm := newTestOpenAI(backend, dispatcher, DefaultLoopPolicy())

	items, err := llm.ProcessUserMessage(context.Background(), model.Assistant{ID: "asst_1"}, "thread_1", "list columns")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(dispatcher.Calls) != 2 {
		t.Fatalf("dispatched calls: got %d, want 2", len(dispatcher.Calls))
	}
	if dispatcher.Calls[0].Name != "get_datasets" || dispatcher.Calls[1].Name != "get_dataset_columns" {
		t.Errorf("dispatch order: got %v", dispatcher.Calls)
	}
	if got := dispatcher.Calls[1].Args["dataset_name"]; got != "iris" {
		t.Errorf("parsed arguments: got %v", got)
	}
	if len(backend.submittedCalls) != 1 {
		t.Fatalf("submit batches: got %d, want 1", len(backend.submittedCalls))
	}
	if len(backend.submittedCalls[0]) != 2 {
		t.Errorf("batch size: got %d, want 2", len(backend.submittedCalls[0]))
	}
	if text, _ := items[len(items)-1].Text(); text != "columns listed" {
		t.Errorf("final text: got %q", text)
	}
}

func TestOpenAIPollCeilingDegradesToFallback(t *testing.T) {
	backend := &fakeBackend{
		createRunFunc: func(threadID, assistantID string) (*openai.Run, error) {
			return &openai.Run{ID: "run_slow", Status: openai.RunStatusQueued}, nil
		},
		getRunFunc: func(threadID, runID string) (*openai.Run, error) {
			return &openai.Run{ID: runID, Status: openai.RunStatusInProgress}, nil
		},
	}
	llm := newTestOpenAI(backend, &testutil.MockDispatcher{}, LoopPolicy{MaxPollIterations: 3, PollInterval: time.Nanosecond})

	items, err := llm.ProcessUserMessage(context.Background(), model.Assistant{ID: "asst_1"}, "thread_1", "hang forever")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(backend.cancelledRuns) != 1 || backend.cancelledRuns[0] != "run_slow" {
		t.Errorf("cancelled runs: got %v, want [run_slow]", backend.cancelledRuns)
	}
	last := items[len(items)-1]
	if text, _ := last.Text(); text != FallbackText {
		t.Errorf("fallback text: got %q", text)
	}
}
