// Package assistant orchestrates the provider adapters and the store:
// every API operation routes through here so adapters stay free of
// persistence and the store stays free of provider knowledge.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uhatikus/UAIssistant/model"
	"github.com/uhatikus/UAIssistant/storage"
)

// Repository is the persistence surface the service needs.
type Repository interface {
	SaveAssistant(ctx context.Context, assistant model.Assistant) error
	GetAssistant(ctx context.Context, id string) (model.Assistant, error)
	ListAssistants(ctx context.Context) ([]model.Assistant, error)
	DeleteAssistant(ctx context.Context, id string) error

	SaveThread(ctx context.Context, thread model.Thread) error
	GetThread(ctx context.Context, id string) (model.Thread, error)
	ListThreads(ctx context.Context, assistantID string) ([]model.Thread, error)
	RenameThread(ctx context.Context, id, name string) error
	DeleteThread(ctx context.Context, id string) error

	SaveMessages(ctx context.Context, assistantID, threadID string, items []model.MessageItem) error
	ListMessages(ctx context.Context, threadID string) ([]model.MessageEntity, error)
	SearchMessages(ctx context.Context, assistantID, query string) ([]storage.MessageMatch, error)
}

// Service routes operations to the adapter matching each assistant's
// stored source and persists the results. An assistant created on one
// provider never talks to another.
type Service struct {
	repo Repository
	llms map[model.LLMSource]model.LLM
}

// NewService wires the configured adapters. Sources without an adapter
// (for example a missing API key) simply reject requests.
func NewService(repo Repository, llms []model.LLM) *Service {
	bySource := make(map[model.LLMSource]model.LLM, len(llms))
	for _, llm := range llms {
		bySource[llm.Source()] = llm
	}
	return &Service{repo: repo, llms: bySource}
}

func (s *Service) llmFor(source model.LLMSource) (model.LLM, error) {
	llm, ok := s.llms[source]
	if !ok {
		return nil, fmt.Errorf("no adapter configured for source %q", source)
	}
	return llm, nil
}

// ListAssistants returns every stored assistant.
func (s *Service) ListAssistants(ctx context.Context) ([]model.Assistant, error) {
	return s.repo.ListAssistants(ctx)
}

// ListThreads returns the threads of one assistant.
func (s *Service) ListThreads(ctx context.Context, assistantID string) ([]model.Thread, error) {
	return s.repo.ListThreads(ctx, assistantID)
}

// ListMessages returns every message of a thread, internal tool output
// included, in conversation order.
func (s *Service) ListMessages(ctx context.Context, threadID string) ([]model.MessageItem, error) {
	entities, err := s.repo.ListMessages(ctx, threadID)
	if err != nil {
		return nil, err
	}
	items := make([]model.MessageItem, 0, len(entities))
	for _, e := range entities {
		items = append(items, e.Item())
	}
	return items, nil
}

// SearchMessages fuzzy-searches the assistant's visible messages.
func (s *Service) SearchMessages(ctx context.Context, assistantID, query string) ([]storage.MessageMatch, error) {
	return s.repo.SearchMessages(ctx, assistantID, query)
}

// CreateAssistant creates the assistant on the selected provider and
// persists it.
func (s *Service) CreateAssistant(ctx context.Context, source model.LLMSource, name, instructions, modelName string) (model.Assistant, error) {
	llm, err := s.llmFor(source)
	if err != nil {
		return model.Assistant{}, err
	}
	created, err := llm.CreateAssistant(ctx, name, instructions, modelName)
	if err != nil {
		return model.Assistant{}, err
	}
	if err := s.repo.SaveAssistant(ctx, created); err != nil {
		return model.Assistant{}, err
	}
	slog.Info("assistant created", "assistant_id", created.ID, "source", created.Source)
	return created, nil
}

// UpdateAssistant updates name, instructions and model on the provider
// and in the store. The source never changes.
func (s *Service) UpdateAssistant(ctx context.Context, assistantID, name, instructions, modelName string) (model.Assistant, error) {
	existing, err := s.repo.GetAssistant(ctx, assistantID)
	if err != nil {
		return model.Assistant{}, err
	}
	llm, err := s.llmFor(existing.Source)
	if err != nil {
		return model.Assistant{}, err
	}
	updated, err := llm.UpdateAssistant(ctx, assistantID, name, instructions, modelName)
	if err != nil {
		return model.Assistant{}, err
	}
	updated.CreatedAt = existing.CreatedAt
	if err := s.repo.SaveAssistant(ctx, updated); err != nil {
		return model.Assistant{}, err
	}
	return updated, nil
}

// DeleteAssistant removes the assistant locally along with its threads
// and messages. Provider-side deletion is best-effort.
func (s *Service) DeleteAssistant(ctx context.Context, assistantID string) error {
	existing, err := s.repo.GetAssistant(ctx, assistantID)
	if err != nil {
		return err
	}
	if llm, err := s.llmFor(existing.Source); err == nil {
		if err := llm.DeleteAssistant(ctx, assistantID); err != nil {
			slog.Warn("provider assistant delete failed", "assistant_id", assistantID, "error", err)
		}
	}
	return s.repo.DeleteAssistant(ctx, assistantID)
}

// CreateThread opens a new conversation: the provider mints (or the
// remote API creates) the thread, the assistant produces its opening
// exchange, and both are persisted.
func (s *Service) CreateThread(ctx context.Context, assistantID string) (model.Thread, []model.MessageItem, error) {
	assistant, err := s.repo.GetAssistant(ctx, assistantID)
	if err != nil {
		return model.Thread{}, nil, err
	}
	llm, err := s.llmFor(assistant.Source)
	if err != nil {
		return model.Thread{}, nil, err
	}

	if err := llm.RefreshTools(ctx, assistantID); err != nil {
		return model.Thread{}, nil, err
	}

	defaultName := "Chat from " + time.Now().Format("02 Jan 2006, 15:04")
	thread, err := llm.CreateThread(ctx, assistantID, defaultName)
	if err != nil {
		return model.Thread{}, nil, err
	}
	if err := s.repo.SaveThread(ctx, thread); err != nil {
		return model.Thread{}, nil, err
	}

	items, err := llm.ProcessUserMessage(ctx, assistant, thread.ID, openingMessage)
	if err != nil {
		return model.Thread{}, nil, err
	}
	if err := s.repo.SaveMessages(ctx, assistantID, thread.ID, items); err != nil {
		return model.Thread{}, nil, err
	}
	slog.Info("thread created", "thread_id", thread.ID, "assistant_id", assistantID)
	return thread, items, nil
}

// openingMessage primes a fresh thread so the assistant introduces
// itself and its tools.
const openingMessage = "Hello! Please introduce yourself briefly and tell me what you can help me with."

// PostThreadMessage runs one user turn: refresh tools, let the adapter
// drive its loop, persist everything it returns.
func (s *Service) PostThreadMessage(ctx context.Context, threadID, message string) ([]model.MessageItem, error) {
	thread, err := s.repo.GetThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	assistant, err := s.repo.GetAssistant(ctx, thread.AssistantID)
	if err != nil {
		return nil, err
	}
	llm, err := s.llmFor(assistant.Source)
	if err != nil {
		return nil, err
	}

	if err := llm.RefreshTools(ctx, assistant.ID); err != nil {
		slog.Warn("tool refresh failed", "assistant_id", assistant.ID, "error", err)
	}

	items, err := llm.ProcessUserMessage(ctx, assistant, threadID, message)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveMessages(ctx, assistant.ID, threadID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateThread renames a thread. Purely local; providers have no notion
// of thread names.
func (s *Service) UpdateThread(ctx context.Context, threadID, name string) error {
	return s.repo.RenameThread(ctx, threadID, name)
}

// DeleteThread removes the thread locally; provider-side deletion is
// best-effort.
func (s *Service) DeleteThread(ctx context.Context, threadID string) error {
	thread, err := s.repo.GetThread(ctx, threadID)
	if err != nil {
		return err
	}
	assistant, err := s.repo.GetAssistant(ctx, thread.AssistantID)
	if err == nil {
		if llm, err := s.llmFor(assistant.Source); err == nil {
			if err := llm.DeleteThread(ctx, threadID); err != nil {
				slog.Warn("provider thread delete failed", "thread_id", threadID, "error", err)
			}
		}
	}
	return s.repo.DeleteThread(ctx, threadID)
}

// RefreshTools pushes the current registry schemas to the assistant's
// provider.
func (s *Service) RefreshTools(ctx context.Context, assistantID string) error {
	assistant, err := s.repo.GetAssistant(ctx, assistantID)
	if err != nil {
		return err
	}
	llm, err := s.llmFor(assistant.Source)
	if err != nil {
		return err
	}
	return llm.RefreshTools(ctx, assistantID)
}
