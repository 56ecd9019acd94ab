package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/uhatikus/UAIssistant/model"
	"github.com/uhatikus/UAIssistant/storage"
)

// fakeService implements Orchestrator with function fields.
type fakeService struct {
	createAssistant func(source model.LLMSource, name, instructions, modelName string) (model.Assistant, error)
	postMessage     func(threadID, message string) ([]model.MessageItem, error)
	listMessages    func(threadID string) ([]model.MessageItem, error)
}

func (f *fakeService) ListAssistants(ctx context.Context) ([]model.Assistant, error) {
	return nil, nil
}

func (f *fakeService) CreateAssistant(ctx context.Context, source model.LLMSource, name, instructions, modelName string) (model.Assistant, error) {
	if f.createAssistant != nil {
		return f.createAssistant(source, name, instructions, modelName)
	}
	return model.Assistant{ID: "asst_1", Name: name, Source: source}, nil
}

func (f *fakeService) UpdateAssistant(ctx context.Context, assistantID, name, instructions, modelName string) (model.Assistant, error) {
	return model.Assistant{ID: assistantID, Name: name}, nil
}

func (f *fakeService) DeleteAssistant(ctx context.Context, assistantID string) error { return nil }

func (f *fakeService) ListThreads(ctx context.Context, assistantID string) ([]model.Thread, error) {
	return nil, nil
}

func (f *fakeService) CreateThread(ctx context.Context, assistantID string) (model.Thread, []model.MessageItem, error) {
	return model.Thread{ID: "thread_1", AssistantID: assistantID}, nil, nil
}

func (f *fakeService) UpdateThread(ctx context.Context, threadID, name string) error { return nil }
func (f *fakeService) DeleteThread(ctx context.Context, threadID string) error       { return nil }

func (f *fakeService) ListMessages(ctx context.Context, threadID string) ([]model.MessageItem, error) {
	if f.listMessages != nil {
		return f.listMessages(threadID)
	}
	return nil, nil
}

func (f *fakeService) PostThreadMessage(ctx context.Context, threadID, message string) ([]model.MessageItem, error) {
	if f.postMessage != nil {
		return f.postMessage(threadID, message)
	}
	return nil, nil
}

func (f *fakeService) SearchMessages(ctx context.Context, assistantID, query string) ([]storage.MessageMatch, error) {
	return []storage.MessageMatch{}, nil
}

func (f *fakeService) RefreshTools(ctx context.Context, assistantID string) error { return nil }

func doRequest(t *testing.T, service Orchestrator, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	srv := New("127.0.0.1:0", service)
	var reqBody *strings.Reader
	if body == "" {
		reqBody = strings.NewReader("")
	} else {
		reqBody = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reqBody)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestCreateAssistantEndpoint(t *testing.T) {
	var gotSource model.LLMSource
	service := &fakeService{
		createAssistant: func(source model.LLMSource, name, instructions, modelName string) (model.Assistant, error) {
			gotSource = source
			return model.Assistant{ID: "asst_1", Name: name, Source: source, Model: modelName}, nil
		},
	}

	rec := doRequest(t, service, http.MethodPost, "/api/assistants",
		`{"llmsource": "anthropic", "name": "Analyst", "instructions": "analyse", "model": "claude-sonnet-4-5"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d (%s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if gotSource != model.SourceAnthropic {
		t.Errorf("source: got %q, want anthropic", gotSource)
	}
	var created model.Assistant
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.ID != "asst_1" {
		t.Errorf("id: got %q", created.ID)
	}
}

func TestCreateAssistantRejectsUnknownSource(t *testing.T) {
	rec := doRequest(t, &fakeService{}, http.MethodPost, "/api/assistants",
		`{"llmsource": "bedrock", "name": "x"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
}

func TestPostMessageEndpoint(t *testing.T) {
	service := &fakeService{
		postMessage: func(threadID, message string) ([]model.MessageItem, error) {
			if threadID != "thread_1" {
				t.Errorf("thread id: got %q", threadID)
			}
			return []model.MessageItem{
				model.NewTextItem("user2claude_message_", model.RoleUser, message),
				model.NewTextItem("claude_message_", model.RoleAssistant, "answer"),
			}, nil
		},
	}

	rec := doRequest(t, service, http.MethodPost, "/api/threads/thread_1/messages",
		`{"message": "what datasets do you have?"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}
	var items []model.MessageItem
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items: got %d, want 2", len(items))
	}
}

func TestPostMessageRequiresBody(t *testing.T) {
	rec := doRequest(t, &fakeService{}, http.MethodPost, "/api/threads/thread_1/messages", `{"message": ""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
}

func TestNotFoundMapsTo404(t *testing.T) {
	service := &fakeService{
		listMessages: func(threadID string) ([]model.MessageItem, error) {
			return nil, fmt.Errorf("thread %s: %w", threadID, storage.ErrNotFound)
		},
	}
	rec := doRequest(t, service, http.MethodGet, "/api/threads/missing/messages", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", rec.Code)
	}
}

func TestListMessagesReturnsEmptyArray(t *testing.T) {
	rec := doRequest(t, &fakeService{}, http.MethodGet, "/api/threads/thread_1/messages", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("body: got %q, want []", body)
	}
}
