package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient("", ""); err == nil {
		t.Fatal("expected error for missing API key")
	}
	client, err := NewClient("", "test-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.baseURL != defaultBaseURL {
		t.Errorf("base URL: got %q", client.baseURL)
	}
}

func TestGenerateContent(t *testing.T) {
	var gotPath, gotKey string
	var gotBody GenerateContentRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(GenerateContentResponse{
			Candidates: []Candidate{
				{Content: Content{Role: "model", Parts: []Part{
					{FunctionCall: &FunctionCall{Name: "get_datasets", Args: map[string]any{}}},
				}}},
			},
		})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "test-key")
	if err != nil {
		t.Fatal(err)
	}

	req := &GenerateContentRequest{
		Contents: []Content{{Role: "user", Parts: []Part{{Text: "list datasets"}}}},
		Tools: []Tool{{FunctionDeclarations: []FunctionDeclaration{
			{Name: "get_datasets", Description: "lists datasets"},
		}}},
	}
	resp, err := client.GenerateContent(context.Background(), "gemini-1.5-pro-latest", req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/models/gemini-1.5-pro-latest:generateContent" {
		t.Errorf("path: got %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("key: got %q", gotKey)
	}
	if len(gotBody.Contents) != 1 || gotBody.Contents[0].Parts[0].Text != "list datasets" {
		t.Errorf("request body: %+v", gotBody)
	}

	parts := resp.Parts()
	if len(parts) != 1 || parts[0].FunctionCall == nil {
		t.Fatalf("parts: %+v", parts)
	}
	if parts[0].FunctionCall.Name != "get_datasets" {
		t.Errorf("function call: got %q", parts[0].FunctionCall.Name)
	}
}

func TestGenerateContentAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "invalid argument"}}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "test-key")
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.GenerateContent(context.Background(), "gemini-1.5-pro-latest", &GenerateContentRequest{})
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
	if !strings.Contains(err.Error(), "status 400") {
		t.Errorf("error should carry status: %v", err)
	}
}

func TestResponsePartsNilSafety(t *testing.T) {
	var nilResp *GenerateContentResponse
	if parts := nilResp.Parts(); parts != nil {
		t.Errorf("nil response parts: got %v", parts)
	}
	empty := &GenerateContentResponse{}
	if parts := empty.Parts(); parts != nil {
		t.Errorf("empty response parts: got %v", parts)
	}
}
