package server

import (
	"encoding/json"
	"net/http"

	"github.com/uhatikus/UAIssistant/model"
)

type assistantRequest struct {
	Source       string `json:"llmsource"`
	Name         string `json:"name"`
	Instructions string `json:"instructions"`
	Model        string `json:"model"`
}

type threadRequest struct {
	Name string `json:"name"`
}

type messageRequest struct {
	Message string `json:"message"`
}

type threadResponse struct {
	Thread   model.Thread        `json:"thread"`
	Messages []model.MessageItem `json:"messages"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func (s *Server) handleListAssistants(w http.ResponseWriter, r *http.Request) {
	assistants, err := s.service.ListAssistants(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if assistants == nil {
		assistants = []model.Assistant{}
	}
	writeJSON(w, http.StatusOK, assistants)
}

func (s *Server) handleCreateAssistant(w http.ResponseWriter, r *http.Request) {
	var req assistantRequest
	if !decode(w, r, &req) {
		return
	}
	source, err := model.ParseLLMSource(req.Source)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	created, err := s.service.CreateAssistant(r.Context(), source, req.Name, req.Instructions, req.Model)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateAssistant(w http.ResponseWriter, r *http.Request) {
	var req assistantRequest
	if !decode(w, r, &req) {
		return
	}
	updated, err := s.service.UpdateAssistant(r.Context(), r.PathValue("id"), req.Name, req.Instructions, req.Model)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteAssistant(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteAssistant(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleRefreshTools(w http.ResponseWriter, r *http.Request) {
	if err := s.service.RefreshTools(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListThreads(w http.ResponseWriter, r *http.Request) {
	threads, err := s.service.ListThreads(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if threads == nil {
		threads = []model.Thread{}
	}
	writeJSON(w, http.StatusOK, threads)
}

func (s *Server) handleCreateThread(w http.ResponseWriter, r *http.Request) {
	thread, messages, err := s.service.CreateThread(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, threadResponse{Thread: thread, Messages: messages})
}

func (s *Server) handleUpdateThread(w http.ResponseWriter, r *http.Request) {
	var req threadRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.service.UpdateThread(r.Context(), r.PathValue("tid"), req.Name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteThread(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteThread(r.Context(), r.PathValue("tid")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := s.service.ListMessages(r.Context(), r.PathValue("tid"))
	if err != nil {
		writeError(w, err)
		return
	}
	if messages == nil {
		messages = []model.MessageItem{}
	}
	writeJSON(w, http.StatusOK, messages)
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}
	messages, err := s.service.PostThreadMessage(r.Context(), r.PathValue("tid"), req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (s *Server) handleSearchMessages(w http.ResponseWriter, r *http.Request) {
	matches, err := s.service.SearchMessages(r.Context(), r.PathValue("id"), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}
