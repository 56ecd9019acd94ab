package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/sahilm/fuzzy"
	"github.com/uhatikus/UAIssistant/model"
)

// MessageMatch is one search hit across an assistant's conversations.
type MessageMatch struct {
	ThreadID   string     `json:"thread_id"`
	ThreadName string     `json:"thread_name"`
	MessageID  string     `json:"message_id"`
	Role       model.Role `json:"role"`
	Text       string     `json:"text"`
	Preview    string     `json:"preview"`
	CreatedAt  time.Time  `json:"created_at"`
	Score      int        `json:"score"`
}

type searchCorpus struct {
	texts   []string
	matches []MessageMatch
}

func (c *searchCorpus) String(i int) string { return c.texts[i] }
func (c *searchCorpus) Len() int            { return len(c.texts) }

// SearchMessages fuzzy-matches query against every visible text message
// of the assistant's threads. Results come back best score first.
func (s *Store) SearchMessages(ctx context.Context, assistantID, query string) ([]MessageMatch, error) {
	if query == "" {
		return []MessageMatch{}, nil
	}

	threads, err := s.ListThreads(ctx, assistantID)
	if err != nil {
		return nil, err
	}

	corpus := &searchCorpus{}
	for _, thread := range threads {
		messages, err := s.ReplayMessages(ctx, thread.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to search thread %s: %w", thread.ID, err)
		}
		for _, msg := range messages {
			text, ok := msg.Text()
			if !ok {
				continue
			}
			corpus.texts = append(corpus.texts, text)
			corpus.matches = append(corpus.matches, MessageMatch{
				ThreadID:   thread.ID,
				ThreadName: thread.Name,
				MessageID:  msg.ID,
				Role:       msg.Role,
				Text:       text,
				Preview:    preview(text),
				CreatedAt:  msg.CreatedAt,
			})
		}
	}

	found := fuzzy.FindFrom(query, corpus)
	results := make([]MessageMatch, 0, len(found))
	for _, f := range found {
		match := corpus.matches[f.Index]
		match.Score = f.Score
		results = append(results, match)
	}
	return results, nil
}

// preview truncates on a rune boundary so multi-byte text stays valid.
func preview(text string) string {
	runes := []rune(text)
	if len(runes) > 100 {
		return string(runes[:100]) + "..."
	}
	return text
}
