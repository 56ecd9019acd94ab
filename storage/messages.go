package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/uhatikus/UAIssistant/model"
)

// SaveMessages persists a batch of message items for one thread in a
// single transaction, preserving their order.
func (s *Store) SaveMessages(ctx context.Context, assistantID, threadID string, items []model.MessageItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO messages (id, thread_id, assistant_id, role, internal, type, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare message insert: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		content, err := json.Marshal(item.Value.Content)
		if err != nil {
			return fmt.Errorf("failed to marshal message %s content: %w", item.ID, err)
		}
		internal := 0
		if item.Internal {
			internal = 1
		}
		if _, err := stmt.ExecContext(ctx, item.ID, threadID, assistantID, string(item.Role), internal, string(item.Value.Type), string(content), item.CreatedAt); err != nil {
			return fmt.Errorf("failed to save message %s: %w", item.ID, err)
		}
	}
	return tx.Commit()
}

// ListMessages returns every message of a thread, including internal
// tool echoes, ordered oldest first.
func (s *Store) ListMessages(ctx context.Context, threadID string) ([]model.MessageEntity, error) {
	return s.queryMessages(ctx, `
		SELECT id, thread_id, assistant_id, role, internal, type, content, created_at
		FROM messages WHERE thread_id = ? ORDER BY created_at ASC, id ASC`, threadID)
}

// ReplayMessages returns the thread's non-internal messages oldest
// first: the exact projection the stateless providers resend as
// conversation history.
func (s *Store) ReplayMessages(ctx context.Context, threadID string) ([]model.MessageEntity, error) {
	return s.queryMessages(ctx, `
		SELECT id, thread_id, assistant_id, role, internal, type, content, created_at
		FROM messages WHERE thread_id = ? AND internal = 0 ORDER BY created_at ASC, id ASC`, threadID)
}

func (s *Store) queryMessages(ctx context.Context, query string, args ...any) ([]model.MessageEntity, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var entities []model.MessageEntity
	for rows.Next() {
		entity, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, rows.Err()
}

func scanMessage(rows *sql.Rows) (model.MessageEntity, error) {
	var e model.MessageEntity
	var role, msgType, content string
	var internal int
	if err := rows.Scan(&e.ID, &e.ThreadID, &e.AssistantID, &role, &internal, &msgType, &content, &e.CreatedAt); err != nil {
		return model.MessageEntity{}, fmt.Errorf("failed to scan message: %w", err)
	}
	e.Role = model.Role(role)
	e.Internal = internal != 0
	e.Value.Type = model.MessageType(msgType)
	if err := json.Unmarshal([]byte(content), &e.Value.Content); err != nil {
		return model.MessageEntity{}, fmt.Errorf("failed to unmarshal message %s content: %w", e.ID, err)
	}
	return e, nil
}
