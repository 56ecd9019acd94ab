package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uhatikus/UAIssistant/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// SaveAssistant inserts or replaces an assistant row.
func (s *Store) SaveAssistant(ctx context.Context, assistant model.Assistant) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO assistants (id, name, instructions, model, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		assistant.ID, assistant.Name, assistant.Instructions, assistant.Model, string(assistant.Source), assistant.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save assistant %s: %w", assistant.ID, err)
	}
	return nil
}

// GetAssistant loads one assistant by id.
func (s *Store) GetAssistant(ctx context.Context, id string) (model.Assistant, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, instructions, model, source, created_at
		FROM assistants WHERE id = ?`, id)

	var a model.Assistant
	var source string
	if err := row.Scan(&a.ID, &a.Name, &a.Instructions, &a.Model, &source, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Assistant{}, fmt.Errorf("assistant %s: %w", id, ErrNotFound)
		}
		return model.Assistant{}, fmt.Errorf("failed to load assistant %s: %w", id, err)
	}
	a.Source = model.LLMSource(source)
	return a, nil
}

// ListAssistants returns all assistants, newest first.
func (s *Store) ListAssistants(ctx context.Context) ([]model.Assistant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, instructions, model, source, created_at
		FROM assistants ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list assistants: %w", err)
	}
	defer rows.Close()

	var assistants []model.Assistant
	for rows.Next() {
		var a model.Assistant
		var source string
		if err := rows.Scan(&a.ID, &a.Name, &a.Instructions, &a.Model, &source, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assistant: %w", err)
		}
		a.Source = model.LLMSource(source)
		assistants = append(assistants, a)
	}
	return assistants, rows.Err()
}

// DeleteAssistant removes the assistant together with its threads and
// messages.
func (s *Store) DeleteAssistant(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM messages WHERE assistant_id = ?`,
		`DELETE FROM threads WHERE assistant_id = ?`,
		`DELETE FROM assistants WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("failed to delete assistant %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// SaveThread inserts or replaces a thread row.
func (s *Store) SaveThread(ctx context.Context, thread model.Thread) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO threads (id, assistant_id, name, created_at)
		VALUES (?, ?, ?, ?)`,
		thread.ID, thread.AssistantID, thread.Name, thread.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save thread %s: %w", thread.ID, err)
	}
	return nil
}

// GetThread loads one thread by id.
func (s *Store) GetThread(ctx context.Context, id string) (model.Thread, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, assistant_id, name, created_at FROM threads WHERE id = ?`, id)

	var t model.Thread
	if err := row.Scan(&t.ID, &t.AssistantID, &t.Name, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Thread{}, fmt.Errorf("thread %s: %w", id, ErrNotFound)
		}
		return model.Thread{}, fmt.Errorf("failed to load thread %s: %w", id, err)
	}
	return t, nil
}

// ListThreads returns the threads of one assistant, newest first.
func (s *Store) ListThreads(ctx context.Context, assistantID string) ([]model.Thread, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, assistant_id, name, created_at
		FROM threads WHERE assistant_id = ? ORDER BY created_at DESC`, assistantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	defer rows.Close()

	var threads []model.Thread
	for rows.Next() {
		var t model.Thread
		if err := rows.Scan(&t.ID, &t.AssistantID, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan thread: %w", err)
		}
		threads = append(threads, t)
	}
	return threads, rows.Err()
}

// RenameThread updates a thread's display name.
func (s *Store) RenameThread(ctx context.Context, id, name string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE threads SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("failed to rename thread %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("thread %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteThread removes the thread and its messages.
func (s *Store) DeleteThread(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE thread_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete thread %s messages: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM threads WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete thread %s: %w", id, err)
	}
	return tx.Commit()
}
