package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/uhatikus/UAIssistant/model"
)

// Dataset tables are regular SQLite tables named "dataset_<name>". The
// analysis tools see them through the bare name, so "dataset_iris" is
// served as "iris".
const datasetPrefix = "dataset_"

// ListDatasets returns the bare names of every dataset table.
func (s *Store) ListDatasets(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name LIKE ? ORDER BY name`, datasetPrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var table string
		if err := rows.Scan(&table); err != nil {
			return nil, fmt.Errorf("failed to scan dataset name: %w", err)
		}
		names = append(names, strings.TrimPrefix(table, datasetPrefix))
	}
	return names, rows.Err()
}

// Dataset loads a full dataset table into a frame. The name is resolved
// against the discovered table list; identifiers never come from user
// input directly.
func (s *Store) Dataset(ctx context.Context, name string) (*model.Frame, error) {
	names, err := s.ListDatasets(ctx)
	if err != nil {
		return nil, err
	}
	found := false
	for _, known := range names {
		if known == name {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("dataset %q: %w", name, ErrNotFound)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %q", datasetPrefix+name))
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s columns: %w", name, err)
	}

	frame := &model.Frame{Name: name, Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		scan := make([]any, len(columns))
		for i := range values {
			scan[i] = &values[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, fmt.Errorf("failed to scan dataset %s row: %w", name, err)
		}
		frame.Rows = append(frame.Rows, values)
	}
	return frame, rows.Err()
}

// seedDatasets creates and fills the bundled iris sample the first time
// the database is opened, so a fresh install has data to analyse.
func (s *Store) seedDatasets() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS dataset_iris (
		sepal_length REAL NOT NULL,
		sepal_width REAL NOT NULL,
		petal_length REAL NOT NULL,
		petal_width REAL NOT NULL,
		species TEXT NOT NULL
	)`)
	if err != nil {
		return err
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM dataset_iris`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	rows := [][]any{
		{5.1, 3.5, 1.4, 0.2, "setosa"},
		{4.9, 3.0, 1.4, 0.2, "setosa"},
		{4.7, 3.2, 1.3, 0.2, "setosa"},
		{4.6, 3.1, 1.5, 0.2, "setosa"},
		{5.0, 3.6, 1.4, 0.2, "setosa"},
		{5.4, 3.9, 1.7, 0.4, "setosa"},
		{4.6, 3.4, 1.4, 0.3, "setosa"},
		{5.0, 3.4, 1.5, 0.2, "setosa"},
		{7.0, 3.2, 4.7, 1.4, "versicolor"},
		{6.4, 3.2, 4.5, 1.5, "versicolor"},
		{6.9, 3.1, 4.9, 1.5, "versicolor"},
		{5.5, 2.3, 4.0, 1.3, "versicolor"},
		{6.5, 2.8, 4.6, 1.5, "versicolor"},
		{5.7, 2.8, 4.5, 1.3, "versicolor"},
		{6.3, 3.3, 4.7, 1.6, "versicolor"},
		{4.9, 2.4, 3.3, 1.0, "versicolor"},
		{6.3, 3.3, 6.0, 2.5, "virginica"},
		{5.8, 2.7, 5.1, 1.9, "virginica"},
		{7.1, 3.0, 5.9, 2.1, "virginica"},
		{6.3, 2.9, 5.6, 1.8, "virginica"},
		{6.5, 3.0, 5.8, 2.2, "virginica"},
		{7.6, 3.0, 6.6, 2.1, "virginica"},
		{4.9, 2.5, 4.5, 1.7, "virginica"},
		{7.3, 2.9, 6.3, 1.8, "virginica"},
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO dataset_iris VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(row...); err != nil {
			return err
		}
	}
	return tx.Commit()
}
