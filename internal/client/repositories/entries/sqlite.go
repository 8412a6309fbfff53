package entries

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/fireflow/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, namespace, kind, key string) (string, bool, error) {
	query := `SELECT value FROM preferences WHERE namespace = ? AND kind = ? AND key = ?`

	var value string
	err := r.db.QueryRowContext(ctx, query, namespace, kind, key).Scan(&value)
	if dbx.IsNoRows(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get preference %s/%s/%s: %w", namespace, kind, key, err)
	}
	return value, true, nil
}

func (r *SQLiteRepository) Exists(ctx context.Context, namespace, kind, key string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM preferences WHERE namespace = ? AND kind = ? AND key = ?)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, namespace, kind, key).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check preference %s/%s/%s: %w", namespace, kind, key, err)
	}
	return exists, nil
}

// Upsert writes an entry. On conflict only the value is replaced.
func (r *SQLiteRepository) Upsert(ctx context.Context, e Entry) error {
	query := `INSERT INTO preferences (namespace, kind, key, value)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(namespace, kind, key) DO UPDATE SET value = excluded.value`

	if _, err := r.db.ExecContext(ctx, query, e.Namespace, e.Kind, e.Key, e.Value); err != nil {
		return fmt.Errorf("failed to upsert preference %s/%s/%s: %w", e.Namespace, e.Kind, e.Key, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, namespace, kind, key string) error {
	query := `DELETE FROM preferences WHERE namespace = ? AND kind = ? AND key = ?`
	if _, err := r.db.ExecContext(ctx, query, namespace, kind, key); err != nil {
		return fmt.Errorf("failed to delete preference %s/%s/%s: %w", namespace, kind, key, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context, namespace string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM preferences WHERE namespace = ?`, namespace); err != nil {
		return fmt.Errorf("failed to clear preferences %s: %w", namespace, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, namespace string) ([]Entry, error) {
	query := `SELECT namespace, kind, key, value FROM preferences WHERE namespace = ? ORDER BY kind, key`
	rows, err := r.db.QueryContext(ctx, query, namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to select preferences %s: %w", namespace, err)
	}
	defer rows.Close()

	var result []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Namespace, &e.Kind, &e.Key, &e.Value); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
