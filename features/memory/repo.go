package memory

import (
	"context"
	"database/sql"
)

type Repository interface {
	Get(ctx context.Context, scopeID string) (*Memory, error)
	Upsert(ctx context.Context, m *Memory) error
	Delete(ctx context.Context, scopeID string) error
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Get(ctx context.Context, scopeID string) (*Memory, error) {
	m := &Memory{}
	query := `SELECT scope_id, summary, message_count, last_updated FROM conversation_memory WHERE scope_id = $1`
	err := r.db.QueryRowContext(ctx, query, scopeID).Scan(&m.ScopeID, &m.Summary, &m.MessageCount, &m.LastUpdated)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *PostgresRepo) Upsert(ctx context.Context, m *Memory) error {
	query := `INSERT INTO conversation_memory (scope_id, summary, message_count, last_updated) VALUES ($1, $2, $3, NOW())
		ON CONFLICT (scope_id) DO UPDATE SET summary = $2, message_count = $3, last_updated = NOW()
		RETURNING last_updated`
	return r.db.QueryRowContext(ctx, query, m.ScopeID, m.Summary, m.MessageCount).Scan(&m.LastUpdated)
}

func (r *PostgresRepo) Delete(ctx context.Context, scopeID string) error {
	query := `DELETE FROM conversation_memory WHERE scope_id = $1`
	_, err := r.db.ExecContext(ctx, query, scopeID)
	return err
}
