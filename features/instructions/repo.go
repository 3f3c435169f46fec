package instructions

import (
	"context"
	"database/sql"
	"errors"
)

type Repository interface {
	Get(ctx context.Context) (*Instructions, error)
	Set(ctx context.Context, content string) (*Instructions, error)
}

// PostgresRepo keeps a single row; Set upserts it.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Get(ctx context.Context) (*Instructions, error) {
	ins := &Instructions{}
	query := `SELECT content, updated_at FROM system_instructions WHERE id = 1`
	err := r.db.QueryRowContext(ctx, query).Scan(&ins.Content, &ins.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &Instructions{Content: DefaultContent}, nil
	}
	if err != nil {
		return nil, err
	}
	return ins, nil
}

func (r *PostgresRepo) Set(ctx context.Context, content string) (*Instructions, error) {
	ins := &Instructions{Content: content}
	query := `INSERT INTO system_instructions (id, content, updated_at) VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET content = $1, updated_at = NOW()
		RETURNING updated_at`
	if err := r.db.QueryRowContext(ctx, query, content).Scan(&ins.UpdatedAt); err != nil {
		return nil, err
	}
	return ins, nil
}
