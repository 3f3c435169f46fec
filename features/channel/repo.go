package channel

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var ErrDuplicate = errors.New("channel already allowed")

type Repository interface {
	Save(ctx context.Context, ch *Channel) error
	List(ctx context.Context) ([]Channel, error)
	Delete(ctx context.Context, channelID string) error
	IsAllowed(ctx context.Context, channelID string) (bool, error)
	Count(ctx context.Context) (int, error)
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Save(ctx context.Context, ch *Channel) error {
	query := `INSERT INTO allowed_channels (channel_id, name) VALUES ($1, $2) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, ch.ChannelID, ch.Name).Scan(&ch.ID, &ch.CreatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

func (r *PostgresRepo) List(ctx context.Context) ([]Channel, error) {
	query := `SELECT id, channel_id, name, created_at FROM allowed_channels ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []Channel
	for rows.Next() {
		var ch Channel
		if err := rows.Scan(&ch.ID, &ch.ChannelID, &ch.Name, &ch.CreatedAt); err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

func (r *PostgresRepo) Delete(ctx context.Context, channelID string) error {
	query := `DELETE FROM allowed_channels WHERE channel_id = $1`
	res, err := r.db.ExecContext(ctx, query, channelID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *PostgresRepo) IsAllowed(ctx context.Context, channelID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM allowed_channels WHERE channel_id = $1)`
	err := r.db.QueryRowContext(ctx, query, channelID).Scan(&exists)
	return exists, err
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM allowed_channels`
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}
