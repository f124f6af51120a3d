package storage

import (
	"context"
	"fmt"

	"github.com/agamariel/cocapremium/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OutboxStorage определяет интерфейс для чтения и отметки событий outbox.
type OutboxStorage interface {
	FetchPending(ctx context.Context, limit int) ([]*models.OutboxRecord, error)
	MarkSent(ctx context.Context, id int64) error
}

// PostgresOutboxStorage реализует OutboxStorage для PostgreSQL.
type PostgresOutboxStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresOutboxStorage создаёт новый экземпляр PostgresOutboxStorage.
func NewPostgresOutboxStorage(pool *pgxpool.Pool) *PostgresOutboxStorage {
	return &PostgresOutboxStorage{pool: pool}
}

// FetchPending возвращает неотправленные записи в порядке вставки.
func (s *PostgresOutboxStorage) FetchPending(ctx context.Context, limit int) ([]*models.OutboxRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, event_id, topic, key, payload
		FROM outbox
		WHERE sent_at IS NULL
		ORDER BY id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	return collect(rows, func(row pgx.Row) (*models.OutboxRecord, error) {
		var r models.OutboxRecord
		if err := row.Scan(&r.ID, &r.EventID, &r.Topic, &r.Key, &r.Payload); err != nil {
			return nil, err
		}
		return &r, nil
	})
}

// MarkSent отмечает запись как отправленную.
func (s *PostgresOutboxStorage) MarkSent(ctx context.Context, id int64) error {
	_, err := s.pool.Exec(ctx, `UPDATE outbox SET sent_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox record %d: %w", id, err)
	}
	return nil
}
