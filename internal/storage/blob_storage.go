package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrBlobNotFound = errors.New("blob not found")

// Blob - сохранённый файл чека.
type Blob struct {
	Name        string
	ContentType string
	Data        []byte
}

// BlobStorage определяет интерфейс хранилища файлов чеков.
type BlobStorage interface {
	Put(ctx context.Context, blob *Blob) error
	Get(ctx context.Context, name string) (*Blob, error)
}

// PostgresBlobStorage хранит чеки в таблице payment_proofs.
type PostgresBlobStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresBlobStorage создаёт новый экземпляр PostgresBlobStorage.
func NewPostgresBlobStorage(pool *pgxpool.Pool) *PostgresBlobStorage {
	return &PostgresBlobStorage{pool: pool}
}

// Put сохраняет файл. Повторная запись с тем же именем перезаписывает содержимое.
func (s *PostgresBlobStorage) Put(ctx context.Context, blob *Blob) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO payment_proofs (name, content_type, size, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE
		SET content_type = EXCLUDED.content_type, size = EXCLUDED.size, data = EXCLUDED.data
	`, blob.Name, blob.ContentType, len(blob.Data), blob.Data)
	if err != nil {
		return fmt.Errorf("failed to store blob %s: %w", blob.Name, err)
	}
	return nil
}

// Get возвращает файл по имени.
func (s *PostgresBlobStorage) Get(ctx context.Context, name string) (*Blob, error) {
	var b Blob
	err := s.pool.QueryRow(ctx, `
		SELECT name, content_type, data FROM payment_proofs WHERE name = $1
	`, name).Scan(&b.Name, &b.ContentType, &b.Data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get blob %s: %w", name, err)
	}
	return &b, nil
}
