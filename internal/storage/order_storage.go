package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/agamariel/cocapremium/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrOrderNumberTaken = errors.New("order number already taken")
)

const (
	uniqueViolation = "23505"

	ordersNumberConstraint         = "orders_number_key"
	ordersIdempotencyKeyConstraint = "orders_idempotency_key_key"
)

// OrderStorage определяет интерфейс для работы с заказами.
type OrderStorage interface {
	// Create вставляет заказ и событие в outbox одной транзакцией.
	// Если заказ с тем же ключом идемпотентности уже есть, возвращает его и replayed = true.
	Create(ctx context.Context, order *models.NewOrder, event *models.OrderCreatedEvent) (created *models.Order, replayed bool, err error)
	GetByNumber(ctx context.Context, number string) (*models.Order, error)
	GetByDate(ctx context.Context, date string) ([]*models.Order, error)
}

// PostgresOrderStorage реализует OrderStorage для PostgreSQL.
type PostgresOrderStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresOrderStorage создаёт новый экземпляр PostgresOrderStorage.
func NewPostgresOrderStorage(pool *pgxpool.Pool) *PostgresOrderStorage {
	return &PostgresOrderStorage{pool: pool}
}

const orderColumns = `
	id, number, customer_name, package_id, package_description, flavors,
	sweetness, crush_type, amount::text, payment_proof_url, order_date::text, created_at`

// Create создаёт новый заказ.
func (s *PostgresOrderStorage) Create(ctx context.Context, order *models.NewOrder, event *models.OrderCreatedEvent) (*models.Order, bool, error) {
	idemKey := nullable(order.IdempotencyKey)

	if idemKey != nil {
		existing, err := s.getByIdempotencyKey(ctx, order.IdempotencyKey)
		if err == nil {
			return existing, true, nil
		}
		if !errors.Is(err, ErrOrderNotFound) {
			return nil, false, err
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	created, err := scanOrder(tx.QueryRow(ctx, `
		INSERT INTO orders (
			number, customer_name, package_id, package_description, flavors,
			sweetness, crush_type, amount, payment_proof_url, idempotency_key
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+orderColumns,
		order.Number,
		order.CustomerName,
		order.PackageID,
		order.PackageDescription,
		order.Flavors,
		string(order.Sweetness),
		order.CrushType,
		order.Amount.String(),
		order.PaymentProofURL,
		idemKey,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			switch pgErr.ConstraintName {
			case ordersNumberConstraint:
				return nil, false, ErrOrderNumberTaken
			case ordersIdempotencyKeyConstraint:
				// параллельный запрос с тем же ключом успел раньше
				tx.Rollback(ctx)
				existing, gErr := s.getByIdempotencyKey(ctx, order.IdempotencyKey)
				if gErr != nil {
					return nil, false, gErr
				}
				return existing, true, nil
			}
		}
		return nil, false, fmt.Errorf("failed to create order: %w", err)
	}

	if event != nil {
		event.OrderID = created.ID
		event.CreatedAt = created.CreatedAt
		if err := insertOutbox(ctx, tx, event); err != nil {
			return nil, false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("commit tx: %w", err)
	}

	return created, false, nil
}

// GetByNumber возвращает заказ по отображаемому номеру.
func (s *PostgresOrderStorage) GetByNumber(ctx context.Context, number string) (*models.Order, error) {
	order, err := scanOrder(s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE number = $1`, number))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

// GetByDate возвращает заказы за дату YYYY-MM-DD в порядке создания.
func (s *PostgresOrderStorage) GetByDate(ctx context.Context, date string) ([]*models.Order, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE order_date = $1::date
		ORDER BY created_at ASC
	`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders by date: %w", err)
	}
	return collect(rows, scanOrder)
}

func (s *PostgresOrderStorage) getByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	order, err := scanOrder(s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE idempotency_key = $1`, key))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

func insertOutbox(ctx context.Context, tx pgx.Tx, event *models.OrderCreatedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO outbox (event_id, topic, key, payload)
		VALUES ($1, $2, $3, $4)
	`, uuid.New(), event.Topic, event.OrderID.String(), payload)
	if err != nil {
		return fmt.Errorf("failed to insert outbox record: %w", err)
	}
	return nil
}

// scanOrder помогает читать заказ из строки результата.
func scanOrder(row pgx.Row) (*models.Order, error) {
	var (
		order     models.Order
		sweetness string
		amount    string
	)

	err := row.Scan(
		&order.ID,
		&order.Number,
		&order.CustomerName,
		&order.PackageID,
		&order.PackageDescription,
		&order.Flavors,
		&sweetness,
		&order.CrushType,
		&amount,
		&order.PaymentProofURL,
		&order.OrderDate,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.Sweetness = models.Sweetness(sweetness)
	if order.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("order %s: bad amount %q: %w", order.ID, amount, err)
	}

	return &order, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
