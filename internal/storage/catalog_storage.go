package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/agamariel/cocapremium/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrPackageNotFound   = errors.New("package not found")
	ErrCrushTypeNotFound = errors.New("crush type not found")
	ErrQRCodeNotFound    = errors.New("qr code not found")
)

// CatalogStorage определяет интерфейс чтения каталога.
type CatalogStorage interface {
	ListPackages(ctx context.Context) ([]*models.Package, error)
	GetPackage(ctx context.Context, id string) (*models.Package, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	ListFlavors(ctx context.Context, categoryID string) ([]*models.Flavor, error)
	GetFlavorsByIDs(ctx context.Context, ids []string) ([]*models.Flavor, error)
	ListCrushTypes(ctx context.Context) ([]*models.CrushType, error)
	GetCrushType(ctx context.Context, idOrName string) (*models.CrushType, error)
	ListActiveQRCodes(ctx context.Context) ([]*models.QRCode, error)
	GetActiveQRCode(ctx context.Context, id string) (*models.QRCode, error)
}

// PostgresCatalogStorage реализует CatalogStorage для PostgreSQL.
type PostgresCatalogStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresCatalogStorage создаёт новый экземпляр PostgresCatalogStorage.
func NewPostgresCatalogStorage(pool *pgxpool.Pool) *PostgresCatalogStorage {
	return &PostgresCatalogStorage{pool: pool}
}

const packageColumns = `id, name, price::text, weight::text, weight_unit, created_at, updated_at`

// ListPackages возвращает пакеты по возрастанию цены.
func (s *PostgresCatalogStorage) ListPackages(ctx context.Context) ([]*models.Package, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+packageColumns+` FROM packages ORDER BY price ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query packages: %w", err)
	}
	return collect(rows, scanPackage)
}

// GetPackage возвращает пакет по id.
func (s *PostgresCatalogStorage) GetPackage(ctx context.Context, id string) (*models.Package, error) {
	pkg, err := scanPackage(s.pool.QueryRow(ctx, `SELECT `+packageColumns+` FROM packages WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPackageNotFound
	}
	return pkg, err
}

// ListCategories возвращает категории по имени.
func (s *PostgresCatalogStorage) ListCategories(ctx context.Context) ([]*models.Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, created_at FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	return collect(rows, func(row pgx.Row) (*models.Category, error) {
		var c models.Category
		if err := row.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		return &c, nil
	})
}

// ListFlavors возвращает вкусы, при непустом categoryID - только этой категории.
func (s *PostgresCatalogStorage) ListFlavors(ctx context.Context, categoryID string) ([]*models.Flavor, error) {
	query := `SELECT id, name, category_id, created_at FROM flavors`
	var args []any
	if categoryID != "" {
		query += ` WHERE category_id = $1`
		args = append(args, categoryID)
	}
	query += ` ORDER BY name ASC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query flavors: %w", err)
	}
	return collect(rows, scanFlavor)
}

// GetFlavorsByIDs возвращает найденные вкусы; отсутствующие id просто не попадают в результат.
func (s *PostgresCatalogStorage) GetFlavorsByIDs(ctx context.Context, ids []string) ([]*models.Flavor, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, category_id, created_at FROM flavors WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query flavors by ids: %w", err)
	}
	return collect(rows, scanFlavor)
}

// ListCrushTypes возвращает типы измельчения.
func (s *PostgresCatalogStorage) ListCrushTypes(ctx context.Context) ([]*models.CrushType, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, description, created_at FROM crushed_types ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query crushed types: %w", err)
	}
	return collect(rows, scanCrushType)
}

// GetCrushType ищет тип по id или по имени без учёта регистра.
func (s *PostgresCatalogStorage) GetCrushType(ctx context.Context, idOrName string) (*models.CrushType, error) {
	ct, err := scanCrushType(s.pool.QueryRow(ctx, `
		SELECT id, name, description, created_at
		FROM crushed_types
		WHERE id = $1 OR UPPER(name) = UPPER($1)
		ORDER BY (id = $1) DESC
		LIMIT 1
	`, idOrName))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCrushTypeNotFound
	}
	return ct, err
}

// ListActiveQRCodes возвращает активные QR-коды, новые первыми.
func (s *PostgresCatalogStorage) ListActiveQRCodes(ctx context.Context) ([]*models.QRCode, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, image_url, is_active, created_at, updated_at
		FROM qr_codes
		WHERE is_active = TRUE
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query qr codes: %w", err)
	}
	return collect(rows, scanQRCode)
}

// GetActiveQRCode возвращает активный QR-код по id.
func (s *PostgresCatalogStorage) GetActiveQRCode(ctx context.Context, id string) (*models.QRCode, error) {
	qr, err := scanQRCode(s.pool.QueryRow(ctx, `
		SELECT id, name, image_url, is_active, created_at, updated_at
		FROM qr_codes
		WHERE id = $1 AND is_active = TRUE
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrQRCodeNotFound
	}
	return qr, err
}

func scanPackage(row pgx.Row) (*models.Package, error) {
	var (
		p             models.Package
		price, weight string
	)
	if err := row.Scan(&p.ID, &p.Name, &price, &weight, &p.WeightUnit, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("package %s: bad price %q: %w", p.ID, price, err)
	}
	if p.Weight, err = decimal.NewFromString(weight); err != nil {
		return nil, fmt.Errorf("package %s: bad weight %q: %w", p.ID, weight, err)
	}
	return &p, nil
}

func scanFlavor(row pgx.Row) (*models.Flavor, error) {
	var f models.Flavor
	if err := row.Scan(&f.ID, &f.Name, &f.CategoryID, &f.CreatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func scanCrushType(row pgx.Row) (*models.CrushType, error) {
	var c models.CrushType
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanQRCode(row pgx.Row) (*models.QRCode, error) {
	var q models.QRCode
	if err := row.Scan(&q.ID, &q.Name, &q.ImageURL, &q.IsActive, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return nil, err
	}
	return &q, nil
}

// collect читает все строки через scan и закрывает rows.
func collect[T any](rows pgx.Rows, scan func(pgx.Row) (*T, error)) ([]*T, error) {
	defer rows.Close()

	items := []*T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return items, nil
}
