package services

import (
	"context"
	"io"

	"github.com/agamariel/cocapremium/internal/models"
	"github.com/agamariel/cocapremium/internal/storage"
)

// CatalogService отдаёт справочники каталога.
type CatalogService interface {
	ListPackages(ctx context.Context) ([]*models.Package, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	ListFlavors(ctx context.Context, categoryID string) ([]*models.Flavor, error)
	ListCrushTypes(ctx context.Context) ([]*models.CrushType, error)
	ListActiveQRCodes(ctx context.Context) ([]*models.QRCode, error)
	GetActiveQRCode(ctx context.Context, id string) (*models.QRCode, error)
}

// OrderService создаёт и ищет заказы.
type OrderService interface {
	// CreateOrder возвращает replayed = true, если заказ с тем же ключом идемпотентности уже был создан.
	CreateOrder(ctx context.Context, req *models.OrderRequest, idempotencyKey string) (order *models.Order, replayed bool, err error)
	GetOrder(ctx context.Context, number string) (*models.Order, error)
}

// ProofUpload - загружаемый файл чека.
type ProofUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadService сохраняет чеки и отдаёт их по публичной ссылке.
type UploadService interface {
	UploadProof(ctx context.Context, file ProofUpload) (url string, err error)
	GetProof(ctx context.Context, name string) (*storage.Blob, error)
}

// ReportService строит отчёты по продажам.
type ReportService interface {
	DailySales(ctx context.Context, date string) (*models.DailySalesReport, error)
}

// AdminService выдаёт токены администратору.
type AdminService interface {
	Login(ctx context.Context, login, password string) (string, error)
}
