package storage

import (
	"context"

	"github.com/agamariel/cocapremium/internal/models"
)

// MockCatalogStorage - мок для тестирования (экспортируемый для использования в других пакетах)
type MockCatalogStorage struct {
	ListPackagesFunc      func(ctx context.Context) ([]*models.Package, error)
	GetPackageFunc        func(ctx context.Context, id string) (*models.Package, error)
	ListCategoriesFunc    func(ctx context.Context) ([]*models.Category, error)
	ListFlavorsFunc       func(ctx context.Context, categoryID string) ([]*models.Flavor, error)
	GetFlavorsByIDsFunc   func(ctx context.Context, ids []string) ([]*models.Flavor, error)
	ListCrushTypesFunc    func(ctx context.Context) ([]*models.CrushType, error)
	GetCrushTypeFunc      func(ctx context.Context, idOrName string) (*models.CrushType, error)
	ListActiveQRCodesFunc func(ctx context.Context) ([]*models.QRCode, error)
	GetActiveQRCodeFunc   func(ctx context.Context, id string) (*models.QRCode, error)
}

func (m *MockCatalogStorage) ListPackages(ctx context.Context) ([]*models.Package, error) {
	if m.ListPackagesFunc != nil {
		return m.ListPackagesFunc(ctx)
	}
	return []*models.Package{}, nil
}

func (m *MockCatalogStorage) GetPackage(ctx context.Context, id string) (*models.Package, error) {
	if m.GetPackageFunc != nil {
		return m.GetPackageFunc(ctx, id)
	}
	return nil, ErrPackageNotFound
}

func (m *MockCatalogStorage) ListCategories(ctx context.Context) ([]*models.Category, error) {
	if m.ListCategoriesFunc != nil {
		return m.ListCategoriesFunc(ctx)
	}
	return []*models.Category{}, nil
}

func (m *MockCatalogStorage) ListFlavors(ctx context.Context, categoryID string) ([]*models.Flavor, error) {
	if m.ListFlavorsFunc != nil {
		return m.ListFlavorsFunc(ctx, categoryID)
	}
	return []*models.Flavor{}, nil
}

func (m *MockCatalogStorage) GetFlavorsByIDs(ctx context.Context, ids []string) ([]*models.Flavor, error) {
	if m.GetFlavorsByIDsFunc != nil {
		return m.GetFlavorsByIDsFunc(ctx, ids)
	}
	return []*models.Flavor{}, nil
}

func (m *MockCatalogStorage) ListCrushTypes(ctx context.Context) ([]*models.CrushType, error) {
	if m.ListCrushTypesFunc != nil {
		return m.ListCrushTypesFunc(ctx)
	}
	return []*models.CrushType{}, nil
}

func (m *MockCatalogStorage) GetCrushType(ctx context.Context, idOrName string) (*models.CrushType, error) {
	if m.GetCrushTypeFunc != nil {
		return m.GetCrushTypeFunc(ctx, idOrName)
	}
	return nil, ErrCrushTypeNotFound
}

func (m *MockCatalogStorage) ListActiveQRCodes(ctx context.Context) ([]*models.QRCode, error) {
	if m.ListActiveQRCodesFunc != nil {
		return m.ListActiveQRCodesFunc(ctx)
	}
	return []*models.QRCode{}, nil
}

func (m *MockCatalogStorage) GetActiveQRCode(ctx context.Context, id string) (*models.QRCode, error) {
	if m.GetActiveQRCodeFunc != nil {
		return m.GetActiveQRCodeFunc(ctx, id)
	}
	return nil, ErrQRCodeNotFound
}

// MockOrderStorage - мок хранилища заказов.
type MockOrderStorage struct {
	CreateFunc      func(ctx context.Context, order *models.NewOrder, event *models.OrderCreatedEvent) (*models.Order, bool, error)
	GetByNumberFunc func(ctx context.Context, number string) (*models.Order, error)
	GetByDateFunc   func(ctx context.Context, date string) ([]*models.Order, error)
}

func (m *MockOrderStorage) Create(ctx context.Context, order *models.NewOrder, event *models.OrderCreatedEvent) (*models.Order, bool, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, order, event)
	}
	return &models.Order{Number: order.Number}, false, nil
}

func (m *MockOrderStorage) GetByNumber(ctx context.Context, number string) (*models.Order, error) {
	if m.GetByNumberFunc != nil {
		return m.GetByNumberFunc(ctx, number)
	}
	return nil, ErrOrderNotFound
}

func (m *MockOrderStorage) GetByDate(ctx context.Context, date string) ([]*models.Order, error) {
	if m.GetByDateFunc != nil {
		return m.GetByDateFunc(ctx, date)
	}
	return []*models.Order{}, nil
}

// MockBlobStorage - мок хранилища файлов.
type MockBlobStorage struct {
	PutFunc func(ctx context.Context, blob *Blob) error
	GetFunc func(ctx context.Context, name string) (*Blob, error)
}

func (m *MockBlobStorage) Put(ctx context.Context, blob *Blob) error {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, blob)
	}
	return nil
}

func (m *MockBlobStorage) Get(ctx context.Context, name string) (*Blob, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, name)
	}
	return nil, ErrBlobNotFound
}

// MockOutboxStorage - мок outbox.
type MockOutboxStorage struct {
	FetchPendingFunc func(ctx context.Context, limit int) ([]*models.OutboxRecord, error)
	MarkSentFunc     func(ctx context.Context, id int64) error
}

func (m *MockOutboxStorage) FetchPending(ctx context.Context, limit int) ([]*models.OutboxRecord, error) {
	if m.FetchPendingFunc != nil {
		return m.FetchPendingFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockOutboxStorage) MarkSent(ctx context.Context, id int64) error {
	if m.MarkSentFunc != nil {
		return m.MarkSentFunc(ctx, id)
	}
	return nil
}
