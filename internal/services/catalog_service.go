package services

import (
	"context"
	"errors"
	"strings"

	"github.com/agamariel/cocapremium/internal/apperr"
	"github.com/agamariel/cocapremium/internal/models"
	"github.com/agamariel/cocapremium/internal/storage"
)

// allCategories - значение categoryId, означающее "без фильтра".
const allCategories = "all"

// CatalogServiceImpl реализует CatalogService.
type CatalogServiceImpl struct {
	catalog storage.CatalogStorage
}

// NewCatalogService создаёт новый сервис каталога.
func NewCatalogService(catalog storage.CatalogStorage) *CatalogServiceImpl {
	return &CatalogServiceImpl{catalog: catalog}
}

func (s *CatalogServiceImpl) ListPackages(ctx context.Context) ([]*models.Package, error) {
	pkgs, err := s.catalog.ListPackages(ctx)
	if err != nil {
		return nil, apperr.Store("Error al obtener los paquetes", err)
	}
	return pkgs, nil
}

func (s *CatalogServiceImpl) ListCategories(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return nil, apperr.Store("Error al obtener las categorías", err)
	}
	return categories, nil
}

// ListFlavors возвращает вкусы категории; пустой id или "all" - все вкусы.
func (s *CatalogServiceImpl) ListFlavors(ctx context.Context, categoryID string) ([]*models.Flavor, error) {
	categoryID = strings.TrimSpace(categoryID)
	if strings.EqualFold(categoryID, allCategories) {
		categoryID = ""
	}
	flavors, err := s.catalog.ListFlavors(ctx, categoryID)
	if err != nil {
		return nil, apperr.Store("Error al obtener los sabores", err)
	}
	return flavors, nil
}

func (s *CatalogServiceImpl) ListCrushTypes(ctx context.Context) ([]*models.CrushType, error) {
	types, err := s.catalog.ListCrushTypes(ctx)
	if err != nil {
		return nil, apperr.Store("Error al obtener los tipos de triturado", err)
	}
	return types, nil
}

func (s *CatalogServiceImpl) ListActiveQRCodes(ctx context.Context) ([]*models.QRCode, error) {
	codes, err := s.catalog.ListActiveQRCodes(ctx)
	if err != nil {
		return nil, apperr.Store("Error al obtener códigos QR", err)
	}
	return codes, nil
}

// GetActiveQRCode возвращает NotFound и для отсутствующего, и для неактивного кода.
func (s *CatalogServiceImpl) GetActiveQRCode(ctx context.Context, id string) (*models.QRCode, error) {
	qr, err := s.catalog.GetActiveQRCode(ctx, strings.TrimSpace(id))
	if errors.Is(err, storage.ErrQRCodeNotFound) {
		return nil, apperr.NotFound("Código QR no encontrado o no está activo")
	}
	if err != nil {
		return nil, apperr.Store("Error al obtener códigos QR", err)
	}
	return qr, nil
}
