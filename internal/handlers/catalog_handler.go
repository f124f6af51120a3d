package handlers

import (
	"net/http"

	"github.com/agamariel/cocapremium/internal/services"
	"github.com/labstack/echo/v4"
)

// CatalogHandler отдаёт справочники каталога.
type CatalogHandler struct {
	catalog services.CatalogService
}

// NewCatalogHandler создаёт новый экземпляр CatalogHandler.
func NewCatalogHandler(catalog services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Packages обрабатывает GET /api/packages.
func (h *CatalogHandler) Packages(c echo.Context) error {
	packages, err := h.catalog.ListPackages(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, packages, "")
}

// Categories обрабатывает GET /api/categories.
func (h *CatalogHandler) Categories(c echo.Context) error {
	categories, err := h.catalog.ListCategories(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, categories, "")
}

// Flavors обрабатывает GET /api/flavors и GET /api/flavors/category/:categoryId.
func (h *CatalogHandler) Flavors(c echo.Context) error {
	flavors, err := h.catalog.ListFlavors(c.Request().Context(), c.Param("categoryId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, flavors, "")
}

// CrushTypes обрабатывает GET /api/crushed-types.
func (h *CatalogHandler) CrushTypes(c echo.Context) error {
	types, err := h.catalog.ListCrushTypes(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, types, "")
}

// ActiveQRCodes обрабатывает GET /api/qr/active.
func (h *CatalogHandler) ActiveQRCodes(c echo.Context) error {
	codes, err := h.catalog.ListActiveQRCodes(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, codes, "")
}

// QRCode обрабатывает GET /api/qr/:id.
func (h *CatalogHandler) QRCode(c echo.Context) error {
	code, err := h.catalog.GetActiveQRCode(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, code, "")
}
