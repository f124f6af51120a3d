package handlers

import (
	"github.com/labstack/echo/v4"
)

// Set - обработчики всех маршрутов API.
type Set struct {
	Catalog *CatalogHandler
	Upload  *UploadHandler
	Orders  *OrderHandler
	Reports *ReportHandler
	Admin   *AdminHandler
	Health  *HealthHandler
}

// Register регистрирует маршруты. adminAuth защищает отчёты,
// adminOptional узнаёт администратора там, где доступ есть и без входа.
func (s *Set) Register(e *echo.Echo, adminAuth, adminOptional echo.MiddlewareFunc) {
	e.GET("/health", s.Health.Health)

	api := e.Group("/api")

	// Каталог
	api.GET("/packages", s.Catalog.Packages)
	api.GET("/categories", s.Catalog.Categories)
	api.GET("/flavors", s.Catalog.Flavors)
	api.GET("/flavors/category/:categoryId", s.Catalog.Flavors)
	api.GET("/crushed-types", s.Catalog.CrushTypes)
	api.GET("/qr/active", s.Catalog.ActiveQRCodes)
	api.GET("/qr/:id", s.Catalog.QRCode)

	// Чеки и заказы
	api.POST("/upload/payment-proof", s.Upload.UploadProof)
	api.GET("/proofs/:name", s.Upload.GetProof)
	api.POST("/orders", s.Orders.CreateOrder)
	api.GET("/orders/:number", s.Orders.GetOrder, adminOptional)

	// Администрирование
	api.POST("/admin/login", s.Admin.Login)
	reports := api.Group("/reports", adminAuth)
	reports.GET("/daily-sales", s.Reports.DailySales)
}
