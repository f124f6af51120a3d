package handlers

import (
	"net/http"

	"github.com/agamariel/cocapremium/internal/apperr"
	"github.com/agamariel/cocapremium/internal/auth"
	"github.com/agamariel/cocapremium/internal/models"
	"github.com/agamariel/cocapremium/internal/services"
	"github.com/labstack/echo/v4"
)

// HeaderIdempotencyKey - заголовок с ключом идемпотентности заказа.
const HeaderIdempotencyKey = "Idempotency-Key"

// OrderHandler обрабатывает запросы, связанные с заказами.
type OrderHandler struct {
	orderService services.OrderService
}

// NewOrderHandler создаёт новый экземпляр OrderHandler.
func NewOrderHandler(orderService services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrder обрабатывает POST /api/orders.
// Повтор с тем же ключом идемпотентности возвращает уже созданный заказ со статусом 200.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req models.OrderRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("", "Formato de solicitud no válido")
	}

	key := c.Request().Header.Get(HeaderIdempotencyKey)
	order, replayed, err := h.orderService.CreateOrder(c.Request().Context(), &req, key)
	if err != nil {
		return err
	}

	if replayed {
		return respond(c, http.StatusOK, order, "Pedido ya registrado")
	}
	return respond(c, http.StatusCreated, order, "Pedido creado exitosamente")
}

// GetOrder обрабатывает GET /api/orders/:number.
// Полный заказ получает только администратор, остальным - PublicOrder.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	order, err := h.orderService.GetOrder(c.Request().Context(), c.Param("number"))
	if err != nil {
		return err
	}
	if _, err := auth.GetLoginFromContext(c); err != nil {
		return respond(c, http.StatusOK, order.Public(), "")
	}
	return respond(c, http.StatusOK, order, "")
}
