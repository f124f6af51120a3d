package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/agamariel/cocapremium/internal/apperr"
	"github.com/labstack/echo/v4"
)

const healthTimeout = 2 * time.Second

// Pinger - проверка доступности базы данных, например *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthStatus - данные ответа GET /health.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// HealthHandler отвечает на проверки живости.
type HealthHandler struct {
	db  Pinger
	now func() time.Time
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db, now: time.Now}
}

// Health обрабатывает GET /health.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		return apperr.Store("Base de datos no disponible", err)
	}

	status := HealthStatus{Status: "ok", Timestamp: h.now().UTC().Format(time.RFC3339)}
	return respond(c, http.StatusOK, status, "Backend funcionando correctamente")
}
