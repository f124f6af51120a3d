package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agamariel/cocapremium/internal/apperr"
	"github.com/agamariel/cocapremium/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// envelope - конверт ответа с типизированной ошибкой для разбора в тестах.
type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Message string            `json:"message"`
	Error   *models.ErrorBody `json:"error"`
}

func newTestEcho(production bool) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(production, zap.NewNop())
	return e
}

// serve вызывает обработчик так же, как echo: ошибка уходит в HTTPErrorHandler.
func serve(e *echo.Echo, c echo.Context, h echo.HandlerFunc) {
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestErrorHandler(t *testing.T) {
	cause := errors.New("pq: connection refused")

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantKind    string
		wantField   string
		wantMessage string
	}{
		{
			name:        "validation",
			err:         apperr.Validation(models.FieldCustomerName, "Faltan campos requeridos"),
			wantStatus:  http.StatusBadRequest,
			wantKind:    "validation",
			wantField:   models.FieldCustomerName,
			wantMessage: "Faltan campos requeridos",
		},
		{
			name:        "upload",
			err:         apperr.Upload(cause),
			wantStatus:  http.StatusInternalServerError,
			wantKind:    "upload",
			wantMessage: "Error al subir el comprobante de pago",
		},
		{
			name:        "store",
			err:         fmt.Errorf("create: %w", apperr.Store("Error al crear el pedido", cause)),
			wantStatus:  http.StatusInternalServerError,
			wantKind:    "store",
			wantMessage: "Error al crear el pedido",
		},
		{
			name:        "not found",
			err:         apperr.NotFound("Pedido no encontrado"),
			wantStatus:  http.StatusNotFound,
			wantKind:    "not_found",
			wantMessage: "Pedido no encontrado",
		},
		{
			name:        "unknown route",
			err:         echo.ErrNotFound,
			wantStatus:  http.StatusNotFound,
			wantKind:    "not_found",
			wantMessage: "Ruta no encontrada",
		},
		{
			name:        "body too large",
			err:         echo.ErrStatusRequestEntityTooLarge,
			wantStatus:  http.StatusRequestEntityTooLarge,
			wantKind:    "validation",
			wantMessage: "Solicitud demasiado grande",
		},
		{
			name:        "unauthorized",
			err:         echo.NewHTTPError(http.StatusUnauthorized, "Se requiere autenticación"),
			wantStatus:  http.StatusUnauthorized,
			wantKind:    "unauthorized",
			wantMessage: "Se requiere autenticación",
		},
		{
			name:        "plain error",
			err:         cause,
			wantStatus:  http.StatusInternalServerError,
			wantKind:    KindInternal,
			wantMessage: "Error interno del servidor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho(false)
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			e.HTTPErrorHandler(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			env := decode(t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantMessage, env.Message)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantKind, env.Error.Kind)
			assert.Equal(t, tt.wantField, env.Error.Field)
			assert.NotEmpty(t, env.Error.Detail)
		})
	}
}

func TestErrorHandler_ProductionHidesDetail(t *testing.T) {
	e := newTestEcho(true)
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	e.HTTPErrorHandler(apperr.Store("Error al crear el pedido", errors.New("secret dsn leaked")), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret dsn")
	env := decode(t, rec)
	assert.Empty(t, env.Error.Detail)
	assert.Equal(t, "store", env.Error.Kind)
}

func TestErrorHandler_CommittedResponseUntouched(t *testing.T) {
	e := newTestEcho(false)
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, c.String(http.StatusOK, "done"))

	e.HTTPErrorHandler(errors.New("late failure"), c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "done", rec.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	e := newTestEcho(false)
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Ruta no encontrada", decode(t, rec).Message)
}
