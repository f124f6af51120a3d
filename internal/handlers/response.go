package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/agamariel/cocapremium/internal/apperr"
	"github.com/agamariel/cocapremium/internal/models"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	// KindInternal - ошибка без вида, например паника или сбой кодирования.
	KindInternal = "internal"

	msgInternal = "Error interno del servidor"
)

// Сообщения для ошибок, которые echo возвращает сам.
var echoMessages = map[*echo.HTTPError]string{
	echo.ErrNotFound:                    "Ruta no encontrada",
	echo.ErrMethodNotAllowed:            "Método no permitido",
	echo.ErrStatusRequestEntityTooLarge: "Solicitud demasiado grande",
	echo.ErrUnsupportedMediaType:        "Tipo de contenido no soportado",
}

// respond отдаёт успешный конверт.
func respond(c echo.Context, status int, data interface{}, message string) error {
	return c.JSON(status, models.Response{Success: true, Data: data, Message: message})
}

// statusOf сопоставляет вид ошибки с HTTP-статусом.
func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// kindOfStatus - вид ошибки для ответов echo.
func kindOfStatus(code int) string {
	switch {
	case code == http.StatusNotFound:
		return string(apperr.KindNotFound)
	case code == http.StatusUnauthorized:
		return "unauthorized"
	case code == http.StatusForbidden:
		return "forbidden"
	case code >= 400 && code < 500:
		return string(apperr.KindValidation)
	}
	return KindInternal
}

// ErrorHandler отдаёт любую ошибку в едином конверте.
// Текст исходной ошибки попадает в ответ только вне production.
func ErrorHandler(production bool, logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := render(err)
		if !production {
			body.Detail = errorDetail(err)
		}
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err))
		}

		resp := models.Response{Success: false, Message: messageOf(err), Error: body}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, resp)
		}
		if err != nil {
			logger.Warn("write error response", zap.Error(err))
		}
	}
}

func render(err error) (int, *models.ErrorBody) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return statusOf(appErr.Kind), &models.ErrorBody{Kind: string(appErr.Kind), Field: appErr.Field}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, &models.ErrorBody{Kind: kindOfStatus(he.Code)}
	}

	return http.StatusInternalServerError, &models.ErrorBody{Kind: KindInternal}
}

func messageOf(err error) string {
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := echoMessages[he]; ok {
			return msg
		}
		if msg, ok := he.Message.(string); ok {
			return msg
		}
	}
	return msgInternal
}

func errorDetail(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			return he.Internal.Error()
		}
		return fmt.Sprint(he.Message)
	}
	return err.Error()
}
