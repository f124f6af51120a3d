package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/agamariel/cocapremium/internal/apperr"
	"github.com/agamariel/cocapremium/internal/auth"
	"github.com/agamariel/cocapremium/internal/models"
	"github.com/agamariel/cocapremium/internal/services"
	"github.com/labstack/echo/v4"
)

// AdminHandler обрабатывает вход администратора.
type AdminHandler struct {
	adminService    services.AdminService
	tokenExpiration time.Duration
}

// NewAdminHandler создаёт новый экземпляр AdminHandler.
func NewAdminHandler(adminService services.AdminService, tokenExpiration time.Duration) *AdminHandler {
	return &AdminHandler{adminService: adminService, tokenExpiration: tokenExpiration}
}

// Login обрабатывает POST /api/admin/login.
func (h *AdminHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("", "Formato de solicitud no válido")
	}
	if strings.TrimSpace(req.Login) == "" || req.Password == "" {
		return apperr.Validation("login", "Se requieren usuario y contraseña")
	}

	token, err := h.adminService.Login(c.Request().Context(), req.Login, req.Password)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Usuario o contraseña incorrectos")
	case errors.Is(err, services.ErrAdminDisabled):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Acceso de administrador no configurado").SetInternal(err)
	case err != nil:
		return err
	}

	h.setAuthToken(c, token)
	return respond(c, http.StatusOK, models.LoginResponse{Login: req.Login, Token: token}, "")
}

// setAuthToken устанавливает токен в cookie и заголовок ответа.
func (h *AdminHandler) setAuthToken(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.tokenExpiration.Seconds()),
	})

	c.Response().Header().Set("Authorization", "Bearer "+token)
}
