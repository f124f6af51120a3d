package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// ContextKey - тип для ключей контекста.
type ContextKey string

const (
	// LoginKey - логин администратора в контексте запроса.
	LoginKey ContextKey = "admin_login"
	// RoleKey - роль из токена.
	RoleKey ContextKey = "admin_role"

	// CookieName - cookie с токеном, если заголовка нет.
	CookieName = "Authorization"

	msgAuthRequired = "Se requiere autenticación"
)

// JWTMiddleware пропускает только запросы с валидным токеном роли role.
// 401 - токена нет или он недействителен, 403 - роль не та.
func JWTMiddleware(secret, role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := requestToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, msgAuthRequired)
			}
			if err := authenticate(c, token, secret, role); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// OptionalJWTMiddleware пропускает запросы без токена анонимно.
// Присланный токен проверяется так же, как в JWTMiddleware.
func OptionalJWTMiddleware(secret, role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token := requestToken(c); token != "" {
				if err := authenticate(c, token, secret, role); err != nil {
					return err
				}
			}
			return next(c)
		}
	}
}

// authenticate проверяет токен и кладёт логин и роль в контекст.
func authenticate(c echo.Context, token, secret, role string) error {
	claims, err := ValidateToken(token, secret)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Token no válido o expirado")
	}
	if claims.Role != role {
		return echo.NewHTTPError(http.StatusForbidden, "Acceso denegado")
	}

	c.Set(string(LoginKey), claims.Login)
	c.Set(string(RoleKey), claims.Role)
	return nil
}

// requestToken берёт токен из заголовка, затем из cookie.
func requestToken(c echo.Context) string {
	if token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization)); token != "" {
		return token
	}
	if cookie, err := c.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// bearerToken разбирает "Bearer <token>".
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" || strings.Contains(token, " ") {
		return ""
	}
	return token
}

// GetLoginFromContext возвращает логин, сохранённый JWTMiddleware.
func GetLoginFromContext(c echo.Context) (string, error) {
	login, ok := c.Get(string(LoginKey)).(string)
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, msgAuthRequired)
	}
	return login, nil
}
