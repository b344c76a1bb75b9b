package server

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/errors"
)

// requireAdmin guards mutating endpoints. Requests must carry an HS256
// bearer token signed with the admin secret and claiming the admin role.
func (s *Server) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			return errors.UnauthorizedError("missing bearer token")
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, prefix), claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(s.config.AdminJWTSecret), nil
		})
		if err != nil || !token.Valid {
			return errors.UnauthorizedError("invalid token")
		}

		if role, _ := claims["role"].(string); role != "admin" {
			return errors.UnauthorizedError("admin role required")
		}

		return next(c)
	}
}
