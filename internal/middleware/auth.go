package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/roomescape-club/reservation-service/internal/models"
	"github.com/roomescape-club/reservation-service/internal/service"
)

const (
	ContextMemberID = "memberID"
	ContextRole     = "role"
)

// JWT validates the Bearer token and stores the caller's member id and role
// in the echo context. Handlers downstream trust these values.
func JWT(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			tokenString := strings.TrimPrefix(header, "Bearer ")
			claims := &service.Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			c.Set(ContextMemberID, claims.MemberID)
			c.Set(ContextRole, claims.Role)
			return next(c)
		}
	}
}

// RequireAdmin guards admin-only routes. Must run after JWT.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextRole).(string)
			if role != string(models.RoleAdmin) {
				return echo.NewHTTPError(http.StatusForbidden, "admin access required")
			}
			return next(c)
		}
	}
}

// MemberIDFrom returns the authenticated member id set by JWT.
func MemberIDFrom(c echo.Context) uint {
	id, _ := c.Get(ContextMemberID).(uint)
	return id
}

// ActorFrom builds the service-level actor from the authenticated context.
func ActorFrom(c echo.Context) service.Actor {
	role, _ := c.Get(ContextRole).(string)
	return service.Actor{
		MemberID: MemberIDFrom(c),
		IsAdmin:  role == string(models.RoleAdmin),
	}
}
