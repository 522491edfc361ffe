package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sahilkr01/drcuberstore/internal/model"
	"github.com/sahilkr01/drcuberstore/pkg/jwtutil"
	"github.com/sahilkr01/drcuberstore/pkg/logger"
	"github.com/sahilkr01/drcuberstore/prometheus"
	"go.uber.org/zap"
)

// SessionSource reports the active admin session
type SessionSource interface {
	Current(ctx context.Context) (model.Session, bool)
}

// AdminAuth validates the bearer token and requires it to belong to the active session,
// so logging out revokes every token issued for that session
func AdminAuth(jwtUtil *jwtutil.JWTUtil, sessions SessionSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing Authorization header")
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Warn("Invalid Authorization header format")
				prometheus.RecordAuthError("invalid_auth_format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
			}

			claims, err := jwtUtil.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid JWT token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			session, ok := sessions.Current(c.Request().Context())
			if !ok || session.ID != claims.SessionID() || claims.Role != model.RoleAdmin {
				log.Warn("Token does not belong to the active admin session",
					zap.String("session_id", claims.SessionID()))
				prometheus.RecordAuthError("session_revoked")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session expired or logged out"})
			}

			c.Set("admin", claims)
			c.Set("session", session)
			return next(c)
		}
	}
}
