package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

const ctxUserKey = "user"

// bearerAuth verifies the Authorization header's access token and resolves
// its subject into a user, stored in the request context under ctxUserKey.
func (s *Server) bearerAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		authz := c.Request().Header.Get("Authorization")
		if authz == "" {
			return c.JSON(http.StatusUnauthorized, errorJSON("missing authorization header"))
		}

		parts := strings.SplitN(authz, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.JSON(http.StatusUnauthorized, errorJSON("invalid authorization header"))
		}

		claims, err := s.tokens.VerifyAccess(strings.TrimSpace(parts[1]))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, errorJSON("invalid or expired access token"))
		}

		user, err := s.users.GetByEmail(ctx, claims.Subject)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
		}

		c.Set(ctxUserKey, user)
		return next(c)
	}
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		req := c.Request()
		s.logger.Info(req.Context(), "request",
			"method", req.Method,
			"uri", req.RequestURI,
			"status", c.Response().Status,
			"duration_ms", time.Since(start).Milliseconds(),
		)

		return err
	}
}
