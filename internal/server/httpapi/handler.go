package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Register handles POST /auth/register.
func (s *Server) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid request body"))
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, errorJSON("email and password are required"))
	}

	user, err := s.users.Register(ctx, req.Email, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return c.JSON(http.StatusConflict, errorJSON("email already registered"))
		}
		s.logger.Error(ctx, "registration failed", "error", err.Error())
		return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// Token handles POST /auth/token: it exchanges an email/password pair for
// an access/refresh token pair. Authentication failures are reported
// uniformly, whatever their cause.
func (s *Server) Token(c echo.Context) error {
	ctx := c.Request().Context()

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid request body"))
	}

	user, err := s.users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrAuthFailed) {
			return c.JSON(http.StatusUnauthorized, errorJSON("incorrect email or password"))
		}
		s.logger.Error(ctx, "authentication failed", "error", err.Error())
		return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
	}

	pair, err := s.tokens.IssuePair(ctx, user)
	if err != nil {
		s.logger.Error(ctx, "token issuance failed", "error", err.Error())
		return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
	}

	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}

// Refresh handles POST /auth/refresh: it rotates a refresh token. A spent,
// unknown, or expired token leaves this route with 401; a token whose owner
// no longer exists with 404.
func (s *Server) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var req refreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, errorJSON("refresh_token is required"))
	}

	pair, err := s.tokens.Exchange(ctx, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidToken):
			return c.JSON(http.StatusUnauthorized, errorJSON("invalid refresh token"))
		case errors.Is(err, common.ErrTokenExpired):
			return c.JSON(http.StatusUnauthorized, errorJSON("refresh token expired"))
		case errors.Is(err, common.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, errorJSON("user not found"))
		default:
			s.logger.Error(ctx, "token exchange failed", "error", err.Error())
			return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
		}
	}

	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}

// Me handles GET /auth/me. The bearerAuth middleware has already verified
// the access token and resolved the user.
func (s *Server) Me(c echo.Context) error {
	user, ok := c.Get(ctxUserKey).(*models.User)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Health handles GET /health, reporting database reachability.
func (s *Server) Health(c echo.Context) error {
	ctx := c.Request().Context()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Error(ctx, "health check failed", "error", err.Error())
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"status": "unavailable",
			"time":   time.Now().UTC(),
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

// Root handles GET /.
func (s *Server) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service": "authkeeper",
		"status":  "running",
	})
}
