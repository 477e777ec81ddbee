// Package httpapi exposes the auth service over HTTP: registration, the
// password-for-tokens exchange, the bearer-protected profile route, and
// refresh-token rotation.
package httpapi

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	address string
	logger  logging.Logger
	users   *services.UserService
	tokens  *services.TokenService
	db      *sql.DB
}

func NewServer(address string, l logging.Logger, users *services.UserService, tokens *services.TokenService, db *sql.DB) *Server {
	return &Server{
		address: address,
		logger:  l.With("module", "http_server"),
		users:   users,
		tokens:  tokens,
		db:      db,
	}
}

func (s *Server) newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(s.requestLogger)

	e.GET("/", s.Root)
	e.GET("/health", s.Health)

	e.POST("/auth/register", s.Register)
	e.POST("/auth/token", s.Token)
	e.POST("/auth/refresh", s.Refresh)
	e.GET("/auth/me", s.Me, s.bearerAuth)

	return e
}

// Run starts the HTTP server and blocks until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	e := s.newEcho()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := e.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "HTTP server shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := e.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
