package server

import (
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"

	"github.com/embercove/ideavault/internal/brainstorm"
	"github.com/embercove/ideavault/internal/logger"
)

// Server is the ideas API server
type Server struct {
	db    *sqlx.DB
	store *Store
	ai    *brainstorm.Client
	echo  *echo.Echo
}

// New creates a new server from config
func New(cfg *Config) (*Server, error) {
	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	s := &Server{
		db:    db,
		store: NewStore(db),
	}

	if cfg.Mistral.APIKey != "" {
		s.ai = brainstorm.New(cfg.Mistral.APIKey, cfg.Mistral.Model)
	} else {
		logger.Warn("No Mistral API key configured, brainstorm endpoint disabled")
	}

	if err := s.migrate(); err != nil {
		return nil, err
	}

	s.setupEcho()

	return s, nil
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true

	// Request/response logging through the shared logger
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			res := c.Response()
			logger.Info("HTTP",
				logger.F("method", req.Method),
				logger.F("uri", req.RequestURI),
				logger.F("status", res.Status),
				logger.F("size", res.Size),
				logger.F("duration", time.Since(start).String()))

			return err
		}
	})

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	// Health check
	e.GET("/health", s.handleHealth)

	// API v1
	api := e.Group("/api/v1")

	// Auth endpoints (public)
	api.POST("/register", s.handleRegister)
	api.POST("/login", s.handleLogin)

	// Protected endpoints
	protected := api.Group("")
	protected.Use(s.authMiddleware)
	protected.GET("/me", s.handleMe)
	protected.POST("/logout", s.handleLogout)
	protected.GET("/ideas", s.handleListIdeas)
	protected.POST("/ideas", s.handleCreateIdea)
	protected.GET("/ideas/:id", s.handleGetIdea)
	protected.PUT("/ideas/:id", s.handleUpdateIdea)
	protected.POST("/ideas/:id/archive", s.handleArchiveIdea(true))
	protected.POST("/ideas/:id/unarchive", s.handleArchiveIdea(false))
	protected.DELETE("/ideas/:id", s.handleDeleteIdea)
	protected.POST("/brainstorm", s.handleBrainstorm)

	s.echo = e
}

// Close closes the database connection
func (s *Server) Close() error {
	return s.db.Close()
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
