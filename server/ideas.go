package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/embercove/ideavault/internal/logger"
	"github.com/embercove/ideavault/internal/model"
)

type listIdeasResponse struct {
	Ideas []model.Idea `json:"ideas"`
}

func ideaID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

// handleListIdeas returns the user's ideas; archived ones only with ?archived=1
func (s *Server) handleListIdeas(c echo.Context) error {
	userID := c.Get("user_id").(string)
	includeArchived := c.QueryParam("archived") == "1"

	ideas, err := s.store.ListIdeas(c.Request().Context(), userID, includeArchived)
	if err != nil {
		logger.Error("List ideas failed", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, listIdeasResponse{Ideas: ideas})
}

// handleGetIdea returns one idea
func (s *Server) handleGetIdea(c echo.Context) error {
	userID := c.Get("user_id").(string)
	id, err := ideaID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}

	idea, err := s.store.GetIdea(c.Request().Context(), userID, id)
	if errors.Is(err, ErrIdeaNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "idea not found"})
	}
	if err != nil {
		logger.Error("Get idea failed", logger.F("id", id), logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, idea)
}

// handleCreateIdea creates an idea; the title is required
func (s *Server) handleCreateIdea(c echo.Context) error {
	userID := c.Get("user_id").(string)

	var idea model.Idea
	if err := c.Bind(&idea); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := idea.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	created, err := s.store.CreateIdea(c.Request().Context(), userID, idea)
	if err != nil {
		logger.Error("Create idea failed", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	logger.Info("Idea created", logger.F("id", created.ID))
	return c.JSON(http.StatusOK, created)
}

// handleUpdateIdea rewrites title, content, tags and urls
func (s *Server) handleUpdateIdea(c echo.Context) error {
	userID := c.Get("user_id").(string)
	id, err := ideaID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}

	var idea model.Idea
	if err := c.Bind(&idea); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	idea.ID = id
	if err := idea.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	updated, err := s.store.UpdateIdea(c.Request().Context(), userID, idea)
	if errors.Is(err, ErrIdeaNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "idea not found"})
	}
	if err != nil {
		logger.Error("Update idea failed", logger.F("id", id), logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, updated)
}

// handleArchiveIdea flips the soft-delete flag; the row stays in place
func (s *Server) handleArchiveIdea(archived bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID := c.Get("user_id").(string)
		id, err := ideaID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
		}

		updated, err := s.store.SetArchived(c.Request().Context(), userID, id, archived)
		if errors.Is(err, ErrIdeaNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "idea not found"})
		}
		if err != nil {
			logger.Error("Archive idea failed", logger.F("id", id), logger.F("error", err))
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}

		return c.JSON(http.StatusOK, updated)
	}
}

// handleDeleteIdea permanently removes an idea. Exposed for completeness; the
// client's primary flow archives instead.
func (s *Server) handleDeleteIdea(c echo.Context) error {
	userID := c.Get("user_id").(string)
	id, err := ideaID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}

	err = s.store.DeleteIdea(c.Request().Context(), userID, id)
	if errors.Is(err, ErrIdeaNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "idea not found"})
	}
	if err != nil {
		logger.Error("Delete idea failed", logger.F("id", id), logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	logger.Info("Idea permanently deleted", logger.F("id", id))
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}
