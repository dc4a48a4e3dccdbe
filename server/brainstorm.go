package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/embercove/ideavault/internal/logger"
	"github.com/embercove/ideavault/internal/model"
)

type brainstormRequest struct {
	IdeaID int64 `json:"idea_id"`

	// Inline fields let a client brainstorm before the idea is saved.
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// handleBrainstorm runs the AI brainstorm for a saved or inline idea and, for
// saved ideas, persists the result on the row.
func (s *Server) handleBrainstorm(c echo.Context) error {
	if s.ai == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "brainstorm is not configured"})
	}

	userID := c.Get("user_id").(string)

	var req brainstormRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	var idea model.Idea
	if req.IdeaID > 0 {
		var err error
		idea, err = s.store.GetIdea(c.Request().Context(), userID, req.IdeaID)
		if errors.Is(err, ErrIdeaNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "idea not found"})
		}
		if err != nil {
			logger.Error("Brainstorm lookup failed", logger.F("id", req.IdeaID), logger.F("error", err))
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
	} else {
		if strings.TrimSpace(req.Title) == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "idea_id or title required"})
		}
		idea = model.Idea{Title: req.Title, Content: req.Content, Tags: req.Tags}
	}

	result, err := s.ai.Run(c.Request().Context(), idea)
	if err != nil {
		logger.Error("Brainstorm upstream failed", logger.F("error", err))
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "brainstorm provider failed"})
	}

	if req.IdeaID > 0 {
		raw, _ := json.Marshal(result)
		if err := s.store.SaveBrainstorm(c.Request().Context(), userID, req.IdeaID, raw); err != nil {
			logger.Warn("Failed to persist brainstorm", logger.F("id", req.IdeaID), logger.F("error", err))
		}
	}

	return c.JSON(http.StatusOK, result)
}
