package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shafin-dev/localhub/backend/internal/models"
	"github.com/shafin-dev/localhub/backend/internal/services"
)

// ReactionHandler handles HTTP requests related to reactions
type ReactionHandler struct {
	reactionEngine *services.ReactionEngine
}

// NewReactionHandler creates a new ReactionHandler
func NewReactionHandler(reactionEngine *services.ReactionEngine) *ReactionHandler {
	return &ReactionHandler{reactionEngine: reactionEngine}
}

// RegisterReactionRoutes registers reaction-related routes
func (h *ReactionHandler) RegisterReactionRoutes(g *echo.Group) {
	g.POST("/reactions", h.ToggleReaction)
}

// ToggleReaction toggles a like/dislike/bookmark on a post or comment
// and returns the caller's new reaction state with fresh counters.
func (h *ReactionHandler) ToggleReaction(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.ToggleReactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	action, err := services.ParseAction(req.Action)
	if err != nil {
		return httpError(err)
	}

	result, err := h.reactionEngine.Toggle(c.Request().Context(), currentUserID, models.TargetType(req.TargetType), req.TargetID, action)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, result)
}
