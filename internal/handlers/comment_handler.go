package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shafin-dev/localhub/backend/internal/models"
	"github.com/shafin-dev/localhub/backend/internal/services"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentService *services.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// RegisterCommentRoutes registers comment-related routes. The read
// route lives on the optionally-authenticated group so anonymous users
// can browse; mutations require a signed-in caller.
func (h *CommentHandler) RegisterCommentRoutes(read, write *echo.Group) {
	read.GET("/posts/:post_id/comments", h.GetCommentTree)
	write.POST("/posts/:post_id/comments", h.CreateComment)
	write.PUT("/comments/:id", h.UpdateComment)
	write.DELETE("/comments/:id", h.DeleteComment)
}

// GetCommentTree returns the enriched comment forest for a post. When
// the caller is authenticated, each node carries their own reaction
// flags.
func (h *CommentHandler) GetCommentTree(c echo.Context) error {
	postID := c.Param("post_id")
	viewerID := getUserIDFromContext(c)

	forest, err := h.commentService.GetForest(c.Request().Context(), postID, viewerID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"post_id":  postID,
		"comments": forest,
	})
}

// CreateComment creates a new comment or reply on a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("post_id")

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment, err := h.commentService.CreateComment(c.Request().Context(), postID, currentUserID, req.ParentCommentID, req.Content)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, comment)
}

// UpdateComment updates an existing comment owned by the caller
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	commentID := c.Param("id")

	var req models.UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment, err := h.commentService.UpdateComment(c.Request().Context(), commentID, currentUserID, req.Content)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, comment)
}

// DeleteComment soft-deletes a comment owned by the caller
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	commentID := c.Param("id")

	if err := h.commentService.DeleteComment(c.Request().Context(), commentID, currentUserID); err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}
