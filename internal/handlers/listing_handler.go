package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shafin-dev/localhub/backend/internal/models"
	"github.com/shafin-dev/localhub/backend/internal/repositories"
	"gorm.io/gorm"
)

// ListingHandler handles HTTP requests for services/tips listings
type ListingHandler struct {
	listingRepository repositories.ListingRepository
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(listingRepo repositories.ListingRepository) *ListingHandler {
	return &ListingHandler{listingRepository: listingRepo}
}

// RegisterListingRoutes registers listing-related routes
func (h *ListingHandler) RegisterListingRoutes(g *echo.Group) {
	g.POST("/listings", h.CreateListing)
	g.GET("/listings", h.GetListings)
	g.GET("/listings/:id", h.GetListing)
	g.PUT("/listings/:id", h.UpdateListing)
	g.DELETE("/listings/:id", h.DeleteListing)
}

// CreateListing creates a new services/tips listing
func (h *ListingHandler) CreateListing(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateListingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	listing := &models.Listing{
		UserID:    currentUserID,
		Category:  models.ListingCategory(req.Category),
		Title:     req.Title,
		Body:      req.Body,
		PriceHint: req.PriceHint,
		Status:    models.ListingStatusOpen,
	}

	if err := h.listingRepository.CreateListing(listing); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, listing)
}

// GetListings retrieves listings with optional category filter
func (h *ListingHandler) GetListings(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	category := models.ListingCategory(c.QueryParam("category"))
	if category != "" && category != models.ListingCategoryService && category != models.ListingCategoryTip {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid listing category")
	}

	listings, total, err := h.listingRepository.GetListings(category, page, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"listings": listings,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

// GetListing retrieves a single listing by ID
func (h *ListingHandler) GetListing(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid listing ID")
	}

	listing, err := h.listingRepository.GetListingByID(uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Listing not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, listing)
}

// UpdateListing updates a listing owned by the caller
func (h *ListingHandler) UpdateListing(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid listing ID")
	}

	var req models.UpdateListingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	listing, err := h.listingRepository.GetListingByID(uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Listing not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if listing.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to update this listing")
	}

	if req.Title != "" {
		listing.Title = req.Title
	}
	if req.Body != "" {
		listing.Body = req.Body
	}
	if req.PriceHint != "" {
		listing.PriceHint = req.PriceHint
	}
	if req.Status != "" {
		listing.Status = models.ListingStatus(req.Status)
	}

	if err := h.listingRepository.UpdateListing(listing); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, listing)
}

// DeleteListing deletes a listing owned by the caller
func (h *ListingHandler) DeleteListing(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid listing ID")
	}

	listing, err := h.listingRepository.GetListingByID(uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Listing not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if listing.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this listing")
	}

	if err := h.listingRepository.DeleteListing(uint(id)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
