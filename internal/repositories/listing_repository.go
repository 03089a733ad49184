package repositories

import (
	"github.com/shafin-dev/localhub/backend/internal/models"
	"gorm.io/gorm"
)

// ListingRepository defines the interface for services/tips listings
type ListingRepository interface {
	CreateListing(listing *models.Listing) error
	GetListingByID(id uint) (*models.Listing, error)
	GetListings(category models.ListingCategory, page, limit int) ([]models.Listing, int64, error)
	GetListingsByUser(userID uint) ([]models.Listing, error)
	UpdateListing(listing *models.Listing) error
	DeleteListing(id uint) error
}

// PostgresListingRepository implements ListingRepository for PostgreSQL
type PostgresListingRepository struct {
	db *gorm.DB
}

// NewPostgresListingRepository creates a new PostgresListingRepository
func NewPostgresListingRepository(db *gorm.DB) *PostgresListingRepository {
	return &PostgresListingRepository{db: db}
}

// CreateListing creates a new listing in PostgreSQL
func (r *PostgresListingRepository) CreateListing(listing *models.Listing) error {
	return r.db.Create(listing).Error
}

// GetListingByID retrieves a listing by ID from PostgreSQL
func (r *PostgresListingRepository) GetListingByID(id uint) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.First(&listing, id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// GetListings retrieves listings with optional category filter and pagination
func (r *PostgresListingRepository) GetListings(category models.ListingCategory, page, limit int) ([]models.Listing, int64, error) {
	query := r.db.Model(&models.Listing{})
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var listings []models.Listing
	offset := (page - 1) * limit
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&listings).Error
	return listings, total, err
}

// GetListingsByUser retrieves all listings created by a user
func (r *PostgresListingRepository) GetListingsByUser(userID uint) ([]models.Listing, error) {
	var listings []models.Listing
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&listings).Error
	return listings, err
}

// UpdateListing updates an existing listing in PostgreSQL
func (r *PostgresListingRepository) UpdateListing(listing *models.Listing) error {
	return r.db.Save(listing).Error
}

// DeleteListing soft-deletes a listing by ID
func (r *PostgresListingRepository) DeleteListing(id uint) error {
	return r.db.Delete(&models.Listing{}, id).Error
}
