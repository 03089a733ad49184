package models

import (
	"time"

	"gorm.io/gorm"
)

// ListingCategory separates service offers from community tips.
type ListingCategory string

const (
	ListingCategoryService ListingCategory = "service"
	ListingCategoryTip     ListingCategory = "tip"
)

type ListingStatus string

const (
	ListingStatusOpen   ListingStatus = "open"
	ListingStatusClosed ListingStatus = "closed"
)

// Listing represents a services/tips listing (PostgreSQL)
type Listing struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	UserID    uint            `json:"user_id" gorm:"index"`
	Category  ListingCategory `json:"category" gorm:"size:20;index"`
	Title     string          `json:"title" gorm:"size:200"`
	Body      string          `json:"body" gorm:"type:text"`
	PriceHint string          `json:"price_hint,omitempty" gorm:"size:100"`
	Status    ListingStatus   `json:"status" gorm:"size:20;default:open;index"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `json:"-" gorm:"index"`
}

// CreateListingRequest defines the request body for creating a listing
type CreateListingRequest struct {
	Category  string `json:"category" validate:"required,oneof=service tip"`
	Title     string `json:"title" validate:"required,min=3,max=200"`
	Body      string `json:"body" validate:"required,min=1,max=5000"`
	PriceHint string `json:"price_hint,omitempty" validate:"omitempty,max=100"`
}

// UpdateListingRequest defines the request body for updating a listing
type UpdateListingRequest struct {
	Title     string `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Body      string `json:"body,omitempty" validate:"omitempty,min=1,max=5000"`
	PriceHint string `json:"price_hint,omitempty" validate:"omitempty,max=100"`
	Status    string `json:"status,omitempty" validate:"omitempty,oneof=open closed"`
}
