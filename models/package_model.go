package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ItineraryDay struct {
	Day         int    `json:"day"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Package struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Slug         string    `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Description  string    `gorm:"type:text" json:"description"`
	Location     string    `gorm:"size:255;index" json:"location"`
	Duration     string    `gorm:"size:100" json:"duration"`
	DurationDays int       `json:"duration_days"`
	Price        float64   `gorm:"type:numeric(10,2);not null" json:"price"`
	Category     string    `gorm:"size:100;index" json:"category"`
	CoverImage   *string   `gorm:"size:512" json:"cover_image,omitempty"`

	Images       datatypes.JSONSlice[string]       `json:"images"`
	Highlights   datatypes.JSONSlice[string]       `json:"highlights"`
	Itinerary    datatypes.JSONSlice[ItineraryDay] `json:"itinerary"`
	PickupPoints datatypes.JSONSlice[string]       `json:"pickup_points"`

	IsActive   bool `gorm:"default:true;index" json:"is_active"`
	IsFeatured bool `gorm:"default:false" json:"is_featured"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
