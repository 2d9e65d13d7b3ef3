package models

import (
	"time"

	"github.com/google/uuid"
)

type FormType string

const (
	FormContact    FormType = "CONTACT"
	FormEnquiry    FormType = "ENQUIRY"
	FormCustomTrip FormType = "CUSTOM_TRIP"
)

type FormStatus string

const (
	FormNew     FormStatus = "NEW"
	FormRead    FormStatus = "READ"
	FormReplied FormStatus = "REPLIED"
	FormClosed  FormStatus = "CLOSED"
)

type FormPriority string

const (
	PriorityLow    FormPriority = "LOW"
	PriorityNormal FormPriority = "NORMAL"
	PriorityHigh   FormPriority = "HIGH"
	PriorityUrgent FormPriority = "URGENT"
)

type FormResponse struct {
	ID         uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FormType   FormType     `gorm:"size:20;not null;default:'CONTACT'" json:"form_type"`
	Name       string       `gorm:"size:255;not null" json:"name"`
	Email      string       `gorm:"size:255;not null" json:"email"`
	Phone      *string      `gorm:"size:30" json:"phone,omitempty"`
	Subject    string       `gorm:"size:255" json:"subject"`
	Message    string       `gorm:"type:text;not null" json:"message"`
	PackageID  *uuid.UUID   `gorm:"type:uuid" json:"package_id,omitempty"`
	Status     FormStatus   `gorm:"size:20;not null;default:'NEW';index" json:"status"`
	Priority   FormPriority `gorm:"size:20;not null;default:'NORMAL';index" json:"priority"`
	AdminNotes *string      `gorm:"type:text" json:"admin_notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
