package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentSource string

const (
	PaymentSourceVerify  PaymentSource = "VERIFY"
	PaymentSourceWebhook PaymentSource = "WEBHOOK"
)

type PaymentRecordStatus string

const (
	PaymentCaptured PaymentRecordStatus = "CAPTURED"
	PaymentFailed   PaymentRecordStatus = "FAILED"
)

// PaymentRecord is the ledger of gateway payments applied to bookings.
// GatewayPaymentID is unique so a payment can only ever be applied once.
type PaymentRecord struct {
	ID               uuid.UUID           `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BookingID        uuid.UUID           `gorm:"type:uuid;not null;index" json:"booking_id"`
	GatewayPaymentID string              `gorm:"size:255;not null;uniqueIndex" json:"gateway_payment_id"`
	GatewayOrderID   string              `gorm:"size:255" json:"gateway_order_id"`
	Amount           float64             `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency         string              `gorm:"size:3" json:"currency"`
	Source           PaymentSource       `gorm:"size:20;not null" json:"source"`
	Status           PaymentRecordStatus `gorm:"size:20;not null" json:"status"`

	CreatedAt time.Time `json:"created_at"`
}
