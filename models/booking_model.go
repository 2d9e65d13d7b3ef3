package models

import (
	"time"

	"github.com/google/uuid"
)

type ServiceType string

const (
	ServiceHolidayPackage ServiceType = "HOLIDAY_PACKAGE"
	ServiceGoldenTriangle ServiceType = "GOLDEN_TRIANGLE"
	ServiceFlight         ServiceType = "FLIGHT"
	ServiceRailway        ServiceType = "RAILWAY"
	ServiceBus            ServiceType = "BUS"
	ServiceTaxi           ServiceType = "TAXI"
)

var ServiceTypes = []ServiceType{
	ServiceHolidayPackage, ServiceGoldenTriangle, ServiceFlight, ServiceRailway, ServiceBus, ServiceTaxi,
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCancelled BookingStatus = "CANCELLED"
)

type Booking struct {
	ID            uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ReferenceCode string        `gorm:"size:20;not null;uniqueIndex" json:"reference_code"`
	UserID        uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	PackageID     *uuid.UUID    `gorm:"type:uuid;index" json:"package_id,omitempty"`
	ServiceType   ServiceType   `gorm:"size:30;not null" json:"service_type"`
	Status        BookingStatus `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	TotalAmount   float64       `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	PaidAmount    float64       `gorm:"type:numeric(10,2);not null;default:0" json:"paid_amount"`
	Currency      string        `gorm:"size:3;not null;default:'INR'" json:"currency"`

	TravelDate      *time.Time `json:"travel_date,omitempty"`
	NumberOfPeople  int        `gorm:"not null;default:1" json:"number_of_people"`
	ContactName     string     `gorm:"size:255;not null" json:"contact_name"`
	ContactEmail    string     `gorm:"size:255;not null" json:"contact_email"`
	ContactPhone    string     `gorm:"size:30" json:"contact_phone"`
	PickupLocation  *string    `gorm:"size:255" json:"pickup_location,omitempty"`
	DropLocation    *string    `gorm:"size:255" json:"drop_location,omitempty"`
	SpecialRequests *string    `gorm:"type:text" json:"special_requests,omitempty"`

	GatewayOrderID   *string `gorm:"size:255;index" json:"gateway_order_id,omitempty"`
	GatewayPaymentID *string `gorm:"size:255" json:"gateway_payment_id,omitempty"`
	GatewaySignature *string `gorm:"size:255" json:"-"`

	VoucherURL     *string    `gorm:"size:512" json:"voucher_url,omitempty"`
	ReminderSentAt *time.Time `json:"-"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`

	User    User     `gorm:"foreignkey:UserID" json:"-"`
	Package *Package `gorm:"foreignkey:PackageID" json:"package,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Booking) RemainingAmount() float64 {
	if remaining := b.TotalAmount - b.PaidAmount; remaining > 0 {
		return remaining
	}
	return 0
}

func (s ServiceType) Valid() bool {
	for _, t := range ServiceTypes {
		if t == s {
			return true
		}
	}
	return false
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}
