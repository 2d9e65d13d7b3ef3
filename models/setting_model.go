package models

import "time"

type Setting struct {
	Key       string    `gorm:"primaryKey;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	SettingPaymentEnabled       = "payment.gateway_enabled"
	SettingPaymentKeyID         = "payment.key_id"
	SettingPaymentKeySecret     = "payment.key_secret"
	SettingPaymentWebhookSecret = "payment.webhook_secret"
	SettingPaymentCurrency      = "payment.currency"

	SettingBusinessName    = "business.name"
	SettingBusinessEmail   = "business.email"
	SettingBusinessPhone   = "business.phone"
	SettingBusinessAddress = "business.address"

	SettingBookingPendingExpiryHours = "booking.pending_expiry_hours"
)

// SecretSettings are never returned in clear text by the admin API.
var SecretSettings = map[string]bool{
	SettingPaymentKeySecret:     true,
	SettingPaymentWebhookSecret: true,
}

var KnownSettings = []string{
	SettingPaymentEnabled,
	SettingPaymentKeyID,
	SettingPaymentKeySecret,
	SettingPaymentWebhookSecret,
	SettingPaymentCurrency,
	SettingBusinessName,
	SettingBusinessEmail,
	SettingBusinessPhone,
	SettingBusinessAddress,
	SettingBookingPendingExpiryHours,
}
