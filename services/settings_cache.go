package services

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/anjiri1684/travel_agency/models"
	"github.com/sirupsen/logrus"
)

const defaultPendingExpiryHours = 48

type PaymentSettings struct {
	Enabled       bool
	KeyID         string
	KeySecret     string
	WebhookSecret string
	Currency      string
}

type BusinessSettings struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

type BookingSettings struct {
	PendingExpiryHours int
}

// SiteSettings is the typed view of the settings table.
type SiteSettings struct {
	Payment  PaymentSettings
	Business BusinessSettings
	Booking  BookingSettings
}

func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		Payment:  PaymentSettings{Enabled: false, Currency: "INR"},
		Business: BusinessSettings{Name: "Travel Agency"},
		Booking:  BookingSettings{PendingExpiryHours: defaultPendingExpiryHours},
	}
}

type SettingsProvider interface {
	Get(ctx context.Context) SiteSettings
	Invalidate()
}

type SettingsSource interface {
	All(ctx context.Context) ([]models.Setting, error)
}

// SettingsCache is a read-through cache over the settings table with a fixed TTL.
type SettingsCache struct {
	source SettingsSource
	ttl    time.Duration
	log    logrus.FieldLogger
	now    func() time.Time

	mu       sync.RWMutex
	snapshot *SiteSettings
	loadedAt time.Time
}

func NewSettingsCache(source SettingsSource, ttl time.Duration, log logrus.FieldLogger) *SettingsCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SettingsCache{source: source, ttl: ttl, log: log, now: time.Now}
}

func (c *SettingsCache) Get(ctx context.Context) SiteSettings {
	c.mu.RLock()
	if c.snapshot != nil && c.now().Sub(c.loadedAt) < c.ttl {
		s := *c.snapshot
		c.mu.RUnlock()
		return s
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another goroutine may have refreshed while we waited for the write lock.
	if c.snapshot != nil && c.now().Sub(c.loadedAt) < c.ttl {
		return *c.snapshot
	}

	rows, err := c.source.All(ctx)
	if err != nil {
		c.log.WithError(err).Error("Failed to load site settings, falling back to defaults")
		return DefaultSiteSettings()
	}

	s := buildSiteSettings(rows)
	c.snapshot = &s
	c.loadedAt = c.now()
	c.log.Debug("Site settings cache refreshed")
	return s
}

func (c *SettingsCache) Invalidate() {
	c.mu.Lock()
	c.snapshot = nil
	c.loadedAt = time.Time{}
	c.mu.Unlock()
}

func buildSiteSettings(rows []models.Setting) SiteSettings {
	s := DefaultSiteSettings()
	for _, row := range rows {
		value := strings.TrimSpace(row.Value)
		switch row.Key {
		case models.SettingPaymentEnabled:
			s.Payment.Enabled = parseBool(value)
		case models.SettingPaymentKeyID:
			s.Payment.KeyID = value
		case models.SettingPaymentKeySecret:
			s.Payment.KeySecret = value
		case models.SettingPaymentWebhookSecret:
			s.Payment.WebhookSecret = value
		case models.SettingPaymentCurrency:
			if value != "" {
				s.Payment.Currency = strings.ToUpper(value)
			}
		case models.SettingBusinessName:
			if value != "" {
				s.Business.Name = value
			}
		case models.SettingBusinessEmail:
			s.Business.Email = value
		case models.SettingBusinessPhone:
			s.Business.Phone = value
		case models.SettingBusinessAddress:
			s.Business.Address = value
		case models.SettingBookingPendingExpiryHours:
			if hours, err := strconv.Atoi(value); err == nil && hours > 0 {
				s.Booking.PendingExpiryHours = hours
			}
		}
	}
	return s
}

func parseBool(v string) bool {
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	switch strings.ToLower(v) {
	case "yes", "on", "enabled":
		return true
	}
	return false
}
