package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/anjiri1684/travel_agency/apperrors"
	"github.com/anjiri1684/travel_agency/events"
	"github.com/anjiri1684/travel_agency/models"
	"github.com/sirupsen/logrus"
)

type SettingsStore interface {
	SettingsSource
	Upsert(ctx context.Context, values map[string]string) error
}

// SettingsService backs the admin settings page.
type SettingsService struct {
	store     SettingsStore
	cache     SettingsProvider
	publisher events.Publisher
	log       logrus.FieldLogger
}

func NewSettingsService(store SettingsStore, cache SettingsProvider, publisher events.Publisher, log logrus.FieldLogger) *SettingsService {
	return &SettingsService{store: store, cache: cache, publisher: publisher, log: log}
}

// List returns every known key, with secrets masked.
func (s *SettingsService) List(ctx context.Context) (map[string]string, error) {
	rows, err := s.store.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(models.KnownSettings))
	for _, key := range models.KnownSettings {
		out[key] = ""
	}
	for _, row := range rows {
		if _, known := out[row.Key]; !known {
			continue
		}
		if models.SecretSettings[row.Key] {
			out[row.Key] = maskSecret(row.Value)
			continue
		}
		out[row.Key] = row.Value
	}
	return out, nil
}

func (s *SettingsService) Update(ctx context.Context, values map[string]string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, apperrors.Validation("No settings provided")
	}

	known := make(map[string]bool, len(models.KnownSettings))
	for _, key := range models.KnownSettings {
		known[key] = true
	}

	clean := make(map[string]string, len(values))
	for key, value := range values {
		if !known[key] {
			return nil, apperrors.Validation("Unknown setting: " + key)
		}
		value = strings.TrimSpace(value)
		// A masked secret echoed back by the settings form means "unchanged".
		if models.SecretSettings[key] && strings.HasPrefix(value, maskPrefix) {
			continue
		}
		normalized, err := normalizeSetting(key, value)
		if err != nil {
			return nil, err
		}
		clean[key] = normalized
	}

	if len(clean) > 0 {
		if err := s.store.Upsert(ctx, clean); err != nil {
			return nil, err
		}
	}

	s.cache.Invalidate()
	if err := s.publisher.Publish(ctx, events.Event{Type: events.SettingsChanged}); err != nil {
		s.log.WithError(err).Warn("Failed to broadcast settings invalidation")
	}
	s.log.WithField("keys", len(clean)).Info("Site settings updated")

	return s.List(ctx)
}

// normalizeSetting validates a value and returns the form it is stored in. Booleans are
// always written as "true" or "false".
func normalizeSetting(key, value string) (string, error) {
	switch key {
	case models.SettingPaymentEnabled:
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return "", apperrors.Validation(key + " must be true or false")
		}
		return strconv.FormatBool(enabled), nil
	case models.SettingPaymentCurrency:
		if len(value) != 3 {
			return "", apperrors.Validation(key + " must be a 3 letter ISO currency code")
		}
		return strings.ToUpper(value), nil
	case models.SettingBookingPendingExpiryHours:
		if hours, err := strconv.Atoi(value); err != nil || hours <= 0 {
			return "", apperrors.Validation(key + " must be a positive number of hours")
		}
	}
	return value, nil
}

const maskPrefix = "****"

func maskSecret(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return maskPrefix
	}
	return maskPrefix + value[len(value)-4:]
}
