package jobs

import (
	"context"
	"time"

	"github.com/anjiri1684/travel_agency/events"
	"github.com/anjiri1684/travel_agency/models"
	"github.com/anjiri1684/travel_agency/services"
	"github.com/sirupsen/logrus"
)

type StalePendingExpirer interface {
	ExpireStalePending(ctx context.Context, before time.Time) ([]models.Booking, error)
}

// ExpiryJob cancels unpaid PENDING bookings older than the configured expiry window.
type ExpiryJob struct {
	bookings  StalePendingExpirer
	settings  services.SettingsProvider
	publisher events.Publisher
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewExpiryJob(bookings StalePendingExpirer, settings services.SettingsProvider, publisher events.Publisher, log logrus.FieldLogger) *ExpiryJob {
	return &ExpiryJob{bookings: bookings, settings: settings, publisher: publisher, log: log, now: time.Now}
}

func (j *ExpiryJob) Run(ctx context.Context) {
	hours := j.settings.Get(ctx).Booking.PendingExpiryHours
	if hours <= 0 {
		return
	}
	cutoff := j.now().Add(-time.Duration(hours) * time.Hour)

	expired, err := j.bookings.ExpireStalePending(ctx, cutoff)
	if err != nil {
		j.log.WithError(err).Error("Failed to expire stale bookings")
		return
	}
	if len(expired) == 0 {
		return
	}

	for _, b := range expired {
		if err := j.publisher.Publish(ctx, events.Event{
			Type:      events.BookingExpired,
			BookingID: b.ID.String(),
			Reference: b.ReferenceCode,
			Status:    string(models.BookingCancelled),
		}); err != nil {
			j.log.WithError(err).WithField("booking_id", b.ID).Warn("Failed to publish expiry event")
		}
	}
	j.log.WithField("count", len(expired)).Info("Expired unpaid pending bookings")
}
