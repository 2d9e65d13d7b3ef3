package jobs

import (
	"context"
	"time"

	"github.com/anjiri1684/travel_agency/models"
	"github.com/anjiri1684/travel_agency/notifications"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type UpcomingTripStore interface {
	FindUpcomingUnreminded(ctx context.Context, from, to time.Time) ([]models.Booking, error)
	MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) error
}

// ReminderJob emails travellers whose confirmed trip starts within the next day.
type ReminderJob struct {
	bookings UpcomingTripStore
	mailer   notifications.Mailer
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewReminderJob(bookings UpcomingTripStore, mailer notifications.Mailer, log logrus.FieldLogger) *ReminderJob {
	return &ReminderJob{bookings: bookings, mailer: mailer, log: log, now: time.Now}
}

func (j *ReminderJob) Run(ctx context.Context) {
	now := j.now()
	upcoming, err := j.bookings.FindUpcomingUnreminded(ctx, now, now.Add(24*time.Hour))
	if err != nil {
		j.log.WithError(err).Error("Error checking for upcoming trips")
		return
	}

	sent := 0
	for _, b := range upcoming {
		if b.TravelDate == nil {
			continue
		}
		entry := j.log.WithFields(logrus.Fields{"booking_id": b.ID, "reference": b.ReferenceCode})

		subject, body := notifications.TravelReminderEmail(b.ContactName, b.ReferenceCode, b.TravelDate.Format("Monday, 02 Jan 2006"))
		if err := j.mailer.Send(ctx, b.ContactName, b.ContactEmail, subject, body); err != nil {
			entry.WithError(err).Warn("Failed to send trip reminder")
			continue
		}
		if err := j.bookings.MarkReminded(ctx, b.ID, now); err != nil {
			entry.WithError(err).Error("Failed to mark reminder as sent")
			continue
		}
		sent++
	}
	if sent > 0 {
		j.log.WithField("count", sent).Info("Sent trip reminders")
	}
}
