package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/anjiri1684/travel_agency/apperrors"
	"github.com/anjiri1684/travel_agency/database"
	"github.com/anjiri1684/travel_agency/events"
	"github.com/anjiri1684/travel_agency/models"
	"github.com/anjiri1684/travel_agency/notifications"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type BookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error)
	List(ctx context.Context, filter database.BookingFilter) ([]models.Booking, int64, error)
	ListCreatedBetween(ctx context.Context, from, to time.Time) ([]models.Booking, error)
	Modify(ctx context.Context, id uuid.UUID, mutate func(booking *models.Booking) error) (*models.Booking, error)
}

type PackageFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Package, error)
}

type CreateBookingInput struct {
	PackageID       *uuid.UUID
	ServiceType     models.ServiceType
	TotalAmount     float64
	TravelDate      *time.Time
	NumberOfPeople  int
	ContactName     string
	ContactEmail    string
	ContactPhone    string
	PickupLocation  *string
	DropLocation    *string
	SpecialRequests *string
}

// PatchBookingInput holds the fields a caller may change; nil means unchanged.
type PatchBookingInput struct {
	Status          *models.BookingStatus
	TravelDate      *time.Time
	NumberOfPeople  *int
	ContactName     *string
	ContactEmail    *string
	ContactPhone    *string
	PickupLocation  *string
	DropLocation    *string
	SpecialRequests *string
}

type BookingService struct {
	bookings  BookingStore
	packages  PackageFinder
	settings  SettingsProvider
	publisher events.Publisher
	mailer    notifications.Mailer
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewBookingService(
	bookings BookingStore,
	packages PackageFinder,
	settings SettingsProvider,
	publisher events.Publisher,
	mailer notifications.Mailer,
	log logrus.FieldLogger,
) *BookingService {
	return &BookingService{
		bookings:  bookings,
		packages:  packages,
		settings:  settings,
		publisher: publisher,
		mailer:    mailer,
		log:       log,
		now:       time.Now,
	}
}

func (s *BookingService) Create(ctx context.Context, caller models.AuthContext, in CreateBookingInput) (*models.Booking, error) {
	if caller.UserID == uuid.Nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if in.PackageID == nil || *in.PackageID == uuid.Nil {
		return nil, apperrors.Validation("Package ID required")
	}
	if !in.ServiceType.Valid() {
		return nil, apperrors.Validation("Invalid service type")
	}
	if in.NumberOfPeople < 1 {
		return nil, apperrors.Validation("Number of people must be at least 1")
	}
	if in.TotalAmount <= 0 {
		return nil, apperrors.Validation("Total amount must be greater than zero")
	}

	pkg, err := s.packages.FindByID(ctx, *in.PackageID)
	if err != nil {
		return nil, err
	}
	if !pkg.IsActive {
		return nil, apperrors.NotFound("Package")
	}

	settings := s.settings.Get(ctx)
	booking := &models.Booking{
		UserID:          caller.UserID,
		PackageID:       &pkg.ID,
		ServiceType:     in.ServiceType,
		Status:          models.BookingPending,
		TotalAmount:     in.TotalAmount,
		PaidAmount:      0,
		Currency:        settings.Payment.Currency,
		TravelDate:      in.TravelDate,
		NumberOfPeople:  in.NumberOfPeople,
		ContactName:     strings.TrimSpace(in.ContactName),
		ContactEmail:    strings.ToLower(strings.TrimSpace(in.ContactEmail)),
		ContactPhone:    strings.TrimSpace(in.ContactPhone),
		PickupLocation:  in.PickupLocation,
		DropLocation:    in.DropLocation,
		SpecialRequests: in.SpecialRequests,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}
	booking.Package = pkg

	s.log.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"reference":  booking.ReferenceCode,
		"user_id":    caller.UserID,
	}).Info("Booking created")

	s.publish(ctx, events.BookingCreated, booking)
	subject, body := notifications.BookingReceivedEmail(booking.ContactName, booking.ReferenceCode,
		string(booking.ServiceType), booking.TotalAmount, booking.Currency)
	notifications.SendAsync(s.mailer, s.log, booking.ContactName, booking.ContactEmail, subject, body)

	return booking, nil
}

func (s *BookingService) Get(ctx context.Context, id uuid.UUID, caller models.AuthContext) (*models.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(booking.UserID) {
		return nil, apperrors.Forbidden("You do not have access to this booking")
	}
	return booking, nil
}

// Patch applies the caller's changes to the locked row. Payment columns are never written
// from stale data.
func (s *BookingService) Patch(ctx context.Context, id uuid.UUID, caller models.AuthContext, in PatchBookingInput) (*models.Booking, error) {
	if in.NumberOfPeople != nil && *in.NumberOfPeople < 1 {
		return nil, apperrors.Validation("Number of people must be at least 1")
	}

	eventType := events.BookingUpdated
	booking, err := s.bookings.Modify(ctx, id, func(booking *models.Booking) error {
		if !caller.CanAccess(booking.UserID) {
			return apperrors.Forbidden("You do not have access to this booking")
		}

		if in.Status != nil && *in.Status != booking.Status {
			if err := checkTransition(booking.Status, *in.Status, caller); err != nil {
				return err
			}
			booking.Status = *in.Status
			if booking.Status == models.BookingCancelled {
				now := s.now()
				booking.CancelledAt = &now
				eventType = events.BookingCancelled
			}
		}

		if in.NumberOfPeople != nil {
			booking.NumberOfPeople = *in.NumberOfPeople
		}
		if in.TravelDate != nil {
			booking.TravelDate = in.TravelDate
			booking.ReminderSentAt = nil
		}
		if in.ContactName != nil {
			booking.ContactName = strings.TrimSpace(*in.ContactName)
		}
		if in.ContactEmail != nil {
			booking.ContactEmail = strings.ToLower(strings.TrimSpace(*in.ContactEmail))
		}
		if in.ContactPhone != nil {
			booking.ContactPhone = strings.TrimSpace(*in.ContactPhone)
		}
		if in.PickupLocation != nil {
			booking.PickupLocation = in.PickupLocation
		}
		if in.DropLocation != nil {
			booking.DropLocation = in.DropLocation
		}
		if in.SpecialRequests != nil {
			booking.SpecialRequests = in.SpecialRequests
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"status":     booking.Status,
		"by":         caller.UserID,
	}).Info("Booking updated")
	s.publish(ctx, eventType, booking)

	if eventType == events.BookingCancelled {
		subject, body := notifications.BookingCancelledEmail(booking.ContactName, booking.ReferenceCode, "")
		notifications.SendAsync(s.mailer, s.log, booking.ContactName, booking.ContactEmail, subject, body)
	}
	return booking, nil
}

// checkTransition enforces PENDING -> CONFIRMED -> COMPLETED with CANCELLED reachable from
// anywhere. Owners may only cancel; terminal states are reopened by admins only.
func checkTransition(from, to models.BookingStatus, caller models.AuthContext) error {
	if !to.Valid() {
		return apperrors.Validation("Invalid booking status")
	}
	if !caller.IsAdmin() {
		if to != models.BookingCancelled {
			return apperrors.Forbidden("Only administrators can change the booking status")
		}
		if from == models.BookingCompleted {
			return apperrors.Validation("A completed booking cannot be cancelled")
		}
		return nil
	}
	if to == models.BookingCompleted && from != models.BookingConfirmed {
		return apperrors.Validation("Only confirmed bookings can be completed")
	}
	return nil
}

func (s *BookingService) ListForUser(ctx context.Context, caller models.AuthContext) ([]models.Booking, error) {
	if caller.UserID == uuid.Nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	return s.bookings.ListByUser(ctx, caller.UserID)
}

func (s *BookingService) List(ctx context.Context, filter database.BookingFilter) ([]models.Booking, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, apperrors.Validation("Invalid status filter")
	}
	if filter.ServiceType != "" && !filter.ServiceType.Valid() {
		return nil, 0, apperrors.Validation("Invalid service type filter")
	}
	return s.bookings.List(ctx, filter)
}

var exportHeader = []string{
	"reference_code", "status", "service_type", "package", "contact_name", "contact_email",
	"contact_phone", "number_of_people", "travel_date", "total_amount", "paid_amount", "currency", "created_at",
}

// ExportCSV writes the bookings created in [from, to) to w.
func (s *BookingService) ExportCSV(ctx context.Context, from, to time.Time, w io.Writer) error {
	if !from.Before(to) {
		return apperrors.Validation("'from' must be before 'to'")
	}
	bookings, err := s.bookings.ListCreatedBetween(ctx, from, to)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return apperrors.Internal("Failed to write export", err)
	}
	for _, b := range bookings {
		pkg := ""
		if b.Package != nil {
			pkg = b.Package.Title
		}
		travel := ""
		if b.TravelDate != nil {
			travel = b.TravelDate.Format("2006-01-02")
		}
		row := []string{
			b.ReferenceCode, string(b.Status), string(b.ServiceType), pkg, b.ContactName, b.ContactEmail,
			b.ContactPhone, strconv.Itoa(b.NumberOfPeople), travel,
			formatAmount(b.TotalAmount), formatAmount(b.PaidAmount), b.Currency,
			b.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return apperrors.Internal("Failed to write export", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return apperrors.Internal("Failed to write export", err)
	}
	return nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, b *models.Booking) {
	publishBookingEvent(ctx, s.publisher, s.log, eventType, b)
}

func publishBookingEvent(ctx context.Context, publisher events.Publisher, log logrus.FieldLogger, eventType string, b *models.Booking) {
	err := publisher.Publish(ctx, events.Event{
		Type:      eventType,
		BookingID: b.ID.String(),
		Reference: b.ReferenceCode,
		Status:    string(b.Status),
		Data: map[string]any{
			"total_amount": b.TotalAmount,
			"paid_amount":  b.PaidAmount,
			"service_type": b.ServiceType,
		},
	})
	if err != nil {
		log.WithError(err).WithField("type", eventType).Warn("Failed to publish booking event")
	}
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
