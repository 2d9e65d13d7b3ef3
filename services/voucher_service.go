package services

import (
	"context"
	"fmt"
	"time"

	"github.com/anjiri1684/travel_agency/apperrors"
	"github.com/anjiri1684/travel_agency/models"
	"github.com/anjiri1684/travel_agency/notifications"
	"github.com/anjiri1684/travel_agency/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type VoucherBookingStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	SetVoucherURL(ctx context.Context, id uuid.UUID, url string) error
}

type VoucherService struct {
	bookings VoucherBookingStore
	renderer VoucherRenderer
	store    storage.ObjectStore
	settings SettingsProvider
	mailer   notifications.Mailer
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewVoucherService builds the voucher service. store may be nil, in which case vouchers are
// only served on demand and never uploaded.
func NewVoucherService(
	bookings VoucherBookingStore,
	renderer VoucherRenderer,
	store storage.ObjectStore,
	settings SettingsProvider,
	mailer notifications.Mailer,
	log logrus.FieldLogger,
) *VoucherService {
	return &VoucherService{
		bookings: bookings,
		renderer: renderer,
		store:    store,
		settings: settings,
		mailer:   mailer,
		log:      log,
		now:      time.Now,
	}
}

// Render returns the voucher PDF for a booking the caller may see.
func (s *VoucherService) Render(ctx context.Context, id uuid.UUID, caller models.AuthContext) ([]byte, *models.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !caller.CanAccess(booking.UserID) {
		return nil, nil, apperrors.Forbidden("You do not have access to this booking")
	}
	if booking.Status != models.BookingConfirmed && booking.Status != models.BookingCompleted {
		return nil, nil, apperrors.Validation("Vouchers are only available for confirmed bookings")
	}

	pdf, err := s.renderer.Render(ctx, s.voucherData(ctx, booking))
	if err != nil {
		return nil, nil, apperrors.Internal("Failed to generate voucher", err)
	}
	return pdf, booking, nil
}

// IssueAsync renders, uploads and emails the voucher in the background.
func (s *VoucherService) IssueAsync(bookingID uuid.UUID) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := s.Issue(ctx, bookingID); err != nil {
			s.log.WithError(err).WithField("booking_id", bookingID).Error("Failed to issue voucher")
		}
	}()
}

func (s *VoucherService) Issue(ctx context.Context, bookingID uuid.UUID) error {
	if s.store == nil {
		s.log.WithField("booking_id", bookingID).Debug("No object store configured, skipping voucher upload")
		return nil
	}
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.VoucherURL != nil && *booking.VoucherURL != "" {
		return nil
	}

	pdf, err := s.renderer.Render(ctx, s.voucherData(ctx, booking))
	if err != nil {
		return fmt.Errorf("render voucher: %w", err)
	}

	key := fmt.Sprintf("vouchers/%s_%s.pdf", booking.ReferenceCode, uuid.New().String())
	url, err := s.store.Put(ctx, key, pdf, "application/pdf")
	if err != nil {
		return fmt.Errorf("upload voucher: %w", err)
	}
	if err := s.bookings.SetVoucherURL(ctx, booking.ID, url); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"booking_id": booking.ID, "url": url}).Info("Voucher issued")
	subject, body := notifications.VoucherReadyEmail(booking.ContactName, booking.ReferenceCode, url)
	return s.mailer.Send(ctx, booking.ContactName, booking.ContactEmail, subject, body)
}

func (s *VoucherService) voucherData(ctx context.Context, b *models.Booking) VoucherData {
	business := s.settings.Get(ctx).Business
	d := VoucherData{
		BusinessName:    business.Name,
		BusinessEmail:   business.Email,
		BusinessPhone:   business.Phone,
		BusinessAddress: business.Address,
		ReferenceCode:   b.ReferenceCode,
		Status:          string(b.Status),
		ServiceType:     humanizeEnum(string(b.ServiceType)),
		NumberOfPeople:  b.NumberOfPeople,
		ContactName:     b.ContactName,
		ContactEmail:    b.ContactEmail,
		ContactPhone:    b.ContactPhone,
		TotalAmount:     money(b.Currency, b.TotalAmount),
		PaidAmount:      money(b.Currency, b.PaidAmount),
		Balance:         money(b.Currency, b.RemainingAmount()),
		IssuedAt:        s.now().Format("January 2, 2006"),
	}
	if b.Package != nil {
		d.PackageTitle = b.Package.Title
		d.Location = b.Package.Location
		d.Duration = b.Package.Duration
	}
	if b.TravelDate != nil {
		d.TravelDate = b.TravelDate.Format("Monday, January 2, 2006")
	}
	if b.PickupLocation != nil {
		d.PickupLocation = *b.PickupLocation
	}
	if b.DropLocation != nil {
		d.DropLocation = *b.DropLocation
	}
	return d
}

func money(currency string, amount float64) string {
	return fmt.Sprintf("%s %.2f", currency, amount)
}

func humanizeEnum(v string) string {
	out := []rune(v)
	upper := true
	for i, r := range out {
		switch {
		case r == '_':
			out[i] = ' '
			upper = true
		case upper:
			upper = false
		case r >= 'A' && r <= 'Z':
			out[i] = r + ('a' - 'A')
		}
	}
	return string(out)
}
