package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/anjiri1684/travel_agency/apperrors"
	"github.com/anjiri1684/travel_agency/events"
	"github.com/anjiri1684/travel_agency/models"
	"github.com/anjiri1684/travel_agency/notifications"
	"github.com/anjiri1684/travel_agency/payments"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Gateway interface {
	CreateOrder(ctx context.Context, creds payments.Credentials, req payments.OrderRequest) (*payments.Order, error)
}

type PaymentBookingStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	FindByOrderID(ctx context.Context, orderID string) (*models.Booking, error)
	SetGatewayOrder(ctx context.Context, id uuid.UUID, orderID string) error
}

type PaymentLedger interface {
	ApplyPayment(ctx context.Context, bookingID uuid.UUID, record *models.PaymentRecord, mutate func(*models.Booking) error) (*models.Booking, bool, error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]models.PaymentRecord, error)
}

// VoucherIssuer generates and delivers a voucher for a freshly confirmed booking.
type VoucherIssuer interface {
	IssueAsync(bookingID uuid.UUID)
}

type CreateOrderInput struct {
	BookingID uuid.UUID
	Amount    *float64
	Currency  string
}

type OrderResult struct {
	OrderID       string    `json:"orderId"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	KeyID         string    `json:"keyId"`
	BookingID     uuid.UUID `json:"bookingId"`
	ReferenceCode string    `json:"referenceCode"`
}

type VerifyInput struct {
	OrderID       string
	PaymentID     string
	Signature     string
	BookingID     uuid.UUID
	PaymentAmount *float64
}

type VerifyResult struct {
	Booking *models.Booking `json:"booking"`
	Applied bool            `json:"applied"`
}

type PaymentService struct {
	bookings  PaymentBookingStore
	ledger    PaymentLedger
	gateway   Gateway
	settings  SettingsProvider
	publisher events.Publisher
	mailer    notifications.Mailer
	vouchers  VoucherIssuer
	log       logrus.FieldLogger
}

func NewPaymentService(
	bookings PaymentBookingStore,
	ledger PaymentLedger,
	gateway Gateway,
	settings SettingsProvider,
	publisher events.Publisher,
	mailer notifications.Mailer,
	vouchers VoucherIssuer,
	log logrus.FieldLogger,
) *PaymentService {
	return &PaymentService{
		bookings:  bookings,
		ledger:    ledger,
		gateway:   gateway,
		settings:  settings,
		publisher: publisher,
		mailer:    mailer,
		vouchers:  vouchers,
		log:       log,
	}
}

func (s *PaymentService) credentials(ctx context.Context) (PaymentSettings, error) {
	cfg := s.settings.Get(ctx).Payment
	if !cfg.Enabled {
		return cfg, apperrors.Config("Online payments are currently disabled", 400)
	}
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		return cfg, apperrors.Config("Payment gateway is not configured", 500)
	}
	return cfg, nil
}

func (s *PaymentService) CreateOrder(ctx context.Context, caller models.AuthContext, in CreateOrderInput) (*OrderResult, error) {
	booking, err := s.bookings.FindByID(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(booking.UserID) {
		return nil, apperrors.Forbidden("You do not have access to this booking")
	}
	if booking.Status == models.BookingCancelled {
		return nil, apperrors.Validation("Cannot pay for a cancelled booking")
	}

	cfg, err := s.credentials(ctx)
	if err != nil {
		return nil, err
	}

	amount := booking.RemainingAmount()
	if in.Amount != nil {
		amount = *in.Amount
	}
	if amount <= 0 {
		return nil, apperrors.Validation("Nothing left to pay for this booking")
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = booking.Currency
	}
	if currency == "" {
		currency = cfg.Currency
	}

	order, err := s.gateway.CreateOrder(ctx, payments.Credentials{KeyID: cfg.KeyID, KeySecret: cfg.KeySecret}, payments.OrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  booking.ReferenceCode,
		Notes:    map[string]string{"booking_id": booking.ID.String()},
	})
	if err != nil {
		s.log.WithError(err).WithField("booking_id", booking.ID).Error("Gateway order creation failed")
		return nil, apperrors.Upstream("Failed to create payment order", err)
	}

	if err := s.bookings.SetGatewayOrder(ctx, booking.ID, order.ID); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"order_id":   order.ID,
		"amount":     amount,
	}).Info("Payment order created")

	return &OrderResult{
		OrderID:       order.ID,
		Amount:        amount,
		Currency:      currency,
		KeyID:         cfg.KeyID,
		BookingID:     booking.ID,
		ReferenceCode: booking.ReferenceCode,
	}, nil
}

func (s *PaymentService) Verify(ctx context.Context, caller models.AuthContext, in VerifyInput) (*VerifyResult, error) {
	cfg, err := s.credentials(ctx)
	if err != nil {
		return nil, err
	}
	if !payments.VerifyPaymentSignature(cfg.KeySecret, in.OrderID, in.PaymentID, in.Signature) {
		s.log.WithFields(logrus.Fields{
			"booking_id": in.BookingID,
			"order_id":   in.OrderID,
		}).Warn("Payment signature mismatch")
		return nil, apperrors.SignatureMismatch("Invalid payment signature")
	}
	if in.PaymentAmount != nil && *in.PaymentAmount < 0 {
		return nil, apperrors.Validation("Payment amount cannot be negative")
	}

	booking, err := s.bookings.FindByID(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(booking.UserID) {
		return nil, apperrors.Forbidden("You do not have access to this booking")
	}
	if booking.GatewayOrderID != nil && *booking.GatewayOrderID != "" && *booking.GatewayOrderID != in.OrderID {
		return nil, apperrors.Validation("Order does not belong to this booking")
	}

	var credited float64
	wasConfirmed := false
	record := &models.PaymentRecord{
		GatewayPaymentID: in.PaymentID,
		GatewayOrderID:   in.OrderID,
		Currency:         booking.Currency,
		Source:           models.PaymentSourceVerify,
		Status:           models.PaymentCaptured,
	}
	updated, applied, err := s.ledger.ApplyPayment(ctx, booking.ID, record, func(b *models.Booking) error {
		if b.Status == models.BookingCancelled {
			return apperrors.Validation("Cannot pay for a cancelled booking")
		}
		credited = b.RemainingAmount()
		if in.PaymentAmount != nil {
			credited = *in.PaymentAmount
		}
		record.Amount = credited
		wasConfirmed = b.Status == models.BookingConfirmed || b.Status == models.BookingCompleted
		creditBooking(b, credited, in.OrderID, in.PaymentID, &in.Signature)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !applied {
		s.log.WithFields(logrus.Fields{
			"booking_id": booking.ID,
			"payment_id": in.PaymentID,
		}).Info("Payment already applied, ignoring replay")
		return &VerifyResult{Booking: updated, Applied: false}, nil
	}

	s.afterCapture(ctx, updated, credited, wasConfirmed)
	return &VerifyResult{Booking: updated, Applied: true}, nil
}

// HandleWebhook authenticates a gateway callback and applies it. Events that do not match a
// booking are acknowledged so the gateway stops retrying.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	cfg := s.settings.Get(ctx).Payment
	if cfg.WebhookSecret == "" {
		return apperrors.Config("Webhook secret is not configured", 500)
	}
	if !payments.VerifyWebhookSignature(cfg.WebhookSecret, body, signature) {
		s.log.Warn("Webhook signature mismatch")
		return apperrors.SignatureMismatch("Invalid webhook signature")
	}

	event, err := payments.ParseWebhookEvent(body)
	if err != nil {
		return apperrors.Validation("Malformed webhook payload")
	}
	entity := event.Payment()
	entry := s.log.WithFields(logrus.Fields{
		"event":      event.Event,
		"order_id":   entity.OrderID,
		"payment_id": entity.ID,
	})

	if event.Event != payments.EventPaymentCaptured && event.Event != payments.EventPaymentFailed {
		entry.Debug("Ignoring unhandled webhook event")
		return nil
	}
	if entity.ID == "" {
		return apperrors.Validation("Webhook payload has no payment id")
	}

	booking, err := s.findWebhookBooking(ctx, entity)
	if err != nil {
		if apperrors.Is(err, apperrors.CodeNotFound) {
			entry.Warn("Webhook for unknown booking, acknowledging")
			return nil
		}
		return err
	}

	record := &models.PaymentRecord{
		GatewayPaymentID: entity.ID,
		GatewayOrderID:   entity.OrderID,
		Amount:           payments.FromMinorUnits(entity.Amount),
		Currency:         strings.ToUpper(entity.Currency),
		Source:           models.PaymentSourceWebhook,
	}

	switch event.Event {
	case payments.EventPaymentCaptured:
		record.Status = models.PaymentCaptured
		wasConfirmed := false
		updated, applied, err := s.ledger.ApplyPayment(ctx, booking.ID, record, func(b *models.Booking) error {
			wasConfirmed = b.Status == models.BookingConfirmed || b.Status == models.BookingCompleted
			if b.Status == models.BookingCancelled {
				// Money moved for a booking we already cancelled: keep the record for a refund.
				entry.WithField("booking_id", b.ID).Warn("Payment captured for a cancelled booking")
				return nil
			}
			creditBooking(b, record.Amount, entity.OrderID, entity.ID, nil)
			return nil
		})
		if err != nil {
			return err
		}
		if !applied {
			entry.Info("Webhook payment already applied, ignoring replay")
			return nil
		}
		if updated.Status != models.BookingCancelled {
			s.afterCapture(ctx, updated, record.Amount, wasConfirmed)
		}

	case payments.EventPaymentFailed:
		record.Status = models.PaymentFailed
		record.Amount = 0
		updated, applied, err := s.ledger.ApplyPayment(ctx, booking.ID, record, func(b *models.Booking) error {
			if b.Status == models.BookingCancelled {
				return nil
			}
			b.Status = models.BookingCancelled
			cancelledAt := time.Now()
			b.CancelledAt = &cancelledAt
			return nil
		})
		if err != nil {
			return err
		}
		if !applied {
			entry.Info("Webhook failure already recorded, ignoring replay")
			return nil
		}
		entry.WithFields(logrus.Fields{
			"booking_id": updated.ID,
			"reason":     entity.ErrorDescription,
		}).Warn("Payment failed, booking cancelled")
		publishBookingEvent(ctx, s.publisher, s.log, events.BookingCancelled, updated)
		subject, html := notifications.BookingCancelledEmail(updated.ContactName, updated.ReferenceCode,
			"The payment could not be completed.")
		notifications.SendAsync(s.mailer, s.log, updated.ContactName, updated.ContactEmail, subject, html)
	}
	return nil
}

// History returns the ledger entries recorded against a booking, oldest first.
func (s *PaymentService) History(ctx context.Context, bookingID uuid.UUID, caller models.AuthContext) ([]models.PaymentRecord, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(booking.UserID) {
		return nil, apperrors.Forbidden("You do not have access to this booking")
	}
	records, err := s.ledger.ListByBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.PaymentRecord{}
	}
	return records, nil
}

func (s *PaymentService) findWebhookBooking(ctx context.Context, entity payments.PaymentEntity) (*models.Booking, error) {
	if entity.OrderID != "" {
		booking, err := s.bookings.FindByOrderID(ctx, entity.OrderID)
		if err == nil {
			return booking, nil
		}
		if !apperrors.Is(err, apperrors.CodeNotFound) {
			return nil, err
		}
	}
	id, err := uuid.Parse(entity.Notes["booking_id"])
	if err != nil {
		return nil, apperrors.NotFound("Booking")
	}
	return s.bookings.FindByID(ctx, id)
}

func (s *PaymentService) afterCapture(ctx context.Context, b *models.Booking, credited float64, wasConfirmed bool) {
	entry := s.log.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"credited":   credited,
		"paid":       b.PaidAmount,
		"total":      b.TotalAmount,
	})
	if b.PaidAmount > b.TotalAmount {
		entry.Warn("Booking paid amount exceeds total")
	} else {
		entry.Info("Payment applied to booking")
	}

	publishBookingEvent(ctx, s.publisher, s.log, events.BookingPaid, b)
	subject, html := notifications.BookingConfirmedEmail(b.ContactName, b.ReferenceCode, credited, b.Currency)
	notifications.SendAsync(s.mailer, s.log, b.ContactName, b.ContactEmail, subject, html)

	if !wasConfirmed && s.vouchers != nil {
		s.vouchers.IssueAsync(b.ID)
	}
}

// creditBooking adds a captured payment. Only a PENDING booking is promoted; a COMPLETED trip
// stays completed.
func creditBooking(b *models.Booking, amount float64, orderID, paymentID string, signature *string) {
	b.PaidAmount = math.Round((b.PaidAmount+amount)*100) / 100
	if b.Status == models.BookingPending {
		b.Status = models.BookingConfirmed
	}
	if orderID != "" {
		b.GatewayOrderID = &orderID
	}
	b.GatewayPaymentID = &paymentID
	if signature != nil {
		b.GatewaySignature = signature
	}
}
