package database

import (
	"context"
	"errors"

	"github.com/anjiri1684/travel_agency/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errPaymentReplayed = errors.New("payment already applied")

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// ApplyPayment locks the booking, records the gateway payment and lets mutate change the
// booking, all in one transaction. A payment id that is already in the ledger leaves the
// booking untouched and reports applied=false.
func (r *PaymentRepository) ApplyPayment(
	ctx context.Context,
	bookingID uuid.UUID,
	record *models.PaymentRecord,
	mutate func(booking *models.Booking) error,
) (*models.Booking, bool, error) {
	var booking models.Booking

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, "id = ?", bookingID).Error; err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.PaymentRecord{}).
			Where("gateway_payment_id = ?", record.GatewayPaymentID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return errPaymentReplayed
		}

		if err := mutate(&booking); err != nil {
			return err
		}

		record.BookingID = booking.ID
		if err := tx.Create(record).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errPaymentReplayed
			}
			return err
		}
		return tx.Omit("Package", "User").Save(&booking).Error
	})

	switch {
	case err == nil:
		return &booking, true, nil
	case errors.Is(err, errPaymentReplayed):
		var current models.Booking
		if err := r.db.WithContext(ctx).First(&current, "id = ?", bookingID).Error; err != nil {
			return nil, false, translate(err, "Booking")
		}
		return &current, false, nil
	default:
		return nil, false, translate(err, "Booking")
	}
}

func (r *PaymentRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]models.PaymentRecord, error) {
	var records []models.PaymentRecord
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at asc").
		Find(&records).Error
	return records, translate(err, "Payment")
}
