package database

import (
	"context"
	"errors"
	"time"

	"github.com/anjiri1684/travel_agency/models"
	"github.com/anjiri1684/travel_agency/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const referencePrefix = "TRV"

type BookingFilter struct {
	Page
	Status      models.BookingStatus
	ServiceType models.ServiceType
	Search      string
}

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create assigns a reference code and retries when it collides with an existing one.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		booking.ReferenceCode = utils.GenerateReferenceCode(referencePrefix)
		err = r.db.WithContext(ctx).Create(booking).Error
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		booking.ID = uuid.Nil
	}
	return translate(err, "Booking")
}

func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).Preload("Package").First(&booking, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "Booking")
	}
	return &booking, nil
}

func (r *BookingRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).Where("gateway_order_id = ?", orderID).First(&booking).Error
	if err != nil {
		return nil, translate(err, "Booking")
	}
	return &booking, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Preload("Package").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&bookings).Error
	return bookings, translate(err, "Booking")
}

func (r *BookingRepository) List(ctx context.Context, filter BookingFilter) ([]models.Booking, int64, error) {
	page := filter.Page.Normalized()

	query := r.db.WithContext(ctx).Model(&models.Booking{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ServiceType != "" {
		query = query.Where("service_type = ?", filter.ServiceType)
	}
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		query = query.Where("reference_code LIKE ? OR contact_name LIKE ? OR contact_email LIKE ?", term, term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "Booking")
	}

	var bookings []models.Booking
	err := query.Preload("Package").
		Order("created_at desc").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&bookings).Error
	return bookings, total, translate(err, "Booking")
}

func (r *BookingRepository) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Preload("Package").
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at desc").
		Find(&bookings).Error
	return bookings, translate(err, "Booking")
}

// Modify locks the booking row, lets mutate change it and saves it in one transaction.
// Payments are applied under the same lock, so a concurrent credit is never overwritten.
func (r *BookingRepository) Modify(ctx context.Context, id uuid.UUID, mutate func(booking *models.Booking) error) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, "id = ?", id).Error; err != nil {
			return err
		}
		if err := mutate(&booking); err != nil {
			return err
		}
		return tx.Omit("Package", "User").Save(&booking).Error
	})
	if err != nil {
		return nil, translate(err, "Booking")
	}
	return &booking, nil
}

func (r *BookingRepository) SetGatewayOrder(ctx context.Context, id uuid.UUID, orderID string) error {
	return translate(r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ?", id).
		Update("gateway_order_id", orderID).Error, "Booking")
}

func (r *BookingRepository) SetVoucherURL(ctx context.Context, id uuid.UUID, url string) error {
	return translate(r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ?", id).
		Update("voucher_url", url).Error, "Booking")
}

// ExpireStalePending cancels unpaid PENDING bookings created before the cutoff and returns them.
// Rows locked by an in-flight payment are skipped and left for the next run.
func (r *BookingRepository) ExpireStalePending(ctx context.Context, before time.Time) ([]models.Booking, error) {
	var stale []models.Booking
	now := time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? AND paid_amount = 0 AND created_at < ?", models.BookingPending, before).
			Find(&stale).Error
		if err != nil || len(stale) == 0 {
			return err
		}

		ids := make([]uuid.UUID, len(stale))
		for i := range stale {
			ids[i] = stale[i].ID
		}
		return tx.Model(&models.Booking{}).
			Where("id IN ?", ids).
			Updates(map[string]any{"status": models.BookingCancelled, "cancelled_at": now}).Error
	})
	if err != nil {
		return nil, translate(err, "Booking")
	}

	for i := range stale {
		stale[i].Status = models.BookingCancelled
		stale[i].CancelledAt = &now
	}
	return stale, nil
}

func (r *BookingRepository) FindUpcomingUnreminded(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Preload("Package").
		Where("status = ? AND reminder_sent_at IS NULL AND travel_date >= ? AND travel_date < ?",
			models.BookingConfirmed, from, to).
		Find(&bookings).Error
	return bookings, translate(err, "Booking")
}

func (r *BookingRepository) MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) error {
	return translate(r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ?", id).
		Update("reminder_sent_at", at).Error, "Booking")
}
