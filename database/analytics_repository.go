package database

import (
	"context"
	"time"

	"github.com/anjiri1684/travel_agency/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GroupCount struct {
	Key   string `gorm:"column:group_key"`
	Count int64  `gorm:"column:group_count"`
}

type PackageAggregate struct {
	PackageID uuid.UUID
	Bookings  int64
	Revenue   float64
}

type CustomerAggregate struct {
	UserID   uuid.UUID
	Bookings int64
	Spent    float64
}

// AnalyticsRepository runs the read-only aggregate queries behind the admin dashboard.
// Every window is half open: [from, to).
type AnalyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

func (r *AnalyticsRepository) bookingsIn(ctx context.Context, from, to time.Time) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("created_at >= ? AND created_at < ?", from, to)
}

func (r *AnalyticsRepository) CountBookings(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.bookingsIn(ctx, from, to).Count(&count).Error
	return count, translate(err, "Booking")
}

// SumRevenue totals the money actually collected on bookings that were not cancelled.
func (r *AnalyticsRepository) SumRevenue(ctx context.Context, from, to time.Time) (float64, error) {
	var revenue float64
	err := r.bookingsIn(ctx, from, to).
		Where("status <> ?", models.BookingCancelled).
		Select("COALESCE(SUM(paid_amount), 0)").
		Row().Scan(&revenue)
	return revenue, translate(err, "Booking")
}

func (r *AnalyticsRepository) CountUsers(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ? AND created_at >= ? AND created_at < ?", models.RoleUser, from, to).
		Count(&count).Error
	return count, translate(err, "User")
}

func (r *AnalyticsRepository) CountByStatus(ctx context.Context, from, to time.Time) ([]GroupCount, error) {
	return r.groupCount(ctx, "status", from, to)
}

func (r *AnalyticsRepository) CountByServiceType(ctx context.Context, from, to time.Time) ([]GroupCount, error) {
	return r.groupCount(ctx, "service_type", from, to)
}

func (r *AnalyticsRepository) groupCount(ctx context.Context, column string, from, to time.Time) ([]GroupCount, error) {
	var rows []GroupCount
	err := r.bookingsIn(ctx, from, to).
		Select(column + " AS group_key, COUNT(*) AS group_count").
		Group(column).
		Scan(&rows).Error
	return rows, translate(err, "Booking")
}

func (r *AnalyticsRepository) TopPackages(ctx context.Context, from, to time.Time, limit int) ([]PackageAggregate, error) {
	var rows []PackageAggregate
	err := r.bookingsIn(ctx, from, to).
		Select("package_id, COUNT(*) AS bookings, COALESCE(SUM(paid_amount), 0) AS revenue").
		Where("package_id IS NOT NULL AND status <> ?", models.BookingCancelled).
		Group("package_id").
		Order("bookings desc, revenue desc").
		Limit(limit).
		Scan(&rows).Error
	return rows, translate(err, "Booking")
}

func (r *AnalyticsRepository) TopCustomers(ctx context.Context, from, to time.Time, limit int) ([]CustomerAggregate, error) {
	var rows []CustomerAggregate
	err := r.bookingsIn(ctx, from, to).
		Select("user_id, COUNT(*) AS bookings, COALESCE(SUM(paid_amount), 0) AS spent").
		Where("status <> ?", models.BookingCancelled).
		Group("user_id").
		Order("spent desc, bookings desc").
		Limit(limit).
		Scan(&rows).Error
	return rows, translate(err, "Booking")
}

func (r *AnalyticsRepository) RecentBookings(ctx context.Context, limit int) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&bookings).Error
	return bookings, translate(err, "Booking")
}
