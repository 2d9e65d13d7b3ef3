package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/travel_agency/apperrors"
	"github.com/anjiri1684/travel_agency/database"
	"github.com/anjiri1684/travel_agency/models"
	"github.com/google/uuid"
)

func TestTrend(t *testing.T) {
	tests := []struct {
		cur, prev, want float64
	}{
		{150, 100, 50},
		{0, 0, 0},
		{10, 0, 0},
		{50, 100, -50},
		{1, 3, -66.67},
	}
	for _, tt := range tests {
		if got := Trend(tt.cur, tt.prev); got != tt.want {
			t.Errorf("Trend(%v, %v) = %v, want %v", tt.cur, tt.prev, got, tt.want)
		}
	}
}

func TestWindowStart(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	tests := map[string]time.Time{
		"7d":  time.Date(2025, 6, 23, 12, 0, 0, 0, time.UTC),
		"30d": time.Date(2025, 5, 31, 12, 0, 0, 0, time.UTC),
		"3m":  time.Date(2025, 3, 30, 12, 0, 0, 0, time.UTC),
		"6m":  time.Date(2024, 12, 30, 12, 0, 0, 0, time.UTC),
		"1y":  time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC),
	}
	for r, want := range tests {
		got, err := WindowStart(r, now)
		if err != nil || !got.Equal(want) {
			t.Errorf("WindowStart(%s) = %v, %v; want %v", r, got, err, want)
		}
	}
	if _, err := WindowStart("2w", now); !apperrors.Is(err, apperrors.CodeValidation) {
		t.Errorf("invalid range err = %v", err)
	}
}

type window struct{ from, to time.Time }

type fakeAnalyticsStore struct {
	mu        sync.Mutex
	bookings  map[time.Time]int64
	revenue   map[time.Time]float64
	users     map[time.Time]int64
	top       []database.PackageAggregate
	customers []database.CustomerAggregate
	recent    []models.Booking
	failWith  error
	windows   []window
}

func (f *fakeAnalyticsStore) record(from, to time.Time) {
	f.mu.Lock()
	f.windows = append(f.windows, window{from, to})
	f.mu.Unlock()
}

func (f *fakeAnalyticsStore) CountBookings(_ context.Context, from, to time.Time) (int64, error) {
	f.record(from, to)
	return f.bookings[from], f.failWith
}

func (f *fakeAnalyticsStore) SumRevenue(_ context.Context, from, to time.Time) (float64, error) {
	f.record(from, to)
	return f.revenue[from], nil
}

func (f *fakeAnalyticsStore) CountUsers(_ context.Context, from, to time.Time) (int64, error) {
	f.record(from, to)
	return f.users[from], nil
}

func (f *fakeAnalyticsStore) CountByStatus(context.Context, time.Time, time.Time) ([]database.GroupCount, error) {
	return []database.GroupCount{{Key: "PENDING", Count: 2}, {Key: "CONFIRMED", Count: 4}}, nil
}

func (f *fakeAnalyticsStore) CountByServiceType(context.Context, time.Time, time.Time) ([]database.GroupCount, error) {
	return []database.GroupCount{{Key: "TAXI", Count: 6}}, nil
}

func (f *fakeAnalyticsStore) TopPackages(_ context.Context, _, _ time.Time, limit int) ([]database.PackageAggregate, error) {
	if limit != topListSize {
		return nil, errors.New("unexpected limit")
	}
	return f.top, nil
}

func (f *fakeAnalyticsStore) TopCustomers(context.Context, time.Time, time.Time, int) ([]database.CustomerAggregate, error) {
	return f.customers, nil
}

func (f *fakeAnalyticsStore) RecentBookings(context.Context, int) ([]models.Booking, error) {
	return f.recent, nil
}

type countingUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]models.User
	calls int
}

func (c *countingUsers) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	var out []models.User
	for _, id := range ids {
		if u, ok := c.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func TestAnalyticsReport(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, -7)
	prevStart := start.Add(-now.Sub(start))

	pkg := models.Package{ID: uuid.New(), Title: "Kerala Backwaters"}
	customer := models.User{ID: uuid.New(), FullName: "Meera Nair", Email: "meera@example.com"}

	store := &fakeAnalyticsStore{
		bookings:  map[time.Time]int64{start: 150, prevStart: 100},
		revenue:   map[time.Time]float64{start: 0, prevStart: 0},
		users:     map[time.Time]int64{start: 5, prevStart: 10},
		top:       []database.PackageAggregate{{PackageID: pkg.ID, Bookings: 3, Revenue: 60000}},
		customers: []database.CustomerAggregate{{UserID: customer.ID, Bookings: 2, Spent: 40000}},
		recent: []models.Booking{
			{ID: uuid.New(), ReferenceCode: "TRV-RECENT01", UserID: customer.ID, PackageID: &pkg.ID},
			{ID: uuid.New(), ReferenceCode: "TRV-RECENT02", UserID: uuid.New(), ContactName: "Walk In"},
		},
	}
	users := &countingUsers{users: map[uuid.UUID]models.User{customer.ID: customer}}
	svc := NewAnalyticsService(store, newMemoryPackages(pkg), users)
	svc.now = func() time.Time { return now }

	report, err := svc.Report(context.Background(), "7d")
	if err != nil {
		t.Fatalf("Report error: %v", err)
	}

	if report.Bookings.Trend != 50 {
		t.Errorf("bookings trend = %v, want 50", report.Bookings.Trend)
	}
	if report.Revenue.Trend != 0 {
		t.Errorf("revenue trend = %v, want 0", report.Revenue.Trend)
	}
	if report.NewUsers.Trend != -50 {
		t.Errorf("users trend = %v, want -50", report.NewUsers.Trend)
	}
	if report.ByStatus["CONFIRMED"] != 4 || report.ByServiceType["TAXI"] != 6 {
		t.Errorf("group maps = %v %v", report.ByStatus, report.ByServiceType)
	}
	if len(report.TopPackages) != 1 || report.TopPackages[0].Title != "Kerala Backwaters" {
		t.Errorf("top packages = %+v", report.TopPackages)
	}
	if len(report.TopCustomers) != 1 || report.TopCustomers[0].Name != "Meera Nair" {
		t.Errorf("top customers = %+v", report.TopCustomers)
	}
	if report.RecentBookings[0].PackageTitle != "Kerala Backwaters" || report.RecentBookings[0].CustomerName != "Meera Nair" {
		t.Errorf("recent[0] = %+v", report.RecentBookings[0])
	}
	if report.RecentBookings[1].CustomerName != "Walk In" {
		t.Errorf("recent[1] should fall back to contact name: %+v", report.RecentBookings[1])
	}
	if users.calls != 1 {
		t.Errorf("user lookups = %d, want one batched query", users.calls)
	}

	for _, w := range store.windows {
		if w.from.Equal(prevStart) && !w.to.Equal(start) {
			t.Errorf("previous window ends at %v, want %v", w.to, start)
		}
	}
}

func TestAnalyticsReportPropagatesErrors(t *testing.T) {
	store := &fakeAnalyticsStore{failWith: apperrors.Internal("Database error", errors.New("boom"))}
	svc := NewAnalyticsService(store, newMemoryPackages(), &countingUsers{})

	if _, err := svc.Report(context.Background(), ""); !apperrors.Is(err, apperrors.CodeInternal) {
		t.Fatalf("err = %v, want INTERNAL_ERROR", err)
	}
	if _, err := svc.Report(context.Background(), "forever"); !apperrors.Is(err, apperrors.CodeValidation) {
		t.Fatalf("err = %v, want VALIDATION_ERROR", err)
	}
}
