package services

import (
	"context"
	"math"
	"time"

	"github.com/anjiri1684/travel_agency/apperrors"
	"github.com/anjiri1684/travel_agency/database"
	"github.com/anjiri1684/travel_agency/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	topListSize      = 5
	recentListSize   = 10
	DefaultTimeRange = "30d"
)

type AnalyticsStore interface {
	CountBookings(ctx context.Context, from, to time.Time) (int64, error)
	SumRevenue(ctx context.Context, from, to time.Time) (float64, error)
	CountUsers(ctx context.Context, from, to time.Time) (int64, error)
	CountByStatus(ctx context.Context, from, to time.Time) ([]database.GroupCount, error)
	CountByServiceType(ctx context.Context, from, to time.Time) ([]database.GroupCount, error)
	TopPackages(ctx context.Context, from, to time.Time, limit int) ([]database.PackageAggregate, error)
	TopCustomers(ctx context.Context, from, to time.Time, limit int) ([]database.CustomerAggregate, error)
	RecentBookings(ctx context.Context, limit int) ([]models.Booking, error)
}

type PackageBatchFinder interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Package, error)
}

type UserBatchFinder interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
}

type Metric struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Trend    float64 `json:"trend"`
}

type TopPackage struct {
	PackageID uuid.UUID `json:"package_id"`
	Title     string    `json:"title"`
	Bookings  int64     `json:"bookings"`
	Revenue   float64   `json:"revenue"`
}

type TopCustomer struct {
	UserID   uuid.UUID `json:"user_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Bookings int64     `json:"bookings"`
	Spent    float64   `json:"spent"`
}

type RecentBooking struct {
	ID            uuid.UUID            `json:"id"`
	ReferenceCode string               `json:"reference_code"`
	CustomerName  string               `json:"customer_name"`
	PackageTitle  string               `json:"package_title"`
	ServiceType   models.ServiceType   `json:"service_type"`
	Status        models.BookingStatus `json:"status"`
	TotalAmount   float64              `json:"total_amount"`
	PaidAmount    float64              `json:"paid_amount"`
	CreatedAt     time.Time            `json:"created_at"`
}

type AnalyticsReport struct {
	Range          string           `json:"range"`
	From           time.Time        `json:"from"`
	To             time.Time        `json:"to"`
	Bookings       Metric           `json:"bookings"`
	Revenue        Metric           `json:"revenue"`
	NewUsers       Metric           `json:"new_users"`
	ByStatus       map[string]int64 `json:"by_status"`
	ByServiceType  map[string]int64 `json:"by_service_type"`
	TopPackages    []TopPackage     `json:"top_packages"`
	TopCustomers   []TopCustomer    `json:"top_customers"`
	RecentBookings []RecentBooking  `json:"recent_bookings"`
}

type AnalyticsService struct {
	store    AnalyticsStore
	packages PackageBatchFinder
	users    UserBatchFinder
	now      func() time.Time
}

func NewAnalyticsService(store AnalyticsStore, packages PackageBatchFinder, users UserBatchFinder) *AnalyticsService {
	return &AnalyticsService{store: store, packages: packages, users: users, now: time.Now}
}

// WindowStart returns the start of the reporting window ending at now.
func WindowStart(timeRange string, now time.Time) (time.Time, error) {
	switch timeRange {
	case "7d":
		return now.AddDate(0, 0, -7), nil
	case "30d":
		return now.AddDate(0, 0, -30), nil
	case "3m":
		return now.AddDate(0, -3, 0), nil
	case "6m":
		return now.AddDate(0, -6, 0), nil
	case "1y":
		return now.AddDate(-1, 0, 0), nil
	}
	return time.Time{}, apperrors.Validation("Invalid range, expected one of 7d, 30d, 3m, 6m, 1y")
}

// Trend is the percentage change from prev to cur, rounded to two decimals. It is 0 when
// there is no previous value to compare against.
func Trend(cur, prev float64) float64 {
	if prev == 0 {
		return 0
	}
	return math.Round((cur-prev)/prev*100*100) / 100
}

func metric(cur, prev float64) Metric {
	return Metric{Current: cur, Previous: prev, Trend: Trend(cur, prev)}
}

func (s *AnalyticsService) Report(ctx context.Context, timeRange string) (*AnalyticsReport, error) {
	if timeRange == "" {
		timeRange = DefaultTimeRange
	}
	now := s.now()
	start, err := WindowStart(timeRange, now)
	if err != nil {
		return nil, err
	}
	prevStart := start.Add(-now.Sub(start))

	var (
		curBookings, prevBookings int64
		curRevenue, prevRevenue   float64
		curUsers, prevUsers       int64
		byStatus, byService       []database.GroupCount
		topPackages               []database.PackageAggregate
		topCustomers              []database.CustomerAggregate
		recent                    []models.Booking
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { curBookings, err = s.store.CountBookings(gctx, start, now); return })
	g.Go(func() (err error) { prevBookings, err = s.store.CountBookings(gctx, prevStart, start); return })
	g.Go(func() (err error) { curRevenue, err = s.store.SumRevenue(gctx, start, now); return })
	g.Go(func() (err error) { prevRevenue, err = s.store.SumRevenue(gctx, prevStart, start); return })
	g.Go(func() (err error) { curUsers, err = s.store.CountUsers(gctx, start, now); return })
	g.Go(func() (err error) { prevUsers, err = s.store.CountUsers(gctx, prevStart, start); return })
	g.Go(func() (err error) { byStatus, err = s.store.CountByStatus(gctx, start, now); return })
	g.Go(func() (err error) { byService, err = s.store.CountByServiceType(gctx, start, now); return })
	g.Go(func() (err error) { topPackages, err = s.store.TopPackages(gctx, start, now, topListSize); return })
	g.Go(func() (err error) { topCustomers, err = s.store.TopCustomers(gctx, start, now, topListSize); return })
	g.Go(func() (err error) { recent, err = s.store.RecentBookings(gctx, recentListSize); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	packageTitles, customers, err := s.lookups(ctx, topPackages, topCustomers, recent)
	if err != nil {
		return nil, err
	}

	report := &AnalyticsReport{
		Range:          timeRange,
		From:           start,
		To:             now,
		Bookings:       metric(float64(curBookings), float64(prevBookings)),
		Revenue:        metric(curRevenue, prevRevenue),
		NewUsers:       metric(float64(curUsers), float64(prevUsers)),
		ByStatus:       groupMap(byStatus),
		ByServiceType:  groupMap(byService),
		TopPackages:    make([]TopPackage, 0, len(topPackages)),
		TopCustomers:   make([]TopCustomer, 0, len(topCustomers)),
		RecentBookings: make([]RecentBooking, 0, len(recent)),
	}
	for _, p := range topPackages {
		report.TopPackages = append(report.TopPackages, TopPackage{
			PackageID: p.PackageID,
			Title:     packageTitles[p.PackageID],
			Bookings:  p.Bookings,
			Revenue:   p.Revenue,
		})
	}
	for _, c := range topCustomers {
		u := customers[c.UserID]
		report.TopCustomers = append(report.TopCustomers, TopCustomer{
			UserID:   c.UserID,
			Name:     u.FullName,
			Email:    u.Email,
			Bookings: c.Bookings,
			Spent:    c.Spent,
		})
	}
	for _, b := range recent {
		row := RecentBooking{
			ID:            b.ID,
			ReferenceCode: b.ReferenceCode,
			CustomerName:  customers[b.UserID].FullName,
			ServiceType:   b.ServiceType,
			Status:        b.Status,
			TotalAmount:   b.TotalAmount,
			PaidAmount:    b.PaidAmount,
			CreatedAt:     b.CreatedAt,
		}
		if row.CustomerName == "" {
			row.CustomerName = b.ContactName
		}
		if b.PackageID != nil {
			row.PackageTitle = packageTitles[*b.PackageID]
		}
		report.RecentBookings = append(report.RecentBookings, row)
	}
	return report, nil
}

// lookups resolves package titles and customers with one batched query each.
func (s *AnalyticsService) lookups(
	ctx context.Context,
	topPackages []database.PackageAggregate,
	topCustomers []database.CustomerAggregate,
	recent []models.Booking,
) (map[uuid.UUID]string, map[uuid.UUID]models.User, error) {
	packageIDs := newIDSet()
	userIDs := newIDSet()
	for _, p := range topPackages {
		packageIDs.add(p.PackageID)
	}
	for _, c := range topCustomers {
		userIDs.add(c.UserID)
	}
	for _, b := range recent {
		userIDs.add(b.UserID)
		if b.PackageID != nil {
			packageIDs.add(*b.PackageID)
		}
	}

	titles := make(map[uuid.UUID]string)
	users := make(map[uuid.UUID]models.User)

	g, gctx := errgroup.WithContext(ctx)
	if len(packageIDs.ids) > 0 {
		g.Go(func() error {
			pkgs, err := s.packages.FindByIDs(gctx, packageIDs.ids)
			for _, p := range pkgs {
				titles[p.ID] = p.Title
			}
			return err
		})
	}
	if len(userIDs.ids) > 0 {
		g.Go(func() error {
			found, err := s.users.FindByIDs(gctx, userIDs.ids)
			for _, u := range found {
				users[u.ID] = u
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return titles, users, nil
}

type idSet struct {
	seen map[uuid.UUID]bool
	ids  []uuid.UUID
}

func newIDSet() *idSet {
	return &idSet{seen: make(map[uuid.UUID]bool)}
}

func (s *idSet) add(id uuid.UUID) {
	if id == uuid.Nil || s.seen[id] {
		return
	}
	s.seen[id] = true
	s.ids = append(s.ids, id)
}

func groupMap(rows []database.GroupCount) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Count
	}
	return out
}
