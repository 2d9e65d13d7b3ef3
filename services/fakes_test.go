package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anjiri1684/travel_agency/apperrors"
	"github.com/anjiri1684/travel_agency/database"
	"github.com/anjiri1684/travel_agency/models"
	"github.com/anjiri1684/travel_agency/payments"
	"github.com/google/uuid"
)

// memoryBookings implements the booking, ledger and voucher stores over a map.
type memoryBookings struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]models.Booking
	ledger   map[string]models.PaymentRecord
	seq      int
}

func newMemoryBookings() *memoryBookings {
	return &memoryBookings{
		bookings: make(map[uuid.UUID]models.Booking),
		ledger:   make(map[string]models.PaymentRecord),
	}
}

func (m *memoryBookings) Create(_ context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.ReferenceCode = "TRV-TEST" + string(rune('A'+m.seq%26))
	b.CreatedAt = time.Now()
	m.bookings[b.ID] = *b
	return nil
}

func (m *memoryBookings) put(b models.Booking) *models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	m.bookings[b.ID] = b
	return &b
}

func (m *memoryBookings) get(id uuid.UUID) models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bookings[id]
}

func (m *memoryBookings) FindByID(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, apperrors.NotFound("Booking")
	}
	return &b, nil
}

func (m *memoryBookings) FindByOrderID(_ context.Context, orderID string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.GatewayOrderID != nil && *b.GatewayOrderID == orderID {
			b := b
			return &b, nil
		}
	}
	return nil, apperrors.NotFound("Booking")
}

func (m *memoryBookings) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryBookings) List(_ context.Context, filter database.BookingFilter) ([]models.Booking, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, b)
	}
	return out, int64(len(out)), nil
}

func (m *memoryBookings) ListCreatedBetween(_ context.Context, from, to time.Time) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if !b.CreatedAt.Before(from) && b.CreatedAt.Before(to) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryBookings) Modify(_ context.Context, id uuid.UUID, mutate func(*models.Booking) error) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, apperrors.NotFound("Booking")
	}
	if err := mutate(&b); err != nil {
		return nil, err
	}
	m.bookings[id] = b
	return &b, nil
}

func (m *memoryBookings) SetGatewayOrder(_ context.Context, id uuid.UUID, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return apperrors.NotFound("Booking")
	}
	b.GatewayOrderID = &orderID
	m.bookings[id] = b
	return nil
}

func (m *memoryBookings) SetVoucherURL(_ context.Context, id uuid.UUID, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.bookings[id]
	b.VoucherURL = &url
	m.bookings[id] = b
	return nil
}

func (m *memoryBookings) ApplyPayment(_ context.Context, bookingID uuid.UUID, record *models.PaymentRecord, mutate func(*models.Booking) error) (*models.Booking, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok {
		return nil, false, apperrors.NotFound("Booking")
	}
	if _, seen := m.ledger[record.GatewayPaymentID]; seen {
		return &b, false, nil
	}
	if err := mutate(&b); err != nil {
		return nil, false, err
	}
	record.BookingID = b.ID
	m.ledger[record.GatewayPaymentID] = *record
	m.bookings[b.ID] = b
	return &b, true, nil
}

func (m *memoryBookings) ListByBooking(_ context.Context, bookingID uuid.UUID) ([]models.PaymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PaymentRecord
	for _, r := range m.ledger {
		if r.BookingID == bookingID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GatewayPaymentID < out[j].GatewayPaymentID })
	return out, nil
}

func (m *memoryBookings) ledgerSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ledger)
}

type memoryPackages struct {
	mu       sync.Mutex
	packages map[uuid.UUID]models.Package
}

func newMemoryPackages(pkgs ...models.Package) *memoryPackages {
	m := &memoryPackages{packages: make(map[uuid.UUID]models.Package)}
	for _, p := range pkgs {
		m.packages[p.ID] = p
	}
	return m
}

func (m *memoryPackages) Create(_ context.Context, p *models.Package) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.packages[p.ID] = *p
	return nil
}

func (m *memoryPackages) Update(_ context.Context, p *models.Package) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.packages[p.ID] = *p
	return nil
}

func (m *memoryPackages) FindByID(_ context.Context, id uuid.UUID) (*models.Package, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.packages[id]
	if !ok {
		return nil, apperrors.NotFound("Package")
	}
	return &p, nil
}

func (m *memoryPackages) FindBySlug(_ context.Context, slug string) (*models.Package, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.packages {
		if p.Slug == slug {
			p := p
			return &p, nil
		}
	}
	return nil, apperrors.NotFound("Package")
}

func (m *memoryPackages) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.Package, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Package
	for _, id := range ids {
		if p, ok := m.packages[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryPackages) SlugExists(_ context.Context, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.packages {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryPackages) List(_ context.Context, filter database.PackageFilter) ([]models.Package, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Package
	for _, p := range m.packages {
		if p.IsActive || filter.IncludeInactive {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memoryPackages) Deactivate(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.packages[id]
	if !ok {
		return apperrors.NotFound("Package")
	}
	p.IsActive = false
	m.packages[id] = p
	return nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
}

func (r *recordingMailer) Send(_ context.Context, _, toEmail, subject, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, toEmail+": "+subject)
	return nil
}

func (r *recordingMailer) count(substr string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sent {
		if strings.Contains(s, substr) {
			n++
		}
	}
	return n
}

// staticSettings is a SettingsProvider that never expires.
type staticSettings struct {
	mu          sync.Mutex
	s           SiteSettings
	invalidated int
}

func newStaticSettings(mutate func(*SiteSettings)) *staticSettings {
	s := DefaultSiteSettings()
	if mutate != nil {
		mutate(&s)
	}
	return &staticSettings{s: s}
}

func (p *staticSettings) Get(context.Context) SiteSettings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.s
}

func (p *staticSettings) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.invalidated++
}

type fakeGateway struct {
	mu       sync.Mutex
	requests []payments.OrderRequest
	err      error
	nextID   int
}

func (g *fakeGateway) CreateOrder(_ context.Context, _ payments.Credentials, req payments.OrderRequest) (*payments.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.nextID++
	g.requests = append(g.requests, req)
	return &payments.Order{
		ID:       "order_" + string(rune('A'+g.nextID)),
		Amount:   payments.ToMinorUnits(req.Amount),
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}

type recordingVouchers struct {
	mu     sync.Mutex
	issued []uuid.UUID
}

func (v *recordingVouchers) IssueAsync(id uuid.UUID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.issued = append(v.issued, id)
}

func (v *recordingVouchers) count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.issued)
}
