package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/anjiri1684/travel_agency/apperrors"
	"github.com/anjiri1684/travel_agency/database"
	"github.com/anjiri1684/travel_agency/models"
	"github.com/anjiri1684/travel_agency/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type BookingService interface {
	Create(ctx context.Context, caller models.AuthContext, in services.CreateBookingInput) (*models.Booking, error)
	Get(ctx context.Context, id uuid.UUID, caller models.AuthContext) (*models.Booking, error)
	Patch(ctx context.Context, id uuid.UUID, caller models.AuthContext, in services.PatchBookingInput) (*models.Booking, error)
	ListForUser(ctx context.Context, caller models.AuthContext) ([]models.Booking, error)
	List(ctx context.Context, filter database.BookingFilter) ([]models.Booking, int64, error)
	ExportCSV(ctx context.Context, from, to time.Time, w io.Writer) error
}

type VoucherService interface {
	Render(ctx context.Context, id uuid.UUID, caller models.AuthContext) ([]byte, *models.Booking, error)
}

type BookingHandler struct {
	base
	svc      BookingService
	vouchers VoucherService
	now      func() time.Time
}

func NewBookingHandler(svc BookingService, vouchers VoucherService, log logrus.FieldLogger) *BookingHandler {
	return &BookingHandler{base: base{log: log}, svc: svc, vouchers: vouchers, now: time.Now}
}

type createBookingRequest struct {
	PackageID       string  `json:"packageId"`
	ServiceType     string  `json:"serviceType" validate:"required"`
	TotalAmount     float64 `json:"totalAmount" validate:"gt=0"`
	TravelDate      string  `json:"travelDate"`
	NumberOfPeople  int     `json:"numberOfPeople" validate:"gte=1"`
	ContactName     string  `json:"contactName" validate:"required"`
	ContactEmail    string  `json:"contactEmail" validate:"required,email"`
	ContactPhone    string  `json:"contactPhone"`
	PickupLocation  *string `json:"pickupLocation"`
	DropLocation    *string `json:"dropLocation"`
	SpecialRequests *string `json:"specialRequests"`
}

type patchBookingRequest struct {
	Status          *string `json:"status"`
	TravelDate      *string `json:"travelDate"`
	NumberOfPeople  *int    `json:"numberOfPeople" validate:"omitempty,gte=1"`
	ContactName     *string `json:"contactName" validate:"omitempty,min=1"`
	ContactEmail    *string `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone    *string `json:"contactPhone"`
	PickupLocation  *string `json:"pickupLocation"`
	DropLocation    *string `json:"dropLocation"`
	SpecialRequests *string `json:"specialRequests"`
}

func (h *BookingHandler) Create(c *fiber.Ctx) error {
	auth, err := caller(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req createBookingRequest
	if err := parseBody(c, &req); err != nil {
		return h.fail(c, err)
	}
	packageID, err := optionalUUID(req.PackageID, "package")
	if err != nil {
		return h.fail(c, err)
	}
	travelDate, err := parseDate(req.TravelDate)
	if err != nil {
		return h.fail(c, err)
	}

	booking, err := h.svc.Create(c.UserContext(), auth, services.CreateBookingInput{
		PackageID:       packageID,
		ServiceType:     models.ServiceType(req.ServiceType),
		TotalAmount:     req.TotalAmount,
		TravelDate:      travelDate,
		NumberOfPeople:  req.NumberOfPeople,
		ContactName:     req.ContactName,
		ContactEmail:    req.ContactEmail,
		ContactPhone:    req.ContactPhone,
		PickupLocation:  req.PickupLocation,
		DropLocation:    req.DropLocation,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(booking)
}

func (h *BookingHandler) ListMine(c *fiber.Ctx) error {
	auth, err := caller(c)
	if err != nil {
		return h.fail(c, err)
	}
	bookings, err := h.svc.ListForUser(c.UserContext(), auth)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"data": bookings})
}

func (h *BookingHandler) Get(c *fiber.Ctx) error {
	auth, err := caller(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := uuidParam(c, "id", "booking")
	if err != nil {
		return h.fail(c, err)
	}
	booking, err := h.svc.Get(c.UserContext(), id, auth)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(booking)
}

func (h *BookingHandler) Patch(c *fiber.Ctx) error {
	auth, err := caller(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := uuidParam(c, "id", "booking")
	if err != nil {
		return h.fail(c, err)
	}
	var req patchBookingRequest
	if err := parseBody(c, &req); err != nil {
		return h.fail(c, err)
	}

	in := services.PatchBookingInput{
		NumberOfPeople:  req.NumberOfPeople,
		ContactName:     req.ContactName,
		ContactEmail:    req.ContactEmail,
		ContactPhone:    req.ContactPhone,
		PickupLocation:  req.PickupLocation,
		DropLocation:    req.DropLocation,
		SpecialRequests: req.SpecialRequests,
	}
	if req.Status != nil {
		status := models.BookingStatus(*req.Status)
		in.Status = &status
	}
	if req.TravelDate != nil {
		travelDate, err := parseDate(*req.TravelDate)
		if err != nil {
			return h.fail(c, err)
		}
		in.TravelDate = travelDate
	}

	booking, err := h.svc.Patch(c.UserContext(), id, auth, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(booking)
}

// Voucher streams the booking voucher as a PDF.
func (h *BookingHandler) Voucher(c *fiber.Ctx) error {
	auth, err := caller(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := uuidParam(c, "id", "booking")
	if err != nil {
		return h.fail(c, err)
	}
	pdf, booking, err := h.vouchers.Render(c.UserContext(), id, auth)
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="voucher-%s.pdf"`, booking.ReferenceCode))
	return c.Send(pdf)
}

// AdminList is the paginated, filterable booking table of the back-office.
func (h *BookingHandler) AdminList(c *fiber.Ctx) error {
	filter := database.BookingFilter{
		Page:        pageFromQuery(c),
		Status:      models.BookingStatus(c.Query("status")),
		ServiceType: models.ServiceType(c.Query("serviceType")),
		Search:      c.Query("search"),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return h.fail(c, apperrors.Validation("Invalid booking status"))
	}
	if filter.ServiceType != "" && !filter.ServiceType.Valid() {
		return h.fail(c, apperrors.Validation("Invalid service type"))
	}

	bookings, total, err := h.svc.List(c.UserContext(), filter)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(paginated(bookings, total, filter.Page))
}

// Export writes bookings created in [from, to] as CSV. Defaults to the last 30 days.
func (h *BookingHandler) Export(c *fiber.Ctx) error {
	now := h.now().UTC()
	from, to := now.AddDate(0, 0, -30), now

	start, err := parseDate(c.Query("from"))
	if err != nil {
		return h.fail(c, err)
	}
	end, err := parseDate(c.Query("to"))
	if err != nil {
		return h.fail(c, err)
	}
	if start != nil {
		from = *start
	}
	if end != nil {
		// A bare date includes the whole day.
		to = *end
		if len(c.Query("to")) == len("2006-01-02") {
			to = to.AddDate(0, 0, 1)
		}
	}
	if !from.Before(to) {
		return h.fail(c, apperrors.Validation("'from' must be before 'to'"))
	}

	var buf bytes.Buffer
	if err := h.svc.ExportCSV(c.UserContext(), from, to, &buf); err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="bookings-%s-%s.csv"`,
		from.Format("20060102"), to.Format("20060102")))
	return c.Send(buf.Bytes())
}
