package handlers

import (
	"context"

	"github.com/anjiri1684/travel_agency/models"
	"github.com/anjiri1684/travel_agency/payments"
	"github.com/anjiri1684/travel_agency/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type PaymentService interface {
	CreateOrder(ctx context.Context, caller models.AuthContext, in services.CreateOrderInput) (*services.OrderResult, error)
	Verify(ctx context.Context, caller models.AuthContext, in services.VerifyInput) (*services.VerifyResult, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) error
	History(ctx context.Context, bookingID uuid.UUID, caller models.AuthContext) ([]models.PaymentRecord, error)
}

type PaymentHandler struct {
	base
	svc PaymentService
}

func NewPaymentHandler(svc PaymentService, log logrus.FieldLogger) *PaymentHandler {
	return &PaymentHandler{base: base{log: log}, svc: svc}
}

type createOrderRequest struct {
	BookingID string   `json:"bookingId" validate:"required,uuid"`
	Amount    *float64 `json:"amount" validate:"omitempty,gt=0"`
	Currency  string   `json:"currency" validate:"omitempty,len=3"`
}

type verifyRequest struct {
	OrderID       string   `json:"razorpay_order_id" validate:"required"`
	PaymentID     string   `json:"razorpay_payment_id" validate:"required"`
	Signature     string   `json:"razorpay_signature" validate:"required"`
	BookingID     string   `json:"bookingId" validate:"required,uuid"`
	PaymentAmount *float64 `json:"paymentAmount"`
}

func (h *PaymentHandler) CreateOrder(c *fiber.Ctx) error {
	auth, err := caller(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req createOrderRequest
	if err := parseBody(c, &req); err != nil {
		return h.fail(c, err)
	}

	order, err := h.svc.CreateOrder(c.UserContext(), auth, services.CreateOrderInput{
		BookingID: uuid.MustParse(req.BookingID),
		Amount:    req.Amount,
		Currency:  req.Currency,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(order)
}

func (h *PaymentHandler) Verify(c *fiber.Ctx) error {
	auth, err := caller(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req verifyRequest
	if err := parseBody(c, &req); err != nil {
		return h.fail(c, err)
	}

	result, err := h.svc.Verify(c.UserContext(), auth, services.VerifyInput{
		OrderID:       req.OrderID,
		PaymentID:     req.PaymentID,
		Signature:     req.Signature,
		BookingID:     uuid.MustParse(req.BookingID),
		PaymentAmount: req.PaymentAmount,
	})
	if err != nil {
		return h.fail(c, err)
	}

	message := "Payment verified successfully"
	if !result.Applied {
		message = "Payment already recorded"
	}
	return c.JSON(fiber.Map{"message": message, "applied": result.Applied, "booking": result.Booking})
}

// History lists the ledger entries of a booking for the back-office booking detail.
func (h *PaymentHandler) History(c *fiber.Ctx) error {
	auth, err := caller(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := uuidParam(c, "id", "booking")
	if err != nil {
		return h.fail(c, err)
	}
	records, err := h.svc.History(c.UserContext(), id, auth)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"data": records})
}

// Webhook is called by the gateway. The raw body is verified before it is parsed.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	body := append([]byte(nil), c.Body()...)
	if err := h.svc.HandleWebhook(c.UserContext(), body, c.Get(payments.SignatureHeader)); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
