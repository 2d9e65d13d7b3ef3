package handlers

import (
	"context"
	"strings"

	"github.com/anjiri1684/travel_agency/database"
	"github.com/anjiri1684/travel_agency/models"
	"github.com/anjiri1684/travel_agency/services"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	Me(ctx context.Context, caller models.AuthContext) (*models.User, error)
	ListUsers(ctx context.Context, page database.Page, search string) ([]models.User, int64, error)
}

type AuthHandler struct {
	base
	svc AuthService
}

func NewAuthHandler(svc AuthService, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{base: base{log: log}, svc: svc}
}

type registerRequest struct {
	FullName string  `json:"fullName" validate:"required,min=2"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Phone    *string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return h.fail(c, err)
	}

	user, err := h.svc.Register(c.UserContext(), services.RegisterInput{
		FullName: strings.TrimSpace(req.FullName),
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "User registered successfully", "user": user})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return h.fail(c, err)
	}

	token, user, err := h.svc.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"token": token, "user": user})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	auth, err := caller(c)
	if err != nil {
		return h.fail(c, err)
	}
	user, err := h.svc.Me(c.UserContext(), auth)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(user)
}

// ListUsers serves the admin back-office user table.
func (h *AuthHandler) ListUsers(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	users, total, err := h.svc.ListUsers(c.UserContext(), page, c.Query("search"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(paginated(users, total, page))
}
