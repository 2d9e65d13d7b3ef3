package handlers

import (
	"context"

	"github.com/anjiri1684/travel_agency/database"
	"github.com/anjiri1684/travel_agency/models"
	"github.com/anjiri1684/travel_agency/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type PackageService interface {
	List(ctx context.Context, filter database.PackageFilter) ([]models.Package, int64, error)
	Find(ctx context.Context, idOrSlug string, includeInactive bool) (*models.Package, error)
	Create(ctx context.Context, in services.PackageInput) (*models.Package, error)
	Update(ctx context.Context, id uuid.UUID, in services.PackageInput) (*models.Package, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type PackageHandler struct {
	base
	svc PackageService
}

func NewPackageHandler(svc PackageService, log logrus.FieldLogger) *PackageHandler {
	return &PackageHandler{base: base{log: log}, svc: svc}
}

type packageRequest struct {
	Title        string                `json:"title" validate:"required,min=3"`
	Description  string                `json:"description"`
	Location     string                `json:"location"`
	Duration     string                `json:"duration"`
	DurationDays int                   `json:"durationDays" validate:"gte=0"`
	Price        float64               `json:"price" validate:"gt=0"`
	Category     string                `json:"category"`
	CoverImage   *string               `json:"coverImage"`
	Images       []string              `json:"images"`
	Highlights   []string              `json:"highlights"`
	Itinerary    []models.ItineraryDay `json:"itinerary"`
	PickupPoints []string              `json:"pickupPoints"`
	IsActive     *bool                 `json:"isActive"`
	IsFeatured   bool                  `json:"isFeatured"`
}

func (r packageRequest) input() services.PackageInput {
	return services.PackageInput{
		Title:        r.Title,
		Description:  r.Description,
		Location:     r.Location,
		Duration:     r.Duration,
		DurationDays: r.DurationDays,
		Price:        r.Price,
		Category:     r.Category,
		CoverImage:   r.CoverImage,
		Images:       r.Images,
		Highlights:   r.Highlights,
		Itinerary:    r.Itinerary,
		PickupPoints: r.PickupPoints,
		IsActive:     r.IsActive,
		IsFeatured:   r.IsFeatured,
	}
}

func (h *PackageHandler) filter(c *fiber.Ctx) database.PackageFilter {
	return database.PackageFilter{
		Page:         pageFromQuery(c),
		Search:       c.Query("search"),
		Location:     c.Query("location"),
		Category:     c.Query("category"),
		FeaturedOnly: c.QueryBool("featured", false),
	}
}

// List returns active packages for the public catalogue.
func (h *PackageHandler) List(c *fiber.Ctx) error {
	filter := h.filter(c)
	packages, total, err := h.svc.List(c.UserContext(), filter)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(paginated(packages, total, filter.Page))
}

// AdminList includes inactive packages.
func (h *PackageHandler) AdminList(c *fiber.Ctx) error {
	filter := h.filter(c)
	filter.IncludeInactive = true
	packages, total, err := h.svc.List(c.UserContext(), filter)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(paginated(packages, total, filter.Page))
}

func (h *PackageHandler) Get(c *fiber.Ctx) error {
	pkg, err := h.svc.Find(c.UserContext(), c.Params("idOrSlug"), false)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(pkg)
}

func (h *PackageHandler) Create(c *fiber.Ctx) error {
	var req packageRequest
	if err := parseBody(c, &req); err != nil {
		return h.fail(c, err)
	}
	pkg, err := h.svc.Create(c.UserContext(), req.input())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(pkg)
}

func (h *PackageHandler) Update(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id", "package")
	if err != nil {
		return h.fail(c, err)
	}
	var req packageRequest
	if err := parseBody(c, &req); err != nil {
		return h.fail(c, err)
	}
	pkg, err := h.svc.Update(c.UserContext(), id, req.input())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(pkg)
}

func (h *PackageHandler) Delete(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id", "package")
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.svc.Deactivate(c.UserContext(), id); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Package deactivated"})
}
