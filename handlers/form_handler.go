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

type FormService interface {
	Submit(ctx context.Context, in services.SubmitFormInput) (*models.FormResponse, error)
	List(ctx context.Context, filter database.FormFilter) ([]models.FormResponse, int64, error)
	Update(ctx context.Context, id uuid.UUID, in services.UpdateFormInput) (*models.FormResponse, error)
}

type FormHandler struct {
	base
	svc FormService
}

func NewFormHandler(svc FormService, log logrus.FieldLogger) *FormHandler {
	return &FormHandler{base: base{log: log}, svc: svc}
}

type submitFormRequest struct {
	FormType  string  `json:"formType" validate:"omitempty,oneof=CONTACT ENQUIRY CUSTOM_TRIP"`
	Name      string  `json:"name" validate:"required,min=2,max=255"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     *string `json:"phone" validate:"omitempty,max=30"`
	Subject   string  `json:"subject" validate:"max=255"`
	Message   string  `json:"message" validate:"required,min=10"`
	PackageID string  `json:"packageId"`
}

type updateFormRequest struct {
	Status     *string `json:"status"`
	Priority   *string `json:"priority"`
	AdminNotes *string `json:"adminNotes"`
}

func (h *FormHandler) Submit(c *fiber.Ctx) error {
	var req submitFormRequest
	if err := parseBody(c, &req); err != nil {
		return h.fail(c, err)
	}
	packageID, err := optionalUUID(req.PackageID, "package")
	if err != nil {
		return h.fail(c, err)
	}

	form, err := h.svc.Submit(c.UserContext(), services.SubmitFormInput{
		FormType:  models.FormType(req.FormType),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Subject:   req.Subject,
		Message:   req.Message,
		PackageID: packageID,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Thank you! We will get back to you shortly.",
		"id":      form.ID,
	})
}

func (h *FormHandler) List(c *fiber.Ctx) error {
	filter := database.FormFilter{
		Page:     pageFromQuery(c),
		Status:   models.FormStatus(c.Query("status")),
		Priority: models.FormPriority(c.Query("priority")),
		FormType: models.FormType(c.Query("formType")),
	}
	forms, total, err := h.svc.List(c.UserContext(), filter)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(paginated(forms, total, filter.Page))
}

func (h *FormHandler) Update(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id", "form")
	if err != nil {
		return h.fail(c, err)
	}
	var req updateFormRequest
	if err := parseBody(c, &req); err != nil {
		return h.fail(c, err)
	}

	var in services.UpdateFormInput
	if req.Status != nil {
		status := models.FormStatus(*req.Status)
		in.Status = &status
	}
	if req.Priority != nil {
		priority := models.FormPriority(*req.Priority)
		in.Priority = &priority
	}
	in.AdminNotes = req.AdminNotes

	form, err := h.svc.Update(c.UserContext(), id, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(form)
}
