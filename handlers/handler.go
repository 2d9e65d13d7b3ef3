package handlers

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/anjiri1684/travel_agency/apperrors"
	"github.com/anjiri1684/travel_agency/database"
	"github.com/anjiri1684/travel_agency/middleware"
	"github.com/anjiri1684/travel_agency/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// base carries what every handler needs to answer errors consistently.
type base struct {
	log logrus.FieldLogger
}

// fail writes err as {"error", "code"[, "details"]} and logs server-side failures.
func (h base) fail(c *fiber.Ctx, err error) error {
	appErr := apperrors.As(err)
	if appErr.HTTPStatus >= fiber.StatusInternalServerError {
		entry := h.log.WithFields(logrus.Fields{
			"request_id": c.Locals("requestid"),
			"path":       c.Path(),
			"method":     c.Method(),
			"code":       appErr.Code,
		})
		if appErr.Err != nil {
			entry = entry.WithError(appErr.Err)
		}
		entry.Error(appErr.Message)
	}

	body := fiber.Map{"error": appErr.Message, "code": appErr.Code}
	if len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	return c.Status(appErr.HTTPStatus).JSON(body)
}

// parseBody decodes and validates the JSON body into req.
func parseBody(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.Validation("Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.Validation(err.Error())
	}
	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		details[fe.Field()] = rule
	}
	return apperrors.Validation("Validation failed").WithDetails(details)
}

func uuidParam(c *fiber.Ctx, name, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperrors.Validation("Invalid " + resource + " ID")
	}
	return id, nil
}

func caller(c *fiber.Ctx) (models.AuthContext, error) {
	auth, ok := middleware.CurrentAuth(c)
	if !ok {
		return models.AuthContext{}, apperrors.Unauthorized("Authentication required")
	}
	return auth, nil
}

func pageFromQuery(c *fiber.Ctx) database.Page {
	return database.Page{Page: c.QueryInt("page", 1), Limit: c.QueryInt("limit", 10)}.Normalized()
}

func paginated(data interface{}, total int64, page database.Page) fiber.Map {
	return fiber.Map{
		"data": data,
		"meta": fiber.Map{
			"total":     total,
			"page":      page.Page,
			"last_page": int(math.Ceil(float64(total) / float64(page.Limit))),
		},
	}
}

// parseDate accepts RFC3339 timestamps and plain YYYY-MM-DD dates.
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, apperrors.Validation("Dates must be YYYY-MM-DD or RFC3339")
	}
	return &t, nil
}

func optionalUUID(value string, resource string) (*uuid.UUID, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, apperrors.Validation("Invalid " + resource + " ID")
	}
	return &id, nil
}
