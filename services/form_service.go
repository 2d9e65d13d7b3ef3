package services

import (
	"context"
	"strings"

	"github.com/anjiri1684/travel_agency/apperrors"
	"github.com/anjiri1684/travel_agency/database"
	"github.com/anjiri1684/travel_agency/events"
	"github.com/anjiri1684/travel_agency/models"
	"github.com/anjiri1684/travel_agency/notifications"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type FormStore interface {
	Create(ctx context.Context, form *models.FormResponse) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.FormResponse, error)
	Update(ctx context.Context, form *models.FormResponse) error
	List(ctx context.Context, filter database.FormFilter) ([]models.FormResponse, int64, error)
}

type SubmitFormInput struct {
	FormType  models.FormType
	Name      string
	Email     string
	Phone     *string
	Subject   string
	Message   string
	PackageID *uuid.UUID
}

type UpdateFormInput struct {
	Status     *models.FormStatus
	Priority   *models.FormPriority
	AdminNotes *string
}

type FormService struct {
	store     FormStore
	settings  SettingsProvider
	publisher events.Publisher
	mailer    notifications.Mailer
	log       logrus.FieldLogger
}

func NewFormService(store FormStore, settings SettingsProvider, publisher events.Publisher, mailer notifications.Mailer, log logrus.FieldLogger) *FormService {
	return &FormService{store: store, settings: settings, publisher: publisher, mailer: mailer, log: log}
}

func (s *FormService) Submit(ctx context.Context, in SubmitFormInput) (*models.FormResponse, error) {
	if in.FormType == "" {
		in.FormType = models.FormContact
	}
	if !validFormType(in.FormType) {
		return nil, apperrors.Validation("Invalid form type")
	}

	form := &models.FormResponse{
		FormType:  in.FormType,
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:     in.Phone,
		Subject:   strings.TrimSpace(in.Subject),
		Message:   strings.TrimSpace(in.Message),
		PackageID: in.PackageID,
		Status:    models.FormNew,
		Priority:  models.PriorityNormal,
	}
	if form.FormType == models.FormCustomTrip {
		form.Priority = models.PriorityHigh
	}
	if form.Subject == "" {
		form.Subject = "Website " + strings.ToLower(string(form.FormType)) + " form"
	}

	if err := s.store.Create(ctx, form); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"form_id": form.ID, "type": form.FormType}).Info("Form submission stored")

	if err := s.publisher.Publish(ctx, events.Event{
		Type: events.FormSubmitted,
		Data: map[string]any{"form_id": form.ID.String(), "form_type": form.FormType, "priority": form.Priority},
	}); err != nil {
		s.log.WithError(err).Warn("Failed to publish form event")
	}

	subject, body := notifications.FormAcknowledgementEmail(form.Name, form.Subject)
	notifications.SendAsync(s.mailer, s.log, form.Name, form.Email, subject, body)

	business := s.settings.Get(ctx).Business
	if business.Email != "" {
		subject, body := notifications.NewFormAlertEmail(string(form.FormType), form.Name, form.Email, form.Message)
		notifications.SendAsync(s.mailer, s.log, business.Name, business.Email, subject, body)
	}
	return form, nil
}

func (s *FormService) List(ctx context.Context, filter database.FormFilter) ([]models.FormResponse, int64, error) {
	if filter.Status != "" && !validFormStatus(filter.Status) {
		return nil, 0, apperrors.Validation("Invalid status filter")
	}
	if filter.Priority != "" && !validFormPriority(filter.Priority) {
		return nil, 0, apperrors.Validation("Invalid priority filter")
	}
	return s.store.List(ctx, filter)
}

func (s *FormService) Update(ctx context.Context, id uuid.UUID, in UpdateFormInput) (*models.FormResponse, error) {
	form, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Status != nil {
		if !validFormStatus(*in.Status) {
			return nil, apperrors.Validation("Invalid status")
		}
		form.Status = *in.Status
	}
	if in.Priority != nil {
		if !validFormPriority(*in.Priority) {
			return nil, apperrors.Validation("Invalid priority")
		}
		form.Priority = *in.Priority
	}
	if in.AdminNotes != nil {
		form.AdminNotes = in.AdminNotes
	}
	if err := s.store.Update(ctx, form); err != nil {
		return nil, err
	}
	return form, nil
}

func validFormType(t models.FormType) bool {
	switch t {
	case models.FormContact, models.FormEnquiry, models.FormCustomTrip:
		return true
	}
	return false
}

func validFormStatus(s models.FormStatus) bool {
	switch s {
	case models.FormNew, models.FormRead, models.FormReplied, models.FormClosed:
		return true
	}
	return false
}

func validFormPriority(p models.FormPriority) bool {
	switch p {
	case models.PriorityLow, models.PriorityNormal, models.PriorityHigh, models.PriorityUrgent:
		return true
	}
	return false
}
