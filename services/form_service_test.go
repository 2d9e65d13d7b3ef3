package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/travel_agency/apperrors"
	"github.com/anjiri1684/travel_agency/database"
	"github.com/anjiri1684/travel_agency/events"
	"github.com/anjiri1684/travel_agency/logging"
	"github.com/anjiri1684/travel_agency/models"
	"github.com/google/uuid"
)

type memoryForms struct {
	mu    sync.Mutex
	forms map[uuid.UUID]models.FormResponse
}

func (m *memoryForms) Create(_ context.Context, f *models.FormResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f.ID = uuid.New()
	m.forms[f.ID] = *f
	return nil
}

func (m *memoryForms) FindByID(_ context.Context, id uuid.UUID) (*models.FormResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.forms[id]
	if !ok {
		return nil, apperrors.NotFound("Form response")
	}
	return &f, nil
}

func (m *memoryForms) Update(_ context.Context, f *models.FormResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forms[f.ID] = *f
	return nil
}

func (m *memoryForms) List(context.Context, database.FormFilter) ([]models.FormResponse, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.FormResponse
	for _, f := range m.forms {
		out = append(out, f)
	}
	return out, int64(len(out)), nil
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestFormSubmit(t *testing.T) {
	store := &memoryForms{forms: make(map[uuid.UUID]models.FormResponse)}
	mailer := &recordingMailer{}
	pub := &recordingPublisher{}
	settings := newStaticSettings(func(s *SiteSettings) { s.Business.Email = "desk@agency.example" })
	svc := NewFormService(store, settings, pub, mailer, logging.Discard())

	form, err := svc.Submit(context.Background(), SubmitFormInput{
		FormType: models.FormCustomTrip,
		Name:     "Kabir",
		Email:    "KABIR@example.com",
		Message:  "Family trip to Ladakh in July",
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if form.Status != models.FormNew || form.Priority != models.PriorityHigh {
		t.Errorf("status=%s priority=%s", form.Status, form.Priority)
	}
	if form.Email != "kabir@example.com" {
		t.Errorf("email = %q", form.Email)
	}
	if got := pub.types(); len(got) != 1 || got[0] != events.FormSubmitted {
		t.Errorf("published %v", got)
	}
	waitUntil(t, func() bool {
		return mailer.count("kabir@example.com") == 1 && mailer.count("desk@agency.example") == 1
	})
}

func TestFormSubmitRejectsUnknownType(t *testing.T) {
	store := &memoryForms{forms: make(map[uuid.UUID]models.FormResponse)}
	svc := NewFormService(store, newStaticSettings(nil), events.Nop(), &recordingMailer{}, logging.Discard())
	if _, err := svc.Submit(context.Background(), SubmitFormInput{FormType: "SPAM", Name: "x", Email: "x@y.z", Message: "m"}); !apperrors.Is(err, apperrors.CodeValidation) {
		t.Fatalf("err = %v", err)
	}
}

func TestFormUpdate(t *testing.T) {
	store := &memoryForms{forms: make(map[uuid.UUID]models.FormResponse)}
	svc := NewFormService(store, newStaticSettings(nil), events.Nop(), &recordingMailer{}, logging.Discard())
	form, _ := svc.Submit(context.Background(), SubmitFormInput{Name: "A", Email: "a@b.c", Message: "hello"})

	replied := models.FormReplied
	notes := "Called back"
	updated, err := svc.Update(context.Background(), form.ID, UpdateFormInput{Status: &replied, AdminNotes: &notes})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Status != models.FormReplied || *updated.AdminNotes != notes {
		t.Errorf("updated = %+v", updated)
	}

	bogus := models.FormPriority("CRITICAL")
	if _, err := svc.Update(context.Background(), form.ID, UpdateFormInput{Priority: &bogus}); !apperrors.Is(err, apperrors.CodeValidation) {
		t.Errorf("bad priority err = %v", err)
	}
}
