package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/travel_agency/apperrors"
	"github.com/anjiri1684/travel_agency/database"
	"github.com/anjiri1684/travel_agency/logging"
	"github.com/anjiri1684/travel_agency/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]models.User
}

func (m *memoryUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[u.Email]; exists {
		return apperrors.Conflict("User already exists")
	}
	u.ID = uuid.New()
	m.users[u.Email] = *u
	return nil
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[strings.ToLower(email)]
	if !ok {
		return nil, apperrors.NotFound("User")
	}
	return &u, nil
}

func (m *memoryUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}
	return nil, apperrors.NotFound("User")
}

func (m *memoryUsers) List(context.Context, database.Page, string) ([]models.User, int64, error) {
	return nil, 0, nil
}

func TestRegisterAndLogin(t *testing.T) {
	users := &memoryUsers{users: make(map[string]models.User)}
	svc := NewAuthService(users, "test-secret", time.Hour, logging.Discard())

	user, err := svc.Register(context.Background(), RegisterInput{FullName: "Priya Sharma", Email: "Priya@Example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if user.Role != models.RoleUser || user.Password == "hunter22" {
		t.Fatalf("role=%s, password stored in clear=%v", user.Role, user.Password == "hunter22")
	}

	if _, err := svc.Register(context.Background(), RegisterInput{FullName: "Again", Email: "priya@example.com", Password: "hunter22"}); !apperrors.Is(err, apperrors.CodeConflict) {
		t.Fatalf("duplicate register err = %v", err)
	}

	token, _, err := svc.Login(context.Background(), "priya@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) { return []byte("test-secret"), nil })
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["user_id"] != user.ID.String() || claims["role"] != "USER" {
		t.Errorf("claims = %v", claims)
	}
}

func TestLoginFailures(t *testing.T) {
	users := &memoryUsers{users: make(map[string]models.User)}
	svc := NewAuthService(users, "test-secret", time.Hour, logging.Discard())
	svc.Register(context.Background(), RegisterInput{FullName: "Dev", Email: "dev@example.com", Password: "correct-horse"})

	if _, _, err := svc.Login(context.Background(), "dev@example.com", "wrong"); !apperrors.Is(err, apperrors.CodeUnauthorized) {
		t.Errorf("wrong password err = %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "nobody@example.com", "x"); !apperrors.Is(err, apperrors.CodeUnauthorized) {
		t.Errorf("unknown email err = %v", err)
	}

	u := users.users["dev@example.com"]
	u.IsActive = false
	users.users["dev@example.com"] = u
	if _, _, err := svc.Login(context.Background(), "dev@example.com", "correct-horse"); !apperrors.Is(err, apperrors.CodeForbidden) {
		t.Errorf("inactive user err = %v", err)
	}
}
