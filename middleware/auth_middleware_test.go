package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anjiri1684/travel_agency/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const testSecret = "middleware-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func newTestApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", Protected(testSecret), func(c *fiber.Ctx) error {
		auth, _ := CurrentAuth(c)
		return c.JSON(fiber.Map{"user_id": auth.UserID, "role": auth.Role})
	})
	app.Get("/admin", Protected(testSecret), AdminRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestProtectedResolvesTypedAuth(t *testing.T) {
	app := newTestApp()
	userID := uuid.New()
	token := signToken(t, jwt.MapClaims{
		"user_id": userID.String(),
		"role":    string(models.RoleUser),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		UserID string `json:"user_id"`
		Role   string `json:"role"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	if body.UserID != userID.String() || body.Role != "USER" {
		t.Errorf("body = %+v", body)
	}
}

func TestProtectedAcceptsQueryToken(t *testing.T) {
	app := newTestApp()
	token := signToken(t, jwt.MapClaims{
		"user_id": uuid.New().String(),
		"role":    string(models.RoleAdmin),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/admin?token="+token, nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
}

func TestProtectedRejects(t *testing.T) {
	app := newTestApp()
	expired := signToken(t, jwt.MapClaims{
		"user_id": uuid.New().String(),
		"role":    "USER",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	badRole := signToken(t, jwt.MapClaims{
		"user_id": uuid.New().String(),
		"role":    "teacher",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	badID := signToken(t, jwt.MapClaims{
		"user_id": "not-a-uuid",
		"role":    "USER",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	for name, header := range map[string]string{
		"missing":  "",
		"expired":  "Bearer " + expired,
		"bad role": "Bearer " + badRole,
		"bad id":   "Bearer " + badID,
		"garbage":  "Bearer abc.def.ghi",
	} {
		req := httptest.NewRequest("GET", "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s: app.Test: %v", name, err)
		}
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", name, resp.StatusCode)
		}
	}
}

func TestAdminRequiredForbidsUsers(t *testing.T) {
	app := newTestApp()
	token := signToken(t, jwt.MapClaims{
		"user_id": uuid.New().String(),
		"role":    "USER",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
}
