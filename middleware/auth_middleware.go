package middleware

import (
	"github.com/anjiri1684/travel_agency/apperrors"
	"github.com/anjiri1684/travel_agency/models"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// AuthLocalsKey is where ResolveAuth stores the models.AuthContext.
const AuthLocalsKey = "auth"

// Protected verifies the bearer token and resolves it into a typed AuthContext.
func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     []byte(secret),
		SigningMethod:  jwtware.HS256,
		TokenLookup:    "header:Authorization,query:token",
		ErrorHandler:   jwtError,
		SuccessHandler: ResolveAuth,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return unauthorized(c, "Missing or malformed JWT")
	}
	return unauthorized(c, "Invalid or expired JWT")
}

// ResolveAuth converts the verified token claims into models.AuthContext once per request.
func ResolveAuth(c *fiber.Ctx) error {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return unauthorized(c, "Authentication required")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return unauthorized(c, "Invalid token claims")
	}
	rawID, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return unauthorized(c, "Invalid token claims")
	}
	role, _ := claims["role"].(string)
	switch models.Role(role) {
	case models.RoleUser, models.RoleAdmin:
	default:
		return unauthorized(c, "Invalid token claims")
	}

	c.Locals(AuthLocalsKey, models.AuthContext{UserID: userID, Role: models.Role(role)})
	return c.Next()
}

// CurrentAuth returns the caller resolved by Protected. ok is false on unprotected routes.
func CurrentAuth(c *fiber.Ctx) (models.AuthContext, bool) {
	auth, ok := c.Locals(AuthLocalsKey).(models.AuthContext)
	return auth, ok
}

func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth, ok := CurrentAuth(c)
		if !ok {
			return unauthorized(c, "Authentication required")
		}
		if !auth.IsAdmin() {
			appErr := apperrors.Forbidden("Forbidden: Admin access required")
			return c.Status(appErr.HTTPStatus).JSON(fiber.Map{"error": appErr.Message, "code": appErr.Code})
		}
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	appErr := apperrors.Unauthorized(message)
	return c.Status(appErr.HTTPStatus).JSON(fiber.Map{"error": appErr.Message, "code": appErr.Code})
}
