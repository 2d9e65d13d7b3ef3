package models

import "github.com/google/uuid"

// AuthContext is the caller identity resolved once per request from the bearer token.
type AuthContext struct {
	UserID uuid.UUID
	Role   Role
}

func (a AuthContext) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanAccess reports whether the caller owns the resource or is an admin.
func (a AuthContext) CanAccess(ownerID uuid.UUID) bool {
	return a.IsAdmin() || (a.UserID != uuid.Nil && a.UserID == ownerID)
}
