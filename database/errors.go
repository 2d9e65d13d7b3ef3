package database

import (
	"errors"

	"github.com/anjiri1684/travel_agency/apperrors"
	"gorm.io/gorm"
)

// translate maps gorm errors onto the application taxonomy.
func translate(err error, resource string) error {
	var appErr *apperrors.AppError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NotFound(resource)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.Conflict(resource + " already exists")
	default:
		return apperrors.Internal("Database error", err)
	}
}

type Page struct {
	Page  int
	Limit int
}

func (p Page) Normalized() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p
}

func (p Page) Offset() int {
	n := p.Normalized()
	return (n.Page - 1) * n.Limit
}
