package database

import (
	"context"

	"github.com/anjiri1684/travel_agency/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FormFilter struct {
	Page
	Status   models.FormStatus
	Priority models.FormPriority
	FormType models.FormType
}

type FormRepository struct {
	db *gorm.DB
}

func NewFormRepository(db *gorm.DB) *FormRepository {
	return &FormRepository{db: db}
}

func (r *FormRepository) Create(ctx context.Context, form *models.FormResponse) error {
	return translate(r.db.WithContext(ctx).Create(form).Error, "Form response")
}

func (r *FormRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.FormResponse, error) {
	var form models.FormResponse
	if err := r.db.WithContext(ctx).First(&form, "id = ?", id).Error; err != nil {
		return nil, translate(err, "Form response")
	}
	return &form, nil
}

func (r *FormRepository) Update(ctx context.Context, form *models.FormResponse) error {
	return translate(r.db.WithContext(ctx).Save(form).Error, "Form response")
}

func (r *FormRepository) List(ctx context.Context, filter FormFilter) ([]models.FormResponse, int64, error) {
	page := filter.Page.Normalized()

	query := r.db.WithContext(ctx).Model(&models.FormResponse{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.FormType != "" {
		query = query.Where("form_type = ?", filter.FormType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "Form response")
	}

	var forms []models.FormResponse
	err := query.Order("created_at desc").Offset(page.Offset()).Limit(page.Limit).Find(&forms).Error
	return forms, total, translate(err, "Form response")
}
