package database

import (
	"context"
	"strings"

	"github.com/anjiri1684/travel_agency/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PackageFilter struct {
	Page
	Search          string
	Location        string
	Category        string
	FeaturedOnly    bool
	IncludeInactive bool
}

type PackageRepository struct {
	db *gorm.DB
}

func NewPackageRepository(db *gorm.DB) *PackageRepository {
	return &PackageRepository{db: db}
}

func (r *PackageRepository) Create(ctx context.Context, pkg *models.Package) error {
	return translate(r.db.WithContext(ctx).Create(pkg).Error, "Package")
}

func (r *PackageRepository) Update(ctx context.Context, pkg *models.Package) error {
	return translate(r.db.WithContext(ctx).Save(pkg).Error, "Package")
}

func (r *PackageRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Package, error) {
	var pkg models.Package
	if err := r.db.WithContext(ctx).First(&pkg, "id = ?", id).Error; err != nil {
		return nil, translate(err, "Package")
	}
	return &pkg, nil
}

func (r *PackageRepository) FindBySlug(ctx context.Context, slug string) (*models.Package, error) {
	var pkg models.Package
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&pkg).Error; err != nil {
		return nil, translate(err, "Package")
	}
	return &pkg, nil
}

func (r *PackageRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Package, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var pkgs []models.Package
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&pkgs).Error
	return pkgs, translate(err, "Package")
}

func (r *PackageRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Package{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, translate(err, "Package")
}

func (r *PackageRepository) List(ctx context.Context, filter PackageFilter) ([]models.Package, int64, error) {
	page := filter.Page.Normalized()

	query := r.db.WithContext(ctx).Model(&models.Package{})
	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filter.FeaturedOnly {
		query = query.Where("is_featured = ?", true)
	}
	if filter.Location != "" {
		query = query.Where("LOWER(location) = ?", strings.ToLower(filter.Location))
	}
	if filter.Category != "" {
		query = query.Where("LOWER(category) = ?", strings.ToLower(filter.Category))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		term := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(location) LIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "Package")
	}

	var pkgs []models.Package
	err := query.Order("is_featured desc, created_at desc").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&pkgs).Error
	return pkgs, total, translate(err, "Package")
}

func (r *PackageRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.Package{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return translate(result.Error, "Package")
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "Package")
	}
	return nil
}
