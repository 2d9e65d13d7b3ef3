package services

import (
	"context"
	"strings"

	"github.com/anjiri1684/travel_agency/apperrors"
	"github.com/anjiri1684/travel_agency/database"
	"github.com/anjiri1684/travel_agency/models"
	"github.com/anjiri1684/travel_agency/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

type PackageStore interface {
	Create(ctx context.Context, pkg *models.Package) error
	Update(ctx context.Context, pkg *models.Package) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Package, error)
	FindBySlug(ctx context.Context, slug string) (*models.Package, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, filter database.PackageFilter) ([]models.Package, int64, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type PackageInput struct {
	Title        string
	Description  string
	Location     string
	Duration     string
	DurationDays int
	Price        float64
	Category     string
	CoverImage   *string
	Images       []string
	Highlights   []string
	Itinerary    []models.ItineraryDay
	PickupPoints []string
	IsActive     *bool
	IsFeatured   bool
}

type PackageService struct {
	store PackageStore
	log   logrus.FieldLogger
}

func NewPackageService(store PackageStore, log logrus.FieldLogger) *PackageService {
	return &PackageService{store: store, log: log}
}

func (s *PackageService) List(ctx context.Context, filter database.PackageFilter) ([]models.Package, int64, error) {
	return s.store.List(ctx, filter)
}

// Find resolves a package by id or slug. Inactive packages are only visible to admins.
func (s *PackageService) Find(ctx context.Context, idOrSlug string, includeInactive bool) (*models.Package, error) {
	var (
		pkg *models.Package
		err error
	)
	if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		pkg, err = s.store.FindByID(ctx, id)
	} else {
		pkg, err = s.store.FindBySlug(ctx, strings.ToLower(idOrSlug))
	}
	if err != nil {
		return nil, err
	}
	if !pkg.IsActive && !includeInactive {
		return nil, apperrors.NotFound("Package")
	}
	return pkg, nil
}

func (s *PackageService) Create(ctx context.Context, in PackageInput) (*models.Package, error) {
	if err := validatePackage(in); err != nil {
		return nil, err
	}
	slug, err := s.uniqueSlug(ctx, in.Title)
	if err != nil {
		return nil, err
	}

	pkg := &models.Package{Slug: slug, IsActive: true}
	applyPackageInput(pkg, in)
	if err := s.store.Create(ctx, pkg); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"package_id": pkg.ID, "slug": pkg.Slug}).Info("Package created")
	return pkg, nil
}

func (s *PackageService) Update(ctx context.Context, id uuid.UUID, in PackageInput) (*models.Package, error) {
	if err := validatePackage(in); err != nil {
		return nil, err
	}
	pkg, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(in.Title), pkg.Title) {
		slug, err := s.uniqueSlug(ctx, in.Title)
		if err != nil {
			return nil, err
		}
		pkg.Slug = slug
	}
	applyPackageInput(pkg, in)
	if err := s.store.Update(ctx, pkg); err != nil {
		return nil, err
	}
	s.log.WithField("package_id", pkg.ID).Info("Package updated")
	return pkg, nil
}

func (s *PackageService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Deactivate(ctx, id); err != nil {
		return err
	}
	s.log.WithField("package_id", id).Info("Package deactivated")
	return nil
}

func (s *PackageService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := utils.Slugify(title)
	if base == "" {
		return "", apperrors.Validation("Title must contain letters or digits")
	}
	slug := base
	for attempt := 0; attempt < 5; attempt++ {
		exists, err := s.store.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = base + "-" + utils.RandomSuffix(4)
	}
	return "", apperrors.Conflict("Could not generate a unique slug for this title")
}

func validatePackage(in PackageInput) error {
	if len(strings.TrimSpace(in.Title)) < 3 {
		return apperrors.Validation("Title must be at least 3 characters")
	}
	if in.Price <= 0 {
		return apperrors.Validation("Price must be greater than zero")
	}
	if in.DurationDays < 0 {
		return apperrors.Validation("Duration days cannot be negative")
	}
	for i, day := range in.Itinerary {
		if day.Day < 1 || strings.TrimSpace(day.Title) == "" {
			return apperrors.Validation("Itinerary entries need a day number and a title").
				WithDetails(map[string]any{"index": i})
		}
	}
	return nil
}

func applyPackageInput(pkg *models.Package, in PackageInput) {
	pkg.Title = strings.TrimSpace(in.Title)
	pkg.Description = in.Description
	pkg.Location = strings.TrimSpace(in.Location)
	pkg.Duration = in.Duration
	pkg.DurationDays = in.DurationDays
	pkg.Price = in.Price
	pkg.Category = strings.TrimSpace(in.Category)
	pkg.CoverImage = in.CoverImage
	pkg.Images = datatypes.NewJSONSlice(nonNil(in.Images))
	pkg.Highlights = datatypes.NewJSONSlice(nonNil(in.Highlights))
	pkg.PickupPoints = datatypes.NewJSONSlice(nonNil(in.PickupPoints))
	itinerary := in.Itinerary
	if itinerary == nil {
		itinerary = []models.ItineraryDay{}
	}
	pkg.Itinerary = datatypes.NewJSONSlice(itinerary)
	if in.IsActive != nil {
		pkg.IsActive = *in.IsActive
	}
	pkg.IsFeatured = in.IsFeatured
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
