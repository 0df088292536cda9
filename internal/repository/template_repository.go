package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/StrafeZ/quality-inspector-app/internal/models"
)

// TemplateRepository provides persistence access for the alteration template catalog.
type TemplateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository constructs a repository using the provided gorm DB.
func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// List returns the full catalog ordered by category then type.
func (r *TemplateRepository) List(ctx context.Context) ([]models.AlterationTemplate, error) {
	var templates []models.AlterationTemplate
	err := r.db.WithContext(ctx).
		Order("alteration_category asc").
		Order("alteration_type asc").
		Find(&templates).Error
	return templates, pkgerrors.WithStack(err)
}

// FindByID returns a template by id.
func (r *TemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.AlterationTemplate, error) {
	var template models.AlterationTemplate
	if err := r.db.WithContext(ctx).First(&template, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, pkgerrors.WithStack(err)
	}
	return &template, nil
}

// Create persists the template.
func (r *TemplateRepository) Create(ctx context.Context, template *models.AlterationTemplate) error {
	return pkgerrors.WithStack(r.db.WithContext(ctx).Create(template).Error)
}

// Update persists the modified template.
func (r *TemplateRepository) Update(ctx context.Context, template *models.AlterationTemplate) error {
	return pkgerrors.WithStack(r.db.WithContext(ctx).Save(template).Error)
}

// Delete removes the template from the catalog.
func (r *TemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.AlterationTemplate{}, "id = ?", id)
	if res.Error != nil {
		return pkgerrors.WithStack(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
