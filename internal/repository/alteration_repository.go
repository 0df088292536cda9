package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/StrafeZ/quality-inspector-app/internal/models"
)

// AlterationRepository provides persistence access for alterations.
type AlterationRepository struct {
	db *gorm.DB
}

// NewAlterationRepository constructs a repository using the provided gorm DB.
func NewAlterationRepository(db *gorm.DB) *AlterationRepository {
	return &AlterationRepository{db: db}
}

// Create persists the alteration.
func (r *AlterationRepository) Create(ctx context.Context, alteration *models.Alteration) error {
	return pkgerrors.WithStack(r.db.WithContext(ctx).Create(alteration).Error)
}

// Update persists the modified alteration.
func (r *AlterationRepository) Update(ctx context.Context, alteration *models.Alteration) error {
	return pkgerrors.WithStack(r.db.WithContext(ctx).Save(alteration).Error)
}

// FindByID returns the alteration by id.
func (r *AlterationRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Alteration, error) {
	var alteration models.Alteration
	if err := r.db.WithContext(ctx).First(&alteration, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, pkgerrors.WithStack(err)
	}
	return &alteration, nil
}

// ListByInspection returns all alterations of an inspection, newest first.
func (r *AlterationRepository) ListByInspection(ctx context.Context, inspectionID uuid.UUID) ([]models.Alteration, error) {
	var alterations []models.Alteration
	err := r.db.WithContext(ctx).
		Where("inspection_report_id = ?", inspectionID).
		Order("created_at desc").
		Find(&alterations).Error
	return alterations, pkgerrors.WithStack(err)
}

// ListByJobCard returns all alterations recorded against a job card, newest first.
func (r *AlterationRepository) ListByJobCard(ctx context.Context, jobCardID uuid.UUID) ([]models.Alteration, error) {
	var alterations []models.Alteration
	err := r.db.WithContext(ctx).
		Where("job_card_id = ?", jobCardID).
		Order("created_at desc").
		Find(&alterations).Error
	return alterations, pkgerrors.WithStack(err)
}

// ListByInspectionIDs returns all alterations belonging to any of the given
// inspection reports.
func (r *AlterationRepository) ListByInspectionIDs(ctx context.Context, inspectionIDs []uuid.UUID) ([]models.Alteration, error) {
	if len(inspectionIDs) == 0 {
		return nil, nil
	}
	var alterations []models.Alteration
	err := r.db.WithContext(ctx).
		Where("inspection_report_id IN ?", inspectionIDs).
		Find(&alterations).Error
	return alterations, pkgerrors.WithStack(err)
}

// CountForOrder returns the exact number of alterations recorded against any
// job card belonging to the order.
func (r *AlterationRepository) CountForOrder(ctx context.Context, orderID string) (int64, error) {
	var count int64
	sub := r.db.Model(&models.JobCard{}).Select("id").Where("order_id = ?", orderID)
	err := r.db.WithContext(ctx).
		Model(&models.Alteration{}).
		Where("job_card_id IN (?)", sub).
		Count(&count).Error
	return count, pkgerrors.WithStack(err)
}
