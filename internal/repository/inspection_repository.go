package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/StrafeZ/quality-inspector-app/internal/models"
)

// InspectionRepository provides persistence access for inspection reports.
type InspectionRepository struct {
	db *gorm.DB
}

// NewInspectionRepository constructs a repository using the provided gorm DB.
func NewInspectionRepository(db *gorm.DB) *InspectionRepository {
	return &InspectionRepository{db: db}
}

// Create persists the report.
func (r *InspectionRepository) Create(ctx context.Context, report *models.InspectionReport) error {
	return pkgerrors.WithStack(r.db.WithContext(ctx).Create(report).Error)
}

// Update persists the modified report.
func (r *InspectionRepository) Update(ctx context.Context, report *models.InspectionReport) error {
	return pkgerrors.WithStack(r.db.WithContext(ctx).Save(report).Error)
}

// FindByID returns the report by id.
func (r *InspectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.InspectionReport, error) {
	var report models.InspectionReport
	if err := r.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, pkgerrors.WithStack(err)
	}
	return &report, nil
}

// FindActiveByOrder returns the in-progress report for an order, if any.
func (r *InspectionRepository) FindActiveByOrder(ctx context.Context, orderID string) (*models.InspectionReport, error) {
	var report models.InspectionReport
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND overall_status = ?", orderID, models.StatusInProgress).
		Order("created_at desc").
		First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, pkgerrors.WithStack(err)
	}
	return &report, nil
}

// FindLatestByOrder returns the most recent report for an order regardless of
// status, if any.
func (r *InspectionRepository) FindLatestByOrder(ctx context.Context, orderID string) (*models.InspectionReport, error) {
	var report models.InspectionReport
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at desc").
		First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, pkgerrors.WithStack(err)
	}
	return &report, nil
}

// Cohort identifies a style/color group of inspection reports.
type Cohort struct {
	Style string
	Color string
}

// ListRecentCohorts returns the distinct style/color cohorts with inspection
// activity since the given time.
func (r *InspectionRepository) ListRecentCohorts(ctx context.Context, since time.Time) ([]Cohort, error) {
	var cohorts []Cohort
	err := r.db.WithContext(ctx).
		Model(&models.InspectionReport{}).
		Select("DISTINCT style, color").
		Where("updated_at >= ?", since).
		Scan(&cohorts).Error
	return cohorts, pkgerrors.WithStack(err)
}

// ListByCohort returns all reports for a style/color cohort, newest first.
func (r *InspectionRepository) ListByCohort(ctx context.Context, style, color string) ([]models.InspectionReport, error) {
	var reports []models.InspectionReport
	err := r.db.WithContext(ctx).
		Where("style = ? AND color = ?", style, color).
		Order("created_at desc").
		Find(&reports).Error
	return reports, pkgerrors.WithStack(err)
}
