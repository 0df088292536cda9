package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/StrafeZ/quality-inspector-app/internal/models"
)

// OrderRepository provides read access to orders and job cards. Both are owned
// by the upstream order-management system; this service never writes them.
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository constructs a repository using the provided gorm DB.
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// FindByIdentifier resolves an order by production PO first and falls back to
// the internal order id. Users reach orders through both forms (URLs, QR
// payloads), so resolution must accept either.
func (r *OrderRepository) FindByIdentifier(ctx context.Context, identifier string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("production_po = ?", identifier).
		First(&order).Error
	if err == nil {
		return &order, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.WithStack(err)
	}

	err = r.db.WithContext(ctx).
		Where("order_id = ?", identifier).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, pkgerrors.WithStack(err)
	}
	return &order, nil
}

// ListActive returns orders that are not completed or archived, newest first.
func (r *OrderRepository) ListActive(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("status NOT IN ?", []string{models.OrderStatusCompleted, models.OrderStatusArchived}).
		Order("created_at desc").
		Find(&orders).Error
	return orders, pkgerrors.WithStack(err)
}

// ListJobCards returns all job cards of an order in ascending serial order.
// Operators inspect garments in serial sequence, so display order must match.
func (r *OrderRepository) ListJobCards(ctx context.Context, orderID string) ([]models.JobCard, error) {
	var cards []models.JobCard
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("serial_no asc").
		Find(&cards).Error
	return cards, pkgerrors.WithStack(err)
}

// CountJobCards returns the exact number of job cards under an order.
func (r *OrderRepository) CountJobCards(ctx context.Context, orderID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.JobCard{}).
		Where("order_id = ?", orderID).
		Count(&count).Error
	return count, pkgerrors.WithStack(err)
}

// FindJobCard returns a job card by id.
func (r *OrderRepository) FindJobCard(ctx context.Context, id uuid.UUID) (*models.JobCard, error) {
	var card models.JobCard
	err := r.db.WithContext(ctx).First(&card, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, pkgerrors.WithStack(err)
	}
	return &card, nil
}
