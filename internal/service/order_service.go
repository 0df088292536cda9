package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/StrafeZ/quality-inspector-app/internal/models"
	"github.com/StrafeZ/quality-inspector-app/internal/repository"
)

// orderStore is the slice of the order repository the aggregator needs.
type orderStore interface {
	FindByIdentifier(ctx context.Context, identifier string) (*models.Order, error)
	ListActive(ctx context.Context) ([]models.Order, error)
	ListJobCards(ctx context.Context, orderID string) ([]models.JobCard, error)
	CountJobCards(ctx context.Context, orderID string) (int64, error)
	FindJobCard(ctx context.Context, id uuid.UUID) (*models.JobCard, error)
}

type alterationCounter interface {
	CountForOrder(ctx context.Context, orderID string) (int64, error)
}

type latestInspectionFinder interface {
	FindLatestByOrder(ctx context.Context, orderID string) (*models.InspectionReport, error)
}

// OrderSummary is an order together with its derived counts.
type OrderSummary struct {
	Order           *models.Order `json:"order"`
	JobCardCount    int64         `json:"jobCardCount"`
	AlterationCount int64         `json:"alterationCount"`
}

// ActiveOrder is an order in the active list, annotated with its job-card
// count and the state of its most recent inspection.
type ActiveOrder struct {
	models.Order
	JobCardCount     int64                `json:"jobCardCount"`
	InspectionStatus models.OverallStatus `json:"inspectionStatus"`
	InspectionID     *uuid.UUID           `json:"inspectionId,omitempty"`
}

// JobCardDetail is a job card together with its owning order.
type JobCardDetail struct {
	JobCard *models.JobCard `json:"jobCard"`
	Order   *models.Order   `json:"order"`
}

// OrderService resolves orders by either identifier form and aggregates their
// job-card and alteration figures.
type OrderService struct {
	orders      orderStore
	alterations alterationCounter
	inspections latestInspectionFinder
	log         *zap.Logger
}

// NewOrderService builds the service with its collaborators.
func NewOrderService(orders orderStore, alterations alterationCounter, inspections latestInspectionFinder, log *zap.Logger) *OrderService {
	return &OrderService{orders: orders, alterations: alterations, inspections: inspections, log: log}
}

// ResolveOrder finds an order by production PO or internal order id.
func (s *OrderService) ResolveOrder(ctx context.Context, identifier string) (*models.Order, error) {
	if identifier == "" {
		return nil, &ValidationError{Field: "identifier", Reason: "must not be empty"}
	}
	return s.orders.FindByIdentifier(ctx, identifier)
}

// GetOrderSummary resolves an order and attaches exact job-card and alteration
// counts. A failed count is logged and degrades to zero; a missing count must
// not block rendering the order itself.
func (s *OrderService) GetOrderSummary(ctx context.Context, identifier string) (*OrderSummary, error) {
	order, err := s.ResolveOrder(ctx, identifier)
	if err != nil {
		return nil, err
	}

	summary := &OrderSummary{Order: order}

	if count, err := s.orders.CountJobCards(ctx, order.OrderID); err != nil {
		s.log.Warn("count job cards failed",
			zap.String("order_id", order.OrderID), zap.Error(err))
	} else {
		summary.JobCardCount = count
	}

	if count, err := s.alterations.CountForOrder(ctx, order.OrderID); err != nil {
		s.log.Warn("count alterations failed",
			zap.String("order_id", order.OrderID), zap.Error(err))
	} else {
		summary.AlterationCount = count
	}

	return summary, nil
}

// ListJobCards returns an order's job cards in serial order.
func (s *OrderService) ListJobCards(ctx context.Context, orderID string) ([]models.JobCard, error) {
	if orderID == "" {
		return nil, &ValidationError{Field: "orderId", Reason: "must not be empty"}
	}
	return s.orders.ListJobCards(ctx, orderID)
}

// GetJobCard returns a job card with its owning order.
func (s *OrderService) GetJobCard(ctx context.Context, id uuid.UUID) (*JobCardDetail, error) {
	card, err := s.orders.FindJobCard(ctx, id)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.FindByIdentifier(ctx, card.OrderID)
	if err != nil {
		return nil, err
	}
	return &JobCardDetail{JobCard: card, Order: order}, nil
}

// ListActiveOrders returns orders that are not completed or archived, each
// annotated with its job-card count and latest inspection state. Per-order
// aggregation failures degrade to zero/not-started rather than failing the list.
func (s *OrderService) ListActiveOrders(ctx context.Context) ([]ActiveOrder, error) {
	orders, err := s.orders.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]ActiveOrder, 0, len(orders))
	for i := range orders {
		order := orders[i]
		entry := ActiveOrder{Order: order, InspectionStatus: models.StatusNotStarted}

		if count, err := s.orders.CountJobCards(ctx, order.OrderID); err != nil {
			s.log.Warn("count job cards failed",
				zap.String("order_id", order.OrderID), zap.Error(err))
		} else {
			entry.JobCardCount = count
		}

		report, err := s.inspections.FindLatestByOrder(ctx, order.OrderID)
		switch {
		case err == nil:
			entry.InspectionStatus = report.OverallStatus
			id := report.ID
			entry.InspectionID = &id
		case errors.Is(err, repository.ErrNotFound):
			// no inspection yet, stays not_started
		default:
			s.log.Warn("find latest inspection failed",
				zap.String("order_id", order.OrderID), zap.Error(err))
		}

		active = append(active, entry)
	}
	return active, nil
}
