package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/StrafeZ/quality-inspector-app/internal/models"
	"github.com/StrafeZ/quality-inspector-app/internal/mq"
	"github.com/StrafeZ/quality-inspector-app/internal/repository"
)

type inspectionStore interface {
	Create(ctx context.Context, report *models.InspectionReport) error
	Update(ctx context.Context, report *models.InspectionReport) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.InspectionReport, error)
	FindActiveByOrder(ctx context.Context, orderID string) (*models.InspectionReport, error)
	ListByCohort(ctx context.Context, style, color string) ([]models.InspectionReport, error)
}

type orderResolver interface {
	FindByIdentifier(ctx context.Context, identifier string) (*models.Order, error)
}

type alterationLister interface {
	ListByInspection(ctx context.Context, inspectionID uuid.UUID) ([]models.Alteration, error)
}

// InspectionDetail is a report together with its recorded alterations.
type InspectionDetail struct {
	Report      *models.InspectionReport `json:"report"`
	Alterations []models.Alteration      `json:"alterations"`
}

// InspectionService drives the inspection life cycle: a report is started for
// an order, accumulates alterations while in progress, and is completed
// exactly once with a terminal outcome.
type InspectionService struct {
	inspections inspectionStore
	orders      orderResolver
	alterations alterationLister
	publisher   mq.Publisher
	invalidator Invalidator
	now         func() time.Time
	log         *zap.Logger
}

// NewInspectionService builds the service with its collaborators. publisher and
// invalidator may be nil; mutations then skip the corresponding notification.
func NewInspectionService(inspections inspectionStore, orders orderResolver, alterations alterationLister, publisher mq.Publisher, invalidator Invalidator, log *zap.Logger) *InspectionService {
	return &InspectionService{
		inspections: inspections,
		orders:      orders,
		alterations: alterations,
		publisher:   publisher,
		invalidator: invalidator,
		now:         time.Now,
		log:         log,
	}
}

// Start creates an in-progress inspection report for the order identified by
// orderIdentifier. If the order already has an in-progress report the call is
// rejected with a ConflictError carrying the existing report, so the caller
// can redirect to it rather than retry.
func (s *InspectionService) Start(ctx context.Context, actor Actor, orderIdentifier string) (*models.InspectionReport, error) {
	if !actor.Known() {
		return nil, &ValidationError{Field: "actor", Reason: "inspector identity is required"}
	}

	order, err := s.orders.FindByIdentifier(ctx, orderIdentifier)
	if err != nil {
		return nil, err
	}

	existing, err := s.inspections.FindActiveByOrder(ctx, order.OrderID)
	if err == nil {
		return nil, &ConflictError{
			Reason:   "an inspection is already in progress for this order",
			Existing: existing,
		}
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	now := s.now()
	report := &models.InspectionReport{
		OrderID:          order.OrderID,
		InspectionNumber: GenerateInspectionNumber(order.OrderID, now),
		InspectorID:      actor.ID,
		InspectorName:    actor.DisplayName(),
		InspectionDate:   now,
		Style:            order.StyleName,
		Color:            order.Color,
		OverallStatus:    models.StatusInProgress,
	}
	if err := s.inspections.Create(ctx, report); err != nil {
		return nil, err
	}

	s.notify(ctx, "inspection.started", report,
		KeyOrderSummary(order.OrderID),
		KeyCohortStats(report.Style, report.Color))
	return report, nil
}

// Complete finalizes an in-progress report with one of the five terminal
// outcomes. The transition is one-way: a second completion attempt is rejected
// with a ConflictError and leaves the report untouched.
func (s *InspectionService) Complete(ctx context.Context, actor Actor, id uuid.UUID, outcome string, generalNotes, inspectorComments string) (*models.InspectionReport, error) {
	if !actor.Known() {
		return nil, &ValidationError{Field: "actor", Reason: "inspector identity is required"}
	}

	status, ok := models.ParseOutcome(outcome)
	if !ok {
		return nil, &ValidationError{Field: "overallStatus", Reason: "must be a terminal outcome"}
	}

	report, err := s.inspections.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.OverallStatus.Terminal() {
		return nil, &ConflictError{Reason: "inspection is already completed", Existing: report}
	}

	completedAt := s.now()
	report.OverallStatus = status
	report.GeneralNotes = generalNotes
	report.InspectorComments = inspectorComments
	report.CompletedAt = &completedAt
	if err := s.inspections.Update(ctx, report); err != nil {
		return nil, err
	}

	s.notify(ctx, "inspection.completed", report,
		KeyInspection(report.ID),
		KeyOrderSummary(report.OrderID),
		KeyCohortStats(report.Style, report.Color))
	return report, nil
}

// Get returns a report with its alterations, newest first. A failed alteration
// fetch is logged and degrades to an empty list.
func (s *InspectionService) Get(ctx context.Context, id uuid.UUID) (*InspectionDetail, error) {
	report, err := s.inspections.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	alterations, err := s.alterations.ListByInspection(ctx, id)
	if err != nil {
		s.log.Warn("list alterations failed",
			zap.String("inspection_id", id.String()), zap.Error(err))
		alterations = nil
	}
	return &InspectionDetail{Report: report, Alterations: alterations}, nil
}

// ListByCohort returns all reports for a style/color cohort, newest first.
func (s *InspectionService) ListByCohort(ctx context.Context, style, color string) ([]models.InspectionReport, error) {
	if style == "" || color == "" {
		return nil, &ValidationError{Field: "style/color", Reason: "both must be provided"}
	}
	return s.inspections.ListByCohort(ctx, style, color)
}

// notify drops affected cache keys and publishes the domain event. Both are
// best effort: the write has already committed and must not be reported as
// failed because a listener could not be told about it.
func (s *InspectionService) notify(ctx context.Context, event string, report *models.InspectionReport, keys ...string) {
	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, keys...); err != nil {
			s.log.Warn("cache invalidation failed", zap.String("event", event), zap.Error(err))
		}
	}
	if s.publisher == nil {
		return
	}
	payload := map[string]any{
		"event":            event,
		"inspectionId":     report.ID.String(),
		"inspectionNumber": report.InspectionNumber,
		"orderId":          report.OrderID,
		"status":           report.OverallStatus,
		"invalidates":      keys,
		"occurredAt":       s.now().UTC().Format(time.RFC3339),
	}
	if err := s.publisher.Publish(ctx, event, payload); err != nil {
		s.log.Warn("publish event failed", zap.String("event", event), zap.Error(err))
	}
}
