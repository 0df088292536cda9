package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/StrafeZ/quality-inspector-app/internal/models"
	"github.com/StrafeZ/quality-inspector-app/internal/mq"
)

type alterationStore interface {
	Create(ctx context.Context, alteration *models.Alteration) error
	Update(ctx context.Context, alteration *models.Alteration) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Alteration, error)
	ListByJobCard(ctx context.Context, jobCardID uuid.UUID) ([]models.Alteration, error)
}

type templateStore interface {
	List(ctx context.Context) ([]models.AlterationTemplate, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.AlterationTemplate, error)
	Create(ctx context.Context, template *models.AlterationTemplate) error
	Update(ctx context.Context, template *models.AlterationTemplate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateAlterationInput carries the fields for recording a defect. TemplateID
// is optional; when set, missing type/category/description/severity values are
// prefilled from the catalog entry.
type CreateAlterationInput struct {
	InspectionReportID uuid.UUID  `json:"inspectionReportId"`
	JobCardID          uuid.UUID  `json:"jobCardId"`
	TemplateID         *uuid.UUID `json:"templateId,omitempty"`
	AlterationType     string     `json:"alterationType"`
	AlterationCategory string     `json:"alterationCategory"`
	Severity           string     `json:"severity"`
	Description        string     `json:"description"`
	Location           string     `json:"location"`
	StitcherID         string     `json:"stitcherId"`
	StitcherName       string     `json:"stitcherName"`
}

// TemplateInput carries the fields for a catalog entry.
type TemplateInput struct {
	AlterationCategory  string `json:"alterationCategory"`
	AlterationType      string `json:"alterationType"`
	DescriptionTemplate string `json:"descriptionTemplate"`
	SeverityDefault     string `json:"severityDefault"`
}

// AlterationService records defects against inspections and manages the
// alteration template catalog.
type AlterationService struct {
	alterations alterationStore
	templates   templateStore
	publisher   mq.Publisher
	invalidator Invalidator
	now         func() time.Time
	log         *zap.Logger
}

// NewAlterationService builds the service with its collaborators. publisher and
// invalidator may be nil; mutations then skip the corresponding notification.
func NewAlterationService(alterations alterationStore, templates templateStore, publisher mq.Publisher, invalidator Invalidator, log *zap.Logger) *AlterationService {
	return &AlterationService{
		alterations: alterations,
		templates:   templates,
		publisher:   publisher,
		invalidator: invalidator,
		now:         time.Now,
		log:         log,
	}
}

// Create records a new alteration. The record always starts uncorrected, no
// matter what the caller supplies; corrections are a separate, one-way event.
func (s *AlterationService) Create(ctx context.Context, actor Actor, input CreateAlterationInput) (*models.Alteration, error) {
	if input.InspectionReportID == uuid.Nil {
		return nil, &ValidationError{Field: "inspectionReportId", Reason: "must not be empty"}
	}
	if input.JobCardID == uuid.Nil {
		return nil, &ValidationError{Field: "jobCardId", Reason: "must not be empty"}
	}

	if input.TemplateID != nil {
		s.prefillFromTemplate(ctx, &input)
	}
	if input.AlterationType == "" {
		return nil, &ValidationError{Field: "alterationType", Reason: "must not be empty"}
	}
	if input.Description == "" {
		return nil, &ValidationError{Field: "description", Reason: "must not be empty"}
	}

	severity := models.Severity(input.Severity)
	if !severity.Valid() {
		severity = models.SeverityMinor
	}

	stitcherID := input.StitcherID
	if stitcherID == "" && actor.Known() {
		stitcherID = actor.ID
	}

	alteration := &models.Alteration{
		InspectionReportID: input.InspectionReportID,
		JobCardID:          input.JobCardID,
		StitcherID:         stitcherID,
		StitcherName:       input.StitcherName,
		AlterationType:     input.AlterationType,
		AlterationCategory: input.AlterationCategory,
		Severity:           severity,
		Description:        input.Description,
		Location:           input.Location,
		IsCorrected:        false,
	}
	if err := s.alterations.Create(ctx, alteration); err != nil {
		return nil, err
	}

	s.notify(ctx, "alteration.created", alteration,
		KeyJobCardAlterations(alteration.JobCardID),
		KeyInspection(alteration.InspectionReportID))
	return alteration, nil
}

// MarkCorrected flips the alteration to corrected, stamping who confirmed the
// correction and when. The flip happens at most once; a second attempt is a
// conflict.
func (s *AlterationService) MarkCorrected(ctx context.Context, actor Actor, id uuid.UUID) (*models.Alteration, error) {
	if !actor.Known() {
		return nil, &ValidationError{Field: "actor", Reason: "identity is required"}
	}

	alteration, err := s.alterations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if alteration.IsCorrected {
		return nil, &ConflictError{Reason: "alteration is already corrected"}
	}

	correctedAt := s.now()
	alteration.IsCorrected = true
	alteration.CorrectedAt = &correctedAt
	alteration.CorrectedBy = actor.DisplayName()
	if err := s.alterations.Update(ctx, alteration); err != nil {
		return nil, err
	}

	s.notify(ctx, "alteration.corrected", alteration,
		KeyJobCardAlterations(alteration.JobCardID),
		KeyInspection(alteration.InspectionReportID))
	return alteration, nil
}

// ListByJobCard returns all alterations on a job card, newest first.
func (s *AlterationService) ListByJobCard(ctx context.Context, jobCardID uuid.UUID) ([]models.Alteration, error) {
	if jobCardID == uuid.Nil {
		return nil, &ValidationError{Field: "jobCardId", Reason: "must not be empty"}
	}
	return s.alterations.ListByJobCard(ctx, jobCardID)
}

// ListTemplates returns the catalog ordered by category then type.
func (s *AlterationService) ListTemplates(ctx context.Context) ([]models.AlterationTemplate, error) {
	return s.templates.List(ctx)
}

// CreateTemplate adds a catalog entry.
func (s *AlterationService) CreateTemplate(ctx context.Context, input TemplateInput) (*models.AlterationTemplate, error) {
	if input.AlterationType == "" {
		return nil, &ValidationError{Field: "alterationType", Reason: "must not be empty"}
	}
	if input.AlterationCategory == "" {
		return nil, &ValidationError{Field: "alterationCategory", Reason: "must not be empty"}
	}
	severity := models.Severity(input.SeverityDefault)
	if !severity.Valid() {
		severity = models.SeverityMinor
	}

	template := &models.AlterationTemplate{
		AlterationCategory:  input.AlterationCategory,
		AlterationType:      input.AlterationType,
		DescriptionTemplate: input.DescriptionTemplate,
		SeverityDefault:     severity,
	}
	if err := s.templates.Create(ctx, template); err != nil {
		return nil, err
	}
	s.invalidateTemplates(ctx)
	return template, nil
}

// UpdateTemplate overwrites an existing catalog entry.
func (s *AlterationService) UpdateTemplate(ctx context.Context, id uuid.UUID, input TemplateInput) (*models.AlterationTemplate, error) {
	template, err := s.templates.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.AlterationType != "" {
		template.AlterationType = input.AlterationType
	}
	if input.AlterationCategory != "" {
		template.AlterationCategory = input.AlterationCategory
	}
	template.DescriptionTemplate = input.DescriptionTemplate
	if severity := models.Severity(input.SeverityDefault); severity.Valid() {
		template.SeverityDefault = severity
	}
	if err := s.templates.Update(ctx, template); err != nil {
		return nil, err
	}
	s.invalidateTemplates(ctx)
	return template, nil
}

// DeleteTemplate removes a catalog entry.
func (s *AlterationService) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	if err := s.templates.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateTemplates(ctx)
	return nil
}

func (s *AlterationService) prefillFromTemplate(ctx context.Context, input *CreateAlterationInput) {
	template, err := s.templates.FindByID(ctx, *input.TemplateID)
	if err != nil {
		// templates are a suggestion source only; a missing one never blocks
		// recording the defect
		s.log.Warn("template lookup failed",
			zap.String("template_id", input.TemplateID.String()), zap.Error(err))
		return
	}
	if input.AlterationType == "" {
		input.AlterationType = template.AlterationType
	}
	if input.AlterationCategory == "" {
		input.AlterationCategory = template.AlterationCategory
	}
	if input.Description == "" {
		input.Description = template.DescriptionTemplate
	}
	if input.Severity == "" {
		input.Severity = string(template.SeverityDefault)
	}
}

func (s *AlterationService) invalidateTemplates(ctx context.Context) {
	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, KeyAlterationTemplates); err != nil {
			s.log.Warn("cache invalidation failed", zap.Error(err))
		}
	}
	if s.publisher != nil {
		payload := map[string]any{
			"event":       "template.changed",
			"invalidates": []string{KeyAlterationTemplates},
			"occurredAt":  s.now().UTC().Format(time.RFC3339),
		}
		if err := s.publisher.Publish(ctx, "template.changed", payload); err != nil {
			s.log.Warn("publish event failed", zap.Error(err))
		}
	}
}

func (s *AlterationService) notify(ctx context.Context, event string, alteration *models.Alteration, keys ...string) {
	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, keys...); err != nil {
			s.log.Warn("cache invalidation failed", zap.String("event", event), zap.Error(err))
		}
	}
	if s.publisher == nil {
		return
	}
	payload := map[string]any{
		"event":        event,
		"alterationId": alteration.ID.String(),
		"inspectionId": alteration.InspectionReportID.String(),
		"jobCardId":    alteration.JobCardID.String(),
		"severity":     alteration.Severity,
		"isCorrected":  alteration.IsCorrected,
		"invalidates":  keys,
		"occurredAt":   s.now().UTC().Format(time.RFC3339),
	}
	if err := s.publisher.Publish(ctx, event, payload); err != nil {
		s.log.Warn("publish event failed", zap.String("event", event), zap.Error(err))
	}
}
