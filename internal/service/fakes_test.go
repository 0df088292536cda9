package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/StrafeZ/quality-inspector-app/internal/models"
	"github.com/StrafeZ/quality-inspector-app/internal/repository"
)

// In-memory stand-ins for the gorm repositories. They reproduce the repository
// contracts the services rely on: identifier resolution order, sort order, the
// not-found sentinel, and the id/default hooks gorm applies on create.

type fakeOrders struct {
	orders   []*models.Order
	jobCards []*models.JobCard

	countErr error
	listErr  error
}

func (f *fakeOrders) FindByIdentifier(ctx context.Context, identifier string) (*models.Order, error) {
	for _, o := range f.orders {
		if o.ProductionPO != "" && o.ProductionPO == identifier {
			return o, nil
		}
	}
	for _, o := range f.orders {
		if o.OrderID == identifier {
			return o, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeOrders) ListActive(ctx context.Context) ([]models.Order, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var active []models.Order
	for _, o := range f.orders {
		if o.Status != models.OrderStatusCompleted && o.Status != models.OrderStatusArchived {
			active = append(active, *o)
		}
	}
	return active, nil
}

func (f *fakeOrders) ListJobCards(ctx context.Context, orderID string) ([]models.JobCard, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var cards []models.JobCard
	for _, c := range f.jobCards {
		if c.OrderID == orderID {
			cards = append(cards, *c)
		}
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].SerialNo < cards[j].SerialNo })
	return cards, nil
}

func (f *fakeOrders) CountJobCards(ctx context.Context, orderID string) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	var count int64
	for _, c := range f.jobCards {
		if c.OrderID == orderID {
			count++
		}
	}
	return count, nil
}

func (f *fakeOrders) FindJobCard(ctx context.Context, id uuid.UUID) (*models.JobCard, error) {
	for _, c := range f.jobCards {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeInspections struct {
	reports []*models.InspectionReport

	createErr error
	findErr   error
	listErr   error
}

func (f *fakeInspections) Create(ctx context.Context, report *models.InspectionReport) error {
	if f.createErr != nil {
		return f.createErr
	}
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if report.OverallStatus == "" {
		report.OverallStatus = models.StatusInProgress
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}
	f.reports = append(f.reports, report)
	return nil
}

func (f *fakeInspections) Update(ctx context.Context, report *models.InspectionReport) error {
	for i, r := range f.reports {
		if r.ID == report.ID {
			f.reports[i] = report
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeInspections) FindByID(ctx context.Context, id uuid.UUID) (*models.InspectionReport, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, r := range f.reports {
		if r.ID == id {
			copied := *r
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeInspections) FindActiveByOrder(ctx context.Context, orderID string) (*models.InspectionReport, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, r := range f.reports {
		if r.OrderID == orderID && r.OverallStatus == models.StatusInProgress {
			copied := *r
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeInspections) FindLatestByOrder(ctx context.Context, orderID string) (*models.InspectionReport, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var latest *models.InspectionReport
	for _, r := range f.reports {
		if r.OrderID != orderID {
			continue
		}
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	copied := *latest
	return &copied, nil
}

func (f *fakeInspections) ListByCohort(ctx context.Context, style, color string) ([]models.InspectionReport, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var reports []models.InspectionReport
	for _, r := range f.reports {
		if r.Style == style && r.Color == color {
			reports = append(reports, *r)
		}
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].CreatedAt.After(reports[j].CreatedAt) })
	return reports, nil
}

type fakeAlterations struct {
	alterations []*models.Alteration
	// jobCardOrders maps job card ids to owning order ids for CountForOrder.
	jobCardOrders map[uuid.UUID]string

	createErr error
	listErr   error
	countErr  error
}

func (f *fakeAlterations) Create(ctx context.Context, alteration *models.Alteration) error {
	if f.createErr != nil {
		return f.createErr
	}
	if alteration.ID == uuid.Nil {
		alteration.ID = uuid.New()
	}
	if alteration.Severity == "" {
		alteration.Severity = models.SeverityMinor
	}
	if alteration.CreatedAt.IsZero() {
		alteration.CreatedAt = time.Now()
	}
	f.alterations = append(f.alterations, alteration)
	return nil
}

func (f *fakeAlterations) Update(ctx context.Context, alteration *models.Alteration) error {
	for i, a := range f.alterations {
		if a.ID == alteration.ID {
			f.alterations[i] = alteration
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeAlterations) FindByID(ctx context.Context, id uuid.UUID) (*models.Alteration, error) {
	for _, a := range f.alterations {
		if a.ID == id {
			copied := *a
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAlterations) ListByInspection(ctx context.Context, inspectionID uuid.UUID) ([]models.Alteration, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var result []models.Alteration
	for _, a := range f.alterations {
		if a.InspectionReportID == inspectionID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (f *fakeAlterations) ListByJobCard(ctx context.Context, jobCardID uuid.UUID) ([]models.Alteration, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var result []models.Alteration
	for _, a := range f.alterations {
		if a.JobCardID == jobCardID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (f *fakeAlterations) ListByInspectionIDs(ctx context.Context, inspectionIDs []uuid.UUID) ([]models.Alteration, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	wanted := make(map[uuid.UUID]bool, len(inspectionIDs))
	for _, id := range inspectionIDs {
		wanted[id] = true
	}
	var result []models.Alteration
	for _, a := range f.alterations {
		if wanted[a.InspectionReportID] {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (f *fakeAlterations) CountForOrder(ctx context.Context, orderID string) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	var count int64
	for _, a := range f.alterations {
		if f.jobCardOrders[a.JobCardID] == orderID {
			count++
		}
	}
	return count, nil
}

type fakeTemplates struct {
	templates []*models.AlterationTemplate

	deleteErr error
}

func (f *fakeTemplates) List(ctx context.Context) ([]models.AlterationTemplate, error) {
	result := make([]models.AlterationTemplate, 0, len(f.templates))
	for _, t := range f.templates {
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].AlterationCategory != result[j].AlterationCategory {
			return result[i].AlterationCategory < result[j].AlterationCategory
		}
		return result[i].AlterationType < result[j].AlterationType
	})
	return result, nil
}

func (f *fakeTemplates) FindByID(ctx context.Context, id uuid.UUID) (*models.AlterationTemplate, error) {
	for _, t := range f.templates {
		if t.ID == id {
			copied := *t
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeTemplates) Create(ctx context.Context, template *models.AlterationTemplate) error {
	if template.ID == uuid.Nil {
		template.ID = uuid.New()
	}
	if template.SeverityDefault == "" {
		template.SeverityDefault = models.SeverityMinor
	}
	f.templates = append(f.templates, template)
	return nil
}

func (f *fakeTemplates) Update(ctx context.Context, template *models.AlterationTemplate) error {
	for i, t := range f.templates {
		if t.ID == template.ID {
			f.templates[i] = template
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeTemplates) Delete(ctx context.Context, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, t := range f.templates {
		if t.ID == id {
			f.templates = append(f.templates[:i], f.templates[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type publishedEvent struct {
	routingKey string
	payload    any
}

type recordingPublisher struct {
	events []publishedEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	p.events = append(p.events, publishedEvent{routingKey: routingKey, payload: payload})
	return nil
}

type recordingInvalidator struct {
	keys []string
	err  error
}

func (r *recordingInvalidator) Invalidate(ctx context.Context, keys ...string) error {
	if r.err != nil {
		return r.err
	}
	r.keys = append(r.keys, keys...)
	return nil
}
