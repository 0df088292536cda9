package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Invalidator drops cached aggregates by key after a write. Write paths report
// exactly the keys they affect; the caching layer decides how to store and
// expire the underlying entries.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// KeyAlterationTemplates names the cached template catalog.
const KeyAlterationTemplates = "alteration-templates"

// KeyOrderSummary names the cached order summary aggregate.
func KeyOrderSummary(orderID string) string {
	return "order-summary:" + orderID
}

// KeyCohortStats names the cached statistics for a style/color cohort.
func KeyCohortStats(style, color string) string {
	return fmt.Sprintf("cohort-stats:%s:%s", style, color)
}

// KeyInspection names the cached inspection detail aggregate.
func KeyInspection(id uuid.UUID) string {
	return "inspection:" + id.String()
}

// KeyJobCardAlterations names the cached alteration list of a job card.
func KeyJobCardAlterations(jobCardID uuid.UUID) string {
	return "alterations:job-card:" + jobCardID.String()
}
