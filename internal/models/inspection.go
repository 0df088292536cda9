package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OverallStatus describes the life-cycle state of an inspection report.
// A report is created in progress and moves exactly once into one of the
// five terminal outcomes.
type OverallStatus string

const (
	// StatusNotStarted is virtual: it is reported for an order that has no
	// inspection report row yet and is never persisted.
	StatusNotStarted       OverallStatus = "not_started"
	StatusInProgress       OverallStatus = "in_progress"
	StatusPass             OverallStatus = "pass"
	StatusPassWithNotes    OverallStatus = "pass_with_notes"
	StatusMinorAlterations OverallStatus = "minor_alterations"
	StatusMajorAlterations OverallStatus = "major_alterations"
	StatusReject           OverallStatus = "reject"
)

// Terminal reports whether the status is a final inspection outcome.
func (s OverallStatus) Terminal() bool {
	switch s {
	case StatusPass, StatusPassWithNotes, StatusMinorAlterations, StatusMajorAlterations, StatusReject:
		return true
	case StatusNotStarted, StatusInProgress:
		return false
	}
	return false
}

// ParseOutcome validates a terminal outcome value supplied by a caller.
func ParseOutcome(v string) (OverallStatus, bool) {
	s := OverallStatus(v)
	if s.Terminal() {
		return s, true
	}
	return "", false
}

// InspectionReport records one quality inspection pass over an order's job
// cards. Style and color are copied from the order at start time so cohort
// queries do not need a join.
type InspectionReport struct {
	ID                uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID           string        `gorm:"index" json:"orderId"`
	InspectionNumber  string        `json:"inspectionNumber"`
	InspectorID       string        `json:"inspectorId"`
	InspectorName     string        `json:"inspectorName"`
	InspectionDate    time.Time     `json:"inspectionDate"`
	Style             string        `gorm:"index:idx_inspection_cohort" json:"style"`
	Color             string        `gorm:"index:idx_inspection_cohort" json:"color"`
	OverallStatus     OverallStatus `json:"overallStatus"`
	GeneralNotes      string        `json:"generalNotes,omitempty"`
	InspectorComments string        `json:"inspectorComments,omitempty"`
	CompletedAt       *time.Time    `json:"completedAt,omitempty"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// BeforeCreate is a GORM hook that populates the primary key and default status.
func (r *InspectionReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.OverallStatus == "" {
		r.OverallStatus = StatusInProgress
	}
	return nil
}
