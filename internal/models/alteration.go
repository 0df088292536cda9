package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Severity grades how serious a recorded defect is.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

// Valid reports whether the severity is one of the known grades.
func (s Severity) Valid() bool {
	switch s {
	case SeverityMinor, SeverityMajor, SeverityCritical:
		return true
	}
	return false
}

// Alteration is a defect found during an inspection, recorded against the
// inspection report and the specific job card it was found on. It is mutated
// at most once, when the correction is confirmed.
type Alteration struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	InspectionReportID uuid.UUID  `gorm:"type:uuid;index" json:"inspectionReportId"`
	JobCardID          uuid.UUID  `gorm:"type:uuid;index" json:"jobCardId"`
	StitcherID         string     `json:"stitcherId,omitempty"`
	StitcherName       string     `json:"stitcherName,omitempty"`
	AlterationType     string     `json:"alterationType"`
	AlterationCategory string     `json:"alterationCategory"`
	Severity           Severity   `json:"severity"`
	Description        string     `json:"description"`
	Location           string     `json:"location,omitempty"`
	IsCorrected        bool       `json:"isCorrected"`
	CorrectedAt        *time.Time `json:"correctedAt,omitempty"`
	CorrectedBy        string     `json:"correctedBy,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// BeforeCreate is a GORM hook that populates the primary key and default severity.
func (a *Alteration) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Severity == "" {
		a.Severity = SeverityMinor
	}
	return nil
}

// AlterationTemplate is a catalog entry suggesting type, category, severity and
// description wording for common defects. It is a suggestion source only: an
// Alteration may carry values that match no template.
type AlterationTemplate struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AlterationCategory  string    `json:"alterationCategory"`
	AlterationType      string    `json:"alterationType"`
	DescriptionTemplate string    `json:"descriptionTemplate,omitempty"`
	SeverityDefault     Severity  `json:"severityDefault"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// BeforeCreate is a GORM hook that populates the primary key and default severity.
func (t *AlterationTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.SeverityDefault == "" {
		t.SeverityDefault = SeverityMinor
	}
	return nil
}
