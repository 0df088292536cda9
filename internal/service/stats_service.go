package service

import (
	"context"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/StrafeZ/quality-inspector-app/internal/models"
)

type cohortReportLister interface {
	ListByCohort(ctx context.Context, style, color string) ([]models.InspectionReport, error)
}

type cohortAlterationLister interface {
	ListByInspectionIDs(ctx context.Context, inspectionIDs []uuid.UUID) ([]models.Alteration, error)
}

// CohortStats are the derived quality figures for a style/color cohort.
type CohortStats struct {
	TotalInspections   int `json:"totalInspections"`
	PassRate           int `json:"passRate"`
	TotalAlterations   int `json:"totalAlterations"`
	PendingCorrections int `json:"pendingCorrections"`
}

// StatsService recomputes cohort statistics from fresh reads on every call.
type StatsService struct {
	inspections cohortReportLister
	alterations cohortAlterationLister
	log         *zap.Logger
}

// NewStatsService builds the service with its collaborators.
func NewStatsService(inspections cohortReportLister, alterations cohortAlterationLister, log *zap.Logger) *StatsService {
	return &StatsService{inspections: inspections, alterations: alterations, log: log}
}

// CohortStats computes pass rate and alteration figures over every inspection
// of the style/color cohort. A failed sub-query zeroes the statistic category
// it feeds rather than surfacing a misleading partial figure; an empty cohort
// yields all zeroes.
func (s *StatsService) CohortStats(ctx context.Context, style, color string) (CohortStats, error) {
	var stats CohortStats

	reports, err := s.inspections.ListByCohort(ctx, style, color)
	if err != nil {
		s.log.Warn("list cohort inspections failed",
			zap.String("style", style), zap.String("color", color), zap.Error(err))
		return stats, nil
	}

	stats.TotalInspections = len(reports)
	if stats.TotalInspections == 0 {
		return stats, nil
	}

	passCount := 0
	ids := make([]uuid.UUID, 0, len(reports))
	for i := range reports {
		if reports[i].OverallStatus == models.StatusPass {
			passCount++
		}
		ids = append(ids, reports[i].ID)
	}
	stats.PassRate = int(math.Round(100 * float64(passCount) / float64(stats.TotalInspections)))

	alterations, err := s.alterations.ListByInspectionIDs(ctx, ids)
	if err != nil {
		s.log.Warn("list cohort alterations failed",
			zap.String("style", style), zap.String("color", color), zap.Error(err))
		return stats, nil
	}
	stats.TotalAlterations = len(alterations)
	for i := range alterations {
		if !alterations[i].IsCorrected {
			stats.PendingCorrections++
		}
	}
	return stats, nil
}
