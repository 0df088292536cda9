package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/StrafeZ/quality-inspector-app/internal/models"
)

func cohortReport(style, color string, status models.OverallStatus) *models.InspectionReport {
	return &models.InspectionReport{
		ID:            uuid.New(),
		OverallStatus: status,
		Style:         style,
		Color:         color,
	}
}

func TestCohortStatsEmptyCohort(t *testing.T) {
	svc := NewStatsService(&fakeInspections{}, &fakeAlterations{}, zap.NewNop())

	stats, err := svc.CohortStats(context.Background(), "Bomber Jacket", "Navy")
	require.NoError(t, err)
	assert.Equal(t, CohortStats{}, stats)
}

func TestCohortStatsPassRate(t *testing.T) {
	inspections := &fakeInspections{reports: []*models.InspectionReport{
		cohortReport("Bomber Jacket", "Navy", models.StatusPass),
		cohortReport("Bomber Jacket", "Navy", models.StatusPass),
		cohortReport("Bomber Jacket", "Navy", models.StatusReject),
		cohortReport("Bomber Jacket", "Navy", models.StatusMinorAlterations),
		// different cohort, must not count
		cohortReport("Bomber Jacket", "Black", models.StatusReject),
	}}
	svc := NewStatsService(inspections, &fakeAlterations{}, zap.NewNop())

	stats, err := svc.CohortStats(context.Background(), "Bomber Jacket", "Navy")
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalInspections)
	assert.Equal(t, 50, stats.PassRate)
}

func TestCohortStatsPassRateRounds(t *testing.T) {
	inspections := &fakeInspections{reports: []*models.InspectionReport{
		cohortReport("Tee", "White", models.StatusPass),
		cohortReport("Tee", "White", models.StatusPass),
		cohortReport("Tee", "White", models.StatusReject),
	}}
	svc := NewStatsService(inspections, &fakeAlterations{}, zap.NewNop())

	stats, err := svc.CohortStats(context.Background(), "Tee", "White")
	require.NoError(t, err)
	// 2/3 = 66.67 rounds to 67
	assert.Equal(t, 67, stats.PassRate)
}

func TestCohortStatsAlterationCounts(t *testing.T) {
	inCohort := cohortReport("Bomber Jacket", "Navy", models.StatusMinorAlterations)
	outOfCohort := cohortReport("Bomber Jacket", "Black", models.StatusMinorAlterations)
	inspections := &fakeInspections{reports: []*models.InspectionReport{inCohort, outOfCohort}}

	alterations := &fakeAlterations{alterations: []*models.Alteration{
		{ID: uuid.New(), InspectionReportID: inCohort.ID, IsCorrected: false},
		{ID: uuid.New(), InspectionReportID: inCohort.ID, IsCorrected: true},
		{ID: uuid.New(), InspectionReportID: inCohort.ID, IsCorrected: false},
		{ID: uuid.New(), InspectionReportID: outOfCohort.ID, IsCorrected: false},
	}}
	svc := NewStatsService(inspections, alterations, zap.NewNop())

	stats, err := svc.CohortStats(context.Background(), "Bomber Jacket", "Navy")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalAlterations)
	assert.Equal(t, 2, stats.PendingCorrections)
}

func TestCohortStatsInspectionQueryFailureZeroesAll(t *testing.T) {
	inspections := &fakeInspections{listErr: errors.New("store unavailable")}
	svc := NewStatsService(inspections, &fakeAlterations{}, zap.NewNop())

	stats, err := svc.CohortStats(context.Background(), "Bomber Jacket", "Navy")
	require.NoError(t, err)
	assert.Equal(t, CohortStats{}, stats)
}

func TestCohortStatsAlterationQueryFailureZeroesAlterationFigures(t *testing.T) {
	inspections := &fakeInspections{reports: []*models.InspectionReport{
		cohortReport("Bomber Jacket", "Navy", models.StatusPass),
	}}
	alterations := &fakeAlterations{listErr: errors.New("store unavailable")}
	svc := NewStatsService(inspections, alterations, zap.NewNop())

	stats, err := svc.CohortStats(context.Background(), "Bomber Jacket", "Navy")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalInspections)
	assert.Equal(t, 100, stats.PassRate)
	assert.Zero(t, stats.TotalAlterations)
	assert.Zero(t, stats.PendingCorrections)
}
