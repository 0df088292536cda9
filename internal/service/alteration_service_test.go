package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/StrafeZ/quality-inspector-app/internal/models"
)

func newAlterationFixture() (*AlterationService, *fakeAlterations, *fakeTemplates, *recordingPublisher, *recordingInvalidator) {
	alterations := &fakeAlterations{jobCardOrders: map[uuid.UUID]string{}}
	templates := &fakeTemplates{}
	publisher := &recordingPublisher{}
	invalidator := &recordingInvalidator{}

	svc := NewAlterationService(alterations, templates, publisher, invalidator, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2025, 1, 17, 14, 0, 0, 0, time.UTC) }
	return svc, alterations, templates, publisher, invalidator
}

func validInput() CreateAlterationInput {
	return CreateAlterationInput{
		InspectionReportID: uuid.New(),
		JobCardID:          uuid.New(),
		AlterationType:     "Loose Thread",
		AlterationCategory: "Stitching",
		Severity:           "major",
		Description:        "loose threads at left cuff",
		Location:           "left cuff",
		StitcherName:       "Kamal",
	}
}

func TestCreateAlteration(t *testing.T) {
	svc, _, _, publisher, invalidator := newAlterationFixture()
	input := validInput()

	alteration, err := svc.Create(context.Background(), testActor, input)
	require.NoError(t, err)

	assert.Equal(t, models.SeverityMajor, alteration.Severity)
	assert.False(t, alteration.IsCorrected)
	assert.Nil(t, alteration.CorrectedAt)
	assert.Equal(t, testActor.ID, alteration.StitcherID)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, "alteration.created", publisher.events[0].routingKey)
	assert.Contains(t, invalidator.keys, KeyJobCardAlterations(input.JobCardID))
	assert.Contains(t, invalidator.keys, KeyInspection(input.InspectionReportID))
}

func TestCreateAlterationValidation(t *testing.T) {
	svc, _, _, _, _ := newAlterationFixture()

	tests := []struct {
		name   string
		mutate func(*CreateAlterationInput)
	}{
		{"missing inspection", func(in *CreateAlterationInput) { in.InspectionReportID = uuid.Nil }},
		{"missing job card", func(in *CreateAlterationInput) { in.JobCardID = uuid.Nil }},
		{"missing type", func(in *CreateAlterationInput) { in.AlterationType = "" }},
		{"missing description", func(in *CreateAlterationInput) { in.Description = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)
			_, err := svc.Create(context.Background(), testActor, input)
			assert.True(t, IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestCreateAlterationDefaultsSeverityToMinor(t *testing.T) {
	svc, _, _, _, _ := newAlterationFixture()

	for _, severity := range []string{"", "catastrophic", "MAJOR"} {
		input := validInput()
		input.Severity = severity
		alteration, err := svc.Create(context.Background(), testActor, input)
		require.NoError(t, err)
		assert.Equal(t, models.SeverityMinor, alteration.Severity, "severity %q", severity)
	}
}

func TestCreateAlterationPrefillsFromTemplate(t *testing.T) {
	svc, _, templates, _, _ := newAlterationFixture()

	template := &models.AlterationTemplate{
		ID:                  uuid.New(),
		AlterationCategory:  "Stitching",
		AlterationType:      "Skipped Stitch",
		DescriptionTemplate: "skipped stitches along seam",
		SeverityDefault:     models.SeverityCritical,
	}
	templates.templates = append(templates.templates, template)

	input := CreateAlterationInput{
		InspectionReportID: uuid.New(),
		JobCardID:          uuid.New(),
		TemplateID:         &template.ID,
	}
	alteration, err := svc.Create(context.Background(), testActor, input)
	require.NoError(t, err)

	assert.Equal(t, "Skipped Stitch", alteration.AlterationType)
	assert.Equal(t, "Stitching", alteration.AlterationCategory)
	assert.Equal(t, "skipped stitches along seam", alteration.Description)
	assert.Equal(t, models.SeverityCritical, alteration.Severity)
}

func TestCreateAlterationMissingTemplateDoesNotBlock(t *testing.T) {
	svc, _, _, _, _ := newAlterationFixture()

	missing := uuid.New()
	input := validInput()
	input.TemplateID = &missing

	alteration, err := svc.Create(context.Background(), testActor, input)
	require.NoError(t, err)
	assert.Equal(t, "Loose Thread", alteration.AlterationType)
}

func TestMarkCorrected(t *testing.T) {
	svc, store, _, publisher, _ := newAlterationFixture()

	created, err := svc.Create(context.Background(), testActor, validInput())
	require.NoError(t, err)

	corrected, err := svc.MarkCorrected(context.Background(), testActor, created.ID)
	require.NoError(t, err)
	assert.True(t, corrected.IsCorrected)
	require.NotNil(t, corrected.CorrectedAt)
	assert.Equal(t, "Priya", corrected.CorrectedBy)

	// second flip is a conflict and leaves the record untouched
	_, err = svc.MarkCorrected(context.Background(), testActor, created.ID)
	_, ok := IsConflict(err)
	require.True(t, ok, "expected conflict, got %v", err)

	stored, err := store.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, corrected.CorrectedAt, stored.CorrectedAt)

	assert.Equal(t, "alteration.corrected", publisher.events[len(publisher.events)-1].routingKey)
}

func TestTemplateCRUDInvalidatesCatalog(t *testing.T) {
	svc, _, _, _, invalidator := newAlterationFixture()

	template, err := svc.CreateTemplate(context.Background(), TemplateInput{
		AlterationCategory: "Fusing",
		AlterationType:     "Bubbling",
		SeverityDefault:    "major",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SeverityMajor, template.SeverityDefault)
	assert.Contains(t, invalidator.keys, KeyAlterationTemplates)

	invalidator.keys = nil
	_, err = svc.UpdateTemplate(context.Background(), template.ID, TemplateInput{
		DescriptionTemplate: "bubbling on fused panels",
	})
	require.NoError(t, err)
	assert.Contains(t, invalidator.keys, KeyAlterationTemplates)

	invalidator.keys = nil
	require.NoError(t, svc.DeleteTemplate(context.Background(), template.ID))
	assert.Contains(t, invalidator.keys, KeyAlterationTemplates)

	err = svc.DeleteTemplate(context.Background(), template.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateTemplateValidation(t *testing.T) {
	svc, _, _, _, _ := newAlterationFixture()

	_, err := svc.CreateTemplate(context.Background(), TemplateInput{AlterationCategory: "Fusing"})
	assert.True(t, IsValidation(err))
	_, err = svc.CreateTemplate(context.Background(), TemplateInput{AlterationType: "Bubbling"})
	assert.True(t, IsValidation(err))
}
