package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akreditasi-jurnal/internal/apperrors"
	"akreditasi-jurnal/internal/models"
)

func TestDeletionGuardExampleScenario(t *testing.T) {
	s := newServices(t, defaultConfig())
	ctx := context.Background()
	f := s.fixtures
	s.submit(t, f.Indicator.ID)

	assert.False(t, s.guard.CanDeleteIndicator(ctx, f.Indicator.ID))
	assert.False(t, s.guard.CanDeleteSubCategory(ctx, f.SubCategory.ID))
	assert.False(t, s.guard.CanDeleteCategory(ctx, f.Category.ID))

	err := s.tpl.DeleteCategory(ctx, f.Category.ID, admin)
	var blocked *apperrors.DeletionBlockedError
	require.True(t, errors.As(err, &blocked), "expected DeletionBlockedError, got %v", err)
	assert.Equal(t, apperrors.ReasonSubmittedUsage, blocked.Reason)
	assert.Equal(t, []string{"ADM-01"}, blocked.BlockedBy)
	assert.Contains(t, err.Error(), "used in submitted assessment")

	// nothing was removed
	_, err = s.tpl.GetTemplate(ctx, f.Template.ID)
	assert.NoError(t, err)
	_, err = s.tpl.GetCategory(ctx, f.Category.ID)
	assert.NoError(t, err)
	_, err = s.tpl.GetSubCategory(ctx, f.SubCategory.ID)
	assert.NoError(t, err)
	_, err = s.tpl.GetIndicator(ctx, f.Indicator.ID)
	assert.NoError(t, err)

	logs, err := s.tpl.ListAuditLogs(ctx, models.AuditFilter{Resource: string(models.KindCategory)})
	require.NoError(t, err)
	for _, l := range logs {
		assert.NotEqual(t, "delete", l.Action, "blocked delete must not be audited")
	}
}

func TestDeletionGuardOnlySubmittedStatusBlocks(t *testing.T) {
	statuses := []struct {
		status  string
		allowed bool
	}{
		{"draft", true},
		{"reviewed", true},
		{"Submitted", true},
		{"submitted ", true},
		{models.AssessmentStatusSubmitted, false},
	}

	for _, tt := range statuses {
		t.Run(tt.status, func(t *testing.T) {
			s := newServices(t, defaultConfig())
			s.respond(t, s.fixtures.Indicator.ID, tt.status)

			assert.Equal(t, tt.allowed, s.guard.CanDeleteIndicator(context.Background(), s.fixtures.Indicator.ID))
		})
	}
}

func TestDeletionGuardStatusChange(t *testing.T) {
	s := newServices(t, defaultConfig())
	ctx := context.Background()
	id := s.respond(t, s.fixtures.Indicator.ID, "draft")

	assert.True(t, s.guard.CanDeleteCategory(ctx, s.fixtures.Category.ID))

	require.NoError(t, s.store.SetAssessmentStatus(id, models.AssessmentStatusSubmitted))
	assert.False(t, s.guard.CanDeleteCategory(ctx, s.fixtures.Category.ID))
}

func TestDeletionGuardMonotonicity(t *testing.T) {
	s := newServices(t, defaultConfig())
	ctx := context.Background()
	f := s.fixtures

	// a second branch that stays unused
	otherCat := s.addCategory(t, f.Template.ID, "PEN", 20)
	otherSub := s.addSubCategory(t, otherCat.ID, "PEN-1")
	otherInd := s.addIndicator(t, otherSub.ID, "PEN-01", 3)

	used := s.addIndicator(t, f.SubCategory.ID, "ADM-02", 2)
	s.submit(t, used.ID)

	require.False(t, s.guard.CanDeleteIndicator(ctx, used.ID))
	assert.False(t, s.guard.CanDeleteSubCategory(ctx, f.SubCategory.ID))
	assert.False(t, s.guard.CanDeleteCategory(ctx, f.Category.ID))

	assert.True(t, s.guard.CanDeleteIndicator(ctx, f.Indicator.ID), "sibling without responses stays deletable")
	assert.True(t, s.guard.CanDeleteIndicator(ctx, otherInd.ID))
	assert.True(t, s.guard.CanDeleteSubCategory(ctx, otherSub.ID))
	assert.True(t, s.guard.CanDeleteCategory(ctx, otherCat.ID))

	verdict, err := s.guard.CheckTemplate(ctx, f.Template.ID)
	require.NoError(t, err)
	assert.False(t, verdict.Allowed)
}

func TestDeletionGuardSoleActiveTemplate(t *testing.T) {
	s := newServices(t, defaultConfig())
	ctx := context.Background()
	f := s.fixtures

	verdict, err := s.guard.CheckTemplate(ctx, f.Template.ID)
	require.NoError(t, err)
	assert.False(t, verdict.Allowed)
	assert.Equal(t, apperrors.ReasonSoleActiveTemplate, verdict.Reason)

	err = s.tpl.DeleteTemplate(ctx, f.Template.ID, admin)
	var blocked *apperrors.DeletionBlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, apperrors.ReasonSoleActiveTemplate, blocked.Reason)

	// an inactive template of the same type is not protected
	inactive, err := s.tpl.CreateTemplate(ctx, models.TemplateInput{
		Name: "BAN-PT 2019", Type: models.TemplateTypeAkreditasi,
	}, admin)
	require.NoError(t, err)
	assert.True(t, s.guard.CanDeleteTemplate(ctx, inactive.ID))

	// a second active template releases the first one
	_, err = s.tpl.CreateTemplate(ctx, models.TemplateInput{
		Name: "BAN-PT 2025", Type: models.TemplateTypeAkreditasi, IsActive: true,
	}, admin)
	require.NoError(t, err)
	assert.True(t, s.guard.CanDeleteTemplate(ctx, f.Template.ID))

	// another type does not count
	indeks, err := s.tpl.CreateTemplate(ctx, models.TemplateInput{
		Name: "SINTA", Type: models.TemplateTypeIndeksasi, IsActive: true,
	}, admin)
	require.NoError(t, err)
	assert.False(t, s.guard.CanDeleteTemplate(ctx, indeks.ID))
}

func TestDeleteTemplateCascades(t *testing.T) {
	s := newServices(t, defaultConfig())
	ctx := context.Background()
	f := s.fixtures

	_, err := s.tpl.CreateTemplate(ctx, models.TemplateInput{
		Name: "BAN-PT 2025", Type: models.TemplateTypeAkreditasi, IsActive: true,
	}, admin)
	require.NoError(t, err)

	require.NoError(t, s.tpl.DeleteTemplate(ctx, f.Template.ID, admin))

	var nf *apperrors.NotFoundError
	_, err = s.tpl.GetCategory(ctx, f.Category.ID)
	assert.ErrorAs(t, err, &nf)
	_, err = s.tpl.GetSubCategory(ctx, f.SubCategory.ID)
	assert.ErrorAs(t, err, &nf)
	_, err = s.tpl.GetIndicator(ctx, f.Indicator.ID)
	assert.ErrorAs(t, err, &nf)
	_, err = s.tpl.GetEssay(ctx, f.Essay.ID)
	assert.ErrorAs(t, err, &nf)
}

func TestDeleteCategoryCascadesWhenAllowed(t *testing.T) {
	s := newServices(t, defaultConfig())
	ctx := context.Background()
	f := s.fixtures

	require.NoError(t, s.tpl.DeleteCategory(ctx, f.Category.ID, admin))

	var nf *apperrors.NotFoundError
	_, err := s.tpl.GetSubCategory(ctx, f.SubCategory.ID)
	assert.ErrorAs(t, err, &nf)
	_, err = s.tpl.GetIndicator(ctx, f.Indicator.ID)
	assert.ErrorAs(t, err, &nf)
	_, err = s.tpl.GetEssay(ctx, f.Essay.ID)
	assert.ErrorAs(t, err, &nf)

	err = s.tpl.DeleteCategory(ctx, f.Category.ID, admin)
	assert.ErrorAs(t, err, &nf, "second delete reports the category as missing")
}

func TestDeletionCheckByKind(t *testing.T) {
	s := newServices(t, defaultConfig())
	ctx := context.Background()
	f := s.fixtures
	s.submit(t, f.Indicator.ID)

	tests := []struct {
		kind    models.EntityKind
		id      uint
		allowed bool
	}{
		{models.KindCategory, f.Category.ID, false},
		{models.KindSubCategory, f.SubCategory.ID, false},
		{models.KindIndicator, f.Indicator.ID, false},
		{models.KindEssay, f.Essay.ID, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			verdict, err := s.guard.Check(ctx, tt.kind, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, verdict.Allowed)
			assert.Equal(t, tt.kind, verdict.Kind)
			if !tt.allowed {
				assert.Equal(t, []string{"ADM-01"}, verdict.BlockedBy)
			}
		})
	}

	_, err := s.guard.Check(ctx, models.EntityKind("journal"), 1)
	var ve *apperrors.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = s.guard.Check(ctx, models.KindIndicator, 9999)
	var nf *apperrors.NotFoundError
	assert.ErrorAs(t, err, &nf)
	assert.False(t, s.guard.CanDeleteIndicator(ctx, 9999), "missing ids fail closed")
}

func TestDeleteEssayIsUnguarded(t *testing.T) {
	s := newServices(t, defaultConfig())
	ctx := context.Background()
	s.submit(t, s.fixtures.Indicator.ID)

	require.NoError(t, s.tpl.DeleteEssay(ctx, s.fixtures.Essay.ID, admin))
	_, err := s.tpl.GetEssay(ctx, s.fixtures.Essay.ID)
	var nf *apperrors.NotFoundError
	assert.ErrorAs(t, err, &nf)
}
