package memstore_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akreditasi-jurnal/internal/apperrors"
	"akreditasi-jurnal/internal/memstore"
	"akreditasi-jurnal/internal/models"
	"akreditasi-jurnal/internal/service"
)

func seed(t *testing.T, s *memstore.Store) (*models.Template, *models.Category, *models.SubCategory, *models.Indicator) {
	t.Helper()
	ctx := context.Background()

	tpl := &models.Template{Name: "BAN-PT 2024", Type: models.TemplateTypeAkreditasi, IsActive: true}
	require.NoError(t, s.CreateTemplate(ctx, tpl))
	cat := &models.Category{TemplateID: tpl.ID, Code: "ADM", Name: "Administrasi", Weight: 30, DisplayOrder: 1}
	require.NoError(t, s.CreateCategory(ctx, cat))
	sub := &models.SubCategory{CategoryID: cat.ID, Code: "ADM-ID", Name: "Identitas", DisplayOrder: 1}
	require.NoError(t, s.CreateSubCategory(ctx, sub))
	ind := &models.Indicator{
		Placement:  models.HierarchicalPlacement(sub.ID),
		Code:       "ADM-01",
		Question:   "ISSN?",
		AnswerType: models.AnswerTypeBoolean,
		SortOrder:  1,
		IsActive:   true,
	}
	require.NoError(t, s.CreateIndicator(ctx, ind))
	return tpl, cat, sub, ind
}

func TestInTxRollsBackOnError(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	tpl, cat, _, _ := seed(t, s)

	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx service.Store) error {
		if err := tx.SoftDeleteCategory(ctx, cat.ID); err != nil {
			return err
		}
		gone, err := tx.GetCategory(ctx, cat.ID)
		require.NoError(t, err)
		assert.Nil(t, gone, "the transaction sees its own writes")
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.GetCategory(ctx, cat.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	tree, err := s.ListIndicatorsByTemplate(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Len(t, tree, 1)
}

func TestInTxCommits(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	tpl, _, _, _ := seed(t, s)

	err := s.InTx(ctx, func(tx service.Store) error {
		assert.False(t, tx.Concurrent())
		// nested calls join the running transaction
		return tx.InTx(ctx, func(inner service.Store) error {
			return inner.SoftDeleteTemplate(ctx, tpl.ID)
		})
	})
	require.NoError(t, err)

	got, err := s.GetTemplate(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.True(t, s.Concurrent())
}

func TestSoftDeleteCascades(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	tpl, cat, sub, ind := seed(t, s)
	essay := &models.EssayQuestion{CategoryID: cat.ID, Code: "ADM-E1", Question: "Sejarah?", DisplayOrder: 1}
	require.NoError(t, s.CreateEssay(ctx, essay))

	require.NoError(t, s.SoftDeleteTemplate(ctx, tpl.ID))

	c, err := s.GetCategory(ctx, cat.ID)
	require.NoError(t, err)
	assert.Nil(t, c)
	sc, err := s.GetSubCategory(ctx, sub.ID)
	require.NoError(t, err)
	assert.Nil(t, sc)
	i, err := s.GetIndicator(ctx, ind.ID)
	require.NoError(t, err)
	assert.Nil(t, i)
	e, err := s.GetEssay(ctx, essay.ID)
	require.NoError(t, err)
	assert.Nil(t, e)

	var nf *apperrors.NotFoundError
	assert.ErrorAs(t, s.SoftDeleteTemplate(ctx, tpl.ID), &nf)

	// codes of deleted rows are free again
	again := &models.Template{Name: "BAN-PT 2024", Type: models.TemplateTypeAkreditasi}
	require.NoError(t, s.CreateTemplate(ctx, again))
	cat2 := &models.Category{TemplateID: again.ID, Code: "ADM", Name: "Administrasi"}
	require.NoError(t, s.CreateCategory(ctx, cat2))
	sub2 := &models.SubCategory{CategoryID: cat2.ID, Code: "ADM-ID", Name: "Identitas"}
	require.NoError(t, s.CreateSubCategory(ctx, sub2))
	require.NoError(t, s.CreateIndicator(ctx, &models.Indicator{
		Placement:  models.HierarchicalPlacement(sub2.ID),
		Code:       "ADM-01",
		Question:   "ISSN?",
		AnswerType: models.AnswerTypeBoolean,
	}))
}

func TestSubmittedIndicatorCodesByScope(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	tpl, cat, sub, ind := seed(t, s)

	other := &models.Indicator{
		Placement:  models.HierarchicalPlacement(sub.ID),
		Code:       "ADM-02",
		Question:   "DOI?",
		AnswerType: models.AnswerTypeBoolean,
	}
	require.NoError(t, s.CreateIndicator(ctx, other))

	draft := s.AddAssessment(tpl.ID, "draft")
	require.NoError(t, s.AddResponse(draft, other.ID))
	submitted := s.AddAssessment(tpl.ID, models.AssessmentStatusSubmitted)
	require.NoError(t, s.AddResponse(submitted, ind.ID))
	// a second response to the same indicator is reported once
	again := s.AddAssessment(tpl.ID, models.AssessmentStatusSubmitted)
	require.NoError(t, s.AddResponse(again, ind.ID))

	for _, scope := range []struct {
		kind models.EntityKind
		id   uint
	}{
		{models.KindTemplate, tpl.ID},
		{models.KindCategory, cat.ID},
		{models.KindSubCategory, sub.ID},
		{models.KindIndicator, ind.ID},
	} {
		codes, err := s.SubmittedIndicatorCodes(ctx, scope.kind, scope.id)
		require.NoError(t, err)
		assert.Equal(t, []string{"ADM-01"}, codes, "scope %s", scope.kind)
	}

	codes, err := s.SubmittedIndicatorCodes(ctx, models.KindIndicator, other.ID)
	require.NoError(t, err)
	assert.Empty(t, codes)

	_, err = s.SubmittedIndicatorCodes(ctx, models.KindEssay, 1)
	assert.Error(t, err)

	var nf *apperrors.NotFoundError
	assert.ErrorAs(t, s.AddResponse(9999, ind.ID), &nf)
	assert.ErrorAs(t, s.SetAssessmentStatus(9999, "draft"), &nf)
}

func TestApplyOrderIsAllOrNothing(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	_, cat, sub, ind := seed(t, s)

	err := s.ApplyOrder(ctx, models.KindIndicator, []models.OrderAssignment{
		{ID: ind.ID, Order: 5},
		{ID: sub.ID, Order: 6},
	})
	var nf *apperrors.NotFoundError
	require.ErrorAs(t, err, &nf)

	got, err := s.GetIndicator(ctx, ind.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.SortOrder)

	parents, err := s.ParentIDs(ctx, models.KindIndicator, []uint{ind.ID, sub.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]uint{ind.ID: sub.ID}, parents)

	next, err := s.NextOrder(ctx, models.KindSubCategory, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, next)

	_, err = s.NextOrder(ctx, models.KindTemplate, 0)
	var ve *apperrors.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestConcurrentWrites(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	tpl, _, _, _ := seed(t, s)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := &models.Category{TemplateID: tpl.ID, Code: string(rune('A' + i)), Name: "C"}
			assert.NoError(t, s.CreateCategory(ctx, c))
		}()
	}
	wg.Wait()

	categories, err := s.ListCategories(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Len(t, categories, 21)

	seen := map[uint]bool{}
	for _, c := range categories {
		assert.False(t, seen[c.ID])
		seen[c.ID] = true
	}
}
