package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akreditasi-jurnal/internal/apperrors"
	"akreditasi-jurnal/internal/models"
)

func TestBuildTreeExample(t *testing.T) {
	s := newServices(t, defaultConfig())
	f := s.fixtures

	tree, err := s.tree.BuildTree(context.Background(), f.Template.ID)
	require.NoError(t, err)
	require.Len(t, tree, 1)

	cat := tree[0]
	assert.Equal(t, models.NodeID(models.KindCategory, f.Category.ID), cat.ID)
	assert.Equal(t, models.KindCategory, cat.Type)
	assert.Empty(t, cat.ParentID)
	assert.Equal(t, "ADM", cat.Code)
	require.NotNil(t, cat.Weight)
	assert.Equal(t, 30.0, *cat.Weight)
	require.Len(t, cat.Children, 2)

	sub := cat.Children[0]
	assert.Equal(t, models.KindSubCategory, sub.Type)
	assert.Equal(t, cat.ID, sub.ParentID)
	assert.Nil(t, sub.Weight)
	require.Len(t, sub.Children, 1)

	ind := sub.Children[0]
	assert.Equal(t, models.NodeID(models.KindIndicator, f.Indicator.ID), ind.ID)
	assert.Equal(t, sub.ID, ind.ParentID)
	assert.Equal(t, "ADM-01", ind.Code)
	assert.Equal(t, f.Indicator.Question, ind.Title)
	require.NotNil(t, ind.IsActive)
	assert.True(t, *ind.IsActive)
	assert.NotNil(t, ind.Children)
	assert.Empty(t, ind.Children)

	essay := cat.Children[1]
	assert.Equal(t, models.KindEssay, essay.Type)
	assert.Equal(t, "ADM-E1", essay.Code)
	assert.NotNil(t, essay.Children)
}

func TestBuildTreeIsComplete(t *testing.T) {
	for _, parallel := range []bool{true, false} {
		cfg := defaultConfig()
		cfg.TreeParallelLoad = parallel
		s := newServices(t, cfg)
		ctx := context.Background()
		tplID := s.fixtures.Template.ID

		pen := s.addCategory(t, tplID, "PEN", 20)
		empty := s.addSubCategory(t, pen.ID, "PEN-0")
		penSub := s.addSubCategory(t, pen.ID, "PEN-1")
		s.addIndicator(t, penSub.ID, "PEN-01", 4)
		s.addIndicator(t, penSub.ID, "PEN-02", 6)
		s.addEssay(t, pen.ID, "PEN-E1")
		s.addCategory(t, tplID, "REV", 10)

		// deleted rows, legacy rows and other templates stay out
		gone := s.addIndicator(t, penSub.ID, "PEN-03", 1)
		require.NoError(t, s.tpl.DeleteIndicator(ctx, gone.ID, admin))
		_, err := s.tpl.CreateIndicator(ctx, models.IndicatorInput{
			LegacyCategory: "Penyuntingan",
			Code:           "OLD-01",
			Question:       "Indikator lama",
			AnswerType:     models.AnswerTypeText,
		}, admin)
		require.NoError(t, err)
		other, err := s.tpl.CreateTemplate(ctx, models.TemplateInput{Name: "Lain", Type: models.TemplateTypeIndeksasi}, admin)
		require.NoError(t, err)
		s.addCategory(t, other.ID, "LAIN", 100)

		tree, err := s.tree.BuildTree(ctx, tplID)
		require.NoError(t, err)

		seen := map[string]bool{}
		var walk func(nodes []models.TreeNode, parent string)
		walk = func(nodes []models.TreeNode, parent string) {
			for i, n := range nodes {
				assert.False(t, seen[n.ID], "node %s appears twice", n.ID)
				seen[n.ID] = true
				assert.Equal(t, parent, n.ParentID)
				assert.NotNil(t, n.Children, "node %s", n.ID)
				if i > 0 && nodes[i-1].Type == n.Type {
					assert.LessOrEqual(t, nodes[i-1].Order, n.Order)
				}
				walk(n.Children, n.ID)
			}
		}
		walk(tree, "")

		assert.Len(t, seen, 3+3+3+2, "parallel=%v", parallel)
		assert.True(t, seen[models.NodeID(models.KindSubCategory, empty.ID)])
		assert.False(t, seen[models.NodeID(models.KindIndicator, gone.ID)])

		codes := []string{}
		for _, c := range tree {
			codes = append(codes, c.Code)
		}
		assert.Equal(t, []string{"ADM", "PEN", "REV"}, codes)

		penNode := tree[1]
		require.Len(t, penNode.Children, 3)
		assert.Equal(t, []models.EntityKind{models.KindSubCategory, models.KindSubCategory, models.KindEssay},
			[]models.EntityKind{penNode.Children[0].Type, penNode.Children[1].Type, penNode.Children[2].Type})
		assert.Empty(t, penNode.Children[0].Children)
	}
}

func TestBuildTreeFollowsReorder(t *testing.T) {
	s := newServices(t, defaultConfig())
	ctx := context.Background()
	tplID := s.fixtures.Template.ID
	pen := s.addCategory(t, tplID, "PEN", 20)

	require.NoError(t, s.reorder.Reorder(ctx, models.ReorderRequest{
		Kind: models.KindCategory,
		Items: []models.ReorderItem{
			{ID: pen.ID},
			{ID: s.fixtures.Category.ID},
		},
	}, admin))

	tree, err := s.tree.BuildTree(ctx, tplID)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "PEN", tree[0].Code)
	assert.Equal(t, 1, tree[0].Order)
	assert.Equal(t, "ADM", tree[1].Code)
}

func TestBuildTreeEmptyAndMissing(t *testing.T) {
	s := newServices(t, defaultConfig())
	ctx := context.Background()

	empty, err := s.tpl.CreateTemplate(ctx, models.TemplateInput{Name: "Kosong", Type: models.TemplateTypeAkreditasi}, admin)
	require.NoError(t, err)
	tree, err := s.tree.BuildTree(ctx, empty.ID)
	require.NoError(t, err)
	assert.NotNil(t, tree)
	assert.Empty(t, tree)

	_, err = s.tree.BuildTree(ctx, 9999)
	var nf *apperrors.NotFoundError
	assert.ErrorAs(t, err, &nf)
}
