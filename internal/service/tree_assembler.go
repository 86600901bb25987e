package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"akreditasi-jurnal/internal/config"
	"akreditasi-jurnal/internal/models"
)

// TreeAssembler renders a template as a nested tree of categories,
// sub-categories, indicators and essay questions. It never writes.
type TreeAssembler struct {
	store    Store
	parallel bool
}

// NewTreeAssembler creates a tree assembler
func NewTreeAssembler(store Store, cfg config.EvaluationConfig) *TreeAssembler {
	return &TreeAssembler{store: store, parallel: cfg.TreeParallelLoad}
}

type treeRows struct {
	categories []models.Category
	subs       []models.SubCategory
	indicators []models.Indicator
	essays     []models.EssayQuestion
}

func (a *TreeAssembler) load(ctx context.Context, templateID uint) (*treeRows, error) {
	rows := &treeRows{}
	loaders := []func(ctx context.Context) error{
		func(ctx context.Context) (err error) {
			rows.categories, err = a.store.ListCategories(ctx, templateID)
			return err
		},
		func(ctx context.Context) (err error) {
			rows.subs, err = a.store.ListSubCategoriesByTemplate(ctx, templateID)
			return err
		},
		func(ctx context.Context) (err error) {
			rows.indicators, err = a.store.ListIndicatorsByTemplate(ctx, templateID)
			return err
		},
		func(ctx context.Context) (err error) {
			rows.essays, err = a.store.ListEssaysByTemplate(ctx, templateID)
			return err
		},
	}

	if !a.parallel || !a.store.Concurrent() {
		for _, load := range loaders {
			if err := load(ctx); err != nil {
				return nil, fmt.Errorf("failed to load template tree: %w", err)
			}
		}
		return rows, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, load := range loaders {
		g.Go(func() error { return load(gctx) })
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load template tree: %w", err)
	}
	return rows, nil
}

// BuildTree returns the category nodes of a template in display order.
// Sub-categories come before essay questions among a category's children.
// Legacy indicators are not part of any tree.
func (a *TreeAssembler) BuildTree(ctx context.Context, templateID uint) ([]models.TreeNode, error) {
	if err := requireTemplate(ctx, a.store, templateID); err != nil {
		return nil, err
	}
	rows, err := a.load(ctx, templateID)
	if err != nil {
		return nil, err
	}

	indicatorsBySub := map[uint][]models.TreeNode{}
	for _, ind := range rows.indicators {
		sub := ind.Placement.ParentID()
		if sub == 0 {
			continue
		}
		weight, active := ind.Weight, ind.IsActive
		indicatorsBySub[sub] = append(indicatorsBySub[sub], models.TreeNode{
			ID:          models.NodeID(models.KindIndicator, ind.ID),
			Type:        models.KindIndicator,
			EntityID:    ind.ID,
			ParentID:    models.NodeID(models.KindSubCategory, sub),
			Code:        ind.Code,
			Title:       ind.Question,
			Description: ind.Description,
			Weight:      &weight,
			Order:       ind.SortOrder,
			IsActive:    &active,
			Children:    []models.TreeNode{},
		})
	}

	childrenByCategory := map[uint][]models.TreeNode{}
	for _, sc := range rows.subs {
		children := indicatorsBySub[sc.ID]
		if children == nil {
			children = []models.TreeNode{}
		}
		sortNodes(children)
		childrenByCategory[sc.CategoryID] = append(childrenByCategory[sc.CategoryID], models.TreeNode{
			ID:          models.NodeID(models.KindSubCategory, sc.ID),
			Type:        models.KindSubCategory,
			EntityID:    sc.ID,
			ParentID:    models.NodeID(models.KindCategory, sc.CategoryID),
			Code:        sc.Code,
			Title:       sc.Name,
			Description: sc.Description,
			Order:       sc.DisplayOrder,
			Children:    children,
		})
	}
	for id := range childrenByCategory {
		sortNodes(childrenByCategory[id])
	}

	essaysByCategory := map[uint][]models.TreeNode{}
	for _, e := range rows.essays {
		active := e.IsActive
		essaysByCategory[e.CategoryID] = append(essaysByCategory[e.CategoryID], models.TreeNode{
			ID:          models.NodeID(models.KindEssay, e.ID),
			Type:        models.KindEssay,
			EntityID:    e.ID,
			ParentID:    models.NodeID(models.KindCategory, e.CategoryID),
			Code:        e.Code,
			Title:       e.Question,
			Description: e.Guidance,
			Order:       e.DisplayOrder,
			IsActive:    &active,
			Children:    []models.TreeNode{},
		})
	}

	tree := make([]models.TreeNode, 0, len(rows.categories))
	for _, c := range rows.categories {
		essays := essaysByCategory[c.ID]
		sortNodes(essays)
		children := append(childrenByCategory[c.ID], essays...)
		if children == nil {
			children = []models.TreeNode{}
		}
		weight := c.Weight
		tree = append(tree, models.TreeNode{
			ID:          models.NodeID(models.KindCategory, c.ID),
			Type:        models.KindCategory,
			EntityID:    c.ID,
			Code:        c.Code,
			Title:       c.Name,
			Description: c.Description,
			Weight:      &weight,
			Order:       c.DisplayOrder,
			Children:    children,
		})
	}
	sortNodes(tree)
	return tree, nil
}

// sortNodes orders siblings by order value, then by entity id
func sortNodes(nodes []models.TreeNode) {
	slices.SortStableFunc(nodes, func(a, b models.TreeNode) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.EntityID, b.EntityID)
	})
}
