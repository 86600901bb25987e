package service

import (
	"context"
	"fmt"
	"math"

	"akreditasi-jurnal/internal/apperrors"
	"akreditasi-jurnal/internal/config"
	"akreditasi-jurnal/internal/models"
)

// WeightAccountant reports category weight totals. It only rejects writes in
// strict mode.
type WeightAccountant struct {
	store    Store
	strict   bool
	maxTotal float64
}

// NewWeightAccountant creates a weight accountant
func NewWeightAccountant(store Store, cfg config.EvaluationConfig) *WeightAccountant {
	return &WeightAccountant{
		store:    store,
		strict:   cfg.WeightStrictMode,
		maxTotal: cfg.MaxTotalWeight,
	}
}

// roundWeight keeps the two decimals of NUMERIC(6,2)
func roundWeight(w float64) float64 {
	return math.Round(w*100) / 100
}

func sumCategoryWeights(categories []models.Category, exceptID uint) float64 {
	var total float64
	for _, c := range categories {
		if c.ID != exceptID {
			total += c.Weight
		}
	}
	return roundWeight(total)
}

// TotalWeight sums the weights of the live categories of a template
func (a *WeightAccountant) TotalWeight(ctx context.Context, templateID uint) (float64, error) {
	if err := requireTemplate(ctx, a.store, templateID); err != nil {
		return 0, err
	}
	categories, err := a.store.ListCategories(ctx, templateID)
	if err != nil {
		return 0, fmt.Errorf("failed to list categories: %w", err)
	}
	return sumCategoryWeights(categories, 0), nil
}

// Summary returns the total and a per-category breakdown of a template
func (a *WeightAccountant) Summary(ctx context.Context, templateID uint) (*models.WeightSummary, error) {
	if err := requireTemplate(ctx, a.store, templateID); err != nil {
		return nil, err
	}
	categories, err := a.store.ListCategories(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	subs, err := a.store.ListSubCategoriesByTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sub-categories: %w", err)
	}
	indicators, err := a.store.ListIndicatorsByTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list indicators: %w", err)
	}

	categoryOfSub := make(map[uint]uint, len(subs))
	for _, sc := range subs {
		categoryOfSub[sc.ID] = sc.CategoryID
	}
	counts := map[uint]int{}
	weights := map[uint]float64{}
	for _, ind := range indicators {
		cid := categoryOfSub[ind.Placement.SubCategoryID]
		counts[cid]++
		weights[cid] += ind.Weight
	}

	total := sumCategoryWeights(categories, 0)
	summary := &models.WeightSummary{
		TemplateID:      templateID,
		TotalWeight:     total,
		MaxTotalWeight:  a.maxTotal,
		RemainingWeight: roundWeight(a.maxTotal - total),
		ExceedsLimit:    total > a.maxTotal,
		Categories:      make([]models.CategoryWeight, 0, len(categories)),
	}
	for _, c := range categories {
		summary.Categories = append(summary.Categories, models.CategoryWeight{
			CategoryID:           c.ID,
			Code:                 c.Code,
			Name:                 c.Name,
			Weight:               c.Weight,
			IndicatorCount:       counts[c.ID],
			IndicatorWeightTotal: roundWeight(weights[c.ID]),
		})
	}
	return summary, nil
}

// CategoryStatistics aggregates the contents of one category
func (a *WeightAccountant) CategoryStatistics(ctx context.Context, categoryID uint) (*models.CategoryStatistics, error) {
	c, err := a.store.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperrors.NotFound("category", categoryID)
	}

	stats := &models.CategoryStatistics{CategoryID: categoryID}

	subs, err := a.store.ListSubCategories(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sub-categories: %w", err)
	}
	stats.SubCategoryCount = len(subs)
	var weight float64
	for _, sc := range subs {
		indicators, err := a.store.ListIndicators(ctx, sc.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list indicators: %w", err)
		}
		for _, ind := range indicators {
			stats.IndicatorCount++
			if ind.IsActive {
				stats.ActiveIndicatorCount++
			}
			weight += ind.Weight
		}
	}
	stats.IndicatorWeightTotal = roundWeight(weight)

	essays, err := a.store.ListEssays(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list essay questions: %w", err)
	}
	stats.EssayCount = len(essays)
	for _, e := range essays {
		if e.IsRequired {
			stats.RequiredEssayCount++
		}
	}
	return stats, nil
}

// checkCategoryWeight rejects, in strict mode, a category weight that would
// push the template total above the limit. categoryID is 0 for a new category.
func (a *WeightAccountant) checkCategoryWeight(ctx context.Context, templateID, categoryID uint, weight float64) error {
	if !a.strict {
		return nil
	}
	categories, err := a.store.ListCategories(ctx, templateID)
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}
	total := roundWeight(sumCategoryWeights(categories, categoryID) + weight)
	if total > a.maxTotal {
		return apperrors.NewValidationError("weight",
			fmt.Sprintf("template total would be %.2f, above the limit of %.2f", total, a.maxTotal))
	}
	return nil
}

func requireTemplate(ctx context.Context, store Store, id uint) error {
	t, err := store.GetTemplate(ctx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return apperrors.NotFound("template", id)
	}
	return nil
}
