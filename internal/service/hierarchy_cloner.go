package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"akreditasi-jurnal/internal/apperrors"
	"akreditasi-jurnal/internal/config"
	"akreditasi-jurnal/internal/metrics"
	"akreditasi-jurnal/internal/models"
	"akreditasi-jurnal/pkg/validator"
)

// maxCodeAttempts bounds the numeric suffixes tried for one cloned indicator code
const maxCodeAttempts = 1000

var templateSuffix = regexp.MustCompile(`-T\d+$`)

// HierarchyCloner deep-copies a template with its categories, sub-categories,
// indicators and essay questions. Assessment data is never copied.
type HierarchyCloner struct {
	store           Store
	activateDefault bool
}

// NewHierarchyCloner creates a cloner
func NewHierarchyCloner(store Store, cfg config.EvaluationConfig) *HierarchyCloner {
	return &HierarchyCloner{store: store, activateDefault: cfg.CloneActivate}
}

// CloneTemplate copies the source template under a new name in one transaction
func (c *HierarchyCloner) CloneTemplate(ctx context.Context, sourceID uint, req models.CloneRequest, actor models.Actor) (*models.Template, error) {
	req.Name = validator.SanitizeString(req.Name)
	if err := validate(req); err != nil {
		return nil, err
	}
	activate := c.activateDefault
	if req.Activate != nil {
		activate = *req.Activate
	}

	start := time.Now()
	var clone *models.Template
	err := c.store.InTx(ctx, func(tx Store) error {
		src, err := tx.GetTemplate(ctx, sourceID)
		if err != nil {
			return err
		}
		if src == nil {
			return apperrors.NotFound("template", sourceID)
		}
		existing, err := tx.GetTemplateByName(ctx, req.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			return &apperrors.DuplicateNameError{Entity: "template", Name: req.Name}
		}

		clone, err = copyTemplate(ctx, tx, src, req.Name, activate)
		if err != nil {
			var dup *apperrors.DuplicateNameError
			if errors.As(err, &dup) {
				return err
			}
			return &apperrors.CloneFailedError{SourceID: sourceID, Name: req.Name, Err: err}
		}

		return audit(ctx, tx, actor, "clone", models.KindTemplate,
			fmt.Sprintf("Cloned template %d as %q (ID: %d)", sourceID, clone.Name, clone.ID))
	})
	metrics.CloneDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ClonesTotal.WithLabelValues(metrics.ResultError).Inc()
		var (
			notFound *apperrors.NotFoundError
			dup      *apperrors.DuplicateNameError
			failed   *apperrors.CloneFailedError
		)
		if errors.As(err, &notFound) || errors.As(err, &dup) || errors.As(err, &failed) {
			return nil, err
		}
		return nil, &apperrors.CloneFailedError{SourceID: sourceID, Name: req.Name, Err: err}
	}

	metrics.ClonesTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	slog.Info("Template cloned", "source_id", sourceID, "clone_id", clone.ID, "name", clone.Name)
	return clone, nil
}

func copyTemplate(ctx context.Context, tx Store, src *models.Template, name string, activate bool) (*models.Template, error) {
	clone := &models.Template{
		Name:          name,
		Description:   src.Description,
		Version:       src.Version,
		Type:          src.Type,
		IsActive:      activate,
		EffectiveDate: src.EffectiveDate,
	}
	if err := tx.CreateTemplate(ctx, clone); err != nil {
		return nil, err
	}

	categories, err := tx.ListCategories(ctx, src.ID)
	if err != nil {
		return nil, err
	}
	for _, cat := range categories {
		newCat := cat
		newCat.ID = 0
		newCat.TemplateID = clone.ID
		if err := tx.CreateCategory(ctx, &newCat); err != nil {
			return nil, fmt.Errorf("category %s: %w", cat.Code, err)
		}

		subs, err := tx.ListSubCategories(ctx, cat.ID)
		if err != nil {
			return nil, err
		}
		for _, sc := range subs {
			newSub := sc
			newSub.ID = 0
			newSub.CategoryID = newCat.ID
			if err := tx.CreateSubCategory(ctx, &newSub); err != nil {
				return nil, fmt.Errorf("sub-category %s: %w", sc.Code, err)
			}

			indicators, err := tx.ListIndicators(ctx, sc.ID)
			if err != nil {
				return nil, err
			}
			for _, ind := range indicators {
				newInd := ind
				newInd.ID = 0
				newInd.Placement = models.HierarchicalPlacement(newSub.ID)
				newInd.Code, err = cloneIndicatorCode(ctx, tx, ind.Code, clone.ID)
				if err != nil {
					return nil, err
				}
				if err := tx.CreateIndicator(ctx, &newInd); err != nil {
					return nil, fmt.Errorf("indicator %s: %w", ind.Code, err)
				}
			}
		}

		essays, err := tx.ListEssays(ctx, cat.ID)
		if err != nil {
			return nil, err
		}
		for _, e := range essays {
			newEssay := e
			newEssay.ID = 0
			newEssay.CategoryID = newCat.ID
			if err := tx.CreateEssay(ctx, &newEssay); err != nil {
				return nil, fmt.Errorf("essay question %s: %w", e.Code, err)
			}
		}
	}
	return clone, nil
}

// cloneIndicatorCode derives a free code "<base>-T<templateID>", where base
// drops an earlier "-T<n>" suffix. Taken codes get "-2", "-3", ... appended.
func cloneIndicatorCode(ctx context.Context, tx Store, code string, templateID uint) (string, error) {
	base := fmt.Sprintf("%s-T%d", templateSuffix.ReplaceAllString(code, ""), templateID)
	candidate := base
	for n := 2; n <= maxCodeAttempts; n++ {
		existing, err := tx.GetIndicatorByCode(ctx, candidate)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	return "", &apperrors.DuplicateCodeError{Entity: "indicator", Code: base, Scope: "all indicators"}
}
