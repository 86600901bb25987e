package service

import (
	"context"
	"fmt"
	"log/slog"

	"akreditasi-jurnal/internal/apperrors"
	"akreditasi-jurnal/internal/models"
	"akreditasi-jurnal/pkg/validator"
)

func requireSubCategory(ctx context.Context, store Store, id uint) error {
	sc, err := store.GetSubCategory(ctx, id)
	if err != nil {
		return err
	}
	if sc == nil {
		return apperrors.NotFound("sub-category", id)
	}
	return nil
}

func indicatorInput(in *models.IndicatorInput) (models.IndicatorPlacement, error) {
	in.Code = validator.SanitizeString(in.Code)
	in.Question = validator.SanitizeString(in.Question)
	in.LegacyCategory = validator.SanitizeString(in.LegacyCategory)
	in.LegacySubCategory = validator.SanitizeString(in.LegacySubCategory)
	if err := validate(in); err != nil {
		return models.IndicatorPlacement{}, err
	}
	placement := in.Placement()
	if err := placement.Validate(); err != nil {
		return models.IndicatorPlacement{}, apperrors.NewValidationError("placement", err.Error())
	}
	return placement, nil
}

// CreateIndicator creates an indicator, either inside a sub-category or with
// a legacy free-text classification
func (s *TemplateService) CreateIndicator(ctx context.Context, in models.IndicatorInput, actor models.Actor) (*models.Indicator, error) {
	placement, err := indicatorInput(&in)
	if err != nil {
		return nil, err
	}

	ind := &models.Indicator{
		Placement:          placement,
		Code:               in.Code,
		Question:           in.Question,
		Description:        in.Description,
		Weight:             roundWeight(in.Weight),
		AnswerType:         in.AnswerType,
		RequiresAttachment: in.RequiresAttachment,
		SortOrder:          in.SortOrder,
		IsActive:           in.IsActive == nil || *in.IsActive,
	}

	err = s.store.InTx(ctx, func(tx Store) error {
		if !placement.IsLegacy() {
			if err := requireSubCategory(ctx, tx, placement.SubCategoryID); err != nil {
				return err
			}
		}
		if ind.SortOrder == 0 {
			next, err := tx.NextOrder(ctx, models.KindIndicator, placement.ParentID())
			if err != nil {
				return err
			}
			ind.SortOrder = next
		}
		if err := tx.CreateIndicator(ctx, ind); err != nil {
			return err
		}
		return audit(ctx, tx, actor, "create", models.KindIndicator,
			fmt.Sprintf("Created %s indicator %s (ID: %d)", placement.Mode, ind.Code, ind.ID))
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Indicator created", "id", ind.ID, "code", ind.Code, "mode", placement.Mode)
	return ind, nil
}

// GetIndicator retrieves an indicator by ID
func (s *TemplateService) GetIndicator(ctx context.Context, id uint) (*models.Indicator, error) {
	ind, err := s.store.GetIndicator(ctx, id)
	if err != nil {
		return nil, err
	}
	if ind == nil {
		return nil, apperrors.NotFound("indicator", id)
	}
	return ind, nil
}

// ListIndicators lists the indicators of a sub-category in sort order
func (s *TemplateService) ListIndicators(ctx context.Context, subCategoryID uint) ([]models.Indicator, error) {
	if err := requireSubCategory(ctx, s.store, subCategoryID); err != nil {
		return nil, err
	}
	return s.store.ListIndicators(ctx, subCategoryID)
}

// ListLegacyIndicators lists indicators still waiting for migration into the hierarchy
func (s *TemplateService) ListLegacyIndicators(ctx context.Context) ([]models.Indicator, error) {
	return s.store.ListLegacyIndicators(ctx)
}

// UpdateIndicator replaces the writable fields of an indicator. A hierarchical
// indicator can move to another sub-category but never back to legacy mode.
func (s *TemplateService) UpdateIndicator(ctx context.Context, id uint, in models.IndicatorInput, actor models.Actor) (*models.Indicator, error) {
	placement, err := indicatorInput(&in)
	if err != nil {
		return nil, err
	}

	var ind *models.Indicator
	err = s.store.InTx(ctx, func(tx Store) error {
		existing, err := tx.GetIndicator(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return apperrors.NotFound("indicator", id)
		}
		if !existing.Placement.IsLegacy() && placement.IsLegacy() {
			return apperrors.NewValidationError("sub_category_id", "hierarchical indicators cannot return to legacy placement")
		}
		if !placement.IsLegacy() {
			if err := requireSubCategory(ctx, tx, placement.SubCategoryID); err != nil {
				return err
			}
		}

		moved := existing.Placement != placement
		ind = existing
		ind.Placement = placement
		ind.Code = in.Code
		ind.Question = in.Question
		ind.Description = in.Description
		ind.Weight = roundWeight(in.Weight)
		ind.AnswerType = in.AnswerType
		ind.RequiresAttachment = in.RequiresAttachment
		switch {
		case in.SortOrder != 0:
			ind.SortOrder = in.SortOrder
		case moved && !placement.IsLegacy():
			// Appended to the siblings of its new sub-category
			if ind.SortOrder, err = tx.NextOrder(ctx, models.KindIndicator, placement.SubCategoryID); err != nil {
				return err
			}
		}
		if in.IsActive != nil {
			ind.IsActive = *in.IsActive
		}
		if err := tx.UpdateIndicator(ctx, ind); err != nil {
			return err
		}
		return audit(ctx, tx, actor, "update", models.KindIndicator,
			fmt.Sprintf("Updated indicator %s (ID: %d)", ind.Code, ind.ID))
	})
	if err != nil {
		return nil, err
	}
	return ind, nil
}

// MigrateIndicator moves a legacy indicator into a sub-category. The move is
// one-way; migrating a hierarchical indicator is rejected.
func (s *TemplateService) MigrateIndicator(ctx context.Context, id uint, req models.MigrateIndicatorRequest, actor models.Actor) (*models.Indicator, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var ind *models.Indicator
	err := s.store.InTx(ctx, func(tx Store) error {
		existing, err := tx.GetIndicator(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return apperrors.NotFound("indicator", id)
		}
		if !existing.Placement.IsLegacy() {
			return apperrors.NewValidationError("sub_category_id", "indicator is already part of the hierarchy")
		}
		if err := requireSubCategory(ctx, tx, req.SubCategoryID); err != nil {
			return err
		}

		legacy := existing.Placement
		ind = existing
		ind.Placement = models.HierarchicalPlacement(req.SubCategoryID)
		if ind.SortOrder, err = tx.NextOrder(ctx, models.KindIndicator, req.SubCategoryID); err != nil {
			return err
		}
		if err := tx.UpdateIndicator(ctx, ind); err != nil {
			return err
		}
		return audit(ctx, tx, actor, "migrate", models.KindIndicator,
			fmt.Sprintf("Migrated indicator %s from %q/%q to sub-category %d",
				ind.Code, legacy.LegacyCategory, legacy.LegacySubCategory, req.SubCategoryID))
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Indicator migrated", "id", id, "sub_category_id", req.SubCategoryID, "user_id", actor.UserID)
	return ind, nil
}

// DeleteIndicator soft-deletes an indicator once the deletion guard allows it
func (s *TemplateService) DeleteIndicator(ctx context.Context, id uint, actor models.Actor) error {
	return s.guardedDelete(ctx, models.KindIndicator, id, actor, func(tx Store) error {
		return tx.SoftDeleteIndicator(ctx, id)
	})
}

// CreateEssay adds an essay question to a category
func (s *TemplateService) CreateEssay(ctx context.Context, categoryID uint, in models.EssayInput, actor models.Actor) (*models.EssayQuestion, error) {
	in.Code = validator.SanitizeString(in.Code)
	in.Question = validator.SanitizeString(in.Question)
	if err := validate(in); err != nil {
		return nil, err
	}

	e := &models.EssayQuestion{
		CategoryID:   categoryID,
		Code:         in.Code,
		Question:     in.Question,
		Guidance:     in.Guidance,
		MaxWords:     in.MaxWords,
		IsRequired:   in.IsRequired,
		IsActive:     in.IsActive == nil || *in.IsActive,
		DisplayOrder: in.DisplayOrder,
	}

	err := s.store.InTx(ctx, func(tx Store) error {
		parent, err := tx.GetCategory(ctx, categoryID)
		if err != nil {
			return err
		}
		if parent == nil {
			return apperrors.NotFound("category", categoryID)
		}
		if e.DisplayOrder == 0 {
			if e.DisplayOrder, err = tx.NextOrder(ctx, models.KindEssay, categoryID); err != nil {
				return err
			}
		}
		if err := tx.CreateEssay(ctx, e); err != nil {
			return err
		}
		return audit(ctx, tx, actor, "create", models.KindEssay,
			fmt.Sprintf("Created essay question %s in category %d (ID: %d)", e.Code, categoryID, e.ID))
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetEssay retrieves an essay question by ID
func (s *TemplateService) GetEssay(ctx context.Context, id uint) (*models.EssayQuestion, error) {
	e, err := s.store.GetEssay(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, apperrors.NotFound("essay question", id)
	}
	return e, nil
}

// ListEssays lists the essay questions of a category in display order
func (s *TemplateService) ListEssays(ctx context.Context, categoryID uint) ([]models.EssayQuestion, error) {
	if _, err := s.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	return s.store.ListEssays(ctx, categoryID)
}

// UpdateEssay replaces the writable fields of an essay question
func (s *TemplateService) UpdateEssay(ctx context.Context, id uint, in models.EssayInput, actor models.Actor) (*models.EssayQuestion, error) {
	in.Code = validator.SanitizeString(in.Code)
	in.Question = validator.SanitizeString(in.Question)
	if err := validate(in); err != nil {
		return nil, err
	}

	var e *models.EssayQuestion
	err := s.store.InTx(ctx, func(tx Store) error {
		existing, err := tx.GetEssay(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return apperrors.NotFound("essay question", id)
		}
		e = existing
		e.Code = in.Code
		e.Question = in.Question
		e.Guidance = in.Guidance
		e.MaxWords = in.MaxWords
		e.IsRequired = in.IsRequired
		if in.DisplayOrder != 0 {
			e.DisplayOrder = in.DisplayOrder
		}
		if in.IsActive != nil {
			e.IsActive = *in.IsActive
		}
		if err := tx.UpdateEssay(ctx, e); err != nil {
			return err
		}
		return audit(ctx, tx, actor, "update", models.KindEssay,
			fmt.Sprintf("Updated essay question %s (ID: %d)", e.Code, e.ID))
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteEssay soft-deletes an essay question. Essays carry no usage guard.
func (s *TemplateService) DeleteEssay(ctx context.Context, id uint, actor models.Actor) error {
	return s.guardedDelete(ctx, models.KindEssay, id, actor, func(tx Store) error {
		return tx.SoftDeleteEssay(ctx, id)
	})
}
