package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"akreditasi-jurnal/internal/apperrors"
	"akreditasi-jurnal/internal/config"
	"akreditasi-jurnal/internal/models"
	"akreditasi-jurnal/pkg/validator"
)

// TemplateService handles the CRUD of templates, categories, sub-categories,
// indicators and essay questions. Every mutation runs in one transaction
// together with its audit row.
type TemplateService struct {
	store Store
	cfg   config.EvaluationConfig
}

// NewTemplateService creates a new template service
func NewTemplateService(store Store, cfg config.EvaluationConfig) *TemplateService {
	return &TemplateService{store: store, cfg: cfg}
}

func parseEffectiveDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	d, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, apperrors.NewValidationError("effective_date", "must be a date in format 2006-01-02")
	}
	return &d, nil
}

func (s *TemplateService) templateFromInput(in *models.TemplateInput) (*models.Template, error) {
	in.Name = validator.SanitizeString(in.Name)
	in.Version = validator.SanitizeString(in.Version)
	if err := validate(in); err != nil {
		return nil, err
	}
	effective, err := parseEffectiveDate(in.EffectiveDate)
	if err != nil {
		return nil, err
	}
	return &models.Template{
		Name:          in.Name,
		Description:   in.Description,
		Version:       in.Version,
		Type:          in.Type,
		IsActive:      in.IsActive,
		EffectiveDate: effective,
	}, nil
}

// CreateTemplate creates a new template
func (s *TemplateService) CreateTemplate(ctx context.Context, in models.TemplateInput, actor models.Actor) (*models.Template, error) {
	t, err := s.templateFromInput(&in)
	if err != nil {
		return nil, err
	}

	err = s.store.InTx(ctx, func(tx Store) error {
		if err := tx.CreateTemplate(ctx, t); err != nil {
			return err
		}
		return audit(ctx, tx, actor, "create", models.KindTemplate,
			fmt.Sprintf("Created template: %s (ID: %d)", t.Name, t.ID))
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Template created", "id", t.ID, "name", t.Name, "user_id", actor.UserID)
	return t, nil
}

// GetTemplate retrieves a template by ID
func (s *TemplateService) GetTemplate(ctx context.Context, id uint) (*models.Template, error) {
	t, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperrors.NotFound("template", id)
	}
	return t, nil
}

// ListTemplates lists templates matching filter
func (s *TemplateService) ListTemplates(ctx context.Context, filter models.TemplateFilter) ([]models.Template, error) {
	if filter.Type != nil && !filter.Type.Valid() {
		return nil, apperrors.NewValidationError("type", "must be one of: akreditasi, indeksasi")
	}
	return s.store.ListTemplates(ctx, filter)
}

// UpdateTemplate replaces the writable fields of a template
func (s *TemplateService) UpdateTemplate(ctx context.Context, id uint, in models.TemplateInput, actor models.Actor) (*models.Template, error) {
	t, err := s.templateFromInput(&in)
	if err != nil {
		return nil, err
	}
	t.ID = id

	err = s.store.InTx(ctx, func(tx Store) error {
		existing, err := tx.GetTemplate(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return apperrors.NotFound("template", id)
		}
		if err := tx.UpdateTemplate(ctx, t); err != nil {
			return err
		}
		t.CreatedAt = existing.CreatedAt
		return audit(ctx, tx, actor, "update", models.KindTemplate,
			fmt.Sprintf("Updated template: %s (ID: %d)", t.Name, t.ID))
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Template updated", "id", t.ID, "user_id", actor.UserID)
	return t, nil
}

// DeleteTemplate soft-deletes a template and its whole subtree once the
// deletion guard allows it. Guard and delete share one transaction.
func (s *TemplateService) DeleteTemplate(ctx context.Context, id uint, actor models.Actor) error {
	return s.guardedDelete(ctx, models.KindTemplate, id, actor, func(tx Store) error {
		return tx.SoftDeleteTemplate(ctx, id)
	})
}

func (s *TemplateService) guardedDelete(ctx context.Context, kind models.EntityKind, id uint, actor models.Actor, del func(tx Store) error) error {
	err := s.store.InTx(ctx, func(tx Store) error {
		if err := NewDeletionGuard(tx).enforce(ctx, kind, id); err != nil {
			return err
		}
		if err := del(tx); err != nil {
			return err
		}
		return audit(ctx, tx, actor, "delete", kind, fmt.Sprintf("Deleted %s (ID: %d)", entityName(kind), id))
	})
	if err != nil {
		return err
	}

	slog.Info("Entity deleted", "kind", kind, "id", id, "user_id", actor.UserID)
	return nil
}

// CreateCategory adds a category to a template
func (s *TemplateService) CreateCategory(ctx context.Context, templateID uint, in models.CategoryInput, actor models.Actor) (*models.Category, error) {
	in.Code = validator.SanitizeString(in.Code)
	in.Name = validator.SanitizeString(in.Name)
	if err := validate(in); err != nil {
		return nil, err
	}

	c := &models.Category{
		TemplateID:   templateID,
		Code:         in.Code,
		Name:         in.Name,
		Description:  in.Description,
		Weight:       roundWeight(in.Weight),
		DisplayOrder: in.DisplayOrder,
	}

	err := s.store.InTx(ctx, func(tx Store) error {
		if err := requireTemplate(ctx, tx, templateID); err != nil {
			return err
		}
		if err := NewWeightAccountant(tx, s.cfg).checkCategoryWeight(ctx, templateID, 0, c.Weight); err != nil {
			return err
		}
		if c.DisplayOrder == 0 {
			next, err := tx.NextOrder(ctx, models.KindCategory, templateID)
			if err != nil {
				return err
			}
			c.DisplayOrder = next
		}
		if err := tx.CreateCategory(ctx, c); err != nil {
			return err
		}
		return audit(ctx, tx, actor, "create", models.KindCategory,
			fmt.Sprintf("Created category %s in template %d (ID: %d)", c.Code, templateID, c.ID))
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Category created", "id", c.ID, "template_id", templateID, "code", c.Code)
	return c, nil
}

// GetCategory retrieves a category by ID
func (s *TemplateService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperrors.NotFound("category", id)
	}
	return c, nil
}

// ListCategories lists the categories of a template in display order
func (s *TemplateService) ListCategories(ctx context.Context, templateID uint) ([]models.Category, error) {
	if err := requireTemplate(ctx, s.store, templateID); err != nil {
		return nil, err
	}
	return s.store.ListCategories(ctx, templateID)
}

// UpdateCategory replaces the writable fields of a category
func (s *TemplateService) UpdateCategory(ctx context.Context, id uint, in models.CategoryInput, actor models.Actor) (*models.Category, error) {
	in.Code = validator.SanitizeString(in.Code)
	in.Name = validator.SanitizeString(in.Name)
	if err := validate(in); err != nil {
		return nil, err
	}

	var c *models.Category
	err := s.store.InTx(ctx, func(tx Store) error {
		existing, err := tx.GetCategory(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return apperrors.NotFound("category", id)
		}
		c = existing
		c.Code = in.Code
		c.Name = in.Name
		c.Description = in.Description
		c.Weight = roundWeight(in.Weight)
		// Zero leaves the node where it is
		if in.DisplayOrder != 0 {
			c.DisplayOrder = in.DisplayOrder
		}

		if err := NewWeightAccountant(tx, s.cfg).checkCategoryWeight(ctx, c.TemplateID, c.ID, c.Weight); err != nil {
			return err
		}
		if err := tx.UpdateCategory(ctx, c); err != nil {
			return err
		}
		return audit(ctx, tx, actor, "update", models.KindCategory,
			fmt.Sprintf("Updated category %s (ID: %d)", c.Code, c.ID))
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategory soft-deletes a category with its sub-categories, indicators
// and essay questions once the deletion guard allows it
func (s *TemplateService) DeleteCategory(ctx context.Context, id uint, actor models.Actor) error {
	return s.guardedDelete(ctx, models.KindCategory, id, actor, func(tx Store) error {
		return tx.SoftDeleteCategory(ctx, id)
	})
}

// CreateSubCategory adds a sub-category to a category
func (s *TemplateService) CreateSubCategory(ctx context.Context, categoryID uint, in models.SubCategoryInput, actor models.Actor) (*models.SubCategory, error) {
	in.Code = validator.SanitizeString(in.Code)
	in.Name = validator.SanitizeString(in.Name)
	if err := validate(in); err != nil {
		return nil, err
	}

	sc := &models.SubCategory{
		CategoryID:   categoryID,
		Code:         in.Code,
		Name:         in.Name,
		Description:  in.Description,
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
		if sc.DisplayOrder == 0 {
			if sc.DisplayOrder, err = tx.NextOrder(ctx, models.KindSubCategory, categoryID); err != nil {
				return err
			}
		}
		if err := tx.CreateSubCategory(ctx, sc); err != nil {
			return err
		}
		return audit(ctx, tx, actor, "create", models.KindSubCategory,
			fmt.Sprintf("Created sub-category %s in category %d (ID: %d)", sc.Code, categoryID, sc.ID))
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Sub-category created", "id", sc.ID, "category_id", categoryID, "code", sc.Code)
	return sc, nil
}

// GetSubCategory retrieves a sub-category by ID
func (s *TemplateService) GetSubCategory(ctx context.Context, id uint) (*models.SubCategory, error) {
	sc, err := s.store.GetSubCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if sc == nil {
		return nil, apperrors.NotFound("sub-category", id)
	}
	return sc, nil
}

// ListSubCategories lists the sub-categories of a category in display order
func (s *TemplateService) ListSubCategories(ctx context.Context, categoryID uint) ([]models.SubCategory, error) {
	if _, err := s.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	return s.store.ListSubCategories(ctx, categoryID)
}

// UpdateSubCategory replaces the writable fields of a sub-category
func (s *TemplateService) UpdateSubCategory(ctx context.Context, id uint, in models.SubCategoryInput, actor models.Actor) (*models.SubCategory, error) {
	in.Code = validator.SanitizeString(in.Code)
	in.Name = validator.SanitizeString(in.Name)
	if err := validate(in); err != nil {
		return nil, err
	}

	var sc *models.SubCategory
	err := s.store.InTx(ctx, func(tx Store) error {
		existing, err := tx.GetSubCategory(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return apperrors.NotFound("sub-category", id)
		}
		sc = existing
		sc.Code = in.Code
		sc.Name = in.Name
		sc.Description = in.Description
		if in.DisplayOrder != 0 {
			sc.DisplayOrder = in.DisplayOrder
		}
		if err := tx.UpdateSubCategory(ctx, sc); err != nil {
			return err
		}
		return audit(ctx, tx, actor, "update", models.KindSubCategory,
			fmt.Sprintf("Updated sub-category %s (ID: %d)", sc.Code, sc.ID))
	})
	if err != nil {
		return nil, err
	}
	return sc, nil
}

// DeleteSubCategory soft-deletes a sub-category with its indicators once the
// deletion guard allows it
func (s *TemplateService) DeleteSubCategory(ctx context.Context, id uint, actor models.Actor) error {
	return s.guardedDelete(ctx, models.KindSubCategory, id, actor, func(tx Store) error {
		return tx.SoftDeleteSubCategory(ctx, id)
	})
}

// ListAuditLogs lists audit rows, newest first
func (s *TemplateService) ListAuditLogs(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error) {
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, apperrors.NewValidationError("limit", "limit and offset must not be negative")
	}
	return s.store.ListAuditLogs(ctx, filter)
}
