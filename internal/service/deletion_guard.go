package service

import (
	"context"
	"log/slog"

	"akreditasi-jurnal/internal/apperrors"
	"akreditasi-jurnal/internal/metrics"
	"akreditasi-jurnal/internal/models"
)

// DeletionGuard decides whether a node of the hierarchy may be deleted.
// A node is blocked when any live indicator below it was answered in a
// submitted assessment; templates are also blocked when they are the only
// active template of their type.
type DeletionGuard struct {
	store Store
}

// NewDeletionGuard creates a guard reading from store. Inside a delete
// transaction, pass the transaction store.
func NewDeletionGuard(store Store) *DeletionGuard {
	return &DeletionGuard{store: store}
}

func allowed(kind models.EntityKind, id uint) models.DeletionVerdict {
	return models.DeletionVerdict{Kind: kind, ID: id, Allowed: true}
}

func blocked(kind models.EntityKind, id uint, reason string, by []string) models.DeletionVerdict {
	return models.DeletionVerdict{Kind: kind, ID: id, Reason: reason, BlockedBy: by}
}

// CheckTemplate evaluates a template delete
func (g *DeletionGuard) CheckTemplate(ctx context.Context, id uint) (models.DeletionVerdict, error) {
	t, err := g.store.GetTemplate(ctx, id)
	if err != nil {
		return models.DeletionVerdict{}, err
	}
	if t == nil {
		return models.DeletionVerdict{}, apperrors.NotFound("template", id)
	}

	if t.IsActive {
		active, err := g.store.CountActiveTemplates(ctx, t.Type)
		if err != nil {
			return models.DeletionVerdict{}, err
		}
		if active <= 1 {
			return blocked(models.KindTemplate, id, apperrors.ReasonSoleActiveTemplate, nil), nil
		}
	}

	return g.checkUsage(ctx, models.KindTemplate, id)
}

// CheckCategory evaluates a category delete
func (g *DeletionGuard) CheckCategory(ctx context.Context, id uint) (models.DeletionVerdict, error) {
	c, err := g.store.GetCategory(ctx, id)
	if err != nil {
		return models.DeletionVerdict{}, err
	}
	if c == nil {
		return models.DeletionVerdict{}, apperrors.NotFound("category", id)
	}
	return g.checkUsage(ctx, models.KindCategory, id)
}

// CheckSubCategory evaluates a sub-category delete
func (g *DeletionGuard) CheckSubCategory(ctx context.Context, id uint) (models.DeletionVerdict, error) {
	sc, err := g.store.GetSubCategory(ctx, id)
	if err != nil {
		return models.DeletionVerdict{}, err
	}
	if sc == nil {
		return models.DeletionVerdict{}, apperrors.NotFound("sub-category", id)
	}
	return g.checkUsage(ctx, models.KindSubCategory, id)
}

// CheckIndicator evaluates an indicator delete. Only responses of assessments
// whose status is exactly "submitted" block it.
func (g *DeletionGuard) CheckIndicator(ctx context.Context, id uint) (models.DeletionVerdict, error) {
	ind, err := g.store.GetIndicator(ctx, id)
	if err != nil {
		return models.DeletionVerdict{}, err
	}
	if ind == nil {
		return models.DeletionVerdict{}, apperrors.NotFound("indicator", id)
	}

	used, err := g.store.HasSubmittedResponses(ctx, id)
	if err != nil {
		return models.DeletionVerdict{}, err
	}
	if used {
		return blocked(models.KindIndicator, id, apperrors.ReasonSubmittedUsage, []string{ind.Code}), nil
	}
	return allowed(models.KindIndicator, id), nil
}

// CheckEssay evaluates an essay question delete. Responses reference
// indicators only, so essays are never blocked.
func (g *DeletionGuard) CheckEssay(ctx context.Context, id uint) (models.DeletionVerdict, error) {
	e, err := g.store.GetEssay(ctx, id)
	if err != nil {
		return models.DeletionVerdict{}, err
	}
	if e == nil {
		return models.DeletionVerdict{}, apperrors.NotFound("essay question", id)
	}
	return allowed(models.KindEssay, id), nil
}

// Check dispatches to the check of kind
func (g *DeletionGuard) Check(ctx context.Context, kind models.EntityKind, id uint) (models.DeletionVerdict, error) {
	switch kind {
	case models.KindTemplate:
		return g.CheckTemplate(ctx, id)
	case models.KindCategory:
		return g.CheckCategory(ctx, id)
	case models.KindSubCategory:
		return g.CheckSubCategory(ctx, id)
	case models.KindIndicator:
		return g.CheckIndicator(ctx, id)
	case models.KindEssay:
		return g.CheckEssay(ctx, id)
	}
	return models.DeletionVerdict{}, apperrors.NewValidationError("kind", "unknown entity kind "+string(kind))
}

func (g *DeletionGuard) checkUsage(ctx context.Context, kind models.EntityKind, id uint) (models.DeletionVerdict, error) {
	codes, err := g.store.SubmittedIndicatorCodes(ctx, kind, id)
	if err != nil {
		return models.DeletionVerdict{}, err
	}
	if len(codes) > 0 {
		return blocked(kind, id, apperrors.ReasonSubmittedUsage, codes), nil
	}
	return allowed(kind, id), nil
}

// CanDeleteTemplate is the boolean form of CheckTemplate
func (g *DeletionGuard) CanDeleteTemplate(ctx context.Context, id uint) bool {
	return g.can(ctx, models.KindTemplate, id)
}

// CanDeleteCategory is the boolean form of CheckCategory
func (g *DeletionGuard) CanDeleteCategory(ctx context.Context, id uint) bool {
	return g.can(ctx, models.KindCategory, id)
}

// CanDeleteSubCategory is the boolean form of CheckSubCategory
func (g *DeletionGuard) CanDeleteSubCategory(ctx context.Context, id uint) bool {
	return g.can(ctx, models.KindSubCategory, id)
}

// CanDeleteIndicator is the boolean form of CheckIndicator
func (g *DeletionGuard) CanDeleteIndicator(ctx context.Context, id uint) bool {
	return g.can(ctx, models.KindIndicator, id)
}

// can fails closed: a lookup error answers false
func (g *DeletionGuard) can(ctx context.Context, kind models.EntityKind, id uint) bool {
	verdict, err := g.Check(ctx, kind, id)
	if err != nil {
		slog.Error("Deletion check failed", "kind", kind, "id", id, "error", err)
		return false
	}
	return verdict.Allowed
}

// enforce runs the check and converts a negative verdict into a DeletionBlockedError
func (g *DeletionGuard) enforce(ctx context.Context, kind models.EntityKind, id uint) error {
	verdict, err := g.Check(ctx, kind, id)
	if err != nil {
		return err
	}
	if verdict.Allowed {
		return nil
	}

	metrics.DeletionsBlockedTotal.WithLabelValues(string(kind), verdict.Reason).Inc()
	slog.Warn("Deletion blocked", "kind", kind, "id", id, "reason", verdict.Reason, "blocked_by", verdict.BlockedBy)
	return &apperrors.DeletionBlockedError{
		Entity:    entityName(kind),
		ID:        id,
		Reason:    verdict.Reason,
		BlockedBy: verdict.BlockedBy,
	}
}
