package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"akreditasi-jurnal/internal/apperrors"
	"akreditasi-jurnal/internal/models"
)

// IndicatorRepository handles database operations for indicators
type IndicatorRepository struct {
	q DBTX
}

// NewIndicatorRepository creates a new indicator repository
func NewIndicatorRepository(q DBTX) *IndicatorRepository {
	return &IndicatorRepository{q: q}
}

const indicatorColumns = `i.id, i.placement_mode, i.sub_category_id, i.legacy_category, i.legacy_sub_category,
	i.code, i.question, i.description, i.weight, i.answer_type, i.requires_attachment,
	i.sort_order, i.is_active, i.created_at, i.updated_at`

func scanIndicator(s scanner, ind *models.Indicator) error {
	var (
		subCategoryID     sql.NullInt64
		legacyCategory    sql.NullString
		legacySubCategory sql.NullString
	)
	err := s.Scan(
		&ind.ID,
		&ind.Placement.Mode,
		&subCategoryID,
		&legacyCategory,
		&legacySubCategory,
		&ind.Code,
		&ind.Question,
		&ind.Description,
		&ind.Weight,
		&ind.AnswerType,
		&ind.RequiresAttachment,
		&ind.SortOrder,
		&ind.IsActive,
		&ind.CreatedAt,
		&ind.UpdatedAt,
	)
	if err != nil {
		return err
	}
	ind.Placement.SubCategoryID = uint(subCategoryID.Int64)
	ind.Placement.LegacyCategory = legacyCategory.String
	ind.Placement.LegacySubCategory = legacySubCategory.String
	return nil
}

// placementArgs returns the column values of a placement with NULLs for the unused variant
func placementArgs(p models.IndicatorPlacement) (sql.NullInt64, sql.NullString, sql.NullString) {
	if p.IsLegacy() {
		return sql.NullInt64{},
			sql.NullString{String: p.LegacyCategory, Valid: true},
			sql.NullString{String: p.LegacySubCategory, Valid: p.LegacySubCategory != ""}
	}
	return sql.NullInt64{Int64: int64(p.SubCategoryID), Valid: true}, sql.NullString{}, sql.NullString{}
}

func (r *IndicatorRepository) queryIndicators(ctx context.Context, query string, args ...any) ([]models.Indicator, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list indicators: %w", err)
	}
	defer rows.Close()

	indicators := []models.Indicator{}
	for rows.Next() {
		var ind models.Indicator
		if err := scanIndicator(rows, &ind); err != nil {
			return nil, err
		}
		indicators = append(indicators, ind)
	}
	return indicators, rows.Err()
}

func (r *IndicatorRepository) getIndicator(ctx context.Context, where string, arg any) (*models.Indicator, error) {
	query := `SELECT ` + indicatorColumns + ` FROM indicators i WHERE ` + where + ` AND i.deleted_at IS NULL`

	ind := &models.Indicator{}
	err := scanIndicator(r.q.QueryRowContext(ctx, query, arg), ind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get indicator: %w", err)
	}
	return ind, nil
}

// CreateIndicator inserts an indicator
func (r *IndicatorRepository) CreateIndicator(ctx context.Context, ind *models.Indicator) error {
	query := `
		INSERT INTO indicators (placement_mode, sub_category_id, legacy_category, legacy_sub_category,
			code, question, description, weight, answer_type, requires_attachment, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`

	subCategoryID, legacyCategory, legacySubCategory := placementArgs(ind.Placement)
	err := r.q.QueryRowContext(ctx, query,
		ind.Placement.Mode,
		subCategoryID,
		legacyCategory,
		legacySubCategory,
		ind.Code,
		ind.Question,
		ind.Description,
		ind.Weight,
		ind.AnswerType,
		ind.RequiresAttachment,
		ind.SortOrder,
		ind.IsActive,
	).Scan(&ind.ID, &ind.CreatedAt, &ind.UpdatedAt)
	if err != nil {
		return mapWriteError(err, "indicator", ind.Code)
	}
	return nil
}

// GetIndicator retrieves a live indicator by ID
func (r *IndicatorRepository) GetIndicator(ctx context.Context, id uint) (*models.Indicator, error) {
	return r.getIndicator(ctx, "i.id = $1", id)
}

// GetIndicatorByCode retrieves a live indicator by its globally unique code
func (r *IndicatorRepository) GetIndicatorByCode(ctx context.Context, code string) (*models.Indicator, error) {
	return r.getIndicator(ctx, "i.code = $1", code)
}

// ListIndicators lists the live indicators of a sub-category in sort order
func (r *IndicatorRepository) ListIndicators(ctx context.Context, subCategoryID uint) ([]models.Indicator, error) {
	return r.queryIndicators(ctx, `SELECT `+indicatorColumns+` FROM indicators i
		WHERE i.sub_category_id = $1 AND i.deleted_at IS NULL
		ORDER BY i.sort_order, i.id`, subCategoryID)
}

// ListIndicatorsByTemplate lists every live hierarchical indicator below a template
func (r *IndicatorRepository) ListIndicatorsByTemplate(ctx context.Context, templateID uint) ([]models.Indicator, error) {
	return r.queryIndicators(ctx, `SELECT `+indicatorColumns+` FROM indicators i
		JOIN sub_categories sc ON sc.id = i.sub_category_id
		JOIN categories c ON c.id = sc.category_id
		WHERE c.template_id = $1
		  AND c.deleted_at IS NULL AND sc.deleted_at IS NULL AND i.deleted_at IS NULL
		ORDER BY i.sub_category_id, i.sort_order, i.id`, templateID)
}

// ListLegacyIndicators lists live indicators that still use the free-text classification
func (r *IndicatorRepository) ListLegacyIndicators(ctx context.Context) ([]models.Indicator, error) {
	return r.queryIndicators(ctx, `SELECT `+indicatorColumns+` FROM indicators i
		WHERE i.placement_mode = 'legacy' AND i.deleted_at IS NULL
		ORDER BY i.legacy_category, i.legacy_sub_category, i.sort_order, i.id`)
}

// UpdateIndicator updates the writable fields of an indicator, placement included
func (r *IndicatorRepository) UpdateIndicator(ctx context.Context, ind *models.Indicator) error {
	query := `
		UPDATE indicators
		SET placement_mode = $1, sub_category_id = $2, legacy_category = $3, legacy_sub_category = $4,
		    code = $5, question = $6, description = $7, weight = $8, answer_type = $9,
		    requires_attachment = $10, sort_order = $11, is_active = $12, updated_at = NOW()
		WHERE id = $13 AND deleted_at IS NULL
		RETURNING updated_at
	`

	subCategoryID, legacyCategory, legacySubCategory := placementArgs(ind.Placement)
	err := r.q.QueryRowContext(ctx, query,
		ind.Placement.Mode,
		subCategoryID,
		legacyCategory,
		legacySubCategory,
		ind.Code,
		ind.Question,
		ind.Description,
		ind.Weight,
		ind.AnswerType,
		ind.RequiresAttachment,
		ind.SortOrder,
		ind.IsActive,
		ind.ID,
	).Scan(&ind.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound("indicator", ind.ID)
	}
	if err != nil {
		return mapWriteError(err, "indicator", ind.Code)
	}
	return nil
}

// SoftDeleteIndicator marks an indicator as deleted
func (r *IndicatorRepository) SoftDeleteIndicator(ctx context.Context, id uint) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE indicators SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete indicator: %w", err)
	}
	return expectAffected(res, "indicator", id)
}
