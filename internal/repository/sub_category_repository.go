package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"akreditasi-jurnal/internal/apperrors"
	"akreditasi-jurnal/internal/models"
)

// SubCategoryRepository handles database operations for sub-categories (Sub-Unsur)
type SubCategoryRepository struct {
	q DBTX
}

// NewSubCategoryRepository creates a new sub-category repository
func NewSubCategoryRepository(q DBTX) *SubCategoryRepository {
	return &SubCategoryRepository{q: q}
}

const subCategoryColumns = `sc.id, sc.category_id, sc.code, sc.name, sc.description, sc.display_order, sc.created_at, sc.updated_at`

func scanSubCategory(s scanner, sc *models.SubCategory) error {
	return s.Scan(
		&sc.ID,
		&sc.CategoryID,
		&sc.Code,
		&sc.Name,
		&sc.Description,
		&sc.DisplayOrder,
		&sc.CreatedAt,
		&sc.UpdatedAt,
	)
}

func (r *SubCategoryRepository) querySubCategories(ctx context.Context, query string, args ...any) ([]models.SubCategory, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sub-categories: %w", err)
	}
	defer rows.Close()

	subCategories := []models.SubCategory{}
	for rows.Next() {
		var sc models.SubCategory
		if err := scanSubCategory(rows, &sc); err != nil {
			return nil, err
		}
		subCategories = append(subCategories, sc)
	}
	return subCategories, rows.Err()
}

// CreateSubCategory inserts a sub-category
func (r *SubCategoryRepository) CreateSubCategory(ctx context.Context, sc *models.SubCategory) error {
	query := `
		INSERT INTO sub_categories (category_id, code, name, description, display_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRowContext(ctx, query,
		sc.CategoryID,
		sc.Code,
		sc.Name,
		sc.Description,
		sc.DisplayOrder,
	).Scan(&sc.ID, &sc.CreatedAt, &sc.UpdatedAt)
	if err != nil {
		return mapWriteError(err, "sub-category", sc.Code)
	}
	return nil
}

// GetSubCategory retrieves a live sub-category by ID
func (r *SubCategoryRepository) GetSubCategory(ctx context.Context, id uint) (*models.SubCategory, error) {
	query := `SELECT ` + subCategoryColumns + ` FROM sub_categories sc WHERE sc.id = $1 AND sc.deleted_at IS NULL`

	sc := &models.SubCategory{}
	err := scanSubCategory(r.q.QueryRowContext(ctx, query, id), sc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sub-category: %w", err)
	}
	return sc, nil
}

// ListSubCategories lists the live sub-categories of a category in display order
func (r *SubCategoryRepository) ListSubCategories(ctx context.Context, categoryID uint) ([]models.SubCategory, error) {
	return r.querySubCategories(ctx, `SELECT `+subCategoryColumns+` FROM sub_categories sc
		WHERE sc.category_id = $1 AND sc.deleted_at IS NULL
		ORDER BY sc.display_order, sc.id`, categoryID)
}

// ListSubCategoriesByTemplate lists every live sub-category below a template
func (r *SubCategoryRepository) ListSubCategoriesByTemplate(ctx context.Context, templateID uint) ([]models.SubCategory, error) {
	return r.querySubCategories(ctx, `SELECT `+subCategoryColumns+` FROM sub_categories sc
		JOIN categories c ON c.id = sc.category_id
		WHERE c.template_id = $1 AND c.deleted_at IS NULL AND sc.deleted_at IS NULL
		ORDER BY sc.category_id, sc.display_order, sc.id`, templateID)
}

// UpdateSubCategory updates the writable fields of a sub-category
func (r *SubCategoryRepository) UpdateSubCategory(ctx context.Context, sc *models.SubCategory) error {
	query := `
		UPDATE sub_categories
		SET code = $1, name = $2, description = $3, display_order = $4, updated_at = NOW()
		WHERE id = $5 AND deleted_at IS NULL
		RETURNING updated_at
	`

	err := r.q.QueryRowContext(ctx, query,
		sc.Code,
		sc.Name,
		sc.Description,
		sc.DisplayOrder,
		sc.ID,
	).Scan(&sc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound("sub-category", sc.ID)
	}
	if err != nil {
		return mapWriteError(err, "sub-category", sc.Code)
	}
	return nil
}

// SoftDeleteSubCategory marks a sub-category and its indicators as deleted
func (r *SubCategoryRepository) SoftDeleteSubCategory(ctx context.Context, id uint) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE sub_categories SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sub-category: %w", err)
	}
	if err := expectAffected(res, "sub-category", id); err != nil {
		return err
	}

	if _, err := r.q.ExecContext(ctx,
		`UPDATE indicators SET deleted_at = NOW() WHERE deleted_at IS NULL AND sub_category_id = $1`, id); err != nil {
		return fmt.Errorf("failed to cascade sub-category delete: %w", err)
	}
	return nil
}
