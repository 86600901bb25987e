package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"akreditasi-jurnal/internal/apperrors"
	"akreditasi-jurnal/internal/models"
)

// CategoryRepository handles database operations for categories (Unsur)
type CategoryRepository struct {
	q DBTX
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(q DBTX) *CategoryRepository {
	return &CategoryRepository{q: q}
}

const categoryColumns = `id, template_id, code, name, description, weight, display_order, created_at, updated_at`

func scanCategory(s scanner, c *models.Category) error {
	return s.Scan(
		&c.ID,
		&c.TemplateID,
		&c.Code,
		&c.Name,
		&c.Description,
		&c.Weight,
		&c.DisplayOrder,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}

// CreateCategory inserts a category
func (r *CategoryRepository) CreateCategory(ctx context.Context, c *models.Category) error {
	query := `
		INSERT INTO categories (template_id, code, name, description, weight, display_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRowContext(ctx, query,
		c.TemplateID,
		c.Code,
		c.Name,
		c.Description,
		c.Weight,
		c.DisplayOrder,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return mapWriteError(err, "category", c.Code)
	}
	return nil
}

// GetCategory retrieves a live category by ID
func (r *CategoryRepository) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1 AND deleted_at IS NULL`

	c := &models.Category{}
	err := scanCategory(r.q.QueryRowContext(ctx, query, id), c)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

// ListCategories lists the live categories of a template in display order
func (r *CategoryRepository) ListCategories(ctx context.Context, templateID uint) ([]models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories
		WHERE template_id = $1 AND deleted_at IS NULL
		ORDER BY display_order, id`

	rows, err := r.q.QueryContext(ctx, query, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := scanCategory(rows, &c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpdateCategory updates the writable fields of a category
func (r *CategoryRepository) UpdateCategory(ctx context.Context, c *models.Category) error {
	query := `
		UPDATE categories
		SET code = $1, name = $2, description = $3, weight = $4, display_order = $5, updated_at = NOW()
		WHERE id = $6 AND deleted_at IS NULL
		RETURNING updated_at
	`

	err := r.q.QueryRowContext(ctx, query,
		c.Code,
		c.Name,
		c.Description,
		c.Weight,
		c.DisplayOrder,
		c.ID,
	).Scan(&c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound("category", c.ID)
	}
	if err != nil {
		return mapWriteError(err, "category", c.Code)
	}
	return nil
}

// SoftDeleteCategory marks a category, its sub-categories, their indicators and its essays as deleted
func (r *CategoryRepository) SoftDeleteCategory(ctx context.Context, id uint) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE categories SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if err := expectAffected(res, "category", id); err != nil {
		return err
	}

	cascade := []string{
		`UPDATE indicators SET deleted_at = NOW()
		 WHERE deleted_at IS NULL AND sub_category_id IN (SELECT id FROM sub_categories WHERE category_id = $1)`,
		`UPDATE sub_categories SET deleted_at = NOW() WHERE deleted_at IS NULL AND category_id = $1`,
		`UPDATE essay_questions SET deleted_at = NOW() WHERE deleted_at IS NULL AND category_id = $1`,
	}
	for _, stmt := range cascade {
		if _, err := r.q.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("failed to cascade category delete: %w", err)
		}
	}
	return nil
}
