package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"akreditasi-jurnal/internal/apperrors"
	"akreditasi-jurnal/internal/models"
)

// TemplateRepository handles database operations for evaluation templates
type TemplateRepository struct {
	q DBTX
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(q DBTX) *TemplateRepository {
	return &TemplateRepository{q: q}
}

const templateColumns = `id, name, description, version, type, is_active, effective_date, created_at, updated_at`

func scanTemplate(s scanner, t *models.Template) error {
	return s.Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.Version,
		&t.Type,
		&t.IsActive,
		&t.EffectiveDate,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
}

// CreateTemplate inserts a template
func (r *TemplateRepository) CreateTemplate(ctx context.Context, t *models.Template) error {
	query := `
		INSERT INTO evaluation_templates (name, description, version, type, is_active, effective_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRowContext(ctx, query,
		t.Name,
		t.Description,
		t.Version,
		t.Type,
		t.IsActive,
		t.EffectiveDate,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return mapWriteError(err, "template", t.Name)
	}
	return nil
}

// GetTemplate retrieves a live template by ID
func (r *TemplateRepository) GetTemplate(ctx context.Context, id uint) (*models.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM evaluation_templates WHERE id = $1 AND deleted_at IS NULL`

	t := &models.Template{}
	err := scanTemplate(r.q.QueryRowContext(ctx, query, id), t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return t, nil
}

// GetTemplateByName retrieves a live template by its unique name
func (r *TemplateRepository) GetTemplateByName(ctx context.Context, name string) (*models.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM evaluation_templates WHERE name = $1 AND deleted_at IS NULL`

	t := &models.Template{}
	err := scanTemplate(r.q.QueryRowContext(ctx, query, name), t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template by name: %w", err)
	}
	return t, nil
}

// ListTemplates lists live templates, newest effective date first
func (r *TemplateRepository) ListTemplates(ctx context.Context, filter models.TemplateFilter) ([]models.Template, error) {
	conditions := []string{"deleted_at IS NULL"}
	var args []any
	if filter.Type != nil {
		args = append(args, *filter.Type)
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)))
	}

	query := `SELECT ` + templateColumns + ` FROM evaluation_templates
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY effective_date DESC NULLS LAST, id DESC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	templates := []models.Template{}
	for rows.Next() {
		var t models.Template
		if err := scanTemplate(rows, &t); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// UpdateTemplate updates the writable fields of a template
func (r *TemplateRepository) UpdateTemplate(ctx context.Context, t *models.Template) error {
	query := `
		UPDATE evaluation_templates
		SET name = $1, description = $2, version = $3, type = $4, is_active = $5,
		    effective_date = $6, updated_at = NOW()
		WHERE id = $7 AND deleted_at IS NULL
		RETURNING updated_at
	`

	err := r.q.QueryRowContext(ctx, query,
		t.Name,
		t.Description,
		t.Version,
		t.Type,
		t.IsActive,
		t.EffectiveDate,
		t.ID,
	).Scan(&t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound("template", t.ID)
	}
	if err != nil {
		return mapWriteError(err, "template", t.Name)
	}
	return nil
}

// SoftDeleteTemplate marks a template and all of its descendants as deleted
func (r *TemplateRepository) SoftDeleteTemplate(ctx context.Context, id uint) error {
	cascade := []string{
		`UPDATE indicators SET deleted_at = NOW()
		 WHERE deleted_at IS NULL AND sub_category_id IN (
			SELECT sc.id FROM sub_categories sc
			JOIN categories c ON c.id = sc.category_id
			WHERE c.template_id = $1)`,
		`UPDATE essay_questions SET deleted_at = NOW()
		 WHERE deleted_at IS NULL AND category_id IN (SELECT id FROM categories WHERE template_id = $1)`,
		`UPDATE sub_categories SET deleted_at = NOW()
		 WHERE deleted_at IS NULL AND category_id IN (SELECT id FROM categories WHERE template_id = $1)`,
		`UPDATE categories SET deleted_at = NOW() WHERE deleted_at IS NULL AND template_id = $1`,
	}

	res, err := r.q.ExecContext(ctx,
		`UPDATE evaluation_templates SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	if err := expectAffected(res, "template", id); err != nil {
		return err
	}

	for _, stmt := range cascade {
		if _, err := r.q.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("failed to cascade template delete: %w", err)
		}
	}
	return nil
}

// CountActiveTemplates counts live active templates of a type
func (r *TemplateRepository) CountActiveTemplates(ctx context.Context, templateType models.TemplateType) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM evaluation_templates WHERE type = $1 AND is_active AND deleted_at IS NULL`,
		templateType,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active templates: %w", err)
	}
	return count, nil
}
