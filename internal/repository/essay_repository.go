package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"akreditasi-jurnal/internal/apperrors"
	"akreditasi-jurnal/internal/models"
)

// EssayRepository handles database operations for essay questions
type EssayRepository struct {
	q DBTX
}

// NewEssayRepository creates a new essay question repository
func NewEssayRepository(q DBTX) *EssayRepository {
	return &EssayRepository{q: q}
}

const essayColumns = `e.id, e.category_id, e.code, e.question, e.guidance, e.max_words,
	e.is_required, e.is_active, e.display_order, e.created_at, e.updated_at`

func scanEssay(s scanner, e *models.EssayQuestion) error {
	return s.Scan(
		&e.ID,
		&e.CategoryID,
		&e.Code,
		&e.Question,
		&e.Guidance,
		&e.MaxWords,
		&e.IsRequired,
		&e.IsActive,
		&e.DisplayOrder,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
}

func (r *EssayRepository) queryEssays(ctx context.Context, query string, args ...any) ([]models.EssayQuestion, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list essay questions: %w", err)
	}
	defer rows.Close()

	essays := []models.EssayQuestion{}
	for rows.Next() {
		var e models.EssayQuestion
		if err := scanEssay(rows, &e); err != nil {
			return nil, err
		}
		essays = append(essays, e)
	}
	return essays, rows.Err()
}

// CreateEssay inserts an essay question
func (r *EssayRepository) CreateEssay(ctx context.Context, e *models.EssayQuestion) error {
	query := `
		INSERT INTO essay_questions (category_id, code, question, guidance, max_words, is_required, is_active, display_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRowContext(ctx, query,
		e.CategoryID,
		e.Code,
		e.Question,
		e.Guidance,
		e.MaxWords,
		e.IsRequired,
		e.IsActive,
		e.DisplayOrder,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return mapWriteError(err, "essay question", e.Code)
	}
	return nil
}

// GetEssay retrieves a live essay question by ID
func (r *EssayRepository) GetEssay(ctx context.Context, id uint) (*models.EssayQuestion, error) {
	query := `SELECT ` + essayColumns + ` FROM essay_questions e WHERE e.id = $1 AND e.deleted_at IS NULL`

	e := &models.EssayQuestion{}
	err := scanEssay(r.q.QueryRowContext(ctx, query, id), e)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get essay question: %w", err)
	}
	return e, nil
}

// ListEssays lists the live essay questions of a category in display order
func (r *EssayRepository) ListEssays(ctx context.Context, categoryID uint) ([]models.EssayQuestion, error) {
	return r.queryEssays(ctx, `SELECT `+essayColumns+` FROM essay_questions e
		WHERE e.category_id = $1 AND e.deleted_at IS NULL
		ORDER BY e.display_order, e.id`, categoryID)
}

// ListEssaysByTemplate lists every live essay question below a template
func (r *EssayRepository) ListEssaysByTemplate(ctx context.Context, templateID uint) ([]models.EssayQuestion, error) {
	return r.queryEssays(ctx, `SELECT `+essayColumns+` FROM essay_questions e
		JOIN categories c ON c.id = e.category_id
		WHERE c.template_id = $1 AND c.deleted_at IS NULL AND e.deleted_at IS NULL
		ORDER BY e.category_id, e.display_order, e.id`, templateID)
}

// UpdateEssay updates the writable fields of an essay question
func (r *EssayRepository) UpdateEssay(ctx context.Context, e *models.EssayQuestion) error {
	query := `
		UPDATE essay_questions
		SET code = $1, question = $2, guidance = $3, max_words = $4, is_required = $5,
		    is_active = $6, display_order = $7, updated_at = NOW()
		WHERE id = $8 AND deleted_at IS NULL
		RETURNING updated_at
	`

	err := r.q.QueryRowContext(ctx, query,
		e.Code,
		e.Question,
		e.Guidance,
		e.MaxWords,
		e.IsRequired,
		e.IsActive,
		e.DisplayOrder,
		e.ID,
	).Scan(&e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound("essay question", e.ID)
	}
	if err != nil {
		return mapWriteError(err, "essay question", e.Code)
	}
	return nil
}

// SoftDeleteEssay marks an essay question as deleted
func (r *EssayRepository) SoftDeleteEssay(ctx context.Context, id uint) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE essay_questions SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete essay question: %w", err)
	}
	return expectAffected(res, "essay question", id)
}
