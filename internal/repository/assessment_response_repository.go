package repository

import (
	"context"
	"fmt"

	"akreditasi-jurnal/internal/models"
)

// AssessmentResponseRepository answers usage questions about assessment responses.
// Responses are written by the assessment workflow, never by this module.
type AssessmentResponseRepository struct {
	q DBTX
}

// NewAssessmentResponseRepository creates a new assessment response repository
func NewAssessmentResponseRepository(q DBTX) *AssessmentResponseRepository {
	return &AssessmentResponseRepository{q: q}
}

// HasSubmittedResponses reports whether any submitted assessment answered the indicator
func (r *AssessmentResponseRepository) HasSubmittedResponses(ctx context.Context, indicatorID uint) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM assessment_responses ar
			JOIN assessments a ON a.id = ar.assessment_id
			WHERE ar.indicator_id = $1 AND a.status = $2
		)
	`

	var exists bool
	if err := r.q.QueryRowContext(ctx, query, indicatorID, models.AssessmentStatusSubmitted).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check submitted responses: %w", err)
	}
	return exists, nil
}

// submittedScopes filters live indicators down to the subtree of one node
var submittedScopes = map[models.EntityKind]string{
	models.KindTemplate: `i.sub_category_id IN (
		SELECT sc.id FROM sub_categories sc
		JOIN categories c ON c.id = sc.category_id
		WHERE c.template_id = $2)`,
	models.KindCategory:    `i.sub_category_id IN (SELECT id FROM sub_categories WHERE category_id = $2)`,
	models.KindSubCategory: `i.sub_category_id = $2`,
	models.KindIndicator:   `i.id = $2`,
}

// SubmittedIndicatorCodes lists the codes of live indicators below a node that
// were answered in a submitted assessment
func (r *AssessmentResponseRepository) SubmittedIndicatorCodes(ctx context.Context, scope models.EntityKind, id uint) ([]string, error) {
	filter, ok := submittedScopes[scope]
	if !ok {
		return nil, fmt.Errorf("unsupported usage scope %q", scope)
	}

	query := `
		SELECT DISTINCT i.code FROM indicators i
		JOIN assessment_responses ar ON ar.indicator_id = i.id
		JOIN assessments a ON a.id = ar.assessment_id
		WHERE a.status = $1 AND i.deleted_at IS NULL AND ` + filter + `
		ORDER BY i.code
	`

	rows, err := r.q.QueryContext(ctx, query, models.AssessmentStatusSubmitted, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list submitted indicators: %w", err)
	}
	defer rows.Close()

	codes := []string{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}
