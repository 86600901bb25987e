package testutil

import (
	"context"
	"database/sql"
	"testing"

	"akreditasi-jurnal/internal/models"
	"akreditasi-jurnal/internal/service"
)

// Admin is the actor used by fixtures
var Admin = models.Actor{UserID: 1, IPAddress: "127.0.0.1", UserAgent: "testutil"}

// Fixtures holds the "BAN-PT 2024" example hierarchy
type Fixtures struct {
	Template    *models.Template
	Category    *models.Category      // ADM, weight 30
	SubCategory *models.SubCategory   // ADM-ID
	Indicator   *models.Indicator     // ADM-01
	Essay       *models.EssayQuestion // ADM-E1
}

func ptr[T any](v T) *T { return &v }

// SetupFixtures creates the example template through the service so that
// ordering and audit rules apply as in production
func SetupFixtures(t *testing.T, svc *service.TemplateService) *Fixtures {
	t.Helper()
	ctx := context.Background()

	tpl, err := svc.CreateTemplate(ctx, models.TemplateInput{
		Name:          "BAN-PT 2024",
		Description:   ptr("Instrumen akreditasi jurnal 2024"),
		Version:       "2024.1",
		Type:          models.TemplateTypeAkreditasi,
		IsActive:      true,
		EffectiveDate: "2024-01-01",
	}, Admin)
	if err != nil {
		t.Fatalf("Failed to create template: %v", err)
	}

	cat, err := svc.CreateCategory(ctx, tpl.ID, models.CategoryInput{
		Code:   "ADM",
		Name:   "Penamaan dan Administrasi",
		Weight: 30,
	}, Admin)
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}

	sub, err := svc.CreateSubCategory(ctx, cat.ID, models.SubCategoryInput{
		Code: "ADM-ID",
		Name: "Identitas Jurnal",
	}, Admin)
	if err != nil {
		t.Fatalf("Failed to create sub-category: %v", err)
	}

	ind, err := svc.CreateIndicator(ctx, models.IndicatorInput{
		SubCategoryID: &sub.ID,
		Code:          "ADM-01",
		Question:      "Apakah jurnal memiliki ISSN elektronik?",
		Weight:        5,
		AnswerType:    models.AnswerTypeBoolean,
	}, Admin)
	if err != nil {
		t.Fatalf("Failed to create indicator: %v", err)
	}

	essay, err := svc.CreateEssay(ctx, cat.ID, models.EssayInput{
		Code:       "ADM-E1",
		Question:   "Jelaskan sejarah penerbitan jurnal.",
		MaxWords:   500,
		IsRequired: true,
	}, Admin)
	if err != nil {
		t.Fatalf("Failed to create essay question: %v", err)
	}

	return &Fixtures{
		Template:    tpl,
		Category:    cat,
		SubCategory: sub,
		Indicator:   ind,
		Essay:       essay,
	}
}

// InsertResponse records an answer to indicatorID inside a new assessment of
// templateID with the given status
func InsertResponse(t *testing.T, db *sql.DB, templateID, indicatorID uint, status string) {
	t.Helper()

	var assessmentID uint
	err := db.QueryRow(
		`INSERT INTO assessments (template_id, status) VALUES ($1, $2) RETURNING id`,
		templateID, status,
	).Scan(&assessmentID)
	if err != nil {
		t.Fatalf("Failed to insert assessment: %v", err)
	}

	if _, err := db.Exec(
		`INSERT INTO assessment_responses (assessment_id, indicator_id, answer) VALUES ($1, $2, 'ya')`,
		assessmentID, indicatorID,
	); err != nil {
		t.Fatalf("Failed to insert assessment response: %v", err)
	}
}
