package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"akreditasi-jurnal/internal/config"
	"akreditasi-jurnal/internal/memstore"
	"akreditasi-jurnal/internal/models"
	"akreditasi-jurnal/internal/service"
	"akreditasi-jurnal/internal/testutil"
)

var admin = testutil.Admin

type services struct {
	store    *memstore.Store
	cfg      config.EvaluationConfig
	tpl      *service.TemplateService
	guard    *service.DeletionGuard
	weights  *service.WeightAccountant
	cloner   *service.HierarchyCloner
	reorder  *service.ReorderCoordinator
	tree     *service.TreeAssembler
	fixtures *testutil.Fixtures
}

func defaultConfig() config.EvaluationConfig {
	return config.EvaluationConfig{MaxTotalWeight: 100, TreeParallelLoad: true}
}

func newServices(t *testing.T, cfg config.EvaluationConfig) *services {
	t.Helper()
	store := memstore.New()
	s := &services{
		store:   store,
		cfg:     cfg,
		tpl:     service.NewTemplateService(store, cfg),
		guard:   service.NewDeletionGuard(store),
		weights: service.NewWeightAccountant(store, cfg),
		cloner:  service.NewHierarchyCloner(store, cfg),
		reorder: service.NewReorderCoordinator(store, cfg),
		tree:    service.NewTreeAssembler(store, cfg),
	}
	s.fixtures = testutil.SetupFixtures(t, s.tpl)
	return s
}

// submit records a response to indicatorID in a submitted assessment
func (s *services) submit(t *testing.T, indicatorID uint) {
	t.Helper()
	s.respond(t, indicatorID, models.AssessmentStatusSubmitted)
}

func (s *services) respond(t *testing.T, indicatorID uint, status string) uint {
	t.Helper()
	id := s.store.AddAssessment(s.fixtures.Template.ID, status)
	require.NoError(t, s.store.AddResponse(id, indicatorID))
	return id
}

func (s *services) addCategory(t *testing.T, templateID uint, code string, weight float64) *models.Category {
	t.Helper()
	c, err := s.tpl.CreateCategory(context.Background(), templateID, models.CategoryInput{
		Code: code, Name: "Unsur " + code, Weight: weight,
	}, admin)
	require.NoError(t, err)
	return c
}

func (s *services) addSubCategory(t *testing.T, categoryID uint, code string) *models.SubCategory {
	t.Helper()
	sc, err := s.tpl.CreateSubCategory(context.Background(), categoryID, models.SubCategoryInput{
		Code: code, Name: "Sub-Unsur " + code,
	}, admin)
	require.NoError(t, err)
	return sc
}

func (s *services) addIndicator(t *testing.T, subCategoryID uint, code string, weight float64) *models.Indicator {
	t.Helper()
	ind, err := s.tpl.CreateIndicator(context.Background(), models.IndicatorInput{
		SubCategoryID: &subCategoryID,
		Code:          code,
		Question:      "Pertanyaan " + code,
		Weight:        weight,
		AnswerType:    models.AnswerTypeScale,
	}, admin)
	require.NoError(t, err)
	return ind
}

func (s *services) addEssay(t *testing.T, categoryID uint, code string) *models.EssayQuestion {
	t.Helper()
	e, err := s.tpl.CreateEssay(context.Background(), categoryID, models.EssayInput{
		Code: code, Question: "Esai " + code,
	}, admin)
	require.NoError(t, err)
	return e
}
