package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akreditasi-jurnal/internal/auth"
	"akreditasi-jurnal/internal/config"
	"akreditasi-jurnal/internal/handlers"
	"akreditasi-jurnal/internal/memstore"
	"akreditasi-jurnal/internal/middleware"
	"akreditasi-jurnal/internal/models"
	"akreditasi-jurnal/internal/service"
	"akreditasi-jurnal/internal/testutil"
)

type testAPI struct {
	handler  http.Handler
	auth     *testutil.AuthHelper
	store    *memstore.Store
	fixtures *testutil.Fixtures
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	cfg := config.EvaluationConfig{MaxTotalWeight: 100, TreeParallelLoad: true}
	store := memstore.New()
	templates := service.NewTemplateService(store, cfg)

	h := handlers.Handlers{
		Template: handlers.NewTemplateHandler(templates),
		Structure: handlers.NewStructureHandler(
			service.NewTreeAssembler(store, cfg),
			service.NewWeightAccountant(store, cfg),
			service.NewHierarchyCloner(store, cfg),
			service.NewReorderCoordinator(store, cfg),
			service.NewDeletionGuard(store),
		),
		Audit:  handlers.NewAuditHandler(templates),
		Health: handlers.NewHealthHandler(nil, "test"),
	}

	authHelper := testutil.NewAuthHelper(t)
	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, h,
		middleware.NewAuthMiddleware(authHelper.Service),
		middleware.NewRBACMiddleware(auth.NewRolePolicy()),
	)

	return &testAPI{
		handler:  mux,
		auth:     authHelper,
		store:    store,
		fixtures: testutil.SetupFixtures(t, templates),
	}
}

// as sends a request carrying a token with the given roles
func (a *testAPI) as(t *testing.T, roles []string, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if roles != nil {
		a.auth.AddAuthHeader(t, req, 1, roles...)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) admin(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return a.as(t, []string{auth.RoleDikti}, method, path, body)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)

	rec := api.as(t, nil, http.MethodGet, "/api/v1/templates", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.as(t, []string{auth.RoleReviewer}, http.MethodGet, "/api/v1/templates", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.as(t, []string{auth.RoleReviewer}, http.MethodPost, "/api/v1/admin/templates",
		models.TemplateInput{Name: "X", Type: models.TemplateTypeIndeksasi})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.as(t, []string{auth.RoleJournalAdmin}, http.MethodGet, "/api/v1/admin/audit-logs", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.as(t, nil, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","version":"test"}`, rec.Body.String())
}

func TestTemplateEndpoints(t *testing.T) {
	api := newTestAPI(t)

	rec := api.admin(t, http.MethodPost, "/api/v1/admin/templates", models.TemplateInput{
		Name: "Indeksasi SINTA", Type: models.TemplateTypeIndeksasi, EffectiveDate: "2025-01-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Template](t, rec)
	assert.Equal(t, "Indeksasi SINTA", created.Name)

	rec = api.admin(t, http.MethodPost, "/api/v1/admin/templates", models.TemplateInput{
		Name: "Indeksasi SINTA", Type: models.TemplateTypeIndeksasi,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, handlers.CodeDuplicateName, decode[handlers.ErrorResponse](t, rec).Code)

	rec = api.admin(t, http.MethodPost, "/api/v1/admin/templates", models.TemplateInput{Type: models.TemplateTypeIndeksasi})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, handlers.CodeValidation, body.Code)
	assert.Contains(t, body.Details, "name")

	for _, raw := range []string{`{`, `{"name":"A","type":"indeksasi","colour":"red"}`, `{"name":"A","type":"indeksasi"}{}`} {
		rec = api.admin(t, http.MethodPost, "/api/v1/admin/templates", raw)
		assert.Equal(t, http.StatusBadRequest, rec.Code, raw)
	}

	rec = api.admin(t, http.MethodGet, "/api/v1/templates?type=indeksasi", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[[]models.Template](t, rec)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	rec = api.admin(t, http.MethodGet, "/api/v1/templates?active=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	path := fmt.Sprintf("/api/v1/admin/templates/%d", created.ID)
	rec = api.admin(t, http.MethodPut, path, models.TemplateInput{
		Name: "Indeksasi SINTA 2025", Type: models.TemplateTypeIndeksasi,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Indeksasi SINTA 2025", decode[models.Template](t, rec).Name)

	rec = api.admin(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.admin(t, http.MethodGet, fmt.Sprintf("/api/v1/templates/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, handlers.CodeNotFound, decode[handlers.ErrorResponse](t, rec).Code)

	rec = api.admin(t, http.MethodGet, "/api/v1/templates/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHierarchyEndpoints(t *testing.T) {
	api := newTestAPI(t)
	f := api.fixtures

	rec := api.admin(t, http.MethodPost, fmt.Sprintf("/api/v1/admin/templates/%d/categories", f.Template.ID),
		models.CategoryInput{Code: "PEN", Name: "Penyuntingan", Weight: 20})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	pen := decode[models.Category](t, rec)

	rec = api.admin(t, http.MethodPost, fmt.Sprintf("/api/v1/admin/templates/%d/categories", f.Template.ID),
		models.CategoryInput{Code: "PEN", Name: "Dup", Weight: 1})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, handlers.CodeDuplicateCode, decode[handlers.ErrorResponse](t, rec).Code)

	rec = api.admin(t, http.MethodPost, fmt.Sprintf("/api/v1/admin/categories/%d/sub-categories", pen.ID),
		models.SubCategoryInput{Code: "PEN-MS", Name: "Mitra Bebestari"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sub := decode[models.SubCategory](t, rec)

	rec = api.admin(t, http.MethodPost, "/api/v1/admin/indicators", models.IndicatorInput{
		SubCategoryID: &sub.ID, Code: "PEN-01", Question: "Jumlah mitra bebestari?",
		Weight: 4, AnswerType: models.AnswerTypeScale,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ind := decode[models.Indicator](t, rec)

	rec = api.admin(t, http.MethodPost, fmt.Sprintf("/api/v1/admin/categories/%d/essays", pen.ID),
		models.EssayInput{Code: "PEN-E1", Question: "Uraikan proses review."})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	essay := decode[models.EssayQuestion](t, rec)

	reader := []string{auth.RoleReviewer}
	rec = api.as(t, reader, http.MethodGet, fmt.Sprintf("/api/v1/templates/%d/categories", f.Template.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Category](t, rec), 2)

	rec = api.as(t, reader, http.MethodGet, fmt.Sprintf("/api/v1/categories/%d/sub-categories", pen.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.SubCategory](t, rec), 1)

	rec = api.as(t, reader, http.MethodGet, fmt.Sprintf("/api/v1/sub-categories/%d/indicators", sub.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PEN-01", decode[[]models.Indicator](t, rec)[0].Code)

	rec = api.as(t, reader, http.MethodGet, fmt.Sprintf("/api/v1/categories/%d/essays", pen.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.EssayQuestion](t, rec), 1)

	rec = api.admin(t, http.MethodPut, fmt.Sprintf("/api/v1/admin/categories/%d", pen.ID),
		models.CategoryInput{Code: "PEN", Name: "Kualitas Penyuntingan", Weight: 25})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 25.0, decode[models.Category](t, rec).Weight)

	rec = api.admin(t, http.MethodPut, fmt.Sprintf("/api/v1/admin/sub-categories/%d", sub.ID),
		models.SubCategoryInput{Code: "PEN-MS", Name: "Mitra Bebestari Nasional"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.admin(t, http.MethodPut, fmt.Sprintf("/api/v1/admin/indicators/%d", ind.ID), models.IndicatorInput{
		SubCategoryID: &sub.ID, Code: "PEN-01", Question: "Jumlah mitra bebestari aktif?",
		Weight: 6, AnswerType: models.AnswerTypeScale,
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.admin(t, http.MethodPut, fmt.Sprintf("/api/v1/admin/essays/%d", essay.ID),
		models.EssayInput{Code: "PEN-E1", Question: "Uraikan proses review naskah.", MaxWords: 300})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.as(t, reader, http.MethodGet, fmt.Sprintf("/api/v1/categories/%d/statistics", pen.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[models.CategoryStatistics](t, rec)
	assert.Equal(t, 1, stats.IndicatorCount)
	assert.Equal(t, 6.0, stats.IndicatorWeightTotal)

	rec = api.admin(t, http.MethodDelete, fmt.Sprintf("/api/v1/admin/essays/%d", essay.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = api.admin(t, http.MethodDelete, fmt.Sprintf("/api/v1/admin/indicators/%d", ind.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = api.admin(t, http.MethodDelete, fmt.Sprintf("/api/v1/admin/sub-categories/%d", sub.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = api.admin(t, http.MethodDelete, fmt.Sprintf("/api/v1/admin/categories/%d", pen.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = api.admin(t, http.MethodDelete, fmt.Sprintf("/api/v1/admin/categories/%d", pen.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLegacyIndicatorMigration(t *testing.T) {
	api := newTestAPI(t)
	f := api.fixtures

	rec := api.admin(t, http.MethodPost, "/api/v1/admin/indicators", models.IndicatorInput{
		LegacyCategory: "Administrasi", Code: "OLD-01", Question: "Pertanyaan lama",
		Weight: 1, AnswerType: models.AnswerTypeBoolean,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	legacy := decode[models.Indicator](t, rec)

	rec = api.admin(t, http.MethodGet, "/api/v1/admin/indicators/legacy", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Indicator](t, rec), 1)

	path := fmt.Sprintf("/api/v1/admin/indicators/%d/migrate", legacy.ID)
	rec = api.admin(t, http.MethodPost, path, models.MigrateIndicatorRequest{SubCategoryID: f.SubCategory.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	migrated := decode[models.Indicator](t, rec)
	assert.Equal(t, f.SubCategory.ID, migrated.Placement.SubCategoryID)

	rec = api.admin(t, http.MethodPost, path, models.MigrateIndicatorRequest{SubCategoryID: f.SubCategory.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.admin(t, http.MethodGet, "/api/v1/admin/indicators/legacy", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestTreeAndWeightEndpoints(t *testing.T) {
	api := newTestAPI(t)
	f := api.fixtures
	reader := []string{auth.RoleReviewer}

	rec := api.as(t, reader, http.MethodGet, fmt.Sprintf("/api/v1/templates/%d/tree", f.Template.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tree := decode[[]models.TreeNode](t, rec)
	require.Len(t, tree, 1)
	assert.Equal(t, models.NodeID(models.KindCategory, f.Category.ID), tree[0].ID)
	require.Len(t, tree[0].Children, 2)
	assert.Equal(t, models.KindSubCategory, tree[0].Children[0].Type)
	assert.Equal(t, models.KindEssay, tree[0].Children[1].Type)
	assert.NotContains(t, rec.Body.String(), `"children":null`)

	rec = api.as(t, reader, http.MethodGet, fmt.Sprintf("/api/v1/templates/%d/weights", f.Template.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[models.WeightSummary](t, rec)
	assert.Equal(t, 30.0, summary.TotalWeight)
	assert.Equal(t, 70.0, summary.RemainingWeight)

	rec = api.as(t, reader, http.MethodGet, "/api/v1/templates/999/tree", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletionBlockedResponse(t *testing.T) {
	api := newTestAPI(t)
	f := api.fixtures

	assessment := api.store.AddAssessment(f.Template.ID, models.AssessmentStatusSubmitted)
	require.NoError(t, api.store.AddResponse(assessment, f.Indicator.ID))

	rec := api.admin(t, http.MethodDelete, fmt.Sprintf("/api/v1/admin/categories/%d", f.Category.ID), nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	var body struct {
		Code    string                  `json:"code"`
		Details handlers.BlockedDetails `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, handlers.CodeDeletionBlocked, body.Code)
	assert.Equal(t, "used in submitted assessment", body.Details.Reason)
	assert.Equal(t, []string{"ADM-01"}, body.Details.BlockedBy)

	rec = api.admin(t, http.MethodGet, fmt.Sprintf("/api/v1/admin/deletion-check/indicator/%d", f.Indicator.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	verdict := decode[models.DeletionVerdict](t, rec)
	assert.False(t, verdict.Allowed)
	assert.Equal(t, []string{"ADM-01"}, verdict.BlockedBy)

	node := models.NodeID(models.KindEssay, f.Essay.ID)
	rec = api.admin(t, http.MethodGet, "/api/v1/admin/deletion-check/"+node, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.DeletionVerdict](t, rec).Allowed)

	rec = api.admin(t, http.MethodGet, "/api/v1/admin/deletion-check/sub-3", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = api.admin(t, http.MethodGet, "/api/v1/admin/deletion-check/widget/3", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = api.admin(t, http.MethodGet, "/api/v1/admin/deletion-check/category/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.admin(t, http.MethodDelete, fmt.Sprintf("/api/v1/admin/templates/%d", f.Template.ID), nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "sole active template of its type", body.Details.Reason)
}

func TestCloneAndReorderEndpoints(t *testing.T) {
	api := newTestAPI(t)
	f := api.fixtures

	path := fmt.Sprintf("/api/v1/admin/templates/%d/clone", f.Template.ID)
	rec := api.admin(t, http.MethodPost, path, models.CloneRequest{Name: "BAN-PT 2025"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	clone := decode[models.Template](t, rec)
	assert.False(t, clone.IsActive)

	rec = api.admin(t, http.MethodPost, path, models.CloneRequest{Name: "BAN-PT 2025"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.admin(t, http.MethodPost, "/api/v1/admin/templates/999/clone", models.CloneRequest{Name: "Nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	second := api.admin(t, http.MethodPost, fmt.Sprintf("/api/v1/admin/templates/%d/categories", f.Template.ID),
		models.CategoryInput{Code: "PEN", Name: "Penyuntingan", Weight: 20})
	require.Equal(t, http.StatusCreated, second.Code)
	pen := decode[models.Category](t, second)

	rec = api.admin(t, http.MethodPost, "/api/v1/admin/reorder", models.ReorderRequest{
		Kind: models.KindCategory,
		Items: []models.ReorderItem{
			{ID: pen.ID, Position: 1},
			{ID: f.Category.ID, Position: 2},
		},
	})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = api.admin(t, http.MethodGet, fmt.Sprintf("/api/v1/templates/%d/categories", f.Template.ID), nil)
	categories := decode[[]models.Category](t, rec)
	require.Len(t, categories, 2)
	assert.Equal(t, "PEN", categories[0].Code)

	rec = api.admin(t, http.MethodPost, "/api/v1/admin/reorder", models.ReorderRequest{
		Kind:  models.KindCategory,
		Items: []models.ReorderItem{{ID: 424242, Position: 1}},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "424242")

	rec = api.admin(t, http.MethodPost, "/api/v1/admin/reorder", `{"kind":"category","items":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.admin(t, http.MethodGet, "/api/v1/admin/audit-logs?resource=category&limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	logs := decode[[]models.AuditLog](t, rec)
	require.Len(t, logs, 1)
	assert.Equal(t, "reorder", logs[0].Action)

	rec = api.admin(t, http.MethodGet, "/api/v1/admin/audit-logs?limit=500", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthUnhealthy(t *testing.T) {
	h := handlers.NewHealthHandler(func(context.Context) error { return errors.New("down") }, "test")
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "unhealthy"))
}
