package handlers

import (
	"net/http"

	"akreditasi-jurnal/internal/auth"
	"akreditasi-jurnal/internal/middleware"
)

// Handlers bundles every handler served by the API
type Handlers struct {
	Template  *TemplateHandler
	Structure *StructureHandler
	Audit     *AuditHandler
	Health    *HealthHandler
}

// RegisterRoutes mounts the API on mux. Every /api/v1 route requires a
// bearer token; admin routes also require a permission of the role policy.
func RegisterRoutes(mux *http.ServeMux, h Handlers, authMw *middleware.AuthMiddleware, rbacMw *middleware.RBACMiddleware) {
	route := func(pattern, resource, action string, fn http.HandlerFunc) {
		mux.Handle(pattern,
			authMw.Authenticate(
				rbacMw.RequirePermission(resource, action)(fn),
			),
		)
	}
	read := func(pattern string, fn http.HandlerFunc) {
		route(pattern, auth.ResourceTemplate, auth.ActionRead, fn)
	}

	// Read routes
	read("GET "+APIBasePath+"/templates", h.Template.ListTemplates)
	read("GET "+APIBasePath+"/templates/{id}", h.Template.GetTemplate)
	read("GET "+APIBasePath+"/templates/{id}/tree", h.Structure.GetTree)
	read("GET "+APIBasePath+"/templates/{id}/weights", h.Structure.GetWeightSummary)
	read("GET "+APIBasePath+"/templates/{id}/categories", h.Template.ListCategories)
	read("GET "+APIBasePath+"/categories/{id}/statistics", h.Structure.GetCategoryStatistics)
	read("GET "+APIBasePath+"/categories/{id}/sub-categories", h.Template.ListSubCategories)
	read("GET "+APIBasePath+"/categories/{id}/essays", h.Template.ListEssays)
	read("GET "+APIBasePath+"/sub-categories/{id}/indicators", h.Template.ListIndicators)

	// Template administration
	tpl := auth.ResourceTemplate
	route("POST "+AdminBasePath+"/templates", tpl, auth.ActionCreate, h.Template.CreateTemplate)
	route("PUT "+AdminBasePath+"/templates/{id}", tpl, auth.ActionUpdate, h.Template.UpdateTemplate)
	route("DELETE "+AdminBasePath+"/templates/{id}", tpl, auth.ActionDelete, h.Template.DeleteTemplate)
	route("POST "+AdminBasePath+"/templates/{id}/clone", tpl, auth.ActionCreate, h.Structure.CloneTemplate)

	route("POST "+AdminBasePath+"/templates/{id}/categories", tpl, auth.ActionCreate, h.Template.CreateCategory)
	route("PUT "+AdminBasePath+"/categories/{id}", tpl, auth.ActionUpdate, h.Template.UpdateCategory)
	route("DELETE "+AdminBasePath+"/categories/{id}", tpl, auth.ActionDelete, h.Template.DeleteCategory)

	route("POST "+AdminBasePath+"/categories/{id}/sub-categories", tpl, auth.ActionCreate, h.Template.CreateSubCategory)
	route("PUT "+AdminBasePath+"/sub-categories/{id}", tpl, auth.ActionUpdate, h.Template.UpdateSubCategory)
	route("DELETE "+AdminBasePath+"/sub-categories/{id}", tpl, auth.ActionDelete, h.Template.DeleteSubCategory)

	route("POST "+AdminBasePath+"/indicators", tpl, auth.ActionCreate, h.Template.CreateIndicator)
	route("GET "+AdminBasePath+"/indicators/legacy", tpl, auth.ActionUpdate, h.Template.ListLegacyIndicators)
	route("PUT "+AdminBasePath+"/indicators/{id}", tpl, auth.ActionUpdate, h.Template.UpdateIndicator)
	route("DELETE "+AdminBasePath+"/indicators/{id}", tpl, auth.ActionDelete, h.Template.DeleteIndicator)
	route("POST "+AdminBasePath+"/indicators/{id}/migrate", tpl, auth.ActionUpdate, h.Template.MigrateIndicator)

	route("POST "+AdminBasePath+"/categories/{id}/essays", tpl, auth.ActionCreate, h.Template.CreateEssay)
	route("PUT "+AdminBasePath+"/essays/{id}", tpl, auth.ActionUpdate, h.Template.UpdateEssay)
	route("DELETE "+AdminBasePath+"/essays/{id}", tpl, auth.ActionDelete, h.Template.DeleteEssay)

	route("POST "+AdminBasePath+"/reorder", tpl, auth.ActionUpdate, h.Structure.Reorder)
	route("GET "+AdminBasePath+"/deletion-check/{kind}/{id}", tpl, auth.ActionDelete, h.Structure.CheckDeletion)
	route("GET "+AdminBasePath+"/deletion-check/{node}", tpl, auth.ActionDelete, h.Structure.CheckNodeDeletion)

	// Audit trail
	route("GET "+AdminBasePath+"/audit-logs", auth.ResourceAudit, auth.ActionRead, h.Audit.ListAuditLogs)

	mux.HandleFunc("GET /health", h.Health.Health)
}
