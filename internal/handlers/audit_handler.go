package handlers

import (
	"net/http"
	"strconv"

	"akreditasi-jurnal/internal/models"
	"akreditasi-jurnal/internal/service"
)

// AuditHandler handles audit log requests
type AuditHandler struct {
	templates *service.TemplateService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(templates *service.TemplateService) *AuditHandler {
	return &AuditHandler{templates: templates}
}

// ListAuditLogs lists audit log entries, newest first
// @Summary List audit logs
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param resource query string false "Filter by resource (template, category, subcategory, indicator, essay)"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(50)
// @Success 200 {array} models.AuditLog
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/audit-logs [get]
func (h *AuditHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil || page < 1 {
		respondBadRequest(w, "Invalid page")
		return
	}
	limit, err := queryInt(r, "limit", 50)
	if err != nil || limit < 1 || limit > 100 {
		respondBadRequest(w, "Invalid limit (1-100)")
		return
	}

	logs, err := h.templates.ListAuditLogs(r.Context(), models.AuditFilter{
		Resource: r.URL.Query().Get("resource"),
		Limit:    limit,
		Offset:   (page - 1) * limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("X-Page", strconv.Itoa(page))
	_ = JSONResponse(w, logs)
}
