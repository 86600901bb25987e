package handlers

import (
	"context"
	"net/http"
	"strconv"

	"akreditasi-jurnal/internal/middleware"
	"akreditasi-jurnal/internal/models"
	"akreditasi-jurnal/internal/service"
)

// TemplateHandler handles templates, categories and sub-categories
type TemplateHandler struct {
	templates *service.TemplateService
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templates *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

// ListTemplates lists templates
// @Summary List templates
// @Description List live templates, newest effective date first
// @Tags Templates
// @Produce json
// @Security BearerAuth
// @Param type query string false "Template type (akreditasi, indeksasi)"
// @Param active query bool false "Only active or only inactive templates"
// @Success 200 {array} models.Template
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /templates [get]
func (h *TemplateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	var filter models.TemplateFilter
	if raw := r.URL.Query().Get("type"); raw != "" {
		t := models.TemplateType(raw)
		filter.Type = &t
	}
	if raw := r.URL.Query().Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			respondBadRequest(w, "Invalid active filter")
			return
		}
		filter.IsActive = &active
	}

	templates, err := h.templates.ListTemplates(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = JSONResponse(w, templates)
}

// GetTemplate retrieves a template by ID
// @Summary Get template
// @Tags Templates
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Success 200 {object} models.Template
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /templates/{id} [get]
func (h *TemplateHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondBadRequest(w, ErrMsgInvalidID)
		return
	}

	tpl, err := h.templates.GetTemplate(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = JSONResponse(w, tpl)
}

// CreateTemplate creates a template
// @Summary Create template
// @Tags Templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param template body models.TemplateInput true "Template data"
// @Success 201 {object} models.Template
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Name already exists"
// @Router /admin/templates [post]
func (h *TemplateHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var in models.TemplateInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondBadRequest(w, ErrMsgInvalidRequestBody)
		return
	}

	tpl, err := h.templates.CreateTemplate(r.Context(), in, middleware.Actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = respondJSON(w, http.StatusCreated, tpl)
}

// UpdateTemplate replaces the writable fields of a template
// @Summary Update template
// @Tags Templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Param template body models.TemplateInput true "Template data"
// @Success 200 {object} models.Template
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/templates/{id} [put]
func (h *TemplateHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondBadRequest(w, ErrMsgInvalidID)
		return
	}

	var in models.TemplateInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondBadRequest(w, ErrMsgInvalidRequestBody)
		return
	}

	tpl, err := h.templates.UpdateTemplate(r.Context(), id, in, middleware.Actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = JSONResponse(w, tpl)
}

// DeleteTemplate soft-deletes a template and everything below it
// @Summary Delete template
// @Description Refused while the template is the sole active one of its type or any of its indicators has a submitted response
// @Tags Templates
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Deletion blocked"
// @Router /admin/templates/{id} [delete]
func (h *TemplateHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.templates.DeleteTemplate)
}

// ListCategories lists the categories of a template
// @Summary List categories
// @Tags Categories
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Success 200 {array} models.Category
// @Failure 404 {object} ErrorResponse
// @Router /templates/{id}/categories [get]
func (h *TemplateHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondBadRequest(w, ErrMsgInvalidID)
		return
	}

	categories, err := h.templates.ListCategories(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = JSONResponse(w, categories)
}

// CreateCategory adds a category to a template
// @Summary Create category
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Param category body models.CategoryInput true "Category data"
// @Success 201 {object} models.Category
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Code already exists in template"
// @Router /admin/templates/{id}/categories [post]
func (h *TemplateHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	templateID, err := pathID(r, "id")
	if err != nil {
		respondBadRequest(w, ErrMsgInvalidID)
		return
	}

	var in models.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondBadRequest(w, ErrMsgInvalidRequestBody)
		return
	}

	category, err := h.templates.CreateCategory(r.Context(), templateID, in, middleware.Actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = respondJSON(w, http.StatusCreated, category)
}

// UpdateCategory updates a category
// @Summary Update category
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Param category body models.CategoryInput true "Category data"
// @Success 200 {object} models.Category
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/categories/{id} [put]
func (h *TemplateHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondBadRequest(w, ErrMsgInvalidID)
		return
	}

	var in models.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondBadRequest(w, ErrMsgInvalidRequestBody)
		return
	}

	category, err := h.templates.UpdateCategory(r.Context(), id, in, middleware.Actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = JSONResponse(w, category)
}

// DeleteCategory soft-deletes a category with its sub-categories, indicators and essays
// @Summary Delete category
// @Tags Categories
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Deletion blocked"
// @Router /admin/categories/{id} [delete]
func (h *TemplateHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.templates.DeleteCategory)
}

// ListSubCategories lists the sub-categories of a category
// @Summary List sub-categories
// @Tags SubCategories
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 200 {array} models.SubCategory
// @Failure 404 {object} ErrorResponse
// @Router /categories/{id}/sub-categories [get]
func (h *TemplateHandler) ListSubCategories(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondBadRequest(w, ErrMsgInvalidID)
		return
	}

	subCategories, err := h.templates.ListSubCategories(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = JSONResponse(w, subCategories)
}

// CreateSubCategory adds a sub-category to a category
// @Summary Create sub-category
// @Tags SubCategories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Param subCategory body models.SubCategoryInput true "Sub-category data"
// @Success 201 {object} models.SubCategory
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/categories/{id}/sub-categories [post]
func (h *TemplateHandler) CreateSubCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := pathID(r, "id")
	if err != nil {
		respondBadRequest(w, ErrMsgInvalidID)
		return
	}

	var in models.SubCategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondBadRequest(w, ErrMsgInvalidRequestBody)
		return
	}

	sub, err := h.templates.CreateSubCategory(r.Context(), categoryID, in, middleware.Actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = respondJSON(w, http.StatusCreated, sub)
}

// UpdateSubCategory updates a sub-category
// @Summary Update sub-category
// @Tags SubCategories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Sub-category ID"
// @Param subCategory body models.SubCategoryInput true "Sub-category data"
// @Success 200 {object} models.SubCategory
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/sub-categories/{id} [put]
func (h *TemplateHandler) UpdateSubCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondBadRequest(w, ErrMsgInvalidID)
		return
	}

	var in models.SubCategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondBadRequest(w, ErrMsgInvalidRequestBody)
		return
	}

	sub, err := h.templates.UpdateSubCategory(r.Context(), id, in, middleware.Actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = JSONResponse(w, sub)
}

// DeleteSubCategory soft-deletes a sub-category and its indicators
// @Summary Delete sub-category
// @Tags SubCategories
// @Security BearerAuth
// @Param id path int true "Sub-category ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Deletion blocked"
// @Router /admin/sub-categories/{id} [delete]
func (h *TemplateHandler) DeleteSubCategory(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.templates.DeleteSubCategory)
}

type deleteFunc func(ctx context.Context, id uint, actor models.Actor) error

func (h *TemplateHandler) deleteByID(w http.ResponseWriter, r *http.Request, del deleteFunc) {
	id, err := pathID(r, "id")
	if err != nil {
		respondBadRequest(w, ErrMsgInvalidID)
		return
	}

	if err := del(r.Context(), id, middleware.Actor(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
