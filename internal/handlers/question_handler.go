package handlers

import (
	"net/http"

	"akreditasi-jurnal/internal/middleware"
	"akreditasi-jurnal/internal/models"
)

// ListIndicators lists the indicators of a sub-category
// @Summary List indicators
// @Tags Indicators
// @Produce json
// @Security BearerAuth
// @Param id path int true "Sub-category ID"
// @Success 200 {array} models.Indicator
// @Failure 404 {object} ErrorResponse
// @Router /sub-categories/{id}/indicators [get]
func (h *TemplateHandler) ListIndicators(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondBadRequest(w, ErrMsgInvalidID)
		return
	}

	indicators, err := h.templates.ListIndicators(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = JSONResponse(w, indicators)
}

// ListLegacyIndicators lists indicators still classified by free text
// @Summary List legacy indicators
// @Tags Indicators
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Indicator
// @Router /admin/indicators/legacy [get]
func (h *TemplateHandler) ListLegacyIndicators(w http.ResponseWriter, r *http.Request) {
	indicators, err := h.templates.ListLegacyIndicators(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = JSONResponse(w, indicators)
}

// CreateIndicator creates an indicator below a sub-category or with a legacy classification
// @Summary Create indicator
// @Tags Indicators
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param indicator body models.IndicatorInput true "Indicator data"
// @Success 201 {object} models.Indicator
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Code already exists"
// @Router /admin/indicators [post]
func (h *TemplateHandler) CreateIndicator(w http.ResponseWriter, r *http.Request) {
	var in models.IndicatorInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondBadRequest(w, ErrMsgInvalidRequestBody)
		return
	}

	ind, err := h.templates.CreateIndicator(r.Context(), in, middleware.Actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = respondJSON(w, http.StatusCreated, ind)
}

// UpdateIndicator updates an indicator
// @Summary Update indicator
// @Tags Indicators
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Indicator ID"
// @Param indicator body models.IndicatorInput true "Indicator data"
// @Success 200 {object} models.Indicator
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/indicators/{id} [put]
func (h *TemplateHandler) UpdateIndicator(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondBadRequest(w, ErrMsgInvalidID)
		return
	}

	var in models.IndicatorInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondBadRequest(w, ErrMsgInvalidRequestBody)
		return
	}

	ind, err := h.templates.UpdateIndicator(r.Context(), id, in, middleware.Actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = JSONResponse(w, ind)
}

// MigrateIndicator moves a legacy indicator into a sub-category
// @Summary Migrate legacy indicator
// @Description One-way: hierarchical indicators cannot be migrated again
// @Tags Indicators
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Indicator ID"
// @Param target body models.MigrateIndicatorRequest true "Target sub-category"
// @Success 200 {object} models.Indicator
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/indicators/{id}/migrate [post]
func (h *TemplateHandler) MigrateIndicator(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondBadRequest(w, ErrMsgInvalidID)
		return
	}

	var req models.MigrateIndicatorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondBadRequest(w, ErrMsgInvalidRequestBody)
		return
	}

	ind, err := h.templates.MigrateIndicator(r.Context(), id, req, middleware.Actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = JSONResponse(w, ind)
}

// DeleteIndicator soft-deletes an indicator
// @Summary Delete indicator
// @Tags Indicators
// @Security BearerAuth
// @Param id path int true "Indicator ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Used in a submitted assessment"
// @Router /admin/indicators/{id} [delete]
func (h *TemplateHandler) DeleteIndicator(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.templates.DeleteIndicator)
}

// ListEssays lists the essay questions of a category
// @Summary List essay questions
// @Tags Essays
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 200 {array} models.EssayQuestion
// @Failure 404 {object} ErrorResponse
// @Router /categories/{id}/essays [get]
func (h *TemplateHandler) ListEssays(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondBadRequest(w, ErrMsgInvalidID)
		return
	}

	essays, err := h.templates.ListEssays(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = JSONResponse(w, essays)
}

// CreateEssay adds an essay question to a category
// @Summary Create essay question
// @Tags Essays
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Param essay body models.EssayInput true "Essay question data"
// @Success 201 {object} models.EssayQuestion
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/categories/{id}/essays [post]
func (h *TemplateHandler) CreateEssay(w http.ResponseWriter, r *http.Request) {
	categoryID, err := pathID(r, "id")
	if err != nil {
		respondBadRequest(w, ErrMsgInvalidID)
		return
	}

	var in models.EssayInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondBadRequest(w, ErrMsgInvalidRequestBody)
		return
	}

	essay, err := h.templates.CreateEssay(r.Context(), categoryID, in, middleware.Actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = respondJSON(w, http.StatusCreated, essay)
}

// UpdateEssay updates an essay question
// @Summary Update essay question
// @Tags Essays
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Essay question ID"
// @Param essay body models.EssayInput true "Essay question data"
// @Success 200 {object} models.EssayQuestion
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/essays/{id} [put]
func (h *TemplateHandler) UpdateEssay(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondBadRequest(w, ErrMsgInvalidID)
		return
	}

	var in models.EssayInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondBadRequest(w, ErrMsgInvalidRequestBody)
		return
	}

	essay, err := h.templates.UpdateEssay(r.Context(), id, in, middleware.Actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = JSONResponse(w, essay)
}

// DeleteEssay soft-deletes an essay question
// @Summary Delete essay question
// @Tags Essays
// @Security BearerAuth
// @Param id path int true "Essay question ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /admin/essays/{id} [delete]
func (h *TemplateHandler) DeleteEssay(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.templates.DeleteEssay)
}
