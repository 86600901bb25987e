package handlers

import (
	"net/http"

	"akreditasi-jurnal/internal/middleware"
	"akreditasi-jurnal/internal/models"
	"akreditasi-jurnal/internal/service"
)

// StructureHandler serves the whole-template operations: tree, weights,
// cloning, reordering and deletion checks
type StructureHandler struct {
	tree    *service.TreeAssembler
	weights *service.WeightAccountant
	cloner  *service.HierarchyCloner
	reorder *service.ReorderCoordinator
	guard   *service.DeletionGuard
}

// NewStructureHandler creates a new structure handler
func NewStructureHandler(
	tree *service.TreeAssembler,
	weights *service.WeightAccountant,
	cloner *service.HierarchyCloner,
	reorder *service.ReorderCoordinator,
	guard *service.DeletionGuard,
) *StructureHandler {
	return &StructureHandler{
		tree:    tree,
		weights: weights,
		cloner:  cloner,
		reorder: reorder,
		guard:   guard,
	}
}

// GetTree returns the nested category tree of a template
// @Summary Get template tree
// @Description Categories with their sub-categories, indicators and essay questions, ordered by display order
// @Tags Structure
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Success 200 {array} models.TreeNode
// @Failure 404 {object} ErrorResponse
// @Router /templates/{id}/tree [get]
func (h *StructureHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondBadRequest(w, ErrMsgInvalidID)
		return
	}

	tree, err := h.tree.BuildTree(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = JSONResponse(w, tree)
}

// GetWeightSummary reports the category weight total of a template
// @Summary Get weight summary
// @Tags Structure
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Success 200 {object} models.WeightSummary
// @Failure 404 {object} ErrorResponse
// @Router /templates/{id}/weights [get]
func (h *StructureHandler) GetWeightSummary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondBadRequest(w, ErrMsgInvalidID)
		return
	}

	summary, err := h.weights.Summary(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = JSONResponse(w, summary)
}

// GetCategoryStatistics aggregates the contents of a category
// @Summary Get category statistics
// @Tags Structure
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 200 {object} models.CategoryStatistics
// @Failure 404 {object} ErrorResponse
// @Router /categories/{id}/statistics [get]
func (h *StructureHandler) GetCategoryStatistics(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondBadRequest(w, ErrMsgInvalidID)
		return
	}

	stats, err := h.weights.CategoryStatistics(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = JSONResponse(w, stats)
}

// CloneTemplate deep-copies a template under a new name
// @Summary Clone template
// @Description Copies categories, sub-categories, indicators and essay questions. Indicator codes get a -T<new id> suffix.
// @Tags Structure
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Source template ID"
// @Param clone body models.CloneRequest true "Clone options"
// @Success 201 {object} models.Template
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Name already exists"
// @Failure 500 {object} ErrorResponse "Clone failed and was rolled back"
// @Router /admin/templates/{id}/clone [post]
func (h *StructureHandler) CloneTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondBadRequest(w, ErrMsgInvalidID)
		return
	}

	var req models.CloneRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondBadRequest(w, ErrMsgInvalidRequestBody)
		return
	}

	tpl, err := h.cloner.CloneTemplate(r.Context(), id, req, middleware.Actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = respondJSON(w, http.StatusCreated, tpl)
}

// Reorder assigns new positions to siblings of one kind
// @Summary Reorder siblings
// @Description Positions are 1-based; a position of 0 takes the item's array index + 1
// @Tags Structure
// @Accept json
// @Security BearerAuth
// @Param batch body models.ReorderRequest true "Reorder batch"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Unknown ids"
// @Router /admin/reorder [post]
func (h *StructureHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req models.ReorderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondBadRequest(w, ErrMsgInvalidRequestBody)
		return
	}

	if err := h.reorder.Reorder(r.Context(), req, middleware.Actor(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckDeletion reports whether a node may be deleted and why not
// @Summary Check deletion
// @Description {kind} is template, category, subcategory, indicator or essay. A composite tree id such as subcategory-7 is accepted in place of kind and id.
// @Tags Structure
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Entity kind or tree node id"
// @Param id path string true "Entity ID"
// @Success 200 {object} models.DeletionVerdict
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/deletion-check/{kind}/{id} [get]
func (h *StructureHandler) CheckDeletion(w http.ResponseWriter, r *http.Request) {
	kind := models.EntityKind(r.PathValue("kind"))
	id, err := pathID(r, "id")
	if err != nil {
		respondBadRequest(w, ErrMsgInvalidID)
		return
	}

	verdict, err := h.guard.Check(r.Context(), kind, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = JSONResponse(w, verdict)
}

// CheckNodeDeletion is CheckDeletion addressed by a tree node id
// @Summary Check deletion by tree node id
// @Tags Structure
// @Produce json
// @Security BearerAuth
// @Param node path string true "Tree node id, e.g. indicator-12"
// @Success 200 {object} models.DeletionVerdict
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/deletion-check/{node} [get]
func (h *StructureHandler) CheckNodeDeletion(w http.ResponseWriter, r *http.Request) {
	kind, id, err := models.ParseNodeID(r.PathValue("node"))
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	verdict, err := h.guard.Check(r.Context(), kind, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = JSONResponse(w, verdict)
}
