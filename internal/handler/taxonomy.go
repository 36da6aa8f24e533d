package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saucier/saucier/internal/auth"
	"github.com/saucier/saucier/internal/handler/dto"
	"github.com/saucier/saucier/internal/service"
	"github.com/saucier/saucier/internal/validation"
)

// TaxonomyHandler handles HTTP requests for tags and ingredients.
type TaxonomyHandler struct {
	svc      *service.TaxonomyService
	validate *validation.Validator
	logger   *slog.Logger
}

// NewTaxonomyHandler creates a new TaxonomyHandler.
func NewTaxonomyHandler(svc *service.TaxonomyService, validate *validation.Validator, logger *slog.Logger) *TaxonomyHandler {
	return &TaxonomyHandler{
		svc:      svc,
		validate: validate,
		logger:   logger,
	}
}

// ListTags handles GET /api/v1/tags. With assigned_only=1 only tags
// attached to at least one recipe are returned.
func (h *TaxonomyHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required")
		return
	}

	tags, err := h.svc.ListTags(r.Context(), ownerID, assignedOnly(r))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TagListResponse{Data: dto.ToTagResponses(tags)})
}

// UpdateTag handles PATCH /api/v1/tags/{id}.
func (h *TaxonomyHandler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")

	req, ok := h.decodeName(w, r)
	if !ok {
		return
	}

	tag, err := h.svc.UpdateTag(r.Context(), ownerID, id, req.Name)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("tag_updated", "tag_id", tag.ID, "user_id", ownerID)

	writeJSON(w, http.StatusOK, dto.TagResponse{ID: tag.ID, Name: tag.Name})
}

// DeleteTag handles DELETE /api/v1/tags/{id}.
func (h *TaxonomyHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteTag(r.Context(), ownerID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("tag_deleted", "tag_id", id, "user_id", ownerID)

	w.WriteHeader(http.StatusNoContent)
}

// ListIngredients handles GET /api/v1/ingredients.
func (h *TaxonomyHandler) ListIngredients(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required")
		return
	}

	ingredients, err := h.svc.ListIngredients(r.Context(), ownerID, assignedOnly(r))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.IngredientListResponse{Data: dto.ToIngredientResponses(ingredients)})
}

// UpdateIngredient handles PATCH /api/v1/ingredients/{id}.
func (h *TaxonomyHandler) UpdateIngredient(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")

	req, ok := h.decodeName(w, r)
	if !ok {
		return
	}

	ing, err := h.svc.UpdateIngredient(r.Context(), ownerID, id, req.Name)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("ingredient_updated", "ingredient_id", ing.ID, "user_id", ownerID)

	writeJSON(w, http.StatusOK, dto.IngredientResponse{ID: ing.ID, Name: ing.Name})
}

// DeleteIngredient handles DELETE /api/v1/ingredients/{id}.
func (h *TaxonomyHandler) DeleteIngredient(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteIngredient(r.Context(), ownerID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("ingredient_deleted", "ingredient_id", id, "user_id", ownerID)

	w.WriteHeader(http.StatusNoContent)
}

// decodeName parses and validates a rename body, writing the error
// response itself on failure.
func (h *TaxonomyHandler) decodeName(w http.ResponseWriter, r *http.Request) (dto.UpdateNameRequest, bool) {
	var req dto.UpdateNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return req, false
	}

	if err := h.validate.Validate(req); err != nil {
		if !writeValidationError(w, err) {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request")
		}
		return req, false
	}

	return req, true
}

// handleServiceError maps service errors to HTTP responses.
func (h *TaxonomyHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrTagNotFound):
		writeError(w, http.StatusNotFound, "TAG_NOT_FOUND", "Tag not found")
	case errors.Is(err, service.ErrIngredientNotFound):
		writeError(w, http.StatusNotFound, "INGREDIENT_NOT_FOUND", "Ingredient not found")
	case errors.Is(err, service.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "INVALID_NAME", "Name is required")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// assignedOnly reads the assigned_only query flag.
func assignedOnly(r *http.Request) bool {
	switch r.URL.Query().Get("assigned_only") {
	case "1", "true":
		return true
	default:
		return false
	}
}
