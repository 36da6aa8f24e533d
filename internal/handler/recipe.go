package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/saucier/saucier/internal/auth"
	"github.com/saucier/saucier/internal/handler/dto"
	"github.com/saucier/saucier/internal/service"
	"github.com/saucier/saucier/internal/validation"
)

// maxImageMemory caps the multipart form buffer for image uploads.
const maxImageMemory = 8 << 20

// RecipeHandler handles HTTP requests for recipe operations.
type RecipeHandler struct {
	svc      *service.RecipeService
	validate *validation.Validator
	baseURL  string
	logger   *slog.Logger
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(svc *service.RecipeService, validate *validation.Validator, baseURL string, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{
		svc:      svc,
		validate: validate,
		baseURL:  baseURL,
		logger:   logger,
	}
}

// Create handles POST /api/v1/recipes.
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required")
		return
	}

	var req dto.CreateRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := h.validate.Validate(req); err != nil {
		if writeValidationError(w, err) {
			return
		}
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request")
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PRICE", "Price must be a decimal number")
		return
	}

	recipe, err := h.svc.CreateRecipe(r.Context(), service.CreateRecipeInput{
		OwnerID:     ownerID,
		Title:       req.Title,
		TimeMinutes: req.TimeMinutes,
		Price:       price,
		Description: req.Description,
		Link:        req.Link,
		Tags:        toNameInputs(req.Tags),
		Ingredients: toNameInputs(req.Ingredients),
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("recipe_created", "recipe_id", recipe.ID, "user_id", ownerID)

	writeJSON(w, http.StatusCreated, dto.ToRecipeResponse(recipe, h.baseURL))
}

// List handles GET /api/v1/recipes. The tags and ingredients query
// parameters take comma-separated id lists; any match qualifies.
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required")
		return
	}

	query := r.URL.Query()

	recipes, err := h.svc.ListRecipes(r.Context(), service.ListRecipesInput{
		OwnerID:       ownerID,
		TagIDs:        splitIDs(query.Get("tags")),
		IngredientIDs: splitIDs(query.Get("ingredients")),
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToRecipeListResponse(recipes, h.baseURL))
}

// Get handles GET /api/v1/recipes/{id}.
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	recipe, err := h.svc.GetRecipe(r.Context(), ownerID, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToRecipeResponse(recipe, h.baseURL))
}

// Update handles PATCH and PUT /api/v1/recipes/{id}. For PUT all
// required fields must be present in the body.
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")

	var req dto.UpdateRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := h.validate.Validate(req); err != nil {
		if writeValidationError(w, err) {
			return
		}
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request")
		return
	}

	if r.Method == http.MethodPut {
		if req.Title == nil || req.TimeMinutes == nil || req.Price == nil {
			writeError(w, http.StatusBadRequest, "MISSING_FIELDS", "title, time_minutes and price are required")
			return
		}
	}

	input := service.UpdateRecipeInput{
		Title:       req.Title,
		TimeMinutes: req.TimeMinutes,
		Description: req.Description,
		Link:        req.Link,
	}

	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_PRICE", "Price must be a decimal number")
			return
		}
		input.Price = &price
	}

	if req.Tags != nil {
		tags := toNameInputs(*req.Tags)
		input.Tags = &tags
	}
	if req.Ingredients != nil {
		ingredients := toNameInputs(*req.Ingredients)
		input.Ingredients = &ingredients
	}

	recipe, err := h.svc.UpdateRecipe(r.Context(), ownerID, id, input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("recipe_updated", "recipe_id", recipe.ID, "user_id", ownerID)

	writeJSON(w, http.StatusOK, dto.ToRecipeResponse(recipe, h.baseURL))
}

// Delete handles DELETE /api/v1/recipes/{id}.
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteRecipe(r.Context(), ownerID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("recipe_deleted", "recipe_id", id, "user_id", ownerID)

	w.WriteHeader(http.StatusNoContent)
}

// UploadImage handles POST /api/v1/recipes/{id}/image. The payload is
// a multipart form with the file under the "image" field.
func (h *RecipeHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")

	if err := r.ParseMultipartForm(maxImageMemory); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_MULTIPART", "Expected multipart form data")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "MISSING_IMAGE", "Image file is required")
		return
	}
	defer file.Close()

	recipe, err := h.svc.AttachImage(r.Context(), ownerID, id, header.Filename, file)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("recipe_image_uploaded", "recipe_id", recipe.ID, "user_id", ownerID)

	writeJSON(w, http.StatusOK, dto.ToRecipeResponse(recipe, h.baseURL))
}

// handleServiceError maps service errors to HTTP responses.
func (h *RecipeHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrRecipeNotFound):
		writeError(w, http.StatusNotFound, "RECIPE_NOT_FOUND", "Recipe not found")
	case errors.Is(err, service.ErrInvalidTitle):
		writeError(w, http.StatusBadRequest, "INVALID_TITLE", "Title is required")
	case errors.Is(err, service.ErrInvalidTime):
		writeError(w, http.StatusBadRequest, "INVALID_TIME", "Time must be a positive number of minutes")
	case errors.Is(err, service.ErrInvalidPrice):
		writeError(w, http.StatusBadRequest, "INVALID_PRICE", "Price must not be negative")
	case errors.Is(err, service.ErrInvalidImage):
		writeError(w, http.StatusBadRequest, "INVALID_IMAGE", "Payload is not a supported image")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// toNameInputs converts DTO name refs to service inputs.
func toNameInputs(refs []dto.NameRef) []service.NameInput {
	out := make([]service.NameInput, len(refs))
	for i, ref := range refs {
		out[i] = service.NameInput{Name: ref.Name}
	}
	return out
}

// splitIDs parses a comma-separated id list, dropping empty segments.
func splitIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}
