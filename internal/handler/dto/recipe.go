package dto

import (
	"time"

	"github.com/saucier/saucier/internal/model"
)

// NameRef references a tag or ingredient by name in a recipe payload.
type NameRef struct {
	Name string `json:"name" validate:"required,max=255"`
}

// CreateRecipeRequest represents the request body for creating a recipe.
// Price travels as a string to avoid float rounding on money values.
type CreateRecipeRequest struct {
	Title       string    `json:"title" validate:"required,max=255"`
	TimeMinutes int       `json:"time_minutes" validate:"required,gt=0"`
	Price       string    `json:"price" validate:"required"`
	Description string    `json:"description,omitempty"`
	Link        string    `json:"link,omitempty" validate:"omitempty,url,max=255"`
	Tags        []NameRef `json:"tags,omitempty" validate:"dive"`
	Ingredients []NameRef `json:"ingredients,omitempty" validate:"dive"`
}

// UpdateRecipeRequest represents the request body for updating a
// recipe. Nil fields are left unchanged; a present tags or ingredients
// key replaces that relation entirely, with an empty list clearing it.
type UpdateRecipeRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,max=255"`
	TimeMinutes *int       `json:"time_minutes,omitempty" validate:"omitempty,gt=0"`
	Price       *string    `json:"price,omitempty"`
	Description *string    `json:"description,omitempty"`
	Link        *string    `json:"link,omitempty" validate:"omitempty,url,max=255"`
	Tags        *[]NameRef `json:"tags,omitempty" validate:"omitempty,dive"`
	Ingredients *[]NameRef `json:"ingredients,omitempty" validate:"omitempty,dive"`
}

// TagResponse represents a tag in API responses.
type TagResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IngredientResponse represents an ingredient in API responses.
type IngredientResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RecipeResponse represents a recipe in API responses.
type RecipeResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	TimeMinutes int                  `json:"time_minutes"`
	Price       string               `json:"price"`
	Description string               `json:"description"`
	Link        string               `json:"link"`
	ImageURL    *string              `json:"image_url"`
	Tags        []TagResponse        `json:"tags"`
	Ingredients []IngredientResponse `json:"ingredients"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// RecipeListResponse represents a list of recipes.
type RecipeListResponse struct {
	Data []RecipeResponse `json:"data"`
}

// ToRecipeResponse converts a Recipe model to RecipeResponse DTO.
// baseURL prefixes the media path so clients get an absolute image URL.
func ToRecipeResponse(recipe *model.Recipe, baseURL string) *RecipeResponse {
	resp := &RecipeResponse{
		ID:          recipe.ID,
		Title:       recipe.Title,
		TimeMinutes: recipe.TimeMinutes,
		Price:       recipe.Price.StringFixed(2),
		Description: recipe.Description,
		Link:        recipe.Link,
		Tags:        ToTagResponses(recipe.Tags),
		Ingredients: ToIngredientResponses(recipe.Ingredients),
		CreatedAt:   recipe.CreatedAt,
		UpdatedAt:   recipe.UpdatedAt,
	}

	if recipe.HasImage() {
		url := baseURL + "/media/" + *recipe.ImagePath
		resp.ImageURL = &url
	}

	return resp
}

// ToRecipeListResponse converts recipes to a list response.
func ToRecipeListResponse(recipes []*model.Recipe, baseURL string) *RecipeListResponse {
	data := make([]RecipeResponse, len(recipes))
	for i, recipe := range recipes {
		data[i] = *ToRecipeResponse(recipe, baseURL)
	}
	return &RecipeListResponse{Data: data}
}

// ToTagResponses converts tag models to DTOs.
func ToTagResponses(tags []*model.Tag) []TagResponse {
	out := make([]TagResponse, len(tags))
	for i, tag := range tags {
		out[i] = TagResponse{ID: tag.ID, Name: tag.Name}
	}
	return out
}

// ToIngredientResponses converts ingredient models to DTOs.
func ToIngredientResponses(ingredients []*model.Ingredient) []IngredientResponse {
	out := make([]IngredientResponse, len(ingredients))
	for i, ing := range ingredients {
		out[i] = IngredientResponse{ID: ing.ID, Name: ing.Name}
	}
	return out
}
