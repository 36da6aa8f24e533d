package dto

// UpdateNameRequest represents the request body for renaming a tag or
// ingredient.
type UpdateNameRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// TagListResponse represents a list of tags.
type TagListResponse struct {
	Data []TagResponse `json:"data"`
}

// IngredientListResponse represents a list of ingredients.
type IngredientListResponse struct {
	Data []IngredientResponse `json:"data"`
}
