package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipe represents a recipe owned by a single user.
// Tags and Ingredients are hydrated on demand; a zero-length slice
// means the recipe has no associations, nil means not loaded.
type Recipe struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"owner_id"`
	Title       string          `json:"title"`
	TimeMinutes int             `json:"time_minutes"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	Link        string          `json:"link,omitempty"`
	ImagePath   *string         `json:"-"`
	Tags        []*Tag          `json:"tags,omitempty"`
	Ingredients []*Ingredient   `json:"ingredients,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// HasImage returns true if an image has been attached to the recipe.
func (r *Recipe) HasImage() bool {
	return r.ImagePath != nil && *r.ImagePath != ""
}

// TagIDs returns the ids of the recipe's loaded tags.
func (r *Recipe) TagIDs() []string {
	ids := make([]string, len(r.Tags))
	for i, t := range r.Tags {
		ids[i] = t.ID
	}
	return ids
}

// IngredientIDs returns the ids of the recipe's loaded ingredients.
func (r *Recipe) IngredientIDs() []string {
	ids := make([]string, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		ids[i] = ing.ID
	}
	return ids
}
