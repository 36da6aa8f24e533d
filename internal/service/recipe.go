package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"time"

	// Image formats accepted for recipe uploads. Decoders register
	// themselves with the image package.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/saucier/saucier/internal/model"
	"github.com/saucier/saucier/internal/repository"
	"github.com/saucier/saucier/internal/storage"
)

// Recipe service errors.
var (
	ErrRecipeNotFound = errors.New("recipe not found")
	ErrInvalidTitle   = errors.New("title is required")
	ErrInvalidTime    = errors.New("time_minutes must be positive")
	ErrInvalidPrice   = errors.New("price must not be negative")
	ErrInvalidImage   = errors.New("invalid image payload")
)

// RecipeStore defines the persistence operations the recipe service
// needs. *repository.Repository satisfies it; tests substitute an
// in-memory implementation.
type RecipeStore interface {
	CreateRecipe(ctx context.Context, recipe *model.Recipe, tagIDs, ingredientIDs []string) error
	GetRecipe(ctx context.Context, ownerID, id string) (*model.Recipe, error)
	ListRecipes(ctx context.Context, filter repository.RecipeFilter) ([]*model.Recipe, error)
	UpdateRecipe(ctx context.Context, recipe *model.Recipe) error
	DeleteRecipe(ctx context.Context, ownerID, id string) error
	SetRecipeImage(ctx context.Context, ownerID, id, imagePath string) error

	ReplaceRecipeTags(ctx context.Context, recipeID string, tagIDs []string) error
	ReplaceRecipeIngredients(ctx context.Context, recipeID string, ingredientIDs []string) error
	GetRecipeTags(ctx context.Context, recipeID string) ([]*model.Tag, error)
	GetRecipeIngredients(ctx context.Context, recipeID string) ([]*model.Ingredient, error)
	ListRecipeTags(ctx context.Context, recipeIDs []string) (map[string][]*model.Tag, error)
	ListRecipeIngredients(ctx context.Context, recipeIDs []string) (map[string][]*model.Ingredient, error)

	GetTagByName(ctx context.Context, ownerID, name string) (*model.Tag, error)
	CreateTag(ctx context.Context, tag *model.Tag) error
	GetIngredientByName(ctx context.Context, ownerID, name string) (*model.Ingredient, error)
	CreateIngredient(ctx context.Context, ing *model.Ingredient) error
}

// RecipeService handles recipe business logic, including resolving
// tag/ingredient name descriptors into reused-or-created entities.
type RecipeService struct {
	store  RecipeStore
	images *storage.Store
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(store RecipeStore, images *storage.Store) *RecipeService {
	return &RecipeService{
		store:  store,
		images: images,
	}
}

// NameInput is a tag or ingredient descriptor in a recipe payload.
type NameInput struct {
	Name string
}

// CreateRecipeInput defines input for creating a recipe. OwnerID comes
// from the authenticated request context, never from the payload.
type CreateRecipeInput struct {
	OwnerID     string
	Title       string
	TimeMinutes int
	Price       decimal.Decimal
	Description string
	Link        string
	Tags        []NameInput
	Ingredients []NameInput
}

// CreateRecipe creates a recipe and links its tags and ingredients.
// Each descriptor reuses the owner's existing (owner, name) entity when
// one exists and creates it otherwise; within one request a name is
// never resolved twice.
func (s *RecipeService) CreateRecipe(ctx context.Context, input CreateRecipeInput) (*model.Recipe, error) {
	if input.Title == "" {
		return nil, ErrInvalidTitle
	}
	if input.TimeMinutes <= 0 {
		return nil, ErrInvalidTime
	}
	if input.Price.IsNegative() {
		return nil, ErrInvalidPrice
	}

	tags, err := s.resolveTags(ctx, input.OwnerID, input.Tags)
	if err != nil {
		return nil, err
	}
	ingredients, err := s.resolveIngredients(ctx, input.OwnerID, input.Ingredients)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	recipe := &model.Recipe{
		ID:          ulid.Make().String(),
		OwnerID:     input.OwnerID,
		Title:       input.Title,
		TimeMinutes: input.TimeMinutes,
		Price:       input.Price,
		Description: input.Description,
		Link:        input.Link,
		Tags:        tags,
		Ingredients: ingredients,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateRecipe(ctx, recipe, recipe.TagIDs(), recipe.IngredientIDs()); err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	return recipe, nil
}

// GetRecipe retrieves one of the owner's recipes with its associations
// hydrated. A recipe owned by someone else reports ErrRecipeNotFound,
// never a permission error.
func (s *RecipeService) GetRecipe(ctx context.Context, ownerID, id string) (*model.Recipe, error) {
	recipe, err := s.store.GetRecipe(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	if err := s.hydrate(ctx, recipe); err != nil {
		return nil, err
	}

	return recipe, nil
}

// ListRecipesInput defines input for listing recipes.
type ListRecipesInput struct {
	OwnerID       string
	TagIDs        []string
	IngredientIDs []string
}

// ListRecipes returns the owner's recipes, newest first, optionally
// restricted to those linked to any of the given tag or ingredient ids.
// A recipe matching several requested ids appears exactly once.
func (s *RecipeService) ListRecipes(ctx context.Context, input ListRecipesInput) ([]*model.Recipe, error) {
	recipes, err := s.store.ListRecipes(ctx, repository.RecipeFilter{
		OwnerID:       input.OwnerID,
		TagIDs:        input.TagIDs,
		IngredientIDs: input.IngredientIDs,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(recipes))
	for i, recipe := range recipes {
		ids[i] = recipe.ID
	}

	tagsByRecipe, err := s.store.ListRecipeTags(ctx, ids)
	if err != nil {
		return nil, err
	}
	ingredientsByRecipe, err := s.store.ListRecipeIngredients(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, recipe := range recipes {
		recipe.Tags = orEmptyTags(tagsByRecipe[recipe.ID])
		recipe.Ingredients = orEmptyIngredients(ingredientsByRecipe[recipe.ID])
	}

	return recipes, nil
}

// UpdateRecipeInput defines input for updating a recipe. Nil scalar
// fields are left unchanged. A non-nil Tags or Ingredients slice
// replaces that relation entirely; an empty slice clears it.
type UpdateRecipeInput struct {
	Title       *string
	TimeMinutes *int
	Price       *decimal.Decimal
	Description *string
	Link        *string
	Tags        *[]NameInput
	Ingredients *[]NameInput
}

// UpdateRecipe applies a partial or full update to one of the owner's
// recipes. The owner itself is immutable; there is no input field for
// it, and payload attempts to change it are dropped at the handler.
func (s *RecipeService) UpdateRecipe(ctx context.Context, ownerID, id string, input UpdateRecipeInput) (*model.Recipe, error) {
	recipe, err := s.store.GetRecipe(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrInvalidTitle
		}
		recipe.Title = *input.Title
	}
	if input.TimeMinutes != nil {
		if *input.TimeMinutes <= 0 {
			return nil, ErrInvalidTime
		}
		recipe.TimeMinutes = *input.TimeMinutes
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, ErrInvalidPrice
		}
		recipe.Price = *input.Price
	}
	if input.Description != nil {
		recipe.Description = *input.Description
	}
	if input.Link != nil {
		recipe.Link = *input.Link
	}

	recipe.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateRecipe(ctx, recipe); err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	if input.Tags != nil {
		tags, err := s.resolveTags(ctx, ownerID, *input.Tags)
		if err != nil {
			return nil, err
		}
		recipe.Tags = tags
		if err := s.store.ReplaceRecipeTags(ctx, recipe.ID, recipe.TagIDs()); err != nil {
			return nil, fmt.Errorf("failed to replace tags: %w", err)
		}
	} else {
		tags, err := s.store.GetRecipeTags(ctx, recipe.ID)
		if err != nil {
			return nil, err
		}
		recipe.Tags = orEmptyTags(tags)
	}

	if input.Ingredients != nil {
		ingredients, err := s.resolveIngredients(ctx, ownerID, *input.Ingredients)
		if err != nil {
			return nil, err
		}
		recipe.Ingredients = ingredients
		if err := s.store.ReplaceRecipeIngredients(ctx, recipe.ID, recipe.IngredientIDs()); err != nil {
			return nil, fmt.Errorf("failed to replace ingredients: %w", err)
		}
	} else {
		ingredients, err := s.store.GetRecipeIngredients(ctx, recipe.ID)
		if err != nil {
			return nil, err
		}
		recipe.Ingredients = orEmptyIngredients(ingredients)
	}

	return recipe, nil
}

// DeleteRecipe removes one of the owner's recipes and its stored image.
// A foreign recipe reports ErrRecipeNotFound and is left intact.
func (s *RecipeService) DeleteRecipe(ctx context.Context, ownerID, id string) error {
	recipe, err := s.store.GetRecipe(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}

	if err := s.store.DeleteRecipe(ctx, ownerID, id); err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}

	if recipe.HasImage() && s.images != nil {
		// Best effort: an orphaned file is preferable to failing the delete.
		_ = s.images.Remove(*recipe.ImagePath)
	}

	return nil
}

// AttachImage validates and stores an image for one of the owner's
// recipes. The stored filename is a fresh uuid plus the original
// extension. On any failure the recipe's prior state is unchanged.
func (s *RecipeService) AttachImage(ctx context.Context, ownerID, id, filename string, r io.Reader) (*model.Recipe, error) {
	recipe, err := s.store.GetRecipe(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image payload: %w", err)
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, ErrInvalidImage
	}

	name := storage.ImageFileName(filename)
	path, err := s.images.Save(name, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	if err := s.store.SetRecipeImage(ctx, ownerID, id, path); err != nil {
		_ = s.images.Remove(path)
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	if recipe.HasImage() {
		_ = s.images.Remove(*recipe.ImagePath)
	}
	recipe.ImagePath = &path

	return recipe, nil
}

// resolveTags converts name descriptors into tag references, reusing
// the owner's existing tag for a name and creating it otherwise.
// Duplicate names within one request resolve to a single entity.
func (s *RecipeService) resolveTags(ctx context.Context, ownerID string, inputs []NameInput) ([]*model.Tag, error) {
	tags := make([]*model.Tag, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))

	for _, input := range inputs {
		if seen[input.Name] {
			continue
		}
		seen[input.Name] = true

		tag, err := s.store.GetTagByName(ctx, ownerID, input.Name)
		if err == nil {
			tags = append(tags, tag)
			continue
		}
		if !errors.Is(err, repository.ErrTagNotFound) {
			return nil, err
		}

		tag = &model.Tag{
			ID:        ulid.Make().String(),
			OwnerID:   ownerID,
			Name:      input.Name,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.store.CreateTag(ctx, tag); err != nil {
			return nil, fmt.Errorf("failed to create tag: %w", err)
		}
		tags = append(tags, tag)
	}

	return tags, nil
}

// resolveIngredients mirrors resolveTags for the ingredient namespace.
func (s *RecipeService) resolveIngredients(ctx context.Context, ownerID string, inputs []NameInput) ([]*model.Ingredient, error) {
	ingredients := make([]*model.Ingredient, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))

	for _, input := range inputs {
		if seen[input.Name] {
			continue
		}
		seen[input.Name] = true

		ing, err := s.store.GetIngredientByName(ctx, ownerID, input.Name)
		if err == nil {
			ingredients = append(ingredients, ing)
			continue
		}
		if !errors.Is(err, repository.ErrIngredientNotFound) {
			return nil, err
		}

		ing = &model.Ingredient{
			ID:        ulid.Make().String(),
			OwnerID:   ownerID,
			Name:      input.Name,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.store.CreateIngredient(ctx, ing); err != nil {
			return nil, fmt.Errorf("failed to create ingredient: %w", err)
		}
		ingredients = append(ingredients, ing)
	}

	return ingredients, nil
}

// hydrate loads a recipe's tag and ingredient associations.
func (s *RecipeService) hydrate(ctx context.Context, recipe *model.Recipe) error {
	tags, err := s.store.GetRecipeTags(ctx, recipe.ID)
	if err != nil {
		return err
	}
	recipe.Tags = orEmptyTags(tags)

	ingredients, err := s.store.GetRecipeIngredients(ctx, recipe.ID)
	if err != nil {
		return err
	}
	recipe.Ingredients = orEmptyIngredients(ingredients)

	return nil
}

func orEmptyTags(tags []*model.Tag) []*model.Tag {
	if tags == nil {
		return []*model.Tag{}
	}
	return tags
}

func orEmptyIngredients(ingredients []*model.Ingredient) []*model.Ingredient {
	if ingredients == nil {
		return []*model.Ingredient{}
	}
	return ingredients
}
