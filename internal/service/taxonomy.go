package service

import (
	"context"
	"errors"

	"github.com/saucier/saucier/internal/model"
	"github.com/saucier/saucier/internal/repository"
)

// Taxonomy service errors.
var (
	ErrTagNotFound        = errors.New("tag not found")
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrInvalidName        = errors.New("name is required")
)

// TaxonomyStore defines the persistence operations the taxonomy
// service needs. *repository.Repository satisfies it.
type TaxonomyStore interface {
	GetTag(ctx context.Context, ownerID, id string) (*model.Tag, error)
	ListTags(ctx context.Context, filter repository.TaxonomyFilter) ([]*model.Tag, error)
	UpdateTag(ctx context.Context, tag *model.Tag) error
	DeleteTag(ctx context.Context, ownerID, id string) error

	GetIngredient(ctx context.Context, ownerID, id string) (*model.Ingredient, error)
	ListIngredients(ctx context.Context, filter repository.TaxonomyFilter) ([]*model.Ingredient, error)
	UpdateIngredient(ctx context.Context, ing *model.Ingredient) error
	DeleteIngredient(ctx context.Context, ownerID, id string) error
}

// TaxonomyService manages tags and ingredients directly, outside the
// recipe payload path. Creation happens implicitly through recipes.
type TaxonomyService struct {
	store TaxonomyStore
}

// NewTaxonomyService creates a new TaxonomyService.
func NewTaxonomyService(store TaxonomyStore) *TaxonomyService {
	return &TaxonomyService{store: store}
}

// ListTags returns the owner's tags, name-descending. With assignedOnly
// set, only tags linked to at least one recipe are included, each once.
func (s *TaxonomyService) ListTags(ctx context.Context, ownerID string, assignedOnly bool) ([]*model.Tag, error) {
	tags, err := s.store.ListTags(ctx, repository.TaxonomyFilter{
		OwnerID:      ownerID,
		AssignedOnly: assignedOnly,
	})
	if err != nil {
		return nil, err
	}
	return orEmptyTags(tags), nil
}

// UpdateTag renames one of the owner's tags. Foreign tags report
// ErrTagNotFound.
func (s *TaxonomyService) UpdateTag(ctx context.Context, ownerID, id, name string) (*model.Tag, error) {
	if name == "" {
		return nil, ErrInvalidName
	}

	tag, err := s.store.GetTag(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrTagNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}

	tag.Name = name
	if err := s.store.UpdateTag(ctx, tag); err != nil {
		if errors.Is(err, repository.ErrTagNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}

	return tag, nil
}

// DeleteTag removes one of the owner's tags. Recipes referencing it
// lose the link but are otherwise untouched.
func (s *TaxonomyService) DeleteTag(ctx context.Context, ownerID, id string) error {
	if err := s.store.DeleteTag(ctx, ownerID, id); err != nil {
		if errors.Is(err, repository.ErrTagNotFound) {
			return ErrTagNotFound
		}
		return err
	}
	return nil
}

// ListIngredients returns the owner's ingredients, name-descending,
// optionally restricted to those assigned to at least one recipe.
func (s *TaxonomyService) ListIngredients(ctx context.Context, ownerID string, assignedOnly bool) ([]*model.Ingredient, error) {
	ingredients, err := s.store.ListIngredients(ctx, repository.TaxonomyFilter{
		OwnerID:      ownerID,
		AssignedOnly: assignedOnly,
	})
	if err != nil {
		return nil, err
	}
	return orEmptyIngredients(ingredients), nil
}

// UpdateIngredient renames one of the owner's ingredients.
func (s *TaxonomyService) UpdateIngredient(ctx context.Context, ownerID, id, name string) (*model.Ingredient, error) {
	if name == "" {
		return nil, ErrInvalidName
	}

	ing, err := s.store.GetIngredient(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrIngredientNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, err
	}

	ing.Name = name
	if err := s.store.UpdateIngredient(ctx, ing); err != nil {
		if errors.Is(err, repository.ErrIngredientNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, err
	}

	return ing, nil
}

// DeleteIngredient removes one of the owner's ingredients.
func (s *TaxonomyService) DeleteIngredient(ctx context.Context, ownerID, id string) error {
	if err := s.store.DeleteIngredient(ctx, ownerID, id); err != nil {
		if errors.Is(err, repository.ErrIngredientNotFound) {
			return ErrIngredientNotFound
		}
		return err
	}
	return nil
}
