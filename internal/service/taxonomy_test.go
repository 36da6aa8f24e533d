package service

import (
	"context"
	"errors"
	"testing"
)

func seedTaxonomy(t *testing.T, store *memStore) (recipeID string, tagIDs map[string]string) {
	t.Helper()
	svc := newRecipeService(t, store)

	recipe, err := svc.CreateRecipe(context.Background(), func() CreateRecipeInput {
		in := createInput("user-1")
		in.Tags = []NameInput{{Name: "Breakfast"}, {Name: "Vegan"}}
		in.Ingredients = []NameInput{{Name: "Oats"}}
		return in
	}())
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	tagIDs = make(map[string]string)
	for _, tag := range recipe.Tags {
		tagIDs[tag.Name] = tag.ID
	}
	return recipe.ID, tagIDs
}

func TestTaxonomyService_ListTags(t *testing.T) {
	store := newMemStore()
	seedTaxonomy(t, store)
	svc := NewTaxonomyService(store)

	tags, err := svc.ListTags(context.Background(), "user-1", false)
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}

	if len(tags) != 2 {
		t.Fatalf("got %d tags, want 2", len(tags))
	}
	// Name descending.
	if tags[0].Name != "Vegan" || tags[1].Name != "Breakfast" {
		t.Errorf("order = [%s %s], want [Vegan Breakfast]", tags[0].Name, tags[1].Name)
	}
}

func TestTaxonomyService_ListTags_OwnerScoped(t *testing.T) {
	store := newMemStore()
	seedTaxonomy(t, store)
	svc := NewTaxonomyService(store)

	tags, err := svc.ListTags(context.Background(), "user-2", false)
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("another user should see no tags, got %d", len(tags))
	}
}

func TestTaxonomyService_ListTags_AssignedOnly(t *testing.T) {
	store := newMemStore()
	seedTaxonomy(t, store)
	recipeSvc := newRecipeService(t, store)
	ctx := context.Background()

	// An unassigned tag: created via a recipe, then unlinked.
	orphan, err := recipeSvc.CreateRecipe(ctx, func() CreateRecipeInput {
		in := createInput("user-1")
		in.Title = "Scratch"
		in.Tags = []NameInput{{Name: "Unused"}}
		return in
	}())
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}
	empty := []NameInput{}
	if _, err := recipeSvc.UpdateRecipe(ctx, "user-1", orphan.ID, UpdateRecipeInput{Tags: &empty}); err != nil {
		t.Fatalf("UpdateRecipe failed: %v", err)
	}

	svc := NewTaxonomyService(store)

	all, err := svc.ListTags(ctx, "user-1", false)
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d tags unfiltered, want 3", len(all))
	}

	assigned, err := svc.ListTags(ctx, "user-1", true)
	if err != nil {
		t.Fatalf("ListTags assigned failed: %v", err)
	}
	if len(assigned) != 2 {
		t.Fatalf("got %d assigned tags, want 2", len(assigned))
	}
	for _, tag := range assigned {
		if tag.Name == "Unused" {
			t.Error("unassigned tag should be filtered out")
		}
	}
}

func TestTaxonomyService_ListTags_AssignedOnlyDedup(t *testing.T) {
	store := newMemStore()
	_, tagIDs := seedTaxonomy(t, store)
	recipeSvc := newRecipeService(t, store)
	ctx := context.Background()

	// Link Vegan to a second recipe as well.
	if _, err := recipeSvc.CreateRecipe(ctx, func() CreateRecipeInput {
		in := createInput("user-1")
		in.Title = "Smoothie"
		in.Tags = []NameInput{{Name: "Vegan"}}
		return in
	}()); err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	svc := NewTaxonomyService(store)
	assigned, err := svc.ListTags(ctx, "user-1", true)
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}

	count := 0
	for _, tag := range assigned {
		if tag.ID == tagIDs["Vegan"] {
			count++
		}
	}
	if count != 1 {
		t.Errorf("tag on two recipes appeared %d times, want 1", count)
	}
}

func TestTaxonomyService_UpdateTag(t *testing.T) {
	store := newMemStore()
	_, tagIDs := seedTaxonomy(t, store)
	svc := NewTaxonomyService(store)
	ctx := context.Background()

	tag, err := svc.UpdateTag(ctx, "user-1", tagIDs["Vegan"], "Plant-based")
	if err != nil {
		t.Fatalf("UpdateTag failed: %v", err)
	}
	if tag.Name != "Plant-based" {
		t.Errorf("name = %s, want Plant-based", tag.Name)
	}

	if _, err := svc.UpdateTag(ctx, "user-2", tagIDs["Breakfast"], "Stolen"); !errors.Is(err, ErrTagNotFound) {
		t.Errorf("foreign update error = %v, want ErrTagNotFound", err)
	}
	if _, err := svc.UpdateTag(ctx, "user-1", tagIDs["Breakfast"], ""); !errors.Is(err, ErrInvalidName) {
		t.Errorf("empty name error = %v, want ErrInvalidName", err)
	}
}

func TestTaxonomyService_DeleteTag_LeavesRecipes(t *testing.T) {
	store := newMemStore()
	recipeID, tagIDs := seedTaxonomy(t, store)
	svc := NewTaxonomyService(store)
	recipeSvc := newRecipeService(t, store)
	ctx := context.Background()

	if err := svc.DeleteTag(ctx, "user-1", tagIDs["Vegan"]); err != nil {
		t.Fatalf("DeleteTag failed: %v", err)
	}

	if err := svc.DeleteTag(ctx, "user-1", tagIDs["Vegan"]); !errors.Is(err, ErrTagNotFound) {
		t.Errorf("second delete error = %v, want ErrTagNotFound", err)
	}

	recipe, err := recipeSvc.GetRecipe(ctx, "user-1", recipeID)
	if err != nil {
		t.Fatalf("recipe should survive tag deletion: %v", err)
	}
	if len(recipe.Tags) != 1 || recipe.Tags[0].Name != "Breakfast" {
		t.Errorf("recipe tags = %v, want only Breakfast", recipe.Tags)
	}
}

func TestTaxonomyService_Ingredients(t *testing.T) {
	store := newMemStore()
	recipeID, _ := seedTaxonomy(t, store)
	svc := NewTaxonomyService(store)
	recipeSvc := newRecipeService(t, store)
	ctx := context.Background()

	ingredients, err := svc.ListIngredients(ctx, "user-1", false)
	if err != nil {
		t.Fatalf("ListIngredients failed: %v", err)
	}
	if len(ingredients) != 1 || ingredients[0].Name != "Oats" {
		t.Fatalf("ingredients = %v, want [Oats]", ingredients)
	}

	renamed, err := svc.UpdateIngredient(ctx, "user-1", ingredients[0].ID, "Rolled oats")
	if err != nil {
		t.Fatalf("UpdateIngredient failed: %v", err)
	}
	if renamed.Name != "Rolled oats" {
		t.Errorf("name = %s, want Rolled oats", renamed.Name)
	}

	if err := svc.DeleteIngredient(ctx, "user-1", renamed.ID); err != nil {
		t.Fatalf("DeleteIngredient failed: %v", err)
	}

	recipe, err := recipeSvc.GetRecipe(ctx, "user-1", recipeID)
	if err != nil {
		t.Fatalf("recipe should survive ingredient deletion: %v", err)
	}
	if len(recipe.Ingredients) != 0 {
		t.Errorf("recipe ingredients = %v, want empty", recipe.Ingredients)
	}

	if err := svc.DeleteIngredient(ctx, "user-1", "missing"); !errors.Is(err, ErrIngredientNotFound) {
		t.Errorf("error = %v, want ErrIngredientNotFound", err)
	}
}
