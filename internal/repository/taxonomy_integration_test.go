//go:build integration

package repository

import (
	"errors"
	"testing"

	"github.com/saucier/saucier/internal/testutil"
)

func TestIntegrationTaxonomyRepository_TagLifecycle(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)
	owner := seedOwner(ctx, t, repo)

	tag := testutil.NewTestTag(t, owner.ID, "Dessert")
	if err := repo.CreateTag(ctx, tag); err != nil {
		t.Fatalf("CreateTag failed: %v", err)
	}

	retrieved, err := repo.GetTag(ctx, owner.ID, tag.ID)
	if err != nil {
		t.Fatalf("GetTag failed: %v", err)
	}
	if retrieved.Name != "Dessert" {
		t.Errorf("Name mismatch: got %q", retrieved.Name)
	}

	retrieved.Name = "Pudding"
	if err := repo.UpdateTag(ctx, retrieved); err != nil {
		t.Fatalf("UpdateTag failed: %v", err)
	}

	byName, err := repo.GetTagByName(ctx, owner.ID, "Pudding")
	if err != nil {
		t.Fatalf("GetTagByName failed: %v", err)
	}
	if byName.ID != tag.ID {
		t.Errorf("rename lost identity: got %q, want %q", byName.ID, tag.ID)
	}

	if err := repo.DeleteTag(ctx, owner.ID, tag.ID); err != nil {
		t.Fatalf("DeleteTag failed: %v", err)
	}
	if _, err := repo.GetTag(ctx, owner.ID, tag.ID); !errors.Is(err, ErrTagNotFound) {
		t.Errorf("expected ErrTagNotFound after delete, got %v", err)
	}
}

func TestIntegrationTaxonomyRepository_GetTagByName_CaseSensitive(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)
	owner := seedOwner(ctx, t, repo)

	tag := testutil.NewTestTag(t, owner.ID, "Vegan")
	if err := repo.CreateTag(ctx, tag); err != nil {
		t.Fatalf("CreateTag failed: %v", err)
	}

	if _, err := repo.GetTagByName(ctx, owner.ID, "vegan"); !errors.Is(err, ErrTagNotFound) {
		t.Errorf("name lookup should be case sensitive, got %v", err)
	}
}

func TestIntegrationTaxonomyRepository_ListTags_Ordering(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)
	owner := seedOwner(ctx, t, repo)

	for _, name := range []string{"Breakfast", "Vegan", "Dessert"} {
		if err := repo.CreateTag(ctx, testutil.NewTestTag(t, owner.ID, name)); err != nil {
			t.Fatalf("CreateTag(%s) failed: %v", name, err)
		}
	}

	tags, err := repo.ListTags(ctx, TaxonomyFilter{OwnerID: owner.ID})
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}

	want := []string{"Vegan", "Dessert", "Breakfast"}
	if len(tags) != len(want) {
		t.Fatalf("expected %d tags, got %d", len(want), len(tags))
	}
	for i, name := range want {
		if tags[i].Name != name {
			t.Errorf("tags[%d] = %q, want %q", i, tags[i].Name, name)
		}
	}
}

func TestIntegrationTaxonomyRepository_ListTags_AssignedOnly(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)
	owner := seedOwner(ctx, t, repo)

	assigned := testutil.NewTestTag(t, owner.ID, "Assigned")
	orphan := testutil.NewTestTag(t, owner.ID, "Orphan")
	if err := repo.CreateTag(ctx, assigned); err != nil {
		t.Fatalf("CreateTag failed: %v", err)
	}
	if err := repo.CreateTag(ctx, orphan); err != nil {
		t.Fatalf("CreateTag failed: %v", err)
	}

	// Link the assigned tag to two recipes; DISTINCT must collapse it
	// to a single row.
	for _, title := range []string{"One", "Two"} {
		recipe := testutil.NewTestRecipe(t, owner.ID, title)
		if err := repo.CreateRecipe(ctx, recipe, []string{assigned.ID}, nil); err != nil {
			t.Fatalf("CreateRecipe failed: %v", err)
		}
	}

	tags, err := repo.ListTags(ctx, TaxonomyFilter{OwnerID: owner.ID, AssignedOnly: true})
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if len(tags) != 1 || tags[0].ID != assigned.ID {
		t.Errorf("assigned-only should return the linked tag once, got %+v", tags)
	}
}

func TestIntegrationTaxonomyRepository_TagOwnerScoping(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)
	owner := seedOwner(ctx, t, repo)
	other := seedOwner(ctx, t, repo)

	tag := testutil.NewTestTag(t, owner.ID, "Mine")
	if err := repo.CreateTag(ctx, tag); err != nil {
		t.Fatalf("CreateTag failed: %v", err)
	}

	if _, err := repo.GetTag(ctx, other.ID, tag.ID); !errors.Is(err, ErrTagNotFound) {
		t.Errorf("foreign get: expected ErrTagNotFound, got %v", err)
	}

	tags, err := repo.ListTags(ctx, TaxonomyFilter{OwnerID: other.ID})
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("foreign listing should be empty, got %d", len(tags))
	}
}

func TestIntegrationTaxonomyRepository_IngredientLifecycle(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)
	owner := seedOwner(ctx, t, repo)

	ing := testutil.NewTestIngredient(t, owner.ID, "Salt")
	if err := repo.CreateIngredient(ctx, ing); err != nil {
		t.Fatalf("CreateIngredient failed: %v", err)
	}

	byName, err := repo.GetIngredientByName(ctx, owner.ID, "Salt")
	if err != nil {
		t.Fatalf("GetIngredientByName failed: %v", err)
	}
	if byName.ID != ing.ID {
		t.Errorf("ID mismatch: got %q, want %q", byName.ID, ing.ID)
	}

	byName.Name = "Sea Salt"
	if err := repo.UpdateIngredient(ctx, byName); err != nil {
		t.Fatalf("UpdateIngredient failed: %v", err)
	}

	if err := repo.DeleteIngredient(ctx, owner.ID, ing.ID); err != nil {
		t.Fatalf("DeleteIngredient failed: %v", err)
	}
	if _, err := repo.GetIngredient(ctx, owner.ID, ing.ID); !errors.Is(err, ErrIngredientNotFound) {
		t.Errorf("expected ErrIngredientNotFound after delete, got %v", err)
	}
}

func TestIntegrationTaxonomyRepository_DeleteTagLeavesRecipe(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)
	owner := seedOwner(ctx, t, repo)

	tag := testutil.NewTestTag(t, owner.ID, "Fleeting")
	if err := repo.CreateTag(ctx, tag); err != nil {
		t.Fatalf("CreateTag failed: %v", err)
	}

	recipe := testutil.NewTestRecipe(t, owner.ID, "Survivor")
	if err := repo.CreateRecipe(ctx, recipe, []string{tag.ID}, nil); err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	if err := repo.DeleteTag(ctx, owner.ID, tag.ID); err != nil {
		t.Fatalf("DeleteTag failed: %v", err)
	}

	if _, err := repo.GetRecipe(ctx, owner.ID, recipe.ID); err != nil {
		t.Errorf("recipe should survive tag deletion: %v", err)
	}
	tags, err := repo.GetRecipeTags(ctx, recipe.ID)
	if err != nil {
		t.Fatalf("GetRecipeTags failed: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("expected no tags after deletion, got %d", len(tags))
	}
}
