package service

import (
	"context"
	"sort"

	"github.com/saucier/saucier/internal/model"
	"github.com/saucier/saucier/internal/repository"
)

// memStore is an in-memory store used by service tests. It mirrors the
// repository's owner scoping and ordering so service behavior can be
// exercised without a database.
type memStore struct {
	users             map[string]*model.User
	tokens            map[string]*model.AuthToken
	recipes           map[string]*model.Recipe
	tags              map[string]*model.Tag
	ingredients       map[string]*model.Ingredient
	recipeTags        map[string][]string
	recipeIngredients map[string][]string
}

func newMemStore() *memStore {
	return &memStore{
		users:             make(map[string]*model.User),
		tokens:            make(map[string]*model.AuthToken),
		recipes:           make(map[string]*model.Recipe),
		tags:              make(map[string]*model.Tag),
		ingredients:       make(map[string]*model.Ingredient),
		recipeTags:        make(map[string][]string),
		recipeIngredients: make(map[string][]string),
	}
}

// --- UserStore ---

func (m *memStore) CreateUser(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memStore) UpdateUser(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	for id, u := range m.users {
		if id != user.ID && u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memStore) CreateAuthToken(_ context.Context, token *model.AuthToken) error {
	cp := *token
	m.tokens[token.ID] = &cp
	return nil
}

// --- RecipeStore ---

func (m *memStore) CreateRecipe(_ context.Context, recipe *model.Recipe, tagIDs, ingredientIDs []string) error {
	cp := *recipe
	cp.Tags = nil
	cp.Ingredients = nil
	m.recipes[recipe.ID] = &cp
	m.recipeTags[recipe.ID] = append([]string(nil), tagIDs...)
	m.recipeIngredients[recipe.ID] = append([]string(nil), ingredientIDs...)
	return nil
}

func (m *memStore) GetRecipe(_ context.Context, ownerID, id string) (*model.Recipe, error) {
	r, ok := m.recipes[id]
	if !ok || r.OwnerID != ownerID {
		return nil, repository.ErrRecipeNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) ListRecipes(_ context.Context, filter repository.RecipeFilter) ([]*model.Recipe, error) {
	var out []*model.Recipe
	for _, r := range m.recipes {
		if r.OwnerID != filter.OwnerID {
			continue
		}
		if len(filter.TagIDs) > 0 || len(filter.IngredientIDs) > 0 {
			if !m.linkedToAny(r.ID, filter.TagIDs, filter.IngredientIDs) {
				continue
			}
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memStore) linkedToAny(recipeID string, tagIDs, ingredientIDs []string) bool {
	for _, want := range tagIDs {
		for _, have := range m.recipeTags[recipeID] {
			if want == have {
				return true
			}
		}
	}
	for _, want := range ingredientIDs {
		for _, have := range m.recipeIngredients[recipeID] {
			if want == have {
				return true
			}
		}
	}
	return false
}

func (m *memStore) UpdateRecipe(_ context.Context, recipe *model.Recipe) error {
	existing, ok := m.recipes[recipe.ID]
	if !ok || existing.OwnerID != recipe.OwnerID {
		return repository.ErrRecipeNotFound
	}
	cp := *recipe
	cp.Tags = nil
	cp.Ingredients = nil
	cp.ImagePath = existing.ImagePath
	m.recipes[recipe.ID] = &cp
	return nil
}

func (m *memStore) DeleteRecipe(_ context.Context, ownerID, id string) error {
	r, ok := m.recipes[id]
	if !ok || r.OwnerID != ownerID {
		return repository.ErrRecipeNotFound
	}
	delete(m.recipes, id)
	delete(m.recipeTags, id)
	delete(m.recipeIngredients, id)
	return nil
}

func (m *memStore) SetRecipeImage(_ context.Context, ownerID, id, imagePath string) error {
	r, ok := m.recipes[id]
	if !ok || r.OwnerID != ownerID {
		return repository.ErrRecipeNotFound
	}
	r.ImagePath = &imagePath
	return nil
}

func (m *memStore) ReplaceRecipeTags(_ context.Context, recipeID string, tagIDs []string) error {
	m.recipeTags[recipeID] = append([]string(nil), tagIDs...)
	return nil
}

func (m *memStore) ReplaceRecipeIngredients(_ context.Context, recipeID string, ingredientIDs []string) error {
	m.recipeIngredients[recipeID] = append([]string(nil), ingredientIDs...)
	return nil
}

func (m *memStore) GetRecipeTags(_ context.Context, recipeID string) ([]*model.Tag, error) {
	var out []*model.Tag
	for _, id := range m.recipeTags[recipeID] {
		if tag, ok := m.tags[id]; ok {
			cp := *tag
			out = append(out, &cp)
		}
	}
	sortTagsNameDesc(out)
	return out, nil
}

func (m *memStore) GetRecipeIngredients(_ context.Context, recipeID string) ([]*model.Ingredient, error) {
	var out []*model.Ingredient
	for _, id := range m.recipeIngredients[recipeID] {
		if ing, ok := m.ingredients[id]; ok {
			cp := *ing
			out = append(out, &cp)
		}
	}
	sortIngredientsNameDesc(out)
	return out, nil
}

func (m *memStore) ListRecipeTags(ctx context.Context, recipeIDs []string) (map[string][]*model.Tag, error) {
	out := make(map[string][]*model.Tag, len(recipeIDs))
	for _, id := range recipeIDs {
		tags, err := m.GetRecipeTags(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = tags
	}
	return out, nil
}

func (m *memStore) ListRecipeIngredients(ctx context.Context, recipeIDs []string) (map[string][]*model.Ingredient, error) {
	out := make(map[string][]*model.Ingredient, len(recipeIDs))
	for _, id := range recipeIDs {
		ingredients, err := m.GetRecipeIngredients(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = ingredients
	}
	return out, nil
}

func (m *memStore) GetTagByName(_ context.Context, ownerID, name string) (*model.Tag, error) {
	for _, tag := range m.tags {
		if tag.OwnerID == ownerID && tag.Name == name {
			cp := *tag
			return &cp, nil
		}
	}
	return nil, repository.ErrTagNotFound
}

func (m *memStore) CreateTag(_ context.Context, tag *model.Tag) error {
	cp := *tag
	m.tags[tag.ID] = &cp
	return nil
}

func (m *memStore) GetIngredientByName(_ context.Context, ownerID, name string) (*model.Ingredient, error) {
	for _, ing := range m.ingredients {
		if ing.OwnerID == ownerID && ing.Name == name {
			cp := *ing
			return &cp, nil
		}
	}
	return nil, repository.ErrIngredientNotFound
}

func (m *memStore) CreateIngredient(_ context.Context, ing *model.Ingredient) error {
	cp := *ing
	m.ingredients[ing.ID] = &cp
	return nil
}

// --- TaxonomyStore ---

func (m *memStore) GetTag(_ context.Context, ownerID, id string) (*model.Tag, error) {
	tag, ok := m.tags[id]
	if !ok || tag.OwnerID != ownerID {
		return nil, repository.ErrTagNotFound
	}
	cp := *tag
	return &cp, nil
}

func (m *memStore) ListTags(_ context.Context, filter repository.TaxonomyFilter) ([]*model.Tag, error) {
	var out []*model.Tag
	for _, tag := range m.tags {
		if tag.OwnerID != filter.OwnerID {
			continue
		}
		if filter.AssignedOnly && !m.tagAssigned(tag.ID) {
			continue
		}
		cp := *tag
		out = append(out, &cp)
	}
	sortTagsNameDesc(out)
	return out, nil
}

func (m *memStore) tagAssigned(tagID string) bool {
	for _, ids := range m.recipeTags {
		for _, id := range ids {
			if id == tagID {
				return true
			}
		}
	}
	return false
}

func (m *memStore) UpdateTag(_ context.Context, tag *model.Tag) error {
	existing, ok := m.tags[tag.ID]
	if !ok || existing.OwnerID != tag.OwnerID {
		return repository.ErrTagNotFound
	}
	cp := *tag
	m.tags[tag.ID] = &cp
	return nil
}

func (m *memStore) DeleteTag(_ context.Context, ownerID, id string) error {
	tag, ok := m.tags[id]
	if !ok || tag.OwnerID != ownerID {
		return repository.ErrTagNotFound
	}
	delete(m.tags, id)
	for recipeID, ids := range m.recipeTags {
		m.recipeTags[recipeID] = removeID(ids, id)
	}
	return nil
}

func (m *memStore) GetIngredient(_ context.Context, ownerID, id string) (*model.Ingredient, error) {
	ing, ok := m.ingredients[id]
	if !ok || ing.OwnerID != ownerID {
		return nil, repository.ErrIngredientNotFound
	}
	cp := *ing
	return &cp, nil
}

func (m *memStore) ListIngredients(_ context.Context, filter repository.TaxonomyFilter) ([]*model.Ingredient, error) {
	var out []*model.Ingredient
	for _, ing := range m.ingredients {
		if ing.OwnerID != filter.OwnerID {
			continue
		}
		if filter.AssignedOnly && !m.ingredientAssigned(ing.ID) {
			continue
		}
		cp := *ing
		out = append(out, &cp)
	}
	sortIngredientsNameDesc(out)
	return out, nil
}

func (m *memStore) ingredientAssigned(ingredientID string) bool {
	for _, ids := range m.recipeIngredients {
		for _, id := range ids {
			if id == ingredientID {
				return true
			}
		}
	}
	return false
}

func (m *memStore) UpdateIngredient(_ context.Context, ing *model.Ingredient) error {
	existing, ok := m.ingredients[ing.ID]
	if !ok || existing.OwnerID != ing.OwnerID {
		return repository.ErrIngredientNotFound
	}
	cp := *ing
	m.ingredients[ing.ID] = &cp
	return nil
}

func (m *memStore) DeleteIngredient(_ context.Context, ownerID, id string) error {
	ing, ok := m.ingredients[id]
	if !ok || ing.OwnerID != ownerID {
		return repository.ErrIngredientNotFound
	}
	delete(m.ingredients, id)
	for recipeID, ids := range m.recipeIngredients {
		m.recipeIngredients[recipeID] = removeID(ids, id)
	}
	return nil
}

func removeID(ids []string, target string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

func sortTagsNameDesc(tags []*model.Tag) {
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Name != tags[j].Name {
			return tags[i].Name > tags[j].Name
		}
		return tags[i].ID > tags[j].ID
	})
}

func sortIngredientsNameDesc(ingredients []*model.Ingredient) {
	sort.Slice(ingredients, func(i, j int) bool {
		if ingredients[i].Name != ingredients[j].Name {
			return ingredients[i].Name > ingredients[j].Name
		}
		return ingredients[i].ID > ingredients[j].ID
	})
}
