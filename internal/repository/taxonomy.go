package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/saucier/saucier/internal/model"
)

// Common errors for tag and ingredient repository operations.
var (
	ErrTagNotFound        = errors.New("tag not found")
	ErrIngredientNotFound = errors.New("ingredient not found")
)

// TaxonomyFilter defines filters for listing tags or ingredients.
// AssignedOnly restricts results to entities linked to at least one of
// the owner's recipes.
type TaxonomyFilter struct {
	OwnerID      string
	AssignedOnly bool
}

// CreateTag inserts a new tag. There is no (owner, name) uniqueness
// constraint; dedup happens via GetTagByName before calling this.
func (r *Repository) CreateTag(ctx context.Context, tag *model.Tag) error {
	query := `INSERT INTO tags (id, user_id, name, created_at) VALUES ($1, $2, $3, $4)`

	if _, err := r.pool.Exec(ctx, query, tag.ID, tag.OwnerID, tag.Name, tag.CreatedAt); err != nil {
		return fmt.Errorf("failed to create tag: %w", err)
	}

	return nil
}

// GetTag retrieves a tag by id, scoped to its owner.
func (r *Repository) GetTag(ctx context.Context, ownerID, id string) (*model.Tag, error) {
	query := `SELECT id, user_id, name, created_at FROM tags WHERE id = $1 AND user_id = $2`

	var tag model.Tag
	err := r.pool.QueryRow(ctx, query, id, ownerID).Scan(&tag.ID, &tag.OwnerID, &tag.Name, &tag.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}

	return &tag, nil
}

// GetTagByName retrieves a tag by exact name match for an owner.
// Lookup is case-sensitive; no normalization is applied.
func (r *Repository) GetTagByName(ctx context.Context, ownerID, name string) (*model.Tag, error) {
	query := `SELECT id, user_id, name, created_at FROM tags WHERE user_id = $1 AND name = $2 LIMIT 1`

	var tag model.Tag
	err := r.pool.QueryRow(ctx, query, ownerID, name).Scan(&tag.ID, &tag.OwnerID, &tag.Name, &tag.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to get tag by name: %w", err)
	}

	return &tag, nil
}

// ListTags retrieves the owner's tags ordered by name descending.
// With AssignedOnly set, only tags linked to at least one recipe are
// returned; DISTINCT collapses duplicates from the join.
func (r *Repository) ListTags(ctx context.Context, filter TaxonomyFilter) ([]*model.Tag, error) {
	query := `SELECT DISTINCT t.id, t.user_id, t.name, t.created_at FROM tags t`
	if filter.AssignedOnly {
		query += ` JOIN recipe_tags rt ON rt.tag_id = t.id`
	}
	query += ` WHERE t.user_id = $1 ORDER BY t.name DESC, t.id DESC`

	rows, err := r.pool.Query(ctx, query, filter.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	return collectTags(rows)
}

// UpdateTag renames a tag, scoped to its owner.
func (r *Repository) UpdateTag(ctx context.Context, tag *model.Tag) error {
	query := `UPDATE tags SET name = $3 WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, tag.ID, tag.OwnerID, tag.Name)
	if err != nil {
		return fmt.Errorf("failed to update tag: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTagNotFound
	}

	return nil
}

// DeleteTag removes a tag; cascading foreign keys drop its recipe
// links without touching the recipes themselves.
func (r *Repository) DeleteTag(ctx context.Context, ownerID, id string) error {
	query := `DELETE FROM tags WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTagNotFound
	}

	return nil
}

// CreateIngredient inserts a new ingredient.
func (r *Repository) CreateIngredient(ctx context.Context, ing *model.Ingredient) error {
	query := `INSERT INTO ingredients (id, user_id, name, created_at) VALUES ($1, $2, $3, $4)`

	if _, err := r.pool.Exec(ctx, query, ing.ID, ing.OwnerID, ing.Name, ing.CreatedAt); err != nil {
		return fmt.Errorf("failed to create ingredient: %w", err)
	}

	return nil
}

// GetIngredient retrieves an ingredient by id, scoped to its owner.
func (r *Repository) GetIngredient(ctx context.Context, ownerID, id string) (*model.Ingredient, error) {
	query := `SELECT id, user_id, name, created_at FROM ingredients WHERE id = $1 AND user_id = $2`

	var ing model.Ingredient
	err := r.pool.QueryRow(ctx, query, id, ownerID).Scan(&ing.ID, &ing.OwnerID, &ing.Name, &ing.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIngredientNotFound
		}
		return nil, fmt.Errorf("failed to get ingredient: %w", err)
	}

	return &ing, nil
}

// GetIngredientByName retrieves an ingredient by exact name match for
// an owner. Lookup is case-sensitive; no normalization is applied.
func (r *Repository) GetIngredientByName(ctx context.Context, ownerID, name string) (*model.Ingredient, error) {
	query := `SELECT id, user_id, name, created_at FROM ingredients WHERE user_id = $1 AND name = $2 LIMIT 1`

	var ing model.Ingredient
	err := r.pool.QueryRow(ctx, query, ownerID, name).Scan(&ing.ID, &ing.OwnerID, &ing.Name, &ing.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIngredientNotFound
		}
		return nil, fmt.Errorf("failed to get ingredient by name: %w", err)
	}

	return &ing, nil
}

// ListIngredients retrieves the owner's ingredients ordered by name
// descending, optionally restricted to assigned ones.
func (r *Repository) ListIngredients(ctx context.Context, filter TaxonomyFilter) ([]*model.Ingredient, error) {
	query := `SELECT DISTINCT i.id, i.user_id, i.name, i.created_at FROM ingredients i`
	if filter.AssignedOnly {
		query += ` JOIN recipe_ingredients ri ON ri.ingredient_id = i.id`
	}
	query += ` WHERE i.user_id = $1 ORDER BY i.name DESC, i.id DESC`

	rows, err := r.pool.Query(ctx, query, filter.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	defer rows.Close()

	return collectIngredients(rows)
}

// UpdateIngredient renames an ingredient, scoped to its owner.
func (r *Repository) UpdateIngredient(ctx context.Context, ing *model.Ingredient) error {
	query := `UPDATE ingredients SET name = $3 WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, ing.ID, ing.OwnerID, ing.Name)
	if err != nil {
		return fmt.Errorf("failed to update ingredient: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrIngredientNotFound
	}

	return nil
}

// DeleteIngredient removes an ingredient and its recipe links.
func (r *Repository) DeleteIngredient(ctx context.Context, ownerID, id string) error {
	query := `DELETE FROM ingredients WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete ingredient: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrIngredientNotFound
	}

	return nil
}

// collectTags drains rows into Tag models.
func collectTags(rows pgx.Rows) ([]*model.Tag, error) {
	var tags []*model.Tag
	for rows.Next() {
		var tag model.Tag
		if err := rows.Scan(&tag.ID, &tag.OwnerID, &tag.Name, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, &tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}

	return tags, nil
}

// collectIngredients drains rows into Ingredient models.
func collectIngredients(rows pgx.Rows) ([]*model.Ingredient, error) {
	var ingredients []*model.Ingredient
	for rows.Next() {
		var ing model.Ingredient
		if err := rows.Scan(&ing.ID, &ing.OwnerID, &ing.Name, &ing.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		ingredients = append(ingredients, &ing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ingredients: %w", err)
	}

	return ingredients, nil
}
