package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/saucier/saucier/internal/model"
)

// ErrRecipeNotFound indicates the recipe does not exist or is owned by
// a different user. The two cases are indistinguishable on purpose.
var ErrRecipeNotFound = errors.New("recipe not found")

// RecipeFilter defines filters for listing recipes. OwnerID is always
// required; listings never cross owner boundaries. TagIDs and
// IngredientIDs each restrict to recipes linked to at least one of the
// listed ids.
type RecipeFilter struct {
	OwnerID       string
	TagIDs        []string
	IngredientIDs []string
}

const recipeColumns = `id, user_id, title, time_minutes, price, description, link, image_path, created_at, updated_at`

// CreateRecipe inserts a new recipe and its tag/ingredient links in a
// single transaction.
func (r *Repository) CreateRecipe(ctx context.Context, recipe *model.Recipe, tagIDs, ingredientIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := `
		INSERT INTO recipes (` + recipeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = tx.Exec(ctx, query,
		recipe.ID,
		recipe.OwnerID,
		recipe.Title,
		recipe.TimeMinutes,
		recipe.Price,
		recipe.Description,
		recipe.Link,
		recipe.ImagePath,
		recipe.CreatedAt,
		recipe.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create recipe: %w", err)
	}

	if err := insertRecipeLinks(ctx, tx, "recipe_tags", "tag_id", recipe.ID, tagIDs); err != nil {
		return err
	}
	if err := insertRecipeLinks(ctx, tx, "recipe_ingredients", "ingredient_id", recipe.ID, ingredientIDs); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit recipe: %w", err)
	}

	return nil
}

// GetRecipe retrieves a recipe by id, scoped to its owner. A recipe
// owned by another user reports ErrRecipeNotFound.
func (r *Repository) GetRecipe(ctx context.Context, ownerID, id string) (*model.Recipe, error) {
	query := `
		SELECT ` + recipeColumns + `
		FROM recipes
		WHERE id = $1 AND user_id = $2
	`

	recipe, err := scanRecipe(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	return recipe, nil
}

// ListRecipes retrieves the owner's recipes, newest first. When tag or
// ingredient id filters are present the result is restricted to recipes
// linked to at least one listed id, de-duplicated across joins.
func (r *Repository) ListRecipes(ctx context.Context, filter RecipeFilter) ([]*model.Recipe, error) {
	query := `SELECT DISTINCT r.id, r.user_id, r.title, r.time_minutes, r.price, r.description, r.link, r.image_path, r.created_at, r.updated_at
		FROM recipes r`

	if len(filter.TagIDs) > 0 {
		query += ` JOIN recipe_tags rt ON rt.recipe_id = r.id`
	}
	if len(filter.IngredientIDs) > 0 {
		query += ` JOIN recipe_ingredients ri ON ri.recipe_id = r.id`
	}

	query += ` WHERE r.user_id = $1`
	args := []any{filter.OwnerID}
	argIndex := 2

	if len(filter.TagIDs) > 0 {
		query += fmt.Sprintf(` AND rt.tag_id = ANY($%d::text[])`, argIndex)
		args = append(args, pq.Array(filter.TagIDs))
		argIndex++
	}
	if len(filter.IngredientIDs) > 0 {
		query += fmt.Sprintf(` AND ri.ingredient_id = ANY($%d::text[])`, argIndex)
		args = append(args, pq.Array(filter.IngredientIDs))
		argIndex++
	}

	query += ` ORDER BY r.id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []*model.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, recipe)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipes: %w", err)
	}

	return recipes, nil
}

// UpdateRecipe updates a recipe's scalar fields. The owner column is
// never part of the update; ownership is fixed at creation.
func (r *Repository) UpdateRecipe(ctx context.Context, recipe *model.Recipe) error {
	query := `
		UPDATE recipes
		SET title = $3, time_minutes = $4, price = $5, description = $6, link = $7, updated_at = $8
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query,
		recipe.ID,
		recipe.OwnerID,
		recipe.Title,
		recipe.TimeMinutes,
		recipe.Price,
		recipe.Description,
		recipe.Link,
		recipe.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update recipe: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrRecipeNotFound
	}

	return nil
}

// DeleteRecipe removes a recipe and, via cascading foreign keys, its
// association rows. Tags and ingredients themselves are untouched.
func (r *Repository) DeleteRecipe(ctx context.Context, ownerID, id string) error {
	query := `DELETE FROM recipes WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrRecipeNotFound
	}

	return nil
}

// SetRecipeImage updates the stored image path for a recipe.
func (r *Repository) SetRecipeImage(ctx context.Context, ownerID, id, imagePath string) error {
	query := `UPDATE recipes SET image_path = $3, updated_at = NOW() WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, id, ownerID, imagePath)
	if err != nil {
		return fmt.Errorf("failed to set recipe image: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrRecipeNotFound
	}

	return nil
}

// ReplaceRecipeTags replaces the full tag association set of a recipe.
// An empty id list clears all tag links.
func (r *Repository) ReplaceRecipeTags(ctx context.Context, recipeID string, tagIDs []string) error {
	return r.replaceRecipeLinks(ctx, "recipe_tags", "tag_id", recipeID, tagIDs)
}

// ReplaceRecipeIngredients replaces the full ingredient association set
// of a recipe. An empty id list clears all ingredient links.
func (r *Repository) ReplaceRecipeIngredients(ctx context.Context, recipeID string, ingredientIDs []string) error {
	return r.replaceRecipeLinks(ctx, "recipe_ingredients", "ingredient_id", recipeID, ingredientIDs)
}

// replaceRecipeLinks clears and rebuilds one association table for a
// recipe inside a transaction, so a failed rebuild never leaves the
// recipe half-linked.
func (r *Repository) replaceRecipeLinks(ctx context.Context, table, column, recipeID string, ids []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE recipe_id = $1`, table), recipeID); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}

	if err := insertRecipeLinks(ctx, tx, table, column, recipeID, ids); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit %s replace: %w", table, err)
	}

	return nil
}

// insertRecipeLinks inserts association rows for a recipe.
func insertRecipeLinks(ctx context.Context, tx pgx.Tx, table, column, recipeID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (recipe_id, %s) SELECT $1, unnest($2::text[])`,
		table, column,
	)

	if _, err := tx.Exec(ctx, query, recipeID, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}

	return nil
}

// GetRecipeTags retrieves the tags linked to a recipe, name descending.
func (r *Repository) GetRecipeTags(ctx context.Context, recipeID string) ([]*model.Tag, error) {
	query := `
		SELECT t.id, t.user_id, t.name, t.created_at
		FROM tags t
		JOIN recipe_tags rt ON rt.tag_id = t.id
		WHERE rt.recipe_id = $1
		ORDER BY t.name DESC, t.id DESC
	`

	rows, err := r.pool.Query(ctx, query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe tags: %w", err)
	}
	defer rows.Close()

	return collectTags(rows)
}

// GetRecipeIngredients retrieves the ingredients linked to a recipe,
// name descending.
func (r *Repository) GetRecipeIngredients(ctx context.Context, recipeID string) ([]*model.Ingredient, error) {
	query := `
		SELECT i.id, i.user_id, i.name, i.created_at
		FROM ingredients i
		JOIN recipe_ingredients ri ON ri.ingredient_id = i.id
		WHERE ri.recipe_id = $1
		ORDER BY i.name DESC, i.id DESC
	`

	rows, err := r.pool.Query(ctx, query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe ingredients: %w", err)
	}
	defer rows.Close()

	return collectIngredients(rows)
}

// ListRecipeTags retrieves tags for many recipes in one query, keyed by
// recipe id. Used to hydrate listings without per-recipe round trips.
func (r *Repository) ListRecipeTags(ctx context.Context, recipeIDs []string) (map[string][]*model.Tag, error) {
	result := make(map[string][]*model.Tag)
	if len(recipeIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT rt.recipe_id, t.id, t.user_id, t.name, t.created_at
		FROM tags t
		JOIN recipe_tags rt ON rt.tag_id = t.id
		WHERE rt.recipe_id = ANY($1::text[])
		ORDER BY t.name DESC, t.id DESC
	`

	rows, err := r.pool.Query(ctx, query, pq.Array(recipeIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list recipe tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recipeID string
		var tag model.Tag
		if err := rows.Scan(&recipeID, &tag.ID, &tag.OwnerID, &tag.Name, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recipe tag: %w", err)
		}
		result[recipeID] = append(result[recipeID], &tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipe tags: %w", err)
	}

	return result, nil
}

// ListRecipeIngredients retrieves ingredients for many recipes in one
// query, keyed by recipe id.
func (r *Repository) ListRecipeIngredients(ctx context.Context, recipeIDs []string) (map[string][]*model.Ingredient, error) {
	result := make(map[string][]*model.Ingredient)
	if len(recipeIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT ri.recipe_id, i.id, i.user_id, i.name, i.created_at
		FROM ingredients i
		JOIN recipe_ingredients ri ON ri.ingredient_id = i.id
		WHERE ri.recipe_id = ANY($1::text[])
		ORDER BY i.name DESC, i.id DESC
	`

	rows, err := r.pool.Query(ctx, query, pq.Array(recipeIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list recipe ingredients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recipeID string
		var ing model.Ingredient
		if err := rows.Scan(&recipeID, &ing.ID, &ing.OwnerID, &ing.Name, &ing.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recipe ingredient: %w", err)
		}
		result[recipeID] = append(result[recipeID], &ing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipe ingredients: %w", err)
	}

	return result, nil
}

// scanRecipe scans a single row into a Recipe model.
func scanRecipe(row pgx.Row) (*model.Recipe, error) {
	var recipe model.Recipe
	err := row.Scan(
		&recipe.ID,
		&recipe.OwnerID,
		&recipe.Title,
		&recipe.TimeMinutes,
		&recipe.Price,
		&recipe.Description,
		&recipe.Link,
		&recipe.ImagePath,
		&recipe.CreatedAt,
		&recipe.UpdatedAt,
	)
	return &recipe, err
}
