package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const categoryColumns = `id, name, description, order_index, is_active, created_at, updated_at`

// categoryRepository implements the CategoryRepository interface using PostgreSQL.
type categoryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(pool *pgxpool.Pool, logger zerolog.Logger) CategoryRepository {
	return &categoryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "category").Logger(),
	}
}

func scanCategory(row pgx.Row) (*CategoryRow, error) {
	var c CategoryRow
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.OrderIndex, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by order_index ascending.
func (r *categoryRepository) List(ctx context.Context) ([]CategoryRow, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories ORDER BY order_index, created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query categories")
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []CategoryRow{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan category row")
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating category rows")
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// Insert creates a category with a generated id.
func (r *categoryRepository) Insert(ctx context.Context, category model.NewCategory) (*CategoryRow, error) {
	query := `
		INSERT INTO categories (id, name, description, order_index, is_active)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5)
		RETURNING ` + categoryColumns

	id := uuid.NewString()
	var description string
	if category.Description != nil {
		description = *category.Description
	}

	c, err := scanCategory(r.pool.QueryRow(ctx, query,
		id, category.Name, description, category.OrderIndex, category.IsActive))
	if err != nil {
		r.logger.Error().Err(err).Str("category_name", category.Name).Msg("failed to insert category")
		return nil, fmt.Errorf("failed to insert category: %w", err)
	}

	r.logger.Debug().Str("category_id", c.ID).Msg("category inserted")
	return c, nil
}

// Update applies a partial update and refreshes updated_at.
func (r *categoryRepository) Update(ctx context.Context, id string, patch model.CategoryPatch) (*CategoryRow, error) {
	query := `
		UPDATE categories SET
			name        = COALESCE(@name, name),
			description = CASE WHEN @description::text IS NULL THEN description
			                   ELSE NULLIF(@description::text, '') END,
			order_index = COALESCE(@order_index, order_index),
			is_active   = COALESCE(@is_active, is_active),
			updated_at  = NOW()
		WHERE id = @id
		RETURNING ` + categoryColumns

	args := pgx.NamedArgs{
		"id":          id,
		"name":        patch.Name,
		"description": patch.Description,
		"order_index": patch.OrderIndex,
		"is_active":   patch.IsActive,
	}

	c, err := scanCategory(r.pool.QueryRow(ctx, query, args))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("category_id", id).Msg("category not found")
			return nil, model.ErrNotFound
		}
		r.logger.Error().Err(err).Str("category_id", id).Msg("failed to update category")
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return c, nil
}

// Delete removes a category; products follow through ON DELETE CASCADE.
func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("category_id", id).Msg("failed to delete category")
		return fmt.Errorf("failed to delete category: %w", err)
	}

	r.logger.Debug().
		Str("category_id", id).
		Int64("rows", tag.RowsAffected()).
		Msg("category deleted")

	return nil
}
