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

const productColumns = `id, name, description, price, image_url, category_id, is_available,
	is_featured, preparation_time, order_index, created_at, updated_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row) (*ProductRow, error) {
	var p ProductRow
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.ImageURL,
		&p.CategoryID,
		&p.IsAvailable,
		&p.IsFeatured,
		&p.PreparationTime,
		&p.OrderIndex,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all products ordered by order_index ascending.
func (r *productRepository) List(ctx context.Context) ([]ProductRow, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY order_index, created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []ProductRow{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// Insert creates a product with a generated id.
func (r *productRepository) Insert(ctx context.Context, product model.NewProduct) (*ProductRow, error) {
	query := `
		INSERT INTO products (id, name, description, price, image_url, category_id,
			is_available, is_featured, preparation_time, order_index)
		VALUES (@id, @name, @description, @price, NULLIF(@image_url::text, ''), @category_id,
			@is_available, @is_featured, NULLIF(@preparation_time::int, 0), @order_index)
		RETURNING ` + productColumns

	args := pgx.NamedArgs{
		"id":               uuid.NewString(),
		"name":             product.Name,
		"description":      product.Description,
		"price":            product.Price,
		"image_url":        product.ImageURL,
		"category_id":      product.CategoryID,
		"is_available":     product.IsAvailable,
		"is_featured":      product.IsFeatured,
		"preparation_time": product.PreparationTime,
		"order_index":      product.OrderIndex,
	}

	p, err := scanProduct(r.pool.QueryRow(ctx, query, args))
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("product_name", product.Name).
			Str("category_id", product.CategoryID).
			Msg("failed to insert product")
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	r.logger.Debug().Str("product_id", p.ID).Msg("product inserted")
	return p, nil
}

// Update applies a partial update and refreshes updated_at. An empty image
// URL or a zero preparation time clears the column.
func (r *productRepository) Update(ctx context.Context, id string, patch model.ProductPatch) (*ProductRow, error) {
	query := `
		UPDATE products SET
			name             = COALESCE(@name, name),
			description      = COALESCE(@description, description),
			price            = COALESCE(@price, price),
			image_url        = CASE WHEN @image_url::text IS NULL THEN image_url
			                        ELSE NULLIF(@image_url::text, '') END,
			category_id      = COALESCE(@category_id, category_id),
			is_available     = COALESCE(@is_available, is_available),
			is_featured      = COALESCE(@is_featured, is_featured),
			preparation_time = CASE WHEN @preparation_time::int IS NULL THEN preparation_time
			                        ELSE NULLIF(@preparation_time::int, 0) END,
			order_index      = COALESCE(@order_index, order_index),
			updated_at       = NOW()
		WHERE id = @id
		RETURNING ` + productColumns

	args := pgx.NamedArgs{
		"id":               id,
		"name":             patch.Name,
		"description":      patch.Description,
		"price":            patch.Price,
		"image_url":        patch.ImageURL,
		"category_id":      patch.CategoryID,
		"is_available":     patch.IsAvailable,
		"is_featured":      patch.IsFeatured,
		"preparation_time": patch.PreparationTime,
		"order_index":      patch.OrderIndex,
	}

	p, err := scanProduct(r.pool.QueryRow(ctx, query, args))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id).Msg("product not found")
			return nil, model.ErrNotFound
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to update product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return p, nil
}

// Delete removes a product.
func (r *productRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	r.logger.Debug().
		Str("product_id", id).
		Int64("rows", tag.RowsAffected()).
		Msg("product deleted")

	return nil
}
