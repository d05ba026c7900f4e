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

const storeConfigColumns = `id, store_name, whatsapp_number, address, delivery_fee, is_open,
	opening_hours, banner_image_url, banner_text, created_at, updated_at`

// storeConfigRepository implements the StoreConfigRepository interface using PostgreSQL.
type storeConfigRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewStoreConfigRepository creates a new PostgreSQL-backed configuration repository.
func NewStoreConfigRepository(pool *pgxpool.Pool, logger zerolog.Logger) StoreConfigRepository {
	return &storeConfigRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "store_config").Logger(),
	}
}

func scanStoreConfig(row pgx.Row) (*StoreConfigRow, error) {
	var c StoreConfigRow
	err := row.Scan(
		&c.ID,
		&c.StoreName,
		&c.WhatsAppNumber,
		&c.Address,
		&c.DeliveryFee,
		&c.IsOpen,
		&c.OpeningHours,
		&c.BannerImageURL,
		&c.BannerText,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Get returns the configuration row, or nil when none exists.
func (r *storeConfigRepository) Get(ctx context.Context) (*StoreConfigRow, error) {
	query := `SELECT ` + storeConfigColumns + ` FROM store_config LIMIT 1`

	c, err := scanStoreConfig(r.pool.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Msg("store configuration not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query store configuration")
		return nil, fmt.Errorf("failed to query store configuration: %w", err)
	}

	return c, nil
}

// Insert creates the configuration row. An empty ID is replaced by a generated one.
func (r *storeConfigRepository) Insert(ctx context.Context, row StoreConfigRow) (*StoreConfigRow, error) {
	query := `
		INSERT INTO store_config (id, store_name, whatsapp_number, address, delivery_fee,
			is_open, opening_hours, banner_image_url, banner_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8::text, ''), NULLIF($9::text, ''))
		RETURNING ` + storeConfigColumns

	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	hours := row.OpeningHours
	if hours == nil {
		hours = map[string]DayHoursRow{}
	}

	c, err := scanStoreConfig(r.pool.QueryRow(ctx, query,
		row.ID,
		row.StoreName,
		row.WhatsAppNumber,
		row.Address,
		row.DeliveryFee,
		row.IsOpen,
		hours,
		row.BannerImageURL,
		row.BannerText,
	))
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to insert store configuration")
		return nil, fmt.Errorf("failed to insert store configuration: %w", err)
	}

	return c, nil
}

// Update applies a partial update and refreshes updated_at.
func (r *storeConfigRepository) Update(ctx context.Context, id string, patch model.StoreConfigPatch) (*StoreConfigRow, error) {
	query := `
		UPDATE store_config SET
			store_name       = COALESCE(@store_name, store_name),
			whatsapp_number  = COALESCE(@whatsapp_number, whatsapp_number),
			address          = COALESCE(@address, address),
			delivery_fee     = COALESCE(@delivery_fee, delivery_fee),
			is_open          = COALESCE(@is_open, is_open),
			opening_hours    = COALESCE(@opening_hours::jsonb, opening_hours),
			banner_image_url = CASE WHEN @banner_image_url::text IS NULL THEN banner_image_url
			                        ELSE NULLIF(@banner_image_url::text, '') END,
			banner_text      = CASE WHEN @banner_text::text IS NULL THEN banner_text
			                        ELSE NULLIF(@banner_text::text, '') END,
			updated_at       = NOW()
		WHERE id = @id
		RETURNING ` + storeConfigColumns

	// A nil map must reach the server as SQL NULL, not as a JSON null document.
	var hours any
	if patch.OpeningHours != nil {
		rows := make(map[string]DayHoursRow, len(patch.OpeningHours))
		for day, h := range patch.OpeningHours {
			rows[day] = DayHoursRow{Open: h.Open, Close: h.Close, Closed: h.Closed}
		}
		hours = rows
	}

	args := pgx.NamedArgs{
		"id":               id,
		"store_name":       patch.StoreName,
		"whatsapp_number":  patch.WhatsAppNumber,
		"address":          patch.Address,
		"delivery_fee":     patch.DeliveryFee,
		"is_open":          patch.IsOpen,
		"opening_hours":    hours,
		"banner_image_url": patch.BannerImageURL,
		"banner_text":      patch.BannerText,
	}

	c, err := scanStoreConfig(r.pool.QueryRow(ctx, query, args))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("config_id", id).Msg("store configuration not found")
			return nil, model.ErrNotFound
		}
		r.logger.Error().Err(err).Str("config_id", id).Msg("failed to update store configuration")
		return nil, fmt.Errorf("failed to update store configuration: %w", err)
	}

	return c, nil
}
