package repository

import (
	"context"
	"encoding/json"

	"storefront/internal/model"
)

// Table names one of the mirrored gateway tables.
type Table string

const (
	TableStoreConfig Table = "store_config"
	TableCategories  Table = "categories"
	TableProducts    Table = "products"
)

// Tables lists every mirrored table.
var Tables = []Table{TableStoreConfig, TableCategories, TableProducts}

// Valid reports whether t is one of the mirrored tables.
func (t Table) Valid() bool {
	switch t {
	case TableStoreConfig, TableCategories, TableProducts:
		return true
	}
	return false
}

// Channel returns the notification channel the table's trigger publishes on.
func (t Table) Channel() string {
	return string(t) + "_changes"
}

// ChangeType is the kind of row change carried by a ChangeEvent.
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// ChangeEvent is one row change delivered by the change feed. New holds the
// row as JSON for inserts and updates; Old holds at least {"id": ...} for deletes.
type ChangeEvent struct {
	Table Table           `json:"table"`
	Type  ChangeType      `json:"type"`
	New   json.RawMessage `json:"new,omitempty"`
	Old   json.RawMessage `json:"old,omitempty"`
}

// Subscription is a live change feed for one table. Events is closed when the
// feed ends; Err then reports why, or nil after Close.
type Subscription interface {
	Events() <-chan ChangeEvent
	Err() error
	Close() error
}

// ChangeFeed opens per-table subscriptions.
type ChangeFeed interface {
	// Subscribe starts listening for changes on table. The subscription
	// outlives ctx, which only bounds the setup; call Close to release it.
	Subscribe(ctx context.Context, table Table) (Subscription, error)
}

// StoreConfigRepository defines data access for the singleton configuration.
type StoreConfigRepository interface {
	// Get returns the configuration row, or nil when none exists.
	Get(ctx context.Context) (*StoreConfigRow, error)

	// Insert creates the configuration row.
	Insert(ctx context.Context, row StoreConfigRow) (*StoreConfigRow, error)

	// Update applies a partial update and refreshes updated_at.
	Update(ctx context.Context, id string, patch model.StoreConfigPatch) (*StoreConfigRow, error)
}

// CategoryRepository defines data access for categories.
type CategoryRepository interface {
	// List returns all categories ordered by order_index ascending.
	List(ctx context.Context) ([]CategoryRow, error)

	// Insert creates a category with a generated id.
	Insert(ctx context.Context, category model.NewCategory) (*CategoryRow, error)

	// Update applies a partial update and refreshes updated_at.
	// Returns model.ErrNotFound when the id does not exist.
	Update(ctx context.Context, id string, patch model.CategoryPatch) (*CategoryRow, error)

	// Delete removes a category and, through the foreign key, its products.
	// Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
}

// ProductRepository defines data access for products.
type ProductRepository interface {
	// List returns all products ordered by order_index ascending.
	List(ctx context.Context) ([]ProductRow, error)

	// Insert creates a product with a generated id.
	Insert(ctx context.Context, product model.NewProduct) (*ProductRow, error)

	// Update applies a partial update and refreshes updated_at.
	// Returns model.ErrNotFound when the id does not exist.
	Update(ctx context.Context, id string, patch model.ProductPatch) (*ProductRow, error)

	// Delete removes a product. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
}

// Gateway bundles the remote data gateway operations the store consumes.
type Gateway struct {
	Config     StoreConfigRepository
	Categories CategoryRepository
	Products   ProductRepository
	Feed       ChangeFeed
}
