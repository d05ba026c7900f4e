package store

import (
	"cmp"
	"encoding/json"
	"slices"
	"sync"

	"storefront/internal/model"
	"storefront/internal/repository"
)

// apply reconciles one change event into the mirrors. It is idempotent:
// inserts are upserts by id, and replaying an update leaves state unchanged.
func (c *Container) apply(ev repository.ChangeEvent) {
	if ev.Table.Valid() {
		defer c.lockTables(ev.Table)()
	}

	switch ev.Table {
	case repository.TableStoreConfig:
		c.applyStoreConfigEvent(ev)
	case repository.TableCategories:
		c.applyCategoryEvent(ev)
	case repository.TableProducts:
		c.applyProductEvent(ev)
	default:
		c.logger.Warn().Str("table", string(ev.Table)).Msg("ignoring change event for unknown table")
	}
}

func (c *Container) applyStoreConfigEvent(ev repository.ChangeEvent) {
	switch ev.Type {
	case repository.ChangeInsert, repository.ChangeUpdate:
		var row repository.StoreConfigRow
		if !c.decodeRow(ev, &row) {
			return
		}
		c.applyStoreConfig(row)
	case repository.ChangeDelete:
		c.mu.Lock()
		if c.config != nil {
			c.deleted[repository.TableStoreConfig].add(c.config.ID)
		}
		c.config = nil
		c.mu.Unlock()
		c.notify(ScopeStoreConfig)
	default:
		c.logger.Debug().Str("type", string(ev.Type)).Msg("ignoring unknown change type")
	}
}

func (c *Container) applyCategoryEvent(ev repository.ChangeEvent) {
	switch ev.Type {
	case repository.ChangeInsert, repository.ChangeUpdate:
		var row repository.CategoryRow
		if !c.decodeRow(ev, &row) || !c.hasID(ev, row.ID) {
			return
		}
		c.applyCategory(ev.Type, row)
	case repository.ChangeDelete:
		if id, ok := c.deletedID(ev); ok {
			c.removeCategory(id)
		}
	default:
		c.logger.Debug().Str("type", string(ev.Type)).Msg("ignoring unknown change type")
	}
}

func (c *Container) applyProductEvent(ev repository.ChangeEvent) {
	switch ev.Type {
	case repository.ChangeInsert, repository.ChangeUpdate:
		var row repository.ProductRow
		if !c.decodeRow(ev, &row) || !c.hasID(ev, row.ID) {
			return
		}
		c.applyProduct(ev.Type, row)
	case repository.ChangeDelete:
		if id, ok := c.deletedID(ev); ok {
			c.removeProduct(id)
		}
	default:
		c.logger.Debug().Str("type", string(ev.Type)).Msg("ignoring unknown change type")
	}
}

// applyStoreConfig replaces the singleton unless the mirrored row is newer
// or the row was deleted.
func (c *Container) applyStoreConfig(row repository.StoreConfigRow) {
	cfg := StoreConfigFromRow(row)

	c.mu.Lock()
	if c.deleted[repository.TableStoreConfig].has(cfg.ID) {
		c.mu.Unlock()
		c.logger.Debug().Str("config_id", cfg.ID).Msg("ignoring store config that was deleted")
		return
	}
	if c.config != nil && c.config.ID == cfg.ID && cfg.UpdatedAt.Before(c.config.UpdatedAt) {
		c.mu.Unlock()
		c.logger.Debug().Str("config_id", cfg.ID).Msg("ignoring stale store config")
		return
	}
	c.config = &cfg
	c.mu.Unlock()

	c.logger.Debug().Str("config_id", row.ID).Msg("store config applied")
	c.notify(ScopeStoreConfig)
}

// applyCategory upserts on insert and replaces on update. A row older than
// the mirrored one is dropped, as is an update for an id that is not
// mirrored and an insert for an id deleted earlier, so a late echo cannot
// roll back or resurrect a row.
func (c *Container) applyCategory(kind repository.ChangeType, row repository.CategoryRow) {
	category := CategoryFromRow(row)

	c.mu.Lock()
	i := slices.IndexFunc(c.categories, func(x model.Category) bool { return x.ID == category.ID })
	switch {
	case i >= 0 && category.UpdatedAt.Before(c.categories[i].UpdatedAt):
		c.mu.Unlock()
		c.logger.Debug().Str("category_id", category.ID).Msg("ignoring stale category row")
		return
	case i >= 0:
		c.categories[i] = category
	case c.deleted[repository.TableCategories].has(category.ID):
		c.mu.Unlock()
		c.logger.Debug().Str("category_id", category.ID).Msg("ignoring category that was deleted")
		return
	case kind == repository.ChangeInsert:
		c.categories = append(c.categories, category)
	default:
		c.mu.Unlock()
		c.logger.Debug().Str("category_id", category.ID).Msg("ignoring update for unknown category")
		return
	}
	sortCategories(c.categories)
	c.mu.Unlock()

	c.logger.Debug().Str("category_id", category.ID).Str("type", string(kind)).Msg("category applied")
	c.notify(ScopeCategories)
}

// applyProduct follows the same rules as applyCategory. Cart snapshots keep
// the price they were added with.
func (c *Container) applyProduct(kind repository.ChangeType, row repository.ProductRow) {
	product := ProductFromRow(row)

	c.mu.Lock()
	i := slices.IndexFunc(c.products, func(x model.Product) bool { return x.ID == product.ID })
	switch {
	case i >= 0 && product.UpdatedAt.Before(c.products[i].UpdatedAt):
		c.mu.Unlock()
		c.logger.Debug().Str("product_id", product.ID).Msg("ignoring stale product row")
		return
	case i >= 0:
		c.products[i] = product
	case c.deleted[repository.TableProducts].has(product.ID):
		c.mu.Unlock()
		c.logger.Debug().Str("product_id", product.ID).Msg("ignoring product that was deleted")
		return
	case kind == repository.ChangeInsert:
		c.products = append(c.products, product)
	default:
		c.mu.Unlock()
		c.logger.Debug().Str("product_id", product.ID).Msg("ignoring update for unknown product")
		return
	}
	sortProducts(c.products)
	c.mu.Unlock()

	c.logger.Debug().Str("product_id", product.ID).Str("type", string(kind)).Msg("product applied")
	c.notify(ScopeProducts)
}

// removeCategory drops the category together with its products and any
// cart items for those products.
func (c *Container) removeCategory(id string) {
	c.mu.Lock()
	before := len(c.categories)
	c.categories = slices.DeleteFunc(c.categories, func(x model.Category) bool { return x.ID == id })
	c.deleted[repository.TableCategories].add(id)

	removed := map[string]bool{}
	c.products = slices.DeleteFunc(c.products, func(p model.Product) bool {
		if p.CategoryID == id {
			removed[p.ID] = true
			c.deleted[repository.TableProducts].add(p.ID)
			return true
		}
		return false
	})
	cartBefore := len(c.cart)
	c.cart = slices.DeleteFunc(c.cart, func(item model.CartItem) bool { return removed[item.Product.ID] })
	changed := before != len(c.categories)
	cartChanged := cartBefore != len(c.cart)
	c.mu.Unlock()

	c.logger.Debug().Str("category_id", id).Int("products_removed", len(removed)).Msg("category removed")

	if changed {
		c.notify(ScopeCategories)
	}
	if len(removed) > 0 {
		c.notify(ScopeProducts)
	}
	if cartChanged {
		c.notify(ScopeCart)
	}
}

// removeProduct drops the product and its cart item, if any.
func (c *Container) removeProduct(id string) {
	c.mu.Lock()
	before := len(c.products)
	c.products = slices.DeleteFunc(c.products, func(x model.Product) bool { return x.ID == id })
	c.deleted[repository.TableProducts].add(id)
	cartBefore := len(c.cart)
	c.cart = slices.DeleteFunc(c.cart, func(item model.CartItem) bool { return item.Product.ID == id })
	changed := before != len(c.products)
	cartChanged := cartBefore != len(c.cart)
	c.mu.Unlock()

	c.logger.Debug().Str("product_id", id).Bool("cart_item_removed", cartChanged).Msg("product removed")

	if changed {
		c.notify(ScopeProducts)
	}
	if cartChanged {
		c.notify(ScopeCart)
	}
}

// purgeOrphanedCartItemsLocked removes cart items whose product is no longer
// mirrored. c.mu must be held for writing.
func (c *Container) purgeOrphanedCartItemsLocked() int {
	known := make(map[string]bool, len(c.products))
	for _, p := range c.products {
		known[p.ID] = true
	}
	before := len(c.cart)
	c.cart = slices.DeleteFunc(c.cart, func(item model.CartItem) bool { return !known[item.Product.ID] })
	return before - len(c.cart)
}

func (c *Container) decodeRow(ev repository.ChangeEvent, row any) bool {
	if len(ev.New) == 0 {
		c.logger.Warn().Str("table", string(ev.Table)).Str("type", string(ev.Type)).Msg("ignoring change event without row")
		return false
	}
	if err := json.Unmarshal(ev.New, row); err != nil {
		c.logger.Warn().Err(err).Str("table", string(ev.Table)).Msg("ignoring malformed change event")
		return false
	}
	return true
}

func (c *Container) hasID(ev repository.ChangeEvent, id string) bool {
	if id == "" {
		c.logger.Warn().Str("table", string(ev.Table)).Msg("ignoring change event row without id")
		return false
	}
	return true
}

func (c *Container) deletedID(ev repository.ChangeEvent) (string, bool) {
	var old struct {
		ID string `json:"id"`
	}
	if len(ev.Old) == 0 || json.Unmarshal(ev.Old, &old) != nil || old.ID == "" {
		c.logger.Warn().Str("table", string(ev.Table)).Msg("ignoring delete event without id")
		return "", false
	}
	return old.ID, true
}

// sortCategories orders by order_index. The sort is stable so equal indices
// keep their arrival order.
func sortCategories(categories []model.Category) {
	slices.SortStableFunc(categories, func(a, b model.Category) int {
		return cmp.Compare(a.OrderIndex, b.OrderIndex)
	})
}

func sortProducts(products []model.Product) {
	slices.SortStableFunc(products, func(a, b model.Product) int {
		return cmp.Compare(a.OrderIndex, b.OrderIndex)
	})
}

const tombstoneLimit = 256

// tombstones remembers recently deleted ids so an insert that arrives after
// the delete cannot bring the row back. Once full, the oldest id is
// forgotten. Guarded by Container.mu.
type tombstones struct {
	ids   map[string]struct{}
	order []string
}

func newTombstones() *tombstones {
	return &tombstones{ids: make(map[string]struct{})}
}

func (t *tombstones) add(id string) {
	if _, ok := t.ids[id]; ok {
		return
	}
	if len(t.order) == tombstoneLimit {
		delete(t.ids, t.order[0])
		t.order = t.order[1:]
	}
	t.ids[id] = struct{}{}
	t.order = append(t.order, id)
}

func (t *tombstones) has(id string) bool {
	_, ok := t.ids[id]
	return ok
}

// lockTables serialises mirror replacement and event application for the
// given tables. Tables are locked in repository.Tables order.
func (c *Container) lockTables(tables ...repository.Table) func() {
	var locked []*sync.Mutex
	for _, t := range repository.Tables {
		if slices.Contains(tables, t) {
			mu := c.applyMu[t]
			mu.Lock()
			locked = append(locked, mu)
		}
	}
	return func() {
		for i := len(locked) - 1; i >= 0; i-- {
			locked[i].Unlock()
		}
	}
}
