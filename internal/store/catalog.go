package store

import (
	"context"

	"storefront/internal/model"
	"storefront/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Remote writes are write-through: nothing local changes until the gateway
// confirms, then the confirmed row goes through the same reconcile path as
// the change feed. The feed's echo of the same row is a no-op.

// UpdateStoreConfig applies a partial update to the configuration. It is a
// no-op returning (nil, nil) when no configuration is loaded.
func (c *Container) UpdateStoreConfig(ctx context.Context, patch model.StoreConfigPatch) (*model.StoreConfig, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	current := c.StoreConfig()
	if current == nil {
		c.logger.Debug().Msg("no store config loaded, update skipped")
		return nil, nil
	}

	ctx, span := c.tracer.Start(ctx, "store.UpdateStoreConfig",
		trace.WithAttributes(attribute.String("config.id", current.ID)))
	defer span.End()

	ctx, cancel := c.writeContext(ctx)
	defer cancel()

	row, err := c.gw.Config.Update(ctx, current.ID, patch)
	if err != nil {
		return nil, c.writeFailed(span, "update store config", err)
	}

	unlock := c.lockTables(repository.TableStoreConfig)
	c.applyStoreConfig(*row)
	unlock()

	cfg := StoreConfigFromRow(*row)
	return &cfg, nil
}

// AddCategory creates a category. A zero OrderIndex is replaced by the
// current category count plus one; concurrent sessions can assign the same
// index, which only affects tie order.
func (c *Container) AddCategory(ctx context.Context, in model.NewCategory) (*model.Category, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if in.OrderIndex == 0 {
		c.mu.RLock()
		in.OrderIndex = len(c.categories) + 1
		c.mu.RUnlock()
	}

	ctx, span := c.tracer.Start(ctx, "store.AddCategory")
	defer span.End()

	ctx, cancel := c.writeContext(ctx)
	defer cancel()

	row, err := c.gw.Categories.Insert(ctx, in)
	if err != nil {
		return nil, c.writeFailed(span, "add category", err)
	}
	span.SetAttributes(attribute.String("category.id", row.ID))

	unlock := c.lockTables(repository.TableCategories)
	c.applyCategory(repository.ChangeInsert, *row)
	unlock()

	category := CategoryFromRow(*row)
	return &category, nil
}

// UpdateCategory applies a partial update to a category.
func (c *Container) UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "store.UpdateCategory",
		trace.WithAttributes(attribute.String("category.id", id)))
	defer span.End()

	ctx, cancel := c.writeContext(ctx)
	defer cancel()

	row, err := c.gw.Categories.Update(ctx, id, patch)
	if err != nil {
		return nil, c.writeFailed(span, "update category", err)
	}

	unlock := c.lockTables(repository.TableCategories)
	c.applyCategory(repository.ChangeUpdate, *row)
	unlock()

	category := CategoryFromRow(*row)
	return &category, nil
}

// DeleteCategory deletes a category and, locally, every product in it along
// with their cart items. Without gateway cascades the products are deleted
// remotely first.
func (c *Container) DeleteCategory(ctx context.Context, id string) error {
	ctx, span := c.tracer.Start(ctx, "store.DeleteCategory",
		trace.WithAttributes(attribute.String("category.id", id)))
	defer span.End()

	ctx, cancel := c.writeContext(ctx)
	defer cancel()

	if !c.opts.CascadeCategoryDeletes {
		for _, p := range c.ProductsInCategory(id) {
			if err := c.gw.Products.Delete(ctx, p.ID); err != nil {
				return c.writeFailed(span, "delete category products", err)
			}
			unlock := c.lockTables(repository.TableProducts)
			c.removeProduct(p.ID)
			unlock()
		}
	}

	if err := c.gw.Categories.Delete(ctx, id); err != nil {
		return c.writeFailed(span, "delete category", err)
	}

	unlock := c.lockTables(repository.TableCategories)
	c.removeCategory(id)
	unlock()
	return nil
}

// AddProduct creates a product. A zero OrderIndex is replaced by the number
// of products in its category plus one.
func (c *Container) AddProduct(ctx context.Context, in model.NewProduct) (*model.Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if in.OrderIndex == 0 {
		in.OrderIndex = len(c.ProductsInCategory(in.CategoryID)) + 1
	}

	ctx, span := c.tracer.Start(ctx, "store.AddProduct",
		trace.WithAttributes(attribute.String("category.id", in.CategoryID)))
	defer span.End()

	ctx, cancel := c.writeContext(ctx)
	defer cancel()

	row, err := c.gw.Products.Insert(ctx, in)
	if err != nil {
		return nil, c.writeFailed(span, "add product", err)
	}
	span.SetAttributes(attribute.String("product.id", row.ID))

	unlock := c.lockTables(repository.TableProducts)
	c.applyProduct(repository.ChangeInsert, *row)
	unlock()

	product := ProductFromRow(*row)
	return &product, nil
}

// UpdateProduct applies a partial update to a product. Cart items keep the
// price they were added with.
func (c *Container) UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "store.UpdateProduct",
		trace.WithAttributes(attribute.String("product.id", id)))
	defer span.End()

	ctx, cancel := c.writeContext(ctx)
	defer cancel()

	row, err := c.gw.Products.Update(ctx, id, patch)
	if err != nil {
		return nil, c.writeFailed(span, "update product", err)
	}

	unlock := c.lockTables(repository.TableProducts)
	c.applyProduct(repository.ChangeUpdate, *row)
	unlock()

	product := ProductFromRow(*row)
	return &product, nil
}

// DeleteProduct deletes a product and removes it from the cart.
func (c *Container) DeleteProduct(ctx context.Context, id string) error {
	ctx, span := c.tracer.Start(ctx, "store.DeleteProduct",
		trace.WithAttributes(attribute.String("product.id", id)))
	defer span.End()

	ctx, cancel := c.writeContext(ctx)
	defer cancel()

	if err := c.gw.Products.Delete(ctx, id); err != nil {
		return c.writeFailed(span, "delete product", err)
	}

	unlock := c.lockTables(repository.TableProducts)
	c.removeProduct(id)
	unlock()
	return nil
}

func tableAttr(table repository.Table) attribute.KeyValue {
	return attribute.String("table", string(table))
}
