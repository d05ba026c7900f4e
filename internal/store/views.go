package store

import (
	"slices"
	"strings"

	"storefront/internal/model"
)

// StoreConfig returns a copy of the configuration, or nil when none is loaded.
func (c *Container) StoreConfig() *model.StoreConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.config == nil {
		return nil
	}
	cfg := *c.config
	return &cfg
}

// Categories returns every category ordered by order index.
func (c *Container) Categories() []model.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.categories)
}

// Products returns every product ordered by order index.
func (c *Container) Products() []model.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.products)
}

// Product looks up a mirrored product by id.
func (c *Container) Product(id string) (model.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := slices.IndexFunc(c.products, func(p model.Product) bool { return p.ID == id })
	if i < 0 {
		return model.Product{}, false
	}
	return c.products[i], true
}

// ActiveCategories returns the categories shown on the menu.
func (c *Container) ActiveCategories() []model.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()

	active := []model.Category{}
	for _, cat := range c.categories {
		if cat.IsActive {
			active = append(active, cat)
		}
	}
	return active
}

// FeaturedProducts returns featured products that can be ordered.
func (c *Container) FeaturedProducts() []model.Product {
	return c.filterProducts(func(p model.Product) bool {
		return p.IsFeatured && p.IsAvailable
	})
}

// ProductsInCategory returns the category's products ordered by order index.
func (c *Container) ProductsInCategory(categoryID string) []model.Product {
	return c.filterProducts(func(p model.Product) bool {
		return p.CategoryID == categoryID
	})
}

// SearchProducts matches term case-insensitively against name and
// description. An empty categoryID matches every category.
func (c *Container) SearchProducts(term, categoryID string) []model.Product {
	term = strings.ToLower(strings.TrimSpace(term))

	return c.filterProducts(func(p model.Product) bool {
		if categoryID != "" && p.CategoryID != categoryID {
			return false
		}
		if term == "" {
			return true
		}
		return strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Description), term)
	})
}

func (c *Container) filterProducts(keep func(model.Product) bool) []model.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	products := []model.Product{}
	for _, p := range c.products {
		if keep(p) {
			products = append(products, p)
		}
	}
	return products
}
