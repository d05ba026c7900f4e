package seed

import (
	"context"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// Summary counts what a seeding run created.
type Summary struct {
	ConfigCreated     bool
	CategoriesCreated int
	ProductsCreated   int
	Skipped           int
}

// Seeder writes menu fixtures through the gateway repositories. Entities
// that already exist by name are left alone, so a run can be repeated.
type Seeder struct {
	gw     repository.Gateway
	logger zerolog.Logger
}

// NewSeeder creates a seeder over the gateway repositories.
func NewSeeder(gw repository.Gateway, logger zerolog.Logger) *Seeder {
	return &Seeder{gw: gw, logger: logger.With().Str("component", "seeder").Logger()}
}

// Run seeds the store configuration, categories and products of menu.
func (s *Seeder) Run(ctx context.Context, menu *Menu) (Summary, error) {
	var sum Summary

	created, err := s.seedConfig(ctx, menu.Store)
	if err != nil {
		return sum, err
	}
	sum.ConfigCreated = created

	existingCategories, err := s.gw.Categories.List(ctx)
	if err != nil {
		return sum, fmt.Errorf("failed to list categories: %w", err)
	}
	existingProducts, err := s.gw.Products.List(ctx)
	if err != nil {
		return sum, fmt.Errorf("failed to list products: %w", err)
	}

	categoryIDs := make(map[string]string, len(existingCategories))
	for _, c := range existingCategories {
		categoryIDs[c.Name] = c.ID
	}
	productKeys := make(map[string]struct{}, len(existingProducts))
	for _, p := range existingProducts {
		productKeys[p.CategoryID+"/"+p.Name] = struct{}{}
	}

	for i, cf := range menu.Categories {
		categoryID, ok := categoryIDs[cf.Name]
		if ok {
			sum.Skipped++
		} else {
			row, err := s.gw.Categories.Insert(ctx, model.NewCategory{
				Name:        cf.Name,
				Description: optional(cf.Description),
				OrderIndex:  i + 1,
				IsActive:    !cf.Inactive,
			})
			if err != nil {
				return sum, fmt.Errorf("failed to seed category %q: %w", cf.Name, err)
			}
			categoryID = row.ID
			sum.CategoriesCreated++
		}

		for j, pf := range cf.Products {
			if _, ok := productKeys[categoryID+"/"+pf.Name]; ok {
				sum.Skipped++
				continue
			}

			price, _ := parseAmount(pf.Price, false)
			product := model.NewProduct{
				Name:        pf.Name,
				Description: pf.Description,
				Price:       price,
				ImageURL:    optional(pf.ImageURL),
				CategoryID:  categoryID,
				IsAvailable: !pf.Unavailable,
				IsFeatured:  pf.Featured,
				OrderIndex:  j + 1,
			}
			if pf.PreparationTime > 0 {
				minutes := pf.PreparationTime
				product.PreparationTime = &minutes
			}

			if _, err := s.gw.Products.Insert(ctx, product); err != nil {
				return sum, fmt.Errorf("failed to seed product %q: %w", pf.Name, err)
			}
			sum.ProductsCreated++
		}
	}

	s.logger.Info().
		Bool("config_created", sum.ConfigCreated).
		Int("categories_created", sum.CategoriesCreated).
		Int("products_created", sum.ProductsCreated).
		Int("skipped", sum.Skipped).
		Msg("menu seeded")

	return sum, nil
}

func (s *Seeder) seedConfig(ctx context.Context, sf StoreFixture) (bool, error) {
	existing, err := s.gw.Config.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read store configuration: %w", err)
	}
	if existing != nil {
		s.logger.Debug().Str("store_name", existing.StoreName).Msg("store configuration exists, skipping")
		return false, nil
	}

	fee, _ := parseAmount(sf.DeliveryFee, true)
	hours := make(map[string]repository.DayHoursRow, len(sf.OpeningHours))
	for day, h := range sf.OpeningHours {
		hours[day] = repository.DayHoursRow{Open: h.Open, Close: h.Close, Closed: h.Closed}
	}

	if _, err := s.gw.Config.Insert(ctx, repository.StoreConfigRow{
		StoreName:      sf.Name,
		WhatsAppNumber: sf.WhatsAppNumber,
		Address:        sf.Address,
		DeliveryFee:    fee,
		IsOpen:         sf.IsOpen,
		OpeningHours:   hours,
		BannerImageURL: optional(sf.BannerImageURL),
		BannerText:     optional(sf.BannerText),
	}); err != nil {
		return false, fmt.Errorf("failed to seed store configuration: %w", err)
	}
	return true, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
