package store

import (
	"storefront/internal/model"
	"storefront/internal/repository"
)

// StoreConfigFromRow maps a store_config row to the application entity.
func StoreConfigFromRow(row repository.StoreConfigRow) model.StoreConfig {
	var hours map[string]model.DayHours
	if row.OpeningHours != nil {
		hours = make(map[string]model.DayHours, len(row.OpeningHours))
		for day, h := range row.OpeningHours {
			hours[day] = model.DayHours{Open: h.Open, Close: h.Close, Closed: h.Closed}
		}
	}

	return model.StoreConfig{
		ID:             row.ID,
		StoreName:      row.StoreName,
		WhatsAppNumber: row.WhatsAppNumber,
		Address:        row.Address,
		DeliveryFee:    row.DeliveryFee,
		IsOpen:         row.IsOpen,
		OpeningHours:   hours,
		BannerImageURL: row.BannerImageURL,
		BannerText:     row.BannerText,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}

// CategoryFromRow maps a categories row to the application entity.
func CategoryFromRow(row repository.CategoryRow) model.Category {
	return model.Category{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		OrderIndex:  row.OrderIndex,
		IsActive:    row.IsActive,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

// ProductFromRow maps a products row to the application entity.
func ProductFromRow(row repository.ProductRow) model.Product {
	return model.Product{
		ID:              row.ID,
		Name:            row.Name,
		Description:     row.Description,
		Price:           row.Price,
		ImageURL:        row.ImageURL,
		CategoryID:      row.CategoryID,
		IsAvailable:     row.IsAvailable,
		IsFeatured:      row.IsFeatured,
		PreparationTime: row.PreparationTime,
		OrderIndex:      row.OrderIndex,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

func categoriesFromRows(rows []repository.CategoryRow) []model.Category {
	categories := make([]model.Category, 0, len(rows))
	for _, r := range rows {
		categories = append(categories, CategoryFromRow(r))
	}
	return categories
}

func productsFromRows(rows []repository.ProductRow) []model.Product {
	products := make([]model.Product, 0, len(rows))
	for _, r := range rows {
		products = append(products, ProductFromRow(r))
	}
	return products
}
