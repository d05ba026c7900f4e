package repository

import (
	"time"

	"github.com/shopspring/decimal"
)

// DayHoursRow is one weekday entry of store_config.opening_hours.
type DayHoursRow struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

// StoreConfigRow is the store_config table row shape.
type StoreConfigRow struct {
	ID             string                 `json:"id"`
	StoreName      string                 `json:"store_name"`
	WhatsAppNumber string                 `json:"whatsapp_number"`
	Address        string                 `json:"address"`
	DeliveryFee    decimal.Decimal        `json:"delivery_fee"`
	IsOpen         bool                   `json:"is_open"`
	OpeningHours   map[string]DayHoursRow `json:"opening_hours"`
	BannerImageURL *string                `json:"banner_image_url"`
	BannerText     *string                `json:"banner_text"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// CategoryRow is the categories table row shape.
type CategoryRow struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	OrderIndex  int       `json:"order_index"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductRow is the products table row shape.
type ProductRow struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	ImageURL        *string         `json:"image_url"`
	CategoryID      string          `json:"category_id"`
	IsAvailable     bool            `json:"is_available"`
	IsFeatured      bool            `json:"is_featured"`
	PreparationTime *int            `json:"preparation_time"`
	OrderIndex      int             `json:"order_index"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
