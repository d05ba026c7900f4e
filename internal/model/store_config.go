package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DayHours is the opening window for one weekday, in "HH:MM" local time.
type DayHours struct {
	Open   string `json:"open" yaml:"open"`
	Close  string `json:"close" yaml:"close"`
	Closed bool   `json:"closed" yaml:"closed"`
}

// StoreConfig is the singleton storefront configuration.
type StoreConfig struct {
	ID             string              `json:"id"`
	StoreName      string              `json:"storeName"`
	WhatsAppNumber string              `json:"whatsappNumber"`
	Address        string              `json:"address"`
	DeliveryFee    decimal.Decimal     `json:"deliveryFee"`
	IsOpen         bool                `json:"isOpen"`
	OpeningHours   map[string]DayHours `json:"openingHours"`
	BannerImageURL *string             `json:"bannerImageUrl,omitempty"`
	BannerText     *string             `json:"bannerText,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// IsOpenAt reports whether the store takes orders at t. The manual IsOpen
// switch wins over the weekly schedule. A close time earlier than the open
// time means the window runs past midnight.
func (c *StoreConfig) IsOpenAt(t time.Time) bool {
	if c == nil || !c.IsOpen {
		return false
	}

	hours, ok := c.OpeningHours[strings.ToLower(t.Weekday().String())]
	if !ok {
		// No schedule for the day: fall back to the manual switch.
		return true
	}
	if hours.Closed {
		return false
	}

	open, errOpen := time.Parse("15:04", hours.Open)
	closing, errClose := time.Parse("15:04", hours.Close)
	if errOpen != nil || errClose != nil {
		return true
	}

	now := t.Hour()*60 + t.Minute()
	from := open.Hour()*60 + open.Minute()
	to := closing.Hour()*60 + closing.Minute()

	if to <= from {
		return now >= from || now < to
	}
	return now >= from && now < to
}

// StoreConfigPatch is a partial configuration update. Nil fields are left
// unchanged; empty banner fields clear them.
type StoreConfigPatch struct {
	StoreName      *string             `json:"storeName,omitempty"`
	WhatsAppNumber *string             `json:"whatsappNumber,omitempty"`
	Address        *string             `json:"address,omitempty"`
	DeliveryFee    *decimal.Decimal    `json:"deliveryFee,omitempty"`
	IsOpen         *bool               `json:"isOpen,omitempty"`
	OpeningHours   map[string]DayHours `json:"openingHours,omitempty"`
	BannerImageURL *string             `json:"bannerImageUrl,omitempty"`
	BannerText     *string             `json:"bannerText,omitempty"`
}

// Validate rejects patches that would break configuration invariants.
func (p StoreConfigPatch) Validate() error {
	if p.DeliveryFee != nil && p.DeliveryFee.IsNegative() {
		return ErrInvalidInput("delivery fee cannot be negative")
	}
	if p.StoreName != nil && strings.TrimSpace(*p.StoreName) == "" {
		return ErrInvalidInput("store name cannot be empty")
	}
	for day, hours := range p.OpeningHours {
		if hours.Closed {
			continue
		}
		if _, err := time.Parse("15:04", hours.Open); err != nil {
			return ErrInvalidInput("invalid opening time for " + day)
		}
		if _, err := time.Parse("15:04", hours.Close); err != nil {
			return ErrInvalidInput("invalid closing time for " + day)
		}
	}
	return nil
}
