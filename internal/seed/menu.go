// Package seed loads a menu fixture from YAML and writes it to the gateway.
package seed

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Menu is the fixture document.
type Menu struct {
	Store      StoreFixture      `yaml:"store"`
	Categories []CategoryFixture `yaml:"categories"`
}

// HoursFixture is one weekday of the opening hours.
type HoursFixture struct {
	Open   string `yaml:"open"`
	Close  string `yaml:"close"`
	Closed bool   `yaml:"closed"`
}

// StoreFixture describes the store configuration.
type StoreFixture struct {
	Name           string                  `yaml:"name"`
	WhatsAppNumber string                  `yaml:"whatsapp_number"`
	Address        string                  `yaml:"address"`
	DeliveryFee    string                  `yaml:"delivery_fee"`
	IsOpen         bool                    `yaml:"is_open"`
	OpeningHours   map[string]HoursFixture `yaml:"opening_hours"`
	BannerText     string                  `yaml:"banner_text"`
	BannerImageURL string                  `yaml:"banner_image_url"`
}

// CategoryFixture describes a category and the products listed under it.
// Categories and products are ordered by their position in the file.
type CategoryFixture struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Inactive    bool             `yaml:"inactive"`
	Products    []ProductFixture `yaml:"products"`
}

// ProductFixture describes one product.
type ProductFixture struct {
	Name            string `yaml:"name"`
	Description     string `yaml:"description"`
	Price           string `yaml:"price"`
	ImageURL        string `yaml:"image_url"`
	Featured        bool   `yaml:"featured"`
	Unavailable     bool   `yaml:"unavailable"`
	PreparationTime int    `yaml:"preparation_time"`
}

// LoadFile reads and parses a menu fixture from path.
func LoadFile(path string) (*Menu, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open menu file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes a menu fixture and checks it.
func Parse(r io.Reader) (*Menu, error) {
	var menu Menu

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&menu); err != nil {
		return nil, fmt.Errorf("failed to parse menu: %w", err)
	}

	if err := menu.Validate(); err != nil {
		return nil, err
	}

	return &menu, nil
}

// Validate checks names and amounts in the fixture.
func (m *Menu) Validate() error {
	if strings.TrimSpace(m.Store.Name) == "" {
		return fmt.Errorf("store name is required")
	}
	if _, err := parseAmount(m.Store.DeliveryFee, true); err != nil {
		return fmt.Errorf("store delivery_fee: %w", err)
	}

	for i, c := range m.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("category %d: name is required", i+1)
		}
		for j, p := range c.Products {
			if strings.TrimSpace(p.Name) == "" {
				return fmt.Errorf("category %q product %d: name is required", c.Name, j+1)
			}
			if _, err := parseAmount(p.Price, false); err != nil {
				return fmt.Errorf("product %q price: %w", p.Name, err)
			}
		}
	}
	return nil
}

// parseAmount parses a decimal amount. Empty means zero when allowZero is set.
func parseAmount(s string, allowZero bool) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		if allowZero {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("amount is required")
	}

	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if d.IsNegative() || (!allowZero && d.IsZero()) {
		return decimal.Zero, fmt.Errorf("amount %q out of range", s)
	}
	return d, nil
}
