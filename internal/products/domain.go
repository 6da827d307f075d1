package products

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Product represents a sellable item within an organization. PriceCents is
// the unit price in the organization's minor currency unit.
type Product struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	SKU            string    `json:"sku"`
	Name           string    `json:"name"`
	PriceCents     int64     `json:"price_cents"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

var pricePrinter = message.NewPrinter(language.English)

// DisplayPrice renders the price with thousands separators, e.g. "1,234.50".
func (p Product) DisplayPrice() string {
	return pricePrinter.Sprintf("%.2f", float64(p.PriceCents)/100)
}
