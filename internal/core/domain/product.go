package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// PlaceholderImageURL is shown for products that carry no images.
const PlaceholderImageURL = "https://placehold.co/100x120?text=Glam"

// ProductID accepts both string and numeric identifiers on decode so that
// snapshots written against integer primary keys still load.
type ProductID string

func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ProductID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product id: %w", err)
	}
	*id = ProductID(n.String())
	return nil
}

type ProductImage struct {
	URL string `json:"url"`
}

// Product is the catalog snapshot captured when an item is added to the cart.
// The cart never refreshes it from the catalog.
type Product struct {
	ID         ProductID       `json:"id"`
	Name       string          `json:"name,omitempty"`
	Price      decimal.Decimal `json:"price"`
	FinalPrice decimal.Decimal `json:"final_price"`
	Images     []ProductImage  `json:"product_images,omitempty"`
}

func (p Product) ThumbnailURL() string {
	if len(p.Images) > 0 && p.Images[0].URL != "" {
		return p.Images[0].URL
	}
	return PlaceholderImageURL
}
