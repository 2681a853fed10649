package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// NoSize is the canonical "standard / no variant" selector. JSON null, an
// absent field and "" all decode to it, and it always encodes as null.
const NoSize Size = ""

const standardSizeLabel = "Standard"

type Size string

func (s Size) MarshalJSON() ([]byte, error) {
	if s == NoSize {
		return []byte("null"), nil
	}
	return json.Marshal(string(s))
}

func (s *Size) UnmarshalJSON(data []byte) error {
	var v *string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*s = NoSize
		return nil
	}
	*s = Size(*v)
	return nil
}

func (s Size) Label() string {
	if s == NoSize {
		return standardSizeLabel
	}
	return string(s)
}

// LineKey identifies a cart line. At most one LineItem exists per key.
type LineKey struct {
	ProductID ProductID
	Size      Size
}

type LineItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Size     Size    `json:"size"`
}

func (li LineItem) Key() LineKey {
	return LineKey{ProductID: li.Product.ID, Size: li.Size}
}

// Clone copies the line, including the product's image slice.
func (li LineItem) Clone() LineItem {
	if li.Product.Images != nil {
		li.Product.Images = append([]ProductImage(nil), li.Product.Images...)
	}
	return li
}

func (li LineItem) Subtotal() decimal.Decimal {
	return li.Product.FinalPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// TotalValue sums FinalPrice x Quantity over items.
func TotalValue(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// TotalCount sums quantities over items.
func TotalCount(items []LineItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}
