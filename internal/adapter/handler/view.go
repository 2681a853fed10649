package handler

import (
	"github.com/shopspring/decimal"

	"github.com/glam-abaya/cartstore/internal/core/domain"
	"github.com/glam-abaya/cartstore/internal/core/service"
)

type LineView struct {
	Product   domain.Product  `json:"product"`
	Quantity  int             `json:"quantity"`
	Size      domain.Size     `json:"size"`
	SizeLabel string          `json:"size_label"`
	Thumbnail string          `json:"thumbnail"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type CartView struct {
	Items      []LineView      `json:"items"`
	TotalValue decimal.Decimal `json:"total_value"`
	TotalCount int             `json:"total_count"`
	IsEmpty    bool            `json:"is_empty"`
	IsOpen     bool            `json:"is_open"`
}

func NewCartView(store *service.CartStore) CartView {
	items, open := store.Snapshot()
	view := CartView{
		Items:      make([]LineView, 0, len(items)),
		TotalValue: domain.TotalValue(items),
		TotalCount: domain.TotalCount(items),
		IsEmpty:    len(items) == 0,
		IsOpen:     open,
	}
	for _, item := range items {
		view.Items = append(view.Items, LineView{
			Product:   item.Product,
			Quantity:  item.Quantity,
			Size:      item.Size,
			SizeLabel: item.Size.Label(),
			Thumbnail: item.Product.ThumbnailURL(),
			Subtotal:  item.Subtotal(),
		})
	}
	return view
}

type AddItemRequest struct {
	Product  domain.Product `json:"product"`
	Quantity int            `json:"quantity"`
	Size     domain.Size    `json:"size"`
}

type SetQuantityRequest struct {
	ProductID domain.ProductID `json:"product_id"`
	Size      domain.Size      `json:"size"`
	Quantity  int              `json:"quantity"`
}

type ItemRequest struct {
	ProductID domain.ProductID `json:"product_id"`
	Size      domain.Size      `json:"size"`
}

type VisibilityRequest struct {
	// Action is one of open, close, toggle.
	Action string `json:"action"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
