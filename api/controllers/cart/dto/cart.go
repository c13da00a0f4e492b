package cartdto

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/jewelry-miniapp/pkg/types"
)

// AddItemRequest adds quantity of a product in the given size.
type AddItemRequest struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Quantity  *int   `json:"quantity" validate:"omitempty,gte=1,lte=99"`
	Size      string `json:"size" validate:"max=16"`
}

// UpdateItemRequest sets a line quantity. Zero removes the line.
type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=0,lte=99"`
}

// CartLine is one rendered cart row.
type CartLine struct {
	ID        types.LineID    `json:"id"`
	Local     bool            `json:"local"`
	Product   types.Product   `json:"product"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	MainImage string          `json:"main_image,omitempty"`
}

// Cart is the bridge view of the cart controller state.
type Cart struct {
	Items      []CartLine      `json:"items"`
	Total      decimal.Decimal `json:"total"`
	ItemsCount int             `json:"items_count"`
	IsOpen     bool            `json:"is_open"`
	IsSyncing  bool            `json:"is_syncing"`
	Revision   uint64          `json:"revision"`
}
