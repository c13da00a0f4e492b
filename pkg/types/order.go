package types

import (
	"time"

	"github.com/angelmondragon/jewelry-miniapp/pkg/enums"
	"github.com/shopspring/decimal"
)

// OrderItem is a priced line frozen at order time.
type OrderItem struct {
	ID       int64           `json:"id"`
	Product  Product         `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Size     string          `json:"size,omitempty"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type Order struct {
	ID                   int64               `json:"id"`
	Status               enums.OrderStatus   `json:"status"`
	StatusDisplay        string              `json:"status_display,omitempty"`
	Total                decimal.Decimal     `json:"total"`
	Phone                string              `json:"phone"`
	DeliveryAddress      string              `json:"delivery_address,omitempty"`
	Comment              string              `json:"comment,omitempty"`
	PaymentMethod        enums.PaymentMethod `json:"payment_method"`
	PaymentMethodDisplay string              `json:"payment_method_display,omitempty"`
	IsPaid               bool                `json:"is_paid"`
	Items                []OrderItem         `json:"items"`
	CreatedAt            time.Time           `json:"created_at"`
}

// OrderLineInput is one requested line of a new order.
type OrderLineInput struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
}

// CreateOrderRequest is the POST /orders/ payload.
type CreateOrderRequest struct {
	Items           []OrderLineInput    `json:"items"`
	Phone           string              `json:"phone"`
	DeliveryAddress string              `json:"delivery_address,omitempty"`
	Comment         string              `json:"comment,omitempty"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
}

// OrderLinesFromCart maps cart lines onto order inputs, preserving order.
func OrderLinesFromCart(lines []CartLine) []OrderLineInput {
	out := make([]OrderLineInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, OrderLineInput{
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
			Size:      CanonicalSize(line.Size),
		})
	}
	return out
}
