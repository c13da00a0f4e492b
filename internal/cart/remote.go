package cart

import (
	"context"

	"github.com/angelmondragon/jewelry-miniapp/pkg/types"
)

// Remote is the storefront cart surface the controller reconciles against.
// storefront.Client satisfies it.
type Remote interface {
	GetCart(ctx context.Context) (*types.Cart, error)
	AddToCart(ctx context.Context, productID int64, quantity int, size string) (*types.Cart, error)
	UpdateCartItem(ctx context.Context, id types.LineID, quantity int) (*types.Cart, error)
	RemoveCartItem(ctx context.Context, id types.LineID) (*types.Cart, error)
	ClearCart(ctx context.Context) (*types.Cart, error)
}

// Operation names a remote cart call.
type Operation string

const (
	OpFetch  Operation = "fetch"
	OpAdd    Operation = "add"
	OpUpdate Operation = "update"
	OpRemove Operation = "remove"
	OpClear  Operation = "clear"
)

func (o Operation) String() string {
	return string(o)
}
