package storefront

import (
	"context"
	"fmt"
	"net/http"

	pkgerrors "github.com/angelmondragon/jewelry-miniapp/pkg/errors"
	"github.com/angelmondragon/jewelry-miniapp/pkg/types"
)

type addToCartRequest struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart fetches the caller's cart.
func (c *Client) GetCart(ctx context.Context) (*types.Cart, error) {
	var cart types.Cart
	if err := c.do(ctx, http.MethodGet, "/cart/", nil, nil, &cart); err != nil {
		return nil, err
	}
	return normalizeCart(&cart), nil
}

// AddToCart adds quantity units of productID in size. The backend merges into an
// existing (product, size) line.
func (c *Client) AddToCart(ctx context.Context, productID int64, quantity int, size string) (*types.Cart, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	body := addToCartRequest{
		ProductID: productID,
		Quantity:  quantity,
		Size:      types.CanonicalSize(size),
	}
	var cart types.Cart
	if err := c.do(ctx, http.MethodPost, "/cart/add/", nil, body, &cart); err != nil {
		return nil, err
	}
	return normalizeCart(&cart), nil
}

// UpdateCartItem sets the quantity of a backend cart line.
func (c *Client) UpdateCartItem(ctx context.Context, id types.LineID, quantity int) (*types.Cart, error) {
	var cart types.Cart
	path := fmt.Sprintf("/cart/items/%d/", id)
	if err := c.do(ctx, http.MethodPatch, path, nil, updateCartItemRequest{Quantity: quantity}, &cart); err != nil {
		return nil, err
	}
	return normalizeCart(&cart), nil
}

// RemoveCartItem deletes a backend cart line.
func (c *Client) RemoveCartItem(ctx context.Context, id types.LineID) (*types.Cart, error) {
	var cart types.Cart
	path := fmt.Sprintf("/cart/items/%d/remove/", id)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, &cart); err != nil {
		return nil, err
	}
	return normalizeCart(&cart), nil
}

// ClearCart empties the caller's cart.
func (c *Client) ClearCart(ctx context.Context) (*types.Cart, error) {
	var cart types.Cart
	if err := c.do(ctx, http.MethodDelete, "/cart/clear/", nil, nil, &cart); err != nil {
		return nil, err
	}
	return normalizeCart(&cart), nil
}

func normalizeCart(cart *types.Cart) *types.Cart {
	if cart.Items == nil {
		cart.Items = []types.CartLine{}
	}
	for i := range cart.Items {
		cart.Items[i].Size = types.CanonicalSize(cart.Items[i].Size)
	}
	return cart
}
