package storefront

import (
	"context"
	"fmt"
	"net/http"

	pkgerrors "github.com/angelmondragon/jewelry-miniapp/pkg/errors"
	"github.com/angelmondragon/jewelry-miniapp/pkg/types"
)

// CreateOrder submits a new order.
func (c *Client) CreateOrder(ctx context.Context, req types.CreateOrderRequest) (*types.Order, error) {
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	var order types.Order
	if err := c.do(ctx, http.MethodPost, "/orders/", nil, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders returns the caller's orders, newest first as served by the backend.
func (c *Client) ListOrders(ctx context.Context) ([]types.Order, error) {
	return fetchList[types.Order](ctx, c, "/orders/")
}

// GetOrder fetches one order.
func (c *Client) GetOrder(ctx context.Context, id int64) (*types.Order, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id must be positive")
	}
	var order types.Order
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d/", id), nil, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
