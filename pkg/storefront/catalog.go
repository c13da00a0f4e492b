package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/angelmondragon/jewelry-miniapp/pkg/enums"
	pkgerrors "github.com/angelmondragon/jewelry-miniapp/pkg/errors"
	"github.com/angelmondragon/jewelry-miniapp/pkg/pagination"
	"github.com/angelmondragon/jewelry-miniapp/pkg/types"
	"github.com/shopspring/decimal"
)

// ProductFilters maps onto the backend's product list query parameters.
type ProductFilters struct {
	Category   string
	MetalType  enums.MetalType
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Search     string
	Ordering   string
	IsFeatured *bool
	InStock    *bool
}

// Values encodes the non-empty filters.
func (f ProductFilters) Values() url.Values {
	values := url.Values{}
	if s := strings.TrimSpace(f.Category); s != "" {
		values.Set("category", s)
	}
	if f.MetalType != "" {
		values.Set("metal_type", f.MetalType.String())
	}
	if f.MinPrice != nil {
		values.Set("min_price", f.MinPrice.String())
	}
	if f.MaxPrice != nil {
		values.Set("max_price", f.MaxPrice.String())
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		values.Set("search", s)
	}
	if s := strings.TrimSpace(f.Ordering); s != "" {
		values.Set("ordering", s)
	}
	if f.IsFeatured != nil {
		values.Set("is_featured", strconv.FormatBool(*f.IsFeatured))
	}
	if f.InStock != nil {
		values.Set("in_stock", strconv.FormatBool(*f.InStock))
	}
	return values
}

// ListProducts returns one page of products matching filters.
func (c *Client) ListProducts(ctx context.Context, filters ProductFilters, params pagination.Params) (*pagination.Page[types.Product], error) {
	query := filters.Values()
	pagination.Apply(query, params)

	var page pagination.Page[types.Product]
	if err := c.do(ctx, http.MethodGet, "/products/", query, nil, &page); err != nil {
		return nil, err
	}
	if page.Results == nil {
		page.Results = []types.Product{}
	}
	return &page, nil
}

// GetProduct fetches one product with its detail fields.
func (c *Client) GetProduct(ctx context.Context, id int64) (*types.Product, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}
	var product types.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d/", id), nil, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// FeaturedProducts returns the first page of featured products.
func (c *Client) FeaturedProducts(ctx context.Context) ([]types.Product, error) {
	featured := true
	page, err := c.ListProducts(ctx, ProductFilters{IsFeatured: &featured}, pagination.Params{})
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

// NewArrivals returns the newest products.
func (c *Client) NewArrivals(ctx context.Context) ([]types.Product, error) {
	return fetchList[types.Product](ctx, c, "/products/new_arrivals/")
}

// Categories returns the active categories.
func (c *Client) Categories(ctx context.Context) ([]types.Category, error) {
	return fetchList[types.Category](ctx, c, "/categories/")
}

// Banners returns the home page banners.
func (c *Client) Banners(ctx context.Context) ([]types.Banner, error) {
	return fetchList[types.Banner](ctx, c, "/banners/")
}

func fetchList[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &raw); err != nil {
		return nil, err
	}
	list, err := decodeList[T](raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode storefront list")
	}
	return list, nil
}
