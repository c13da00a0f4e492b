package catalog

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/jewelry-miniapp/pkg/errors"
	"github.com/angelmondragon/jewelry-miniapp/pkg/logger"
	"github.com/angelmondragon/jewelry-miniapp/pkg/pagination"
	"github.com/angelmondragon/jewelry-miniapp/pkg/storefront"
	"github.com/angelmondragon/jewelry-miniapp/pkg/types"
)

const (
	categoriesCacheKey = "categories"
	bannersCacheKey    = "banners"
)

// Backend is the catalog surface of the storefront REST client.
type Backend interface {
	ListProducts(ctx context.Context, filters storefront.ProductFilters, params pagination.Params) (*pagination.Page[types.Product], error)
	GetProduct(ctx context.Context, id int64) (*types.Product, error)
	FeaturedProducts(ctx context.Context) ([]types.Product, error)
	NewArrivals(ctx context.Context) ([]types.Product, error)
	Categories(ctx context.Context) ([]types.Category, error)
	Banners(ctx context.Context) ([]types.Banner, error)
}

// Cache stores rarely changing catalog payloads. A miss reports false without an error.
type Cache interface {
	CacheGet(ctx context.Context, key string) ([]byte, bool, error)
	CacheSet(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Service exposes the catalog reads behind the home, catalog and product pages.
type Service interface {
	ListProducts(ctx context.Context, filters storefront.ProductFilters, params pagination.Params) (*pagination.Page[types.Product], error)
	GetProduct(ctx context.Context, id int64) (*types.Product, error)
	Featured(ctx context.Context) ([]types.Product, error)
	NewArrivals(ctx context.Context) ([]types.Product, error)
	Categories(ctx context.Context) ([]types.Category, error)
	ProductsByCategory(ctx context.Context, slug string, params pagination.Params) (*pagination.Page[types.Product], error)
	Banners(ctx context.Context) ([]types.Banner, error)
	Search(ctx context.Context, query string, params pagination.Params) (*pagination.Page[types.Product], error)
}

// ServiceParams groups dependencies for the catalog service. Cache is optional.
type ServiceParams struct {
	Backend  Backend
	Cache    Cache
	CacheTTL time.Duration
	Logger   *logger.Logger
}

type service struct {
	backend Backend
	cache   Cache
	ttl     time.Duration
	logg    *logger.Logger
}

// NewService builds a catalog service.
func NewService(params ServiceParams) (Service, error) {
	if params.Backend == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog backend is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	cache := params.Cache
	if params.CacheTTL <= 0 {
		cache = nil
	}
	return &service{
		backend: params.Backend,
		cache:   cache,
		ttl:     params.CacheTTL,
		logg:    logg,
	}, nil
}

func (s *service) ListProducts(ctx context.Context, filters storefront.ProductFilters, params pagination.Params) (*pagination.Page[types.Product], error) {
	if filters.MinPrice != nil && filters.MaxPrice != nil && filters.MinPrice.GreaterThan(*filters.MaxPrice) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_price must not exceed max_price")
	}
	return s.backend.ListProducts(ctx, filters, params)
}

func (s *service) GetProduct(ctx context.Context, id int64) (*types.Product, error) {
	return s.backend.GetProduct(ctx, id)
}

func (s *service) Featured(ctx context.Context) ([]types.Product, error) {
	return s.backend.FeaturedProducts(ctx)
}

func (s *service) NewArrivals(ctx context.Context) ([]types.Product, error) {
	return s.backend.NewArrivals(ctx)
}

func (s *service) Categories(ctx context.Context) ([]types.Category, error) {
	return cached(ctx, s, categoriesCacheKey, s.backend.Categories)
}

func (s *service) Banners(ctx context.Context) ([]types.Banner, error) {
	return cached(ctx, s, bannersCacheKey, s.backend.Banners)
}

// ProductsByCategory lists one category by slug.
func (s *service) ProductsByCategory(ctx context.Context, slug string, params pagination.Params) (*pagination.Page[types.Product], error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category slug is required")
	}
	return s.backend.ListProducts(ctx, storefront.ProductFilters{Category: slug}, params)
}

// Search runs a free-text product search.
func (s *service) Search(ctx context.Context, query string, params pagination.Params) (*pagination.Page[types.Product], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search query is required")
	}
	return s.backend.ListProducts(ctx, storefront.ProductFilters{Search: query}, params)
}

// cached serves key from the cache when possible. Cache failures degrade to
// a backend read and are only logged.
func cached[T any](ctx context.Context, s *service, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if s.cache == nil {
		return load(ctx)
	}
	ctx = s.logg.WithField(ctx, "cache_key", key)

	raw, ok, err := s.cache.CacheGet(ctx, key)
	switch {
	case err != nil:
		s.logg.WarnErr(ctx, "catalog cache read failed", err)
	case ok:
		var out []T
		decodeErr := json.Unmarshal(raw, &out)
		if decodeErr == nil {
			return out, nil
		}
		s.logg.WarnErr(ctx, "catalog cache entry unreadable", decodeErr)
	}

	out, err := load(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(out)
	if err != nil {
		s.logg.WarnErr(ctx, "catalog cache encode failed", err)
		return out, nil
	}
	if err := s.cache.CacheSet(ctx, key, payload, s.ttl); err != nil {
		s.logg.WarnErr(ctx, "catalog cache write failed", err)
	}
	return out, nil
}
