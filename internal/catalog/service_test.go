package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/jewelry-miniapp/pkg/errors"
	"github.com/angelmondragon/jewelry-miniapp/pkg/pagination"
	"github.com/angelmondragon/jewelry-miniapp/pkg/storefront"
	"github.com/angelmondragon/jewelry-miniapp/pkg/types"
	"github.com/shopspring/decimal"
)

type stubBackend struct {
	filters       []storefront.ProductFilters
	categoryCalls int
	bannerCalls   int
	categories    []types.Category
	categoriesErr error
	featured      []types.Product
	arrivals      []types.Product
}

func (s *stubBackend) ListProducts(ctx context.Context, filters storefront.ProductFilters, params pagination.Params) (*pagination.Page[types.Product], error) {
	s.filters = append(s.filters, filters)
	return &pagination.Page[types.Product]{Count: 1, Results: []types.Product{{ID: 1, Name: "Ring"}}}, nil
}

func (s *stubBackend) GetProduct(ctx context.Context, id int64) (*types.Product, error) {
	return &types.Product{ID: id}, nil
}

func (s *stubBackend) FeaturedProducts(ctx context.Context) ([]types.Product, error) {
	return s.featured, nil
}

func (s *stubBackend) NewArrivals(ctx context.Context) ([]types.Product, error) {
	return s.arrivals, nil
}

func (s *stubBackend) Categories(ctx context.Context) ([]types.Category, error) {
	s.categoryCalls++
	if s.categoriesErr != nil {
		return nil, s.categoriesErr
	}
	return s.categories, nil
}

func (s *stubBackend) Banners(ctx context.Context) ([]types.Banner, error) {
	s.bannerCalls++
	return []types.Banner{{ID: 1, Title: "Spring"}}, nil
}

type stubCache struct {
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newStubCache() *stubCache {
	return &stubCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *stubCache) CacheGet(ctx context.Context, key string) ([]byte, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	val, ok := c.data[key]
	return val, ok, nil
}

func (c *stubCache) CacheSet(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = value
	c.ttls[key] = ttl
	return nil
}

func newTestService(t *testing.T, backend Backend, cache Cache) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Backend: backend, Cache: cache, CacheTTL: time.Minute})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCategoriesServedFromCache(t *testing.T) {
	backend := &stubBackend{categories: []types.Category{{ID: 1, Name: "Rings", Slug: "rings"}}}
	cache := newStubCache()
	svc := newTestService(t, backend, cache)

	for i := 0; i < 3; i++ {
		got, err := svc.Categories(context.Background())
		if err != nil {
			t.Fatalf("categories: %v", err)
		}
		if len(got) != 1 || got[0].Slug != "rings" {
			t.Fatalf("unexpected categories %+v", got)
		}
	}
	if backend.categoryCalls != 1 {
		t.Fatalf("expected one backend call, got %d", backend.categoryCalls)
	}
	if cache.ttls[categoriesCacheKey] != time.Minute {
		t.Fatalf("expected ttl to be applied, got %s", cache.ttls[categoriesCacheKey])
	}
}

func TestCacheFailuresFallBackToBackend(t *testing.T) {
	backend := &stubBackend{}
	cache := newStubCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")
	svc := newTestService(t, backend, cache)

	if _, err := svc.Banners(context.Background()); err != nil {
		t.Fatalf("banners: %v", err)
	}
	if _, err := svc.Banners(context.Background()); err != nil {
		t.Fatalf("banners: %v", err)
	}
	if backend.bannerCalls != 2 {
		t.Fatalf("expected every call to reach the backend, got %d", backend.bannerCalls)
	}
}

func TestUnreadableCacheEntryIsRefreshed(t *testing.T) {
	backend := &stubBackend{categories: []types.Category{{ID: 2, Slug: "chains"}}}
	cache := newStubCache()
	cache.data[categoriesCacheKey] = []byte("{broken")
	svc := newTestService(t, backend, cache)

	got, err := svc.Categories(context.Background())
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "chains" || backend.categoryCalls != 1 {
		t.Fatalf("expected backend refresh, got %+v calls=%d", got, backend.categoryCalls)
	}
	if string(cache.data[categoriesCacheKey]) == "{broken" {
		t.Fatal("expected cache entry to be overwritten")
	}
}

func TestBackendErrorsAreNotCached(t *testing.T) {
	backend := &stubBackend{categoriesErr: pkgerrors.New(pkgerrors.CodeDependency, "storefront request failed")}
	cache := newStubCache()
	svc := newTestService(t, backend, cache)

	if _, err := svc.Categories(context.Background()); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if len(cache.data) != 0 {
		t.Fatal("failed loads must not be cached")
	}
}

func TestNoCacheWithoutTTL(t *testing.T) {
	backend := &stubBackend{}
	cache := newStubCache()
	svc, err := NewService(ServiceParams{Backend: backend, Cache: cache})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := svc.Categories(context.Background()); err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(cache.data) != 0 {
		t.Fatal("cache must be bypassed without a ttl")
	}
}

func TestProductsByCategoryAndSearch(t *testing.T) {
	backend := &stubBackend{}
	svc := newTestService(t, backend, nil)
	ctx := context.Background()

	if _, err := svc.ProductsByCategory(ctx, " rings ", pagination.Params{Page: 2}); err != nil {
		t.Fatalf("by category: %v", err)
	}
	if _, err := svc.Search(ctx, " gold ", pagination.Params{}); err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(backend.filters) != 2 || backend.filters[0].Category != "rings" || backend.filters[1].Search != "gold" {
		t.Fatalf("unexpected filters %+v", backend.filters)
	}

	if _, err := svc.Search(ctx, "   ", pagination.Params{}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for blank query, got %v", err)
	}
	if _, err := svc.ProductsByCategory(ctx, "", pagination.Params{}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for blank slug, got %v", err)
	}
}

func TestListProductsRejectsInvertedPriceRange(t *testing.T) {
	backend := &stubBackend{}
	svc := newTestService(t, backend, nil)
	minPrice := decimal.NewFromInt(500)
	maxPrice := decimal.NewFromInt(100)

	_, err := svc.ListProducts(context.Background(), storefront.ProductFilters{MinPrice: &minPrice, MaxPrice: &maxPrice}, pagination.Params{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(backend.filters) != 0 {
		t.Fatal("backend must not be called")
	}
}

func TestNewServiceRequiresBackend(t *testing.T) {
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatal("expected error without backend")
	}
}
