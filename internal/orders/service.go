package orders

import (
	"context"
	"sort"

	pkgerrors "github.com/angelmondragon/jewelry-miniapp/pkg/errors"
	"github.com/angelmondragon/jewelry-miniapp/pkg/logger"
	"github.com/angelmondragon/jewelry-miniapp/pkg/types"
)

// Backend is the order history surface of the storefront REST client.
type Backend interface {
	ListOrders(ctx context.Context) ([]types.Order, error)
	GetOrder(ctx context.Context, id int64) (*types.Order, error)
}

// History is the profile page view of past orders.
type History struct {
	Orders []types.Order `json:"orders"`
	Open   int           `json:"open"`
}

// Service serves the order history of the current Telegram user.
type Service interface {
	List(ctx context.Context) (*History, error)
	Get(ctx context.Context, id int64) (*types.Order, error)
}

type service struct {
	backend Backend
	logg    *logger.Logger
}

// NewService builds an orders service.
func NewService(backend Backend, logg *logger.Logger) (Service, error) {
	if backend == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders backend is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{backend: backend, logg: logg}, nil
}

// List returns orders newest first with the number still in fulfillment.
func (s *service) List(ctx context.Context) (*History, error) {
	orders, err := s.backend.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []types.Order{}
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	open := 0
	for _, order := range orders {
		if order.Status.IsOpen() {
			open++
		}
	}
	s.logg.Debug(s.logg.WithField(ctx, "orders", len(orders)), "order history loaded")
	return &History{Orders: orders, Open: open}, nil
}

func (s *service) Get(ctx context.Context, id int64) (*types.Order, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id must be positive")
	}
	return s.backend.GetOrder(ctx, id)
}
