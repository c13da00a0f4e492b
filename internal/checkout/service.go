package checkout

import (
	"context"
	"reflect"
	"strings"

	"github.com/angelmondragon/jewelry-miniapp/pkg/config"
	"github.com/angelmondragon/jewelry-miniapp/pkg/enums"
	pkgerrors "github.com/angelmondragon/jewelry-miniapp/pkg/errors"
	"github.com/angelmondragon/jewelry-miniapp/pkg/logger"
	"github.com/angelmondragon/jewelry-miniapp/pkg/types"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Cart is the slice of the cart controller checkout needs.
type Cart interface {
	Items() []types.CartLine
	Total() decimal.Decimal
	ClearCart()
}

// OrderCreator submits orders to the storefront backend.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req types.CreateOrderRequest) (*types.Order, error)
}

// Input is what the checkout form collects.
type Input struct {
	Phone           string              `json:"phone" validate:"required,max=32"`
	DeliveryAddress string              `json:"delivery_address" validate:"max=500"`
	Comment         string              `json:"comment" validate:"max=1000"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method" validate:"omitempty,oneof=cash transfer"`
}

// Quote is the price breakdown shown before the order is placed.
type Quote struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	DeliveryFee  decimal.Decimal `json:"delivery_fee"`
	Total        decimal.Decimal `json:"total"`
	FreeDelivery bool            `json:"free_delivery"`
}

// Receipt is the outcome of a placed order.
type Receipt struct {
	Order *types.Order `json:"order"`
	Quote Quote        `json:"quote"`
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	Cart   Cart
	Orders OrderCreator
	Config config.CheckoutConfig
	Logger *logger.Logger
}

// Service turns the device cart into a backend order.
type Service interface {
	Quote(subtotal decimal.Decimal) Quote
	QuoteCart() Quote
	PlaceOrder(ctx context.Context, input Input) (*Receipt, error)
}

type service struct {
	cart     Cart
	orders   OrderCreator
	cfg      config.CheckoutConfig
	logg     *logger.Logger
	validate *validator.Validate
}

// NewService builds a checkout service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is required")
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order client is required")
	}
	if params.Config.MinPhoneDigits <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min phone digits must be positive")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		cart:     params.Cart,
		orders:   params.Orders,
		cfg:      params.Config,
		logg:     logg,
		validate: newValidator(),
	}, nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// Quote prices delivery: free at or above the threshold, flat fee below it.
func (s *service) Quote(subtotal decimal.Decimal) Quote {
	fee := s.cfg.DeliveryFee
	free := subtotal.GreaterThanOrEqual(s.cfg.FreeDeliveryThreshold)
	if free {
		fee = decimal.Zero
	}
	return Quote{
		Subtotal:     subtotal,
		DeliveryFee:  fee,
		Total:        subtotal.Add(fee),
		FreeDelivery: free,
	}
}

func (s *service) QuoteCart() Quote {
	return s.Quote(s.cart.Total())
}

// PlaceOrder validates input, submits the cart lines as an order and clears
// the cart once the backend accepted it.
func (s *service) PlaceOrder(ctx context.Context, input Input) (*Receipt, error) {
	input = normalize(input)
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	lines := s.cart.Items()
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	quote := s.Quote(cartSubtotal(lines))

	order, err := s.orders.CreateOrder(ctx, types.CreateOrderRequest{
		Items:           types.OrderLinesFromCart(lines),
		Phone:           input.Phone,
		DeliveryAddress: input.DeliveryAddress,
		Comment:         input.Comment,
		PaymentMethod:   input.PaymentMethod,
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	s.cart.ClearCart()

	ctx = s.logg.WithFields(ctx, map[string]any{
		"order_id": order.ID,
		"lines":    len(lines),
		"total":    quote.Total.String(),
	})
	s.logg.Info(ctx, "order placed")

	return &Receipt{Order: order, Quote: quote}, nil
}

func (s *service) validateInput(input Input) error {
	if err := s.validate.Struct(input); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			details := map[string]string{}
			for _, fe := range errs {
				details[fe.Field()] = fe.Tag()
			}
			return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	if countDigits(input.Phone) < s.cfg.MinPhoneDigits {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"phone": "too_few_digits"})
	}
	return nil
}

func normalize(input Input) Input {
	input.Phone = strings.TrimSpace(input.Phone)
	input.DeliveryAddress = strings.TrimSpace(input.DeliveryAddress)
	input.Comment = strings.TrimSpace(input.Comment)
	if input.PaymentMethod == "" {
		input.PaymentMethod = enums.PaymentMethodCash
	}
	return input
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func cartSubtotal(lines []types.CartLine) decimal.Decimal {
	total, _ := types.CartTotals(lines)
	return total
}
