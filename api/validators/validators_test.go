package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/angelmondragon/jewelry-miniapp/pkg/errors"
)

type addLineRequest struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
	Size      string `json:"size" validate:"max=16"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":3,"quantity":2,"size":"17"}`))
	var body addLineRequest
	if err := DecodeJSONBody(req, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ProductID != 3 || body.Quantity != 2 || body.Size != "17" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestDecodeJSONBodyValidationDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":0,"quantity":0}`))
	var body addLineRequest
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details %T", typed.Details())
	}
	if details["product_id"] != "is required" || details["quantity"] != "must be greater than or equal to 1" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":1,"quantity":1,"color":"red"}`))
	var body addLineRequest
	if err := DecodeJSONBody(req, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParsePagination(t *testing.T) {
	params, err := ParsePagination(httptest.NewRequest(http.MethodGet, "/?page=3", nil))
	if err != nil || params.Page != 3 {
		t.Fatalf("expected page 3, got %+v err=%v", params, err)
	}
	params, err = ParsePagination(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil || params.Page != 1 {
		t.Fatalf("expected first page, got %+v err=%v", params, err)
	}
	if _, err := ParsePagination(httptest.NewRequest(http.MethodGet, "/?page=0", nil)); err == nil {
		t.Fatal("expected out of range error")
	}
}

func TestParseQueryDecimalAndBool(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?min_price=150000.50&in_stock=true&bad=-1", nil)

	price, err := ParseQueryDecimal(req, "min_price")
	if err != nil || price == nil || price.String() != "150000.5" {
		t.Fatalf("unexpected price %v err=%v", price, err)
	}
	if missing, err := ParseQueryDecimal(req, "max_price"); err != nil || missing != nil {
		t.Fatalf("expected nil for absent param, got %v err=%v", missing, err)
	}
	if _, err := ParseQueryDecimal(req, "bad"); err == nil {
		t.Fatal("expected negative price to be rejected")
	}
	inStock, err := ParseQueryBool(req, "in_stock")
	if err != nil || inStock == nil || !*inStock {
		t.Fatalf("unexpected in_stock %v err=%v", inStock, err)
	}
}

func TestParseIDParamAcceptsLocalIDs(t *testing.T) {
	for raw, want := range map[string]int64{"12": 12, "-3": -3} {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("lineId", raw)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

		got, err := ParseIDParam(req, "lineId")
		if err != nil || got != want {
			t.Fatalf("param %q: got %d err=%v", raw, got, err)
		}
	}

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("lineId", "0")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	if _, err := ParseIDParam(req, "lineId"); err == nil {
		t.Fatal("expected zero id to be rejected")
	}
}

func TestSanitizeStringKeepsRunesIntact(t *testing.T) {
	if got := SanitizeString("  узук  ", 3); got != "узу" {
		t.Fatalf("unexpected %q", got)
	}
	if got := SanitizeString(" ring ", 0); got != "ring" {
		t.Fatalf("unexpected %q", got)
	}
}
