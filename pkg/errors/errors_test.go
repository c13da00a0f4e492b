package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
		{code: CodeTimeout, status: http.StatusGatewayTimeout, publicMsg: "upstream timed out", retryable: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeForbidden, "no entry")
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestCodeForStatus(t *testing.T) {
	cases := map[int]Code{
		http.StatusBadRequest:          CodeValidation,
		http.StatusUnauthorized:        CodeUnauthorized,
		http.StatusForbidden:           CodeForbidden,
		http.StatusNotFound:            CodeNotFound,
		http.StatusTooManyRequests:     CodeRateLimit,
		http.StatusGatewayTimeout:      CodeTimeout,
		http.StatusInternalServerError: CodeDependency,
		http.StatusBadGateway:          CodeDependency,
	}
	for status, want := range cases {
		if got := CodeForStatus(status); got != want {
			t.Fatalf("status %d expected %s got %s", status, want, got)
		}
	}
}

func TestIsCodeAndRetryable(t *testing.T) {
	wrapped := fmt.Errorf("sync add: %w", New(CodeDependency, "backend down"))
	if !IsCode(wrapped, CodeDependency) {
		t.Fatalf("expected dependency code through fmt wrapping")
	}
	if !Retryable(wrapped) {
		t.Fatalf("dependency errors should be retryable")
	}
	if Retryable(New(CodeValidation, "bad")) {
		t.Fatalf("validation errors should not be retryable")
	}
	if Retryable(stdErrors.New("plain")) {
		t.Fatalf("untyped errors are not retryable")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	cause := stdErrors.New("dial tcp: connection refused")
	err := fmt.Errorf("fetch cart: %w", Wrap(CodeDependency, cause, "execute cart request"))

	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("expected dependency code, got %q", dump.Code)
	}
	if len(dump.Chain) != 3 {
		t.Fatalf("expected 3 chain entries, got %d: %v", len(dump.Chain), dump.Chain)
	}
	if dump.PGCode != "" {
		t.Fatalf("unexpected pg code %q", dump.PGCode)
	}
	if Dump(nil).TopMessage != "" {
		t.Fatalf("expected empty dump for nil error")
	}
}

func TestDumpCarriesUpstreamDetails(t *testing.T) {
	err := Wrap(CodeNotFound, stdErrors.New("status 404: not found"), "storefront request failed").
		WithDetails(map[string]any{"status": 404, "path": "/products/9/"})

	dump := Dump(err)
	if dump.UpstreamStatus != 404 || dump.UpstreamPath != "/products/9/" {
		t.Fatalf("unexpected upstream fields %+v", dump)
	}
}
