package types

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func ipnContext(t *testing.T, form url.Values) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/paypal/ipn", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestNewPaypalIPNRequestFromContext(t *testing.T) {
	ctx := ipnContext(t, url.Values{
		"payment_status": {" Completed "},
		"txn_id":         {"TXN-123"},
		"invoice":        {"order-inv#001"},
		"custom":         {"7 SPRING24"},
		"receiver_email": {"studio@example.com"},
		"flag":           {"true"},
		"flag_info":      {"Duplicate txn_id"},
		"payment_date":   {"20:12:59 Jan 13, 2026 PST"},
	})

	req, err := NewPaypalIPNRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.GetPaymentStatus() != "Completed" {
		t.Fatalf("expected trimmed payment status, got %q", req.GetPaymentStatus())
	}
	if req.GetCustom() != "7 SPRING24" {
		t.Fatalf("unexpected custom %q", req.GetCustom())
	}
	if !req.GetFlag() {
		t.Fatal("expected flag set")
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("expected a valid request, got %v", err)
	}
}

func TestPaypalIPNRequestFlagVariants(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{raw: "", want: false},
		{raw: "0", want: false},
		{raw: "false", want: false},
		{raw: "1", want: true},
		{raw: "true", want: true},
		{raw: "INVALID", want: true},
	}

	for _, tc := range tests {
		ctx := ipnContext(t, url.Values{
			"payment_status": {"Completed"},
			"txn_id":         {"TXN-123"},
			"flag":           {tc.raw},
		})
		req, err := NewPaypalIPNRequestFromContext(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if req.GetFlag() != tc.want {
			t.Fatalf("flag %q: expected %v, got %v", tc.raw, tc.want, req.GetFlag())
		}
	}
}

func TestPaypalIPNRequestValidate(t *testing.T) {
	req := &PaypalIPNRequest{PaymentStatus: "Completed"}
	if err := req.Validate(); err == nil {
		t.Fatal("expected an error for a missing txn_id")
	}

	req = &PaypalIPNRequest{TxnId: "TXN-123"}
	if err := req.Validate(); err == nil {
		t.Fatal("expected an error for a missing payment_status")
	}
}
