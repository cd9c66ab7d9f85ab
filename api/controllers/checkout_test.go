package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/amglow-storefront/api/middleware"
	checkoutsvc "github.com/angelmondragon/amglow-storefront/internal/checkout"
	"github.com/angelmondragon/amglow-storefront/internal/notify"
	"github.com/angelmondragon/amglow-storefront/internal/orders"
	"github.com/angelmondragon/amglow-storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/amglow-storefront/pkg/errors"
	"github.com/angelmondragon/amglow-storefront/pkg/types"
)

type stubCheckoutService struct {
	lastSession string
	lastForm    checkoutsvc.Form
	err         error
}

func (s *stubCheckoutService) Checkout(ctx context.Context, sessionID string, form checkoutsvc.Form, n notify.Notifier, nav checkoutsvc.Navigator) (*checkoutsvc.Outcome, error) {
	s.lastSession = sessionID
	s.lastForm = form
	if s.err != nil {
		n.Notify(ctx, notify.Error("Failed to place order. Please try again.", notify.LongAutoClose))
		return nil, s.err
	}
	n.Notify(ctx, notify.Success("Order placed successfully!", notify.LongAutoClose))
	nav.GoTo("/order-confirmation")
	return &checkoutsvc.Outcome{
		OrderID: "order-1",
		Record:  orders.Record{Total: decimal.RequireFromString("25.5"), Status: enums.OrderStatusPending},
		Form:    checkoutsvc.DefaultForm(),
	}, nil
}

const validCheckoutBody = `{
	"firstName": " Ada ",
	"lastName": "Lovelace",
	"email": "ada@example.com",
	"phone": "5551234567",
	"address": "12 Analytical Way",
	"city": "London",
	"state": "LDN",
	"zip": "10001",
	"paymentMethod": "paypal"
}`

func postCheckout(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	req = req.WithContext(middleware.WithSessionID(req.Context(), "sess-1"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCheckoutSuccess(t *testing.T) {
	svc := &stubCheckoutService{}
	rec := postCheckout(Checkout(svc, nil), validCheckoutBody)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastSession != "sess-1" {
		t.Fatalf("expected session forwarded, got %q", svc.lastSession)
	}
	if svc.lastForm.FirstName != "Ada" || svc.lastForm.PaymentMethod != enums.PaymentMethodPayPal {
		t.Fatalf("unexpected form %+v", svc.lastForm)
	}

	var env struct {
		Data          checkoutResponse `json:"data"`
		Notifications []types.Notice   `json:"notifications"`
		Redirect      string           `json:"redirect"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.OrderID != "order-1" || env.Data.Total != "25.50" || env.Data.Status != "pending" {
		t.Fatalf("unexpected data %+v", env.Data)
	}
	if env.Data.Form != checkoutsvc.DefaultForm() {
		t.Fatalf("expected reset form, got %+v", env.Data.Form)
	}
	if env.Redirect != "/order-confirmation" {
		t.Fatalf("expected redirect hint, got %q", env.Redirect)
	}
	if len(env.Notifications) != 1 || env.Notifications[0].Kind != "success" || env.Notifications[0].AutoCloseMS != 3000 {
		t.Fatalf("unexpected notifications %+v", env.Notifications)
	}
}

func TestCheckoutDefaultsPaymentMethod(t *testing.T) {
	svc := &stubCheckoutService{}
	body := strings.Replace(validCheckoutBody, `"paymentMethod": "paypal"`, `"paymentMethod": ""`, 1)
	if rec := postCheckout(Checkout(svc, nil), body); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	if svc.lastForm.PaymentMethod != enums.PaymentMethodCredit {
		t.Fatalf("expected credit default, got %q", svc.lastForm.PaymentMethod)
	}
}

func TestCheckoutValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"short name", strings.Replace(validCheckoutBody, `" Ada "`, `"A"`, 1)},
		{"bad email", strings.Replace(validCheckoutBody, `ada@example.com`, `ada`, 1)},
		{"short phone", strings.Replace(validCheckoutBody, `5551234567`, `555`, 1)},
		{"unknown method", strings.Replace(validCheckoutBody, `"paypal"`, `"bitcoin"`, 1)},
		{"malformed", `{"firstName":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubCheckoutService{}
			rec := postCheckout(Checkout(svc, nil), tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d", rec.Code)
			}
			if svc.lastSession != "" {
				t.Fatalf("service must not run on invalid input")
			}
		})
	}
}

func TestCheckoutErrorCarriesNotices(t *testing.T) {
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeDependency, "place order")}
	rec := postCheckout(Checkout(svc, nil), validCheckoutBody)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
	var env types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Notifications) != 1 || env.Notifications[0].Message != "Failed to place order. Please try again." {
		t.Fatalf("unexpected notifications %+v", env.Notifications)
	}
}

func TestCheckoutConflict(t *testing.T) {
	svc := &stubCheckoutService{err: checkoutsvc.ErrSubmissionInFlight}
	if rec := postCheckout(Checkout(svc, nil), validCheckoutBody); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}
