package controllers

import (
	"net/http"

	"github.com/angelmondragon/amglow-storefront/api/middleware"
	"github.com/angelmondragon/amglow-storefront/api/responses"
	"github.com/angelmondragon/amglow-storefront/api/validators"
	checkoutsvc "github.com/angelmondragon/amglow-storefront/internal/checkout"
	"github.com/angelmondragon/amglow-storefront/internal/notify"
	"github.com/angelmondragon/amglow-storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/amglow-storefront/pkg/errors"
	"github.com/angelmondragon/amglow-storefront/pkg/logger"
)

// Checkout submits the session cart with the posted customer form. The
// response carries the order id, the reset form, the notices raised and the
// confirmation route as a redirect hint.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "session required"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notices := notify.NewRecorder()
		nav := &checkoutsvc.RouteRecorder{}
		outcome, err := svc.Checkout(r.Context(), sessionID, payload.toForm(), notices, nav)
		if err != nil {
			responses.WriteErrorWith(r.Context(), logg, w, err, notices.Notices())
			return
		}

		responses.WriteSuccessWith(w, http.StatusCreated, checkoutResponse{
			OrderID: outcome.OrderID,
			Total:   outcome.Record.Total.StringFixed(2),
			Status:  string(outcome.Record.Status),
			Form:    outcome.Form,
		}, responses.Extras{
			Notifications: notices.Notices(),
			Redirect:      nav.Last(),
		})
	}
}

// checkoutRequest mirrors the storefront form constraints.
type checkoutRequest struct {
	FirstName     string `json:"firstName" validate:"required,min=2,max=100"`
	LastName      string `json:"lastName" validate:"required,min=2,max=100"`
	Email         string `json:"email" validate:"required,email,max=254"`
	Phone         string `json:"phone" validate:"required,min=10,max=32"`
	Address       string `json:"address" validate:"required,min=5,max=200"`
	City          string `json:"city" validate:"required,max=100"`
	State         string `json:"state" validate:"required,max=100"`
	Zip           string `json:"zip" validate:"required,max=20"`
	PaymentMethod string `json:"paymentMethod" validate:"omitempty,oneof=credit paypal cod"`
}

func (c checkoutRequest) toForm() checkoutsvc.Form {
	form := checkoutsvc.Form{
		FirstName:     validators.SanitizeString(c.FirstName, 100),
		LastName:      validators.SanitizeString(c.LastName, 100),
		Email:         validators.SanitizeString(c.Email, 254),
		Phone:         validators.SanitizeString(c.Phone, 32),
		Address:       validators.SanitizeString(c.Address, 200),
		City:          validators.SanitizeString(c.City, 100),
		State:         validators.SanitizeString(c.State, 100),
		Zip:           validators.SanitizeString(c.Zip, 20),
		PaymentMethod: enums.DefaultPaymentMethod,
	}
	if method, err := enums.ParsePaymentMethod(c.PaymentMethod); err == nil {
		form.PaymentMethod = method
	}
	return form
}

type checkoutResponse struct {
	OrderID string           `json:"order_id"`
	Total   string           `json:"total"`
	Status  string           `json:"status"`
	Form    checkoutsvc.Form `json:"form"`
}
