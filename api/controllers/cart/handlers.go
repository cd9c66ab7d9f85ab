package cart

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/amglow-storefront/api/middleware"
	"github.com/angelmondragon/amglow-storefront/api/responses"
	"github.com/angelmondragon/amglow-storefront/api/validators"
	cartsvc "github.com/angelmondragon/amglow-storefront/internal/cart"
	"github.com/angelmondragon/amglow-storefront/internal/catalog"
	"github.com/angelmondragon/amglow-storefront/internal/notify"
	pkgerrors "github.com/angelmondragon/amglow-storefront/pkg/errors"
	"github.com/angelmondragon/amglow-storefront/pkg/logger"
)

// SessionOpener rehydrates the cart of one storefront session.
type SessionOpener interface {
	Open(ctx context.Context, sessionID string, n notify.Notifier) (*cartsvc.Store, error)
}

// ProductLookup resolves catalog products for add-to-cart.
type ProductLookup interface {
	FindByID(ctx context.Context, id string) (*catalog.Product, error)
}

// CartFetch returns the session cart with its total and item count.
func CartFetch(sessions SessionOpener, logg *logger.Logger) http.HandlerFunc {
	return withCart(sessions, logg, func(r *http.Request, store *cartsvc.Store) (int, error) {
		return http.StatusOK, nil
	})
}

// CartClear empties the session cart.
func CartClear(sessions SessionOpener, logg *logger.Logger) http.HandlerFunc {
	return withCart(sessions, logg, func(r *http.Request, store *cartsvc.Store) (int, error) {
		return http.StatusOK, store.ClearCart(r.Context())
	})
}

// CartAddItem adds a catalog product at its current price. Sold-out products
// and requests beyond the available stock are refused.
func CartAddItem(sessions SessionOpener, products ProductLookup, logg *logger.Logger) http.HandlerFunc {
	return withCart(sessions, logg, func(r *http.Request, store *cartsvc.Store) (int, error) {
		if products == nil {
			return 0, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable")
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return 0, err
		}
		productID, err := validators.RequireID("product_id", payload.ProductID)
		if err != nil {
			return 0, err
		}

		product, err := products.FindByID(r.Context(), productID)
		if err != nil {
			return 0, err
		}
		if err := checkStock(*product, payload.quantity()); err != nil {
			return 0, err
		}

		if err := store.AddToCart(r.Context(), product.CartProduct(), payload.quantity()); err != nil {
			return 0, err
		}
		return http.StatusCreated, nil
	})
}

// CartUpdateItem sets the quantity of a line; zero or less removes it.
func CartUpdateItem(sessions SessionOpener, logg *logger.Logger) http.HandlerFunc {
	return withCart(sessions, logg, func(r *http.Request, store *cartsvc.Store) (int, error) {
		productID, err := validators.RequireID("productId", chi.URLParam(r, "productId"))
		if err != nil {
			return 0, err
		}
		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return 0, err
		}
		return http.StatusOK, store.UpdateQuantity(r.Context(), productID, *payload.Quantity)
	})
}

// CartRemoveItem drops a line from the cart.
func CartRemoveItem(sessions SessionOpener, logg *logger.Logger) http.HandlerFunc {
	return withCart(sessions, logg, func(r *http.Request, store *cartsvc.Store) (int, error) {
		productID, err := validators.RequireID("productId", chi.URLParam(r, "productId"))
		if err != nil {
			return 0, err
		}
		return http.StatusOK, store.RemoveFromCart(r.Context(), productID)
	})
}

type cartAction func(r *http.Request, store *cartsvc.Store) (int, error)

func withCart(sessions SessionOpener, logg *logger.Logger, action cartAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessions == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "session required"))
			return
		}

		notices := notify.NewRecorder()
		store, err := sessions.Open(r.Context(), sessionID, notices)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := action(r, store)
		if err != nil {
			responses.WriteErrorWith(r.Context(), logg, w, err, notices.Notices())
			return
		}

		responses.WriteSuccessWith(w, status, newCartView(store.Snapshot()), responses.Extras{
			Notifications: notices.Notices(),
		})
	}
}

// checkStock refuses sold-out products and a single request asking for more
// units than are stocked. Repeated adds merge into the line without a cap.
func checkStock(p catalog.Product, quantity int) error {
	if !p.InStock() {
		return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("%s is out of stock", p.Name)).
			WithDetails(map[string]any{"product_id": p.ID, "stock": p.Stock})
	}
	if quantity > p.Stock {
		return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("only %d of %s available", p.Stock, p.Name)).
			WithDetails(map[string]any{"product_id": p.ID, "stock": p.Stock, "quantity": quantity})
	}
	return nil
}
