package checkout

import (
	"strings"
	"time"

	"github.com/angelmondragon/amglow-storefront/internal/cart"
	"github.com/angelmondragon/amglow-storefront/internal/orders"
	"github.com/angelmondragon/amglow-storefront/pkg/enums"
)

// Form is the customer-supplied checkout form.
type Form struct {
	FirstName     string              `json:"firstName"`
	LastName      string              `json:"lastName"`
	Email         string              `json:"email"`
	Phone         string              `json:"phone"`
	Address       string              `json:"address"`
	City          string              `json:"city"`
	State         string              `json:"state"`
	Zip           string              `json:"zip"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod"`
}

// DefaultForm is an empty form with the default payment method selected.
func DefaultForm() Form {
	return Form{PaymentMethod: enums.DefaultPaymentMethod}
}

// Reset restores f to DefaultForm.
func (f *Form) Reset() {
	*f = DefaultForm()
}

// BuildRecord snapshots c and f into a pending order. String fields are
// trimmed and an unset payment method falls back to the default.
func BuildRecord(c cart.Cart, f Form, now time.Time) orders.Record {
	lines := c.Lines()
	items := make([]orders.Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, orders.Item{
			ID:       l.ID,
			Name:     l.Name,
			Price:    l.UnitPrice,
			Quantity: l.Quantity,
			Image:    l.Image,
		})
	}

	method := enums.PaymentMethod(strings.TrimSpace(string(f.PaymentMethod)))
	if method == "" {
		method = enums.DefaultPaymentMethod
	}

	return orders.Record{
		Customer: orders.Customer{
			FirstName: strings.TrimSpace(f.FirstName),
			LastName:  strings.TrimSpace(f.LastName),
			Email:     strings.TrimSpace(f.Email),
			Phone:     strings.TrimSpace(f.Phone),
			Address: orders.Address{
				Street: strings.TrimSpace(f.Address),
				City:   strings.TrimSpace(f.City),
				State:  strings.TrimSpace(f.State),
				Zip:    strings.TrimSpace(f.Zip),
			},
		},
		Items:         items,
		Total:         c.Total(),
		PaymentMethod: method,
		Status:        enums.OrderStatusPending,
		CreatedAt:     now.UTC(),
	}
}
