// Package orders persists immutable order records to a document store.
package orders

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/amglow-storefront/pkg/enums"
)

// DefaultCollection is the logical collection orders are written to.
const DefaultCollection = "orders"

type Address struct {
	Street string `json:"street" bson:"street"`
	City   string `json:"city" bson:"city"`
	State  string `json:"state" bson:"state"`
	Zip    string `json:"zip" bson:"zip"`
}

type Customer struct {
	FirstName string  `json:"firstName" bson:"firstName"`
	LastName  string  `json:"lastName" bson:"lastName"`
	Email     string  `json:"email" bson:"email"`
	Phone     string  `json:"phone" bson:"phone"`
	Address   Address `json:"address" bson:"address"`
}

// Item is a cart line copied into the order at submission time.
type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image"`
}

// Record is the order document. It is built once and never modified.
type Record struct {
	Customer      Customer            `json:"customer"`
	Items         []Item              `json:"items"`
	Total         decimal.Decimal     `json:"total"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod"`
	Status        enums.OrderStatus   `json:"status"`
	CreatedAt     time.Time           `json:"createdAt"`
}

// Store performs exactly one durable insert per call and returns the new id.
type Store interface {
	Insert(ctx context.Context, collection string, rec Record) (string, error)
}

// StoreFunc adapts a function to Store.
type StoreFunc func(ctx context.Context, collection string, rec Record) (string, error)

func (f StoreFunc) Insert(ctx context.Context, collection string, rec Record) (string, error) {
	return f(ctx, collection, rec)
}
