// Package catalog reads storefront products from MongoDB.
package catalog

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/amglow-storefront/internal/cart"
)

type Product struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Price            decimal.Decimal `json:"price"`
	Image            string          `json:"image"`
	AdditionalImages []string        `json:"additionalImages"`
	Description      string          `json:"description"`
	Details          []string        `json:"details"`
	Rating           float64         `json:"rating"`
	Reviews          int             `json:"reviews"`
	Stock            int             `json:"stock"`
}

// InStock reports whether the product can be added to a cart.
func (p Product) InStock() bool {
	return p.Stock > 0
}

// CartProduct returns the fields a cart line copies at add time.
func (p Product) CartProduct() cart.Product {
	return cart.Product{ID: p.ID, Name: p.Name, Price: p.Price, Image: p.Image}
}

// Repository is the read side of the product catalog.
type Repository interface {
	List(ctx context.Context, limit int64) ([]Product, error)
	FindByID(ctx context.Context, id string) (*Product, error)
}
