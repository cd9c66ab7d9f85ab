package cart

import (
	cartsvc "github.com/angelmondragon/amglow-storefront/internal/cart"
)

type cartLine struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Image    string `json:"image"`
	Quantity int    `json:"quantity"`
	Subtotal string `json:"subtotal"`
}

type cartView struct {
	Items []cartLine `json:"items"`
	Total string     `json:"total"`
	Count int        `json:"count"`
}

func newCartView(c cartsvc.Cart) cartView {
	lines := c.Lines()
	items := make([]cartLine, 0, len(lines))
	for _, l := range lines {
		items = append(items, cartLine{
			ID:       l.ID,
			Name:     l.Name,
			Price:    l.UnitPrice.StringFixed(2),
			Image:    l.Image,
			Quantity: l.Quantity,
			Subtotal: l.Subtotal().StringFixed(2),
		})
	}
	return cartView{
		Items: items,
		Total: c.Total().StringFixed(2),
		Count: c.Count(),
	}
}
