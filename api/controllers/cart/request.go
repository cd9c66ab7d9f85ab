package cart

const (
	defaultAddQuantity = 1
	maxLineQuantity    = 99
)

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required,max=128"`
	Quantity  *int   `json:"quantity,omitempty" validate:"omitempty,min=1,max=99"`
}

func (r addItemRequest) quantity() int {
	if r.Quantity == nil {
		return defaultAddQuantity
	}
	return *r.Quantity
}

// updateItemRequest sets an absolute quantity; zero or less removes the line.
type updateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,max=99"`
}
