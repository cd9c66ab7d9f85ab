// Package cart holds the session shopping cart: an ordered set of lines,
// pure transitions over it, and a Store that persists every change.
package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/amglow-storefront/internal/notify"
)

// Product is the catalog data copied into a line when it is first added.
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Image string
}

// Line is one distinct product in the cart. Quantity is always >= 1.
type Line struct {
	ID        string
	Name      string
	UnitPrice decimal.Decimal
	Image     string
	Quantity  int
}

// Subtotal returns UnitPrice × Quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an immutable value. Transitions return a new Cart and never alias
// the receiver's backing array.
type Cart struct {
	lines []Line
}

// New builds a cart from lines in the given order.
func New(lines ...Line) Cart {
	return Cart{lines: cloneLines(lines)}
}

// Lines returns a copy of the lines in insertion order.
func (c Cart) Lines() []Line {
	return cloneLines(c.lines)
}

func (c Cart) Len() int { return len(c.lines) }

func (c Cart) IsEmpty() bool { return len(c.lines) == 0 }

// Find returns the line for productID.
func (c Cart) Find(productID string) (Line, bool) {
	if i := c.index(productID); i >= 0 {
		return c.lines[i], true
	}
	return Line{}, false
}

// Total is the exact sum of every line subtotal.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Count is the sum of quantities.
func (c Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c Cart) index(productID string) int {
	for i, l := range c.lines {
		if l.ID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) String() string {
	return fmt.Sprintf("cart{lines=%d count=%d total=%s}", len(c.lines), c.Count(), c.Total().StringFixed(2))
}

const (
	msgRemoved = "Item removed from cart"
)

func addedMessage(name string) string {
	return name + " added to cart!"
}

// Add merges quantity units of p into c. An existing line keeps its original
// price and display fields; a new line is appended. quantity < 1 leaves c
// unchanged and emits nothing.
func Add(c Cart, p Product, quantity int) (Cart, *notify.Notification) {
	if quantity < 1 {
		return c, nil
	}
	next := cloneLines(c.lines)
	if i := c.index(p.ID); i >= 0 {
		next[i].Quantity += quantity
	} else {
		next = append(next, Line{
			ID:        p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Image:     p.Image,
			Quantity:  quantity,
		})
	}
	n := notify.Success(addedMessage(p.Name), notify.ShortAutoClose)
	return Cart{lines: next}, &n
}

// Remove deletes the line for productID. A missing id is not an error; the
// informational notice is still emitted.
func Remove(c Cart, productID string) (Cart, *notify.Notification) {
	next := make([]Line, 0, len(c.lines))
	for _, l := range c.lines {
		if l.ID != productID {
			next = append(next, l)
		}
	}
	n := notify.Info(msgRemoved, notify.ShortAutoClose)
	return Cart{lines: next}, &n
}

// Update sets the absolute quantity of a line. quantity < 1 is exactly Remove.
// A missing id with quantity >= 1 is a silent no-op.
func Update(c Cart, productID string, quantity int) (Cart, *notify.Notification) {
	if quantity < 1 {
		return Remove(c, productID)
	}
	i := c.index(productID)
	if i < 0 {
		return c, nil
	}
	next := cloneLines(c.lines)
	next[i].Quantity = quantity
	return Cart{lines: next}, nil
}

// Clear empties the cart. It never emits a notification.
func Clear(Cart) (Cart, *notify.Notification) {
	return Cart{}, nil
}

func cloneLines(lines []Line) []Line {
	if len(lines) == 0 {
		return nil
	}
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}
