package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrInvalidSnapshot is returned by DecodeSnapshot for any payload that is not
// a well-formed cart. The whole snapshot is rejected; no lines are salvaged.
var ErrInvalidSnapshot = errors.New("invalid cart snapshot")

var snapshotValidator = validator.New(validator.WithRequiredStructEnabled())

type encodedLine struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Image    string      `json:"image"`
	Quantity int         `json:"quantity"`
}

type decodedLine struct {
	ID       string           `json:"id" validate:"required"`
	Name     string           `json:"name"`
	Price    *decimal.Decimal `json:"price" validate:"required"`
	Image    string           `json:"image"`
	Quantity int              `json:"quantity" validate:"min=1"`
}

type decodedSnapshot struct {
	Lines []decodedLine `validate:"dive"`
}

// EncodeSnapshot serializes c as a JSON array of lines with prices as JSON
// numbers, preserving line order.
func EncodeSnapshot(c Cart) (string, error) {
	out := make([]encodedLine, 0, len(c.lines))
	for _, l := range c.lines {
		out = append(out, encodedLine{
			ID:       l.ID,
			Name:     l.Name,
			Price:    json.Number(l.UnitPrice.String()),
			Image:    l.Image,
			Quantity: l.Quantity,
		})
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode cart snapshot: %w", err)
	}
	return string(b), nil
}

// DecodeSnapshot parses and validates a stored snapshot. Syntax errors, a
// non-array payload, a blank id, a missing or negative price, a quantity
// below one and duplicate ids (compared after trimming whitespace) all yield
// ErrInvalidSnapshot. An empty or
// null payload decodes to an empty cart.
func DecodeSnapshot(raw string) (Cart, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return Cart{}, nil
	}

	var snap decodedSnapshot
	if err := json.Unmarshal([]byte(raw), &snap.Lines); err != nil {
		return Cart{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if err := snapshotValidator.Struct(snap); err != nil {
		return Cart{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	seen := make(map[string]struct{}, len(snap.Lines))
	lines := make([]Line, 0, len(snap.Lines))
	for i, l := range snap.Lines {
		id := strings.TrimSpace(l.ID)
		if id == "" {
			return Cart{}, fmt.Errorf("%w: line %d has blank id", ErrInvalidSnapshot, i)
		}
		if l.Price.IsNegative() {
			return Cart{}, fmt.Errorf("%w: line %d has negative price", ErrInvalidSnapshot, i)
		}
		if _, dup := seen[id]; dup {
			return Cart{}, fmt.Errorf("%w: duplicate id %q", ErrInvalidSnapshot, id)
		}
		seen[id] = struct{}{}
		lines = append(lines, Line{
			ID:        id,
			Name:      l.Name,
			UnitPrice: *l.Price,
			Image:     l.Image,
			Quantity:  l.Quantity,
		})
	}
	return Cart{lines: lines}, nil
}
