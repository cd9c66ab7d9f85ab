package cart

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	original := New(
		Line{ID: "serum", Name: "Glow Serum", UnitPrice: decimal.RequireFromString("10.00"), Image: "/a.jpg", Quantity: 2},
		Line{ID: "toner", Name: "Rose Toner", UnitPrice: decimal.RequireFromString("5.5"), Image: "/b.jpg", Quantity: 1},
		Line{ID: "free", Name: "Sample", UnitPrice: decimal.Zero, Quantity: 4},
	)

	raw, err := EncodeSnapshot(original)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeSnapshot(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	want, got := original.Lines(), decoded.Lines()
	if len(want) != len(got) {
		t.Fatalf("expected %d lines, got %d", len(want), len(got))
	}
	for i := range want {
		if want[i].ID != got[i].ID || want[i].Quantity != got[i].Quantity ||
			!want[i].UnitPrice.Equal(got[i].UnitPrice) || want[i].Name != got[i].Name || want[i].Image != got[i].Image {
			t.Fatalf("line %d differs: want %+v got %+v", i, want[i], got[i])
		}
	}
	if !decoded.Total().Equal(original.Total()) {
		t.Fatalf("totals differ after round trip")
	}
}

func TestEncodeWritesPriceAsNumber(t *testing.T) {
	t.Parallel()

	raw, err := EncodeSnapshot(New(Line{ID: "a", Name: "A", UnitPrice: decimal.RequireFromString("10.50"), Image: "i", Quantity: 2}))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `[{"id":"a","name":"A","price":10.5,"image":"i","quantity":2}]`
	if raw != want {
		t.Fatalf("unexpected encoding\nwant %s\n got %s", want, raw)
	}

	empty, _ := EncodeSnapshot(Cart{})
	if empty != "[]" {
		t.Fatalf("empty cart should encode as [], got %s", empty)
	}
}

func TestDecodeAcceptsStoredFormats(t *testing.T) {
	t.Parallel()

	c, err := DecodeSnapshot(`[{"id":"a","name":"A","price":"12.25","quantity":1,"extra":true}]`)
	if err != nil {
		t.Fatalf("string price should decode: %v", err)
	}
	if !c.Total().Equal(decimal.RequireFromString("12.25")) {
		t.Fatalf("unexpected total %s", c.Total())
	}

	padded, err := DecodeSnapshot(`[{"id":" a ","price":1,"quantity":2}]`)
	if err != nil {
		t.Fatalf("padded id should decode: %v", err)
	}
	if line, ok := padded.Find("a"); !ok || line.Quantity != 2 {
		t.Fatalf("padded id should be stored trimmed, got %+v", padded.Lines())
	}

	for _, raw := range []string{"", "  ", "null", "[]"} {
		c, err := DecodeSnapshot(raw)
		if err != nil || !c.IsEmpty() {
			t.Fatalf("DecodeSnapshot(%q) should be an empty cart, got %v %v", raw, c, err)
		}
	}
}

func TestDecodeRejectsInvalidSnapshots(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"syntax":             `[{"id":"a",`,
		"object":             `{"id":"a","price":1,"quantity":1}`,
		"missing id":         `[{"price":1,"quantity":1}]`,
		"blank id":           `[{"id":"  ","price":1,"quantity":1}]`,
		"missing price":      `[{"id":"a","quantity":1}]`,
		"negative price":     `[{"id":"a","price":-1,"quantity":1}]`,
		"zero quantity":      `[{"id":"a","price":1,"quantity":0}]`,
		"negative quantity":  `[{"id":"a","price":1,"quantity":-2}]`,
		"missing quantity":   `[{"id":"a","price":1}]`,
		"fractional qty":     `[{"id":"a","price":1,"quantity":1.5}]`,
		"duplicate ids":      `[{"id":"a","price":1,"quantity":1},{"id":"a","price":2,"quantity":1}]`,
		"padded duplicate":   `[{"id":"a","price":1,"quantity":1},{"id":" a ","price":2,"quantity":1}]`,
		"one bad among good": `[{"id":"a","price":1,"quantity":1},{"id":"b","price":1,"quantity":0}]`,
	}
	for name, raw := range cases {
		c, err := DecodeSnapshot(raw)
		if !errors.Is(err, ErrInvalidSnapshot) {
			t.Fatalf("%s: expected ErrInvalidSnapshot, got %v", name, err)
		}
		if !c.IsEmpty() {
			t.Fatalf("%s: rejected snapshot must not yield lines", name)
		}
	}
}
