package enums

import (
	"fmt"
	"strings"
)

// PaymentMethod is the settlement option chosen on the checkout form.
type PaymentMethod string

const (
	PaymentMethodCredit PaymentMethod = "credit"
	PaymentMethodPayPal PaymentMethod = "paypal"
	PaymentMethodCOD    PaymentMethod = "cod"
)

// DefaultPaymentMethod is preselected on a fresh checkout form.
const DefaultPaymentMethod = PaymentMethodCredit

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCredit,
	PaymentMethodPayPal,
	PaymentMethodCOD,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw input into a PaymentMethod. Matching ignores
// case and surrounding whitespace.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validPaymentMethods {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
