package validators

import (
	"strings"

	pkgerrors "github.com/angelmondragon/amglow-storefront/pkg/errors"
)

// maxIDLen caps product ids taken from paths and bodies.
const maxIDLen = 128

func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}

// RequireID trims an identifier and rejects blanks and oversized values.
func RequireID(field, raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, field+" is required")
	}
	if len(id) > maxIDLen {
		return "", pkgerrors.New(pkgerrors.CodeValidation, field+" is too long").WithDetails(map[string]any{"max": maxIDLen})
	}
	return id, nil
}
