package shared

import (
	"fmt"

	"github.com/google/uuid"
)

// ParseID parses an identifier crossing the boundary.
func ParseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: %s must be a uuid", ErrValidation, field)
	}
	return id, nil
}

// ParseOptionalID returns uuid.Nil for an empty string.
func ParseOptionalID(field, raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, nil
	}
	return ParseID(field, raw)
}

// FormatOptionalID renders uuid.Nil as an empty string.
func FormatOptionalID(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}
