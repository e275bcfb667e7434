package validators

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/plantops/plantops-backend/pkg/errors"
)

// ParseQueryInt reads an optional integer query parameter. A missing or blank
// value yields def without a range check.
func ParseQueryInt(r *http.Request, key string, def, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fieldError(key, fmt.Sprintf("Field '%s' must be an integer", key), nil)
	}
	if value < min || value > max {
		return 0, fieldError(key, fmt.Sprintf("Field '%s' must be between %d and %d", key, min, max), map[string]any{"min": min, "max": max})
	}
	return value, nil
}

// ParseID parses a required positive identifier from a query, body or path value.
func ParseID(field, raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fieldError(field, fmt.Sprintf("Field '%s' is required", field), nil)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fieldError(field, fmt.Sprintf("Field '%s' must be a positive integer", field), nil)
	}
	return id, nil
}

func fieldError(field, message string, extra map[string]any) error {
	details := map[string]any{"field": field}
	for k, v := range extra {
		details[k] = v
	}
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(details)
}
