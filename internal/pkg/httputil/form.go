package httputil

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/render"
	"github.com/hustlehub/marketplace/internal/domain"
)

// FormFloat parses an optional decimal form field. Missing or empty values are 0;
// NaN and infinities are rejected.
func FormFloat(r *http.Request, key string) (float64, error) {
	raw := strings.TrimSpace(r.PostFormValue(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s must be a number", domain.ErrValidation, key)
	}
	return v, nil
}

// FormBool reports whether a form field holds the literal "true".
func FormBool(r *http.Request, key string) bool {
	return r.PostFormValue(key) == "true"
}

// DecodeJSON decodes a JSON request body into v. Malformed bodies are
// reported as validation errors.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrValidation)
	}
	return nil
}
