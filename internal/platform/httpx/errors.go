// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/odyssey-erp/fincore/internal/shared"
)

// Problem types carried in the "kind" member.
const (
	KindNotFound   = "not_found"
	KindValidation = "validation"
	KindConflict   = "conflict"
	KindDependency = "dependency"
	KindInternal   = "internal"
)

// RespondError maps the error taxonomy to RFC7807 responses. Unclassified
// errors never leak their text.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", KindNotFound, err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", KindValidation, err.Error())
	case errors.Is(err, shared.ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", KindConflict, err.Error())
	case errors.Is(err, shared.ErrDependency):
		Problem(w, http.StatusFailedDependency, "Missing Configuration", KindDependency, err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", KindInternal, "")
	}
}
