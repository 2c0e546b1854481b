package shared

import "errors"

// Error taxonomy shared by every domain package. Package errors wrap one of
// these so callers classify failures with errors.Is.
var (
	// ErrNotFound indicates a missing asset, account, reconciliation or tax configuration.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates a rejected input: missing field, out-of-range rate, unbalanced lines.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates a duplicate or an invalid status transition.
	ErrConflict = errors.New("conflict")
	// ErrDependency indicates a required lookup account is not configured.
	ErrDependency = errors.New("dependency missing")
)

// Classified reports whether err wraps one of the taxonomy sentinels.
func Classified(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrConflict) || errors.Is(err, ErrDependency)
}

// PublicReason returns the text of a classified error and fallback for
// anything else, so driver errors stay out of responses.
func PublicReason(err error, fallback string) string {
	if err != nil && Classified(err) {
		return err.Error()
	}
	return fallback
}
