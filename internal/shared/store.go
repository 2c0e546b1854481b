package shared

import (
	"fmt"

	"github.com/odyssey-erp/fincore/internal/platform/db"
)

// MapStoreError translates storage failures into the error taxonomy.
// Unique violations become conflicts naming the constraint; aborted
// transactions become conflicts the caller retries as a whole.
func MapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsTxAborted(err):
		return fmt.Errorf("%w: concurrent update, retry the operation: %v", ErrConflict, err)
	case db.IsUniqueViolation(err, ""):
		return fmt.Errorf("%w: duplicate record: %v", ErrConflict, err)
	}
	return err
}
