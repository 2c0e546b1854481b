package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublicReason(t *testing.T) {
	dep := fmt.Errorf("%w: tax_payable account", ErrDependency)
	require.Equal(t, dep.Error(), PublicReason(dep, "failed"))
	require.Equal(t, "failed", PublicReason(errors.New("conn reset by peer"), "failed"))
	require.Equal(t, "failed", PublicReason(nil, "failed"))
}
