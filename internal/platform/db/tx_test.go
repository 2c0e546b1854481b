package db

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

type stubTx struct{ pgx.Tx }

type tagKey struct{}

func TestDetachDropsTransactionAndCancellation(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), time.Minute)
	parent = context.WithValue(parent, tagKey{}, "kept")
	ctx := context.WithValue(parent, txKey{}, pgx.Tx(stubTx{}))
	require.True(t, InTx(ctx))

	detached := Detach(ctx)
	cancel()

	require.False(t, InTx(detached))
	require.NoError(t, detached.Err())
	_, hasDeadline := detached.Deadline()
	require.False(t, hasDeadline)
	require.Equal(t, "kept", detached.Value(tagKey{}))
	require.Error(t, ctx.Err())
}
