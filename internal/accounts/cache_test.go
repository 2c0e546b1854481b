package accounts

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type countingDirectory struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]Account
	calls    int
}

func (d *countingDirectory) Get(ctx context.Context, id uuid.UUID) (Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	acc, ok := d.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return acc, nil
}

func (d *countingDirectory) FindBySubtype(ctx context.Context, orgID uuid.UUID, typ Type, subtype string) (Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	for _, acc := range d.accounts {
		if acc.OrganizationID == orgID && acc.Type == typ && acc.Subtype == subtype && acc.IsActive {
			return acc, nil
		}
	}
	return Account{}, ErrAccountNotConfigured
}

func (d *countingDirectory) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func newCachedDirectory(t *testing.T, next Directory) (*CachedDirectory, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCachedDirectory(next, client, time.Minute, nil), mr
}

func TestCachedDirectoryServesRepeatLookupsFromRedis(t *testing.T) {
	org := uuid.New()
	expense := Account{ID: uuid.New(), OrganizationID: org, Code: "6100", Name: "Depreciation", Type: TypeExpense, Subtype: SubtypeDepreciationExpense, IsActive: true}
	next := &countingDirectory{accounts: map[uuid.UUID]Account{expense.ID: expense}}
	dir, mr := newCachedDirectory(t, next)

	ctx := context.Background()
	first, err := dir.FindBySubtype(ctx, org, TypeExpense, SubtypeDepreciationExpense)
	require.NoError(t, err)
	second, err := dir.FindBySubtype(ctx, org, TypeExpense, SubtypeDepreciationExpense)
	require.NoError(t, err)

	require.Equal(t, expense, first)
	require.Equal(t, first, second)
	require.Equal(t, 1, next.callCount())
	require.True(t, mr.Exists(cacheKey("subtype", org.String(), string(TypeExpense), SubtypeDepreciationExpense)))

	mr.FastForward(2 * time.Minute)
	_, err = dir.FindBySubtype(ctx, org, TypeExpense, SubtypeDepreciationExpense)
	require.NoError(t, err)
	require.Equal(t, 2, next.callCount())
}

func TestCachedDirectoryDoesNotCacheMisses(t *testing.T) {
	next := &countingDirectory{accounts: map[uuid.UUID]Account{}}
	dir, _ := newCachedDirectory(t, next)

	ctx := context.Background()
	_, err := dir.Get(ctx, uuid.New())
	require.ErrorIs(t, err, ErrAccountNotFound)
	_, err = dir.FindBySubtype(ctx, uuid.New(), TypeEquity, SubtypeRevaluationReserve)
	require.ErrorIs(t, err, ErrAccountNotConfigured)

	id := uuid.New()
	_, err = dir.Get(ctx, id)
	require.Error(t, err)
	next.accounts[id] = Account{ID: id, Type: TypeAsset, IsActive: true}
	acc, err := dir.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, id, acc.ID)
}

func TestCachedDirectoryFallsBackWhenRedisIsDown(t *testing.T) {
	id := uuid.New()
	next := &countingDirectory{accounts: map[uuid.UUID]Account{id: {ID: id, Type: TypeAsset, IsActive: true}}}
	dir, mr := newCachedDirectory(t, next)
	mr.Close()

	acc, err := dir.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, id, acc.ID)
}

func TestOptionalAndRequiredLookups(t *testing.T) {
	org := uuid.New()
	gain := Account{ID: uuid.New(), OrganizationID: org, Type: TypeRevenue, Subtype: SubtypeGainOnDisposal, IsActive: true}
	dir := &countingDirectory{accounts: map[uuid.UUID]Account{gain.ID: gain}}
	ctx := context.Background()

	acc, ok, err := Optional(ctx, dir, org, TypeRevenue, SubtypeGainOnDisposal)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, gain.ID, acc.ID)

	_, ok, err = Optional(ctx, dir, org, TypeExpense, SubtypeLossOnDisposal)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = Required(ctx, dir, org, TypeEquity, SubtypeRevaluationReserve)
	require.ErrorIs(t, err, ErrAccountNotConfigured)
}

type gatedDirectory struct {
	acc     Account
	started chan struct{}
	release chan struct{}
	once    sync.Once

	mu      sync.Mutex
	loadErr []error
}

func (d *gatedDirectory) Get(ctx context.Context, id uuid.UUID) (Account, error) {
	d.once.Do(func() { close(d.started) })
	<-d.release
	d.mu.Lock()
	d.loadErr = append(d.loadErr, ctx.Err())
	d.mu.Unlock()
	return d.acc, nil
}

func (d *gatedDirectory) FindBySubtype(ctx context.Context, orgID uuid.UUID, typ Type, subtype string) (Account, error) {
	return Account{}, ErrAccountNotConfigured
}

func TestCachedDirectoryLoadOutlivesCancelledCaller(t *testing.T) {
	acc := Account{ID: uuid.New(), OrganizationID: uuid.New(), Code: "1010", Type: TypeAsset, IsActive: true}
	next := &gatedDirectory{acc: acc, started: make(chan struct{}), release: make(chan struct{})}
	cached, mr := newCachedDirectory(t, next)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := cached.Get(firstCtx, acc.ID)
		firstErr <- err
	}()
	<-next.started

	type result struct {
		acc Account
		err error
	}
	second := make(chan result, 1)
	go func() {
		got, err := cached.Get(context.Background(), acc.ID)
		second <- result{got, err}
	}()

	cancel()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	close(next.release)
	res := <-second
	require.NoError(t, res.err)
	require.Equal(t, acc.ID, res.acc.ID)

	next.mu.Lock()
	defer next.mu.Unlock()
	require.NotEmpty(t, next.loadErr)
	for _, err := range next.loadErr {
		require.NoError(t, err)
	}
	require.True(t, mr.Exists(cacheKey("id", acc.ID.String())))
}
