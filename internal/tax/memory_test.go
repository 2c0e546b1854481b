package tax_test

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/odyssey-erp/fincore/internal/accounts"
	"github.com/odyssey-erp/fincore/internal/shared"
	"github.com/odyssey-erp/fincore/internal/tax"
)

type memoryState struct {
	configs  map[uuid.UUID]tax.Configuration
	payables map[uuid.UUID]tax.Payable
	payments map[uuid.UUID]tax.Payment
	keys     map[string]struct{}
}

func (s memoryState) clone() memoryState {
	out := memoryState{
		configs:  make(map[uuid.UUID]tax.Configuration, len(s.configs)),
		payables: make(map[uuid.UUID]tax.Payable, len(s.payables)),
		payments: make(map[uuid.UUID]tax.Payment, len(s.payments)),
		keys:     make(map[string]struct{}, len(s.keys)),
	}
	for k, v := range s.configs {
		out.configs[k] = v
	}
	for k, v := range s.payables {
		out.payables[k] = v
	}
	for k, v := range s.payments {
		out.payments[k] = v
	}
	for k := range s.keys {
		out.keys[k] = struct{}{}
	}
	return out
}

type memoryRepo struct {
	mu    sync.Mutex
	state memoryState
	// order breaks created_at ties between configurations.
	order map[uuid.UUID]int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		state: memoryState{
			configs:  map[uuid.UUID]tax.Configuration{},
			payables: map[uuid.UUID]tax.Payable{},
			payments: map[uuid.UUID]tax.Payment{},
			keys:     map[string]struct{}{},
		},
		order: map[uuid.UUID]int{},
	}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, tax.TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := r.state.clone()
	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.state = snapshot
		return err
	}
	return nil
}

func (r *memoryRepo) GetConfiguration(ctx context.Context, id uuid.UUID) (tax.Configuration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return (&memoryTx{repo: r}).GetConfiguration(ctx, id)
}

func (r *memoryRepo) ListActiveConfigurations(ctx context.Context, orgID uuid.UUID, code string) ([]tax.Configuration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return (&memoryTx{repo: r}).ListActiveConfigurations(ctx, orgID, code)
}

func (r *memoryRepo) GetPayable(ctx context.Context, id uuid.UUID) (tax.Payable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return (&memoryTx{repo: r}).GetPayable(ctx, id)
}

func (r *memoryRepo) ListPayables(ctx context.Context, orgID uuid.UUID, typ tax.Type) ([]tax.Payable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return (&memoryTx{repo: r}).ListPayables(ctx, orgID, typ)
}

func (r *memoryRepo) payment(id uuid.UUID) tax.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.payments[id]
}

// memoryIdem must only be called inside WithTx.
type memoryIdem struct {
	repo *memoryRepo
}

func (m memoryIdem) CheckAndInsert(_ context.Context, key, module string) error {
	k := module + "/" + key
	if _, ok := m.repo.state.keys[k]; ok {
		return shared.ErrIdempotencyConflict
	}
	m.repo.state.keys[k] = struct{}{}
	return nil
}

type memoryTx struct {
	repo *memoryRepo
}

func (t *memoryTx) GetConfiguration(_ context.Context, id uuid.UUID) (tax.Configuration, error) {
	cfg, ok := t.repo.state.configs[id]
	if !ok {
		return tax.Configuration{}, tax.ErrConfigurationNotFound
	}
	return cfg, nil
}

func (t *memoryTx) ListActiveConfigurations(_ context.Context, orgID uuid.UUID, code string) ([]tax.Configuration, error) {
	var out []tax.Configuration
	for _, cfg := range t.repo.state.configs {
		if cfg.OrganizationID == orgID && cfg.Code == code && cfg.IsActive {
			out = append(out, cfg)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return t.repo.order[out[i].ID] > t.repo.order[out[j].ID]
	})
	return out, nil
}

func (t *memoryTx) InsertConfiguration(_ context.Context, cfg tax.Configuration) error {
	for _, c := range t.repo.state.configs {
		if c.OrganizationID == cfg.OrganizationID && c.Code == cfg.Code && c.EffectiveFrom.Equal(cfg.EffectiveFrom) {
			return tax.ErrDuplicateConfig
		}
	}
	t.repo.state.configs[cfg.ID] = cfg
	t.repo.order[cfg.ID] = len(t.repo.order) + 1
	return nil
}

func (t *memoryTx) GetPayable(_ context.Context, id uuid.UUID) (tax.Payable, error) {
	p, ok := t.repo.state.payables[id]
	if !ok {
		return tax.Payable{}, tax.ErrPayableNotFound
	}
	return p, nil
}

func (t *memoryTx) GetPayableForUpdate(ctx context.Context, id uuid.UUID) (tax.Payable, error) {
	return t.GetPayable(ctx, id)
}

func (t *memoryTx) ListPayables(_ context.Context, orgID uuid.UUID, typ tax.Type) ([]tax.Payable, error) {
	var out []tax.Payable
	for _, p := range t.repo.state.payables {
		if p.OrganizationID == orgID && (typ == "" || p.Type == typ) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Period != out[j].Period {
			return out[i].Period < out[j].Period
		}
		return out[i].Type < out[j].Type
	})
	return out, nil
}

func (t *memoryTx) InsertPayable(_ context.Context, p tax.Payable) error {
	for _, existing := range t.repo.state.payables {
		if existing.OrganizationID == p.OrganizationID && existing.Type == p.Type && existing.Period == p.Period {
			return tax.ErrDuplicatePayable
		}
	}
	t.repo.state.payables[p.ID] = p
	return nil
}

func (t *memoryTx) UpdatePayablePayment(_ context.Context, p tax.Payable) error {
	existing, ok := t.repo.state.payables[p.ID]
	if !ok {
		return tax.ErrPayableNotFound
	}
	existing.PaidAmount = p.PaidAmount
	existing.PaidDate = p.PaidDate
	existing.Status = p.Status
	existing.UpdatedAt = p.UpdatedAt
	t.repo.state.payables[p.ID] = existing
	return nil
}

func (t *memoryTx) InsertPayment(_ context.Context, pay tax.Payment) error {
	t.repo.state.payments[pay.ID] = pay
	return nil
}

func (t *memoryTx) LinkPaymentJournal(_ context.Context, pay tax.Payment) error {
	stored := t.repo.state.payments[pay.ID]
	stored.JournalEntryID = pay.JournalEntryID
	t.repo.state.payments[pay.ID] = stored
	p := t.repo.state.payables[pay.PayableID]
	p.JournalEntryID = pay.JournalEntryID
	t.repo.state.payables[pay.PayableID] = p
	return nil
}

type fakeDirectory struct {
	byID      map[uuid.UUID]accounts.Account
	bySubtype map[string]accounts.Account
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{byID: map[uuid.UUID]accounts.Account{}, bySubtype: map[string]accounts.Account{}}
}

func (d *fakeDirectory) add(org uuid.UUID, typ accounts.Type, subtype string) accounts.Account {
	acc := accounts.Account{ID: uuid.New(), OrganizationID: org, Code: subtype, Name: subtype, Type: typ, Subtype: subtype, IsActive: true}
	d.byID[acc.ID] = acc
	if subtype != "" {
		d.bySubtype[string(typ)+"/"+subtype] = acc
	}
	return acc
}

func (d *fakeDirectory) Get(_ context.Context, id uuid.UUID) (accounts.Account, error) {
	acc, ok := d.byID[id]
	if !ok {
		return accounts.Account{}, accounts.ErrAccountNotFound
	}
	return acc, nil
}

func (d *fakeDirectory) FindBySubtype(_ context.Context, _ uuid.UUID, typ accounts.Type, subtype string) (accounts.Account, error) {
	acc, ok := d.bySubtype[string(typ)+"/"+subtype]
	if !ok {
		return accounts.Account{}, accounts.ErrAccountNotConfigured
	}
	return acc, nil
}
