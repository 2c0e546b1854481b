package assets

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/fincore/internal/accounts"
	"github.com/odyssey-erp/fincore/internal/ledger"
)

type memoryState struct {
	assets        map[uuid.UUID]Asset
	depreciations map[uuid.UUID]Depreciation
	disposals     map[uuid.UUID]Disposal
	revaluations  map[uuid.UUID]Revaluation
	journal       []ledger.PostingInput
}

func (s memoryState) clone() memoryState {
	out := memoryState{
		assets:        make(map[uuid.UUID]Asset, len(s.assets)),
		depreciations: make(map[uuid.UUID]Depreciation, len(s.depreciations)),
		disposals:     make(map[uuid.UUID]Disposal, len(s.disposals)),
		revaluations:  make(map[uuid.UUID]Revaluation, len(s.revaluations)),
		journal:       append([]ledger.PostingInput(nil), s.journal...),
	}
	for k, v := range s.assets {
		out.assets[k] = v
	}
	for k, v := range s.depreciations {
		out.depreciations[k] = v
	}
	for k, v := range s.disposals {
		out.disposals[k] = v
	}
	for k, v := range s.revaluations {
		out.revaluations[k] = v
	}
	return out
}

// memoryRepo keeps the register and the journal it generated in one store so
// a failed unit of work rolls both back.
type memoryRepo struct {
	mu    sync.Mutex
	state memoryState
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{state: memoryState{
		assets:        map[uuid.UUID]Asset{},
		depreciations: map[uuid.UUID]Depreciation{},
		disposals:     map[uuid.UUID]Disposal{},
		revaluations:  map[uuid.UUID]Revaluation{},
	}}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := r.state.clone()
	if err := fn(ctx, &memoryTx{state: &r.state}); err != nil {
		r.state = snapshot
		return err
	}
	return nil
}

func (r *memoryRepo) reader() *memoryTx {
	return &memoryTx{state: &r.state}
}

func (r *memoryRepo) GetAsset(ctx context.Context, id uuid.UUID) (Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reader().GetAsset(ctx, id)
}

func (r *memoryRepo) ListAssets(ctx context.Context, orgID uuid.UUID, status AssetStatus) ([]Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reader().ListAssets(ctx, orgID, status)
}

func (r *memoryRepo) SumDepreciation(ctx context.Context, assetID uuid.UUID, includePending bool) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reader().SumDepreciation(ctx, assetID, includePending)
}

func (r *memoryRepo) ListDepreciations(ctx context.Context, assetID uuid.UUID) ([]Depreciation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reader().ListDepreciations(ctx, assetID)
}

func (r *memoryRepo) GetDepreciation(ctx context.Context, id uuid.UUID) (Depreciation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reader().GetDepreciation(ctx, id)
}

func (r *memoryRepo) GetDisposal(ctx context.Context, id uuid.UUID) (Disposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reader().GetDisposal(ctx, id)
}

func (r *memoryRepo) GetRevaluation(ctx context.Context, id uuid.UUID) (Revaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reader().GetRevaluation(ctx, id)
}

func (r *memoryRepo) journal() []ledger.PostingInput {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ledger.PostingInput(nil), r.state.journal...)
}

type memoryTx struct {
	state *memoryState
}

func (t *memoryTx) GetAsset(ctx context.Context, id uuid.UUID) (Asset, error) {
	a, ok := t.state.assets[id]
	if !ok {
		return Asset{}, ErrAssetNotFound
	}
	return a, nil
}

func (t *memoryTx) GetAssetForUpdate(ctx context.Context, id uuid.UUID) (Asset, error) {
	return t.GetAsset(ctx, id)
}

func (t *memoryTx) ListAssets(ctx context.Context, orgID uuid.UUID, status AssetStatus) ([]Asset, error) {
	var out []Asset
	for _, a := range t.state.assets {
		if a.OrganizationID == orgID && (status == "" || a.Status == status) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (t *memoryTx) InsertAsset(ctx context.Context, a Asset) error {
	for _, existing := range t.state.assets {
		if existing.OrganizationID == a.OrganizationID && existing.Code == a.Code {
			return ErrDuplicateCode
		}
	}
	t.state.assets[a.ID] = a
	return nil
}

func (t *memoryTx) UpdateAssetValues(ctx context.Context, a Asset) error {
	if _, ok := t.state.assets[a.ID]; !ok {
		return ErrAssetNotFound
	}
	t.state.assets[a.ID] = a
	return nil
}

func (t *memoryTx) SumDepreciation(ctx context.Context, assetID uuid.UUID, includePending bool) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, d := range t.state.depreciations {
		if d.AssetID == assetID && (includePending || d.Status == DepreciationPosted) {
			total = total.Add(d.Amount)
		}
	}
	return total, nil
}

func (t *memoryTx) ListDepreciations(ctx context.Context, assetID uuid.UUID) ([]Depreciation, error) {
	var out []Depreciation
	for _, d := range t.state.depreciations {
		if d.AssetID == assetID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}

func (t *memoryTx) GetDepreciation(ctx context.Context, id uuid.UUID) (Depreciation, error) {
	d, ok := t.state.depreciations[id]
	if !ok {
		return Depreciation{}, ErrDepreciationNotFound
	}
	return d, nil
}

func (t *memoryTx) GetDepreciationForUpdate(ctx context.Context, id uuid.UUID) (Depreciation, error) {
	return t.GetDepreciation(ctx, id)
}

func (t *memoryTx) FindDepreciation(ctx context.Context, assetID uuid.UUID, period string) (Depreciation, bool, error) {
	for _, d := range t.state.depreciations {
		if d.AssetID == assetID && d.Period == period {
			return d, true, nil
		}
	}
	return Depreciation{}, false, nil
}

func (t *memoryTx) InsertDepreciation(ctx context.Context, d Depreciation) error {
	if _, found, _ := t.FindDepreciation(ctx, d.AssetID, d.Period); found {
		return ErrDuplicateDepreciation
	}
	t.state.depreciations[d.ID] = d
	return nil
}

func (t *memoryTx) MarkDepreciationPosted(ctx context.Context, id, journalID uuid.UUID, at time.Time) (bool, error) {
	d, ok := t.state.depreciations[id]
	if !ok || d.Status != DepreciationPending {
		return false, nil
	}
	d.Status = DepreciationPosted
	d.JournalEntryID = journalID
	d.PostedAt = &at
	t.state.depreciations[id] = d
	return true, nil
}

func (t *memoryTx) GetDisposal(ctx context.Context, id uuid.UUID) (Disposal, error) {
	d, ok := t.state.disposals[id]
	if !ok {
		return Disposal{}, ErrDisposalNotFound
	}
	return d, nil
}

func (t *memoryTx) GetDisposalForUpdate(ctx context.Context, id uuid.UUID) (Disposal, error) {
	return t.GetDisposal(ctx, id)
}

func (t *memoryTx) InsertDisposal(ctx context.Context, d Disposal) error {
	t.state.disposals[d.ID] = d
	return nil
}

func (t *memoryTx) ApproveDisposal(ctx context.Context, id uuid.UUID) (bool, error) {
	d, ok := t.state.disposals[id]
	if !ok || d.Status != DocumentDraft {
		return false, nil
	}
	d.Status = DocumentApproved
	t.state.disposals[id] = d
	return true, nil
}

func (t *memoryTx) MarkDisposalPosted(ctx context.Context, d Disposal) (bool, error) {
	current, ok := t.state.disposals[d.ID]
	if !ok || current.Status == DocumentPosted {
		return false, nil
	}
	t.state.disposals[d.ID] = d
	return true, nil
}

func (t *memoryTx) GetRevaluation(ctx context.Context, id uuid.UUID) (Revaluation, error) {
	rv, ok := t.state.revaluations[id]
	if !ok {
		return Revaluation{}, ErrRevaluationNotFound
	}
	return rv, nil
}

func (t *memoryTx) GetRevaluationForUpdate(ctx context.Context, id uuid.UUID) (Revaluation, error) {
	return t.GetRevaluation(ctx, id)
}

func (t *memoryTx) InsertRevaluation(ctx context.Context, rv Revaluation) error {
	t.state.revaluations[rv.ID] = rv
	return nil
}

func (t *memoryTx) MarkRevaluationPosted(ctx context.Context, rv Revaluation) (bool, error) {
	current, ok := t.state.revaluations[rv.ID]
	if !ok || current.Status == DocumentPosted {
		return false, nil
	}
	t.state.revaluations[rv.ID] = rv
	return true, nil
}

// journalLedger validates postings like the ledger does and appends them to
// the repository journal. It must only be called inside WithTx.
type journalLedger struct {
	repo *memoryRepo
	fail error
}

func (l *journalLedger) Record(ctx context.Context, in ledger.PostingInput) (ledger.JournalEntry, error) {
	if l.fail != nil {
		return ledger.JournalEntry{}, l.fail
	}
	if err := in.Validate(); err != nil {
		return ledger.JournalEntry{}, err
	}
	l.repo.state.journal = append(l.repo.state.journal, in)
	return ledger.JournalEntry{
		ID:     uuid.New(),
		Number: fmt.Sprintf("JE-%s-%06d", in.Date.Format("200601"), len(l.repo.state.journal)),
		Status: ledger.StatusPosted,
	}, nil
}

type fakeDirectory struct {
	byID      map[uuid.UUID]accounts.Account
	bySubtype map[string]accounts.Account
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{byID: map[uuid.UUID]accounts.Account{}, bySubtype: map[string]accounts.Account{}}
}

func (d *fakeDirectory) add(org uuid.UUID, typ accounts.Type, subtype string) accounts.Account {
	acc := accounts.Account{
		ID:             uuid.New(),
		OrganizationID: org,
		Code:           subtype,
		Name:           subtype,
		Type:           typ,
		Subtype:        subtype,
		IsActive:       true,
	}
	d.byID[acc.ID] = acc
	if subtype != "" {
		d.bySubtype[string(typ)+"/"+subtype] = acc
	}
	return acc
}

func (d *fakeDirectory) Get(ctx context.Context, id uuid.UUID) (accounts.Account, error) {
	acc, ok := d.byID[id]
	if !ok {
		return accounts.Account{}, accounts.ErrAccountNotFound
	}
	return acc, nil
}

func (d *fakeDirectory) FindBySubtype(ctx context.Context, orgID uuid.UUID, typ accounts.Type, subtype string) (accounts.Account, error) {
	acc, ok := d.bySubtype[string(typ)+"/"+subtype]
	if !ok || acc.OrganizationID != orgID {
		return accounts.Account{}, accounts.ErrAccountNotConfigured
	}
	return acc, nil
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// lineTotals sums the debit and credit side of a posting.
func lineTotals(in ledger.PostingInput) (decimal.Decimal, decimal.Decimal) {
	debit, credit := decimal.Zero, decimal.Zero
	for _, l := range in.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}
