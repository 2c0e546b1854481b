package banking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/fincore/internal/shared"
)

type memoryState struct {
	accounts        map[uuid.UUID]BankAccount
	transactions    map[uuid.UUID]Transaction
	cheques         map[uuid.UUID]Cheque
	reconciliations map[uuid.UUID]Reconciliation
	keys            map[string]struct{}
}

func (s memoryState) clone() memoryState {
	out := memoryState{
		accounts:        make(map[uuid.UUID]BankAccount, len(s.accounts)),
		transactions:    make(map[uuid.UUID]Transaction, len(s.transactions)),
		cheques:         make(map[uuid.UUID]Cheque, len(s.cheques)),
		reconciliations: make(map[uuid.UUID]Reconciliation, len(s.reconciliations)),
		keys:            make(map[string]struct{}, len(s.keys)),
	}
	for k, v := range s.accounts {
		out.accounts[k] = v
	}
	for k, v := range s.transactions {
		out.transactions[k] = v
	}
	for k, v := range s.cheques {
		out.cheques[k] = v
	}
	for k, v := range s.reconciliations {
		out.reconciliations[k] = v
	}
	for k := range s.keys {
		out.keys[k] = struct{}{}
	}
	return out
}

type memoryRepo struct {
	mu    sync.Mutex
	state memoryState
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{state: memoryState{
		accounts:        map[uuid.UUID]BankAccount{},
		transactions:    map[uuid.UUID]Transaction{},
		cheques:         map[uuid.UUID]Cheque{},
		reconciliations: map[uuid.UUID]Reconciliation{},
		keys:            map[string]struct{}{},
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

func (r *memoryRepo) locked() (*memoryTx, func()) {
	r.mu.Lock()
	return &memoryTx{state: &r.state}, r.mu.Unlock
}

func (r *memoryRepo) GetAccount(ctx context.Context, id uuid.UUID) (BankAccount, error) {
	tx, unlock := r.locked()
	defer unlock()
	return tx.GetAccount(ctx, id)
}

func (r *memoryRepo) GetTransaction(ctx context.Context, id uuid.UUID) (Transaction, error) {
	tx, unlock := r.locked()
	defer unlock()
	return tx.GetTransaction(ctx, id)
}

func (r *memoryRepo) ListTransactions(ctx context.Context, accountID uuid.UUID) ([]Transaction, error) {
	tx, unlock := r.locked()
	defer unlock()
	return tx.ListTransactions(ctx, accountID)
}

func (r *memoryRepo) ListUnmatched(ctx context.Context, accountID uuid.UUID, asOf time.Time) ([]Transaction, error) {
	tx, unlock := r.locked()
	defer unlock()
	return tx.ListUnmatched(ctx, accountID, asOf)
}

func (r *memoryRepo) GetCheque(ctx context.Context, id uuid.UUID) (Cheque, error) {
	tx, unlock := r.locked()
	defer unlock()
	return tx.GetCheque(ctx, id)
}

func (r *memoryRepo) GetReconciliation(ctx context.Context, id uuid.UUID) (Reconciliation, error) {
	tx, unlock := r.locked()
	defer unlock()
	return tx.GetReconciliation(ctx, id)
}

// memoryIdem writes keys into the repo state. It is only called inside
// WithTx, which already holds the lock, so a rollback drops the key too.
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
	state *memoryState
}

func (t *memoryTx) GetAccount(_ context.Context, id uuid.UUID) (BankAccount, error) {
	acc, ok := t.state.accounts[id]
	if !ok {
		return BankAccount{}, ErrBankAccountNotFound
	}
	return acc, nil
}

func (t *memoryTx) GetAccountForUpdate(ctx context.Context, id uuid.UUID) (BankAccount, error) {
	return t.GetAccount(ctx, id)
}

func (t *memoryTx) InsertAccount(_ context.Context, acc BankAccount) error {
	for _, a := range t.state.accounts {
		if a.OrganizationID == acc.OrganizationID && a.AccountNumber == acc.AccountNumber {
			return ErrDuplicateAccountNumber
		}
	}
	t.state.accounts[acc.ID] = acc
	return nil
}

func (t *memoryTx) AdjustBalance(_ context.Context, id uuid.UUID, delta decimal.Decimal, at time.Time) (decimal.Decimal, error) {
	acc, ok := t.state.accounts[id]
	if !ok {
		return decimal.Decimal{}, ErrBankAccountNotFound
	}
	acc.CurrentBalance = acc.CurrentBalance.Add(delta)
	acc.UpdatedAt = at
	t.state.accounts[id] = acc
	return acc.CurrentBalance, nil
}

func (t *memoryTx) GetTransaction(_ context.Context, id uuid.UUID) (Transaction, error) {
	txn, ok := t.state.transactions[id]
	if !ok {
		return Transaction{}, ErrTransactionNotFound
	}
	return txn, nil
}

func (t *memoryTx) GetTransactionForUpdate(ctx context.Context, id uuid.UUID) (Transaction, error) {
	return t.GetTransaction(ctx, id)
}

func (t *memoryTx) ListTransactions(_ context.Context, accountID uuid.UUID) ([]Transaction, error) {
	return t.filter(func(txn Transaction) bool { return txn.BankAccountID == accountID }), nil
}

func (t *memoryTx) ListUnmatched(_ context.Context, accountID uuid.UUID, asOf time.Time) ([]Transaction, error) {
	return t.filter(func(txn Transaction) bool {
		return txn.BankAccountID == accountID && !txn.IsReconciled && !txn.Date.After(asOf)
	}), nil
}

func (t *memoryTx) filter(keep func(Transaction) bool) []Transaction {
	var out []Transaction
	for _, txn := range t.state.transactions {
		if keep(txn) {
			out = append(out, txn)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (t *memoryTx) InsertTransaction(_ context.Context, txn Transaction) error {
	t.state.transactions[txn.ID] = txn
	return nil
}

func (t *memoryTx) DeleteTransaction(_ context.Context, id uuid.UUID) error {
	if _, ok := t.state.transactions[id]; !ok {
		return ErrTransactionNotFound
	}
	delete(t.state.transactions, id)
	return nil
}

func (t *memoryTx) MarkReconciled(_ context.Context, txID, reconciliationID uuid.UUID) (bool, error) {
	txn, ok := t.state.transactions[txID]
	if !ok || txn.IsReconciled {
		return false, nil
	}
	txn.IsReconciled = true
	txn.ReconciliationID = reconciliationID
	t.state.transactions[txID] = txn
	return true, nil
}

func (t *memoryTx) UnlinkReconciliation(_ context.Context, reconciliationID uuid.UUID) (int64, error) {
	var n int64
	for id, txn := range t.state.transactions {
		if txn.ReconciliationID == reconciliationID {
			txn.IsReconciled = false
			txn.ReconciliationID = uuid.Nil
			t.state.transactions[id] = txn
			n++
		}
	}
	return n, nil
}

func (t *memoryTx) GetCheque(_ context.Context, id uuid.UUID) (Cheque, error) {
	c, ok := t.state.cheques[id]
	if !ok {
		return Cheque{}, ErrChequeNotFound
	}
	return c, nil
}

func (t *memoryTx) GetChequeForUpdate(ctx context.Context, id uuid.UUID) (Cheque, error) {
	return t.GetCheque(ctx, id)
}

func (t *memoryTx) InsertCheque(_ context.Context, c Cheque) error {
	for _, existing := range t.state.cheques {
		if existing.BankAccountID == c.BankAccountID && existing.Number == c.Number {
			return ErrDuplicateChequeNumber
		}
	}
	t.state.cheques[c.ID] = c
	return nil
}

func (t *memoryTx) TransitionCheque(_ context.Context, id uuid.UUID, from, to ChequeStatus, clearedDate *time.Time) (bool, error) {
	c, ok := t.state.cheques[id]
	if !ok || c.Status != from {
		return false, nil
	}
	c.Status = to
	if clearedDate != nil {
		c.ClearedDate = clearedDate
	}
	t.state.cheques[id] = c
	return true, nil
}

func (t *memoryTx) DeleteCheque(_ context.Context, id uuid.UUID) error {
	if _, ok := t.state.cheques[id]; !ok {
		return ErrChequeNotFound
	}
	delete(t.state.cheques, id)
	return nil
}

func (t *memoryTx) GetReconciliation(_ context.Context, id uuid.UUID) (Reconciliation, error) {
	rec, ok := t.state.reconciliations[id]
	if !ok {
		return Reconciliation{}, ErrReconciliationNotFound
	}
	return rec, nil
}

func (t *memoryTx) GetReconciliationForUpdate(ctx context.Context, id uuid.UUID) (Reconciliation, error) {
	return t.GetReconciliation(ctx, id)
}

func (t *memoryTx) InsertReconciliation(_ context.Context, rec Reconciliation) error {
	t.state.reconciliations[rec.ID] = rec
	return nil
}

func (t *memoryTx) SetReconciliationStatus(_ context.Context, id uuid.UUID, from, to ReconciliationStatus) (bool, error) {
	rec, ok := t.state.reconciliations[id]
	if !ok || rec.Status != from {
		return false, nil
	}
	rec.Status = to
	t.state.reconciliations[id] = rec
	return true, nil
}

func (t *memoryTx) CompleteReconciliation(_ context.Context, id uuid.UUID, notes string, at time.Time) (bool, error) {
	rec, ok := t.state.reconciliations[id]
	if !ok || rec.Status == ReconciliationCompleted {
		return false, nil
	}
	rec.Status = ReconciliationCompleted
	rec.Notes = notes
	rec.CompletedAt = &at
	t.state.reconciliations[id] = rec
	return true, nil
}

func (t *memoryTx) DeleteReconciliation(_ context.Context, id uuid.UUID) error {
	if _, ok := t.state.reconciliations[id]; !ok {
		return ErrReconciliationNotFound
	}
	delete(t.state.reconciliations, id)
	return nil
}
