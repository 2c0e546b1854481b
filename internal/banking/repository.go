package banking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/fincore/internal/platform/db"
	"github.com/odyssey-erp/fincore/internal/shared"
)

// Repository persists bank data on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
	tx   *db.Transactor
}

// NewRepository constructs the repository.
func NewRepository(pool *pgxpool.Pool, tx *db.Transactor) *Repository {
	return &Repository{pool: pool, tx: tx}
}

// WithTx runs fn inside a unit of work.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	err := r.tx.WithTx(ctx, func(ctx context.Context) error {
		return fn(ctx, r)
	})
	return shared.MapStoreError(err)
}

const accountColumns = `id, organization_id, name, account_number, bank_name, currency, opening_balance,
current_balance, ledger_account_id, is_active, created_at, updated_at`

// GetAccount loads a bank account.
func (r *Repository) GetAccount(ctx context.Context, id uuid.UUID) (BankAccount, error) {
	return r.getAccount(ctx, `SELECT `+accountColumns+` FROM bank_accounts WHERE id=$1`, id)
}

// GetAccountForUpdate loads a bank account and locks it. Every balance
// mutation goes through this lock.
func (r *Repository) GetAccountForUpdate(ctx context.Context, id uuid.UUID) (BankAccount, error) {
	return r.getAccount(ctx, `SELECT `+accountColumns+` FROM bank_accounts WHERE id=$1 FOR UPDATE`, id)
}

func (r *Repository) getAccount(ctx context.Context, query string, id uuid.UUID) (BankAccount, error) {
	var (
		acc    BankAccount
		ledger *uuid.UUID
	)
	err := db.Conn(ctx, r.pool).QueryRow(ctx, query, id).Scan(&acc.ID, &acc.OrganizationID, &acc.Name,
		&acc.AccountNumber, &acc.BankName, &acc.Currency, &acc.OpeningBalance, &acc.CurrentBalance, &ledger,
		&acc.IsActive, &acc.CreatedAt, &acc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return BankAccount{}, ErrBankAccountNotFound
	}
	if err != nil {
		return BankAccount{}, err
	}
	if ledger != nil {
		acc.LedgerAccountID = *ledger
	}
	return acc, nil
}

// InsertAccount writes a new bank account.
func (r *Repository) InsertAccount(ctx context.Context, a BankAccount) error {
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `INSERT INTO bank_accounts (`+accountColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		a.ID, a.OrganizationID, a.Name, a.AccountNumber, a.BankName, a.Currency, a.OpeningBalance,
		a.CurrentBalance, nullUUID(a.LedgerAccountID), a.IsActive, a.CreatedAt, a.UpdatedAt)
	if db.IsUniqueViolation(err, "bank_accounts_org_number_key") {
		return ErrDuplicateAccountNumber
	}
	return err
}

// AdjustBalance adds delta to the current balance and returns the result.
func (r *Repository) AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal, at time.Time) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `UPDATE bank_accounts
SET current_balance = current_balance + $2, updated_at=$3 WHERE id=$1 RETURNING current_balance`,
		id, delta, at).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Decimal{}, ErrBankAccountNotFound
	}
	return balance, err
}

const transactionColumns = `id, organization_id, bank_account_id, transaction_date, transaction_type, amount,
description, reference, is_reconciled, reconciliation_id, created_at`

// GetTransaction loads a bank transaction.
func (r *Repository) GetTransaction(ctx context.Context, id uuid.UUID) (Transaction, error) {
	return r.getTransaction(ctx, `SELECT `+transactionColumns+` FROM bank_transactions WHERE id=$1`, id)
}

// GetTransactionForUpdate loads a bank transaction and locks it.
func (r *Repository) GetTransactionForUpdate(ctx context.Context, id uuid.UUID) (Transaction, error) {
	return r.getTransaction(ctx, `SELECT `+transactionColumns+` FROM bank_transactions WHERE id=$1 FOR UPDATE`, id)
}

func (r *Repository) getTransaction(ctx context.Context, query string, id uuid.UUID) (Transaction, error) {
	t, err := scanTransaction(db.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrTransactionNotFound
	}
	return t, err
}

// ListTransactions lists the movements of an account by date.
func (r *Repository) ListTransactions(ctx context.Context, accountID uuid.UUID) ([]Transaction, error) {
	return r.listTransactions(ctx, `SELECT `+transactionColumns+` FROM bank_transactions
WHERE bank_account_id=$1 ORDER BY transaction_date, created_at`, accountID)
}

// ListUnmatched lists unreconciled movements dated on or before asOf.
func (r *Repository) ListUnmatched(ctx context.Context, accountID uuid.UUID, asOf time.Time) ([]Transaction, error) {
	return r.listTransactions(ctx, `SELECT `+transactionColumns+` FROM bank_transactions
WHERE bank_account_id=$1 AND is_reconciled = FALSE AND transaction_date <= $2
ORDER BY transaction_date, created_at`, accountID, asOf)
}

func (r *Repository) listTransactions(ctx context.Context, query string, args ...any) ([]Transaction, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// InsertTransaction writes a movement.
func (r *Repository) InsertTransaction(ctx context.Context, t Transaction) error {
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `INSERT INTO bank_transactions (`+transactionColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		t.ID, t.OrganizationID, t.BankAccountID, t.Date, string(t.Type), t.Amount, t.Description, t.Reference,
		t.IsReconciled, nullUUID(t.ReconciliationID), t.CreatedAt)
	return err
}

// DeleteTransaction removes a movement.
func (r *Repository) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM bank_transactions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// MarkReconciled links an unreconciled movement to a reconciliation.
func (r *Repository) MarkReconciled(ctx context.Context, txID, reconciliationID uuid.UUID) (bool, error) {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `UPDATE bank_transactions
SET is_reconciled = TRUE, reconciliation_id=$2 WHERE id=$1 AND is_reconciled = FALSE`, txID, reconciliationID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// UnlinkReconciliation resets every movement referencing a reconciliation.
func (r *Repository) UnlinkReconciliation(ctx context.Context, reconciliationID uuid.UUID) (int64, error) {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `UPDATE bank_transactions
SET is_reconciled = FALSE, reconciliation_id = NULL WHERE reconciliation_id=$1`, reconciliationID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const chequeColumns = `id, organization_id, bank_account_id, cheque_number, cheque_type, amount, payee, issue_date,
status, cleared_date, created_at`

// GetCheque loads a cheque.
func (r *Repository) GetCheque(ctx context.Context, id uuid.UUID) (Cheque, error) {
	return r.getCheque(ctx, `SELECT `+chequeColumns+` FROM cheques WHERE id=$1`, id)
}

// GetChequeForUpdate loads a cheque and locks it.
func (r *Repository) GetChequeForUpdate(ctx context.Context, id uuid.UUID) (Cheque, error) {
	return r.getCheque(ctx, `SELECT `+chequeColumns+` FROM cheques WHERE id=$1 FOR UPDATE`, id)
}

func (r *Repository) getCheque(ctx context.Context, query string, id uuid.UUID) (Cheque, error) {
	var (
		c      Cheque
		typ    string
		status string
	)
	err := db.Conn(ctx, r.pool).QueryRow(ctx, query, id).Scan(&c.ID, &c.OrganizationID, &c.BankAccountID, &c.Number,
		&typ, &c.Amount, &c.Payee, &c.IssueDate, &status, &c.ClearedDate, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Cheque{}, ErrChequeNotFound
	}
	if err != nil {
		return Cheque{}, err
	}
	c.Type = ChequeType(typ)
	c.Status = ChequeStatus(status)
	return c, nil
}

// InsertCheque writes a cheque.
func (r *Repository) InsertCheque(ctx context.Context, c Cheque) error {
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `INSERT INTO cheques (`+chequeColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		c.ID, c.OrganizationID, c.BankAccountID, c.Number, string(c.Type), c.Amount, c.Payee, c.IssueDate,
		string(c.Status), c.ClearedDate, c.CreatedAt)
	if db.IsUniqueViolation(err, "cheques_account_number_key") {
		return ErrDuplicateChequeNumber
	}
	return err
}

// TransitionCheque moves a cheque from one status to another.
func (r *Repository) TransitionCheque(ctx context.Context, id uuid.UUID, from, to ChequeStatus, clearedDate *time.Time) (bool, error) {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `UPDATE cheques SET status=$3, cleared_date=COALESCE($4, cleared_date)
WHERE id=$1 AND status=$2`, id, string(from), string(to), clearedDate)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteCheque removes a cheque.
func (r *Repository) DeleteCheque(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM cheques WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrChequeNotFound
	}
	return nil
}

const reconciliationColumns = `id, organization_id, bank_account_id, bank_account_name, reconciliation_date,
statement_balance, book_balance, outstanding_deposits, outstanding_checks, bank_charges, interest_earned,
adjusted_balance, difference, status, notes, completed_at, created_at`

// GetReconciliation loads a reconciliation.
func (r *Repository) GetReconciliation(ctx context.Context, id uuid.UUID) (Reconciliation, error) {
	return r.getReconciliation(ctx, `SELECT `+reconciliationColumns+` FROM bank_reconciliations WHERE id=$1`, id)
}

// GetReconciliationForUpdate loads a reconciliation and locks it.
func (r *Repository) GetReconciliationForUpdate(ctx context.Context, id uuid.UUID) (Reconciliation, error) {
	return r.getReconciliation(ctx, `SELECT `+reconciliationColumns+` FROM bank_reconciliations WHERE id=$1 FOR UPDATE`, id)
}

func (r *Repository) getReconciliation(ctx context.Context, query string, id uuid.UUID) (Reconciliation, error) {
	var (
		rec    Reconciliation
		status string
	)
	err := db.Conn(ctx, r.pool).QueryRow(ctx, query, id).Scan(&rec.ID, &rec.OrganizationID, &rec.BankAccountID,
		&rec.BankAccountName, &rec.ReconciliationDate, &rec.StatementBalance, &rec.BookBalance,
		&rec.OutstandingDeposits, &rec.OutstandingChecks, &rec.BankCharges, &rec.InterestEarned,
		&rec.AdjustedBalance, &rec.Difference, &status, &rec.Notes, &rec.CompletedAt, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Reconciliation{}, ErrReconciliationNotFound
	}
	if err != nil {
		return Reconciliation{}, err
	}
	rec.Status = ReconciliationStatus(status)
	return rec, nil
}

// InsertReconciliation writes a reconciliation.
func (r *Repository) InsertReconciliation(ctx context.Context, rec Reconciliation) error {
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `INSERT INTO bank_reconciliations (`+reconciliationColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		rec.ID, rec.OrganizationID, rec.BankAccountID, rec.BankAccountName, rec.ReconciliationDate,
		rec.StatementBalance, rec.BookBalance, rec.OutstandingDeposits, rec.OutstandingChecks, rec.BankCharges,
		rec.InterestEarned, rec.AdjustedBalance, rec.Difference, string(rec.Status), rec.Notes, rec.CompletedAt,
		rec.CreatedAt)
	return err
}

// SetReconciliationStatus moves a reconciliation between statuses.
func (r *Repository) SetReconciliationStatus(ctx context.Context, id uuid.UUID, from, to ReconciliationStatus) (bool, error) {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `UPDATE bank_reconciliations SET status=$3 WHERE id=$1 AND status=$2`,
		id, string(from), string(to))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// CompleteReconciliation closes a reconciliation unless it is closed already.
func (r *Repository) CompleteReconciliation(ctx context.Context, id uuid.UUID, notes string, at time.Time) (bool, error) {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `UPDATE bank_reconciliations SET status=$2, notes=$3, completed_at=$4
WHERE id=$1 AND status <> $2`, id, string(ReconciliationCompleted), notes, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteReconciliation removes a reconciliation.
func (r *Repository) DeleteReconciliation(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM bank_reconciliations WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReconciliationNotFound
	}
	return nil
}

func scanTransaction(row pgx.Row) (Transaction, error) {
	var (
		t     Transaction
		typ   string
		recID *uuid.UUID
	)
	err := row.Scan(&t.ID, &t.OrganizationID, &t.BankAccountID, &t.Date, &typ, &t.Amount, &t.Description,
		&t.Reference, &t.IsReconciled, &recID, &t.CreatedAt)
	if err != nil {
		return Transaction{}, err
	}
	t.Type = TxType(typ)
	if recID != nil {
		t.ReconciliationID = *recID
	}
	return t, nil
}

func nullUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
