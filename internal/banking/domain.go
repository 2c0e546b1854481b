// Package banking keeps bank account balances and reconciles them against
// bank statements.
package banking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/fincore/internal/shared"
)

// TxType is the kind of a bank transaction.
type TxType string

const (
	TxDeposit    TxType = "deposit"
	TxWithdrawal TxType = "withdrawal"
	TxTransfer   TxType = "transfer"
	TxFee        TxType = "fee"
	TxInterest   TxType = "interest"
)

// Valid reports whether t is a known transaction type.
func (t TxType) Valid() bool {
	switch t {
	case TxDeposit, TxWithdrawal, TxTransfer, TxFee, TxInterest:
		return true
	}
	return false
}

// Signed returns the effect of amount on the account balance. Deposits and
// interest add, everything else subtracts.
func (t TxType) Signed(amount decimal.Decimal) decimal.Decimal {
	switch t {
	case TxDeposit, TxInterest:
		return amount
	default:
		return amount.Neg()
	}
}

// ChequeType tells whether the organization wrote or received the cheque.
type ChequeType string

const (
	ChequeIssued   ChequeType = "issued"
	ChequeReceived ChequeType = "received"
)

// ChequeStatus is the lifecycle state of a cheque.
type ChequeStatus string

const (
	ChequePending   ChequeStatus = "pending"
	ChequeDeposited ChequeStatus = "deposited"
	ChequeCleared   ChequeStatus = "cleared"
	ChequeBounced   ChequeStatus = "bounced"
	ChequeCancelled ChequeStatus = "cancelled"
)

// ReconciliationStatus moves draft -> in_progress -> completed only.
type ReconciliationStatus string

const (
	ReconciliationDraft      ReconciliationStatus = "draft"
	ReconciliationInProgress ReconciliationStatus = "in_progress"
	ReconciliationCompleted  ReconciliationStatus = "completed"
)

// Skip reasons reported by MatchTransactions.
const (
	SkipOtherAccount        = "other_bank_account"
	SkipReconciledElsewhere = "reconciled_elsewhere"
)

// IdempotencyModule scopes bank transaction request keys.
const IdempotencyModule = "banking.transaction"

var (
	ErrBankAccountNotFound    = fmt.Errorf("%w: bank account", shared.ErrNotFound)
	ErrTransactionNotFound    = fmt.Errorf("%w: bank transaction", shared.ErrNotFound)
	ErrChequeNotFound         = fmt.Errorf("%w: cheque", shared.ErrNotFound)
	ErrReconciliationNotFound = fmt.Errorf("%w: bank reconciliation", shared.ErrNotFound)

	ErrBankAccountInactive     = fmt.Errorf("%w: bank account is inactive", shared.ErrValidation)
	ErrTransactionReconciled   = fmt.Errorf("%w: transaction is reconciled", shared.ErrConflict)
	ErrReconciliationCompleted = fmt.Errorf("%w: reconciliation already completed", shared.ErrConflict)
	ErrChequeTransition        = fmt.Errorf("%w: cheque is not pending", shared.ErrConflict)
	ErrChequeWrongType         = fmt.Errorf("%w: operation does not apply to this cheque type", shared.ErrValidation)
	ErrDuplicateAccountNumber  = fmt.Errorf("%w: bank account number already exists", shared.ErrConflict)
	ErrDuplicateChequeNumber   = fmt.Errorf("%w: cheque number already exists", shared.ErrConflict)
)

// BankAccount holds the running book balance of one bank account.
type BankAccount struct {
	ID              uuid.UUID
	OrganizationID  uuid.UUID
	Name            string
	AccountNumber   string
	BankName        string
	Currency        string
	OpeningBalance  decimal.Decimal
	CurrentBalance  decimal.Decimal
	LedgerAccountID uuid.UUID
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Transaction is a bank movement. Amount is always positive, the sign comes
// from Type.
type Transaction struct {
	ID               uuid.UUID
	OrganizationID   uuid.UUID
	BankAccountID    uuid.UUID
	Date             time.Time
	Type             TxType
	Amount           decimal.Decimal
	Description      string
	Reference        string
	IsReconciled     bool
	ReconciliationID uuid.UUID
	CreatedAt        time.Time
}

// Cheque is a paper payment tracked until it hits the account.
type Cheque struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	BankAccountID  uuid.UUID
	Number         string
	Type           ChequeType
	Amount         decimal.Decimal
	Payee          string
	IssueDate      time.Time
	Status         ChequeStatus
	ClearedDate    *time.Time
	CreatedAt      time.Time
}

// BalanceEffect is what the cheque's current status has done to the balance.
func (c Cheque) BalanceEffect() decimal.Decimal {
	switch c.Status {
	case ChequeDeposited:
		return c.Amount
	case ChequeCleared:
		return c.Amount.Neg()
	}
	return decimal.Zero
}

// Reconciliation compares the book balance with a bank statement.
type Reconciliation struct {
	ID                  uuid.UUID
	OrganizationID      uuid.UUID
	BankAccountID       uuid.UUID
	BankAccountName     string
	ReconciliationDate  time.Time
	StatementBalance    decimal.Decimal
	BookBalance         decimal.Decimal
	OutstandingDeposits decimal.Decimal
	OutstandingChecks   decimal.Decimal
	BankCharges         decimal.Decimal
	InterestEarned      decimal.Decimal
	AdjustedBalance     decimal.Decimal
	Difference          decimal.Decimal
	Status              ReconciliationStatus
	Notes               string
	CompletedAt         *time.Time
	CreatedAt           time.Time
}

// AdjustedBalance applies the outstanding items to a statement balance.
func AdjustedBalance(statement, deposits, checks, charges, interest decimal.Decimal) decimal.Decimal {
	return statement.Add(deposits).Sub(checks).Sub(charges).Add(interest)
}

// Match pairs a book transaction with a statement line.
type Match struct {
	TransactionID      uuid.UUID
	StatementItemIndex int
}

// SkippedMatch reports a match that was not applied.
type SkippedMatch struct {
	TransactionID uuid.UUID
	Reason        string
}

// MatchResult summarises a MatchTransactions call.
type MatchResult struct {
	Reconciliation Reconciliation
	Matched        []uuid.UUID
	Skipped        []SkippedMatch
}

// CreateAccountInput opens a bank account.
type CreateAccountInput struct {
	OrganizationID  uuid.UUID
	Name            string
	AccountNumber   string
	BankName        string
	Currency        string
	OpeningBalance  decimal.Decimal
	LedgerAccountID uuid.UUID
}

// Validate checks the new account.
func (in CreateAccountInput) Validate() error {
	switch {
	case in.OrganizationID == uuid.Nil:
		return fmt.Errorf("%w: organization required", shared.ErrValidation)
	case in.Name == "" || in.AccountNumber == "":
		return fmt.Errorf("%w: account name and number required", shared.ErrValidation)
	case len(in.Currency) != 3:
		return fmt.Errorf("%w: currency must be a 3-letter code", shared.ErrValidation)
	case !shared.FitsScale(in.OpeningBalance, shared.MoneyPlaces):
		return fmt.Errorf("%w: opening balance allows two decimal places", shared.ErrValidation)
	}
	return nil
}

// CreateTransactionInput records a bank movement.
type CreateTransactionInput struct {
	BankAccountID  uuid.UUID
	Date           time.Time
	Type           TxType
	Amount         decimal.Decimal
	Description    string
	Reference      string
	IdempotencyKey string
}

// Validate checks the movement.
func (in CreateTransactionInput) Validate() error {
	switch {
	case in.BankAccountID == uuid.Nil:
		return fmt.Errorf("%w: bank account required", shared.ErrValidation)
	case in.Date.IsZero():
		return fmt.Errorf("%w: transaction date required", shared.ErrValidation)
	case !in.Type.Valid():
		return fmt.Errorf("%w: unknown transaction type %q", shared.ErrValidation, in.Type)
	case !in.Amount.IsPositive() || !shared.FitsScale(in.Amount, shared.MoneyPlaces):
		return fmt.Errorf("%w: amount must be a positive money amount", shared.ErrValidation)
	}
	return nil
}

// CreateChequeInput registers a cheque.
type CreateChequeInput struct {
	BankAccountID uuid.UUID
	Number        string
	Type          ChequeType
	Amount        decimal.Decimal
	Payee         string
	IssueDate     time.Time
}

// Validate checks the cheque.
func (in CreateChequeInput) Validate() error {
	switch {
	case in.BankAccountID == uuid.Nil:
		return fmt.Errorf("%w: bank account required", shared.ErrValidation)
	case in.Number == "":
		return fmt.Errorf("%w: cheque number required", shared.ErrValidation)
	case in.Type != ChequeIssued && in.Type != ChequeReceived:
		return fmt.Errorf("%w: unknown cheque type %q", shared.ErrValidation, in.Type)
	case !in.Amount.IsPositive() || !shared.FitsScale(in.Amount, shared.MoneyPlaces):
		return fmt.Errorf("%w: amount must be a positive money amount", shared.ErrValidation)
	case in.IssueDate.IsZero():
		return fmt.Errorf("%w: issue date required", shared.ErrValidation)
	}
	return nil
}

// CreateReconciliationInput opens a reconciliation against a statement.
type CreateReconciliationInput struct {
	BankAccountID       uuid.UUID
	ReconciliationDate  time.Time
	StatementBalance    decimal.Decimal
	OutstandingDeposits decimal.Decimal
	OutstandingChecks   decimal.Decimal
	BankCharges         decimal.Decimal
	InterestEarned      decimal.Decimal
	Notes               string
}

// Validate checks the statement figures.
func (in CreateReconciliationInput) Validate() error {
	switch {
	case in.BankAccountID == uuid.Nil:
		return fmt.Errorf("%w: bank account required", shared.ErrValidation)
	case in.ReconciliationDate.IsZero():
		return fmt.Errorf("%w: reconciliation date required", shared.ErrValidation)
	case in.OutstandingDeposits.IsNegative() || in.OutstandingChecks.IsNegative() ||
		in.BankCharges.IsNegative() || in.InterestEarned.IsNegative():
		return fmt.Errorf("%w: outstanding items cannot be negative", shared.ErrValidation)
	}
	for _, d := range []decimal.Decimal{in.StatementBalance, in.OutstandingDeposits, in.OutstandingChecks, in.BankCharges, in.InterestEarned} {
		if !shared.FitsScale(d, shared.MoneyPlaces) {
			return fmt.Errorf("%w: amounts allow two decimal places", shared.ErrValidation)
		}
	}
	return nil
}
