package banking

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reader exposes lock-free reads.
type Reader interface {
	GetAccount(ctx context.Context, id uuid.UUID) (BankAccount, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (Transaction, error)
	ListTransactions(ctx context.Context, accountID uuid.UUID) ([]Transaction, error)
	ListUnmatched(ctx context.Context, accountID uuid.UUID, asOf time.Time) ([]Transaction, error)
	GetCheque(ctx context.Context, id uuid.UUID) (Cheque, error)
	GetReconciliation(ctx context.Context, id uuid.UUID) (Reconciliation, error)
}

// RepositoryPort is the persistence contract of the bank store.
type RepositoryPort interface {
	Reader
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes locking reads and writes used inside a unit of work.
type TxRepository interface {
	Reader
	InsertAccount(ctx context.Context, acc BankAccount) error
	GetAccountForUpdate(ctx context.Context, id uuid.UUID) (BankAccount, error)
	AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal, at time.Time) (decimal.Decimal, error)

	InsertTransaction(ctx context.Context, t Transaction) error
	GetTransactionForUpdate(ctx context.Context, id uuid.UUID) (Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	// MarkReconciled links an unreconciled transaction. It reports false when
	// the transaction was reconciled meanwhile.
	MarkReconciled(ctx context.Context, txID, reconciliationID uuid.UUID) (bool, error)
	UnlinkReconciliation(ctx context.Context, reconciliationID uuid.UUID) (int64, error)

	InsertCheque(ctx context.Context, c Cheque) error
	GetChequeForUpdate(ctx context.Context, id uuid.UUID) (Cheque, error)
	TransitionCheque(ctx context.Context, id uuid.UUID, from, to ChequeStatus, clearedDate *time.Time) (bool, error)
	DeleteCheque(ctx context.Context, id uuid.UUID) error

	InsertReconciliation(ctx context.Context, r Reconciliation) error
	GetReconciliationForUpdate(ctx context.Context, id uuid.UUID) (Reconciliation, error)
	SetReconciliationStatus(ctx context.Context, id uuid.UUID, from, to ReconciliationStatus) (bool, error)
	CompleteReconciliation(ctx context.Context, id uuid.UUID, notes string, at time.Time) (bool, error)
	DeleteReconciliation(ctx context.Context, id uuid.UUID) error
}

// IdempotencyPort guards transaction creation against replays. The key is
// stored inside the caller's unit of work.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
}

// Service implements the bank account store and the reconciliation matcher.
type Service struct {
	repo   RepositoryPort
	idem   IdempotencyPort
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the banking service.
func NewService(repo RepositoryPort, idem IdempotencyPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, idem: idem, logger: logger, now: time.Now}
}

// WithNow overrides the clock, used by tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}
