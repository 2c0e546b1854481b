package tax

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/fincore/internal/accounts"
	"github.com/odyssey-erp/fincore/internal/observability"
)

// Reader exposes lock-free reads.
type Reader interface {
	GetConfiguration(ctx context.Context, id uuid.UUID) (Configuration, error)
	// ListActiveConfigurations returns the active configurations of a code,
	// newest first.
	ListActiveConfigurations(ctx context.Context, orgID uuid.UUID, code string) ([]Configuration, error)
	GetPayable(ctx context.Context, id uuid.UUID) (Payable, error)
	ListPayables(ctx context.Context, orgID uuid.UUID, typ Type) ([]Payable, error)
}

// RepositoryPort is the persistence contract of the tax store.
type RepositoryPort interface {
	Reader
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes locking reads and writes used inside a unit of work.
type TxRepository interface {
	Reader
	InsertConfiguration(ctx context.Context, cfg Configuration) error
	InsertPayable(ctx context.Context, p Payable) error
	GetPayableForUpdate(ctx context.Context, id uuid.UUID) (Payable, error)
	UpdatePayablePayment(ctx context.Context, p Payable) error
	InsertPayment(ctx context.Context, pay Payment) error
	LinkPaymentJournal(ctx context.Context, pay Payment) error
}

// IdempotencyPort guards payments against replays.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
}

// Service implements the tax calculator and the payable register.
type Service struct {
	repo     RepositoryPort
	docs     SourceDocuments
	ledger   Ledger
	banks    BankAccounts
	accounts accounts.Directory
	idem     IdempotencyPort
	metrics  *observability.FinanceMetrics
	rates    Rates
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs the tax service.
func NewService(repo RepositoryPort, docs SourceDocuments, ledger Ledger, banks BankAccounts, directory accounts.Directory, idem IdempotencyPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		docs:     docs,
		ledger:   ledger,
		banks:    banks,
		accounts: directory,
		idem:     idem,
		rates:    DefaultRates(),
		logger:   logger,
		now:      time.Now,
	}
}

// WithRates overrides the flat payable rates.
func (s *Service) WithRates(r Rates) *Service {
	s.rates = r
	return s
}

// WithMetrics attaches the finance counters.
func (s *Service) WithMetrics(m *observability.FinanceMetrics) *Service {
	s.metrics = m
	return s
}

// WithNow overrides the clock, used by tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}
