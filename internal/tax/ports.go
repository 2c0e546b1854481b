package tax

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/fincore/internal/banking"
	"github.com/odyssey-erp/fincore/internal/ledger"
)

// Collaborators outside the tax store. Mocks live in ./mocks.
//
//go:generate mockgen -destination=mocks/mock_ports.go -source=ports.go

// Ledger records the journal entry of a payment.
type Ledger interface {
	Record(ctx context.Context, in ledger.PostingInput) (ledger.JournalEntry, error)
}

// BankAccounts resolves the ledger account behind a bank account.
type BankAccounts interface {
	GetBankAccount(ctx context.Context, id uuid.UUID) (banking.BankAccount, error)
}

// SourceDocuments aggregates the taxable sales and purchases of a date range.
type SourceDocuments interface {
	Totals(ctx context.Context, orgID uuid.UUID, from, to time.Time) (DocumentTotals, error)
}
