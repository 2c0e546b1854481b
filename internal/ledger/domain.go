// Package ledger owns journal entries: it enforces the double-entry balance
// rule and performs the one-way draft to posted transition.
package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/fincore/internal/shared"
)

// EntryType classifies the business event behind an entry.
type EntryType string

const (
	EntryManual       EntryType = "manual"
	EntryAdjustment   EntryType = "adjustment"
	EntryDepreciation EntryType = "depreciation"
	EntryDisposal     EntryType = "disposal"
	EntryRevaluation  EntryType = "revaluation"
	EntryTaxPayment   EntryType = "tax_payment"
	EntryOpening      EntryType = "opening"
	EntryClosing      EntryType = "closing"
	EntryReversal     EntryType = "reversal"
)

// Status is the lifecycle state of an entry.
type Status string

const (
	StatusDraft  Status = "draft"
	StatusPosted Status = "posted"
)

// Source modules recorded on generated entries.
const (
	SourceManual   = "ledger.manual"
	SourceReversal = "ledger.reversal"
)

var (
	ErrTooFewLines     = fmt.Errorf("%w: journal entry requires at least two lines", shared.ErrValidation)
	ErrUnbalanced      = fmt.Errorf("%w: journal lines must balance", shared.ErrValidation)
	ErrEntryNotFound   = fmt.Errorf("%w: journal entry", shared.ErrNotFound)
	ErrAlreadyPosted   = fmt.Errorf("%w: journal entry already posted", shared.ErrConflict)
	ErrNotPosted       = fmt.Errorf("%w: only posted entries can be reversed", shared.ErrConflict)
	ErrAlreadyReversed = fmt.Errorf("%w: journal entry already reversed", shared.ErrConflict)
)

// JournalEntry is a header plus its ordered lines.
type JournalEntry struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Number         string
	Date           time.Time
	Type           EntryType
	Description    string
	Reference      string
	SourceModule   string
	SourceID       uuid.UUID
	Status         Status
	PostedAt       *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Lines          []JournalLine
}

// JournalLine is one debit or credit of an entry.
type JournalLine struct {
	ID          uuid.UUID
	EntryID     uuid.UUID
	LineNo      int
	AccountID   uuid.UUID
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// Totals sums debits and credits of the entry.
func (e JournalEntry) Totals() (debit, credit decimal.Decimal) {
	for _, l := range e.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// PostingLine describes a line of a posting request.
type PostingLine struct {
	AccountID   uuid.UUID
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// Debit builds a debit line.
func Debit(account uuid.UUID, amount decimal.Decimal, description string) PostingLine {
	return PostingLine{AccountID: account, Debit: amount, Description: description}
}

// Credit builds a credit line.
func Credit(account uuid.UUID, amount decimal.Decimal, description string) PostingLine {
	return PostingLine{AccountID: account, Credit: amount, Description: description}
}

// PostingInput groups fields required to create a journal entry.
type PostingInput struct {
	OrganizationID uuid.UUID
	Number         string
	Date           time.Time
	Type           EntryType
	Description    string
	Reference      string
	SourceModule   string
	SourceID       uuid.UUID
	// Status defaults to draft.
	Status Status
	Actor  string
	Lines  []PostingLine
}

// Validate enforces the double-entry rules. No entry is persisted without it.
func (in PostingInput) Validate() error {
	if in.OrganizationID == uuid.Nil {
		return fmt.Errorf("%w: organization required", shared.ErrValidation)
	}
	if in.Date.IsZero() {
		return fmt.Errorf("%w: entry date required", shared.ErrValidation)
	}
	if in.Type != "" && !in.Type.Valid() {
		return fmt.Errorf("%w: unknown entry type %q", shared.ErrValidation, in.Type)
	}
	if in.Status != "" && in.Status != StatusDraft && in.Status != StatusPosted {
		return fmt.Errorf("%w: unknown status %q", shared.ErrValidation, in.Status)
	}
	if len(in.Lines) < 2 {
		return ErrTooFewLines
	}
	debit, credit := decimal.Zero, decimal.Zero
	for idx, line := range in.Lines {
		if line.AccountID == uuid.Nil {
			return fmt.Errorf("%w: line %d missing account", shared.ErrValidation, idx+1)
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return fmt.Errorf("%w: line %d negative amount", shared.ErrValidation, idx+1)
		}
		if line.Debit.IsZero() == line.Credit.IsZero() {
			return fmt.Errorf("%w: line %d must carry exactly one of debit or credit", shared.ErrValidation, idx+1)
		}
		if !shared.FitsScale(line.Debit, shared.MoneyPlaces) || !shared.FitsScale(line.Credit, shared.MoneyPlaces) {
			return fmt.Errorf("%w: line %d amount exceeds two decimal places", shared.ErrValidation, idx+1)
		}
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	if debit.Sub(credit).Abs().GreaterThan(shared.BalanceTolerance) {
		return fmt.Errorf("%w: debit %s, credit %s", ErrUnbalanced, debit.StringFixed(2), credit.StringFixed(2))
	}
	return nil
}

// Valid reports whether t is a known entry type.
func (t EntryType) Valid() bool {
	switch t {
	case EntryManual, EntryAdjustment, EntryDepreciation, EntryDisposal, EntryRevaluation,
		EntryTaxPayment, EntryOpening, EntryClosing, EntryReversal:
		return true
	}
	return false
}

// ReverseInput wraps parameters for reversal.
type ReverseInput struct {
	EntryID     uuid.UUID
	Date        time.Time
	Description string
	Actor       string
}
