// Package accounts resolves ledger accounts for the posting calculators.
package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/odyssey-erp/fincore/internal/shared"
)

// Type classifies an account in the chart.
type Type string

const (
	TypeAsset     Type = "asset"
	TypeLiability Type = "liability"
	TypeEquity    Type = "equity"
	TypeRevenue   Type = "revenue"
	TypeExpense   Type = "expense"
)

// Well-known subtypes looked up by the posting flows.
const (
	SubtypeDepreciationExpense     = "depreciation_expense"
	SubtypeAccumulatedDepreciation = "accumulated_depreciation"
	SubtypeGainOnDisposal          = "gain_on_disposal"
	SubtypeLossOnDisposal          = "loss_on_disposal"
	SubtypeRevaluationReserve      = "revaluation_reserve"
	SubtypeRevaluationLoss         = "revaluation_loss"
	SubtypeTaxPayable              = "tax_payable"
)

var (
	// ErrAccountNotFound indicates the requested account id does not exist.
	ErrAccountNotFound = fmt.Errorf("%w: account", shared.ErrNotFound)
	// ErrAccountNotConfigured indicates no active account carries the (type, subtype).
	ErrAccountNotConfigured = fmt.Errorf("%w: account", shared.ErrDependency)
)

// Account is the metadata the calculators need from the chart of accounts.
type Account struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	Type           Type      `json:"type"`
	Subtype        string    `json:"subtype"`
	IsActive       bool      `json:"is_active"`
}

// Directory resolves accounts by id or by (type, subtype).
type Directory interface {
	Get(ctx context.Context, id uuid.UUID) (Account, error)
	FindBySubtype(ctx context.Context, orgID uuid.UUID, typ Type, subtype string) (Account, error)
}

// Valid reports whether t is a known account type.
func (t Type) Valid() bool {
	switch t {
	case TypeAsset, TypeLiability, TypeEquity, TypeRevenue, TypeExpense:
		return true
	}
	return false
}

// Validate checks a new account.
func (a Account) Validate() error {
	if a.OrganizationID == uuid.Nil {
		return fmt.Errorf("%w: organization required", shared.ErrValidation)
	}
	if a.Code == "" || a.Name == "" {
		return fmt.Errorf("%w: account code and name required", shared.ErrValidation)
	}
	if !a.Type.Valid() {
		return fmt.Errorf("%w: unknown account type %q", shared.ErrValidation, a.Type)
	}
	return nil
}

// Optional resolves a (type, subtype) account, reporting absence as ok=false
// for the documented fallbacks. Any other failure is returned.
func Optional(ctx context.Context, dir Directory, orgID uuid.UUID, typ Type, subtype string) (Account, bool, error) {
	acc, err := dir.FindBySubtype(ctx, orgID, typ, subtype)
	if errors.Is(err, shared.ErrDependency) {
		return Account{}, false, nil
	}
	if err != nil {
		return Account{}, false, err
	}
	return acc, true, nil
}

// Required resolves a (type, subtype) account that must be configured.
func Required(ctx context.Context, dir Directory, orgID uuid.UUID, typ Type, subtype string) (Account, error) {
	acc, err := dir.FindBySubtype(ctx, orgID, typ, subtype)
	if err != nil {
		if errors.Is(err, shared.ErrDependency) {
			return Account{}, fmt.Errorf("%w: no active %s account with subtype %s", err, typ, subtype)
		}
		return Account{}, err
	}
	return acc, nil
}
