// Package tax calculates transaction taxes from rate configurations and
// tracks the tax payable of each period until it is paid.
package tax

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/fincore/internal/shared"
)

// Type is the kind of tax.
type Type string

const (
	TypeVAT            Type = "vat"
	TypeSalesTax       Type = "sales_tax"
	TypeIncomeTax      Type = "income_tax"
	TypeWithholdingTax Type = "withholding_tax"
	TypeExcise         Type = "excise"
)

// Valid reports whether t is a known tax type.
func (t Type) Valid() bool {
	switch t {
	case TypeVAT, TypeSalesTax, TypeIncomeTax, TypeWithholdingTax, TypeExcise:
		return true
	}
	return false
}

// Method selects how the configured rate is applied.
type Method string

const (
	MethodPercentage Method = "percentage"
	MethodFixed      Method = "fixed"
)

// PayableStatus is derived from the paid amount and the due date.
type PayableStatus string

const (
	PayablePending PayableStatus = "pending"
	PayablePaid    PayableStatus = "paid"
	PayableOverdue PayableStatus = "overdue"
)

const (
	// SourcePayment tags journal entries recorded for tax payments.
	SourcePayment = "tax.payment"
	// IdempotencyModule scopes tax payment request keys.
	IdempotencyModule = "tax.payment"
)

var (
	ErrConfigurationNotFound = fmt.Errorf("%w: tax configuration", shared.ErrNotFound)
	ErrPayableNotFound       = fmt.Errorf("%w: tax payable", shared.ErrNotFound)
	ErrDuplicateConfig       = fmt.Errorf("%w: tax configuration already exists for code and effective date", shared.ErrConflict)
	ErrDuplicatePayable      = fmt.Errorf("%w: tax payable already exists for type and period", shared.ErrConflict)
	ErrPayableSettled        = fmt.Errorf("%w: tax payable already paid", shared.ErrConflict)
	ErrOverpayment           = fmt.Errorf("%w: payment exceeds remaining balance", shared.ErrValidation)
	ErrNegativeBase          = fmt.Errorf("%w: fixed inclusive tax exceeds the amount", shared.ErrValidation)
)

// Configuration is a rate definition valid over an effective window.
type Configuration struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Code           string
	Name           string
	Type           Type
	Rate           decimal.Decimal
	Method         Method
	Inclusive      bool
	AccountID      uuid.UUID
	EffectiveFrom  time.Time
	EffectiveTo    *time.Time
	IsActive       bool
	CreatedAt      time.Time
}

// Covers reports whether the configuration applies on date.
func (c Configuration) Covers(date time.Time) bool {
	day := shared.DateOnly(date)
	if day.Before(c.EffectiveFrom) {
		return false
	}
	return c.EffectiveTo == nil || !day.After(*c.EffectiveTo)
}

// Calculation is the result of applying a configuration to an amount.
type Calculation struct {
	Code      string
	Rate      decimal.Decimal
	Method    Method
	Inclusive bool
	Base      decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
}

// Compute applies cfg to amount. Results are rounded to cents once, at the
// end, so an inclusive amount splits back into the exclusive base.
func Compute(amount decimal.Decimal, cfg Configuration) (Calculation, error) {
	out := Calculation{Code: cfg.Code, Rate: cfg.Rate, Method: cfg.Method, Inclusive: cfg.Inclusive}
	var base, tax, total decimal.Decimal
	switch {
	case cfg.Method == MethodPercentage && !cfg.Inclusive:
		base = amount
		tax = amount.Mul(cfg.Rate).Div(shared.Hundred)
		total = amount.Add(tax)
	case cfg.Method == MethodPercentage:
		base = amount.Div(decimal.NewFromInt(1).Add(cfg.Rate.Div(shared.Hundred)))
		tax = amount.Sub(base)
		total = amount
	case cfg.Method == MethodFixed && !cfg.Inclusive:
		base = amount
		tax = cfg.Rate
		total = amount.Add(cfg.Rate)
	case cfg.Method == MethodFixed:
		base = amount.Sub(cfg.Rate)
		if base.IsNegative() {
			return Calculation{}, ErrNegativeBase
		}
		tax = cfg.Rate
		total = amount
	default:
		return Calculation{}, fmt.Errorf("%w: unknown calculation method %q", shared.ErrValidation, cfg.Method)
	}
	out.Base = shared.Round2(base)
	out.Tax = shared.Round2(tax)
	out.Total = shared.Round2(total)
	return out, nil
}

// Payable is the tax owed for one type and period.
type Payable struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Type           Type
	Period         string
	DueDate        time.Time
	Amount         decimal.Decimal
	PaidAmount     decimal.Decimal
	PaidDate       *time.Time
	Status         PayableStatus
	AccountID      uuid.UUID
	JournalEntryID uuid.UUID
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Remaining is what is still owed.
func (p Payable) Remaining() decimal.Decimal {
	return p.Amount.Sub(p.PaidAmount)
}

// Settled reports whether the payable is fully paid.
func (p Payable) Settled() bool {
	return p.PaidAmount.GreaterThanOrEqual(p.Amount)
}

// DeriveStatus computes the status as of now.
func (p Payable) DeriveStatus(now time.Time) PayableStatus {
	switch {
	case p.Settled():
		return PayablePaid
	case shared.DateOnly(now).After(p.DueDate):
		return PayableOverdue
	}
	return PayablePending
}

// Payment is one installment against a payable.
type Payment struct {
	ID             uuid.UUID
	PayableID      uuid.UUID
	Amount         decimal.Decimal
	PaymentDate    time.Time
	BankAccountID  uuid.UUID
	JournalEntryID uuid.UUID
	CreatedAt      time.Time
}

// PayResult reports a payment. Warning is set when the payment was stored but
// its journal entry could not be recorded.
type PayResult struct {
	Payable Payable
	Payment Payment
	Warning string
}

// DocumentTotals aggregates the taxable documents of a period.
type DocumentTotals struct {
	SalesBase    decimal.Decimal
	SalesTax     decimal.Decimal
	PurchaseBase decimal.Decimal
	PurchaseTax  decimal.Decimal
}

// PayableCalculation is the computed payable of a period.
type PayableCalculation struct {
	OrganizationID uuid.UUID
	Type           Type
	Period         string
	Totals         DocumentTotals
	Rate           decimal.Decimal
	Amount         decimal.Decimal
}

// Rates are the flat illustrative rates, in percent, applied by
// CalculateTaxPayable for the non-VAT types.
type Rates struct {
	Sales       decimal.Decimal
	Income      decimal.Decimal
	Withholding decimal.Decimal
}

// DefaultRates returns 10% sales, 25% income and 10% withholding.
func DefaultRates() Rates {
	return Rates{
		Sales:       decimal.NewFromInt(10),
		Income:      decimal.NewFromInt(25),
		Withholding: decimal.NewFromInt(10),
	}
}

// CreateConfigurationInput defines a rate.
type CreateConfigurationInput struct {
	OrganizationID uuid.UUID
	Code           string
	Name           string
	Type           Type
	Rate           decimal.Decimal
	Method         Method
	Inclusive      bool
	AccountID      uuid.UUID
	EffectiveFrom  time.Time
	EffectiveTo    *time.Time
}

// Validate checks the rate definition.
func (in CreateConfigurationInput) Validate() error {
	switch {
	case in.OrganizationID == uuid.Nil:
		return fmt.Errorf("%w: organization required", shared.ErrValidation)
	case in.Code == "" || in.Name == "":
		return fmt.Errorf("%w: code and name required", shared.ErrValidation)
	case !in.Type.Valid():
		return fmt.Errorf("%w: unknown tax type %q", shared.ErrValidation, in.Type)
	case in.Method != MethodPercentage && in.Method != MethodFixed:
		return fmt.Errorf("%w: unknown calculation method %q", shared.ErrValidation, in.Method)
	case in.Rate.IsNegative():
		return fmt.Errorf("%w: rate cannot be negative", shared.ErrValidation)
	case in.Method == MethodPercentage && in.Rate.GreaterThan(shared.Hundred):
		return fmt.Errorf("%w: percentage rate cannot exceed 100", shared.ErrValidation)
	case !shared.FitsScale(in.Rate, shared.RatePlaces):
		return fmt.Errorf("%w: rate allows four decimal places", shared.ErrValidation)
	case in.EffectiveFrom.IsZero():
		return fmt.Errorf("%w: effective from required", shared.ErrValidation)
	case in.EffectiveTo != nil && in.EffectiveTo.Before(in.EffectiveFrom):
		return fmt.Errorf("%w: effective window ends before it starts", shared.ErrValidation)
	}
	return nil
}

// CreatePayableInput records the tax owed for a period.
type CreatePayableInput struct {
	OrganizationID uuid.UUID
	Type           Type
	Period         string
	DueDate        time.Time
	Amount         decimal.Decimal
	AccountID      uuid.UUID
	Notes          string
}

// Validate checks the payable.
func (in CreatePayableInput) Validate() error {
	switch {
	case in.OrganizationID == uuid.Nil:
		return fmt.Errorf("%w: organization required", shared.ErrValidation)
	case !in.Type.Valid():
		return fmt.Errorf("%w: unknown tax type %q", shared.ErrValidation, in.Type)
	case in.DueDate.IsZero():
		return fmt.Errorf("%w: due date required", shared.ErrValidation)
	case in.Amount.IsNegative() || !shared.FitsScale(in.Amount, shared.MoneyPlaces):
		return fmt.Errorf("%w: amount must be a non-negative money amount", shared.ErrValidation)
	}
	if _, err := shared.ParsePeriod(in.Period); err != nil {
		return err
	}
	return nil
}

// PayInput pays part or all of a payable.
type PayInput struct {
	PayableID      uuid.UUID
	Amount         decimal.Decimal
	Date           time.Time
	BankAccountID  uuid.UUID
	IdempotencyKey string
	Actor          string
}

// Validate checks the payment.
func (in PayInput) Validate() error {
	switch {
	case in.PayableID == uuid.Nil:
		return fmt.Errorf("%w: tax payable required", shared.ErrValidation)
	case !in.Amount.IsPositive() || !shared.FitsScale(in.Amount, shared.MoneyPlaces):
		return fmt.Errorf("%w: amount must be a positive money amount", shared.ErrValidation)
	}
	return nil
}
