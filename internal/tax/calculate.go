package tax

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/fincore/internal/shared"
)

// CreateTaxConfiguration stores an active rate definition.
func (s *Service) CreateTaxConfiguration(ctx context.Context, in CreateConfigurationInput) (Configuration, error) {
	if err := in.Validate(); err != nil {
		return Configuration{}, err
	}
	if in.AccountID != uuid.Nil && s.accounts != nil {
		if _, err := s.accounts.Get(ctx, in.AccountID); err != nil {
			return Configuration{}, err
		}
	}
	cfg := Configuration{
		ID:             uuid.New(),
		OrganizationID: in.OrganizationID,
		Code:           in.Code,
		Name:           in.Name,
		Type:           in.Type,
		Rate:           in.Rate,
		Method:         in.Method,
		Inclusive:      in.Inclusive,
		AccountID:      in.AccountID,
		EffectiveFrom:  shared.DateOnly(in.EffectiveFrom),
		IsActive:       true,
		CreatedAt:      s.now(),
	}
	if in.EffectiveTo != nil {
		to := shared.DateOnly(*in.EffectiveTo)
		cfg.EffectiveTo = &to
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.InsertConfiguration(ctx, cfg)
	})
	if err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}

// GetTaxConfiguration loads a configuration.
func (s *Service) GetTaxConfiguration(ctx context.Context, id uuid.UUID) (Configuration, error) {
	return s.repo.GetConfiguration(ctx, id)
}

// ResolveConfiguration picks the newest active configuration of code whose
// effective window contains date.
func (s *Service) ResolveConfiguration(ctx context.Context, orgID uuid.UUID, code string, date time.Time) (Configuration, error) {
	list, err := s.repo.ListActiveConfigurations(ctx, orgID, code)
	if err != nil {
		return Configuration{}, err
	}
	for _, cfg := range list {
		if cfg.Covers(date) {
			return cfg, nil
		}
	}
	return Configuration{}, fmt.Errorf("%w: no active configuration for %q on %s", ErrConfigurationNotFound, code, date.Format(shared.DateLayout))
}

// CalculateTax applies the configuration in force on date to amount. A zero
// date means today.
func (s *Service) CalculateTax(ctx context.Context, orgID uuid.UUID, amount decimal.Decimal, code string, date time.Time) (Calculation, error) {
	if amount.IsNegative() {
		return Calculation{}, fmt.Errorf("%w: amount cannot be negative", shared.ErrValidation)
	}
	if date.IsZero() {
		date = s.now()
	}
	cfg, err := s.ResolveConfiguration(ctx, orgID, code, date)
	if err != nil {
		return Calculation{}, err
	}
	return Compute(amount, cfg)
}

// CalculateTaxPayable aggregates the paid sales invoices and approved
// purchase bills of period into the amount owed for typ. VAT nets output
// against input tax; the other types apply the flat configured rates.
func (s *Service) CalculateTaxPayable(ctx context.Context, orgID uuid.UUID, typ Type, period string) (PayableCalculation, error) {
	if orgID == uuid.Nil {
		return PayableCalculation{}, fmt.Errorf("%w: organization required", shared.ErrValidation)
	}
	start, err := shared.ParsePeriod(period)
	if err != nil {
		return PayableCalculation{}, err
	}
	totals, err := s.docs.Totals(ctx, orgID, start, shared.MonthEnd(start))
	if err != nil {
		return PayableCalculation{}, err
	}
	out := PayableCalculation{OrganizationID: orgID, Type: typ, Period: period, Totals: totals}
	switch typ {
	case TypeVAT:
		out.Amount = totals.SalesTax.Sub(totals.PurchaseTax)
	case TypeSalesTax:
		out.Rate = s.rates.Sales
		out.Amount = percentOf(totals.SalesBase, out.Rate)
	case TypeIncomeTax:
		out.Rate = s.rates.Income
		out.Amount = percentOf(decimal.Max(totals.SalesBase.Sub(totals.PurchaseBase), decimal.Zero), out.Rate)
	case TypeWithholdingTax:
		out.Rate = s.rates.Withholding
		out.Amount = percentOf(totals.PurchaseBase, out.Rate)
	default:
		return PayableCalculation{}, fmt.Errorf("%w: no payable aggregation for tax type %q", shared.ErrValidation, typ)
	}
	out.Amount = shared.Round2(out.Amount)
	return out, nil
}

func percentOf(base, rate decimal.Decimal) decimal.Decimal {
	return base.Mul(rate).Div(shared.Hundred)
}
