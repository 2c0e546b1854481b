package tax_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/fincore/internal/shared"
	"github.com/odyssey-erp/fincore/internal/tax"
	mock_tax "github.com/odyssey-erp/fincore/internal/tax/mocks"
)

var fixedNow = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

func money(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func day(v string) time.Time {
	d, err := time.Parse(shared.DateLayout, v)
	if err != nil {
		panic(err)
	}
	return d
}

type fixture struct {
	svc    *tax.Service
	repo   *memoryRepo
	dir    *fakeDirectory
	docs   *mock_tax.MockSourceDocuments
	ledger *mock_tax.MockLedger
	banks  *mock_tax.MockBankAccounts
	org    uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		repo:   newMemoryRepo(),
		dir:    newFakeDirectory(),
		docs:   mock_tax.NewMockSourceDocuments(ctrl),
		ledger: mock_tax.NewMockLedger(ctrl),
		banks:  mock_tax.NewMockBankAccounts(ctrl),
		org:    uuid.New(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = tax.NewService(f.repo, f.docs, f.ledger, f.banks, f.dir, memoryIdem{repo: f.repo}, logger).
		WithNow(func() time.Time { return fixedNow })
	return f
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name      string
		amount    string
		rate      string
		method    tax.Method
		inclusive bool
		base      string
		tax       string
		total     string
	}{
		{name: "percentage exclusive", amount: "100", rate: "10", method: tax.MethodPercentage, base: "100.00", tax: "10.00", total: "110.00"},
		{name: "percentage inclusive", amount: "110", rate: "10", method: tax.MethodPercentage, inclusive: true, base: "100.00", tax: "10.00", total: "110.00"},
		{name: "inclusive rounds once", amount: "99.99", rate: "7.5", method: tax.MethodPercentage, inclusive: true, base: "93.01", tax: "6.98", total: "99.99"},
		{name: "fixed exclusive", amount: "100", rate: "5", method: tax.MethodFixed, base: "100.00", tax: "5.00", total: "105.00"},
		{name: "fixed inclusive", amount: "100", rate: "5", method: tax.MethodFixed, inclusive: true, base: "95.00", tax: "5.00", total: "100.00"},
		{name: "zero rate", amount: "42.10", rate: "0", method: tax.MethodPercentage, base: "42.10", tax: "0.00", total: "42.10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tax.Compute(money(tt.amount), tax.Configuration{
				Code: "T", Rate: money(tt.rate), Method: tt.method, Inclusive: tt.inclusive,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.base, got.Base.StringFixed(2))
			assert.Equal(t, tt.tax, got.Tax.StringFixed(2))
			assert.Equal(t, tt.total, got.Total.StringFixed(2))
		})
	}
}

func TestComputeFixedInclusiveAboveAmount(t *testing.T) {
	_, err := tax.Compute(money("3"), tax.Configuration{Rate: money("5"), Method: tax.MethodFixed, Inclusive: true})
	require.ErrorIs(t, err, tax.ErrNegativeBase)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func (f *fixture) configure(t *testing.T, code, rate string, from string, to *time.Time) tax.Configuration {
	t.Helper()
	cfg, err := f.svc.CreateTaxConfiguration(t.Context(), tax.CreateConfigurationInput{
		OrganizationID: f.org,
		Code:           code,
		Name:           "VAT " + rate,
		Type:           tax.TypeVAT,
		Rate:           money(rate),
		Method:         tax.MethodPercentage,
		EffectiveFrom:  day(from),
		EffectiveTo:    to,
	})
	require.NoError(t, err)
	return cfg
}

func TestCalculateTaxPicksNewestCoveringConfiguration(t *testing.T) {
	f := newFixture(t)
	end := day("2024-12-31")
	f.configure(t, "VAT", "10", "2024-01-01", &end)
	f.configure(t, "VAT", "11", "2025-01-01", nil)
	f.configure(t, "VAT", "12", "2026-01-01", nil)

	calc, err := f.svc.CalculateTax(t.Context(), f.org, money("100"), "VAT", day("2024-06-30"))
	require.NoError(t, err)
	require.Equal(t, "10.00", calc.Tax.StringFixed(2))

	// Zero date means today.
	calc, err = f.svc.CalculateTax(t.Context(), f.org, money("100"), "VAT", time.Time{})
	require.NoError(t, err)
	require.Equal(t, "11.00", calc.Tax.StringFixed(2))
	require.Equal(t, "111.00", calc.Total.StringFixed(2))

	_, err = f.svc.CalculateTax(t.Context(), f.org, money("100"), "VAT", day("2023-12-31"))
	require.ErrorIs(t, err, shared.ErrNotFound)

	_, err = f.svc.CalculateTax(t.Context(), f.org, money("100"), "GST", day("2025-01-01"))
	require.ErrorIs(t, err, tax.ErrConfigurationNotFound)
}

func TestCreateTaxConfigurationValidates(t *testing.T) {
	f := newFixture(t)
	base := tax.CreateConfigurationInput{
		OrganizationID: f.org, Code: "VAT", Name: "VAT", Type: tax.TypeVAT,
		Rate: money("10"), Method: tax.MethodPercentage, EffectiveFrom: day("2025-01-01"),
	}

	bad := base
	bad.Rate = money("100.5")
	_, err := f.svc.CreateTaxConfiguration(t.Context(), bad)
	require.ErrorIs(t, err, shared.ErrValidation)

	bad = base
	bad.Rate = money("-1")
	_, err = f.svc.CreateTaxConfiguration(t.Context(), bad)
	require.ErrorIs(t, err, shared.ErrValidation)

	bad = base
	before := day("2024-12-31")
	bad.EffectiveTo = &before
	_, err = f.svc.CreateTaxConfiguration(t.Context(), bad)
	require.ErrorIs(t, err, shared.ErrValidation)

	bad = base
	bad.AccountID = uuid.New()
	_, err = f.svc.CreateTaxConfiguration(t.Context(), bad)
	require.ErrorIs(t, err, shared.ErrNotFound)

	_, err = f.svc.CreateTaxConfiguration(t.Context(), base)
	require.NoError(t, err)
	_, err = f.svc.CreateTaxConfiguration(t.Context(), base)
	require.ErrorIs(t, err, tax.ErrDuplicateConfig)

	fixed := base
	fixed.Code = "STAMP"
	fixed.Method = tax.MethodFixed
	fixed.Rate = money("250")
	_, err = f.svc.CreateTaxConfiguration(t.Context(), fixed)
	require.NoError(t, err)
}

func TestCalculateTaxPayable(t *testing.T) {
	f := newFixture(t)
	totals := tax.DocumentTotals{
		SalesBase:    money("10000.00"),
		SalesTax:     money("1000.00"),
		PurchaseBase: money("4000.00"),
		PurchaseTax:  money("400.00"),
	}
	f.docs.EXPECT().
		Totals(gomock.Any(), f.org, day("2025-02-01"), day("2025-02-28")).
		Return(totals, nil).
		Times(4)

	cases := map[tax.Type]string{
		tax.TypeVAT:            "600.00",
		tax.TypeSalesTax:       "1000.00",
		tax.TypeIncomeTax:      "1500.00",
		tax.TypeWithholdingTax: "400.00",
	}
	for typ, want := range cases {
		calc, err := f.svc.CalculateTaxPayable(t.Context(), f.org, typ, "2025-02")
		require.NoError(t, err)
		assert.Equal(t, want, calc.Amount.StringFixed(2), string(typ))
		assert.Equal(t, "2025-02", calc.Period)
	}
}

func TestCalculateTaxPayableRejectsUnsupportedInput(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CalculateTaxPayable(t.Context(), f.org, tax.TypeVAT, "2025-13")
	require.ErrorIs(t, err, shared.ErrValidation)

	f.docs.EXPECT().Totals(gomock.Any(), f.org, gomock.Any(), gomock.Any()).Return(tax.DocumentTotals{}, nil)
	_, err = f.svc.CalculateTaxPayable(t.Context(), f.org, tax.TypeExcise, "2025-02")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestIncomeTaxPayableNeverNegative(t *testing.T) {
	f := newFixture(t)
	f.docs.EXPECT().Totals(gomock.Any(), f.org, gomock.Any(), gomock.Any()).Return(tax.DocumentTotals{
		SalesBase:    money("100.00"),
		PurchaseBase: money("900.00"),
	}, nil)
	calc, err := f.svc.WithRates(tax.DefaultRates()).CalculateTaxPayable(t.Context(), f.org, tax.TypeIncomeTax, "2025-01")
	require.NoError(t, err)
	require.True(t, calc.Amount.IsZero())
}
