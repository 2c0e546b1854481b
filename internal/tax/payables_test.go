package tax_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/fincore/internal/accounts"
	"github.com/odyssey-erp/fincore/internal/banking"
	"github.com/odyssey-erp/fincore/internal/ledger"
	"github.com/odyssey-erp/fincore/internal/observability"
	"github.com/odyssey-erp/fincore/internal/shared"
	"github.com/odyssey-erp/fincore/internal/tax"
)

func (f *fixture) payable(t *testing.T, amount, due string) tax.Payable {
	t.Helper()
	p, err := f.svc.CreateTaxPayable(t.Context(), tax.CreatePayableInput{
		OrganizationID: f.org,
		Type:           tax.TypeVAT,
		Period:         "2025-02",
		DueDate:        day(due),
		Amount:         money(amount),
	})
	require.NoError(t, err)
	return p
}

func warningCount(t *testing.T, reg *prometheus.Registry) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == "fincore_tax_ledger_warnings_total" {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}

func TestPayablePartialThenFullPayment(t *testing.T) {
	f := newFixture(t)
	liability := f.dir.add(f.org, accounts.TypeLiability, accounts.SubtypeTaxPayable)
	bankGL := f.dir.add(f.org, accounts.TypeAsset, "")
	bank := banking.BankAccount{ID: uuid.New(), OrganizationID: f.org, AccountNumber: "001", LedgerAccountID: bankGL.ID}

	p := f.payable(t, "1000.00", "2025-04-15")
	require.Equal(t, tax.PayablePending, p.Status)

	res, err := f.svc.PayTaxPayable(t.Context(), tax.PayInput{PayableID: p.ID, Amount: money("400.00"), Date: day("2025-03-10")})
	require.NoError(t, err)
	require.Empty(t, res.Warning)
	require.Equal(t, "400.00", res.Payable.PaidAmount.StringFixed(2))
	require.Equal(t, tax.PayablePending, res.Payable.Status)

	_, err = f.svc.PayTaxPayable(t.Context(), tax.PayInput{PayableID: p.ID, Amount: money("600.01")})
	require.ErrorIs(t, err, tax.ErrOverpayment)
	require.ErrorIs(t, err, shared.ErrValidation)

	entryID := uuid.New()
	f.banks.EXPECT().GetBankAccount(gomock.Any(), bank.ID).Return(bank, nil)
	f.ledger.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, in ledger.PostingInput) (ledger.JournalEntry, error) {
			require.NoError(t, in.Validate())
			require.Equal(t, ledger.EntryTaxPayment, in.Type)
			require.Equal(t, tax.SourcePayment, in.SourceModule)
			require.Len(t, in.Lines, 2)
			require.Equal(t, liability.ID, in.Lines[0].AccountID)
			require.Equal(t, "600.00", in.Lines[0].Debit.StringFixed(2))
			require.Equal(t, bankGL.ID, in.Lines[1].AccountID)
			require.Equal(t, "600.00", in.Lines[1].Credit.StringFixed(2))
			return ledger.JournalEntry{ID: entryID, Status: ledger.StatusPosted}, nil
		})

	res, err = f.svc.PayTaxPayable(t.Context(), tax.PayInput{
		PayableID: p.ID, Amount: money("600.00"), Date: day("2025-03-14"), BankAccountID: bank.ID,
	})
	require.NoError(t, err)
	require.Empty(t, res.Warning)
	require.Equal(t, tax.PayablePaid, res.Payable.Status)
	require.Equal(t, entryID, res.Payable.JournalEntryID)
	require.Equal(t, entryID, f.repo.payment(res.Payment.ID).JournalEntryID)

	stored, err := f.svc.GetTaxPayable(t.Context(), p.ID)
	require.NoError(t, err)
	require.Equal(t, "1000.00", stored.PaidAmount.StringFixed(2))
	require.Equal(t, day("2025-03-14"), *stored.PaidDate)
	require.Equal(t, entryID, stored.JournalEntryID)

	_, err = f.svc.PayTaxPayable(t.Context(), tax.PayInput{PayableID: p.ID, Amount: money("1.00")})
	require.ErrorIs(t, err, tax.ErrPayableSettled)
}

func TestPaymentSurvivesLedgerFailure(t *testing.T) {
	f := newFixture(t)
	reg := prometheus.NewRegistry()
	f.svc.WithMetrics(observability.NewFinanceMetrics(reg))
	f.dir.add(f.org, accounts.TypeLiability, accounts.SubtypeTaxPayable)
	bank := banking.BankAccount{ID: uuid.New(), LedgerAccountID: uuid.New()}
	p := f.payable(t, "250.00", "2025-04-15")

	f.banks.EXPECT().GetBankAccount(gomock.Any(), bank.ID).Return(bank, nil)
	f.ledger.EXPECT().Record(gomock.Any(), gomock.Any()).Return(ledger.JournalEntry{}, errors.New("ledger down"))

	res, err := f.svc.PayTaxPayable(t.Context(), tax.PayInput{PayableID: p.ID, Amount: money("250.00"), BankAccountID: bank.ID})
	require.NoError(t, err)
	require.Equal(t, "payment recorded but journal entry failed", res.Warning)
	require.NotContains(t, res.Warning, "ledger down")
	require.Equal(t, tax.PayablePaid, res.Payable.Status)
	require.Equal(t, uuid.Nil, res.Payable.JournalEntryID)
	require.Equal(t, float64(1), warningCount(t, reg))

	stored, err := f.svc.GetTaxPayable(t.Context(), p.ID)
	require.NoError(t, err)
	require.Equal(t, "250.00", stored.PaidAmount.StringFixed(2))
	require.Equal(t, uuid.Nil, stored.JournalEntryID)
}

func TestPaymentWarnsWhenAccountsAreMissing(t *testing.T) {
	f := newFixture(t)
	p := f.payable(t, "100.00", "2025-04-15")

	noLedger := banking.BankAccount{ID: uuid.New(), AccountNumber: "002"}
	f.banks.EXPECT().GetBankAccount(gomock.Any(), noLedger.ID).Return(noLedger, nil)
	res, err := f.svc.PayTaxPayable(t.Context(), tax.PayInput{PayableID: p.ID, Amount: money("40.00"), BankAccountID: noLedger.ID})
	require.NoError(t, err)
	require.Contains(t, res.Warning, "no ledger account")

	// No tax_payable liability account is configured.
	withLedger := banking.BankAccount{ID: uuid.New(), LedgerAccountID: uuid.New()}
	f.banks.EXPECT().GetBankAccount(gomock.Any(), withLedger.ID).Return(withLedger, nil)
	res, err = f.svc.PayTaxPayable(t.Context(), tax.PayInput{PayableID: p.ID, Amount: money("60.00"), BankAccountID: withLedger.ID})
	require.NoError(t, err)
	require.Contains(t, res.Warning, accounts.SubtypeTaxPayable)
	require.Equal(t, tax.PayablePaid, res.Payable.Status)
}

func TestPayableStatusIsDerived(t *testing.T) {
	f := newFixture(t)
	p := f.payable(t, "80.00", "2025-03-01")
	require.Equal(t, tax.PayableOverdue, p.Status)

	f.svc.WithNow(func() time.Time { return day("2025-03-01") })
	got, err := f.svc.GetTaxPayable(t.Context(), p.ID)
	require.NoError(t, err)
	require.Equal(t, tax.PayablePending, got.Status)

	_, err = f.svc.CreateTaxPayable(t.Context(), tax.CreatePayableInput{
		OrganizationID: f.org, Type: tax.TypeVAT, Period: "2025-02", DueDate: day("2025-03-20"), Amount: money("1.00"),
	})
	require.ErrorIs(t, err, tax.ErrDuplicatePayable)

	list, err := f.svc.ListTaxPayables(t.Context(), f.org, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestPaymentIdempotencyKey(t *testing.T) {
	f := newFixture(t)
	p := f.payable(t, "100.00", "2025-04-15")
	in := tax.PayInput{PayableID: p.ID, Amount: money("10.00"), IdempotencyKey: "pay-1"}

	_, err := f.svc.PayTaxPayable(t.Context(), in)
	require.NoError(t, err)
	_, err = f.svc.PayTaxPayable(t.Context(), in)
	require.ErrorIs(t, err, shared.ErrConflict)

	got, err := f.svc.GetTaxPayable(t.Context(), p.ID)
	require.NoError(t, err)
	require.Equal(t, "10.00", got.PaidAmount.StringFixed(2))
}

func TestPayRejectsNonPositiveAmount(t *testing.T) {
	f := newFixture(t)
	p := f.payable(t, "100.00", "2025-04-15")
	_, err := f.svc.PayTaxPayable(t.Context(), tax.PayInput{PayableID: p.ID, Amount: money("0")})
	require.ErrorIs(t, err, shared.ErrValidation)
	_, err = f.svc.PayTaxPayable(t.Context(), tax.PayInput{PayableID: uuid.New(), Amount: money("1")})
	require.ErrorIs(t, err, tax.ErrPayableNotFound)
}
