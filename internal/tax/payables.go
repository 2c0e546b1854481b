package tax

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/odyssey-erp/fincore/internal/accounts"
	"github.com/odyssey-erp/fincore/internal/ledger"
	"github.com/odyssey-erp/fincore/internal/shared"
)

// CreateTaxPayable records the amount owed for a type and period.
func (s *Service) CreateTaxPayable(ctx context.Context, in CreatePayableInput) (Payable, error) {
	if err := in.Validate(); err != nil {
		return Payable{}, err
	}
	if in.AccountID != uuid.Nil && s.accounts != nil {
		if _, err := s.accounts.Get(ctx, in.AccountID); err != nil {
			return Payable{}, err
		}
	}
	now := s.now()
	p := Payable{
		ID:             uuid.New(),
		OrganizationID: in.OrganizationID,
		Type:           in.Type,
		Period:         in.Period,
		DueDate:        shared.DateOnly(in.DueDate),
		Amount:         in.Amount,
		AccountID:      in.AccountID,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	p.Status = p.DeriveStatus(now)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.InsertPayable(ctx, p)
	})
	if err != nil {
		return Payable{}, err
	}
	return p, nil
}

// GetTaxPayable loads a payable with its status derived as of now.
func (s *Service) GetTaxPayable(ctx context.Context, id uuid.UUID) (Payable, error) {
	p, err := s.repo.GetPayable(ctx, id)
	if err != nil {
		return Payable{}, err
	}
	p.Status = p.DeriveStatus(s.now())
	return p, nil
}

// ListTaxPayables lists the payables of an organization, optionally of one type.
func (s *Service) ListTaxPayables(ctx context.Context, orgID uuid.UUID, typ Type) ([]Payable, error) {
	list, err := s.repo.ListPayables(ctx, orgID, typ)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range list {
		list[i].Status = list[i].DeriveStatus(now)
	}
	return list, nil
}

// PayTaxPayable applies a payment. The payment commits on its own; when a
// bank account is given the journal entry is recorded afterwards and a
// failure there is reported as a warning, not an error.
func (s *Service) PayTaxPayable(ctx context.Context, in PayInput) (PayResult, error) {
	if err := in.Validate(); err != nil {
		return PayResult{}, err
	}
	now := s.now()
	date := in.Date
	if date.IsZero() {
		date = now
	}
	date = shared.DateOnly(date)

	var res PayResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if in.IdempotencyKey != "" && s.idem != nil {
			if err := s.idem.CheckAndInsert(ctx, in.IdempotencyKey, IdempotencyModule); err != nil {
				return err
			}
		}
		p, err := tx.GetPayableForUpdate(ctx, in.PayableID)
		if err != nil {
			return err
		}
		if p.Settled() {
			return ErrPayableSettled
		}
		if remaining := p.Remaining(); in.Amount.GreaterThan(remaining) {
			return fmt.Errorf("%w: remaining %s", ErrOverpayment, remaining.StringFixed(2))
		}
		p.PaidAmount = p.PaidAmount.Add(in.Amount)
		p.PaidDate = &date
		p.Status = p.DeriveStatus(now)
		p.UpdatedAt = now
		if err := tx.UpdatePayablePayment(ctx, p); err != nil {
			return err
		}
		pay := Payment{
			ID:            uuid.New(),
			PayableID:     p.ID,
			Amount:        in.Amount,
			PaymentDate:   date,
			BankAccountID: in.BankAccountID,
			CreatedAt:     now,
		}
		if err := tx.InsertPayment(ctx, pay); err != nil {
			return err
		}
		res = PayResult{Payable: p, Payment: pay}
		return nil
	})
	if err != nil {
		return PayResult{}, err
	}
	if in.BankAccountID == uuid.Nil {
		return res, nil
	}

	entry, err := s.recordPayment(ctx, res.Payable, res.Payment, in.Actor)
	if err != nil {
		s.metrics.TaxLedgerWarning()
		s.logger.Warn("tax payment stored without journal entry",
			slog.String("payable_id", res.Payable.ID.String()),
			slog.String("payment_id", res.Payment.ID.String()),
			slog.Any("error", err))
		res.Warning = "payment recorded but " + shared.PublicReason(err, "journal entry failed")
		return res, nil
	}
	res.Payment.JournalEntryID = entry.ID
	res.Payable.JournalEntryID = entry.ID
	return res, nil
}

// recordPayment debits the tax liability and credits the bank's ledger
// account, then links the entry to the payment, all in one unit of work.
func (s *Service) recordPayment(ctx context.Context, p Payable, pay Payment, actor string) (ledger.JournalEntry, error) {
	if s.ledger == nil || s.banks == nil {
		return ledger.JournalEntry{}, errors.New("ledger posting is not configured")
	}
	bank, err := s.banks.GetBankAccount(ctx, pay.BankAccountID)
	if err != nil {
		return ledger.JournalEntry{}, err
	}
	if bank.LedgerAccountID == uuid.Nil {
		return ledger.JournalEntry{}, fmt.Errorf("%w: bank account %s has no ledger account", shared.ErrDependency, bank.AccountNumber)
	}
	liability := p.AccountID
	if liability == uuid.Nil {
		acc, err := accounts.Required(ctx, s.accounts, p.OrganizationID, accounts.TypeLiability, accounts.SubtypeTaxPayable)
		if err != nil {
			return ledger.JournalEntry{}, err
		}
		liability = acc.ID
	}
	desc := fmt.Sprintf("%s payment %s", p.Type, p.Period)
	var entry ledger.JournalEntry
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		entry, err = s.ledger.Record(ctx, ledger.PostingInput{
			OrganizationID: p.OrganizationID,
			Date:           pay.PaymentDate,
			Type:           ledger.EntryTaxPayment,
			Description:    desc,
			Reference:      p.Period,
			SourceModule:   SourcePayment,
			SourceID:       pay.ID,
			Actor:          actor,
			Lines: []ledger.PostingLine{
				ledger.Debit(liability, pay.Amount, desc),
				ledger.Credit(bank.LedgerAccountID, pay.Amount, desc),
			},
		})
		if err != nil {
			return err
		}
		pay.JournalEntryID = entry.ID
		return tx.LinkPaymentJournal(ctx, pay)
	})
	if err != nil {
		return ledger.JournalEntry{}, err
	}
	return entry, nil
}
