package tax

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/fincore/internal/shared"
)

type createConfigurationRequest struct {
	OrganizationID string `json:"organization_id" validate:"required,uuid"`
	Code           string `json:"code" validate:"required,max=50"`
	Name           string `json:"name" validate:"required,max=255"`
	Type           string `json:"tax_type" validate:"required,oneof=vat sales_tax income_tax withholding_tax excise"`
	Rate           string `json:"rate" validate:"required,numeric"`
	Method         string `json:"calculation_method" validate:"required,oneof=percentage fixed"`
	Inclusive      bool   `json:"is_inclusive"`
	AccountID      string `json:"account_id" validate:"omitempty,uuid"`
	EffectiveFrom  string `json:"effective_from" validate:"required,datetime=2006-01-02"`
	EffectiveTo    string `json:"effective_to" validate:"omitempty,datetime=2006-01-02"`
}

type calculateTaxRequest struct {
	OrganizationID string `json:"organization_id" validate:"required,uuid"`
	Amount         string `json:"amount" validate:"required,numeric"`
	TaxCode        string `json:"tax_code" validate:"required"`
	Date           string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type idRequest struct {
	ID string `json:"id" validate:"required,uuid"`
}

type createPayableRequest struct {
	OrganizationID string `json:"organization_id" validate:"required,uuid"`
	Type           string `json:"tax_type" validate:"required,oneof=vat sales_tax income_tax withholding_tax excise"`
	Period         string `json:"period" validate:"required,datetime=2006-01"`
	DueDate        string `json:"due_date" validate:"required,datetime=2006-01-02"`
	Amount         string `json:"amount" validate:"required,numeric"`
	AccountID      string `json:"account_id" validate:"omitempty,uuid"`
	Notes          string `json:"notes" validate:"max=1000"`
}

type listPayablesRequest struct {
	OrganizationID string `json:"organization_id" validate:"required,uuid"`
	Type           string `json:"tax_type" validate:"omitempty,oneof=vat sales_tax income_tax withholding_tax excise"`
}

type payRequest struct {
	ID             string `json:"id" validate:"required,uuid"`
	Amount         string `json:"amount" validate:"required,numeric"`
	PaymentDate    string `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
	BankAccountID  string `json:"bank_account_id" validate:"omitempty,uuid"`
	IdempotencyKey string `json:"idempotency_key" validate:"max=128"`
}

type calculatePayableRequest struct {
	OrganizationID string `json:"organization_id" validate:"required,uuid"`
	Type           string `json:"tax_type" validate:"required,oneof=vat sales_tax income_tax withholding_tax"`
	Period         string `json:"period" validate:"required,datetime=2006-01"`
}

func (req createConfigurationRequest) toInput() (CreateConfigurationInput, error) {
	orgID, err := shared.ParseID("organization_id", req.OrganizationID)
	if err != nil {
		return CreateConfigurationInput{}, err
	}
	accountID, err := shared.ParseOptionalID("account_id", req.AccountID)
	if err != nil {
		return CreateConfigurationInput{}, err
	}
	rate, err := shared.ParseRate("rate", req.Rate)
	if err != nil {
		return CreateConfigurationInput{}, err
	}
	from, err := shared.ParseDate(req.EffectiveFrom)
	if err != nil {
		return CreateConfigurationInput{}, err
	}
	in := CreateConfigurationInput{
		OrganizationID: orgID,
		Code:           req.Code,
		Name:           req.Name,
		Type:           Type(req.Type),
		Rate:           rate,
		Method:         Method(req.Method),
		Inclusive:      req.Inclusive,
		AccountID:      accountID,
		EffectiveFrom:  from,
	}
	if req.EffectiveTo != "" {
		to, err := shared.ParseDate(req.EffectiveTo)
		if err != nil {
			return CreateConfigurationInput{}, err
		}
		in.EffectiveTo = &to
	}
	return in, nil
}

func (req createPayableRequest) toInput() (CreatePayableInput, error) {
	orgID, err := shared.ParseID("organization_id", req.OrganizationID)
	if err != nil {
		return CreatePayableInput{}, err
	}
	accountID, err := shared.ParseOptionalID("account_id", req.AccountID)
	if err != nil {
		return CreatePayableInput{}, err
	}
	due, err := shared.ParseDate(req.DueDate)
	if err != nil {
		return CreatePayableInput{}, err
	}
	amount, err := shared.ParseMoney("amount", req.Amount)
	if err != nil {
		return CreatePayableInput{}, err
	}
	return CreatePayableInput{
		OrganizationID: orgID,
		Type:           Type(req.Type),
		Period:         req.Period,
		DueDate:        due,
		Amount:         amount,
		AccountID:      accountID,
		Notes:          req.Notes,
	}, nil
}

func (req payRequest) toInput(headerKey, actor string) (PayInput, error) {
	id, err := shared.ParseID("id", req.ID)
	if err != nil {
		return PayInput{}, err
	}
	bankID, err := shared.ParseOptionalID("bank_account_id", req.BankAccountID)
	if err != nil {
		return PayInput{}, err
	}
	amount, err := shared.ParseMoney("amount", req.Amount)
	if err != nil {
		return PayInput{}, err
	}
	in := PayInput{PayableID: id, Amount: amount, BankAccountID: bankID, IdempotencyKey: req.IdempotencyKey, Actor: actor}
	if in.IdempotencyKey == "" {
		in.IdempotencyKey = headerKey
	}
	if req.PaymentDate != "" {
		if in.Date, err = shared.ParseDate(req.PaymentDate); err != nil {
			return PayInput{}, err
		}
	}
	return in, nil
}

type configurationResponse struct {
	ID            string `json:"id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	Type          string `json:"tax_type"`
	Rate          string `json:"rate"`
	Method        string `json:"calculation_method"`
	Inclusive     bool   `json:"is_inclusive"`
	AccountID     string `json:"account_id,omitempty"`
	EffectiveFrom string `json:"effective_from"`
	EffectiveTo   string `json:"effective_to,omitempty"`
	IsActive      bool   `json:"is_active"`
}

func toConfigurationResponse(c Configuration) configurationResponse {
	resp := configurationResponse{
		ID:            c.ID.String(),
		Code:          c.Code,
		Name:          c.Name,
		Type:          string(c.Type),
		Rate:          c.Rate.StringFixed(shared.RatePlaces),
		Method:        string(c.Method),
		Inclusive:     c.Inclusive,
		AccountID:     shared.FormatOptionalID(c.AccountID),
		EffectiveFrom: c.EffectiveFrom.Format(shared.DateLayout),
		IsActive:      c.IsActive,
	}
	if c.EffectiveTo != nil {
		resp.EffectiveTo = c.EffectiveTo.Format(shared.DateLayout)
	}
	return resp
}

type calculationResponse struct {
	TaxCode   string `json:"tax_code"`
	Rate      string `json:"rate"`
	Method    string `json:"calculation_method"`
	Inclusive bool   `json:"is_inclusive"`
	Base      string `json:"base_amount"`
	Tax       string `json:"tax_amount"`
	Total     string `json:"total_amount"`
}

func toCalculationResponse(c Calculation) calculationResponse {
	return calculationResponse{
		TaxCode:   c.Code,
		Rate:      c.Rate.StringFixed(shared.RatePlaces),
		Method:    string(c.Method),
		Inclusive: c.Inclusive,
		Base:      c.Base.StringFixed(2),
		Tax:       c.Tax.StringFixed(2),
		Total:     c.Total.StringFixed(2),
	}
}

type payableResponse struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	Type           string     `json:"tax_type"`
	Period         string     `json:"period"`
	DueDate        string     `json:"due_date"`
	Amount         string     `json:"amount"`
	PaidAmount     string     `json:"paid_amount"`
	PaidDate       string     `json:"paid_date,omitempty"`
	Status         string     `json:"status"`
	AccountID      string     `json:"account_id,omitempty"`
	JournalEntryID string     `json:"journal_entry_id,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

func toPayableResponse(p Payable) payableResponse {
	resp := payableResponse{
		ID:             p.ID.String(),
		OrganizationID: p.OrganizationID.String(),
		Type:           string(p.Type),
		Period:         p.Period,
		DueDate:        p.DueDate.Format(shared.DateLayout),
		Amount:         p.Amount.StringFixed(2),
		PaidAmount:     p.PaidAmount.StringFixed(2),
		Status:         string(p.Status),
		AccountID:      shared.FormatOptionalID(p.AccountID),
		JournalEntryID: shared.FormatOptionalID(p.JournalEntryID),
		Notes:          p.Notes,
	}
	if p.PaidDate != nil {
		resp.PaidDate = p.PaidDate.Format(shared.DateLayout)
	}
	if !p.UpdatedAt.IsZero() {
		at := p.UpdatedAt
		resp.UpdatedAt = &at
	}
	return resp
}

type payResponse struct {
	Payable   payableResponse `json:"tax_payable"`
	PaymentID string          `json:"payment_id"`
	Warning   string          `json:"warning,omitempty"`
}

type payableCalculationResponse struct {
	Type         string `json:"tax_type"`
	Period       string `json:"period"`
	SalesBase    string `json:"sales_base"`
	SalesTax     string `json:"sales_tax"`
	PurchaseBase string `json:"purchase_base"`
	PurchaseTax  string `json:"purchase_tax"`
	Rate         string `json:"rate,omitempty"`
	Amount       string `json:"amount"`
}

func toPayableCalculationResponse(c PayableCalculation) payableCalculationResponse {
	resp := payableCalculationResponse{
		Type:         string(c.Type),
		Period:       c.Period,
		SalesBase:    c.Totals.SalesBase.StringFixed(2),
		SalesTax:     c.Totals.SalesTax.StringFixed(2),
		PurchaseBase: c.Totals.PurchaseBase.StringFixed(2),
		PurchaseTax:  c.Totals.PurchaseTax.StringFixed(2),
		Amount:       c.Amount.StringFixed(2),
	}
	if !c.Rate.Equal(decimal.Zero) {
		resp.Rate = c.Rate.StringFixed(shared.RatePlaces)
	}
	return resp
}
