package banking

import (
	"time"

	"github.com/odyssey-erp/fincore/internal/shared"
)

type createAccountRequest struct {
	OrganizationID  string `json:"organization_id" validate:"required,uuid"`
	Name            string `json:"name" validate:"required,max=255"`
	AccountNumber   string `json:"account_number" validate:"required,max=50"`
	BankName        string `json:"bank_name" validate:"max=255"`
	Currency        string `json:"currency" validate:"required,len=3,alpha"`
	OpeningBalance  string `json:"opening_balance" validate:"omitempty,numeric"`
	LedgerAccountID string `json:"ledger_account_id" validate:"omitempty,uuid"`
}

type idRequest struct {
	ID string `json:"id" validate:"required,uuid"`
}

type accountIDRequest struct {
	BankAccountID string `json:"bank_account_id" validate:"required,uuid"`
}

type createTransactionRequest struct {
	BankAccountID  string `json:"bank_account_id" validate:"required,uuid"`
	Date           string `json:"transaction_date" validate:"required,datetime=2006-01-02"`
	Type           string `json:"transaction_type" validate:"required,oneof=deposit withdrawal transfer fee interest"`
	Amount         string `json:"amount" validate:"required,numeric"`
	Description    string `json:"description" validate:"max=500"`
	Reference      string `json:"reference" validate:"max=100"`
	IdempotencyKey string `json:"idempotency_key" validate:"max=128"`
}

type createChequeRequest struct {
	BankAccountID string `json:"bank_account_id" validate:"required,uuid"`
	Number        string `json:"cheque_number" validate:"required,max=50"`
	Type          string `json:"cheque_type" validate:"required,oneof=issued received"`
	Amount        string `json:"amount" validate:"required,numeric"`
	Payee         string `json:"payee" validate:"max=255"`
	IssueDate     string `json:"issue_date" validate:"required,datetime=2006-01-02"`
}

type clearChequeRequest struct {
	ID          string `json:"id" validate:"required,uuid"`
	ClearedDate string `json:"cleared_date" validate:"omitempty,datetime=2006-01-02"`
}

type createReconciliationRequest struct {
	BankAccountID       string `json:"bank_account_id" validate:"required,uuid"`
	ReconciliationDate  string `json:"reconciliation_date" validate:"required,datetime=2006-01-02"`
	StatementBalance    string `json:"statement_balance" validate:"required,numeric"`
	OutstandingDeposits string `json:"outstanding_deposits" validate:"omitempty,numeric"`
	OutstandingChecks   string `json:"outstanding_checks" validate:"omitempty,numeric"`
	BankCharges         string `json:"bank_charges" validate:"omitempty,numeric"`
	InterestEarned      string `json:"interest_earned" validate:"omitempty,numeric"`
	Notes               string `json:"notes" validate:"max=1000"`
}

type matchRequest struct {
	ReconciliationID string      `json:"reconciliation_id" validate:"required,uuid"`
	Matches          []matchItem `json:"matches" validate:"required,min=1,dive"`
}

type matchItem struct {
	TransactionID      string `json:"transaction_id" validate:"required,uuid"`
	StatementItemIndex int    `json:"statement_item_index" validate:"gte=0"`
}

type completeRequest struct {
	ID    string `json:"id" validate:"required,uuid"`
	Notes string `json:"notes" validate:"max=1000"`
}

func (req createAccountRequest) toInput() (CreateAccountInput, error) {
	orgID, err := shared.ParseID("organization_id", req.OrganizationID)
	if err != nil {
		return CreateAccountInput{}, err
	}
	ledgerID, err := shared.ParseOptionalID("ledger_account_id", req.LedgerAccountID)
	if err != nil {
		return CreateAccountInput{}, err
	}
	opening, err := shared.ParseOptionalMoney("opening_balance", req.OpeningBalance)
	if err != nil {
		return CreateAccountInput{}, err
	}
	return CreateAccountInput{
		OrganizationID:  orgID,
		Name:            req.Name,
		AccountNumber:   req.AccountNumber,
		BankName:        req.BankName,
		Currency:        req.Currency,
		OpeningBalance:  opening,
		LedgerAccountID: ledgerID,
	}, nil
}

// toInput prefers the body key and falls back to the Idempotency-Key header.
func (req createTransactionRequest) toInput(headerKey string) (CreateTransactionInput, error) {
	accountID, err := shared.ParseID("bank_account_id", req.BankAccountID)
	if err != nil {
		return CreateTransactionInput{}, err
	}
	date, err := shared.ParseDate(req.Date)
	if err != nil {
		return CreateTransactionInput{}, err
	}
	amount, err := shared.ParseMoney("amount", req.Amount)
	if err != nil {
		return CreateTransactionInput{}, err
	}
	key := req.IdempotencyKey
	if key == "" {
		key = headerKey
	}
	return CreateTransactionInput{
		BankAccountID:  accountID,
		Date:           date,
		Type:           TxType(req.Type),
		Amount:         amount,
		Description:    req.Description,
		Reference:      req.Reference,
		IdempotencyKey: key,
	}, nil
}

func (req createChequeRequest) toInput() (CreateChequeInput, error) {
	accountID, err := shared.ParseID("bank_account_id", req.BankAccountID)
	if err != nil {
		return CreateChequeInput{}, err
	}
	date, err := shared.ParseDate(req.IssueDate)
	if err != nil {
		return CreateChequeInput{}, err
	}
	amount, err := shared.ParseMoney("amount", req.Amount)
	if err != nil {
		return CreateChequeInput{}, err
	}
	return CreateChequeInput{
		BankAccountID: accountID,
		Number:        req.Number,
		Type:          ChequeType(req.Type),
		Amount:        amount,
		Payee:         req.Payee,
		IssueDate:     date,
	}, nil
}

func (req createReconciliationRequest) toInput() (CreateReconciliationInput, error) {
	accountID, err := shared.ParseID("bank_account_id", req.BankAccountID)
	if err != nil {
		return CreateReconciliationInput{}, err
	}
	date, err := shared.ParseDate(req.ReconciliationDate)
	if err != nil {
		return CreateReconciliationInput{}, err
	}
	statement, err := shared.ParseMoney("statement_balance", req.StatementBalance)
	if err != nil {
		return CreateReconciliationInput{}, err
	}
	in := CreateReconciliationInput{
		BankAccountID:      accountID,
		ReconciliationDate: date,
		StatementBalance:   statement,
		Notes:              req.Notes,
	}
	if in.OutstandingDeposits, err = shared.ParseOptionalMoney("outstanding_deposits", req.OutstandingDeposits); err != nil {
		return CreateReconciliationInput{}, err
	}
	if in.OutstandingChecks, err = shared.ParseOptionalMoney("outstanding_checks", req.OutstandingChecks); err != nil {
		return CreateReconciliationInput{}, err
	}
	if in.BankCharges, err = shared.ParseOptionalMoney("bank_charges", req.BankCharges); err != nil {
		return CreateReconciliationInput{}, err
	}
	if in.InterestEarned, err = shared.ParseOptionalMoney("interest_earned", req.InterestEarned); err != nil {
		return CreateReconciliationInput{}, err
	}
	return in, nil
}

func (req matchRequest) toMatches() ([]Match, error) {
	out := make([]Match, 0, len(req.Matches))
	for _, m := range req.Matches {
		id, err := shared.ParseID("transaction_id", m.TransactionID)
		if err != nil {
			return nil, err
		}
		out = append(out, Match{TransactionID: id, StatementItemIndex: m.StatementItemIndex})
	}
	return out, nil
}

type accountResponse struct {
	ID              string `json:"id"`
	OrganizationID  string `json:"organization_id"`
	Name            string `json:"name"`
	AccountNumber   string `json:"account_number"`
	BankName        string `json:"bank_name,omitempty"`
	Currency        string `json:"currency"`
	OpeningBalance  string `json:"opening_balance"`
	CurrentBalance  string `json:"current_balance"`
	LedgerAccountID string `json:"ledger_account_id,omitempty"`
	IsActive        bool   `json:"is_active"`
}

func toAccountResponse(a BankAccount) accountResponse {
	return accountResponse{
		ID:              a.ID.String(),
		OrganizationID:  a.OrganizationID.String(),
		Name:            a.Name,
		AccountNumber:   a.AccountNumber,
		BankName:        a.BankName,
		Currency:        a.Currency,
		OpeningBalance:  a.OpeningBalance.StringFixed(2),
		CurrentBalance:  a.CurrentBalance.StringFixed(2),
		LedgerAccountID: shared.FormatOptionalID(a.LedgerAccountID),
		IsActive:        a.IsActive,
	}
}

type transactionResponse struct {
	ID               string `json:"id"`
	BankAccountID    string `json:"bank_account_id"`
	Date             string `json:"transaction_date"`
	Type             string `json:"transaction_type"`
	Amount           string `json:"amount"`
	Description      string `json:"description,omitempty"`
	Reference        string `json:"reference,omitempty"`
	IsReconciled     bool   `json:"is_reconciled"`
	ReconciliationID string `json:"reconciliation_id,omitempty"`
}

func toTransactionResponse(t Transaction) transactionResponse {
	return transactionResponse{
		ID:               t.ID.String(),
		BankAccountID:    t.BankAccountID.String(),
		Date:             t.Date.Format(shared.DateLayout),
		Type:             string(t.Type),
		Amount:           t.Amount.StringFixed(2),
		Description:      t.Description,
		Reference:        t.Reference,
		IsReconciled:     t.IsReconciled,
		ReconciliationID: shared.FormatOptionalID(t.ReconciliationID),
	}
}

func toTransactionList(list []Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toTransactionResponse(t))
	}
	return out
}

type chequeResponse struct {
	ID            string `json:"id"`
	BankAccountID string `json:"bank_account_id"`
	Number        string `json:"cheque_number"`
	Type          string `json:"cheque_type"`
	Amount        string `json:"amount"`
	Payee         string `json:"payee,omitempty"`
	IssueDate     string `json:"issue_date"`
	Status        string `json:"status"`
	ClearedDate   string `json:"cleared_date,omitempty"`
}

func toChequeResponse(c Cheque) chequeResponse {
	resp := chequeResponse{
		ID:            c.ID.String(),
		BankAccountID: c.BankAccountID.String(),
		Number:        c.Number,
		Type:          string(c.Type),
		Amount:        c.Amount.StringFixed(2),
		Payee:         c.Payee,
		IssueDate:     c.IssueDate.Format(shared.DateLayout),
		Status:        string(c.Status),
	}
	if c.ClearedDate != nil {
		resp.ClearedDate = c.ClearedDate.Format(shared.DateLayout)
	}
	return resp
}

type reconciliationResponse struct {
	ID                  string     `json:"id"`
	BankAccountID       string     `json:"bank_account_id"`
	BankAccountName     string     `json:"bank_account_name"`
	ReconciliationDate  string     `json:"reconciliation_date"`
	StatementBalance    string     `json:"statement_balance"`
	BookBalance         string     `json:"book_balance"`
	OutstandingDeposits string     `json:"outstanding_deposits"`
	OutstandingChecks   string     `json:"outstanding_checks"`
	BankCharges         string     `json:"bank_charges"`
	InterestEarned      string     `json:"interest_earned"`
	AdjustedBalance     string     `json:"adjusted_balance"`
	Difference          string     `json:"difference"`
	Status              string     `json:"status"`
	Notes               string     `json:"notes,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
}

func toReconciliationResponse(r Reconciliation) reconciliationResponse {
	return reconciliationResponse{
		ID:                  r.ID.String(),
		BankAccountID:       r.BankAccountID.String(),
		BankAccountName:     r.BankAccountName,
		ReconciliationDate:  r.ReconciliationDate.Format(shared.DateLayout),
		StatementBalance:    r.StatementBalance.StringFixed(2),
		BookBalance:         r.BookBalance.StringFixed(2),
		OutstandingDeposits: r.OutstandingDeposits.StringFixed(2),
		OutstandingChecks:   r.OutstandingChecks.StringFixed(2),
		BankCharges:         r.BankCharges.StringFixed(2),
		InterestEarned:      r.InterestEarned.StringFixed(2),
		AdjustedBalance:     r.AdjustedBalance.StringFixed(2),
		Difference:          r.Difference.StringFixed(2),
		Status:              string(r.Status),
		Notes:               r.Notes,
		CompletedAt:         r.CompletedAt,
	}
}

type skippedResponse struct {
	TransactionID string `json:"transaction_id"`
	Reason        string `json:"reason"`
}

type matchResponse struct {
	Reconciliation reconciliationResponse `json:"reconciliation"`
	Matched        []string               `json:"matched"`
	Skipped        []skippedResponse      `json:"skipped"`
}

func toMatchResponse(res MatchResult) matchResponse {
	out := matchResponse{
		Reconciliation: toReconciliationResponse(res.Reconciliation),
		Matched:        make([]string, 0, len(res.Matched)),
		Skipped:        make([]skippedResponse, 0, len(res.Skipped)),
	}
	for _, id := range res.Matched {
		out.Matched = append(out.Matched, id.String())
	}
	for _, s := range res.Skipped {
		out.Skipped = append(out.Skipped, skippedResponse{TransactionID: s.TransactionID.String(), Reason: s.Reason})
	}
	return out
}
