package ledger

import (
	"time"

	"github.com/odyssey-erp/fincore/internal/shared"
)

type lineRequest struct {
	AccountID   string `json:"account_id" validate:"required,uuid"`
	Debit       string `json:"debit" validate:"omitempty,numeric"`
	Credit      string `json:"credit" validate:"omitempty,numeric"`
	Description string `json:"description" validate:"max=255"`
}

type createEntryRequest struct {
	OrganizationID string        `json:"organization_id" validate:"required,uuid"`
	Number         string        `json:"number" validate:"max=50"`
	Date           string        `json:"date" validate:"required,datetime=2006-01-02"`
	Type           string        `json:"type" validate:"omitempty,oneof=manual adjustment depreciation disposal revaluation tax_payment opening closing"`
	Description    string        `json:"description" validate:"max=500"`
	Reference      string        `json:"reference" validate:"max=100"`
	Status         string        `json:"status" validate:"omitempty,oneof=draft posted"`
	Lines          []lineRequest `json:"lines" validate:"required,min=2,dive"`
}

type idRequest struct {
	ID string `json:"id" validate:"required,uuid"`
}

type reverseRequest struct {
	ID          string `json:"id" validate:"required,uuid"`
	Date        string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Description string `json:"description" validate:"max=500"`
}

type listRequest struct {
	OrganizationID string `json:"organization_id" validate:"required,uuid"`
	Limit          int    `json:"limit" validate:"gte=0,lte=500"`
}

type lineResponse struct {
	ID          string `json:"id"`
	LineNo      int    `json:"line_no"`
	AccountID   string `json:"account_id"`
	Debit       string `json:"debit"`
	Credit      string `json:"credit"`
	Description string `json:"description,omitempty"`
}

type entryResponse struct {
	ID             string         `json:"id"`
	OrganizationID string         `json:"organization_id"`
	Number         string         `json:"number"`
	Date           string         `json:"date"`
	Type           string         `json:"type"`
	Description    string         `json:"description,omitempty"`
	Reference      string         `json:"reference,omitempty"`
	SourceModule   string         `json:"source_module,omitempty"`
	SourceID       string         `json:"source_id,omitempty"`
	Status         string         `json:"status"`
	PostedAt       *time.Time     `json:"posted_at,omitempty"`
	TotalDebit     string         `json:"total_debit"`
	TotalCredit    string         `json:"total_credit"`
	Lines          []lineResponse `json:"lines,omitempty"`
}

func (req createEntryRequest) toInput(actor string) (PostingInput, error) {
	orgID, err := shared.ParseID("organization_id", req.OrganizationID)
	if err != nil {
		return PostingInput{}, err
	}
	date, err := shared.ParseDate(req.Date)
	if err != nil {
		return PostingInput{}, err
	}
	in := PostingInput{
		OrganizationID: orgID,
		Number:         req.Number,
		Date:           date,
		Type:           EntryType(req.Type),
		Description:    req.Description,
		Reference:      req.Reference,
		SourceModule:   SourceManual,
		Status:         Status(req.Status),
		Actor:          actor,
	}
	for _, l := range req.Lines {
		accountID, err := shared.ParseID("account_id", l.AccountID)
		if err != nil {
			return PostingInput{}, err
		}
		debit, err := shared.ParseOptionalMoney("debit", l.Debit)
		if err != nil {
			return PostingInput{}, err
		}
		credit, err := shared.ParseOptionalMoney("credit", l.Credit)
		if err != nil {
			return PostingInput{}, err
		}
		in.Lines = append(in.Lines, PostingLine{AccountID: accountID, Debit: debit, Credit: credit, Description: l.Description})
	}
	return in, nil
}

func toEntryResponse(e JournalEntry) entryResponse {
	debit, credit := e.Totals()
	resp := entryResponse{
		ID:             e.ID.String(),
		OrganizationID: e.OrganizationID.String(),
		Number:         e.Number,
		Date:           e.Date.Format(shared.DateLayout),
		Type:           string(e.Type),
		Description:    e.Description,
		Reference:      e.Reference,
		SourceModule:   e.SourceModule,
		SourceID:       shared.FormatOptionalID(e.SourceID),
		Status:         string(e.Status),
		PostedAt:       e.PostedAt,
		TotalDebit:     debit.StringFixed(2),
		TotalCredit:    credit.StringFixed(2),
	}
	for _, l := range e.Lines {
		resp.Lines = append(resp.Lines, lineResponse{
			ID:          l.ID.String(),
			LineNo:      l.LineNo,
			AccountID:   l.AccountID.String(),
			Debit:       l.Debit.StringFixed(2),
			Credit:      l.Credit.StringFixed(2),
			Description: l.Description,
		})
	}
	return resp
}
