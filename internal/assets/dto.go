package assets

import (
	"time"

	"github.com/odyssey-erp/fincore/internal/shared"
)

type createAssetRequest struct {
	OrganizationID  string `json:"organization_id" validate:"required,uuid"`
	Code            string `json:"code" validate:"required,max=50"`
	Name            string `json:"name" validate:"required,max=255"`
	Type            string `json:"asset_type" validate:"required"`
	PurchaseDate    string `json:"purchase_date" validate:"required,datetime=2006-01-02"`
	PurchasePrice   string `json:"purchase_price" validate:"required,numeric"`
	Method          string `json:"depreciation_method" validate:"required"`
	UsefulLifeYears int    `json:"useful_life_years" validate:"required,gt=0"`
	SalvageValue    string `json:"salvage_value" validate:"omitempty,numeric"`
	AccountID       string `json:"account_id" validate:"required,uuid"`
}

type idRequest struct {
	ID string `json:"id" validate:"required,uuid"`
}

type assetIDRequest struct {
	AssetID string `json:"asset_id" validate:"required,uuid"`
}

type listAssetsRequest struct {
	OrganizationID string `json:"organization_id" validate:"required,uuid"`
	Status         string `json:"status" validate:"omitempty,oneof=active disposed under_maintenance retired"`
}

type calculateRequest struct {
	AssetID     string `json:"asset_id" validate:"required,uuid"`
	PeriodStart string `json:"period_start" validate:"required,datetime=2006-01-02"`
	PeriodEnd   string `json:"period_end" validate:"required,datetime=2006-01-02"`
}

type createDepreciationRequest struct {
	AssetID string `json:"asset_id" validate:"required,uuid"`
	Period  string `json:"period" validate:"required,datetime=2006-01"`
}

type createScheduleRequest struct {
	AssetID string `json:"asset_id" validate:"required,uuid"`
	From    string `json:"from" validate:"required,datetime=2006-01"`
	To      string `json:"to" validate:"required,datetime=2006-01"`
}

type createDisposalRequest struct {
	AssetID        string `json:"asset_id" validate:"required,uuid"`
	DisposalDate   string `json:"disposal_date" validate:"required,datetime=2006-01-02"`
	Method         string `json:"disposal_method" validate:"required"`
	DisposalAmount string `json:"disposal_amount" validate:"omitempty,numeric"`
	AccountID      string `json:"account_id" validate:"required,uuid"`
	Notes          string `json:"notes" validate:"max=1000"`
}

type createRevaluationRequest struct {
	AssetID         string `json:"asset_id" validate:"required,uuid"`
	RevaluationDate string `json:"revaluation_date" validate:"required,datetime=2006-01-02"`
	NewValue        string `json:"new_value" validate:"required,numeric"`
	AccountID       string `json:"account_id" validate:"omitempty,uuid"`
	Reason          string `json:"reason" validate:"max=1000"`
}

func (req createAssetRequest) toInput() (CreateAssetInput, error) {
	orgID, err := shared.ParseID("organization_id", req.OrganizationID)
	if err != nil {
		return CreateAssetInput{}, err
	}
	accountID, err := shared.ParseID("account_id", req.AccountID)
	if err != nil {
		return CreateAssetInput{}, err
	}
	date, err := shared.ParseDate(req.PurchaseDate)
	if err != nil {
		return CreateAssetInput{}, err
	}
	price, err := shared.ParseMoney("purchase_price", req.PurchasePrice)
	if err != nil {
		return CreateAssetInput{}, err
	}
	salvage, err := shared.ParseOptionalMoney("salvage_value", req.SalvageValue)
	if err != nil {
		return CreateAssetInput{}, err
	}
	return CreateAssetInput{
		OrganizationID:  orgID,
		Code:            req.Code,
		Name:            req.Name,
		Type:            AssetType(req.Type),
		PurchaseDate:    date,
		PurchasePrice:   price,
		Method:          Method(req.Method),
		UsefulLifeYears: req.UsefulLifeYears,
		SalvageValue:    salvage,
		AccountID:       accountID,
	}, nil
}

func (req createDisposalRequest) toInput(actor string) (CreateDisposalInput, error) {
	assetID, err := shared.ParseID("asset_id", req.AssetID)
	if err != nil {
		return CreateDisposalInput{}, err
	}
	accountID, err := shared.ParseID("account_id", req.AccountID)
	if err != nil {
		return CreateDisposalInput{}, err
	}
	date, err := shared.ParseDate(req.DisposalDate)
	if err != nil {
		return CreateDisposalInput{}, err
	}
	amount, err := shared.ParseOptionalMoney("disposal_amount", req.DisposalAmount)
	if err != nil {
		return CreateDisposalInput{}, err
	}
	return CreateDisposalInput{
		AssetID:        assetID,
		DisposalDate:   date,
		Method:         DisposalMethod(req.Method),
		DisposalAmount: amount,
		AccountID:      accountID,
		Notes:          req.Notes,
		Actor:          actor,
	}, nil
}

func (req createRevaluationRequest) toInput(actor string) (CreateRevaluationInput, error) {
	assetID, err := shared.ParseID("asset_id", req.AssetID)
	if err != nil {
		return CreateRevaluationInput{}, err
	}
	accountID, err := shared.ParseOptionalID("account_id", req.AccountID)
	if err != nil {
		return CreateRevaluationInput{}, err
	}
	date, err := shared.ParseDate(req.RevaluationDate)
	if err != nil {
		return CreateRevaluationInput{}, err
	}
	value, err := shared.ParseMoney("new_value", req.NewValue)
	if err != nil {
		return CreateRevaluationInput{}, err
	}
	return CreateRevaluationInput{
		AssetID:         assetID,
		RevaluationDate: date,
		NewValue:        value,
		AccountID:       accountID,
		Reason:          req.Reason,
		Actor:           actor,
	}, nil
}

type assetResponse struct {
	ID                      string `json:"id"`
	OrganizationID          string `json:"organization_id"`
	Code                    string `json:"code"`
	Name                    string `json:"name"`
	Type                    string `json:"asset_type"`
	PurchaseDate            string `json:"purchase_date"`
	PurchasePrice           string `json:"purchase_price"`
	CurrentValue            string `json:"current_value"`
	AccumulatedDepreciation string `json:"accumulated_depreciation"`
	NetBookValue            string `json:"net_book_value"`
	Method                  string `json:"depreciation_method"`
	UsefulLifeYears         int    `json:"useful_life_years"`
	SalvageValue            string `json:"salvage_value"`
	Status                  string `json:"status"`
	AccountID               string `json:"account_id"`
}

func toAssetResponse(a Asset) assetResponse {
	return assetResponse{
		ID:                      a.ID.String(),
		OrganizationID:          a.OrganizationID.String(),
		Code:                    a.Code,
		Name:                    a.Name,
		Type:                    string(a.Type),
		PurchaseDate:            a.PurchaseDate.Format(shared.DateLayout),
		PurchasePrice:           a.PurchasePrice.StringFixed(2),
		CurrentValue:            a.CurrentValue.StringFixed(2),
		AccumulatedDepreciation: a.AccumulatedDepreciation.StringFixed(2),
		NetBookValue:            a.NetBookValue.StringFixed(2),
		Method:                  string(a.Method),
		UsefulLifeYears:         a.UsefulLifeYears,
		SalvageValue:            a.SalvageValue.StringFixed(2),
		Status:                  string(a.Status),
		AccountID:               a.AccountID.String(),
	}
}

type scheduleRowResponse struct {
	Period                  string `json:"period"`
	PeriodStart             string `json:"period_start"`
	PeriodEnd               string `json:"period_end"`
	Amount                  string `json:"amount"`
	AccumulatedDepreciation string `json:"accumulated_depreciation"`
	NetBookValue            string `json:"net_book_value"`
}

func toScheduleResponse(rows []ScheduleRow) []scheduleRowResponse {
	out := make([]scheduleRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, scheduleRowResponse{
			Period:                  r.Period,
			PeriodStart:             r.PeriodStart.Format(shared.DateLayout),
			PeriodEnd:               r.PeriodEnd.Format(shared.DateLayout),
			Amount:                  r.Amount.StringFixed(2),
			AccumulatedDepreciation: r.AccumulatedDepreciation.StringFixed(2),
			NetBookValue:            r.NetBookValue.StringFixed(2),
		})
	}
	return out
}

type depreciationResponse struct {
	ID                      string     `json:"id"`
	AssetID                 string     `json:"asset_id"`
	Period                  string     `json:"period"`
	Amount                  string     `json:"amount"`
	AccumulatedDepreciation string     `json:"accumulated_depreciation"`
	NetBookValue            string     `json:"net_book_value"`
	Status                  string     `json:"status"`
	JournalEntryID          string     `json:"journal_entry_id,omitempty"`
	PostedAt                *time.Time `json:"posted_at,omitempty"`
}

func toDepreciationResponse(d Depreciation) depreciationResponse {
	return depreciationResponse{
		ID:                      d.ID.String(),
		AssetID:                 d.AssetID.String(),
		Period:                  d.Period,
		Amount:                  d.Amount.StringFixed(2),
		AccumulatedDepreciation: d.AccumulatedDepreciation.StringFixed(2),
		NetBookValue:            d.NetBookValue.StringFixed(2),
		Status:                  string(d.Status),
		JournalEntryID:          shared.FormatOptionalID(d.JournalEntryID),
		PostedAt:                d.PostedAt,
	}
}

func toDepreciationList(list []Depreciation) []depreciationResponse {
	out := make([]depreciationResponse, 0, len(list))
	for _, d := range list {
		out = append(out, toDepreciationResponse(d))
	}
	return out
}

type disposalResponse struct {
	ID                      string     `json:"id"`
	AssetID                 string     `json:"asset_id"`
	AssetCode               string     `json:"asset_code"`
	AssetName               string     `json:"asset_name"`
	DisposalDate            string     `json:"disposal_date"`
	Method                  string     `json:"disposal_method"`
	DisposalAmount          string     `json:"disposal_amount"`
	PurchasePrice           string     `json:"purchase_price"`
	AccumulatedDepreciation string     `json:"accumulated_depreciation"`
	NetBookValue            string     `json:"net_book_value"`
	GainLoss                string     `json:"gain_loss"`
	AccountID               string     `json:"account_id"`
	Status                  string     `json:"status"`
	JournalEntryID          string     `json:"journal_entry_id,omitempty"`
	Notes                   string     `json:"notes,omitempty"`
	PostedAt                *time.Time `json:"posted_at,omitempty"`
}

func toDisposalResponse(d Disposal) disposalResponse {
	return disposalResponse{
		ID:                      d.ID.String(),
		AssetID:                 d.AssetID.String(),
		AssetCode:               d.AssetCode,
		AssetName:               d.AssetName,
		DisposalDate:            d.DisposalDate.Format(shared.DateLayout),
		Method:                  string(d.Method),
		DisposalAmount:          d.DisposalAmount.StringFixed(2),
		PurchasePrice:           d.PurchasePrice.StringFixed(2),
		AccumulatedDepreciation: d.AccumulatedDepreciation.StringFixed(2),
		NetBookValue:            d.NetBookValue.StringFixed(2),
		GainLoss:                d.GainLoss.StringFixed(2),
		AccountID:               d.AccountID.String(),
		Status:                  string(d.Status),
		JournalEntryID:          shared.FormatOptionalID(d.JournalEntryID),
		Notes:                   d.Notes,
		PostedAt:                d.PostedAt,
	}
}

type revaluationResponse struct {
	ID                string     `json:"id"`
	AssetID           string     `json:"asset_id"`
	AssetCode         string     `json:"asset_code"`
	AssetName         string     `json:"asset_name"`
	RevaluationDate   string     `json:"revaluation_date"`
	PreviousValue     string     `json:"previous_value"`
	NewValue          string     `json:"new_value"`
	RevaluationAmount string     `json:"revaluation_amount"`
	Type              string     `json:"revaluation_type"`
	ReserveAmount     string     `json:"reserve_amount"`
	LossAmount        string     `json:"loss_amount"`
	AccountID         string     `json:"account_id,omitempty"`
	Status            string     `json:"status"`
	JournalEntryID    string     `json:"journal_entry_id,omitempty"`
	Reason            string     `json:"reason,omitempty"`
	PostedAt          *time.Time `json:"posted_at,omitempty"`
}

func toRevaluationResponse(rv Revaluation) revaluationResponse {
	return revaluationResponse{
		ID:                rv.ID.String(),
		AssetID:           rv.AssetID.String(),
		AssetCode:         rv.AssetCode,
		AssetName:         rv.AssetName,
		RevaluationDate:   rv.RevaluationDate.Format(shared.DateLayout),
		PreviousValue:     rv.PreviousValue.StringFixed(2),
		NewValue:          rv.NewValue.StringFixed(2),
		RevaluationAmount: rv.RevaluationAmount.StringFixed(2),
		Type:              string(rv.Type),
		ReserveAmount:     rv.ReserveAmount.StringFixed(2),
		LossAmount:        rv.LossAmount.StringFixed(2),
		AccountID:         shared.FormatOptionalID(rv.AccountID),
		Status:            string(rv.Status),
		JournalEntryID:    shared.FormatOptionalID(rv.JournalEntryID),
		Reason:            rv.Reason,
		PostedAt:          rv.PostedAt,
	}
}
